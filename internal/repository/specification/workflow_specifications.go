package specification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByWorkflowID struct {
	WorkflowID uuid.UUID
}

func (s ByWorkflowID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("workflow_id = ?", s.WorkflowID)
}

type BySlotName struct {
	Name string
}

func (s BySlotName) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("name = ?", s.Name)
}

type BySlotNames struct {
	Names []string
}

func (s BySlotNames) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("name IN ?", s.Names)
}

type ByPage struct {
	Page string
}

func (s ByPage) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("page = ?", s.Page)
}

// WithScope applies a reusable gorm scope, e.g. scope.OrderByOccurredAsc.
type WithScope struct {
	Fn func(*gorm.DB) *gorm.DB
}

func (s WithScope) Apply(db *gorm.DB) *gorm.DB {
	return db.Scopes(s.Fn)
}

// OccurredAfter keeps events newer than the given unix millisecond timestamp.
type OccurredAfter struct {
	UnixMilli int64
}

func (s OccurredAfter) Apply(db *gorm.DB) *gorm.DB {
	if s.UnixMilli <= 0 {
		return db
	}
	return db.Where("occurred_at > ?", time.UnixMilli(s.UnixMilli))
}

type OccurredBefore struct {
	Time time.Time
}

func (s OccurredBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("occurred_at < ?", s.Time)
}
