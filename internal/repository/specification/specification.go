package specification

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Specification narrows a gorm query. Repositories apply them in order.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}

// OrderBy sorts on a column. The column is quoted by gorm, so it must be a
// plain column name.
type OrderBy struct {
	Field string
	Desc  bool
}

func (s OrderBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Order(clause.OrderByColumn{Column: clause.Column{Name: s.Field}, Desc: s.Desc})
}
