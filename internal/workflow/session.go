package workflow

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SourceRef is the extracted form of one uploaded document, as held by a page.
type SourceRef struct {
	Name        string `json:"name"`
	Content     string `json:"content"`
	Type        string `json:"type"`
	Size        int64  `json:"size"`
	Kind        string `json:"kind"`
	Format      string `json:"format"`
	FromSlot    string `json:"from_slot,omitempty"`
	ExtractedAt int64  `json:"-"`
}

// Outcome is what a generation or comparison produced for a page.
type Outcome struct {
	Output   string
	Scores   map[string]int
	Fallback bool
}

// PageSession is the explicit state of one page inside a workflow.
// All fields are guarded by mu and only mutated through Controller.
type PageSession struct {
	mu sync.Mutex

	ID         uuid.UUID
	WorkflowID uuid.UUID
	Page       string

	stage    Stage
	tracker  DirtyTracker
	sources  []SourceRef
	output   string
	scores   map[string]int
	fallback bool

	confirmed    string
	warning      string
	confirmLabel string

	generation uint64
	pending    bool
	cancel     context.CancelFunc

	updatedAt time.Time
}

func NewPageSession(workflowID uuid.UUID, page string) *PageSession {
	return &PageSession{
		ID:           uuid.New(),
		WorkflowID:   workflowID,
		Page:         page,
		stage:        StageEmpty,
		confirmLabel: LabelConfirm,
		updatedAt:    time.Now(),
	}
}

// Snapshot is a read-only copy of a page session.
type Snapshot struct {
	ID         uuid.UUID      `json:"id"`
	WorkflowID uuid.UUID      `json:"workflow_id"`
	Page       string         `json:"page"`
	Stage      Stage          `json:"stage"`
	Dirty      bool           `json:"dirty"`
	Sources    []SourceRef    `json:"sources"`
	Output     string         `json:"output"`
	Confirmed  string         `json:"confirmed,omitempty"`
	Scores     map[string]int `json:"scores,omitempty"`
	Fallback   bool           `json:"fallback"`
	Pending    bool           `json:"pending"`
	Generation uint64         `json:"generation"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

func (s *PageSession) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *PageSession) snapshotLocked() Snapshot {
	sources := make([]SourceRef, len(s.sources))
	copy(sources, s.sources)

	var scores map[string]int
	if s.scores != nil {
		scores = make(map[string]int, len(s.scores))
		for k, v := range s.scores {
			scores[k] = v
		}
	}

	return Snapshot{
		ID:         s.ID,
		WorkflowID: s.WorkflowID,
		Page:       s.Page,
		Stage:      s.stage,
		Dirty:      s.tracker.Dirty(),
		Sources:    sources,
		Output:     s.output,
		Confirmed:  s.confirmed,
		Scores:     scores,
		Fallback:   s.fallback,
		Pending:    s.pending,
		Generation: s.generation,
		UpdatedAt:  s.updatedAt,
	}
}

// invalidateLocked cancels in-flight work and makes any outstanding ticket stale.
func (s *PageSession) invalidateLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.generation++
	s.pending = false
}

func (s *PageSession) touchLocked() {
	s.updatedAt = time.Now()
}
