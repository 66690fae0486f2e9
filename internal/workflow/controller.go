package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

const (
	LabelConfirm        = "Confirm"
	LabelConfirmChanges = "Confirm Changes"
	WarningUnsaved      = "You have unsaved changes. Confirm them before continuing."
)

// Ticket identifies one generation request. Its token goes stale as soon as the
// page is reset, re-uploaded or asked to generate again.
type Ticket struct {
	Token   uint64
	Ctx     context.Context
	Sources []SourceRef
}

// Input is the text handed to the gateway for single-source pages.
func (t Ticket) Input() string {
	if len(t.Sources) == 0 {
		return ""
	}
	return t.Sources[0].Content
}

type EditEffect struct {
	Dirty        bool   `json:"dirty"`
	FirstEdit    bool   `json:"first_edit"`
	Warning      string `json:"warning,omitempty"`
	ConfirmLabel string `json:"confirm_label"`
}

// Controller applies the stage rules of one page configuration to its sessions.
type Controller struct {
	page PageConfig
	now  func() time.Time
}

func NewController(page PageConfig) *Controller {
	return &Controller{page: page, now: time.Now}
}

// WithClock replaces the clock used for timestamp slot values.
func (c *Controller) WithClock(now func() time.Time) *Controller {
	c.now = now
	return c
}

func (c *Controller) Page() PageConfig {
	return c.page
}

func (c *Controller) LoadSource(s *PageSession, sources ...SourceRef) error {
	if len(sources) != c.page.Sources {
		return fmt.Errorf("%w: page %s expects %d, got %d", ErrSourceCount, c.page.ID, c.page.Sources, len(sources))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.invalidateLocked()
	s.sources = append([]SourceRef(nil), sources...)
	s.clearResultLocked()
	s.stage = StageSourceLoaded
	s.touchLocked()
	return nil
}

// Preload fills an empty page from the first non-empty preload slot and
// reports which slots the caller should now remove.
func (c *Controller) Preload(s *PageSession, values map[string]string) (bool, []string) {
	if c.page.Sources != 1 || len(c.page.Preload) == 0 {
		return false, nil
	}

	s.mu.Lock()
	if s.stage != StageEmpty {
		s.mu.Unlock()
		return false, nil
	}
	s.mu.Unlock()

	for _, slot := range c.page.Preload {
		value, ok := values[slot]
		if !ok || value == "" {
			continue
		}
		ref := SourceRef{
			Name:     slot,
			Content:  value,
			Type:     "text/plain",
			Size:     int64(len(value)),
			Kind:     "text",
			Format:   "text",
			FromSlot: slot,
		}
		if err := c.LoadSource(s, ref); err != nil {
			return false, nil
		}
		return true, append([]string(nil), c.page.Consume...)
	}
	return false, nil
}

func (c *Controller) BeginGeneration(parent context.Context, s *PageSession) (Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !CanTransition(s.stage, StageGenerated) {
		return Ticket{}, fmt.Errorf("%w: cannot generate from %s", ErrInvalidTransition, s.stage)
	}

	s.invalidateLocked()
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	s.pending = true
	s.touchLocked()

	return Ticket{
		Token:   s.generation,
		Ctx:     ctx,
		Sources: append([]SourceRef(nil), s.sources...),
	}, nil
}

// CompleteGeneration applies an outcome unless the ticket went stale in the meantime.
func (c *Controller) CompleteGeneration(s *PageSession, t Ticket, out Outcome) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ownsLocked(t) {
		return false
	}
	s.cancel()
	s.cancel = nil
	s.pending = false

	s.output = out.Output
	s.scores = out.Scores
	s.fallback = out.Fallback
	s.confirmed = ""
	s.tracker.Clear()
	s.warning = ""
	s.confirmLabel = LabelConfirm
	s.stage = StageGenerated
	s.touchLocked()
	return true
}

// AbortGeneration releases a ticket whose call failed. The page keeps its
// previous stage. It reports false when the ticket was already stale.
func (c *Controller) AbortGeneration(s *PageSession, t Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ownsLocked(t) {
		return false
	}
	s.cancel()
	s.cancel = nil
	s.pending = false
	s.touchLocked()
	return true
}

func (c *Controller) Edit(s *PageSession, text string) (EditEffect, error) {
	if !c.page.Editable {
		return EditEffect{}, ErrNotEditable
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stage != StageGenerated && s.stage != StageConfirmed {
		return EditEffect{}, fmt.Errorf("%w: cannot edit in %s", ErrInvalidTransition, s.stage)
	}

	s.output = text
	first := s.tracker.OnEdit(s.stage)
	if first {
		s.warning = WarningUnsaved
		s.confirmLabel = LabelConfirmChanges
	}
	s.touchLocked()

	return EditEffect{
		Dirty:        s.tracker.Dirty(),
		FirstEdit:    first,
		Warning:      s.warning,
		ConfirmLabel: s.confirmLabel,
	}, nil
}

// Confirmation holds the slot writes of a confirm that has not been
// committed to the session yet.
type Confirmation struct {
	Writes     []SlotWrite
	output     string
	generation uint64
}

// PrepareConfirm resolves the confirm writes without changing the session.
// The stage only moves once CommitConfirm runs, after the writes are stored.
func (c *Controller) PrepareConfirm(s *PageSession) (*Confirmation, error) {
	if !c.page.RequireConfirm {
		return nil, ErrNotConfirmable
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !CanTransition(s.stage, StageConfirmed) {
		return nil, fmt.Errorf("%w: cannot confirm in %s", ErrInvalidTransition, s.stage)
	}

	writes, err := c.resolveLocked(s, c.page.Confirm)
	if err != nil {
		return nil, err
	}
	return &Confirmation{Writes: writes, output: s.output, generation: s.generation}, nil
}

// CommitConfirm moves the page to Confirmed. It refuses when the session was
// edited, regenerated or reset since the confirmation was prepared.
func (c *Controller) CommitConfirm(s *PageSession, conf *Confirmation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !CanTransition(s.stage, StageConfirmed) {
		return fmt.Errorf("%w: cannot confirm in %s", ErrInvalidTransition, s.stage)
	}
	if s.output != conf.output || s.generation != conf.generation {
		return fmt.Errorf("%w: page changed while confirming", ErrInvalidTransition)
	}

	s.tracker.Clear()
	s.warning = ""
	s.confirmLabel = LabelConfirm
	s.confirmed = s.output
	s.stage = StageConfirmed
	s.touchLocked()
	return nil
}

// Confirm prepares and commits in one step and returns the slot writes to
// persist. Confirming again without an edit returns the same writes.
func (c *Controller) Confirm(s *PageSession) ([]SlotWrite, error) {
	conf, err := c.PrepareConfirm(s)
	if err != nil {
		return nil, err
	}
	if err := c.CommitConfirm(s, conf); err != nil {
		return nil, err
	}
	return conf.Writes, nil
}

func (c *Controller) Save(s *PageSession) ([]SlotWrite, error) {
	if len(c.page.Save) == 0 {
		return nil, fmt.Errorf("%w: page %s has no save action", ErrInvalidTransition, c.page.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stage != StageGenerated && s.stage != StageConfirmed {
		return nil, fmt.Errorf("%w: nothing to save in %s", ErrInvalidTransition, s.stage)
	}
	return c.resolveLocked(s, c.page.Save)
}

// Navigate returns the hand-off writes and the next page. It refuses while the page is dirty.
func (c *Controller) Navigate(s *PageSession) ([]SlotWrite, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tracker.Dirty() {
		return nil, "", ErrDirty
	}
	if c.page.RequireConfirm && s.stage != StageConfirmed {
		return nil, "", ErrNotConfirmed
	}
	if !c.page.RequireConfirm && s.stage != StageGenerated && s.stage != StageConfirmed {
		return nil, "", fmt.Errorf("%w: nothing to hand off in %s", ErrInvalidTransition, s.stage)
	}

	writes, err := c.resolveLocked(s, c.page.Handoff)
	if err != nil {
		return nil, "", err
	}
	return writes, c.page.NextPage, nil
}

// Reset cancels in-flight work, empties the page and returns the slots it owns.
func (c *Controller) Reset(s *PageSession) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.invalidateLocked()
	s.sources = nil
	s.clearResultLocked()
	s.stage = StageEmpty
	s.touchLocked()
	return append([]string(nil), c.page.OwnedSlots...)
}

func (s *PageSession) ownsLocked(t Ticket) bool {
	return s.pending && t.Token == s.generation && s.cancel != nil
}

func (s *PageSession) clearResultLocked() {
	s.output = ""
	s.scores = nil
	s.fallback = false
	s.confirmed = ""
	s.tracker.Clear()
	s.warning = ""
	s.confirmLabel = LabelConfirm
}

type fileData struct {
	Name    string `json:"name"`
	Content string `json:"content"`
	Type    string `json:"type"`
	Size    int64  `json:"size"`
}

func (c *Controller) resolveLocked(s *PageSession, bindings []SlotBinding) ([]SlotWrite, error) {
	writes := make([]SlotWrite, 0, len(bindings))
	for _, b := range bindings {
		scope, _ := ScopeOf(b.Slot)
		w := SlotWrite{Slot: b.Slot, Scope: scope}

		switch b.Value {
		case ValueOutput:
			w.Value = s.output
		case ValueSource:
			if len(s.sources) > 0 {
				w.Value = s.sources[0].Content
			}
		case ValueFile1, ValueFile2:
			idx := 0
			if b.Value == ValueFile2 {
				idx = 1
			}
			if idx >= len(s.sources) {
				return nil, fmt.Errorf("%w: slot %s needs source %d", ErrSourceCount, b.Slot, idx+1)
			}
			src := s.sources[idx]
			raw, err := json.Marshal(fileData{Name: src.Name, Content: src.Content, Type: src.Type, Size: src.Size})
			if err != nil {
				return nil, fmt.Errorf("encode %s: %w", b.Slot, err)
			}
			w.Value = string(raw)
		case ValueFlag:
			w.Value = "true"
		case ValueTimestamp:
			w.Value = c.now().UTC().Format("2006-01-02T15:04:05.000Z07:00")
		case ValueEpochMillis:
			w.Value = strconv.FormatInt(c.now().UnixMilli(), 10)
		}
		writes = append(writes, w)
	}
	return writes, nil
}
