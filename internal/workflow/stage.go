// Package workflow holds the page state machine shared by every workflow page:
// stages, dirty tracking, per-page configuration and the stage controller.
package workflow

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition = errors.New("workflow: action not allowed in current stage")
	ErrDirty             = errors.New("workflow: unsaved changes, confirm them before continuing")
	ErrNotConfirmed      = errors.New("workflow: content must be confirmed before continuing")
	ErrNotEditable       = errors.New("workflow: page content is not editable")
	ErrNotConfirmable    = errors.New("workflow: page has nothing to confirm")
	ErrSourceCount       = errors.New("workflow: wrong number of source documents")
	ErrStaleGeneration   = errors.New("workflow: generation superseded by a newer action")
	ErrUnknownPage       = errors.New("workflow: unknown page")
)

// Stage is the position of a page in the upload, generate, confirm sequence.
type Stage int

const (
	StageEmpty Stage = iota
	StageSourceLoaded
	StageGenerated
	StageConfirmed
)

var stageNames = map[Stage]string{
	StageEmpty:        "empty",
	StageSourceLoaded: "source_loaded",
	StageGenerated:    "generated",
	StageConfirmed:    "confirmed",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Stage) UnmarshalText(b []byte) error {
	parsed, err := ParseStage(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func ParseStage(name string) (Stage, error) {
	for stage, n := range stageNames {
		if n == name {
			return stage, nil
		}
	}
	return StageEmpty, fmt.Errorf("workflow: unknown stage %q", name)
}

// CanTransition reports whether the state machine allows moving from one stage to another.
// Reset (to Empty) and re-upload (to SourceLoaded) are allowed from anywhere.
func CanTransition(from, to Stage) bool {
	switch to {
	case StageEmpty, StageSourceLoaded:
		return true
	case StageGenerated:
		return from == StageSourceLoaded || from == StageGenerated
	case StageConfirmed:
		return from == StageGenerated || from == StageConfirmed
	}
	return false
}
