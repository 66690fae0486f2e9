package workflow

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrUnknownSlot   = errors.New("workflow: unknown slot")
	ErrScopeMismatch = errors.New("workflow: slot does not live in that scope")
)

// Scope selects the store a slot lives in.
type Scope string

const (
	ScopeDurable Scope = "durable"
	ScopeSession Scope = "session"
)

// Slot names shared between pages.
const (
	SlotConfirmedCopy          = "confirmedCopy"
	SlotConfirmedDesign        = "confirmedDesign"
	SlotOriginalCopy           = "originalCopy"
	SlotOriginalBriefing       = "originalBriefing"
	SlotCompareFile1           = "compareFile1"
	SlotCompareFile2           = "compareFile2"
	SlotFromCompare            = "fromCompare"
	SlotComparisonTimestamp    = "comparisonTimestamp"
	SlotSavedCopy              = "savedCopy"
	SlotSavedCopyDate          = "savedCopyDate"
	SlotHasGeneratedCopy       = "hasGeneratedCopy"
	SlotGeneratedCopyForDesign = "generatedCopyForDesign"
	SlotDocxCopyText           = "docxCopyText"
)

var slotScopes = map[string]Scope{
	SlotConfirmedCopy:          ScopeDurable,
	SlotConfirmedDesign:        ScopeDurable,
	SlotOriginalCopy:           ScopeDurable,
	SlotOriginalBriefing:       ScopeDurable,
	SlotCompareFile1:           ScopeDurable,
	SlotCompareFile2:           ScopeDurable,
	SlotFromCompare:            ScopeDurable,
	SlotComparisonTimestamp:    ScopeDurable,
	SlotSavedCopy:              ScopeDurable,
	SlotSavedCopyDate:          ScopeDurable,
	SlotHasGeneratedCopy:       ScopeSession,
	SlotGeneratedCopyForDesign: ScopeSession,
	SlotDocxCopyText:           ScopeSession,
}

func ScopeOf(slot string) (Scope, bool) {
	scope, ok := slotScopes[slot]
	return scope, ok
}

// ResolveScope validates a slot name and the scope a caller asked for.
// An empty scope resolves to the slot's own scope.
func ResolveScope(slot string, requested Scope) (Scope, error) {
	scope, ok := ScopeOf(slot)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSlot, slot)
	}
	if requested != "" && requested != scope {
		return "", fmt.Errorf("%w: %s is %s, not %s", ErrScopeMismatch, slot, scope, requested)
	}
	return scope, nil
}

func SlotNames() []string {
	names := make([]string, 0, len(slotScopes))
	for name := range slotScopes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SlotWrite is a value a page action wants persisted.
type SlotWrite struct {
	Slot  string `json:"slot"`
	Scope Scope  `json:"scope"`
	Value string `json:"value"`
}
