package workflow

// DirtyTracker records whether generated content was edited since it was generated or confirmed.
type DirtyTracker struct {
	dirty bool
}

// OnEdit arms the tracker on the first edit made while the page is Generated.
// It returns true only for that first edit, so the caller performs its side effect once.
func (t *DirtyTracker) OnEdit(stage Stage) bool {
	if stage != StageGenerated || t.dirty {
		return false
	}
	t.dirty = true
	return true
}

func (t *DirtyTracker) Dirty() bool {
	return t.dirty
}

func (t *DirtyTracker) Clear() {
	t.dirty = false
}
