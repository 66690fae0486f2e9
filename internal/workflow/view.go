package workflow

type Pane string

const (
	PaneUpload     Pane = "upload"
	PaneSource     Pane = "source"
	PaneOutput     Pane = "output"
	PaneConfirmed  Pane = "confirmed"
	PaneComparison Pane = "comparison"
	PaneWarning    Pane = "warning"
)

type Action string

const (
	ActionUpload   Action = "upload"
	ActionGenerate Action = "generate"
	ActionEdit     Action = "edit"
	ActionConfirm  Action = "confirm"
	ActionSave     Action = "save"
	ActionReset    Action = "reset"
	ActionNavigate Action = "navigate"
	ActionDownload Action = "download"
)

// View is what a page shows and allows. It depends only on the session state and the page config.
type View struct {
	Page              string   `json:"page"`
	Title             string   `json:"title"`
	Stage             Stage    `json:"stage"`
	Dirty             bool     `json:"dirty"`
	Pending           bool     `json:"pending"`
	Fallback          bool     `json:"fallback"`
	Panes             []Pane   `json:"panes"`
	Actions           []Action `json:"actions"`
	ConfirmLabel      string   `json:"confirm_label,omitempty"`
	Warning           string   `json:"warning,omitempty"`
	NavigationAllowed bool     `json:"navigation_allowed"`
	NextPage          string   `json:"next_page,omitempty"`
}

func (v View) Allows(a Action) bool {
	for _, got := range v.Actions {
		if got == a {
			return true
		}
	}
	return false
}

func (v View) Shows(p Pane) bool {
	for _, got := range v.Panes {
		if got == p {
			return true
		}
	}
	return false
}

func (c *Controller) View(s *PageSession) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		Page:     c.page.ID,
		Title:    c.page.Title,
		Stage:    s.stage,
		Dirty:    s.tracker.Dirty(),
		Pending:  s.pending,
		Fallback: s.fallback,
		NextPage: c.page.NextPage,
	}

	resultPane := PaneOutput
	if c.page.Operation == OperationCompareFiles {
		resultPane = PaneComparison
	}
	downloadable := c.page.Operation != OperationCompareFiles

	switch s.stage {
	case StageEmpty:
		v.Panes = []Pane{PaneUpload}
		v.Actions = []Action{ActionUpload}

	case StageSourceLoaded:
		v.Panes = []Pane{PaneUpload, PaneSource}
		v.Actions = []Action{ActionUpload, ActionReset}
		if !s.pending {
			v.Actions = append(v.Actions, ActionGenerate)
		}

	case StageGenerated:
		v.Panes = []Pane{PaneSource, resultPane}
		v.Actions = []Action{ActionUpload, ActionReset}
		if !s.pending {
			v.Actions = append(v.Actions, ActionGenerate)
		}
		if c.page.Editable {
			v.Actions = append(v.Actions, ActionEdit)
		}
		if c.page.RequireConfirm {
			v.Actions = append(v.Actions, ActionConfirm)
			v.ConfirmLabel = s.confirmLabel
		}
		if len(c.page.Save) > 0 {
			v.Actions = append(v.Actions, ActionSave)
		}
		if downloadable {
			v.Actions = append(v.Actions, ActionDownload)
		}
		if s.tracker.Dirty() {
			v.Panes = append(v.Panes, PaneWarning)
			v.Warning = s.warning
		}
		v.NavigationAllowed = !c.page.RequireConfirm && !s.tracker.Dirty()

	case StageConfirmed:
		v.Panes = []Pane{PaneSource, PaneConfirmed}
		v.Actions = []Action{ActionUpload, ActionReset}
		if c.page.Editable {
			v.Actions = append(v.Actions, ActionEdit)
		}
		v.Actions = append(v.Actions, ActionConfirm)
		v.ConfirmLabel = s.confirmLabel
		if len(c.page.Save) > 0 {
			v.Actions = append(v.Actions, ActionSave)
		}
		if downloadable {
			v.Actions = append(v.Actions, ActionDownload)
		}
		v.NavigationAllowed = !s.tracker.Dirty()
	}

	if v.NavigationAllowed && c.page.NextPage != "" {
		v.Actions = append(v.Actions, ActionNavigate)
	} else if c.page.NextPage == "" {
		v.NavigationAllowed = false
	}
	return v
}
