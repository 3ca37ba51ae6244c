package state

import "github.com/goliatone/go-formbuilder/pkg/schema"

// UIState is informational session state. The rule and validation engines
// never read it.
type UIState struct {
	CurrentPage     string              `json:"currentPage"`
	SelectedFieldID string              `json:"selectedFieldId,omitempty"`
	IsDirty         bool                `json:"isDirty"`
	Errors          map[string][]string `json:"errors"`
	Touched         map[string]bool     `json:"touched"`
}

func newUIState() UIState {
	return UIState{
		CurrentPage: schema.DefaultPage,
		Errors:      make(map[string][]string),
		Touched:     make(map[string]bool),
	}
}

// Clone returns a deep copy.
func (u UIState) Clone() UIState {
	out := u
	out.Errors = make(map[string][]string, len(u.Errors))
	for k, v := range u.Errors {
		out.Errors[k] = append([]string(nil), v...)
	}
	out.Touched = make(map[string]bool, len(u.Touched))
	for k, v := range u.Touched {
		out.Touched[k] = v
	}
	return out
}

// UIPatch updates selected UI state members; nil members are left alone.
type UIPatch struct {
	CurrentPage     *string
	SelectedFieldID *string
	IsDirty         *bool
}
