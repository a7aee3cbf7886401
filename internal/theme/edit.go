package theme

import "github.com/juanzandev/CS487Project/internal/config"

// Edit describes a validated settings change.
type Edit struct {
	Candidate       config.Config
	ThemeChanged    bool
	IntervalChanged bool
	ConnChanged     bool
}

// RestartRequired reports whether the change needs a fresh process.
func (e Edit) RestartRequired() bool {
	return e.ThemeChanged
}

// Empty reports an edit that changes nothing.
func (e Edit) Empty() bool {
	return !e.ThemeChanged && !e.IntervalChanged && !e.ConnChanged
}

// ValidateEdit checks a candidate against the document invariants and reports
// which groups of fields differ from old.
func ValidateEdit(old, candidate config.Config) (Edit, error) {
	candidate = candidate.Normalized()
	if err := candidate.Validate(); err != nil {
		return Edit{}, err
	}
	old = old.Normalized()
	return Edit{
		Candidate:       candidate,
		ThemeChanged:    old.Theme != candidate.Theme,
		IntervalChanged: old.PollIntervalSeconds != candidate.PollIntervalSeconds,
		ConnChanged:     old.BaseURL != candidate.BaseURL || old.APIToken != candidate.APIToken,
	}, nil
}
