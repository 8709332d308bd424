package view

import "github.com/rs/zerolog"

// Selection tracks the one selected show_id and mirrors it onto the
// highlighter.
type Selection struct {
	hl       Highlighter
	log      zerolog.Logger
	current  string
	selected bool
}

// NewSelection returns an empty selection. hl may be nil.
func NewSelection(hl Highlighter, log zerolog.Logger) *Selection {
	return &Selection{hl: hl, log: log}
}

// Select makes id the selection, clearing any previous highlight first.
func (s *Selection) Select(id string) {
	s.clear()
	s.current = id
	s.selected = true
	if s.hl == nil || !s.hl.HasElement(id) {
		s.log.Debug().Str("show_id", id).Msg("no list element for selection")
		return
	}
	s.hl.SetHighlighted(id, true)
	s.hl.ScrollIntoView(id)
}

// Unselect clears the selection. It is a no-op when nothing is selected.
func (s *Selection) Unselect() {
	s.clear()
	s.current = ""
	s.selected = false
}

// Current returns the selected id.
func (s *Selection) Current() (string, bool) {
	return s.current, s.selected
}

func (s *Selection) clear() {
	if !s.selected || s.hl == nil {
		return
	}
	if s.hl.HasElement(s.current) {
		s.hl.SetHighlighted(s.current, false)
	}
}
