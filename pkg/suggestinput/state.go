package suggestinput

// Match is a single candidate returned by the lookup service.
type Match struct {
	Name string
	// Raw is the JSON object the match was decoded from. It is carried along
	// unexamined.
	Raw string
}

type highlightKind int

const (
	noHighlight highlightKind = iota
	bestMatchHighlight
	keyboardHighlight
)

// Highlight records which match, if any, is emphasised. A best match drives
// the inline ghost text; a keyboard selection is previewed in the field
// itself. The two are never set at the same time.
type Highlight struct {
	kind  highlightKind
	index int
}

func NoHighlight() Highlight {
	return Highlight{kind: noHighlight}
}

func BestMatch(index int) Highlight {
	return Highlight{kind: bestMatchHighlight, index: index}
}

func KeyboardSelection(index int) Highlight {
	return Highlight{kind: keyboardHighlight, index: index}
}

// State is the authoritative model of what the widget shows.
type State struct {
	Query   string
	Visible bool
	Matches []Match

	highlight   Highlight
	previous    string
	hasPrevious bool
}

func (s State) Highlight() Highlight {
	return s.highlight
}

// BestMatchIndex returns the index used for the ghost text.
func (s State) BestMatchIndex() (int, bool) {
	if s.highlight.kind != bestMatchHighlight {
		return 0, false
	}
	return s.highlight.index, true
}

// SelectedIndex returns the index highlighted by keyboard navigation.
func (s State) SelectedIndex() (int, bool) {
	if s.highlight.kind != keyboardHighlight {
		return 0, false
	}
	return s.highlight.index, true
}

// PreviousValue returns the text captured when the last lookup was triggered.
func (s State) PreviousValue() (string, bool) {
	return s.previous, s.hasPrevious
}

// BestMatch returns the match behind the ghost text.
func (s State) BestMatch() (Match, bool) {
	i, ok := s.BestMatchIndex()
	if !ok || i >= len(s.Matches) {
		return Match{}, false
	}
	return s.Matches[i], true
}

// Selected returns the match highlighted by keyboard navigation.
func (s State) Selected() (Match, bool) {
	i, ok := s.SelectedIndex()
	if !ok || i >= len(s.Matches) {
		return Match{}, false
	}
	return s.Matches[i], true
}

func (s *State) snapshot(value string) {
	s.Query = value
	s.previous = value
	s.hasPrevious = true
}

// setMatches replaces the matches wholesale. Keyboard selection never
// survives a new result.
func (s *State) setMatches(matches []Match) {
	s.Matches = matches
	s.Visible = true
	if len(matches) > 0 {
		s.highlight = BestMatch(0)
	} else {
		s.highlight = NoHighlight()
	}
}

func (s *State) selectNext() bool {
	n := len(s.Matches)
	if n == 0 {
		return false
	}
	i, ok := s.SelectedIndex()
	if !ok || i >= n-1 {
		i = 0
	} else {
		i++
	}
	s.highlight = KeyboardSelection(i)
	return true
}

func (s *State) selectPrev() bool {
	n := len(s.Matches)
	if n == 0 {
		return false
	}
	i, ok := s.SelectedIndex()
	if !ok || i <= 0 || i >= n {
		i = n - 1
	} else {
		i--
	}
	s.highlight = KeyboardSelection(i)
	return true
}

func (s *State) reset() {
	s.Visible = false
	s.Matches = nil
	s.highlight = NoHighlight()
	s.previous = ""
	s.hasPrevious = false
}
