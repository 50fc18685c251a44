package suggestinput

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

type Styles struct {
	Item     lipgloss.Style
	Selected lipgloss.Style
	Ghost    lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Item: lipgloss.NewStyle().
			PaddingLeft(2),
		Selected: lipgloss.NewStyle().
			PaddingLeft(1).
			Border(lipgloss.ThickBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("12")).
			Foreground(lipgloss.Color("12")),
		Ghost: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")),
	}
}

// ListItem is one rendered row of the suggestion list.
type ListItem struct {
	Name     string
	Selected bool
}

// ListItems returns the rows to show for s, or nil when the list is hidden.
func ListItems(s State) []ListItem {
	if !s.Visible || len(s.Matches) == 0 {
		return nil
	}

	selected, hasSelection := s.SelectedIndex()
	items := make([]ListItem, len(s.Matches))
	for i, match := range s.Matches {
		items[i] = ListItem{
			Name:     match.Name,
			Selected: hasSelection && i == selected,
		}
	}
	return items
}

// OverlayText is the inline completion of input towards the best match.
// When the match does not literally start with input, the match name is
// shown as is. The terminal ghost text only appears when input is a
// case-insensitive prefix of the result, since textinput drops any other
// suggestion.
func OverlayText(s State, input string) string {
	if !s.Visible {
		return ""
	}
	best, ok := s.BestMatch()
	if !ok {
		return ""
	}
	if strings.HasPrefix(best.Name, input) {
		return input + best.Name[len(input):]
	}
	return best.Name
}

// listWindow returns the half-open range of items shown when at most
// maxVisible rows fit, keeping the selection in view.
func listWindow(s State, maxVisible int) (int, int) {
	n := len(ListItems(s))
	if maxVisible <= 0 || n <= maxVisible {
		return 0, n
	}

	start := 0
	if selected, ok := s.SelectedIndex(); ok && selected >= maxVisible {
		start = selected - maxVisible + 1
	}
	return start, start + maxVisible
}

// matchAt maps a screen row onto the index of the match drawn there.
func (m Model) matchAt(y int) (int, bool) {
	start, end := listWindow(m.state, m.MaxVisible)
	i := start + y - m.ListOffsetY
	if i < start || i >= end {
		return 0, false
	}
	return i, true
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.Input.View())

	items := ListItems(m.state)
	start, end := listWindow(m.state, m.MaxVisible)
	for _, item := range items[start:end] {
		name := item.Name
		if m.Width > 0 {
			name = runewidth.Truncate(name, max(1, m.Width-2), "…")
		}

		style := m.Styles.Item
		if item.Selected {
			style = m.Styles.Selected
		}
		b.WriteString("\n")
		b.WriteString(style.Render(name))
	}

	return b.String()
}
