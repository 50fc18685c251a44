package suggestinput

import (
	"context"
	"time"

	"github.com/atinylittleshell/gsuggest/pkg/debounce"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

const (
	DefaultDelay      = 300 * time.Millisecond
	DefaultTimeout    = 5 * time.Second
	DefaultMaxVisible = 8
)

// Fetcher looks up the matches for a query.
type Fetcher interface {
	Fetch(ctx context.Context, query string) ([]Match, error)
}

// Observer is told about lookups that failed. Failures are otherwise shown
// as an empty result.
type Observer interface {
	LookupFailed(query string, err error)
}

type logObserver struct {
	logger *zap.Logger
}

func (o logObserver) LookupFailed(query string, err error) {
	o.logger.Warn("suggestinput lookup failed", zap.String("query", query), zap.Error(err))
}

// KeyMap is the set of keys the widget intercepts before the text field sees them.
type KeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Accept key.Binding
	Cancel key.Binding
	Submit key.Binding
}

var DefaultKeyMap = KeyMap{
	Next:   key.NewBinding(key.WithKeys("down")),
	Prev:   key.NewBinding(key.WithKeys("up")),
	Accept: key.NewBinding(key.WithKeys("tab")),
	Cancel: key.NewBinding(key.WithKeys("esc")),
	Submit: key.NewBinding(key.WithKeys("enter")),
}

// SubmitMsg is emitted when the user presses enter.
type SubmitMsg struct {
	Value string
}

type lookupDueMsg struct {
	query string
}

type matchesMsg struct {
	seq     int
	query   string
	matches []Match
	err     error
}

// lookupQueue carries debounced queries from the timer goroutine into the
// Bubble Tea event loop. It is shared by all copies of a Model.
type lookupQueue struct {
	debouncer *debounce.Debouncer[string]
	due       chan string
}

func newLookupQueue(delay time.Duration) *lookupQueue {
	q := &lookupQueue{due: make(chan string, 1)}
	q.debouncer = debounce.New(delay, func(query string) {
		// keep only the newest query if the loop has not caught up yet
		select {
		case <-q.due:
		default:
		}
		select {
		case q.due <- query:
		default:
		}
	})
	return q
}

// Model is a text field with asynchronous suggestions.
type Model struct {
	Input      textinput.Model
	KeyMap     KeyMap
	Styles     Styles
	Width      int
	MaxVisible int
	// ListOffsetY is the screen row of the first list entry, used to map
	// pointer presses onto matches.
	ListOffsetY int

	ctx      context.Context
	fetcher  Fetcher
	observer Observer
	logger   *zap.Logger
	delay    time.Duration
	timeout  time.Duration

	state   State
	seq     int
	lastErr error
	queue   *lookupQueue
}

type Option func(*Model)

func WithFetcher(fetcher Fetcher) Option {
	return func(m *Model) { m.fetcher = fetcher }
}

func WithObserver(observer Observer) Option {
	return func(m *Model) { m.observer = observer }
}

func WithLogger(logger *zap.Logger) Option {
	return func(m *Model) { m.logger = logger }
}

func WithContext(ctx context.Context) Option {
	return func(m *Model) { m.ctx = ctx }
}

func WithDelay(delay time.Duration) Option {
	return func(m *Model) { m.delay = delay }
}

func WithTimeout(timeout time.Duration) Option {
	return func(m *Model) { m.timeout = timeout }
}

func WithPrompt(prompt string) Option {
	return func(m *Model) { m.Input.Prompt = prompt }
}

func WithPlaceholder(placeholder string) Option {
	return func(m *Model) { m.Input.Placeholder = placeholder }
}

func WithMaxVisible(n int) Option {
	return func(m *Model) { m.MaxVisible = n }
}

// New creates a focused widget. Every field gets its own instance.
func New(opts ...Option) Model {
	input := textinput.New()
	input.ShowSuggestions = true
	input.KeyMap.AcceptSuggestion.SetEnabled(false)
	input.KeyMap.NextSuggestion.SetEnabled(false)
	input.KeyMap.PrevSuggestion.SetEnabled(false)

	m := Model{
		Input:       input,
		KeyMap:      DefaultKeyMap,
		Styles:      DefaultStyles(),
		MaxVisible:  DefaultMaxVisible,
		ListOffsetY: 1,

		ctx:     context.Background(),
		logger:  zap.NewNop(),
		delay:   DefaultDelay,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(&m)
	}
	if m.observer == nil {
		m.observer = logObserver{logger: m.logger}
	}
	m.Input.CompletionStyle = m.Styles.Ghost
	m.queue = newLookupQueue(m.delay)
	m.Input.Focus()
	m.resetState()

	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForLookup())
}

// State returns a copy of the current suggestion state.
func (m Model) State() State {
	return m.state
}

func (m Model) Value() string {
	return m.Input.Value()
}

// LastError is the error of the most recent accepted lookup, if it failed.
func (m Model) LastError() error {
	return m.lastErr
}

// SetValue replaces the text without triggering a lookup.
func (m *Model) SetValue(value string) {
	m.setValue(value)
	m.redraw()
}

func (m *Model) Focus() tea.Cmd {
	return m.Input.Focus()
}

func (m *Model) Blur() {
	m.Input.Blur()
}

// Close drops any pending lookup.
func (m *Model) Close() {
	m.queue.debouncer.Cancel()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case lookupDueMsg:
		var cmd tea.Cmd
		m, cmd = m.dispatchLookup(msg.query)
		return m, tea.Batch(cmd, m.waitForLookup())

	case matchesMsg:
		return m.receiveMatches(msg), nil

	case tea.KeyMsg:
		updated, cmd, handled := m.handleKey(msg)
		if handled {
			return updated, cmd
		}
		m = updated

	case tea.MouseMsg:
		return m.handleMouse(msg), nil
	}

	return m.updateInput(msg)
}

func (m Model) waitForLookup() tea.Cmd {
	due := m.queue.due
	return func() tea.Msg {
		return lookupDueMsg{query: <-due}
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.KeyMap.Next):
		if !m.state.Visible || !m.state.selectNext() {
			return m, nil, false
		}
		m.previewSelection()
		return m, nil, true

	case key.Matches(msg, m.KeyMap.Prev):
		if !m.state.Visible || !m.state.selectPrev() {
			return m, nil, false
		}
		m.previewSelection()
		return m, nil, true

	case key.Matches(msg, m.KeyMap.Accept):
		best, ok := m.state.BestMatch()
		if ok {
			m.setValue(best.Name)
		}
		m.resetState()
		return m, nil, ok

	case key.Matches(msg, m.KeyMap.Cancel):
		if previous, ok := m.state.PreviousValue(); ok {
			m.setValue(previous)
		}
		m.resetState()
		return m, nil, true

	case key.Matches(msg, m.KeyMap.Submit):
		m.resetState()
		value := m.Input.Value()
		return m, func() tea.Msg { return SubmitMsg{Value: value} }, true
	}

	return m, nil, false
}

func (m Model) handleMouse(msg tea.MouseMsg) Model {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m
	}
	i, ok := m.matchAt(msg.Y)
	if !ok {
		return m
	}
	m.setValue(m.state.Matches[i].Name)
	m.resetState()
	return m
}

func (m Model) updateInput(msg tea.Msg) (Model, tea.Cmd) {
	oldVal := m.Input.Value()
	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	if newVal := m.Input.Value(); newVal != oldVal {
		m.valueChanged(newVal)
	}
	return m, cmd
}

func (m *Model) valueChanged(value string) {
	if value == "" {
		m.resetState()
		m.state.Query = ""
		return
	}

	m.state.snapshot(value)
	m.queue.debouncer.Trigger(value)
	m.redraw()
}

func (m Model) dispatchLookup(query string) (Model, tea.Cmd) {
	if query != m.Input.Value() {
		m.logger.Debug("suggestinput skipping lookup for outdated query", zap.String("query", query))
		return m, nil
	}
	if _, ok := m.state.PreviousValue(); !ok {
		// reset since the debouncer fired
		m.logger.Debug("suggestinput skipping lookup after reset", zap.String("query", query))
		return m, nil
	}
	if m.fetcher == nil {
		return m, nil
	}

	m.seq++
	seq := m.seq
	ctx, timeout, fetcher := m.ctx, m.timeout, m.fetcher

	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		matches, err := fetcher.Fetch(ctx, query)
		return matchesMsg{seq: seq, query: query, matches: matches, err: err}
	}
}

func (m Model) receiveMatches(msg matchesMsg) Model {
	if msg.seq != m.seq || msg.query != m.Input.Value() {
		m.logger.Debug(
			"suggestinput discarding stale matches",
			zap.Int("seq", msg.seq),
			zap.Int("latestSeq", m.seq),
			zap.String("query", msg.query),
		)
		return m
	}

	matches := msg.matches
	m.lastErr = msg.err
	if msg.err != nil {
		m.observer.LookupFailed(msg.query, msg.err)
		matches = nil
	}

	m.logger.Debug("suggestinput received matches", zap.String("query", msg.query), zap.Int("count", len(matches)))
	m.state.setMatches(matches)
	m.redraw()
	return m
}

// previewSelection writes the keyboard-selected match into the field.
func (m *Model) previewSelection() {
	if selected, ok := m.state.Selected(); ok {
		m.setValue(selected.Name)
	}
	m.redraw()
}

// resetState hides the suggestions and abandons any pending or in-flight
// lookup.
func (m *Model) resetState() {
	m.queue.debouncer.Cancel()
	m.seq++
	m.state.reset()
	m.redraw()
}

func (m *Model) setValue(value string) {
	m.Input.SetValue(value)
	m.Input.CursorEnd()
}

// redraw pushes the overlay text into the field's ghost completion.
func (m *Model) redraw() {
	overlay := OverlayText(m.state, m.Input.Value())
	if overlay == "" {
		m.Input.SetSuggestions(nil)
		return
	}
	m.Input.SetSuggestions([]string{overlay})
}
