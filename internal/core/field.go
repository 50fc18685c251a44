package core

import (
	"context"
	"errors"

	"github.com/atinylittleshell/gsuggest/internal/config"
	"github.com/atinylittleshell/gsuggest/pkg/suggestinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"go.uber.org/zap"
)

// ErrInterrupted is returned when the user presses Ctrl+C
var ErrInterrupted = errors.New("interrupted by user")

const helpText = "↑/↓ select • tab accept • esc revert • enter submit • ctrl+c quit"

type fieldState int

const (
	Active fieldState = iota
	Submitted
	Interrupted
)

type fieldModel struct {
	input     suggestinput.Model
	state     fieldState
	result    string
	width     int
	helpStyle lipgloss.Style
}

// listOffsetY is the screen row of the first suggestion, right below the
// single field line.
const listOffsetY = 1

func newFieldModel(input suggestinput.Model) fieldModel {
	input.ListOffsetY = listOffsetY
	return fieldModel{
		input:     input,
		state:     Active,
		helpStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

func (m fieldModel) Init() tea.Cmd {
	return m.input.Init()
}

func (m fieldModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width
		return m, nil

	case suggestinput.SubmitMsg:
		m.result = msg.Value
		m.state = Submitted
		return m, tea.Quit

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.state = Interrupted
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m fieldModel) View() string {
	if m.state != Active {
		return ""
	}
	help := helpText
	if m.width > 0 {
		help = truncate.StringWithTail(help, uint(m.width), "…")
	}
	return m.input.View() + "\n" + m.helpStyle.Render(help)
}

// NewField builds the suggestion widget described by cfg.
func NewField(ctx context.Context, cfg config.LookupConfig, fetcher suggestinput.Fetcher, logger *zap.Logger) suggestinput.Model {
	return suggestinput.New(
		suggestinput.WithContext(ctx),
		suggestinput.WithFetcher(fetcher),
		suggestinput.WithLogger(logger),
		suggestinput.WithDelay(cfg.Delay),
		suggestinput.WithTimeout(cfg.Timeout),
		suggestinput.WithMaxVisible(cfg.MaxVisible),
		suggestinput.WithPrompt(cfg.Prompt),
		suggestinput.WithPlaceholder(cfg.Placeholder),
	)
}

// programOptions runs the field on the alternate screen. Mouse rows are then
// relative to the field line at the top, which is what listOffsetY assumes.
func programOptions(ctx context.Context) []tea.ProgramOption {
	return []tea.ProgramOption{
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	}
}

// RunInteractiveField shows the field until the user submits a value.
func RunInteractiveField(ctx context.Context, cfg config.LookupConfig, fetcher suggestinput.Fetcher, logger *zap.Logger) (string, error) {
	input := NewField(ctx, cfg, fetcher, logger)
	defer input.Close()

	p := tea.NewProgram(newFieldModel(input), programOptions(ctx)...)

	m, err := p.Run()
	if err != nil {
		return "", err
	}

	final, ok := m.(fieldModel)
	if !ok {
		logger.Error("field resulted in an unexpected model")
		return "", errors.New("unexpected model")
	}
	if final.state == Interrupted {
		return "", ErrInterrupted
	}

	logger.Info("field submitted", zap.String("value", final.result))
	return final.result, nil
}
