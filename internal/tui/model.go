// Package tui is a terminal front end for the calculator: the same render
// passes as the web UI, driven by key presses.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/iwvelando/compound-curves/internal/chart"
	"github.com/iwvelando/compound-curves/internal/curve"
	"github.com/iwvelando/compound-curves/internal/session"
	"github.com/iwvelando/compound-curves/pkg/constants"
	"github.com/iwvelando/compound-curves/pkg/format"
	"github.com/iwvelando/compound-curves/pkg/mathutil"
	"go.uber.org/zap"
)

type field int

const (
	fieldPrincipal field = iota
	fieldYears
	fieldRate
	fieldCount
)

// Model is the bubbletea model of one interactive session.
type Model struct {
	logger   *zap.Logger
	state    session.State
	params   session.Params
	frame    session.Frame
	selected field
	width    int
	err      error
}

// New creates a model and performs the first render pass.
func New(logger *zap.Logger, palette []string, params session.Params) Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := Model{
		logger: logger,
		state:  session.NewState(palette),
		params: params,
	}
	return m.pass(session.ActionNone)
}

// Run starts the interactive program and blocks until the user quits.
func Run(logger *zap.Logger, palette []string, params session.Params) error {
	m := New(logger, palette, params)
	if m.err != nil {
		return m.err
	}
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return fmt.Errorf("interactive session failed: %w", err)
	}
	if fm, ok := final.(Model); ok && fm.err != nil {
		return fm.err
	}
	return nil
}

// pass runs a render pass with the current parameters.
func (m Model) pass(action session.Action) Model {
	state, frame, err := session.Render(m.logger, m.state, m.params, action)
	if err != nil {
		m.logger.Error("render pass failed",
			zap.String("op", "tui.pass"),
			zap.Error(err),
		)
		m.err = err
		return m
	}
	m.state = state
	m.params = frame.Params
	m.frame = frame
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if m.err != nil {
			return m, tea.Quit
		}
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.selected = (m.selected + fieldCount - 1) % fieldCount
		case "down", "j", "tab":
			m.selected = (m.selected + 1) % fieldCount
		case "left", "h", "-":
			m.params = m.adjust(-1)
			m = m.pass(session.ActionNone)
		case "right", "l", "+":
			m.params = m.adjust(1)
			m = m.pass(session.ActionNone)
		case "m":
			if m.params.Mode == curve.FutureValue {
				m.params.Mode = curve.PresentValue
			} else {
				m.params.Mode = curve.FutureValue
			}
			m = m.pass(session.ActionNone)
		case "c", "enter":
			m = m.pass(session.ActionCommit)
		case "r":
			m = m.pass(session.ActionReset)
		}
		if m.err != nil {
			return m, tea.Quit
		}
	}
	return m, nil
}

// adjust moves the selected field by one widget step in direction dir.
func (m Model) adjust(dir int) session.Params {
	p := m.params
	switch m.selected {
	case fieldPrincipal:
		p.Principal += float64(dir) * constants.PrincipalStep
	case fieldYears:
		p.Years += dir
	case fieldRate:
		percent := mathutil.RateToPercent(p.Rate) + float64(dir)*constants.RatePercentStep
		p.Rate = mathutil.PercentToRate(mathutil.Round(percent))
	}
	return p.Clamp()
}

// View implements tea.Model.
func (m Model) View() string {
	if m.err != nil {
		return errorStyle.Render("error: "+m.err.Error()) + "\n"
	}

	p := m.frame.Params
	var fields strings.Builder
	fmt.Fprintf(&fields, "%s\n\n", labelStyle.Render("mode ")+p.Mode.Title())
	entries := []struct {
		name  string
		value string
	}{
		{"principal", format.Currency(p.Principal)},
		{"years", fmt.Sprintf("%d", p.Years)},
		{"rate", format.Percent(p.Rate)},
	}
	for i, e := range entries {
		line := fmt.Sprintf("%-10s %12s", e.name, e.value)
		if field(i) == m.selected {
			line = selectedStyle.Render(line)
		}
		fields.WriteString(line + "\n")
	}

	var legend strings.Builder
	if len(m.frame.Curves) == 0 {
		legend.WriteString(labelStyle.Render("no curves yet, press c to add"))
	}
	for _, c := range m.frame.Curves {
		fmt.Fprintf(&legend, "%s %s\n", swatch(c.Color), c.Label)
	}

	left := lipgloss.JoinVertical(lipgloss.Left,
		panelStyle.Render(strings.TrimRight(fields.String(), "\n")),
		panelStyle.Render(strings.TrimRight(legend.String(), "\n")),
		panelStyle.Render(m.table()),
	)

	plot := chart.ASCII(chart.FromCurves(m.frame.Curves), chart.Options{
		Principal: p.Principal,
		Years:     p.Years,
		Width:     m.chartWidth(),
	})

	body := lipgloss.JoinHorizontal(lipgloss.Top, left, panelStyle.Render(plot))
	help := keyHintStyle.Render("↑/↓ select  ←/→ adjust  m mode  c add curve  r reset  q quit")
	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Compound Interest Curves"), body, help) + "\n"
}

func (m Model) table() string {
	var b strings.Builder
	b.WriteString(labelStyle.Render(fmt.Sprintf("%4s %14s", "year", "value")))
	for _, row := range m.frame.Rows {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("%4d ", row.Year))
		b.WriteString(cellStyle(row.Background, row.Foreground).Render(row.Display))
	}
	return b.String()
}

func (m Model) chartWidth() int {
	if m.width <= 0 {
		return 0
	}
	if w := m.width - 50; w > 20 {
		return w
	}
	return 20
}
