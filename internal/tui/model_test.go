package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/iwvelando/compound-curves/internal/curve"
	"github.com/iwvelando/compound-curves/internal/session"
	"go.uber.org/zap"
)

func press(t *testing.T, m Model, keys ...tea.KeyMsg) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		var ok bool
		m, ok = next.(Model)
		if !ok {
			t.Fatalf("Update returned %T", next)
		}
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewRendersPreview(t *testing.T) {
	m := New(zap.NewNop(), nil, session.DefaultParams())
	if m.err != nil {
		t.Fatalf("unexpected error %v", m.err)
	}
	if len(m.frame.Rows) != 11 {
		t.Fatalf("expected 11 rows, got %d", len(m.frame.Rows))
	}
	if !strings.Contains(m.View(), "€162.89") {
		t.Error("expected the final value in the view")
	}
}

func TestCommitResetAndModeToggle(t *testing.T) {
	m := New(nil, []string{"#ff0000", "#0000ff"}, session.DefaultParams())

	m = press(t, m, runes("c"), runes("c"))
	if len(m.frame.Curves) != 2 {
		t.Fatalf("expected 2 curves, got %d", len(m.frame.Curves))
	}
	if m.frame.Curves[1].Color != "#0000ff" {
		t.Errorf("second curve color %s", m.frame.Curves[1].Color)
	}

	m = press(t, m, runes("m"))
	if m.frame.Params.Mode != curve.PresentValue {
		t.Fatalf("expected PV after toggle, got %s", m.frame.Params.Mode)
	}
	if len(m.frame.Curves) != 0 {
		t.Fatalf("expected mode toggle to clear curves, got %d", len(m.frame.Curves))
	}

	m = press(t, m, runes("c"), runes("r"))
	if len(m.frame.Curves) != 0 {
		t.Fatalf("expected reset to clear curves, got %d", len(m.frame.Curves))
	}
}

func TestAdjustFieldsUsesWidgetSteps(t *testing.T) {
	m := New(nil, nil, session.DefaultParams())

	m = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if m.frame.Params.Principal != 110 {
		t.Errorf("principal = %v, expected 110", m.frame.Params.Principal)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyLeft})
	if m.frame.Params.Years != 9 || len(m.frame.Rows) != 10 {
		t.Errorf("years = %d with %d rows", m.frame.Params.Years, len(m.frame.Rows))
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyRight}, tea.KeyMsg{Type: tea.KeyRight})
	if got := m.frame.Params.Rate; got < 0.0519 || got > 0.0521 {
		t.Errorf("rate = %v, expected 0.052", got)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyUp}, tea.KeyMsg{Type: tea.KeyUp})
	for i := 0; i < 20; i++ {
		m = press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	}
	if m.frame.Params.Principal != 1 {
		t.Errorf("principal should clamp at 1, got %v", m.frame.Params.Principal)
	}
}

func TestQuit(t *testing.T) {
	m := New(nil, nil, session.DefaultParams())
	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestWindowSize(t *testing.T) {
	m := New(nil, nil, session.DefaultParams())
	next, _ := m.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	m = next.(Model)
	if m.chartWidth() != 90 {
		t.Errorf("chartWidth() = %d, expected 90", m.chartWidth())
	}
	if !strings.Contains(m.View(), "Compound Interest Curves") {
		t.Error("expected title in view")
	}
}
