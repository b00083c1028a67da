// Package session runs one render pass of the calculator: it clamps the
// user's parameters, applies the mode-switch and action rules to the stored
// curves, and assembles everything a rendering surface needs to draw.
package session

import (
	"fmt"
	"strings"

	"github.com/iwvelando/compound-curves/internal/curve"
	"github.com/iwvelando/compound-curves/internal/heat"
	"github.com/iwvelando/compound-curves/internal/store"
	"github.com/iwvelando/compound-curves/pkg/constants"
	"github.com/iwvelando/compound-curves/pkg/format"
	"github.com/iwvelando/compound-curves/pkg/mathutil"
	"github.com/iwvelando/compound-curves/pkg/validation"
	"go.uber.org/zap"
)

// Params are the calculation inputs of a single render pass.
type Params struct {
	Mode      curve.Mode
	Principal float64
	Years     int
	Rate      float64
}

// DefaultParams returns the initial widget values.
func DefaultParams() Params {
	return Params{
		Mode:      curve.FutureValue,
		Principal: constants.DefaultPrincipal,
		Years:     constants.DefaultYears,
		Rate:      mathutil.PercentToRate(constants.DefaultRatePercent),
	}
}

// Clamp limits the parameters to the widget bounds.
func (p Params) Clamp() Params {
	p.Principal = validation.ClampFloat(p.Principal, constants.MinPrincipal, constants.MaxPrincipal)
	p.Years = validation.ClampInt(p.Years, constants.MinYears, constants.MaxYears)
	p.Rate = validation.ClampFloat(p.Rate,
		mathutil.PercentToRate(constants.MinRatePercent), mathutil.PercentToRate(constants.MaxRatePercent))
	return p
}

// Action is a discrete user event delivered with a render pass.
type Action int

const (
	// ActionNone only recomputes the preview.
	ActionNone Action = iota
	// ActionCommit copies the preview curve into the store.
	ActionCommit
	// ActionReset empties the store.
	ActionReset
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionCommit:
		return "commit"
	case ActionReset:
		return "reset"
	}
	return fmt.Sprintf("action(%d)", int(a))
}

func (a Action) valid() bool {
	return a >= ActionNone && a <= ActionReset
}

// ParseAction accepts "", "none", "commit" and "reset".
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return ActionNone, nil
	case "commit", "add":
		return ActionCommit, nil
	case "reset", "clear":
		return ActionReset, nil
	}
	return ActionNone, fmt.Errorf("unknown action %q", s)
}

// State is everything that survives between render passes of one session:
// the mode that was last rendered and the committed curves.
type State struct {
	Mode  curve.Mode
	Store *store.Store
}

// NewState starts a session in Future Value mode with an empty store.
func NewState(palette []string) State {
	return State{Mode: curve.FutureValue, Store: store.New(palette)}
}

// Row is one formatted line of the preview table.
type Row struct {
	Year       int     `json:"year"`
	Value      float64 `json:"value"`
	Display    string  `json:"display"`
	Background string  `json:"background"`
	Foreground string  `json:"foreground"`
}

// Frame is the output of a render pass.
type Frame struct {
	Params      Params
	Label       string
	Preview     []curve.Point
	Rows        []Row
	Curves      []store.Curve
	NextColor   string
	ModeChanged bool
	CommittedID string
}

// Render runs one pass. A mode different from the previously rendered one
// empties the store before the action is applied. The returned State must
// replace the one passed in.
func Render(logger *zap.Logger, state State, params Params, action Action) (State, Frame, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if state.Store == nil {
		return state, Frame{}, fmt.Errorf("session state has no curve store")
	}
	if !action.valid() {
		return state, Frame{}, fmt.Errorf("unsupported action %s", action)
	}

	params = params.Clamp()
	frame := Frame{Params: params}

	if params.Mode != state.Mode {
		logger.Debug("calculation mode changed, clearing stored curves",
			zap.String("op", "session.Render"),
			zap.String("from", state.Mode.String()),
			zap.String("to", params.Mode.String()),
			zap.Int("cleared", state.Store.Len()),
		)
		state.Store.Clear()
		state.Mode = params.Mode
		frame.ModeChanged = true
	}

	frame.Preview = curve.Compute(params.Mode, params.Principal, params.Years, params.Rate)
	if len(frame.Preview) != params.Years+1 {
		return state, frame, fmt.Errorf("preview curve has %d points, expected %d", len(frame.Preview), params.Years+1)
	}
	if first := frame.Preview[0].Value; !mathutil.WithinTolerance(first, mathutil.Round(params.Principal), constants.CurrencyTolerance) {
		return state, frame, fmt.Errorf("preview curve starts at %v, expected the principal %v", first, params.Principal)
	}
	frame.Label = curve.Label(params.Mode, params.Principal, params.Years, params.Rate)

	switch action {
	case ActionNone:
	case ActionCommit:
		frame.CommittedID = state.Store.Add(frame.Label, frame.Preview)
		logger.Debug("curve committed",
			zap.String("op", "session.Render"),
			zap.String("id", frame.CommittedID),
			zap.String("label", frame.Label),
		)
	case ActionReset:
		logger.Debug("stored curves reset",
			zap.String("op", "session.Render"),
			zap.Int("cleared", state.Store.Len()),
		)
		state.Store.Clear()
	}

	frame.Rows = BuildRows(params.Mode, frame.Preview)
	frame.Curves = state.Store.All()
	frame.NextColor = state.Store.NextColor()
	return state, frame, nil
}

// BuildRows formats points as table rows colored by magnitude.
func BuildRows(mode curve.Mode, points []curve.Point) []Row {
	min, max := curve.Bounds(points)
	rows := make([]Row, 0, len(points))
	for _, p := range points {
		bg := heat.ColorFor(p.Value, min, max, mode)
		rows = append(rows, Row{
			Year:       p.Year,
			Value:      p.Value,
			Display:    format.Currency(p.Value),
			Background: bg,
			Foreground: heat.TextColorFor(bg),
		})
	}
	return rows
}
