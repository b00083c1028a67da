package server

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/iwvelando/compound-curves/internal/curve"
	"github.com/iwvelando/compound-curves/internal/session"
	"github.com/iwvelando/compound-curves/pkg/constants"
	"github.com/iwvelando/compound-curves/pkg/testutil"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type client struct {
	t       *testing.T
	handler http.Handler
	cookie  *http.Cookie
}

func newClient(t *testing.T) *client {
	t.Helper()
	return &client{t: t, handler: NewHandler(zap.NewNop(), Options{Version: "test"})}
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	c.t.Helper()
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	rr := httptest.NewRecorder()
	c.handler.ServeHTTP(rr, req)
	for _, cookie := range rr.Result().Cookies() {
		if cookie.Name == constants.SessionCookieName {
			c.cookie = cookie
		}
	}
	return rr
}

func (c *client) render(payload map[string]interface{}) renderResponse {
	c.t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		c.t.Fatalf("failed to marshal payload: %v", err)
	}
	rr := c.do(httptest.NewRequest(http.MethodPost, "/api/render", bytes.NewReader(body)))
	if rr.Code != http.StatusOK {
		c.t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp renderResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		c.t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func TestHandleRenderPreview(t *testing.T) {
	c := newClient(t)
	resp := c.render(map[string]interface{}{"mode": "fv", "principal": 100, "years": 10, "ratePercent": 5})

	if c.cookie == nil {
		t.Fatal("expected a session cookie")
	}
	if len(resp.Rows) != 11 {
		t.Fatalf("expected 11 rows, got %d", len(resp.Rows))
	}
	if resp.Rows[10].Display != "€162.89" {
		t.Errorf("year 10 display = %s", resp.Rows[10].Display)
	}
	if len(resp.Curves) != 0 {
		t.Errorf("expected no stored curves, got %d", len(resp.Curves))
	}
	if resp.Bounds.MaxYears != constants.MaxYears || resp.Bounds.PrincipalStep != constants.PrincipalStep {
		t.Errorf("unexpected bounds %+v", resp.Bounds)
	}
	if resp.ChartURL == "" || resp.Duration == "" {
		t.Error("expected chart URL and duration")
	}
}

func TestHandleRenderCommitResetAndModeSwitch(t *testing.T) {
	c := newClient(t)
	c.render(map[string]interface{}{"mode": "fv", "action": "commit"})
	resp := c.render(map[string]interface{}{"ratePercent": 8, "action": "commit"})

	if len(resp.Curves) != 2 {
		t.Fatalf("expected 2 curves, got %d", len(resp.Curves))
	}
	if resp.Curves[0].Color != constants.DefaultPalette[0] || resp.Curves[1].Color != constants.DefaultPalette[1] {
		t.Errorf("unexpected colors %s, %s", resp.Curves[0].Color, resp.Curves[1].Color)
	}
	if resp.CommittedID != resp.Curves[1].ID {
		t.Errorf("committed id %s does not match last curve %s", resp.CommittedID, resp.Curves[1].ID)
	}
	if resp.RatePercent != 8 {
		t.Errorf("expected rate to persist as 8%%, got %v", resp.RatePercent)
	}

	resp = c.render(map[string]interface{}{"mode": "pv"})
	if !resp.ModeChanged || len(resp.Curves) != 0 {
		t.Fatalf("expected mode switch to clear curves, got %d (changed=%v)", len(resp.Curves), resp.ModeChanged)
	}

	c.render(map[string]interface{}{"action": "commit"})
	resp = c.render(map[string]interface{}{"action": "reset"})
	if len(resp.Curves) != 0 {
		t.Fatalf("expected reset to clear curves, got %d", len(resp.Curves))
	}
}

func TestHandleRenderClampsInputs(t *testing.T) {
	c := newClient(t)
	resp := c.render(map[string]interface{}{"principal": 99999, "years": 200, "ratePercent": 45})

	if resp.Principal != constants.MaxPrincipal || resp.Years != constants.MaxYears || resp.RatePercent != constants.MaxRatePercent {
		t.Errorf("expected clamped inputs, got %v/%d/%v", resp.Principal, resp.Years, resp.RatePercent)
	}
	if len(resp.Rows) != constants.MaxYears+1 {
		t.Errorf("expected %d rows, got %d", constants.MaxYears+1, len(resp.Rows))
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	handler := NewHandler(zap.NewNop(), Options{})
	a := &client{t: t, handler: handler}
	b := &client{t: t, handler: handler}

	a.render(map[string]interface{}{"action": "commit"})
	resp := b.render(map[string]interface{}{})
	if len(resp.Curves) != 0 {
		t.Fatalf("second session sees %d curves from the first", len(resp.Curves))
	}
	if a.cookie.Value == b.cookie.Value {
		t.Fatal("expected distinct session ids")
	}
}

func TestHandleRenderErrors(t *testing.T) {
	tests := []struct {
		name   string
		method string
		body   string
		status int
	}{
		{"wrong method", http.MethodGet, "", http.StatusMethodNotAllowed},
		{"malformed json", http.MethodPost, "{", http.StatusBadRequest},
		{"unknown mode", http.MethodPost, `{"mode":"npv"}`, http.StatusBadRequest},
		{"unknown action", http.MethodPost, `{"action":"delete"}`, http.StatusBadRequest},
		{"too large", http.MethodPost, `{"mode":"` + strings.Repeat("f", int(constants.DefaultMaxBodySizeBytes)) + `"}`, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClient(t)
			rr := c.do(httptest.NewRequest(tt.method, "/api/render", strings.NewReader(tt.body)))
			if rr.Code != tt.status {
				t.Fatalf("expected status %d, got %d: %s", tt.status, rr.Code, rr.Body.String())
			}
			if tt.status != http.StatusMethodNotAllowed && !strings.Contains(rr.Body.String(), `"error"`) {
				t.Errorf("expected JSON error body, got %s", rr.Body.String())
			}
		})
	}
}

func TestHandleState(t *testing.T) {
	c := newClient(t)
	c.render(map[string]interface{}{"years": 3, "action": "commit"})

	rr := c.do(httptest.NewRequest(http.MethodGet, "/api/state", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var resp renderResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Years != 3 || len(resp.Curves) != 1 {
		t.Errorf("expected state to persist, got years=%d curves=%d", resp.Years, len(resp.Curves))
	}
}

func TestHandleChart(t *testing.T) {
	c := newClient(t)
	c.render(map[string]interface{}{"action": "commit"})

	rr := c.do(httptest.NewRequest(http.MethodGet, "/api/chart.svg", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("unexpected content type %s", ct)
	}
	if !strings.Contains(rr.Body.String(), "<svg") {
		t.Error("expected SVG body")
	}
}

func TestHandleExports(t *testing.T) {
	c := newClient(t)
	c.render(map[string]interface{}{"action": "commit"})
	c.render(map[string]interface{}{"ratePercent": 0, "action": "commit"})

	rr := c.do(httptest.NewRequest(http.MethodGet, "/api/export.yaml", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("yaml export status %d", rr.Code)
	}
	var doc exportDocument
	if err := yaml.Unmarshal(rr.Body.Bytes(), &doc); err != nil {
		t.Fatalf("failed to parse exported YAML: %v", err)
	}
	if doc.Mode != "fv" || len(doc.Curves) != 2 || len(doc.Palette) != len(constants.DefaultPalette) {
		t.Errorf("unexpected export %+v", doc)
	}
	flat := testutil.FindCurve(doc.Curves, "FV €100.00 @ 0.0% / 10y")
	if flat == nil {
		t.Fatal("expected the zero-rate curve in the export")
	}
	for year, value := range testutil.Values(flat.Points) {
		if value != 100 {
			t.Errorf("zero-rate curve year %d = %v, expected 100", year, value)
		}
	}

	rr = c.do(httptest.NewRequest(http.MethodGet, "/api/export.csv", nil))
	if rr.Code != http.StatusOK || !strings.HasPrefix(rr.Body.String(), `"year","FV €100.00 @ 5.0% / 10y"`) {
		t.Errorf("unexpected csv export %d: %s", rr.Code, rr.Body.String())
	}

	rr = c.do(httptest.NewRequest(http.MethodGet, "/api/report.pdf", nil))
	if rr.Code != http.StatusOK || !strings.HasPrefix(rr.Body.String(), "%PDF-") {
		t.Errorf("unexpected pdf report %d", rr.Code)
	}
}

func TestHandleVersionAndStatic(t *testing.T) {
	c := newClient(t)

	rr := c.do(httptest.NewRequest(http.MethodGet, "/api/version", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"test"`) {
		t.Errorf("unexpected version response %d: %s", rr.Code, rr.Body.String())
	}

	rr = c.do(httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Compound Interest Curves") {
		t.Errorf("unexpected index response %d", rr.Code)
	}

	for _, path := range []string{"/api/chart.svg", "/api/export.yaml", "/api/export.csv", "/api/report.pdf", "/api/version", "/api/state"} {
		rr = c.do(httptest.NewRequest(http.MethodPost, path, nil))
		if rr.Code != http.StatusMethodNotAllowed {
			t.Errorf("POST %s: expected 405, got %d", path, rr.Code)
		}
	}
}

func TestRegistryExpiresIdleSessions(t *testing.T) {
	reg := newRegistry(time.Minute, nil, Options{}.Defaults)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return now }

	id, first, created := reg.lookup("")
	if !created || id == "" {
		t.Fatal("expected a new session")
	}
	if _, again, created := reg.lookup(id); created || again != first {
		t.Fatal("expected the same session on lookup")
	}

	now = now.Add(2 * time.Minute)
	newID, _, created := reg.lookup(id)
	if !created || newID == id {
		t.Fatal("expected expired session to be replaced")
	}
	if reg.len() != 1 {
		t.Errorf("expected 1 live session, got %d", reg.len())
	}
}

func TestNotANumberDefaultsAreClamped(t *testing.T) {
	c := &client{t: t, handler: NewHandler(nil, Options{
		Defaults: session.Params{Mode: curve.FutureValue, Principal: math.NaN(), Years: 10, Rate: math.NaN()},
	})}

	rr := c.do(httptest.NewRequest(http.MethodGet, "/api/state", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp renderResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Principal != constants.MinPrincipal || resp.RatePercent != constants.MinRatePercent {
		t.Errorf("expected lower bounds, got principal=%v rate=%v", resp.Principal, resp.RatePercent)
	}
	if resp.Rows[0].Display != "€1.00" {
		t.Errorf("year 0 display = %s", resp.Rows[0].Display)
	}
}

func TestWriteJSONEncodingFailure(t *testing.T) {
	h := &handler{logger: zap.NewNop()}
	rr := httptest.NewRecorder()

	h.writeJSON(rr, http.StatusOK, map[string]float64{"value": math.NaN()})

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"error"`) {
		t.Errorf("expected JSON error body, got %q", rr.Body.String())
	}
}
