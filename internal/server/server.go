package server

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/iwvelando/compound-curves/internal/chart"
	"github.com/iwvelando/compound-curves/internal/curve"
	"github.com/iwvelando/compound-curves/internal/report"
	"github.com/iwvelando/compound-curves/internal/session"
	"github.com/iwvelando/compound-curves/internal/store"
	"github.com/iwvelando/compound-curves/pkg/constants"
	"github.com/iwvelando/compound-curves/pkg/mathutil"
	"github.com/iwvelando/compound-curves/pkg/output"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed static/*
var staticFiles embed.FS

// Options configure the HTTP handler.
type Options struct {
	MaxBodySize int64
	SessionTTL  time.Duration
	Palette     []string
	Defaults    session.Params
	Version     string
}

type handler struct {
	logger      *zap.Logger
	maxBodySize int64
	version     string
	sessions    *registry
}

// NewHandler constructs the HTTP handler that serves the web UI and calculator API.
func NewHandler(logger *zap.Logger, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = constants.DefaultMaxBodySizeBytes
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = DefaultConfig().SessionTTLDuration()
	}
	if opts.Defaults == (session.Params{}) {
		opts.Defaults = session.DefaultParams()
	}

	trimmedVersion := strings.TrimSpace(opts.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:      logger,
		maxBodySize: opts.MaxBodySize,
		version:     trimmedVersion,
		sessions:    newRegistry(opts.SessionTTL, opts.Palette, opts.Defaults),
	}

	mux := http.NewServeMux()

	// Render pass: parameters plus an optional commit/reset action
	mux.HandleFunc("/api/render", h.handleRender)

	// Current session state without changes
	mux.HandleFunc("/api/state", h.handleState)

	// Multi-curve chart of the stored curves
	mux.HandleFunc("/api/chart.svg", h.handleChart)

	// Stored curve downloads
	mux.HandleFunc("/api/export.yaml", h.handleExportYAML)
	mux.HandleFunc("/api/export.csv", h.handleExportCSV)
	mux.HandleFunc("/api/report.pdf", h.handleReport)

	// Version endpoint for UI metadata
	mux.HandleFunc("/api/version", h.handleVersion)

	// Static assets (web UI)
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(fmt.Sprintf("failed to prepare embedded static files: %v", err))
	}
	mux.Handle("/", http.FileServer(http.FS(sub)))

	return mux
}

type renderRequest struct {
	Mode        string   `json:"mode"`
	Principal   *float64 `json:"principal"`
	Years       *int     `json:"years"`
	RatePercent *float64 `json:"ratePercent"`
	Action      string   `json:"action"`
}

type renderResponse struct {
	Mode        string        `json:"mode"`
	ModeTitle   string        `json:"modeTitle"`
	Principal   float64       `json:"principal"`
	Years       int           `json:"years"`
	RatePercent float64       `json:"ratePercent"`
	Label       string        `json:"label"`
	Rows        []session.Row `json:"rows"`
	Curves      []store.Curve `json:"curves"`
	NextColor   string        `json:"nextColor"`
	ModeChanged bool          `json:"modeChanged"`
	CommittedID string        `json:"committedId,omitempty"`
	ChartURL    string        `json:"chartUrl"`
	Bounds      inputBounds   `json:"bounds"`
	Duration    string        `json:"duration"`
}

type inputBounds struct {
	MinPrincipal   float64 `json:"minPrincipal"`
	MaxPrincipal   float64 `json:"maxPrincipal"`
	PrincipalStep  float64 `json:"principalStep"`
	MinYears       int     `json:"minYears"`
	MaxYears       int     `json:"maxYears"`
	MinRatePercent float64 `json:"minRatePercent"`
	MaxRatePercent float64 `json:"maxRatePercent"`
	RateStep       float64 `json:"rateStep"`
}

var widgetBounds = inputBounds{
	MinPrincipal:   constants.MinPrincipal,
	MaxPrincipal:   constants.MaxPrincipal,
	PrincipalStep:  constants.PrincipalStep,
	MinYears:       constants.MinYears,
	MaxYears:       constants.MaxYears,
	MinRatePercent: constants.MinRatePercent,
	MaxRatePercent: constants.MaxRatePercent,
	RateStep:       constants.RatePercentStep,
}

// exportDocument is the YAML layout of /api/export.yaml.
type exportDocument struct {
	Mode    string        `yaml:"mode"`
	Palette []string      `yaml:"palette"`
	Curves  []store.Curve `yaml:"curves"`
}

func (h *handler) handleRender(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	const op = "server.handleRender"
	start := time.Now()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxBodySize), op)
			return
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return
	}

	action, err := session.ParseAction(req.Action)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	sess := h.session(w, r)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	params, err := mergeParams(sess.params, req)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	h.render(w, sess, params, action, start, op)
}

func (h *handler) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	sess := h.session(w, r)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	h.render(w, sess, sess.params, session.ActionNone, start, "server.handleState")
}

// render runs one render pass against sess, which must be locked.
func (h *handler) render(w http.ResponseWriter, sess *browserSession, params session.Params, action session.Action, start time.Time, op string) {
	state, frame, err := session.Render(h.logger, sess.state, params, action)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("render failed: %v", err), op)
		return
	}
	sess.state = state
	sess.params = frame.Params

	elapsed := time.Since(start)
	response := renderResponse{
		Mode:        frame.Params.Mode.String(),
		ModeTitle:   frame.Params.Mode.Title(),
		Principal:   frame.Params.Principal,
		Years:       frame.Params.Years,
		RatePercent: mathutil.Round(mathutil.RateToPercent(frame.Params.Rate)),
		Label:       frame.Label,
		Rows:        frame.Rows,
		Curves:      frame.Curves,
		NextColor:   frame.NextColor,
		ModeChanged: frame.ModeChanged,
		CommittedID: frame.CommittedID,
		ChartURL:    fmt.Sprintf("/api/chart.svg?v=%d", time.Now().UnixNano()),
		Bounds:      widgetBounds,
		Duration:    elapsed.String(),
	}

	h.logger.Info("render pass completed",
		zap.String("op", op),
		zap.String("mode", response.Mode),
		zap.String("action", action.String()),
		zap.Int("curves", len(response.Curves)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, response)
}

func (h *handler) handleChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	sess := h.session(w, r)
	sess.mu.Lock()
	curves := sess.state.Store.All()
	params := sess.params
	sess.mu.Unlock()

	var buf bytes.Buffer
	err := chart.SVG(&buf, chart.FromCurves(curves), chart.Options{
		Title:     params.Mode.Title(),
		Principal: params.Principal,
		Years:     params.Years,
	})
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), "server.handleChart")
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	h.write(w, buf.Bytes(), "server.handleChart")
}

func (h *handler) handleExportYAML(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	sess := h.session(w, r)
	sess.mu.Lock()
	doc := exportDocument{
		Mode:    sess.state.Mode.String(),
		Palette: sess.state.Store.Palette(),
		Curves:  sess.state.Store.All(),
	}
	sess.mu.Unlock()

	data, err := yaml.Marshal(doc)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to encode curves: %v", err), "server.handleExportYAML")
		return
	}

	w.Header().Set("Content-Type", "application/x-yaml")
	w.Header().Set("Content-Disposition", `attachment; filename="curves.yaml"`)
	h.write(w, data, "server.handleExportYAML")
}

func (h *handler) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	sess := h.session(w, r)
	sess.mu.Lock()
	curves := sess.state.Store.All()
	sess.mu.Unlock()

	var buf bytes.Buffer
	output.CurvesCsv(&buf, curves)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="curves.csv"`)
	h.write(w, buf.Bytes(), "server.handleExportCSV")
}

func (h *handler) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	const op = "server.handleReport"
	sess := h.session(w, r)
	sess.mu.Lock()
	state, frame, err := session.Render(h.logger, sess.state, sess.params, session.ActionNone)
	if err == nil {
		sess.state = state
	}
	sess.mu.Unlock()
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("render failed: %v", err), op)
		return
	}

	var buf bytes.Buffer
	if err := report.PDF(&buf, frame); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="compound-curves.pdf"`)
	h.write(w, buf.Bytes(), op)
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// session resolves the caller's session from its cookie, issuing a new
// cookie when the session is unknown or expired.
func (h *handler) session(w http.ResponseWriter, r *http.Request) *browserSession {
	var id string
	if cookie, err := r.Cookie(constants.SessionCookieName); err == nil {
		id = cookie.Value
	}

	id, sess, created := h.sessions.lookup(id)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     constants.SessionCookieName,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		h.logger.Debug("session started",
			zap.String("op", "server.session"),
			zap.String("session", id),
		)
	}
	return sess
}

// mergeParams overlays the fields present in req onto the session's last
// parameters. Range clamping happens in the render pass.
func mergeParams(current session.Params, req renderRequest) (session.Params, error) {
	params := current
	if strings.TrimSpace(req.Mode) != "" {
		mode, err := curve.ParseMode(req.Mode)
		if err != nil {
			return params, err
		}
		params.Mode = mode
	}
	if req.Principal != nil {
		params.Principal = *req.Principal
	}
	if req.Years != nil {
		params.Years = *req.Years
	}
	if req.RatePercent != nil {
		params.Rate = mathutil.PercentToRate(*req.RatePercent)
	}
	return params, nil
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

// writeJSON encodes payload before writing any header, so an encoding
// failure is reported as a 500 instead of an empty 200.
func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		h.logger.Error("failed to encode JSON response",
			zap.String("op", "server.writeJSON"),
			zap.Error(err),
		)
		buf.Reset()
		_ = json.NewEncoder(&buf).Encode(map[string]string{"error": "failed to encode response"})
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Warn("failed to write response",
			zap.String("op", "server.writeJSON"),
			zap.Error(err),
		)
	}
}

func (h *handler) write(w http.ResponseWriter, data []byte, op string) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Warn("failed to write response",
			zap.String("op", op),
			zap.Error(err),
		)
	}
}
