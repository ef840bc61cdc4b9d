// Package webui provides the embedded web interface for the meme studio.
// This file contains the StudioAPI organism that exposes the REST endpoints
// the studio front-end drives.
package webui

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"memestudio/core"
	"memestudio/loader"
	"memestudio/metrics"
	"memestudio/session"

	"go.uber.org/zap"
)

// SessionCookieName is the cookie that carries the studio session ID.
const SessionCookieName = "studio_session"

// VersionInfo contains version information returned by the status endpoint.
type VersionInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time,omitempty"`
	GitCommit string `json:"git_commit,omitempty"`
}

// ErrorResponse is the standard error body for all API endpoints.
type ErrorResponse struct {
	// Error is a short machine-readable code
	Error string `json:"error"`

	// Message is a human-readable description
	Message string `json:"message"`
}

// StateResponse wraps a session snapshot with its session ID.
type StateResponse struct {
	SessionID string           `json:"session_id"`
	State     session.Snapshot `json:"state"`
}

// StatusResponse is the body of GET /api/status.
type StatusResponse struct {
	Status         string      `json:"status"`
	Version        VersionInfo `json:"version"`
	Provider       string      `json:"provider"`
	Uptime         string      `json:"uptime"`
	ActiveSessions int         `json:"active_sessions"`
}

// StudioAPIConfig configures the StudioAPI.
type StudioAPIConfig struct {
	// DefaultLimit is the default number of tasks returned by /api/tasks
	DefaultLimit int

	// MaxLimit caps the limit query parameter
	MaxLimit int

	// SecureCookies marks the session cookie as Secure (HTTPS only)
	SecureCookies bool

	// AIRateLimitAttempts is the number of gateway-backed calls a session may
	// make per window before being throttled. Zero disables the limiter.
	AIRateLimitAttempts int

	// AIRateLimitWindowMinutes is the sliding window for counting AI calls
	AIRateLimitWindowMinutes int

	// AIRateLimitBlockMinutes is how long a session is throttled once it
	// exhausts the window
	AIRateLimitBlockMinutes int

	// VersionInfo for the status endpoint
	VersionInfo VersionInfo
}

// DefaultStudioAPIConfig returns sensible API defaults.
func DefaultStudioAPIConfig() StudioAPIConfig {
	return StudioAPIConfig{
		DefaultLimit:             20,
		MaxLimit:                 100,
		AIRateLimitAttempts:      30,
		AIRateLimitWindowMinutes: 1,
		AIRateLimitBlockMinutes:  1,
	}
}

// StudioAPI is an organism that serves the studio's REST endpoints.
// It composes:
//   - session.Store for per-browser studio sessions
//   - loader.Catalog for the template listing
//   - metrics.MetricsCollector for status, task history, and aggregates
//
// Thread-safe for concurrent HTTP requests; all state lives behind the
// session controllers and the metrics collector.
type StudioAPI struct {
	sessions  *session.Store
	catalog   *loader.Catalog
	collector metrics.MetricsCollector
	config    StudioAPIConfig
	logger    *zap.Logger
	startTime time.Time

	// aiLimiter throttles the gateway-backed endpoints per session; nil when
	// disabled
	aiLimiter *RateLimiter
}

// NewStudioAPI creates a new StudioAPI.
func NewStudioAPI(
	sessions *session.Store,
	catalog *loader.Catalog,
	collector metrics.MetricsCollector,
	config StudioAPIConfig,
	logger *zap.Logger,
) *StudioAPI {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.DefaultLimit <= 0 {
		config.DefaultLimit = 20
	}
	if config.MaxLimit <= 0 {
		config.MaxLimit = 100
	}

	var aiLimiter *RateLimiter
	if config.AIRateLimitAttempts > 0 {
		aiLimiter = NewRateLimiter(
			config.AIRateLimitAttempts,
			config.AIRateLimitWindowMinutes,
			config.AIRateLimitBlockMinutes,
		)
	}

	return &StudioAPI{
		sessions:  sessions,
		catalog:   catalog,
		collector: collector,
		config:    config,
		logger:    logger,
		startTime: time.Now(),
		aiLimiter: aiLimiter,
	}
}

// allowAICall applies the per-session rate limit for gateway-backed
// endpoints. Writes a 429 with Retry-After when the session is throttled.
func (a *StudioAPI) allowAICall(w http.ResponseWriter, ctrl *session.Controller) bool {
	if a.aiLimiter == nil {
		return true
	}

	allowed, retryAfter := a.aiLimiter.Allow(ctrl.ID())
	if !allowed {
		w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
		a.writeError(w, http.StatusTooManyRequests, "rate_limited",
			"too many AI requests for this session, try again shortly")
		return false
	}

	a.aiLimiter.RecordAttempt(ctrl.ID())
	return true
}

// RegisterRoutes registers all API endpoints on the given mux.
func (a *StudioAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/image/upload", a.HandleUpload)
	mux.HandleFunc("/api/image/template", a.HandleTemplate)
	mux.HandleFunc("/api/templates", a.HandleTemplates)
	mux.HandleFunc("/api/state", a.HandleState)
	mux.HandleFunc("/api/captions", a.HandleCaptions)
	mux.HandleFunc("/api/captions/clear", a.HandleCaptionsClear)
	mux.HandleFunc("/api/captions/suggest", a.HandleCaptionsSuggest)
	mux.HandleFunc("/api/captions/select", a.HandleCaptionsSelect)
	mux.HandleFunc("/api/edit", a.HandleEdit)
	mux.HandleFunc("/api/analyze", a.HandleAnalyze)
	mux.HandleFunc("/api/preview", a.HandlePreview)
	mux.HandleFunc("/api/export", a.HandleExport)
	mux.HandleFunc("/api/status", a.HandleStatus)
	mux.HandleFunc("/api/tasks", a.HandleTasks)
	mux.HandleFunc("/api/metrics", a.HandleMetrics)
}

// controller resolves the studio session for this request, creating one and
// setting the session cookie when the browser has none (or an expired one).
func (a *StudioAPI) controller(w http.ResponseWriter, r *http.Request) (*session.Controller, error) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		ctrl, err := a.sessions.Get(cookie.Value)
		if err == nil {
			return ctrl, nil
		}
		if !errors.Is(err, session.ErrSessionNotFound) && !errors.Is(err, session.ErrSessionExpired) {
			return nil, err
		}
	}

	ctrl, err := a.sessions.Create()
	if err != nil {
		return nil, err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    ctrl.ID(),
		Path:     "/",
		HttpOnly: true,
		Secure:   a.config.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	return ctrl, nil
}

// HandleUpload handles POST /api/image/upload.
// Accepts either a multipart form with an "image" field or a raw image body.
func (a *StudioAPI) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if !a.requireMethod(w, r, http.MethodPost) {
		return
	}

	ctrl, err := a.controller(w, r)
	if err != nil {
		a.writeError(w, http.StatusInternalServerError, "session_error", err.Error())
		return
	}

	body := r.Body
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		file, _, err := r.FormFile("image")
		if err != nil {
			a.writeError(w, http.StatusBadRequest, "bad_upload", "multipart form must carry an \"image\" file field")
			return
		}
		defer file.Close()
		body = file
	}

	snap, err := ctrl.LoadUpload(body)
	if err != nil {
		a.writeTaskError(w, err)
		return
	}

	a.writeState(w, ctrl, snap)
}

// templateRequest is the body of POST /api/image/template.
type templateRequest struct {
	TemplateID string `json:"template_id"`
}

// HandleTemplate handles POST /api/image/template.
func (a *StudioAPI) HandleTemplate(w http.ResponseWriter, r *http.Request) {
	if !a.requireMethod(w, r, http.MethodPost) {
		return
	}

	var req templateRequest
	if !a.decodeBody(w, r, &req) {
		return
	}
	if req.TemplateID == "" {
		a.writeError(w, http.StatusBadRequest, "missing_template", "template_id is required")
		return
	}

	ctrl, err := a.controller(w, r)
	if err != nil {
		a.writeError(w, http.StatusInternalServerError, "session_error", err.Error())
		return
	}

	snap, err := ctrl.LoadTemplate(r.Context(), req.TemplateID)
	if err != nil {
		a.writeTaskError(w, err)
		return
	}

	a.writeState(w, ctrl, snap)
}

// HandleTemplates handles GET /api/templates.
func (a *StudioAPI) HandleTemplates(w http.ResponseWriter, r *http.Request) {
	if !a.requireMethod(w, r, http.MethodGet) {
		return
	}

	a.writeJSON(w, http.StatusOK, map[string]interface{}{
		"templates": a.catalog.List(),
	})
}

// HandleState handles GET /api/state.
func (a *StudioAPI) HandleState(w http.ResponseWriter, r *http.Request) {
	if !a.requireMethod(w, r, http.MethodGet) {
		return
	}

	ctrl, err := a.controller(w, r)
	if err != nil {
		a.writeError(w, http.StatusInternalServerError, "session_error", err.Error())
		return
	}

	a.writeState(w, ctrl, ctrl.SnapshotState())
}

// captionsRequest is the body of POST /api/captions.
type captionsRequest struct {
	Top    string `json:"top"`
	Bottom string `json:"bottom"`
}

// HandleCaptions handles POST /api/captions (manual top/bottom text).
func (a *StudioAPI) HandleCaptions(w http.ResponseWriter, r *http.Request) {
	if !a.requireMethod(w, r, http.MethodPost) {
		return
	}

	var req captionsRequest
	if !a.decodeBody(w, r, &req) {
		return
	}

	ctrl, err := a.controller(w, r)
	if err != nil {
		a.writeError(w, http.StatusInternalServerError, "session_error", err.Error())
		return
	}

	snap, err := ctrl.SetManualCaptions(req.Top, req.Bottom)
	if err != nil {
		a.writeTaskError(w, err)
		return
	}

	a.writeState(w, ctrl, snap)
}

// HandleCaptionsClear handles POST /api/captions/clear.
func (a *StudioAPI) HandleCaptionsClear(w http.ResponseWriter, r *http.Request) {
	if !a.requireMethod(w, r, http.MethodPost) {
		return
	}

	ctrl, err := a.controller(w, r)
	if err != nil {
		a.writeError(w, http.StatusInternalServerError, "session_error", err.Error())
		return
	}

	snap, err := ctrl.ClearCaptions()
	if err != nil {
		a.writeTaskError(w, err)
		return
	}

	a.writeState(w, ctrl, snap)
}

// HandleCaptionsSuggest handles POST /api/captions/suggest.
func (a *StudioAPI) HandleCaptionsSuggest(w http.ResponseWriter, r *http.Request) {
	if !a.requireMethod(w, r, http.MethodPost) {
		return
	}

	ctrl, err := a.controller(w, r)
	if err != nil {
		a.writeError(w, http.StatusInternalServerError, "session_error", err.Error())
		return
	}
	if !a.allowAICall(w, ctrl) {
		return
	}

	snap, err := ctrl.SuggestCaptions(r.Context())
	if err != nil {
		a.writeTaskError(w, err)
		return
	}

	a.writeState(w, ctrl, snap)
}

// selectRequest is the body of POST /api/captions/select.
type selectRequest struct {
	Text string `json:"text"`
}

// HandleCaptionsSelect handles POST /api/captions/select.
func (a *StudioAPI) HandleCaptionsSelect(w http.ResponseWriter, r *http.Request) {
	if !a.requireMethod(w, r, http.MethodPost) {
		return
	}

	var req selectRequest
	if !a.decodeBody(w, r, &req) {
		return
	}

	ctrl, err := a.controller(w, r)
	if err != nil {
		a.writeError(w, http.StatusInternalServerError, "session_error", err.Error())
		return
	}

	snap, err := ctrl.SelectCaption(req.Text)
	if err != nil {
		a.writeTaskError(w, err)
		return
	}

	a.writeState(w, ctrl, snap)
}

// editRequest is the body of POST /api/edit.
type editRequest struct {
	Instruction string `json:"instruction"`
}

// HandleEdit handles POST /api/edit.
func (a *StudioAPI) HandleEdit(w http.ResponseWriter, r *http.Request) {
	if !a.requireMethod(w, r, http.MethodPost) {
		return
	}

	var req editRequest
	if !a.decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Instruction) == "" {
		a.writeError(w, http.StatusBadRequest, "missing_instruction", "instruction is required")
		return
	}

	ctrl, err := a.controller(w, r)
	if err != nil {
		a.writeError(w, http.StatusInternalServerError, "session_error", err.Error())
		return
	}
	if !a.allowAICall(w, ctrl) {
		return
	}

	snap, err := ctrl.Edit(r.Context(), req.Instruction)
	if err != nil {
		a.writeTaskError(w, err)
		return
	}

	a.writeState(w, ctrl, snap)
}

// HandleAnalyze handles POST /api/analyze.
func (a *StudioAPI) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	if !a.requireMethod(w, r, http.MethodPost) {
		return
	}

	ctrl, err := a.controller(w, r)
	if err != nil {
		a.writeError(w, http.StatusInternalServerError, "session_error", err.Error())
		return
	}
	if !a.allowAICall(w, ctrl) {
		return
	}

	snap, err := ctrl.Analyze(r.Context())
	if err != nil {
		a.writeTaskError(w, err)
		return
	}

	a.writeState(w, ctrl, snap)
}

// HandlePreview handles GET /api/preview.
// Serves the current composited surface inline as PNG, or 204 when the
// session has no image yet.
func (a *StudioAPI) HandlePreview(w http.ResponseWriter, r *http.Request) {
	if !a.requireMethod(w, r, http.MethodGet) {
		return
	}

	ctrl, err := a.controller(w, r)
	if err != nil {
		a.writeError(w, http.StatusInternalServerError, "session_error", err.Error())
		return
	}

	surfaceID, png, err := ctrl.Surface()
	if err != nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("ETag", `"`+surfaceID+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// HandleExport handles GET /api/export.
// Serves the current surface as a PNG attachment, or 204 when empty.
func (a *StudioAPI) HandleExport(w http.ResponseWriter, r *http.Request) {
	if !a.requireMethod(w, r, http.MethodGet) {
		return
	}

	ctrl, err := a.controller(w, r)
	if err != nil {
		a.writeError(w, http.StatusInternalServerError, "session_error", err.Error())
		return
	}

	surfaceID, png, err := ctrl.Surface()
	if err != nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if a.collector != nil {
		a.collector.RecordExport()
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", `attachment; filename="meme-`+surfaceID+`.png"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// HandleStatus handles GET /api/status.
func (a *StudioAPI) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if !a.requireMethod(w, r, http.MethodGet) {
		return
	}

	status := StatusResponse{
		Status:         metrics.SystemHealthRunning,
		Version:        a.config.VersionInfo,
		Uptime:         FormatDuration(time.Since(a.startTime)),
		ActiveSessions: a.sessions.Count(),
	}
	if a.collector != nil {
		sys := a.collector.GetSystemStatus()
		status.Status = sys.Health
		status.Provider = sys.Provider
	}

	a.writeJSON(w, http.StatusOK, status)
}

// HandleTasks handles GET /api/tasks?limit=N.
func (a *StudioAPI) HandleTasks(w http.ResponseWriter, r *http.Request) {
	if !a.requireMethod(w, r, http.MethodGet) {
		return
	}

	limit := a.config.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			a.writeError(w, http.StatusBadRequest, "bad_limit", "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	if limit > a.config.MaxLimit {
		limit = a.config.MaxLimit
	}

	tasks := []metrics.TaskRecord{}
	if a.collector != nil {
		tasks = a.collector.GetRecentTasks(limit)
	}

	a.writeJSON(w, http.StatusOK, map[string]interface{}{
		"tasks": tasks,
		"count": len(tasks),
	})
}

// HandleMetrics handles GET /api/metrics.
func (a *StudioAPI) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	if !a.requireMethod(w, r, http.MethodGet) {
		return
	}

	var taskMetrics metrics.TaskMetrics
	if a.collector != nil {
		taskMetrics = a.collector.GetTaskMetrics()
	}

	a.writeJSON(w, http.StatusOK, taskMetrics)
}

// requireMethod enforces the HTTP method, writing 405 on mismatch.
func (a *StudioAPI) requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.Header().Set("Allow", method)
		a.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use "+method)
		return false
	}
	return true
}

// decodeBody decodes a JSON request body, writing 400 on malformed input.
func (a *StudioAPI) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		a.writeError(w, http.StatusBadRequest, "bad_json", "request body must be valid JSON")
		return false
	}
	return true
}

// writeState writes a session snapshot response.
func (a *StudioAPI) writeState(w http.ResponseWriter, ctrl *session.Controller, snap session.Snapshot) {
	a.writeJSON(w, http.StatusOK, StateResponse{
		SessionID: ctrl.ID(),
		State:     snap,
	})
}

// writeTaskError maps a session or loader error to an HTTP status.
//
// Mapping:
//   - rejected source image (decode, size, format): 422
//   - upstream AI provider failure: 502
//   - another task of the same kind in flight: 409
//   - caller mistakes (no image, unknown suggestion): 400
func (a *StudioAPI) writeTaskError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrBusy):
		a.writeError(w, http.StatusConflict, "busy", err.Error())
	case errors.Is(err, session.ErrNoImage):
		a.writeError(w, http.StatusBadRequest, "no_image", err.Error())
	case errors.Is(err, session.ErrUnknownSuggestion):
		a.writeError(w, http.StatusBadRequest, "unknown_suggestion", err.Error())
	default:
		if loadErr, ok := core.AsLoadError(err); ok {
			a.writeError(w, http.StatusUnprocessableEntity, loadErr.Code, loadErr.Message)
			return
		}
		if reqErr, ok := core.AsRequestError(err); ok {
			a.writeError(w, http.StatusBadGateway, reqErr.Code, reqErr.Message)
			return
		}
		a.logger.Error("unhandled task error", zap.Error(err))
		a.writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

// writeJSON writes a JSON response with the given status code.
func (a *StudioAPI) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		a.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// writeError writes a JSON error response.
func (a *StudioAPI) writeError(w http.ResponseWriter, status int, code, message string) {
	a.writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}
