package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/phrazzld/scry-review/internal/api/shared"
	"github.com/phrazzld/scry-review/internal/config"
	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/phrazzld/scry-review/internal/events"
	"github.com/phrazzld/scry-review/internal/platform/logger"
	"github.com/phrazzld/scry-review/internal/review"
)

// recordFailedWarning is returned with a 200 when next could not save the
// success; the session has still moved on.
const recordFailedWarning = "Review progress could not be saved"

// SessionHandler serves the /api/sessions endpoints. Each session lives in
// the registry until it is deleted or the server shuts down.
type SessionHandler struct {
	source    review.CardSource
	registry  *review.Registry
	defaults  config.ReviewConfig
	threshold int
	emitter   events.EventEmitter
	opts      []review.Option
	logger    *slog.Logger
}

// SessionHandlerOption configures a SessionHandler.
type SessionHandlerOption func(*SessionHandler)

// WithSessionEmitter publishes the events of every session started by the
// handler to emitter.
func WithSessionEmitter(emitter events.EventEmitter) SessionHandlerOption {
	return func(h *SessionHandler) {
		h.emitter = emitter
	}
}

// WithSessionOptions appends options passed to every review.Start call.
func WithSessionOptions(opts ...review.Option) SessionHandlerOption {
	return func(h *SessionHandler) {
		h.opts = append(h.opts, opts...)
	}
}

// NewSessionHandler creates a SessionHandler. defaults fill in omitted
// request fields; threshold is shown in each session's progress line.
func NewSessionHandler(
	source review.CardSource,
	registry *review.Registry,
	defaults config.ReviewConfig,
	threshold int,
	logger *slog.Logger,
	opts ...SessionHandlerOption,
) *SessionHandler {
	if source == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("source cannot be nil for SessionHandler")
	}
	if registry == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("registry cannot be nil for SessionHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	h := &SessionHandler{
		source:    source,
		registry:  registry,
		defaults:  defaults,
		threshold: threshold,
		logger:    logger.With(slog.String("component", "session_handler")),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// CreateSession handles POST /api/sessions. An empty body starts a session
// with the configured defaults.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateSessionRequest
	if err := shared.DecodeJSON(r, &req); err != nil && !errors.Is(err, shared.ErrEmptyBody) {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	cfg := h.sessionConfig(req)
	opts := append([]review.Option{review.WithLogger(h.logger)}, h.opts...)
	if h.emitter != nil {
		opts = append(opts, review.WithEmitter(h.emitter))
	}

	session, err := review.Start(r.Context(), h.source, cfg, opts...)
	if err != nil {
		if errors.Is(err, review.ErrNoCards) {
			log.Info("no cards found for review", slog.String("error", err.Error()))
		}
		HandleAPIError(w, r, err, "")
		return
	}
	h.registry.Add(session)

	shared.RespondWithJSON(w, r, http.StatusCreated, SessionResponse{
		ID:      session.ID().String(),
		Display: session.Display(),
	})
}

// GetSession handles GET /api/sessions/{id}.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}
	h.respond(w, r, session, "")
}

// Flip handles POST /api/sessions/{id}/flip.
func (h *SessionHandler) Flip(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}
	session.Flip()
	h.respond(w, r, session, "")
}

// Next handles POST /api/sessions/{id}/next. A success that could not be
// recorded still returns 200, with a warning.
func (h *SessionHandler) Next(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}

	warning := ""
	if err := session.Next(r.Context()); err != nil {
		if !errors.Is(err, review.ErrRecordFailed) {
			HandleAPIError(w, r, err, "")
			return
		}
		logger.FromContextOrDefault(r.Context(), h.logger).Warn("review success not recorded",
			slog.String("session_id", session.ID().String()),
			slog.String("error", err.Error()))
		warning = recordFailedWarning
	}
	h.respond(w, r, session, warning)
}

// Pause handles POST /api/sessions/{id}/pause.
func (h *SessionHandler) Pause(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}
	session.Pause()
	h.respond(w, r, session, "")
}

// Resume handles POST /api/sessions/{id}/resume.
func (h *SessionHandler) Resume(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}
	session.Resume()
	h.respond(w, r, session, "")
}

// DeleteSession handles DELETE /api/sessions/{id}.
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}
	session.Exit()
	shared.RespondNoContent(w)
}

func (h *SessionHandler) sessionConfig(req CreateSessionRequest) review.Config {
	cfg := review.Config{
		Count:       h.defaults.Count,
		AutoSeconds: h.defaults.AutoSeconds,
		Side:        domain.Side(h.defaults.Side),
		Threshold:   h.threshold,
	}
	if req.Count != nil {
		cfg.Count = *req.Count
	}
	if req.AutoSeconds != nil {
		cfg.AutoSeconds = *req.AutoSeconds
	}
	if req.Side != "" {
		cfg.Side = domain.Side(req.Side)
	}
	return cfg
}

// lookup resolves the {id} path parameter to a live session, writing the
// error response itself when there is none.
func (h *SessionHandler) lookup(w http.ResponseWriter, r *http.Request) (*review.Session, bool) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return nil, false
	}

	session, err := h.registry.Get(id)
	if err == nil {
		select {
		case <-session.Done():
			err = review.ErrSessionNotFound
		default:
		}
	}
	if err != nil {
		HandleAPIError(w, r, err, "")
		return nil, false
	}
	return session, true
}

func (h *SessionHandler) respond(w http.ResponseWriter, r *http.Request, session *review.Session, warning string) {
	shared.RespondWithJSON(w, r, http.StatusOK, SessionResponse{
		ID:      session.ID().String(),
		Display: session.Display(),
		Warning: warning,
	})
}
