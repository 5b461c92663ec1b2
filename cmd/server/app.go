package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/scry-review/internal/config"
	"github.com/phrazzld/scry-review/internal/domain/srs"
	"github.com/phrazzld/scry-review/internal/events"
	"github.com/phrazzld/scry-review/internal/platform/database"
	"github.com/phrazzld/scry-review/internal/review"
	"github.com/phrazzld/scry-review/internal/service"
	"github.com/phrazzld/scry-review/internal/service/auth"
	"github.com/phrazzld/scry-review/internal/store"
)

// sessionEventLogger writes review session events to the server log.
type sessionEventLogger struct {
	logger *slog.Logger
}

// HandleEvent logs one session event. Failed writes are warnings; everything
// else is debug output.
func (h *sessionEventLogger) HandleEvent(ctx context.Context, event *events.Event) error {
	attrs := []any{
		slog.String("event_type", event.Type),
		slog.String("event_id", event.ID.String()),
		slog.String("session_id", event.SessionID.String()),
	}

	switch event.Type {
	case events.TypeRecordFailed:
		var payload struct {
			Code  string `json:"code"`
			Error string `json:"error"`
		}
		if err := event.UnmarshalPayload(&payload); err != nil {
			return fmt.Errorf("failed to unmarshal payload: %w", err)
		}
		h.logger.WarnContext(ctx, "review success was not recorded",
			append(attrs, slog.String("code", payload.Code))...)
	case events.TypeSuccessRecorded:
		var payload struct {
			Code     string `json:"code"`
			Interval int    `json:"interval"`
			Counter  int    `json:"counter"`
		}
		if err := event.UnmarshalPayload(&payload); err != nil {
			return fmt.Errorf("failed to unmarshal payload: %w", err)
		}
		h.logger.InfoContext(ctx, "review success recorded",
			append(attrs,
				slog.String("code", payload.Code),
				slog.Int("interval", payload.Interval),
				slog.Int("counter", payload.Counter))...)
	default:
		h.logger.DebugContext(ctx, "review session event", attrs...)
	}
	return nil
}

// application holds the shared dependencies of the server so they can be
// released together on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	cardStore   store.CardStore
	srsService  srs.Service
	cardService service.CardService
	jwtService  auth.JWTService

	eventEmitter *events.InMemoryEventEmitter
	sessions     *review.Registry
}

// newApplication builds the services on top of an open, migrated database.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	params, err := srs.NewParams(srs.ParamsConfig{
		Intervals: cfg.SRS.Intervals,
		Threshold: cfg.SRS.Threshold,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create SRS parameters: %w", err)
	}
	app.srsService = srs.NewServiceWithParams(params)

	app.cardStore, err = database.NewCardStore(cfg.Database.Driver, db, logger)
	if err != nil {
		return nil, err
	}

	app.cardService, err = service.NewCardService(db, app.cardStore, app.srsService, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create card service: %w", err)
	}

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.eventEmitter.RegisterHandler(&sessionEventLogger{
		logger: logger.With(slog.String("component", "session_event_logger")),
	})

	app.sessions = review.NewRegistry(logger,
		review.WithIdleTimeout(time.Duration(cfg.Review.IdleTimeoutMinutes)*time.Minute))

	logger.Info("application initialized",
		slog.Any("intervals", params.Ladder.Steps()),
		slog.Int("threshold", params.Threshold))
	return app, nil
}

// Run serves HTTP until ctx is canceled.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup ends every live session and closes the database.
func (app *application) cleanup() {
	if app.sessions != nil {
		app.sessions.CloseAll()
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}
	app.logger.Info("application shutdown completed")
}
