package review

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/phrazzld/scry-review/internal/events"
	"github.com/phrazzld/scry-review/internal/platform/logger"
)

// CardSource is the card store as seen by a review session.
type CardSource interface {
	GetDueCards(ctx context.Context, limit int) ([]*domain.Card, error)
	RecordSuccess(ctx context.Context, code string, interval, counter int) (*domain.Card, error)
	Fetch(ctx context.Context, code string) (*domain.Card, error)
}

// Config selects the cards and pacing of a session.
type Config struct {
	// Count is the maximum number of due cards loaded.
	Count int `json:"count" validate:"gte=1,lte=10000"`
	// AutoSeconds is the presentation window; 0 selects manual mode.
	AutoSeconds int `json:"auto_seconds" validate:"gte=0,lte=600"`
	// Side is the face each card is first shown on.
	Side domain.Side `json:"side" validate:"required,oneof=front back"`
	// Threshold is shown next to the counter.
	Threshold int `json:"-" validate:"gte=0"`
}

var validate = validator.New()

// Option configures a Session.
type Option func(*Session)

// WithClock replaces the wall clock used for timers.
func WithClock(clock Clock) Option {
	return func(s *Session) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithShuffle replaces the random shuffle applied to the loaded cards.
func WithShuffle(shuffle func([]domain.Card)) Option {
	return func(s *Session) {
		if shuffle != nil {
			s.shuffle = shuffle
		}
	}
}

// WithEmitter publishes session events to emitter.
// Handlers run synchronously, in transition order, and must not call back
// into the session.
func WithEmitter(emitter events.EventEmitter) Option {
	return func(s *Session) {
		s.emitter = emitter
	}
}

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithID assigns the session id instead of generating one.
func WithID(id uuid.UUID) Option {
	return func(s *Session) {
		s.id = id
	}
}

// Session is a live review session. All methods are safe for concurrent use.
type Session struct {
	id        uuid.UUID
	source    CardSource
	threshold int
	clock     Clock
	shuffle   func([]domain.Card)
	emitter   events.EventEmitter
	logger    *slog.Logger
	timers    *Timers
	// ctx is used for work started by timers.
	ctx context.Context

	mu     sync.Mutex
	state  State
	outbox []*events.Event
	done   chan struct{}
	// lastActive is the time of the last user command. Timer expiries do
	// not count.
	lastActive time.Time

	// emitMu keeps events in the order their transitions ran.
	emitMu sync.Mutex
}

// Start loads up to cfg.Count due cards from source, shuffles them and shows
// the first one. It returns ErrNoCards when nothing is due or the cards could
// not be read.
func Start(ctx context.Context, source CardSource, cfg Config, opts ...Option) (*Session, error) {
	if source == nil {
		return nil, fmt.Errorf("%w: card source is required", ErrInvalidConfig)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	s := &Session{
		id:        uuid.New(),
		source:    source,
		threshold: cfg.Threshold,
		clock:     SystemClock{},
		shuffle:   shuffleCards,
		logger:    logger.FromContextOrDefault(ctx, slog.Default()),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(
		slog.String("component", "review_session"),
		slog.String("session_id", s.id.String()),
	)
	s.ctx = logger.WithLogger(context.WithoutCancel(ctx), s.logger)
	s.timers = NewTimers(s.clock, s.dispatch)

	loaded, err := source.GetDueCards(ctx, cfg.Count)
	if err != nil {
		s.logger.Warn("failed to load due cards", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", ErrNoCards, err)
	}

	cards := make([]domain.Card, 0, len(loaded))
	for _, c := range loaded {
		if c != nil {
			cards = append(cards, *c)
		}
	}
	if len(cards) > cfg.Count {
		cards = cards[:cfg.Count]
	}
	if len(cards) == 0 {
		s.logger.Info("no cards due for review")
		return nil, ErrNoCards
	}
	s.shuffle(cards)

	s.mu.Lock()
	st, effects := NewState(cards, cfg.Side, cfg.AutoSeconds)
	s.state = st
	s.lastActive = s.clock.Now()
	_ = s.runEffectsLocked(ctx, effects)
	s.queueLocked(events.TypeSessionStarted, s.displayLocked())
	s.queueLocked(events.TypeCardShown, s.displayLocked())
	s.unlockAndEmit(ctx)

	s.logger.Info("review session started",
		slog.Int("cards", len(cards)),
		slog.Int("auto_seconds", cfg.AutoSeconds),
		slog.String("side", string(cfg.Side)))
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Done is closed when the session exits.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// LastActive returns when the session last received a user command.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Display returns the current rendering of the session.
func (s *Session) Display() Display {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.displayLocked()
}

// Flip swaps the visible face.
func (s *Session) Flip() {
	_ = s.apply(s.ctx, Flip{})
}

// Next records a success when the first face is showing, or moves on when
// the card is already revealed. A failed write is returned wrapped in
// ErrRecordFailed; the session still advances.
func (s *Session) Next(ctx context.Context) error {
	return s.apply(ctx, Next{})
}

// Pause stops both timers. Pausing a paused session is a no-op.
func (s *Session) Pause() {
	_ = s.apply(s.ctx, Pause{})
}

// Resume restarts auto mode. Resuming a running session is a no-op.
func (s *Session) Resume() {
	_ = s.apply(s.ctx, Resume{})
}

// TogglePause pauses a running session and resumes a paused one.
func (s *Session) TogglePause() {
	s.mu.Lock()
	s.lastActive = s.clock.Now()
	var action Action = Pause{}
	if s.state.Paused {
		action = Resume{}
	}
	_ = s.applyLocked(s.ctx, action)
	s.unlockAndEmit(s.ctx)
}

// Exit cancels all timers and closes the session. Later calls do nothing.
func (s *Session) Exit() {
	_ = s.apply(s.ctx, Exit{})
}

func (s *Session) apply(ctx context.Context, action Action) error {
	s.mu.Lock()
	s.lastActive = s.clock.Now()
	err := s.applyLocked(ctx, action)
	s.unlockAndEmit(ctx)
	return err
}

// applyLocked runs one transition and its effects. s.mu must be held.
func (s *Session) applyLocked(ctx context.Context, action Action) error {
	before := s.displayLocked()
	wasClosed := s.state.Closed

	next, effects := Transition(s.state, action)
	s.state = next
	err := s.runEffectsLocked(ctx, effects)

	after := s.displayLocked()
	if !wasClosed && s.state.Closed {
		close(s.done)
		s.queueLocked(events.TypeSessionExited, after)
		s.logger.Info("review session exited")
		return err
	}
	if after != before {
		s.queueLocked(events.TypeCardShown, after)
	}
	return err
}

func (s *Session) runEffectsLocked(ctx context.Context, effects []Effect) error {
	var err error
	for _, effect := range effects {
		switch e := effect.(type) {
		case ArmTimer:
			s.timers.Arm(e.Role, e.Duration, s.onExpire(e.Role))
		case CancelTimer:
			s.timers.Cancel(e.Role)
		case Persist:
			if perr := s.persistLocked(ctx, e); perr != nil {
				err = perr
			}
		}
	}
	return err
}

type successPayload struct {
	Code     string     `json:"code"`
	Interval int        `json:"interval"`
	Counter  int        `json:"counter"`
	DueAt    *time.Time `json:"due_at,omitempty"`
}

type failurePayload struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func (s *Session) persistLocked(ctx context.Context, p Persist) error {
	log := s.logger.With(slog.String("code", p.Code))

	updated, err := s.source.RecordSuccess(ctx, p.Code, p.Interval, p.Counter)
	if err != nil {
		log.Warn("failed to record success", slog.String("error", err.Error()))
		s.queueLocked(events.TypeRecordFailed, failurePayload{Code: p.Code, Error: err.Error()})
		return fmt.Errorf("%w: %w", ErrRecordFailed, err)
	}

	fresh, err := s.source.Fetch(ctx, p.Code)
	if err != nil {
		log.Warn("failed to re-read card after success; using write result",
			slog.String("error", err.Error()))
		fresh = updated
	}
	if fresh != nil {
		s.state, _ = Transition(s.state, Refresh{Position: p.Position, Card: *fresh})
		s.queueLocked(events.TypeSuccessRecorded, successPayload{
			Code:     fresh.Code,
			Interval: fresh.Interval,
			Counter:  fresh.Counter,
			DueAt:    fresh.DueAt,
		})
	}

	log.Debug("success recorded")
	return nil
}

func (s *Session) onExpire(role TimerRole) func() {
	return func() {
		var action Action = AdvanceExpired{}
		if role == RolePresentation {
			action = PresentationExpired{}
		}
		s.logger.Debug("timer expired", slog.String("role", string(role)))
		_ = s.applyLocked(s.ctx, action)
	}
}

// dispatch runs a timer callback on the session reactor.
func (s *Session) dispatch(f func()) {
	s.mu.Lock()
	f()
	s.unlockAndEmit(s.ctx)
}

func (s *Session) displayLocked() Display {
	return NewDisplay(s.state, s.threshold)
}

func (s *Session) queueLocked(eventType string, payload any) {
	if s.emitter == nil {
		return
	}
	event, err := events.NewEvent(s.id, eventType, payload)
	if err != nil {
		s.logger.Error("failed to build session event",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()))
		return
	}
	s.outbox = append(s.outbox, event)
}

// unlockAndEmit releases s.mu and publishes the queued events. The emit lock
// is taken before s.mu is released so events leave in transition order.
func (s *Session) unlockAndEmit(ctx context.Context) {
	out := s.outbox
	s.outbox = nil
	s.emitMu.Lock()
	s.mu.Unlock()
	defer s.emitMu.Unlock()

	for _, event := range out {
		if err := s.emitter.EmitEvent(ctx, event); err != nil {
			s.logger.Warn("session event handler failed",
				slog.String("event_type", event.Type),
				slog.String("error", err.Error()))
		}
	}
}

func shuffleCards(cards []domain.Card) {
	rand.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}
