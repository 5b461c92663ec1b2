package review_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/phrazzld/scry-review/internal/events"
	"github.com/phrazzld/scry-review/internal/mocks"
	"github.com/phrazzld/scry-review/internal/platform/logger"
	"github.com/phrazzld/scry-review/internal/review"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keepOrder([]domain.Card) {}

// deck is an in-memory CardSource backed by MockCardService. RecordSuccess
// applies a plain count-down so refreshed snapshots are observable.
func deck(t *testing.T, n int) (*mocks.MockCardService, []*domain.Card) {
	t.Helper()

	var mu sync.Mutex
	cards := make([]*domain.Card, n)
	byCode := make(map[string]*domain.Card, n)
	for i := range cards {
		c := &domain.Card{
			Code:     string(rune('A'+i)) + "CARD1",
			Front:    "front " + string(rune('A'+i)),
			Back:     "back " + string(rune('A'+i)),
			Interval: 1,
			Counter:  5,
		}
		cards[i] = c
		byCode[c.Code] = c
	}

	svc := &mocks.MockCardService{
		GetDueCardsFn: func(ctx context.Context, limit int) ([]*domain.Card, error) {
			if limit > len(cards) {
				limit = len(cards)
			}
			return cards[:limit], nil
		},
		RecordSuccessFn: func(ctx context.Context, code string, interval, counter int) (*domain.Card, error) {
			mu.Lock()
			defer mu.Unlock()
			c, ok := byCode[code]
			if !ok {
				return nil, errors.New("missing")
			}
			updated := *c
			updated.Counter = counter - 1
			due := epoch.AddDate(0, 0, 1)
			updated.DueAt = &due
			byCode[code] = &updated
			return &updated, nil
		},
		FetchFn: func(ctx context.Context, code string) (*domain.Card, error) {
			mu.Lock()
			defer mu.Unlock()
			c := *byCode[code]
			return &c, nil
		},
	}
	return svc, cards
}

// recorder collects session events.
type recorder struct {
	mu     sync.Mutex
	events []*events.Event
}

func (r *recorder) HandleEvent(ctx context.Context, event *events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func (r *recorder) count(eventType string) int {
	n := 0
	for _, t := range r.types() {
		if t == eventType {
			n++
		}
	}
	return n
}

func startSession(
	t *testing.T,
	source review.CardSource,
	cfg review.Config,
) (*review.Session, *mocks.FakeClock, *recorder) {
	t.Helper()

	clock := mocks.NewFakeClock(epoch)
	rec := &recorder{}
	emitter := events.NewInMemoryEventEmitter(logger.Discard())
	emitter.RegisterHandler(rec)

	s, err := review.Start(context.Background(), source, cfg,
		review.WithClock(clock),
		review.WithShuffle(keepOrder),
		review.WithEmitter(emitter),
		review.WithLogger(logger.Discard()),
	)
	require.NoError(t, err)
	t.Cleanup(s.Exit)
	return s, clock, rec
}

func TestStart_NoCards(t *testing.T) {
	t.Parallel()

	svc := &mocks.MockCardService{Cards: []*domain.Card{}}
	s, err := review.Start(context.Background(), svc, review.Config{Count: 5, Side: domain.SideFront})
	assert.Nil(t, s)
	assert.ErrorIs(t, err, review.ErrNoCards)
}

func TestStart_ReadFailureMeansNoCards(t *testing.T) {
	t.Parallel()

	cause := errors.New("database is locked")
	svc := &mocks.MockCardService{DefaultError: cause}

	s, err := review.Start(context.Background(), svc, review.Config{Count: 5, Side: domain.SideFront})
	assert.Nil(t, s)
	assert.ErrorIs(t, err, review.ErrNoCards)
	assert.ErrorIs(t, err, cause)
}

func TestStart_InvalidConfig(t *testing.T) {
	t.Parallel()

	svc, _ := deck(t, 1)
	testCases := []struct {
		name string
		cfg  review.Config
	}{
		{name: "zero count", cfg: review.Config{Count: 0, Side: domain.SideFront}},
		{name: "negative auto", cfg: review.Config{Count: 1, AutoSeconds: -1, Side: domain.SideFront}},
		{name: "bad side", cfg: review.Config{Count: 1, Side: "edge"}},
		{name: "missing side", cfg: review.Config{Count: 1}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := review.Start(context.Background(), svc, tc.cfg)
			assert.ErrorIs(t, err, review.ErrInvalidConfig)
		})
	}

	_, err := review.Start(context.Background(), nil, review.Config{Count: 1, Side: domain.SideFront})
	assert.ErrorIs(t, err, review.ErrInvalidConfig)
}

func TestStart_LoadsAtMostCount(t *testing.T) {
	t.Parallel()

	svc, _ := deck(t, 5)
	s, _, rec := startSession(t, svc, review.Config{Count: 3, Side: domain.SideFront, Threshold: 5})

	assert.Equal(t, []int{3}, svc.DueLimits())
	d := s.Display()
	assert.Equal(t, review.PhaseShowingFront, d.Phase)
	assert.Equal(t, 1, d.Progress.Index)
	assert.Equal(t, 3, d.Progress.Total)
	assert.Equal(t, 5, d.Progress.Threshold)
	assert.Equal(t, review.DueToday, d.Progress.DueDisplay)
	assert.Equal(t, []string{events.TypeSessionStarted, events.TypeCardShown}, rec.types())
}

func TestSession_ManualMode(t *testing.T) {
	t.Parallel()

	svc, cards := deck(t, 3)
	s, clock, _ := startSession(t, svc, review.Config{Count: 3, Side: domain.SideFront, Threshold: 5})
	ctx := context.Background()

	assert.Equal(t, 0, clock.PendingCount(), "manual mode arms nothing")

	s.Flip()
	assert.Equal(t, domain.SideBack, s.Display().VisibleSide)
	s.Flip()
	assert.Equal(t, domain.SideFront, s.Display().VisibleSide)
	assert.Empty(t, svc.RecordSuccessCalls())

	require.NoError(t, s.Next(ctx))
	calls := svc.RecordSuccessCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, mocks.RecordSuccessCall{Code: cards[0].Code, Interval: 1, Counter: 5}, calls[0])

	d := s.Display()
	assert.Equal(t, domain.SideBack, d.VisibleSide, "success reveals the answer")
	assert.Equal(t, 4, d.Progress.Counter, "snapshot refreshed after the write")
	assert.Equal(t, "Next Due: 2026-10-20", d.Progress.DueDisplay)

	clock.Advance(999 * time.Millisecond)
	assert.Equal(t, 1, s.Display().Progress.Index)
	clock.Advance(time.Millisecond)
	d = s.Display()
	assert.Equal(t, 2, d.Progress.Index, "advance timer moves on after one second")
	assert.Equal(t, domain.SideFront, d.VisibleSide)
	assert.Equal(t, 0, clock.PendingCount())

	s.Flip()
	require.NoError(t, s.Next(ctx))
	assert.Len(t, svc.RecordSuccessCalls(), 1, "next on a revealed card records nothing")
	assert.Equal(t, 3, s.Display().Progress.Index)

	clock.Advance(time.Hour)
	assert.Equal(t, 3, s.Display().Progress.Index, "no timer fires spontaneously")
}

func TestSession_AutoMode(t *testing.T) {
	t.Parallel()

	svc, _ := deck(t, 2)
	s, clock, _ := startSession(t, svc, review.Config{Count: 2, AutoSeconds: 3, Side: domain.SideFront})

	clock.Advance(3 * time.Second)
	d := s.Display()
	assert.Equal(t, domain.SideBack, d.VisibleSide)
	assert.Equal(t, 1, d.Progress.Index)

	clock.Advance(3 * time.Second)
	d = s.Display()
	assert.Equal(t, domain.SideFront, d.VisibleSide)
	assert.Equal(t, 2, d.Progress.Index)

	// Two more windows each for the flip and the move on: wrap to the first card.
	clock.Advance(6 * time.Second)
	assert.Equal(t, 1, s.Display().Progress.Index)

	assert.Empty(t, svc.RecordSuccessCalls(), "unanswered cards are never recorded")
}

func TestSession_NextInAutoModeUsesShortAdvance(t *testing.T) {
	t.Parallel()

	svc, _ := deck(t, 2)
	s, clock, _ := startSession(t, svc, review.Config{Count: 2, AutoSeconds: 10, Side: domain.SideFront})

	clock.Advance(2 * time.Second)
	require.NoError(t, s.Next(context.Background()))
	assert.Equal(t, 1, clock.PendingCount(), "presentation timer replaced by the advance timer")

	clock.Advance(time.Second)
	assert.Equal(t, 2, s.Display().Progress.Index)
	assert.Equal(t, 1, clock.PendingCount(), "presentation timer armed for the new card")
}

func TestSession_PauseResumeArmsOnePresentationTimer(t *testing.T) {
	t.Parallel()

	svc, _ := deck(t, 3)
	s, clock, _ := startSession(t, svc, review.Config{Count: 3, AutoSeconds: 4, Side: domain.SideFront})

	clock.Advance(2 * time.Second)
	s.Pause()
	s.Pause()
	assert.Equal(t, review.PhasePaused, s.Display().Phase)
	assert.Equal(t, 0, clock.PendingCount())

	clock.Advance(time.Minute)
	assert.Equal(t, domain.SideFront, s.Display().VisibleSide, "nothing moves while paused")

	s.Resume()
	s.Resume()
	assert.Equal(t, 1, clock.PendingCount())

	clock.Advance(4 * time.Second)
	d := s.Display()
	assert.Equal(t, domain.SideBack, d.VisibleSide)
	assert.Equal(t, 1, d.Progress.Index, "exactly one flip, no double advance")
}

func TestSession_TogglePause(t *testing.T) {
	t.Parallel()

	svc, _ := deck(t, 1)
	s, _, _ := startSession(t, svc, review.Config{Count: 1, AutoSeconds: 2, Side: domain.SideFront})

	s.TogglePause()
	assert.True(t, s.Display().Paused)
	s.TogglePause()
	assert.False(t, s.Display().Paused)
}

func TestSession_RecordFailure(t *testing.T) {
	t.Parallel()

	svc, _ := deck(t, 2)
	writeErr := errors.New("disk I/O error")
	svc.RecordSuccessFn = func(ctx context.Context, code string, interval, counter int) (*domain.Card, error) {
		return nil, writeErr
	}
	s, clock, rec := startSession(t, svc, review.Config{Count: 2, Side: domain.SideFront})

	err := s.Next(context.Background())
	assert.ErrorIs(t, err, review.ErrRecordFailed)
	assert.ErrorIs(t, err, writeErr)
	assert.Equal(t, 1, rec.count(events.TypeRecordFailed))

	d := s.Display()
	assert.Equal(t, domain.SideBack, d.VisibleSide, "flip is not rolled back")
	assert.Equal(t, 5, d.Progress.Counter, "snapshot stays as it was")

	clock.Advance(time.Second)
	assert.Equal(t, 2, s.Display().Progress.Index, "advance timer still fires")
}

func TestSession_FetchFailureFallsBackToWriteResult(t *testing.T) {
	t.Parallel()

	svc, _ := deck(t, 1)
	svc.FetchFn = func(ctx context.Context, code string) (*domain.Card, error) {
		return nil, errors.New("read timeout")
	}
	s, _, rec := startSession(t, svc, review.Config{Count: 1, Side: domain.SideFront})

	require.NoError(t, s.Next(context.Background()))
	assert.Equal(t, 4, s.Display().Progress.Counter)
	assert.Equal(t, 1, rec.count(events.TypeSuccessRecorded))
}

func TestSession_Exit(t *testing.T) {
	t.Parallel()

	svc, _ := deck(t, 2)
	s, clock, rec := startSession(t, svc, review.Config{Count: 2, AutoSeconds: 2, Side: domain.SideFront})

	s.Exit()
	assert.Equal(t, 0, clock.PendingCount())
	assert.Equal(t, review.PhaseIdle, s.Display().Phase)

	select {
	case <-s.Done():
	default:
		t.Fatal("Done not closed after Exit")
	}

	require.NoError(t, s.Next(context.Background()))
	s.Flip()
	s.Resume()
	s.Exit()
	clock.Advance(time.Minute)

	assert.Empty(t, svc.RecordSuccessCalls(), "no store writes after exit")
	assert.Equal(t, 1, rec.count(events.TypeSessionExited))
}

func TestSession_WrapsAround(t *testing.T) {
	t.Parallel()

	svc, cards := deck(t, 2)
	s, _, _ := startSession(t, svc, review.Config{Count: 2, Side: domain.SideBack})

	s.Flip()
	require.NoError(t, s.Next(context.Background()))
	s.Flip()
	require.NoError(t, s.Next(context.Background()))

	d := s.Display()
	assert.Equal(t, 1, d.Progress.Index)
	assert.Equal(t, cards[0].Code, d.Code)
	assert.Equal(t, domain.SideBack, d.VisibleSide, "configured side restored after wrap")
}

func TestSession_EmitsCardShownOnChange(t *testing.T) {
	t.Parallel()

	svc, cards := deck(t, 2)
	s, _, rec := startSession(t, svc, review.Config{Count: 2, Side: domain.SideFront})

	s.Flip()
	s.Resume() // no-op, no event

	rec.mu.Lock()
	last := rec.events[len(rec.events)-1]
	total := len(rec.events)
	rec.mu.Unlock()

	assert.Equal(t, 3, total)
	assert.Equal(t, events.TypeCardShown, last.Type)
	assert.Equal(t, s.ID(), last.SessionID)

	var d review.Display
	require.NoError(t, last.UnmarshalPayload(&d))
	assert.Equal(t, domain.SideBack, d.VisibleSide)
	assert.Equal(t, cards[0].Back, d.VisibleText())
}
