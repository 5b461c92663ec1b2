package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/phrazzld/scry-review/internal/events"
	"github.com/phrazzld/scry-review/internal/review"
)

const keyHelp = "f flip, n next, p pause/resume, q quit"

func newReviewCmd(c *cli) *cobra.Command {
	var (
		count int
		auto  int
		side  string
	)

	cmd := &cobra.Command{
		Use:   "review",
		Short: "Review the cards that are due",
		Long: `Review up to --count due cards in random order.

Type a command and press enter:
  f        flip the card
  n        next: record a success, or move on once the answer is showing
  p        pause or resume the auto-flip timer
  q, esc   end the session

With --auto N each face is shown for N seconds before the card flips and
then advances. --auto 0 selects manual mode.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defaults := c.cfg.Review
			if !cmd.Flags().Changed("count") {
				count = defaults.Count
			}
			if !cmd.Flags().Changed("auto") {
				auto = defaults.AutoSeconds
			}
			first, err := sideFlag(side, defaults.Side)
			if err != nil {
				return err
			}

			return c.withDeck(cmd.Context(), func(ctx context.Context) error {
				return c.runReview(ctx, review.Config{
					Count:       count,
					AutoSeconds: auto,
					Side:        first,
					Threshold:   c.srs.Params().Threshold,
				})
			})
		},
	}

	cmd.Flags().IntVarP(&count, "count", "c", 0, "maximum number of cards (default: review.count)")
	cmd.Flags().IntVarP(&auto, "auto", "a", 0, "seconds per face in auto mode, 0 for manual (default: review.auto_seconds)")
	cmd.Flags().StringVar(&side, "side", "", "face shown first: front or back (default: review.side)")
	return cmd
}

func sideFlag(value, def string) (domain.Side, error) {
	if value == "" {
		value = def
	}
	s, err := domain.ParseSide(value)
	if err != nil {
		return "", fmt.Errorf("--side must be front or back, got %q", value)
	}
	return s, nil
}

// runReview drives one session from line-oriented commands on c.in until the
// user quits, input ends or ctx is canceled.
func (c *cli) runReview(ctx context.Context, cfg review.Config) error {
	screen := &screen{out: c.out}

	emitter := events.NewInMemoryEventEmitter(c.logger)
	emitter.RegisterHandler(events.HandlerFunc(screen.handleEvent),
		events.TypeSessionStarted,
		events.TypeCardShown,
		events.TypeSuccessRecorded,
		events.TypeRecordFailed,
		events.TypeSessionExited,
	)

	opts := append([]review.Option{
		review.WithEmitter(emitter),
		review.WithLogger(c.logger),
	}, c.reviewOpts...)

	session, err := review.Start(ctx, c.cards, cfg, opts...)
	if err != nil {
		if errors.Is(err, review.ErrNoCards) {
			screen.println("No cards found for review")
			return nil
		}
		return err
	}
	defer session.Exit()

	lines := readLines(c.in, session.Done())
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-session.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			c.handleKey(ctx, session, screen, line)
		}
	}
}

func (c *cli) handleKey(ctx context.Context, session *review.Session, screen *screen, line string) {
	switch key := strings.ToLower(strings.TrimSpace(line)); key {
	case "":
	case "f":
		session.Flip()
	case "n":
		if err := session.Next(ctx); err != nil {
			c.logger.Debug("next returned an error", slog.String("error", err.Error()))
		}
	case "p":
		session.TogglePause()
	case "q", "esc", "\x1b":
		session.Exit()
	case "h", "?":
		screen.println(keyHelp)
	default:
		screen.println(fmt.Sprintf("Unknown command %q (%s)", key, keyHelp))
	}
}

// readLines forwards lines from r until r is exhausted or done is closed.
// The reader goroutine may stay blocked on r after done closes.
func readLines(r io.Reader, done <-chan struct{}) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
	}()
	return lines
}

// screen renders session events as plain text. Events may arrive from timer
// goroutines, so writes are serialized.
type screen struct {
	mu  sync.Mutex
	out io.Writer
}

func (s *screen) println(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.out, line)
}

func (s *screen) handleEvent(_ context.Context, event *events.Event) error {
	switch event.Type {
	case events.TypeSessionStarted:
		var d review.Display
		if err := event.UnmarshalPayload(&d); err != nil {
			return fmt.Errorf("failed to unmarshal payload: %w", err)
		}
		mode := "manual mode"
		if d.AutoSeconds > 0 {
			mode = fmt.Sprintf("auto mode, %ds per face", d.AutoSeconds)
		}
		s.println(fmt.Sprintf("Reviewing %d cards (%s). %s", d.Progress.Total, mode, keyHelp))
	case events.TypeCardShown:
		var d review.Display
		if err := event.UnmarshalPayload(&d); err != nil {
			return fmt.Errorf("failed to unmarshal payload: %w", err)
		}
		s.println(renderDisplay(d))
	case events.TypeSuccessRecorded:
		var payload struct {
			Code     string `json:"code"`
			Interval int    `json:"interval"`
			Counter  int    `json:"counter"`
		}
		if err := event.UnmarshalPayload(&payload); err != nil {
			return fmt.Errorf("failed to unmarshal payload: %w", err)
		}
		s.println(fmt.Sprintf("Recorded %s: interval %d days, %d successes remaining",
			payload.Code, payload.Interval, payload.Counter))
	case events.TypeRecordFailed:
		s.println("Warning: review progress could not be saved")
	case events.TypeSessionExited:
		s.println("Session ended")
	}
	return nil
}

func renderDisplay(d review.Display) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(d.StatusLine())
	if d.Paused {
		b.WriteString(" | PAUSED")
	}
	fmt.Fprintf(&b, "\n  [%s] %s", d.VisibleSide, d.VisibleText())
	return b.String()
}
