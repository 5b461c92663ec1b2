package review

import (
	"time"

	"github.com/phrazzld/scry-review/internal/domain"
)

// SuccessAdvanceDelay is how long the revealed face stays up after a success
// before the session moves on.
const SuccessAdvanceDelay = time.Second

// Phase names what a session is currently showing.
type Phase string

// Session phases
const (
	PhaseIdle         Phase = "idle"
	PhaseShowingFront Phase = "showing_front"
	PhaseShowingBack  Phase = "showing_back"
	PhasePaused       Phase = "paused"
	PhaseNoCards      Phase = "no_cards"
)

// State is the complete in-memory state of a review session.
// It is a value; Transition never mutates its input.
type State struct {
	// Cards is the shuffled snapshot list captured at start.
	Cards []domain.Card
	// Position indexes Cards and wraps around.
	Position int
	// Side is the face currently visible.
	Side domain.Side
	// ConfiguredSide is the face every card is first shown on.
	ConfiguredSide domain.Side
	// AutoSeconds is the presentation window in auto mode; 0 means manual.
	AutoSeconds int
	Paused      bool
	// Recorded is set once a success was recorded for the current presentation.
	Recorded bool
	Closed   bool
}

// NewState builds the initial state for cards and the effects that start it.
// The cards slice is copied.
func NewState(cards []domain.Card, side domain.Side, autoSeconds int) (State, []Effect) {
	st := State{
		Cards:          append([]domain.Card(nil), cards...),
		Side:           side,
		ConfiguredSide: side,
		AutoSeconds:    autoSeconds,
	}

	var effects []Effect
	if st.auto() && len(st.Cards) > 0 {
		effects = append(effects, ArmTimer{Role: RolePresentation, Duration: st.autoDuration()})
	}
	return st, effects
}

// Phase reports the phase the state is in.
func (s State) Phase() Phase {
	switch {
	case s.Closed:
		return PhaseIdle
	case len(s.Cards) == 0:
		return PhaseNoCards
	case s.Paused:
		return PhasePaused
	case s.Side == domain.SideBack:
		return PhaseShowingBack
	default:
		return PhaseShowingFront
	}
}

// Current returns the card at Position. ok is false when there are no cards.
func (s State) Current() (card domain.Card, ok bool) {
	if len(s.Cards) == 0 {
		return domain.Card{}, false
	}
	return s.Cards[s.Position], true
}

func (s State) auto() bool {
	return s.AutoSeconds > 0
}

func (s State) autoDuration() time.Duration {
	return time.Duration(s.AutoSeconds) * time.Second
}

// Action is an input to the session state machine: a user command or a
// timer expiry.
type Action interface {
	action()
}

// Flip swaps the visible face.
type Flip struct{}

// Next signals the user remembered the card, or skips past a revealed card.
type Next struct{}

// PresentationExpired is delivered when the presentation timer fires.
type PresentationExpired struct{}

// AdvanceExpired is delivered when the advance timer fires.
type AdvanceExpired struct{}

// Pause stops both timers.
type Pause struct{}

// Resume restarts the presentation timer in auto mode.
type Resume struct{}

// Exit closes the session.
type Exit struct{}

// Refresh replaces the snapshot at Position with a re-read card.
type Refresh struct {
	Position int
	Card     domain.Card
}

func (Flip) action()                {}
func (Next) action()                {}
func (PresentationExpired) action() {}
func (AdvanceExpired) action()      {}
func (Pause) action()               {}
func (Resume) action()              {}
func (Exit) action()                {}
func (Refresh) action()             {}

// Effect is a side effect requested by Transition.
type Effect interface {
	effect()
}

// ArmTimer starts the timer for Role, replacing any pending instance.
type ArmTimer struct {
	Role     TimerRole
	Duration time.Duration
}

// CancelTimer stops the pending timer for Role, if any.
type CancelTimer struct {
	Role TimerRole
}

// Persist records one success for the card at Position using the snapshot's
// interval and counter.
type Persist struct {
	Position int
	Code     string
	Interval int
	Counter  int
}

func (ArmTimer) effect()    {}
func (CancelTimer) effect() {}
func (Persist) effect()     {}

// Transition applies action to st and returns the new state together with
// the effects the caller must execute, in order.
//
// A closed session ignores every action, as does a session without cards
// apart from Exit.
func Transition(st State, action Action) (State, []Effect) {
	if st.Closed {
		return st, nil
	}
	if _, isExit := action.(Exit); !isExit && len(st.Cards) == 0 {
		return st, nil
	}

	switch a := action.(type) {
	case Flip:
		st.Side = st.Side.Opposite()
		return st, nil

	case PresentationExpired:
		if !st.auto() || st.Paused {
			return st, nil
		}
		if st.Side == st.ConfiguredSide {
			st.Side = st.Side.Opposite()
			return st, []Effect{
				CancelTimer{Role: RolePresentation},
				ArmTimer{Role: RoleAdvance, Duration: st.autoDuration()},
			}
		}
		// Revealed face timed out with no answer.
		return st.advance()

	case AdvanceExpired:
		return st.advance()

	case Next:
		if st.Side != st.ConfiguredSide || st.Recorded {
			return st.advance()
		}
		card := st.Cards[st.Position]
		st.Side = st.Side.Opposite()
		st.Recorded = true
		return st, []Effect{
			CancelTimer{Role: RolePresentation},
			Persist{
				Position: st.Position,
				Code:     card.Code,
				Interval: card.Interval,
				Counter:  card.Counter,
			},
			ArmTimer{Role: RoleAdvance, Duration: SuccessAdvanceDelay},
		}

	case Pause:
		if st.Paused {
			return st, nil
		}
		st.Paused = true
		return st, cancelAll()

	case Resume:
		if !st.Paused {
			return st, nil
		}
		st.Paused = false
		if !st.auto() {
			return st, nil
		}
		return st, []Effect{ArmTimer{Role: RolePresentation, Duration: st.autoDuration()}}

	case Exit:
		st.Closed = true
		return st, cancelAll()

	case Refresh:
		if a.Position < 0 || a.Position >= len(st.Cards) || st.Cards[a.Position].Code != a.Card.Code {
			return st, nil
		}
		cards := append([]domain.Card(nil), st.Cards...)
		cards[a.Position] = a.Card
		st.Cards = cards
		return st, nil
	}

	return st, nil
}

// advance moves to the next card, wrapping at the end of the list.
func (s State) advance() (State, []Effect) {
	s.Position = (s.Position + 1) % len(s.Cards)
	s.Side = s.ConfiguredSide
	s.Recorded = false

	effects := cancelAll()
	if !s.Paused && s.auto() {
		effects = append(effects, ArmTimer{Role: RolePresentation, Duration: s.autoDuration()})
	}
	return s, effects
}

func cancelAll() []Effect {
	return []Effect{
		CancelTimer{Role: RolePresentation},
		CancelTimer{Role: RoleAdvance},
	}
}
