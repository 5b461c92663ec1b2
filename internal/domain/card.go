package domain

import (
	"crypto/rand"
	"errors"
	"io"
	"strings"
	"time"
)

// Card-specific validation errors
var (
	// ErrCardCodeEmpty is returned when a card code is empty.
	ErrCardCodeEmpty = errors.New("card code cannot be empty")

	// ErrCardFrontEmpty is returned when a card has no front text.
	ErrCardFrontEmpty = errors.New("card front cannot be empty")

	// ErrCardBackEmpty is returned when a card has no back text.
	ErrCardBackEmpty = errors.New("card back cannot be empty")

	// ErrCardIntervalInvalid is returned when a card interval is not positive.
	ErrCardIntervalInvalid = errors.New("card interval must be at least 1 day")

	// ErrCardCounterInvalid is returned when a card counter is negative.
	ErrCardCounterInvalid = errors.New("card counter cannot be negative")
)

// CodeLength is the number of characters in a generated card code.
const CodeLength = 6

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Side identifies one face of a card.
type Side string

// Card faces
const (
	SideFront Side = "front"
	SideBack  Side = "back"
)

// ParseSide converts user input into a Side.
func ParseSide(s string) (Side, error) {
	switch Side(strings.ToLower(strings.TrimSpace(s))) {
	case SideFront:
		return SideFront, nil
	case SideBack:
		return SideBack, nil
	default:
		return "", NewValidationError("side", "must be front or back", ErrInvalidSide)
	}
}

// Opposite returns the other face of the card.
func (s Side) Opposite() Side {
	if s == SideFront {
		return SideBack
	}
	return SideFront
}

// Valid reports whether s names a card face.
func (s Side) Valid() bool {
	return s == SideFront || s == SideBack
}

// Card is a flashcard together with its count-down review state.
//
// Interval is the current review interval in days and is always a step of the
// configured interval ladder for well-formed data. Counter is the number of
// successes still needed before the interval is promoted. A nil DueAt means the
// card is due immediately.
type Card struct {
	Code      string     `json:"code" yaml:"code"`
	Front     string     `json:"front" yaml:"front"`
	Back      string     `json:"back" yaml:"back"`
	Interval  int        `json:"interval" yaml:"interval"`
	Counter   int        `json:"counter" yaml:"counter"`
	DueAt     *time.Time `json:"due_at,omitempty" yaml:"due_at,omitempty"`
	CreatedAt time.Time  `json:"created_at" yaml:"-"`
	UpdatedAt time.Time  `json:"updated_at" yaml:"-"`
}

// NewCard creates a card that is due at the start of the given day.
// It generates a fresh code; callers persisting the card retry with another
// code on a uniqueness conflict.
func NewCard(front, back string, interval, counter int, now time.Time) (*Card, error) {
	code, err := NewCode()
	if err != nil {
		return nil, err
	}

	due := StartOfDay(now)
	card := &Card{
		Code:      code,
		Front:     strings.TrimSpace(front),
		Back:      strings.TrimSpace(back),
		Interval:  interval,
		Counter:   counter,
		DueAt:     &due,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data.
func (c *Card) Validate() error {
	if c.Code == "" {
		return ErrCardCodeEmpty
	}
	if c.Front == "" {
		return ErrCardFrontEmpty
	}
	if c.Back == "" {
		return ErrCardBackEmpty
	}
	if c.Interval < 1 {
		return ErrCardIntervalInvalid
	}
	if c.Counter < 0 {
		return ErrCardCounterInvalid
	}
	return nil
}

// IsDue reports whether the card should be offered for review at now.
func (c *Card) IsDue(now time.Time) bool {
	return c.DueAt == nil || !c.DueAt.After(now)
}

// Text returns the text printed on the given face.
func (c *Card) Text(side Side) string {
	if side == SideBack {
		return c.Back
	}
	return c.Front
}

// NewCode generates a random card code of CodeLength characters drawn
// uniformly from upper-case letters and digits.
func NewCode() (string, error) {
	return readCode(rand.Reader)
}

// codeByteLimit is the largest multiple of len(codeAlphabet) that fits in a
// byte. Bytes at or above it are discarded so every symbol is equally likely.
const codeByteLimit = 256 - 256%len(codeAlphabet)

func readCode(r io.Reader) (string, error) {
	code := make([]byte, 0, CodeLength)
	buf := make([]byte, CodeLength)
	for len(code) < CodeLength {
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= codeByteLimit {
				continue
			}
			code = append(code, codeAlphabet[int(b)%len(codeAlphabet)])
			if len(code) == CodeLength {
				break
			}
		}
	}
	return string(code), nil
}

// StartOfDay truncates t to local midnight of the same calendar day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
