package api

import (
	"strings"
	"time"

	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/phrazzld/scry-review/internal/review"
	"github.com/phrazzld/scry-review/internal/service"
)

// CreateSessionRequest starts a review session. Omitted fields take the
// configured review defaults.
type CreateSessionRequest struct {
	Count       *int   `json:"count,omitempty" validate:"omitempty,gte=1,lte=10000"`
	AutoSeconds *int   `json:"auto_seconds,omitempty" validate:"omitempty,gte=0,lte=600"`
	Side        string `json:"side,omitempty" validate:"omitempty,oneof=front back"`
}

// SessionResponse is the state of a review session after a request.
type SessionResponse struct {
	ID      string         `json:"id"`
	Display review.Display `json:"display"`
	// Warning is set when the action succeeded but a side effect did not,
	// e.g. a success that could not be recorded.
	Warning string `json:"warning,omitempty"`
}

// CreateCardRequest defines the payload for adding a card.
type CreateCardRequest struct {
	Front   string `json:"front" validate:"required"`
	Back    string `json:"back" validate:"required"`
	Counter int    `json:"counter,omitempty" validate:"gte=0"`
}

// ImportCardsRequest defines the payload for adding many cards at once.
type ImportCardsRequest struct {
	Cards []CreateCardRequest `json:"cards" validate:"required,min=1,max=5000,dive"`
}

// CardResponse is the API view of a card.
type CardResponse struct {
	Code      string     `json:"code"`
	Front     string     `json:"front"`
	Back      string     `json:"back"`
	Interval  int        `json:"interval"`
	Counter   int        `json:"counter"`
	DueAt     *time.Time `json:"due_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CardListResponse wraps a list of cards.
type CardListResponse struct {
	Cards []CardResponse `json:"cards"`
	Count int            `json:"count"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Sessions int    `json:"sessions"`
}

func (r CreateCardRequest) toInput() service.NewCardInput {
	return service.NewCardInput{
		Front:   strings.TrimSpace(r.Front),
		Back:    strings.TrimSpace(r.Back),
		Counter: r.Counter,
	}
}

func cardToResponse(card *domain.Card) CardResponse {
	return CardResponse{
		Code:      card.Code,
		Front:     card.Front,
		Back:      card.Back,
		Interval:  card.Interval,
		Counter:   card.Counter,
		DueAt:     card.DueAt,
		CreatedAt: card.CreatedAt,
		UpdatedAt: card.UpdatedAt,
	}
}

func cardsToResponse(cards []*domain.Card) CardListResponse {
	out := CardListResponse{Cards: make([]CardResponse, 0, len(cards))}
	for _, c := range cards {
		if c != nil {
			out.Cards = append(out.Cards, cardToResponse(c))
		}
	}
	out.Count = len(out.Cards)
	return out
}
