package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/scry-review/internal/api/shared"
	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/phrazzld/scry-review/internal/platform/logger"
	"github.com/phrazzld/scry-review/internal/redact"
	"github.com/phrazzld/scry-review/internal/service"
)

// CardHandler serves the /api/cards endpoints.
type CardHandler struct {
	cardService service.CardService
	dueLimit    int
	logger      *slog.Logger
}

// NewCardHandler creates a CardHandler. dueLimit is the default limit of
// GET /api/cards/due.
func NewCardHandler(cardService service.CardService, dueLimit int, logger *slog.Logger) *CardHandler {
	if cardService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("cardService cannot be nil for CardHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if dueLimit < 1 {
		dueLimit = 10
	}
	return &CardHandler{
		cardService: cardService,
		dueLimit:    dueLimit,
		logger:      logger.With(slog.String("component", "card_handler")),
	}
}

// ListDueCards handles GET /api/cards/due.
func (h *CardHandler) ListDueCards(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, h.dueLimit)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	cards, err := h.cardService.GetDueCards(r.Context(), limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load due cards")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, cardsToResponse(cards))
}

// ListCards handles GET /api/cards, filtering by the q query parameter.
func (h *CardHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	var (
		cards []*domain.Card
		err   error
	)
	if query == "" {
		cards, err = h.cardService.ListCards(r.Context())
	} else {
		cards, err = h.cardService.SearchCards(r.Context(), query)
	}
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list cards")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, cardsToResponse(cards))
}

// GetCard handles GET /api/cards/{code}.
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	code, err := getPathCode(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	card, err := h.cardService.Fetch(r.Context(), code)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(card))
}

// CreateCard handles POST /api/cards.
func (h *CardHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateCardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Debug("invalid card request", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	card, err := h.cardService.AddCard(r.Context(), req.toInput())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Info("card created", slog.String("code", card.Code))
	shared.RespondWithJSON(w, r, http.StatusCreated, cardToResponse(card))
}

// ImportCards handles POST /api/cards/import. Either every card is added or
// none is.
func (h *CardHandler) ImportCards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req ImportCardsRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Debug("invalid import request", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	inputs := make([]service.NewCardInput, len(req.Cards))
	for i, c := range req.Cards {
		inputs[i] = c.toInput()
	}

	cards, err := h.cardService.ImportCards(r.Context(), inputs)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Info("cards imported", slog.Int("count", len(cards)))
	shared.RespondWithJSON(w, r, http.StatusCreated, cardsToResponse(cards))
}

// DeleteCard handles DELETE /api/cards/{code}.
func (h *CardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	code, err := getPathCode(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.cardService.DeleteCard(r.Context(), code); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("card deleted", slog.String("code", code))
	shared.RespondNoContent(w)
}
