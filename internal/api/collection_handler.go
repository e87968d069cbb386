package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/scry-decks/internal/api/shared"
	"github.com/phrazzld/scry-decks/internal/platform/logger"
	"github.com/phrazzld/scry-decks/internal/service"
)

// CollectionHandler handles collection HTTP requests.
type CollectionHandler struct {
	collections service.CollectionService
	cards       service.CardService
	logger      *slog.Logger
}

// NewCollectionHandler creates a new CollectionHandler
func NewCollectionHandler(
	collections service.CollectionService,
	cards service.CardService,
	logger *slog.Logger,
) *CollectionHandler {
	if collections == nil || cards == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("services cannot be nil for CollectionHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for CollectionHandler")
	}

	return &CollectionHandler{
		collections: collections,
		cards:       cards,
		logger:      logger.With(slog.String("component", "collection_handler")),
	}
}

// CreateCollection handles POST /collections requests.
func (h *CollectionHandler) CreateCollection(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := handleUserID(w, r, log)
	if !ok {
		return
	}

	var req CreateCollectionRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	collection, err := h.collections.CreateCollection(r.Context(), userID, req.Title, req.Description)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create collection")
		return
	}

	log.Debug("collection created", slog.String("collection_id", collection.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, collectionToResponse(collection))
}

// ListCollections handles GET /collections requests.
func (h *CollectionHandler) ListCollections(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := handleUserID(w, r, log)
	if !ok {
		return
	}

	collections, err := h.collections.ListCollections(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list collections")
		return
	}

	resp := CollectionsResponse{Collections: make([]CollectionResponse, 0, len(collections))}
	for _, c := range collections {
		resp.Collections = append(resp.Collections, collectionToResponse(c))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// GetCollection handles GET /collections/{id} requests.
func (h *CollectionHandler) GetCollection(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, collectionID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	collection, err := h.collections.GetCollection(r.Context(), userID, collectionID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get collection")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, collectionToResponse(collection))
}

// DeleteCollection handles DELETE /collections/{id} requests. The
// collection's cards are deleted with it.
func (h *CollectionHandler) DeleteCollection(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, collectionID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.collections.DeleteCollection(r.Context(), userID, collectionID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete collection")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListCards handles GET /collections/{id}/cards requests.
func (h *CollectionHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, collectionID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	cards, err := h.cards.ListCards(r.Context(), userID, collectionID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list cards")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, CardsResponse{Cards: cardsToResponse(cards)})
}
