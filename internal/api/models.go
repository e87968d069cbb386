package api

import (
	"github.com/phrazzld/scry-decks/internal/domain"
)

// Timestamps in responses are Unix milliseconds, the same representation
// the database stores.

// SubmitReviewRequest defines the payload for POST /cards/{id}/review.
type SubmitReviewRequest struct {
	Rating int `json:"rating"`
}

// SubmitReviewResponse is returned after a review commits.
type SubmitReviewResponse struct {
	Success          bool         `json:"success"`
	NextReviewInDays float64      `json:"nextReviewInDays"`
	Card             CardResponse `json:"card"`
}

// PostponeCardRequest defines the payload for POST /cards/{id}/postpone.
type PostponeCardRequest struct {
	Days int `json:"days" validate:"required,min=1,max=365"`
}

// CreateCardRequest defines the payload for POST /cards.
type CreateCardRequest struct {
	CollectionID string `json:"collectionId" validate:"required,uuid"`
	Front        string `json:"front"        validate:"required"`
	Back         string `json:"back"         validate:"required"`
}

// UpdateCardRequest defines the payload for PUT /cards/{id}. Omitted sides
// are left unchanged.
type UpdateCardRequest struct {
	Front *string `json:"front,omitempty"`
	Back  *string `json:"back,omitempty"`
}

// CreateCollectionRequest defines the payload for POST /collections.
type CreateCollectionRequest struct {
	Title       string `json:"title"       validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

// CardResponse is the wire form of a card with its schedule flattened.
type CardResponse struct {
	ID           string  `json:"id"`
	CollectionID string  `json:"collectionId"`
	Front        string  `json:"front"`
	Back         string  `json:"back"`
	State        string  `json:"state"`
	DueAt        int64   `json:"dueAt"`
	LastInterval float64 `json:"lastInterval"`
	EaseFactor   float64 `json:"easeFactor"`
	Reps         int     `json:"reps"`
	Lapses       int     `json:"lapses"`
	CreatedAt    int64   `json:"createdAt"`
	UpdatedAt    int64   `json:"updatedAt"`
}

// DueCardsResponse lists the cards of a review session.
type DueCardsResponse struct {
	Cards []CardResponse `json:"cards"`
	Count int            `json:"count"`
}

// CardsResponse lists the cards of a collection.
type CardsResponse struct {
	Cards []CardResponse `json:"cards"`
}

// CollectionResponse is the wire form of a collection.
type CollectionResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	CreatedAt   int64  `json:"createdAt"`
}

// CollectionsResponse lists the caller's collections.
type CollectionsResponse struct {
	Collections []CollectionResponse `json:"collections"`
}

// cardToResponse converts a domain.Card to a CardResponse
func cardToResponse(card *domain.Card) CardResponse {
	s := card.Scheduling
	return CardResponse{
		ID:           card.ID.String(),
		CollectionID: card.CollectionID.String(),
		Front:        card.Front,
		Back:         card.Back,
		State:        string(s.State),
		DueAt:        s.DueAt.UnixMilli(),
		LastInterval: s.LastInterval,
		EaseFactor:   s.EaseFactor,
		Reps:         s.Reps,
		Lapses:       s.Lapses,
		CreatedAt:    card.CreatedAt.UnixMilli(),
		UpdatedAt:    card.UpdatedAt.UnixMilli(),
	}
}

func cardsToResponse(cards []*domain.Card) []CardResponse {
	out := make([]CardResponse, 0, len(cards))
	for _, c := range cards {
		out = append(out, cardToResponse(c))
	}
	return out
}

func collectionToResponse(c *domain.Collection) CollectionResponse {
	return CollectionResponse{
		ID:          c.ID.String(),
		Title:       c.Title,
		Description: c.Description,
		CreatedAt:   c.CreatedAt.UnixMilli(),
	}
}
