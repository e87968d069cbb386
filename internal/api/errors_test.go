package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/scry-decks/internal/domain"
	"github.com/phrazzld/scry-decks/internal/domain/srs"
	"github.com/phrazzld/scry-decks/internal/service"
	"github.com/phrazzld/scry-decks/internal/service/auth"
	"github.com/phrazzld/scry-decks/internal/service/card_review"
	"github.com/phrazzld/scry-decks/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid rating", fmt.Errorf("%w: 7", domain.ErrInvalidRating), http.StatusBadRequest},
		{"invariant violation", fmt.Errorf("%w: ease 1.1", domain.ErrInvariantViolation), http.StatusInternalServerError},
		{"card not found", store.ErrCardNotFound, http.StatusNotFound},
		{"collection not found", store.ErrCollectionNotFound, http.StatusNotFound},
		{"review conflict", fmt.Errorf("%w: %w", card_review.ErrReviewConflict, store.ErrConflict), http.StatusConflict},
		{"store conflict", store.ErrConflict, http.StatusConflict},
		{"duplicate", store.ErrDuplicate, http.StatusConflict},
		{"wrapped generic not found", fmt.Errorf("load deck: %w", store.ErrNotFound), http.StatusNotFound},
		{"wrapped duplicate", fmt.Errorf("create collection: %w", store.ErrDuplicate), http.StatusConflict},
		{"card not owned", card_review.ErrCardNotOwned, http.StatusForbidden},
		{"collection not owned", card_review.ErrCollectionNotOwned, http.StatusForbidden},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized},
		{"invalid days", srs.ErrInvalidDays, http.StatusBadRequest},
		{"invalid id", domain.NewValidationError("id", "has invalid format", domain.ErrInvalidID), http.StatusBadRequest},
		{"validation", fmt.Errorf("%w: %w", domain.ErrValidation, domain.ErrCardFrontEmpty), http.StatusBadRequest},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "An unexpected error occurred"},
		{"invalid rating", domain.ErrInvalidRating, "Rating must be between 1 and 4"},
		{"card not owned", card_review.ErrCardNotOwned, "You do not own this card"},
		{"collection not owned", service.ErrNotOwned, "You do not own this collection"},
		{"conflict", card_review.ErrReviewConflict, "Card was modified by another request, please retry"},
		{"field error", domain.NewValidationError("limit", "must be a non-negative integer", domain.ErrValidation),
			"Invalid limit: must be a non-negative integer"},
		{"domain rule", fmt.Errorf("%w: %w", domain.ErrValidation, domain.ErrCardFrontEmpty), "card front cannot be empty"},
		// Internal detail never leaks.
		{"invariant", fmt.Errorf("%w: ease factor 1.1 below minimum", domain.ErrInvariantViolation),
			"An unexpected error occurred"},
		{"database error", errors.New("dial tcp 10.0.0.1:5432: connection refused"), "An unexpected error occurred"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, GetSafeErrorMessage(tc.err))
		})
	}
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	v := validator.New()

	err := v.Struct(SubmitReviewRequest{Rating: 9})
	require.Error(t, err)
	assert.Equal(t, "Invalid Rating: too large", SanitizeValidationError(err))

	err = v.Struct(CreateCardRequest{CollectionID: "x", Front: "a", Back: "b"})
	require.Error(t, err)
	assert.Equal(t, "Invalid CollectionID: invalid ID format", SanitizeValidationError(err))

	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("something else")))
}
