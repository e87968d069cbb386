package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewCard(t *testing.T) {
	t.Parallel() // Enable parallel execution
	collectionID := uuid.New()
	now := time.Date(2025, 3, 1, 12, 0, 0, 123456789, time.UTC)

	card, err := NewCard(collectionID, "What is Go?", "A programming language", now)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if card.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if card.CollectionID != collectionID {
		t.Errorf("Expected collection ID %s, got %s", collectionID, card.CollectionID)
	}

	if card.Scheduling.State != CardStateNew {
		t.Errorf("Expected state %q, got %q", CardStateNew, card.Scheduling.State)
	}

	if card.Scheduling.EaseFactor != DefaultEaseFactor {
		t.Errorf("Expected ease factor %v, got %v", DefaultEaseFactor, card.Scheduling.EaseFactor)
	}

	if card.Scheduling.Reps != 0 || card.Scheduling.Lapses != 0 || card.Scheduling.LastInterval != 0 {
		t.Errorf("Expected zeroed counters, got %+v", card.Scheduling)
	}

	wantDue := time.Date(2025, 3, 1, 12, 0, 0, 123000000, time.UTC)
	if !card.Scheduling.DueAt.Equal(wantDue) {
		t.Errorf("Expected due at %v, got %v", wantDue, card.Scheduling.DueAt)
	}

	if !card.CreatedAt.Equal(card.UpdatedAt) {
		t.Error("Expected CreatedAt and UpdatedAt to match on creation")
	}
}

func TestNewCardValidationErrors(t *testing.T) {
	t.Parallel()
	now := time.Now()

	testCases := []struct {
		name         string
		collectionID uuid.UUID
		front        string
		back         string
		expected     error
	}{
		{"missing collection", uuid.Nil, "front", "back", ErrCardCollectionIDEmpty},
		{"blank front", uuid.New(), "   ", "back", ErrCardFrontEmpty},
		{"blank back", uuid.New(), "front", "", ErrCardBackEmpty},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewCard(tc.collectionID, tc.front, tc.back, now)
			if !errors.Is(err, tc.expected) {
				t.Errorf("Expected error %v, got %v", tc.expected, err)
			}
		})
	}
}

func TestCardUpdateContent(t *testing.T) {
	t.Parallel()
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	card, err := NewCard(uuid.New(), "front", "back", created)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	newFront := "new front"
	later := created.Add(time.Hour)
	if err := card.UpdateContent(&newFront, nil, later); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if card.Front != newFront || card.Back != "back" {
		t.Errorf("Unexpected content after update: %q / %q", card.Front, card.Back)
	}
	if !card.UpdatedAt.Equal(later) {
		t.Errorf("Expected UpdatedAt %v, got %v", later, card.UpdatedAt)
	}

	empty := ""
	if err := card.UpdateContent(nil, &empty, later.Add(time.Hour)); !errors.Is(err, ErrCardBackEmpty) {
		t.Errorf("Expected %v, got %v", ErrCardBackEmpty, err)
	}
	if card.Back != "back" {
		t.Errorf("Expected back to be restored, got %q", card.Back)
	}
	if !card.UpdatedAt.Equal(later) {
		t.Error("Expected UpdatedAt to be unchanged after a failed update")
	}
}

func TestNewCollection(t *testing.T) {
	t.Parallel()
	userID := uuid.New()

	c, err := NewCollection(userID, "Japanese N5", "", time.Now())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !c.IsOwnedBy(userID) {
		t.Error("Expected collection to be owned by its creator")
	}
	if c.IsOwnedBy(uuid.New()) || c.IsOwnedBy(uuid.Nil) {
		t.Error("Expected collection not to be owned by other users")
	}

	if _, err := NewCollection(userID, " ", "", time.Now()); err != ErrCollectionTitleEmpty {
		t.Errorf("Expected %v, got %v", ErrCollectionTitleEmpty, err)
	}
	if _, err := NewCollection(uuid.Nil, "title", "", time.Now()); err != ErrCollectionUserIDEmpty {
		t.Errorf("Expected %v, got %v", ErrCollectionUserIDEmpty, err)
	}
}
