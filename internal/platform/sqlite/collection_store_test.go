package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-decks/internal/domain"
	"github.com/phrazzld/scry-decks/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectionStore_CRUD(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	older, err := domain.NewCollection(userID, "Older", "first", testNow)
	require.NoError(t, err)
	newer, err := domain.NewCollection(userID, "Newer", "", testNow.Add(time.Minute))
	require.NoError(t, err)
	foreign, err := domain.NewCollection(uuid.New(), "Someone else's", "", testNow)
	require.NoError(t, err)

	for _, c := range []*domain.Collection{older, newer, foreign} {
		require.NoError(t, f.collections.Create(ctx, c))
	}

	got, err := f.collections.GetByID(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, older, got)

	list, err := f.collections.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID, "newest first")
	assert.Equal(t, older.ID, list[1].ID)

	empty, err := f.collections.ListByUser(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = f.collections.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrCollectionNotFound)
}

func TestCollectionStore_DeleteCascadesToCards(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	col := f.collection(t)
	card := f.card(t, col.ID, testNow)

	require.NoError(t, f.collections.Delete(ctx, col.ID))

	_, err := f.cards.GetByID(ctx, card.ID)
	assert.ErrorIs(t, err, store.ErrCardNotFound)
	assert.ErrorIs(t, f.collections.Delete(ctx, col.ID), store.ErrCollectionNotFound)
}

func TestCollectionStore_CreateInvalid(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	err := f.collections.Create(context.Background(), &domain.Collection{ID: uuid.New(), UserID: uuid.New()})
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
	assert.ErrorIs(t, err, domain.ErrCollectionTitleEmpty)
}
