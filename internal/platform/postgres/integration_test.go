package postgres

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-decks/internal/domain"
	"github.com/phrazzld/scry-decks/internal/domain/srs"
	"github.com/phrazzld/scry-decks/internal/store"
	"github.com/phrazzld/scry-decks/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegration_DueSelection(t *testing.T) {
	db := testdb.OpenPostgres(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	collections := NewPostgresCollectionStore(db, nil)
	cards := NewPostgresCardStore(db, nil)

	col, err := domain.NewCollection(uuid.New(), "integration", "", now)
	require.NoError(t, err)
	require.NoError(t, collections.Create(ctx, col))
	t.Cleanup(func() { _ = collections.Delete(ctx, col.ID) })

	for i := 0; i < 60; i++ {
		card, err := domain.NewCard(col.ID, "front", "back", now.Add(-time.Duration(i)*time.Minute))
		require.NoError(t, err)
		require.NoError(t, cards.Create(ctx, card))
	}
	future, err := domain.NewCard(col.ID, "later", "later", now.Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, cards.Create(ctx, future))

	due, err := cards.ListDue(ctx, col.ID, now, 50)
	require.NoError(t, err)
	require.Len(t, due, 50)

	for i := 1; i < len(due); i++ {
		assert.False(t, due[i].Scheduling.DueAt.Before(due[i-1].Scheduling.DueAt))
	}
	assert.True(t, due[0].Scheduling.DueAt.Equal(now.Add(-59*time.Minute)))
	for _, c := range due {
		assert.NotEqual(t, future.ID, c.ID)
	}
}

func TestIntegration_ConcurrentReviewsDoNotLoseUpdates(t *testing.T) {
	db := testdb.OpenPostgres(t)
	ctx := context.Background()
	now := time.Now().UTC()

	collections := NewPostgresCollectionStore(db, nil)
	cards := NewPostgresCardStore(db, nil)

	col, err := domain.NewCollection(uuid.New(), "race", "", now)
	require.NoError(t, err)
	require.NoError(t, collections.Create(ctx, col))
	t.Cleanup(func() { _ = collections.Delete(ctx, col.ID) })

	card, err := domain.NewCard(col.ID, "front", "back", now)
	require.NoError(t, err)
	require.NoError(t, cards.Create(ctx, card))

	const reviewers = 8
	var wg sync.WaitGroup
	errs := make([]error, reviewers)
	for i := 0; i < reviewers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
				txCards := cards.WithTx(tx)
				current, err := txCards.GetForUpdate(ctx, card.ID)
				if err != nil {
					return err
				}
				next, err := srs.Advance(current.Scheduling, domain.RatingGood, now)
				if err != nil {
					return err
				}
				return txCards.UpdateScheduling(ctx, card.ID, current.Scheduling.Reps, next, now)
			})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err, "row lock serializes reviewers")
	}

	final, err := cards.GetByID(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, reviewers, final.Scheduling.Reps)
}
