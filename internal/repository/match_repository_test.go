package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auralabs/aura-server/internal/db"
	svcErr "github.com/auralabs/aura-server/internal/errors"
	"github.com/auralabs/aura-server/internal/repository"
)

func TestCreateForPairExactlyOnce(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewMatchRepository(dbase)

	first, created, err := repo.CreateForPair(ctx, 2, 1)
	require.NoError(t, err)
	assert.True(t, created)
	require.NotNil(t, first)

	// pair is stored canonically regardless of argument order
	assert.Equal(t, uint64(1), first.UserAID)
	assert.Equal(t, uint64(2), first.UserBID)

	// second creation for the same pair, reversed order: no duplicate,
	// the existing record comes back
	second, created, err := repo.CreateForPair(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, dbase.Model(&db.Match{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGetByIDUnknownMatch(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMatchRepository(setupTestDB(t))

	_, err := repo.GetByID(ctx, "no-such-match")
	assert.ErrorIs(t, err, svcErr.ErrInvalidMatch)
}

func TestListForUserOrderedByCreation(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewMatchRepository(dbase)

	m1, _, err := repo.CreateForPair(ctx, 1, 2)
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	m2, _, err := repo.CreateForPair(ctx, 3, 1)
	require.NoError(t, err)

	matches, err := repo.ListForUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, m1.ID, matches[0].ID)
	assert.Equal(t, m2.ID, matches[1].ID)

	// user 4 participates in nothing
	matches, err = repo.ListForUser(ctx, 4)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestUpdateLastMessage(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewMatchRepository(dbase)

	m, _, err := repo.CreateForPair(ctx, 1, 2)
	require.NoError(t, err)

	at := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, repo.UpdateLastMessage(dbase, m.ID, "see you there", at))

	fresh, err := repo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "see you there", fresh.LastMessage)
	require.NotNil(t, fresh.LastMessageAt)
	assert.WithinDuration(t, at, *fresh.LastMessageAt, time.Millisecond)
}
