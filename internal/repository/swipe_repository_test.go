package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/auralabs/aura-server/internal/db"
	"github.com/auralabs/aura-server/internal/repository"
)

// setup in-memory DB
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(&db.User{}, &db.Swipe{}, &db.Match{}, &db.Message{}))
	return database
}

func TestUpsertOverwritesVerdict(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewSwipeRepository(dbase)

	// like, then overwrite with pass
	require.NoError(t, repo.Upsert(ctx, 1, 2, true))
	require.NoError(t, repo.Upsert(ctx, 1, 2, false))

	var swipes []db.Swipe
	require.NoError(t, dbase.Find(&swipes).Error)
	require.Len(t, swipes, 1)
	assert.Equal(t, false, swipes[0].Liked)
}

func TestHasLiked(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewSwipeRepository(dbase)

	_ = repo.Upsert(ctx, 1, 2, true)
	_ = repo.Upsert(ctx, 2, 3, false)

	liked, err := repo.HasLiked(ctx, 1, 2)
	assert.NoError(t, err)
	assert.True(t, liked)

	liked, err = repo.HasLiked(ctx, 2, 3)
	assert.NoError(t, err)
	assert.False(t, liked)

	liked, err = repo.HasLiked(ctx, 2, 1)
	assert.NoError(t, err)
	assert.False(t, liked)
}

func TestGetLikersExcludesPassed(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewSwipeRepository(dbase)

	// actors 1,2 liked user 99
	_ = repo.Upsert(ctx, 1, 99, true)
	_ = repo.Upsert(ctx, 2, 99, true)
	// user 99 passed actor 2 → exclude
	_ = repo.Upsert(ctx, 99, 2, false)

	swipes, _, err := repo.GetLikers(ctx, 99, nil, 10)
	assert.NoError(t, err)
	require.Len(t, swipes, 1)
	assert.Equal(t, uint64(1), swipes[0].ActorID)
}

func TestGetLikersPagination(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewSwipeRepository(dbase)

	for actor := uint64(1); actor <= 4; actor++ {
		_ = repo.Upsert(ctx, actor, 99, true)
	}

	first, token, err := repo.GetLikers(ctx, 99, nil, 2)
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.NotNil(t, token)

	second, token2, err := repo.GetLikers(ctx, 99, token, 2)
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Nil(t, token2)

	// no overlap between pages
	seen := map[uint64]bool{}
	for _, sw := range append(first, second...) {
		assert.False(t, seen[sw.ActorID], "actor %d returned twice", sw.ActorID)
		seen[sw.ActorID] = true
	}
}

func TestCountLikers(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewSwipeRepository(dbase)

	_ = repo.Upsert(ctx, 1, 99, true)
	_ = repo.Upsert(ctx, 2, 99, true)
	_ = repo.Upsert(ctx, 3, 99, false)
	_ = repo.Upsert(ctx, 99, 2, false) // passed: excluded

	count, err := repo.CountLikers(ctx, 99)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
