package chat_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/auralabs/aura-server/internal/app"
	"github.com/auralabs/aura-server/internal/cache"
	"github.com/auralabs/aura-server/internal/config"
	"github.com/auralabs/aura-server/internal/db"
	svcErr "github.com/auralabs/aura-server/internal/errors"
	"github.com/auralabs/aura-server/internal/events"
	"github.com/auralabs/aura-server/internal/genai"
	"github.com/auralabs/aura-server/internal/repository"
	"github.com/auralabs/aura-server/internal/service/chat"
)

// stubModerator returns a fixed verdict or error, and remembers the last
// text it was asked about.
type stubModerator struct {
	verdict  genai.Verdict
	err      error
	lastText string
}

func (m *stubModerator) Classify(_ context.Context, text string) (genai.Verdict, error) {
	m.lastText = text
	return m.verdict, m.err
}

func setupAppCtx(t *testing.T) *app.AppContext {
	t.Helper()

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	dbase, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := dbase.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, dbase.AutoMigrate(&db.User{}, &db.Swipe{}, &db.Match{}, &db.Message{}))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()

	redisCache := cache.NewRedisCache(cfg)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus := events.NewBus(redisCache.Client, logger)

	return app.New(dbase, redisCache, bus, logger)
}

func newMatch(t *testing.T, appCtx *app.AppContext, a, b uint64) *db.Match {
	t.Helper()
	m, _, err := repository.NewMatchRepository(appCtx.DB).CreateForPair(context.Background(), a, b)
	require.NoError(t, err)
	return m
}

func messageCount(t *testing.T, appCtx *app.AppContext, matchID string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, appCtx.DB.Model(&db.Message{}).Where("match_id = ?", matchID).Count(&count).Error)
	return count
}

func TestSendAppendsAndUpdatesPreview(t *testing.T) {
	ctx := context.Background()
	appCtx := setupAppCtx(t)
	m := newMatch(t, appCtx, 1, 2)
	svc := chat.NewService(appCtx, &stubModerator{verdict: genai.VerdictSafe})

	msg, err := svc.Send(ctx, m.ID, 1, "dinner friday?")
	require.NoError(t, err)
	assert.Equal(t, m.ID, msg.MatchID)
	assert.Equal(t, uint64(1), msg.SenderID)

	fresh, err := repository.NewMatchRepository(appCtx.DB).GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "dinner friday?", fresh.LastMessage)
	require.NotNil(t, fresh.LastMessageAt)
	assert.WithinDuration(t, msg.CreatedAt, *fresh.LastMessageAt, time.Millisecond)
}

func TestSendUnknownMatch(t *testing.T) {
	ctx := context.Background()
	appCtx := setupAppCtx(t)
	svc := chat.NewService(appCtx, &stubModerator{verdict: genai.VerdictSafe})

	_, err := svc.Send(ctx, "no-such-match", 1, "hello")
	assert.ErrorIs(t, err, svcErr.ErrInvalidMatch)
}

func TestSendRejectsNonParticipant(t *testing.T) {
	ctx := context.Background()
	appCtx := setupAppCtx(t)
	m := newMatch(t, appCtx, 1, 2)
	svc := chat.NewService(appCtx, &stubModerator{verdict: genai.VerdictSafe})

	_, err := svc.Send(ctx, m.ID, 3, "let me in")
	assert.ErrorIs(t, err, svcErr.ErrInvalidSender)
	assert.Zero(t, messageCount(t, appCtx, m.ID), "nothing may be written for a rejected sender")
}

func TestSendBlockedByModeration(t *testing.T) {
	ctx := context.Background()
	appCtx := setupAppCtx(t)
	m := newMatch(t, appCtx, 1, 2)
	svc := chat.NewService(appCtx, &stubModerator{verdict: genai.VerdictUnsafe})

	_, err := svc.Send(ctx, m.ID, 1, "something vile")
	assert.ErrorIs(t, err, svcErr.ErrMessageBlocked)
	assert.Zero(t, messageCount(t, appCtx, m.ID))
}

func TestSendFailsOpenWhenModerationDown(t *testing.T) {
	ctx := context.Background()
	appCtx := setupAppCtx(t)
	m := newMatch(t, appCtx, 1, 2)
	svc := chat.NewService(appCtx, &stubModerator{err: errors.New("oracle unreachable")})

	msg, err := svc.Send(ctx, m.ID, 2, "still getting through")
	require.NoError(t, err, "an oracle outage must not surface as a send failure")
	require.NotNil(t, msg)
	assert.Equal(t, int64(1), messageCount(t, appCtx, m.ID))
}

func TestHistoryOrdering(t *testing.T) {
	ctx := context.Background()
	appCtx := setupAppCtx(t)
	m := newMatch(t, appCtx, 1, 2)
	svc := chat.NewService(appCtx, &stubModerator{verdict: genai.VerdictSafe})

	for i := 0; i < 3; i++ {
		_, err := svc.Send(ctx, m.ID, uint64(1+i%2), fmt.Sprintf("message %d", i))
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	msgs, _, err := svc.History(ctx, m.ID, 1, nil, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	for i := range msgs {
		assert.Equal(t, fmt.Sprintf("message %d", i), msgs[i].Text)
	}
}

func TestHistoryUnknownMatch(t *testing.T) {
	ctx := context.Background()
	svc := chat.NewService(setupAppCtx(t), &stubModerator{verdict: genai.VerdictSafe})

	_, _, err := svc.History(ctx, "missing", 1, nil, 0)
	assert.ErrorIs(t, err, svcErr.ErrInvalidMatch)
}

func TestHistoryHiddenFromNonParticipants(t *testing.T) {
	ctx := context.Background()
	appCtx := setupAppCtx(t)
	m := newMatch(t, appCtx, 1, 2)
	svc := chat.NewService(appCtx, &stubModerator{verdict: genai.VerdictSafe})

	_, err := svc.Send(ctx, m.ID, 1, "our private secret")
	require.NoError(t, err)

	// an outsider gets the same answer as for a match that does not exist
	_, _, err = svc.History(ctx, m.ID, 3, nil, 0)
	assert.ErrorIs(t, err, svcErr.ErrNotFound)

	msgs, _, err := svc.History(ctx, m.ID, 2, nil, 0)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}

func TestSubscribeSnapshotAnchoredAtTail(t *testing.T) {
	ctx := context.Background()
	appCtx := setupAppCtx(t)
	m := newMatch(t, appCtx, 1, 2)
	svc := chat.NewService(appCtx, &stubModerator{verdict: genai.VerdictSafe})

	var lastID string
	for i := 0; i < 55; i++ {
		msg, err := svc.Send(ctx, m.ID, uint64(1+i%2), fmt.Sprintf("message %d", i))
		require.NoError(t, err)
		lastID = msg.ID
	}

	log, err := svc.Subscribe(ctx, m.ID, 1)
	require.NoError(t, err)
	defer log.Close()

	// the snapshot holds the newest 50 of the 55 stored messages, ending
	// at the live edge so the stream continues from it without a gap
	require.Len(t, log.Snapshot, 50)
	assert.Equal(t, "message 5", log.Snapshot[0].Text)
	assert.Equal(t, "message 54", log.Snapshot[49].Text)
	assert.Equal(t, lastID, log.Snapshot[49].ID)
}

func TestSubscribeRequiresParticipant(t *testing.T) {
	ctx := context.Background()
	appCtx := setupAppCtx(t)
	m := newMatch(t, appCtx, 1, 2)
	svc := chat.NewService(appCtx, &stubModerator{verdict: genai.VerdictSafe})

	_, err := svc.Subscribe(ctx, m.ID, 3)
	assert.ErrorIs(t, err, svcErr.ErrInvalidSender)
}

func TestSubscribeDeliversNewMessages(t *testing.T) {
	ctx := context.Background()
	appCtx := setupAppCtx(t)
	m := newMatch(t, appCtx, 1, 2)
	svc := chat.NewService(appCtx, &stubModerator{verdict: genai.VerdictSafe})

	_, err := svc.Send(ctx, m.ID, 1, "before subscribe")
	require.NoError(t, err)

	log, err := svc.Subscribe(ctx, m.ID, 2)
	require.NoError(t, err)
	defer log.Close()

	require.Len(t, log.Snapshot, 1)
	assert.Equal(t, "before subscribe", log.Snapshot[0].Text)

	sent, err := svc.Send(ctx, m.ID, 1, "after subscribe")
	require.NoError(t, err)

	select {
	case ev := <-log.Events():
		assert.Equal(t, events.KindMessageCreated, ev.Kind)
		require.NotNil(t, ev.Message)
		assert.Equal(t, sent.ID, ev.Message.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message event")
	}
}
