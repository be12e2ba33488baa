package server_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
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
	"github.com/auralabs/aura-server/internal/events"
	"github.com/auralabs/aura-server/internal/genai"
	"github.com/auralabs/aura-server/internal/repository"
	"github.com/auralabs/aura-server/internal/server"
	"github.com/auralabs/aura-server/internal/service/auth"
	"github.com/auralabs/aura-server/internal/service/chat"
	"github.com/auralabs/aura-server/internal/service/discover"
	"github.com/auralabs/aura-server/internal/service/match"
	"github.com/auralabs/aura-server/internal/service/swipe"
	"github.com/auralabs/aura-server/internal/service/trial"
)

type testServer struct {
	appCtx *app.AppContext
	router http.Handler
	auth   *auth.Service
	chats  *chat.Service
}

func setupServer(t *testing.T) *testServer {
	t.Helper()

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	dbase, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
		TranslateError:         true,
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
	appCtx := app.New(dbase, redisCache, bus, logger)

	authSvc := auth.NewService(appCtx, "test-secret", time.Hour)
	chatSvc := chat.NewService(appCtx, genai.NopModerator{})

	srv := server.New(appCtx, server.Services{
		Auth:      authSvc,
		Discover:  discover.NewService(appCtx),
		Swipes:    swipe.NewService(appCtx),
		Matches:   match.NewService(appCtx),
		Chats:     chatSvc,
		Trial:     trial.NewService(redisCache, trial.SystemClock{}, 7*24*time.Hour, 3, logger),
		Suggester: genai.StaticSuggester{},
	})

	return &testServer{
		appCtx: appCtx,
		router: srv.Router(),
		auth:   authSvc,
		chats:  chatSvc,
	}
}

func (ts *testServer) signUp(t *testing.T, email string) (uint64, string) {
	t.Helper()
	user, token, err := ts.auth.SignUp(context.Background(), auth.SignUpParams{
		Email:    email,
		Password: "correct-horse",
		Name:     "Test User",
		Age:      25,
	})
	require.NoError(t, err)
	return user.ID, token
}

func (ts *testServer) get(path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func TestHistoryEndpointHiddenFromNonParticipants(t *testing.T) {
	ctx := context.Background()
	ts := setupServer(t)

	userA, tokenA := ts.signUp(t, "a@example.com")
	userB, _ := ts.signUp(t, "b@example.com")
	_, tokenC := ts.signUp(t, "c@example.com")

	m, _, err := repository.NewMatchRepository(ts.appCtx.DB).CreateForPair(ctx, userA, userB)
	require.NoError(t, err)
	_, err = ts.chats.Send(ctx, m.ID, userA, "our private secret")
	require.NoError(t, err)

	path := "/api/matches/" + m.ID + "/messages"

	// an outsider cannot read the conversation, or learn that it exists
	rec := ts.get(path, tokenC)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotContains(t, rec.Body.String(), "our private secret")

	// a participant can
	rec = ts.get(path, tokenA)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "our private secret")
}

func TestGetMatchEndpointHiddenFromNonParticipants(t *testing.T) {
	ctx := context.Background()
	ts := setupServer(t)

	userA, tokenA := ts.signUp(t, "a@example.com")
	userB, _ := ts.signUp(t, "b@example.com")
	_, tokenC := ts.signUp(t, "c@example.com")

	m, _, err := repository.NewMatchRepository(ts.appCtx.DB).CreateForPair(ctx, userA, userB)
	require.NoError(t, err)

	rec := ts.get("/api/matches/"+m.ID, tokenC)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.get("/api/matches/"+m.ID, tokenA)
	assert.Equal(t, http.StatusOK, rec.Code)
}
