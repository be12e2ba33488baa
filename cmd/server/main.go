package main

import (
	"context"

	"github.com/joho/godotenv"

	"github.com/auralabs/aura-server/internal/app"
	"github.com/auralabs/aura-server/internal/cache"
	"github.com/auralabs/aura-server/internal/config"
	"github.com/auralabs/aura-server/internal/db"
	"github.com/auralabs/aura-server/internal/events"
	"github.com/auralabs/aura-server/internal/genai"
	"github.com/auralabs/aura-server/internal/logger"
	"github.com/auralabs/aura-server/internal/server"
	"github.com/auralabs/aura-server/internal/service/auth"
	"github.com/auralabs/aura-server/internal/service/chat"
	"github.com/auralabs/aura-server/internal/service/discover"
	"github.com/auralabs/aura-server/internal/service/match"
	"github.com/auralabs/aura-server/internal/service/swipe"
	"github.com/auralabs/aura-server/internal/service/trial"
)

func main() {
	_ = godotenv.Load()

	cfg := config.New()

	logger.InitFromConfig(cfg)
	log := logger.L()

	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}

	bus := events.NewBus(redisCache.Client, log)
	appCtx := app.New(database, redisCache, bus, log)

	// generative-language boundary: degrade gracefully when unconfigured
	var moderator genai.Moderator
	var suggester genai.Suggester
	if client, err := genai.NewClient(cfg, log); err == nil {
		moderator, suggester = client, client
	} else {
		log.Warn("genai disabled, using fail-open defaults", "err", err)
		moderator, suggester = genai.NopModerator{}, genai.StaticSuggester{}
	}

	svcs := server.Services{
		Auth:      auth.NewService(appCtx, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Discover:  discover.NewService(appCtx),
		Swipes:    swipe.NewService(appCtx),
		Matches:   match.NewService(appCtx),
		Chats:     chat.NewService(appCtx, moderator),
		Trial:     trial.NewService(redisCache, trial.SystemClock{}, cfg.Trial.Duration, cfg.Trial.ReminderDays, log),
		Suggester: suggester,
	}

	if cfg.App.ENV == "development" {
		if err := db.SeedDemoData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	srv := server.New(appCtx, svcs)
	if err := srv.Start(cfg); err != nil {
		log.Error("http server stopped", "err", err)
	}
}
