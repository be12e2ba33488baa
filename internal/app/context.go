package app

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/auralabs/aura-server/internal/cache"
	"github.com/auralabs/aura-server/internal/events"
)

// AppContext holds shared dependencies (DB, Redis, event bus, logger).
type AppContext struct {
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Bus        *events.Bus
	Logger     *slog.Logger
}

// New creates a new AppContext.
func New(db *gorm.DB, rdb *cache.RedisCache, bus *events.Bus, logger *slog.Logger) *AppContext {
	return &AppContext{
		DB:         db,
		RedisCache: rdb,
		Bus:        bus,
		Logger:     logger,
	}
}
