// Package match is the match registry: lookups, per-user listings, and
// live subscriptions pushed from the event bus.
package match

import (
	"context"

	"github.com/auralabs/aura-server/internal/app"
	"github.com/auralabs/aura-server/internal/db"
	"github.com/auralabs/aura-server/internal/events"
	"github.com/auralabs/aura-server/internal/repository"
)

type Service struct {
	appCtx    *app.AppContext
	matchRepo *repository.MatchRepository
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:    appCtx,
		matchRepo: repository.NewMatchRepository(appCtx.DB),
	}
}

// Get fetches a match by ID.
func (s *Service) Get(ctx context.Context, matchID string) (*db.Match, error) {
	return s.matchRepo.GetByID(ctx, matchID)
}

// List returns the user's matches ordered by creation time.
func (s *Service) List(ctx context.Context, userID uint64) ([]db.Match, error) {
	return s.matchRepo.ListForUser(ctx, userID)
}

// Feed is a live view of one user's matches: the snapshot at subscribe
// time plus a stream of add/update events. Close releases the listener;
// after Close no further events are delivered.
type Feed struct {
	Snapshot []db.Match
	sub      *events.Subscription
}

func (f *Feed) Events() <-chan events.Event { return f.sub.Events() }

func (f *Feed) Close() error { return f.sub.Close() }

// Subscribe opens a live subscription for the user's match list.
//
// The subscription is registered before the snapshot is read, so a match
// created concurrently with Subscribe is never lost: it appears in the
// snapshot, in the stream, or both. Consumers replace their local state
// from events keyed by match ID, so the overlap is harmless.
func (s *Service) Subscribe(ctx context.Context, userID uint64) (*Feed, error) {
	sub := s.appCtx.Bus.Subscribe(ctx, events.UserChannel(userID))

	snapshot, err := s.matchRepo.ListForUser(ctx, userID)
	if err != nil {
		_ = sub.Close()
		return nil, err
	}

	return &Feed{Snapshot: snapshot, sub: sub}, nil
}
