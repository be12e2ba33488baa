// Package swipe implements the swipe ledger write path and match
// detection: record the verdict, look for a reciprocal like, and create
// the match exactly once when the likes are mutual.
package swipe

import (
	"context"
	"time"

	"github.com/auralabs/aura-server/internal/app"
	"github.com/auralabs/aura-server/internal/db"
	svcErr "github.com/auralabs/aura-server/internal/errors"
	"github.com/auralabs/aura-server/internal/events"
	"github.com/auralabs/aura-server/internal/repository"
)

// Result is the outcome of evaluating one swipe. Match is set whenever a
// mutual like exists for the pair; MatchCreated is true only for the call
// that actually inserted the match record.
type Result struct {
	Mutual       bool
	MatchCreated bool
	Match        *db.Match
}

type Service struct {
	appCtx    *app.AppContext
	swipeRepo *repository.SwipeRepository
	matchRepo *repository.MatchRepository
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:    appCtx,
		swipeRepo: repository.NewSwipeRepository(appCtx.DB),
		matchRepo: repository.NewMatchRepository(appCtx.DB),
	}
}

// Evaluate records the swipe and runs match detection.
//
// Sequence:
//  1. Validate: actor and target must be distinct, known-shaped IDs.
//     A self-swipe fails before anything is written.
//  2. Record the verdict (upsert: a repeat swipe overwrites the old one).
//  3. A pass never produces a match.
//  4. On a like, check whether the target currently likes the actor back.
//  5. If mutual, create the match for the unordered pair. Creation is
//     exactly-once under concurrent evaluations: the unique pair index
//     rejects the duplicate insert and the existing match is returned
//     instead. Creation publishes the match to both participants'
//     event channels.
func (s *Service) Evaluate(ctx context.Context, actorID, targetID uint64, liked bool) (*Result, error) {
	if actorID == 0 || targetID == 0 {
		return nil, svcErr.ErrInvalidArgument
	}
	if actorID == targetID {
		return nil, svcErr.ErrInvalidArgument
	}

	prev, err := s.swipeRepo.GetVerdict(ctx, actorID, targetID)
	if err != nil {
		return nil, err
	}
	if err := s.swipeRepo.Upsert(ctx, actorID, targetID, liked); err != nil {
		return nil, err
	}

	// keep the target's incoming-like counter warm; only a verdict change
	// moves it, so repeated identical swipes cannot drift the count
	key := s.appCtx.RedisCache.KeyForLikeCount(targetID)
	switch {
	case liked && (prev == nil || !*prev):
		_, _ = s.appCtx.RedisCache.Incr(ctx, key)
		_ = s.appCtx.RedisCache.Client.Expire(ctx, key, time.Hour).Err()
	case !liked && prev != nil && *prev:
		_, _ = s.appCtx.RedisCache.Decr(ctx, key)
		_ = s.appCtx.RedisCache.Client.Expire(ctx, key, time.Hour).Err()
	}

	if !liked {
		return &Result{}, nil
	}

	mutual, err := s.swipeRepo.HasLiked(ctx, targetID, actorID)
	if err != nil {
		return nil, err
	}
	if !mutual {
		return &Result{}, nil
	}

	match, created, err := s.matchRepo.CreateForPair(ctx, actorID, targetID)
	if err != nil {
		return nil, err
	}

	if created {
		s.appCtx.Logger.Info("match created",
			"match_id", match.ID, "user_a", match.UserAID, "user_b", match.UserBID)
		ev := events.Event{Kind: events.KindMatchCreated, Match: match}
		_ = s.appCtx.Bus.Publish(ctx, events.UserChannel(match.UserAID), ev)
		_ = s.appCtx.Bus.Publish(ctx, events.UserChannel(match.UserBID), ev)
	}

	return &Result{Mutual: true, MatchCreated: created, Match: match}, nil
}
