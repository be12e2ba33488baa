// Package discover produces swipe candidates and the "liked you" surface.
package discover

import (
	"context"
	"strconv"
	"time"

	"github.com/auralabs/aura-server/internal/app"
	"github.com/auralabs/aura-server/internal/db"
	svcErr "github.com/auralabs/aura-server/internal/errors"
	"github.com/auralabs/aura-server/internal/repository"
)

const (
	defaultCandidateLimit = 10
	maxCandidateLimit     = 50
	likersPageSize        = 5
)

type Service struct {
	appCtx      *app.AppContext
	profileRepo *repository.ProfileRepository
	swipeRepo   *repository.SwipeRepository
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:      appCtx,
		profileRepo: repository.NewProfileRepository(appCtx.DB),
		swipeRepo:   repository.NewSwipeRepository(appCtx.DB),
	}
}

// NextCandidates returns up to limit profiles for the user to evaluate.
// The requesting user and anyone they already swiped on (either verdict)
// are excluded, so a candidate is never re-presented.
func (s *Service) NextCandidates(ctx context.Context, userID uint64, limit int) ([]db.User, error) {
	if userID == 0 {
		return nil, svcErr.ErrInvalidArgument
	}
	if limit <= 0 {
		limit = defaultCandidateLimit
	}
	if limit > maxCandidateLimit {
		limit = maxCandidateLimit
	}
	return s.profileRepo.GetCandidates(ctx, userID, limit)
}

// Liker is one entry of the "liked you" list.
type Liker struct {
	ActorID uint64    `json:"actor_id"`
	LikedAt time.Time `json:"liked_at"`
	Profile *db.User  `json:"profile,omitempty"`
}

// LikedYou lists users who currently like the recipient, newest first,
// excluding anyone the recipient explicitly passed. Cursor-paginated.
func (s *Service) LikedYou(ctx context.Context, userID uint64, paginationToken *string) ([]Liker, *string, error) {
	if userID == 0 {
		return nil, nil, svcErr.ErrInvalidArgument
	}

	swipes, nextToken, err := s.swipeRepo.GetLikers(ctx, userID, paginationToken, likersPageSize)
	if err != nil {
		return nil, nil, err
	}

	likers := make([]Liker, 0, len(swipes))
	for _, sw := range swipes {
		liker := Liker{ActorID: sw.ActorID, LikedAt: sw.UpdatedAt}
		if profile, err := s.profileRepo.GetByID(ctx, sw.ActorID); err == nil {
			liker.Profile = profile
		}
		likers = append(likers, liker)
	}

	return likers, nextToken, nil
}

// CountLikedYou returns how many users like the recipient.
// Cache-first:
//  1. read the Redis counter (likes:count:userID), refreshing its TTL,
//  2. on a miss fall back to the DB count,
//  3. write the fresh count back with a 1h TTL.
func (s *Service) CountLikedYou(ctx context.Context, userID uint64) (int64, error) {
	if userID == 0 {
		return 0, svcErr.ErrInvalidArgument
	}

	key := s.appCtx.RedisCache.KeyForLikeCount(userID)
	if cached, _ := s.appCtx.RedisCache.Get(ctx, key); cached != "" {
		if n, err := strconv.ParseInt(cached, 10, 64); err == nil {
			_ = s.appCtx.RedisCache.Client.Expire(ctx, key, time.Hour).Err()
			return n, nil
		}
	}

	count, err := s.swipeRepo.CountLikers(ctx, userID)
	if err != nil {
		return 0, err
	}

	_ = s.appCtx.RedisCache.UpdateLikeCount(ctx, userID, count)
	return count, nil
}
