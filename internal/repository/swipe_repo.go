package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/auralabs/aura-server/internal/db"
	"github.com/auralabs/aura-server/internal/utils/pagination"
)

// SwipeRepository provides data access for the Swipe model.
// It encapsulates all queries about like/pass verdicts between users.
type SwipeRepository struct {
	db *gorm.DB
}

// NewSwipeRepository creates a new repository bound to the given DB connection.
func NewSwipeRepository(database *gorm.DB) *SwipeRepository {
	return &SwipeRepository{db: database}
}

// Upsert inserts or updates the verdict actor -> target.
//
// Behavior:
//   - If the (actor_id, target_id) row exists, its "liked" value is updated.
//   - Otherwise a new row is inserted.
//   - The composite PK guarantees one row per ordered pair, so a user's
//     later swipe on the same target overwrites the earlier verdict.
func (r *SwipeRepository) Upsert(
	ctx context.Context,
	actorID, targetID uint64,
	liked bool,
) error {
	swipe := db.Swipe{
		ActorID:  actorID,
		TargetID: targetID,
		Liked:    liked,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "actor_id"}, {Name: "target_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"liked", "updated_at"}),
		}).
		Create(&swipe).Error
}

// GetVerdict returns the actor's stored verdict on the target, or nil if
// the actor has not swiped on them yet.
func (r *SwipeRepository) GetVerdict(
	ctx context.Context,
	actorID, targetID uint64,
) (*bool, error) {
	var swipe db.Swipe
	err := r.db.WithContext(ctx).
		First(&swipe, "actor_id = ? AND target_id = ?", actorID, targetID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &swipe.Liked, nil
}

// HasLiked reports whether actor's current verdict on target is a like.
// This is the reciprocal lookup match detection depends on.
func (r *SwipeRepository) HasLiked(
	ctx context.Context,
	actorID, targetID uint64,
) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("swipes s").
		Where("s.actor_id = ? AND s.target_id = ? AND s.liked = true", actorID, targetID).
		Count(&count).Error
	return count > 0, err
}

// GetLikers returns users whose current verdict on the target is a like.
//
// Behavior:
//   - Excludes users the target explicitly passed.
//   - Ordered by updated_at DESC, actor_id DESC.
//   - Supports cursor-based pagination via paginationToken.
func (r *SwipeRepository) GetLikers(
	ctx context.Context,
	targetID uint64,
	paginationToken *string,
	limit int,
) ([]db.Swipe, *string, error) {
	var swipes []db.Swipe

	cursor, err := pagination.Decode(derefString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Table("swipes s").
		Where("s.target_id = ? AND s.liked = true", targetID).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM swipes s2
				WHERE s2.actor_id = ?
				  AND s2.target_id = s.actor_id
				  AND s2.liked = false
			)`, targetID).
		Order("s.updated_at DESC, s.actor_id DESC").
		Limit(limit + 1)

	if cursor.ActorID > 0 && cursor.UpdatedUnix > 0 {
		ts := time.UnixMilli(cursor.UpdatedUnix)
		query = query.Where(
			"(s.updated_at < ? OR (s.updated_at = ? AND s.actor_id < ?))",
			ts, ts, cursor.ActorID,
		)
	}

	if err := query.Find(&swipes).Error; err != nil {
		return nil, nil, err
	}

	var nextToken *string
	if len(swipes) > limit {
		last := swipes[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			ActorID:     last.ActorID,
			UpdatedUnix: last.UpdatedAt.UnixMilli(),
		})
		nextToken = &token
		swipes = swipes[:limit]
	}

	return swipes, nextToken, nil
}

// CountLikers returns how many users currently like the target, excluding
// anyone the target explicitly passed. Used with the Redis counter cache
// (DB is the fallback).
func (r *SwipeRepository) CountLikers(
	ctx context.Context,
	targetID uint64,
) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("swipes s").
		Where("s.target_id = ? AND s.liked = true", targetID).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM swipes s2
				WHERE s2.actor_id = ?
				  AND s2.target_id = s.actor_id
				  AND s2.liked = false
			)`, targetID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// derefString safely dereferences a string pointer for pagination tokens.
func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
