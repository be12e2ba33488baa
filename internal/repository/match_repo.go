package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/auralabs/aura-server/internal/db"
	svcErr "github.com/auralabs/aura-server/internal/errors"
)

// MatchRepository provides data access for the Match model.
type MatchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

// CanonicalPair orders two user IDs so the smaller one is first. Matches
// are always stored with user_a_id < user_b_id, which lets the unique
// pair index enforce at-most-one match per unordered pair.
func CanonicalPair(a, b uint64) (uint64, uint64) {
	if a > b {
		return b, a
	}
	return a, b
}

// CreateForPair inserts the match for an unordered pair exactly once.
//
// The insert uses ON CONFLICT DO NOTHING against the unique pair index:
// under a creation race the second writer affects zero rows, and we fall
// back to fetching the row the winner inserted. Callers always get the
// one true match for the pair, and created tells them whether this call
// inserted it. No in-process locking is involved, so the guarantee holds
// across processes.
func (r *MatchRepository) CreateForPair(
	ctx context.Context,
	userID, otherID uint64,
) (match *db.Match, created bool, err error) {
	userA, userB := CanonicalPair(userID, otherID)

	m := db.Match{
		ID:      uuid.NewString(),
		UserAID: userA,
		UserBID: userB,
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_a_id"}, {Name: "user_b_id"}},
			DoNothing: true,
		}).
		Create(&m)
	if res.Error != nil {
		return nil, false, fmt.Errorf("failed to create match: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		// re-read so server-assigned timestamps are populated
		fresh, err := r.GetByPair(ctx, userA, userB)
		if err != nil {
			return nil, false, err
		}
		return fresh, true, nil
	}

	// lost the race (or already matched): return the existing record
	existing, err := r.GetByPair(ctx, userA, userB)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// GetByID fetches a match by identifier.
func (r *MatchRepository) GetByID(ctx context.Context, matchID string) (*db.Match, error) {
	var m db.Match
	err := r.db.WithContext(ctx).First(&m, "id = ?", matchID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.ErrInvalidMatch
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetByPair fetches the match for an unordered pair, if any.
func (r *MatchRepository) GetByPair(ctx context.Context, a, b uint64) (*db.Match, error) {
	userA, userB := CanonicalPair(a, b)
	var m db.Match
	err := r.db.WithContext(ctx).
		First(&m, "user_a_id = ? AND user_b_id = ?", userA, userB).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListForUser returns every match the user participates in, ordered by
// creation time ascending.
func (r *MatchRepository) ListForUser(ctx context.Context, userID uint64) ([]db.Match, error) {
	var matches []db.Match
	err := r.db.WithContext(ctx).
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Order("created_at ASC, id ASC").
		Find(&matches).Error
	return matches, err
}

// UpdateLastMessage refreshes the cached chat-preview fields inside an
// already-open transaction. Called by the conversation append, after the
// message insert has succeeded, never before.
func (r *MatchRepository) UpdateLastMessage(
	tx *gorm.DB,
	matchID, text string,
	at time.Time,
) error {
	return tx.Model(&db.Match{}).
		Where("id = ?", matchID).
		Updates(map[string]any{
			"last_message":    text,
			"last_message_at": at,
		}).Error
}
