package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/auralabs/aura-server/internal/db"
	"github.com/auralabs/aura-server/internal/utils/pagination"
)

// MessageRepository provides data access for the conversation log.
// Messages are append-only; nothing here mutates or deletes rows.
type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(database *gorm.DB) *MessageRepository {
	return &MessageRepository{db: database}
}

// Append inserts a message inside an already-open transaction. The caller
// pairs it with MatchRepository.UpdateLastMessage so the log append and
// the chat-preview cache commit or roll back together.
func (r *MessageRepository) Append(tx *gorm.DB, msg *db.Message) error {
	return tx.Create(msg).Error
}

// ListByMatch returns messages for a match ordered by (created_at, id)
// ascending, with cursor pagination for history backfill.
func (r *MessageRepository) ListByMatch(
	ctx context.Context,
	matchID string,
	paginationToken *string,
	limit int,
) ([]db.Message, *string, error) {
	var messages []db.Message

	cursor, err := pagination.Decode(derefString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Table("messages m").
		Where("m.match_id = ?", matchID).
		Order("m.created_at ASC, m.id ASC").
		Limit(limit + 1)

	if cursor.ID != "" && cursor.CreatedUnix > 0 {
		ts := time.UnixMilli(cursor.CreatedUnix)
		query = query.Where(
			"(m.created_at > ? OR (m.created_at = ? AND m.id > ?))",
			ts, ts, cursor.ID,
		)
	}

	if err := query.Find(&messages).Error; err != nil {
		return nil, nil, err
	}

	var nextToken *string
	if len(messages) > limit {
		last := messages[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			ID:          last.ID,
			CreatedUnix: last.CreatedAt.UnixMilli(),
		})
		nextToken = &token
		messages = messages[:limit]
	}

	return messages, nextToken, nil
}

// ListRecentByMatch returns the newest limit messages of a match in
// ascending order. Unlike ListByMatch this is anchored at the tail of the
// log, so the last element is always the most recent stored message.
func (r *MessageRepository) ListRecentByMatch(
	ctx context.Context,
	matchID string,
	limit int,
) ([]db.Message, error) {
	var messages []db.Message
	err := r.db.WithContext(ctx).
		Table("messages m").
		Where("m.match_id = ?", matchID).
		Order("m.created_at DESC, m.id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// CountByMatch returns the log length for a match.
func (r *MessageRepository) CountByMatch(ctx context.Context, matchID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Message{}).
		Where("match_id = ?", matchID).
		Count(&count).Error
	return count, err
}
