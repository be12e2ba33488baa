// Package chat is the conversation log: moderated append, history reads,
// and live per-match subscriptions.
package chat

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/auralabs/aura-server/internal/app"
	"github.com/auralabs/aura-server/internal/db"
	svcErr "github.com/auralabs/aura-server/internal/errors"
	"github.com/auralabs/aura-server/internal/events"
	"github.com/auralabs/aura-server/internal/genai"
	"github.com/auralabs/aura-server/internal/repository"
)

const defaultHistoryLimit = 50

type Service struct {
	appCtx    *app.AppContext
	matchRepo *repository.MatchRepository
	msgRepo   *repository.MessageRepository
	moderator genai.Moderator
}

func NewService(appCtx *app.AppContext, moderator genai.Moderator) *Service {
	return &Service{
		appCtx:    appCtx,
		matchRepo: repository.NewMatchRepository(appCtx.DB),
		msgRepo:   repository.NewMessageRepository(appCtx.DB),
		moderator: moderator,
	}
}

// Send runs the full send pipeline for one message.
//
// Pipeline:
//  1. Resolve the match; an unknown match fails with ErrInvalidMatch.
//  2. The sender must be one of the match's two participants
//     (ErrInvalidSender otherwise). Nothing is written on either failure.
//  3. Moderation: an Unsafe verdict blocks the send with ErrMessageBlocked.
//     An oracle transport error fails OPEN: the outage is logged and the
//     send proceeds as if safe. An unreachable oracle must never surface
//     as a send failure.
//  4. One transaction appends the message and then refreshes the match's
//     cached last-message fields. A reader can never observe the preview
//     pointing at a message that isn't in the log.
//  5. Events are published after commit: the message to the match channel,
//     the updated match to both participants' channels.
func (s *Service) Send(ctx context.Context, matchID string, senderID uint64, text string) (*db.Message, error) {
	if text == "" {
		return nil, svcErr.ErrInvalidArgument
	}

	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.Involves(senderID) {
		return nil, svcErr.ErrInvalidSender
	}

	verdict, err := s.moderator.Classify(ctx, text)
	if err != nil {
		s.appCtx.Logger.Warn("moderation unavailable, failing open",
			"match_id", matchID, "err", err)
	} else if verdict == genai.VerdictUnsafe {
		return nil, svcErr.ErrMessageBlocked
	}

	// time-ordered ID: at equal (millisecond) timestamps the (created_at, id)
	// sort key still honors append order
	msg := &db.Message{
		ID:       uuid.Must(uuid.NewV7()).String(),
		MatchID:  matchID,
		SenderID: senderID,
		Text:     text,
	}

	err = s.appCtx.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.msgRepo.Append(tx, msg); err != nil {
			return err
		}
		// cache update strictly after a successful append
		return s.matchRepo.UpdateLastMessage(tx, matchID, msg.Text, msg.CreatedAt)
	})
	if err != nil {
		return nil, err
	}

	match.LastMessage = msg.Text
	match.LastMessageAt = &msg.CreatedAt

	_ = s.appCtx.Bus.Publish(ctx, events.MatchChannel(matchID),
		events.Event{Kind: events.KindMessageCreated, Message: msg})
	update := events.Event{Kind: events.KindMatchUpdated, Match: match}
	_ = s.appCtx.Bus.Publish(ctx, events.UserChannel(match.UserAID), update)
	_ = s.appCtx.Bus.Publish(ctx, events.UserChannel(match.UserBID), update)

	return msg, nil
}

// History returns a page of the conversation log in timestamp order.
// Only the match's two participants may read it; anyone else gets
// NotFound, the same answer as for a match that does not exist.
func (s *Service) History(ctx context.Context, matchID string, userID uint64, paginationToken *string, limit int) ([]db.Message, *string, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, nil, err
	}
	if !match.Involves(userID) {
		return nil, nil, svcErr.ErrNotFound
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return s.msgRepo.ListByMatch(ctx, matchID, paginationToken, limit)
}

// Log is a live view of one conversation: the most recent stored messages
// plus a stream of new ones. Same cancellation contract as the match feed.
type Log struct {
	Snapshot []db.Message
	sub      *events.Subscription
}

func (l *Log) Events() <-chan events.Event { return l.sub.Events() }

func (l *Log) Close() error { return l.sub.Close() }

// Subscribe opens a live subscription on a conversation. The requesting
// user must be a participant. As with match feeds, the listener is
// registered before the snapshot read so no message falls in between.
// The snapshot is anchored at the tail of the log: it always includes the
// most recent stored message, so the stream continues seamlessly from it
// and older history is fetched through History.
func (s *Service) Subscribe(ctx context.Context, matchID string, userID uint64) (*Log, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.Involves(userID) {
		return nil, svcErr.ErrInvalidSender
	}

	sub := s.appCtx.Bus.Subscribe(ctx, events.MatchChannel(matchID))

	snapshot, err := s.msgRepo.ListRecentByMatch(ctx, matchID, defaultHistoryLimit)
	if err != nil {
		_ = sub.Close()
		return nil, err
	}

	return &Log{Snapshot: snapshot, sub: sub}, nil
}
