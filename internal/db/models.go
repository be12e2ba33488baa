package db

import (
	"time"
)

// User is a profile record. Owned by the user it represents; rows are
// created at signup and mutated only by their owner.
type User struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement"`
	Email        string    `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash string    `gorm:"size:255;not null"`
	Name         string    `gorm:"size:64;not null"`
	Age          int       `gorm:"not null"`
	Bio          string    `gorm:"type:text"`
	Photos       []string  `gorm:"serializer:json"`
	Tags         []string  `gorm:"serializer:json"`
	Verified     bool      `gorm:"default:false"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// Swipe records an actor's like/pass verdict on a target.
//
// Composite PK: (ActorID, TargetID)
//   - One row per ordered pair: swiping the same target again overwrites
//     the verdict rather than appending a duplicate record.
//
// Indexes:
//   - idx_target_liked_updated_actor(target_id, liked, updated_at DESC, actor_id)
//     serves "who liked me" lists with cursor pagination.
//   - idx_actor_target_liked(actor_id, target_id, liked)
//     serves the O(1) reciprocal-like lookup in match detection.
type Swipe struct {
	ActorID   uint64    `gorm:"primaryKey;index:idx_actor_target_liked,priority:1"`
	TargetID  uint64    `gorm:"primaryKey;index:idx_target_liked_updated_actor,priority:1;index:idx_actor_target_liked,priority:2"`
	Liked     bool      `gorm:"not null;index:idx_target_liked_updated_actor,priority:2;index:idx_actor_target_liked,priority:3"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;index:idx_target_liked_updated_actor,priority:3,sort:desc"`
}

// Match is the durable record of a confirmed mutual like. The pair is
// stored canonically (UserAID < UserBID) under a unique index, so a
// concurrent duplicate insert deterministically conflicts and the caller
// falls back to fetching the existing row. At most one match exists per
// unordered pair of users.
type Match struct {
	ID            string `gorm:"primaryKey;size:36"`
	UserAID       uint64 `gorm:"not null;uniqueIndex:idx_match_pair,priority:1"`
	UserBID       uint64 `gorm:"not null;uniqueIndex:idx_match_pair,priority:2;index:idx_match_user_b"`
	LastMessage   string `gorm:"type:text"`
	LastMessageAt *time.Time
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

// Involves reports whether the given user is one of the match's participants.
func (m *Match) Involves(userID uint64) bool {
	return m.UserAID == userID || m.UserBID == userID
}

// OtherUser returns the participant that is not userID.
func (m *Match) OtherUser(userID uint64) uint64 {
	if m.UserAID == userID {
		return m.UserBID
	}
	return m.UserAID
}

// Message is one entry in a match's conversation log. Append-only,
// ordered by (CreatedAt, ID) ascending. IDs are UUIDv7 so the tie-break
// at equal timestamps follows append order. SenderID is always one of
// the owning match's two participants.
type Message struct {
	ID        string    `gorm:"primaryKey;size:36"`
	MatchID   string    `gorm:"size:36;not null;index:idx_message_match_created,priority:1"`
	SenderID  uint64    `gorm:"not null"`
	Text      string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_message_match_created,priority:2"`
}
