package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var seedNames = []string{
	"Maya", "Leo", "Sofia", "Ethan", "Chloe", "Noah", "Isla", "Lucas",
	"Aria", "Milo", "Freya", "Oscar", "Luna", "Felix", "Nova", "Jasper",
	"Ivy", "Theo", "Zara", "Finn",
}

var seedTags = []string{
	"yoga", "hiking", "foodie", "live music", "travel", "film", "coffee",
	"climbing", "art", "running",
}

// SeedDemoData resets the database and populates it with demo profiles,
// swipes, and the matches/conversations implied by the mutual likes.
//
// Behavior:
//  1. Clears users, swipes, matches, and messages.
//  2. Creates 20 demo users with hashed passwords.
//  3. Generates swipes with ~70% likes; every 3rd pair is made mutual.
//  4. Creates the match row for each mutual pair and seeds an opening
//     message so chat previews are populated.
//
// Compatible with both MySQL and SQLite.
func SeedDemoData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	for _, table := range []string{"messages", "matches", "swipes", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	switch db.Dialector.Name() {
	case "mysql":
		db.Exec("ALTER TABLE users AUTO_INCREMENT = 1")
	case "sqlite":
		db.Exec("DELETE FROM sqlite_sequence WHERE name = 'users'")
	}

	log.Println("Cleared existing data")

	// --- Users ---
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	for i, name := range seedNames {
		tags := []string{
			seedTags[r.Intn(len(seedTags))],
			seedTags[r.Intn(len(seedTags))],
		}
		user := User{
			Email:        fmt.Sprintf("%s%d@example.com", name, i+1),
			PasswordHash: string(hash),
			Name:         name,
			Age:          21 + r.Intn(15),
			Bio:          fmt.Sprintf("Hi, I'm %s. Ask me about %s.", name, tags[0]),
			Photos:       []string{fmt.Sprintf("https://picsum.photos/seed/%s/400/600", name)},
			Tags:         tags,
			Verified:     r.Intn(100) < 30,
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
	}
	log.Printf("Seeded %d users.", len(seedNames))

	// --- Swipes + matches ---
	counter := 0
	for actorID := uint64(1); actorID <= 20; actorID++ {
		for j := 0; j < 8; j++ {
			targetID := uint64(r.Intn(20) + 1)
			if actorID == targetID {
				continue
			}

			liked := r.Intn(100) < 70

			// guarantee mutual likes every 3rd pair
			mutual := counter%3 == 0
			if mutual {
				liked = true
				recip := Swipe{ActorID: targetID, TargetID: actorID, Liked: true}
				db.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "actor_id"}, {Name: "target_id"}},
					DoUpdates: clause.AssignmentColumns([]string{"liked", "updated_at"}),
				}).Create(&recip)
			}

			swipe := Swipe{ActorID: actorID, TargetID: targetID, Liked: liked}
			if err := db.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "actor_id"}, {Name: "target_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"liked", "updated_at"}),
			}).Create(&swipe).Error; err != nil {
				return fmt.Errorf("failed to seed swipe: %w", err)
			}

			if mutual {
				if err := seedMatch(db, actorID, targetID); err != nil {
					return err
				}
			}

			counter++
		}
	}

	return nil
}

func seedMatch(db *gorm.DB, a, b uint64) error {
	userA, userB := a, b
	if userA > userB {
		userA, userB = userB, userA
	}

	match := Match{
		ID:      uuid.NewString(),
		UserAID: userA,
		UserBID: userB,
	}
	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_a_id"}, {Name: "user_b_id"}},
		DoNothing: true,
	}).Create(&match)
	if res.Error != nil {
		return fmt.Errorf("failed to seed match: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil // pair already matched in an earlier iteration
	}

	text := "Hey! We matched 🎉"
	msg := Message{
		ID:       uuid.Must(uuid.NewV7()).String(),
		MatchID:  match.ID,
		SenderID: a,
		Text:     text,
	}
	if err := db.Create(&msg).Error; err != nil {
		return fmt.Errorf("failed to seed message: %w", err)
	}
	now := time.Now().UTC()
	return db.Model(&Match{}).Where("id = ?", match.ID).
		Updates(map[string]any{"last_message": text, "last_message_at": now}).Error
}
