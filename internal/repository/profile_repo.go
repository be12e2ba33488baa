package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/auralabs/aura-server/internal/db"
	svcErr "github.com/auralabs/aura-server/internal/errors"
)

// ProfileRepository provides data access for the User model.
type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(database *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: database}
}

// Create inserts a new profile row at signup.
func (r *ProfileRepository) Create(ctx context.Context, user *db.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID fetches a profile by identifier.
func (r *ProfileRepository) GetByID(ctx context.Context, userID uint64) (*db.User, error) {
	var u db.User
	err := r.db.WithContext(ctx).First(&u, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail fetches a profile by login email.
func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (*db.User, error) {
	var u db.User
	err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile overwrites the caller-owned profile fields. Identity
// fields (email, password hash, verified flag) are not touched here.
func (r *ProfileRepository) UpdateProfile(ctx context.Context, user *db.User) error {
	return r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id = ?", user.ID).
		Select("name", "age", "bio", "photos", "tags").
		Updates(user).Error
}

// GetCandidates returns up to limit profiles the user can still evaluate:
// everyone except the user themselves and anyone they already swiped on,
// with any verdict.
func (r *ProfileRepository) GetCandidates(
	ctx context.Context,
	userID uint64,
	limit int,
) ([]db.User, error) {
	var users []db.User
	err := r.db.WithContext(ctx).
		Table("users u").
		Where("u.id <> ?", userID).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM swipes s
				WHERE s.actor_id = ?
				  AND s.target_id = u.id
			)`, userID).
		Order("u.id ASC").
		Limit(limit).
		Find(&users).Error
	return users, err
}
