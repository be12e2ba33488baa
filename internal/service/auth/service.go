// Package auth handles signup, login, and session tokens. Login failures
// surface a single generic message: infrastructure detail never reaches
// the end user.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/auralabs/aura-server/internal/app"
	"github.com/auralabs/aura-server/internal/db"
	svcErr "github.com/auralabs/aura-server/internal/errors"
	"github.com/auralabs/aura-server/internal/repository"
)

type Service struct {
	appCtx      *app.AppContext
	profileRepo *repository.ProfileRepository
	secret      []byte
	tokenTTL    time.Duration
}

func NewService(appCtx *app.AppContext, jwtSecret string, tokenTTL time.Duration) *Service {
	return &Service{
		appCtx:      appCtx,
		profileRepo: repository.NewProfileRepository(appCtx.DB),
		secret:      []byte(jwtSecret),
		tokenTTL:    tokenTTL,
	}
}

// SignUpParams carries the profile fields collected at registration.
type SignUpParams struct {
	Email    string
	Password string
	Name     string
	Age      int
	Bio      string
	Photos   []string
	Tags     []string
}

// SignUp creates the user's profile row and returns a session token.
func (s *Service) SignUp(ctx context.Context, p SignUpParams) (*db.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(p.Email))
	if email == "" || len(p.Password) < 8 || strings.TrimSpace(p.Name) == "" || p.Age < 18 {
		return nil, "", svcErr.ErrInvalidArgument
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &db.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(p.Name),
		Age:          p.Age,
		Bio:          p.Bio,
		Photos:       p.Photos,
		Tags:         p.Tags,
	}
	if err := s.profileRepo.Create(ctx, user); err != nil {
		// only a duplicate email is the caller's fault; any other write
		// failure is a backend problem and stays retryable
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", fmt.Errorf("%w: email already registered", svcErr.ErrInvalidArgument)
		}
		return nil, "", fmt.Errorf("failed to create profile: %w", err)
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	s.appCtx.Logger.Info("user signed up", "user_id", user.ID)
	return user, token, nil
}

// LogIn verifies credentials and returns a session token. Every failure
// mode (unknown email, wrong password) yields the same generic error.
func (s *Service) LogIn(ctx context.Context, email, password string) (*db.User, string, error) {
	user, err := s.profileRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, "", svcErr.ErrUnauthenticated
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", svcErr.ErrUnauthenticated
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *Service) issueToken(userID uint64) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// VerifyToken validates a bearer token and returns the user ID it names.
func (s *Service) VerifyToken(tokenString string) (uint64, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return s.secret, nil
		})
	if err != nil || !token.Valid {
		return 0, svcErr.ErrUnauthenticated
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return 0, svcErr.ErrUnauthenticated
	}
	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || userID == 0 {
		return 0, svcErr.ErrUnauthenticated
	}
	return userID, nil
}
