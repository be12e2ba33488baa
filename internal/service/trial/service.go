// Package trial implements the free-trial gate. The start timestamp is
// persisted in Redis (seeded on first read, never expired) and the clock
// is injected, so status computation is deterministic under test.
package trial

import (
	"context"
	"log/slog"
	"time"
)

// Clock abstracts time.Now for deterministic tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// Store is the persisted key-value dependency; satisfied by cache.RedisCache.
type Store interface {
	GetTrialStart(ctx context.Context, userID uint64) (time.Time, bool, error)
	SetTrialStartNX(ctx context.Context, userID uint64, start time.Time) (time.Time, error)
}

// Status is the trial state reported to the client.
type Status struct {
	Active        bool      `json:"active"`
	DaysRemaining int       `json:"days_remaining"`
	ShowReminder  bool      `json:"show_reminder"`
	StartedAt     time.Time `json:"started_at"`
	EndsAt        time.Time `json:"ends_at"`
}

type Service struct {
	store        Store
	clock        Clock
	duration     time.Duration
	reminderDays int
	log          *slog.Logger
}

func NewService(store Store, clock Clock, duration time.Duration, reminderDays int, log *slog.Logger) *Service {
	return &Service{
		store:        store,
		clock:        clock,
		duration:     duration,
		reminderDays: reminderDays,
		log:          log,
	}
}

// Status reads (or seeds, on first call) the user's trial start timestamp
// and recomputes the countdown. The reminder shows during the final
// reminderDays days of an active trial.
func (s *Service) Status(ctx context.Context, userID uint64) (Status, error) {
	now := s.clock.Now()

	start, ok, err := s.store.GetTrialStart(ctx, userID)
	if err != nil {
		return Status{}, err
	}
	if !ok {
		start, err = s.store.SetTrialStartNX(ctx, userID, now)
		if err != nil {
			return Status{}, err
		}
		s.log.Debug("trial started", "user_id", userID, "start", start)
	}

	end := start.Add(s.duration)
	st := Status{StartedAt: start, EndsAt: end}

	if now.After(end) {
		return st, nil
	}

	remaining := end.Sub(now)
	days := int((remaining + 24*time.Hour - 1) / (24 * time.Hour))

	st.Active = true
	st.DaysRemaining = days
	st.ShowReminder = days <= s.reminderDays
	return st, nil
}
