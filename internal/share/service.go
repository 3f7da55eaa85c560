// Package share publishes read-only snapshots of a habit's statistics
// under short public codes.
package share

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"
	"time"

	"github.com/julianstephens/streaklit/internal/constants"
	"github.com/julianstephens/streaklit/internal/logger"
	"github.com/julianstephens/streaklit/internal/models"
	"github.com/julianstephens/streaklit/internal/stats"
	"github.com/julianstephens/streaklit/internal/validation"
)

var (
	// ErrNotFound is returned for an unknown share code.
	ErrNotFound = errors.New("share not found")
	// ErrExpired is returned once a snapshot is past its expiry.
	ErrExpired = errors.New("share has expired")
	// ErrUnavailable wraps every storage failure behind the service.
	ErrUnavailable = errors.New("share storage unavailable")
	// ErrCodeTaken is returned by a Repository when the code already exists.
	ErrCodeTaken = errors.New("share code already in use")
)

// Repository persists snapshots. Insert must not overwrite an existing
// code; it returns ErrCodeTaken instead.
type Repository interface {
	Insert(ctx context.Context, a models.SharedAchievement) error
	Get(ctx context.Context, code string) (models.SharedAchievement, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	Close() error
}

// Service creates and resolves shared achievements.
type Service struct {
	repo   Repository
	now    func() time.Time
	random io.Reader
}

type Option func(*Service)

// WithClock overrides the clock used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRandom overrides the source used for share codes.
func WithRandom(r io.Reader) Option {
	return func(s *Service) { s.random = r }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		now:    time.Now,
		random: rand.Reader,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create snapshots h's statistics as of now and stores them under a fresh
// code valid for constants.ShareValidity. A blank message is stored as nil.
func (s *Service) Create(ctx context.Context, h models.Habit, message string, now time.Time) (models.SharedAchievement, error) {
	message = strings.TrimSpace(message)
	if err := validation.ValidateShareMessage(message); err != nil {
		return models.SharedAchievement{}, err
	}

	st := stats.Calculate(h, now)
	created := now.UTC().Truncate(time.Second)
	a := models.SharedAchievement{
		HabitName:        h.Name,
		HabitColor:       h.Color,
		CurrentStreak:    st.CurrentStreak,
		LongestStreak:    st.LongestStreak,
		TotalCompletions: st.TotalCompletions,
		CompletionRate:   st.CompletionRate,
		CreatedAt:        created,
		ExpiresAt:        created.Add(constants.ShareValidity),
	}
	if message != "" {
		a.Message = &message
	}

	for attempt := 1; attempt <= constants.ShareCodeMaxRetries; attempt++ {
		code, err := GenerateCode(s.random)
		if err != nil {
			return models.SharedAchievement{}, err
		}
		a.Code = code

		err = s.repo.Insert(ctx, a)
		if err == nil {
			return a, nil
		}
		if !errors.Is(err, ErrCodeTaken) {
			return models.SharedAchievement{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		logger.Debug("share code collision", "code", code, "attempt", attempt)
	}
	return models.SharedAchievement{}, fmt.Errorf("%w: no free share code after %d attempts", ErrUnavailable, constants.ShareCodeMaxRetries)
}

// Get resolves a code to its snapshot exactly as it was stored.
func (s *Service) Get(ctx context.Context, code string) (models.SharedAchievement, error) {
	code = strings.TrimSpace(code)
	if !ValidCode(code) {
		return models.SharedAchievement{}, ErrNotFound
	}

	a, err := s.repo.Get(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.SharedAchievement{}, ErrNotFound
		}
		return models.SharedAchievement{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if a.Expired(s.now()) {
		return models.SharedAchievement{}, ErrExpired
	}
	return a, nil
}

// Purge deletes every expired snapshot.
func (s *Service) Purge(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return n, nil
}

// Close releases the underlying repository.
func (s *Service) Close() error {
	return s.repo.Close()
}

// GenerateCode draws constants.ShareCodeLength characters uniformly from
// constants.ShareCodeAlphabet. A nil reader uses crypto/rand.
func GenerateCode(r io.Reader) (string, error) {
	if r == nil {
		r = rand.Reader
	}
	alphabet := constants.ShareCodeAlphabet
	limit := big.NewInt(int64(len(alphabet)))

	var b strings.Builder
	b.Grow(constants.ShareCodeLength)
	for i := 0; i < constants.ShareCodeLength; i++ {
		n, err := rand.Int(r, limit)
		if err != nil {
			return "", fmt.Errorf("failed to generate share code: %w", err)
		}
		b.WriteByte(alphabet[n.Int64()])
	}
	return b.String(), nil
}

// ValidCode reports whether code could have been produced by GenerateCode.
func ValidCode(code string) bool {
	if len(code) != constants.ShareCodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if !strings.ContainsRune(constants.ShareCodeAlphabet, rune(code[i])) {
			return false
		}
	}
	return true
}
