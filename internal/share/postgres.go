package share

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	pq "github.com/lib/pq"

	"github.com/julianstephens/streaklit/internal/constants"
	"github.com/julianstephens/streaklit/internal/logger"
	"github.com/julianstephens/streaklit/internal/migration"
	"github.com/julianstephens/streaklit/internal/models"
	"github.com/julianstephens/streaklit/migrations"
)

var (
	ErrInvalidConnectionString = errors.New("invalid PostgreSQL connection string")
	ErrEmbeddedCredentials     = errors.New("connection string must not contain a password")
)

// PostgresRepository stores snapshots in a PostgreSQL database under the
// streaklit schema so several users can resolve each other's codes.
type PostgresRepository struct {
	connStr string
	db      *sql.DB
}

func NewPostgresRepository(connStr string) *PostgresRepository {
	return &PostgresRepository{connStr: withSearchPath(connStr)}
}

// Open connects, creates the schema and applies the Postgres migrations.
func (r *PostgresRepository) Open(ctx context.Context) error {
	db, err := sql.Open("postgres", r.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		if strings.Contains(err.Error(), "SSL is not enabled on the server") && !hasParam(r.connStr, "sslmode") {
			return fmt.Errorf("failed to connect to database: %w (hint: try adding sslmode=disable to your connection string)", err)
		}
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+constants.AppName); err != nil {
		db.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}

	subFS, err := fs.Sub(migrations.FS, "postgres")
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to access postgres migrations: %w", err)
	}
	runner := migration.NewRunner(db, subFS, migration.Postgres)
	if _, err := runner.Apply(func(msg string) { logger.Debug(msg) }); err != nil {
		db.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	r.db = db
	return nil
}

func (r *PostgresRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *PostgresRepository) Insert(ctx context.Context, a models.SharedAchievement) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO shared_achievements (`+achievementColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (share_code) DO NOTHING`,
		a.Code, a.HabitName, a.HabitColor, a.CurrentStreak, a.LongestStreak,
		a.TotalCompletions, a.CompletionRate, nullString(a.Message), a.CreatedAt.UTC(), a.ExpiresAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert shared achievement: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCodeTaken
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, code string) (models.SharedAchievement, error) {
	var (
		a       models.SharedAchievement
		message sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT "+achievementColumns+" FROM shared_achievements WHERE share_code = $1", code,
	).Scan(&a.Code, &a.HabitName, &a.HabitColor, &a.CurrentStreak, &a.LongestStreak,
		&a.TotalCompletions, &a.CompletionRate, &message, &a.CreatedAt, &a.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.SharedAchievement{}, ErrNotFound
		}
		return models.SharedAchievement{}, fmt.Errorf("failed to load shared achievement: %w", err)
	}
	a.CreatedAt = a.CreatedAt.UTC()
	a.ExpiresAt = a.ExpiresAt.UTC()
	if message.Valid {
		a.Message = &message.String
	}
	return a, nil
}

func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM shared_achievements WHERE expires_at <= $1", now.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired shares: %w", err)
	}
	return res.RowsAffected()
}

func isURL(connStr string) bool {
	return strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://")
}

// withSearchPath pins the connection to the streaklit schema unless the
// caller already chose one.
func withSearchPath(connStr string) string {
	if isURL(connStr) {
		u, err := url.Parse(connStr)
		if err != nil {
			logger.Warn("failed to parse Postgres connection string", "err", err)
			return connStr
		}
		q := u.Query()
		if q.Get("search_path") == "" {
			q.Set("search_path", constants.AppName)
			u.RawQuery = q.Encode()
		}
		return u.String()
	}
	if !hasParam(connStr, "search_path") {
		return strings.TrimSpace(connStr) + " search_path=" + constants.AppName
	}
	return connStr
}

// hasParam reports whether a URL or key=value connection string sets key.
func hasParam(connStr, key string) bool {
	if u, err := url.Parse(connStr); err == nil && u.Scheme != "" {
		for k := range u.Query() {
			if strings.EqualFold(k, key) {
				return true
			}
		}
	}
	for _, part := range strings.Fields(connStr) {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) == 2 && strings.EqualFold(kv[0], key) {
			return true
		}
	}
	return false
}

// ValidateConnString checks that connStr parses as a PostgreSQL URL or DSN.
// With allowPassword false an embedded password is rejected.
func ValidateConnString(connStr string, allowPassword bool) error {
	if strings.TrimSpace(connStr) == "" {
		return fmt.Errorf("%w: connection string cannot be empty", ErrInvalidConnectionString)
	}
	if _, err := pq.NewConnector(connStr); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
	}

	if isURL(connStr) {
		u, err := url.Parse(connStr)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
		}
		if u.Host == "" && u.User == nil && (u.Path == "" || u.Path == "/") {
			return fmt.Errorf("%w: connection URL is incomplete", ErrInvalidConnectionString)
		}
		if _, set := u.User.Password(); set && !allowPassword {
			return ErrEmbeddedCredentials
		}
		return nil
	}

	if !allowPassword && hasParam(connStr, "password") {
		return ErrEmbeddedCredentials
	}
	return nil
}

var _ Repository = (*PostgresRepository)(nil)
