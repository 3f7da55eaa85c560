package share

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/julianstephens/streaklit/internal/keyring"
	"github.com/julianstephens/streaklit/internal/logger"
	"github.com/julianstephens/streaklit/internal/models"
)

// EnvShareDSN names the environment variable holding a share database DSN.
const EnvShareDSN = "STREAKLIT_SHARE_DSN"

// DSNSource records where a connection string came from.
type DSNSource string

const (
	SourceNone     DSNSource = ""
	SourceEnv      DSNSource = "env"
	SourceSettings DSNSource = "settings"
	SourceKeyring  DSNSource = "keyring"
)

// ResolveDSN looks for a share database in the environment, then settings,
// then the OS keyring. A DSN kept in settings may not carry a password
// because settings are stored in plain text.
func ResolveDSN(settings models.Settings) (string, DSNSource, error) {
	if dsn := strings.TrimSpace(os.Getenv(EnvShareDSN)); dsn != "" {
		if err := ValidateConnString(dsn, true); err != nil {
			return "", SourceEnv, err
		}
		return dsn, SourceEnv, nil
	}

	if dsn := strings.TrimSpace(settings.ShareDSN); dsn != "" {
		if err := ValidateConnString(dsn, false); err != nil {
			return "", SourceSettings, err
		}
		return dsn, SourceSettings, nil
	}

	dsn, err := keyring.GetShareDSN()
	switch {
	case err == nil:
		if err := ValidateConnString(dsn, true); err != nil {
			return "", SourceKeyring, err
		}
		return dsn, SourceKeyring, nil
	case errors.Is(err, keyring.ErrNotFound):
	default:
		logger.Debug("keyring lookup failed", "err", err)
	}
	return "", SourceNone, nil
}

// Open builds a Service on the shared Postgres database when one is
// configured and on the local SQLite connection otherwise. local may be nil
// for stores without a database.
func Open(ctx context.Context, settings models.Settings, local *sql.DB, opts ...Option) (*Service, error) {
	dsn, source, err := ResolveDSN(settings)
	if err != nil {
		return nil, fmt.Errorf("share database from %s: %w", source, err)
	}

	if dsn != "" {
		repo := NewPostgresRepository(dsn)
		if err := repo.Open(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		logger.Debug("sharing via postgres", "source", source)
		return NewService(repo, opts...), nil
	}

	if local == nil {
		return nil, fmt.Errorf("%w: configure a share database or use the sqlite store", ErrUnavailable)
	}
	return NewService(NewSQLiteRepository(local), opts...), nil
}
