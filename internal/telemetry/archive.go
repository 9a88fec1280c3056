package telemetry

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/syncagent/syncagent/internal/errors"
	"github.com/syncagent/syncagent/internal/logger"
)

const defaultDirPerm = 0o755

// Archive keeps a local copy of every flushed batch so operators can
// inspect what left the agent. It records history only; remote delivery
// semantics are unaffected by it.
type Archive interface {
	Store(ctx context.Context, batch []Sample) error
	PruneBefore(ctx context.Context, cutoff time.Time) error
	Close() error
}

type ArchiveConfig struct {
	Enabled bool
	DBPath  string
}

func (c ArchiveConfig) Validate() error {
	errFactory := errors.New()
	if c.Enabled && c.DBPath == "" {
		return errFactory.New(ErrInvalidDBPath)
	}
	return nil
}

// NewArchive opens the sqlite archive, or returns a no-op archive when
// disabled.
func NewArchive(cfg ArchiveConfig) (Archive, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if !cfg.Enabled {
		logger.Debug().Msg("telemetry archive disabled, using no-op archive")
		return &noopArchive{}, nil
	}

	logger.Debug().Msgf("Initializing telemetry archive at: %s", cfg.DBPath)

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), defaultDirPerm); err != nil {
		return nil, errFactory.Wrap(ErrArchiveInit, err)
	}

	db, err := sql.Open("sqlite3", cfg.DBPath)
	if err != nil {
		return nil, errFactory.Wrap(ErrArchiveInit, err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, errFactory.Wrap(ErrArchiveInit, err)
	}

	return &sqliteArchive{db: db}, nil
}

type sqliteArchive struct {
	db *sql.DB
	mu sync.Mutex
}

func (a *sqliteArchive) Store(ctx context.Context, batch []Sample) error {
	errFactory := errors.New()

	a.mu.Lock()
	defer a.mu.Unlock()

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return errFactory.Wrap(ErrArchiveAccess, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO samples (timestamp, kind, name, value, labels)
        VALUES (?, ?, ?, ?, ?)
    `)
	if err != nil {
		return errFactory.Wrap(ErrArchiveAccess, err)
	}
	defer stmt.Close()

	for _, s := range batch {
		labels := ""
		if len(s.Labels) > 0 {
			encoded, merr := json.Marshal(s.Labels)
			if merr != nil {
				return errFactory.Wrap(ErrArchiveAccess, merr)
			}
			labels = string(encoded)
		}
		if _, err := stmt.ExecContext(ctx, s.Timestamp, string(s.Kind), s.Name, s.Value, labels); err != nil {
			return errFactory.Wrap(ErrArchiveAccess, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errFactory.Wrap(ErrArchiveAccess, err)
	}

	return nil
}

func (a *sqliteArchive) PruneBefore(ctx context.Context, cutoff time.Time) error {
	errFactory := errors.New()

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, err := a.db.ExecContext(ctx, `DELETE FROM samples WHERE timestamp < ?`, cutoff.Unix()); err != nil {
		return errFactory.Wrap(ErrArchiveAccess, err)
	}

	return nil
}

func (a *sqliteArchive) Close() error {
	errFactory := errors.New()

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.db.Close(); err != nil {
		return errFactory.Wrap(ErrArchiveClose, err)
	}
	return nil
}

type noopArchive struct{}

func (*noopArchive) Store(_ context.Context, _ []Sample) error {
	return nil
}

func (*noopArchive) PruneBefore(_ context.Context, _ time.Time) error {
	return nil
}

func (*noopArchive) Close() error {
	return nil
}
