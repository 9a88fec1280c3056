package telemetry

import (
	"database/sql"

	"github.com/syncagent/syncagent/internal/errors"
)

// initSchema initializes the archive schema
func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS samples (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            timestamp INTEGER NOT NULL,
            kind TEXT NOT NULL,
            name TEXT NOT NULL,
            value REAL NOT NULL,
            labels TEXT
        );
        CREATE INDEX IF NOT EXISTS idx_samples_timestamp ON samples(timestamp);
    `)
	if err != nil {
		return errors.New().Wrap(ErrSchemaInit, err)
	}

	return nil
}
