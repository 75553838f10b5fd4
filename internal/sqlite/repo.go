// Package sqlite implements the telescope repositories on a sqlite database,
// for when running a redis server isn't worth it.
package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	tserrs "github.com/jdholdren/telescope/internal/errors"
	"github.com/jdholdren/telescope/internal/migrations"
	"github.com/jdholdren/telescope/internal/telescope"
)

// Ensure Repo implements the Repository interface
var _ telescope.Repository = (*Repo)(nil)

type Repo struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) Repo {
	return Repo{db: db}
}

// Open connects to the database file at path and migrates it.
func Open(path string) (*sqlx.DB, error) {
	dbx, err := sqlx.Open("sqlite", fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path))
	if err != nil {
		return nil, fmt.Errorf("error opening database: %s", err)
	}

	// Migrate, always
	if err := migrations.Run(dbx); err != nil {
		dbx.Close()
		return nil, fmt.Errorf("error running migrations: %s", err)
	}

	return dbx, nil
}

func (r Repo) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("error pinging database: %w", unavailable(err))
	}

	return nil
}

func unavailable(err error) error {
	return tserrs.E(err, tserrs.KindStorageUnavailable)
}
