package holidays

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"
)

// Store persists the last successfully loaded holiday set, so a restart
// during a source outage can serve a stale-but-valid calendar instead of an
// empty one.
type Store struct {
	db     *sql.DB
	logger *zerolog.Logger
}

// NewStore opens (creating if needed) the snapshot database at path.
func NewStore(path string, logger *zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot directory: %w", err)
	}

	dsn := path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open snapshot database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connect snapshot database: %w", err)
	}

	s := &Store{db: db, logger: logger}
	if err := s.createTables(); err != nil {
		return nil, fmt.Errorf("create snapshot tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("holiday snapshot store opened")
	return s, nil
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS holiday_dates (
		date TEXT PRIMARY KEY
	);
	CREATE TABLE IF NOT EXISTS snapshot_meta (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		saved_at TIMESTAMP NOT NULL
	);`
	_, err := s.db.Exec(schema)
	return err
}

// Save replaces the persisted date list wholesale in one transaction.
func (s *Store) Save(ctx context.Context, dates []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot save: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM holiday_dates`); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO holiday_dates (date) VALUES (?)`)
	if err != nil {
		return fmt.Errorf("prepare snapshot insert: %w", err)
	}
	defer stmt.Close()

	for _, d := range dates {
		if _, err := stmt.ExecContext(ctx, d); err != nil {
			return fmt.Errorf("insert snapshot date %s: %w", d, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO snapshot_meta (id, saved_at) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET saved_at = excluded.saved_at`,
		time.Now().UTC()); err != nil {
		return fmt.Errorf("update snapshot meta: %w", err)
	}

	return tx.Commit()
}

// Load returns the persisted date list and the time it was saved. It
// returns sql.ErrNoRows (wrapped) when no snapshot has been saved yet.
func (s *Store) Load(ctx context.Context) ([]string, time.Time, error) {
	var savedAt time.Time
	if err := s.db.QueryRowContext(ctx, `SELECT saved_at FROM snapshot_meta WHERE id = 1`).Scan(&savedAt); err != nil {
		return nil, time.Time{}, fmt.Errorf("load snapshot meta: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT date FROM holiday_dates ORDER BY date`)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("load snapshot dates: %w", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, time.Time{}, fmt.Errorf("scan snapshot date: %w", err)
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, time.Time{}, err
	}

	return dates, savedAt, nil
}

// PingContext checks the underlying database connection.
func (s *Store) PingContext(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the snapshot database.
func (s *Store) Close() error {
	return s.db.Close()
}
