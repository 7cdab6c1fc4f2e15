// internal/store/sqlite.go
//
// SQLite-backed Store.
// Responsibilities:
//   - Opening the database with safe defaults (WAL, busy timeout, foreign keys).
//   - Applying embedded migrations from sql/*.sql (idempotent, recorded in _migrations).
//   - Saving and loading sessions with their rows and screenshot keys.

package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/kbfreder/wordle-analysis/internal/board"
)

//go:embed sql/*.sql
var migrations embed.FS

type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and migrates it.
func OpenSQLite(path string) (Store, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &sqliteStore{db: db}, nil
}

// openDB ensures the parent directory exists, then opens with busy timeout
// and WAL journaling and enforces foreign keys.
func openDB(dsn string) (*sql.DB, error) {
	dir := filepath.Dir(dsn)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	return db, nil
}

// migrate applies each embedded migration once, in lexical order, inside
// its own transaction.
func migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	files, err := fs.Glob(migrations, "sql/*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(files)

	for _, f := range files {
		var done int
		err := db.QueryRow(`SELECT 1 FROM _migrations WHERE name=?`, f).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", f).Msg("already applied")
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}

		sqlBytes, err := migrations.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(string(sqlBytes)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if _, err := tx.Exec(`INSERT INTO _migrations(name) VALUES (?)`, f); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", f, err)
		}
		log.Info().Str("migration", f).Msg("applied")
	}
	return nil
}

// Save replaces the session and all of its rows in one transaction.
func (s *sqliteStore) Save(ctx context.Context, sess *Session) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
        INSERT INTO sessions (id, tier, created_at, updated_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET tier=excluded.tier, updated_at=excluded.updated_at`,
		sess.ID, sess.Tier, formatTime(sess.CreatedAt), formatTime(sess.UpdatedAt),
	); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM session_rows WHERE session_id=?`, sess.ID); err != nil {
		return fmt.Errorf("clear rows: %w", err)
	}
	for i, row := range sess.Board.Rows {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO session_rows (session_id, idx, guess, pattern) VALUES (?, ?, ?, ?)`,
			sess.ID, i, row.Word(), row.Pattern(),
		); err != nil {
			return fmt.Errorf("save row %d: %w", i, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM session_screenshots WHERE session_id=?`, sess.ID); err != nil {
		return fmt.Errorf("clear screenshots: %w", err)
	}
	for i, key := range sess.Screenshots {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO session_screenshots (session_id, seq, content_key) VALUES (?, ?, ?)`,
			sess.ID, i, key,
		); err != nil {
			return fmt.Errorf("save screenshot: %w", err)
		}
	}
	return tx.Commit()
}

func (s *sqliteStore) Get(ctx context.Context, id string) (*Session, error) {
	sess := &Session{ID: id}
	var created, updated string
	err := s.db.QueryRowContext(ctx,
		`SELECT tier, created_at, updated_at FROM sessions WHERE id=?`, id,
	).Scan(&sess.Tier, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if sess.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if sess.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT guess, pattern FROM session_rows WHERE session_id=? ORDER BY idx`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var guess, pattern string
		if err := rows.Scan(&guess, &pattern); err != nil {
			return nil, err
		}
		row, err := board.ParseRow(guess, pattern)
		if err != nil {
			return nil, fmt.Errorf("session %s: stored row: %w", id, err)
		}
		sess.Board.Append(row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	keys, err := s.db.QueryContext(ctx,
		`SELECT content_key FROM session_screenshots WHERE session_id=? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	defer keys.Close()
	for keys.Next() {
		var k string
		if err := keys.Scan(&k); err != nil {
			return nil, err
		}
		sess.Screenshots = append(sess.Screenshots, k)
	}
	return sess, keys.Err()
}

func (s *sqliteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *sqliteStore) Close() error { return s.db.Close() }

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func parseTime(s string) (time.Time, error) { return time.Parse(time.RFC3339Nano, s) }
