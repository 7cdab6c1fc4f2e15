package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/kbfreder/wordle-analysis/internal/board"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	sq, err := OpenSQLite(filepath.Join(t.TempDir(), "data", "sessions.db"))
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	t.Cleanup(func() { sq.Close() })
	return map[string]Store{"memory": NewMemoryStore(), "sqlite": sq}
}

func sampleSession(t *testing.T) *Session {
	t.Helper()
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	s := &Session{ID: "abc", Tier: "solutions", CreatedAt: now, UpdatedAt: now}
	for _, rp := range [][2]string{{"CRANE", "BBBBG"}, {"TOQUE", "GBBBG"}} {
		row, err := board.ParseRow(rp[0], rp[1])
		if err != nil {
			t.Fatal(err)
		}
		s.Board.Append(row)
	}
	s.Screenshots = []string{"wordle:v1:aa"}
	return s
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			s := sampleSession(t)
			if err := st.Save(ctx, s); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			got, err := st.Get(ctx, "abc")
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got.Board.Len() != 2 || got.Board.Rows[1].String() != "TOQUE/GBBBG" {
				t.Errorf("board = %v", got.Board.Rows)
			}
			if !got.HasScreenshot("wordle:v1:aa") || !got.CreatedAt.Equal(s.CreatedAt) {
				t.Errorf("session = %+v", got)
			}

			// Returned sessions are copies.
			got.Board.Rows[0][0].Letter = 'X'
			again, _ := st.Get(ctx, "abc")
			if again.Board.Rows[0].Word() != "CRANE" {
				t.Error("mutating a returned session changed the store")
			}

			row, _ := board.ParseRow("TENSE", "GGGGG")
			got.Board.Rows[0][0].Letter = 'C'
			got.Board.Append(row)
			got.Screenshots = append(got.Screenshots, "wordle:v1:bb")
			got.UpdatedAt = got.UpdatedAt.Add(time.Minute)
			if err := st.Save(ctx, got); err != nil {
				t.Fatalf("second Save() error = %v", err)
			}
			again, _ = st.Get(ctx, "abc")
			if !again.Board.Solved() || len(again.Screenshots) != 2 {
				t.Errorf("updated session = %+v", again)
			}
		})
	}
}

func TestStore_NotFound(t *testing.T) {
	ctx := context.Background()
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := st.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get() error = %v, want ErrNotFound", err)
			}
			if err := st.Delete(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Delete() error = %v, want ErrNotFound", err)
			}
			if err := st.Save(ctx, sampleSession(t)); err != nil {
				t.Fatal(err)
			}
			if err := st.Delete(ctx, "abc"); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if _, err := st.Get(ctx, "abc"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get() after Delete error = %v", err)
			}
		})
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.db")
	for range 2 {
		st, err := OpenSQLite(path)
		if err != nil {
			t.Fatalf("OpenSQLite() error = %v", err)
		}
		st.Close()
	}
}
