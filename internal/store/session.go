// internal/store/session.go
//
// Persistence for solving sessions.
//
// A session is the board history of one puzzle being solved, built up from
// uploaded screenshots and manual row corrections. Stores hand out copies;
// mutating a returned Session has no effect until it is saved.
package store

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/kbfreder/wordle-analysis/internal/board"
)

// ErrNotFound is returned for an unknown session ID.
var ErrNotFound = errors.New("store: session not found")

// Session is one solving session.
type Session struct {
	ID    string      `json:"id"`
	Tier  string      `json:"tier"`
	Board board.Board `json:"board"`

	// Screenshots holds content keys of screenshots already applied.
	Screenshots []string  `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// HasScreenshot reports whether the screenshot with key was already applied.
func (s *Session) HasScreenshot(key string) bool { return slices.Contains(s.Screenshots, key) }

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	c := *s
	c.Board.Rows = slices.Clone(s.Board.Rows)
	c.Screenshots = slices.Clone(s.Screenshots)
	return &c
}

// Store persists sessions. Implementations must be safe for concurrent use.
type Store interface {
	// Save inserts or replaces a session.
	Save(ctx context.Context, s *Session) error

	// Get retrieves a session by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*Session, error)

	// Delete removes a session. Deleting an unknown ID is ErrNotFound.
	Delete(ctx context.Context, id string) error

	Close() error
}
