// internal/httpserver/routes_sessions.go
//
// Solving sessions. A session accumulates the guess history of one puzzle
// from screenshots and manual rows, and reports the surviving candidates.
//   - POST   /sessions                  → create; returns {sessionId, token}
//   - GET    /sessions/{id}             → board, knowledge, candidates
//   - DELETE /sessions/{id}             → discard
//   - POST   /sessions/{id}/screenshots → extract and append new rows
//   - POST   /sessions/{id}/rows        → append one typed row (manual correction)
//
// Every route under /sessions/{id} requires the session's token.

package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/kbfreder/wordle-analysis/internal/board"
	"github.com/kbfreder/wordle-analysis/internal/cache"
	"github.com/kbfreder/wordle-analysis/internal/constraint"
	"github.com/kbfreder/wordle-analysis/internal/store"
	"github.com/kbfreder/wordle-analysis/internal/words"
)

// suggestionCount caps the ranked suggestions in a session view.
const suggestionCount = 10

func (s *Server) mountSessions(r chi.Router) {
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleNewSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Use(s.requireSession)
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.With(s.limiter.middleware).Post("/screenshots", s.handleScreenshot)
			r.Post("/rows", s.handleAddRow)
		})
	})
}

type newSessionReq struct {
	Tier string `json:"tier"` // "solutions" (default) | "dictionary" | "all"
}

type newSessionRes struct {
	SessionID string          `json:"sessionId"`
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expiresAt"`
	Tier      constraint.Tier `json:"tier"`
}

// sessionView is the state returned by every session route.
type sessionView struct {
	ID          string                 `json:"id"`
	Tier        constraint.Tier        `json:"tier"`
	Rows        []board.Row            `json:"rows"`
	Solved      bool                   `json:"solved"`
	Knowledge   constraint.Knowledge   `json:"knowledge"`
	Count       int                    `json:"count"`
	Candidates  []constraint.Candidate `json:"candidates"`
	Suggestions []words.WordScore      `json:"suggestions"`
	CreatedAt   time.Time              `json:"createdAt"`
	UpdatedAt   time.Time              `json:"updatedAt"`
}

type screenshotRes struct {
	sessionView
	Added     int  `json:"added"`
	Duplicate bool `json:"duplicate,omitempty"`
}

// handleNewSession creates an empty session and a token bound to it.
func (s *Server) handleNewSession(w http.ResponseWriter, r *http.Request) {
	var req newSessionReq
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, fmt.Errorf("%w: %v", ErrBadRequest, err))
			return
		}
	}
	tier, err := constraint.ParseTier(req.Tier)
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}

	now := time.Now().UTC()
	sess := &store.Session{ID: uuid.NewString(), Tier: tier.String(), CreatedAt: now, UpdatedAt: now}
	if err := s.store.Save(r.Context(), sess); err != nil {
		writeError(w, r, fmt.Errorf("save session: %w", err))
		return
	}
	tok, exp, err := s.tokens.sign(sess.ID)
	if err != nil {
		writeError(w, r, fmt.Errorf("sign token: %w", err))
		return
	}
	setSessionCookie(w, tok, exp, s.opts.SecureCookies)
	log.Info().Str("session", sess.ID).Str("tier", tier.String()).Msg("session created")
	writeJSON(w, http.StatusCreated, newSessionRes{SessionID: sess.ID, Token: tok, ExpiresAt: exp, Tier: tier})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(r.Context(), sessionID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	e, err := s.engineFor(sess)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view(sess, e, limitParam(r)))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), sessionID(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleScreenshot extracts a screenshot and appends the rows the session
// has not seen yet. Rows already in the history are matched by position;
// the stored row wins over a re-read one. The update is all or nothing:
// a conflicting row leaves the session as it was.
func (s *Server) handleScreenshot(w http.ResponseWriter, r *http.Request) {
	data, err := s.readUpload(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	sess, err := s.store.Get(r.Context(), sessionID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	e, err := s.engineFor(sess)
	if err != nil {
		writeError(w, r, err)
		return
	}

	key := cache.Key(data)
	if sess.HasScreenshot(key) {
		writeJSON(w, http.StatusOK, screenshotRes{sessionView: s.view(sess, e, limitParam(r)), Duplicate: true})
		return
	}

	ex, _, exErr := s.extract(r.Context(), key, data)
	if ex == nil {
		writeError(w, r, exErr)
		return
	}

	added := 0
	for i, row := range ex.Rows {
		if i < sess.Board.Len() {
			if have := sess.Board.Rows[i]; have.String() != row.String() {
				log.Warn().Str("session", sess.ID).Int("row", i).
					Str("stored", have.String()).Str("extracted", row.String()).
					Msg("extracted row differs from history, keeping history")
			}
			continue
		}
		if err := e.Apply(row); err != nil {
			writeError(w, r, err)
			return
		}
		sess.Board.Append(row)
		added++
	}

	// A partial read is applied but not remembered, so the same screenshot
	// can be retried once its failing row is fixed.
	if exErr == nil {
		sess.Screenshots = append(sess.Screenshots, key)
	}
	sess.UpdatedAt = time.Now().UTC()
	if err := s.store.Save(r.Context(), sess); err != nil {
		writeError(w, r, fmt.Errorf("save session: %w", err))
		return
	}
	log.Info().Str("session", sess.ID).Int("added", added).Int("candidates", e.Len()).Msg("screenshot applied")

	if exErr != nil {
		writePartial(w, r, exErr, ex.Rows)
		return
	}
	writeJSON(w, http.StatusOK, screenshotRes{sessionView: s.view(sess, e, limitParam(r)), Added: added})
}

// addRowReq carries a typed guess. Colors is either a compact pattern
// ("GYBBG") or an array of names or classes (["green", 1, 0, ...]).
type addRowReq struct {
	Guess  string          `json:"guess"`
	Colors json.RawMessage `json:"colors"`
}

func (req addRowReq) row() (board.Row, error) {
	var pattern string
	if err := json.Unmarshal(req.Colors, &pattern); err == nil {
		return board.ParseRow(req.Guess, pattern)
	}
	var colors []board.Color
	if err := json.Unmarshal(req.Colors, &colors); err != nil {
		return board.Row{}, fmt.Errorf("%w: %v", board.ErrInvalidColorCodes, err)
	}
	if len(colors) != board.WordLength {
		return board.Row{}, fmt.Errorf("%w: got %d colors, want %d", board.ErrInvalidColorCodes, len(colors), board.WordLength)
	}
	return board.NewRow(req.Guess, [board.WordLength]board.Color(colors))
}

func (s *Server) handleAddRow(w http.ResponseWriter, r *http.Request) {
	var req addRowReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}
	row, err := req.row()
	if err != nil {
		writeError(w, r, err)
		return
	}
	sess, err := s.store.Get(r.Context(), sessionID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	e, err := s.engineFor(sess)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := e.Apply(row); err != nil {
		writeError(w, r, err)
		return
	}
	sess.Board.Append(row)
	sess.UpdatedAt = time.Now().UTC()
	if err := s.store.Save(r.Context(), sess); err != nil {
		writeError(w, r, fmt.Errorf("save session: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, s.view(sess, e, limitParam(r)))
}

// engineFor rebuilds the candidate set from the stored history.
func (s *Server) engineFor(sess *store.Session) (*constraint.Engine, error) {
	tier, err := constraint.ParseTier(sess.Tier)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sess.ID, err)
	}
	e := constraint.NewWithIndex(s.indexes[tier])
	if err := e.Replay(sess.Board); err != nil {
		return nil, fmt.Errorf("session %s: %w", sess.ID, err)
	}
	return e, nil
}

// view renders a session. limit caps the candidate list; 0 means all.
func (s *Server) view(sess *store.Session, e *constraint.Engine, limit int) sessionView {
	cands := e.Candidates()
	ranked := s.analysis.Rank(e.Words())
	if len(ranked) > suggestionCount {
		ranked = ranked[:suggestionCount]
	}
	if limit > 0 && len(cands) > limit {
		cands = cands[:limit]
	}
	rows := sess.Board.Rows
	if rows == nil {
		rows = []board.Row{}
	}
	return sessionView{
		ID:          sess.ID,
		Tier:        e.Tier(),
		Rows:        rows,
		Solved:      sess.Board.Solved(),
		Knowledge:   e.Knowledge(),
		Count:       e.Len(),
		Candidates:  cands,
		Suggestions: ranked,
		CreatedAt:   sess.CreatedAt,
		UpdatedAt:   sess.UpdatedAt,
	}
}

// limitParam parses ?limit=; anything unparsable means no limit.
func limitParam(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
