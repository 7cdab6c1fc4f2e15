// internal/httpserver/routes_words.go
//
// Word list queries, mounted under /words. All lookups run over the
// solution partition except score (either partition) and cheat (?tier=).
//   - GET /words/pattern?q=       → solutions matching a regular expression
//   - GET /words/starts-with?q=   → solutions with the prefix
//   - GET /words/ends-with?q=     → solutions with the suffix
//   - GET /words/frequency?letter= → one letter, or all 26 when omitted/"all"
//   - GET /words/score/{word}     → opening-guess score
//   - GET /words/random?n=        → n distinct solutions (default 10)
//   - GET /words/cheat?yes=&no=   → positionless contains/excludes filter

package httpserver

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kbfreder/wordle-analysis/internal/constraint"
	"github.com/kbfreder/wordle-analysis/internal/words"
)

const defaultRandomCount = 10

// wordsRes lists matching words with their count.
type wordsRes struct {
	Count int      `json:"count"`
	Words []string `json:"words"`
}

func newWordsRes(ws []string) wordsRes {
	if ws == nil {
		ws = []string{}
	}
	return wordsRes{Count: len(ws), Words: ws}
}

type scoreRes struct {
	words.WordScore
	Note string `json:"note,omitempty"`
}

type cheatRes struct {
	Count      int                    `json:"count"`
	Candidates []constraint.Candidate `json:"candidates"`
}

func (s *Server) mountWords(r chi.Router) {
	r.Route("/words", func(r chi.Router) {
		r.Get("/pattern", s.handlePattern)
		r.Get("/starts-with", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, newWordsRes(s.analysis.List().StartsWith(r.URL.Query().Get("q"))))
		})
		r.Get("/ends-with", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, newWordsRes(s.analysis.List().EndsWith(r.URL.Query().Get("q"))))
		})
		r.Get("/frequency", s.handleFrequency)
		r.Get("/score/{word}", s.handleScore)
		r.Get("/random", s.handleRandom)
		r.Get("/cheat", s.handleCheat)
	})
}

func (s *Server) handlePattern(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, r, fmt.Errorf("%w: q is required", ErrBadRequest))
		return
	}
	ws, err := s.analysis.List().Pattern(q)
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}
	writeJSON(w, http.StatusOK, newWordsRes(ws))
}

func (s *Server) handleFrequency(w http.ResponseWriter, r *http.Request) {
	letter := r.URL.Query().Get("letter")
	if letter == "" || strings.EqualFold(letter, "all") {
		writeJSON(w, http.StatusOK, s.analysis.Frequencies())
		return
	}
	lf, err := s.analysis.LetterFrequency(letter)
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}
	writeJSON(w, http.StatusOK, lf)
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	word := chi.URLParam(r, "word")
	sc, ok := s.analysis.Score(word)
	if !ok {
		writeError(w, r, fmt.Errorf("%w: %q", ErrUnknownWord, word))
		return
	}
	res := scoreRes{WordScore: sc}
	if sc.Label == words.LabelDictionary {
		res.Note = "not in solution list"
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleRandom(w http.ResponseWriter, r *http.Request) {
	n := defaultRandomCount
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			writeError(w, r, fmt.Errorf("%w: n must be a positive integer", ErrBadRequest))
			return
		}
		n = parsed
	}
	writeJSON(w, http.StatusOK, newWordsRes(s.analysis.List().Random(n, nil)))
}

func (s *Server) handleCheat(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tier, err := constraint.ParseTier(q.Get("tier"))
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}
	cands, err := s.indexes[tier].Cheat(q.Get("yes"), q.Get("no"))
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}
	writeJSON(w, http.StatusOK, cheatRes{Count: len(cands), Candidates: cands})
}
