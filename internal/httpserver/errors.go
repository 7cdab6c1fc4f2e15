package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/kbfreder/wordle-analysis/internal/board"
	"github.com/kbfreder/wordle-analysis/internal/constraint"
	"github.com/kbfreder/wordle-analysis/internal/store"
	"github.com/kbfreder/wordle-analysis/internal/vision"
)

// Request-level errors.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrBadRequest   = errors.New("bad request")
	ErrFileTooLarge = errors.New("file exceeds maximum upload size")
	ErrRateLimited  = errors.New("too many uploads")
	ErrUnknownWord  = errors.New("word not in corpus")
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, store.ErrNotFound), errors.Is(err, ErrUnknownWord):
		return http.StatusNotFound
	case errors.Is(err, constraint.ErrDuplicateLetterConflict):
		return http.StatusConflict
	case errors.Is(err, board.ErrBoardDetection),
		errors.Is(err, board.ErrIncompleteRow),
		errors.Is(err, vision.ErrDecode):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, board.ErrInvalidGuess),
		errors.Is(err, board.ErrInvalidColorCodes):
		return http.StatusBadRequest
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// errorBody is the JSON error envelope. Detail carries structured
// extraction failures (the offending row and tiles); Rows the valid prefix
// of a partially extracted board.
type errorBody struct {
	Error  string      `json:"error"`
	Detail any         `json:"detail,omitempty"`
	Rows   []board.Row `json:"rows,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders err with the mapped status. 5xx responses hide the
// message and log it instead.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	writePartial(w, r, err, nil)
}

// writePartial is writeError for extractions that kept some rows.
func writePartial(w http.ResponseWriter, r *http.Request, err error, rows []board.Row) {
	status := statusFor(err)
	body := errorBody{Error: err.Error(), Rows: rows}
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		body.Error = http.StatusText(status)
	}
	var ire *board.IncompleteRowError
	var dle *constraint.DuplicateLetterConflict
	switch {
	case errors.As(err, &ire):
		body.Detail = ire
	case errors.As(err, &dle):
		body.Detail = map[string]any{"letter": string(dle.Letter), "row": dle.Row, "reason": dle.Reason}
	}
	writeJSON(w, status, body)
}
