// internal/httpserver/server.go
//
// HTTP server wiring for wordle-analysis.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs,
//     request logging).
//   - Public endpoints: "/", "/health", "/debug/words".
//   - POST /extract: one-off screenshot extraction, cached by content hash.
//   - Solving sessions (token bound): mounted under /sessions.
//   - Word list queries: mounted under /words.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Upload endpoints are rate limited per client address.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/kbfreder/wordle-analysis/internal/cache"
	"github.com/kbfreder/wordle-analysis/internal/constraint"
	"github.com/kbfreder/wordle-analysis/internal/store"
	"github.com/kbfreder/wordle-analysis/internal/vision"
	"github.com/kbfreder/wordle-analysis/internal/words"
)

// Extractor turns an encoded screenshot into board rows.
// *vision.Pipeline satisfies it.
type Extractor interface {
	ExtractBytes(ctx context.Context, data []byte) (*vision.Extraction, error)
}

// Options tunes the server. Zero values take the defaults.
type Options struct {
	ClientOrigin   string
	MaxUploadBytes int64
	RateLimit      float64 // uploads per second per client; 0 disables
	RateBurst      int
	Secret         []byte
	TokenTTL       time.Duration
	SecureCookies  bool
	CacheTTL       time.Duration
	Timeout        time.Duration
}

func (o *Options) defaults() {
	if o.ClientOrigin == "" {
		o.ClientOrigin = "http://localhost:5173"
	}
	if o.MaxUploadBytes <= 0 {
		o.MaxUploadBytes = 10 << 20
	}
	if len(o.Secret) == 0 {
		o.Secret = []byte("dev_secret_change_me")
	}
	if o.TokenTTL <= 0 {
		o.TokenTTL = 14 * 24 * time.Hour
	}
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
}

// Server bundles router, session store, extraction pipeline and word data.
type Server struct {
	r        *chi.Mux
	store    store.Store
	ex       Extractor
	analysis *words.Analysis
	indexes  map[constraint.Tier]*constraint.Index
	results  cache.Cache[*vision.Extraction]
	tokens   tokenIssuer
	limiter  *clientLimiter
	opts     Options
}

// New constructs a Server, installs middleware, and registers routes.
// results may be nil to disable the extraction cache.
func New(st store.Store, ex Extractor, an *words.Analysis, results cache.Cache[*vision.Extraction], opts Options) *Server {
	opts.defaults()
	s := &Server{
		r:        chi.NewRouter(),
		store:    st,
		ex:       ex,
		analysis: an,
		indexes:  make(map[constraint.Tier]*constraint.Index),
		results:  results,
		tokens:   tokenIssuer{secret: opts.Secret, ttl: opts.TokenTTL},
		opts:     opts,
	}
	for _, tier := range []constraint.Tier{constraint.Solutions, constraint.Dictionary, constraint.All} {
		s.indexes[tier] = constraint.NewIndex(an.List(), tier)
	}
	if opts.RateLimit > 0 {
		s.limiter = newClientLimiter(opts.RateLimit, opts.RateBurst)
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(requestLogger)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(opts.Timeout))
	s.r.Use(jsonContentType)
	s.r.Use(cors(opts.ClientOrigin))

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"wordle-analysis","endpoints":["/health","POST /extract","POST /sessions","/words/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
		sol, dict := an.List().Stats()
		_ = json.NewEncoder(w).Encode(map[string]int{"solutions": sol, "dictionary": dict})
	})

	s.r.With(s.limiter.middleware).Post("/extract", s.handleExtract)
	s.mountSessions(s.r)
	s.mountWords(s.r)

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})
	return s
}

// Start serves HTTP on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogger writes one zerolog line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Info().
			Str("requestId", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

// ------------------------------ EXTRACT ------------------------------------

type extractRes struct {
	*vision.Extraction
	Cached bool `json:"cached"`
}

// handleExtract runs a single screenshot through the pipeline without
// touching any session.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	data, err := s.readUpload(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ex, cached, err := s.extract(r.Context(), cache.Key(data), data)
	if err != nil {
		if ex != nil {
			writePartial(w, r, err, ex.Rows)
			return
		}
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, extractRes{Extraction: ex, Cached: cached})
}

// extract consults the result cache before running the pipeline. Only
// complete extractions are cached.
func (s *Server) extract(ctx context.Context, key string, data []byte) (*vision.Extraction, bool, error) {
	if s.results != nil {
		if ex, ok := s.results.Get(key); ok {
			return ex, true, nil
		}
	}
	ex, err := s.ex.ExtractBytes(ctx, data)
	if err != nil {
		return ex, false, err
	}
	if s.results != nil {
		s.results.Set(key, ex, s.opts.CacheTTL)
	}
	return ex, false, nil
}

// readUpload reads the multipart "file" field, bounded by MaxUploadBytes.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	if r.ContentLength > s.opts.MaxUploadBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, s.opts.MaxUploadBytes)
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, mbe.Limit)
		}
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	f, _, err := r.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("%w: missing file field", ErrBadRequest)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrBadRequest)
	}
	return data, nil
}
