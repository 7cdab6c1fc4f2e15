package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kbfreder/wordle-analysis/internal/board"
	"github.com/kbfreder/wordle-analysis/internal/cache"
	"github.com/kbfreder/wordle-analysis/internal/constraint"
	"github.com/kbfreder/wordle-analysis/internal/store"
	"github.com/kbfreder/wordle-analysis/internal/vision"
	"github.com/kbfreder/wordle-analysis/internal/words"
)

// fakeExtractor returns canned extractions keyed by upload content.
type fakeExtractor struct {
	calls   int
	results map[string]*vision.Extraction
	errs    map[string]error
}

func (f *fakeExtractor) ExtractBytes(_ context.Context, data []byte) (*vision.Extraction, error) {
	f.calls++
	ex, ok := f.results[string(data)]
	if !ok {
		return nil, &board.DetectionError{Found: 0}
	}
	return ex, f.errs[string(data)]
}

func extraction(t *testing.T, rows ...string) *vision.Extraction {
	t.Helper()
	ex := &vision.Extraction{}
	for _, r := range rows {
		word, pattern, _ := strings.Cut(r, "/")
		row, err := board.ParseRow(word, pattern)
		if err != nil {
			t.Fatal(err)
		}
		ex.Rows = append(ex.Rows, row)
		ex.Tiles = append(ex.Tiles, row[:]...)
	}
	return ex
}

func defaultAnalysis(t *testing.T) *words.Analysis {
	t.Helper()
	l, err := words.Default()
	if err != nil {
		t.Fatalf("words.Default() error = %v", err)
	}
	return words.NewAnalysis(l)
}

func newTestServer(t *testing.T, fx *fakeExtractor, opts Options) *Server {
	t.Helper()
	st := store.NewMemoryStore()
	t.Cleanup(func() { _ = st.Close() })
	results := cache.NewMemoryCache[*vision.Extraction](time.Minute, time.Minute)
	return New(st, fx, defaultAnalysis(t), results, opts)
}

func do(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func upload(t *testing.T, url string, data []byte, token string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "board.png")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = fw.Write(data)
	_ = mw.Close()
	req := httptest.NewRequest(http.MethodPost, url, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func jsonRequest(method, url, body, token string) *http.Request {
	req := httptest.NewRequest(method, url, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
}

type viewBody struct {
	ID         string `json:"id"`
	Count      int    `json:"count"`
	Solved     bool   `json:"solved"`
	Added      int    `json:"added"`
	Duplicate  bool   `json:"duplicate"`
	Candidates []struct {
		Word string `json:"word"`
	} `json:"candidates"`
	Rows      [][]map[string]any   `json:"rows"`
	Knowledge constraint.Knowledge `json:"knowledge"`
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, &fakeExtractor{}, Options{})
	rec := do(s, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok":true`) {
		t.Errorf("health = %d %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("content type = %q", ct)
	}

	rec = do(s, httptest.NewRequest(http.MethodGet, "/debug/words", nil))
	var stats map[string]int
	decode(t, rec, &stats)
	if stats["solutions"] == 0 || stats["dictionary"] == 0 {
		t.Errorf("stats = %v", stats)
	}
}

func TestExtract_Cached(t *testing.T) {
	fx := &fakeExtractor{results: map[string]*vision.Extraction{
		"img": extraction(t, "CRANE/BYBBG"),
	}}
	s := newTestServer(t, fx, Options{})

	for i, wantCached := range []bool{false, true} {
		rec := do(s, upload(t, "/extract", []byte("img"), ""))
		if rec.Code != http.StatusOK {
			t.Fatalf("call %d: status = %d %s", i, rec.Code, rec.Body)
		}
		var body struct {
			Rows   [][]map[string]any `json:"rows"`
			Cached bool               `json:"cached"`
		}
		decode(t, rec, &body)
		if body.Cached != wantCached {
			t.Errorf("call %d: cached = %v, want %v", i, body.Cached, wantCached)
		}
		if len(body.Rows) != 1 || body.Rows[0][1]["letter"] != "R" || body.Rows[0][1]["color"] != "yellow" {
			t.Errorf("call %d: rows = %v", i, body.Rows)
		}
	}
	if fx.calls != 1 {
		t.Errorf("extractor calls = %d, want 1", fx.calls)
	}
}

func TestExtract_Errors(t *testing.T) {
	partial := extraction(t, "CRANE/BYBBG")
	fx := &fakeExtractor{
		results: map[string]*vision.Extraction{"partial": partial},
		errs: map[string]error{"partial": &board.IncompleteRowError{
			Row:   1,
			Tiles: []*board.TileError{{Index: 7, Kind: board.KindRecognitionFailed}},
		}},
	}
	s := newTestServer(t, fx, Options{MaxUploadBytes: 1024})

	rec := do(s, upload(t, "/extract", []byte("partial"), ""))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("partial status = %d, want 422", rec.Code)
	}
	var body struct {
		Error  string            `json:"error"`
		Rows   []json.RawMessage `json:"rows"`
		Detail map[string]any    `json:"detail"`
	}
	decode(t, rec, &body)
	if len(body.Rows) != 1 {
		t.Errorf("valid prefix rows = %d, want 1", len(body.Rows))
	}
	if body.Detail["row"] != float64(1) {
		t.Errorf("detail = %v", body.Detail)
	}

	rec = do(s, upload(t, "/extract", []byte("blank"), ""))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("detection failure status = %d, want 422", rec.Code)
	}

	rec = do(s, upload(t, "/extract", bytes.Repeat([]byte("x"), 4096), ""))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("oversize status = %d, want 413", rec.Code)
	}

	rec = do(s, jsonRequest(http.MethodPost, "/extract", `{}`, ""))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing file status = %d, want 400", rec.Code)
	}
}

func TestExtract_RateLimited(t *testing.T) {
	fx := &fakeExtractor{results: map[string]*vision.Extraction{"img": extraction(t, "CRANE/BBBBB")}}
	s := newTestServer(t, fx, Options{RateLimit: 0.001, RateBurst: 1})

	if rec := do(s, upload(t, "/extract", []byte("img"), "")); rec.Code != http.StatusOK {
		t.Fatalf("first status = %d", rec.Code)
	}
	if rec := do(s, upload(t, "/extract", []byte("img"), "")); rec.Code != http.StatusTooManyRequests {
		t.Errorf("second status = %d, want 429", rec.Code)
	}
}

func createSession(t *testing.T, s *Server, body string) (id, token string) {
	t.Helper()
	rec := do(s, jsonRequest(http.MethodPost, "/sessions", body, ""))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create session = %d %s", rec.Code, rec.Body)
	}
	var res struct {
		SessionID string `json:"sessionId"`
		Token     string `json:"token"`
		Tier      string `json:"tier"`
	}
	decode(t, rec, &res)
	if res.SessionID == "" || res.Token == "" {
		t.Fatalf("create session body = %s", rec.Body)
	}
	return res.SessionID, res.Token
}

func TestSessions_Auth(t *testing.T) {
	s := newTestServer(t, &fakeExtractor{}, Options{})
	id, tok := createSession(t, s, "")
	_, other := createSession(t, s, `{"tier":"all"}`)

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"garbage", "not-a-jwt", http.StatusUnauthorized},
		{"other session", other, http.StatusUnauthorized},
		{"own token", tok, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(s, jsonRequest(http.MethodGet, "/sessions/"+id, "", tt.token))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body)
			}
		})
	}

	forged, _, err := tokenIssuer{secret: []byte("other"), ttl: time.Hour}.sign(id)
	if err != nil {
		t.Fatal(err)
	}
	if rec := do(s, jsonRequest(http.MethodGet, "/sessions/"+id, "", forged)); rec.Code != http.StatusUnauthorized {
		t.Errorf("forged token status = %d, want 401", rec.Code)
	}

	if rec := do(s, jsonRequest(http.MethodPost, "/sessions", `{"tier":"bogus"}`, "")); rec.Code != http.StatusBadRequest {
		t.Errorf("bad tier status = %d, want 400", rec.Code)
	}
}

func TestSessions_Flow(t *testing.T) {
	fx := &fakeExtractor{results: map[string]*vision.Extraction{
		"shot": extraction(t, "TRACE/GBBBG", "TENSE/GGGGG"),
	}}
	s := newTestServer(t, fx, Options{})
	id, tok := createSession(t, s, `{"tier":"solutions"}`)

	rec := do(s, jsonRequest(http.MethodPost, "/sessions/"+id+"/rows", `{"guess":"trace","colors":"GBBBG"}`, tok))
	if rec.Code != http.StatusOK {
		t.Fatalf("add row = %d %s", rec.Code, rec.Body)
	}
	var view viewBody
	decode(t, rec, &view)

	first, _ := board.ParseRow("TRACE", "GBBBG")
	want, err := constraint.Filter(s.analysis.List(), constraint.Solutions, board.Board{Rows: []board.Row{first}})
	if err != nil {
		t.Fatal(err)
	}
	if view.Count != len(want) || len(view.Candidates) != len(want) {
		t.Errorf("count = %d (%d listed), want %d", view.Count, len(view.Candidates), len(want))
	}
	if view.Knowledge.Pattern != "T???E" {
		t.Errorf("knowledge = %+v", view.Knowledge)
	}

	rec = do(s, upload(t, "/sessions/"+id+"/screenshots", []byte("shot"), tok))
	if rec.Code != http.StatusOK {
		t.Fatalf("screenshot = %d %s", rec.Code, rec.Body)
	}
	view = viewBody{}
	decode(t, rec, &view)
	if view.Added != 1 || !view.Solved || view.Count != 1 || len(view.Rows) != 2 {
		t.Errorf("after screenshot: %+v", view)
	}
	if len(view.Candidates) != 1 || view.Candidates[0].Word != "TENSE" {
		t.Errorf("candidates = %+v, want [TENSE]", view.Candidates)
	}

	rec = do(s, upload(t, "/sessions/"+id+"/screenshots", []byte("shot"), tok))
	view = viewBody{}
	decode(t, rec, &view)
	if !view.Duplicate || view.Added != 0 || len(view.Rows) != 2 {
		t.Errorf("re-upload: %+v", view)
	}
	if fx.calls != 1 {
		t.Errorf("extractor calls = %d, want 1", fx.calls)
	}

	if rec := do(s, jsonRequest(http.MethodDelete, "/sessions/"+id, "", tok)); rec.Code != http.StatusNoContent {
		t.Errorf("delete = %d", rec.Code)
	}
	if rec := do(s, jsonRequest(http.MethodGet, "/sessions/"+id, "", tok)); rec.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", rec.Code)
	}
}

func TestSessions_AddRow(t *testing.T) {
	s := newTestServer(t, &fakeExtractor{}, Options{})
	id, tok := createSession(t, s, "")
	url := "/sessions/" + id + "/rows"

	tests := []struct {
		name string
		body string
		want int
	}{
		{"array colors", `{"guess":"TRACE","colors":[2,"gray",0,0,"green"]}`, http.StatusOK},
		{"conflict", `{"guess":"TRACE","colors":"BBBBB"}`, http.StatusConflict},
		{"short pattern", `{"guess":"TRACE","colors":"GB"}`, http.StatusBadRequest},
		{"four colors", `{"guess":"TRACE","colors":[2,0,0,0]}`, http.StatusBadRequest},
		{"bad guess", `{"guess":"TR4CE","colors":"BBBBB"}`, http.StatusBadRequest},
		{"bad json", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(s, jsonRequest(http.MethodPost, url, tt.body, tok))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body)
			}
		})
	}

	rec := do(s, jsonRequest(http.MethodGet, "/sessions/"+id, "", tok))
	var view viewBody
	decode(t, rec, &view)
	if len(view.Rows) != 1 {
		t.Errorf("rows = %d, want 1 (rejected rows must not be stored)", len(view.Rows))
	}
}

func TestWordsRoutes(t *testing.T) {
	s := newTestServer(t, &fakeExtractor{}, Options{})

	get := func(url string) *httptest.ResponseRecorder {
		return do(s, httptest.NewRequest(http.MethodGet, url, nil))
	}

	var ws wordsRes
	decode(t, get("/words/starts-with?q=ta"), &ws)
	if ws.Count == 0 || ws.Count != len(ws.Words) {
		t.Errorf("starts-with = %+v", ws)
	}
	for _, w := range ws.Words {
		if !strings.HasPrefix(w, "TA") {
			t.Errorf("starts-with returned %s", w)
		}
	}

	ws = wordsRes{}
	decode(t, get("/words/random?n=3"), &ws)
	if ws.Count != 3 {
		t.Errorf("random count = %d, want 3", ws.Count)
	}

	var sc struct {
		Word  string `json:"word"`
		Label string `json:"label"`
		Note  string `json:"note"`
	}
	decode(t, get("/words/score/cigar"), &sc)
	if sc.Word != "CIGAR" || sc.Label != "solution" || sc.Note != "" {
		t.Errorf("score cigar = %+v", sc)
	}
	sc.Note = ""
	decode(t, get("/words/score/aahed"), &sc)
	if sc.Label != "dictionary" || sc.Note == "" {
		t.Errorf("score aahed = %+v", sc)
	}

	var lf words.LetterFrequency
	decode(t, get("/words/frequency?letter=e"), &lf)
	if lf.Letter != "E" || lf.InWords <= 0 {
		t.Errorf("frequency = %+v", lf)
	}
	var all []words.LetterFrequency
	decode(t, get("/words/frequency"), &all)
	if len(all) != 26 {
		t.Errorf("frequencies = %d, want 26", len(all))
	}

	var cheat cheatRes
	decode(t, get("/words/cheat?yes=ts&no=r"), &cheat)
	if cheat.Count == 0 {
		t.Error("cheat found nothing")
	}

	codes := []struct {
		url  string
		want int
	}{
		{"/words/score/zzzzz", http.StatusNotFound},
		{"/words/pattern?q=(", http.StatusBadRequest},
		{"/words/pattern", http.StatusBadRequest},
		{"/words/random?n=zero", http.StatusBadRequest},
		{"/words/frequency?letter=ab", http.StatusBadRequest},
		{"/words/cheat?yes=1", http.StatusBadRequest},
		{"/words/pattern?q=%5Eta", http.StatusOK},
		{"/nowhere", http.StatusNotFound},
	}
	for _, c := range codes {
		if rec := get(c.url); rec.Code != c.want {
			t.Errorf("GET %s = %d, want %d", c.url, rec.Code, c.want)
		}
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&board.DetectionError{Found: 23}, http.StatusUnprocessableEntity},
		{&board.IncompleteRowError{Row: 2}, http.StatusUnprocessableEntity},
		{fmt.Errorf("wrapped: %w", &constraint.DuplicateLetterConflict{Letter: 'E'}), http.StatusConflict},
		{store.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: x", ErrUnauthorized), http.StatusUnauthorized},
		{vision.ErrDecode, http.StatusUnprocessableEntity},
		{board.ErrInvalidGuess, http.StatusBadRequest},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
