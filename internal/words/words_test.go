package words

import (
	"errors"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

const sampleCorpus = `"aahed","Trial", "abc","crane" ,"cigar","rebut","sissy","humph","crane"`

func TestParse(t *testing.T) {
	l, err := Parse(strings.NewReader(sampleCorpus), "cigar")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if want := []string{"AAHED", "TRIAL"}; !slices.Equal(l.Dictionary, want) {
		t.Errorf("Dictionary = %v, want %v", l.Dictionary, want)
	}
	if want := []string{"CIGAR", "REBUT", "SISSY", "HUMPH", "CRANE"}; !slices.Equal(l.Solutions, want) {
		t.Errorf("Solutions = %v, want %v", l.Solutions, want)
	}
	if got := l.Label("crane"); got != LabelSolution {
		t.Errorf("Label(crane) = %v, want solution", got)
	}
	if got := l.Label("trial"); got != LabelDictionary {
		t.Errorf("Label(trial) = %v, want dictionary", got)
	}
	if l.Contains("ABC") {
		t.Error("short token should have been dropped")
	}
	if s, d := l.Stats(); s != 5 || d != 2 {
		t.Errorf("Stats() = %d, %d", s, d)
	}
	if i, ok := l.Index("trial"); !ok || i != 6 {
		t.Errorf("Index(trial) = %d, %v, want 6", i, ok)
	}
}

func TestParse_SentinelMissing(t *testing.T) {
	_, err := Parse(strings.NewReader(`"aahed","rebut"`), DefaultSentinel)
	if !errors.Is(err, ErrSentinelNotFound) {
		t.Errorf("error = %v, want ErrSentinelNotFound", err)
	}
}

func TestLoadLines(t *testing.T) {
	dir := t.TempDir()
	answers := filepath.Join(dir, "answers.txt")
	allowed := filepath.Join(dir, "allowed.txt")
	if err := os.WriteFile(answers, []byte("# answers\ncrane\ntense\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(allowed, []byte("crane\naahed\n\ntense\nzebra\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	l, err := Load(Source{AnswersFile: answers, AllowedFile: allowed})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if want := []string{"CRANE", "TENSE"}; !slices.Equal(l.Solutions, want) {
		t.Errorf("Solutions = %v, want %v", l.Solutions, want)
	}
	if want := []string{"AAHED", "ZEBRA"}; !slices.Equal(l.Dictionary, want) {
		t.Errorf("Dictionary = %v, want %v", l.Dictionary, want)
	}
}

func TestDefault(t *testing.T) {
	l, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if l.Solutions[0] != DefaultSentinel {
		t.Errorf("first solution = %s, want %s", l.Solutions[0], DefaultSentinel)
	}
	for _, w := range l.Dictionary {
		if l.IsSolution(w) {
			t.Fatalf("%s is in both partitions", w)
		}
	}
}

func TestNew_EmptySolutions(t *testing.T) {
	if _, err := New([]string{"crane"}, []string{"no", "12345"}); !errors.Is(err, ErrEmptySolutions) {
		t.Errorf("error = %v, want ErrEmptySolutions", err)
	}
}

func TestAnalysis(t *testing.T) {
	l, err := New([]string{"XYLYL"}, []string{"ABBEY", "ABIDE", "CRANE", "TENSE"})
	if err != nil {
		t.Fatal(err)
	}
	a := NewAnalysis(l)

	f, err := a.LetterFrequency("e")
	if err != nil {
		t.Fatalf("LetterFrequency() error = %v", err)
	}
	// E is in all four words, and TENSE has two.
	if f.InWords != 1 || f.Occurrence != 1.25 {
		t.Errorf("E = %+v, want InWords 1 Occurrence 1.25", f)
	}
	if _, err := a.LetterFrequency("ab"); err == nil {
		t.Error("expected error for multi-letter input")
	}
	if len(a.Frequencies()) != 26 || a.Frequencies()[0].Letter != "A" {
		t.Error("Frequencies() should list A..Z")
	}

	for _, w := range l.All() {
		s, ok := a.Score(w)
		if !ok {
			t.Fatalf("Score(%s) missing", w)
		}
		if s.Score < 0 || s.Score > 1 {
			t.Errorf("Score(%s) = %v, want within [0,1]", w, s.Score)
		}
	}
	low, _ := a.Score("xylyl")
	if low.Score != 0 || low.Label != LabelDictionary {
		t.Errorf("XYLYL = %+v, want score 0 labelled dictionary", low)
	}
	if _, ok := a.Score("QQQQQ"); ok {
		t.Error("unknown word should not score")
	}

	ranked := a.Rank([]string{"XYLYL", "CRANE", "NOPE!"})
	if len(ranked) != 2 || ranked[0].Word != "CRANE" {
		t.Errorf("Rank() = %+v", ranked)
	}
}

func TestMinMaxScale(t *testing.T) {
	xs := []float64{2, 4, 3}
	minMaxScale(xs)
	want := []float64{0, 1, 0.5}
	for i := range xs {
		if math.Abs(xs[i]-want[i]) > 1e-9 {
			t.Errorf("xs[%d] = %v, want %v", i, xs[i], want[i])
		}
	}
	flat := []float64{3, 3}
	minMaxScale(flat)
	if flat[0] != 0 || flat[1] != 0 {
		t.Errorf("constant column = %v, want zeros", flat)
	}
}

func TestQueries(t *testing.T) {
	l, err := New(nil, []string{"TENSE", "CRANE", "TRACE", "TILDE", "SPEED"})
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		got  []string
		want []string
	}{
		{"starts-with", l.StartsWith("t"), []string{"TENSE", "TILDE", "TRACE"}},
		{"ends-with", l.EndsWith("CE"), []string{"TRACE"}},
		{"ends-with none", l.EndsWith("zz"), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !slices.Equal(tt.got, tt.want) {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}

	got, err := l.Pattern("[cs]e")
	if err != nil {
		t.Fatalf("Pattern() error = %v", err)
	}
	if want := []string{"TENSE", "TRACE"}; !slices.Equal(got, want) {
		t.Errorf("Pattern() = %v, want %v", got, want)
	}
	if _, err := l.Pattern("("); err == nil {
		t.Error("expected error for bad pattern")
	}
}

func TestRandom(t *testing.T) {
	l, err := New(nil, []string{"TENSE", "CRANE", "TRACE", "TILDE", "SPEED"})
	if err != nil {
		t.Fatal(err)
	}
	got := l.Random(3, rand.New(rand.NewPCG(1, 2)))
	if len(got) != 3 {
		t.Fatalf("Random(3) returned %d words", len(got))
	}
	seen := map[string]bool{}
	for _, w := range got {
		if seen[w] || !l.IsSolution(w) {
			t.Errorf("unexpected sample %v", got)
		}
		seen[w] = true
	}
	if n := len(l.Random(50, nil)); n != 5 {
		t.Errorf("Random(50) returned %d words, want 5", n)
	}
}
