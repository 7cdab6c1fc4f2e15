package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/kbfreder/wordle-analysis/internal/board"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	if err := Execute(); err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	return out.String()
}

func TestVersion(t *testing.T) {
	if got := run(t, "version"); !strings.HasPrefix(got, "wordle-analysis ") {
		t.Errorf("version output = %q", got)
	}
}

func TestWordsCommands(t *testing.T) {
	t.Cleanup(func() { wordsShow = false })

	got := run(t, "words", "starts-with", "ta", "--show")
	if !strings.Contains(got, "TABLE") {
		t.Errorf("starts-with output = %q", got)
	}

	got = run(t, "words", "score", "aahed")
	if !strings.Contains(got, "AAHED") || !strings.Contains(got, "not in solution list") {
		t.Errorf("score output = %q", got)
	}

	got = run(t, "words", "frequency", "all")
	if lines := strings.Count(got, "\n"); lines != 27 {
		t.Errorf("frequency printed %d lines, want header + 26", lines)
	}
}

func TestSolve_ManualRows(t *testing.T) {
	t.Cleanup(func() { solveRows = nil })

	got := run(t, "solve", "--row", "TRACE/GBBBG", "--row", "tense:ggggg")
	if !strings.Contains(got, "1 candidate(s)") || !strings.Contains(got, "TENSE") {
		t.Errorf("solve output = %q", got)
	}
	if !strings.Contains(got, "pattern TENSE") {
		t.Errorf("knowledge line missing: %q", got)
	}
}

func TestConfigShow(t *testing.T) {
	got := run(t, "config", "show")
	if !strings.Contains(got, "Current Configuration") || !strings.Contains(got, "area_fraction: 0.02") {
		t.Errorf("config show output = %q", got)
	}
	if strings.Contains(got, "dev_secret_change_me") {
		t.Error("config show leaked the auth secret")
	}
}

func TestParseRowFlag(t *testing.T) {
	row, err := parseRowFlag("crane/gybbb")
	if err != nil {
		t.Fatalf("parseRowFlag() error = %v", err)
	}
	if row.String() != "CRANE/GYBBB" {
		t.Errorf("row = %s", row)
	}
	for _, bad := range []string{"CRANE", "CRANE/GYB", "CR4NE/BBBBB"} {
		if _, err := parseRowFlag(bad); err == nil {
			t.Errorf("parseRowFlag(%q) succeeded", bad)
		}
	}
}

func TestMergeRows(t *testing.T) {
	r := func(s string) board.Row {
		row, err := parseRowFlag(s)
		if err != nil {
			t.Fatal(err)
		}
		return row
	}
	var h board.Board
	h = mergeRows(h, []board.Row{r("CRANE/BBBBB")})
	h = mergeRows(h, []board.Row{r("CRONE/BBBBB"), r("TOILS/BBBBY"), r("SPEED/YBBBB")})
	if h.Len() != 3 {
		t.Fatalf("len = %d, want 3", h.Len())
	}
	if h.Rows[0].Word() != "CRANE" {
		t.Errorf("row 0 = %s, history should win", h.Rows[0])
	}
	if h.Rows[2].Word() != "SPEED" {
		t.Errorf("row 2 = %s", h.Rows[2])
	}
}
