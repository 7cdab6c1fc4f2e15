// internal/words/words.go
//
// Word list management for the constraint engine and the word queries.
//
// Responsibilities:
//   - Load the reference corpus (quoted, comma-delimited, split at a sentinel
//     word) or the one-word-per-line answers/allowed files.
//   - Keep the two partitions disjoint: Solutions and Dictionary.
//   - Label words by partition and report list sizes.
//
// Corpus format:
//   "aahed","aalii",...,"cigar","rebut",...
//   Words before the sentinel (default CIGAR) are the dictionary; the sentinel
//   and everything after it are the solutions.
//
// Constraints:
//   • Words must be 5 alphabetic letters; anything else is dropped.
//   • Lists are normalized to uppercase.
//   • A List is read-only after load and safe to share.

package words

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kbfreder/wordle-analysis/assets"
)

// WordLength is the fixed word size of every list entry.
const WordLength = 5

// DefaultSentinel is the first solution word in the reference corpus.
const DefaultSentinel = "CIGAR"

var (
	ErrSentinelNotFound = errors.New("words: sentinel word not found in corpus")
	ErrEmptySolutions   = errors.New("words: solution list is empty")
)

// Label names the partition a word belongs to.
type Label int

const (
	LabelUnknown Label = iota
	LabelSolution
	LabelDictionary
)

func (l Label) String() string {
	switch l {
	case LabelSolution:
		return "solution"
	case LabelDictionary:
		return "dictionary"
	}
	return "unknown"
}

// MarshalText lets labels render by name in JSON and YAML.
func (l Label) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

// List is the partitioned reference corpus.
type List struct {
	Dictionary []string
	Solutions  []string

	labels map[string]Label
	index  map[string]int // position in All()
}

// Source selects where Load reads words from. Fields mirror config keys.
type Source struct {
	CorpusFile  string
	Sentinel    string
	AnswersFile string
	AllowedFile string
}

// Load picks a loader from src:
//  1. CorpusFile set: parse the quoted corpus split at Sentinel.
//  2. AnswersFile and AllowedFile set: answers are solutions, the rest of
//     allowed is the dictionary.
//  3. Only AllowedFile set: that list is used as the solutions.
//  4. Nothing set: the embedded corpus.
func Load(src Source) (*List, error) {
	sentinel := src.Sentinel
	if sentinel == "" {
		sentinel = DefaultSentinel
	}
	switch {
	case src.CorpusFile != "":
		return LoadFile(src.CorpusFile, sentinel)
	case src.AnswersFile != "" && src.AllowedFile != "":
		return LoadLines(src.AnswersFile, src.AllowedFile)
	case src.AllowedFile != "":
		return LoadLines(src.AllowedFile, "")
	default:
		return Default()
	}
}

// Default parses the embedded corpus.
func Default() (*List, error) {
	r, err := assets.Corpus()
	if err != nil {
		return nil, fmt.Errorf("words: embedded corpus: %w", err)
	}
	return Parse(r, DefaultSentinel)
}

// LoadFile parses a corpus file.
func LoadFile(path, sentinel string) (*List, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("words: open corpus: %w", err)
	}
	defer f.Close()
	l, err := Parse(f, sentinel)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return l, nil
}

// Parse reads a quoted, comma-delimited corpus and splits it at the first
// occurrence of sentinel.
func Parse(r io.Reader, sentinel string) (*List, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("words: read corpus: %w", err)
	}
	fields := strings.FieldsFunc(string(raw), func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		w := strings.ToUpper(strings.Trim(strings.TrimSpace(f), `"'`))
		if w != "" {
			tokens = append(tokens, w)
		}
	}

	sentinel = strings.ToUpper(strings.TrimSpace(sentinel))
	split := -1
	for i, w := range tokens {
		if w == sentinel {
			split = i
			break
		}
	}
	if split < 0 {
		return nil, fmt.Errorf("%w: %q", ErrSentinelNotFound, sentinel)
	}
	return New(tokens[:split], tokens[split:])
}

// LoadLines reads one word per line. Words in allowedPath that are not
// answers become the dictionary; allowedPath may be empty.
func LoadLines(answersPath, allowedPath string) (*List, error) {
	answers, err := readWordFile(answersPath)
	if err != nil {
		return nil, err
	}
	var allowed []string
	if allowedPath != "" {
		if allowed, err = readWordFile(allowedPath); err != nil {
			return nil, err
		}
	}
	return New(allowed, answers)
}

// New builds a List from raw partitions. Words are normalized, invalid and
// repeated entries are dropped, and a word present in both partitions is
// kept only as a solution.
func New(dictionary, solutions []string) (*List, error) {
	l := &List{labels: make(map[string]Label, len(dictionary)+len(solutions))}
	for _, w := range solutions {
		if w, ok := normalize(w); ok && l.labels[w] == LabelUnknown {
			l.labels[w] = LabelSolution
			l.Solutions = append(l.Solutions, w)
		}
	}
	if len(l.Solutions) == 0 {
		return nil, ErrEmptySolutions
	}
	for _, w := range dictionary {
		if w, ok := normalize(w); ok && l.labels[w] == LabelUnknown {
			l.labels[w] = LabelDictionary
			l.Dictionary = append(l.Dictionary, w)
		}
	}

	l.index = make(map[string]int, len(l.labels))
	for i, w := range l.All() {
		l.index[w] = i
	}
	return l, nil
}

// All returns the solutions followed by the dictionary in a new slice.
func (l *List) All() []string {
	out := make([]string, 0, len(l.Solutions)+len(l.Dictionary))
	out = append(out, l.Solutions...)
	return append(out, l.Dictionary...)
}

// Label reports which partition word belongs to.
func (l *List) Label(word string) Label {
	return l.labels[strings.ToUpper(strings.TrimSpace(word))]
}

// Contains reports whether word is in either partition.
func (l *List) Contains(word string) bool { return l.Label(word) != LabelUnknown }

// IsSolution reports whether word is in the solution partition.
func (l *List) IsSolution(word string) bool { return l.Label(word) == LabelSolution }

// Index returns the position of word within All().
func (l *List) Index(word string) (int, bool) {
	i, ok := l.index[strings.ToUpper(strings.TrimSpace(word))]
	return i, ok
}

// Stats returns the partition sizes.
func (l *List) Stats() (solutions, dictionary int) {
	return len(l.Solutions), len(l.Dictionary)
}

// readWordFile loads one word per line, skipping blanks and # comments.
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("words: open %s: %w", path, err)
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, s)
	}
	return out, sc.Err()
}

// normalize uppercases w and reports whether it is a valid list word.
func normalize(w string) (string, bool) {
	w = strings.ToUpper(strings.TrimSpace(w))
	if len(w) != WordLength {
		return "", false
	}
	for i := 0; i < len(w); i++ {
		if w[i] < 'A' || w[i] > 'Z' {
			return "", false
		}
	}
	return w, true
}
