package words

import (
	"fmt"
	"strings"
)

// LetterFrequency holds both frequency measures for one letter, computed
// over the solution partition.
type LetterFrequency struct {
	Letter string `json:"letter" yaml:"letter"`
	// InWords is the fraction of solution words containing the letter.
	InWords float64 `json:"inWords" yaml:"in_words"`
	// Occurrence is total occurrences divided by the number of solutions.
	Occurrence float64 `json:"occurrence" yaml:"occurrence"`
}

// WordScore ranks a word as an opening guess. Both component scores are
// min-max scaled across solutions and dictionary together; Score is their mean.
type WordScore struct {
	Word            string  `json:"word"`
	WordFreqScore   float64 `json:"wordFreqScore"`
	LetterFreqScore float64 `json:"letterFreqScore"`
	Score           float64 `json:"score"`
	Label           Label   `json:"label"`
}

// Analysis is the precomputed frequency context for a List.
// Built once and read-only afterwards.
type Analysis struct {
	list   *List
	inWord [26]float64
	occur  [26]float64
	scores map[string]WordScore
}

// NewAnalysis computes letter frequencies and word scores for l.
func NewAnalysis(l *List) *Analysis {
	a := &Analysis{list: l}
	n := float64(len(l.Solutions))

	var inWord, occur [26]int
	for _, w := range l.Solutions {
		var seen [26]bool
		for i := 0; i < len(w); i++ {
			c := w[i] - 'A'
			occur[c]++
			if !seen[c] {
				seen[c] = true
				inWord[c]++
			}
		}
	}
	for c := 0; c < 26; c++ {
		a.inWord[c] = float64(inWord[c]) / n
		a.occur[c] = float64(occur[c]) / n
	}

	all := l.All()
	wf := make([]float64, len(all))
	lf := make([]float64, len(all))
	for i, w := range all {
		wf[i], lf[i] = a.rawScores(w)
	}
	minMaxScale(wf)
	minMaxScale(lf)

	a.scores = make(map[string]WordScore, len(all))
	for i, w := range all {
		a.scores[w] = WordScore{
			Word:            w,
			WordFreqScore:   wf[i],
			LetterFreqScore: lf[i],
			Score:           (wf[i] + lf[i]) / 2,
			Label:           l.Label(w),
		}
	}
	return a
}

// rawScores sums each frequency over the distinct letters of w.
func (a *Analysis) rawScores(w string) (wordFreq, letterFreq float64) {
	var seen [26]bool
	for i := 0; i < len(w); i++ {
		c := w[i] - 'A'
		if seen[c] {
			continue
		}
		seen[c] = true
		wordFreq += a.inWord[c]
		letterFreq += a.occur[c]
	}
	return wordFreq, letterFreq
}

// minMaxScale rescales xs into [0,1] in place. A constant column scales to 0.
func minMaxScale(xs []float64) {
	if len(xs) == 0 {
		return
	}
	lo, hi := xs[0], xs[0]
	for _, x := range xs[1:] {
		lo = min(lo, x)
		hi = max(hi, x)
	}
	span := hi - lo
	for i, x := range xs {
		if span == 0 {
			xs[i] = 0
			continue
		}
		xs[i] = (x - lo) / span
	}
}

// List returns the list the analysis was built from.
func (a *Analysis) List() *List { return a.list }

// Score looks up the score of word in either partition.
func (a *Analysis) Score(word string) (WordScore, bool) {
	s, ok := a.scores[strings.ToUpper(strings.TrimSpace(word))]
	return s, ok
}

// LetterFrequency returns the frequencies for a single letter.
func (a *Analysis) LetterFrequency(letter string) (LetterFrequency, error) {
	letter = strings.ToUpper(strings.TrimSpace(letter))
	if len(letter) != 1 || letter[0] < 'A' || letter[0] > 'Z' {
		return LetterFrequency{}, fmt.Errorf("words: %q is not a single letter", letter)
	}
	c := letter[0] - 'A'
	return LetterFrequency{Letter: letter, InWords: a.inWord[c], Occurrence: a.occur[c]}, nil
}

// Frequencies returns all 26 letters in alphabetical order.
func (a *Analysis) Frequencies() []LetterFrequency {
	out := make([]LetterFrequency, 26)
	for c := 0; c < 26; c++ {
		out[c] = LetterFrequency{
			Letter:     string(rune('A' + c)),
			InWords:    a.inWord[c],
			Occurrence: a.occur[c],
		}
	}
	return out
}

// Rank returns scores for the given words, best first. Unknown words are
// skipped. Ties break alphabetically.
func (a *Analysis) Rank(words []string) []WordScore {
	out := make([]WordScore, 0, len(words))
	for _, w := range words {
		if s, ok := a.Score(w); ok {
			out = append(out, s)
		}
	}
	sortScores(out)
	return out
}
