// Package assets holds the embedded fallback word corpus.
package assets

import (
	"bytes"
	"embed"
	"io"
)

//go:embed wordlist.txt
var FS embed.FS

// CorpusName is the embedded corpus file. The format is a single line of
// quoted, comma-delimited words: dictionary words first, then the solution
// list starting at the sentinel word.
const CorpusName = "wordlist.txt"

// Corpus returns a reader over the embedded corpus.
func Corpus() (io.Reader, error) {
	b, err := FS.ReadFile(CorpusName)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(b), nil
}
