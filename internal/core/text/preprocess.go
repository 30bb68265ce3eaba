package text

import (
	"bufio"
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"
)

//go:embed stopwords_en.txt
var englishStopwords []byte

// Preprocessor normalises predicate labels before they are scored.
type Preprocessor struct {
	stopwords map[string]struct{}
}

// NewPreprocessor builds a preprocessor over an explicit stop-word list.
func NewPreprocessor(stopwords []string) *Preprocessor {
	set := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		set[strings.ToLower(w)] = struct{}{}
	}
	return &Preprocessor{stopwords: set}
}

// English returns a preprocessor using the bundled English stop-word table.
func English() *Preprocessor {
	return NewPreprocessor(parseWords(englishStopwords))
}

// Load reads a newline separated stop-word file. An empty path selects the
// bundled English table.
func Load(path string) (*Preprocessor, error) {
	if path == "" {
		return English(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read stop-word file '%s': %w", path, err)
	}
	return NewPreprocessor(parseWords(data)), nil
}

func parseWords(data []byte) []string {
	var words []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		w := strings.TrimSpace(sc.Text())
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		words = append(words, w)
	}
	return words
}

func (p *Preprocessor) IsStopword(word string) bool {
	_, ok := p.stopwords[word]
	return ok
}

// Clean lowercases label, splits it on single spaces and drops stop-words.
func (p *Preprocessor) Clean(label string) string {
	parts := strings.Split(strings.ToLower(label), " ")
	kept := parts[:0]
	for _, w := range parts {
		if p.IsStopword(w) {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}

func (p *Preprocessor) CleanAll(labels []string) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = p.Clean(l)
	}
	return out
}
