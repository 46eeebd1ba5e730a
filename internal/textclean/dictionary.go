package textclean

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

const (
	// maxEditDistance bounds how far a suggestion may be from the
	// misread word.
	maxEditDistance = 2

	// minLearnedFrequency is how often a word must appear in the
	// document before it counts as known. Singletons are the correction
	// candidates, not the reference vocabulary.
	minLearnedFrequency = 2
)

// Dictionary holds the reference vocabulary for spell correction: word
// frequencies harvested from the document being cleaned, plus words from
// an optional user-supplied list that are always trusted.
type Dictionary struct {
	freq  map[string]int
	words map[string]struct{}
}

// NewDictionary creates an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{
		freq:  make(map[string]int),
		words: make(map[string]struct{}),
	}
}

// LoadWordList reads a word list file into the trusted vocabulary.
// One word per line; blank lines and lines starting with '#' are
// skipped. Words are matched case-insensitively.
func (d *Dictionary) LoadWordList(path string) error {
	f, err := os.Open(path) //nolint:gosec // User-provided word list path is intentional
	if err != nil {
		return fmt.Errorf("open word list: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word == "" || strings.HasPrefix(word, "#") {
			continue
		}
		d.words[strings.ToLower(word)] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read word list: %w", err)
	}
	return nil
}

// Learn counts the word tokens of text into the frequency table.
func (d *Dictionary) Learn(text string) {
	for _, token := range splitTokens(text) {
		if token == "" || !isWordRune(firstRune(token)) {
			continue
		}
		d.freq[strings.ToLower(token)]++
	}
}

// Known reports whether word (lowercase) is part of the reference
// vocabulary: either trusted from the user list or frequent enough in
// the document.
func (d *Dictionary) Known(word string) bool {
	if _, ok := d.words[word]; ok {
		return true
	}
	return d.freq[word] >= minLearnedFrequency
}

// Suggest returns the best reference word within maxEditDistance of
// word (lowercase). Candidates are ranked by frequency discounted by
// distance; ties resolve to the lexicographically smaller word so
// correction is deterministic.
func (d *Dictionary) Suggest(word string) (string, bool) {
	var (
		best      string
		bestScore float64
	)

	consider := func(candidate string, freq int) {
		if !withinLengthBound(word, candidate) {
			return
		}
		dist := Distance(word, candidate)
		if dist == 0 || dist > maxEditDistance {
			return
		}
		score := float64(freq) / float64(dist+1)
		if score > bestScore || (score == bestScore && best != "" && candidate < best) {
			best = candidate
			bestScore = score
		}
	}

	for candidate, freq := range d.freq {
		if freq < minLearnedFrequency {
			continue
		}
		consider(candidate, freq)
	}
	for candidate := range d.words {
		freq := d.freq[candidate]
		if freq < 1 {
			freq = 1
		}
		consider(candidate, freq)
	}

	return best, best != ""
}

// clone copies the dictionary so per-document learning does not leak
// into the shared user vocabulary.
func (d *Dictionary) clone() *Dictionary {
	c := NewDictionary()
	for w, n := range d.freq {
		c.freq[w] = n
	}
	for w := range d.words {
		c.words[w] = struct{}{}
	}
	return c
}

// withinLengthBound is a cheap pre-check: words whose lengths differ by
// more than maxEditDistance cannot be within that distance.
func withinLengthBound(a, b string) bool {
	diff := len(a) - len(b)
	if diff < 0 {
		diff = -diff
	}
	return diff <= maxEditDistance
}
