package textclean

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// minCorrectionLength is the shortest token spell correction will touch.
// One and two letter tokens are too ambiguous against a
// document-harvested vocabulary.
const minCorrectionLength = 3

var (
	// rePronounConfusion matches a capital I with apostrophe at a word
	// start, the classic OCR misread of a lowercase l in French elisions
	// (l'homme, l'adresse).
	rePronounConfusion = regexp.MustCompile(`\bI'`)

	reWhitespaceRun = regexp.MustCompile(`\s{2,}`)
	reNewlineRun    = regexp.MustCompile(`\n{3,}`)
)

// Cleaner normalizes OCR output: diacritics folded to ASCII, common
// character confusions fixed, misread words replaced by close
// vocabulary matches, and whitespace collapsed.
type Cleaner struct {
	user *Dictionary
}

// NewCleaner creates a Cleaner with an empty trusted vocabulary.
func NewCleaner() *Cleaner {
	return &Cleaner{user: NewDictionary()}
}

// LoadWordList adds the words from a user-supplied list file to the
// trusted vocabulary.
func (c *Cleaner) LoadWordList(path string) error {
	return c.user.LoadWordList(path)
}

// Clean applies the normalization passes in order and returns the
// cleaned text. Blank input passes through unchanged.
func (c *Cleaner) Clean(text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	text = FoldDiacritics(text)
	text = fixConfusions(text)
	text = c.correctSpelling(text)
	return collapseWhitespace(text)
}

// FoldDiacritics strips combining marks so accented characters become
// their ASCII base form (é to e, ç to c).
func FoldDiacritics(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return folded
}

// fixConfusions repairs the character-level misreads OCR engines make
// on printed text: I' at a word start for l', and the digits 0 and 1
// inside words for the letters o and l.
func fixConfusions(text string) string {
	text = rePronounConfusion.ReplaceAllString(text, "l'")

	rs := []rune(text)
	for i := 1; i < len(rs)-1; i++ {
		if !isWordRune(rs[i-1]) || !isWordRune(rs[i+1]) {
			continue
		}
		switch rs[i] {
		case '0':
			rs[i] = 'o'
		case '1':
			rs[i] = 'l'
		}
	}
	return string(rs)
}

// correctSpelling replaces unknown word tokens with the closest
// vocabulary match. The vocabulary is the document's own word
// frequencies merged with the trusted user list, so repeated words
// anchor the correction of their misread variants.
func (c *Cleaner) correctSpelling(text string) string {
	dict := c.user.clone()
	dict.Learn(text)

	var b strings.Builder
	b.Grow(len(text))
	for _, token := range splitTokens(text) {
		b.WriteString(correctToken(dict, token))
	}
	return b.String()
}

// correctToken corrects a single token, passing through separators,
// digit-led tokens (numbers, dates), short tokens, and anything already
// in the vocabulary. Leading capitalization survives correction.
func correctToken(dict *Dictionary, token string) string {
	if token == "" {
		return token
	}
	first := firstRune(token)
	if !isWordRune(first) || unicode.IsDigit(first) {
		return token
	}
	if utf8.RuneCountInString(token) < minCorrectionLength {
		return token
	}

	lower := strings.ToLower(token)
	if dict.Known(lower) {
		return token
	}
	suggestion, ok := dict.Suggest(lower)
	if !ok {
		return token
	}
	if unicode.IsUpper(first) {
		suggestion = capitalize(suggestion)
	}
	return suggestion
}

// collapseWhitespace squeezes runs of whitespace to a single space and
// long blank stretches to a single blank line.
func collapseWhitespace(text string) string {
	text = reWhitespaceRun.ReplaceAllString(text, " ")
	return reNewlineRun.ReplaceAllString(text, "\n\n")
}

// splitTokens splits text into alternating runs of word and non-word
// characters, preserving every character so the runs rejoin to the
// original text.
func splitTokens(text string) []string {
	if text == "" {
		return nil
	}

	var (
		tokens  []string
		b       strings.Builder
		wordRun bool
		started bool
	)
	for _, r := range text {
		w := isWordRune(r)
		if !started {
			wordRun = w
			started = true
		}
		if w != wordRun {
			tokens = append(tokens, b.String())
			b.Reset()
			wordRun = w
		}
		b.WriteRune(r)
	}
	return append(tokens, b.String())
}

// isWordRune mirrors the usual word-character class: letters, digits,
// and underscore.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func firstRune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
