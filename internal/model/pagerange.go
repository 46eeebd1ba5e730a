package model

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// PageRange errors.
var (
	// ErrInvalidPageRange is returned when the page expression contains a
	// part that is not an integer or an integer range.
	ErrInvalidPageRange = errors.New("invalid page range")
)

// PageRange is an immutable value object representing a page selection
// expression such as "1,3-5". Users write 1-based page numbers; internally
// pages are stored 0-based, sorted, and deduplicated.
//
// The zero PageRange selects all pages. An expression that was given but
// selects nothing (such as the reversed range "5-3") is an empty selection,
// not all pages. The selection only restricts which pages the OCR fallback
// renders; the embedded-text pass always reads the whole document.
type PageRange struct {
	pages    []int // 0-based, sorted, unique
	explicit bool  // an expression was given, even one selecting nothing
}

// ParsePageRange parses a page expression into a PageRange.
// The expression is a comma-separated list of 1-based page numbers and
// inclusive ranges: "1,3-5" selects pages 1, 3, 4, and 5. Whitespace
// around parts is ignored. A reversed range like "5-3" selects nothing;
// standing alone it yields an empty selection, so no pages are processed.
// Only an empty expression returns the all-pages PageRange.
//
// Out-of-document page numbers are not an error here; they are dropped
// later by Filter once the document's page count is known.
func ParsePageRange(s string) (PageRange, error) {
	if strings.TrimSpace(s) == "" {
		return PageRange{}, nil
	}

	seen := make(map[int]bool)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return PageRange{}, fmt.Errorf("%w: empty part in %q", ErrInvalidPageRange, s)
		}

		if strings.Contains(part, "-") {
			bounds := strings.SplitN(part, "-", 2)
			lo, err := strconv.Atoi(strings.TrimSpace(bounds[0]))
			if err != nil {
				return PageRange{}, fmt.Errorf("%w: %q is not a page number", ErrInvalidPageRange, bounds[0])
			}
			hi, err := strconv.Atoi(strings.TrimSpace(bounds[1]))
			if err != nil {
				return PageRange{}, fmt.Errorf("%w: %q is not a page number", ErrInvalidPageRange, bounds[1])
			}
			for i := lo; i <= hi; i++ {
				seen[i-1] = true
			}
			continue
		}

		n, err := strconv.Atoi(part)
		if err != nil {
			return PageRange{}, fmt.Errorf("%w: %q is not a page number", ErrInvalidPageRange, part)
		}
		seen[n-1] = true
	}

	pages := make([]int, 0, len(seen))
	for p := range seen {
		pages = append(pages, p)
	}
	sort.Ints(pages)

	return PageRange{pages: pages, explicit: true}, nil
}

// MustParsePageRange parses a page expression or panics if invalid.
// Use only for known-valid expressions in tests or initialization.
func MustParsePageRange(s string) PageRange {
	pr, err := ParsePageRange(s)
	if err != nil {
		panic(err)
	}
	return pr
}

// IsAll reports whether this PageRange selects every page. Only the
// absence of an expression selects all pages; an explicit expression
// that resolved to nothing is an empty selection.
func (pr PageRange) IsAll() bool {
	return !pr.explicit
}

// Pages returns the selected 0-based page indices in ascending order.
// An all-pages PageRange returns nil.
func (pr PageRange) Pages() []int {
	if len(pr.pages) == 0 {
		return nil
	}
	out := make([]int, len(pr.pages))
	copy(out, pr.pages)
	return out
}

// Filter returns the 0-based page indices to process for a document with
// pageCount pages. An all-pages PageRange yields every index; an explicit
// selection drops indices outside [0, pageCount).
func (pr PageRange) Filter(pageCount int) []int {
	if pr.IsAll() {
		all := make([]int, 0, pageCount)
		for i := 0; i < pageCount; i++ {
			all = append(all, i)
		}
		return all
	}

	kept := make([]int, 0, len(pr.pages))
	for _, p := range pr.pages {
		if p >= 0 && p < pageCount {
			kept = append(kept, p)
		}
	}
	return kept
}

// String renders the selection back as a compact 1-based expression,
// collapsing consecutive pages into ranges. The all-pages PageRange
// renders as "all"; an explicit selection of no pages renders as "none".
func (pr PageRange) String() string {
	if pr.IsAll() {
		return "all"
	}
	if len(pr.pages) == 0 {
		return "none"
	}

	var b strings.Builder
	for i := 0; i < len(pr.pages); {
		j := i
		for j+1 < len(pr.pages) && pr.pages[j+1] == pr.pages[j]+1 {
			j++
		}
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		if j > i {
			fmt.Fprintf(&b, "%d-%d", pr.pages[i]+1, pr.pages[j]+1)
		} else {
			fmt.Fprintf(&b, "%d", pr.pages[i]+1)
		}
		i = j + 1
	}
	return b.String()
}
