package textclean

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFoldDiacritics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "accents fold to base letters", in: "café", want: "cafe"},
		{name: "uppercase accents fold too", in: "Éléphant", want: "Elephant"},
		{name: "cedilla folds", in: "garçon", want: "garcon"},
		{name: "plain ascii passes through", in: "hello world", want: "hello world"},
		{name: "mixed text folds only the marks", in: "déjà vu", want: "deja vu"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := FoldDiacritics(tt.in); got != tt.want {
				t.Errorf("FoldDiacritics(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFixConfusions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "capital I apostrophe becomes l apostrophe", in: "I'homme", want: "l'homme"},
		{name: "zero inside a word becomes o", in: "v0iture", want: "voiture"},
		{name: "one inside a word becomes l", in: "fami1le", want: "famille"},
		{name: "leading zero is untouched", in: "0n reste", want: "0n reste"},
		{name: "trailing digit is untouched", in: "page 10", want: "page 10"},
		{name: "digit between digits still converts", in: "100", want: "1o0"},
		{name: "I mid-word keeps its apostrophe", in: "AI'", want: "AI'"},
		{name: "plain text passes through", in: "rien a corriger", want: "rien a corriger"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := fixConfusions(tt.in); got != tt.want {
				t.Errorf("fixConfusions(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCollapseWhitespace(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "double spaces collapse", in: "un  deux", want: "un deux"},
		{name: "tab runs collapse", in: "un\t\tdeux", want: "un deux"},
		{name: "single newline survives", in: "un\ndeux", want: "un\ndeux"},
		{name: "blank line runs collapse", in: "un\n\n\ndeux", want: "un deux"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := collapseWhitespace(tt.in); got != tt.want {
				t.Errorf("collapseWhitespace(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSplitTokens(t *testing.T) {
	t.Parallel()

	t.Run("runs rejoin to the original text", func(t *testing.T) {
		t.Parallel()
		in := "Bonjour, le monde! user@example.com 42"
		var rejoined string
		for _, tok := range splitTokens(in) {
			rejoined += tok
		}
		if rejoined != in {
			t.Errorf("rejoined = %q, want %q", rejoined, in)
		}
	})

	t.Run("empty input yields no tokens", func(t *testing.T) {
		t.Parallel()
		if got := splitTokens(""); got != nil {
			t.Errorf("splitTokens(\"\") = %v, want nil", got)
		}
	})
}

func TestCleanerClean(t *testing.T) {
	t.Parallel()

	t.Run("blank input passes through", func(t *testing.T) {
		t.Parallel()
		c := NewCleaner()
		if got := c.Clean("   "); got != "   " {
			t.Errorf("Clean() = %q, want input unchanged", got)
		}
	})

	t.Run("repeated words anchor the correction of a misread", func(t *testing.T) {
		t.Parallel()
		c := NewCleaner()
		got := c.Clean("maison maison maison maiscn")
		if got != "maison maison maison maison" {
			t.Errorf("Clean() = %q, want the misread corrected", got)
		}
	})

	t.Run("correction preserves leading capitalization", func(t *testing.T) {
		t.Parallel()
		c := NewCleaner()
		got := c.Clean("maison maison maison Maiscn")
		if got != "maison maison maison Maison" {
			t.Errorf("Clean() = %q, want capitalized correction", got)
		}
	})

	t.Run("digit-led tokens are never corrected", func(t *testing.T) {
		t.Parallel()
		c := NewCleaner()
		got := c.Clean("total total total 4total")
		if got != "total total total 4total" {
			t.Errorf("Clean() = %q, want digit-led token untouched", got)
		}
	})

	t.Run("short tokens are never corrected", func(t *testing.T) {
		t.Parallel()
		c := NewCleaner()
		got := c.Clean("aux aux aux ax")
		if got != "aux aux aux ax" {
			t.Errorf("Clean() = %q, want short token untouched", got)
		}
	})

	t.Run("word list supplies corrections for singletons", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "words.txt")
		if err := os.WriteFile(path, []byte("bonjour\n"), 0600); err != nil {
			t.Fatal(err)
		}

		c := NewCleaner()
		if err := c.LoadWordList(path); err != nil {
			t.Fatalf("LoadWordList() error = %v", err)
		}
		if got := c.Clean("bonjuor"); got != "bonjour" {
			t.Errorf("Clean() = %q, want %q", got, "bonjour")
		}
	})

	t.Run("all passes compose on ocr output", func(t *testing.T) {
		t.Parallel()
		c := NewCleaner()
		in := "I'adresse  de la  maison. La mais0n est grande."
		got := c.Clean(in)
		want := "l'adresse de la maison. La maison est grande."
		if got != want {
			t.Errorf("Clean() = %q, want %q", got, want)
		}
	})
}
