package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/louvel/scantext/internal/model"
)

// errQuit signals that the user backed out of the interactive picker.
// The caller treats it as a clean exit, not a failure.
var errQuit = errors.New("selection cancelled")

// picker runs the interactive file selection dialog. Input and output
// are plain reader/writer pairs so tests can drive the dialog with
// scripted answers.
type picker struct {
	in  *bufio.Scanner
	out io.Writer
}

// newPicker creates a picker reading answers from in and writing
// prompts to out.
func newPicker(in io.Reader, out io.Writer) *picker {
	return &picker{
		in:  bufio.NewScanner(in),
		out: out,
	}
}

// SelectOne shows the numbered file list and asks for a single choice.
// It keeps asking until the answer is a valid number, and returns
// errQuit on 'q' or end of input.
func (p *picker) SelectOne(paths []string) (string, error) {
	p.printFileList(paths)

	for {
		fmt.Fprintf(p.out, "Select a file by number (1-%d), or 'q' to quit: ", len(paths))

		answer, ok := p.readLine()
		if !ok || strings.EqualFold(answer, "q") {
			return "", errQuit
		}

		n, err := strconv.Atoi(answer)
		if err == nil && n >= 1 && n <= len(paths) {
			return paths[n-1], nil
		}

		fmt.Fprintln(p.out, "Invalid choice, try again.")
	}
}

// SelectMany shows the numbered file list and asks for a selection of
// several files. Selections use the same syntax as --pages: numbers
// and ranges separated by commas, or 'all' for every file. Numbers
// outside the list are dropped silently; duplicates collapse. It
// returns errQuit on 'q' or end of input.
func (p *picker) SelectMany(paths []string) ([]string, error) {
	p.printFileList(paths)

	fmt.Fprintln(p.out, "Select files to process:")
	fmt.Fprintln(p.out, "  - Enter numbers separated by commas (e.g., '1,3,5')")
	fmt.Fprintln(p.out, "  - Enter a range with a hyphen (e.g., '1-5')")
	fmt.Fprintln(p.out, "  - Enter 'all' to process every file")
	fmt.Fprintln(p.out, "  - Enter 'q' to quit")

	for {
		fmt.Fprint(p.out, "Your selection: ")

		answer, ok := p.readLine()
		if !ok || strings.EqualFold(answer, "q") {
			return nil, errQuit
		}

		if strings.EqualFold(answer, "all") {
			selected := make([]string, len(paths))
			copy(selected, paths)
			return selected, nil
		}

		// Selections share the page-range syntax, so the parser and the
		// out-of-range filtering come for free.
		pr, err := model.ParsePageRange(answer)
		if err == nil && !pr.IsAll() {
			indices := pr.Filter(len(paths))
			if len(indices) > 0 {
				selected := make([]string, 0, len(indices))
				for _, i := range indices {
					selected = append(selected, paths[i])
				}
				return selected, nil
			}
		}

		fmt.Fprintln(p.out, "Invalid selection, try again.")
	}
}

// printFileList writes the numbered list of candidate files.
func (p *picker) printFileList(paths []string) {
	fmt.Fprintln(p.out, "Supported files found:")
	for i, path := range paths {
		fmt.Fprintf(p.out, "  [%d] %s\n", i+1, filepath.Base(path))
	}
}

// readLine reads the next trimmed answer. The second return value is
// false once input is exhausted.
func (p *picker) readLine() (string, bool) {
	if !p.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(p.in.Text()), true
}

// listSupportedFiles returns the supported files directly inside dir,
// sorted by name. Subdirectories are not searched.
func listSupportedFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if model.IsSupportedFile(entry.Name()) {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)

	return paths, nil
}
