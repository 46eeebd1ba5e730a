package textclean

// Distance calculates the minimum number of single-character edits
// (insertions, deletions, or substitutions) required to change one
// string into another. Operates on runes so accented and multibyte
// characters count as single edits.
func Distance(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len([]rune(b))
	}
	if len(b) == 0 {
		return len([]rune(a))
	}

	runesA := []rune(a)
	runesB := []rune(b)

	// Two rows are enough: each cell only looks at the previous row and
	// the cell to its left.
	prev := make([]int, len(runesB)+1)
	curr := make([]int, len(runesB)+1)
	for j := 0; j <= len(runesB); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(runesA); i++ {
		curr[0] = i
		for j := 1; j <= len(runesB); j++ {
			cost := 0
			if runesA[i-1] != runesB[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(runesB)]
}
