package model

// Status represents the outcome of processing a single input file.
// It appears in run reports, the history database, and API responses.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons. The String() method provides the stable
// lowercase names used on the wire and in the database.
type Status int

const (
	// StatusOK indicates the file was processed and text was produced
	// (possibly empty for a blank page).
	StatusOK Status = iota

	// StatusSkipped indicates the file was not processed at all, for
	// example because it was missing or had an unsupported extension.
	StatusSkipped

	// StatusError indicates processing started but failed.
	StatusError
)

// String returns the stable lowercase name of the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusSkipped:
		return "skipped"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so a Status renders as
// its stable name instead of a bare integer in JSON output.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	*s = ParseStatus(string(text))
	return nil
}

// ParseStatus converts a stable status name back to a Status.
// Unknown names map to StatusError, which is the safe reading for
// records written by other versions.
func ParseStatus(s string) Status {
	switch s {
	case "ok":
		return StatusOK
	case "skipped":
		return StatusSkipped
	case "error":
		return StatusError
	default:
		return StatusError
	}
}
