package searcher

import "strings"

// Mode selects how query terms combine into a candidate set.
type Mode int

const (
	// ModeOR matches documents containing any query term.
	ModeOR Mode = iota
	// ModeAND matches documents containing every query term.
	ModeAND
	// ModePhrase matches the raw lowercased query as a literal substring.
	ModePhrase
)

// ParseMode maps a mode string to a Mode, case-insensitively. Unrecognised
// input falls back to ModeOR.
func ParseMode(s string) Mode {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "AND":
		return ModeAND
	case "PHRASE":
		return ModePhrase
	default:
		return ModeOR
	}
}

func (m Mode) String() string {
	switch m {
	case ModeAND:
		return "AND"
	case ModePhrase:
		return "PHRASE"
	default:
		return "OR"
	}
}
