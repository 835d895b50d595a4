package nvhr

import (
	"fmt"
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// TextMode selects how invalid UTF-8 in the payload is handled.
type TextMode uint8

const (
	// TextDrop removes invalid byte sequences.
	TextDrop TextMode = iota
	// TextReplace substitutes U+FFFD for each invalid sequence.
	TextReplace
)

func (m TextMode) String() string {
	switch m {
	case TextDrop:
		return "drop"
	case TextReplace:
		return "replace"
	default:
		return fmt.Sprintf("unknown(%d)", m)
	}
}

func ParseTextMode(name string) (TextMode, error) {
	switch strings.ToLower(name) {
	case "", "drop", "ignore":
		return TextDrop, nil
	case "replace":
		return TextReplace, nil
	default:
		return 0, fmt.Errorf("unknown text mode: %q", name)
	}
}

// DecodeText interprets b as UTF-8. It never fails; input with no valid
// UTF-8 at all yields an empty (TextDrop) or placeholder-only string.
func DecodeText(b []byte, mode TextMode) string {
	if mode == TextReplace {
		s, _, err := transform.Bytes(runes.ReplaceIllFormed(), b)
		if err == nil {
			return string(s)
		}
	}
	return strings.ToValidUTF8(string(b), "")
}
