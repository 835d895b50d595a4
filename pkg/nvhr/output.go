package nvhr

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const TextExt = ".txt"

// DefaultOutputPath replaces the extension of input with ".txt". Names
// with no extension, and dotfiles such as ".bak", get ".txt" appended. If
// the input already ends in ".txt" the suffix is doubled rather than
// overwriting the input.
func DefaultOutputPath(input string) string {
	dir, base := filepath.Split(input)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if stem == "" {
		// ".bak" is a name, not an extension
		stem = base
	}

	out := dir + stem + TextExt
	if out == input {
		out = input + TextExt
	}
	return out
}

// WriteText writes the decoded configuration to path as UTF-8.
func WriteText(path, text string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer f.Close()

	if _, err := f.WriteString(text); err != nil {
		return fmt.Errorf("%w: writing %s: %w", ErrIO, path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: closing %s: %w", ErrIO, path, err)
	}
	return nil
}
