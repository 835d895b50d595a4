// Package report prints decoder progress, previews and scan findings for
// an operator. The output is informational and not meant to be parsed.
package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/termenv"

	"github.com/falk/nvhr-go/pkg/nvhr"
	"github.com/falk/nvhr-go/pkg/scan"
)

const (
	AnalysisBanner = "=== SECURITY ANALYSIS ==="
	ConcernsFound  = "SECURITY CONCERNS FOUND:"
	NoConcerns     = "No obvious security concerns detected"
)

type Printer struct {
	w io.Writer

	ok      lipgloss.Style
	warn    lipgloss.Style
	fail    lipgloss.Style
	heading lipgloss.Style
	faint   lipgloss.Style
}

// New returns a Printer writing to w. With color disabled, or when w is
// not a terminal, output is plain text.
func New(w io.Writer, color bool) *Printer {
	r := lipgloss.NewRenderer(w)
	if !color {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Printer{
		w:       w,
		ok:      r.NewStyle().Foreground(lipgloss.Color("2")),
		warn:    r.NewStyle().Foreground(lipgloss.Color("3")),
		fail:    r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		heading: r.NewStyle().Bold(true),
		faint:   r.NewStyle().Faint(true),
	}
}

func (p *Printer) line(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *Printer) Start(input, output string) {
	p.line("Decoding: %s", input)
	p.line("Output: %s", output)
	p.line("%s", p.faint.Render(strings.Repeat("-", 50)))
}

// Container prints the size and header bytes of c, and warns when the
// magic is missing.
func (p *Printer) Container(c *nvhr.Container) {
	p.line("File size: %d bytes (%s)", c.Len(), humanize.IBytes(uint64(c.Len())))
	if !c.HasMagic() {
		p.line("%s", p.warn.Render("Warning: File doesn't start with NVHR header"))
	}
	p.line("Header: %q", c.Header())
}

// Payload prints how the payload was found: directly at the primary offset
// or after failed attempts.
func (p *Printer) Payload(pl *nvhr.Payload) {
	if !pl.Fallback() {
		p.line("%s", p.ok.Render(fmt.Sprintf("SUCCESS - Decompressed %d bytes", len(pl.Data))))
		return
	}
	p.attempts(pl.Attempts)
	p.line("%s", p.ok.Render(fmt.Sprintf("SUCCESS at offset %#x - Decompressed %d bytes", pl.Offset, len(pl.Data))))
}

func (p *Printer) attempts(attempts []nvhr.Attempt) {
	for _, a := range attempts {
		if a.Err == nil {
			continue
		}
		if a.Offset == nvhr.PrimaryOffset {
			p.line("%s", p.warn.Render(fmt.Sprintf("Zlib decompression failed: %v", a.Err)))
			p.line("Trying alternative offsets...")
			continue
		}
		p.line("%s", p.faint.Render(fmt.Sprintf("  offset %#x: %v", a.Offset, a.Err)))
	}
}

func (p *Printer) Saved(path string) {
	p.line("Saved to: %s", path)
}

func (p *Printer) Repacked(path string) {
	p.line("Repacked to: %s", path)
}

// Failure prints a message for a failed decode.
func (p *Printer) Failure(input string, err error) {
	var de *nvhr.DecompressionError
	switch {
	case errors.Is(err, nvhr.ErrNotFound):
		p.line("%s", p.fail.Render(fmt.Sprintf("Error: File '%s' not found", input)))
	case errors.As(err, &de):
		p.attempts(de.Attempts)
		p.line("%s", p.fail.Render("Failed to decompress with any known offset"))
	default:
		p.line("%s", p.fail.Render(fmt.Sprintf("Error: %v", err)))
	}
	p.line("Failed to decode configuration file")
}

// Preview prints the first n characters of text, followed by "..." when
// text is longer. Negative n is treated as zero.
func (p *Printer) Preview(text string, n int) {
	head, truncated := Truncate(text, n)
	p.line("")
	p.line("First %d characters:", max(n, 0))
	p.line("%s", p.faint.Render(strings.Repeat("-", 30)))
	p.line("%s", head)
	if truncated {
		p.line("...")
	}
}

// Truncate returns the first n runes of s and whether anything was cut.
func Truncate(s string, n int) (string, bool) {
	if n <= 0 {
		return "", s != ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos], true
		}
		i++
	}
	return s, false
}

// Findings prints scan results under the analysis banner.
func (p *Printer) Findings(findings []scan.Finding) {
	p.line("")
	p.line("%s", p.heading.Render(AnalysisBanner))
	if len(findings) == 0 {
		p.line("%s", p.ok.Render(NoConcerns))
		return
	}
	p.line("%s", p.warn.Render(ConcernsFound))
	for _, f := range findings {
		p.line("  %s  %s", p.warn.Render("⚠️"), f)
	}
}
