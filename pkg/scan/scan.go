// Package scan flags lines of a decoded configuration that contain
// credentials, download/shell tokens or non-local URLs.
//
// Matching is literal substring matching only. In particular "sh" matches
// anywhere in a line ("refresh", "ssh", "Flash"), so CommandInjectionRisk
// over-reports; the behaviour is kept so results stay comparable with
// earlier reports.
package scan

import (
	"fmt"
	"strings"
)

// Kind classifies a finding.
type Kind uint8

const (
	CredentialToken Kind = iota + 1
	CommandInjectionRisk
	ExternalURL
)

func (k Kind) String() string {
	switch k {
	case CredentialToken:
		return "credential"
	case CommandInjectionRisk:
		return "command_injection"
	case ExternalURL:
		return "external_url"
	default:
		return fmt.Sprintf("unknown(%d)", k)
	}
}

// Finding is one match on one line. Line is 1-based; Text is the line
// with surrounding whitespace removed.
type Finding struct {
	Line  int
	Kind  Kind
	Label string
	Text  string
}

func (f Finding) String() string {
	return fmt.Sprintf("Line %d: %s - %s", f.Line, f.Label, f.Text)
}

type rule struct {
	kind  Kind
	label string
	match func(line, lower string) bool
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Rules are evaluated in order; a line may produce several findings.
var rules = []rule{
	{CredentialToken, "Password found", func(_, lower string) bool {
		return strings.Contains(lower, "password(")
	}},
	{CredentialToken, "Username found", func(_, lower string) bool {
		return strings.Contains(lower, "username(")
	}},
	{CommandInjectionRisk, "Potential command injection", func(line, _ string) bool {
		return containsAny(line, "curl", "wget", "sh")
	}},
	{ExternalURL, "External URL", func(line, _ string) bool {
		return strings.Contains(line, "http://") && !containsAny(line, "localhost", "127.0.0.1")
	}},
}

// Line classifies a single line. n is reported as the line number.
func Line(n int, line string) []Finding {
	line = strings.TrimSpace(line)
	lower := strings.ToLower(line)

	var findings []Finding
	for _, r := range rules {
		if r.match(line, lower) {
			findings = append(findings, Finding{Line: n, Kind: r.kind, Label: r.label, Text: line})
		}
	}
	return findings
}

// Lines classifies every "\n"-separated line of text.
func Lines(text string) []Finding {
	var findings []Finding
	for i, line := range strings.Split(text, "\n") {
		findings = append(findings, Line(i+1, line)...)
	}
	return findings
}

// Count tallies findings by kind.
func Count(findings []Finding) map[Kind]int {
	counts := make(map[Kind]int)
	for _, f := range findings {
		counts[f.Kind]++
	}
	return counts
}
