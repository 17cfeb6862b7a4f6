// Package richtext parses the inline emphasis markers used in slide outline
// text (**bold**, *italic*, <u>underline</u>) into styled runs.
//
// Only the three literal marker forms are recognized, matched non-greedily
// and left to right in a single pass. Nested markers are deliberately not
// supported: malformed or unterminated markers pass through as literal text.
package richtext

import (
	"regexp"
	"strings"
)

// Run is a span of text with a uniform style.
type Run struct {
	Text      string
	Bold      bool
	Italic    bool
	Underline bool
}

// markerPattern splits text on the three marker forms, keeping the markers
// as their own tokens. Bold must come before italic in the alternation so
// "**x**" is not consumed as two italic markers.
var markerPattern = regexp.MustCompile(`(\*\*.*?\*\*|\*.*?\*|<u>.*?</u>)`)

// MaxIndentLevel caps the outline level derived from leading spaces.
const MaxIndentLevel = 5

// indentUnit is the number of leading spaces per outline level.
const indentUnit = 2

// Parse decomposes a line into styled runs. Runs whose extracted text is
// empty are dropped. A line without markers yields a single plain run.
func Parse(s string) []Run {
	if s == "" {
		return nil
	}

	var runs []Run
	last := 0
	for _, loc := range markerPattern.FindAllStringIndex(s, -1) {
		if loc[0] > last {
			runs = appendRun(runs, Run{Text: s[last:loc[0]]})
		}
		runs = appendRun(runs, styledRun(s[loc[0]:loc[1]]))
		last = loc[1]
	}
	if last < len(s) {
		runs = appendRun(runs, Run{Text: s[last:]})
	}
	return runs
}

// styledRun strips the markers off a matched token and tags it with the
// matching style flag. Token lengths are guaranteed by the regex, but the
// emptiness checks keep degenerate matches like "**" out of the output.
func styledRun(tok string) Run {
	switch {
	case strings.HasPrefix(tok, "**") && strings.HasSuffix(tok, "**") && len(tok) > 4:
		return Run{Text: tok[2 : len(tok)-2], Bold: true}
	case strings.HasPrefix(tok, "<u>") && strings.HasSuffix(tok, "</u>") && len(tok) > 7:
		return Run{Text: tok[3 : len(tok)-4], Underline: true}
	case strings.HasPrefix(tok, "*") && strings.HasSuffix(tok, "*") && len(tok) > 2:
		return Run{Text: tok[1 : len(tok)-1], Italic: true}
	default:
		return Run{Text: tok}
	}
}

func appendRun(runs []Run, r Run) []Run {
	if r.Text == "" {
		return runs
	}
	return append(runs, r)
}

// Strip returns the text of a line with all markers removed.
func Strip(s string) string {
	runs := Parse(s)
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// Indent returns the outline level implied by a line's leading spaces
// (two spaces per level, capped at MaxIndentLevel) and the line with the
// leading whitespace removed.
func Indent(line string) (int, string) {
	stripped := strings.TrimLeft(line, " ")
	level := (len(line) - len(stripped)) / indentUnit
	if level > MaxIndentLevel {
		level = MaxIndentLevel
	}
	return level, stripped
}
