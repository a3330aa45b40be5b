// Package matcher compiles per-field match patterns into a single regular
// expression and applies it to attribute records.
//
// A record is serialized by joining its field values with newlines, in field
// order. The compiled matcher is one regex whose i-th line corresponds to the
// i-th field, so all fields are evaluated as a single anchored match. Glob
// patterns (*, ?, [...]) are translated to their regex equivalents unless the
// compile mode is ModeRegex, and values wrapped with Raw are never escaped in
// either mode.
package matcher

import (
	"regexp"
	"strings"

	"github.com/nrgaway/topd/pkg/errors"
)

// DefaultPattern is substituted for any field without usable patterns so an
// omitted field means "match any", never "match nothing".
const DefaultPattern = `.*`

// Mode selects how plain (non-Raw) pattern text is interpreted.
type Mode int

const (
	// ModeGlob translates pattern text as a shell glob.
	ModeGlob Mode = iota
	// ModeRegex uses pattern text as a literal regex fragment.
	ModeRegex
)

// Pattern is one per-field pattern. Raw patterns bypass escaping regardless
// of mode, which lets callers inject pre-built regex fragments (such as an
// environment alternation) into glob-mode compiles.
type Pattern struct {
	text string
	raw  bool
}

// Glob returns a pattern whose text is interpreted per the compile mode.
func Glob(text string) Pattern {
	return Pattern{text: text}
}

// Raw returns a pattern whose text is used as a regex fragment verbatim.
func Raw(text string) Pattern {
	return Pattern{text: text, raw: true}
}

// Globs converts plain strings to glob patterns.
func Globs(texts ...string) []Pattern {
	patterns := make([]Pattern, 0, len(texts))
	for _, text := range texts {
		patterns = append(patterns, Glob(text))
	}
	return patterns
}

// Text returns the pattern's original text.
func (p Pattern) Text() string {
	return p.text
}

// IsRaw reports whether the pattern bypasses escaping.
func (p Pattern) IsRaw() bool {
	return p.raw
}

func (p Pattern) fragment(mode Mode) string {
	if p.raw || mode == ModeRegex {
		return p.text
	}
	return Translate(p.text)
}

// Record is anything that can expose its field values in field order.
type Record interface {
	MatchFields() []string
}

// Matcher is a compiled multi-field pattern. The zero value of *Matcher (nil)
// matches every record.
type Matcher struct {
	fields []string
	re     *regexp.Regexp
}

// Compile builds a matcher from per-field pattern alternations.
//
// Pattern keys not present in fields are dropped. Fields absent from patterns
// (or whose pattern list is empty after removing blank entries) default to
// DefaultPattern. Multiple patterns for one field are OR-joined inside a
// non-capturing group. A nil matcher is returned when there is nothing to
// match on; callers treat that as "match everything".
func Compile(fields []string, patterns map[string][]Pattern, mode Mode) (*Matcher, error) {
	if len(fields) == 0 || len(patterns) == 0 {
		return nil, nil
	}

	lines := make([]string, 0, len(fields))
	for _, field := range fields {
		fragments := make([]string, 0, len(patterns[field]))
		for _, pattern := range patterns[field] {
			if pattern.text == "" {
				continue
			}
			fragments = append(fragments, pattern.fragment(mode))
		}
		if len(fragments) == 0 {
			fragments = []string{DefaultPattern}
		}
		lines = append(lines, "(?:"+strings.Join(fragments, "|")+")")
	}

	// Dot must match newlines so the regex engine evaluates all fields as a
	// single match against the newline-joined record; the \A anchor keeps the
	// match pinned to the first field.
	expr := `(?s)\A` + strings.Join(lines, `\n`)
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrPatternCompile, "invalid field pattern").
			WithDetail("expr", expr)
	}

	return &Matcher{fields: fields, re: re}, nil
}

// Fields returns the field order the matcher was compiled with.
func (m *Matcher) Fields() []string {
	if m == nil {
		return nil
	}
	return m.fields
}

// Match tests field values given in field order.
func (m *Matcher) Match(values []string) bool {
	if m == nil {
		return true
	}
	return m.re.MatchString(strings.Join(values, "\n"))
}

// MatchRecord tests a record's serialized field values.
func (m *Matcher) MatchRecord(r Record) bool {
	if m == nil {
		return true
	}
	return m.Match(r.MatchFields())
}

// Select returns one bool per record, true where the record matches. A nil
// matcher selects everything.
func Select[T Record](records []T, m *Matcher) []bool {
	selected := make([]bool, len(records))
	for i, record := range records {
		selected[i] = m.MatchRecord(record)
	}
	return selected
}

// Filter returns the records that match, preserving order.
func Filter[T Record](records []T, m *Matcher) []T {
	if m == nil {
		return records
	}
	matched := make([]T, 0, len(records))
	for _, record := range records {
		if m.MatchRecord(record) {
			matched = append(matched, record)
		}
	}
	return matched
}
