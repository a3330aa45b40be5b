// Package topfile models top-file documents: per-environment mappings from
// match target to entry lists, where an entry is either a plain state name or
// a structured match condition. The model is slice-based so document order
// survives parsing, merging, and encoding.
package topfile

import (
	"reflect"

	"github.com/nrgaway/topd/pkg/errors"
)

// Entry is one element of a target's entry list: a state name (Match nil) or
// a match-condition mapping (State empty).
type Entry struct {
	State string
	Match map[string]interface{}
}

// IsMatch reports whether the entry is a structured match condition.
func (e Entry) IsMatch() bool {
	return e.Match != nil
}

// StateEntry returns a plain state-name entry.
func StateEntry(state string) Entry {
	return Entry{State: state}
}

// MatchEntry returns a match-condition entry.
func MatchEntry(match map[string]interface{}) Entry {
	return Entry{Match: match}
}

// Target is one match target and its ordered entries. Invalid marks a target
// whose source value was neither a list nor anything else handled; merging an
// invalid target fails the whole merge.
type Target struct {
	Name    string
	Entries []Entry
	Invalid bool
}

// EnvSection groups one environment's targets in document order.
type EnvSection struct {
	Saltenv string
	Targets []Target
}

// Target returns the named target, nil when absent.
func (s *EnvSection) Target(name string) *Target {
	for i := range s.Targets {
		if s.Targets[i].Name == name {
			return &s.Targets[i]
		}
	}
	return nil
}

// Document is one parsed top file (or a merge result).
type Document struct {
	// Includes holds the document's include globs, removed from the body.
	Includes []string
	Envs     []EnvSection
}

// Env returns the named environment section, nil when absent.
func (d *Document) Env(saltenv string) *EnvSection {
	for i := range d.Envs {
		if d.Envs[i].Saltenv == saltenv {
			return &d.Envs[i]
		}
	}
	return nil
}

func (d *Document) ensureEnv(saltenv string) *EnvSection {
	if section := d.Env(saltenv); section != nil {
		return section
	}
	d.Envs = append(d.Envs, EnvSection{Saltenv: saltenv})
	return &d.Envs[len(d.Envs)-1]
}

// IsEmpty reports whether the document carries no targets and no includes.
func (d *Document) IsEmpty() bool {
	return d == nil || (len(d.Envs) == 0 && len(d.Includes) == 0)
}

// TakeIncludes returns the document's include globs and clears them.
func (d *Document) TakeIncludes() []string {
	includes := d.Includes
	d.Includes = nil
	return includes
}

// Merge combines documents into one. Entries are merged per (environment,
// target) pair: match-condition entries are deduplicated by deep equality and
// kept in first-seen order; state-name entries are deduplicated by membership
// and appended after the match entries. A target unseen by the accumulator is
// inserted verbatim on first sight. Input documents are never mutated.
func Merge(documents ...*Document) (*Document, error) {
	merged := &Document{}

	for _, document := range documents {
		if document == nil {
			continue
		}
		for _, section := range document.Envs {
			target := merged.ensureEnv(section.Saltenv)
			for _, incoming := range section.Targets {
				if incoming.Invalid {
					return nil, errors.New(errors.ErrMalformedTop,
						"unable to render top file: no targets found").
						WithDetail("saltenv", section.Saltenv).
						WithDetail("target", incoming.Name)
				}
				existing := target.Target(incoming.Name)
				if existing == nil {
					target.Targets = append(target.Targets, Target{
						Name:    incoming.Name,
						Entries: append([]Entry(nil), incoming.Entries...),
					})
					continue
				}
				existing.Entries = mergeEntries(existing.Entries, incoming.Entries)
			}
		}
	}
	return merged, nil
}

// mergeEntries recombines two entry lists: deduplicated match conditions
// first, then deduplicated state names, both in first-seen order.
func mergeEntries(accumulated, incoming []Entry) []Entry {
	var matches []Entry
	var states []Entry
	seenStates := make(map[string]struct{})

	for _, entry := range append(append([]Entry(nil), accumulated...), incoming...) {
		if entry.IsMatch() {
			if !containsMatch(matches, entry.Match) {
				matches = append(matches, entry)
			}
			continue
		}
		if _, dup := seenStates[entry.State]; dup {
			continue
		}
		seenStates[entry.State] = struct{}{}
		states = append(states, entry)
	}
	return append(matches, states...)
}

func containsMatch(entries []Entry, match map[string]interface{}) bool {
	for _, entry := range entries {
		if reflect.DeepEqual(entry.Match, match) {
			return true
		}
	}
	return false
}
