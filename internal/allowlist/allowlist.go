// Package allowlist suppresses known, accepted issues. Entries live in a
// TOML file (by default .botlint/allowlist.toml):
//
//	[[entries]]
//	id = "rate-limit-reminders"
//	category = "Rate Limiting"
//	reason = "cooldowns are handled by the gateway"
//
// An entry matches an issue when every criterion it sets matches.
package allowlist

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"

	"botlint/internal/aggregate"
	"botlint/internal/issue"
)

// Entry is one suppression rule.
type Entry struct {
	ID       string `toml:"id" json:"id" yaml:"id"`
	Rule     string `toml:"rule,omitempty" json:"rule,omitempty" yaml:"rule,omitempty"`
	Category string `toml:"category,omitempty" json:"category,omitempty" yaml:"category,omitempty"`
	Line     int    `toml:"line,omitempty" json:"line,omitempty" yaml:"line,omitempty"`
	Contains string `toml:"contains,omitempty" json:"contains,omitempty" yaml:"contains,omitempty"`
	Reason   string `toml:"reason,omitempty" json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Matches reports whether e suppresses iss.
func (e Entry) Matches(iss issue.Issue) bool {
	if e.Rule != "" && e.Rule != iss.Rule {
		return false
	}
	if e.Category != "" && e.Category != iss.Category {
		return false
	}
	if e.Line > 0 && e.Line != iss.Line {
		return false
	}
	if e.Contains != "" && !strings.Contains(iss.Code, e.Contains) {
		return false
	}
	return true
}

func (e Entry) hasCriteria() bool {
	return e.Rule != "" || e.Category != "" || e.Line > 0 || e.Contains != ""
}

// List is a set of entries.
type List struct {
	Entries []Entry `toml:"entries"`
}

// Load reads the allowlist at path. A missing file is an empty list.
func Load(path string) (*List, error) {
	var l List
	md, err := toml.DecodeFile(path, &l)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &List{}, nil
		}
		return nil, fmt.Errorf("failed to parse allowlist %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("allowlist %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("allowlist %s: %w", path, err)
	}
	return &l, nil
}

// Validate rejects entries without criteria and duplicate IDs.
func (l *List) Validate() error {
	seen := make(map[string]bool, len(l.Entries))
	for i, e := range l.Entries {
		if e.ID == "" {
			return fmt.Errorf("entry %d has no id", i+1)
		}
		if seen[e.ID] {
			return fmt.Errorf("duplicate entry id %q", e.ID)
		}
		seen[e.ID] = true
		if !e.hasCriteria() {
			return fmt.Errorf("entry %q matches every issue; set rule, category, line or contains", e.ID)
		}
	}
	return nil
}

// Add appends e, assigning an ID when it has none, and returns the stored entry.
func (l *List) Add(e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()[:8]
	}
	next := &List{Entries: append(append([]Entry(nil), l.Entries...), e)}
	if err := next.Validate(); err != nil {
		return Entry{}, err
	}
	l.Entries = next.Entries
	return e, nil
}

// Remove deletes the entry with the given ID.
func (l *List) Remove(id string) error {
	for i, e := range l.Entries {
		if e.ID == id {
			l.Entries = append(l.Entries[:i], l.Entries[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("allowlist entry %q not found", id)
}

// Save writes the list to path, creating parent directories.
func (l *List) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create allowlist directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create allowlist: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(l); err != nil {
		return fmt.Errorf("failed to encode allowlist: %w", err)
	}
	return nil
}

// Suppressed reports whether any entry matches iss.
func (l *List) Suppressed(iss issue.Issue) bool {
	for _, e := range l.Entries {
		if e.Matches(iss) {
			return true
		}
	}
	return false
}

// Apply returns r without the suppressed issues, re-aggregated, and the
// number of issues removed.
func (l *List) Apply(r *aggregate.Report) (*aggregate.Report, int) {
	if l == nil || len(l.Entries) == 0 {
		return r, 0
	}
	kept := r.Filter(func(iss issue.Issue) bool { return !l.Suppressed(iss) })
	return kept, r.TotalIssues - kept.TotalIssues
}
