// Package catalog holds the risk catalog consumed by the scoring engine: the
// entry schema, the immutable Catalog value, load-time validation and the
// loaders for YAML/JSON documents, files, and the embedded default catalog.
package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/turtacn/LabelScan-Intelligence/pkg/errors"
)

// Catalog is an immutable, versioned, ordered list of entries.  It is built
// once and shared read-only by concurrent scans.
type Catalog struct {
	version     string
	fingerprint string
	entries     []Entry
}

// New builds a Catalog from entries.  Entries are deep-copied.  An empty
// version is replaced by a content fingerprint.
func New(version string, entries []Entry) *Catalog {
	copied := make([]Entry, len(entries))
	for i := range entries {
		copied[i] = entries[i].clone()
	}
	fp := fingerprintOf(copied)
	if version == "" {
		version = fp[:12]
	}
	return &Catalog{version: version, fingerprint: fp, entries: copied}
}

// Version identifies the catalog revision.
func (c *Catalog) Version() string { return c.version }

// Fingerprint is a SHA-256 of the entry content.  Caches key on it so that a
// reloaded catalog with identical content keeps its cached results.
func (c *Catalog) Fingerprint() string { return c.fingerprint }

// Len returns the number of entries.
func (c *Catalog) Len() int { return len(c.entries) }

// Entry returns a pointer to the i-th entry.  Callers must not mutate it.
func (c *Catalog) Entry(i int) *Entry { return &c.entries[i] }

// Entries returns a copy of the entry list.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	for i := range c.entries {
		out[i] = c.entries[i].clone()
	}
	return out
}

// Categories returns the distinct category labels in first-seen order.
func (c *Catalog) Categories() []string {
	seen := make(map[string]struct{})
	var out []string
	for i := range c.entries {
		cat := c.entries[i].Category
		if _, ok := seen[cat]; ok {
			continue
		}
		seen[cat] = struct{}{}
		out = append(out, cat)
	}
	return out
}

func fingerprintOf(entries []Entry) string {
	data, err := json.Marshal(entries)
	if err != nil {
		// Entries only hold strings, floats and slices; Marshal cannot fail.
		panic(fmt.Sprintf("catalog: fingerprint: %v", err))
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Severity of a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one validation finding for an entry.
type Issue struct {
	Index    int      `json:"index"`
	Entry    string   `json:"entry"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("entry %d (%s): %s: %s", i.Index, i.Entry, i.Severity, i.Message)
}

// Validate inspects every entry.  Dead entries (no names and no code) are
// reported as warnings because they degrade to never matching; malformed
// configuration is reported as errors.
func (c *Catalog) Validate() []Issue {
	var issues []Issue
	add := func(idx int, e *Entry, sev Severity, format string, args ...interface{}) {
		issues = append(issues, Issue{
			Index:    idx,
			Entry:    e.PrimaryName(),
			Severity: sev,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	for i := range c.entries {
		e := &c.entries[i]
		if len(nonBlank(e.Names)) == 0 && e.ENumber == "" {
			add(i, e, SeverityWarning, "no names and no e_number; entry can never match")
		}
		if !e.Tier.Valid() {
			add(i, e, SeverityError, "unknown tier %q", e.Tier)
		}
		if e.Penalty > 0 {
			add(i, e, SeverityError, "penalty %v must be <= 0", e.Penalty)
		}
		if !e.MatchType.Valid() {
			add(i, e, SeverityError, "unknown match_type %q", e.MatchType)
		}
		if e.Category == "" {
			add(i, e, SeverityWarning, "empty category")
		}
		if pm := e.Position(); pm.Top3 < 0 || pm.Top6 < 0 || pm.Rest < 0 {
			add(i, e, SeverityError, "position_multiplier factors must be >= 0")
		}
		if pm := e.Percent(); pm.GT10 < 0 || pm.From3 < 0 || pm.Below3 < 0 {
			add(i, e, SeverityError, "percent_multiplier factors must be >= 0")
		}
	}
	return issues
}

// HasErrors reports whether issues contains at least one error.
func HasErrors(issues []Issue) bool {
	for _, is := range issues {
		if is.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidationError converts error-level issues into a single AppError, or nil.
func ValidationError(issues []Issue) error {
	var first *Issue
	count := 0
	for i := range issues {
		if issues[i].Severity != SeverityError {
			continue
		}
		if first == nil {
			first = &issues[i]
		}
		count++
	}
	if first == nil {
		return nil
	}
	return errors.Newf(errors.ErrCodeCatalogInvalid, "catalog has %d invalid entries", count).
		WithDetail(first.String())
}

func nonBlank(names []string) []string {
	var out []string
	for _, n := range names {
		if strings.TrimSpace(n) != "" {
			out = append(out, n)
		}
	}
	return out
}

//Personal.AI order the ending
