package core

import (
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/git-pkgs/resolve/internal/version"
)

// CentralVersion is one entry of a central version manifest: a package name
// pinned to a version range for the whole project.
type CentralVersion struct {
	Name  string
	Range *version.Range
}

// Equal reports value equality: case-insensitive name and equal range.
func (c CentralVersion) Equal(o CentralVersion) bool {
	return strings.EqualFold(c.Name, o.Name) && c.Range.Equal(o.Range)
}

// Hash returns a hash consistent with Equal.
func (c CentralVersion) Hash() uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(foldName(c.Name))
	_, _ = h.WriteString("\x00")
	if c.Range != nil {
		_, _ = h.WriteString(c.Range.Canonical())
	}
	return h.Sum64()
}

// CentralVersionMap holds central manifest entries keyed by package name.
// Keys are normalized on insert and lookup, so lookups are case-insensitive
// everywhere rather than at individual call sites. Setting an existing name
// replaces the entry (last write wins).
type CentralVersionMap struct {
	entries map[string]CentralVersion
}

// NewCentralVersionMap returns an empty map.
func NewCentralVersionMap() *CentralVersionMap {
	return &CentralVersionMap{entries: make(map[string]CentralVersion)}
}

// Set inserts or replaces the entry for cv.Name.
func (m *CentralVersionMap) Set(cv CentralVersion) {
	m.entries[foldName(cv.Name)] = cv
}

// Get looks up an entry by name, case-insensitively.
func (m *CentralVersionMap) Get(name string) (CentralVersion, bool) {
	cv, ok := m.entries[foldName(name)]
	return cv, ok
}

// Len returns the number of entries.
func (m *CentralVersionMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Clone returns an independent copy of the map. Cloning a nil map yields
// an empty one.
func (m *CentralVersionMap) Clone() *CentralVersionMap {
	if m == nil {
		return NewCentralVersionMap()
	}
	c := &CentralVersionMap{entries: make(map[string]CentralVersion, len(m.entries))}
	for k, v := range m.entries {
		c.entries[k] = v
	}
	return c
}

// Union inserts every entry of o into m, last write wins per name.
// A nil o is a no-op.
func (m *CentralVersionMap) Union(o *CentralVersionMap) {
	if o == nil {
		return
	}
	for k, v := range o.entries {
		m.entries[k] = v
	}
}

// Equal reports whether both maps hold equal entries under the same
// normalized names. Two nil maps are equal; a nil map equals an empty one.
func (m *CentralVersionMap) Equal(o *CentralVersionMap) bool {
	if m == o {
		return true
	}
	if m.Len() != o.Len() {
		return false
	}
	if m == nil || o == nil {
		return true // both empty
	}
	for k, v := range m.entries {
		ov, ok := o.entries[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Values returns the entries sorted by normalized name, for deterministic
// iteration.
func (m *CentralVersionMap) Values() []CentralVersion {
	if m == nil {
		return nil
	}
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	values := make([]CentralVersion, len(keys))
	for i, k := range keys {
		values[i] = m.entries[k]
	}
	return values
}

// Hash returns an order-independent hash of the entries.
func (m *CentralVersionMap) Hash() uint64 {
	if m == nil {
		return 0
	}
	var sum uint64
	for _, v := range m.entries {
		sum += v.Hash()
	}
	return sum
}

// ApplyCentralVersions merges centrally declared versions into declarations
// that omit an explicit one. The input is never mutated; the output has the
// same length and order, with untouched declarations carried over as-is.
//
// Per declaration:
//   - auto-referenced declarations and declarations that already carry a
//     version constraint are left alone;
//   - a version override replaces the constraint and wins over any central
//     entry, without marking the declaration centrally managed;
//   - otherwise the central map is consulted by name; on a hit the entry's
//     range becomes the constraint, and in this branch the declaration is
//     marked centrally managed whether or not an entry was found.
//
// Marking on a lookup miss is deliberate: it records that the declaration
// was eligible for central management. Re-applying the merge to its own
// output is a no-op, since resolved declarations carry a constraint.
//
// Returns ErrInvalidArgument when decls or central is nil. An empty central
// map returns the input slice unchanged.
func ApplyCentralVersions(decls []*Declaration, central *CentralVersionMap) ([]*Declaration, error) {
	if decls == nil {
		return nil, invalidArg("declarations")
	}
	if central == nil {
		return nil, invalidArg("centralVersions")
	}
	if central.Len() == 0 {
		return decls, nil
	}

	out := make([]*Declaration, len(decls))
	for i, d := range decls {
		out[i] = applyCentralVersion(d, central)
	}
	return out, nil
}

func applyCentralVersion(d *Declaration, central *CentralVersionMap) *Declaration {
	if d.autoReferenced || d.id.Constraint() != nil {
		return d
	}
	if d.versionOverride != nil {
		return d.WithIdentifier(d.id.WithConstraint(d.versionOverride))
	}
	if cv, ok := central.Get(d.Name()); ok {
		d = d.WithIdentifier(d.id.WithConstraint(cv.Range))
	}
	return d.WithCentrallyManaged(true)
}
