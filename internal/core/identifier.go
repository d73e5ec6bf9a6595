package core

import (
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/git-pkgs/resolve/internal/version"
)

// Identifier names a dependency together with its version constraint and the
// kinds of targets it may resolve to. It is an immutable value; build new
// variants with WithConstraint rather than mutating fields.
//
// Names are case-insensitive for identity and lookups.
type Identifier struct {
	name       string
	constraint *version.Range
	kinds      TargetKind
}

// NewIdentifier builds an identifier. constraint may be nil when the
// declaration leaves its version to central management.
func NewIdentifier(name string, constraint *version.Range, kinds TargetKind) *Identifier {
	return &Identifier{name: name, constraint: constraint, kinds: kinds}
}

// Name returns the package name.
func (id *Identifier) Name() string { return id.name }

// Constraint returns the version constraint, or nil when unspecified.
func (id *Identifier) Constraint() *version.Range { return id.constraint }

// Kinds returns the acceptable target kinds.
func (id *Identifier) Kinds() TargetKind { return id.kinds }

// WithConstraint returns an identifier with the constraint replaced.
// The receiver is returned unchanged when the new constraint is equal.
func (id *Identifier) WithConstraint(r *version.Range) *Identifier {
	if id.constraint.Equal(r) {
		return id
	}
	c := *id
	c.constraint = r
	return &c
}

// Equal reports value equality: ordinal case-insensitive name, constraint
// and kinds.
func (id *Identifier) Equal(o *Identifier) bool {
	if id == o {
		return true
	}
	if id == nil || o == nil {
		return false
	}
	return strings.EqualFold(id.name, o.name) &&
		id.constraint.Equal(o.constraint) &&
		id.kinds == o.kinds
}

// Hash returns a hash consistent with Equal: the name is case-folded and
// the constraint keys on its canonical rendering, so spellings that differ
// only in case, version coercion or build metadata hash alike.
func (id *Identifier) Hash() uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(foldName(id.name))
	_, _ = h.Write([]byte{0, byte(id.kinds), 0})
	if id.constraint != nil {
		_, _ = h.WriteString(id.constraint.Canonical())
	}
	return h.Sum64()
}

// String renders "name constraint", or just the name when the constraint
// is absent.
func (id *Identifier) String() string {
	if id.constraint == nil {
		return id.name
	}
	return id.name + " " + id.constraint.String()
}
