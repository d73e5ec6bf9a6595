package core

import (
	"encoding/binary"
	"slices"

	"github.com/cespare/xxhash/v2"

	"github.com/git-pkgs/resolve/internal/version"
)

// Declaration is one dependency edge in a project's dependency graph: an
// identifier plus the flags controlling how its assets flow, which warnings
// it suppresses, and how its version interacts with central management.
//
// Declarations are immutable values. Every With* method returns the receiver
// itself when the requested value already matches, otherwise a copy sharing
// all unrelated fields. This makes it safe to retain slices of declarations
// across graph snapshots and to share them between concurrent readers.
type Declaration struct {
	id                   *Identifier
	include              IncludeFlags
	suppress             IncludeFlags
	noWarn               []WarningCode
	autoReferenced       bool
	centrallyManaged     bool
	refKind              RefKind
	generatePathProperty bool
	aliases              string
	versionOverride      *version.Range
}

// NewDeclaration builds a declaration for id with defaults: all assets
// included, the default suppression set, no suppressed warnings, direct
// reference. Returns ErrInvalidArgument when id is nil.
func NewDeclaration(id *Identifier) (*Declaration, error) {
	if id == nil {
		return nil, invalidArg("identifier")
	}
	return &Declaration{
		id:       id,
		include:  IncludeAll,
		suppress: DefaultSuppress,
		refKind:  RefDirect,
	}, nil
}

// Identifier returns the dependency identifier. Never nil.
func (d *Declaration) Identifier() *Identifier { return d.id }

// Name returns the dependency name, derived from the identifier.
func (d *Declaration) Name() string { return d.id.Name() }

// Include returns the included asset groups.
func (d *Declaration) Include() IncludeFlags { return d.include }

// Suppress returns the asset groups withheld from parent projects.
func (d *Declaration) Suppress() IncludeFlags { return d.suppress }

// NoWarn returns the suppressed warning codes. The returned slice is a
// read-only view; callers must not modify it.
func (d *Declaration) NoWarn() []WarningCode { return d.noWarn }

// AutoReferenced reports whether the declaration was injected by tooling
// rather than authored in the project.
func (d *Declaration) AutoReferenced() bool { return d.autoReferenced }

// CentrallyManaged reports whether the version was assigned (or was
// eligible to be assigned) from the central manifest.
func (d *Declaration) CentrallyManaged() bool { return d.centrallyManaged }

// RefKind reports whether the declaration is direct or transitive.
func (d *Declaration) RefKind() RefKind { return d.refKind }

// GeneratePathProperty reports whether restore emits a package-path build
// property for this dependency.
func (d *Declaration) GeneratePathProperty() bool { return d.generatePathProperty }

// Aliases returns the compiler alias string, or "" when unset.
func (d *Declaration) Aliases() string { return d.aliases }

// VersionOverride returns the per-declaration override range, or nil.
// When present it wins over any central manifest entry.
func (d *Declaration) VersionOverride() *version.Range { return d.versionOverride }

// WithIdentifier returns a declaration with the identifier replaced.
// id must be non-nil; passing the current identifier (by pointer or by
// value) returns the receiver unchanged.
func (d *Declaration) WithIdentifier(id *Identifier) *Declaration {
	if d.id == id || d.id.Equal(id) {
		return d
	}
	c := *d
	c.id = id
	return &c
}

// WithInclude returns a declaration with the included asset groups replaced.
func (d *Declaration) WithInclude(flags IncludeFlags) *Declaration {
	if d.include == flags {
		return d
	}
	c := *d
	c.include = flags
	return &c
}

// WithSuppress returns a declaration with the suppression set replaced.
func (d *Declaration) WithSuppress(flags IncludeFlags) *Declaration {
	if d.suppress == flags {
		return d
	}
	c := *d
	c.suppress = flags
	return &c
}

// WithNoWarn returns a declaration with the suppressed warning set replaced.
// Codes compare as an unordered multiset, so reordering the same codes is
// a no-op. The input slice is copied.
func (d *Declaration) WithNoWarn(codes []WarningCode) *Declaration {
	if sameWarningCodes(d.noWarn, codes) {
		return d
	}
	c := *d
	c.noWarn = slices.Clone(codes)
	return &c
}

// WithAutoReferenced returns a declaration with the auto-referenced flag
// replaced.
func (d *Declaration) WithAutoReferenced(auto bool) *Declaration {
	if d.autoReferenced == auto {
		return d
	}
	c := *d
	c.autoReferenced = auto
	return &c
}

// WithCentrallyManaged returns a declaration with the centrally-managed
// flag replaced.
func (d *Declaration) WithCentrallyManaged(managed bool) *Declaration {
	if d.centrallyManaged == managed {
		return d
	}
	c := *d
	c.centrallyManaged = managed
	return &c
}

// WithRefKind returns a declaration with the reference kind replaced.
func (d *Declaration) WithRefKind(kind RefKind) *Declaration {
	if d.refKind == kind {
		return d
	}
	c := *d
	c.refKind = kind
	return &c
}

// WithGeneratePathProperty returns a declaration with the path-property
// flag replaced.
func (d *Declaration) WithGeneratePathProperty(generate bool) *Declaration {
	if d.generatePathProperty == generate {
		return d
	}
	c := *d
	c.generatePathProperty = generate
	return &c
}

// WithAliases returns a declaration with the alias string replaced.
func (d *Declaration) WithAliases(aliases string) *Declaration {
	if d.aliases == aliases {
		return d
	}
	c := *d
	c.aliases = aliases
	return &c
}

// WithVersionOverride returns a declaration with the override replaced.
func (d *Declaration) WithVersionOverride(r *version.Range) *Declaration {
	if d.versionOverride.Equal(r) {
		return d
	}
	c := *d
	c.versionOverride = r
	return &c
}

// Equal reports value equality across every field. NoWarn compares as an
// unordered multiset. Two distinct declarations with equal field values are
// interchangeable.
func (d *Declaration) Equal(o *Declaration) bool {
	if d == o {
		return true
	}
	if d == nil || o == nil {
		return false
	}
	return d.id.Equal(o.id) &&
		d.include == o.include &&
		d.suppress == o.suppress &&
		sameWarningCodes(d.noWarn, o.noWarn) &&
		d.autoReferenced == o.autoReferenced &&
		d.centrallyManaged == o.centrallyManaged &&
		d.refKind == o.refKind &&
		d.generatePathProperty == o.generatePathProperty &&
		d.aliases == o.aliases &&
		d.versionOverride.Equal(o.versionOverride)
}

// Hash returns a hash consistent with Equal, suitable for map keys and for
// diffing two resolution passes.
func (d *Declaration) Hash() uint64 {
	h := xxhash.New()
	writeUint64(h, d.id.Hash())

	var buf [8]byte
	binary.LittleEndian.PutUint16(buf[:2], uint16(d.include))
	binary.LittleEndian.PutUint16(buf[2:4], uint16(d.suppress))
	buf[4] = boolByte(d.autoReferenced)
	buf[5] = boolByte(d.centrallyManaged)
	buf[6] = byte(d.refKind)
	buf[7] = boolByte(d.generatePathProperty)
	_, _ = h.Write(buf[:])

	// Order-independent combine so that permuted NoWarn sets hash alike.
	var codes uint64
	for _, code := range d.noWarn {
		codes += xxhash.Sum64String(string(code))
	}
	writeUint64(h, codes)

	_, _ = h.WriteString(d.aliases)
	if d.versionOverride != nil {
		_, _ = h.WriteString(d.versionOverride.Canonical())
	}
	return h.Sum64()
}

// DisplayString renders "identifier include-flags" for diagnostics,
// e.g. "serilog [3.1.1, ) all".
func (d *Declaration) DisplayString() string {
	return d.id.String() + " " + d.include.String()
}

func sameWarningCodes(a, b []WarningCode) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	counts := make(map[WarningCode]int, len(a))
	for _, code := range a {
		counts[code]++
	}
	for _, code := range b {
		counts[code]--
		if counts[code] < 0 {
			return false
		}
	}
	return true
}

func writeUint64(h *xxhash.Digest, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, _ = h.Write(buf[:])
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
