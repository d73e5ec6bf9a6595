// Package version implements the interval version ranges carried by
// dependency declarations.
//
// A range is written in interval notation: "[1.0.0, )" accepts 1.0.0 and
// anything newer, "(1.0.0, 2.0.0]" excludes the lower bound, and "[1.2.3]"
// pins an exact version. A bare version string is shorthand for an inclusive
// lower bound with no upper bound: "1.0.0" parses as "[1.0.0, )".
package version

import (
	"errors"
	"fmt"
	"strings"

	semver "github.com/Masterminds/semver/v3"
)

// ErrMalformedRange is returned by Parse for input that is not a valid
// bare version or interval expression.
var ErrMalformedRange = errors.New("malformed version range")

// Range is an immutable version range with optional lower and upper bounds.
// A nil bound means unbounded on that side. Ranges are compared by value;
// use Equal rather than ==.
type Range struct {
	min        *semver.Version
	max        *semver.Version
	includeMin bool
	includeMax bool
}

// NewRange builds a range from explicit bounds. Either bound may be nil.
// Inclusivity flags for absent bounds are normalized to false so that
// equal ranges always have identical field values.
func NewRange(min, max *semver.Version, includeMin, includeMax bool) *Range {
	if min == nil {
		includeMin = false
	}
	if max == nil {
		includeMax = false
	}
	return &Range{min: min, max: max, includeMin: includeMin, includeMax: includeMax}
}

// Exact returns the range accepting only v.
func Exact(v *semver.Version) *Range {
	return &Range{min: v, max: v, includeMin: true, includeMax: true}
}

// AtLeast returns the range accepting v and anything newer.
func AtLeast(v *semver.Version) *Range {
	return &Range{min: v, includeMin: true}
}

// Parse parses a range expression.
//
// Accepted forms:
//
//	"1.0.0"            -> [1.0.0, )
//	"[1.0.0, )"        -> [1.0.0, )
//	"(1.0.0, 2.0.0]"   -> (1.0.0, 2.0.0]
//	"[1.2.3]"          -> exactly 1.2.3
//	"(, 2.0.0)"        -> anything below 2.0.0
func Parse(s string) (*Range, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty input", ErrMalformedRange)
	}

	if s[0] != '[' && s[0] != '(' {
		v, err := semver.NewVersion(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrMalformedRange, s, err)
		}
		return AtLeast(v), nil
	}

	last := s[len(s)-1]
	if last != ']' && last != ')' {
		return nil, fmt.Errorf("%w: %q: missing closing bracket", ErrMalformedRange, s)
	}
	includeMin := s[0] == '['
	includeMax := last == ']'
	inner := s[1 : len(s)-1]

	parts := strings.Split(inner, ",")
	switch len(parts) {
	case 1:
		// Exact pin: only valid with inclusive brackets on both sides.
		if !includeMin || !includeMax {
			return nil, fmt.Errorf("%w: %q: exact version requires inclusive brackets", ErrMalformedRange, s)
		}
		v, err := parseBound(parts[0])
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrMalformedRange, s, err)
		}
		if v == nil {
			return nil, fmt.Errorf("%w: %q: empty exact version", ErrMalformedRange, s)
		}
		return Exact(v), nil
	case 2:
		min, err := parseBound(parts[0])
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrMalformedRange, s, err)
		}
		max, err := parseBound(parts[1])
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrMalformedRange, s, err)
		}
		if min == nil && max == nil {
			return nil, fmt.Errorf("%w: %q: at least one bound required", ErrMalformedRange, s)
		}
		if min != nil && max != nil && min.GreaterThan(max) {
			return nil, fmt.Errorf("%w: %q: lower bound above upper bound", ErrMalformedRange, s)
		}
		return NewRange(min, max, includeMin, includeMax), nil
	default:
		return nil, fmt.Errorf("%w: %q: too many commas", ErrMalformedRange, s)
	}
}

// MustParse is Parse that panics on error. Intended for constants and tests.
func MustParse(s string) *Range {
	r, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return r
}

func parseBound(s string) (*semver.Version, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	return semver.NewVersion(s)
}

// Min returns the lower bound, or nil when unbounded below.
func (r *Range) Min() *semver.Version { return r.min }

// Max returns the upper bound, or nil when unbounded above.
func (r *Range) Max() *semver.Version { return r.max }

// IncludeMin reports whether the lower bound itself is accepted.
func (r *Range) IncludeMin() bool { return r.includeMin }

// IncludeMax reports whether the upper bound itself is accepted.
func (r *Range) IncludeMax() bool { return r.includeMax }

// IsExact reports whether the range pins a single version.
func (r *Range) IsExact() bool {
	return r.min != nil && r.max != nil && r.includeMin && r.includeMax && r.min.Equal(r.max)
}

// Satisfies reports whether v falls inside the range.
func (r *Range) Satisfies(v *semver.Version) bool {
	if v == nil {
		return false
	}
	if r.min != nil {
		cmp := v.Compare(r.min)
		if cmp < 0 || (cmp == 0 && !r.includeMin) {
			return false
		}
	}
	if r.max != nil {
		cmp := v.Compare(r.max)
		if cmp > 0 || (cmp == 0 && !r.includeMax) {
			return false
		}
	}
	return true
}

// Equal reports whether two ranges accept exactly the same bounds.
// Both operands may be nil; two nil ranges are equal.
func (r *Range) Equal(o *Range) bool {
	if r == o {
		return true
	}
	if r == nil || o == nil {
		return false
	}
	return versionsEqual(r.min, o.min) &&
		versionsEqual(r.max, o.max) &&
		r.includeMin == o.includeMin &&
		r.includeMax == o.includeMax
}

func versionsEqual(a, b *semver.Version) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(b)
}

// String renders the range in normalized interval notation, e.g. "[1.0.0, )".
// An exact pin renders as "[1.2.3]".
func (r *Range) String() string {
	if r == nil {
		return ""
	}
	if r.IsExact() {
		return "[" + r.min.Original() + "]"
	}
	var b strings.Builder
	if r.includeMin {
		b.WriteByte('[')
	} else {
		b.WriteByte('(')
	}
	if r.min != nil {
		b.WriteString(r.min.Original())
	}
	b.WriteString(", ")
	if r.max != nil {
		b.WriteString(r.max.Original())
	}
	if r.includeMax {
		b.WriteByte(']')
	} else {
		b.WriteByte(')')
	}
	return b.String()
}

// Canonical renders the range like String but with coerced bounds, so that
// equal ranges render identically: a partial version prints all three
// numbers ("1.0" as "1.0.0") and build metadata is dropped. Prerelease
// identifiers order versions and are kept. Hash implementations key on this
// form; String keeps the author's spelling for display.
func (r *Range) Canonical() string {
	if r == nil {
		return ""
	}
	if r.IsExact() {
		return "[" + canonicalVersion(r.min) + "]"
	}
	var b strings.Builder
	if r.includeMin {
		b.WriteByte('[')
	} else {
		b.WriteByte('(')
	}
	if r.min != nil {
		b.WriteString(canonicalVersion(r.min))
	}
	b.WriteString(", ")
	if r.max != nil {
		b.WriteString(canonicalVersion(r.max))
	}
	if r.includeMax {
		b.WriteByte(']')
	} else {
		b.WriteByte(')')
	}
	return b.String()
}

func canonicalVersion(v *semver.Version) string {
	s := fmt.Sprintf("%d.%d.%d", v.Major(), v.Minor(), v.Patch())
	if p := v.Prerelease(); p != "" {
		s += "-" + p
	}
	return s
}
