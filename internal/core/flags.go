package core

import (
	"fmt"
	"strings"
)

// IncludeFlags selects which asset groups of a package flow to the consuming
// project. Declarations use one set to include assets and a second set to
// suppress assets from flowing to parent projects.
type IncludeFlags uint16

const (
	IncludeCompile IncludeFlags = 1 << iota
	IncludeRuntime
	IncludeContentFiles
	IncludeBuild
	IncludeNative
	IncludeAnalyzers
	IncludeBuildTransitive
)

const (
	// IncludeNone selects no asset groups.
	IncludeNone IncludeFlags = 0

	// IncludeAll selects every asset group.
	IncludeAll = IncludeCompile | IncludeRuntime | IncludeContentFiles |
		IncludeBuild | IncludeNative | IncludeAnalyzers | IncludeBuildTransitive

	// DefaultSuppress is the suppression set applied to new declarations:
	// analyzers do not flow to parent projects unless asked for.
	DefaultSuppress = IncludeAnalyzers
)

var includeFlagNames = []struct {
	flag IncludeFlags
	name string
}{
	{IncludeCompile, "compile"},
	{IncludeRuntime, "runtime"},
	{IncludeContentFiles, "contentfiles"},
	{IncludeBuild, "build"},
	{IncludeNative, "native"},
	{IncludeAnalyzers, "analyzers"},
	{IncludeBuildTransitive, "buildtransitive"},
}

// String renders the flag set as a comma-separated list, or "all"/"none"
// for the two common cases.
func (f IncludeFlags) String() string {
	switch f {
	case IncludeNone:
		return "none"
	case IncludeAll:
		return "all"
	}
	parts := make([]string, 0, len(includeFlagNames))
	for _, e := range includeFlagNames {
		if f&e.flag != 0 {
			parts = append(parts, e.name)
		}
	}
	return strings.Join(parts, ",")
}

// Has reports whether every flag in q is present in f.
func (f IncludeFlags) Has(q IncludeFlags) bool { return f&q == q }

// ParseIncludeFlags parses a comma-separated flag list as produced by
// IncludeFlags.String. Names are case-insensitive and surrounding
// whitespace is ignored.
func ParseIncludeFlags(s string) (IncludeFlags, error) {
	var f IncludeFlags
	for _, part := range strings.Split(s, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		switch name {
		case "":
			continue
		case "none":
			// no bits
		case "all":
			f |= IncludeAll
		default:
			matched := false
			for _, e := range includeFlagNames {
				if e.name == name {
					f |= e.flag
					matched = true
					break
				}
			}
			if !matched {
				return IncludeNone, fmt.Errorf("%w: unknown include flag %q", ErrInvalidArgument, name)
			}
		}
	}
	return f, nil
}

// TargetKind restricts what a dependency identifier may resolve to.
type TargetKind uint8

const (
	KindPackage TargetKind = 1 << iota
	KindProject
	KindExternalProject
	KindAssembly
	KindReference
)

const (
	KindNone TargetKind = 0
	KindAll             = KindPackage | KindProject | KindExternalProject | KindAssembly | KindReference
)

var targetKindNames = []struct {
	kind TargetKind
	name string
}{
	{KindPackage, "package"},
	{KindProject, "project"},
	{KindExternalProject, "externalproject"},
	{KindAssembly, "assembly"},
	{KindReference, "reference"},
}

// String renders the kind set as a comma-separated list.
func (k TargetKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindAll:
		return "all"
	}
	parts := make([]string, 0, len(targetKindNames))
	for _, e := range targetKindNames {
		if k&e.kind != 0 {
			parts = append(parts, e.name)
		}
	}
	return strings.Join(parts, ",")
}

// RefKind distinguishes declarations authored against the project from
// declarations lifted out of the transitive closure.
type RefKind uint8

const (
	RefDirect RefKind = iota
	RefTransitive
)

// String returns "direct" or "transitive".
func (k RefKind) String() string {
	if k == RefTransitive {
		return "transitive"
	}
	return "direct"
}

// WarningCode identifies a resolver diagnostic that a declaration may
// suppress, e.g. "PR1603" for a version bump during resolution.
type WarningCode string
