// Package resolve models dependency declarations for a build-time package
// dependency resolver, and the rule for merging centrally declared package
// versions into declarations that omit an explicit one.
//
// Declarations, framework sets and version ranges are immutable values:
// every mutator returns the receiver unchanged when the requested value
// already matches, otherwise a copy sharing all unrelated fields. This makes
// them safe to share across graph snapshots and concurrent resolution passes
// without synchronization.
//
// Basic usage:
//
//	import "github.com/git-pkgs/resolve"
//
//	id := resolve.NewIdentifier("serilog", nil, resolve.KindPackage)
//	decl, err := resolve.NewDeclaration(id)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	central := resolve.NewCentralVersionMap()
//	central.Set(resolve.CentralVersion{Name: "Serilog", Range: resolve.MustParseRange("3.1.1")})
//
//	merged, err := resolve.ApplyCentralVersions([]*resolve.Declaration{decl}, central)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(merged[0].DisplayString()) // serilog [3.1.1, ) all
//
// Central version manifests can be loaded from TOML documents or remote
// sources with the manifest subpackage.
package resolve

import (
	"github.com/git-pkgs/resolve/internal/core"
	"github.com/git-pkgs/resolve/internal/version"
)

// Re-export types from internal/core
type (
	// Identifier names a dependency with its version constraint and
	// acceptable target kinds.
	Identifier = core.Identifier

	// Declaration is one dependency edge in the graph.
	Declaration = core.Declaration

	// CentralVersion is one entry of a central version manifest.
	CentralVersion = core.CentralVersion

	// CentralVersionMap is a case-insensitive name-keyed manifest map.
	CentralVersionMap = core.CentralVersionMap

	// FrameworkSet aggregates the declarations for one target framework.
	FrameworkSet = core.FrameworkSet

	// Framework identifies a target framework, e.g. "net8.0".
	Framework = core.Framework

	// DownloadDependency is a download-only dependency of a framework set.
	DownloadDependency = core.DownloadDependency

	// FrameworkReference is a shared-framework reference of a framework set.
	FrameworkReference = core.FrameworkReference

	// IncludeFlags selects asset groups flowing from a dependency.
	IncludeFlags = core.IncludeFlags

	// TargetKind restricts what an identifier may resolve to.
	TargetKind = core.TargetKind

	// RefKind distinguishes direct from transitive declarations.
	RefKind = core.RefKind

	// WarningCode identifies a suppressible resolver diagnostic.
	WarningCode = core.WarningCode
)

// VersionRange is an interval version range such as "[1.0.0, )".
type VersionRange = version.Range

// Re-export constants
const (
	IncludeNone            = core.IncludeNone
	IncludeCompile         = core.IncludeCompile
	IncludeRuntime         = core.IncludeRuntime
	IncludeContentFiles    = core.IncludeContentFiles
	IncludeBuild           = core.IncludeBuild
	IncludeNative          = core.IncludeNative
	IncludeAnalyzers       = core.IncludeAnalyzers
	IncludeBuildTransitive = core.IncludeBuildTransitive
	IncludeAll             = core.IncludeAll
	DefaultSuppress        = core.DefaultSuppress

	KindNone            = core.KindNone
	KindPackage         = core.KindPackage
	KindProject         = core.KindProject
	KindExternalProject = core.KindExternalProject
	KindAssembly        = core.KindAssembly
	KindReference       = core.KindReference
	KindAll             = core.KindAll

	RefDirect     = core.RefDirect
	RefTransitive = core.RefTransitive
)

// Re-export errors
var (
	// ErrInvalidArgument is returned for a missing identifier at
	// construction or invalid arguments to ApplyCentralVersions.
	ErrInvalidArgument = core.ErrInvalidArgument

	// ErrMalformedRange is returned by ParseRange for invalid input.
	ErrMalformedRange = version.ErrMalformedRange
)

// NewIdentifier builds a dependency identifier. constraint may be nil when
// the version is left to central management.
func NewIdentifier(name string, constraint *VersionRange, kinds TargetKind) *Identifier {
	return core.NewIdentifier(name, constraint, kinds)
}

// NewDeclaration builds a declaration for id with default flags.
// Returns ErrInvalidArgument when id is nil.
func NewDeclaration(id *Identifier) (*Declaration, error) {
	return core.NewDeclaration(id)
}

// NewCentralVersionMap returns an empty central version map.
func NewCentralVersionMap() *CentralVersionMap {
	return core.NewCentralVersionMap()
}

// NewFrameworkSet returns an empty framework dependency set.
func NewFrameworkSet() *FrameworkSet {
	return core.NewFrameworkSet()
}

// ApplyCentralVersions merges centrally declared versions into declarations
// that omit an explicit one. See the internal/core documentation for the
// exact per-declaration rules.
func ApplyCentralVersions(decls []*Declaration, central *CentralVersionMap) ([]*Declaration, error) {
	return core.ApplyCentralVersions(decls, central)
}

// ParseRange parses a version range expression, accepting bare versions
// ("1.0.0") and interval notation ("[1.0.0, 2.0.0)").
func ParseRange(s string) (*VersionRange, error) {
	return version.Parse(s)
}

// MustParseRange is ParseRange that panics on error.
func MustParseRange(s string) *VersionRange {
	return version.MustParse(s)
}

// ParseIncludeFlags parses a comma-separated include flag list such as
// "compile,runtime" or "all".
func ParseIncludeFlags(s string) (IncludeFlags, error) {
	return core.ParseIncludeFlags(s)
}
