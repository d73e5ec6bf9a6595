package core

import (
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/git-pkgs/resolve/internal/version"
)

// Framework identifies a target framework, e.g. "net8.0". Framework names
// are case-insensitive.
type Framework string

// Equal reports case-insensitive equality.
func (f Framework) Equal(o Framework) bool {
	return strings.EqualFold(string(f), string(o))
}

// DownloadDependency is a package pulled for its assets only, without
// joining the dependency graph.
type DownloadDependency struct {
	Name  string
	Range *version.Range
}

// Equal reports value equality: case-insensitive name and equal range.
func (d DownloadDependency) Equal(o DownloadDependency) bool {
	return strings.EqualFold(d.Name, o.Name) && d.Range.Equal(o.Range)
}

// Hash returns a hash consistent with Equal.
func (d DownloadDependency) Hash() uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(foldName(d.Name))
	_, _ = h.WriteString("\x00")
	if d.Range != nil {
		_, _ = h.WriteString(d.Range.Canonical())
	}
	return h.Sum64()
}

// FrameworkReference names a shared framework the project references,
// e.g. "Microsoft.AspNetCore.App". Names are case-insensitive.
type FrameworkReference struct {
	Name string
}

// Equal reports case-insensitive name equality.
func (r FrameworkReference) Equal(o FrameworkReference) bool {
	return strings.EqualFold(r.Name, o.Name)
}

// Hash returns a hash consistent with Equal.
func (r FrameworkReference) Hash() uint64 {
	return xxhash.Sum64String(foldName(r.Name))
}

// FrameworkSet aggregates everything declared for one target framework:
// its dependencies, download-only dependencies, framework references, the
// fallback import chain, and the central versions resolved for it.
//
// A set is built incrementally by a loader through With*/Add* calls and is
// treated as immutable once handed to the resolver. Every mutator follows
// the same contract as Declaration: the receiver is returned unchanged when
// the requested value already matches, otherwise a copy with that one field
// replaced.
type FrameworkSet struct {
	targetAlias         string
	framework           Framework
	dependencies        []*Declaration
	imports             []Framework
	assetTargetFallback bool
	warn                bool
	downloads           []DownloadDependency
	centralVersions     *CentralVersionMap
	frameworkReferences []FrameworkReference
	runtimeGraphPath    string
}

// NewFrameworkSet returns an empty set.
func NewFrameworkSet() *FrameworkSet {
	return &FrameworkSet{centralVersions: NewCentralVersionMap()}
}

// TargetAlias returns the project-file alias for this framework.
func (s *FrameworkSet) TargetAlias() string { return s.targetAlias }

// Framework returns the target framework identifier.
func (s *FrameworkSet) Framework() Framework { return s.framework }

// Dependencies returns the declarations in original order. Read-only view.
func (s *FrameworkSet) Dependencies() []*Declaration { return s.dependencies }

// Imports returns the framework fallback chain in order. Read-only view.
func (s *FrameworkSet) Imports() []Framework { return s.imports }

// AssetTargetFallback reports whether asset-target-fallback semantics apply
// instead of the import chain.
func (s *FrameworkSet) AssetTargetFallback() bool { return s.assetTargetFallback }

// Warn reports whether using a fallback import raises a warning.
func (s *FrameworkSet) Warn() bool { return s.warn }

// Downloads returns the download-only dependencies. Read-only view.
func (s *FrameworkSet) Downloads() []DownloadDependency { return s.downloads }

// CentralVersions returns the resolved central version map. Callers must
// treat it as read-only; use AddCentralVersions to extend it.
func (s *FrameworkSet) CentralVersions() *CentralVersionMap { return s.centralVersions }

// FrameworkReferences returns the framework references. Read-only view.
func (s *FrameworkSet) FrameworkReferences() []FrameworkReference { return s.frameworkReferences }

// RuntimeGraphPath returns the path to the runtime identifier graph file,
// or "" when unset.
func (s *FrameworkSet) RuntimeGraphPath() string { return s.runtimeGraphPath }

// WithTargetAlias returns a set with the alias replaced.
func (s *FrameworkSet) WithTargetAlias(alias string) *FrameworkSet {
	if s.targetAlias == alias {
		return s
	}
	c := *s
	c.targetAlias = alias
	return &c
}

// WithFramework returns a set with the framework identifier replaced.
func (s *FrameworkSet) WithFramework(f Framework) *FrameworkSet {
	if s.framework.Equal(f) {
		return s
	}
	c := *s
	c.framework = f
	return &c
}

// WithDependencies returns a set with the declaration slice replaced.
// The input is copied; passing a slice holding the same declarations in
// the same order is a no-op.
func (s *FrameworkSet) WithDependencies(deps []*Declaration) *FrameworkSet {
	if slices.Equal(s.dependencies, deps) {
		return s
	}
	c := *s
	c.dependencies = slices.Clone(deps)
	return &c
}

// WithImports returns a set with the fallback import chain replaced.
func (s *FrameworkSet) WithImports(imports []Framework) *FrameworkSet {
	if slices.Equal(s.imports, imports) {
		return s
	}
	c := *s
	c.imports = slices.Clone(imports)
	return &c
}

// WithAssetTargetFallback returns a set with the fallback flag replaced.
func (s *FrameworkSet) WithAssetTargetFallback(fallback bool) *FrameworkSet {
	if s.assetTargetFallback == fallback {
		return s
	}
	c := *s
	c.assetTargetFallback = fallback
	return &c
}

// WithWarn returns a set with the import-usage warning flag replaced.
func (s *FrameworkSet) WithWarn(warn bool) *FrameworkSet {
	if s.warn == warn {
		return s
	}
	c := *s
	c.warn = warn
	return &c
}

// WithDownloads returns a set with the download-only dependencies replaced.
func (s *FrameworkSet) WithDownloads(downloads []DownloadDependency) *FrameworkSet {
	if slices.EqualFunc(s.downloads, downloads, DownloadDependency.Equal) {
		return s
	}
	c := *s
	c.downloads = slices.Clone(downloads)
	return &c
}

// WithFrameworkReferences returns a set with the framework references
// replaced.
func (s *FrameworkSet) WithFrameworkReferences(refs []FrameworkReference) *FrameworkSet {
	if slices.EqualFunc(s.frameworkReferences, refs, FrameworkReference.Equal) {
		return s
	}
	c := *s
	c.frameworkReferences = slices.Clone(refs)
	return &c
}

// WithRuntimeGraphPath returns a set with the runtime graph path replaced.
func (s *FrameworkSet) WithRuntimeGraphPath(path string) *FrameworkSet {
	if s.runtimeGraphPath == path {
		return s
	}
	c := *s
	c.runtimeGraphPath = path
	return &c
}

// AddCentralVersions unions entries into the central version map, last
// write wins per name. A nil or empty entries slice is a no-op. The
// receiver is returned unchanged when the resulting map is value-equal to
// the current one; the decision is made on the merged result, not on
// whether anything was passed.
func (s *FrameworkSet) AddCentralVersions(entries []CentralVersion) *FrameworkSet {
	if len(entries) == 0 {
		return s
	}
	merged := s.centralVersions.Clone()
	for _, cv := range entries {
		merged.Set(cv)
	}
	if merged.Equal(s.centralVersions) {
		return s
	}
	c := *s
	c.centralVersions = merged
	return &c
}

// Equal compares two sets using the conventions the resolver's caching
// relies on. Dependency-like collections compare by name only:
// dependencies ordered (same count, matching name per position), downloads
// and framework references unordered. This is deliberately shallow -
// callers needing deep equality must compare the declarations themselves.
// Imports compare ordered and case-insensitively, the alias compares
// case-insensitively, the runtime graph path exactly, and central versions
// by value without regard to order.
func (s *FrameworkSet) Equal(o *FrameworkSet) bool {
	if s == o {
		return true
	}
	if s == nil || o == nil {
		return false
	}
	if !strings.EqualFold(s.targetAlias, o.targetAlias) ||
		!s.framework.Equal(o.framework) ||
		s.assetTargetFallback != o.assetTargetFallback ||
		s.warn != o.warn ||
		s.runtimeGraphPath != o.runtimeGraphPath {
		return false
	}
	if len(s.dependencies) != len(o.dependencies) {
		return false
	}
	for i := range s.dependencies {
		if !strings.EqualFold(s.dependencies[i].Name(), o.dependencies[i].Name()) {
			return false
		}
	}
	if !slices.EqualFunc(s.imports, o.imports, Framework.Equal) {
		return false
	}
	if !sameNames(downloadNames(s.downloads), downloadNames(o.downloads)) {
		return false
	}
	if !sameNames(referenceNames(s.frameworkReferences), referenceNames(o.frameworkReferences)) {
		return false
	}
	return s.centralVersions.Equal(o.centralVersions)
}

// Hash returns a hash suitable for change detection between resolution
// passes. Unlike Equal it folds in full declaration values: dependencies,
// downloads, framework references and central versions combine
// order-independently, imports in order.
func (s *FrameworkSet) Hash() uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(foldName(string(s.framework)))
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(foldName(s.targetAlias))
	_, _ = h.Write([]byte{0, boolByte(s.assetTargetFallback), boolByte(s.warn)})
	_, _ = h.WriteString(s.runtimeGraphPath)

	var deps uint64
	for _, d := range s.dependencies {
		deps += d.Hash()
	}
	writeUint64(h, deps)

	for _, imp := range s.imports {
		_, _ = h.WriteString(foldName(string(imp)))
		_, _ = h.WriteString("\x00")
	}

	var downloads uint64
	for _, d := range s.downloads {
		downloads += d.Hash()
	}
	writeUint64(h, downloads)

	var refs uint64
	for _, r := range s.frameworkReferences {
		refs += r.Hash()
	}
	writeUint64(h, refs)

	writeUint64(h, s.centralVersions.Hash())
	return h.Sum64()
}

func downloadNames(deps []DownloadDependency) []string {
	names := make([]string, len(deps))
	for i, d := range deps {
		names[i] = foldName(d.Name)
	}
	return names
}

func referenceNames(refs []FrameworkReference) []string {
	names := make([]string, len(refs))
	for i, r := range refs {
		names[i] = foldName(r.Name)
	}
	return names
}

// sameNames compares two name slices as unordered multisets.
func sameNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	counts := make(map[string]int, len(a))
	for _, n := range a {
		counts[n]++
	}
	for _, n := range b {
		counts[n]--
		if counts[n] < 0 {
			return false
		}
	}
	return true
}
