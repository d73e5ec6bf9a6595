// Package manifest loads central version manifests and project dependency
// declarations from TOML documents, locally or over HTTP with retry and
// circuit breaking.
//
// A central manifest pins package versions project-wide:
//
//	[packages]
//	"Newtonsoft.Json" = "[13.0.1, )"
//	serilog = "3.1.1"
//
//	[[purls]]
//	purl = "pkg:nuget/Humanizer@2.14.1"
//
// A project document declares dependencies, either as a bare version string
// or as a detailed table:
//
//	[dependencies]
//	serilog = "3.1.1"
//
//	[dependencies."Newtonsoft.Json"]
//	include = "compile,runtime"
//	nowarn = ["PR1603"]
//
// Dependencies without a version pick one up from the central manifest via
// resolve.ApplyCentralVersions.
package manifest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/git-pkgs/purl"

	"github.com/git-pkgs/resolve"
)

var (
	// ErrMalformedManifest is returned when a document cannot be decoded
	// or an entry is invalid.
	ErrMalformedManifest = errors.New("malformed manifest")
)

type centralDoc struct {
	Packages map[string]string `toml:"packages"`
	PURLs    []purlEntry       `toml:"purls"`
}

type purlEntry struct {
	PURL string `toml:"purl"`
}

// Parse reads a central version manifest from r. Names are case-insensitive
// and a name declared both under [packages] and as a PURL resolves
// last-write-wins, with PURL entries applied after the packages table.
func Parse(r io.Reader) (*resolve.CentralVersionMap, error) {
	var doc centralDoc
	if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedManifest, err)
	}
	return buildCentral(doc)
}

// Load reads a central version manifest from a file.
func Load(path string) (*resolve.CentralVersionMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening manifest: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Parse(f)
}

func buildCentral(doc centralDoc) (*resolve.CentralVersionMap, error) {
	central := resolve.NewCentralVersionMap()

	// Sort names so that duplicate keys differing only in case resolve
	// deterministically.
	names := make([]string, 0, len(doc.Packages))
	for name := range doc.Packages {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		rng, err := resolve.ParseRange(doc.Packages[name])
		if err != nil {
			return nil, fmt.Errorf("%w: package %q: %v", ErrMalformedManifest, name, err)
		}
		central.Set(resolve.CentralVersion{Name: name, Range: rng})
	}

	for _, entry := range doc.PURLs {
		cv, err := parsePURLEntry(entry.PURL)
		if err != nil {
			return nil, err
		}
		central.Set(cv)
	}

	return central, nil
}

func parsePURLEntry(s string) (resolve.CentralVersion, error) {
	p, err := purl.Parse(s)
	if err != nil {
		return resolve.CentralVersion{}, fmt.Errorf("%w: purl %q: %v", ErrMalformedManifest, s, err)
	}
	if p.Version == "" {
		return resolve.CentralVersion{}, fmt.Errorf("%w: purl %q: version required", ErrMalformedManifest, s)
	}
	rng, err := resolve.ParseRange(p.Version)
	if err != nil {
		return resolve.CentralVersion{}, fmt.Errorf("%w: purl %q: %v", ErrMalformedManifest, s, err)
	}
	name := p.Name
	if p.Namespace != "" {
		name = p.Namespace + "/" + p.Name
	}
	return resolve.CentralVersion{Name: name, Range: rng}, nil
}

type projectDoc struct {
	Dependencies map[string]toml.Primitive `toml:"dependencies"`
}

type dependencyEntry struct {
	Version        string   `toml:"version"`
	Override       string   `toml:"override"`
	Include        string   `toml:"include"`
	Suppress       string   `toml:"suppress"`
	NoWarn         []string `toml:"nowarn"`
	AutoReferenced bool     `toml:"auto"`
	Aliases        string   `toml:"aliases"`
	PathProperty   bool     `toml:"path_property"`
}

// ParseProject reads project dependency declarations from r. Declarations
// are returned sorted by name so repeated loads of the same document
// produce the same order.
func ParseProject(r io.Reader) ([]*resolve.Declaration, error) {
	var doc projectDoc
	md, err := toml.NewDecoder(r).Decode(&doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedManifest, err)
	}

	names := make([]string, 0, len(doc.Dependencies))
	for name := range doc.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)

	decls := make([]*resolve.Declaration, 0, len(names))
	for _, name := range names {
		entry, err := decodeDependency(md, doc.Dependencies[name])
		if err != nil {
			return nil, fmt.Errorf("%w: dependency %q: %v", ErrMalformedManifest, name, err)
		}
		decl, err := buildDeclaration(name, entry)
		if err != nil {
			return nil, fmt.Errorf("%w: dependency %q: %v", ErrMalformedManifest, name, err)
		}
		decls = append(decls, decl)
	}
	return decls, nil
}

// LoadProject reads project dependency declarations from a file.
func LoadProject(path string) ([]*resolve.Declaration, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening project manifest: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ParseProject(f)
}

// decodeDependency accepts either a bare version string or a detailed table.
func decodeDependency(md toml.MetaData, prim toml.Primitive) (dependencyEntry, error) {
	var v string
	if err := md.PrimitiveDecode(prim, &v); err == nil {
		return dependencyEntry{Version: v}, nil
	}
	var entry dependencyEntry
	if err := md.PrimitiveDecode(prim, &entry); err != nil {
		return dependencyEntry{}, err
	}
	return entry, nil
}

func buildDeclaration(name string, entry dependencyEntry) (*resolve.Declaration, error) {
	var constraint *resolve.VersionRange
	if entry.Version != "" {
		rng, err := resolve.ParseRange(entry.Version)
		if err != nil {
			return nil, err
		}
		constraint = rng
	}

	decl, err := resolve.NewDeclaration(resolve.NewIdentifier(name, constraint, resolve.KindPackage))
	if err != nil {
		return nil, err
	}

	if entry.Include != "" {
		flags, err := resolve.ParseIncludeFlags(entry.Include)
		if err != nil {
			return nil, err
		}
		decl = decl.WithInclude(flags)
	}
	if entry.Suppress != "" {
		flags, err := resolve.ParseIncludeFlags(entry.Suppress)
		if err != nil {
			return nil, err
		}
		decl = decl.WithSuppress(flags)
	}
	if len(entry.NoWarn) > 0 {
		codes := make([]resolve.WarningCode, len(entry.NoWarn))
		for i, c := range entry.NoWarn {
			codes[i] = resolve.WarningCode(c)
		}
		decl = decl.WithNoWarn(codes)
	}
	if entry.Override != "" {
		rng, err := resolve.ParseRange(entry.Override)
		if err != nil {
			return nil, err
		}
		decl = decl.WithVersionOverride(rng)
	}
	decl = decl.WithAutoReferenced(entry.AutoReferenced).
		WithAliases(entry.Aliases).
		WithGeneratePathProperty(entry.PathProperty)

	return decl, nil
}
