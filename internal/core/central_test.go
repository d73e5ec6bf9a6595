package core

import (
	"errors"
	"testing"

	"github.com/git-pkgs/resolve/internal/version"
)

func centralMap(entries ...CentralVersion) *CentralVersionMap {
	m := NewCentralVersionMap()
	for _, cv := range entries {
		m.Set(cv)
	}
	return m
}

func TestApplyCentralVersionsPreconditions(t *testing.T) {
	if _, err := ApplyCentralVersions(nil, NewCentralVersionMap()); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("nil declarations: error = %v, want ErrInvalidArgument", err)
	}
	if _, err := ApplyCentralVersions([]*Declaration{}, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("nil central map: error = %v, want ErrInvalidArgument", err)
	}
}

func TestApplyCentralVersionsEmptyMapIsIdentity(t *testing.T) {
	decls := []*Declaration{
		mustDeclaration(t, "foo", ""),
		mustDeclaration(t, "bar", "1.0.0"),
	}

	out, err := ApplyCentralVersions(decls, NewCentralVersionMap())
	if err != nil {
		t.Fatalf("ApplyCentralVersions failed: %v", err)
	}
	if &out[0] != &decls[0] {
		t.Error("empty central map should return the input slice itself")
	}
}

func TestApplyCentralVersionsCore(t *testing.T) {
	merged := mustDeclaration(t, "fooMerged", "")
	explicit := mustDeclaration(t, "barNotMerged", "1.0.0")
	auto := mustDeclaration(t, "bazNotMerged", "").WithAutoReferenced(true)

	central := centralMap(
		CentralVersion{Name: "fooMerged", Range: version.MustParse("2.0.0")},
		CentralVersion{Name: "barNotMerged", Range: version.MustParse("2.0.0")},
		CentralVersion{Name: "bazNotMerged", Range: version.MustParse("2.0.0")},
	)

	out, err := ApplyCentralVersions([]*Declaration{merged, explicit, auto}, central)
	if err != nil {
		t.Fatalf("ApplyCentralVersions failed: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 declarations, got %d", len(out))
	}

	if !out[0].CentrallyManaged() {
		t.Error("fooMerged should be centrally managed")
	}
	if got := out[0].Identifier().Constraint().String(); got != "[2.0.0, )" {
		t.Errorf("fooMerged constraint = %q, want [2.0.0, )", got)
	}

	if out[1].CentrallyManaged() {
		t.Error("barNotMerged should not be centrally managed")
	}
	if got := out[1].Identifier().Constraint().String(); got != "[1.0.0, )" {
		t.Errorf("barNotMerged constraint = %q, want [1.0.0, )", got)
	}
	if out[1] != explicit {
		t.Error("declarations with explicit versions should be carried over untouched")
	}

	if out[2].CentrallyManaged() {
		t.Error("bazNotMerged should not be centrally managed")
	}
	if out[2].Identifier().Constraint() != nil {
		t.Error("auto-referenced declarations should keep an absent constraint")
	}
	if out[2] != auto {
		t.Error("auto-referenced declarations should be carried over untouched")
	}
}

func TestApplyCentralVersionsOverridePrecedence(t *testing.T) {
	overridden := mustDeclaration(t, "foo", "").
		WithVersionOverride(version.MustParse("[3.0.0]"))

	central := centralMap(CentralVersion{Name: "foo", Range: version.MustParse("2.0.0")})

	out, err := ApplyCentralVersions([]*Declaration{overridden}, central)
	if err != nil {
		t.Fatalf("ApplyCentralVersions failed: %v", err)
	}

	if got := out[0].Identifier().Constraint().String(); got != "[3.0.0]" {
		t.Errorf("constraint = %q, want the override [3.0.0]", got)
	}
	if out[0].CentrallyManaged() {
		t.Error("an override win should not mark the declaration centrally managed")
	}
}

func TestApplyCentralVersionsLookupMissStillFlags(t *testing.T) {
	missing := mustDeclaration(t, "not-in-manifest", "")
	central := centralMap(CentralVersion{Name: "something-else", Range: version.MustParse("2.0.0")})

	out, err := ApplyCentralVersions([]*Declaration{missing}, central)
	if err != nil {
		t.Fatalf("ApplyCentralVersions failed: %v", err)
	}

	// A declaration eligible for central management is flagged even when
	// the manifest has no entry for it.
	if !out[0].CentrallyManaged() {
		t.Error("lookup miss should still set the centrally-managed flag")
	}
	if out[0].Identifier().Constraint() != nil {
		t.Error("lookup miss should leave the constraint absent")
	}
}

func TestApplyCentralVersionsCaseInsensitiveLookup(t *testing.T) {
	decl := mustDeclaration(t, "Newtonsoft.Json", "")
	central := centralMap(CentralVersion{Name: "newtonsoft.JSON", Range: version.MustParse("13.0.1")})

	out, err := ApplyCentralVersions([]*Declaration{decl}, central)
	if err != nil {
		t.Fatalf("ApplyCentralVersions failed: %v", err)
	}
	if got := out[0].Identifier().Constraint().String(); got != "[13.0.1, )" {
		t.Errorf("constraint = %q, want [13.0.1, )", got)
	}
}

func TestApplyCentralVersionsPreservesOrderAndLength(t *testing.T) {
	names := []string{"e", "a", "c", "b", "d"}
	decls := make([]*Declaration, len(names))
	for i, name := range names {
		decls[i] = mustDeclaration(t, name, "")
	}
	central := centralMap(CentralVersion{Name: "c", Range: version.MustParse("1.0.0")})

	out, err := ApplyCentralVersions(decls, central)
	if err != nil {
		t.Fatalf("ApplyCentralVersions failed: %v", err)
	}
	if len(out) != len(decls) {
		t.Fatalf("length changed: got %d, want %d", len(out), len(decls))
	}
	for i, name := range names {
		if out[i].Name() != name {
			t.Errorf("position %d: got %q, want %q", i, out[i].Name(), name)
		}
	}
}

func TestApplyCentralVersionsDoesNotMutateInput(t *testing.T) {
	decl := mustDeclaration(t, "foo", "")
	decls := []*Declaration{decl}
	central := centralMap(CentralVersion{Name: "foo", Range: version.MustParse("2.0.0")})

	if _, err := ApplyCentralVersions(decls, central); err != nil {
		t.Fatalf("ApplyCentralVersions failed: %v", err)
	}
	if decls[0] != decl {
		t.Error("input slice was mutated")
	}
	if decl.Identifier().Constraint() != nil || decl.CentrallyManaged() {
		t.Error("input declaration was mutated")
	}
}

func TestApplyCentralVersionsIdempotent(t *testing.T) {
	decls := []*Declaration{
		mustDeclaration(t, "foo", ""),
		mustDeclaration(t, "bar", "1.0.0"),
		mustDeclaration(t, "baz", "").WithVersionOverride(version.MustParse("4.0.0")),
	}
	central := centralMap(
		CentralVersion{Name: "foo", Range: version.MustParse("2.0.0")},
		CentralVersion{Name: "baz", Range: version.MustParse("9.9.9")},
	)

	once, err := ApplyCentralVersions(decls, central)
	if err != nil {
		t.Fatalf("first merge failed: %v", err)
	}
	twice, err := ApplyCentralVersions(once, central)
	if err != nil {
		t.Fatalf("second merge failed: %v", err)
	}

	for i := range once {
		if twice[i] != once[i] {
			t.Errorf("position %d: re-applying the merge replaced the declaration", i)
		}
	}
}

func TestCentralVersionMapLastWriteWins(t *testing.T) {
	m := NewCentralVersionMap()
	m.Set(CentralVersion{Name: "Foo", Range: version.MustParse("1.0.0")})
	m.Set(CentralVersion{Name: "foo", Range: version.MustParse("2.0.0")})

	if m.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", m.Len())
	}
	cv, ok := m.Get("FOO")
	if !ok {
		t.Fatal("case-insensitive lookup failed")
	}
	if cv.Range.String() != "[2.0.0, )" {
		t.Errorf("entry = %s, want the later write [2.0.0, )", cv.Range)
	}
}

func TestCentralVersionMapEqual(t *testing.T) {
	a := centralMap(
		CentralVersion{Name: "foo", Range: version.MustParse("1.0.0")},
		CentralVersion{Name: "bar", Range: version.MustParse("2.0.0")},
	)
	b := centralMap(
		CentralVersion{Name: "BAR", Range: version.MustParse("2.0.0")},
		CentralVersion{Name: "FOO", Range: version.MustParse("1.0.0")},
	)

	if !a.Equal(b) {
		t.Error("maps with the same entries under normalized names should be equal")
	}
	if a.Hash() != b.Hash() {
		t.Error("equal maps should hash alike")
	}

	b.Set(CentralVersion{Name: "baz", Range: version.MustParse("3.0.0")})
	if a.Equal(b) {
		t.Error("maps with different entries should not be equal")
	}
}

func TestCentralVersionHashConsistentWithEqual(t *testing.T) {
	a := CentralVersion{Name: "Foo", Range: version.MustParse("1.0")}
	b := CentralVersion{Name: "foo", Range: version.MustParse("1.0.0")}

	if !a.Equal(b) {
		t.Fatal("entries differing only in case and version spelling should be equal")
	}
	if a.Hash() != b.Hash() {
		t.Error("equal entries should hash alike")
	}
}

func TestCentralVersionHashNameBoundary(t *testing.T) {
	a := CentralVersion{Name: "pkg", Range: version.MustParse("[1.0.0]")}
	b := CentralVersion{Name: "pkg[1.0.0]"}

	if a.Hash() == b.Hash() {
		t.Error("shifting text between name and range should change the hash")
	}
}

func TestCentralVersionMapValuesSorted(t *testing.T) {
	m := centralMap(
		CentralVersion{Name: "zeta", Range: version.MustParse("1.0.0")},
		CentralVersion{Name: "Alpha", Range: version.MustParse("1.0.0")},
		CentralVersion{Name: "mid", Range: version.MustParse("1.0.0")},
	)

	values := m.Values()
	want := []string{"Alpha", "mid", "zeta"}
	if len(values) != len(want) {
		t.Fatalf("expected %d values, got %d", len(want), len(values))
	}
	for i, name := range want {
		if values[i].Name != name {
			t.Errorf("position %d: got %q, want %q", i, values[i].Name, name)
		}
	}
}
