package resolve_test

import (
	"errors"
	"testing"

	"github.com/git-pkgs/resolve"
)

func TestApplyCentralVersionsThroughFacade(t *testing.T) {
	plain, err := resolve.NewDeclaration(resolve.NewIdentifier("fooMerged", nil, resolve.KindPackage))
	if err != nil {
		t.Fatalf("NewDeclaration failed: %v", err)
	}
	pinned, err := resolve.NewDeclaration(resolve.NewIdentifier("barNotMerged", resolve.MustParseRange("1.0.0"), resolve.KindPackage))
	if err != nil {
		t.Fatalf("NewDeclaration failed: %v", err)
	}

	central := resolve.NewCentralVersionMap()
	central.Set(resolve.CentralVersion{Name: "FOOMERGED", Range: resolve.MustParseRange("2.0.0")})

	merged, err := resolve.ApplyCentralVersions([]*resolve.Declaration{plain, pinned}, central)
	if err != nil {
		t.Fatalf("ApplyCentralVersions failed: %v", err)
	}

	if got := merged[0].Identifier().Constraint().String(); got != "[2.0.0, )" {
		t.Errorf("merged constraint = %q, want [2.0.0, )", got)
	}
	if !merged[0].CentrallyManaged() {
		t.Error("merged declaration should be centrally managed")
	}
	if merged[1] != pinned {
		t.Error("pinned declaration should be carried over untouched")
	}
}

func TestNewDeclarationValidation(t *testing.T) {
	if _, err := resolve.NewDeclaration(nil); !errors.Is(err, resolve.ErrInvalidArgument) {
		t.Errorf("error = %v, want ErrInvalidArgument", err)
	}
}

func TestParseRange(t *testing.T) {
	rng, err := resolve.ParseRange("[1.0.0, 2.0.0)")
	if err != nil {
		t.Fatalf("ParseRange failed: %v", err)
	}
	if rng.String() != "[1.0.0, 2.0.0)" {
		t.Errorf("String() = %q", rng)
	}

	if _, err := resolve.ParseRange("bogus"); !errors.Is(err, resolve.ErrMalformedRange) {
		t.Errorf("error = %v, want ErrMalformedRange", err)
	}
}

func TestFrameworkSetFacade(t *testing.T) {
	decl, err := resolve.NewDeclaration(resolve.NewIdentifier("serilog", nil, resolve.KindPackage))
	if err != nil {
		t.Fatalf("NewDeclaration failed: %v", err)
	}

	set := resolve.NewFrameworkSet().
		WithFramework("net8.0").
		WithDependencies([]*resolve.Declaration{decl}).
		AddCentralVersions([]resolve.CentralVersion{{Name: "serilog", Range: resolve.MustParseRange("3.1.1")}})

	merged, err := resolve.ApplyCentralVersions(set.Dependencies(), set.CentralVersions())
	if err != nil {
		t.Fatalf("ApplyCentralVersions failed: %v", err)
	}

	resolved := set.WithDependencies(merged)
	if resolved == set {
		t.Fatal("expected a new framework set after resolving versions")
	}
	if got := resolved.Dependencies()[0].Identifier().Constraint().String(); got != "[3.1.1, )" {
		t.Errorf("resolved constraint = %q, want [3.1.1, )", got)
	}
}
