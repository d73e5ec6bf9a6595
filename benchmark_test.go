package resolve_test

import (
	"fmt"
	"testing"

	"github.com/git-pkgs/resolve"
)

func buildDeclarations(b *testing.B, n int) []*resolve.Declaration {
	b.Helper()
	decls := make([]*resolve.Declaration, n)
	for i := range decls {
		name := fmt.Sprintf("package-%d", i)
		var constraint *resolve.VersionRange
		if i%3 == 0 {
			// Every third declaration carries an explicit version and is
			// skipped by the merge.
			constraint = resolve.MustParseRange("1.0.0")
		}
		d, err := resolve.NewDeclaration(resolve.NewIdentifier(name, constraint, resolve.KindPackage))
		if err != nil {
			b.Fatalf("NewDeclaration failed: %v", err)
		}
		decls[i] = d
	}
	return decls
}

func buildCentral(n int) *resolve.CentralVersionMap {
	central := resolve.NewCentralVersionMap()
	for i := 0; i < n; i += 2 {
		central.Set(resolve.CentralVersion{
			Name:  fmt.Sprintf("package-%d", i),
			Range: resolve.MustParseRange("2.0.0"),
		})
	}
	return central
}

func BenchmarkApplyCentralVersions(b *testing.B) {
	for _, size := range []int{10, 100, 1000} {
		b.Run(fmt.Sprintf("n=%d", size), func(b *testing.B) {
			decls := buildDeclarations(b, size)
			central := buildCentral(size)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := resolve.ApplyCentralVersions(decls, central); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkApplyCentralVersionsMerged(b *testing.B) {
	// Re-applying to already-merged output exercises the all-guards path.
	decls := buildDeclarations(b, 1000)
	central := buildCentral(1000)
	merged, err := resolve.ApplyCentralVersions(decls, central)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := resolve.ApplyCentralVersions(merged, central); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDeclarationHash(b *testing.B) {
	decls := buildDeclarations(b, 1)
	d := decls[0].WithNoWarn([]resolve.WarningCode{"PR1603", "PR1605"})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = d.Hash()
	}
}
