package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/git-pkgs/resolve"
	"github.com/git-pkgs/resolve/manifest"
)

// newApplyCmd builds the apply command: load a project manifest and a
// central version manifest, merge central versions into the declarations,
// and print the result.
func newApplyCmd() *cobra.Command {
	var (
		projectPath string
		centralRef  string
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply central versions to a project's dependency declarations",
		Long: `Apply loads dependency declarations from a project manifest and merges in
centrally declared package versions. The central manifest may be a local TOML
file or an http(s) URL.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			decls, err := manifest.LoadProject(projectPath)
			if err != nil {
				return err
			}
			logger.Debug("loaded project manifest", "path", projectPath, "declarations", len(decls))

			var central *resolve.CentralVersionMap
			if strings.HasPrefix(centralRef, "http://") || strings.HasPrefix(centralRef, "https://") {
				httpSource := manifest.NewHTTPSource()
				defer httpSource.Close()
				source := manifest.NewCircuitBreakerSource(httpSource)
				central, err = source.Fetch(ctx, centralRef)
			} else {
				central, err = manifest.Load(centralRef)
			}
			if err != nil {
				return err
			}
			logger.Debug("loaded central manifest", "ref", centralRef, "entries", central.Len())

			merged, err := resolve.ApplyCentralVersions(decls, central)
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(cmd, merged)
			}
			printText(cmd, merged)
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectPath, "project", "p", "deps.toml", "project manifest path")
	cmd.Flags().StringVarP(&centralRef, "central", "c", "versions.toml", "central manifest path or URL")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON instead of text")

	return cmd
}

func printText(cmd *cobra.Command, decls []*resolve.Declaration) {
	for _, d := range decls {
		marker := ""
		if d.CentrallyManaged() {
			marker = "  (central)"
		}
		cmd.Printf("%s%s\n", d.DisplayString(), marker)
	}
}

// declarationJSON is the wire shape of one merged declaration.
type declarationJSON struct {
	Name             string   `json:"name"`
	Version          string   `json:"version,omitempty"`
	Include          string   `json:"include"`
	Suppress         string   `json:"suppress"`
	NoWarn           []string `json:"nowarn,omitempty"`
	AutoReferenced   bool     `json:"auto_referenced,omitempty"`
	CentrallyManaged bool     `json:"centrally_managed,omitempty"`
	Aliases          string   `json:"aliases,omitempty"`
}

func printJSON(cmd *cobra.Command, decls []*resolve.Declaration) error {
	out := make([]declarationJSON, len(decls))
	for i, d := range decls {
		entry := declarationJSON{
			Name:             d.Name(),
			Include:          d.Include().String(),
			Suppress:         d.Suppress().String(),
			AutoReferenced:   d.AutoReferenced(),
			CentrallyManaged: d.CentrallyManaged(),
			Aliases:          d.Aliases(),
		}
		if c := d.Identifier().Constraint(); c != nil {
			entry.Version = c.String()
		}
		for _, code := range d.NoWarn() {
			entry.NoWarn = append(entry.NoWarn, string(code))
		}
		out[i] = entry
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
