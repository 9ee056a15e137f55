package main

import (
	"strings"

	"github.com/spf13/cobra"

	"oir/internal/diag"
	"oir/internal/diagfmt"
	"oir/internal/source"
)

// renderDiagnostics prints the bag to the command's error stream honoring
// the persistent --diag-format, --color and --max-diagnostics flags.
func renderDiagnostics(cmd *cobra.Command, bag *diag.Bag, fset *source.FileSet) {
	if bag == nil || bag.Len() == 0 {
		return
	}
	maxDiags, _ := cmd.Flags().GetInt("max-diagnostics")
	format, _ := cmd.Flags().GetString("diag-format")
	if strings.ToLower(format) == "json" {
		_ = diagfmt.JSON(cmd.ErrOrStderr(), bag, fset, diagfmt.JSONOpts{
			IncludePositions: true,
			IncludeNotes:     true,
			Max:              maxDiags,
		})
		return
	}
	diagfmt.Pretty(cmd.ErrOrStderr(), bag, fset, diagfmt.PrettyOpts{
		Color:       colorEnabled(cmd),
		ShowNotes:   true,
		ShowPreview: true,
		Max:         maxDiags,
	})
}
