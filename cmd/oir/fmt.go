package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"oir/internal/diag"
	"oir/internal/irtext"
	"oir/internal/source"
)

var fmtWrite bool

func init() {
	fmtCmd.Flags().BoolVarP(&fmtWrite, "write", "w", false, "rewrite the file in place instead of printing")
}

var fmtCmd = &cobra.Command{
	Use:   "fmt <file>",
	Short: "Reprint a .oir file in canonical textual form",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		fset := source.NewFileSet()
		id, err := fset.Load(path)
		if err != nil {
			return err
		}
		bag := diag.NewBag(irtext.MaxDiagnostics)
		m := irtext.Parse(fset, id, bag)
		renderDiagnostics(cmd, bag, fset)
		if m == nil || bag.HasErrors() {
			return fmt.Errorf("%s: diagnostics reported", path)
		}
		out := irtext.PrintModule(m)
		if fmtWrite {
			return os.WriteFile(path, []byte(out), 0o644) // #nosec G306 -- source file, not a secret
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}
