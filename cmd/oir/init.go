package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"oir/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init [path|name]",
	Short: "Initialize an oir project",
	Long: `Initialize an oir project by creating a project manifest (oir.toml) and a
sample input (main.oir). If [path|name] is omitted, initializes the current
directory. If a non-existing name is provided, a directory will be created.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

const sampleInput = `func @main {
bb0:
  %v = alloc
  %c = copy %v
  destroy %c
  destroy %v
  return
}
`

func runInit(cmd *cobra.Command, args []string) error {
	// Resolve target directory
	var target string
	if len(args) == 0 || args[0] == "." {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		target = wd
	} else {
		arg := args[0]
		if !filepath.IsAbs(arg) {
			wd, err := os.Getwd()
			if err != nil {
				return err
			}
			target = filepath.Join(wd, arg)
		} else {
			target = arg
		}
	}

	// Ensure directory exists
	if st, err := os.Stat(target); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err = os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("failed to create directory %q: %w", target, err)
			}
		} else {
			return err
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	// Determine project name from directory basename
	name := strings.TrimSpace(filepath.Base(target))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "oir-project"
	}

	manifestPath := filepath.Join(target, "oir.toml")
	if _, err := os.Stat(manifestPath); err == nil {
		return fmt.Errorf("project already initialized: %s exists", manifestPath)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := project.WriteManifest(manifestPath, name); err != nil {
		return err
	}

	entryPath := filepath.Join(target, "main.oir")
	if _, err := os.Stat(entryPath); errors.Is(err, os.ErrNotExist) {
		if werr := os.WriteFile(entryPath, []byte(sampleInput), 0o644); werr != nil { // #nosec G306
			return werr
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "created %s\ncreated %s\n", manifestPath, entryPath)
	return nil
}
