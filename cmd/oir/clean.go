package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"oir/internal/driver"
	"oir/internal/project"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [path]",
	Short: "Remove the result cache",
	Long:  "Remove the on-disk result cache used by canon for unchanged inputs.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runClean,
}

func runClean(cmd *cobra.Command, args []string) error {
	baseDir := "."
	if len(args) > 0 && args[0] != "" {
		baseDir = args[0]
	}
	manifest, err := project.LoadOrDefault(baseDir)
	if err != nil {
		return err
	}
	cacheDir := manifest.Config.Cache.Dir
	if cacheDir == "" {
		cacheDir, err = driver.DefaultCacheDir()
		if err != nil {
			return err
		}
	}
	info, err := os.Stat(cacheDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintln(cmd.OutOrStdout(), "cache directory not found")
			return nil
		}
		return fmt.Errorf("failed to stat %q: %w", cacheDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%q is not a directory", cacheDir)
	}
	if err := os.RemoveAll(cacheDir); err != nil {
		return fmt.Errorf("failed to remove %q: %w", cacheDir, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", cacheDir)
	return nil
}
