package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"oir/internal/driver"
	"oir/internal/project"
	"oir/internal/source"
)

var (
	canonPruneDebug bool
	canonNoSplit    bool
	canonTimings    bool
	canonStats      bool
	canonWrite      bool
	canonCache      bool
	canonJobs       int
	canonUI         string
)

func init() {
	canonCmd.Flags().BoolVar(&canonPruneDebug, "prune-debug", false, "do not let debug instructions extend lifetimes")
	canonCmd.Flags().BoolVar(&canonNoSplit, "no-split-edges", false, "skip critical edge splitting before the pass")
	canonCmd.Flags().BoolVar(&canonTimings, "timings", false, "print per-phase timings")
	canonCmd.Flags().BoolVar(&canonStats, "stats", false, "print copy/destroy counters")
	canonCmd.Flags().BoolVarP(&canonWrite, "write", "w", false, "rewrite input files in place instead of printing")
	canonCmd.Flags().BoolVar(&canonCache, "cache", false, "reuse cached results for unchanged inputs")
	canonCmd.Flags().IntVar(&canonJobs, "jobs", 0, "number of files to process concurrently (0 = all CPUs)")
	canonCmd.Flags().StringVar(&canonUI, "ui", "auto", "interactive progress for directory runs (auto|on|off)")
}

var canonCmd = &cobra.Command{
	Use:   "canon [path]",
	Short: "Canonicalize owned lifetimes in .oir files",
	Long: `canon rewrites every owned value in the input so that copies and destroys
sit exactly on its lifetime boundary: redundant copies collapse into the
original definition and destroys move to the last points of use.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCanon,
}

func runCanon(cmd *cobra.Command, args []string) error {
	path := "."
	if len(args) == 1 {
		path = args[0]
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	searchDir := path
	if !info.IsDir() {
		searchDir = filepath.Dir(path)
	}
	manifest, err := project.LoadOrDefault(searchDir)
	if err != nil {
		return err
	}
	opts, err := buildOptions(cmd, manifest)
	if err != nil {
		return err
	}

	if info.IsDir() {
		return runCanonDir(cmd, path, opts)
	}
	return runCanonFile(cmd, path, opts)
}

// buildOptions merges the manifest configuration with explicit flags.
// A flag set on the command line wins over the manifest.
func buildOptions(cmd *cobra.Command, manifest *project.Manifest) (driver.Options, error) {
	cfg := manifest.Config
	opts := driver.Options{
		PruneDebug:         cfg.Canon.PruneDebug,
		SplitCriticalEdges: cfg.Canon.SplitCriticalEdges,
		Jobs:               cfg.Canon.Jobs,
		Timings:            canonTimings,
	}
	if cmd.Flags().Changed("prune-debug") {
		opts.PruneDebug = canonPruneDebug
	}
	if cmd.Flags().Changed("no-split-edges") {
		opts.SplitCriticalEdges = !canonNoSplit
	}
	if cmd.Flags().Changed("jobs") {
		opts.Jobs = canonJobs
	}

	useCache := cfg.Cache.Enabled
	if cmd.Flags().Changed("cache") {
		useCache = canonCache
	}
	if useCache {
		cache, err := driver.OpenDiskCache(cfg.Cache.Dir)
		if err != nil {
			return driver.Options{}, fmt.Errorf("failed to open result cache: %w", err)
		}
		opts.Cache = cache
	}
	return opts, nil
}

func runCanonFile(cmd *cobra.Command, path string, opts driver.Options) error {
	fset := source.NewFileSet()
	id, err := fset.Load(path)
	if err != nil {
		return err
	}
	res := driver.RunFile(fset, id, path, opts)
	reportResult(cmd, fset, res)
	if !res.Ok() {
		return fmt.Errorf("%s: diagnostics reported", path)
	}
	if canonWrite {
		return os.WriteFile(path, []byte(res.Output), 0o644) // #nosec G306 -- source file, not a secret
	}
	fmt.Fprint(cmd.OutOrStdout(), res.Output)
	return nil
}

func runCanonDir(cmd *cobra.Command, dir string, opts driver.Options) error {
	mode, err := readUIMode(canonUI)
	if err != nil {
		return err
	}
	files, err := driver.ListFiles(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "no .oir files under %s\n", dir)
		return nil
	}

	var (
		fset    *source.FileSet
		results []*driver.Result
	)
	if shouldUseTUI(mode) {
		fset, results, err = runDirWithUI(cmd.Context(), fmt.Sprintf("canon %s", dir), dir, files, opts)
	} else {
		fset, results, err = driver.RunDir(cmd.Context(), dir, opts, nil)
	}
	if err != nil {
		return err
	}

	failed := 0
	for _, res := range results {
		if res == nil {
			continue
		}
		reportResult(cmd, fset, res)
		if !res.Ok() {
			failed++
			continue
		}
		if canonWrite {
			if werr := os.WriteFile(res.Path, []byte(res.Output), 0o644); werr != nil { // #nosec G306
				return werr
			}
		}
	}
	quiet, _ := cmd.Flags().GetBool("quiet")
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "%d file(s), %d failed\n", len(results), failed)
	}
	if failed > 0 {
		return fmt.Errorf("%d file(s) had errors", failed)
	}
	return nil
}

// reportResult prints diagnostics and optional counters for one file.
func reportResult(cmd *cobra.Command, fset *source.FileSet, res *driver.Result) {
	renderDiagnostics(cmd, res.Bag, fset)
	if canonStats && res.Ok() {
		printStats(cmd.OutOrStdout(), res)
	}
	if canonTimings && res.Timer != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s", res.Path, res.Timer.Summary())
	}
}
