package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hql-lang/hql/internal/bundler"
	"github.com/hql-lang/hql/internal/diag"
)

var (
	bundleTarget   string
	bundleCacheDir string
	bundleConfig   string
	bundleForce    bool
	bundleNoColor  bool
)

var bundleCmd = &cobra.Command{
	Use:   "bundle <entry-file>",
	Short: "Resolve and transpile a multi-file HQL program",
	Long: `Bundle walks the HQL import graph starting at entry-file, transpiling
each file through the full compiler pipeline, rewriting "./foo.hql" imports
to point at content-addressed cache entries, and breaking circular imports.

Project defaults (target, source directory, cache directory, library search
paths) are read from hql.config.yaml in the entry file's directory unless
--config names a different path.`,
	Args: cobra.ExactArgs(1),
	RunE: runBundle,
}

func init() {
	rootCmd.AddCommand(bundleCmd)

	bundleCmd.Flags().StringVar(&bundleTarget, "target", "", "emission target: js or ts (overrides hql.config.yaml)")
	bundleCmd.Flags().StringVar(&bundleCacheDir, "cache-dir", "", "cache directory (overrides hql.config.yaml)")
	bundleCmd.Flags().StringVar(&bundleConfig, "config", "", "path to hql.config.yaml (default: <entry dir>/hql.config.yaml)")
	bundleCmd.Flags().BoolVar(&bundleForce, "force", false, "ignore cache entries and retranspile every file")
	bundleCmd.Flags().BoolVar(&bundleNoColor, "no-color", false, "disable colored diagnostics")
}

func runBundle(cmd *cobra.Command, args []string) error {
	entry, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolving entry path: %w", err)
	}
	projectRoot := filepath.Dir(entry)

	configPath := bundleConfig
	if configPath == "" {
		configPath = filepath.Join(projectRoot, "hql.config.yaml")
	}
	cfg, err := bundler.LoadConfig(configPath, projectRoot)
	if err != nil {
		return err
	}
	if bundleTarget != "" {
		cfg.Target = strings.ToLower(bundleTarget)
	}
	if bundleCacheDir != "" {
		cfg.CacheDir = bundleCacheDir
	}

	Log.Debug().Str("entry", entry).Str("target", cfg.Target).Str("cache", cfg.CacheDir).Msg("bundling")

	b, err := bundler.New(cfg, Log)
	if err != nil {
		return fmt.Errorf("initializing bundler: %w", err)
	}
	b.SetForce(bundleForce)

	result, err := b.Build(entry)
	if err != nil {
		return err
	}

	if len(result.Diagnostics) > 0 {
		fmt.Fprint(os.Stderr, diag.Format(result.Diagnostics, !bundleNoColor))
		fmt.Fprintln(os.Stderr)
	}
	for _, d := range result.Diagnostics {
		if d.Severity == diag.SeverityError {
			return fmt.Errorf("bundle failed with errors")
		}
	}

	for _, f := range result.Files {
		status := "compiled"
		if f.FromCache {
			status = "cached"
		}
		Log.Info().Str("file", f.SourcePath).Str("cache", f.CachePath).Str("status", status).Msg("bundled file")
	}

	fmt.Printf("Bundled %s -> %s (%d file(s))\n", args[0], result.EntryCachePath, len(result.Files))
	return nil
}
