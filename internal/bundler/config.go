package bundler

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

// Config is the parsed shape of a project's hql.config.yaml: the default
// emission target, the source directory (resolution step 5), the project
// root (resolution step 6), the cache directory the bundler writes
// transpiled files into, and the library search roots (resolution step 7).
type Config struct {
	Target      string   `yaml:"target"`
	SourceDir   string   `yaml:"source_dir"`
	CacheDir    string   `yaml:"cache_dir"`
	ProjectRoot string   `yaml:"project_root"`
	LibDirs     []string `yaml:"lib_dirs"`
}

// DefaultConfig returns the configuration used when no hql.config.yaml is
// present: JS target, projectRoot as both source directory and project
// root, projectRoot/lib as the one library root, and a cache directory
// under the user's home.
func DefaultConfig(projectRoot string) Config {
	return Config{
		Target:      "js",
		SourceDir:   projectRoot,
		CacheDir:    defaultCacheDir(),
		ProjectRoot: projectRoot,
		LibDirs:     []string{filepath.Join(projectRoot, "lib")},
	}
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "hql-cache")
	}
	return filepath.Join(home, ".cache", "hql")
}

// LoadConfig reads and parses an hql.config.yaml at path. Missing fields
// fall back to DefaultConfig's values for the given project root; a
// missing file is not an error, it just yields defaults.
func LoadConfig(path, projectRoot string) (Config, error) {
	cfg := DefaultConfig(projectRoot)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("bundler: reading config %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return cfg, fmt.Errorf("bundler: parsing config %s: %w", path, err)
	}

	if parsed.Target != "" {
		cfg.Target = parsed.Target
	}
	if parsed.SourceDir != "" {
		cfg.SourceDir = resolveAgainst(projectRoot, parsed.SourceDir)
	}
	if parsed.ProjectRoot != "" {
		cfg.ProjectRoot = resolveAgainst(projectRoot, parsed.ProjectRoot)
	}
	if parsed.CacheDir != "" {
		cfg.CacheDir = resolveAgainst(projectRoot, parsed.CacheDir)
	}
	if len(parsed.LibDirs) > 0 {
		cfg.LibDirs = make([]string, len(parsed.LibDirs))
		for i, d := range parsed.LibDirs {
			cfg.LibDirs[i] = resolveAgainst(projectRoot, d)
		}
	}

	return cfg, nil
}

func resolveAgainst(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
