// Package config owns the roots configuration: which directories belong to
// which environment, partitioned by root kind (file, pillar, cache), plus the
// handful of options that drive top-file resolution and merging.
package config

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	topderrors "github.com/nrgaway/topd/pkg/errors"
)

// RootKind names a partition of the roots index.
type RootKind string

const (
	CacheRoots  RootKind = "cache_roots"
	FileRoots   RootKind = "file_roots"
	PillarRoots RootKind = "pillar_roots"
)

// AllRootKinds is the default include set when gathering roots.
var AllRootKinds = []RootKind{CacheRoots, FileRoots, PillarRoots}

// Merge strategies for top-file resolution.
const (
	StrategyMerge = "merge"
	StrategySame  = "same"
)

// Config is the roots configuration consumed (not owned) by the resolution
// core. Cache roots are synthesized per environment, never configured.
type Config struct {
	// FileRoots maps environment names to ordered state root directories.
	FileRoots map[string][]string `koanf:"file_roots" toml:"file_roots"`
	// PillarRoots maps environment names to ordered pillar root directories.
	PillarRoots map[string][]string `koanf:"pillar_roots" toml:"pillar_roots"`
	// CacheDir is the base cache directory; {CacheDir}/files/{env} and
	// {CacheDir}/localfiles/{env} are synthesized as cache roots.
	CacheDir string `koanf:"cache_dir" toml:"cache_dir"`
	// ControlDir is the control subdirectory holding enable symlinks.
	ControlDir string `koanf:"control_dir" toml:"control_dir"`
	// StateTop is the top-entry-point file rendered per environment.
	StateTop string `koanf:"state_top" toml:"state_top"`
	// StateTopSaltenv pins top-entry rendering to one environment.
	StateTopSaltenv string `koanf:"state_top_saltenv" toml:"state_top_saltenv"`
	// DefaultTop is the environment used by the "same" merging strategy when
	// no explicit environment is set.
	DefaultTop string `koanf:"default_top" toml:"default_top"`
	// Environment, when set, restricts resolution to a single environment.
	Environment string `koanf:"environment" toml:"environment"`
	// MergingStrategy is "merge" (all environments) or "same" (one).
	MergingStrategy string `koanf:"top_file_merging_strategy" toml:"top_file_merging_strategy"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"cache_dir":                 filepath.Join(xdg.CacheHome, "topd"),
		"control_dir":               "_topd",
		"state_top":                 "top.sls",
		"top_file_merging_strategy": StrategyMerge,
	}
}

// Load builds the configuration from defaults, an optional TOML or YAML file,
// and TOPD_* environment variables, in that order of precedence.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, topderrors.Wrap(err, topderrors.ErrConfigLoad, "failed to load defaults")
	}

	if path != "" {
		if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
			return nil, topderrors.Wrapf(err, topderrors.ErrConfigLoad, "failed to load config from %s", path)
		}
	}

	if err := k.Load(env.Provider("TOPD_", ".", envKey), nil); err != nil {
		return nil, topderrors.Wrap(err, topderrors.ErrConfigLoad, "failed to load environment overrides")
	}

	return unmarshal(k)
}

// LoadBytes builds the configuration from defaults plus raw TOML content.
// Used by tests and callers that keep config on a non-OS filesystem.
func LoadBytes(data []byte) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, topderrors.Wrap(err, topderrors.ErrConfigLoad, "failed to load defaults")
	}
	if err := k.Load(&rawBytesProvider{bytes: data}, toml.Parser()); err != nil {
		return nil, topderrors.Wrap(err, topderrors.ErrConfigParse, "failed to parse config")
	}

	return unmarshal(k)
}

// Default returns the built-in configuration with no file or environment
// overrides applied.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		// Defaults are static; loading them cannot fail at runtime.
		panic(err)
	}
	return cfg
}

func unmarshal(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, topderrors.Wrap(err, topderrors.ErrConfigParse, "failed to unmarshal config")
	}
	if cfg.FileRoots == nil {
		cfg.FileRoots = make(map[string][]string)
	}
	if cfg.PillarRoots == nil {
		cfg.PillarRoots = make(map[string][]string)
	}
	return &cfg, nil
}

func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return kyaml.Parser()
	default:
		return toml.Parser()
	}
}

// envKey maps TOPD_CACHE_DIR to cache_dir, TOPD_STATE__TOP to state.top.
func envKey(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, "TOPD_"))
	return strings.ReplaceAll(key, "__", ".")
}

// rawBytesProvider implements koanf provider for raw bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("not implemented")
}
