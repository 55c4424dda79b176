// Package config provides configuration management for jackknife.
// Configuration is loaded from (highest to lowest priority):
// 1. Command-line flags
// 2. Environment variables (JACKKNIFE_*)
// 3. Project config (.jackknife/config.yaml in cwd)
// 4. Home config (XDG config dir, jackknife/config.yaml)
// 5. Defaults
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	homedir "github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// Config holds all jackknife configuration.
type Config struct {
	// EnvsDir is the base directory holding per-tool environments
	// (default: ~/.jackknife_envs).
	EnvsDir string `yaml:"envs_dir"`

	// ToolsDir is where tool scripts live (default: ./tools).
	ToolsDir string `yaml:"tools_dir"`

	// UvCommand names the environment-management executable (default: uv).
	UvCommand string `yaml:"uv_command"`

	// ShareEnvironments links compatible environments instead of creating
	// duplicates (default: true).
	ShareEnvironments bool `yaml:"share_environments"`
	// ShareEnvironmentsSet tracks whether ShareEnvironments was explicitly
	// configured, distinguishing "not set" from "explicitly false".
	ShareEnvironmentsSet bool `yaml:"-"`

	// ContinueOnError keeps a chain running past failing entries
	// (default: false).
	ContinueOnError bool `yaml:"continue_on_error"`
	// ContinueOnErrorSet tracks whether ContinueOnError was explicitly set.
	ContinueOnErrorSet bool `yaml:"-"`

	// Verbose enables debug logging.
	Verbose bool `yaml:"verbose"`
}

// Default config values.
const (
	defaultEnvsDirName = ".jackknife_envs"
	defaultToolsDir    = "tools"
	defaultUvCommand   = "uv"
)

// Default returns the default configuration.
func Default() *Config {
	home, err := homedir.Dir()
	if err != nil {
		home = "."
	}
	return &Config{
		EnvsDir:           filepath.Join(home, defaultEnvsDirName),
		ToolsDir:          defaultToolsDir,
		UvCommand:         defaultUvCommand,
		ShareEnvironments: true,
	}
}

// Load loads configuration with proper precedence.
// Priority: flags > env > project > home > defaults
func Load(flagOverrides *Config) (*Config, error) {
	cfg := Default()

	homeConfig, _ := loadFromPath(homeConfigPath())
	if homeConfig != nil {
		cfg = merge(cfg, homeConfig)
	}

	projectConfig, _ := loadFromPath(projectConfigPath())
	if projectConfig != nil {
		cfg = merge(cfg, projectConfig)
	}

	cfg = applyEnv(cfg)

	if flagOverrides != nil {
		cfg = merge(cfg, flagOverrides)
	}

	expandPaths(cfg)
	return cfg, nil
}

// homeConfigPath returns the user-scoped config path.
func homeConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "jackknife", "config.yaml")
}

// projectConfigPath returns the project config path, honoring the
// JACKKNIFE_CONFIG override.
func projectConfigPath() string {
	if override := strings.TrimSpace(os.Getenv("JACKKNIFE_CONFIG")); override != "" {
		return override
	}
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return filepath.Join(cwd, ".jackknife", "config.yaml")
}

// fileConfig mirrors Config for yaml decoding with pointer booleans, so an
// explicit `share_environments: false` is distinguishable from absence.
type fileConfig struct {
	EnvsDir           string `yaml:"envs_dir"`
	ToolsDir          string `yaml:"tools_dir"`
	UvCommand         string `yaml:"uv_command"`
	ShareEnvironments *bool  `yaml:"share_environments"`
	ContinueOnError   *bool  `yaml:"continue_on_error"`
	Verbose           *bool  `yaml:"verbose"`
}

// loadFromPath loads config from a YAML file.
func loadFromPath(path string) (*Config, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, err
	}

	cfg := &Config{
		EnvsDir:   fc.EnvsDir,
		ToolsDir:  fc.ToolsDir,
		UvCommand: fc.UvCommand,
	}
	if fc.ShareEnvironments != nil {
		cfg.ShareEnvironments = *fc.ShareEnvironments
		cfg.ShareEnvironmentsSet = true
	}
	if fc.ContinueOnError != nil {
		cfg.ContinueOnError = *fc.ContinueOnError
		cfg.ContinueOnErrorSet = true
	}
	if fc.Verbose != nil {
		cfg.Verbose = *fc.Verbose
	}
	return cfg, nil
}

// truthy mirrors the accepted affirmative spellings for boolean env vars.
func truthy(v string) bool {
	switch strings.ToLower(v) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// applyEnv applies environment variable overrides.
func applyEnv(cfg *Config) *Config {
	if v := os.Getenv("JACKKNIFE_ENVS_DIR"); v != "" {
		cfg.EnvsDir = v
	}
	if v := os.Getenv("JACKKNIFE_TOOLS_DIR"); v != "" {
		cfg.ToolsDir = v
	}
	if v := os.Getenv("JACKKNIFE_UV"); v != "" {
		cfg.UvCommand = v
	}
	if v := os.Getenv("JACKKNIFE_SHARE_ENVIRONMENTS"); v != "" {
		cfg.ShareEnvironments = truthy(v)
		cfg.ShareEnvironmentsSet = true
	}
	if v := os.Getenv("JACKKNIFE_CONTINUE_ON_ERROR"); v != "" {
		cfg.ContinueOnError = truthy(v)
		cfg.ContinueOnErrorSet = true
	}
	if v := os.Getenv("JACKKNIFE_VERBOSE"); truthy(v) {
		cfg.Verbose = true
	}
	return cfg
}

// mergeStr overwrites dst with src when src is non-empty.
func mergeStr(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

// merge merges src into dst, with src values taking precedence. Booleans
// only carry over when their Set tracker says they were configured.
func merge(dst, src *Config) *Config {
	mergeStr(&dst.EnvsDir, src.EnvsDir)
	mergeStr(&dst.ToolsDir, src.ToolsDir)
	mergeStr(&dst.UvCommand, src.UvCommand)

	if src.ShareEnvironmentsSet {
		dst.ShareEnvironments = src.ShareEnvironments
		dst.ShareEnvironmentsSet = true
	}
	if src.ContinueOnErrorSet {
		dst.ContinueOnError = src.ContinueOnError
		dst.ContinueOnErrorSet = true
	}
	if src.Verbose {
		dst.Verbose = true
	}

	return dst
}

// expandPaths resolves ~ in the configured directories.
func expandPaths(cfg *Config) {
	if expanded, err := homedir.Expand(cfg.EnvsDir); err == nil {
		cfg.EnvsDir = expanded
	}
	if expanded, err := homedir.Expand(cfg.ToolsDir); err == nil {
		cfg.ToolsDir = expanded
	}
}
