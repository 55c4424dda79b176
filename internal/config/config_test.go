package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if !strings.HasSuffix(cfg.EnvsDir, ".jackknife_envs") {
		t.Errorf("Default EnvsDir = %q, want ~/.jackknife_envs", cfg.EnvsDir)
	}
	if cfg.ToolsDir != "tools" {
		t.Errorf("Default ToolsDir = %q, want %q", cfg.ToolsDir, "tools")
	}
	if cfg.UvCommand != "uv" {
		t.Errorf("Default UvCommand = %q, want %q", cfg.UvCommand, "uv")
	}
	if !cfg.ShareEnvironments {
		t.Error("Default ShareEnvironments = false, want true")
	}
	if cfg.ContinueOnError {
		t.Error("Default ContinueOnError = true, want false")
	}
	if cfg.Verbose {
		t.Error("Default Verbose = true, want false")
	}
}

func TestMerge(t *testing.T) {
	dst := Default()
	src := &Config{
		EnvsDir:  "/custom/envs",
		ToolsDir: "/custom/tools",
	}

	result := merge(dst, src)

	if result.EnvsDir != "/custom/envs" {
		t.Errorf("merge EnvsDir = %q, want %q", result.EnvsDir, "/custom/envs")
	}
	if result.ToolsDir != "/custom/tools" {
		t.Errorf("merge ToolsDir = %q, want %q", result.ToolsDir, "/custom/tools")
	}
	// Defaults should be preserved when not overridden.
	if result.UvCommand != "uv" {
		t.Errorf("merge preserved UvCommand = %q, want %q", result.UvCommand, "uv")
	}
	if !result.ShareEnvironments {
		t.Error("merge should preserve default ShareEnvironments")
	}
}

func TestMerge_BooleanExplicitFalse(t *testing.T) {
	dst := Default()
	if !dst.ShareEnvironments {
		t.Fatal("precondition: default ShareEnvironments should be true")
	}

	src := &Config{
		ShareEnvironments:    false,
		ShareEnvironmentsSet: true,
	}
	result := merge(dst, src)

	if result.ShareEnvironments {
		t.Error("merge should honor explicit ShareEnvironments=false")
	}
	if !result.ShareEnvironmentsSet {
		t.Error("merge should carry the Set tracker")
	}
}

func TestMerge_BooleanNotSetKeepsDefault(t *testing.T) {
	dst := Default()
	src := &Config{EnvsDir: "/elsewhere"}

	if result := merge(dst, src); !result.ShareEnvironments {
		t.Error("unset boolean must not clobber the default")
	}
}

func TestLoadFromPath_ExplicitFalse(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := "envs_dir: /data/envs\nshare_environments: false\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadFromPath(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.EnvsDir != "/data/envs" {
		t.Errorf("EnvsDir = %q, want %q", cfg.EnvsDir, "/data/envs")
	}
	if cfg.ShareEnvironments || !cfg.ShareEnvironmentsSet {
		t.Error("explicit false should decode with its Set tracker")
	}
	if cfg.ContinueOnErrorSet {
		t.Error("absent boolean must not be marked as set")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("JACKKNIFE_ENVS_DIR", "/env/override")
	t.Setenv("JACKKNIFE_SHARE_ENVIRONMENTS", "no")
	t.Setenv("JACKKNIFE_CONTINUE_ON_ERROR", "1")
	t.Setenv("JACKKNIFE_UV", "uv-nightly")

	cfg := applyEnv(Default())

	if cfg.EnvsDir != "/env/override" {
		t.Errorf("EnvsDir = %q, want %q", cfg.EnvsDir, "/env/override")
	}
	if cfg.ShareEnvironments {
		t.Error("JACKKNIFE_SHARE_ENVIRONMENTS=no should disable sharing")
	}
	if !cfg.ContinueOnError {
		t.Error("JACKKNIFE_CONTINUE_ON_ERROR=1 should enable continue-on-error")
	}
	if cfg.UvCommand != "uv-nightly" {
		t.Errorf("UvCommand = %q, want %q", cfg.UvCommand, "uv-nightly")
	}
}

func TestTruthy(t *testing.T) {
	for _, v := range []string{"true", "1", "yes", "TRUE", "Yes"} {
		if !truthy(v) {
			t.Errorf("truthy(%q) = false, want true", v)
		}
	}
	for _, v := range []string{"false", "0", "no", "", "anything"} {
		if truthy(v) {
			t.Errorf("truthy(%q) = true, want false", v)
		}
	}
}

func TestLoad_FlagOverridesBeatEnv(t *testing.T) {
	t.Setenv("JACKKNIFE_ENVS_DIR", "/from/env")
	t.Setenv("JACKKNIFE_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))

	flags := &Config{EnvsDir: "/from/flag"}
	cfg, err := Load(flags)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.EnvsDir != "/from/flag" {
		t.Errorf("EnvsDir = %q, want flag value", cfg.EnvsDir)
	}
}

func TestExpandPaths(t *testing.T) {
	cfg := &Config{EnvsDir: "~/envs", ToolsDir: "tools"}
	expandPaths(cfg)

	if strings.HasPrefix(cfg.EnvsDir, "~") {
		t.Errorf("EnvsDir = %q, want ~ expanded", cfg.EnvsDir)
	}
	if cfg.ToolsDir != "tools" {
		t.Errorf("ToolsDir = %q, want unchanged", cfg.ToolsDir)
	}
}
