package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/boshu2/jackknife/internal/config"
	"github.com/boshu2/jackknife/internal/env"
	"github.com/boshu2/jackknife/internal/uv"
)

var doctorJSON bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check jackknife health",
	Long: `Run health checks on the jackknife installation.

Validates that uv is installed, the tools directory exists, and every
environment under the environments directory has a working interpreter.

Examples:
  jackknife doctor
  jackknife doctor --json`,
	RunE: runDoctor,
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "Output results as JSON")
	rootCmd.AddCommand(doctorCmd)
}

type doctorCheck struct {
	Name     string `json:"name"`
	Status   string `json:"status"` // "pass", "warn", "fail"
	Detail   string `json:"detail"`
	Required bool   `json:"required"`
}

type doctorOutput struct {
	Checks  []doctorCheck `json:"checks"`
	Result  string        `json:"result"` // "HEALTHY", "DEGRADED", "UNHEALTHY"
	Summary string        `json:"summary"`
}

func gatherDoctorChecks(cfg *config.Config) []doctorCheck {
	checks := []doctorCheck{
		{Name: "jackknife CLI", Status: "pass", Detail: fmt.Sprintf("v%s", version), Required: true},
		checkUv(cfg),
		checkToolsDir(cfg),
	}
	return append(checks, checkEnvironments(cfg)...)
}

func checkUv(cfg *config.Config) doctorCheck {
	client, err := uv.Find(cfg.UvCommand)
	if err != nil {
		return doctorCheck{
			Name: "uv", Status: "fail", Required: true,
			Detail: "not found on PATH; see https://github.com/astral-sh/uv",
		}
	}
	return doctorCheck{Name: "uv", Status: "pass", Detail: client.Bin, Required: true}
}

func checkToolsDir(cfg *config.Config) doctorCheck {
	info, err := os.Stat(cfg.ToolsDir)
	if err != nil || !info.IsDir() {
		return doctorCheck{
			Name: "tools directory", Status: "warn", Required: false,
			Detail: fmt.Sprintf("%s missing; only builtins are runnable", cfg.ToolsDir),
		}
	}
	return doctorCheck{Name: "tools directory", Status: "pass", Detail: cfg.ToolsDir, Required: false}
}

// checkEnvironments reports one check per entry in the environments
// directory, in name order.
func checkEnvironments(cfg *config.Config) []doctorCheck {
	entries, err := os.ReadDir(cfg.EnvsDir)
	if err != nil {
		return []doctorCheck{{
			Name: "environments", Status: "warn", Required: false,
			Detail: fmt.Sprintf("%s missing; environments are created on first run", cfg.EnvsDir),
		}}
	}

	var checks []doctorCheck
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, entry := range entries {
		if !entry.IsDir() && entry.Type()&os.ModeSymlink == 0 {
			continue
		}
		e := env.At(cfg.EnvsDir, entry.Name())
		check := doctorCheck{Name: fmt.Sprintf("env %s", e.Name), Required: false}
		switch {
		case !e.Exists():
			check.Status = "fail"
			check.Detail = fmt.Sprintf("interpreter missing at %s", e.Interpreter())
		case e.Linked():
			target, _ := os.Readlink(filepath.Join(cfg.EnvsDir, e.Name))
			check.Status = "pass"
			check.Detail = fmt.Sprintf("shared -> %s", target)
		default:
			check.Status = "pass"
			check.Detail = "primary"
		}
		checks = append(checks, check)
	}
	if len(checks) == 0 {
		checks = append(checks, doctorCheck{
			Name: "environments", Status: "pass", Required: false,
			Detail: "none yet; environments are created on first run",
		})
	}
	return checks
}

func doctorStatusIcon(status string) string {
	switch status {
	case "pass":
		return "✓"
	case "warn":
		return "!"
	case "fail":
		return "✗"
	}
	return "?"
}

func summarizeDoctor(checks []doctorCheck) (result, summary string) {
	var warns, fails int
	for _, c := range checks {
		switch c.Status {
		case "warn":
			warns++
		case "fail":
			fails++
		}
	}
	switch {
	case fails > 0:
		return "UNHEALTHY", fmt.Sprintf("%d check(s) failed", fails)
	case warns > 0:
		return "DEGRADED", fmt.Sprintf("%d warning(s)", warns)
	}
	return "HEALTHY", "all checks passed"
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	checks := gatherDoctorChecks(cfg)
	result, summary := summarizeDoctor(checks)

	if doctorJSON {
		out := doctorOutput{Checks: checks, Result: result, Summary: summary}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return err
		}
	} else {
		for _, c := range checks {
			fmt.Printf("%s %s: %s\n", doctorStatusIcon(c.Status), c.Name, c.Detail)
		}
		fmt.Printf("\n%s: %s\n", result, summary)
	}

	if result == "UNHEALTHY" {
		return &exitError{code: 1}
	}
	return nil
}
