package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/boshu2/jackknife/internal/chain"
	"github.com/boshu2/jackknife/internal/config"
	"github.com/boshu2/jackknife/internal/dispatch"
	"github.com/boshu2/jackknife/internal/env"
	"github.com/boshu2/jackknife/internal/envcache"
	"github.com/boshu2/jackknife/internal/logging"
	"github.com/boshu2/jackknife/internal/tools"
	"github.com/boshu2/jackknife/internal/uv"
	"github.com/boshu2/jackknife/pkg/toolkit"
)

var (
	// Global flags
	continueOnError bool
	noShare         bool
	envsDir         string
	toolsDir        string
	verbose         bool
	cfgFile         string
)

// rootCmd represents the base command: running a tool or a chain of tools.
var rootCmd = &cobra.Command{
	Use:   "jackknife <tool_name | tool_chain> [tool_args...]",
	Short: "Run tools in isolated environments",
	Long: `jackknife runs named tool scripts inside isolated environments managed
by uv, creating, sharing, or reusing environments as needed.

Tool chain examples:
  jackknife tool1,tool2,tool3
  jackknife "tool1[--arg1 val1],tool2[--arg2 val2]"`,
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		syncConfigFlagToEnv()
	},
}

// exitError carries a tool's exit code through cobra without re-reporting.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return 0
	}
	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	return 1
}

func init() {
	// Tool arguments pass through untouched: flag parsing stops at the
	// first positional argument.
	rootCmd.Flags().SetInterspersed(false)

	// Assigned here rather than in the literal to avoid an initialization
	// cycle (runRoot -> loadConfig -> rootCmd).
	rootCmd.RunE = runRoot

	rootCmd.PersistentFlags().BoolVar(&continueOnError, "continue-on-error", false,
		"Continue executing tools in a chain even if previous tools fail")
	rootCmd.PersistentFlags().BoolVar(&noShare, "no-share-environments", false,
		"Disable environment sharing between compatible tools")
	rootCmd.PersistentFlags().StringVar(&envsDir, "envs-dir", "",
		"Base directory for tool environments (default: ~/.jackknife_envs)")
	rootCmd.PersistentFlags().StringVar(&toolsDir, "tools-dir", "",
		"Directory holding tool scripts (default: ./tools)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"Config file (default: .jackknife/config.yaml)")
}

func syncConfigFlagToEnv() {
	if cfgFile != "" {
		_ = os.Setenv("JACKKNIFE_CONFIG", cfgFile)
	}
}

// loadConfig resolves the effective configuration from flags, environment,
// and config files.
func loadConfig() (*config.Config, error) {
	overrides := &config.Config{
		EnvsDir:  envsDir,
		ToolsDir: toolsDir,
		Verbose:  verbose,
	}
	flags := rootCmd.PersistentFlags()
	if flags.Changed("no-share-environments") && noShare {
		overrides.ShareEnvironments = false
		overrides.ShareEnvironmentsSet = true
	}
	if flags.Changed("continue-on-error") {
		overrides.ContinueOnError = continueOnError
		overrides.ContinueOnErrorSet = true
	}
	return config.Load(overrides)
}

// newDispatcher wires the runner: uv client, caches, resolver, provisioner,
// builtin registry, and the dispatcher on top. Missing uv is fatal here,
// before any tool runs.
func newDispatcher(cfg *config.Config, log zerolog.Logger) (*dispatch.Dispatcher, error) {
	uvClient, err := uv.Find(cfg.UvCommand)
	if err != nil {
		return nil, fmt.Errorf("%w\njackknife requires 'uv' for environment management. Install it first:\n"+
			"  Linux/macOS: curl -LsSf https://astral.sh/uv/install.sh | sh\n"+
			"  Windows: powershell -c \"irm https://astral.sh/uv/install.ps1 | iex\"\n"+
			"  See: https://github.com/astral-sh/uv", err)
	}

	cache := envcache.New(uvClient, log)
	resolver := &env.Resolver{
		EnvsDir: cfg.EnvsDir,
		Cache:   cache,
		Share:   cfg.ShareEnvironments,
		Log:     log,
	}
	provisioner := &env.Provisioner{
		EnvsDir:  cfg.EnvsDir,
		Manager:  uvClient,
		Cache:    cache,
		Resolver: resolver,
		Progress: isatty.IsTerminal(os.Stderr.Fd()) && !cfg.Verbose,
		Log:      log,
	}

	builtins := toolkit.NewRegistry()
	if err := tools.RegisterBuiltins(builtins); err != nil {
		return nil, err
	}

	return &dispatch.Dispatcher{
		ToolsDir: cfg.ToolsDir,
		Builtins: builtins,
		Provider: provisioner,
		Log:      log,
	}, nil
}

func runRoot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logging.Init(cfg.Verbose)

	dispatcher, err := newDispatcher(cfg, log)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if chain.IsChain(args[0]) {
		if len(args) > 1 {
			log.Warn().Msg("additional arguments are ignored in chain mode; " +
				"use tool1[arg1 arg2],tool2[arg3 arg4] syntax instead")
		}
		plan := chain.Parse(args[0])
		log.Info().Int("tools", len(plan)).Msg("starting chain execution")

		executor := &chain.Executor{
			Runner:          dispatcher,
			ContinueOnError: cfg.ContinueOnError,
			Log:             log,
		}
		code := executor.Execute(ctx, plan)
		log.Info().Int("code", code).Msg("chain finished")
		if code != 0 {
			return &exitError{code: code}
		}
		return nil
	}

	res, err := dispatcher.Run(ctx, dispatch.Invocation{Name: args[0], Args: args[1:]})
	if err != nil {
		log.Error().Err(err).Str("tool", args[0]).Msg("tool run failed")
	}
	log.Info().Str("tool", args[0]).Str("path", string(res.Path)).Int("code", res.Code).
		Msg("tool finished")
	if res.Code != 0 {
		return &exitError{code: res.Code}
	}
	return nil
}
