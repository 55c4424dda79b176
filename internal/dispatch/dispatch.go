// Package dispatch decides how a requested tool is ultimately invoked: a
// builtin registered in the toolkit registry runs in-process (the fast
// path), anything else resolves to a script in the tools directory and is
// spawned as a subprocess under its environment's interpreter. Capability
// detection is an explicit tagged result, matched on kind.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/boshu2/jackknife/internal/env"
	"github.com/boshu2/jackknife/pkg/toolkit"
)

// Exit codes surfaced by the dispatcher.
const (
	// ExitFailure is the generic failure code.
	ExitFailure = 1
	// ExitUsage is returned for argument schema violations.
	ExitUsage = 2
	// ExitInterrupt is returned when a user interrupt ends the invocation.
	ExitInterrupt = 130
)

// ErrToolNotFound is returned when a name matches neither a builtin nor a
// script in the tools directory.
var ErrToolNotFound = errors.New("tool not found")

// Invocation is one requested tool run: a name plus its argument vector.
type Invocation struct {
	Name string
	Args []string
}

// PathKind records which dispatch path handled an invocation.
type PathKind string

const (
	PathInProcess  PathKind = "in-process"
	PathSubprocess PathKind = "subprocess"
	PathNone       PathKind = ""
)

// Result is the outcome of one invocation: the exit code and the path that
// produced it.
type Result struct {
	Code int
	Path PathKind
}

// CapabilityKind tags what a tool name resolved to.
type CapabilityKind int

const (
	CapNotFound CapabilityKind = iota
	CapBuiltin
	CapScript
)

// Capability is the tagged result of capability detection. Exactly one of
// Builtin and Script is meaningful, selected by Kind.
type Capability struct {
	Kind    CapabilityKind
	Builtin *toolkit.Tool
	Script  string
}

// Provider ensures a tool's environment exists and is usable. Implemented
// by the env provisioner.
type Provider interface {
	Ensure(toolName, scriptPath string) (env.Environment, error)
}

// Seams for tests.
var (
	execCommand     = exec.Command
	notifyInterrupt = func() (<-chan os.Signal, func()) {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt)
		return ch, func() { signal.Stop(ch) }
	}
)

// Dispatcher resolves tool names and runs them.
type Dispatcher struct {
	// ToolsDir holds the tool scripts.
	ToolsDir string
	// Builtins are the in-process tools.
	Builtins *toolkit.Registry
	// Provider provisions environments for script tools.
	Provider Provider

	Log zerolog.Logger
}

// Detect resolves a tool name to its capability. Builtins shadow scripts of
// the same name.
func (d *Dispatcher) Detect(name string) Capability {
	if d.Builtins != nil {
		if t, ok := d.Builtins.Get(name); ok {
			return Capability{Kind: CapBuiltin, Builtin: t}
		}
	}

	script := filepath.Join(d.ToolsDir, name+".py")
	if info, err := os.Stat(script); err == nil && info.Mode().IsRegular() {
		return Capability{Kind: CapScript, Script: script}
	}

	return Capability{Kind: CapNotFound}
}

// Available lists every runnable tool name: registered builtins plus script
// stems found in the tools directory.
func (d *Dispatcher) Available() []string {
	seen := make(map[string]struct{})
	var names []string
	add := func(name string) {
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}

	if d.Builtins != nil {
		for _, name := range d.Builtins.Names() {
			add(name)
		}
	}
	entries, err := os.ReadDir(d.ToolsDir)
	if err == nil {
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || !strings.HasSuffix(name, ".py") {
				continue
			}
			stem := strings.TrimSuffix(name, ".py")
			if stem == "__init__" {
				continue
			}
			add(stem)
		}
	}

	sort.Strings(names)
	return names
}

// Run executes one invocation and reports its exit code plus the dispatch
// path taken. Provisioning failures are fatal to this invocation only; the
// error carries the detail while Result.Code carries the exit code.
func (d *Dispatcher) Run(ctx context.Context, inv Invocation) (Result, error) {
	capability := d.Detect(inv.Name)

	switch capability.Kind {
	case CapBuiltin:
		d.Log.Debug().Str("tool", inv.Name).Msg("running builtin in-process")
		return Result{Code: d.runBuiltin(ctx, capability.Builtin, inv.Args), Path: PathInProcess}, nil

	case CapScript:
		environment, err := d.Provider.Ensure(inv.Name, capability.Script)
		if err != nil {
			return Result{Code: ExitFailure, Path: PathSubprocess},
				fmt.Errorf("preparing environment for %q: %w", inv.Name, err)
		}
		d.Log.Debug().Str("tool", inv.Name).Str("interpreter", environment.Interpreter()).
			Msg("running script as subprocess")
		return Result{Code: d.runScript(environment.Interpreter(), capability.Script, inv.Args), Path: PathSubprocess}, nil

	default:
		return Result{Code: ExitFailure, Path: PathNone},
			fmt.Errorf("%w: %q (available: %s)", ErrToolNotFound, inv.Name,
				strings.Join(d.Available(), ", "))
	}
}

// runBuiltin invokes a registered entry point in-process. Arguments are
// passed explicitly to the entry point; nothing ambient is mutated, so
// sibling invocations in a chain are unaffected. An interrupt observed
// during the call cancels the entry point's context and yields
// ExitInterrupt; context-aware builtins stop instead of running on behind
// a later chain entry.
func (d *Dispatcher) runBuiltin(ctx context.Context, t *toolkit.Tool, args []string) int {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigc, stop := notifyInterrupt()
	defer stop()

	type outcome struct {
		code int
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		code, err := t.Invoke(ctx, args)
		done <- outcome{code: code, err: err}
	}()

	select {
	case <-sigc:
		d.Log.Warn().Str("tool", t.Name).Msg("interrupted")
		return ExitInterrupt
	case out := <-done:
		if out.err != nil {
			d.Log.Error().Err(out.err).Str("tool", t.Name).Msg("tool failed")
			if out.code == 0 {
				return ExitFailure
			}
		}
		return out.code
	}
}

// runScript spawns the resolved interpreter on the script, inheriting the
// standard streams, and waits for completion with no timeout.
func (d *Dispatcher) runScript(interpreter, script string, args []string) int {
	cmd := execCommand(interpreter, append([]string{script}, args...)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	sigc, stop := notifyInterrupt()
	defer stop()

	if err := cmd.Start(); err != nil {
		d.Log.Error().Err(err).Str("interpreter", interpreter).Msg("could not start tool")
		return ExitFailure
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	interrupted := false
	for {
		select {
		case <-sigc:
			// The subprocess receives its own SIGINT from the terminal;
			// remember the interrupt and keep waiting for it to exit.
			interrupted = true
		case err := <-done:
			if interrupted {
				return ExitInterrupt
			}
			return exitCodeFromWait(err)
		}
	}
}

// exitCodeFromWait maps a Wait error to an exit code. Signal terminations
// report no code and degrade to the generic failure code.
func exitCodeFromWait(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code >= 0 {
			return code
		}
	}
	return ExitFailure
}
