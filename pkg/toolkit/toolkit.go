// Package toolkit is the contract between jackknife and builtin tools: a
// tool declares its name, an explicit ordered argument schema, and an entry
// point that receives parsed values and returns an exit code. The runner
// invokes matching builtins in-process instead of spawning an interpreter.
package toolkit

import (
	"context"
	"errors"
	"fmt"
)

// ExitError is the stop-with-code signal: a tool entry point returns it
// (directly or wrapped) to terminate with a specific exit code without that
// being treated as a runner fault.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit with code %d", e.Code)
}

// Exit returns an ExitError carrying the given code.
func Exit(code int) error { return &ExitError{Code: code} }

// Tool is one builtin tool: its identity, argument schema, and entry point.
type Tool struct {
	// Name is the tool's logical name as typed on the command line.
	Name string
	// Summary is a one-line description shown in tool listings.
	Summary string
	// Args is the ordered argument schema consumed by the parser builder.
	Args []ArgSpec
	// Run is the entry point. Arguments arrive parsed and typed; there is
	// no ambient argument vector to mutate or restore.
	Run func(ctx context.Context, args *Values) (int, error)
}

// Invoke parses argv against the tool's schema and runs the entry point.
// A schema violation yields exit code 2 (usage error) without invoking the
// tool. An ExitError from the entry point becomes the exit code; any other
// error propagates to the caller.
func (t *Tool) Invoke(ctx context.Context, argv []string) (int, error) {
	values, err := parseArgs(t, argv)
	if err != nil {
		return 2, fmt.Errorf("%s: %w", t.Name, err)
	}

	code, err := t.Run(ctx, values)
	if err != nil {
		var exit *ExitError
		if errors.As(err, &exit) {
			return exit.Code, nil
		}
		return code, err
	}
	return code, nil
}
