// Package chain parses composite invocation strings like
// "tool1[--fast],tool2[--name \"John Doe\"],tool3" into ordered tool
// invocations and executes them sequentially under one exit-code policy.
package chain

import (
	"context"
	"strings"

	"github.com/google/shlex"
	"github.com/rs/zerolog"

	"github.com/boshu2/jackknife/internal/dispatch"
)

// IsChain reports whether a command-line tool argument denotes a chain
// rather than a single tool name.
func IsChain(arg string) bool {
	return strings.Contains(arg, ",")
}

// Parse splits a chain argument into tool invocations. Commas separate
// entries except inside a bracket pair; a bracketed suffix holds the entry's
// argument list, split quote-aware with a naive whitespace fallback.
func Parse(arg string) []dispatch.Invocation {
	var parts []string
	var current strings.Builder
	inBrackets := false

	for _, ch := range arg {
		switch {
		case ch == '[':
			inBrackets = true
			current.WriteRune(ch)
		case ch == ']':
			inBrackets = false
			current.WriteRune(ch)
		case ch == ',' && !inBrackets:
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(ch)
		}
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}

	invocations := make([]dispatch.Invocation, 0, len(parts))
	for _, part := range parts {
		if idx := strings.Index(part, "["); idx >= 0 && strings.HasSuffix(part, "]") {
			name := strings.TrimSpace(part[:idx])
			argsStr := part[idx+1 : len(part)-1]
			invocations = append(invocations, dispatch.Invocation{
				Name: name,
				Args: splitArgs(argsStr),
			})
			continue
		}
		invocations = append(invocations, dispatch.Invocation{Name: strings.TrimSpace(part)})
	}

	return invocations
}

// splitArgs splits a bracketed argument list into tokens, honoring quotes.
// On a parse failure (e.g. an unterminated quote) it falls back to naive
// whitespace splitting rather than rejecting the chain.
func splitArgs(s string) []string {
	tokens, err := shlex.Split(s)
	if err != nil {
		return strings.Fields(s)
	}
	return tokens
}

// Runner executes one invocation. Implemented by the dispatcher.
type Runner interface {
	Run(ctx context.Context, inv dispatch.Invocation) (dispatch.Result, error)
}

// Executor runs chain entries strictly in order under the configured
// partial-failure policy.
type Executor struct {
	Runner Runner
	// ContinueOnError keeps executing after a failing entry. The overall
	// result is then the last non-zero code observed.
	ContinueOnError bool

	Log zerolog.Logger
}

// Execute runs the plan and returns the overall exit code: zero if every
// entry succeeded, the failing entry's code when stopping on error, or the
// last non-zero code when continuing on error.
func (e *Executor) Execute(ctx context.Context, plan []dispatch.Invocation) int {
	final := 0

	for i, inv := range plan {
		e.Log.Info().
			Int("step", i+1).
			Int("total", len(plan)).
			Str("tool", inv.Name).
			Msg("running chain entry")

		res, err := e.Runner.Run(ctx, inv)
		if err != nil {
			e.Log.Error().Err(err).Str("tool", inv.Name).Msg("chain entry failed")
		}

		code := res.Code
		if code == 0 && err != nil {
			code = dispatch.ExitFailure
		}
		if code != 0 {
			final = code
			if !e.ContinueOnError {
				e.Log.Error().Str("tool", inv.Name).Int("code", code).
					Msg("chain stopped on error")
				break
			}
		}
	}

	return final
}
