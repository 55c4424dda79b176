// Package tools holds the builtin tools shipped with the runner. Builtins
// run in-process through the dispatcher's fast path and exist mainly as
// working references for the toolkit contract; real tools are scripts in
// the tools directory with their own isolated environments.
package tools

import "github.com/boshu2/jackknife/pkg/toolkit"

// RegisterBuiltins adds the shipped builtin tools to the registry.
func RegisterBuiltins(r *toolkit.Registry) error {
	for _, t := range []*toolkit.Tool{exampleTool()} {
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}
