package toolkit

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// Kind is the value type of an argument.
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindInt
	KindFloat
)

// ArgSpec describes one command-line argument of a tool. The schema is
// explicit and ordered; positional specs are filled from leftover arguments
// in declaration order.
type ArgSpec struct {
	// Name is the argument name. Underscores become dashes in flag form.
	Name string
	// Help is the usage text.
	Help string
	// Kind selects the value type; KindBool implies a flag.
	Kind Kind
	// Default is the value used when the argument is absent. Its dynamic
	// type must match Kind. A positional with no default is required.
	Default any
	// Positional marks the spec as filled from non-flag arguments.
	Positional bool
	// Short is an optional one-letter flag alias.
	Short string
	// Choices restricts a string argument to an allowed set.
	Choices []string
	// Metavar overrides the display name in usage output.
	Metavar string
}

// flagName returns the spec's long flag form.
func (s ArgSpec) flagName() string {
	return strings.ReplaceAll(s.Name, "_", "-")
}

// Values holds the parsed, typed argument values keyed by spec name.
type Values struct {
	m map[string]any
}

// String returns the string value of the named argument.
func (v *Values) String(name string) string {
	if s, ok := v.m[name].(string); ok {
		return s
	}
	return ""
}

// Bool returns the boolean value of the named argument.
func (v *Values) Bool(name string) bool {
	b, _ := v.m[name].(bool)
	return b
}

// Int returns the integer value of the named argument.
func (v *Values) Int(name string) int {
	i, _ := v.m[name].(int)
	return i
}

// Float returns the float value of the named argument.
func (v *Values) Float(name string) float64 {
	f, _ := v.m[name].(float64)
	return f
}

// parseArgs builds a flag set from the tool's schema, parses argv, and
// fills positionals from the remaining arguments.
func parseArgs(t *Tool, argv []string) (*Values, error) {
	fs := pflag.NewFlagSet(t.Name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)

	flagPtrs := make(map[string]any)
	var positionals []ArgSpec

	for _, spec := range t.Args {
		if spec.Positional {
			positionals = append(positionals, spec)
			continue
		}
		switch spec.Kind {
		case KindBool:
			def, _ := spec.Default.(bool)
			flagPtrs[spec.Name] = fs.BoolP(spec.flagName(), spec.Short, def, spec.Help)
		case KindInt:
			def, _ := spec.Default.(int)
			flagPtrs[spec.Name] = fs.IntP(spec.flagName(), spec.Short, def, spec.Help)
		case KindFloat:
			def, _ := spec.Default.(float64)
			flagPtrs[spec.Name] = fs.Float64P(spec.flagName(), spec.Short, def, spec.Help)
		default:
			def, _ := spec.Default.(string)
			flagPtrs[spec.Name] = fs.StringP(spec.flagName(), spec.Short, def, spec.Help)
		}
	}

	if err := fs.Parse(argv); err != nil {
		return nil, err
	}

	values := &Values{m: make(map[string]any)}

	for _, spec := range t.Args {
		if spec.Positional {
			continue
		}
		switch ptr := flagPtrs[spec.Name].(type) {
		case *bool:
			values.m[spec.Name] = *ptr
		case *int:
			values.m[spec.Name] = *ptr
		case *float64:
			values.m[spec.Name] = *ptr
		case *string:
			if err := checkChoices(spec, *ptr); err != nil {
				return nil, err
			}
			values.m[spec.Name] = *ptr
		}
	}

	rest := fs.Args()
	for i, spec := range positionals {
		if i < len(rest) {
			val, err := convert(spec, rest[i])
			if err != nil {
				return nil, err
			}
			values.m[spec.Name] = val
			continue
		}
		if spec.Default == nil {
			return nil, fmt.Errorf("missing required argument %q", spec.Name)
		}
		values.m[spec.Name] = spec.Default
	}
	if len(rest) > len(positionals) {
		return nil, fmt.Errorf("unexpected argument %q", rest[len(positionals)])
	}

	return values, nil
}

// convert coerces a raw positional token to the spec's kind.
func convert(spec ArgSpec, raw string) (any, error) {
	switch spec.Kind {
	case KindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", spec.Name, err)
		}
		return b, nil
	case KindInt:
		i, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", spec.Name, err)
		}
		return i, nil
	case KindFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", spec.Name, err)
		}
		return f, nil
	default:
		if err := checkChoices(spec, raw); err != nil {
			return nil, err
		}
		return raw, nil
	}
}

// checkChoices validates a string value against the spec's allowed set.
func checkChoices(spec ArgSpec, val string) error {
	if len(spec.Choices) == 0 {
		return nil
	}
	for _, c := range spec.Choices {
		if val == c {
			return nil
		}
	}
	return fmt.Errorf("argument %q: invalid choice %q (allowed: %s)",
		spec.Name, val, strings.Join(spec.Choices, ", "))
}
