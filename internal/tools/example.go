package tools

import (
	"context"
	"fmt"

	"github.com/boshu2/jackknife/pkg/toolkit"
)

// exampleTool demonstrates the toolkit argument schema: a required
// positional, an optional value, a short-aliased flag, a choice-restricted
// mode, and an integer count. It processes nothing real.
func exampleTool() *toolkit.Tool {
	return &toolkit.Tool{
		Name:    "example",
		Summary: "Demonstrates the builtin tool argument schema",
		Args: []toolkit.ArgSpec{
			{Name: "input_file", Help: "Path to the input file to process", Positional: true},
			{Name: "output_file", Help: "Path to save the output", Default: ""},
			{Name: "verbose", Help: "Enable verbose output", Kind: toolkit.KindBool, Short: "v", Default: false},
			{Name: "mode", Help: "Processing mode", Default: "normal",
				Choices: []string{"fast", "normal", "thorough"}},
			{Name: "count", Help: "Number of times to process", Kind: toolkit.KindInt, Default: 1},
		},
		Run: runExample,
	}
}

func runExample(ctx context.Context, args *toolkit.Values) (int, error) {
	fmt.Printf("Processing %s\n", args.String("input_file"))

	if out := args.String("output_file"); out != "" {
		fmt.Printf("Output will be saved to: %s\n", out)
	} else {
		fmt.Println("No output file specified, results will be printed to stdout")
	}

	verbose := args.Bool("verbose")
	mode := args.String("mode")
	count := args.Int("count")
	if verbose {
		fmt.Println("Verbose mode enabled")
		fmt.Printf("Using mode: %s\n", mode)
		fmt.Printf("Processing count: %d\n", count)
	}

	fmt.Printf("Processing in %s mode...\n", mode)
	for i := 0; i < count; i++ {
		if verbose {
			fmt.Printf("Processing iteration %d/%d\n", i+1, count)
		}
	}

	fmt.Println("Processing complete!")
	return 0, nil
}
