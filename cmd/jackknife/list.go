package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/boshu2/jackknife/internal/logging"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available tools",
	Long: `List every runnable tool: builtins plus scripts found in the tools
directory. Builtins shadow scripts with the same name.`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logging.Init(cfg.Verbose)

	dispatcher, err := newDispatcher(cfg, log)
	if err != nil {
		return err
	}

	names := dispatcher.Available()
	if len(names) == 0 {
		fmt.Printf("No tools found in %s\n", cfg.ToolsDir)
		return nil
	}
	fmt.Println("Available tools:")
	for _, name := range names {
		fmt.Printf("  %s\n", name)
	}
	return nil
}
