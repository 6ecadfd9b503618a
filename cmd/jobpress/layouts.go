package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var layoutsCmd = &cobra.Command{
	Use:   "layouts",
	Short: "List available layouts",
	Long:  "Prints a table of built-in and configured layouts with their schemas.",
	Args:  cobra.NoArgs,
	RunE:  runLayouts,
}

func init() {
	rootCmd.AddCommand(layoutsCmd)
}

func runLayouts(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug, os.Stderr)
	cfg, err := loadConfig(cfgPath, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	layouts, err := buildLayouts(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load layouts: %v\n", err)
		os.Exit(1)
	}

	names := make([]string, 0, len(layouts))
	for name := range layouts {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Printf("%-15s %-20s %-8s %s\n", "Layout", "Schema", "Version", "Fields")
	fmt.Println(strings.Repeat("─", 52))
	for _, name := range names {
		l := layouts[name]
		marker := ""
		if name == cfg.Output.Layout {
			marker = " (default)"
		}
		fmt.Printf("%-15s %-20s %-8d %d%s\n", name, l.Schema.Name, l.Schema.Version, len(l.Schema.Fields), marker)
	}

	fmt.Printf("\nTotal: %d layouts\n", len(layouts))
	return nil
}
