package cli

import (
	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var projectPath string

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "sheetwright",
	Version: Version,
	Short:   "Deterministic architectural sheet generation with drift-bounded modification",
	Long: `Sheetwright turns a structured design specification into a composed
architectural presentation sheet, then applies bounded modifications to it:
1. Generate a sheet from a specification, with a recorded seed.
2. Modify the sheet with a targeted change.
3. Validate that nothing else drifted; retry gently or refuse.`,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.PersistentFlags().StringVar(&projectPath, "project", "", "project root (defaults to the working directory)")
}
