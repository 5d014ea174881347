package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/atelierworks/sheetwright/internal/infrastructure/watch"
	"github.com/atelierworks/sheetwright/pkg/application"
	"github.com/atelierworks/sheetwright/pkg/domain/layout"
)

var watchCmd = &cobra.Command{
	Use:   "watch <spec-file>",
	Short: "Regenerate the sheet whenever the specification file changes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		designID, _ := cmd.Flags().GetString("design")
		sheetID, _ := cmd.Flags().GetString("sheet")
		kind, _ := cmd.Flags().GetString("kind")
		debounceMs, _ := cmd.Flags().GetInt("debounce")

		services, err := loadServices()
		if err != nil {
			return err
		}
		defer services.Close() //nolint:errcheck // shutdown path

		regenerate := func(path string) {
			raw, err := readSpecFile(path)
			if err != nil {
				fmt.Printf("watch: %v\n", err)
				return
			}
			art, err := services.Generate.Generate(cmd.Context(), application.GenerateRequest{
				DesignID: designID,
				SheetID:  sheetID,
				Kind:     layout.SheetKind(kind),
				RawSpec:  raw,
			})
			if err != nil {
				fmt.Printf("watch: regeneration failed: %v\n", MapError(err))
				return
			}
			fmt.Printf("Regenerated %s/%s v%d (seed %d)\n", art.DesignID, art.SheetID, art.Version, art.Seed)
		}

		watcher, err := watch.NewSpecWatcher(args[0], time.Duration(debounceMs)*time.Millisecond, regenerate)
		if err != nil {
			return err
		}

		fmt.Printf("Watching %s (Ctrl+C to stop)\n", args[0])
		regenerate(args[0]) // initial run so the baseline matches the file
		return watcher.Run(cmd.Context())
	},
}

func init() {
	watchCmd.Flags().String("design", "", "design identifier (required)")
	watchCmd.Flags().String("sheet", "", "sheet identifier (required)")
	watchCmd.Flags().String("kind", string(layout.KindPresentation), "sheet kind: presentation, technical or site")
	watchCmd.Flags().Int("debounce", 500, "settle window in milliseconds before regenerating")
	_ = watchCmd.MarkFlagRequired("design")
	_ = watchCmd.MarkFlagRequired("sheet")
	RootCmd.AddCommand(watchCmd)
}
