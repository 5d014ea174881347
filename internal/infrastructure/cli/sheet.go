package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atelierworks/sheetwright/pkg/domain"
)

var sheetCmd = &cobra.Command{
	Use:   "sheet",
	Short: "Inspect stored sheet versions",
}

var sheetShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a stored sheet version (latest by default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		designID, _ := cmd.Flags().GetString("design")
		sheetID, _ := cmd.Flags().GetString("sheet")
		outputFormat, _ := cmd.Flags().GetString("output")

		services, err := loadServices()
		if err != nil {
			return err
		}
		defer services.Close() //nolint:errcheck // shutdown path

		ctx := cmd.Context()
		art, err := services.Repo.Get(ctx, designID, sheetID)
		if cmd.Flags().Changed("version") {
			version, _ := cmd.Flags().GetInt("version")
			art, err = services.Repo.GetVersion(ctx, designID, sheetID, version)
		}
		if err != nil {
			return MapError(err)
		}
		if art == nil {
			return MapError(fmt.Errorf("%w: design %s sheet %s", domain.ErrBaselineNotFound, designID, sheetID))
		}

		if outputFormat == "json" {
			data, _ := json.MarshalIndent(art, "", "  ")
			fmt.Println(string(data))
			return nil
		}

		fmt.Printf("%s/%s v%d\n", art.DesignID, art.SheetID, art.Version)
		fmt.Printf("  kind:      %s\n", art.Layout.Kind)
		fmt.Printf("  seed:      %d\n", art.Seed)
		fmt.Printf("  image:     %s\n", art.ImageRef)
		fmt.Printf("  spec hash: %s\n", art.SpecHash)
		fmt.Printf("  captured:  %s\n", art.CapturedAt.Format("2006-01-02 15:04:05"))
		return nil
	},
}

var sheetVersionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "List all stored versions of a sheet",
	RunE: func(cmd *cobra.Command, args []string) error {
		designID, _ := cmd.Flags().GetString("design")
		sheetID, _ := cmd.Flags().GetString("sheet")

		services, err := loadServices()
		if err != nil {
			return err
		}
		defer services.Close() //nolint:errcheck // shutdown path

		versions, err := services.Repo.ListVersions(cmd.Context(), designID, sheetID)
		if err != nil {
			return MapError(err)
		}
		if len(versions) == 0 {
			return MapError(fmt.Errorf("%w: design %s sheet %s", domain.ErrBaselineNotFound, designID, sheetID))
		}

		for _, art := range versions {
			fmt.Printf("v%d  seed %d  %s  %s\n", art.Version, art.Seed,
				art.CapturedAt.Format("2006-01-02 15:04"), art.ImageRef)
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{sheetShowCmd, sheetVersionsCmd} {
		c.Flags().String("design", "", "design identifier (required)")
		c.Flags().String("sheet", "", "sheet identifier (required)")
		_ = c.MarkFlagRequired("design")
		_ = c.MarkFlagRequired("sheet")
	}
	sheetShowCmd.Flags().Int("version", 0, "specific version to show")
	sheetShowCmd.Flags().String("output", "text", "output format: text or json")
	sheetCmd.AddCommand(sheetShowCmd)
	sheetCmd.AddCommand(sheetVersionsCmd)
	RootCmd.AddCommand(sheetCmd)
}
