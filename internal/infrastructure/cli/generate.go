package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/atelierworks/sheetwright/pkg/application"
	"github.com/atelierworks/sheetwright/pkg/domain/layout"
)

var generateCmd = &cobra.Command{
	Use:   "generate <spec-file>",
	Short: "Generate a sheet from a design specification",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		designID, _ := cmd.Flags().GetString("design")
		sheetID, _ := cmd.Flags().GetString("sheet")
		kind, _ := cmd.Flags().GetString("kind")
		outputFormat, _ := cmd.Flags().GetString("output")

		raw, err := readSpecFile(args[0])
		if err != nil {
			return err
		}

		services, err := loadServices()
		if err != nil {
			return err
		}
		defer services.Close() //nolint:errcheck // shutdown path

		req := application.GenerateRequest{
			DesignID: designID,
			SheetID:  sheetID,
			Kind:     layout.SheetKind(kind),
			RawSpec:  raw,
		}
		if cmd.Flags().Changed("seed") {
			seed, _ := cmd.Flags().GetInt64("seed")
			req.Seed = &seed
		}

		art, err := services.Generate.Generate(cmd.Context(), req)
		if err != nil {
			return MapError(err)
		}

		if outputFormat == "json" {
			data, _ := json.MarshalIndent(art, "", "  ")
			fmt.Println(string(data))
			return nil
		}

		fmt.Printf("Generated %s/%s v%d (seed %d)\n", art.DesignID, art.SheetID, art.Version, art.Seed)
		fmt.Printf("  image: %s\n", art.ImageRef)
		return nil
	},
}

func readSpecFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read specification file: %w", err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse specification file: %w", err)
	}
	return raw, nil
}

func init() {
	generateCmd.Flags().String("design", "", "design identifier (required)")
	generateCmd.Flags().String("sheet", "", "sheet identifier (required)")
	generateCmd.Flags().String("kind", string(layout.KindPresentation), "sheet kind: presentation, technical or site")
	generateCmd.Flags().Int64("seed", 0, "seed for reproducible generation (drawn automatically when omitted)")
	generateCmd.Flags().String("output", "text", "output format: text or json")
	_ = generateCmd.MarkFlagRequired("design")
	_ = generateCmd.MarkFlagRequired("sheet")
	RootCmd.AddCommand(generateCmd)
}
