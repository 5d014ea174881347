package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atelierworks/sheetwright/pkg/domain/artifact"
	"github.com/atelierworks/sheetwright/pkg/domain/drift"
)

var modifyCmd = &cobra.Command{
	Use:   "modify [change description]",
	Short: "Apply a bounded modification to an existing sheet",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		designID, _ := cmd.Flags().GetString("design")
		sheetID, _ := cmd.Flags().GetString("sheet")
		region, _ := cmd.Flags().GetString("region")
		toggles, _ := cmd.Flags().GetStringSlice("toggle")
		explain, _ := cmd.Flags().GetBool("explain")
		outputFormat, _ := cmd.Flags().GetString("output")

		req := artifact.ModificationRequest{
			DesignID:     designID,
			SheetID:      sheetID,
			TargetRegion: region,
		}
		if len(args) == 1 {
			req.Change = args[0]
		}
		for _, tg := range toggles {
			req.Toggles = append(req.Toggles, artifact.Toggle(tg))
		}
		if cmd.Flags().Changed("strength") {
			strength, _ := cmd.Flags().GetFloat64("strength")
			req.Strength = &strength
		}

		services, err := loadServices()
		if err != nil {
			return err
		}
		defer services.Close() //nolint:errcheck // shutdown path

		res, err := services.Modify.Modify(cmd.Context(), req)
		if err != nil {
			var exceeded *drift.ExceededError
			if explain && errors.As(err, &exceeded) {
				if text, explainErr := services.Explain.ExplainDrift(cmd.Context(), exceeded.Report); explainErr == nil {
					fmt.Println("\n--- Drift Analysis ---")
					fmt.Println(text)
					fmt.Println("----------------------")
				}
			}
			return MapError(err)
		}

		if outputFormat == "json" {
			data, _ := json.MarshalIndent(res, "", "  ")
			fmt.Println(string(data))
			return nil
		}

		fmt.Printf("Modified %s/%s -> v%d (attempt %d, strength %.2f)\n",
			res.Artifact.DesignID, res.Artifact.SheetID, res.Artifact.Version,
			res.Report.Attempt, res.Report.Strength)
		fmt.Printf("  canvas similarity: %.3f\n", res.Report.CanvasSimilarity)
		fmt.Printf("  image: %s\n", res.Artifact.ImageRef)
		return nil
	},
}

func init() {
	modifyCmd.Flags().String("design", "", "design identifier (required)")
	modifyCmd.Flags().String("sheet", "", "sheet identifier (required)")
	modifyCmd.Flags().String("region", "", "restrict the change to one panel, e.g. elevation-north")
	modifyCmd.Flags().StringSlice("toggle", nil, "predefined operation: swap-material, adjust-openings, relight, annotate, landscaping")
	modifyCmd.Flags().Float64("strength", 0, "modification strength hint in 0.0-1.0")
	modifyCmd.Flags().Bool("explain", false, "on refusal, ask the reasoning backend to explain the drift")
	modifyCmd.Flags().String("output", "text", "output format: text or json")
	_ = modifyCmd.MarkFlagRequired("design")
	_ = modifyCmd.MarkFlagRequired("sheet")
	RootCmd.AddCommand(modifyCmd)
}
