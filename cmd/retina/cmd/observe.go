package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/retina/internal/agent"
	"github.com/MeKo-Tech/retina/internal/utils"
)

// observeResult is the per-image output of the observe command.
type observeResult struct {
	Input         string        `json:"input"`
	Steps         []observeStep `json:"steps"`
	Probabilities [][]float32   `json:"probabilities,omitempty"`
	Prediction    int           `json:"prediction"`
}

type observeStep struct {
	Step       int        `json:"step"`
	Location   [2]float64 `json:"location"`
	PatchSizes []int      `json:"patch_sizes"`
}

// observeCmd represents the observe command.
var observeCmd = &cobra.Command{
	Use:   "observe",
	Short: "Run the forward attention loop on images",
	Long: `Run the recurrent attention loop on one or more images: at each step
the location policy picks a focus point, the sensor extracts a glimpse and
the forward networks fold it into the running state. The action head
reports class probabilities after the final step.

The networks use deterministic seeded initialization, so repeated runs on
the same input produce identical output.

Examples:
  retina observe digit.png
  retina observe digit.png --steps 8 --policy random
  retina observe *.png --format text`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("no input files provided")
		}

		cfg := GetConfig()
		if cmd.Flags().Changed("steps") {
			cfg.Agent.Steps, _ = cmd.Flags().GetInt("steps")
		}
		if cmd.Flags().Changed("policy") {
			cfg.Agent.Policy, _ = cmd.Flags().GetString("policy")
		}
		if cmd.Flags().Changed("seed") {
			cfg.Network.Seed, _ = cmd.Flags().GetInt64("seed")
		}
		format := cfg.Output.Format
		if cmd.Flags().Changed("format") {
			format, _ = cmd.Flags().GetString("format")
		}

		ag, err := agent.FromConfig(cfg, 1)
		if err != nil {
			return err
		}

		results := make([]observeResult, 0, len(args))
		for _, path := range args {
			img, _, err := utils.LoadImage(path)
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", path, err)
			}
			batch, err := utils.ToImageBatch([]image.Image{img}, true)
			if err != nil {
				return err
			}

			res, err := ag.Observe(cmd.Context(), batch, cfg.Agent.Steps)
			if err != nil {
				return fmt.Errorf("failed to observe %s: %w", path, err)
			}

			out := observeResult{Input: path, Steps: make([]observeStep, len(res.Steps))}
			for i, step := range res.Steps {
				out.Steps[i] = observeStep{
					Step:       step.Step,
					Location:   [2]float64{step.Locations[0].X, step.Locations[0].Y},
					PatchSizes: step.PatchSizes,
				}
			}
			out.Probabilities = res.Probabilities
			out.Prediction = argmax(res.Probabilities[0])
			results = append(results, out)
		}

		return writeObserveResults(cmd, results, format)
	},
}

func argmax(probs []float32) int {
	best := 0
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}
	return best
}

func writeObserveResults(cmd *cobra.Command, results []observeResult, format string) error {
	w := cmd.OutOrStdout()
	if format == outputFormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	for _, r := range results {
		fmt.Fprintf(w, "%s: prediction %d after %d step(s)\n", r.Input, r.Prediction, len(r.Steps))
		for _, s := range r.Steps {
			fmt.Fprintf(w, "  step %d: focus (%.3f, %.3f)\n", s.Step, s.Location[0], s.Location[1])
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(observeCmd)
	observeCmd.Flags().Int("steps", 6, "number of attention steps")
	observeCmd.Flags().String("policy", "center", "location policy (center, random, trajectory)")
	observeCmd.Flags().Int64("seed", 42, "network initialization seed")
	observeCmd.Flags().StringP("format", "f", "json", "report format (json, text)")
}
