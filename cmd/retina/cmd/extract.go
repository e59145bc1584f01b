package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/retina/internal/agent"
	"github.com/MeKo-Tech/retina/internal/glimpse"
	"github.com/MeKo-Tech/retina/internal/tensor"
	"github.com/MeKo-Tech/retina/internal/utils"
	"github.com/MeKo-Tech/retina/internal/visualize"
)

const (
	outputFormatJSON = "json"
	outputFormatText = "text"
)

// patchReport summarizes one extracted patch.
type patchReport struct {
	Index      int     `json:"index"`
	SourceSize int     `json:"source_size"`
	Min        float32 `json:"min"`
	Max        float32 `json:"max"`
	Mean       float32 `json:"mean"`
	File       string  `json:"file,omitempty"`
}

// extractReport summarizes one processed image.
type extractReport struct {
	Input    string        `json:"input"`
	Width    int           `json:"width"`
	Height   int           `json:"height"`
	Channels int           `json:"channels"`
	Location [2]float64    `json:"location"`
	Shape    []int         `json:"shape"`
	Patches  []patchReport `json:"patches"`
	Overlay  string        `json:"overlay,omitempty"`
}

// extractCmd represents the extract command.
var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract multi-scale glimpses from images",
	Long: `Extract a set of nested square patches around a focus location and
resample them to a common resolution.

The focus location uses normalized coordinates in [-1, 1] where (0, 0) is
the image center and (-1, -1) the top-left corner.

Supported formats: JPEG, PNG, BMP

Examples:
  retina extract photo.png
  retina extract photo.png --loc-x 0.25 --loc-y -0.5 --output-dir out/
  retina extract *.png --patch-size 16 --num-patches 4 --overlay`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("no input files provided")
		}

		cfg := GetConfig()

		patchSize := cfg.Sensor.PatchSize
		if cmd.Flags().Changed("patch-size") {
			patchSize, _ = cmd.Flags().GetInt("patch-size")
		}
		numPatches := cfg.Sensor.NumPatches
		if cmd.Flags().Changed("num-patches") {
			numPatches, _ = cmd.Flags().GetInt("num-patches")
		}
		scale := cfg.Sensor.ScaleFactor
		if cmd.Flags().Changed("scale") {
			scale, _ = cmd.Flags().GetFloat64("scale")
		}
		outputDir := cfg.Output.Dir
		if cmd.Flags().Changed("output-dir") {
			outputDir, _ = cmd.Flags().GetString("output-dir")
		}
		format := cfg.Output.Format
		if cmd.Flags().Changed("format") {
			format, _ = cmd.Flags().GetString("format")
		}
		locX, _ := cmd.Flags().GetFloat64("loc-x")
		locY, _ := cmd.Flags().GetFloat64("loc-y")
		grayscale, _ := cmd.Flags().GetBool("grayscale")
		overlay, _ := cmd.Flags().GetBool("overlay")

		if format != outputFormatJSON && format != outputFormatText {
			return fmt.Errorf("invalid output format: %s (must be json or text)", format)
		}

		sensor, err := glimpse.NewSensor(patchSize, numPatches, scale)
		if err != nil {
			return err
		}

		if outputDir != "" {
			if err := os.MkdirAll(outputDir, 0o750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		loc := glimpse.Location{X: locX, Y: locY}

		// Each input becomes one single-image extraction job; images may
		// differ in size, so they cannot share a batch.
		imgs := make([]image.Image, len(args))
		jobs := make([]agent.ExtractJob, len(args))
		for i, path := range args {
			img, _, err := utils.LoadImage(path)
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", path, err)
			}
			batch, err := utils.ToImageBatch([]image.Image{img}, grayscale)
			if err != nil {
				return fmt.Errorf("failed to convert %s: %w", path, err)
			}
			imgs[i] = img
			jobs[i] = agent.ExtractJob{Batch: batch, Locations: []glimpse.Location{loc}}
		}

		rets, err := agent.ExtractParallel(cmd.Context(), sensor, jobs, cfg.Agent.Workers)
		if err != nil {
			return err
		}

		reports := make([]extractReport, 0, len(args))
		for i, path := range args {
			report, err := reportOne(sensor, path, imgs[i], jobs[i].Batch, rets[i], loc, outputDir, overlay)
			if err != nil {
				return fmt.Errorf("failed to process %s: %w", path, err)
			}
			reports = append(reports, *report)
		}

		return writeExtractReports(cmd, reports, format)
	},
}

// reportOne summarizes one extraction and optionally writes patch and
// overlay PNGs to outputDir.
func reportOne(
	sensor *glimpse.Sensor,
	path string,
	img image.Image,
	batch *tensor.ImageBatch,
	ret *tensor.Retina,
	loc glimpse.Location,
	outputDir string,
	overlay bool,
) (*extractReport, error) {
	sizes := sensor.PatchSizes()
	report := &extractReport{
		Input:    path,
		Width:    batch.W,
		Height:   batch.H,
		Channels: batch.C,
		Location: [2]float64{loc.X, loc.Y},
		Shape:    []int{ret.B, ret.K, ret.G, ret.G, ret.C},
		Patches:  make([]patchReport, ret.K),
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	for i := 0; i < ret.K; i++ {
		minV, maxV, mean := tensor.Stats(ret.Patch(0, i))
		report.Patches[i] = patchReport{
			Index:      i,
			SourceSize: sizes[i],
			Min:        minV,
			Max:        maxV,
			Mean:       mean,
		}

		if outputDir == "" {
			continue
		}
		patchImg, err := utils.PatchImage(ret, 0, i)
		if err != nil {
			return nil, err
		}
		out := filepath.Join(outputDir, fmt.Sprintf("%s_patch_%d.png", base, i))
		if err := utils.SaveImage(patchImg, out); err != nil {
			return nil, err
		}
		report.Patches[i].File = out
	}

	if overlay && outputDir != "" {
		rendered := visualize.RenderGlimpseOverlay(img, loc, sizes, color.RGBA{255, 0, 0, 255})
		out := filepath.Join(outputDir, base+"_overlay.png")
		if err := utils.SaveImage(rendered, out); err != nil {
			return nil, err
		}
		report.Overlay = out
	}

	return report, nil
}

func writeExtractReports(cmd *cobra.Command, reports []extractReport, format string) error {
	w := cmd.OutOrStdout()
	if format == outputFormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}

	for _, r := range reports {
		fmt.Fprintf(w, "%s (%dx%d, %d channel(s)) at (%.2f, %.2f)\n",
			r.Input, r.Width, r.Height, r.Channels, r.Location[0], r.Location[1])
		for _, p := range r.Patches {
			fmt.Fprintf(w, "  patch %d: source %dpx, min %.4f max %.4f mean %.4f\n",
				p.Index, p.SourceSize, p.Min, p.Max, p.Mean)
		}
		if r.Overlay != "" {
			fmt.Fprintf(w, "  overlay: %s\n", r.Overlay)
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().Float64("loc-x", 0, "normalized focus x in [-1, 1]")
	extractCmd.Flags().Float64("loc-y", 0, "normalized focus y in [-1, 1]")
	extractCmd.Flags().IntP("patch-size", "g", 8, "output resolution of each patch")
	extractCmd.Flags().IntP("num-patches", "k", 3, "number of nested patches")
	extractCmd.Flags().Float64P("scale", "s", 2.0, "size ratio between successive patches")
	extractCmd.Flags().Bool("grayscale", true, "convert input to grayscale")
	extractCmd.Flags().StringP("output-dir", "o", "", "directory for patch and overlay PNGs")
	extractCmd.Flags().Bool("overlay", false, "render glimpse regions onto the input image")
	extractCmd.Flags().StringP("format", "f", "json", "report format (json, text)")
}
