package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/geomosaic-labs/geomosaic-cli/internal/core/ports/driving"
)

// logPollInterval is how often the command drains the run's log queue.
const logPollInterval = 120 * time.Millisecond

var (
	tileOutputDir        string
	tileMinZoom          int
	tileMaxZoom          int
	tileTitle            string
	tileKeepIntermediate bool
)

var tileCmd = &cobra.Command{
	Use:   "tile <raster>",
	Short: "Warp a raster and render an XYZ tile pyramid with a preview page",
	Long: `Runs the full publishing pipeline: reprojects the raster into Web
Mercator, renders XYZ tiles for the requested zoom range, derives the
geographic bounds and writes a Leaflet preview page (index.html) into
the output directory. Re-running with the same output resumes tiling.`,
	Args: cobra.ExactArgs(1),
	RunE: runTile,
}

func init() {
	tileCmd.Flags().StringVarP(&tileOutputDir, "output", "o", "", "output directory for tiles and preview page (required)")
	tileCmd.Flags().IntVar(&tileMinZoom, "min-zoom", 10, "minimum zoom level")
	tileCmd.Flags().IntVar(&tileMaxZoom, "max-zoom", 16, "maximum zoom level")
	tileCmd.Flags().StringVar(&tileTitle, "title", "", "preview page title (default: raster file name)")
	tileCmd.Flags().BoolVar(&tileKeepIntermediate, "keep-intermediate", false, "keep the warped intermediate raster")
	_ = tileCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(tileCmd)
}

func runTile(cmd *cobra.Command, args []string) error {
	if pipelineRunner == nil {
		return errors.New("pipeline runner not configured")
	}

	handle, err := pipelineRunner.Start(driving.PipelineRequest{
		SourcePath:       args[0],
		OutputDir:        tileOutputDir,
		MinZoom:          tileMinZoom,
		MaxZoom:          tileMaxZoom,
		Title:            tileTitle,
		KeepIntermediate: tileKeepIntermediate,
	})
	if err != nil {
		return fmt.Errorf("tile failed: %w", err)
	}

	res := pumpRunLogs(cmd, handle)
	if res.Err != nil {
		return fmt.Errorf("tile failed: %w", res.Err)
	}

	if res.Preview != nil && res.Preview.SuggestedMaxZoom != nil && *res.Preview.SuggestedMaxZoom < tileMaxZoom {
		cmd.Printf("Note: source resolution only supports zoom %d; higher levels are upsampled.\n",
			*res.Preview.SuggestedMaxZoom)
	}
	cmd.Printf("Done in %s. Preview: %s/index.html\n",
		res.Run.EndedAt.Sub(res.Run.StartedAt).Round(time.Second), tileOutputDir)
	return nil
}

// pumpRunLogs drains the run's log queue on a fixed polling interval
// until the worker delivers its result, preserving line order.
func pumpRunLogs(cmd *cobra.Command, handle *driving.RunHandle) driving.RunResult {
	ticker := time.NewTicker(logPollInterval)
	defer ticker.Stop()

	drain := func() {
		for {
			select {
			case line, ok := <-handle.Logs:
				if !ok {
					return
				}
				cmd.Println(line)
			default:
				return
			}
		}
	}

	for {
		select {
		case <-ticker.C:
			drain()
		case res := <-handle.Done:
			// The queue is closed by now; flush what remains.
			for line := range handle.Logs {
				cmd.Println(line)
			}
			return res
		}
	}
}
