package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var injectOutput string

var injectCmd = &cobra.Command{
	Use:   "inject <sidecar.json> <raster>",
	Short: "Inject saved georeferencing into a raster copy",
	Long: `Applies a previously extracted georeference document to a copy of
the given raster. The input raster is never modified; the output is a
byte-for-byte copy with the document's geotransform, projection and
ground control points written into it.`,
	Args: cobra.ExactArgs(2),
	RunE: runInject,
}

func init() {
	injectCmd.Flags().StringVarP(&injectOutput, "output", "o", "",
		"output raster path (default: <raster base>_georeferenced.<ext>)")
	rootCmd.AddCommand(injectCmd)
}

func runInject(cmd *cobra.Command, args []string) error {
	if georefService == nil {
		return errors.New("georeference service not configured")
	}

	recordPath, rasterPath := args[0], args[1]
	outPath := injectOutput
	if outPath == "" {
		outPath = defaultInjectOutput(rasterPath)
	}

	record, err := georefService.LoadRecord(recordPath)
	if err != nil {
		return fmt.Errorf("inject failed: %w", err)
	}

	if err := georefService.Inject(context.Background(), record, rasterPath, outPath); err != nil {
		return fmt.Errorf("inject failed: %w", err)
	}

	cmd.Printf("Georeferenced copy written to %s\n", outPath)
	return nil
}

// defaultInjectOutput derives "<base>_georeferenced.<ext>" next to the
// input raster.
func defaultInjectOutput(rasterPath string) string {
	ext := filepath.Ext(rasterPath)
	return strings.TrimSuffix(rasterPath, ext) + "_georeferenced" + ext
}
