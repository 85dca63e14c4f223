package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var extractOutput string

var extractCmd = &cobra.Command{
	Use:   "extract <raster>",
	Short: "Extract georeferencing into a sidecar document",
	Long: `Reads the geotransform, projection, ground control points and
metadata of a raster and writes them to a JSON sidecar document. Use it
before handing the raster to a pixel editor that strips georeferencing.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "",
		"sidecar path (default: <raster>.georef.json)")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	if georefService == nil {
		return errors.New("georeference service not configured")
	}

	rasterPath := args[0]
	outPath := extractOutput
	if outPath == "" {
		outPath = rasterPath + ".georef.json"
	}

	record, err := georefService.Extract(context.Background(), rasterPath)
	if err != nil {
		return fmt.Errorf("extract failed: %w", err)
	}

	if err := georefService.SaveRecord(record, outPath); err != nil {
		return fmt.Errorf("extract failed: %w", err)
	}

	cmd.Printf("Georeference written to %s\n", outPath)
	cmd.Printf("  size: %dx%d px\n", record.RasterSize.Width(), record.RasterSize.Height())
	if record.GeoTransform != nil {
		cmd.Printf("  geotransform: origin (%.3f, %.3f), pixel %.6g x %.6g\n",
			record.GeoTransform[0], record.GeoTransform[3],
			record.GeoTransform[1], record.GeoTransform[5])
	} else {
		cmd.Println("  geotransform: none")
	}
	if len(record.GCPs) > 0 {
		cmd.Printf("  ground control points: %d\n", len(record.GCPs))
	}
	return nil
}
