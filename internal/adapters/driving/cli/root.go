// Package cli implements the geomosaic command line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/geomosaic-labs/geomosaic-cli/cgo/gdal"
	configfile "github.com/geomosaic-labs/geomosaic-cli/internal/adapters/driven/config/file"
	"github.com/geomosaic-labs/geomosaic-cli/internal/adapters/driven/gdalexec"
	"github.com/geomosaic-labs/geomosaic-cli/internal/adapters/driven/page/leaflet"
	"github.com/geomosaic-labs/geomosaic-cli/internal/adapters/driven/storage/sqlite"
	"github.com/geomosaic-labs/geomosaic-cli/internal/adapters/driven/webmercator"
	"github.com/geomosaic-labs/geomosaic-cli/internal/core/ports/driven"
	"github.com/geomosaic-labs/geomosaic-cli/internal/core/ports/driving"
	"github.com/geomosaic-labs/geomosaic-cli/internal/core/services"
	"github.com/geomosaic-labs/geomosaic-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services the commands talk to. Populated by initServices in normal
// operation; tests swap in fakes.
var (
	georefService  driving.GeorefService
	pipelineRunner driving.PipelineRunner
	runStore       driven.RunStore
	configStore    driven.ConfigStore
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "geomosaic",
	Short: "Publish georeferenced rasters as web map tiles",
	Long: `geomosaic turns georeferenced rasters (GeoTIFF and friends) into
XYZ tile pyramids with a ready-to-open Leaflet preview page, and moves
georeferencing between rasters when pixel editing strips it.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Execute wires the default services and runs the root command.
func Execute() {
	if err := initServices(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initServices builds the production dependency graph. Run history is
// optional: a failure to open the database degrades to no recording
// rather than blocking the pipeline.
func initServices() error {
	cfg, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config store: %w", err)
	}
	configStore = cfg

	if cfg.GetBool("history.enabled") {
		store, err := sqlite.NewStore("")
		if err != nil {
			logger.Warn("run history unavailable: %v", err)
		} else {
			runStore = store.RunStore()
		}
	}

	engine := gdal.NewEngine()
	georefService = services.NewGeorefService(engine)

	renderer, err := leaflet.NewRenderer()
	if err != nil {
		return fmt.Errorf("building preview renderer: %w", err)
	}

	tiler := gdalexec.NewTiler()
	tiler.Processes = cfg.GetInt("tiler.processes")

	pipelineRunner = services.NewPipelineOrchestrator(
		georefService,
		gdalexec.NewWarper(),
		tiler,
		services.NewPreviewDeriver(engine, webmercator.NewTransformer()),
		services.NewLayoutLocator(cfg.GetString("tiles.extension")),
		renderer,
		runStore,
	)

	return nil
}
