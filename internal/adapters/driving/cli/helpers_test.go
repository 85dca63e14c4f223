package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	rastermem "github.com/geomosaic-labs/geomosaic-cli/internal/adapters/driven/raster/memory"
	storagemem "github.com/geomosaic-labs/geomosaic-cli/internal/adapters/driven/storage/memory"
	"github.com/geomosaic-labs/geomosaic-cli/internal/core/domain"
	"github.com/geomosaic-labs/geomosaic-cli/internal/core/ports/driving"
	"github.com/geomosaic-labs/geomosaic-cli/internal/core/services"
)

// fakeRunner is a canned-result pipeline runner for command tests.
type fakeRunner struct {
	startErr error
	logs     []string
	result   driving.RunResult
	lastReq  driving.PipelineRequest
}

var _ driving.PipelineRunner = (*fakeRunner)(nil)

func (r *fakeRunner) Start(req driving.PipelineRequest) (*driving.RunHandle, error) {
	if r.startErr != nil {
		return nil, r.startErr
	}
	r.lastReq = req

	logs := make(chan string, len(r.logs)+1)
	for _, line := range r.logs {
		logs <- line
	}
	close(logs)

	done := make(chan driving.RunResult, 1)
	done <- r.result

	return &driving.RunHandle{ID: "test-run", Logs: logs, Done: done}, nil
}

func (r *fakeRunner) Active() bool { return false }

// setupTestServices swaps the package-level services for fakes and
// returns the in-memory engine plus a cleanup restoring the originals.
func setupTestServices(t *testing.T) (*rastermem.Engine, func()) {
	t.Helper()

	origGeoref := georefService
	origRunner := pipelineRunner
	origRuns := runStore

	engine := rastermem.NewEngine()
	georefService = services.NewGeorefService(engine)
	pipelineRunner = &fakeRunner{}
	runStore = storagemem.NewRunStore()

	return engine, func() {
		georefService = origGeoref
		pipelineRunner = origRunner
		runStore = origRuns
	}
}

// execute runs the root command with args and captures combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

// putTestRaster writes a raster file and registers georeferencing for
// it with the engine.
func putTestRaster(t *testing.T, engine *rastermem.Engine, dir string) string {
	t.Helper()

	path := filepath.Join(dir, "scan.tif")
	require.NoError(t, os.WriteFile(path, []byte("raster"), 0o644))

	gt := [6]float64{399960.0, 10.0, 0.0, 4700040.0, 0.0, -10.0}
	engine.Put(path, rastermem.Raster{
		Size:          domain.RasterSize{1024, 512},
		GeoTransform:  &gt,
		ProjectionWKT: `PROJCS["WGS 84 / UTM zone 33N"]`,
	})
	return path
}

func finishedRun() *domain.PipelineRun {
	now := time.Now()
	return &domain.PipelineRun{
		ID:        "test-run",
		StartedAt: now.Add(-time.Minute),
		EndedAt:   now,
		Success:   true,
	}
}
