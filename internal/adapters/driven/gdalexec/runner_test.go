package gdalexec

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geomosaic-labs/geomosaic-cli/internal/core/domain"
)

// logCollector gathers log lines from collaborator goroutines.
type logCollector struct {
	mu    sync.Mutex
	lines []string
}

func (c *logCollector) log(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, line)
}

func (c *logCollector) all() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.lines...)
}

func TestRunTool_StreamsOutput(t *testing.T) {
	c := &logCollector{}

	err := runTool(context.Background(), c.log, "sh", "-c", "echo first; echo second 1>&2")
	require.NoError(t, err)

	lines := c.all()
	assert.Contains(t, lines, "first")
	assert.Contains(t, lines, "second")
}

func TestRunTool_MissingBinary(t *testing.T) {
	c := &logCollector{}

	err := runTool(context.Background(), c.log, "definitely-not-a-real-tool-9137")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExternalTool)
	assert.Contains(t, err.Error(), "PATH")
}

func TestRunTool_NonZeroExitCarriesDiagnostic(t *testing.T) {
	c := &logCollector{}

	err := runTool(context.Background(), c.log, "sh", "-c", "echo 'ERROR 1: something broke' 1>&2; exit 3")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExternalTool)
	assert.Contains(t, err.Error(), "something broke")
}

func TestLineWriter_SplitsAndNormalizes(t *testing.T) {
	c := &logCollector{}
	lw := newLineWriter(c.log)

	// Partial writes, CRLF progress output and a trailing fragment.
	_, err := lw.Write([]byte("Generating Base Tiles:\n0...10"))
	require.NoError(t, err)
	_, err = lw.Write([]byte("...20\r30...40\n"))
	require.NoError(t, err)
	_, err = lw.Write([]byte("done"))
	require.NoError(t, err)
	lw.Flush()

	lines := c.all()
	assert.Equal(t, []string{
		"Generating Base Tiles:",
		"0...10...20",
		"30...40",
		"done",
	}, lines)
}

func TestLineWriter_TailIsBounded(t *testing.T) {
	c := &logCollector{}
	lw := newLineWriter(c.log)

	for i := 0; i < diagnosticTailLines*3; i++ {
		_, err := lw.Write([]byte("line\n"))
		require.NoError(t, err)
	}

	assert.LessOrEqual(t, len(c.all()), diagnosticTailLines*3)
	// Tail keeps only the bounded window.
	tailParts := len(lw.tail)
	assert.Equal(t, diagnosticTailLines, tailParts)
}

func TestWarpArgs(t *testing.T) {
	args := warpArgs("in.tif", "out/warped_3857.tif")

	joined := ""
	for _, a := range args {
		joined += a + " "
	}
	assert.Contains(t, joined, "-t_srs EPSG:3857")
	assert.Contains(t, joined, "-r bilinear")
	assert.Contains(t, joined, "-dstalpha")
	assert.Contains(t, joined, "INIT_DEST=NO_DATA")
	assert.Contains(t, joined, "COMPRESS=DEFLATE")
	assert.Contains(t, joined, "BIGTIFF=IF_SAFER")

	// Source before destination, at the end.
	require.GreaterOrEqual(t, len(args), 2)
	assert.Equal(t, "in.tif", args[len(args)-2])
	assert.Equal(t, "out/warped_3857.tif", args[len(args)-1])
}

func TestTileArgs(t *testing.T) {
	args := tileArgs("warped.tif", "out", 10, 14, 4)

	assert.Contains(t, args, "--profile=mercator")
	assert.Contains(t, args, "--xyz")
	assert.Contains(t, args, "--tiledriver=PNG")
	assert.Contains(t, args, "--webviewer=none")
	assert.Contains(t, args, "--resume")
	assert.Contains(t, args, "--exclude")
	assert.Contains(t, args, "--resampling=bilinear")
	assert.Contains(t, args, "--zoom=10-14")
	assert.Contains(t, args, "--processes=4")

	require.GreaterOrEqual(t, len(args), 2)
	assert.Equal(t, "warped.tif", args[len(args)-2])
	assert.Equal(t, "out", args[len(args)-1])
}
