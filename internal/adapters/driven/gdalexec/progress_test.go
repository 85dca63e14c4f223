package gdalexec

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressWatcher_CountsTiles(t *testing.T) {
	outDir := t.TempDir()
	c := &logCollector{}

	pw, err := newProgressWatcher(outDir, c.log)
	require.NoError(t, err)
	defer pw.Close()

	require.NoError(t, os.WriteFile(filepath.Join(outDir, "0.png"), []byte("png"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(outDir, "1.png"), []byte("png"), 0o644))
	// Non-tile files are not counted.
	require.NoError(t, os.WriteFile(filepath.Join(outDir, "tilemapresource.xml"), []byte("<xml/>"), 0o644))

	require.Eventually(t, func() bool {
		return pw.Count() == 2
	}, 5*time.Second, 20*time.Millisecond)
}

func TestProgressWatcher_FollowsNewDirectories(t *testing.T) {
	outDir := t.TempDir()
	c := &logCollector{}

	pw, err := newProgressWatcher(outDir, c.log)
	require.NoError(t, err)
	defer pw.Close()

	zoomDir := filepath.Join(outDir, "14", "8721")
	require.NoError(t, os.MkdirAll(zoomDir, 0o755))

	// The watcher picks up new directories from their create events;
	// give it a moment before the first tile lands.
	require.Eventually(t, func() bool {
		require.NoError(t, os.WriteFile(filepath.Join(zoomDir, "5412.png"), []byte("png"), 0o644))
		return pw.Count() > 0
	}, 5*time.Second, 50*time.Millisecond)
}

func TestProgressWatcher_CloseIsIdempotentlySafe(t *testing.T) {
	outDir := t.TempDir()
	c := &logCollector{}

	pw, err := newProgressWatcher(outDir, c.log)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(outDir, "0.png"), []byte("png"), 0o644))
	require.Eventually(t, func() bool { return pw.Count() == 1 }, 5*time.Second, 20*time.Millisecond)

	pw.Close()
	assert.EqualValues(t, 1, pw.Count())
}

func TestProgressWatcher_MissingDirectory(t *testing.T) {
	c := &logCollector{}

	_, err := newProgressWatcher(filepath.Join(t.TempDir(), "does-not-exist"), c.log)
	require.Error(t, err)
}
