package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/geomosaic-labs/geomosaic-cli/internal/core/domain"
)

// maxProbedZoom is the highest zoom directory name the locator probes
// for when looking for a tile root.
const maxProbedZoom = 30

// LayoutLocator discovers the root of a {z}/{x}/{y} tile hierarchy in
// an output directory produced by the external tiling tool.
type LayoutLocator struct {
	ext string
}

// NewLayoutLocator creates a locator for tiles with the given file
// extension (without the dot). Empty defaults to "png".
func NewLayoutLocator(ext string) *LayoutLocator {
	if ext == "" {
		ext = "png"
	}
	return &LayoutLocator{ext: strings.TrimPrefix(ext, ".")}
}

// Locate probes outDir for a tile pyramid. The tree may sit directly in
// outDir or nested one level under an unknown intermediate directory.
// With no evidence at all, outDir itself is assumed to be the root; the
// resulting template may then resolve to nothing, which is tolerated.
func (l *LayoutLocator) Locate(outDir string) domain.TileLayout {
	root := l.findRoot(outDir)

	rel, err := filepath.Rel(outDir, root)
	if err != nil {
		rel = "."
	}
	rel = filepath.ToSlash(rel)

	prefix := "."
	if rel != "." {
		prefix = "./" + rel
	}

	return domain.TileLayout{
		Root:        rel,
		URLTemplate: fmt.Sprintf("%s/{z}/{x}/{y}.%s", prefix, l.ext),
		SampleTile:  l.findSampleTile(outDir, root),
	}
}

// findRoot applies the discovery heuristic: numeric zoom directories
// directly under outDir first, then one level deep through immediate
// child directories, then outDir as the final fallback.
func (l *LayoutLocator) findRoot(outDir string) string {
	if hasZoomDir(outDir) {
		return outDir
	}

	entries, err := os.ReadDir(outDir)
	if err == nil {
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			child := filepath.Join(outDir, entry.Name())
			if hasZoomDir(child) {
				return child
			}
		}
	}

	return outDir
}

// hasZoomDir probes for subdirectories named "0" through "30".
func hasZoomDir(dir string) bool {
	for z := 0; z <= maxProbedZoom; z++ {
		info, err := os.Stat(filepath.Join(dir, fmt.Sprintf("%d", z)))
		if err == nil && info.IsDir() {
			return true
		}
	}
	return false
}

// findSampleTile searches for exactly one <z>/<x>/<file>.<ext> file to
// serve as a diagnostic sample. The traversal never recurses beyond
// that exact three-level shape. Returns "" when none is found.
func (l *LayoutLocator) findSampleTile(outDir, root string) string {
	suffix := "." + strings.ToLower(l.ext)

	zEntries, err := os.ReadDir(root)
	if err != nil {
		return ""
	}
	for _, zEntry := range zEntries {
		if !zEntry.IsDir() || !isNumeric(zEntry.Name()) {
			continue
		}
		zDir := filepath.Join(root, zEntry.Name())

		xEntries, err := os.ReadDir(zDir)
		if err != nil {
			continue
		}
		for _, xEntry := range xEntries {
			if !xEntry.IsDir() || !isNumeric(xEntry.Name()) {
				continue
			}
			xDir := filepath.Join(zDir, xEntry.Name())

			files, err := os.ReadDir(xDir)
			if err != nil {
				continue
			}
			for _, f := range files {
				if f.IsDir() || !strings.HasSuffix(strings.ToLower(f.Name()), suffix) {
					continue
				}
				sample := filepath.Join(xDir, f.Name())
				if rel, err := filepath.Rel(outDir, sample); err == nil {
					return filepath.ToSlash(rel)
				}
				return sample
			}
		}
	}
	return ""
}

// isNumeric reports whether s is a non-empty run of ASCII digits.
func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
