// Package gdalexec drives the external GDAL command line tools that do
// the heavy raster work: gdalwarp for reprojection and gdal2tiles for
// pyramid generation. Tool output is streamed line by line into the
// caller's log function; a non-zero exit surfaces as
// domain.ErrExternalTool carrying the tail of the diagnostic output.
package gdalexec

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/geomosaic-labs/geomosaic-cli/internal/core/domain"
	"github.com/geomosaic-labs/geomosaic-cli/internal/core/ports/driven"
)

// diagnosticTailLines bounds how much tool output is attached to a
// failure error.
const diagnosticTailLines = 12

// runTool executes one external command, forwarding every output line
// to log and collecting a bounded tail for error reporting.
func runTool(ctx context.Context, log driven.LogFn, name string, args ...string) error {
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("%w: %s not found in PATH (is GDAL installed?)", domain.ErrExternalTool, name)
	}

	cmd := exec.CommandContext(ctx, name, args...)

	lw := newLineWriter(log)
	cmd.Stdout = lw
	cmd.Stderr = lw

	err := cmd.Run()
	lw.Flush()

	if err != nil {
		tail := lw.Tail()
		if tail != "" {
			return fmt.Errorf("%w: %s: %v: %s", domain.ErrExternalTool, name, err, tail)
		}
		return fmt.Errorf("%w: %s: %v", domain.ErrExternalTool, name, err)
	}
	return nil
}

// lineWriter splits a byte stream into lines for the log function and
// keeps the last few for diagnostics. Stdout and stderr share one
// instance, so writes are serialized.
type lineWriter struct {
	mu   sync.Mutex
	log  driven.LogFn
	buf  bytes.Buffer
	tail []string
}

func newLineWriter(log driven.LogFn) *lineWriter {
	return &lineWriter{log: log}
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	for {
		line, err := w.buf.ReadString('\n')
		if err != nil {
			// Partial line, put it back and wait for more bytes.
			w.buf.WriteString(line)
			break
		}
		w.emit(line)
	}
	return len(p), nil
}

// Flush emits any trailing partial line after the process exits.
func (w *lineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.buf.Len() > 0 {
		w.emit(w.buf.String())
		w.buf.Reset()
	}
}

// Tail returns the retained final lines joined for an error message.
func (w *lineWriter) Tail() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return strings.Join(w.tail, " | ")
}

func (w *lineWriter) emit(line string) {
	// gdal2tiles renders progress as dot/digit sequences with carriage
	// returns; normalize those before logging.
	line = strings.TrimRight(strings.ReplaceAll(line, "\r", "\n"), "\n")
	for _, part := range strings.Split(line, "\n") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		w.log(part)
		w.tail = append(w.tail, part)
		if len(w.tail) > diagnosticTailLines {
			w.tail = w.tail[1:]
		}
	}
}
