// Package leaflet renders the static preview page. The page is fully
// self-contained apart from the Leaflet CDN assets and the tile layers
// it references.
package leaflet

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"

	"github.com/geomosaic-labs/geomosaic-cli/internal/core/domain"
	"github.com/geomosaic-labs/geomosaic-cli/internal/core/ports/driven"
)

//go:embed preview.html.tmpl
var previewTemplate string

// Ensure Renderer implements the interface.
var _ driven.PageRenderer = (*Renderer)(nil)

// Renderer produces the Leaflet preview document.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded template once.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("preview").Parse(previewTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing preview template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// templateData extends the preview configuration with derived fields.
type templateData struct {
	domain.PreviewConfig

	// InitialZoom is the zoom used before fitBounds takes over:
	// two levels above the minimum, clamped into the tiled range.
	InitialZoom int

	// TilesURL is the tile URL template, marked safe so its literal
	// {z}/{x}/{y} placeholders survive into the script unescaped.
	TilesURL template.JSStr
}

// Render fills the preview template with the pipeline's metadata.
func (r *Renderer) Render(cfg domain.PreviewConfig) ([]byte, error) {
	initial := cfg.MinZoom + 2
	if initial > cfg.MaxZoom {
		initial = cfg.MaxZoom
	}
	if initial < cfg.MinZoom {
		initial = cfg.MinZoom
	}
	if initial < 0 {
		initial = 0
	}

	var buf bytes.Buffer
	err := r.tmpl.Execute(&buf, templateData{
		PreviewConfig: cfg,
		InitialZoom:   initial,
		TilesURL:      template.JSStr(cfg.TilesURLTemplate),
	})
	if err != nil {
		return nil, fmt.Errorf("rendering preview page: %w", err)
	}
	return buf.Bytes(), nil
}
