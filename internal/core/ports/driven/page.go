package driven

import "github.com/geomosaic-labs/geomosaic-cli/internal/core/domain"

// PageRenderer produces a self-contained static preview document from
// the combined pipeline metadata. Once written, the page has no further
// dependency on this core.
type PageRenderer interface {
	Render(cfg domain.PreviewConfig) ([]byte, error)
}
