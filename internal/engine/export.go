package engine

import (
	"github.com/okian/urchin/internal/render"
	"github.com/okian/urchin/pkg/metrics"
)

// defaultExportScale doubles the surface resolution for raster exports.
const defaultExportScale = 2.0

// ExportSVG serializes the current frame as an SVG document. Exports work
// in every state, including the empty placeholder.
func (e *Engine) ExportSVG() []byte {
	metrics.RecordExport("svg")
	return render.EncodeSVG(e.Frame())
}

// ExportPNG rasterizes the current frame. A non-positive scale falls back
// to the default export scale.
func (e *Engine) ExportPNG(scale float64) ([]byte, error) {
	if scale <= 0 {
		scale = defaultExportScale
	}
	metrics.RecordExport("png")
	return render.EncodePNG(e.Frame(), scale)
}
