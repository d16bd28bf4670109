package layout

// Extraction coordinates come back at a higher resolution than the PDF
// point grid; rendering scales them down by targetDPI/sourceDPI.
const (
	defaultSourceDPI = 144
	defaultTargetDPI = 72
)

// scale is the factor mapping extraction pixels to PDF points.
func (t *Translator) scale() float64 {
	return t.targetDPI / t.sourceDPI
}

// Box is an axis-aligned block position on the PDF canvas, in points, with
// the origin at the page's bottom-left corner. Y is the box's bottom edge.
type Box struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// BlockBox converts an extraction quadrilateral into a canvas box. quad
// holds the four corners as x,y pairs in extraction pixels with a top-left
// origin; pageHeight is the page height in points. Degenerate quads (wrong
// length, zero area) report ok=false and must be skipped by the caller.
func BlockBox(quad []float64, scale, pageHeight float64) (Box, bool) {
	if len(quad) != 8 {
		return Box{}, false
	}

	minX, minY := quad[0], quad[1]
	maxX, maxY := quad[0], quad[1]
	for i := 2; i < 8; i += 2 {
		x, y := quad[i], quad[i+1]
		if x < minX {
			minX = x
		}
		if x > maxX {
			maxX = x
		}
		if y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}
	}

	width := (maxX - minX) * scale
	height := (maxY - minY) * scale
	if width <= 0 || height <= 0 {
		return Box{}, false
	}

	// Extraction Y grows downward; the canvas Y grows upward, so the box
	// bottom sits at pageHeight minus the scaled lower edge.
	return Box{
		X:      minX * scale,
		Y:      pageHeight - maxY*scale,
		Width:  width,
		Height: height,
	}, true
}

// FontSizeFor picks a text size that fits inside a box of the given height,
// clamped to a readable range.
func FontSizeFor(boxHeight float64) float64 {
	size := 0.8 * boxHeight
	if size < 8 {
		return 8
	}
	if size > 14 {
		return 14
	}
	return size
}
