package types

import (
	"fmt"
	"image"
	"math"
)

// BBox is an axis-aligned rectangle in page coordinates.
// The origin is the top-left corner of the page and y grows downwards,
// which is the convention every document provider reports geometry in.
type BBox struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Width returns the horizontal extent of the box
func (b BBox) Width() float64 {
	return b.X1 - b.X0
}

// Height returns the vertical extent of the box
func (b BBox) Height() float64 {
	return b.Y1 - b.Y0
}

// Valid reports whether the box has finite coordinates and is not inverted.
// Degenerate (zero width or height) boxes are valid.
func (b BBox) Valid() bool {
	for _, v := range [...]float64{b.X0, b.Y0, b.X1, b.Y1} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return b.X1 >= b.X0 && b.Y1 >= b.Y0
}

func (b BBox) String() string {
	return fmt.Sprintf("[%.2f %.2f %.2f %.2f]", b.X0, b.Y0, b.X1, b.Y1)
}

// Point is a position in page coordinates
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Color is an RGB color with components in [0,1]
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// Valid reports whether every component lies in [0,1]
func (c Color) Valid() bool {
	for _, v := range [...]float64{c.R, c.G, c.B} {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return false
		}
	}
	return true
}

// Red is the highlight color used for differences
var Red = Color{R: 1}

// PageSize is the size of a page in page units (points for PDF sources,
// pixels for scanned sources)
type PageSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Word is a single token on a page together with its bounding box
type Word struct {
	Text string `json:"text"`
	BBox BBox   `json:"bbox"`
}

// EmbeddedImage is one raster image placed on a page.
// Index is the position of the image in the page's image list.
type EmbeddedImage struct {
	Index    int         `json:"index"`
	Image    image.Image `json:"-"`
	SourceID string      `json:"source_id,omitempty"` // Provider-specific identifier (xref, element id, file name)
	Digest   string      `json:"digest,omitempty"`    // Optional content digest, used as a hash cache key
}
