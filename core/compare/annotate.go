package compare

import (
	"github.com/benedoc-inc/pdfdiff/types"
)

// ImagesDifferText is the marker placed on pages whose images differ
const ImagesDifferText = "Images differ!"

// HighlightRect is a stroked rectangle drawn around a changed word of the
// second document
type HighlightRect struct {
	PageIndex   int         `json:"page_index"`
	BBox        types.BBox  `json:"bbox"`
	Color       types.Color `json:"color"`
	StrokeWidth float64     `json:"stroke_width"`
}

// TextMarker is a text label drawn on a page
type TextMarker struct {
	PageIndex int         `json:"page_index"`
	Position  types.Point `json:"position"`
	Text      string      `json:"text"`
	FontSize  float64     `json:"font_size"`
	Color     types.Color `json:"color"`
}

// HighlightStyle controls how changed words are outlined
type HighlightStyle struct {
	Color       types.Color
	StrokeWidth float64
}

// DefaultHighlightStyle returns red outlines 0.7 units wide
func DefaultHighlightStyle() HighlightStyle {
	return HighlightStyle{
		Color:       types.Red,
		StrokeWidth: 0.7,
	}
}

// MarkerStyle controls the image-difference marker
type MarkerStyle struct {
	Position types.Point
	Text     string
	FontSize float64
	Color    types.Color
}

// DefaultMarkerStyle returns the red "Images differ!" label at (50,50)
func DefaultMarkerStyle() MarkerStyle {
	return MarkerStyle{
		Position: types.Point{X: 50, Y: 50},
		Text:     ImagesDifferText,
		FontSize: 12,
		Color:    types.Red,
	}
}

// EmitHighlights returns one rectangle per target word covered by a
// non-equal opcode. Target indices without a matching word box are skipped,
// so a tokenization that disagrees with the word list never fails the page.
func EmitHighlights(pageIndex int, targetWords []types.Word, opcodes []Opcode, style HighlightStyle) []HighlightRect {
	var rects []HighlightRect
	for _, op := range opcodes {
		if op.Tag == OpEqual {
			continue
		}
		for j := op.J1; j < op.J2; j++ {
			if j < 0 || j >= len(targetWords) {
				continue
			}
			rects = append(rects, HighlightRect{
				PageIndex:   pageIndex,
				BBox:        targetWords[j].BBox,
				Color:       style.Color,
				StrokeWidth: style.StrokeWidth,
			})
		}
	}
	return rects
}

// EmitImageMarker returns the marker for a page whose images differ, or nil
func EmitImageMarker(pageIndex int, differs bool, style MarkerStyle) *TextMarker {
	if !differs {
		return nil
	}
	return &TextMarker{
		PageIndex: pageIndex,
		Position:  style.Position,
		Text:      style.Text,
		FontSize:  style.FontSize,
		Color:     style.Color,
	}
}
