package write

import (
	"bytes"
	"fmt"

	"golang.org/x/text/encoding/charmap"
)

// ContentStream builds PDF page content streams
type ContentStream struct {
	buf bytes.Buffer
}

// NewContentStream creates a new content stream builder
func NewContentStream() *ContentStream {
	return &ContentStream{}
}

// Bytes returns the content stream data
func (cs *ContentStream) Bytes() []byte {
	return cs.buf.Bytes()
}

// String returns the content stream as a string
func (cs *ContentStream) String() string {
	return cs.buf.String()
}

// --- Graphics State Operations ---

// SaveState saves the current graphics state (q operator)
func (cs *ContentStream) SaveState() *ContentStream {
	cs.buf.WriteString("q\n")
	return cs
}

// RestoreState restores the previous graphics state (Q operator)
func (cs *ContentStream) RestoreState() *ContentStream {
	cs.buf.WriteString("Q\n")
	return cs
}

// SetMatrix sets the current transformation matrix (cm operator)
func (cs *ContentStream) SetMatrix(a, b, c, d, e, f float64) *ContentStream {
	cs.buf.WriteString(fmt.Sprintf("%.4f %.4f %.4f %.4f %.4f %.4f cm\n", a, b, c, d, e, f))
	return cs
}

// --- Color Operations ---

// SetFillColorRGB sets the fill color (rg operator)
func (cs *ContentStream) SetFillColorRGB(r, g, b float64) *ContentStream {
	cs.buf.WriteString(fmt.Sprintf("%.4f %.4f %.4f rg\n", r, g, b))
	return cs
}

// SetStrokeColorRGB sets the stroke color (RG operator)
func (cs *ContentStream) SetStrokeColorRGB(r, g, b float64) *ContentStream {
	cs.buf.WriteString(fmt.Sprintf("%.4f %.4f %.4f RG\n", r, g, b))
	return cs
}

// --- Path Operations ---

// Rectangle appends a rectangle (re operator)
func (cs *ContentStream) Rectangle(x, y, width, height float64) *ContentStream {
	cs.buf.WriteString(fmt.Sprintf("%.4f %.4f %.4f %.4f re\n", x, y, width, height))
	return cs
}

// Stroke strokes the current path (S operator)
func (cs *ContentStream) Stroke() *ContentStream {
	cs.buf.WriteString("S\n")
	return cs
}

// SetLineWidth sets the line width (w operator)
func (cs *ContentStream) SetLineWidth(width float64) *ContentStream {
	cs.buf.WriteString(fmt.Sprintf("%.4f w\n", width))
	return cs
}

// StrokeRect strokes a rectangle with the given color and line width,
// leaving the graphics state unchanged
func (cs *ContentStream) StrokeRect(x, y, width, height, r, g, b, lineWidth float64) *ContentStream {
	return cs.SaveState().
		SetStrokeColorRGB(r, g, b).
		SetLineWidth(lineWidth).
		Rectangle(x, y, width, height).
		Stroke().
		RestoreState()
}

// --- Text Operations ---

// BeginText starts a text object (BT operator)
func (cs *ContentStream) BeginText() *ContentStream {
	cs.buf.WriteString("BT\n")
	return cs
}

// EndText ends a text object (ET operator)
func (cs *ContentStream) EndText() *ContentStream {
	cs.buf.WriteString("ET\n")
	return cs
}

// SetFont sets the font and size (Tf operator)
// fontName should be a resource name like "/F1"
func (cs *ContentStream) SetFont(fontName string, size float64) *ContentStream {
	cs.buf.WriteString(fmt.Sprintf("%s %.4f Tf\n", fontName, size))
	return cs
}

// SetTextPosition sets the text position (Td operator)
func (cs *ContentStream) SetTextPosition(x, y float64) *ContentStream {
	cs.buf.WriteString(fmt.Sprintf("%.4f %.4f Td\n", x, y))
	return cs
}

// ShowText displays a string (Tj operator)
func (cs *ContentStream) ShowText(text string) *ContentStream {
	cs.buf.WriteString(fmt.Sprintf("(%s) Tj\n", escapePDFString(text)))
	return cs
}

// TextAt draws a single run of text with its baseline starting at (x, y)
func (cs *ContentStream) TextAt(fontName string, size, x, y float64, text string) *ContentStream {
	return cs.BeginText().
		SetFont(fontName, size).
		SetTextPosition(x, y).
		ShowText(text).
		EndText()
}

// --- Image Operations ---

// DrawImage draws an image XObject (Do operator)
// imageName should be a resource name like "/Im1"
func (cs *ContentStream) DrawImage(imageName string) *ContentStream {
	cs.buf.WriteString(fmt.Sprintf("%s Do\n", imageName))
	return cs
}

// DrawImageAt draws an image at a specific position and size
func (cs *ContentStream) DrawImageAt(imageName string, x, y, width, height float64) *ContentStream {
	cs.SaveState()
	cs.SetMatrix(width, 0, 0, height, x, y)
	cs.DrawImage(imageName)
	cs.RestoreState()
	return cs
}

// escapePDFString escapes special characters in a PDF string and encodes it
// as WinAnsi for the standard fonts. Characters outside the code page are
// written as '?'.
func escapePDFString(s string) string {
	var result bytes.Buffer
	for _, c := range s {
		switch c {
		case '(':
			result.WriteString("\\(")
		case ')':
			result.WriteString("\\)")
		case '\\':
			result.WriteString("\\\\")
		case '\n':
			result.WriteString("\\n")
		case '\r':
			result.WriteString("\\r")
		case '\t':
			result.WriteString("\\t")
		default:
			b, ok := charmap.Windows1252.EncodeRune(c)
			if !ok {
				b = '?'
			}
			result.WriteByte(b)
		}
	}
	return result.String()
}
