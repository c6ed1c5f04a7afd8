// Package write builds PDF files from scratch: objects, page content
// streams, standard fonts, raster images and the document information
// dictionary.
package write

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// PDFObject represents a PDF object with its content
type PDFObject struct {
	Number  int
	Content []byte     // Raw content (dictionary, array, etc.)
	Stream  []byte     // Stream data (if this is a stream object)
	Dict    Dictionary // Stream dictionary
}

// Dictionary represents a PDF dictionary
type Dictionary map[string]interface{}

// Literal is an already-escaped PDF string written between parentheses
type Literal string

// PDFWriter collects numbered objects and serializes them with a classic
// cross-reference table
type PDFWriter struct {
	objects    map[int]*PDFObject
	nextObjNum int
	rootRef    string
	infoRef    string
	pdfVersion string
}

// NewPDFWriter creates a new PDF writer
func NewPDFWriter() *PDFWriter {
	return &PDFWriter{
		objects:    make(map[int]*PDFObject),
		nextObjNum: 1,
		pdfVersion: "1.7",
	}
}

// ReserveObject reserves an object number to be filled in later with SetObject
func (w *PDFWriter) ReserveObject() int {
	objNum := w.nextObjNum
	w.nextObjNum++
	return objNum
}

// AddObject adds a new object and returns its object number
func (w *PDFWriter) AddObject(content []byte) int {
	objNum := w.ReserveObject()
	w.objects[objNum] = &PDFObject{Number: objNum, Content: content}
	return objNum
}

// AddStreamObject adds a stream object with dictionary and data
func (w *PDFWriter) AddStreamObject(dict Dictionary, data []byte, compress bool) (int, error) {
	streamData := data
	if compress && len(data) > 0 {
		var buf bytes.Buffer
		zw := zlib.NewWriter(&buf)
		if _, err := zw.Write(data); err != nil {
			return 0, fmt.Errorf("failed to compress stream: %w", err)
		}
		if err := zw.Close(); err != nil {
			return 0, fmt.Errorf("failed to compress stream: %w", err)
		}
		streamData = buf.Bytes()
		dict["Filter"] = "/FlateDecode"
	}
	dict["Length"] = len(streamData)

	objNum := w.ReserveObject()
	w.objects[objNum] = &PDFObject{Number: objNum, Dict: dict, Stream: streamData}
	return objNum, nil
}

// SetObject sets or replaces an object at a specific number
func (w *PDFWriter) SetObject(objNum int, content []byte) {
	w.objects[objNum] = &PDFObject{Number: objNum, Content: content}
	if objNum >= w.nextObjNum {
		w.nextObjNum = objNum + 1
	}
}

// SetRoot sets the root (catalog) object reference
func (w *PDFWriter) SetRoot(objNum int) {
	w.rootRef = ref(objNum)
}

// SetInfo sets the info dictionary object reference
func (w *PDFWriter) SetInfo(objNum int) {
	w.infoRef = ref(objNum)
}

func ref(objNum int) string {
	return fmt.Sprintf("%d 0 R", objNum)
}

// WriteTo outputs the complete PDF to out
func (w *PDFWriter) WriteTo(out io.Writer) (int64, error) {
	if w.rootRef == "" {
		return 0, fmt.Errorf("no document catalog set")
	}

	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("%%PDF-%s\n", w.pdfVersion))
	buf.Write([]byte{0x25, 0xE2, 0xE3, 0xCF, 0xD3, 0x0A}) // Binary marker

	var objNums []int
	for num := range w.objects {
		objNums = append(objNums, num)
	}
	sort.Ints(objNums)

	positions := make(map[int]int64, len(objNums))
	for _, objNum := range objNums {
		obj := w.objects[objNum]
		positions[objNum] = int64(buf.Len())

		buf.WriteString(fmt.Sprintf("%d 0 obj\n", objNum))
		if obj.Stream != nil {
			buf.Write(w.formatDictionary(obj.Dict))
			buf.WriteString("\nstream\n")
			buf.Write(obj.Stream)
			buf.WriteString("\nendstream")
		} else {
			buf.Write(obj.Content)
		}
		buf.WriteString("\nendobj\n")
	}

	xrefPos := int64(buf.Len())
	buf.WriteString("xref\n")
	buf.WriteString(fmt.Sprintf("0 %d\n", w.nextObjNum))
	buf.WriteString(fmt.Sprintf("%010d %05d f \n", 0, 65535))
	for i := 1; i < w.nextObjNum; i++ {
		if pos, ok := positions[i]; ok {
			buf.WriteString(fmt.Sprintf("%010d %05d n \n", pos, 0))
		} else {
			// Reserved but never filled
			buf.WriteString(fmt.Sprintf("%010d %05d f \n", 0, 1))
		}
	}

	buf.WriteString("trailer\n<<\n")
	buf.WriteString(fmt.Sprintf("/Size %d\n", w.nextObjNum))
	buf.WriteString(fmt.Sprintf("/Root %s\n", w.rootRef))
	if w.infoRef != "" {
		buf.WriteString(fmt.Sprintf("/Info %s\n", w.infoRef))
	}
	buf.WriteString(">>\n")
	buf.WriteString(fmt.Sprintf("startxref\n%d\n%%%%EOF\n", xrefPos))

	return buf.WriteTo(out)
}

// Bytes returns the complete PDF as a byte slice
func (w *PDFWriter) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// formatDictionary formats a Dictionary as PDF syntax
func (w *PDFWriter) formatDictionary(dict Dictionary) []byte {
	var buf bytes.Buffer
	buf.WriteString("<<")

	// Sort keys for consistent output
	keys := make([]string, 0, len(dict))
	for k := range dict {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := dict[key]
		if !strings.HasPrefix(key, "/") {
			key = "/" + key
		}
		buf.WriteString(key)
		buf.WriteString(" ")
		buf.WriteString(w.formatValue(value))
		buf.WriteString(" ")
	}

	buf.WriteString(">>")
	return buf.Bytes()
}

// formatValue formats a value for PDF output.
// Strings starting with "/" are names and strings ending in " R" are
// references; any other string is written as an already-escaped literal.
func (w *PDFWriter) formatValue(value interface{}) string {
	switch v := value.(type) {
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case Literal:
		return "(" + string(v) + ")"
	case string:
		if strings.HasPrefix(v, "/") || strings.HasSuffix(v, " R") {
			return v
		}
		return "(" + v + ")"
	case []byte:
		return "<" + fmt.Sprintf("%X", v) + ">"
	case []interface{}:
		items := make([]string, 0, len(v))
		for _, item := range v {
			items = append(items, w.formatValue(item))
		}
		return "[" + strings.Join(items, " ") + "]"
	case Dictionary:
		return string(w.formatDictionary(v))
	default:
		return fmt.Sprintf("%v", v)
	}
}
