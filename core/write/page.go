package write

import (
	"fmt"
	"sort"
	"strings"
)

// PageSize represents page dimensions in points (1 point = 1/72 inch)
type PageSize struct {
	Width  float64
	Height float64
}

// PageBuilder helps build PDF pages
type PageBuilder struct {
	writer  *PDFWriter
	size    PageSize
	fonts   map[string]int    // resource name -> object number
	byFont  map[string]string // base font -> resource name
	images  map[string]int    // resource name -> object number
	content *ContentStream
}

// NewPageBuilder creates a new page builder
func (w *PDFWriter) NewPageBuilder(size PageSize) *PageBuilder {
	return &PageBuilder{
		writer:  w,
		size:    size,
		fonts:   make(map[string]int),
		byFont:  make(map[string]string),
		images:  make(map[string]int),
		content: NewContentStream(),
	}
}

// Size returns the page size
func (pb *PageBuilder) Size() PageSize {
	return pb.size
}

// Content returns the content stream for adding graphics/text
func (pb *PageBuilder) Content() *ContentStream {
	return pb.content
}

// AddStandardFont adds one of the standard 14 PDF fonts (Helvetica,
// Times-Roman, etc.) and returns the resource name to use (e.g., "/F1").
// Adding the same font twice returns the same resource.
func (pb *PageBuilder) AddStandardFont(baseFont string) string {
	if name, ok := pb.byFont[baseFont]; ok {
		return "/" + name
	}

	resourceName := fmt.Sprintf("F%d", len(pb.fonts)+1)
	fontDict := fmt.Sprintf("<</Type/Font/Subtype/Type1/BaseFont/%s/Encoding/WinAnsiEncoding>>", baseFont)
	pb.fonts[resourceName] = pb.writer.AddObject([]byte(fontDict))
	pb.byFont[baseFont] = resourceName

	return "/" + resourceName
}

// AddImage registers an image XObject on the page and returns its resource name
func (pb *PageBuilder) AddImage(info *ImageInfo) string {
	resourceName := strings.TrimPrefix(info.Name, "/")
	if resourceName == "" {
		resourceName = fmt.Sprintf("Im%d", len(pb.images)+1)
	}
	pb.images[resourceName] = info.ObjectNum
	return "/" + resourceName
}

// Build writes the content stream and page object and returns the page
// object number
func (pb *PageBuilder) Build(pagesObjNum int) (int, error) {
	contentObjNum, err := pb.writer.AddStreamObject(Dictionary{}, pb.content.Bytes(), true)
	if err != nil {
		return 0, err
	}

	var resources strings.Builder
	resources.WriteString("<<")
	writeResourceDict(&resources, "Font", pb.fonts)
	writeResourceDict(&resources, "XObject", pb.images)
	resources.WriteString(">>")

	pageDict := fmt.Sprintf(`<</Type/Page/Parent %d 0 R/MediaBox[0 0 %s %s]/Contents %d 0 R/Resources%s>>`,
		pagesObjNum, formatNumber(pb.size.Width), formatNumber(pb.size.Height), contentObjNum, resources.String())
	return pb.writer.AddObject([]byte(pageDict)), nil
}

// writeResourceDict writes a resource sub-dictionary with names in sorted order
func writeResourceDict(sb *strings.Builder, kind string, entries map[string]int) {
	if len(entries) == 0 {
		return
	}
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	sb.WriteString("/" + kind + "<<")
	for _, name := range names {
		sb.WriteString(fmt.Sprintf("/%s %d 0 R", name, entries[name]))
	}
	sb.WriteString(">>")
}

func formatNumber(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// DocumentBuilder assembles pages into a complete PDF
type DocumentBuilder struct {
	writer      *PDFWriter
	pages       []int
	pagesObjNum int
}

// NewDocumentBuilder creates a new document builder
func NewDocumentBuilder() *DocumentBuilder {
	w := NewPDFWriter()
	return &DocumentBuilder{
		writer:      w,
		pagesObjNum: w.ReserveObject(),
	}
}

// Writer returns the underlying PDF writer for advanced operations
func (b *DocumentBuilder) Writer() *PDFWriter {
	return b.writer
}

// AddPage starts a new page
func (b *DocumentBuilder) AddPage(size PageSize) *PageBuilder {
	return b.writer.NewPageBuilder(size)
}

// FinalizePage appends a built page to the document
func (b *DocumentBuilder) FinalizePage(pb *PageBuilder) error {
	pageObjNum, err := pb.Build(b.pagesObjNum)
	if err != nil {
		return err
	}
	b.pages = append(b.pages, pageObjNum)
	return nil
}

// PageCount returns the number of finalized pages
func (b *DocumentBuilder) PageCount() int {
	return len(b.pages)
}

// Finish writes the page tree and catalog. It must be called once, after
// the last page is finalized.
func (b *DocumentBuilder) Finish() {
	kids := make([]string, len(b.pages))
	for i, pageNum := range b.pages {
		kids[i] = ref(pageNum)
	}
	pagesDict := fmt.Sprintf("<</Type/Pages/Kids[%s]/Count %d>>", strings.Join(kids, " "), len(b.pages))
	b.writer.SetObject(b.pagesObjNum, []byte(pagesDict))

	catalogObjNum := b.writer.AddObject([]byte(fmt.Sprintf("<</Type/Catalog/Pages %d 0 R>>", b.pagesObjNum)))
	b.writer.SetRoot(catalogObjNum)
}
