package write

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Metadata is the document information dictionary of a generated PDF
type Metadata struct {
	Title        string
	Author       string
	Subject      string
	Keywords     string
	Creator      string
	Producer     string
	CreationDate time.Time
	Custom       map[string]string
}

// SetMetadata creates an Info dictionary object with the provided metadata
// and sets it as the document info. Returns the object number.
func (w *PDFWriter) SetMetadata(metadata *Metadata) int {
	if metadata == nil {
		return 0
	}

	dict := Dictionary{}
	set := func(key, value string) {
		if value != "" {
			dict[key] = Literal(escapePDFStringForMetadata(value))
		}
	}
	set("/Title", metadata.Title)
	set("/Author", metadata.Author)
	set("/Subject", metadata.Subject)
	set("/Keywords", metadata.Keywords)
	set("/Creator", metadata.Creator)
	set("/Producer", metadata.Producer)

	created := metadata.CreationDate
	if created.IsZero() {
		created = time.Now()
	}
	dict["/CreationDate"] = Literal(formatPDFDate(created))
	dict["/ModDate"] = Literal(formatPDFDate(created))

	keys := make([]string, 0, len(metadata.Custom))
	for key := range metadata.Custom {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		value := metadata.Custom[key]
		if key == "" || value == "" {
			continue
		}
		if !strings.HasPrefix(key, "/") {
			key = "/" + key
		}
		dict[key] = Literal(escapePDFStringForMetadata(value))
	}

	objNum := w.AddObject(w.formatDictionary(dict))
	w.SetInfo(objNum)
	return objNum
}

// escapePDFStringForMetadata escapes a string for use in PDF metadata (returns content without parentheses)
func escapePDFStringForMetadata(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "(", "\\(")
	s = strings.ReplaceAll(s, ")", "\\)")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return s
}

// formatPDFDate formats a time as a PDF date: D:YYYYMMDDHHmmSSOHH'mm
func formatPDFDate(t time.Time) string {
	_, offset := t.Zone()
	sign := '+'
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	return fmt.Sprintf("D:%04d%02d%02d%02d%02d%02d%c%02d'%02d",
		t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second(),
		sign, offset/3600, (offset%3600)/60)
}
