package extract

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

type pdfDoc struct {
	text     string
	pages    int
	warnings []string
}

// readPDF extracts page text in page order. A page that fails contributes an
// empty segment and a warning; the remaining pages are still read.
func readPDF(data []byte, maxPages int) pdfDoc {
	var doc pdfDoc

	r, err := openPDF(data)
	if err != nil {
		doc.warnings = append(doc.warnings, "open pdf: "+err.Error())
		doc.pages = probePageCount(data)
		return doc
	}

	doc.pages = readerPageCount(r)
	if doc.pages == 0 {
		doc.pages = probePageCount(data)
	}

	n := doc.pages
	if maxPages > 0 && n > maxPages {
		doc.warnings = append(doc.warnings, fmt.Sprintf("text extraction limited to first %d of %d pages", maxPages, n))
		n = maxPages
	}

	parts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		txt, err := pageText(r, i)
		if err != nil {
			doc.warnings = append(doc.warnings, fmt.Sprintf("page %d: %v", i, err))
		}
		parts = append(parts, txt)
	}
	doc.text = strings.Join(parts, "\n")
	return doc
}

func openPDF(data []byte) (r *pdf.Reader, err error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty document")
	}
	defer func() {
		if rec := recover(); rec != nil {
			r, err = nil, fmt.Errorf("parser panic: %v", rec)
		}
	}()
	return pdf.NewReader(bytes.NewReader(data), int64(len(data)))
}

func readerPageCount(r *pdf.Reader) (n int) {
	defer func() {
		if rec := recover(); rec != nil {
			n = 0
		}
	}()
	return r.NumPage()
}

func pageText(r *pdf.Reader, num int) (txt string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			txt, err = "", fmt.Errorf("parser panic: %v", rec)
		}
	}()
	p := r.Page(num)
	if p.V.IsNull() {
		return "", fmt.Errorf("page object missing")
	}
	return p.GetPlainText(nil)
}

// Matches "/Type /Page" and "/Type/Page" but not "/Type /Pages".
var rePageObject = regexp.MustCompile(`/Type\s*/Page\b`)

// probePageCount counts page objects in the raw bytes. It does not need the
// cross-reference table, so it still works when the parser gives up
// (truncated files, encrypted content).
func probePageCount(data []byte) int {
	return len(rePageObject.FindAllIndex(data, -1))
}
