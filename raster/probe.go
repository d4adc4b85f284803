package raster

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Info is the result of probing a PDF before rasterizing it.
type Info struct {
	// Pages is the page count.
	Pages int
	// HasTextLayer reports whether any of the sampled pages carries
	// extractable text. Scanned manuals usually have none; when text is
	// present the caller can warn that vision OCR may be wasteful.
	HasTextLayer bool
}

// textProbePages bounds how many pages the text-layer peek reads.
const textProbePages = 5

// Probe opens the PDF and returns its page count plus a cheap
// text-layer check over the first few pages.
func Probe(path string) (Info, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("probing pdf: %w", err)
	}
	defer f.Close()

	info := Info{Pages: reader.NumPage()}

	limit := info.Pages
	if limit > textProbePages {
		limit = textProbePages
	}
	for i := 1; i <= limit; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if strings.TrimSpace(text) != "" {
			info.HasTextLayer = true
			break
		}
	}
	return info, nil
}
