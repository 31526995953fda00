package source

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// loadPDF extracts plain text from every page of a PDF and combines the
// pages into a single document, mirroring how the pipeline treats one file
// as one analysis unit.
func loadPDF(path string) (Document, int, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return Document{}, 0, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	pages := reader.NumPage()

	var text strings.Builder
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			return Document{}, 0, fmt.Errorf("extract page %d: %w", i, err)
		}

		if text.Len() > 0 {
			text.WriteString("\n")
		}
		text.WriteString(content)
	}

	doc := Document{
		Title: title(path),
		Text:  text.String(),
		Metadata: map[string]any{
			"source":      path,
			"format":      "pdf",
			"total_pages": pages,
		},
	}
	return doc, pages, nil
}
