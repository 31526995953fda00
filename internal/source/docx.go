package source

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// documentXML mirrors the subset of word/document.xml needed for text
// extraction: paragraphs containing runs containing text elements.
type documentXML struct {
	Body struct {
		Paragraphs []struct {
			Runs []struct {
				Text []struct {
					Content string `xml:",chardata"`
				} `xml:"t"`
			} `xml:"r"`
		} `xml:"p"`
	} `xml:"body"`
}

// loadDOCX extracts paragraph text from a DOCX archive's word/document.xml.
// DOCX has no stable page concept before rendering, so the whole document
// counts as one page.
func loadDOCX(path string) (Document, int, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return Document{}, 0, fmt.Errorf("open docx: %w", err)
	}
	defer archive.Close()

	text, err := extractDocumentXML(&archive.Reader)
	if err != nil {
		return Document{}, 0, err
	}

	doc := Document{
		Title: title(path),
		Text:  text,
		Metadata: map[string]any{
			"source":      path,
			"format":      "docx",
			"total_pages": 1,
		},
	}
	return doc, 1, nil
}

func extractDocumentXML(reader *zip.Reader) (string, error) {
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("open document.xml: %w", err)
		}

		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("read document.xml: %w", err)
		}

		return parseDocumentXML(content), nil
	}
	return "", fmt.Errorf("document.xml not found in archive")
}

func parseDocumentXML(content []byte) string {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return ""
	}

	var result strings.Builder
	for i, para := range doc.Body.Paragraphs {
		if i > 0 {
			result.WriteString("\n")
		}
		for _, r := range para.Runs {
			for _, t := range r.Text {
				result.WriteString(t.Content)
			}
		}
	}
	return strings.TrimSpace(result.String())
}
