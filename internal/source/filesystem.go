package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

var supportedExtensions = []string{".txt", ".md", ".pdf", ".docx"}

// Filesystem loads documents from the local filesystem. A directory path
// loads every supported file in it (sorted by name, non-recursive); a file
// path loads that single file.
type Filesystem struct {
	logger *slog.Logger
}

// NewFilesystem creates a filesystem source.
func NewFilesystem(logger *slog.Logger) *Filesystem {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Filesystem{logger: logger}
}

// Load reads all supported documents under path and returns them with load
// statistics. An invalid path, an unsupported single-file format, or a
// directory containing no supported files fails with ErrLoad.
func (f *Filesystem) Load(ctx context.Context, path string) ([]Document, LoadStats, error) {
	start := time.Now()

	paths, err := f.resolve(path)
	if err != nil {
		return nil, LoadStats{}, err
	}

	var documents []Document
	totalPages := 0

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, LoadStats{}, err
		}

		doc, pages, err := loadFile(p)
		if err != nil {
			return nil, LoadStats{}, fmt.Errorf("%w: %s: %w", ErrLoad, p, err)
		}

		documents = append(documents, doc)
		totalPages += pages

		f.logger.InfoContext(
			ctx, "document loaded",
			"path", p,
			"pages", pages,
			"bytes", len(doc.Text),
		)
	}

	stats := LoadStats{
		Documents:  len(documents),
		TotalPages: totalPages,
		LoadTime:   time.Since(start),
	}
	return documents, stats, nil
}

func (f *Filesystem) resolve(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoad, path, err)
	}

	if !info.IsDir() {
		if !supported(path) {
			return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
		}
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoad, path, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !supported(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(path, entry.Name()))
	}
	slices.Sort(paths)

	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no supported documents in %s", ErrLoad, path)
	}
	return paths, nil
}

func supported(path string) bool {
	return slices.Contains(supportedExtensions, strings.ToLower(filepath.Ext(path)))
}

// loadFile dispatches on extension and returns the document and its page
// count. Plain-text formats count as one page.
func loadFile(path string) (Document, int, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return loadPDF(path)
	case ".docx":
		return loadDOCX(path)
	default:
		return loadText(path)
	}
}

func loadText(path string) (Document, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, 0, err
	}

	doc := Document{
		Title: title(path),
		Text:  string(data),
		Metadata: map[string]any{
			"source":      path,
			"format":      strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."),
			"total_pages": 1,
		},
	}
	return doc, 1, nil
}

// title derives a document title from the filename.
func title(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
