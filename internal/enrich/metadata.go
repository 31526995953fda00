package enrich

import (
	"context"
	"log/slog"
	"strings"

	"github.com/prismworks/prism/internal/source"
)

// Annotate is the metadata stage: it produces one Identity contribution per
// document, computing the content hash and flagging exact duplicates via the
// run-scoped hash set. Duplicates are flagged, never removed; downstream
// stages still process them. Must run before the fan-out barrier; it is the
// sole writer of the hash set.
func Annotate(ctx context.Context, logger *slog.Logger, docs []source.Document, set *HashSet) []Record {
	logger = ensureLogger(logger)
	records := make([]Record, len(docs))
	duplicates := 0

	for i, doc := range docs {
		hash := ContentHash(doc.Text)
		duplicate := set.Seen(hash)
		if duplicate {
			duplicates++
		}

		identity := &Identity{
			Title:       doc.Title,
			ContentHash: hash,
			TokenCount:  len(strings.Fields(doc.Text)),
			IsDuplicate: duplicate,
		}
		if src, ok := doc.Metadata["source"].(string); ok {
			identity.Source = src
		}

		records[i] = Record{Identity: identity}
	}

	logger.InfoContext(
		ctx, "metadata stage complete",
		"documents", len(docs),
		"duplicates", duplicates,
	)
	return records
}
