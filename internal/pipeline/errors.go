package pipeline

import "errors"

var (
	// ErrRecordMisalignment indicates the enrichment barrier produced a
	// record set whose length no longer matches the loaded documents.
	ErrRecordMisalignment = errors.New("records misaligned with documents")
)
