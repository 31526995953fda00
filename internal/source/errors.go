package source

import "errors"

// Sentinel errors for document loading.
var (
	ErrLoad        = errors.New("failed to load documents")
	ErrUnsupported = errors.New("unsupported document format")
)
