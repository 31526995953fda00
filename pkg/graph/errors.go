package graph

import "errors"

// Sentinel errors for graph construction and validation.
var (
	ErrEmptyGraph    = errors.New("graph has no nodes")
	ErrDuplicateNode = errors.New("duplicate node")
	ErrUnknownNode   = errors.New("unknown node")
	ErrCycle         = errors.New("graph contains a cycle")
)
