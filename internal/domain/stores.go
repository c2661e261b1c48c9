package domain

import (
	"context"
	"errors"
)

// ErrNotFound is returned by sources when the requested record does not exist.
var ErrNotFound = errors.New("not found")

// CatalogSource loads the read-only benefit catalog once at startup.
type CatalogSource interface {
	Load(ctx context.Context) ([]CatalogEntry, error)
}

type ApplicationStatusSource interface {
	GetByReference(ctx context.Context, referenceID string) (*ApplicationStatus, error)
}

// ContradictionLog receives contradictions after they are resolved.
type ContradictionLog interface {
	Record(ctx context.Context, c *Contradiction) error
}

type GenerateOptions struct {
	Temperature float32
	MaxTokens   int
}

// TextGenerator is the external text-generation service.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}
