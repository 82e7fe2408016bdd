// Package caption generates the optional AI caption attached to a leaf.
package caption

import (
	"context"
)

// Generator produces a caption for leaf content. Implementations must
// be safe for concurrent use.
type Generator interface {
	Generate(ctx context.Context, content string, fallback string) (string, error)
}

// StaticGenerator returns the classifier-derived caption unchanged.
// Used when AI captioning is disabled.
type StaticGenerator struct{}

// NewStaticGenerator creates the pass-through generator.
func NewStaticGenerator() *StaticGenerator {
	return &StaticGenerator{}
}

func (g *StaticGenerator) Generate(ctx context.Context, content string, fallback string) (string, error) {
	return fallback, nil
}
