package ai

import "context"

// NopRephraser is used when ai.enabled is false. It returns text unchanged
// with no LLM calls.
type NopRephraser struct{}

// NewNopRephraser returns a NopRephraser.
func NewNopRephraser() *NopRephraser {
	return &NopRephraser{}
}

// Rephrase returns text unchanged.
func (n *NopRephraser) Rephrase(_ context.Context, _ string, text string) (string, error) {
	return text, nil
}
