// Package caption generates one-line descriptions for album moments
// using a vision-capable LLM. Captions are an enrichment step; the
// pipeline degrades gracefully when no provider is configured.
package caption

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
)

//go:embed prompts/moment_caption.txt
var momentCaptionPrompt string

// Provider defines the interface for caption backends.
type Provider interface {
	Name() string
	MomentCaption(ctx context.Context, imageData []byte, placeName string) (string, error)

	// Usage tracking.
	GetUsage() *Usage
	ResetUsage()
}

// Usage tracks token usage and calculates cost.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalCost    float64 // in USD
}

// RequestPricing holds input/output prices per 1M tokens.
type RequestPricing struct {
	Input  float64
	Output float64
}

func buildCaptionPrompt(placeName string) string {
	return fmt.Sprintf(momentCaptionPrompt, placeName)
}

// cleanCaption strips quotes and whitespace the model sometimes wraps
// around the caption.
func cleanCaption(text string) string {
	text = strings.TrimSpace(text)
	text = strings.Trim(text, `"'`)
	return strings.TrimSpace(text)
}
