package ai

import "context"

// Client is the generative model used for reliability assessments.
type Client interface {
	AnalyzeText(ctx context.Context, text string) (string, error)
	AnalyzeImage(ctx context.Context, data []byte) (string, error)
}
