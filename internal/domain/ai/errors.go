package ai

import "errors"

// ErrAIService indicates the generative model could not be reached or returned no answer.
var ErrAIService = errors.New("ai service error")

// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("ai quota exceeded")
