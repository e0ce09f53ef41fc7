package analysis

import "strings"

// maxRecommendations caps the lines taken after the "recommendation" marker.
const maxRecommendations = 3

// Parse maps a free-text model reply onto a Result using keyword rules.
// It is a heuristic: the first matching rule decides the reliability level.
func Parse(originalContent, analysisText string) Result {
	return Result{
		Content:          Truncate(originalContent, ContentPreviewLimit),
		ReliabilityLevel: ClassifyReliability(analysisText),
		Analysis:         analysisText,
		Claims:           []Claim{},
		Sources:          []string{},
		Recommendations:  ExtractRecommendations(analysisText),
	}
}

// ClassifyReliability checks, in order: "unreliable", then "high"+"reliability",
// then "low"+"reliability". Anything else is medium.
func ClassifyReliability(analysisText string) ReliabilityLevel {
	lower := strings.ToLower(analysisText)
	switch {
	case strings.Contains(lower, "unreliable"):
		return ReliabilityUnreliable
	case strings.Contains(lower, "high") && strings.Contains(lower, "reliability"):
		return ReliabilityHigh
	case strings.Contains(lower, "low") && strings.Contains(lower, "reliability"):
		return ReliabilityLow
	default:
		return ReliabilityMedium
	}
}

// ExtractRecommendations returns up to three non-blank lines following the
// first line that mentions "recommendation". Later markers are ignored.
func ExtractRecommendations(analysisText string) []string {
	out := make([]string, 0, maxRecommendations)
	lines := strings.Split(analysisText, "\n")
	for i, line := range lines {
		if !strings.Contains(strings.ToLower(line), "recommendation") {
			continue
		}
		for _, next := range lines[i+1:] {
			next = strings.TrimSpace(next)
			if next == "" {
				continue
			}
			out = append(out, next)
			if len(out) == maxRecommendations {
				break
			}
		}
		break
	}
	return out
}
