package prompt

import "fmt"

// GetSystemPrompt sets the assistant role for every analysis request.
func GetSystemPrompt() string {
	return `You are a careful fact-checking analyst. You assess content for misinformation, bias and reliability.
Answer in plain text with clear section headings. Do not use JSON or code fences.
Always state the overall reliability explicitly as one of: high, medium, low, unreliable.`
}

// GetTextPrompt wraps the content to analyze with the reliability checklist.
func GetTextPrompt(content string) string {
	return fmt.Sprintf(`Analyze the following content for misinformation, bias, and reliability:

%s

Please provide:
1. Overall reliability assessment (high/medium/low/unreliable)
2. Key claims identified
3. Fact-check results
4. Potential biases or red flags
5. Recommendations for verification

Format the response clearly with sections.`, content)
}

// GetImagePrompt is sent together with the raw image bytes.
func GetImagePrompt() string {
	return `Analyze this image for misinformation, manipulated content, or misleading elements.

Please provide:
1. Content description
2. Signs of manipulation or fakery
3. Reliability assessment
4. Recommendations`
}
