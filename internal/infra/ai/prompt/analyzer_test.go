package prompt

import (
	"strings"
	"testing"
)

func TestGetTextPromptEmbedsContent(t *testing.T) {
	p := GetTextPrompt("Vaccines contain microchips.")
	if !strings.Contains(p, "Vaccines contain microchips.") {
		t.Fatal("content missing from prompt")
	}
	for _, want := range []string{"reliability", "Key claims", "Fact-check", "biases", "Recommendations"} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestGetImagePromptAsksForRecommendations(t *testing.T) {
	if !strings.Contains(GetImagePrompt(), "Recommendations") {
		t.Error("image prompt should ask for recommendations")
	}
}
