package synthesis

import "testing"

func TestNormalizeOpenAIBaseURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want string
	}{
		{"", ""},
		{"https://api.openai.com", "https://api.openai.com/v1"},
		{"https://api.openai.com/", "https://api.openai.com/v1"},
		{"https://api.openai.com/v1", "https://api.openai.com/v1"},
		{"https://api.openai.com/v1/", "https://api.openai.com/v1"},
		{"https://proxy.example.com/openai", "https://proxy.example.com/openai/v1"},
	}
	for _, tt := range tests {
		if got := normalizeOpenAIBaseURL(tt.raw); got != tt.want {
			t.Errorf("normalizeOpenAIBaseURL(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestNormalizeOpenAICompatibleEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want string
	}{
		{"", "https://api.openai.com"},
		{"https://api.groq.com/openai/v1", "https://api.groq.com/openai"},
		{"https://api.groq.com/openai/v1/", "https://api.groq.com/openai"},
		{"https://llm.example.com", "https://llm.example.com"},
		{"https://llm.example.com/", "https://llm.example.com"},
	}
	for _, tt := range tests {
		if got := normalizeOpenAICompatibleEndpoint(tt.raw); got != tt.want {
			t.Errorf("normalizeOpenAICompatibleEndpoint(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestIsOpenAICompatibleProviderType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want bool
	}{
		{"OpenAI-Compatible", true},
		{"openai_compatible", true},
		{"OpenAI Compatible", true},
		{"OpenAI", false},
		{"Anthropic", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isOpenAICompatibleProviderType(tt.raw); got != tt.want {
			t.Errorf("isOpenAICompatibleProviderType(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}
