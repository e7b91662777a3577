package ai

import "testing"

func TestStripFences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "bare JSON passes through",
			input:    `{"a": 1}`,
			expected: `{"a": 1}`,
		},
		{
			name:     "json fence",
			input:    "```json\n{\"a\": 1}\n```",
			expected: `{"a": 1}`,
		},
		{
			name:     "plain fence",
			input:    "```\n{\"a\": 1}\n```",
			expected: `{"a": 1}`,
		},
		{
			name:     "surrounding whitespace",
			input:    "  \n```json\n{\"a\": 1}\n```\n ",
			expected: `{"a": 1}`,
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripFences(tt.input); got != tt.expected {
				t.Errorf("StripFences(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestConfigured(t *testing.T) {
	if NewClient("", "").Configured() {
		t.Error("client without API key must not report configured")
	}
	if !NewClient("key", "").Configured() {
		t.Error("client with API key must report configured")
	}
	var nilClient *Client
	if nilClient.Configured() {
		t.Error("nil client must not report configured")
	}
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient("key", "")
	if c.Model == "" {
		t.Error("expected default model")
	}
	if c.BaseURL == "" {
		t.Error("expected default base URL")
	}

	custom := NewClient("key", "llama-3.1-8b-instant")
	if custom.Model != "llama-3.1-8b-instant" {
		t.Errorf("model override = %q", custom.Model)
	}
}
