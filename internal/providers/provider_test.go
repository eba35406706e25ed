package providers

import (
	"testing"
)

func TestNew(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"openai", Config{Provider: "openai", APIKey: "k", Model: "gpt-4o-mini"}, false},
		{"openai missing key", Config{Provider: "openai", Model: "gpt-4o-mini"}, true},
		{"gemini", Config{Provider: "gemini", APIKey: "k", Model: "gemini-2.0-flash"}, false},
		{"google alias", Config{Provider: "google", APIKey: "k", Model: "gemini-2.0-flash"}, false},
		{"groq", Config{Provider: "groq", APIKey: "k", Model: "llama-3.1-8b-instant"}, false},
		{"custom", Config{Provider: "custom", Host: "localhost", Port: 9000}, false},
		{"custom missing host", Config{Provider: "custom", Port: 9000}, true},
		{"unknown", Config{Provider: "anthropic"}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			analyzer, err := New(tc.cfg)
			if tc.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New error: %v", err)
			}
			if analyzer.Name() == "" {
				t.Error("Name should not be empty")
			}
		})
	}
}

func TestDefaultModel(t *testing.T) {
	cases := map[string]string{
		"openai": "gpt-4o-mini",
		"gemini": "gemini-2.0-flash",
		"groq":   "llama-3.1-8b-instant",
		"custom": "",
	}
	for provider, want := range cases {
		if got := DefaultModel(provider); got != want {
			t.Errorf("DefaultModel(%q) = %q, want %q", provider, got, want)
		}
	}
}
