package config

import (
	"os"
	"testing"
)

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal string
		expected   string
	}{
		{"uses configured port", "PORT", "9090", "8080", "9090"},
		{"falls back to default port", "PORT", "", "8080", "8080"},
		{"falls back to default storage path", "STORAGE_PATH", "", "./uploads", "./uploads"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			os.Unsetenv(tc.key)
			if tc.envValue != "" {
				os.Setenv(tc.key, tc.envValue)
				defer os.Unsetenv(tc.key)
			}

			result := getEnvOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, result)
			}
		})
	}
}

func TestGetEnvAsIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal int
		expected   int
	}{
		{"parses concurrency limit", "GEMINI_CONCURRENT_REQUESTS", "8", 5, 8},
		{"uses default concurrency when unset", "GEMINI_CONCURRENT_REQUESTS", "", 5, 5},
		{"uses default for non-numeric", "GEMINI_CONCURRENT_REQUESTS", "many", 5, 5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			os.Unsetenv(tc.key)
			if tc.envValue != "" {
				os.Setenv(tc.key, tc.envValue)
				defer os.Unsetenv(tc.key)
			}

			result := getEnvAsIntOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %d, got %d", tc.expected, result)
			}
		})
	}
}

func TestMustGetEnv_Panics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for missing required env var")
		}
	}()

	os.Unsetenv("SESSION_SECRET")
	mustGetEnv("SESSION_SECRET")
}

func TestMustGetEnv_ReturnsValue(t *testing.T) {
	os.Setenv("SESSION_SECRET", "sealed-at-rest")
	defer os.Unsetenv("SESSION_SECRET")

	result := mustGetEnv("SESSION_SECRET")
	if result != "sealed-at-rest" {
		t.Errorf("Expected 'sealed-at-rest', got %q", result)
	}
}
