package repository

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateUTF8(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		limit    int
		expected string
	}{
		{"short text untouched", "particulars of claim", 100, "particulars of claim"},
		{"exact limit untouched", "abcde", 5, "abcde"},
		{"ascii cut at limit", "abcdef", 4, "abcd"},
		{"pound sign straddling limit", "ab£cd", 3, "ab"},
		{"pound sign just inside limit", "ab£cd", 4, "ab£"},
		{"curly quote straddling limit", "a“quoted”", 2, "a"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := truncateUTF8(tc.input, tc.limit)
			if result != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, result)
			}
			if !utf8.ValidString(result) {
				t.Errorf("Result %q is not valid UTF-8", result)
			}
		})
	}
}

func TestTruncateUTF8_LongDocument(t *testing.T) {
	// A claim document full of pound amounts. Any byte-boundary cut through
	// a £ would produce invalid UTF-8 and be rejected by the database.
	text := strings.Repeat("claim for £5,000 ", 1000)

	result := truncateUTF8(text, maxStoredDocumentBytes)
	if len(result) > maxStoredDocumentBytes {
		t.Errorf("Expected at most %d bytes, got %d", maxStoredDocumentBytes, len(result))
	}
	if !utf8.ValidString(result) {
		t.Error("Truncated document is not valid UTF-8")
	}
	if !strings.HasPrefix(text, result) {
		t.Error("Truncated document is not a prefix of the original")
	}
}
