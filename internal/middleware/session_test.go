package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func TestSessionAuth_TokenRoundTrip(t *testing.T) {
	auth := NewSessionAuth("test-secret")
	sessionID := uuid.New()

	token, err := auth.GenerateToken(sessionID)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	parsed, err := auth.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if parsed != sessionID {
		t.Errorf("Expected %s, got %s", sessionID, parsed)
	}
}

func TestSessionAuth_RejectsWrongSecret(t *testing.T) {
	token, _ := NewSessionAuth("secret-a").GenerateToken(uuid.New())

	if _, err := NewSessionAuth("secret-b").ParseToken(token); err == nil {
		t.Error("Expected error for token signed with a different secret")
	}
}

func TestSessionAuth_Middleware(t *testing.T) {
	auth := NewSessionAuth("test-secret")
	sessionID := uuid.New()
	token, _ := auth.GenerateToken(sessionID)

	var captured uuid.UUID
	handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetSessionID(r.Context())
	}))

	tests := []struct {
		name         string
		authHeader   string
		query        string
		expectedCode int
	}{
		{"bearer header", "Bearer " + token, "", http.StatusOK},
		{"token query param", "", "?token=" + token, http.StatusOK},
		{"missing token", "", "", http.StatusUnauthorized},
		{"malformed header", "Token " + token, "", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", "", http.StatusUnauthorized},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			captured = uuid.Nil
			req := httptest.NewRequest(http.MethodGet, "/api/v1/chat-history"+tc.query, nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			if rr.Code != tc.expectedCode {
				t.Errorf("Expected status %d, got %d", tc.expectedCode, rr.Code)
			}
			if tc.expectedCode == http.StatusOK && captured != sessionID {
				t.Errorf("Expected session id in context, got %s", captured)
			}
		})
	}
}

func TestSessionAuth_ExpiredToken(t *testing.T) {
	auth := NewSessionAuth("test-secret")

	claims := jwt.MapClaims{
		"session_id": uuid.New().String(),
		"exp":        time.Now().Add(-time.Hour).Unix(),
		"iat":        time.Now().Add(-2 * time.Hour).Unix(),
	}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(auth.Secret)

	handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest(http.MethodGet, "/api/v1/chat-history", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", rr.Code)
	}
	if body := rr.Body.String(); !strings.Contains(body, "TOKEN_EXPIRED") {
		t.Errorf("Expected TOKEN_EXPIRED code, got %s", body)
	}
}
