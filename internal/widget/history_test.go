package widget

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLoadHistory_ReplaysTurns(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/chat-history" {
			t.Errorf("Unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Expected bearer token, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"history":[
			{"message":"What is the small claims limit?","response":"The limit is **£10,000**.","legal_category":"general","created_at":"2026-08-30T10:00:00Z"},
			{"message":"Unanswered question","created_at":"2026-08-30T10:05:00Z"}
		]}`))
	}))
	defer server.Close()

	w, surface, _ := newTestWidget()
	w.LoadHistory(context.Background(), server.Client(), server.URL, "test-token")

	// Two user messages plus one paired bot response
	if surface.countKind("message") != 3 {
		t.Fatalf("Expected 3 replayed messages, got %d", surface.countKind("message"))
	}

	msgs := w.Messages()
	if msgs[0].Sender != SenderUser || msgs[1].Sender != SenderBot || msgs[2].Sender != SenderUser {
		t.Errorf("Unexpected sender order: %s %s %s", msgs[0].Sender, msgs[1].Sender, msgs[2].Sender)
	}
	if !strings.Contains(surface.nodes[1].HTML, "<strong>£10,000</strong>") {
		t.Errorf("Expected replayed bot response to use the render pipeline, got %q", surface.nodes[1].HTML)
	}
}

func TestLoadHistory_FailureIsNonFatal(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"history": not-json`))
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(tc.handler)
			defer server.Close()

			w, surface, emitter := newTestWidget()
			w.LoadHistory(context.Background(), server.Client(), server.URL, "test-token")

			if surface.countKind("message") != 0 {
				t.Errorf("Expected empty thread after failed load, got %d", surface.countKind("message"))
			}

			// The widget still works after a failed load
			w.SetInput("still alive?")
			w.SendMessage()
			if len(emitter.emitted) != 1 {
				t.Error("Expected widget usable after history failure")
			}
		})
	}
}
