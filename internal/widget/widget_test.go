package widget

import (
	"strings"
	"testing"
	"time"

	"lexline/internal/models"
)

type fakeSurface struct {
	nodes       []*Node
	sendEnabled bool
	inputText   string
	remaining   int
	inputErrors []string
	statusMsgs  []string
	scrolls     int
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{sendEnabled: true}
}

func (s *fakeSurface) AppendNode(n *Node) { s.nodes = append(s.nodes, n) }

func (s *fakeSurface) RemoveNode(n *Node) {
	for i, existing := range s.nodes {
		if existing == n {
			s.nodes = append(s.nodes[:i], s.nodes[i+1:]...)
			return
		}
	}
}

func (s *fakeSurface) ScrollToBottom()              { s.scrolls++ }
func (s *fakeSurface) SetStatus(_ bool, msg string) { s.statusMsgs = append(s.statusMsgs, msg) }
func (s *fakeSurface) SetSendEnabled(enabled bool)  { s.sendEnabled = enabled }
func (s *fakeSurface) SetInputText(text string)     { s.inputText = text }
func (s *fakeSurface) SetCharsRemaining(n int)      { s.remaining = n }
func (s *fakeSurface) ShowInputError(msg string)    { s.inputErrors = append(s.inputErrors, msg) }

func (s *fakeSurface) countKind(kind string) int {
	count := 0
	for _, n := range s.nodes {
		if n.Kind == kind {
			count++
		}
	}
	return count
}

type fakeEmitter struct {
	emitted []models.UserMessage
}

func (e *fakeEmitter) Emit(event string, payload interface{}) error {
	if event == models.EventUserMessage {
		e.emitted = append(e.emitted, payload.(models.UserMessage))
	}
	return nil
}

func newTestWidget() (*Widget, *fakeSurface, *fakeEmitter) {
	surface := newFakeSurface()
	emitter := &fakeEmitter{}
	w := New(surface, emitter)
	w.HandleConnect()
	return w, surface, emitter
}

func TestSendMessage_EmptyInputNeverEmits(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace only", "   \n\t  "},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w, surface, emitter := newTestWidget()

			w.SetInput(tc.input)
			w.SendMessage()

			if len(emitter.emitted) != 0 {
				t.Errorf("Expected no emission, got %d", len(emitter.emitted))
			}
			if surface.countKind("message") != 0 {
				t.Error("Expected no message appended")
			}
		})
	}
}

func TestSendMessage_LengthBoundary(t *testing.T) {
	t.Run("length 1001 shows inline error and does not emit", func(t *testing.T) {
		w, surface, emitter := newTestWidget()

		w.SetInput(strings.Repeat("a", 1001))
		w.SendMessage()

		if len(emitter.emitted) != 0 {
			t.Errorf("Expected no emission, got %d", len(emitter.emitted))
		}
		if len(surface.inputErrors) != 1 {
			t.Errorf("Expected one inline error, got %d", len(surface.inputErrors))
		}
	})

	t.Run("length 1000 sends successfully", func(t *testing.T) {
		w, surface, emitter := newTestWidget()

		text := strings.Repeat("a", 1000)
		w.SetInput(text)
		w.SendMessage()

		if len(emitter.emitted) != 1 || emitter.emitted[0].Message != text {
			t.Fatalf("Expected one emission of the full text, got %v", emitter.emitted)
		}
		if len(surface.inputErrors) != 0 {
			t.Errorf("Expected no inline error, got %v", surface.inputErrors)
		}
	})
}

func TestSendMessage_NoOpWhenDisconnected(t *testing.T) {
	w, surface, emitter := newTestWidget()
	w.HandleDisconnect()

	w.SetInput("What is the small claims limit?")
	w.SendMessage()

	if len(emitter.emitted) != 0 {
		t.Errorf("Expected no emission after disconnect, got %d", len(emitter.emitted))
	}
	if surface.countKind("message") != 0 {
		t.Error("Expected no message appended after disconnect")
	}
}

func TestSendMessage_AppendsClearsAndDisables(t *testing.T) {
	w, surface, emitter := newTestWidget()

	w.SetInput("My landlord won't return my deposit")
	w.SendMessage()

	if surface.countKind("message") != 1 {
		t.Fatalf("Expected one message node, got %d", surface.countKind("message"))
	}
	if len(emitter.emitted) != 1 {
		t.Fatalf("Expected one emission, got %d", len(emitter.emitted))
	}
	if surface.inputText != "" {
		t.Errorf("Expected input cleared, got %q", surface.inputText)
	}
	if surface.remaining != MaxMessageLength {
		t.Errorf("Expected counter reset to %d, got %d", MaxMessageLength, surface.remaining)
	}
	if surface.sendEnabled {
		t.Error("Expected send control disabled until a response arrives")
	}
}

func TestAskQuickQuestion(t *testing.T) {
	w, surface, emitter := newTestWidget()

	w.AskQuickQuestion("How do I start a small claim?")

	if len(emitter.emitted) != 1 || emitter.emitted[0].Message != "How do I start a small claim?" {
		t.Fatalf("Expected quick question emitted, got %v", emitter.emitted)
	}
	if surface.countKind("message") != 1 {
		t.Errorf("Expected one message node, got %d", surface.countKind("message"))
	}
}

func TestHandleTyping_Idempotent(t *testing.T) {
	w, surface, _ := newTestWidget()

	w.HandleTyping(models.TypingEvent{Typing: true})
	w.HandleTyping(models.TypingEvent{Typing: true})

	if surface.countKind("typing") != 1 {
		t.Fatalf("Expected exactly one indicator node, got %d", surface.countKind("typing"))
	}

	w.HandleTyping(models.TypingEvent{Typing: false})
	if surface.countKind("typing") != 0 {
		t.Fatalf("Expected indicator removed, got %d", surface.countKind("typing"))
	}

	// Hiding again must not disturb the thread
	before := len(surface.nodes)
	w.HandleTyping(models.TypingEvent{Typing: false})
	if len(surface.nodes) != before {
		t.Error("Expected hide-when-hidden to be a no-op")
	}
}

func TestHandleBotResponse_ReenablesSend(t *testing.T) {
	w, surface, _ := newTestWidget()

	w.SetInput("Do I need a solicitor?")
	w.SendMessage()
	if surface.sendEnabled {
		t.Fatal("Expected send disabled after send")
	}

	w.HandleBotResponse(models.BotResponse{Type: "success", Message: "It depends on the claim."})

	if !surface.sendEnabled {
		t.Error("Expected send re-enabled after response")
	}
	if surface.countKind("message") != 2 {
		t.Errorf("Expected user and bot messages, got %d", surface.countKind("message"))
	}
}

func TestHandleBotResponse_ErrorShowsBanner(t *testing.T) {
	w, surface, _ := newTestWidget()

	w.HandleBotResponse(models.BotResponse{Type: "error", Message: "Please enter a legal query."})

	if surface.countKind("message") != 0 {
		t.Error("Expected no message bubble for an error response")
	}
	if surface.countKind("error") != 1 {
		t.Errorf("Expected one error banner, got %d", surface.countKind("error"))
	}
	if !surface.sendEnabled {
		t.Error("Expected send re-enabled after an error response")
	}
}

func TestShowError_AutoRemoves(t *testing.T) {
	w, surface, _ := newTestWidget()
	w.errorTTL = 10 * time.Millisecond

	w.ShowError("Something went wrong")
	if surface.countKind("error") != 1 {
		t.Fatalf("Expected one banner, got %d", surface.countKind("error"))
	}

	time.Sleep(50 * time.Millisecond)

	w.mu.Lock()
	remaining := surface.countKind("error")
	w.mu.Unlock()
	if remaining != 0 {
		t.Errorf("Expected banner auto-removed, got %d", remaining)
	}
}

func TestShowError_EarlyDismissGuardsTimer(t *testing.T) {
	w, surface, _ := newTestWidget()
	w.errorTTL = 10 * time.Millisecond

	w.ShowError("Something went wrong")

	w.mu.Lock()
	var banner *Node
	for node := range w.errorNodes {
		banner = node
	}
	w.mu.Unlock()

	w.DismissError(banner)
	if surface.countKind("error") != 0 {
		t.Fatal("Expected banner dismissed")
	}

	// The timer firing later must not remove anything twice
	time.Sleep(50 * time.Millisecond)

	w.mu.Lock()
	total := len(surface.nodes)
	w.mu.Unlock()
	if total != 0 {
		t.Errorf("Expected no nodes after guarded timer, got %d", total)
	}
}

func TestClear_EmptiesThread(t *testing.T) {
	w, surface, _ := newTestWidget()

	w.SetInput("First question")
	w.SendMessage()
	w.HandleBotResponse(models.BotResponse{Type: "success", Message: "First answer"})

	w.Clear()

	if surface.countKind("message") != 0 {
		t.Errorf("Expected thread cleared, got %d messages", surface.countKind("message"))
	}
	if len(w.Messages()) != 0 {
		t.Errorf("Expected in-memory thread cleared, got %d", len(w.Messages()))
	}
}

func TestMessages_AppendOnlyOrder(t *testing.T) {
	w, _, _ := newTestWidget()

	w.SetInput("one")
	w.SendMessage()
	w.HandleBotResponse(models.BotResponse{Type: "success", Message: "two"})
	w.SetInput("three")
	w.SendMessage()

	msgs := w.Messages()
	if len(msgs) != 3 {
		t.Fatalf("Expected 3 messages, got %d", len(msgs))
	}
	expected := []string{"one", "two", "three"}
	for i, want := range expected {
		if msgs[i].Content != want {
			t.Errorf("Expected message %d to be %q, got %q", i, want, msgs[i].Content)
		}
	}
}
