package widget

import (
	"log"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"lexline/internal/models"
)

// MaxMessageLength is the longest query the widget will send.
const MaxMessageLength = 1000

const errorBannerTTL = 5 * time.Second

const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// Message is one in-memory turn of the rendered thread. The thread is
// append-only: entries are never reordered or mutated, only cleared wholesale.
type Message struct {
	Content   string
	Sender    string
	Timestamp time.Time
	Aux       *models.BotResponse
}

// Widget is the chat controller: it owns the connection flag, the in-memory
// thread and the typing indicator, and mediates between the transport and
// the rendering surface. All event handlers are safe to call from transport
// callbacks.
type Widget struct {
	mu sync.Mutex

	surface Surface
	emitter Emitter

	connected   bool
	input       string
	sendEnabled bool

	messages     []Message
	messageNodes []*Node
	typingNode   *Node
	errorNodes   map[*Node]bool

	errorTTL time.Duration
	now      func() time.Time
}

func New(surface Surface, emitter Emitter) *Widget {
	w := &Widget{
		surface:     surface,
		emitter:     emitter,
		sendEnabled: true,
		errorNodes:  make(map[*Node]bool),
		errorTTL:    errorBannerTTL,
		now:         time.Now,
	}
	w.surface.SetCharsRemaining(MaxMessageLength)
	return w
}

// HandleConnect marks the channel up and re-enables sending.
func (w *Widget) HandleConnect() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.connected = true
	w.surface.SetStatus(true, "Connected")
}

// HandleDisconnect marks the channel down. Pending sends become no-ops until
// the transport reconnects.
func (w *Widget) HandleDisconnect() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.connected = false
	w.surface.SetStatus(false, "Disconnected")
}

// HandleStatus shows the server's connection greeting.
func (w *Widget) HandleStatus(ev models.StatusEvent) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.surface.SetStatus(w.connected, ev.Msg)
}

// SetInput mirrors the text field and refreshes the remaining-character
// counter. Call it on every keystroke.
func (w *Widget) SetInput(text string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.input = text
	w.surface.SetCharsRemaining(MaxMessageLength - utf8.RuneCountInString(text))
}

// SendMessage validates and emits the current input. Empty input and a down
// transport are silent no-ops; over-length input shows an inline error and
// emits nothing.
func (w *Widget) SendMessage() {
	w.mu.Lock()
	defer w.mu.Unlock()

	text := strings.TrimSpace(w.input)
	if text == "" || !w.connected {
		return
	}

	if utf8.RuneCountInString(text) > MaxMessageLength {
		w.surface.ShowInputError("Message is too long. Please keep it under 1000 characters.")
		return
	}

	w.appendMessage(text, SenderUser, nil)

	w.input = ""
	w.surface.SetInputText("")
	w.surface.SetCharsRemaining(MaxMessageLength)

	if err := w.emitter.Emit(models.EventUserMessage, models.UserMessage{Message: text}); err != nil {
		log.Printf("widget: emit failed: %v", err)
		w.showErrorLocked("Could not send your message. Please try again.")
		return
	}

	w.sendEnabled = false
	w.surface.SetSendEnabled(false)
}

// AskQuickQuestion fills the input with a preset query and sends it.
func (w *Widget) AskQuickQuestion(question string) {
	w.SetInput(question)
	w.SendMessage()
}

// HandleBotResponse renders a server reply and re-enables the send control.
// Error-typed responses surface as a banner instead of a bubble.
func (w *Widget) HandleBotResponse(resp models.BotResponse) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.sendEnabled = true
	w.surface.SetSendEnabled(true)

	if resp.Type == "error" {
		w.showErrorLocked(resp.Message)
		return
	}

	aux := resp
	w.appendMessage(resp.Message, SenderBot, &aux)
}

// HandleTyping drives the two-state indicator. Both transitions are
// idempotent: a second show is a no-op, as is hiding when already hidden.
func (w *Widget) HandleTyping(ev models.TypingEvent) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if ev.Typing {
		if w.typingNode != nil {
			return
		}
		node := &Node{Kind: "typing", HTML: typingHTML}
		w.typingNode = node
		w.surface.AppendNode(node)
		w.surface.ScrollToBottom()
		return
	}

	if w.typingNode == nil {
		return
	}
	w.surface.RemoveNode(w.typingNode)
	w.typingNode = nil
}

// ShowError inserts a dismissible banner and removes it after five seconds.
// The removal is guarded so a banner dismissed early is not removed twice.
func (w *Widget) ShowError(message string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.showErrorLocked(message)
}

func (w *Widget) showErrorLocked(message string) {
	node := &Node{Kind: "error", HTML: renderError(message)}
	w.errorNodes[node] = true
	w.surface.AppendNode(node)

	time.AfterFunc(w.errorTTL, func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if !w.errorNodes[node] {
			return
		}
		delete(w.errorNodes, node)
		w.surface.RemoveNode(node)
	})
}

// DismissError removes a banner before its timer fires.
func (w *Widget) DismissError(node *Node) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.errorNodes[node] {
		return
	}
	delete(w.errorNodes, node)
	w.surface.RemoveNode(node)
}

// Clear empties the thread.
func (w *Widget) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, node := range w.messageNodes {
		w.surface.RemoveNode(node)
	}
	w.messages = nil
	w.messageNodes = nil
}

// Messages returns a copy of the in-memory thread.
func (w *Widget) Messages() []Message {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]Message, len(w.messages))
	copy(out, w.messages)
	return out
}

// appendMessage renders one bubble and records it. Callers hold w.mu.
func (w *Widget) appendMessage(content, sender string, aux *models.BotResponse) {
	ts := w.now()
	msg := Message{Content: content, Sender: sender, Timestamp: ts, Aux: aux}
	w.messages = append(w.messages, msg)

	node := &Node{Kind: "message", HTML: renderMessage(content, sender, aux, ts)}
	w.messageNodes = append(w.messageNodes, node)
	w.surface.AppendNode(node)
	w.surface.ScrollToBottom()
}
