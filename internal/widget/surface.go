package widget

// Node is one rendered element of the chat thread: a message bubble, the
// typing indicator, or an error banner.
type Node struct {
	Kind string // "message" | "typing" | "error"
	HTML string
}

// Surface is the rendering target the widget mutates. Keeping it this small
// lets the controller logic run against a fake in tests and against a real
// DOM bridge in the browser build.
type Surface interface {
	AppendNode(n *Node)
	RemoveNode(n *Node)
	ScrollToBottom()
	SetStatus(connected bool, msg string)
	SetSendEnabled(enabled bool)
	SetInputText(text string)
	SetCharsRemaining(remaining int)
	ShowInputError(msg string)
}

// Emitter is the outbound half of the transport. The widget tracks channel
// state itself through HandleConnect and HandleDisconnect, so all it needs
// is a way to push an event.
type Emitter interface {
	Emit(event string, payload interface{}) error
}
