package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"regexp"
	"strings"

	"lexline/internal/models"
	"lexline/internal/transport"
	"lexline/internal/widget"
)

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "backend base URL")
	flag.Parse()

	session, err := createSession(*serverURL)
	if err != nil {
		log.Fatalf("✗ Session creation failed: %v", err)
	}

	client := transport.NewClient()
	w := widget.New(&termSurface{out: os.Stdout}, client)

	client.OnConnect(w.HandleConnect)
	client.OnDisconnect(w.HandleDisconnect)
	client.On(models.EventStatus, func(data json.RawMessage) {
		var ev models.StatusEvent
		if json.Unmarshal(data, &ev) == nil {
			w.HandleStatus(ev)
		}
	})
	client.On(models.EventTyping, func(data json.RawMessage) {
		var ev models.TypingEvent
		if json.Unmarshal(data, &ev) == nil {
			w.HandleTyping(ev)
		}
	})
	client.On(models.EventBotResponse, func(data json.RawMessage) {
		var resp models.BotResponse
		if json.Unmarshal(data, &resp) == nil {
			w.HandleBotResponse(resp)
		}
	})

	wsURL := strings.Replace(*serverURL, "http", "ws", 1) + "/api/v1/ws"
	if err := client.Dial(context.Background(), wsURL, session.Token); err != nil {
		log.Fatalf("✗ WebSocket connection failed: %v", err)
	}
	defer client.Close()

	w.LoadHistory(context.Background(), http.DefaultClient, *serverURL, session.Token)

	fmt.Println("Type your legal question and press Enter. /quit to exit.")
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "/quit" {
			return
		}
		w.SetInput(line)
		w.SendMessage()
	}
}

func createSession(serverURL string) (*models.SessionResponse, error) {
	resp, err := http.Post(serverURL+"/api/v1/session", "application/json", bytes.NewReader(nil))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var session models.SessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, err
	}
	return &session, nil
}

var tagPattern = regexp.MustCompile(`<[^>]+>`)

// termSurface renders the widget's nodes as plain terminal lines. Tags are
// stripped since there is no DOM here.
type termSurface struct {
	out *os.File
}

func (s *termSurface) AppendNode(n *widget.Node) {
	switch n.Kind {
	case "typing":
		fmt.Fprintln(s.out, "… assistant is typing")
	case "error":
		fmt.Fprintf(s.out, "⚠ %s\n", plainText(n.HTML))
	default:
		fmt.Fprintln(s.out, plainText(n.HTML))
	}
}

func (s *termSurface) RemoveNode(n *widget.Node)   {}
func (s *termSurface) ScrollToBottom()             {}
func (s *termSurface) SetSendEnabled(enabled bool) {}
func (s *termSurface) SetInputText(text string)    {}
func (s *termSurface) SetCharsRemaining(n int)     {}

func (s *termSurface) SetStatus(connected bool, msg string) {
	if connected {
		fmt.Fprintf(s.out, "● %s\n", msg)
	} else {
		fmt.Fprintf(s.out, "○ %s\n", msg)
	}
}

func (s *termSurface) ShowInputError(msg string) {
	fmt.Fprintf(s.out, "⚠ %s\n", msg)
}

func plainText(html string) string {
	text := strings.ReplaceAll(html, "<br>", "\n")
	text = tagPattern.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "&lt;", "<")
	text = strings.ReplaceAll(text, "&gt;", ">")
	text = strings.ReplaceAll(text, "&amp;", "&")
	text = strings.ReplaceAll(text, "&#39;", "'")
	text = strings.ReplaceAll(text, "&#34;", "\"")
	text = strings.ReplaceAll(text, "&middot;", "·")
	return strings.TrimSpace(text)
}
