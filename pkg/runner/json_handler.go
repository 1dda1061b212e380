package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/sentinel/pkg/domain"
)

// Event types emitted by JSONHandler.
const (
	EventEntries = "entries"
	EventSignal  = "signal"
	EventCleared = "cleared"
	EventSystem  = "system"
)

// Event is one JSON line written by JSONHandler.
type Event struct {
	Type    string         `json:"type"`
	Channel domain.Channel `json:"channel,omitempty"`
	Entries []domain.Entry `json:"entries,omitempty"`
	Signal  string         `json:"signal,omitempty"`
	Message string         `json:"message,omitempty"`
}

// JSONHandler implements the IOHandler interface for structured JSON-Lines communication.
// Input lines are either JSON strings or raw text.
type JSONHandler struct {
	Reader  *bufio.Reader
	Writer  io.Writer
	Encoder *json.Encoder

	mu sync.Mutex
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Writer:  w,
		Encoder: json.NewEncoder(w),
	}
}

func (h *JSONHandler) emit(e Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.Encoder.Encode(e)
}

func (h *JSONHandler) Output(ctx context.Context, ch domain.Channel, entries []domain.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	return h.emit(Event{Type: EventEntries, Channel: ch, Entries: entries})
}

// Input reads one line. The prompt is ignored: structured clients know the protocol.
func (h *JSONHandler) Input(ctx context.Context, _ string) (string, error) {
	text, err := h.Reader.ReadString('\n')
	if err != nil && (err != io.EOF || text == "") {
		return "", err
	}
	text = strings.TrimRight(text, "\r\n")

	// Try to unquote if it's a JSON string
	var val string
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &val); err == nil {
		return val, nil
	}

	// Fallback: return raw text (e.g. if they just sent plain text)
	return text, nil
}

func (h *JSONHandler) Signal(ctx context.Context, name string) error {
	return h.emit(Event{Type: EventSignal, Signal: name})
}

func (h *JSONHandler) Clear(ctx context.Context, ch domain.Channel) error {
	return h.emit(Event{Type: EventCleared, Channel: ch})
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.emit(Event{Type: EventSystem, Message: msg})
}
