package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/sentinel/pkg/domain"
)

// ClearSeparator is printed when a channel's history is discarded.
const ClearSeparator = "---------------- BUFFER PURGED ----------------"

// TextHandler implements the standard text-based interface.
type TextHandler struct {
	Reader   *bufio.Reader
	Writer   io.Writer
	Renderer ContentRenderer

	// Sanitize filters every line read. Rejected lines are reported and read again.
	Sanitize func(string) (string, error)

	inputChan chan inputResult
	startOnce sync.Once
	mu        sync.Mutex // serialises writes from Output and Signal
}

type inputResult struct {
	text string
	err  error
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the content renderer.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// WithTextHandlerSanitizer overrides SanitizeInput.
func WithTextHandlerSanitizer(fn func(string) (string, error)) TextHandlerOption {
	return func(h *TextHandler) {
		h.Sanitize = fn
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Reader:   bufio.NewReader(r),
		Writer:   w,
		Sanitize: SanitizeInput,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// initPump starts the goroutine that reads lines so Input can honour cancellation.
func (h *TextHandler) initPump() {
	h.startOnce.Do(func() {
		h.inputChan = make(chan inputResult)
		go h.pump()
	})
}

func (h *TextHandler) pump() {
	for {
		text, err := h.Reader.ReadString('\n')

		// If we got text (even with EOF), send it
		if text != "" {
			h.inputChan <- inputResult{text: text}
		}

		if err != nil {
			if err == io.EOF {
				close(h.inputChan)
				return
			}
			h.inputChan <- inputResult{err: err}
			// Backoff for non-fatal errors to prevent CPU spikes on persistent failure
			time.Sleep(50 * time.Millisecond)
		}
	}
}

func (h *TextHandler) Output(ctx context.Context, ch domain.Channel, entries []domain.Entry) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, e := range entries {
		text := e.Text
		switch {
		case e.Role == domain.RoleUser && ch == domain.ChannelChat:
			text = "> " + text
		case e.Role == domain.RoleSystem && ch == domain.ChannelChat && h.Renderer != nil:
			if rendered, err := h.Renderer(text); err == nil {
				text = strings.TrimSpace(rendered)
			}
		}
		if _, err := fmt.Fprintln(h.Writer, text); err != nil {
			return err
		}
	}
	return nil
}

func (h *TextHandler) Input(ctx context.Context, prompt string) (string, error) {
	// Ensure the pump is running
	h.initPump()

	for {
		// Only show prompt if context is not yet done
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
			h.mu.Lock()
			fmt.Fprint(h.Writer, prompt)
			h.mu.Unlock()
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case res, ok := <-h.inputChan:
			if !ok {
				return "", io.EOF
			}
			if res.err != nil {
				return "", res.err
			}
			// Keep the raw line (terminal prompts echo it verbatim) minus the line ending.
			text := strings.TrimRight(res.text, "\r\n")

			if h.Sanitize != nil {
				clean, err := h.Sanitize(text)
				if err != nil {
					_ = h.SystemOutput(ctx, fmt.Sprintf("Error: %v. Please try again.", err))
					continue
				}
				text = clean
			}
			return text, nil
		}
	}
}

func (h *TextHandler) Signal(ctx context.Context, name string) error {
	if name != SignalTyping {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintln(h.Writer, TypingIndicator)
	return err
}

func (h *TextHandler) Clear(ctx context.Context, ch domain.Channel) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintln(h.Writer, ClearSeparator)
	return err
}

func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintf(h.Writer, "[System] %s\n", msg)
	return err
}
