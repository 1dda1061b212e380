// Package oracle bounds calls to the text-generation collaborator.
//
// The collaborator is slow and fallible. The oracle runs every call under a deadline and
// converts any failure into domain.ErrCollaboratorUnavailable, so callers only ever have to
// choose between a generated reply and a fixed unavailable message.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/sentinel/pkg/domain"
	"github.com/aretw0/sentinel/pkg/ports"
)

// DefaultTimeout bounds a single generation call.
const DefaultTimeout = 15 * time.Second

// DefaultUnavailable is shown when no message is configured.
const DefaultUnavailable = "ERR_UPLINK_SEVERED: Sentinel core unreachable. Retry transmission later."

// Oracle wraps a ports.Generator with a timeout and a fixed failure message.
type Oracle struct {
	gen         ports.Generator
	instruction string
	unavailable string
	timeout     time.Duration
	logger      *slog.Logger
	onGenerate  func(context.Context, *domain.GenerateEvent)
	now         func() time.Time
}

// Option configures the Oracle.
type Option func(*Oracle)

// WithInstruction sets the fixed style instruction sent with every prompt.
func WithInstruction(instruction string) Option {
	return func(o *Oracle) {
		o.instruction = instruction
	}
}

// WithUnavailableMessage overrides DefaultUnavailable.
func WithUnavailableMessage(msg string) Option {
	return func(o *Oracle) {
		if msg != "" {
			o.unavailable = msg
		}
	}
}

// WithTimeout overrides DefaultTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(o *Oracle) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithLogger sets the logger used to report collaborator failures.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Oracle) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithGenerateHook registers a callback fired after every call.
func WithGenerateHook(fn func(context.Context, *domain.GenerateEvent)) Option {
	return func(o *Oracle) {
		o.onGenerate = fn
	}
}

// New creates an Oracle around gen.
func New(gen ports.Generator, opts ...Option) *Oracle {
	o := &Oracle{
		gen:         gen,
		unavailable: DefaultUnavailable,
		timeout:     DefaultTimeout,
		logger:      slog.New(slog.DiscardHandler),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Unavailable returns the message substituted for failed calls.
func (o *Oracle) Unavailable() string {
	return o.unavailable
}

// Timeout returns the per-call deadline.
func (o *Oracle) Timeout() time.Duration {
	return o.timeout
}

// Generate asks the collaborator for a reply to prompt.
// Every failure, including an empty reply and the deadline, wraps domain.ErrCollaboratorUnavailable.
func (o *Oracle) Generate(ctx context.Context, prompt string) (string, error) {
	if o.gen == nil {
		return "", fmt.Errorf("%w: no generator configured", domain.ErrCollaboratorUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	start := o.now()
	text, err := o.gen.Generate(ctx, ports.GenerateRequest{
		Prompt:      prompt,
		Instruction: o.instruction,
	})
	if err == nil && strings.TrimSpace(text) == "" {
		err = errors.New("empty reply")
	}
	o.emit(ctx, o.now().Sub(start), err != nil)

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: timed out after %s: %v", domain.ErrCollaboratorUnavailable, o.timeout, err)
		}
		return "", fmt.Errorf("%w: %v", domain.ErrCollaboratorUnavailable, err)
	}
	return text, nil
}

// Reply is like Generate but never fails: errors are logged and replaced by the
// unavailable message. ok reports whether the text came from the collaborator.
func (o *Oracle) Reply(ctx context.Context, prompt string) (text string, ok bool) {
	text, err := o.Generate(ctx, prompt)
	if err != nil {
		o.logger.Warn("text generation failed", "error", err)
		return o.unavailable, false
	}
	return text, true
}

func (o *Oracle) emit(ctx context.Context, d time.Duration, isErr bool) {
	if o.onGenerate == nil {
		return
	}
	o.onGenerate(ctx, &domain.GenerateEvent{
		EventBase: domain.EventBase{Timestamp: o.now(), Type: domain.EventGenerate},
		Duration:  d,
		IsError:   isErr,
	})
}
