package sentinel

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/sentinel/pkg/domain"
	"github.com/aretw0/sentinel/pkg/interpreter"
	"github.com/aretw0/sentinel/pkg/matcher"
	"github.com/aretw0/sentinel/pkg/oracle"
	"github.com/aretw0/sentinel/pkg/ports"
	"github.com/aretw0/sentinel/pkg/profile"
)

// Source tells where a chat reply came from.
type Source string

const (
	SourceRule        Source = "rule"
	SourceFallback    Source = "fallback"
	SourceGenerator   Source = "generator"
	SourceUnavailable Source = "unavailable"
)

// Reply is the outcome of a chat question.
type Reply struct {
	Text   string `json:"text"`
	Source Source `json:"source"`
}

// Engine is the high-level entry point for the Sentinel library.
// It binds a profile to the matcher, the interpreter and, optionally, the generator.
// Safe for concurrent use: it holds no per-session state.
type Engine struct {
	profile     profile.Profile
	matcher     *matcher.Matcher
	interpreter *interpreter.Interpreter
	oracle      *oracle.Oracle

	generator   ports.Generator
	timeout     time.Duration
	unavailable string
	hooks       domain.LifecycleHooks
	logger      *slog.Logger

	Name string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithProfile replaces the default profile.
func WithProfile(p profile.Profile) Option {
	return func(e *Engine) {
		e.profile = p
	}
}

// WithGenerator routes chat questions to an external text generator instead of the rule table.
func WithGenerator(g ports.Generator) Option {
	return func(e *Engine) {
		e.generator = g
	}
}

// WithGeneratorTimeout bounds every generator call (default oracle.DefaultTimeout).
func WithGeneratorTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.timeout = d
	}
}

// WithUnavailableMessage overrides the profile's message for failed generator calls.
func WithUnavailableMessage(msg string) Option {
	return func(e *Engine) {
		e.unavailable = msg
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New initializes a new Sentinel Engine. Without options it serves the default profile
// fully offline.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{profile: profile.Waseeq()}
	for _, opt := range opts {
		opt(eng)
	}

	if err := eng.profile.Validate(); err != nil {
		return nil, err
	}

	// Ensure logger is initialized so components never receive nil
	if eng.logger == nil {
		eng.logger = slog.New(slog.DiscardHandler)
	}
	eng.Name = eng.profile.Name
	if eng.Name != "" {
		eng.logger = eng.logger.With("profile", eng.Name)
	}

	if eng.profile.Prompt == "" {
		eng.profile.Prompt = domain.DefaultPrompt
	}
	if eng.unavailable == "" {
		eng.unavailable = eng.profile.Unavailable
	}

	eng.matcher = matcher.New(eng.profile.Rules, eng.profile.Fallback)
	eng.interpreter = interpreter.New(eng.profile.Commands, eng.profile.Prompt)

	if eng.generator != nil {
		eng.oracle = oracle.New(eng.generator,
			oracle.WithInstruction(eng.profile.Instruction),
			oracle.WithUnavailableMessage(eng.unavailable),
			oracle.WithTimeout(eng.timeout),
			oracle.WithLogger(eng.logger),
			oracle.WithGenerateHook(eng.hooks.OnGenerate),
		)
	}

	return eng, nil
}

// Ask answers a chat question. It never fails: generator errors become the
// unavailable message.
func (e *Engine) Ask(ctx context.Context, input string) Reply {
	if e.oracle != nil {
		text, ok := e.oracle.Reply(ctx, input)
		src := SourceGenerator
		if !ok {
			src = SourceUnavailable
		}
		e.emitMatch(ctx, -1, src)
		return Reply{Text: text, Source: src}
	}

	text, idx := e.matcher.Respond(input)
	src := SourceRule
	if idx < 0 {
		src = SourceFallback
	}
	e.logger.Debug("chat matched", "rule", idx, "source", src)
	e.emitMatch(ctx, idx, src)
	return Reply{Text: text, Source: src}
}

// Exec interprets one line of terminal input against the profile's command table.
// history is never read or modified.
func (e *Engine) Exec(ctx context.Context, input string, history []domain.Entry) domain.CommandResult {
	res := e.interpreter.Execute(input, history)

	if e.hooks.OnCommand != nil && strings.TrimSpace(input) != "" {
		cmd := strings.ToLower(strings.TrimSpace(input))
		_, known := e.profile.Commands.Lookup(cmd)
		if !known {
			known = isEcho(e.profile.Commands, cmd)
		}
		e.hooks.OnCommand(ctx, &domain.CommandEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventCommand},
			Command:   firstField(cmd),
			Result:    res.Kind,
			Known:     known,
		})
	}
	return res
}

// Profile returns the profile the engine serves.
func (e *Engine) Profile() profile.Profile {
	return e.profile
}

// Boot returns the banner that seeds a fresh terminal transcript.
func (e *Engine) Boot() []domain.Entry {
	return e.profile.BootEntries()
}

// PromptLine formats an echoed terminal line with the profile's identity label.
func (e *Engine) PromptLine(input string) string {
	return e.interpreter.PromptLine(input)
}

// Online reports whether chat questions go to the generator.
func (e *Engine) Online() bool {
	return e.oracle != nil
}

func (e *Engine) emitMatch(ctx context.Context, idx int, src Source) {
	if e.hooks.OnMatch == nil {
		return
	}
	e.hooks.OnMatch(ctx, &domain.MatchEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventMatch},
		RuleIndex: idx,
		Source:    string(src),
	})
}

func isEcho(table domain.CommandTable, cmd string) bool {
	for _, tok := range table.EchoTokens() {
		if strings.HasPrefix(cmd, tok+" ") {
			return true
		}
	}
	return false
}

func firstField(cmd string) string {
	if f := strings.Fields(cmd); len(f) > 0 {
		return f[0]
	}
	return cmd
}
