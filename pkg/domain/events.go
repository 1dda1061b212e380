package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventMatch    EventType = "match"
	EventCommand  EventType = "command"
	EventGenerate EventType = "generate"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// MatchEvent is emitted after the chat engine picks a reply.
type MatchEvent struct {
	EventBase
	RuleIndex int    `json:"rule_index"` // -1 on fallback
	Source    string `json:"source"`
}

// CommandEvent is emitted after the interpreter handles a line.
type CommandEvent struct {
	EventBase
	Command string     `json:"command"`
	Result  ResultKind `json:"result"`
	Known   bool       `json:"known"`
}

// GenerateEvent is emitted after a call to the text-generation collaborator.
type GenerateEvent struct {
	EventBase
	Duration time.Duration `json:"duration"`
	IsError  bool          `json:"is_error,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnMatch    func(context.Context, *MatchEvent)
	OnCommand  func(context.Context, *CommandEvent)
	OnGenerate func(context.Context, *GenerateEvent)
}
