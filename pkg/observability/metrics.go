package observability

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/aretw0/sentinel/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors fed by engine hooks.
type Metrics struct {
	ChatReplies      *prometheus.CounterVec
	Commands         *prometheus.CounterVec
	GenerateDuration *prometheus.HistogramVec
	SessionsPruned   prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg skips registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ChatReplies: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinel_chat_replies_total",
				Help: "Total number of chat replies by source",
			},
			[]string{"source"},
		),
		Commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinel_commands_total",
				Help: "Total number of terminal commands interpreted",
			},
			[]string{"command", "known", "result"},
		),
		GenerateDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sentinel_generate_duration_seconds",
				Help:    "Duration of text generation calls",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 30},
			},
			[]string{"outcome"},
		),
		SessionsPruned: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "sentinel_sessions_pruned_total",
				Help: "Total number of expired transcripts removed by the sweeper",
			},
		),
	}
	if reg != nil {
		reg.MustRegister(m.ChatReplies, m.Commands, m.GenerateDuration, m.SessionsPruned)
	}
	return m
}

// Hooks returns lifecycle hooks that record metrics and log at debug level.
// Unknown commands share one label value to keep cardinality bounded.
func (m *Metrics) Hooks(logger *slog.Logger) domain.LifecycleHooks {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return domain.LifecycleHooks{
		OnMatch: func(ctx context.Context, e *domain.MatchEvent) {
			logger.DebugContext(ctx, "chat_reply", "source", e.Source, "rule", e.RuleIndex)
			m.ChatReplies.WithLabelValues(e.Source).Inc()
		},
		OnCommand: func(ctx context.Context, e *domain.CommandEvent) {
			logger.DebugContext(ctx, "command", "command", e.Command, "known", e.Known, "result", e.Result)
			cmd := e.Command
			if !e.Known {
				cmd = "unknown"
			}
			m.Commands.WithLabelValues(cmd, strconv.FormatBool(e.Known), string(e.Result)).Inc()
		},
		OnGenerate: func(ctx context.Context, e *domain.GenerateEvent) {
			outcome := "ok"
			if e.IsError {
				outcome = "error"
			}
			logger.DebugContext(ctx, "generate", "duration", e.Duration, "outcome", outcome)
			m.GenerateDuration.WithLabelValues(outcome).Observe(e.Duration.Seconds())
		},
	}
}
