package observability_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/sentinel"
	"github.com/aretw0/sentinel/pkg/domain"
	"github.com/aretw0/sentinel/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)

	eng, err := sentinel.New(sentinel.WithLifecycleHooks(m.Hooks(nil)))
	require.NoError(t, err)
	ctx := context.Background()

	eng.Ask(ctx, "skills")
	eng.Ask(ctx, "skills please")
	eng.Ask(ctx, "???")
	eng.Exec(ctx, "status", nil)
	eng.Exec(ctx, "nmap -sS", nil)
	eng.Exec(ctx, "telnet", nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ChatReplies.WithLabelValues("rule")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChatReplies.WithLabelValues("fallback")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Commands.WithLabelValues("status", "true", "appended")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Commands.WithLabelValues("unknown", "false", "appended")))

	count, err := testutil.GatherAndCount(reg, "sentinel_commands_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMetrics_GenerateHook(t *testing.T) {
	m := observability.NewMetrics(nil)
	hooks := m.Hooks(nil)

	hooks.OnGenerate(context.Background(), &domain.GenerateEvent{Duration: 200 * time.Millisecond})
	hooks.OnGenerate(context.Background(), &domain.GenerateEvent{Duration: time.Second, IsError: true})

	assert.Equal(t, 1, testutil.CollectAndCount(m.GenerateDuration.WithLabelValues("ok").(prometheus.Histogram)))
	assert.Equal(t, 2, testutil.CollectAndCount(m.GenerateDuration))
}
