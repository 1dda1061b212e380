package oracle_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/sentinel/pkg/domain"
	"github.com/aretw0/sentinel/pkg/oracle"
	"github.com/aretw0/sentinel/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type GeneratorFunc func(ctx context.Context, req ports.GenerateRequest) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, req ports.GenerateRequest) (string, error) {
	return f(ctx, req)
}

func TestOracle_Reply(t *testing.T) {
	var seen ports.GenerateRequest
	gen := GeneratorFunc(func(_ context.Context, req ports.GenerateRequest) (string, error) {
		seen = req
		return "ACK", nil
	})

	o := oracle.New(gen, oracle.WithInstruction("be terse"))
	text, ok := o.Reply(context.Background(), "ping")

	assert.True(t, ok)
	assert.Equal(t, "ACK", text)
	assert.Equal(t, ports.GenerateRequest{Prompt: "ping", Instruction: "be terse"}, seen)
}

func TestOracle_Failure(t *testing.T) {
	gen := GeneratorFunc(func(context.Context, ports.GenerateRequest) (string, error) {
		return "", errors.New("503")
	})

	o := oracle.New(gen, oracle.WithUnavailableMessage("DOWN"))

	_, err := o.Generate(context.Background(), "ping")
	assert.ErrorIs(t, err, domain.ErrCollaboratorUnavailable)

	text, ok := o.Reply(context.Background(), "ping")
	assert.False(t, ok)
	assert.Equal(t, "DOWN", text)
}

func TestOracle_EmptyReplyIsFailure(t *testing.T) {
	gen := GeneratorFunc(func(context.Context, ports.GenerateRequest) (string, error) {
		return "   ", nil
	})

	_, err := oracle.New(gen).Generate(context.Background(), "ping")
	assert.ErrorIs(t, err, domain.ErrCollaboratorUnavailable)
}

func TestOracle_Timeout(t *testing.T) {
	gen := GeneratorFunc(func(ctx context.Context, _ ports.GenerateRequest) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})

	var events []*domain.GenerateEvent
	o := oracle.New(gen,
		oracle.WithTimeout(20*time.Millisecond),
		oracle.WithGenerateHook(func(_ context.Context, e *domain.GenerateEvent) {
			events = append(events, e)
		}),
	)

	start := time.Now()
	text, ok := o.Reply(context.Background(), "ping")

	assert.False(t, ok)
	assert.Equal(t, oracle.DefaultUnavailable, text)
	assert.Less(t, time.Since(start), time.Second, "deadline must bound the call")
	require.Len(t, events, 1)
	assert.True(t, events[0].IsError)
	assert.Equal(t, domain.EventGenerate, events[0].Type)
}

func TestOracle_NoGenerator(t *testing.T) {
	_, err := oracle.New(nil).Generate(context.Background(), "ping")
	assert.ErrorIs(t, err, domain.ErrCollaboratorUnavailable)
}
