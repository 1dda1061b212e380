package runner

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/sentinel/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ioPipe() (*io.PipeReader, *io.PipeWriter) {
	return io.Pipe()
}

func TestTextHandler_Output(t *testing.T) {
	outBuf := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader(""), outBuf,
		WithTextHandlerRenderer(func(s string) (string, error) {
			return "Rendered: " + s + "\n", nil
		}),
	)

	entries := []domain.Entry{
		{Role: domain.RoleUser, Text: "hello"},
		{Role: domain.RoleSystem, Text: "SENTINEL_GREETING"},
	}
	require.NoError(t, handler.Output(context.Background(), domain.ChannelChat, entries))
	assert.Equal(t, "> hello\nRendered: SENTINEL_GREETING\n", outBuf.String())

	outBuf.Reset()
	entries = []domain.Entry{
		{Role: domain.RoleUser, Text: "user@waseeq:~$ ls"},
		{Role: domain.RoleSystem, Text: "ERR: ls NOT_FOUND"},
	}
	require.NoError(t, handler.Output(context.Background(), domain.ChannelTerminal, entries))
	assert.Equal(t, "user@waseeq:~$ ls\nERR: ls NOT_FOUND\n", outBuf.String(), "terminal lines are not rendered")
}

func TestTextHandler_Input(t *testing.T) {
	outBuf := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader("  echo  spaced \r\n\x1b[1mbold\n"), outBuf)

	val, err := handler.Input(context.Background(), "$ ")
	require.NoError(t, err)
	assert.Equal(t, "  echo  spaced ", val, "only the line ending is removed")

	val, err = handler.Input(context.Background(), "$ ")
	require.NoError(t, err)
	assert.Equal(t, "[1mbold", val)

	_, err = handler.Input(context.Background(), "$ ")
	assert.ErrorIs(t, err, io.EOF)
	assert.True(t, strings.HasPrefix(outBuf.String(), "$ "))
}

func TestTextHandler_InputRejected(t *testing.T) {
	outBuf := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader("toolong\nok\n"), outBuf,
		WithTextHandlerSanitizer(NewSanitizer(3)),
	)

	val, err := handler.Input(context.Background(), "> ")
	require.NoError(t, err)
	assert.Equal(t, "ok", val)
	assert.Contains(t, outBuf.String(), "[System] Error: input exceeds maximum allowed size")
}

func TestTextHandler_InputCancel(t *testing.T) {
	pr, pw := ioPipe()
	defer pw.Close()
	handler := NewTextHandler(pr, &bytes.Buffer{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := handler.Input(ctx, "> ")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTextHandler_SignalAndClear(t *testing.T) {
	outBuf := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader(""), outBuf)

	require.NoError(t, handler.Signal(context.Background(), SignalTyping))
	require.NoError(t, handler.Signal(context.Background(), "unknown"))
	require.NoError(t, handler.Clear(context.Background(), domain.ChannelTerminal))

	assert.Equal(t, TypingIndicator+"\n"+ClearSeparator+"\n", outBuf.String())
}
