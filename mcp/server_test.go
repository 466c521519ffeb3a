package mcp

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeStdio_ListsTools(t *testing.T) {
	server, _ := newHandlers(t)

	stdin := strings.NewReader(strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"1"}}}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
	}, "\n") + "\n")
	var stdout bytes.Buffer

	require.NoError(t, ServeStdio(context.Background(), server, stdin, &stdout))

	output := stdout.String()
	assert.Contains(t, output, `"id":1`)
	assert.Contains(t, output, "analyze_texts")
	assert.Contains(t, output, "compare_texts")
}

func TestServeStdio_CancelledContext(t *testing.T) {
	server, _ := newHandlers(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout bytes.Buffer
	assert.NoError(t, ServeStdio(ctx, server, strings.NewReader(""), &stdout))
}
