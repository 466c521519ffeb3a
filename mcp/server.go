package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"

	mcpserver "github.com/mark3labs/mcp-go/server"
)

// ServeStdio serves server over the given streams until ctx is done or stdin closes.
func ServeStdio(ctx context.Context, server *mcpserver.MCPServer, stdin io.Reader, stdout io.Writer) error {
	stdio := mcpserver.NewStdioServer(server)
	if err := stdio.Listen(ctx, stdin, stdout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
