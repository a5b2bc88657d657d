package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// StdioServer serves MCP over line-delimited JSON-RPC on stdin/stdout.
// The stdio transport has no way to carry a per-request bearer token, so
// every tool call falls back to the process-level credential.
type StdioServer struct {
	handler *Handler
	logger  zerolog.Logger
	in      io.Reader
	out     io.Writer
	mu      sync.Mutex // serializes writes to out
}

// NewStdioServer creates a stdio server bound to os.Stdin/os.Stdout.
func NewStdioServer(handler *Handler, logger zerolog.Logger) *StdioServer {
	return &StdioServer{
		handler: handler,
		logger:  logger,
		in:      os.Stdin,
		out:     os.Stdout,
	}
}

// NewStdioServerWithIO creates a stdio server with custom I/O (for testing).
func NewStdioServerWithIO(handler *Handler, logger zerolog.Logger, in io.Reader, out io.Writer) *StdioServer {
	return &StdioServer{
		handler: handler,
		logger:  logger,
		in:      in,
		out:     out,
	}
}

// Serve reads requests until EOF or context cancellation. One JSON object
// per line in, one per line out.
func (s *StdioServer) Serve(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	// Tool results can be large, grow the line buffer well past the default.
	scanner.Buffer(make([]byte, 0, 1024*1024), 10*1024*1024)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var req Request
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			s.write(errorResponse(nil, CodeParseError, "parse error: "+err.Error()))
			continue
		}

		if resp := s.handler.Handle(ctx, &req, ""); resp != nil {
			s.write(resp)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("stdin read error: %w", err)
	}
	return nil
}

func (s *StdioServer) write(resp *Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to marshal response")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.out.Write(data)
	_, _ = s.out.Write([]byte("\n"))
}
