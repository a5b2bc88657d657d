package mcp_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statuswatch/statuswatch/internal/mcp"
	"github.com/statuswatch/statuswatch/internal/secrets"
)

func newStdioServer(t *testing.T, in string) (*mcp.StdioServer, *bytes.Buffer) {
	t.Helper()

	fx := newFixture()
	handler := mcp.NewHandler(mcp.HandlerConfig{
		Dispatcher: fx.dispatcher,
		Secrets: secrets.NewLoader(secrets.LoaderConfig{
			Lookup: func(name string) (string, bool) {
				if name == secrets.DefaultKeyEnv {
					return "sg_test_key", true
				}
				return "", false
			},
		}),
		Logger:  zerolog.Nop(),
		Version: "test",
	})

	var out bytes.Buffer
	return mcp.NewStdioServerWithIO(handler, zerolog.Nop(), strings.NewReader(in), &out), &out
}

func decodeLines(t *testing.T, out *bytes.Buffer) []map[string]any {
	t.Helper()
	var responses []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		if line == "" {
			continue
		}
		var resp map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &resp), "each output line must be one JSON object")
		responses = append(responses, resp)
	}
	return responses
}

func TestServe_Session(t *testing.T) {
	input := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05"}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"check_outage","arguments":{"service":"github"}}}`,
	}, "\n") + "\n"

	srv, out := newStdioServer(t, input)
	require.NoError(t, srv.Serve(context.Background()))

	responses := decodeLines(t, out)
	// The notification produces no output line.
	require.Len(t, responses, 3)

	init := responses[0]
	assert.Equal(t, float64(1), init["id"])
	result, ok := init["result"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "2024-11-05", result["protocolVersion"])

	list := responses[1]
	assert.Equal(t, float64(2), list["id"])

	call := responses[2]
	assert.Equal(t, float64(3), call["id"])
	callResult, ok := call["result"].(map[string]any)
	require.True(t, ok)
	_, hasIsError := callResult["isError"]
	assert.False(t, hasIsError, "successful calls omit isError")
}

func TestServe_ParseErrorKeepsSessionAlive(t *testing.T) {
	input := "this is not json\n" +
		`{"jsonrpc":"2.0","id":1,"method":"ping"}` + "\n"

	srv, out := newStdioServer(t, input)
	require.NoError(t, srv.Serve(context.Background()))

	responses := decodeLines(t, out)
	require.Len(t, responses, 2)

	parseErr, ok := responses[0]["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(mcp.CodeParseError), parseErr["code"])
	assert.Nil(t, responses[0]["id"])

	assert.Equal(t, float64(1), responses[1]["id"])
}

func TestServe_BlankLinesSkipped(t *testing.T) {
	input := "\n\n" + `{"jsonrpc":"2.0","id":1,"method":"ping"}` + "\n\n"

	srv, out := newStdioServer(t, input)
	require.NoError(t, srv.Serve(context.Background()))

	responses := decodeLines(t, out)
	require.Len(t, responses, 1)
}

func TestServe_EOFReturnsNil(t *testing.T) {
	srv, _ := newStdioServer(t, "")
	assert.NoError(t, srv.Serve(context.Background()))
}
