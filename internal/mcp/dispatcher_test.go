package mcp_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statuswatch/statuswatch/internal/mcp"
	"github.com/statuswatch/statuswatch/internal/status"
)

// fakeGateway implements status.Gateway for tests.
type fakeGateway struct {
	mu        sync.Mutex
	calls     int
	services  []status.ServiceDescriptor
	incidents map[string][]status.Incident
}

func (f *fakeGateway) count() {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
}

func (f *fakeGateway) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeGateway) ListServices(context.Context) ([]status.ServiceDescriptor, error) {
	f.count()
	return f.services, nil
}

func (f *fakeGateway) GetService(_ context.Context, id string) (*status.ServiceDescriptor, error) {
	f.count()
	for i := range f.services {
		if f.services[i].ID == id {
			return &f.services[i], nil
		}
	}
	return nil, &status.UpstreamError{Op: "GET /services/" + id, StatusCode: 404}
}

func (f *fakeGateway) ListIncidents(_ context.Context, serviceID string) ([]status.Incident, error) {
	f.count()
	return f.incidents[serviceID], nil
}

func (f *fakeGateway) GetIncident(_ context.Context, serviceID, incidentID string) (*status.Incident, error) {
	f.count()
	for _, inc := range f.incidents[serviceID] {
		if inc.ID == incidentID {
			return &inc, nil
		}
	}
	return nil, &status.UpstreamError{Op: "GET incident", StatusCode: 404}
}

type fixture struct {
	dispatcher *mcp.Dispatcher
	gateway    *fakeGateway
	keysSeen   []string
}

func newFixture() *fixture {
	gw := &fakeGateway{
		services: []status.ServiceDescriptor{
			{ID: "github", Name: "GitHub", Status: "degraded"},
			{ID: "amazon-web-services", Name: "Amazon Web Services", Status: "operational"},
		},
		incidents: map[string][]status.Incident{},
	}

	fx := &fixture{gateway: gw}
	fx.dispatcher = mcp.NewDispatcher(func(apiKey string) *status.Service {
		fx.keysSeen = append(fx.keysSeen, apiKey)
		return status.NewService(status.ServiceConfig{
			Gateway: gw,
			Logger:  zerolog.Nop(),
		})
	}, zerolog.Nop())
	return fx
}

// resultJSON decodes the first text content block as JSON.
func resultJSON(t *testing.T, result mcp.ToolCallResult) map[string]any {
	t.Helper()
	require.NotEmpty(t, result.Content)
	require.Equal(t, "text", result.Content[0].Type)

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(result.Content[0].Text), &out))
	return out
}

func TestDispatch_CheckOutage(t *testing.T) {
	fx := newFixture()

	result := fx.dispatcher.Dispatch(context.Background(), "key", mcp.ToolCheckOutage,
		map[string]any{"service": "github"})

	assert.False(t, result.IsError)
	out := resultJSON(t, result)
	assert.Equal(t, true, out["has_outage"])
	assert.Equal(t, "degraded", out["status"])
	assert.Equal(t, []string{"key"}, fx.keysSeen)
}

func TestDispatch_ValidationFailsBeforeUpstreamCall(t *testing.T) {
	cases := []struct {
		name string
		tool string
		args map[string]any
		want string
	}{
		{"check_outage missing service", mcp.ToolCheckOutage, map[string]any{}, "missing required argument: service"},
		{"search missing query", mcp.ToolSearchServices, map[string]any{}, "missing required argument: query"},
		{"history missing service", mcp.ToolGetHistory, map[string]any{"start_date": "2026-03-01"}, "missing required argument: service"},
		{"uptime missing dates", mcp.ToolGetServiceUptime, map[string]any{"service": "github"}, "missing required argument: start_date; missing required argument: end_date"},
		{"multi history empty list", mcp.ToolGetMultiHistory, map[string]any{"services": []string{}}, "argument services must not be empty"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fx := newFixture()

			result := fx.dispatcher.Dispatch(context.Background(), "key", tc.tool, tc.args)

			assert.True(t, result.IsError)
			require.NotEmpty(t, result.Content)
			assert.Equal(t, tc.want, result.Content[0].Text)
			assert.Zero(t, fx.gateway.callCount(), "invalid arguments must never reach the upstream API")
		})
	}
}

func TestDispatch_UnknownToolIsError(t *testing.T) {
	fx := newFixture()

	result := fx.dispatcher.Dispatch(context.Background(), "key", "does_not_exist", nil)

	assert.True(t, result.IsError)
	assert.Equal(t, "unknown tool: does_not_exist", result.Content[0].Text)
	assert.Zero(t, fx.gateway.callCount())
}

func TestDispatch_ServiceNotFoundIsDataNotError(t *testing.T) {
	fx := newFixture()

	result := fx.dispatcher.Dispatch(context.Background(), "key", mcp.ToolGetServiceStatus,
		map[string]any{"service": "no-such-service-xyz"})

	assert.False(t, result.IsError, "absent data is an answer, not a protocol failure")
	out := resultJSON(t, result)
	assert.Equal(t, `service "no-such-service-xyz" not found`, out["error"])
}

func TestDispatch_SearchNoMatchesIsDataNotError(t *testing.T) {
	fx := newFixture()

	result := fx.dispatcher.Dispatch(context.Background(), "key", mcp.ToolSearchServices,
		map[string]any{"query": "zzzzzz"})

	assert.False(t, result.IsError)
	out := resultJSON(t, result)
	assert.Equal(t, `no services found matching "zzzzzz"`, out["error"])
}

func TestDispatch_SearchResults(t *testing.T) {
	fx := newFixture()

	result := fx.dispatcher.Dispatch(context.Background(), "key", mcp.ToolSearchServices,
		map[string]any{"query": "github"})

	assert.False(t, result.IsError)
	out := resultJSON(t, result)
	assert.Equal(t, float64(1), out["count"])
	assert.Equal(t, "github", out["query"])
}

func TestDispatch_CheckAllOutages(t *testing.T) {
	fx := newFixture()

	result := fx.dispatcher.Dispatch(context.Background(), "key", mcp.ToolCheckAllOutages,
		map[string]any{"services": []string{"github", "aws"}})

	assert.False(t, result.IsError)
	out := resultJSON(t, result)
	assert.Equal(t, float64(2), out["count"])
	results, ok := out["results"].([]any)
	require.True(t, ok)
	require.Len(t, results, 2)
}

func TestDispatch_HistoryWindowAndBadDates(t *testing.T) {
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	fx := newFixture()
	fx.gateway.incidents["github"] = []status.Incident{
		{ID: "in-window", ServiceID: "github", Status: "resolved", CreatedAt: base},
		{ID: "out-of-window", ServiceID: "github", Status: "resolved", CreatedAt: base.AddDate(0, -1, 0)},
	}

	result := fx.dispatcher.Dispatch(context.Background(), "key", mcp.ToolGetHistory,
		map[string]any{"service": "github", "start_date": "2026-03-01", "end_date": "2026-03-31"})

	assert.False(t, result.IsError)
	out := resultJSON(t, result)
	assert.Equal(t, float64(1), out["count"])

	bad := fx.dispatcher.Dispatch(context.Background(), "key", mcp.ToolGetHistory,
		map[string]any{"service": "github", "start_date": "03/01/2026"})
	assert.True(t, bad.IsError)
	assert.Contains(t, bad.Content[0].Text, "invalid start_date")
}

func TestDispatch_Uptime(t *testing.T) {
	created := time.Date(2026, 3, 5, 6, 0, 0, 0, time.UTC)
	resolved := created.Add(60 * time.Minute)
	fx := newFixture()
	fx.gateway.incidents["github"] = []status.Incident{
		{ID: "1", ServiceID: "github", Status: "resolved", CreatedAt: created, ResolvedAt: &resolved},
	}

	result := fx.dispatcher.Dispatch(context.Background(), "key", mcp.ToolGetServiceUptime,
		map[string]any{"service": "github", "start_date": "2026-03-05", "end_date": "2026-03-06"})

	assert.False(t, result.IsError)
	out := resultJSON(t, result)
	assert.Equal(t, float64(1), out["incident_count"])
	assert.Equal(t, 60.0, out["total_downtime_minutes"])
	assert.Equal(t, 95.83, out["uptime_percentage"])
}

func TestDispatch_UptimeUnknownServiceIsError(t *testing.T) {
	fx := newFixture()

	result := fx.dispatcher.Dispatch(context.Background(), "key", mcp.ToolGetServiceUptime,
		map[string]any{"service": "no-such-service-xyz", "start_date": "2026-03-01", "end_date": "2026-03-02"})

	assert.True(t, result.IsError)
	assert.Contains(t, result.Content[0].Text, "not found")
}

func TestDispatch_MultiHistoryKeysPreserved(t *testing.T) {
	fx := newFixture()
	fx.gateway.incidents["github"] = []status.Incident{
		{ID: "1", ServiceID: "github", Status: "resolved", CreatedAt: time.Now()},
	}

	result := fx.dispatcher.Dispatch(context.Background(), "key", mcp.ToolGetMultiHistory,
		map[string]any{"services": []string{"github", "no-such-service-xyz"}})

	assert.False(t, result.IsError)
	out := resultJSON(t, result)
	require.Contains(t, out, "github")
	require.Contains(t, out, "no-such-service-xyz")
	assert.Len(t, out["github"], 1)
	assert.Empty(t, out["no-such-service-xyz"])
}

func TestDispatch_PanicIsContained(t *testing.T) {
	d := mcp.NewDispatcher(func(string) *status.Service {
		panic("factory blew up")
	}, zerolog.Nop())

	result := d.Dispatch(context.Background(), "key", mcp.ToolCheckOutage,
		map[string]any{"service": "github"})

	assert.True(t, result.IsError)
	assert.Contains(t, result.Content[0].Text, "internal error")
}
