// Package statusgator implements the StatusGator v3 API client.
package statusgator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/statuswatch/statuswatch/internal/provider/traced"
	"github.com/statuswatch/statuswatch/internal/status"
)

const (
	// ProviderName identifies this status provider.
	ProviderName = "statusgator"

	// DefaultBaseURL is the StatusGator v3 API base URL.
	DefaultBaseURL = "https://statusgator.com/api/v3"
)

// ClientConfig holds configuration for the StatusGator client.
type ClientConfig struct {
	// APIKey is the StatusGator bearer token (required).
	APIKey string

	// BaseURL is the API base URL (optional, defaults to the v3 API).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a traced client with defaults.
	HTTPClient *traced.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a StatusGator API client. It implements status.Gateway.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *traced.Client
	logger     zerolog.Logger
}

// NewClient creates a new StatusGator client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = traced.NewClient(traced.ClientConfig{
			Name:   ProviderName,
			Logger: cfg.Logger,
		})
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// ListServices fetches all monitored services.
func (c *Client) ListServices(ctx context.Context) ([]status.ServiceDescriptor, error) {
	var envelope struct {
		Data []serviceData `json:"data"`
	}
	if err := c.get(ctx, "/services", &envelope); err != nil {
		return nil, err
	}

	services := make([]status.ServiceDescriptor, 0, len(envelope.Data))
	for _, d := range envelope.Data {
		services = append(services, d.toDescriptor())
	}
	return services, nil
}

// GetService fetches a single service by canonical id.
func (c *Client) GetService(ctx context.Context, id string) (*status.ServiceDescriptor, error) {
	var envelope struct {
		Data serviceData `json:"data"`
	}
	if err := c.get(ctx, "/services/"+url.PathEscape(id), &envelope); err != nil {
		return nil, err
	}

	desc := envelope.Data.toDescriptor()
	return &desc, nil
}

// ListIncidents fetches all incidents reported for a service.
func (c *Client) ListIncidents(ctx context.Context, serviceID string) ([]status.Incident, error) {
	var envelope struct {
		Data []incidentData `json:"data"`
	}
	path := "/services/" + url.PathEscape(serviceID) + "/incidents"
	if err := c.get(ctx, path, &envelope); err != nil {
		return nil, err
	}

	incidents := make([]status.Incident, 0, len(envelope.Data))
	for _, d := range envelope.Data {
		incidents = append(incidents, d.toIncident())
	}
	return incidents, nil
}

// GetIncident fetches a single incident by id.
func (c *Client) GetIncident(ctx context.Context, serviceID, incidentID string) (*status.Incident, error) {
	var envelope struct {
		Data incidentData `json:"data"`
	}
	path := "/services/" + url.PathEscape(serviceID) + "/incidents/" + url.PathEscape(incidentID)
	if err := c.get(ctx, path, &envelope); err != nil {
		return nil, err
	}

	incident := envelope.Data.toIncident()
	return &incident, nil
}

// get performs an authenticated GET against the API and decodes the response.
func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &status.UpstreamError{Op: "GET " + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &status.UpstreamError{Op: "GET " + path, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &status.UpstreamError{Op: "GET " + path, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}

// StatusGator API response structures.

type serviceData struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	URL         string `json:"url"`
	Status      string `json:"status"`
	IconURL     string `json:"icon_url"`
}

func (d serviceData) toDescriptor() status.ServiceDescriptor {
	return status.ServiceDescriptor{
		ID:      d.ID,
		Name:    d.DisplayName,
		URL:     d.URL,
		Status:  d.Status,
		IconURL: d.IconURL,
	}
}

type incidentData struct {
	ID          string     `json:"id"`
	ServiceID   string     `json:"service_id"`
	ServiceName string     `json:"service_name"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Severity    string     `json:"severity"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ResolvedAt  *time.Time `json:"resolved_at"`
	URL         string     `json:"url"`
}

func (d incidentData) toIncident() status.Incident {
	return status.Incident{
		ID:          d.ID,
		ServiceID:   d.ServiceID,
		ServiceName: d.ServiceName,
		Title:       d.Title,
		Description: d.Description,
		Status:      d.Status,
		Severity:    d.Severity,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
		ResolvedAt:  d.ResolvedAt,
		URL:         d.URL,
	}
}
