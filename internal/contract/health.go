package contract

import (
	"context"
	"net/http"

	"github.com/ZhangYouJie-Major/AskIt/internal/domain/entities"
	"github.com/ZhangYouJie-Major/AskIt/internal/domain/ports"
)

const (
	HealthPath = "/health/"
	StatsPath  = "/health/stats"
)

// HealthClient reads server health and counters.
type HealthClient struct {
	transport ports.Transport
}

// NewHealthClient creates a health client.
func NewHealthClient(transport ports.Transport) *HealthClient {
	return &HealthClient{transport: transport}
}

// Check probes the server.
func (c *HealthClient) Check(ctx context.Context) (*entities.HealthStatus, error) {
	data, err := c.transport.Send(ctx, ports.Request{Method: http.MethodGet, Path: HealthPath})
	if err != nil {
		return nil, err
	}
	return decode[entities.HealthStatus]("health", healthSchema, data)
}

// Stats returns user, document and department counts.
func (c *HealthClient) Stats(ctx context.Context) (*entities.Stats, error) {
	data, err := c.transport.Send(ctx, ports.Request{Method: http.MethodGet, Path: StatsPath})
	if err != nil {
		return nil, err
	}
	return decode[entities.Stats]("stats", statsSchema, data)
}
