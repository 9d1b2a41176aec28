// Package contract implements the AskIt API contracts: it encodes typed
// requests, sends each through a ports.Transport exactly once, and decodes the
// responses through schema validation. It never retries, caches or reorders.
package contract

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"

	"github.com/ZhangYouJie-Major/AskIt/internal/domain/entities"
	"github.com/ZhangYouJie-Major/AskIt/internal/domain/ports"
)

const (
	QueryPath       = "/query/"
	jsonContentType = "application/json"
)

// QueryClient implements ports.QueryAPI.
type QueryClient struct {
	transport ports.Transport
}

var _ ports.QueryAPI = (*QueryClient)(nil)

// NewQueryClient creates a query contract client.
func NewQueryClient(transport ports.Transport) *QueryClient {
	return &QueryClient{transport: transport}
}

// Query runs a RAG query. Sources come back in server relevance order.
// Transport failures are returned as-is.
func (c *QueryClient) Query(ctx context.Context, req entities.QueryRequest) (*entities.QueryResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "encoding query request")
	}

	data, err := c.transport.Send(ctx, ports.Request{
		Method:      http.MethodPost,
		Path:        QueryPath,
		Body:        body,
		ContentType: jsonContentType,
	})
	if err != nil {
		return nil, err
	}

	return decode[entities.QueryResponse]("query", queryResponseSchema, data)
}
