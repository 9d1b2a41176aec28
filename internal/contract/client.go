package contract

import "github.com/ZhangYouJie-Major/AskIt/internal/domain/ports"

// Client groups the contract clients sharing one transport.
type Client struct {
	Query     *QueryClient
	Documents *DocumentClient
	Health    *HealthClient
}

// New creates all contract clients over transport.
func New(transport ports.Transport) *Client {
	return &Client{
		Query:     NewQueryClient(transport),
		Documents: NewDocumentClient(transport),
		Health:    NewHealthClient(transport),
	}
}
