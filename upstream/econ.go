package upstream

import (
	"context"
	"net/http"
	"net/url"
)

// EconClient talks to the economic statistics API (BEA-style). Auth is
// a UserID key passed as a query parameter; results are requested as JSON.
type EconClient struct {
	apiKey  string
	baseURL string
}

func NewEconClient(apiKey, baseURL string) *EconClient {
	return &EconClient{apiKey: apiKey, baseURL: baseURL}
}

func (c *EconClient) ID() string     { return "econ" }
func (c *EconClient) Family() Family { return FamilyEcon }

func (c *EconClient) NewRequest(ctx context.Context, params map[string]string) (*http.Request, error) {
	query := url.Values{}
	query.Set("UserID", c.apiKey)
	query.Set("method", "GetData")
	query.Set("ResultFormat", "JSON")
	for name, value := range params {
		query.Set(name, value)
	}

	return http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
}
