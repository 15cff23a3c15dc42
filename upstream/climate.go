package upstream

import (
	"context"
	"net/http"
	"net/url"
)

// ClimateClient talks to the climate records API (NOAA CDO-style).
// Auth is a token sent in a request header.
type ClimateClient struct {
	token   string
	baseURL string
}

func NewClimateClient(token, baseURL string) *ClimateClient {
	return &ClimateClient{token: token, baseURL: baseURL}
}

func (c *ClimateClient) ID() string     { return "climate" }
func (c *ClimateClient) Family() Family { return FamilyClimate }

func (c *ClimateClient) NewRequest(ctx context.Context, params map[string]string) (*http.Request, error) {
	query := url.Values{}
	for name, value := range params {
		query.Set(name, value)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/data?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("token", c.token)
	return req, nil
}
