package upstream

import (
	"context"
	"net/http"
	"net/url"
)

// PlacesClient talks to the places search API. Auth is a bearer token.
type PlacesClient struct {
	token   string
	baseURL string
}

func NewPlacesClient(token, baseURL string) *PlacesClient {
	return &PlacesClient{token: token, baseURL: baseURL}
}

func (c *PlacesClient) ID() string     { return "places" }
func (c *PlacesClient) Family() Family { return FamilyPlaces }

func (c *PlacesClient) NewRequest(ctx context.Context, params map[string]string) (*http.Request, error) {
	query := url.Values{}
	for name, value := range params {
		query.Set(name, value)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	return req, nil
}
