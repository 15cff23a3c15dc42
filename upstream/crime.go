package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"areadata.app/pkg/errors"
)

// CrimeClient talks to the crime statistics API (FBI CDE-style). Auth
// is an API key passed as a query parameter.
type CrimeClient struct {
	apiKey  string
	baseURL string
}

func NewCrimeClient(apiKey, baseURL string) *CrimeClient {
	return &CrimeClient{apiKey: apiKey, baseURL: baseURL}
}

func (c *CrimeClient) ID() string     { return "crime" }
func (c *CrimeClient) Family() Family { return FamilyCrime }

func (c *CrimeClient) NewRequest(ctx context.Context, params map[string]string) (*http.Request, error) {
	offense := params["offense"]
	ori := params["ori"]
	if offense == "" || ori == "" {
		return nil, errors.NewValidationError("offense and ori parameters are required")
	}

	query := url.Values{}
	query.Set("API_KEY", c.apiKey)
	for name, value := range params {
		if name != "offense" && name != "ori" {
			query.Set(name, value)
		}
	}

	endpoint := fmt.Sprintf("%s/summarized/agency/%s/%s?%s",
		c.baseURL, url.PathEscape(ori), url.PathEscape(offense), query.Encode())
	return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
}
