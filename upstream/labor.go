package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"areadata.app/pkg/errors"
)

// LaborClient talks to the labor statistics API (BLS-style). Auth is an
// API key passed as a query parameter.
type LaborClient struct {
	apiKey  string
	baseURL string
}

func NewLaborClient(apiKey, baseURL string) *LaborClient {
	return &LaborClient{apiKey: apiKey, baseURL: baseURL}
}

func (c *LaborClient) ID() string     { return "labor" }
func (c *LaborClient) Family() Family { return FamilyLabor }

func (c *LaborClient) NewRequest(ctx context.Context, params map[string]string) (*http.Request, error) {
	seriesID := params["seriesid"]
	if seriesID == "" {
		return nil, errors.NewValidationError("seriesid parameter is required")
	}

	query := url.Values{}
	query.Set("registrationkey", c.apiKey)
	for name, value := range params {
		if name != "seriesid" {
			query.Set(name, value)
		}
	}

	endpoint := fmt.Sprintf("%s/timeseries/data/%s?%s", c.baseURL, url.PathEscape(seriesID), query.Encode())
	return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
}
