package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"areadata.app/pkg/errors"
)

// DemographicsClient talks to the demographic profiles API
// (Census ACS-style). Auth is an API key passed as a query parameter;
// responses come back as arrays of rows, not objects.
type DemographicsClient struct {
	apiKey  string
	baseURL string
}

func NewDemographicsClient(apiKey, baseURL string) *DemographicsClient {
	return &DemographicsClient{apiKey: apiKey, baseURL: baseURL}
}

func (c *DemographicsClient) ID() string     { return "demographics" }
func (c *DemographicsClient) Family() Family { return FamilyDemographics }

func (c *DemographicsClient) NewRequest(ctx context.Context, params map[string]string) (*http.Request, error) {
	dataset := params["dataset"]
	if dataset == "" {
		return nil, errors.NewValidationError("dataset parameter is required")
	}

	query := url.Values{}
	query.Set("key", c.apiKey)
	for name, value := range params {
		if name != "dataset" {
			query.Set(name, value)
		}
	}

	endpoint := fmt.Sprintf("%s/%s?%s", c.baseURL, dataset, query.Encode())
	return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
}
