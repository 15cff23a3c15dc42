// Package upstream contains the clients for the external data sources
// and the breaker-gated retry executor that runs their calls.
package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"areadata.app/pkg/errors"
)

// Family groups upstreams by the shape of data they return; the
// normalizer selects its adapter by family.
type Family string

const (
	FamilyLabor        Family = "labor"
	FamilyCrime        Family = "crime"
	FamilyEcon         Family = "econ"
	FamilyClimate      Family = "climate"
	FamilyPlaces       Family = "places"
	FamilyDemographics Family = "demographics"
)

// Upstream describes one external data source: its identifier, family
// and how to build a request for a set of query parameters.
type Upstream interface {
	ID() string
	Family() Family
	NewRequest(ctx context.Context, params map[string]string) (*http.Request, error)
}

// Fetcher performs upstream HTTP requests and classifies the outcome
// into the typed error taxonomy the retry executor acts on.
type Fetcher struct {
	client *http.Client
}

func NewFetcher() *Fetcher {
	// Per-attempt deadlines come from the executor's context; the
	// client timeout is only a safety net.
	return &Fetcher{
		client: &http.Client{Timeout: time.Minute},
	}
}

// Do executes the request and returns the response body on 2xx.
// Network errors, 5xx and 429 are transient; other 4xx are permanent.
func (f *Fetcher) Do(req *http.Request) ([]byte, error) {
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.NewTransientError("upstream request failed", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return nil, errors.NewTransientError(
			fmt.Sprintf("upstream returned status %d", resp.StatusCode), nil)
	}

	if resp.StatusCode >= 400 {
		return nil, errors.NewNonRetryableError(
			fmt.Sprintf("upstream rejected request with status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewTransientError("failed to read upstream response", err)
	}

	return body, nil
}
