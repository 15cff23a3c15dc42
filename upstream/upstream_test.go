package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"areadata.app/config"
	"areadata.app/pkg/errors"
)

func TestFetcherClassifiesResponses(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		transient bool
		permanent bool
	}{
		{name: "500 is transient", status: http.StatusInternalServerError, transient: true},
		{name: "503 is transient", status: http.StatusServiceUnavailable, transient: true},
		{name: "429 is transient", status: http.StatusTooManyRequests, transient: true},
		{name: "400 is permanent", status: http.StatusBadRequest, permanent: true},
		{name: "401 is permanent", status: http.StatusUnauthorized, permanent: true},
		{name: "404 is permanent", status: http.StatusNotFound, permanent: true},
	}

	f := NewFetcher()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
			require.NoError(t, err)

			_, err = f.Do(req)
			require.Error(t, err)
			assert.Equal(t, tt.transient, errors.IsTransientError(err))
			assert.Equal(t, tt.permanent, errors.IsNonRetryableError(err))
		})
	}

	t.Run("2xx returns body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"ok":true}`))
		}))
		defer server.Close()

		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
		require.NoError(t, err)

		body, err := f.Do(req)
		require.NoError(t, err)
		assert.Equal(t, []byte(`{"ok":true}`), body)
	})

	t.Run("connection refused is transient", func(t *testing.T) {
		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, "http://127.0.0.1:1", nil)
		require.NoError(t, err)

		_, err = f.Do(req)
		require.Error(t, err)
		assert.True(t, errors.IsTransientError(err))
	})
}

func TestClientAuthSchemes(t *testing.T) {
	ctx := context.Background()

	t.Run("labor uses query param key", func(t *testing.T) {
		c := NewLaborClient("secret", "https://example.test/v2")
		req, err := c.NewRequest(ctx, map[string]string{"seriesid": "LAUCN0403", "startyear": "2018"})
		require.NoError(t, err)
		assert.Equal(t, "secret", req.URL.Query().Get("registrationkey"))
		assert.Equal(t, "2018", req.URL.Query().Get("startyear"))
		assert.Contains(t, req.URL.Path, "LAUCN0403")
	})

	t.Run("labor requires seriesid", func(t *testing.T) {
		c := NewLaborClient("secret", "https://example.test/v2")
		_, err := c.NewRequest(ctx, nil)
		require.Error(t, err)
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("climate uses token header", func(t *testing.T) {
		c := NewClimateClient("tok", "https://example.test/v2")
		req, err := c.NewRequest(ctx, map[string]string{"datasetid": "GSOM"})
		require.NoError(t, err)
		assert.Equal(t, "tok", req.Header.Get("token"))
		assert.Equal(t, "GSOM", req.URL.Query().Get("datasetid"))
	})

	t.Run("places uses bearer token", func(t *testing.T) {
		c := NewPlacesClient("tok", "https://example.test/v3")
		req, err := c.NewRequest(ctx, map[string]string{"ll": "30.27,-97.74"})
		require.NoError(t, err)
		assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))
	})

	t.Run("demographics uses query param key and dataset path", func(t *testing.T) {
		c := NewDemographicsClient("secret", "https://example.test/data")
		req, err := c.NewRequest(ctx, map[string]string{
			"dataset": "2023/acs/acs5",
			"get":     "NAME,B01003_001E",
		})
		require.NoError(t, err)
		assert.Equal(t, "secret", req.URL.Query().Get("key"))
		assert.Contains(t, req.URL.Path, "acs/acs5")
	})
}

func TestRegistry(t *testing.T) {
	cfg := &config.UpstreamsConfig{
		LaborAPIKey:    "k",
		LaborBaseURL:   "https://example.test/labor",
		ClimateToken:   "t",
		ClimateBaseURL: "https://example.test/climate",
	}

	r := NewRegistry(cfg)

	assert.Equal(t, []string{"climate", "labor"}, r.IDs())

	u, ok := r.Lookup("labor")
	require.True(t, ok)
	assert.Equal(t, FamilyLabor, u.Family())

	_, ok = r.Lookup("econ")
	assert.False(t, ok, "upstreams without credentials are not registered")
}
