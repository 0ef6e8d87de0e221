package databox

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightops/adpulse/internal/config"
	"github.com/brightops/adpulse/internal/window"
)

func testClient(serverURL string) *Client {
	return NewClient(config.DataboxConfig{
		APIKey:         "test-key",
		BaseURL:        serverURL,
		TimeoutSeconds: 5,
		MaxAttempts:    1,
		PageSize:       100,
	})
}

func TestQueryRows(t *testing.T) {
	var gotQuery Query
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/metrics/query", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotQuery))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"data": [
				{"date": "2024-03-01", "source": "linkedin_ads", "campaign": "A", "spend": 120.5, "clicks": 12, "impressions": 3400, "conversions": 1},
				{"date": "2024-03-02", "source": "linkedin_ads", "campaign": "A", "spend": "99.25", "clicks": "8", "impressions": null, "conversions": "n/a"}
			]
		}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	rows, err := client.QueryRows(context.Background(), Query{
		From:     "2024-03-01",
		To:       "2024-03-14",
		Fields:   DefaultFields(),
		Source:   "linkedin_ads",
		PageSize: 100,
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "2024-03-01", gotQuery.From)
	assert.Equal(t, "2024-03-14", gotQuery.To)
	assert.Equal(t, "linkedin_ads", gotQuery.Source)
	assert.Equal(t, 100, gotQuery.PageSize)

	assert.Equal(t, 120.5, rows[0].Spend.Float())
	assert.Equal(t, 1.0, rows[0].Conversions.Float())

	// String numerics, nulls and junk all coerce instead of failing the row.
	assert.Equal(t, 99.25, rows[1].Spend.Float())
	assert.Equal(t, 8.0, rows[1].Clicks.Float())
	assert.Equal(t, 0.0, rows[1].Impressions.Float())
	assert.Equal(t, 0.0, rows[1].Conversions.Float())
}

func TestQueryRowsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "bad key"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client := testClient(server.URL)
	_, err := client.QueryRows(context.Background(), Query{From: "2024-03-01", To: "2024-03-14"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestQueryRowsRetriesTransientFailure(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			http.Error(w, "upstream hiccup", http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"data": []}`))
	}))
	defer server.Close()

	client := NewClient(config.DataboxConfig{
		APIKey:         "test-key",
		BaseURL:        server.URL,
		TimeoutSeconds: 5,
		MaxAttempts:    3,
	})

	rows, err := client.QueryRows(context.Background(), Query{From: "2024-03-01", To: "2024-03-14"})
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, 2, attempts)
}

type failingClient struct{}

func (failingClient) QueryRows(ctx context.Context, query Query) ([]Row, error) {
	return nil, errors.New("connection refused")
}

func TestCollectorFailsOpen(t *testing.T) {
	c := NewCollector(failingClient{}, 100)
	w := window.Range{Label: "Last 30 Days", From: "2024-02-14", To: "2024-03-14"}

	rows := c.FetchWindow(context.Background(), w, "linkedin_ads")
	assert.Empty(t, rows)
}

func TestCollectorPassesWindowAndSource(t *testing.T) {
	var got Query
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"data": [{"date": "2024-03-01", "source": "google_ads", "spend": 10}]}`))
	}))
	defer server.Close()

	c := NewCollector(testClient(server.URL), 250)
	w := window.Range{Label: "Last 7 Days", From: "2024-03-08", To: "2024-03-14"}

	rows := c.FetchWindow(context.Background(), w, "google_ads")
	require.Len(t, rows, 1)
	assert.Equal(t, "2024-03-08", got.From)
	assert.Equal(t, "2024-03-14", got.To)
	assert.Equal(t, "google_ads", got.Source)
	assert.Equal(t, 250, got.PageSize)
	assert.Equal(t, DefaultFields(), got.Fields)
}
