package databox

import (
	"context"

	"github.com/brightops/adpulse/internal/pkg/logger"
	"github.com/brightops/adpulse/internal/window"
)

// QueryClient is the interface the collector needs from the API client.
type QueryClient interface {
	QueryRows(ctx context.Context, query Query) ([]Row, error)
}

// Collector fetches reporting rows per window and degrades to an empty
// result set when the source stays down after retries. A transient outage
// on the spend source still produces a (partial) report.
type Collector struct {
	client   QueryClient
	pageSize int
}

// NewCollector creates a collector over the given client.
func NewCollector(client QueryClient, pageSize int) *Collector {
	return &Collector{client: client, pageSize: pageSize}
}

// FetchWindow fetches all rows for one window, optionally filtered to a
// single source connector. On failure it logs and returns an empty slice.
func (c *Collector) FetchWindow(ctx context.Context, w window.Range, source string) []Row {
	rows, err := c.client.QueryRows(ctx, Query{
		From:     w.From,
		To:       w.To,
		Fields:   DefaultFields(),
		Source:   source,
		PageSize: c.pageSize,
	})
	if err != nil {
		logger.Warn("spend fetch failed, continuing with empty data",
			"window", w.Label,
			"source", source,
			"error", err.Error())
		return nil
	}
	return rows
}
