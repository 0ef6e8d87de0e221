// Package hubspot is a client for the CRM search API. Searches paginate
// through an opaque cursor with a hard page cap and a fixed inter-page
// delay to respect rate limits. There is no retry: an error aborts the
// remaining pagination and returns whatever was accumulated.
package hubspot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/brightops/adpulse/internal/config"
	"github.com/brightops/adpulse/internal/pkg/logger"
	"github.com/brightops/adpulse/internal/window"
)

// Client is a CRM search API client
type Client struct {
	baseURL    string
	token      string
	pageLimit  int
	maxPages   int
	pageDelay  time.Duration
	httpClient *http.Client
}

// NewClient creates a new CRM API client
func NewClient(cfg config.HubSpotConfig) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		token:      cfg.Token,
		pageLimit:  cfg.PageLimit,
		maxPages:   cfg.MaxPages,
		pageDelay:  cfg.PageDelay(),
		httpClient: &http.Client{Timeout: cfg.Timeout()},
	}
}

// SearchContacts fetches all booked-meeting contacts in the given window.
// The window should be the union of every sub-window the run needs: the
// search API is pagination-heavy, so we fetch once and slice locally.
func (c *Client) SearchContacts(ctx context.Context, w window.Range) ([]Contact, error) {
	from, to := w.Span()
	req := SearchRequest{
		FilterGroups: []FilterGroup{{
			Filters: []Filter{
				{PropertyName: PropBookedAt, Operator: "GTE", Value: strconv.FormatInt(from.UnixMilli(), 10)},
				{PropertyName: PropBookedAt, Operator: "LTE", Value: strconv.FormatInt(to.UnixMilli(), 10)},
			},
		}},
		Properties: []string{PropBookedAt, PropOutcome, PropDisqualReason, PropLeadSource, PropOriginalSrc},
		Sorts:      []Sort{{PropertyName: PropBookedAt, Direction: "ASCENDING"}},
		Limit:      c.pageLimit,
	}
	return searchAll[Contact](ctx, c, "/crm/v3/objects/contacts/search", req)
}

// SearchDeals fetches closed-won deals whose close date falls in the window.
func (c *Client) SearchDeals(ctx context.Context, w window.Range) ([]Deal, error) {
	from, to := w.Span()
	req := SearchRequest{
		FilterGroups: []FilterGroup{{
			Filters: []Filter{
				{PropertyName: PropDealStage, Operator: "EQ", Value: StageClosedWon},
				{PropertyName: PropCloseDate, Operator: "GTE", Value: strconv.FormatInt(from.UnixMilli(), 10)},
				{PropertyName: PropCloseDate, Operator: "LTE", Value: strconv.FormatInt(to.UnixMilli(), 10)},
			},
		}},
		Properties: []string{PropAmount, PropCloseDate, PropDealStage},
		Sorts:      []Sort{{PropertyName: PropCloseDate, Direction: "ASCENDING"}},
		Limit:      c.pageLimit,
	}
	return searchAll[Deal](ctx, c, "/crm/v3/objects/deals/search", req)
}

// searchAll walks the cursor until it is absent, the page cap is reached,
// or a page fails. Failures return the pages accumulated so far.
func searchAll[T any](ctx context.Context, c *Client, path string, req SearchRequest) ([]T, error) {
	var all []T

	for page := 0; page < c.maxPages; page++ {
		if page > 0 && c.pageDelay > 0 {
			select {
			case <-time.After(c.pageDelay):
			case <-ctx.Done():
				return all, ctx.Err()
			}
		}

		resp, err := searchPage[T](ctx, c, path, req)
		if err != nil {
			logger.Warn("CRM search page failed, returning partial results",
				"path", path,
				"page", page,
				"accumulated", len(all),
				"error", err.Error())
			return all, nil
		}

		all = append(all, resp.Results...)

		if resp.Paging == nil || resp.Paging.Next.After == "" {
			return all, nil
		}
		req.After = resp.Paging.Next.After
	}

	logger.Warn("CRM search hit page cap", "path", path, "pages", c.maxPages, "accumulated", len(all))
	return all, nil
}

func searchPage[T any](ctx context.Context, c *Client, path string, req SearchRequest) (*searchResponse[T], error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding search request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.token)
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", httpResp.StatusCode, string(body))
	}

	var resp searchResponse[T]
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	return &resp, nil
}
