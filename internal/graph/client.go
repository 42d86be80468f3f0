package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"social-insights-orchestrator/internal/models"
)

var _ ClientInterface = (*Client)(nil)

// Client talks to the Facebook/Instagram Graph APIs.
type Client struct {
	httpClient *http.Client
	maxPages   int
}

func NewClient(timeout time.Duration, maxPages int) *Client {
	if maxPages <= 0 {
		maxPages = 100
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxPages: maxPages,
	}
}

type listingResponse struct {
	Data   []models.RawPost `json:"data"`
	Paging struct {
		Next string `json:"next,omitempty"`
	} `json:"paging"`
}

type insightsResponse struct {
	Data []models.RawMetric `json:"data"`
}

// ListPosts materializes a paged listing endpoint into a single slice,
// following paging.next until absent. A request failure mid-pagination is
// logged and yields the posts accumulated so far rather than an error: a
// partial listing is still worth ingesting, and the next scheduled run will
// see the rest. The page cap bounds runaway (or cyclic) cursors.
func (c *Client) ListPosts(ctx context.Context, listingURL string) ([]models.RawPost, error) {
	var posts []models.RawPost

	next := listingURL
	for page := 0; next != ""; page++ {
		if page >= c.maxPages {
			slog.Warn("Pagination page cap reached, returning partial listing",
				"pages", page, "posts", len(posts))
			break
		}

		var resp listingResponse
		if err := c.makeRequest(ctx, next, &resp); err != nil {
			if page == 0 {
				return nil, err
			}
			slog.Warn("Pagination request failed, returning partial listing",
				"page", page, "posts", len(posts), "error", err)
			break
		}

		posts = append(posts, resp.Data...)
		next = resp.Paging.Next
	}

	return posts, nil
}

// FetchInsights returns the raw metric array for a single post.
func (c *Client) FetchInsights(ctx context.Context, insightsURL string) ([]models.RawMetric, error) {
	var resp insightsResponse
	if err := c.makeRequest(ctx, insightsURL, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) makeRequest(ctx context.Context, endpoint string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}

	return nil
}
