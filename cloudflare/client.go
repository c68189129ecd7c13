package cloudflare

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"cloudflare-analytics/config"
	"cloudflare-analytics/models"
	"cloudflare-analytics/utils"
)

const defaultGraphQLURL = "https://api.cloudflare.com/client/v4/graphql"

// analyticsQuery aggregates HTTP traffic per day for one zone over an
// inclusive date range.
const analyticsQuery = `
query AnalyticsData($zoneTag: String!, $start: Date!, $end: Date!) {
  viewer {
    zones(filter: { zoneTag: $zoneTag }) {
      httpRequests1dGroups(
        limit: 100,
        filter: { date_geq: $start, date_leq: $end }
      ) {
        dimensions {
          date
        }
        sum {
          bytes
          cachedBytes
          requests
          cachedRequests
          pageViews
          threats
        }
        uniq {
          uniques
        }
      }
    }
  }
}`

// StatusError reports a non-2xx HTTP response from the analytics API.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("cloudflare: unexpected status %d: %s", e.Code, e.Body)
}

// APIError reports an error list carried inside a well-formed GraphQL
// response.
type APIError struct {
	Messages []string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("cloudflare: graphql errors: %s", strings.Join(e.Messages, "; "))
}

// ShapeError reports a well-formed response missing an expected nested
// field.
type ShapeError struct {
	Field string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("cloudflare: response missing expected field %s", e.Field)
}

// Client fetches daily zone analytics from the Cloudflare GraphQL API.
type Client struct {
	httpClient *http.Client
	graphqlURL string
	apiToken   string
	zoneID     string
	logger     *utils.Logger
}

// NewClient creates a ready-to-use analytics client.
func NewClient(cfg *config.Config, logger *utils.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		graphqlURL: defaultGraphQLURL,
		apiToken:   cfg.Cloudflare.APIToken,
		zoneID:     cfg.Cloudflare.ZoneID,
		logger:     logger,
	}
}

type graphQLRequest struct {
	Query     string            `json:"query"`
	Variables map[string]string `json:"variables"`
}

type graphQLResponse struct {
	Data *struct {
		Viewer struct {
			Zones []struct {
				Groups []dayGroup `json:"httpRequests1dGroups"`
			} `json:"zones"`
		} `json:"viewer"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type dayGroup struct {
	Dimensions struct {
		Date string `json:"date"`
	} `json:"dimensions"`
	Sum struct {
		Bytes          int64 `json:"bytes"`
		CachedBytes    int64 `json:"cachedBytes"`
		Requests       int64 `json:"requests"`
		CachedRequests int64 `json:"cachedRequests"`
		PageViews      int64 `json:"pageViews"`
		Threats        int64 `json:"threats"`
	} `json:"sum"`
	Uniq struct {
		Uniques int64 `json:"uniques"`
	} `json:"uniq"`
}

// FetchTrailingWindow queries the trailing windowDays-day range ending at
// now and returns one record per day, newest first. A range with no data is
// not an error: the result is nil, nil.
func (c *Client) FetchTrailingWindow(ctx context.Context, now time.Time, windowDays int) ([]*models.DailyMetricRecord, error) {
	end := now
	start := end.AddDate(0, 0, -windowDays)

	c.logger.Info("[cloudflare] Collection period: %s ~ %s",
		start.Format("2006-01-02"), end.Format("2006-01-02"))

	body, err := json.Marshal(graphQLRequest{
		Query: analyticsQuery,
		Variables: map[string]string{
			"zoneTag": c.zoneID,
			"start":   start.Format("2006-01-02"),
			"end":     end.Format("2006-01-02"),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("cloudflare: marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphqlURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("cloudflare: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cloudflare: post analytics query: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("cloudflare: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	var decoded graphQLResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("cloudflare: decode response: %w", err)
	}

	if len(decoded.Errors) > 0 {
		apiErr := &APIError{}
		for _, e := range decoded.Errors {
			apiErr.Messages = append(apiErr.Messages, e.Message)
		}
		return nil, apiErr
	}

	if decoded.Data == nil {
		return nil, &ShapeError{Field: "data"}
	}
	if len(decoded.Data.Viewer.Zones) == 0 {
		return nil, &ShapeError{Field: "data.viewer.zones"}
	}

	groups := decoded.Data.Viewer.Zones[0].Groups
	if len(groups) == 0 {
		c.logger.Warn("[cloudflare] No data reported for the requested period")
		return nil, nil
	}

	records := make([]*models.DailyMetricRecord, 0, len(groups))
	for _, g := range groups {
		date, err := time.Parse("2006-01-02", g.Dimensions.Date)
		if err != nil {
			return nil, &ShapeError{Field: "dimensions.date"}
		}

		if g.Sum.CachedRequests > g.Sum.Requests {
			c.logger.Warn("[cloudflare] %s: cachedRequests (%d) exceeds requests (%d), storing as reported",
				g.Dimensions.Date, g.Sum.CachedRequests, g.Sum.Requests)
		}
		if g.Sum.CachedBytes > g.Sum.Bytes {
			c.logger.Warn("[cloudflare] %s: cachedBytes (%d) exceeds bytes (%d), storing as reported",
				g.Dimensions.Date, g.Sum.CachedBytes, g.Sum.Bytes)
		}

		records = append(records, &models.DailyMetricRecord{
			Date:              date,
			UniqueVisitors:    g.Uniq.Uniques,
			PageViews:         g.Sum.PageViews,
			TotalRequests:     g.Sum.Requests,
			CachedRequests:    g.Sum.CachedRequests,
			TotalBytes:        g.Sum.Bytes,
			CachedBytes:       g.Sum.CachedBytes,
			ThreatsDetected:   g.Sum.Threats,
			CacheRatioPercent: models.CacheRatio(g.Sum.CachedRequests, g.Sum.Requests),
		})
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Date.After(records[j].Date)
	})

	c.logger.Info("[cloudflare] Fetched %d daily records", len(records))
	return records, nil
}
