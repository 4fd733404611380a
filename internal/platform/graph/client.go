package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"leadflow/internal/platform/config"
)

// leadFields is the fixed selection requested for every lead. The raw detail
// is persisted alongside the extracted columns, so the list stays stable.
const leadFields = "created_time,ad_id,form_id,page_id,field_data"

// Field is one answered form question: a name and an ordered value list.
// Order matters for lookups, so this is a slice, never a map.
type Field struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

type LeadDetail struct {
	ID          string  `json:"id"`
	CreatedTime string  `json:"created_time"`
	AdID        string  `json:"ad_id"`
	FormID      string  `json:"form_id"`
	PageID      string  `json:"page_id"`
	FieldData   []Field `json:"field_data"`
}

type Client struct {
	httpClient  *http.Client
	baseURL     string
	version     string
	accessToken string
}

func NewClient(cfg config.MetaConfig) *Client {
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     cfg.GraphBase,
		version:     cfg.GraphVersion,
		accessToken: cfg.AccessToken,
	}
}

// FetchLead retrieves the full lead record for a leadgen id. Any non-2xx
// response or transport failure is an error for this lead only; the caller
// decides whether sibling leads keep processing.
func (c *Client) FetchLead(ctx context.Context, leadgenID string) (*LeadDetail, error) {
	q := url.Values{}
	q.Set("fields", leadFields)
	q.Set("access_token", c.accessToken)

	endpoint := fmt.Sprintf("%s/%s/%s?%s", c.baseURL, c.version, url.PathEscape(leadgenID), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("graph fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("graph fetch failed: HTTP %d: %s", resp.StatusCode, string(body))
	}

	var detail LeadDetail
	if err := json.NewDecoder(resp.Body).Decode(&detail); err != nil {
		return nil, fmt.Errorf("graph response decode failed: %w", err)
	}

	return &detail, nil
}
