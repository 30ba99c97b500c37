// Package alegra implements the paginated fetcher for the Alegra REST API.
//
// The API returns a plain JSON array per page and has no total-count field:
// a page shorter than the requested page size (or an empty page) is the end
// of the stream. The page size is constant upstream, so a short page is
// trusted as final without further verification.
package alegra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Record is one raw API record: untyped, nested, heterogeneous. Numbers are
// decoded as json.Number so integer identifiers survive the CSV round-trip
// unchanged.
type Record map[string]any

// Client fetches pages from the Alegra API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a client for the given API root and pre-obtained
// credential. Token refresh is the caller's concern.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

// FetchPage issues one paginated request against endpoint (e.g. "/invoices")
// starting at offset. filters are added as query parameters verbatim.
// The second return value is true when this was the last page.
func (c *Client) FetchPage(ctx context.Context, endpoint string, offset, pageSize int, filters map[string]string) ([]Record, bool, error) {
	if pageSize <= 0 {
		return nil, false, fmt.Errorf("FetchPage: page size must be positive, got %d", pageSize)
	}

	q := url.Values{}
	q.Set("start", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(pageSize))
	for k, v := range filters {
		q.Set(k, v)
	}

	reqURL := c.baseURL + endpoint + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, false, &TransportError{Endpoint: endpoint, Offset: offset, Err: err}
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("authorization", c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, false, &TransportError{Endpoint: endpoint, Offset: offset, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, false, &TransportError{
			Endpoint: endpoint,
			Offset:   offset,
			Err:      fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()

	var records []Record
	if err := dec.Decode(&records); err != nil {
		return nil, false, &DecodeError{Endpoint: endpoint, Offset: offset, Err: err}
	}

	last := len(records) == 0 || len(records) < pageSize
	return records, last, nil
}
