package datastore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"
)

// HTTPRemoteClient is a RemoteClient that speaks a small JSON-over-HTTP
// protocol to a local emulator of the managed columnar cloud store. It is
// not the production SDK (see SPEC_FULL.md §9) but gives BackendDataStore a
// concrete, exercisable transport: every RPC is one retryablehttp request,
// so transport-level retries (connection resets, 5xx) are absorbed here and
// only genuinely-exhausted or non-retryable failures surface to
// BackendDataStore's own backoff.Retry loop as TransientError/terminal error.
type HTTPRemoteClient struct {
	BaseURL string
	HTTP    *retryablehttp.Client
}

// NewHTTPRemoteClient builds a client against baseURL (e.g.
// "https://bigtable.googleapis.com" per the original Cobalt
// kCloudBigtableUri, or a local emulator address in tests).
func NewHTTPRemoteClient(baseURL string) *HTTPRemoteClient {
	c := retryablehttp.NewClient()
	c.Logger = nil // callers may set HTTP.Logger to enable request logging
	c.RetryMax = 3
	return &HTTPRemoteClient{BaseURL: baseURL, HTTP: c}
}

type mutateRowRequest struct {
	Key     string            `json:"key"`
	Columns map[string][]byte `json:"columns"`
}

type bulkMutateRequest struct {
	Rows []wireRow `json:"rows"`
}

type wireRow struct {
	Key     string            `json:"key"`
	Columns map[string][]byte `json:"columns"`
}

type readRowsRequest struct {
	StartKey string   `json:"start_key"`
	LimitKey string   `json:"limit_key"`
	Columns  []string `json:"columns"`
	PageSize int      `json:"page_size"`
}

type readRowsResponse struct {
	Rows    []wireRow `json:"rows"`
	HasMore bool      `json:"has_more"`
}

func (c *HTTPRemoteClient) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("obsstore http client: marshal request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.BaseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("obsstore http client: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		// Transport-level failure after the retryablehttp client's own
		// retries are exhausted: still worth BackendDataStore's bounded
		// backoff, since the remote may have recovered by then.
		return &TransientError{Err: fmt.Errorf("obsstore http client: %s %s: %w", method, path, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return &TransientError{Err: fmt.Errorf("obsstore http client: %s %s: server error %d", method, path, resp.StatusCode)}
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil // caller interprets an empty/zero-value out as "not found"
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("obsstore http client: %s %s: client error %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("obsstore http client: decode response: %w", err)
	}
	return nil
}

func (c *HTTPRemoteClient) MutateRow(ctx context.Context, table, key string, columns Columns) error {
	return c.do(ctx, http.MethodPut, "/tables/"+table+"/rows", mutateRowRequest{Key: key, Columns: columns}, nil)
}

func (c *HTTPRemoteClient) BulkMutate(ctx context.Context, table string, rows []Row) error {
	wrows := make([]wireRow, len(rows))
	for i, r := range rows {
		wrows[i] = wireRow{Key: r.Key, Columns: r.Columns}
	}
	return c.do(ctx, http.MethodPut, "/tables/"+table+"/rows:bulk", bulkMutateRequest{Rows: wrows}, nil)
}

func (c *HTTPRemoteClient) ReadRow(ctx context.Context, table, key string, columns []string) (bool, Row, error) {
	var resp wireRow
	path := "/tables/" + table + "/rows/" + key
	if err := c.do(ctx, http.MethodGet, path, readRowsRequest{Columns: columns}, &resp); err != nil {
		return false, Row{}, err
	}
	if resp.Key == "" {
		return false, Row{}, nil
	}
	return true, Row{Key: resp.Key, Columns: resp.Columns}, nil
}

func (c *HTTPRemoteClient) ReadRows(ctx context.Context, table, startKey, limitKey string, columns []string, pageSize int) ([]Row, bool, error) {
	var resp readRowsResponse
	req := readRowsRequest{StartKey: startKey, LimitKey: limitKey, Columns: columns, PageSize: pageSize}
	if err := c.do(ctx, http.MethodPost, "/tables/"+table+"/rows:scan", req, &resp); err != nil {
		return nil, false, err
	}
	rows := make([]Row, len(resp.Rows))
	for i, r := range resp.Rows {
		rows[i] = Row{Key: r.Key, Columns: r.Columns}
	}
	return rows, resp.HasMore, nil
}

func (c *HTTPRemoteClient) DeleteRow(ctx context.Context, table, key string) error {
	return c.do(ctx, http.MethodDelete, "/tables/"+table+"/rows/"+key, nil, nil)
}

func (c *HTTPRemoteClient) DeleteRowsWithPrefix(ctx context.Context, table, prefix string) (bool, error) {
	var resp struct {
		Supported bool `json:"supported"`
	}
	err := c.do(ctx, http.MethodPost, "/tables/"+table+"/rows:dropPrefix", map[string]string{"prefix": prefix}, &resp)
	if err != nil {
		return false, err
	}
	return resp.Supported, nil
}

func (c *HTTPRemoteClient) DeleteAllRows(ctx context.Context, table string) error {
	return c.do(ctx, http.MethodDelete, "/tables/"+table+"/rows", nil, nil)
}

var _ RemoteClient = (*HTTPRemoteClient)(nil)
