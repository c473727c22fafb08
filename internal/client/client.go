// Package client is the typed HTTP client for the catalog API plus the
// request-slot and lifecycle helpers views use to cancel superseded fetches.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/MikeMC777/catalog-browser/internal/item"
)

// ErrCanceled is returned instead of a transport error when the caller's
// context was canceled. It is never a failure.
var ErrCanceled = errors.New("request canceled")

// APIError is a non-2xx response. A 404 unwraps to item.ErrNotFound.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("catalog api: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("catalog api: %d %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	if e.Status == http.StatusNotFound {
		return item.ErrNotFound
	}
	return nil
}

const DefaultMaxParallel = 4

type Client struct {
	HTTP    *http.Client
	BaseURL string
	// MaxParallel bounds concurrent page requests in FetchAll.
	MaxParallel int
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		HTTP:        &http.Client{Timeout: timeout},
		BaseURL:     strings.TrimRight(baseURL, "/"),
		MaxParallel: DefaultMaxParallel,
	}
}

func (c *Client) List(ctx context.Context, p item.Params) (*item.ListResponse, error) {
	return c.query(ctx, "/api/items", p, item.Basic)
}

func (c *Client) Search(ctx context.Context, p item.Params) (*item.ListResponse, error) {
	return c.query(ctx, "/api/items/search", p, item.Advanced)
}

// Query dispatches to List or Search by variant.
func (c *Client) Query(ctx context.Context, p item.Params, v item.Variant) (*item.ListResponse, error) {
	if v == item.Advanced {
		return c.Search(ctx, p)
	}
	return c.List(ctx, p)
}

func (c *Client) query(ctx context.Context, path string, p item.Params, v item.Variant) (*item.ListResponse, error) {
	var out item.ListResponse
	if err := c.do(ctx, http.MethodGet, path, p.Values(v), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var out item.CategoriesResponse
	if err := c.do(ctx, http.MethodGet, "/api/items/categories", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}

func (c *Client) Get(ctx context.Context, id int64) (*item.Item, error) {
	var out item.Item
	if err := c.do(ctx, http.MethodGet, "/api/items/"+strconv.FormatInt(id, 10), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Create(ctx context.Context, it item.Item) (*item.Item, error) {
	body, err := json.Marshal(it)
	if err != nil {
		return nil, err
	}
	var out item.Item
	if err := c.do(ctx, http.MethodPost, "/api/items", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Stats(ctx context.Context) (item.Stats, error) {
	var out item.Stats
	if err := c.do(ctx, http.MethodGet, "/api/stats", nil, nil, &out); err != nil {
		return item.Stats{}, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, body []byte, out any) error {
	u := c.BaseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		return canceled(ctx, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return canceled(ctx, decodeAPIError(res))
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return canceled(ctx, fmt.Errorf("decode %s %s: %w", method, path, err))
	}
	return nil
}

// canceled replaces err with ErrCanceled when the context was canceled.
// Deadline expiry stays a regular error.
func canceled(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return ErrCanceled
	}
	return err
}

func decodeAPIError(res *http.Response) error {
	apiErr := &APIError{Status: res.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(res.Body, 64<<10))
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &body) == nil {
		apiErr.Message = body.Error
		if apiErr.Message == "" {
			apiErr.Message = body.Message
		}
	}
	return apiErr
}
