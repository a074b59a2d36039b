// Package client is the typed Go client for the catalog API: an HTTP
// client, a page-caching state container, and a local variation draft
// editor for the admin product form.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"pod-catalog/internal/catalog"
)

// APIError is a non-2xx response from the catalog service.
type APIError struct {
	Status  int
	Message string
	Details string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("api error %d: %s (%s)", e.Status, e.Message, e.Details)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Client talks to one catalog service instance.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient substitutes the underlying http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithToken sets the bearer token sent on every request. Required for the
// admin write endpoints.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a client for the service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody *bytes.Buffer
	if body != nil {
		reqBody = &bytes.Buffer{}
		if err := json.NewEncoder(reqBody).Encode(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var payload struct {
			Error   string `json:"error"`
			Details string `json:"details"`
		}
		if json.NewDecoder(resp.Body).Decode(&payload) == nil && payload.Error != "" {
			apiErr.Message = payload.Error
			apiErr.Details = payload.Details
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// ListProducts fetches one page of products.
func (c *Client) ListProducts(ctx context.Context, params catalog.ListParams) (*catalog.ListResponse, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(params.Page))
	q.Set("limit", strconv.Itoa(params.Limit))
	if params.Search != "" {
		q.Set("search", params.Search)
	}
	if params.CategoryID != "" {
		q.Set("categoryId", params.CategoryID)
	}

	var resp catalog.ListResponse
	if err := c.do(ctx, http.MethodGet, "/api/products", q, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetProduct fetches one product by id. Not found is (nil, nil).
func (c *Client) GetProduct(ctx context.Context, id string) (*catalog.Product, error) {
	var p catalog.Product
	err := c.do(ctx, http.MethodGet, "/api/products/"+url.PathEscape(id), nil, nil, &p)
	if apiErr, ok := err.(*APIError); ok && apiErr.Status == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProduct creates a product and returns the normalized record.
func (c *Client) CreateProduct(ctx context.Context, p catalog.Product) (*catalog.Product, error) {
	var created catalog.Product
	if err := c.do(ctx, http.MethodPost, "/api/products", nil, p, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateProduct merges the given fields into a product.
func (c *Client) UpdateProduct(ctx context.Context, id string, upd catalog.ProductUpdate) (*catalog.Product, error) {
	var updated catalog.Product
	if err := c.do(ctx, http.MethodPut, "/api/products/"+url.PathEscape(id), nil, upd, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteProduct deletes a product and reports whether a record was
// removed.
func (c *Client) DeleteProduct(ctx context.Context, id string) (bool, error) {
	var resp struct {
		Deleted bool `json:"deleted"`
	}
	if err := c.do(ctx, http.MethodDelete, "/api/products/"+url.PathEscape(id), nil, nil, &resp); err != nil {
		return false, err
	}
	return resp.Deleted, nil
}

// Health fetches the service health snapshot. The endpoint reports
// unhealthy as a structured payload with a 503, so the status code is not
// treated as an error here.
func (c *Client) Health(ctx context.Context) (*catalog.HealthStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET /api/health: %w", err)
	}
	defer resp.Body.Close()

	var status catalog.HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &status, nil
}
