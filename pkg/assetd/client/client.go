// Package client is a small Go client for the assetd HTTP API.
//
// Failed requests return *Error. Its Unwrap maps the HTTP status back to
// the errdefs kinds the server used, so callers can write
//
//	if errdefs.IsNotFound(err) { ... }
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/containerd/errdefs"

	"evalgo.org/assetd/models"
)

// Client talks to one assetd server.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithToken sends token as a bearer token on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a client for the server at baseURL, e.g. "http://localhost:8095".
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("baseURL is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid baseURL: %w", err)
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Error is a non-2xx response.
type Error struct {
	StatusCode  int               `json:"code"`
	Message     string            `json:"message"`
	Details     string            `json:"details,omitempty"`
	FieldErrors map[string]string `json:"field_errors,omitempty"`
}

func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("assetd: HTTP %d: %s: %s", e.StatusCode, e.Message, e.Details)
	}
	return fmt.Sprintf("assetd: HTTP %d: %s", e.StatusCode, e.Message)
}

func (e *Error) Unwrap() error {
	switch e.StatusCode {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
		return errdefs.ErrInvalidArgument
	case http.StatusUnauthorized:
		return errdefs.ErrUnauthenticated
	case http.StatusForbidden:
		return errdefs.ErrPermissionDenied
	case http.StatusNotFound:
		return errdefs.ErrNotFound
	case http.StatusConflict:
		return errdefs.ErrConflict
	}
	return errdefs.ErrUnknown
}

// AssetQuery filters ListAssets.
type AssetQuery struct {
	Search     string
	Incomplete bool
	Page       int
	Limit      int
}

// AssetPage is one page of assets.
type AssetPage struct {
	Items []models.Asset `json:"items"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// ListAssets returns a page of assets matching q.
func (c *Client) ListAssets(ctx context.Context, q AssetQuery) (*AssetPage, error) {
	params := url.Values{}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	if q.Incomplete {
		params.Set("filter", "incomplete")
	}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	var page AssetPage
	if err := c.do(ctx, http.MethodGet, "/api/v1/assets", params, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetAsset fetches one asset with its licenses and recovery keys.
func (c *Client) GetAsset(ctx context.Context, id uint) (*models.Asset, error) {
	var a models.Asset
	if err := c.do(ctx, http.MethodGet, assetPath(id), nil, nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateAsset stores a new asset and returns it as the server saved it.
func (c *Client) CreateAsset(ctx context.Context, a *models.Asset) (*models.Asset, error) {
	var created models.Asset
	if err := c.do(ctx, http.MethodPost, "/api/v1/assets", nil, a, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateAsset replaces the stored asset id with a.
func (c *Client) UpdateAsset(ctx context.Context, id uint, a *models.Asset) (*models.Asset, error) {
	var updated models.Asset
	if err := c.do(ctx, http.MethodPut, assetPath(id), nil, a, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteAsset removes an asset.
func (c *Client) DeleteAsset(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, assetPath(id), nil, nil, nil)
}

// ReplaceAsset retires asset id and returns its successor. A nil fields
// list carries over the server's default set.
func (c *Client) ReplaceAsset(ctx context.Context, id uint, newCode string, fields []string) (*models.Asset, error) {
	body := struct {
		NewAssetCode string   `json:"newAssetCode"`
		FieldsToCopy []string `json:"fieldsToCopy,omitempty"`
	}{newCode, fields}
	var resp struct {
		NewAsset *models.Asset `json:"newAsset"`
	}
	if err := c.do(ctx, http.MethodPost, assetPath(id)+"/replace", nil, body, &resp); err != nil {
		return nil, err
	}
	return resp.NewAsset, nil
}

// AvailableIPs lists the unassigned pool addresses of a VLAN.
func (c *Client) AvailableIPs(ctx context.Context, vlanID uint) ([]models.IPAddress, error) {
	params := url.Values{"vlan_id": {strconv.FormatUint(uint64(vlanID), 10)}}
	var ips []models.IPAddress
	if err := c.do(ctx, http.MethodGet, "/api/v1/ips", params, nil, &ips); err != nil {
		return nil, err
	}
	return ips, nil
}

// AssignIP binds pool address ipID to an asset.
func (c *Client) AssignIP(ctx context.Context, ipID, assetID uint) error {
	body := struct {
		AssetID uint `json:"asset_id"`
	}{assetID}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/ip-pools/%d/assignment", ipID), nil, body, nil)
}

// UnassignIP releases pool address ipID.
func (c *Client) UnassignIP(ctx context.Context, ipID uint) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/ip-pools/%d/assignment", ipID), nil, nil, nil)
}

// NextLANID returns the advisory next cable number for a rack.
func (c *Client) NextLANID(ctx context.Context, rackID uint) (int, error) {
	var resp struct {
		NextLANID int `json:"next_lan_id"`
	}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/racks/%d/next-lan-id", rackID), nil, nil, &resp); err != nil {
		return 0, err
	}
	return resp.NextLANID, nil
}

// Health reports whether the server and its database are up.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, nil)
}

func assetPath(id uint) string {
	return fmt.Sprintf("/api/v1/assets/%d", id)
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, in, out interface{}) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &Error{}
	if err := json.Unmarshal(data, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(data))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
	}
	apiErr.StatusCode = resp.StatusCode
	return apiErr
}
