package openfoodfacts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/scancart-backend/pkg/errors"
)

const (
	DefaultBaseURL   = "https://world.openfoodfacts.org"
	defaultUserAgent = "scancart/1.0"
	defaultTimeout   = 10 * time.Second

	statusFound           = 1
	responseBodyReadLimit = 1 << 20
	errorBodyReadLimit    = 1024
)

// Client queries the Open Food Facts product API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the API host.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithUserAgent sets the User-Agent header. Open Food Facts asks every
// integration to identify itself.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(userAgent)
		if trimmed != "" {
			c.userAgent = trimmed
		}
	}
}

// WithTimeout replaces the default client with one using the given timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:    DefaultBaseURL,
		userAgent:  defaultUserAgent,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client
}

// Result is the part of a product response the cart cares about.
type Result struct {
	Found    bool
	Name     string
	ImageURL string
}

type productResponse struct {
	Status  int `json:"status"`
	Product *struct {
		ProductName string `json:"product_name"`
		ImageURL    string `json:"image_url"`
	} `json:"product"`
}

// Lookup fetches the product registered under code. An unknown code is not an
// error: the API answers it with status 0 and Found is false.
func (c *Client) Lookup(ctx context.Context, code string) (Result, error) {
	if c == nil {
		return Result{}, pkgerrors.New(pkgerrors.CodeDependency, "open food facts client not configured")
	}
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "product code is required")
	}

	endpoint := fmt.Sprintf("%s/api/v0/product/%s.json", strings.TrimRight(c.baseURL, "/"), url.PathEscape(trimmed))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build product request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute product request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusInternalServerError {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "product request failed")
	}

	var apiResp productResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, responseBodyReadLimit)).Decode(&apiResp); err != nil {
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode product response")
	}

	if apiResp.Status != statusFound {
		return Result{Found: false}, nil
	}
	result := Result{Found: true}
	if apiResp.Product != nil {
		result.Name = strings.TrimSpace(apiResp.Product.ProductName)
		result.ImageURL = strings.TrimSpace(apiResp.Product.ImageURL)
	}
	return result, nil
}
