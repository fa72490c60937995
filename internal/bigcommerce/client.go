package bigcommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"storefront-widgets/internal/adapter"
	"storefront-widgets/internal/model"
	"storefront-widgets/internal/transport"
)

const (
	// defaultBaseURL is the Management API host; the store hash is appended.
	defaultBaseURL = "https://api.bigcommerce.com/stores/"

	// pageLimit is the largest page size the v3 list endpoints accept.
	pageLimit = 250

	// maxPages bounds pagination loops against a misbehaving upstream.
	maxPages = 40

	userAgent = "Storefront-Widgets/1.0"
)

// Config holds BigCommerce API settings.
type Config struct {
	StoreHash   string
	AccessToken string
	ClientID    string // used as auth_client_id on scripts

	// BaseURL overrides the API root (tests point it at httptest servers).
	// It must include the /stores/{hash} prefix.
	BaseURL string

	// Currency is reported on product pricing; blank falls back to the
	// resolver default.
	Currency string

	// CustomerTagsAttributeID is the customer attribute holding
	// comma-separated tags. Zero disables tags.
	CustomerTagsAttributeID int

	Transport transport.Kind
	Timeout   time.Duration
}

// Client is the BigCommerce API client. It is stateless apart from its
// configuration and safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cfg        Config
}

// Verify Client implements the platform interface at compile time.
var _ adapter.Platform = (*Client)(nil)

// New creates a BigCommerce client.
func New(cfg Config) (*Client, error) {
	if cfg.AccessToken == "" {
		return nil, fmt.Errorf("access token is required")
	}
	base := strings.TrimSuffix(cfg.BaseURL, "/")
	if base == "" {
		if cfg.StoreHash == "" {
			return nil, fmt.Errorf("store hash is required")
		}
		base = defaultBaseURL + cfg.StoreHash
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport.New(cfg.Transport, cfg.Timeout),
		},
		baseURL: base,
		cfg:     cfg,
	}, nil
}

// === HTTP Helpers ===

// newRequest builds an authenticated request. path starts with /v2 or /v3.
func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Auth-Token", c.cfg.AccessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do executes the request and decodes a successful body into result.
func (c *Client) do(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.NewUpstreamError("BigCommerce", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return parseError(resp.StatusCode, body)
	}

	if result != nil && len(body) > 0 && resp.StatusCode != http.StatusNoContent {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}
	}
	return nil
}

// call is newRequest followed by do.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, body, result any) error {
	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return c.do(req, result)
}

// listAll follows v3 pagination until the last page (or limit items).
// limit <= 0 means no limit.
func listAll[T any](ctx context.Context, c *Client, path string, query url.Values, limit int) ([]T, error) {
	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	perPage := pageLimit
	if limit > 0 && limit < perPage {
		perPage = limit
	}
	q.Set("limit", fmt.Sprint(perPage))

	var out []T
	for page := 1; page <= maxPages; page++ {
		q.Set("page", fmt.Sprint(page))

		var env envelope[[]T]
		if err := c.call(ctx, http.MethodGet, path, q, nil, &env); err != nil {
			return nil, err
		}
		out = append(out, env.Data...)

		if limit > 0 && len(out) >= limit {
			return out[:limit], nil
		}
		p := env.Meta.Pagination
		if p == nil || p.TotalPages <= page || len(env.Data) == 0 {
			break
		}
	}
	return out, nil
}

// parseError converts BigCommerce error responses to model.APIError.
func parseError(statusCode int, body []byte) error {
	msg := errorMessage(body)

	switch statusCode {
	case http.StatusUnauthorized:
		return model.NewUnauthorizedError("BigCommerce authentication failed")
	case http.StatusForbidden:
		// Also returned for features the store plan does not include.
		return model.NewUnauthorizedError("BigCommerce access denied")
	case http.StatusNotFound:
		return model.NewNotFoundError("resource")
	case http.StatusTooManyRequests:
		return model.NewRateLimitError("BigCommerce")
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		if msg == "" {
			msg = "invalid request"
		}
		return model.NewValidationError("request", msg)
	default:
		return model.NewUpstreamError("BigCommerce", fmt.Errorf("status %d: %s", statusCode, msg))
	}
}

func errorMessage(body []byte) string {
	var v3 bcError
	if err := json.Unmarshal(body, &v3); err == nil && v3.Title != "" {
		return v3.Title
	}
	var v2 []bcV2Error
	if err := json.Unmarshal(body, &v2); err == nil && len(v2) > 0 {
		return v2[0].Message
	}
	return ""
}
