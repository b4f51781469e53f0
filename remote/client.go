package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"strings"

	"docchat/logger"
)

var (
	ErrUnexpectedStatus = errors.New("unexpected response status")
	ErrMalformedPayload = errors.New("malformed payload")
)

const maxPreviewBytes = 32 << 20

// Client talks to the query service.
type Client struct {
	base string
	http *http.Client
}

// PreviewImage describes a successfully loaded preview resource.
type PreviewImage struct {
	Locator     string
	ContentType string
	Format      string
	Width       int
	Height      int
	Size        int
}

// NewClient builds a client for baseURL. A nil httpClient gets a default
// client without timeout.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{base: baseURL, http: httpClient}, nil
}

func (c *Client) BaseURL() string {
	return c.base
}

// Databases lists the queryable database identifiers (GET /databases).
func (c *Client) Databases(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("databases"), nil)
	if err != nil {
		return nil, fmt.Errorf("list databases: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	body, status, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("list databases: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("list databases: %w: %d", ErrUnexpectedStatus, status)
	}

	var ids []string
	if err := json.Unmarshal(body, &ids); err != nil {
		return nil, fmt.Errorf("list databases: %w: %v", ErrMalformedPayload, err)
	}
	if ids == nil {
		ids = []string{}
	}

	logger.Log.Debugw("databases discovered", "count", len(ids))
	return ids, nil
}

// Query posts one question (POST /query). The body is interpreted whatever
// the status code: the service answers 400/404 with a regular payload.
func (c *Client) Query(ctx context.Context, q QueryRequest) (QueryResponse, error) {
	payload, err := json.Marshal(q)
	if err != nil {
		return QueryResponse{}, fmt.Errorf("encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("query"), bytes.NewReader(payload))
	if err != nil {
		return QueryResponse{}, fmt.Errorf("query: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	body, status, err := c.do(req)
	if err != nil {
		return QueryResponse{}, fmt.Errorf("query: %w", err)
	}

	logger.Log.Debugw("query response", "status", status, "bytes", len(body), "database", q.Database)

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return QueryResponse{}, fmt.Errorf("query: %w: status %d, body is not a JSON object", ErrMalformedPayload, status)
	}

	var out QueryResponse
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return QueryResponse{}, fmt.Errorf("query: %w: %v", ErrMalformedPayload, err)
	}
	return out, nil
}

// PreviewURL derives the locator of an evidence image reference.
func (c *Client) PreviewURL(reference string) string {
	segments := strings.Split(strings.TrimLeft(reference, "/"), "/")
	return c.endpoint(append([]string{"previews"}, segments...)...)
}

// ResolveLocator turns a path relative to the service into an absolute URL.
// Absolute URLs are returned unchanged.
func (c *Client) ResolveLocator(pathOrURL string) string {
	if u, err := url.Parse(pathOrURL); err == nil && u.IsAbs() {
		return pathOrURL
	}
	return c.base + "/" + strings.TrimLeft(pathOrURL, "/")
}

// FetchPreview downloads the resource at locator and checks that it decodes
// as an image.
func (c *Client) FetchPreview(ctx context.Context, locator string) (PreviewImage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return PreviewImage{}, fmt.Errorf("fetch preview: %w", err)
	}

	body, status, err := c.do(req)
	if err != nil {
		return PreviewImage{}, fmt.Errorf("fetch preview: %w", err)
	}
	if status != http.StatusOK {
		return PreviewImage{}, fmt.Errorf("fetch preview %s: %w: %d", locator, ErrUnexpectedStatus, status)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(body))
	if err != nil {
		return PreviewImage{}, fmt.Errorf("fetch preview %s: decode: %w", locator, err)
	}

	return PreviewImage{
		Locator:     locator,
		ContentType: http.DetectContentType(body),
		Format:      format,
		Width:       cfg.Width,
		Height:      cfg.Height,
		Size:        len(body),
	}, nil
}

func (c *Client) endpoint(segments ...string) string {
	escaped := make([]string, 0, len(segments))
	for _, s := range segments {
		if s == "" {
			continue
		}
		escaped = append(escaped, url.PathEscape(s))
	}
	return c.base + "/" + strings.Join(escaped, "/")
}

func (c *Client) do(req *http.Request) ([]byte, int, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPreviewBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	return body, resp.StatusCode, nil
}
