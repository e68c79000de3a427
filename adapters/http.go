package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/brettbedarf/vfsh"
	"github.com/brettbedarf/vfsh/internal/util"
)

type HTTPMethod = string

const (
	HTTPMethodGet  HTTPMethod = "GET"
	HTTPMethodHead HTTPMethod = "HEAD"
)

// HTTPSource contains http-specific source definition fields
type HTTPSource struct {
	Type    string            `json:"type"`
	URL     string            `json:"url"`
	Method  *HTTPMethod       `json:"method,omitempty"` // Default is GET
	Headers map[string]string `json:"headers,omitempty"`
}

// HTTPClient is the subset of *http.Client the adapter needs
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPProvider builds [HTTPAdapter]s sharing one client
type HTTPProvider struct {
	client HTTPClient
}

func RegisterHTTP(r *Registry) {
	r.Register(HTTPAdapterType, &HTTPProvider{http.DefaultClient})
}

func (p *HTTPProvider) NewAdapter(raw []byte) (vfsh.FileAdapter, error) {
	var src HTTPSource
	if err := json.Unmarshal(raw, &src); err != nil {
		return nil, err
	}
	src.URL = strings.TrimSpace(src.URL)
	if err := validateURL(src.URL); err != nil {
		return nil, err
	}
	return &HTTPAdapter{config: &src, client: p.client}, nil
}

func validateURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("http source: empty url")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("http source: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("http source: unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("http source: missing host in %q", raw)
	}
	if u.User != nil {
		return fmt.Errorf("http source: user info not allowed in url")
	}
	return nil
}

// HTTPAdapter implements [vfsh.FileAdapter] for read-only HTTP sources
type HTTPAdapter struct {
	config *HTTPSource
	client HTTPClient
}

func (h *HTTPAdapter) newRequest(ctx context.Context, method HTTPMethod) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, h.config.URL, nil)
	if err != nil {
		return nil, err
	}

	for k, v := range h.config.Headers {
		req.Header.Set(k, v)
	}

	return req, nil
}

func (h *HTTPAdapter) do(ctx context.Context, method HTTPMethod) (*http.Response, error) {
	logger := util.GetLogger("HTTPAdapter.do")

	req, err := h.newRequest(ctx, method)
	if err != nil {
		return nil, err
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		logger.Debug().Str("url", h.config.URL).Int("status", resp.StatusCode).Msg("Unexpected response")
		return nil, fmt.Errorf("%s %s: %s", method, h.config.URL, resp.Status)
	}
	return resp, nil
}

func (h *HTTPAdapter) Open(ctx context.Context) (io.ReadCloser, error) {
	resp, err := h.do(ctx, h.getMethod())
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (h *HTTPAdapter) Create(ctx context.Context) (io.WriteCloser, error) {
	return nil, vfsh.ErrReadOnly
}

func (h *HTTPAdapter) Writable() bool {
	return false
}

func (h *HTTPAdapter) GetMeta(ctx context.Context) (*vfsh.FileMetadata, error) {
	resp, err := h.do(ctx, HTTPMethodHead)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	meta := &vfsh.FileMetadata{
		Size:    resp.ContentLength,
		Version: resp.Header.Get("ETag"),
	}
	if lm := resp.Header.Get("Last-Modified"); lm != "" {
		if t, err := http.ParseTime(lm); err == nil {
			meta.LastModified = &t
		}
	}
	return meta, nil
}

func (h *HTTPAdapter) getMethod() HTTPMethod {
	if h.config.Method != nil {
		return *h.config.Method
	}
	return HTTPMethodGet
}
