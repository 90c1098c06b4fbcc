package rxdir

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"med-adherence/internal/platform/httpclient"
)

var (
	ErrRxdirNotConfigured = errors.New("rxdir client not configured")
	ErrRxdirUpstream      = errors.New("rxdir upstream error")
)

// Config del cliente del directorio de medicamentos.
// BaseURL y APIKey normalmente vienen de env vars (ver internal/config).
type Config struct {
	BaseURL string
	APIKey  string

	// Opcional: header donde se manda la API key. Default "X-Api-Key".
	APIKeyHeader string

	Timeout time.Duration
}

type Client struct {
	apiKey       string
	apiKeyHeader string
	http         *httpclient.Client
}

func NewClient(cfg Config) (*Client, error) {
	h := strings.TrimSpace(cfg.APIKeyHeader)
	if h == "" {
		h = "X-Api-Key"
	}

	hc, err := httpclient.New(cfg.BaseURL, cfg.Timeout)
	if err != nil {
		return nil, err
	}

	return &Client{
		apiKey:       strings.TrimSpace(cfg.APIKey),
		apiKeyHeader: h,
		http:         hc,
	}, nil
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.http != nil && c.http.BaseURL != ""
}

// drugResponse es el contrato del directorio: GET /v1/drugs?name=...
type drugResponse struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

func (c *Client) GetDrug(ctx context.Context, name string) (drugResponse, error) {
	if !c.IsConfigured() {
		return drugResponse{}, ErrRxdirNotConfigured
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return drugResponse{}, errors.New("rxdir: name required")
	}

	var headers map[string]string
	if c.apiKey != "" {
		headers = map[string]string{c.apiKeyHeader: c.apiKey}
	}

	var out drugResponse
	path := "/v1/drugs?name=" + url.QueryEscape(name)
	if err := c.http.DoJSON(ctx, http.MethodGet, path, headers, nil, &out); err != nil {
		var he *httpclient.HTTPError
		if errors.As(err, &he) && he.StatusCode == http.StatusNotFound {
			return drugResponse{}, err // el resolver lo traduce a not-found
		}
		return drugResponse{}, fmt.Errorf("%w: %v", ErrRxdirUpstream, err)
	}
	return out, nil
}
