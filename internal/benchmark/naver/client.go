package naver

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/wonny/perfstat/pkg/httputil"
	"github.com/wonny/perfstat/pkg/logger"
)

const (
	defaultBaseURL = "https://finance.naver.com"

	// maxPages bounds pagination; a page holds six trading days
	maxPages = 1500
)

// Client scrapes daily index levels from Naver Finance
// ⭐ SSOT: Naver Finance calls happen only in this client
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new Naver Finance client
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		logger:     log.Component("benchmark.naver"),
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Name identifies the provider
func (c *Client) Name() string {
	return "naver"
}

// fetchHTML fetches a page from Naver Finance
func (c *Client) fetchHTML(ctx context.Context, path string, params url.Values) (string, error) {
	fullURL := fmt.Sprintf("%s%s", c.baseURL, path)
	if len(params) > 0 {
		fullURL = fmt.Sprintf("%s?%s", fullURL, params.Encode())
	}

	body, err := c.httpClient.GetBody(ctx, fullURL)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}

	return string(body), nil
}
