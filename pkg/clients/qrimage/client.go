// Package qrimage renders QR images for minted barcodes through an external
// rendering service.
package qrimage

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/wiptrace/internal/config"
)

// Renderer exposes the QR rendering operation used by the scan service.
type Renderer interface {
	RenderSVG(ctx context.Context, content string) (string, error)
}

// APIClient is a resty-backed implementation of Renderer.
type APIClient struct {
	httpClient *resty.Client
	size       int
}

// NewClient builds a QR renderer client from the provided configuration.
func NewClient(cfg config.QRConfig) *APIClient {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetTimeout(10 * time.Second)

	return &APIClient{
		httpClient: restyClient,
		size:       cfg.Size,
	}
}

// RenderSVG returns the SVG markup of a QR code encoding content.
func (c *APIClient) RenderSVG(ctx context.Context, content string) (string, error) {
	if content == "" {
		return "", fmt.Errorf("content must not be empty")
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"data":   content,
			"size":   fmt.Sprintf("%dx%d", c.size, c.size),
			"format": "svg",
		}).
		Get("/")
	if err != nil {
		return "", fmt.Errorf("render qr image: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return "", fmt.Errorf("qr renderer error: status=%d", resp.StatusCode())
	}

	return string(resp.Body()), nil
}
