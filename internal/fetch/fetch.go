// Package fetch downloads the remote hierarchy documents and screenshots a
// caller may reference by URL instead of inlining.
package fetch

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"time"
)

type Client struct {
	http *http.Client
}

func New(timeout time.Duration) *Client {
	return &Client{
		http: &http.Client{Timeout: timeout},
	}
}

// Text downloads a URL and returns the body as a string.
func (c *Client) Text(ctx context.Context, url string) (string, error) {
	data, err := c.get(ctx, url)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ImageBase64 downloads a URL and returns the body base64-encoded, the form
// the annotation and LLM layers work with.
func (c *Client) ImageBase64(ctx context.Context, url string) (string, error) {
	data, err := c.get(ctx, url)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", url, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	return data, nil
}
