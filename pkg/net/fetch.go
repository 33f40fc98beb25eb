package net

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
)

// ErrorURLNotFound is returned when the server answers 404.
var ErrorURLNotFound = errors.New("URL not found")

// IsURL reports whether s is an absolute http or https URL.
func IsURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return true
	default:
		return false
	}
}

// Open issues a GET for target and returns the response body on 200.
// The caller closes the body.
func Open(ctx context.Context, target string) (io.ReadCloser, error) {
	if !IsURL(target) {
		return nil, fmt.Errorf("invalid URL: %q", target)
	}

	c, err := GetHTTPClient()
	if err != nil {
		return nil, fmt.Errorf("creating HTTP client: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP Get request: %w", err)
	}
	req.Header.Set("User-Agent", clientAgent)

	resp, err := c.Do(req) //nolint:gosec // G704: URL supplied by the operator
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", target, err)
	}

	slog.Debug("http response", "url", target, "status", resp.StatusCode, "length", resp.ContentLength)

	switch resp.StatusCode {
	case http.StatusOK:
		return resp.Body, nil
	case http.StatusNotFound:
		resp.Body.Close()
		return nil, fmt.Errorf("%s: %w", target, ErrorURLNotFound)
	default:
		resp.Body.Close()
		return nil, fmt.Errorf("downloading %s (status: %d - %s)", target, resp.StatusCode, resp.Status)
	}
}

// Download saves the content of target to path.
func Download(ctx context.Context, target, path string) (retErr error) {
	body, err := Open(ctx, target)
	if err != nil {
		return err
	}
	defer body.Close()

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && retErr == nil {
			retErr = fmt.Errorf("closing file: %w", cerr)
		}
	}()

	if _, err := io.Copy(out, body); err != nil {
		return fmt.Errorf("saving downloaded content to file: %w", err)
	}

	return nil
}
