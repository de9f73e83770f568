// pkg/api/client.go
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// APIError is a non-2xx response decoded into Go form.
type APIError struct {
	Detail ErrorDetail
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Detail.Kind, e.Detail.Status, e.Detail.Message)
}

// CaptureOptions are the optional parameters of a capture call. Zero
// values mean "use the server default".
type CaptureOptions struct {
	Width    int
	Height   int
	Format   string
	Quality  int
	DelayMs  int
	FullPage bool
	Mobile   bool
	DarkMode bool
	Selector string
}

// CaptureOutput is a successful capture: the image plus the metadata
// the server reports in response headers.
type CaptureOutput struct {
	Image       []byte
	ContentType string
	Width       int
	Height      int
	Title       string
	ElapsedMs   int
}

// Client is a high-level HTTP client for a capture service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the service at baseURL. The HTTP
// timeout is generous because captures legitimately take tens of
// seconds.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Capture screenshots target and returns the image with its metadata.
func (c *Client) Capture(ctx context.Context, target string, opts *CaptureOptions) (*CaptureOutput, error) {
	q := url.Values{"url": {target}}
	if opts != nil {
		if opts.Width > 0 {
			q.Set("width", strconv.Itoa(opts.Width))
		}
		if opts.Height > 0 {
			q.Set("height", strconv.Itoa(opts.Height))
		}
		if opts.Format != "" {
			q.Set("format", opts.Format)
		}
		if opts.Quality > 0 {
			q.Set("quality", strconv.Itoa(opts.Quality))
		}
		if opts.DelayMs > 0 {
			q.Set("delay", strconv.Itoa(opts.DelayMs))
		}
		if opts.FullPage {
			q.Set("fullPage", "true")
		}
		if opts.Mobile {
			q.Set("mobile", "true")
		}
		if opts.DarkMode {
			q.Set("darkMode", "true")
		}
		if opts.Selector != "" {
			q.Set("selector", opts.Selector)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/capture?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("capture request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	image, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image body: %w", err)
	}

	out := &CaptureOutput{
		Image:       image,
		ContentType: resp.Header.Get("Content-Type"),
		Title:       resp.Header.Get("X-Page-Title"),
	}
	out.Width, _ = strconv.Atoi(resp.Header.Get("X-Image-Width"))
	out.Height, _ = strconv.Atoi(resp.Header.Get("X-Image-Height"))
	out.ElapsedMs, _ = strconv.Atoi(resp.Header.Get("X-Processing-Time-Ms"))

	return out, nil
}

// Health fetches the service health snapshot.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("health request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, fmt.Errorf("failed to decode health response: %w", err)
	}
	return &health, nil
}

func decodeError(resp *http.Response) error {
	var er ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil || er.Error.Status == 0 {
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	return &APIError{Detail: er.Error}
}
