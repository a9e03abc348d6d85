package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultRequestsPerMinute keeps the CoinGecko free tier happy.
const DefaultRequestsPerMinute = 30

// MaxResponseBytes caps how much of an upstream response body is read.
const MaxResponseBytes = 10 << 20

var ErrResponseTooLarge = errors.New("response body too large")

// apiClient is the HTTP plumbing shared by the REST price sources.
type apiClient struct {
	name    string
	baseURL string
	headers map[string]string
	client  *http.Client
	limiter *rate.Limiter
	maxBody int64
}

func newAPIClient(name, baseURL, proxyURL string, perMinute int, headers map[string]string) *apiClient {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if perMinute <= 0 {
		perMinute = DefaultRequestsPerMinute
	}
	return &apiClient{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		headers: headers,
		client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
		maxBody: MaxResponseBytes,
	}
}

// getJSON issues GET baseURL/path?query and decodes a JSON body into out.
func (c *apiClient) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s rate limit: %w", c.name, err)
	}

	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		if v != "" {
			req.Header.Set(k, v)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s fetch: %w", c.name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return fmt.Errorf("%s read body: %w", c.name, err)
	}
	if int64(len(body)) > c.maxBody {
		return fmt.Errorf("%w: %s sent more than %d bytes", ErrResponseTooLarge, c.name, c.maxBody)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "application/json") {
		return fmt.Errorf("%w: %s returned content type %q: %s", ErrUnexpectedResponse, c.name, ct, preview(body))
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: status %d, body: %s", c.name, resp.StatusCode, preview(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s decode: %w", c.name, err)
	}
	return nil
}

func preview(body []byte) string {
	const limit = 200
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
