// Copyright 2024 Arthur Irene
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package fetch retrieves remote JSON payloads over HTTP(S) and s3:// and
// decodes them into Go values.
package fetch

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	cmn "github.com/ArthurIrene/jsonprobe/pkg/common"
	"github.com/ArthurIrene/jsonprobe/pkg/nested"
)

// Client fetches remote payloads. The zero value is not usable; construct
// one with NewClient or NewClientWithTransport.
type Client struct {
	opts      Options
	transport Transport
}

// NewClient returns a Client backed by a real HTTP client built on
// common.SafeTransport with the redirect policy from opts.
func NewClient(opts Options) *Client {
	opts = opts.normalize()
	return &Client{
		opts:      opts,
		transport: newHTTPTransport(opts),
	}
}

// NewClientWithTransport returns a Client that performs requests through the
// given Transport. Used by tests to substitute a scripted stub, and by
// callers that already carry a tuned *http.Client.
func NewClientWithTransport(opts Options, transport Transport) *Client {
	return &Client{
		opts:      opts.normalize(),
		transport: transport,
	}
}

// newHTTPTransport builds the production *http.Client for the given options.
func newHTTPTransport(opts Options) *http.Client {
	tr := cmn.SafeTransport(int(opts.ConnectTimeout.Seconds()), opts.SSLMode)

	client := &http.Client{
		Transport: tr,
		Timeout:   opts.Timeout,
	}
	client.CheckRedirect = func(r *http.Request, via []*http.Request) error {
		if !opts.FollowRedirects {
			return http.ErrUseLastResponse
		}
		if len(via) >= opts.MaxRedirects {
			return errors.New("stopped after too many redirects")
		}
		if opts.DropAuthOnRedirect && len(via) > 0 {
			orig := via[0].URL
			if !strings.EqualFold(r.URL.Hostname(), orig.Hostname()) {
				// drop sensitive headers on cross-host
				r.Header.Del("Authorization")
				r.Header.Del("Cookie")
			}
		}
		return nil
	}
	return client
}

// Get fetches raw bytes from HTTP(S) or s3:// and returns them along with
// the content type reported by the remote side.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, string, error) {
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") &&
		!strings.HasPrefix(rawURL, "s3://") {
		return nil, "", fmt.Errorf("unsupported scheme in URL: %s", rawURL)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, "", fmt.Errorf("invalid URL: %w", err)
	}

	switch u.Scheme {
	case "http", "https":
		return c.getHTTP(ctx, rawURL)
	case "s3":
		return c.getS3(ctx, u)
	default:
		return nil, "", fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
}

// GetJSON performs a single GET against url and decodes the response body as
// JSON, returning the decoded value (object, array or scalar) exactly as the
// server sent it.
func (c *Client) GetJSON(ctx context.Context, rawURL string) (interface{}, error) {
	data, ctype, err := c.Get(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	var payload interface{}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode JSON from %s (content-type %q): %w", rawURL, ctype, err)
	}
	return payload, nil
}

// GetJSONPath fetches a JSON document and descends into it along the given
// key path. With an empty path it behaves like GetJSON.
func (c *Client) GetJSONPath(ctx context.Context, rawURL string, path ...string) (interface{}, error) {
	payload, err := c.GetJSON(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if len(path) == 0 {
		return payload, nil
	}

	doc, ok := payload.(map[string]interface{})
	if !ok {
		return nil, &nested.KeyNotFoundError{Key: path[0]}
	}
	return nested.AccessNestedMap(doc, path...)
}

func (c *Client) getHTTP(ctx context.Context, rawURL string) ([]byte, string, error) {
	opts := c.opts

	var lastErr error
	delay := opts.RetryBaseDelay

	for attempt := 0; attempt <= opts.Retries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, "", fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", opts.UserAgent)
		for k, v := range opts.Headers {
			req.Header.Set(k, v)
		}

		resp, err := c.transport.Do(req)
		if err != nil {
			// Retry on transient net errors
			if attempt < opts.Retries && isTransientNetErr(err) {
				time.Sleep(jitter(delay))
				delay = backoff(delay)
				lastErr = err
				continue
			}
			return nil, "", fmt.Errorf("request failed: %w", err)
		}

		ctype := strings.TrimSpace(resp.Header.Get("Content-Type"))

		// Non-200s: optionally retry on 429/5xx
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			_ = resp.Body.Close()
			if attempt < opts.Retries && shouldRetryStatus(resp.StatusCode) {
				time.Sleep(jitter(delay))
				delay = backoff(delay)
				lastErr = fmt.Errorf("HTTP %d", resp.StatusCode)
				continue
			}
			return nil, ctype, fmt.Errorf("non-2xx status: %d", resp.StatusCode)
		}

		// Enforce content length if provided
		if resp.ContentLength > 0 && resp.ContentLength > opts.MaxSize {
			_ = resp.Body.Close()
			return nil, ctype, fmt.Errorf("response too large: %d > %d", resp.ContentLength, opts.MaxSize)
		}

		// MIME allowlist
		if err := checkContentType(ctype, opts.AllowedMIMEs); err != nil {
			_ = resp.Body.Close()
			return nil, ctype, err
		}

		// Stream with limit
		limited := io.LimitReader(resp.Body, opts.MaxSize+1)
		buf := bufio.NewReader(limited)
		data, readErr := io.ReadAll(buf)
		_ = resp.Body.Close()
		if readErr != nil {
			if attempt < opts.Retries && isTransientNetErr(readErr) {
				time.Sleep(jitter(delay))
				delay = backoff(delay)
				lastErr = readErr
				continue
			}
			return nil, ctype, fmt.Errorf("read body: %w", readErr)
		}
		if int64(len(data)) > opts.MaxSize {
			return nil, ctype, fmt.Errorf("response exceeded limit (%d bytes)", opts.MaxSize)
		}
		return data, ctype, nil
	}

	return nil, "", fmt.Errorf("request failed after retries: %v", lastErr)
}

// ---- Helpers

// checkContentType strips media-type parameters (charset etc.) before
// matching the allowlist. An empty ctype or allowlist passes.
func checkContentType(ctype string, allow []string) error {
	if len(allow) == 0 || ctype == "" {
		return nil
	}
	mt, _, _ := mime.ParseMediaType(ctype)
	if !mimeAllowed(mt, allow) {
		return fmt.Errorf("content-type %q not allowed", mt)
	}
	return nil
}

func mimeAllowed(mt string, allow []string) bool {
	mt = strings.ToLower(strings.TrimSpace(mt))
	for _, a := range allow {
		a = strings.ToLower(strings.TrimSpace(a))
		if strings.HasSuffix(a, "/") {
			if strings.HasPrefix(mt, a) {
				return true
			}
		} else {
			if mt == a {
				return true
			}
		}
	}
	return false
}

func shouldRetryStatus(code int) bool {
	if code == http.StatusTooManyRequests {
		return true
	}
	return code >= 500 && code <= 599
}

func isTransientNetErr(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	// ECONNRESET, EOF etc.
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "tls handshake timeout") ||
		strings.Contains(msg, "eof")
}

func backoff(d time.Duration) time.Duration {
	nd := d * 2
	if nd > 4*time.Second {
		nd = 4 * time.Second
	}
	return nd
}

func jitter(d time.Duration) time.Duration {
	// +/- 20%
	n := int64(d)
	return time.Duration(n + rand.Int63n(2*n/5+1) - n/5) //nolint:gosec // jitter, not crypto
}
