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
	"net/http"
	"time"
)

// Transport is the single capability the client needs from the HTTP layer:
// perform a request, return the response. Production code uses an
// *http.Client; tests substitute a scripted stub.
type Transport interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options holds knobs for robust fetching.
type Options struct {
	Timeout            time.Duration     // total request timeout (incl. redirects)
	ConnectTimeout     time.Duration     // TCP connect timeout
	SSLMode            string            // SafeTransport knob
	MaxSize            int64             // hard cap for body (e.g., 8<<20)
	AllowedMIMEs       []string          // allowlist of MIME types (prefix match with trailing "/", e.g. "text/")
	Headers            map[string]string // extra headers
	UserAgent          string            // default if empty: "jsonprobe/1.0"
	Retries            int               // retry count for transient network/5xx/429
	RetryBaseDelay     time.Duration     // base backoff, e.g. 200ms
	FollowRedirects    bool              // default true via DefaultOptions
	MaxRedirects       int               // default 5
	DropAuthOnRedirect bool              // drop Authorization/Cookie on cross-host redirects
}

// DefaultOptions returns the options used when the caller does not care.
func DefaultOptions() Options {
	return Options{
		Timeout:            30 * time.Second,
		ConnectTimeout:     10 * time.Second,
		MaxSize:            16 << 20,
		UserAgent:          defaultUserAgent,
		Retries:            0,
		RetryBaseDelay:     200 * time.Millisecond,
		FollowRedirects:    true,
		MaxRedirects:       5,
		DropAuthOnRedirect: true,
	}
}

const defaultUserAgent = "jsonprobe/1.0"

// normalize fills in the zero-value knobs with sane defaults.
func (o Options) normalize() Options {
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = 10 * time.Second
	}
	if o.MaxSize <= 0 {
		o.MaxSize = 16 << 20
	}
	if o.RetryBaseDelay <= 0 {
		o.RetryBaseDelay = 200 * time.Millisecond
	}
	if o.MaxRedirects <= 0 {
		o.MaxRedirects = 5
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUserAgent
	}
	if o.Retries < 0 {
		o.Retries = 0
	}
	return o
}
