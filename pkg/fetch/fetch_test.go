// Package fetch retrieves remote JSON payloads over HTTP(S) and s3:// and
// decodes them into Go values.
package fetch

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/ArthurIrene/jsonprobe/pkg/nested"
)

// stubTransport replies with a canned body and records every request it sees.
type stubTransport struct {
	body       string
	status     int
	requests   []*http.Request
	err        error
	contentTyp string
}

func (s *stubTransport) Do(req *http.Request) (*http.Response, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	status := s.status
	if status == 0 {
		status = http.StatusOK
	}
	ctype := s.contentTyp
	if ctype == "" {
		ctype = "application/json"
	}
	resp := &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{ctype}},
		Body:       io.NopCloser(strings.NewReader(s.body)),
	}
	return resp, nil
}

func TestGetJSONWithStubTransport(t *testing.T) {
	testCases := []struct {
		name     string
		url      string
		body     string
		expected interface{}
	}{
		{
			name:     "Object payload",
			url:      "http://example.com",
			body:     `{"payload": true}`,
			expected: map[string]interface{}{"payload": true},
		},
		{
			name:     "Another object payload",
			url:      "http://holberton.io",
			body:     `{"payload": false}`,
			expected: map[string]interface{}{"payload": false},
		},
		{
			name:     "Array payload",
			url:      "http://example.com/list",
			body:     `[1, 2]`,
			expected: []interface{}{float64(1), float64(2)},
		},
		{
			name:     "Scalar payload",
			url:      "http://example.com/scalar",
			body:     `42`,
			expected: float64(42),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubTransport{body: tc.body}
			client := NewClientWithTransport(Options{}, stub)

			got, err := client.GetJSON(context.Background(), tc.url)
			if err != nil {
				t.Fatalf("GetJSON() unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("GetJSON() got = %v, want %v", got, tc.expected)
			}

			// Exactly one call must reach the transport, with the URL we asked for.
			if len(stub.requests) != 1 {
				t.Fatalf("GetJSON() made %d transport calls, want 1", len(stub.requests))
			}
			if gotURL := stub.requests[0].URL.String(); gotURL != tc.url {
				t.Errorf("GetJSON() requested %q, want %q", gotURL, tc.url)
			}
			if stub.requests[0].Method != http.MethodGet {
				t.Errorf("GetJSON() used method %s, want GET", stub.requests[0].Method)
			}
		})
	}
}

func TestGetJSONErrors(t *testing.T) {
	testCases := []struct {
		name string
		stub *stubTransport
	}{
		{
			name: "Network failure propagates",
			stub: &stubTransport{err: errors.New("connection refused")},
		},
		{
			name: "Non-2xx status is an error",
			stub: &stubTransport{body: "not found", status: http.StatusNotFound},
		},
		{
			name: "Malformed JSON body",
			stub: &stubTransport{body: "{not json"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client := NewClientWithTransport(Options{}, tc.stub)
			if _, err := client.GetJSON(context.Background(), "http://example.com"); err == nil {
				t.Errorf("GetJSON() expected error, got nil")
			}
		})
	}
}

func TestGetJSONInvalidScheme(t *testing.T) {
	client := NewClientWithTransport(Options{}, &stubTransport{body: "{}"})

	for _, rawURL := range []string{"", "example.com", "ftp://example.com/x.json"} {
		if _, err := client.GetJSON(context.Background(), rawURL); err == nil {
			t.Errorf("GetJSON(%q) expected error, got nil", rawURL)
		}
	}
}

func TestGetJSONAgainstHTTPServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"org": {"name": "holberton", "repos": 53}}`))
	}))
	defer srv.Close()

	client := NewClient(DefaultOptions())
	got, err := client.GetJSON(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("GetJSON() unexpected error: %v", err)
	}
	want := map[string]interface{}{
		"org": map[string]interface{}{"name": "holberton", "repos": float64(53)},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GetJSON() got = %v, want %v", got, want)
	}
}

func TestGetJSONPath(t *testing.T) {
	stub := &stubTransport{body: `{"a": {"b": {"c": "deep"}}}`}
	client := NewClientWithTransport(Options{}, stub)

	got, err := client.GetJSONPath(context.Background(), "http://example.com", "a", "b", "c")
	if err != nil {
		t.Fatalf("GetJSONPath() unexpected error: %v", err)
	}
	if got != "deep" {
		t.Errorf("GetJSONPath() got = %v, want %q", got, "deep")
	}
}

func TestGetJSONPathMissingKey(t *testing.T) {
	testCases := []struct {
		name       string
		body       string
		path       []string
		missingKey string
	}{
		{
			name:       "Key absent",
			body:       `{"a": 1}`,
			path:       []string{"b"},
			missingKey: "b",
		},
		{
			name:       "Payload is not an object",
			body:       `[1, 2, 3]`,
			path:       []string{"a"},
			missingKey: "a",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client := NewClientWithTransport(Options{}, &stubTransport{body: tc.body})
			_, err := client.GetJSONPath(context.Background(), "http://example.com", tc.path...)
			var knf *nested.KeyNotFoundError
			if !errors.As(err, &knf) {
				t.Fatalf("GetJSONPath() error = %v, want *nested.KeyNotFoundError", err)
			}
			if knf.Key != tc.missingKey {
				t.Errorf("GetJSONPath() missing key = %q, want %q", knf.Key, tc.missingKey)
			}
		})
	}
}

func TestGetRetriesOnServerError(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	opts := DefaultOptions()
	opts.Retries = 2
	opts.RetryBaseDelay = 1 // keep the test fast

	client := NewClient(opts)
	got, err := client.GetJSON(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("GetJSON() unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, map[string]interface{}{"ok": true}) {
		t.Errorf("GetJSON() got = %v, want ok payload", got)
	}
	if calls != 2 {
		t.Errorf("server saw %d calls, want 2", calls)
	}
}

func TestGetRejectsDisallowedMIME(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	opts := DefaultOptions()
	opts.AllowedMIMEs = []string{"application/json"}

	client := NewClient(opts)
	if _, _, err := client.Get(context.Background(), srv.URL); err == nil {
		t.Errorf("Get() expected MIME error, got nil")
	}
}

func TestGetEnforcesMaxSize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 2048)))
	}))
	defer srv.Close()

	opts := DefaultOptions()
	opts.MaxSize = 1024

	client := NewClient(opts)
	if _, _, err := client.Get(context.Background(), srv.URL); err == nil {
		t.Errorf("Get() expected size limit error, got nil")
	}
}

func TestMimeAllowed(t *testing.T) {
	testCases := []struct {
		name     string
		mt       string
		allow    []string
		expected bool
	}{
		{
			name:     "Exact match",
			mt:       "application/json",
			allow:    []string{"application/json"},
			expected: true,
		},
		{
			name:     "Prefix match",
			mt:       "text/plain",
			allow:    []string{"text/"},
			expected: true,
		},
		{
			name:     "No match",
			mt:       "image/png",
			allow:    []string{"application/json", "text/"},
			expected: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := mimeAllowed(tc.mt, tc.allow); got != tc.expected {
				t.Errorf("mimeAllowed(%q) got = %v, want %v", tc.mt, got, tc.expected)
			}
		})
	}
}

func TestCheckContentType(t *testing.T) {
	testCases := []struct {
		name    string
		ctype   string
		allow   []string
		wantErr bool
	}{
		{
			name:    "Exact match",
			ctype:   "application/json",
			allow:   []string{"application/json"},
			wantErr: false,
		},
		{
			name:    "Charset parameter is ignored",
			ctype:   "application/json; charset=utf-8",
			allow:   []string{"application/json"},
			wantErr: false,
		},
		{
			name:    "Not allowed",
			ctype:   "text/html; charset=utf-8",
			allow:   []string{"application/json"},
			wantErr: true,
		},
		{
			name:    "Empty allowlist passes everything",
			ctype:   "image/png",
			allow:   nil,
			wantErr: false,
		},
		{
			name:    "Missing content type passes",
			ctype:   "",
			allow:   []string{"application/json"},
			wantErr: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := checkContentType(tc.ctype, tc.allow)
			if (err != nil) != tc.wantErr {
				t.Errorf("checkContentType(%q) error = %v, wantErr %v", tc.ctype, err, tc.wantErr)
			}
		})
	}
}
