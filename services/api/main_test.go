package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ArthurIrene/jsonprobe/pkg/fetch"

	"golang.org/x/time/rate"
)

func setupTestGlobals() {
	limiter = rate.NewLimiter(rate.Limit(100), 100)
	client = fetch.NewClient(fetch.DefaultOptions())
}

func TestExtractHandler(t *testing.T) {
	setupTestGlobals()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"org": {"repos": 53}}`))
	}))
	defer upstream.Close()

	testCases := []struct {
		name           string
		url            string
		path           string
		expectedStatus int
		expectedValue  interface{}
	}{
		{
			name:           "Full document",
			url:            upstream.URL,
			path:           "",
			expectedStatus: http.StatusOK,
			expectedValue:  map[string]interface{}{"org": map[string]interface{}{"repos": float64(53)}},
		},
		{
			name:           "Nested path",
			url:            upstream.URL,
			path:           "org.repos",
			expectedStatus: http.StatusOK,
			expectedValue:  float64(53),
		},
		{
			name:           "Missing key",
			url:            upstream.URL,
			path:           "org.members",
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Invalid URL",
			url:            "not-a-url",
			path:           "",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/extract", nil)
			q := req.URL.Query()
			q.Set("url", tc.url)
			q.Set("path", tc.path)
			req.URL.RawQuery = q.Encode()

			rec := httptest.NewRecorder()
			withMiddleware(extractHandler)(rec, req)

			if rec.Code != tc.expectedStatus {
				t.Fatalf("extract handler status = %d, want %d (body %s)", rec.Code, tc.expectedStatus, rec.Body.String())
			}
			if tc.expectedStatus != http.StatusOK {
				return
			}

			var resp extractResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decoding response: %v", err)
			}
			if got, want := resp.Value, tc.expectedValue; !jsonEqual(got, want) {
				t.Errorf("extract handler value = %v, want %v", got, want)
			}
		})
	}
}

func jsonEqual(a, b interface{}) bool {
	ab, _ := json.Marshal(a)
	bb, _ := json.Marshal(b)
	return string(ab) == string(bb)
}

func TestExtractHandlerRateLimit(t *testing.T) {
	setupTestGlobals()
	limiter = rate.NewLimiter(rate.Limit(0), 0) // deny everything

	req := httptest.NewRequest(http.MethodGet, "/v1/extract?url=http://example.com", nil)
	rec := httptest.NewRecorder()
	withMiddleware(extractHandler)(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("rate-limited request status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
}

func TestHealthHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	healthHandler(rec, httptest.NewRequest(http.MethodGet, "/v1/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("health handler status = %d, want %d", rec.Code, http.StatusOK)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding health response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("health status = %q, want %q", body["status"], "ok")
	}
}
