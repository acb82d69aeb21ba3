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

// Package main (API) implements the extraction API server: it fetches remote
// JSON documents and returns the value found at a requested key path.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	cmn "github.com/ArthurIrene/jsonprobe/pkg/common"
	cfg "github.com/ArthurIrene/jsonprobe/pkg/config"
	"github.com/ArthurIrene/jsonprobe/pkg/fetch"
	"github.com/ArthurIrene/jsonprobe/pkg/nested"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

const (
	errTooManyRequests = "Too Many Requests"
	errRateLimitExceed = "Rate limit exceeded"
)

var (
	limiter     *rate.Limiter
	configMutex sync.Mutex
	config      cfg.Config
	client      *fetch.Client

	// Counters for monitoring (atomic)
	totalRequests atomic.Int64
	totalErrors   atomic.Int64
	totalSuccess  atomic.Int64
)

var (
	gaugeTotalRequests = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "jsonprobe_api_total_requests",
		Help: "Total number of extraction requests received",
	})
	gaugeTotalErrors = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "jsonprobe_api_total_errors",
		Help: "Total number of failed extraction requests",
	})
	gaugeTotalSuccess = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "jsonprobe_api_total_success",
		Help: "Total number of successful extraction requests",
	})
)

func initAll(configFile string) error {
	configMutex.Lock()
	defer configMutex.Unlock()

	var err error
	config, err = cfg.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if cfg.IsEmpty(config) {
		return errors.New("config file is empty")
	}

	cmn.SetDebugLevel(cmn.DbgLevel(config.DebugLevel))
	cmn.UpdateLoggerConfig()

	// Set the rate limiter
	if strings.TrimSpace(config.API.RateLimit) == "" {
		config.API.RateLimit = "10,10"
	}
	if !strings.Contains(config.API.RateLimit, ",") {
		config.API.RateLimit = config.API.RateLimit + ",10"
	}
	rl, err := strconv.Atoi(strings.Split(config.API.RateLimit, ",")[0])
	if err != nil || rl <= 0 {
		rl = 10
	}
	bl, err := strconv.Atoi(strings.Split(config.API.RateLimit, ",")[1])
	if err != nil || bl <= 0 {
		bl = 10
	}
	limiter = rate.NewLimiter(rate.Limit(rl), bl)

	// Build the fetch client from the fetcher section
	opts := fetch.DefaultOptions()
	opts.Timeout = time.Duration(config.Fetcher.Timeout) * time.Second
	opts.ConnectTimeout = time.Duration(config.Fetcher.ConnectTimeout) * time.Second
	opts.SSLMode = config.Fetcher.SSLMode
	opts.MaxSize = config.Fetcher.MaxSize
	opts.Retries = config.Fetcher.Retries
	opts.UserAgent = config.Fetcher.UserAgent
	opts.AllowedMIMEs = []string{"application/json", "text/"}
	client = fetch.NewClient(opts)

	return nil
}

func main() {
	configFile := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	cmn.InitLogger("jsonprobeAPI")

	if err := initAll(*configFile); err != nil {
		cmn.DebugMsg(cmn.DbgLvlFatal, "initializing the API server: %v", err)
	}

	prometheus.MustRegister(gaugeTotalRequests, gaugeTotalErrors, gaugeTotalSuccess)

	// Reload the configuration on SIGHUP
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGHUP)
	go func() {
		for range sigs {
			cmn.DebugMsg(cmn.DbgLvlInfo, "SIGHUP received, reloading configuration")
			if err := initAll(*configFile); err != nil {
				cmn.DebugMsg(cmn.DbgLvlError, "reloading configuration: %v", err)
			}
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/extract", withMiddleware(extractHandler))
	mux.HandleFunc("/v1/health", healthHandler)
	mux.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf("%s:%d", config.API.Host, config.API.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  time.Duration(config.API.Timeout) * time.Second,
		WriteTimeout: time.Duration(config.API.Timeout) * time.Second,
	}

	cmn.DebugMsg(cmn.DbgLvlInfo, "API server listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		cmn.DebugMsg(cmn.DbgLvlFatal, "API server: %v", err)
	}
}

// withMiddleware applies rate limiting, request tagging and counters to a
// handler.
func withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		totalRequests.Add(1)
		gaugeTotalRequests.Inc()

		if !limiter.Allow() {
			totalErrors.Add(1)
			gaugeTotalErrors.Inc()
			cmn.DebugMsg(cmn.DbgLvlDebug, errRateLimitExceed)
			http.Error(w, errTooManyRequests, http.StatusTooManyRequests)
			return
		}

		// Tag the request so failures can be correlated in the logs
		reqID := uuid.NewString()
		w.Header().Set("X-Request-ID", reqID)
		r.Header.Set("X-Request-ID", reqID)

		next(w, r)
	}
}

type extractResponse struct {
	URL   string      `json:"url"`
	Path  string      `json:"path,omitempty"`
	Value interface{} `json:"value"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func extractHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rawURL := strings.TrimSpace(r.URL.Query().Get("url"))
	if !cmn.IsURLValid(rawURL) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid URL: %s", rawURL))
		return
	}
	pathExpr := r.URL.Query().Get("path")
	path := nested.ParsePath(pathExpr)

	value, err := client.GetJSONPath(r.Context(), rawURL, path...)
	if err != nil {
		var knf *nested.KeyNotFoundError
		if errors.As(err, &knf) {
			writeError(w, http.StatusNotFound, knf.Error())
			return
		}
		cmn.DebugMsg(cmn.DbgLvlError, "extracting %s: %v [request %s]",
			rawURL, err, r.Header.Get("X-Request-ID"))
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	totalSuccess.Add(1)
	gaugeTotalSuccess.Inc()
	writeJSON(w, http.StatusOK, extractResponse{URL: rawURL, Path: pathExpr, Value: value})
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		cmn.DebugMsg(cmn.DbgLvlError, "encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	totalErrors.Add(1)
	gaugeTotalErrors.Inc()
	writeJSON(w, status, errorResponse{Error: msg})
}
