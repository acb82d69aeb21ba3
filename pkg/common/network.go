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

// Package common package is used to store common functions and variables
package common

import (
	"crypto/tls"
	"net"
	"net/http"
	"strings"
	"time"
)

// SafeTransport returns an *http.Transport with connect and TLS handshake
// timeouts enforced. The sslmode knob controls certificate verification:
// "ignore" skips verification, anything else leaves it on.
func SafeTransport(timeout int, sslmode string) *http.Transport {
	if timeout <= 0 {
		timeout = 10
	}

	dialer := &net.Dialer{
		Timeout:   time.Duration(timeout) * time.Second,
		KeepAlive: 30 * time.Second,
	}

	tlsConfig := &tls.Config{
		MinVersion: tls.VersionTLS12,
	}
	if strings.EqualFold(strings.TrimSpace(sslmode), "ignore") {
		tlsConfig.InsecureSkipVerify = true //nolint:gosec // explicit opt-in via sslmode
	}

	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSClientConfig:       tlsConfig,
		TLSHandshakeTimeout:   time.Duration(timeout) * time.Second,
		ResponseHeaderTimeout: time.Duration(timeout) * time.Second,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          100,
	}
}
