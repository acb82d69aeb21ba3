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
	"net/url"
	"strings"
)

// NormalizeURL normalizes a URL by trimming spaces and trailing slashes and
// converting it to lowercase.
func NormalizeURL(rawURL string) string {
	// Trim spaces
	rawURL = strings.TrimSpace(rawURL)
	// Trim trailing slash
	rawURL = strings.TrimRight(rawURL, "/")
	// Convert to lowercase
	rawURL = strings.ToLower(rawURL)
	return rawURL
}

// IsURLValid checks if the given string is a valid absolute URL.
func IsURLValid(rawURL string) bool {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}
