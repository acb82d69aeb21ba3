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

// Package nested provides lookup helpers for nested key-value documents,
// such as decoded JSON objects.
package nested

import (
	"fmt"
	"strings"
)

// KeyNotFoundError is returned when a key in the lookup path is absent at
// its corresponding level. Key carries the specific missing key.
type KeyNotFoundError struct {
	Key string
}

// Error returns the error message for the missing key.
func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("key not found: %q", e.Key)
}

// AccessNestedMap descends into m one key at a time, replacing the current
// value with current[key] at each step. An empty path returns m unchanged.
// The first key that is absent at its level (or that would be looked up in a
// value that is not a map) aborts the traversal with a *KeyNotFoundError
// carrying that key.
func AccessNestedMap(m map[string]interface{}, path ...string) (interface{}, error) {
	var current interface{} = m

	for _, key := range path {
		level, ok := current.(map[string]interface{})
		if !ok {
			// The current value does not support key lookup, so the
			// key is absent.
			return nil, &KeyNotFoundError{Key: key}
		}
		value, exists := level[key]
		if !exists {
			return nil, &KeyNotFoundError{Key: key}
		}
		current = value
	}

	return current, nil
}

// ParsePath splits a dotted path expression ("a.b.c") into its key sequence.
// Empty segments are dropped, so "a..b" and ".a.b" both yield ["a" "b"].
func ParsePath(expr string) []string {
	if strings.TrimSpace(expr) == "" {
		return nil
	}
	parts := strings.Split(expr, ".")
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		keys = append(keys, p)
	}
	if len(keys) == 0 {
		return nil
	}
	return keys
}
