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
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	cmn "github.com/ArthurIrene/jsonprobe/pkg/common"
	"github.com/qri-io/jsonschema"
)

// LoadSchema reads a JSON Schema from disk.
func LoadSchema(schemaPath string) (*jsonschema.Schema, error) {
	if strings.TrimSpace(schemaPath) == "" {
		return nil, fmt.Errorf("empty schema path")
	}

	schemaData, err := os.ReadFile(schemaPath)
	if err != nil {
		cmn.DebugMsg(cmn.DbgLvlError, "Failed to read schema file: %v", err)
		return nil, err
	}

	schema := &jsonschema.Schema{}
	if err := schema.UnmarshalJSON(schemaData); err != nil {
		cmn.DebugMsg(cmn.DbgLvlError, "Failed to unmarshal schema: %v", err)
		return nil, err
	}

	return schema, nil
}

// ValidateJSON validates a raw JSON payload against the given schema.
func ValidateJSON(ctx context.Context, schema *jsonschema.Schema, payload []byte) error {
	if schema == nil {
		return fmt.Errorf("nil schema")
	}

	keyErrs, err := schema.ValidateBytes(ctx, payload)
	if err != nil {
		return err
	}
	if len(keyErrs) > 0 {
		return fmt.Errorf("validation failed: %v", keyErrs)
	}
	return nil
}

// GetValidatedJSON fetches a JSON document, validates the raw payload
// against schema and returns the decoded value.
func (c *Client) GetValidatedJSON(ctx context.Context, rawURL string, schema *jsonschema.Schema) (interface{}, error) {
	data, ctype, err := c.Get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if err := ValidateJSON(ctx, schema, data); err != nil {
		return nil, fmt.Errorf("payload from %s failed schema validation: %w", rawURL, err)
	}

	var payload interface{}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode JSON from %s (content-type %q): %w", rawURL, ctype, err)
	}
	return payload, nil
}
