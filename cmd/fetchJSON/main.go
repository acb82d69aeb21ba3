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

// Package main (fetchJSON) is a command line tool that fetches a JSON
// document from a URL and prints it, or the value at a given key path.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	cmn "github.com/ArthurIrene/jsonprobe/pkg/common"
	cfg "github.com/ArthurIrene/jsonprobe/pkg/config"
	"github.com/ArthurIrene/jsonprobe/pkg/fetch"
	"github.com/ArthurIrene/jsonprobe/pkg/nested"
)

func main() {
	configFile := flag.String("config", "config.yaml", "Path to the configuration file")
	rawURL := flag.String("url", "", "URL of the JSON document to fetch (http, https or s3)")
	pathExpr := flag.String("path", "", "Dotted key path into the document (e.g. org.repos)")
	schemaFile := flag.String("schema", "", "Optional JSON Schema file to validate the payload against")
	flag.Parse()

	cmn.InitLogger("fetchJSON")

	if *rawURL == "" {
		fmt.Fprintln(os.Stderr, "Usage: fetchJSON -url <url> [-path a.b.c] [-schema schema.json]")
		os.Exit(1)
	}

	// The config file is optional for this tool; fall back to defaults.
	opts := fetch.DefaultOptions()
	if config, err := cfg.LoadConfig(*configFile); err == nil && !cfg.IsEmpty(config) {
		cmn.SetDebugLevel(cmn.DbgLevel(config.DebugLevel))
		opts.Timeout = time.Duration(config.Fetcher.Timeout) * time.Second
		opts.ConnectTimeout = time.Duration(config.Fetcher.ConnectTimeout) * time.Second
		opts.SSLMode = config.Fetcher.SSLMode
		opts.MaxSize = config.Fetcher.MaxSize
		opts.Retries = config.Fetcher.Retries
		opts.UserAgent = config.Fetcher.UserAgent
	}

	client := fetch.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer cancel()

	var value interface{}
	var err error
	if *schemaFile != "" {
		schema, serr := fetch.LoadSchema(*schemaFile)
		if serr != nil {
			cmn.DebugMsg(cmn.DbgLvlFatal, "loading schema: %v", serr)
		}
		value, err = client.GetValidatedJSON(ctx, *rawURL, schema)
		if err == nil && *pathExpr != "" {
			doc, ok := value.(map[string]interface{})
			if !ok {
				cmn.DebugMsg(cmn.DbgLvlFatal, "payload is not an object, cannot apply path %q", *pathExpr)
			}
			value, err = nested.AccessNestedMap(doc, nested.ParsePath(*pathExpr)...)
		}
	} else {
		value, err = client.GetJSONPath(ctx, *rawURL, nested.ParsePath(*pathExpr)...)
	}
	if err != nil {
		cmn.DebugMsg(cmn.DbgLvlFatal, "fetching %s: %v", *rawURL, err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(value); err != nil {
		cmn.DebugMsg(cmn.DbgLvlFatal, "encoding output: %v", err)
	}
}
