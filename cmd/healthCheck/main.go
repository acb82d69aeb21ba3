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

// Package main (healthCheck) is a command line tool that checks whether the
// extraction API is reachable and healthy.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	cmn "github.com/ArthurIrene/jsonprobe/pkg/common"
	cfg "github.com/ArthurIrene/jsonprobe/pkg/config"
)

var (
	config cfg.Config
)

func genHealthURL() string {
	rval := fmt.Sprintf("%s:%d/v1/health", config.API.Host, config.API.Port)
	if config.API.SSLMode == cmn.EnableStr {
		rval = fmt.Sprintf("https://%s", rval)
	} else {
		rval = fmt.Sprintf("http://%s", rval)
	}
	return rval
}

func main() {
	configFile := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	cmn.InitLogger("healthCheck")

	var err error
	config, err = cfg.LoadConfig(*configFile)
	if err != nil {
		cmn.DebugMsg(cmn.DbgLvlFatal, "Error reading config file: %v", err)
	}

	httpClient := &http.Client{
		Transport: cmn.SafeTransport(config.API.Timeout, config.API.SSLMode),
		Timeout:   time.Duration(config.API.Timeout) * time.Second,
	}

	resp, err := httpClient.Get(genHealthURL())
	if err != nil {
		cmn.DebugMsg(cmn.DbgLvlFatal, "API is not reachable: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck // Don't lint for error not checked, this is a defer statement

	if resp.StatusCode != http.StatusOK {
		cmn.DebugMsg(cmn.DbgLvlError, "API returned status %d", resp.StatusCode)
		os.Exit(1)
	}

	fmt.Println("API is healthy")
}
