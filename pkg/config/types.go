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

// The config package contains the configuration file parsing logic.
package config

// Database holds the database connection settings.
type Database struct {
	Type      string `yaml:"type"` // postgres, mysql or sqlite
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	User      string `yaml:"user"`
	Password  string `yaml:"password"`
	DBName    string `yaml:"dbname"`
	SSLMode   string `yaml:"sslmode"`
	RetryTime int    `yaml:"retry_time"` // seconds between connection retries
	PingTime  int    `yaml:"ping_time"`  // seconds between failed pings
}

// API holds the extraction API server settings.
type API struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Timeout   int    `yaml:"timeout"`
	SSLMode   string `yaml:"sslmode"`
	RateLimit string `yaml:"rate_limit"` // "<rate>,<burst>"
}

// Fetcher holds the remote fetch settings.
type Fetcher struct {
	Timeout        int    `yaml:"timeout"`         // total request timeout in seconds
	ConnectTimeout int    `yaml:"connect_timeout"` // TCP connect timeout in seconds
	SSLMode        string `yaml:"sslmode"`
	MaxSize        int64  `yaml:"max_size"` // body size cap in bytes
	Retries        int    `yaml:"retries"`
	UserAgent      string `yaml:"user_agent"`
}

// Config represents the structure of the configuration file
type Config struct {
	Database   Database `yaml:"database"`
	API        API      `yaml:"api"`
	Fetcher    Fetcher  `yaml:"fetcher"`
	OS         string   `yaml:"os"`
	DebugLevel int      `yaml:"debug_level"`
}
