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

// Package database is responsible for handling the database
// setup, configuration and abstraction.
package database

import (
	"database/sql"
	"fmt"
	"strings"

	cfg "github.com/ArthurIrene/jsonprobe/pkg/config"
)

// Supported DBMS labels.
const (
	DBPostgresStr = "postgres"
	DBMySQLStr    = "mysql"
	DBSQLiteStr   = "sqlite"
)

// NewHandler returns a new Handler based on the database type
// specified in the configuration.
func NewHandler(c cfg.Config) (Handler, error) {
	switch strings.ToLower(strings.TrimSpace(c.Database.Type)) {
	case DBPostgresStr, "":
		return &PostgresHandler{dbms: DBPostgresStr}, nil
	case DBMySQLStr:
		return &MySQLHandler{dbms: DBMySQLStr}, nil
	case DBSQLiteStr, "sqlite3":
		return &SQLiteHandler{dbms: DBSQLiteStr}, nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}
}

// buildConnectionString constructs the PostgreSQL connection string
// from the Config struct.
func buildConnectionString(c cfg.Config) string {
	host := c.Database.Host
	if host == "" {
		host = "localhost"
	}
	port := c.Database.Port
	if port == 0 {
		port = 5432
	}
	user := c.Database.User
	if user == "" {
		user = "jsonprobe"
	}
	dbName := c.Database.DBName
	if dbName == "" {
		dbName = "UserData"
	}
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, c.Database.Password, dbName, sslMode)
}

// buildMySQLConnectionString constructs the MySQL DSN from the Config struct.
func buildMySQLConnectionString(c cfg.Config) string {
	host := c.Database.Host
	if host == "" {
		host = "localhost"
	}
	port := c.Database.Port
	if port == 0 {
		port = 3306
	}
	dbName := c.Database.DBName
	if dbName == "" {
		dbName = "UserData"
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		c.Database.User, c.Database.Password, host, port, dbName)
}

// rowsToMaps drains rows into a slice of column-name keyed maps.
// The caller keeps ownership of rows closing.
func rowsToMaps(rows *sql.Rows) ([]map[string]interface{}, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns: %w", err)
	}

	var out []map[string]interface{}
	for rows.Next() {
		values := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		row := make(map[string]interface{}, len(cols))
		for i, col := range cols {
			v := values[i]
			// Normalize []byte columns to string for JSON friendliness
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[col] = v
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
