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
	"time"

	cmn "github.com/ArthurIrene/jsonprobe/pkg/common"
	cfg "github.com/ArthurIrene/jsonprobe/pkg/config"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

// ---------------------------------------------------------------
// MySQL handlers
// ---------------------------------------------------------------

// maxConnectAttempts bounds the connect/ping retry loop so a bad DSN does
// not spin forever.
const maxConnectAttempts = 5

// MySQLHandler struct to hold the DB connection
type MySQLHandler struct {
	db   *sql.DB
	dbms string
}

// Connect connects to the database
func (handler *MySQLHandler) Connect(c cfg.Config) error {
	connectionString := buildMySQLConnectionString(c)

	var err error
	for attempt := 0; attempt < maxConnectAttempts; attempt++ {
		handler.db, err = sql.Open("mysql", connectionString)
		if err != nil {
			cmn.DebugMsg(cmn.DbgLvlError, "connecting to the database: %v", err)
			time.Sleep(time.Duration(c.Database.RetryTime) * time.Second)
			continue
		}

		err = handler.db.Ping()
		if err != nil {
			cmn.DebugMsg(cmn.DbgLvlError, "pinging the database: %v", err)
			time.Sleep(time.Duration(c.Database.PingTime) * time.Second)
			continue
		}
		return nil
	}
	return fmt.Errorf("could not connect to the database after %d attempts: %w", maxConnectAttempts, err)
}

// Close closes the database connection
func (handler *MySQLHandler) Close() error {
	return handler.db.Close()
}

// Ping checks if the database connection is still alive
func (handler *MySQLHandler) Ping() error {
	return handler.db.Ping()
}

// ExecuteQuery executes a query and returns the result
func (handler *MySQLHandler) ExecuteQuery(query string, args ...interface{}) (*sql.Rows, error) {
	return handler.db.Query(query, args...)
}

// Exec executes a commands on the database
func (handler *MySQLHandler) Exec(query string, args ...interface{}) (sql.Result, error) {
	return handler.db.Exec(query, args...)
}

// DBMS returns the database management system
func (handler *MySQLHandler) DBMS() string {
	return handler.dbms
}

// Begin starts a transaction
func (handler *MySQLHandler) Begin() (*sql.Tx, error) {
	return handler.db.Begin()
}

// Commit commits a transaction
func (handler *MySQLHandler) Commit(tx *sql.Tx) error {
	return tx.Commit()
}

// Rollback rolls back a transaction
func (handler *MySQLHandler) Rollback(tx *sql.Tx) error {
	return tx.Rollback()
}

// QueryRow executes a query that is expected to return at most one row.
func (handler *MySQLHandler) QueryRow(query string, args ...interface{}) *sql.Row {
	return handler.db.QueryRow(query, args...)
}

// CheckConnection checks if the database connection is still alive
func (handler *MySQLHandler) CheckConnection(c cfg.Config) error {
	var err error
	if handler.db == nil || handler.Ping() != nil {
		err = handler.Connect(c)
	}
	return err
}
