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
	"runtime"

	cfg "github.com/ArthurIrene/jsonprobe/pkg/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
)

// ---------------------------------------------------------------
// PostgreSQL handlers
// ---------------------------------------------------------------

// PostgresHandler is the implementation of the Handler interface for PostgreSQL
type PostgresHandler struct {
	db   *sqlx.DB
	dbms string
}

// Connect connects to a PostgreSQL database
func (handler *PostgresHandler) Connect(c cfg.Config) error {
	connectionString := buildConnectionString(c)

	var err error
	handler.db, err = sqlx.Connect("postgres", connectionString)
	if err != nil {
		return err
	}

	maxConns, maxIdle := determineConnectionLimits()
	handler.db.SetMaxOpenConns(maxConns)
	handler.db.SetMaxIdleConns(maxIdle)

	return nil
}

// determineConnectionLimits scales the pool with the available CPUs.
func determineConnectionLimits() (int, int) {
	maxConns := runtime.NumCPU() * 4
	if maxConns < 8 {
		maxConns = 8
	}
	maxIdle := maxConns / 2
	return maxConns, maxIdle
}

// Close closes the database connection
func (handler *PostgresHandler) Close() error {
	return handler.db.Close()
}

// Ping checks if the database connection is still alive
func (handler *PostgresHandler) Ping() error {
	return handler.db.Ping()
}

// ExecuteQuery executes a query and returns the result
func (handler *PostgresHandler) ExecuteQuery(query string, args ...interface{}) (*sql.Rows, error) {
	return handler.db.Query(query, args...)
}

// Exec executes a commands on the database
func (handler *PostgresHandler) Exec(query string, args ...interface{}) (sql.Result, error) {
	return handler.db.Exec(query, args...)
}

// DBMS returns the database management system
func (handler *PostgresHandler) DBMS() string {
	return handler.dbms
}

// Begin starts a transaction
func (handler *PostgresHandler) Begin() (*sql.Tx, error) {
	return handler.db.Begin()
}

// Commit commits a transaction
func (handler *PostgresHandler) Commit(tx *sql.Tx) error {
	return tx.Commit()
}

// Rollback rolls back a transaction
func (handler *PostgresHandler) Rollback(tx *sql.Tx) error {
	return tx.Rollback()
}

// QueryRow executes a query that is expected to return at most one row.
// QueryRow always returns a non-nil value. Errors are deferred until
// Row's Scan method is called.
func (handler *PostgresHandler) QueryRow(query string, args ...interface{}) *sql.Row {
	return handler.db.QueryRow(query, args...)
}

// CheckConnection checks if the database connection is still alive
func (handler *PostgresHandler) CheckConnection(c cfg.Config) error {
	var err error
	if handler.db == nil || handler.Ping() != nil {
		err = handler.Connect(c)
	}
	return err
}

// SelectUsers runs a query expected to return user_data rows and scans them
// into User structs via sqlx.
func (handler *PostgresHandler) SelectUsers(query string, args ...interface{}) ([]User, error) {
	var users []User
	err := handler.db.Select(&users, query, args...)
	return users, err
}
