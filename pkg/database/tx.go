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
)

// WithTx runs fn inside a transaction on the given handler. The transaction
// is committed when fn returns nil and rolled back otherwise; a rollback
// failure is attached to the original error.
func WithTx(h Handler, fn func(tx *sql.Tx) error) error {
	tx, err := h.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := h.Rollback(tx); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		cmn.DebugMsg(cmn.DbgLvlDebug, "transaction rolled back: %v", err)
		return err
	}

	if err := h.Commit(tx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// WithRetry calls fn up to retries+1 times with a fixed delay between
// attempts, returning the first success or the last failure.
func WithRetry(retries int, delay time.Duration, fn func() error) error {
	if retries < 0 {
		retries = 0
	}

	var err error
	for attempt := 0; attempt <= retries; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		cmn.DebugMsg(cmn.DbgLvlDebug, "attempt %d/%d failed: %v", attempt+1, retries+1, err)
		if attempt < retries {
			time.Sleep(delay)
		}
	}
	return fmt.Errorf("all %d attempts failed: %w", retries+1, err)
}

// loggingHandler decorates a Handler, logging every statement before it runs.
type loggingHandler struct {
	Handler
}

// WithQueryLogging wraps a Handler so each query and its parameters are
// logged at debug level before execution.
func WithQueryLogging(h Handler) Handler {
	return &loggingHandler{Handler: h}
}

// ExecuteQuery logs then executes a query.
func (l *loggingHandler) ExecuteQuery(query string, args ...interface{}) (*sql.Rows, error) {
	cmn.DebugMsg(cmn.DbgLvlDebug, "executing SQL: %s args: %v", query, args)
	rows, err := l.Handler.ExecuteQuery(query, args...)
	if err != nil {
		cmn.DebugMsg(cmn.DbgLvlDebug, "query failed: %v", err)
	}
	return rows, err
}

// Exec logs then executes a statement.
func (l *loggingHandler) Exec(query string, args ...interface{}) (sql.Result, error) {
	cmn.DebugMsg(cmn.DbgLvlDebug, "executing SQL: %s args: %v", query, args)
	res, err := l.Handler.Exec(query, args...)
	if err != nil {
		cmn.DebugMsg(cmn.DbgLvlDebug, "statement failed: %v", err)
	}
	return res, err
}

// QueryRow logs then executes a single-row query.
func (l *loggingHandler) QueryRow(query string, args ...interface{}) *sql.Row {
	cmn.DebugMsg(cmn.DbgLvlDebug, "executing SQL: %s args: %v", query, args)
	return l.Handler.QueryRow(query, args...)
}
