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
)

const createUserTableQuery = `
CREATE TABLE IF NOT EXISTS user_data (
	user_id VARCHAR(36) PRIMARY KEY,
	name    TEXT    NOT NULL,
	email   TEXT    NOT NULL,
	age     INTEGER NOT NULL
)`

// EnsureUserTable creates the user_data table if it does not exist yet.
func EnsureUserTable(h Handler) error {
	if _, err := h.Exec(createUserTableQuery); err != nil {
		return fmt.Errorf("creating user_data table: %w", err)
	}
	return nil
}

// insertUserQuery returns the insert statement with the placeholder style
// of the handler's DBMS.
func insertUserQuery(h Handler) string {
	if h.DBMS() == DBPostgresStr {
		return "INSERT INTO user_data (user_id, name, email, age) VALUES ($1, $2, $3, $4)"
	}
	return "INSERT INTO user_data (user_id, name, email, age) VALUES (?, ?, ?, ?)"
}

// InsertUsers writes the given users in a single transaction. Users without
// a UserID get a fresh UUID.
func InsertUsers(h Handler, users []User) error {
	if len(users) == 0 {
		return nil
	}

	query := insertUserQuery(h)
	return WithTx(h, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(query)
		if err != nil {
			return fmt.Errorf("preparing insert: %w", err)
		}
		defer stmt.Close() //nolint:errcheck // Don't lint for error not checked, this is a defer statement

		for _, u := range users {
			if u.UserID == "" {
				u = NewUser(u.Name, u.Email, u.Age)
			}
			if _, err := stmt.Exec(u.UserID, u.Name, u.Email, u.Age); err != nil {
				return fmt.Errorf("inserting user %s: %w", u.Email, err)
			}
		}
		return nil
	})
}
