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
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

const (
	selectUsersQuery    = "SELECT user_id, name, email, age FROM user_data ORDER BY user_id"
	selectUsersBatchQry = "SELECT user_id, name, email, age FROM user_data ORDER BY user_id LIMIT %d OFFSET %d"
	selectAgesQuery     = "SELECT age FROM user_data"
)

// StreamUsers reads the user_data table one row at a time and delivers each
// record over the returned channel. The error channel carries at most one
// error and both channels are closed when the stream ends. Cancelling ctx
// stops the stream.
func StreamUsers(ctx context.Context, h Handler) (<-chan User, <-chan error) {
	out := make(chan User)
	errc := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errc)

		rows, err := h.ExecuteQuery(selectUsersQuery)
		if err != nil {
			errc <- fmt.Errorf("streaming users: %w", err)
			return
		}
		defer rows.Close() //nolint:errcheck // Don't lint for error not checked, this is a defer statement

		for rows.Next() {
			var u User
			if err := rows.Scan(&u.UserID, &u.Name, &u.Email, &u.Age); err != nil {
				errc <- fmt.Errorf("scanning user row: %w", err)
				return
			}
			select {
			case out <- u:
			case <-ctx.Done():
				errc <- ctx.Err()
				return
			}
		}
		if err := rows.Err(); err != nil {
			errc <- err
		}
	}()

	return out, errc
}

// StreamUsersInBatches fetches user_data rows in batches of batchSize and
// delivers each batch over the returned channel.
func StreamUsersInBatches(ctx context.Context, h Handler, batchSize int) (<-chan []User, <-chan error) {
	out := make(chan []User)
	errc := make(chan error, 1)

	if batchSize <= 0 {
		batchSize = 100
	}

	go func() {
		defer close(out)
		defer close(errc)

		for offset := 0; ; offset += batchSize {
			batch, err := fetchUserBatch(h, batchSize, offset)
			if err != nil {
				errc <- err
				return
			}
			if len(batch) == 0 {
				return
			}
			select {
			case out <- batch:
			case <-ctx.Done():
				errc <- ctx.Err()
				return
			}
			if len(batch) < batchSize {
				return
			}
		}
	}()

	return out, errc
}

// userSelector is implemented by handlers that can scan user_data rows
// directly into User structs (the sqlx-backed PostgresHandler).
type userSelector interface {
	SelectUsers(query string, args ...interface{}) ([]User, error)
}

func fetchUserBatch(h Handler, limit, offset int) ([]User, error) {
	query := fmt.Sprintf(selectUsersBatchQry, limit, offset)

	if s, ok := h.(userSelector); ok {
		batch, err := s.SelectUsers(query)
		if err != nil {
			return nil, fmt.Errorf("fetching user batch at offset %d: %w", offset, err)
		}
		return batch, nil
	}

	rows, err := h.ExecuteQuery(query)
	if err != nil {
		return nil, fmt.Errorf("fetching user batch at offset %d: %w", offset, err)
	}
	defer rows.Close() //nolint:errcheck // Don't lint for error not checked, this is a defer statement

	var batch []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.UserID, &u.Name, &u.Email, &u.Age); err != nil {
			return nil, fmt.Errorf("scanning user row: %w", err)
		}
		batch = append(batch, u)
	}
	return batch, rows.Err()
}

// ProcessUserBatches streams the user_data table in batches and calls fn for
// every user older than minAge. Processing stops on the first error.
func ProcessUserBatches(ctx context.Context, h Handler, batchSize, minAge int, fn func(User) error) error {
	// The stream producer blocks on its channel send, so an early return must
	// cancel it or the goroutine (and its cursor) never exits.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	batches, errc := StreamUsersInBatches(ctx, h, batchSize)

	for batch := range batches {
		for _, u := range batch {
			if u.Age <= minAge {
				continue
			}
			if err := fn(u); err != nil {
				return err
			}
		}
	}
	return <-errc
}

// ConcurrentQueries runs the given read queries concurrently, one goroutine
// per query, and returns the result sets in input order. The first failure
// cancels the remaining queries.
func ConcurrentQueries(ctx context.Context, h Handler, queries ...string) ([][]map[string]interface{}, error) {
	results := make([][]map[string]interface{}, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	for i, query := range queries {
		i, query := i, query
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rows, err := h.ExecuteQuery(query)
			if err != nil {
				return fmt.Errorf("query %d: %w", i, err)
			}
			defer rows.Close() //nolint:errcheck // Don't lint for error not checked, this is a defer statement

			out, err := rowsToMaps(rows)
			if err != nil {
				return fmt.Errorf("query %d: %w", i, err)
			}
			results[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// AverageUserAge computes the mean age of the user_data table by streaming
// the age column, without loading the whole table in memory.
func AverageUserAge(ctx context.Context, h Handler) (float64, error) {
	rows, err := h.ExecuteQuery(selectAgesQuery)
	if err != nil {
		return 0, fmt.Errorf("streaming ages: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Don't lint for error not checked, this is a defer statement

	var sum, count int64
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		var age int64
		if err := rows.Scan(&age); err != nil {
			return 0, fmt.Errorf("scanning age: %w", err)
		}
		sum += age
		count++
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, nil
	}
	return float64(sum) / float64(count), nil
}
