package database

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func countUsers(t *testing.T, h Handler) int {
	t.Helper()
	var count int
	if err := h.QueryRow("SELECT COUNT(*) FROM user_data").Scan(&count); err != nil {
		t.Fatalf("counting users: %v", err)
	}
	return count
}

func TestWithTxCommit(t *testing.T) {
	h := newTestHandler(t)

	err := WithTx(h, func(tx *sql.Tx) error {
		_, err := tx.Exec(
			"INSERT INTO user_data (user_id, name, email, age) VALUES (?, ?, ?, ?)",
			"id-1", "Blandine", "blandine@example.com", 30)
		return err
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, countUsers(t, h))
}

func TestWithTxRollback(t *testing.T) {
	h := newTestHandler(t)
	boom := errors.New("boom")

	err := WithTx(h, func(tx *sql.Tx) error {
		if _, err := tx.Exec(
			"INSERT INTO user_data (user_id, name, email, age) VALUES (?, ?, ?, ?)",
			"id-1", "Blandine", "blandine@example.com", 30); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, countUsers(t, h), "rolled back insert must not persist")
}

func TestWithRetry(t *testing.T) {
	t.Run("Succeeds after transient failures", func(t *testing.T) {
		attempts := 0
		err := WithRetry(3, time.Millisecond, func() error {
			attempts++
			if attempts < 3 {
				return errors.New("transient")
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("Gives up after retries are exhausted", func(t *testing.T) {
		boom := errors.New("permanent")
		attempts := 0
		err := WithRetry(2, time.Millisecond, func() error {
			attempts++
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 3, attempts)
	})

	t.Run("Negative retries means a single attempt", func(t *testing.T) {
		attempts := 0
		err := WithRetry(-1, time.Millisecond, func() error {
			attempts++
			return errors.New("nope")
		})
		assert.Error(t, err)
		assert.Equal(t, 1, attempts)
	})
}

func TestWithQueryLogging(t *testing.T) {
	h := WithQueryLogging(newTestHandler(t))

	assert.NoError(t, InsertUsers(h, []User{NewUser("Blandine", "blandine@example.com", 30)}))

	rows, err := h.ExecuteQuery("SELECT name FROM user_data")
	assert.NoError(t, err)
	defer rows.Close() //nolint:errcheck

	var names []string
	for rows.Next() {
		var name string
		assert.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	assert.NoError(t, rows.Err())
	assert.Equal(t, []string{"Blandine"}, names)
}
