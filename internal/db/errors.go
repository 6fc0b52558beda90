package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"
)

// Sentinel errors for record store operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrQuotaExceeded indicates the backend refused a write because its
	// storage budget is used up.
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// ErrTransactionConflict indicates a SurrealDB transaction conflict.
	// This occurs when multiple concurrent operations attempt to modify the same records.
	ErrTransactionConflict = errors.New("transaction conflict")
)

// StorageError reports a failed Put, Get or Remove. Data is never silently
// dropped: every serialisation or backend failure surfaces as one.
type StorageError struct {
	Op  string // "put", "get" or "remove"
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// wrapQueryError inspects a SurrealDB error and wraps it with the appropriate
// sentinel error if it's a known query error type. Returns the original error
// if it's not a QueryError or doesn't match known patterns.
func wrapQueryError(err error) error {
	if err == nil {
		return nil
	}

	var queryErr *surrealdb.QueryError
	if errors.As(err, &queryErr) {
		msg := queryErr.Message
		if strings.Contains(msg, "Transaction conflict") {
			return fmt.Errorf("%w: %s", ErrTransactionConflict, msg)
		}
		if strings.Contains(strings.ToLower(msg), "storage") && strings.Contains(strings.ToLower(msg), "full") {
			return fmt.Errorf("%w: %s", ErrQuotaExceeded, msg)
		}
	}

	return err
}
