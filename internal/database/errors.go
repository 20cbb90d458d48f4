package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
)

// ConnectionError marks failures to reach the database (unreachable host,
// dropped connection, exhausted pool). Handlers map it to 503.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("database connection error: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// QueryError marks a query that reached the database and failed there
// (malformed statement, constraint violation). Handlers map it to 500.
type QueryError struct {
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query execution error: %v", e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// classify wraps a driver error into the taxonomy. Context errors pass
// through unwrapped so callers can detect timeouts and client
// disconnects with errors.Is.
func classify(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &QueryError{Err: err}
	}

	var connectErr *pgconn.ConnectError
	var netErr net.Error
	if errors.As(err, &connectErr) || errors.As(err, &netErr) || errors.Is(err, driver.ErrBadConn) {
		return &ConnectionError{Err: err}
	}

	return &QueryError{Err: err}
}

// IsConnectionError reports whether err is a connectivity failure.
func IsConnectionError(err error) bool {
	var connErr *ConnectionError
	return errors.As(err, &connErr)
}

// IsTimeout reports whether err is an exhausted request budget.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
