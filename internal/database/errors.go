package database

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
	mssql "github.com/microsoft/go-mssqldb"
)

// ConnectionError reports that the database could not be reached, authenticated
// against, or connected to before the connect timeout.
type ConnectionError struct {
	Addr string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("database connection error (%s): %v", e.Addr, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// ExecutionError reports that a query, function or procedure call failed after
// a connection was acquired.
type ExecutionError struct {
	Op  string
	Err error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// Message returns the server's own error text when the driver exposes it
func (e *ExecutionError) Message() string {
	var msErr mssql.Error
	if errors.As(e.Err, &msErr) {
		return msErr.Message
	}

	var pqErr *pq.Error
	if errors.As(e.Err, &pqErr) {
		return pqErr.Message
	}

	return e.Err.Error()
}

// asExecution wraps err unless it already carries one of the typed domains
func asExecution(op string, err error) error {
	if err == nil {
		return nil
	}

	var connErr *ConnectionError
	var execErr *ExecutionError
	if errors.As(err, &connErr) || errors.As(err, &execErr) {
		return err
	}

	return &ExecutionError{Op: op, Err: err}
}
