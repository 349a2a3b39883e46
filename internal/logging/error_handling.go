package logging

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

func logCleanupFailure(logger *slog.Logger, message string, err error, operation, component string) {
	LogError(logger, message, err,
		slog.String("operation", operation),
		slog.String("component", component))
}

// CloseLogged closes c and logs a failure. Nil closers are ignored.
func CloseLogged(c io.Closer, logger *slog.Logger, operation string) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		logCleanupFailure(logger, "failed to close resource", err, operation, "resource_management")
	}
}

// RollbackLogged is meant to be deferred right after BeginTx. Rolling back a
// transaction that already committed reports sql.ErrTxDone, which is not
// logged.
func RollbackLogged(tx interface{ Rollback() error }, logger *slog.Logger, operation string) {
	if tx == nil {
		return
	}
	err := tx.Rollback()
	if err == nil || errors.Is(err, sql.ErrTxDone) {
		return
	}
	logCleanupFailure(logger, "failed to rollback transaction", err, operation, "database")
}

// CaptureDeferred runs cleanup from a defer and records its failure in *errp.
// A cleanup failure becomes the result when the function otherwise
// succeeded; otherwise it is joined onto the existing error.
func CaptureDeferred(errp *error, cleanup func() error, logger *slog.Logger, operation string) {
	if cleanup == nil {
		return
	}
	err := cleanup()
	if err == nil {
		return
	}
	logCleanupFailure(logger, "deferred operation failed", err, operation, "deferred_cleanup")

	wrapped := fmt.Errorf("%s failed: %w", operation, err)
	if *errp == nil {
		*errp = wrapped
		return
	}
	*errp = errors.Join(*errp, wrapped)
}
