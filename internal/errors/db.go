package errors

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"regexp"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// reKeyField extracts the column from a unique violation detail: "Key (ref)=(JD-000001) already exists.".
var reKeyField = regexp.MustCompile(`Key \(([^)]+)\)=`)

// tableDomains maps table names to the names used in user-facing messages.
var tableDomains = map[string]string{
	"job_dispatches":          "Job Dispatch",
	"audit_requests":          "Audit Request",
	"audit_api_logs":          "API Log",
	"audit_error_log_entries": "Error Log Entry",
	"ref_sequences":           "Reference Sequence",
}

// MapDBError maps database errors to AppError instances:
//   - context deadline/cancel → Timeout/Canceled
//   - pgx.ErrNoRows and sql.ErrNoRows → NotFound
//   - unique violations → Conflict (with Field when it can be recovered)
//   - foreign key violations → ForeignKey
//   - check and not-null violations → Validation
//   - connection failures → Unavailable
//
// Unrecognized errors are returned unchanged.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &AppError{Code: ErrCodeTimeout, Message: "Request timed out. Please try again.", Cause: err}
	case errors.Is(err, context.Canceled):
		return &AppError{Code: ErrCodeCanceled, Message: "Request was canceled.", Cause: err}
	case errors.Is(err, pgx.ErrNoRows), errors.Is(err, sql.ErrNoRows):
		return &AppError{Code: ErrCodeNotFound, Message: "Resource not found", Cause: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return mapPgError(pgErr)
	}

	var connErr *pgconn.ConnectError
	var netErr net.Error
	if errors.As(err, &connErr) || errors.As(err, &netErr) {
		return &AppError{Code: ErrCodeUnavailable, Message: "Database is unavailable.", Cause: err}
	}

	return err
}

func mapPgError(pgErr *pgconn.PgError) error {
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return &AppError{
			Code:    ErrCodeConflict,
			Message: "This value already exists. Please choose a different one.",
			Field:   uniqueViolationField(pgErr),
			Cause:   pgErr,
		}
	case pgerrcode.ForeignKeyViolation:
		return &AppError{
			Code:    ErrCodeForeignKey,
			Message: "Cannot complete operation because the referenced " + domainFor(pgErr) + " does not exist.",
			Cause:   pgErr,
		}
	case pgerrcode.CheckViolation, pgerrcode.NotNullViolation:
		return &AppError{
			Code:    ErrCodeValidation,
			Message: "Invalid data. Please check your input.",
			Field:   pgErr.ColumnName,
			Cause:   pgErr,
		}
	case pgerrcode.InvalidTextRepresentation:
		return &AppError{Code: ErrCodeValidation, Message: "Malformed identifier.", Cause: pgErr}
	case pgerrcode.AdminShutdown, pgerrcode.CannotConnectNow, pgerrcode.ConnectionFailure,
		pgerrcode.ConnectionException, pgerrcode.TooManyConnections:
		return &AppError{Code: ErrCodeUnavailable, Message: "Database is unavailable.", Cause: pgErr}
	default:
		return &AppError{
			Code:    ErrCodeInternal,
			Message: "A database error occurred. Please try again.",
			Cause:   pgErr,
		}
	}
}

func uniqueViolationField(pgErr *pgconn.PgError) string {
	if pgErr.ColumnName != "" {
		return pgErr.ColumnName
	}
	if m := reKeyField.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
		return m[1]
	}
	// "job_dispatches_ref_key" → "ref"
	name := strings.TrimSuffix(pgErr.ConstraintName, "_key")
	if table := pgErr.TableName; table != "" && strings.HasPrefix(name, table+"_") {
		return strings.TrimPrefix(name, table+"_")
	}
	return ""
}

// domainFor resolves the referenced entity from the constraint name, e.g.
// "job_dispatches_running_audit_request_id_fkey" → "Audit Request".
func domainFor(pgErr *pgconn.PgError) string {
	constraint := strings.ToLower(pgErr.ConstraintName)
	if strings.Contains(constraint, "audit_request") {
		return tableDomains["audit_requests"]
	}
	if name, ok := tableDomains[strings.ToLower(pgErr.TableName)]; ok {
		return name
	}
	return "record"
}
