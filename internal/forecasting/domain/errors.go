package forecasting

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Stable error codes surfaced to callers. The code identifies the failure
// class; the message is a safe human-readable summary.
const (
	CodeForecastNotFound    = "Forecast.NotFound"
	CodeNegativeProduction  = "Forecast.NegativeProduction"
	CodeInvalidDateRange    = "Forecast.InvalidDateRange"
	CodeConcurrencyConflict = "Forecast.ConcurrencyConflict"

	CodePowerPlantNotFound = "PowerPlant.NotFound"
	CodeCompanyNotFound    = "Company.NotFound"

	CodeDatabaseError       = "Database.Error"
	CodeConnectionError     = "Database.ConnectionError"
	CodeTimeoutError        = "Database.TimeoutError"
	CodeUniqueViolation     = "Database.UniqueConstraintViolation"
	CodeForeignKeyViolation = "Database.ForeignKeyViolation"
)

// Error is a typed domain failure. Expected failures are returned as *Error;
// anything else reaching a caller is an unexpected fault.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

// ForecastNotFound reports a missing forecast.
func ForecastNotFound(id uuid.UUID) *Error {
	return &Error{Code: CodeForecastNotFound, Message: fmt.Sprintf("forecast %s not found", id)}
}

// PowerPlantNotFound reports a missing power plant.
func PowerPlantNotFound(id uuid.UUID) *Error {
	return &Error{Code: CodePowerPlantNotFound, Message: fmt.Sprintf("power plant %s not found", id)}
}

// CompanyNotFound reports a missing company.
func CompanyNotFound(id uuid.UUID) *Error {
	return &Error{Code: CodeCompanyNotFound, Message: fmt.Sprintf("company %s not found", id)}
}

var (
	// ErrNegativeProduction rejects production values below zero.
	ErrNegativeProduction = &Error{
		Code:    CodeNegativeProduction,
		Message: "production value cannot be negative",
	}

	// ErrInvalidDateRange rejects windows whose start is after their end.
	ErrInvalidDateRange = &Error{
		Code:    CodeInvalidDateRange,
		Message: "start date must be before or equal to end date",
	}

	// ErrConcurrencyConflict signals a lost optimistic-concurrency race.
	// The caller must re-read and retry.
	ErrConcurrencyConflict = &Error{
		Code:    CodeConcurrencyConflict,
		Message: "the forecast was modified by another caller, re-read and retry",
	}

	// ErrDatabase is the generic persistence fault. Unclassified storage
	// errors map here so no driver detail leaks to callers.
	ErrDatabase = &Error{
		Code:    CodeDatabaseError,
		Message: "a database error occurred while processing the request",
	}

	// ErrConnection signals the store is unreachable; retry later.
	ErrConnection = &Error{
		Code:    CodeConnectionError,
		Message: "unable to connect to the database, try again later",
	}

	// ErrTimeout signals the storage operation timed out; retry later.
	ErrTimeout = &Error{
		Code:    CodeTimeoutError,
		Message: "the database operation timed out, try again later",
	}

	// ErrUniqueViolation signals a duplicate natural key at the store.
	ErrUniqueViolation = &Error{
		Code:    CodeUniqueViolation,
		Message: "a record with the same unique value already exists",
	}

	// ErrForeignKeyViolation signals a broken entity reference at the store.
	ErrForeignKeyViolation = &Error{
		Code:    CodeForeignKeyViolation,
		Message: "the operation violates a foreign key constraint",
	}
)

// AsDomain unwraps err into a typed domain error when possible.
func AsDomain(err error) (*Error, bool) {
	var derr *Error
	if errors.As(err, &derr) {
		return derr, true
	}
	return nil, false
}

// CodeOf returns the domain error code of err, or empty when err is not a
// domain error.
func CodeOf(err error) string {
	if derr, ok := AsDomain(err); ok {
		return derr.Code
	}
	return ""
}

// IsCode reports whether err carries the given domain error code.
func IsCode(err error, code string) bool {
	return CodeOf(err) == code
}
