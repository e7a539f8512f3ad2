package postgres

import (
	"context"
	"database/sql"
	"errors"
	"net"

	"github.com/jackc/pgx/v5/pgconn"

	forecasting "forecast-cloud/internal/forecasting/domain"
)

// Postgres error codes this package classifies.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeQueryCanceled       = "57014"
	codeTooManyConnections  = "53300"
	connectionExceptionClass = "08"
)

// classify maps storage-layer faults onto the caller-facing taxonomy. Raw
// driver errors never leave this package.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == codeUniqueViolation:
			return forecasting.ErrUniqueViolation
		case pgErr.Code == codeForeignKeyViolation:
			return forecasting.ErrForeignKeyViolation
		case pgErr.Code == codeQueryCanceled:
			return forecasting.ErrTimeout
		case pgErr.Code == codeTooManyConnections:
			return forecasting.ErrConnection
		case len(pgErr.Code) >= 2 && pgErr.Code[:2] == connectionExceptionClass:
			return forecasting.ErrConnection
		}
		return forecasting.ErrDatabase
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return forecasting.ErrTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return forecasting.ErrTimeout
		}
		return forecasting.ErrConnection
	}
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, sql.ErrTxDone) {
		return forecasting.ErrConnection
	}
	return forecasting.ErrDatabase
}
