package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	forecasting "forecast-cloud/internal/forecasting/domain"
)

type fakeNetError struct{ timeout bool }

func (e fakeNetError) Error() string   { return "net fault" }
func (e fakeNetError) Timeout() bool   { return e.timeout }
func (e fakeNetError) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code string
	}{
		{"unique violation", &pgconn.PgError{Code: "23505"}, forecasting.CodeUniqueViolation},
		{"foreign key violation", &pgconn.PgError{Code: "23503"}, forecasting.CodeForeignKeyViolation},
		{"query canceled", &pgconn.PgError{Code: "57014"}, forecasting.CodeTimeoutError},
		{"too many connections", &pgconn.PgError{Code: "53300"}, forecasting.CodeConnectionError},
		{"connection exception", &pgconn.PgError{Code: "08006"}, forecasting.CodeConnectionError},
		{"other pg error", &pgconn.PgError{Code: "42703"}, forecasting.CodeDatabaseError},
		{"deadline exceeded", context.DeadlineExceeded, forecasting.CodeTimeoutError},
		{"net timeout", fakeNetError{timeout: true}, forecasting.CodeTimeoutError},
		{"net refused", fakeNetError{}, forecasting.CodeConnectionError},
		{"conn done", sql.ErrConnDone, forecasting.CodeConnectionError},
		{"unclassified", errors.New("boom"), forecasting.CodeDatabaseError},
		{"wrapped pg error", fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23505"}), forecasting.CodeUniqueViolation},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := classify(tc.err)
			if forecasting.CodeOf(got) != tc.code {
				t.Fatalf("classify(%v) = %v, want code %s", tc.err, got, tc.code)
			}
		})
	}

	if classify(nil) != nil {
		t.Fatal("classify(nil) must be nil")
	}
}

func TestClassifiedMessagesAreSafe(t *testing.T) {
	raw := &pgconn.PgError{Code: "08006", Message: "connection to server at host=db port=5432 failed"}
	got := classify(raw)
	derr, ok := forecasting.AsDomain(got)
	if !ok {
		t.Fatalf("expected domain error, got %v", got)
	}
	if derr.Message == raw.Message {
		t.Fatal("driver message leaked to caller")
	}
}
