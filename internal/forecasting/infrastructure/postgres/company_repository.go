package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	forecasting "forecast-cloud/internal/forecasting/domain"
)

// CompanyRepository is a Postgres implementation for companies.
type CompanyRepository struct {
	db *sql.DB
}

// NewCompanyRepository constructs a repository.
func NewCompanyRepository(db *sql.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

// GetByID loads a company, or nil when absent.
func (r *CompanyRepository) GetByID(ctx context.Context, id uuid.UUID) (*forecasting.Company, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("company repo: nil db")
	}

	const query = `
SELECT id, name, created_at, updated_at
FROM companies
WHERE id = $1`

	var company forecasting.Company
	row := r.db.QueryRowContext(ctx, query, id)
	if err := row.Scan(&company.ID, &company.Name, &company.CreatedAt, &company.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, classify(err)
	}
	return &company, nil
}
