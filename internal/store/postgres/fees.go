package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/nulbom/go-kiosk/internal/records"
	"github.com/nulbom/go-kiosk/pkg/faults"
)

// FeeTable reads the per-department treatment fee table.
type FeeTable struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewFeeTable creates a fee-table reader.
func NewFeeTable(pool *pgxpool.Pool, logger *zap.Logger) *FeeTable {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeeTable{pool: pool, logger: logger}
}

// RowsForDepartment returns the fee rows matching the department
// case-insensitively. Fees are integer columns in the database, so the
// malformed-fee fault cannot occur here; zero matches is still reported as a
// structured fault.
func (s *FeeTable) RowsForDepartment(ctx context.Context, department string) ([]records.FeeRow, error) {
	query := `SELECT department, prescription, fee
		FROM treatment_fees
		WHERE lower(department) = lower(trim($1))`

	rows, err := s.pool.Query(ctx, query, department)
	if err != nil {
		return nil, fmt.Errorf("query fee table: %w", err)
	}
	defer rows.Close()

	var out []records.FeeRow
	for rows.Next() {
		var row records.FeeRow
		if err := rows.Scan(&row.Department, &row.Prescription, &row.Fee); err != nil {
			return nil, fmt.Errorf("scan fee row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fee rows: %w", err)
	}

	if len(out) == 0 {
		return nil, faults.Newf(faults.CodeNoMatchingDepartment,
			"no prescriptions found for department %q", department)
	}
	return out, nil
}
