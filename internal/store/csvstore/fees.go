package csvstore

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/nulbom/go-kiosk/internal/records"
	"github.com/nulbom/go-kiosk/pkg/faults"
)

// Fee table columns.
const (
	colFeeDepartment   = "Department"
	colFeePrescription = "Prescription"
	colFee             = "Fee"
)

// FeeTable reads the per-department treatment fee table.
type FeeTable struct {
	path   string
	logger *zap.Logger
}

// NewFeeTable creates a fee-table reader rooted at dataDir.
func NewFeeTable(dataDir string, logger *zap.Logger) *FeeTable {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeeTable{
		path:   filepath.Join(dataDir, "treatment_fees.csv"),
		logger: logger,
	}
}

// RowsForDepartment returns the fee rows whose department matches the request
// case-insensitively. The table being absent, zero rows matching, and a fee
// cell not parsing are each distinct structured faults so the caller can tell
// them apart from an empty-by-chance selection.
func (s *FeeTable) RowsForDepartment(_ context.Context, department string) ([]records.FeeRow, error) {
	t, err := readTable(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, faults.Newf(faults.CodeNoDataFile, "fee table not found: %s", s.path)
		}
		return nil, faults.Wrap(faults.CodeInternal, "read fee table", err)
	}

	want := strings.ToLower(strings.TrimSpace(department))
	var rows []records.FeeRow
	for _, row := range t.rows {
		if strings.ToLower(t.cell(row, colFeeDepartment)) != want {
			continue
		}
		name := t.cell(row, colFeePrescription)
		fee, err := strconv.Atoi(t.cell(row, colFee))
		if err != nil {
			return nil, faults.Newf(faults.CodeMalformedFee,
				"invalid fee for %q in department %q", name, department)
		}
		rows = append(rows, records.FeeRow{
			Department:   t.cell(row, colFeeDepartment),
			Prescription: name,
			Fee:          fee,
		})
	}

	if len(rows) == 0 {
		return nil, faults.Newf(faults.CodeNoMatchingDepartment,
			"no prescriptions found for department %q", department)
	}
	return rows, nil
}
