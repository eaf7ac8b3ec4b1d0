package csvstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/nulbom/go-kiosk/internal/records"
	"github.com/nulbom/go-kiosk/pkg/faults"
)

// Catalog table columns.
const (
	colCatName      = "name"
	colCatCode      = "code"
	colCatUnitDose  = "unit_dose"
	colCatFrequency = "daily_frequency"
	colCatTotalDays = "total_days"
)

// Catalog reads prescription dosing metadata. Each department may carry its
// own catalog file; prescriptions.csv is the generic fallback.
type Catalog struct {
	dataDir string
	logger  *zap.Logger
}

// NewCatalog creates a catalog reader rooted at dataDir.
func NewCatalog(dataDir string, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{dataDir: dataDir, logger: logger}
}

// departmentFile maps a department name to its catalog filename, e.g.
// "Internal Medicine" -> prescriptions_internal_medicine.csv.
func departmentFile(department string) string {
	slug := strings.ToLower(strings.TrimSpace(department))
	slug = strings.ReplaceAll(slug, " ", "_")
	return fmt.Sprintf("prescriptions_%s.csv", slug)
}

// Load returns the catalog entries for a department, falling back to the
// generic catalog when no department-specific file exists. When neither file
// can be read the catalog is unavailable.
func (s *Catalog) Load(_ context.Context, department string) ([]records.CatalogEntry, error) {
	paths := []string{
		filepath.Join(s.dataDir, departmentFile(department)),
		filepath.Join(s.dataDir, "prescriptions.csv"),
	}

	for _, path := range paths {
		t, err := readTable(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, faults.Wrap(faults.CodeCatalogUnavailable, "read catalog", err)
		}

		entries := make([]records.CatalogEntry, 0, len(t.rows))
		for i, row := range t.rows {
			e := records.CatalogEntry{
				Name:           t.cell(row, colCatName),
				Code:           t.cell(row, colCatCode),
				UnitDose:       t.cell(row, colCatUnitDose),
				DailyFrequency: t.cell(row, colCatFrequency),
				TotalDays:      t.cell(row, colCatTotalDays),
			}
			if e.Name == "" {
				s.logger.Warn("skipping catalog row without name",
					zap.String("file", path), zap.Int("row", i+1))
				continue
			}
			entries = append(entries, e)
		}
		return entries, nil
	}

	return nil, faults.Newf(faults.CodeCatalogUnavailable,
		"no catalog available for department %q", department)
}
