package csvstore

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/nulbom/go-kiosk/internal/records"
)

// Reservation table columns.
const (
	colName          = "Name"
	colResidentID    = "ResidentID"
	colDepartment    = "Department"
	colTicket        = "Ticket"
	colStatus        = "Status"
	colPrescriptions = "Prescriptions"
	colTotalFee      = "TotalFee"
)

// Reservations reads the scheduled-visit table from reservations.csv.
type Reservations struct {
	path   string
	logger *zap.Logger
}

// NewReservations creates a reservation reader rooted at dataDir.
func NewReservations(dataDir string, logger *zap.Logger) *Reservations {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reservations{
		path:   filepath.Join(dataDir, "reservations.csv"),
		logger: logger,
	}
}

// load parses the table into typed records. Rows missing the identity join key
// are flagged and skipped; a malformed total fee defaults to zero rather than
// rejecting the row.
func (s *Reservations) load() ([]records.Reservation, error) {
	t, err := readTable(s.path)
	if err != nil {
		return nil, fmt.Errorf("load reservations: %w", err)
	}

	out := make([]records.Reservation, 0, len(t.rows))
	for i, row := range t.rows {
		rec := records.Reservation{
			Name:              t.cell(row, colName),
			ResidentID:        t.cell(row, colResidentID),
			Department:        t.cell(row, colDepartment),
			Ticket:            t.cell(row, colTicket),
			Status:            t.cell(row, colStatus),
			PrescriptionNames: records.SplitNames(t.cell(row, colPrescriptions)),
			TotalFee:          records.ParseFeeOrZero(t.cell(row, colTotalFee)),
		}
		if rec.Name == "" || rec.ResidentID == "" {
			s.logger.Warn("skipping reservation row without identity",
				zap.Int("row", i+1))
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// FindByIdentity returns the reservation matching both name and resident id,
// or nil when no row matches.
func (s *Reservations) FindByIdentity(_ context.Context, name, residentID string) (*records.Reservation, error) {
	all, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].Name == name && all[i].ResidentID == residentID {
			return &all[i], nil
		}
	}
	return nil, nil
}

// FindByResidentID returns the first reservation for the resident id, or nil
// when none exists.
func (s *Reservations) FindByResidentID(_ context.Context, residentID string) (*records.Reservation, error) {
	all, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ResidentID == residentID {
			return &all[i], nil
		}
	}
	return nil, nil
}

// SampleRandom draws a uniformly random reservation, nil when the table is
// empty. The draw backs the scan simulation.
func (s *Reservations) SampleRandom(_ context.Context, rng *rand.Rand) (*records.Reservation, error) {
	all, err := s.load()
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, nil
	}
	return &all[rng.Intn(len(all))], nil
}

// Available reports whether the backing file exists.
func (s *Reservations) Available() bool {
	_, err := os.Stat(s.path)
	return err == nil
}
