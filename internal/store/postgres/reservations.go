// Package postgres implements the record-store readers over pgx for clinics
// that provision reservations and fee tables in a database instead of CSV
// files. The readers stay read-only, matching the CSV stores.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/nulbom/go-kiosk/internal/records"
)

// Reservations reads the scheduled-visit table.
type Reservations struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewReservations creates a reservation reader.
func NewReservations(pool *pgxpool.Pool, logger *zap.Logger) *Reservations {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reservations{pool: pool, logger: logger}
}

const reservationColumns = `name, resident_id, department, ticket, status, prescriptions, total_fee`

func scanReservation(row pgx.Row) (*records.Reservation, error) {
	var rec records.Reservation
	var prescriptions string
	var totalFee string
	err := row.Scan(&rec.Name, &rec.ResidentID, &rec.Department,
		&rec.Ticket, &rec.Status, &prescriptions, &totalFee)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan reservation: %w", err)
	}
	rec.PrescriptionNames = records.SplitNames(prescriptions)
	rec.TotalFee = records.ParseFeeOrZero(totalFee)
	return &rec, nil
}

// FindByIdentity returns the reservation matching both name and resident id,
// or nil when no row matches.
func (s *Reservations) FindByIdentity(ctx context.Context, name, residentID string) (*records.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
		FROM reservations
		WHERE name = $1 AND resident_id = $2
		LIMIT 1`
	return scanReservation(s.pool.QueryRow(ctx, query, name, residentID))
}

// FindByResidentID returns the first reservation for the resident id, or nil
// when none exists.
func (s *Reservations) FindByResidentID(ctx context.Context, residentID string) (*records.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
		FROM reservations
		WHERE resident_id = $1
		LIMIT 1`
	return scanReservation(s.pool.QueryRow(ctx, query, residentID))
}

// SampleRandom draws a random reservation for the scan simulation, nil when
// the table is empty. The draw happens in SQL; rng is unused here but kept
// for interface parity with the CSV store.
func (s *Reservations) SampleRandom(ctx context.Context, _ *rand.Rand) (*records.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
		FROM reservations
		ORDER BY random()
		LIMIT 1`
	return scanReservation(s.pool.QueryRow(ctx, query))
}
