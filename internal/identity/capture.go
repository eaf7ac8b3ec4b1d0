// Package identity isolates how a patient identity enters the kiosk. The only
// implementation today simulates a resident-card scan by sampling the
// reservation store; a real scanner integration replaces Capture without
// touching the visit workflow.
package identity

import (
	"context"
	"math/rand"

	"go.uber.org/zap"

	"github.com/nulbom/go-kiosk/internal/records"
)

// Capture produces a patient identity from whatever hardware or simulation
// backs the kiosk.
type Capture interface {
	Scan(ctx context.Context) (records.Identity, error)
}

// Sampler is the slice of the reservation store the scan simulation needs.
type Sampler interface {
	SampleRandom(ctx context.Context, rng *rand.Rand) (*records.Reservation, error)
}

// standIn is returned when the reservation store is empty or unreadable so
// the demo flow keeps working without hardware or data.
var standIn = records.Identity{Name: "Kim Minjun", ResidentID: "900101-1234567"}

// StoreSampler simulates a card scan by drawing a random reservation row.
type StoreSampler struct {
	store  Sampler
	rng    *rand.Rand
	logger *zap.Logger
}

// NewStoreSampler creates the scan simulation. rng is injectable so tests can
// pin the draw.
func NewStoreSampler(store Sampler, rng *rand.Rand, logger *zap.Logger) *StoreSampler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StoreSampler{store: store, rng: rng, logger: logger}
}

// Scan draws an identity from the store, degrading to the fixed stand-in when
// the store is empty or unavailable. Scan itself never fails.
func (s *StoreSampler) Scan(ctx context.Context) (records.Identity, error) {
	rec, err := s.store.SampleRandom(ctx, s.rng)
	if err != nil {
		s.logger.Warn("reservation store unavailable for scan, using stand-in",
			zap.Error(err))
		return standIn, nil
	}
	if rec == nil {
		s.logger.Warn("reservation store empty, using stand-in identity")
		return standIn, nil
	}
	return rec.Identity(), nil
}
