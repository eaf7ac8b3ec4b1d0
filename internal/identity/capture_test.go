package identity

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nulbom/go-kiosk/internal/records"
)

type fakeSampler struct {
	records []records.Reservation
	err     error
}

func (f *fakeSampler) SampleRandom(_ context.Context, rng *rand.Rand) (*records.Reservation, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.records) == 0 {
		return nil, nil
	}
	return &f.records[rng.Intn(len(f.records))], nil
}

func TestScanDrawsFromStore(t *testing.T) {
	sampler := &fakeSampler{records: []records.Reservation{{
		Name:       "Lee Seoyeon",
		ResidentID: "920202-2345678",
	}}}
	s := NewStoreSampler(sampler, rand.New(rand.NewSource(1)), nil)

	id, err := s.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, records.Identity{Name: "Lee Seoyeon", ResidentID: "920202-2345678"}, id)
}

func TestScanEmptyStoreUsesStandIn(t *testing.T) {
	s := NewStoreSampler(&fakeSampler{}, rand.New(rand.NewSource(1)), nil)

	id, err := s.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, standIn, id)
}

func TestScanStoreErrorUsesStandIn(t *testing.T) {
	sampler := &fakeSampler{err: errors.New("file missing")}
	s := NewStoreSampler(sampler, rand.New(rand.NewSource(1)), nil)

	id, err := s.Scan(context.Background())
	require.NoError(t, err, "scan itself never fails")
	assert.Equal(t, standIn, id)
}
