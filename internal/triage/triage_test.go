package triage

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRouteKnownSymptoms(t *testing.T) {
	assert.Equal(t, "Internal Medicine", Route("fever"))
	assert.Equal(t, "Pulmonology", Route("cough"))
	assert.Equal(t, "Neurology", Route("headache"))
	assert.Equal(t, "Neurology", Route("dizzy"))
	assert.Equal(t, DefaultDepartment, Route("etc"))
}

func TestRouteUnknownSymptomFallsBack(t *testing.T) {
	for _, key := range []string{"", "unknown", "FEVER", "   "} {
		assert.Equal(t, DefaultDepartment, Route(key), "key=%q", key)
	}
}

func TestRouteIsTotalOverSymptomList(t *testing.T) {
	for _, s := range Symptoms {
		assert.NotEmpty(t, Route(s.Key))
	}
}

func TestNewTicketFormat(t *testing.T) {
	now := time.Date(2026, 8, 28, 9, 30, 15, 0, time.UTC)
	rng := rand.New(rand.NewSource(1))

	ticket := NewTicket("Internal Medicine", now, rng)

	assert.Len(t, ticket, 9)
	assert.Equal(t, "I", ticket[:1])
	assert.Equal(t, "093015", ticket[1:7])
}

func TestNewTicketDeterministicGivenDraw(t *testing.T) {
	now := time.Date(2026, 8, 28, 14, 5, 2, 0, time.UTC)

	a := NewTicket("Neurology", now, rand.New(rand.NewSource(7)))
	b := NewTicket("Neurology", now, rand.New(rand.NewSource(7)))

	assert.Equal(t, a, b)
}

func TestNewTicketSuffixIsTwoDigits(t *testing.T) {
	now := time.Now()
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 100; i++ {
		ticket := NewTicket("Dermatology", now, rng)
		suffix := ticket[len(ticket)-2:]
		assert.GreaterOrEqual(t, suffix, "10")
		assert.LessOrEqual(t, suffix, "99")
	}
}

func TestNewTicketEmptyDepartment(t *testing.T) {
	ticket := NewTicket("", time.Now(), rand.New(rand.NewSource(1)))
	assert.Equal(t, "X", ticket[:1])
}
