// Package records defines the typed rows shared by the record stores and the
// workflow stages, plus the small parsing helpers the stores use to validate
// raw cells at load time.
package records

import (
	"strconv"
	"strings"
)

// Identity is the patient identity captured once per visit. It is the join key
// for every downstream lookup and immutable for the session.
type Identity struct {
	Name       string `json:"name"`
	ResidentID string `json:"resident_id"`
}

// Blank reports whether either identity field is empty after trimming.
func (id Identity) Blank() bool {
	return strings.TrimSpace(id.Name) == "" || strings.TrimSpace(id.ResidentID) == ""
}

// Reservation is one scheduled visit. Read-only for the workflow; it is the
// authoritative source of what was prescribed and billed.
type Reservation struct {
	Name              string   `json:"name"`
	ResidentID        string   `json:"resident_id"`
	Department        string   `json:"department"`
	Ticket            string   `json:"ticket"`
	Status            string   `json:"status"`
	PrescriptionNames []string `json:"prescription_names"`
	TotalFee          int      `json:"total_fee"`
}

// Identity returns the reservation's join key.
func (r Reservation) Identity() Identity {
	return Identity{Name: r.Name, ResidentID: r.ResidentID}
}

// FeeRow is one billable prescription in a department's fee table.
type FeeRow struct {
	Department   string `json:"department"`
	Prescription string `json:"prescription"`
	Fee          int    `json:"fee"`
}

// CatalogEntry is the dosing metadata for a prescription name.
type CatalogEntry struct {
	Name           string `json:"name"`
	Code           string `json:"code"`
	UnitDose       string `json:"unit_dose"`
	DailyFrequency string `json:"daily_frequency"`
	TotalDays      string `json:"total_days"`
}

// PlaceholderValue fills catalog fields when a billed name has no metadata row.
const PlaceholderValue = "N/A"

// PlaceholderEntry substitutes for a billed prescription with no catalog row.
// The assembler never drops a billed item for missing metadata.
func PlaceholderEntry(name string) CatalogEntry {
	return CatalogEntry{
		Name:           name,
		Code:           PlaceholderValue,
		UnitDose:       PlaceholderValue,
		DailyFrequency: PlaceholderValue,
		TotalDays:      PlaceholderValue,
	}
}

// SplitNames parses a comma-joined prescription name list: entries are
// trimmed and empties dropped. An empty cell yields an empty list, not nil
// row rejection.
func SplitNames(cell string) []string {
	parts := strings.Split(cell, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if name := strings.TrimSpace(p); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// ParseFeeOrZero parses an integer fee cell, defaulting to zero on malformed
// input. One bad fee field never aborts a whole record.
func ParseFeeOrZero(cell string) int {
	fee, err := strconv.Atoi(strings.TrimSpace(cell))
	if err != nil {
		return 0
	}
	return fee
}
