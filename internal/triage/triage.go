// Package triage routes a selected symptom to a clinic department and issues
// queue tickets for the resulting visit.
package triage

import (
	"math/rand"
	"strconv"
	"time"
)

// Symptom pairs the form key with its display label.
type Symptom struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Symptoms is the fixed list offered at the kiosk, in display order.
var Symptoms = []Symptom{
	{Key: "fever", Label: "Fever / chills"},
	{Key: "cough", Label: "Cough / phlegm"},
	{Key: "soreth", Label: "Sore throat"},
	{Key: "stomach", Label: "Abdominal pain / indigestion"},
	{Key: "diarr", Label: "Diarrhea"},
	{Key: "headache", Label: "Headache"},
	{Key: "dizzy", Label: "Dizziness"},
	{Key: "skin", Label: "Skin rash"},
	{Key: "injury", Label: "Bruise / wound"},
	{Key: "etc", Label: "Other"},
}

// DefaultDepartment receives every symptom the table does not know.
const DefaultDepartment = "Family Medicine"

var symptomToDepartment = map[string]string{
	"fever":    "Internal Medicine",
	"cough":    "Pulmonology",
	"soreth":   "Otolaryngology",
	"stomach":  "Gastroenterology",
	"diarr":    "Infectious Diseases",
	"headache": "Neurology",
	"dizzy":    "Neurology",
	"skin":     "Dermatology",
	"injury":   "General Surgery",
	"etc":      DefaultDepartment,
}

// Route resolves a symptom key to its department. Unknown or empty keys
// resolve to the default department; Route never fails.
func Route(symptomKey string) string {
	if dept, ok := symptomToDepartment[symptomKey]; ok {
		return dept
	}
	return DefaultDepartment
}

// NewTicket issues a queue ticket id: first rune of the department, the time
// to second precision, and a 2-digit random suffix. Unique enough for a
// cosmetic queue display within one day; collisions are tolerated.
func NewTicket(department string, now time.Time, rng *rand.Rand) string {
	code := "X"
	if department != "" {
		code = string([]rune(department)[0])
	}
	return code + now.Format("150405") + strconv.Itoa(10+rng.Intn(90))
}
