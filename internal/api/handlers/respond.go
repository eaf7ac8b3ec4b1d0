// Package handlers provides the HTTP handlers for the kiosk API. Each stage
// returns a small JSON structure (state tag + payload) that the presentation
// layer renders into a page.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/nulbom/go-kiosk/pkg/faults"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeFault maps a workflow error onto its HTTP status via the fault
// taxonomy and returns it as {"error", "code"}.
func writeFault(w http.ResponseWriter, err error) {
	writeJSON(w, faults.HTTPStatus(err), map[string]string{
		"error": err.Error(),
		"code":  string(faults.CodeOf(err)),
	})
}
