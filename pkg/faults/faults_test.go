package faults

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeValidation, CodeOf(New(CodeValidation, "bad input")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))

	wrapped := fmt.Errorf("outer: %w", New(CodeSequence, "out of order"))
	assert.Equal(t, CodeSequence, CodeOf(wrapped))
}

func TestIs(t *testing.T) {
	err := Wrap(CodeCatalogUnavailable, "read catalog", errors.New("io error"))
	assert.True(t, Is(err, CodeCatalogUnavailable))
	assert.False(t, Is(err, CodeValidation))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(CodeInternal, "something broke", cause)
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "root cause")
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeMalformedFee, http.StatusBadRequest},
		{CodeSequence, http.StatusConflict},
		{CodePatientNotFound, http.StatusNotFound},
		{CodeNoMatchingDepartment, http.StatusNotFound},
		{CodeNoDataFile, http.StatusServiceUnavailable},
		{CodeCatalogUnavailable, http.StatusServiceUnavailable},
		{CodeAssistantUnavailable, http.StatusBadGateway},
		{CodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(New(tt.code, "x")), string(tt.code))
	}

	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("untyped")))
}
