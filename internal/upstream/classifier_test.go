package upstream

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyTransportError(t *testing.T) {
	result := Classify(0, nil, errors.New("dial tcp: connection refused"))
	assert.Equal(t, KindNetwork, result.Kind)
	assert.Contains(t, result.Message, "connection refused")
}

func TestClassifyByStatus(t *testing.T) {
	tests := []struct {
		status int
		kind   Kind
	}{
		{http.StatusUnauthorized, KindAuth},
		{http.StatusForbidden, KindAuth},
		{http.StatusBadRequest, KindValidation},
		{http.StatusUnprocessableEntity, KindValidation},
		{http.StatusNotFound, KindNotFound},
		{http.StatusInternalServerError, KindServer},
		{http.StatusBadGateway, KindServer},
		{http.StatusTeapot, KindUnknown},
	}

	for _, tt := range tests {
		result := Classify(tt.status, nil, nil)
		assert.Equal(t, tt.kind, result.Kind, "status %d", tt.status)
		assert.NotEmpty(t, result.Message)
	}
}

func TestClassifyExtractsJSONError(t *testing.T) {
	body := []byte(`{"error": "Sala este deja ocupată"}`)

	result := Classify(http.StatusBadRequest, body, nil)
	assert.Equal(t, KindValidation, result.Kind)
	assert.Equal(t, "Sala este deja ocupată", result.Message)
}

func TestClassifyExtractsAlternateKeys(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"message key", `{"message": "token expired"}`, "token expired"},
		{"msg key", `{"msg": "not allowed"}`, "not allowed"},
		{"detail key", `{"detail": "unknown faculty"}`, "unknown faculty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Classify(http.StatusUnauthorized, []byte(tt.body), nil)
			assert.Equal(t, tt.want, result.Message)
		})
	}
}

func TestClassifyFindsJSONInsideText(t *testing.T) {
	body := []byte(`upstream proxy says: {"error": "service restarting"} - retry later`)

	result := Classify(http.StatusServiceUnavailable, body, nil)
	assert.Equal(t, KindServer, result.Kind)
	assert.Equal(t, "service restarting", result.Message)
}

func TestClassifyPlainTextBody(t *testing.T) {
	result := Classify(http.StatusBadRequest, []byte("invalid faculty id"), nil)
	assert.Equal(t, KindValidation, result.Kind)
	assert.Equal(t, "invalid faculty id", result.Message)
}

func TestClassifyUnparseableBodyFallsBack(t *testing.T) {
	body := []byte("<html><body><h1>502 Bad Gateway</h1></body></html>")

	result := Classify(http.StatusBadGateway, body, nil)
	assert.Equal(t, KindServer, result.Kind)
	assert.Contains(t, result.Message, "502")
}

func TestClassifyOverlongBodyFallsBack(t *testing.T) {
	body := make([]byte, 4096)
	for i := range body {
		body[i] = 'x'
	}

	result := Classify(http.StatusInternalServerError, body, nil)
	assert.Equal(t, KindServer, result.Kind)
	assert.Contains(t, result.Message, "status 500")
}

func TestClassifyEmptyJSONValues(t *testing.T) {
	result := Classify(http.StatusBadRequest, []byte(`{"error": ""}`), nil)
	assert.Equal(t, KindValidation, result.Kind)
	assert.Equal(t, "upstream rejected the request data", result.Message)
}
