package api

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewHTTPError_DetailExtraction(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"message field", 404, `{"message":"client not found"}`, "[404] client not found"},
		{"detail field", 422, `{"detail":"name is required"}`, "[422] name is required"},
		{"error field", 409, `{"error":"slot already booked"}`, "[409] slot already booked"},
		{"message wins over detail", 400, `{"message":"m","detail":"d"}`, "[400] m"},
		{"empty body falls back to status text", 500, ``, "[500] Internal Server Error"},
		{"non-JSON body falls back to status text", 502, `<html>bad gateway</html>`, "[502] Bad Gateway"},
		{"unknown status code", 599, `{}`, "[599] unknown error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newHTTPError(tt.status, []byte(tt.body))
			assert.Equal(t, tt.want, err.Error())
			assert.Equal(t, tt.status, err.Status)
		})
	}
}

func TestNetworkError_NamesBaseURL(t *testing.T) {
	inner := errors.New("connection refused")
	err := &NetworkError{BaseURL: "http://salon.example/api", Err: inner}

	assert.Contains(t, err.Error(), "http://salon.example/api")
	assert.ErrorIs(t, err, inner)
}
