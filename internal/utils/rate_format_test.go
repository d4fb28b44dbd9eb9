package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRoundRate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0.9123456", "0.912346"},
		{"30.1", "30.1"},
		{"0.0000004", "0"},
		{"1234.5678915", "1234.567892"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, RoundRate(decimal.RequireFromString(tt.in)).String())
		})
	}
}
