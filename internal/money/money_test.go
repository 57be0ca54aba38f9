package money

import (
	"encoding/json"
	"testing"
)

func TestRound(t *testing.T) {
	tests := []struct {
		value float64
		want  float64
	}{
		{21.95, 21.95},
		{22.0, 22.0},
		{12.950000762939453, 12.95},
		{10.005, 10.01},
		{3.3333333333, 3.33},
		{0, 0},
	}
	for _, tt := range tests {
		if got := Round(tt.value); got != tt.want {
			t.Errorf("Round(%v) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestRoundIn(t *testing.T) {
	tests := []struct {
		value    float64
		currency string
		want     float64
	}{
		{12.345, "USD", 12.35},
		{12.345, "", 12.35},
		{12.4, "JPY", 12},
		{12.3456, "KWD", 12.346},
		{12.345, "NOPE", 12.35},
	}
	for _, tt := range tests {
		if got := RoundIn(tt.value, tt.currency); got != tt.want {
			t.Errorf("RoundIn(%v, %q) = %v, want %v", tt.value, tt.currency, got, tt.want)
		}
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		a, b float64
		want bool
	}{
		{10.00, 10.00, true},
		{10.00, 10.005, true},
		{10.00, 10.01, false},
		{10.00, 9.991, true},
		{0, 0.02, false},
	}
	for _, tt := range tests {
		if got := Equal(tt.a, tt.b); got != tt.want {
			t.Errorf("Equal(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestAmountMarshalJSON(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{21.95, "21.95"},
		{22.0, "22.00"},
		{18.0, "18.00"},
	}
	for _, tt := range tests {
		a := NewAmount(tt.value, "USD")
		b, err := json.Marshal(a)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		if got := string(b); got != tt.want {
			t.Errorf("Marshal(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}
