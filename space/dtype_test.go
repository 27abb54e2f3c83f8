package space

import (
	"math"
	"testing"
)

func TestPromote(t *testing.T) {
	tests := []struct {
		a, b, want DType
	}{
		{Int8, Int8, Int8},
		{Int8, Int32, Int32},
		{Uint8, Uint32, Uint32},
		{Uint8, Int8, Int16},
		{Uint16, Int8, Int32},
		{Uint32, Int64, Int64},
		{Uint64, Int8, Float64},
		{Float32, Float64, Float64},
		{Float32, Uint8, Float32},
		{Float32, Int16, Float32},
		{Float32, Int32, Float64},
		{Float32, Int64, Float64},
		{Float64, Uint64, Float64},
	}
	for _, tt := range tests {
		if got := Promote(tt.a, tt.b); got != tt.want {
			t.Errorf("Promote(%s, %s) = %s, want %s", tt.a, tt.b, got, tt.want)
		}
		if got := Promote(tt.b, tt.a); got != tt.want {
			t.Errorf("Promote(%s, %s) = %s, want %s (reversed)", tt.b, tt.a, got, tt.want)
		}
	}
}

func TestCast(t *testing.T) {
	tests := []struct {
		d    DType
		in   float64
		want float64
	}{
		{Int8, 200, 127},
		{Int8, -3.7, -3},
		{Uint8, -1, 0},
		{Uint16, 65535.9, 65535},
		{Int64, math.NaN(), 0},
		{Float32, 0.1, float64(float32(0.1))},
		{Float64, 0.1, 0.1},
	}
	for _, tt := range tests {
		if got := tt.d.Cast(tt.in); got != tt.want {
			t.Errorf("%s.Cast(%v) = %v, want %v", tt.d, tt.in, got, tt.want)
		}
	}
}

func TestParseDType(t *testing.T) {
	for d := Int8; d <= Float64; d++ {
		got, err := ParseDType(d.String())
		if err != nil || got != d {
			t.Errorf("ParseDType(%q) = %v, %v", d.String(), got, err)
		}
	}
	if _, err := ParseDType("bfloat16"); err == nil {
		t.Error("ParseDType(bfloat16) succeeded, want error")
	}
}
