package validation

import (
	"math"
	"testing"

	"github.com/mmeshcher/waterwise-system/internal/model"
)

func TestIsValidAmount(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		valid  bool
	}{
		{
			name:   "glass of water",
			amount: 200,
			valid:  true,
		},
		{
			name:   "fractional amount",
			amount: 0.5,
			valid:  true,
		},
		{
			name:   "zero",
			amount: 0,
			valid:  false,
		},
		{
			name:   "negative",
			amount: -5,
			valid:  false,
		},
		{
			name:   "NaN",
			amount: math.NaN(),
			valid:  false,
		},
		{
			name:   "positive infinity",
			amount: math.Inf(1),
			valid:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsValidAmount(tt.amount)
			if got != tt.valid {
				t.Fatalf("IsValidAmount(%v) = %v, want %v", tt.amount, got, tt.valid)
			}
		})
	}
}

func TestValidatePolicy(t *testing.T) {
	tests := []struct {
		name     string
		interval int
		valid    bool
	}{
		{
			name:     "two hours",
			interval: 120,
			valid:    true,
		},
		{
			name:     "lower bound",
			interval: 15,
			valid:    true,
		},
		{
			name:     "upper bound",
			interval: 480,
			valid:    true,
		},
		{
			name:     "below lower bound",
			interval: 14,
			valid:    false,
		},
		{
			name:     "above upper bound",
			interval: 481,
			valid:    false,
		},
		{
			name:     "zero interval",
			interval: 0,
			valid:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := model.DefaultPolicy()
			p.IntervalMinutes = tt.interval

			got := ValidatePolicy(p)
			if got != tt.valid {
				t.Fatalf("ValidatePolicy(interval=%d) = %v, want %v", tt.interval, got, tt.valid)
			}
		})
	}
}

func TestValidateProfile(t *testing.T) {
	valid := model.UserProfile{WeightKg: 70, HeightCm: 170, AgeYears: 25}
	if !ValidateProfile(valid) {
		t.Fatalf("expected profile %+v to be valid", valid)
	}

	noWeight := valid
	noWeight.WeightKg = 0
	if ValidateProfile(noWeight) {
		t.Fatalf("expected profile without weight to be invalid")
	}

	negativeAge := valid
	negativeAge.AgeYears = -1
	if ValidateProfile(negativeAge) {
		t.Fatalf("expected profile with negative age to be invalid")
	}
}
