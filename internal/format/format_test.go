package format

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1.0K"},
		{1260, "1.3K"},
		{45_600, "45.6K"},
		{1_000_000, "1.0M"},
		{3_400_000, "3.4M"},
		{5_600_000_000, "5.6B"},
		{12.5, "12.5"},
		{math.NaN(), NotAvailable},
		{math.Inf(1), NotAvailable},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Number(tt.in))
		})
	}
}

func TestCount(t *testing.T) {
	assert.Equal(t, "2.5M", Count(2_500_000))
	assert.Equal(t, "42", Count(42))
}

func TestMetric(t *testing.T) {
	assert.Equal(t, "3.14", Metric(math.Pi, 2))
	assert.Equal(t, "3", Metric(3.0, 0))
	assert.Equal(t, NotAvailable, Metric(math.NaN(), 2))
	assert.Equal(t, NotAvailable, Metric(math.Inf(-1), 2))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "5.25%", Percent(5.25, 2))
	assert.Equal(t, "0.0%", Percent(0, 1))
	assert.Equal(t, NotAvailable, Percent(math.Inf(1), 2))
}

func TestOptionalMetric(t *testing.T) {
	v := 1.5
	assert.Equal(t, "1.50", OptionalMetric(&v, 2))
	assert.Equal(t, NotAvailable, OptionalMetric(nil, 2))
}
