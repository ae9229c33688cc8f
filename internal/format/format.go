// Package format renders metric values for display.
package format

import (
	"strconv"

	"github.com/ad-tracker/youtube-channel-analytics-go/internal/metrics"
)

// NotAvailable is shown in place of NaN and infinite values.
const NotAvailable = "N/A"

var suffixes = []struct {
	threshold float64
	suffix    string
}{
	{1e9, "B"},
	{1e6, "M"},
	{1e3, "K"},
}

// Number abbreviates large counts with one decimal and a K, M or B suffix.
// Values below 1000 are printed as is.
func Number(n float64) string {
	if !metrics.IsFinite(n) {
		return NotAvailable
	}
	for _, s := range suffixes {
		if n >= s.threshold {
			return strconv.FormatFloat(n/s.threshold, 'f', 1, 64) + s.suffix
		}
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// Count is Number for integer statistics.
func Count(n int64) string {
	return Number(float64(n))
}

// Metric prints x with the given number of decimals.
func Metric(x float64, digits int) string {
	if !metrics.IsFinite(x) {
		return NotAvailable
	}
	return strconv.FormatFloat(x, 'f', digits, 64)
}

// Percent prints a value that is already scaled to percent.
func Percent(x float64, digits int) string {
	if !metrics.IsFinite(x) {
		return NotAvailable
	}
	return strconv.FormatFloat(x, 'f', digits, 64) + "%"
}

// OptionalMetric is Metric for a possibly absent value.
func OptionalMetric(x *float64, digits int) string {
	if x == nil {
		return NotAvailable
	}
	return Metric(*x, digits)
}
