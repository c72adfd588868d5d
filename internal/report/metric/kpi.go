package metric

import "math"

// Format tells the presentation layer how to render a metric value.
type Format string

const (
	FormatMoney   Format = "money" // integer cents
	FormatPercent Format = "percent"
	FormatNumber  Format = "number"
	FormatMinutes Format = "minutes"
	FormatDays    Format = "days"
)

// KPIValue pairs a metric's current and previous period values with the
// period-over-period movement.
type KPIValue struct {
	Current      float64
	Previous     float64
	Delta        float64
	DeltaPercent float64
	Format       Format
}

// WithDelta builds a KPIValue from current and previous scalars.
//
// A zero previous value cannot produce a percentage: when current is also
// zero the delta percent is 0, otherwise it is the ±Inf sentinel and callers
// must render it as "new" rather than a number.
func WithDelta(current, previous float64, format Format) KPIValue {
	v := KPIValue{
		Current:  current,
		Previous: previous,
		Delta:    current - previous,
		Format:   format,
	}

	switch {
	case previous != 0:
		v.DeltaPercent = v.Delta / previous * 100
	case current > 0:
		v.DeltaPercent = math.Inf(1)
	case current < 0:
		v.DeltaPercent = math.Inf(-1)
	default:
		v.DeltaPercent = 0
	}

	return v
}

// NewFromZero reports whether the delta percent is the zero-previous sentinel.
func (v KPIValue) NewFromZero() bool {
	return math.IsInf(v.DeltaPercent, 0)
}
