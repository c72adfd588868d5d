package view

import (
	"context"
	"fmt"
	"time"

	"github.com/pawprint-labs/pawprint/internal/report/metric"
)

const loadTimeout = 10 * time.Second

// FormatMetric renders a metric value according to its declared format.
// Money values arrive as cents.
func FormatMetric(value float64, format metric.Format) string {
	switch format {
	case metric.FormatMoney:
		return fmt.Sprintf("$%.2f", value/100.0)
	case metric.FormatPercent:
		return fmt.Sprintf("%.1f%%", value)
	case metric.FormatMinutes:
		return fmt.Sprintf("%.0f min", value)
	case metric.FormatDays:
		return fmt.Sprintf("%.1f days", value)
	default:
		return fmt.Sprintf("%.0f", value)
	}
}

// FormatDelta renders a KPI's period-over-period movement, using "new"
// when there was no previous value to compare against.
func FormatDelta(v metric.KPIValue) string {
	if v.NewFromZero() {
		return "new"
	}

	return fmt.Sprintf("%+.1f%%", v.DeltaPercent)
}

// FormatDate formats a time.Time into YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// LoadCtx returns a context with a standard timeout for report loads.
func LoadCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), loadTimeout)
}
