package report

import (
	"net/http"
	"time"

	"github.com/pawprint-labs/pawprint/internal/report/normalize"
	"github.com/pawprint-labs/pawprint/internal/report/period"
)

// parseFilters builds the filter configuration from query parameters,
// starting from the defaults. The reference date comes from ref=YYYY-MM-DD
// when present, the server clock otherwise.
func parseFilters(r *http.Request, now func() time.Time) (period.Filters, time.Time) {
	q := r.URL.Query()
	f := period.DefaultFilters()

	if s := q.Get("preset"); s != "" {
		f.Preset = period.Preset(s)
	}

	if s := q.Get("start"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			f.CustomStart = t
			f.Preset = period.PresetCustom
		}
	}

	if s := q.Get("end"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			f.CustomEnd = t
			f.Preset = period.PresetCustom
		}
	}

	if s := q.Get("basis"); s != "" {
		f.TimeBasis = period.Basis(s)
	}

	f.StaffIDs = q["staff"]
	f.Services = q["service"]
	f.Categories = q["category"]
	f.PetSizes = q["petSize"]
	f.Channels = q["channel"]

	for _, s := range q["clientType"] {
		f.ClientTypes = append(f.ClientTypes, normalize.ClientType(s))
	}

	for _, s := range q["status"] {
		f.Statuses = append(f.Statuses, normalize.Status(s))
	}

	for _, s := range q["paymentMethod"] {
		f.PaymentMethods = append(f.PaymentMethods, normalize.PaymentMethod(s))
	}

	if s := q.Get("discounts"); s != "" {
		f.IncludeDiscounts = s != "false"
	}

	if s := q.Get("refunds"); s != "" {
		f.IncludeRefunds = s == "true"
	}

	if s := q.Get("tips"); s != "" {
		f.IncludeTips = s != "false"
	}

	if s := q.Get("taxes"); s != "" {
		f.IncludeTaxes = s != "false"
	}

	if s := q.Get("giftCards"); s != "" {
		f.IncludeGiftCardRedemptions = s == "true"
	}

	ref := now()
	if s := q.Get("ref"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			ref = t
		}
	}

	return f, ref
}
