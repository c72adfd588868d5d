package pawsoft

// Profile describes the column layout of one PawSoft export format. The
// desktop product and the cloud product name their columns differently and
// use different date formats; adding support for a new format is just
// adding a Profile to the relevant slice.
type Profile struct {
	Name       string
	DateLayout string

	IDCol      string
	ClientCol  string
	PetCol     string
	GroomerCol string
	DateCol    string

	// Appointment exports only.
	StartCol      string
	EndCol        string
	ServiceCol    string
	CategoryCol   string
	PriceCol      string
	PetSizeCol    string
	DurationCol   string
	StatusCol     string
	ChannelCol    string
	TipCol        string
	TipMethodCol  string
	ReminderCol   string
	CreatedCol    string
	CheckedOutCol string

	// Sales exports only.
	ApptCol     string
	SubtotalCol string
	DiscountCol string
	TaxCol      string
	TotalCol    string
	RefundCol   string
	MethodCol   string
	TypeCol     string
}

// requiredCols returns the columns that must be present for the profile
// to match a header row. Optional columns (tips, reminders, refunds) are
// left out so older exports still match.
func (p Profile) requiredCols() []string {
	cols := []string{p.DateCol}

	if p.ServiceCol != "" {
		cols = append(cols, p.ServiceCol, p.PriceCol, p.StatusCol)
	}

	if p.TotalCol != "" {
		cols = append(cols, p.TotalCol, p.MethodCol)
	}

	return cols
}

// appointmentProfiles is the ordered list of appointment export formats to
// try during auto-detection. More specific profiles come first.
var appointmentProfiles = []Profile{
	{
		Name:          "cloud",
		DateLayout:    "2006-01-02",
		IDCol:         "appointment_id",
		ClientCol:     "client_id",
		PetCol:        "pet_id",
		GroomerCol:    "groomer_id",
		DateCol:       "date",
		StartCol:      "start_time",
		EndCol:        "end_time",
		ServiceCol:    "service_name",
		CategoryCol:   "service_category",
		PriceCol:      "price",
		PetSizeCol:    "pet_size",
		DurationCol:   "duration_min",
		StatusCol:     "status",
		ChannelCol:    "channel",
		TipCol:        "tip_amount",
		TipMethodCol:  "tip_method",
		ReminderCol:   "reminder_sent",
		CreatedCol:    "created_at",
		CheckedOutCol: "checked_out_at",
	},
	{
		Name:          "desktop",
		DateLayout:    "02-01-2006",
		IDCol:         "Appt No.",
		ClientCol:     "Client",
		PetCol:        "Pet",
		GroomerCol:    "Groomer",
		DateCol:       "Appt Date",
		StartCol:      "Start",
		EndCol:        "End",
		ServiceCol:    "Service",
		CategoryCol:   "Category",
		PriceCol:      "Price",
		PetSizeCol:    "Size",
		DurationCol:   "Mins",
		StatusCol:     "Status",
		ChannelCol:    "Booked Via",
		TipCol:        "Tip",
		TipMethodCol:  "Tip Via",
		ReminderCol:   "Reminder",
		CreatedCol:    "Booked On",
		CheckedOutCol: "Checked Out",
	},
}

// salesProfiles is the ordered list of sales export formats.
var salesProfiles = []Profile{
	{
		Name:        "cloud",
		DateLayout:  "2006-01-02",
		IDCol:       "transaction_id",
		ClientCol:   "client_id",
		ApptCol:     "appointment_id",
		DateCol:     "date",
		SubtotalCol: "subtotal",
		DiscountCol: "discount",
		TaxCol:      "tax",
		TipCol:      "tip",
		TotalCol:    "total",
		RefundCol:   "refund",
		MethodCol:   "payment_method",
		StatusCol:   "status",
		TypeCol:     "type",
	},
	{
		Name:        "desktop",
		DateLayout:  "02-01-2006",
		IDCol:       "Receipt No.",
		ClientCol:   "Client",
		ApptCol:     "Appt No.",
		DateCol:     "Sale Date",
		SubtotalCol: "Subtotal",
		DiscountCol: "Discount",
		TaxCol:      "Tax",
		TipCol:      "Tip",
		TotalCol:    "Total",
		RefundCol:   "Refunded",
		MethodCol:   "Paid By",
		StatusCol:   "Status",
		TypeCol:     "Type",
	},
}
