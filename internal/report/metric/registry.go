package metric

// DrillRowType names the kind of row-level record a drill on a metric yields.
type DrillRowType string

const (
	RowAppointment DrillRowType = "appointment"
	RowTransaction DrillRowType = "transaction"
	RowClient      DrillRowType = "client"
	RowStaff       DrillRowType = "staff"
	RowInventory   DrillRowType = "inventory"
	RowMessage     DrillRowType = "message"
)

// Definition is a registry entry: documentation and drill-type validation
// data for one metric. The registry carries no logic; it is consulted by
// the definitions surface and by drill-compatibility checks.
type Definition struct {
	ID                 string         `json:"id"`
	Label              string         `json:"label"`
	Definition         string         `json:"definition"`
	Formula            string         `json:"formula"`
	Format             Format         `json:"format"`
	DrillRowTypes      []DrillRowType `json:"drillRowTypes"`
	TimeBasisSensitive bool           `json:"timeBasisSensitive"`
}

// Registry is the static metric catalog, keyed by metric id.
var Registry = map[string]Definition{
	"appointments": {
		ID:                 "appointments",
		Label:              "Appointments",
		Definition:         "Number of appointments in the period, any status.",
		Formula:            "count(appointments)",
		Format:             FormatNumber,
		DrillRowTypes:      []DrillRowType{RowAppointment},
		TimeBasisSensitive: true,
	},
	"completedAppointments": {
		ID:                 "completedAppointments",
		Label:              "Completed",
		Definition:         "Appointments that finished with a checked-out visit.",
		Formula:            "count(status = completed)",
		Format:             FormatNumber,
		DrillRowTypes:      []DrillRowType{RowAppointment},
		TimeBasisSensitive: true,
	},
	"totalSales": {
		ID:                 "totalSales",
		Label:              "Total Sales",
		Definition:         "Gross revenue of completed visits including tax and tip.",
		Formula:            "sum(total) over completed",
		Format:             FormatMoney,
		DrillRowTypes:      []DrillRowType{RowAppointment, RowTransaction},
		TimeBasisSensitive: true,
	},
	"netSales": {
		ID:                 "netSales",
		Label:              "Net Sales",
		Definition:         "Service revenue after discounts, before tax and tip.",
		Formula:            "sum(subtotal − discount) over completed",
		Format:             FormatMoney,
		DrillRowTypes:      []DrillRowType{RowAppointment, RowTransaction},
		TimeBasisSensitive: true,
	},
	"averageTicket": {
		ID:                 "averageTicket",
		Label:              "Average Ticket",
		Definition:         "Net sales per completed visit.",
		Formula:            "netSales / completedAppointments",
		Format:             FormatMoney,
		DrillRowTypes:      []DrillRowType{RowAppointment},
		TimeBasisSensitive: true,
	},
	"discounts": {
		ID:                 "discounts",
		Label:              "Discounts",
		Definition:         "Discount value given on completed visits.",
		Formula:            "sum(discount) over completed",
		Format:             FormatMoney,
		DrillRowTypes:      []DrillRowType{RowAppointment, RowTransaction},
		TimeBasisSensitive: true,
	},
	"tips": {
		ID:                 "tips",
		Label:              "Tips",
		Definition:         "Tips collected on completed visits.",
		Formula:            "sum(tip) over completed",
		Format:             FormatMoney,
		DrillRowTypes:      []DrillRowType{RowAppointment, RowTransaction},
		TimeBasisSensitive: true,
	},
	"noShowCount": {
		ID:                 "noShowCount",
		Label:              "No-Shows",
		Definition:         "Appointments where the client never arrived.",
		Formula:            "count(status = no-show)",
		Format:             FormatNumber,
		DrillRowTypes:      []DrillRowType{RowAppointment},
		TimeBasisSensitive: true,
	},
	"noShowRate": {
		ID:                 "noShowRate",
		Label:              "No-Show Rate",
		Definition:         "No-shows as a share of concluded appointments.",
		Formula:            "noShowCount / concluded × 100",
		Format:             FormatPercent,
		DrillRowTypes:      []DrillRowType{RowAppointment},
		TimeBasisSensitive: true,
	},
	"lateCancelRate": {
		ID:                 "lateCancelRate",
		Label:              "Late-Cancel Rate",
		Definition:         "Late cancellations as a share of concluded appointments.",
		Formula:            "lateCancels / concluded × 100",
		Format:             FormatPercent,
		DrillRowTypes:      []DrillRowType{RowAppointment},
		TimeBasisSensitive: true,
	},
	"rebookRate24h": {
		ID:                 "rebookRate24h",
		Label:              "Rebook (24h)",
		Definition:         "Completed visits where the client booked again within 24 hours.",
		Formula:            "rebooked24h / completed × 100",
		Format:             FormatPercent,
		DrillRowTypes:      []DrillRowType{RowAppointment, RowClient},
		TimeBasisSensitive: true,
	},
	"rebookRate7d": {
		ID:                 "rebookRate7d",
		Label:              "Rebook (7d)",
		Definition:         "Completed visits where the client booked again within 7 days.",
		Formula:            "rebooked7d / completed × 100",
		Format:             FormatPercent,
		DrillRowTypes:      []DrillRowType{RowAppointment, RowClient},
		TimeBasisSensitive: true,
	},
	"rebookRate30d": {
		ID:                 "rebookRate30d",
		Label:              "Rebook (30d)",
		Definition:         "Completed visits where the client booked again within 30 days.",
		Formula:            "rebooked30d / completed × 100",
		Format:             FormatPercent,
		DrillRowTypes:      []DrillRowType{RowAppointment, RowClient},
		TimeBasisSensitive: true,
	},
	"newClientRate": {
		ID:                 "newClientRate",
		Label:              "New Client Rate",
		Definition:         "Completed visits from first-time clients.",
		Formula:            "newClients / completed × 100",
		Format:             FormatPercent,
		DrillRowTypes:      []DrillRowType{RowAppointment, RowClient},
		TimeBasisSensitive: true,
	},
	"averageDuration": {
		ID:                 "averageDuration",
		Label:              "Average Duration",
		Definition:         "Mean booked service time per completed visit.",
		Formula:            "sum(duration) / completed",
		Format:             FormatMinutes,
		DrillRowTypes:      []DrillRowType{RowAppointment},
		TimeBasisSensitive: true,
	},
	"revenuePerHour": {
		ID:                 "revenuePerHour",
		Label:              "Revenue / Hour",
		Definition:         "Net sales per booked service hour.",
		Formula:            "netSales / bookedHours",
		Format:             FormatMoney,
		DrillRowTypes:      []DrillRowType{RowAppointment, RowStaff},
		TimeBasisSensitive: true,
	},
	"processingFees": {
		ID:                 "processingFees",
		Label:              "Processing Fees",
		Definition:         "Estimated card processing fees for the period.",
		Formula:            "sum(total × feePct + surcharge) over card payments",
		Format:             FormatMoney,
		DrillRowTypes:      []DrillRowType{RowTransaction},
		TimeBasisSensitive: false,
	},
	"refunds": {
		ID:                 "refunds",
		Label:              "Refunds",
		Definition:         "Amounts refunded to clients in the period.",
		Formula:            "sum(refund)",
		Format:             FormatMoney,
		DrillRowTypes:      []DrillRowType{RowTransaction},
		TimeBasisSensitive: false,
	},
	"netToBank": {
		ID:                 "netToBank",
		Label:              "Net to Bank",
		Definition:         "Expected settlement after fees and refunds.",
		Formula:            "sum(total − fee − refund)",
		Format:             FormatMoney,
		DrillRowTypes:      []DrillRowType{RowTransaction},
		TimeBasisSensitive: false,
	},
	"laborCost": {
		ID:                 "laborCost",
		Label:              "Labor Cost",
		Definition:         "Estimated direct labor for completed visits.",
		Formula:            "hourly rate × duration, or commission × net",
		Format:             FormatMoney,
		DrillRowTypes:      []DrillRowType{RowAppointment, RowStaff},
		TimeBasisSensitive: true,
	},
	"productCost": {
		ID:                 "productCost",
		Label:              "Product Cost",
		Definition:         "Estimated cost of goods as a percent of net sales.",
		Formula:            "netSales × cogsPct",
		Format:             FormatMoney,
		DrillRowTypes:      []DrillRowType{RowAppointment, RowInventory},
		TimeBasisSensitive: true,
	},
	"contributionMargin": {
		ID:                 "contributionMargin",
		Label:              "Contribution Margin",
		Definition:         "Net sales minus product cost, processing fees, and labor.",
		Formula:            "netSales − productCost − processingFees − laborCost",
		Format:             FormatMoney,
		DrillRowTypes:      []DrillRowType{RowAppointment, RowTransaction},
		TimeBasisSensitive: true,
	},
	"contributionMarginPct": {
		ID:                 "contributionMarginPct",
		Label:              "Margin %",
		Definition:         "Contribution margin as a percent of net sales.",
		Formula:            "contributionMargin / netSales × 100",
		Format:             FormatPercent,
		DrillRowTypes:      []DrillRowType{RowAppointment, RowTransaction},
		TimeBasisSensitive: true,
	},
	"reminderCoverage": {
		ID:                 "reminderCoverage",
		Label:              "Reminder Coverage",
		Definition:         "Appointments that received a reminder message.",
		Formula:            "remindersSent / appointments × 100",
		Format:             FormatPercent,
		DrillRowTypes:      []DrillRowType{RowAppointment, RowMessage},
		TimeBasisSensitive: true,
	},
}

// Lookup returns the registry entry for a metric id.
func Lookup(id string) (Definition, bool) {
	def, ok := Registry[id]
	return def, ok
}

// SupportsDrill reports whether drilling the metric can yield the row type.
func SupportsDrill(id string, rowType DrillRowType) bool {
	def, ok := Registry[id]
	if !ok {
		return false
	}

	for _, t := range def.DrillRowTypes {
		if t == rowType {
			return true
		}
	}

	return false
}
