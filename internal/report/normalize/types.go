package normalize

import "time"

// Status is the closed set of appointment states. Raw platform statuses are
// mapped onto it and never passed through.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no-show"
	StatusScheduled Status = "scheduled"
)

// ClientType distinguishes a client's first visit from repeat business.
type ClientType string

const (
	ClientNew       ClientType = "new"
	ClientReturning ClientType = "returning"
)

// StaffStatus is the closed set of employment states.
type StaffStatus string

const (
	StaffActive   StaffStatus = "active"
	StaffOnLeave  StaffStatus = "on-leave"
	StaffInactive StaffStatus = "inactive"
)

// PaymentMethod is the closed set of settlement methods.
type PaymentMethod string

const (
	PayCard     PaymentMethod = "card"
	PayCash     PaymentMethod = "cash"
	PayGiftCard PaymentMethod = "gift-card"
	PayUnknown  PaymentMethod = "unknown"
)

// ServiceLine is a normalized appointment line item.
type ServiceLine struct {
	Name            string
	Category        string
	PriceCents      int64
	PetSize         string
	DurationMinutes int
}

// Appointment is the normalized booking record. All money is integer cents.
// Values are immutable once built; the pipeline never mutates a normalized
// record after creation.
type Appointment struct {
	ID       string
	ClientID string
	PetID    string
	StaffID  string

	// Three distinct date bases. ServiceDate is when the pet was groomed,
	// CheckoutDate when the visit was closed out, TransactionDate when the
	// payment settled. The period resolver picks one per report.
	ServiceDate     time.Time
	CheckoutDate    time.Time
	TransactionDate time.Time

	StartTime string
	EndTime   string
	Services  []ServiceLine

	SubtotalCents int64
	DiscountCents int64
	TaxCents      int64
	TipCents      int64
	TotalCents    int64
	NetCents      int64 // SubtotalCents − DiscountCents, never negative

	Status     Status
	Channel    string
	ClientType ClientType

	Rebooked24h bool
	Rebooked7d  bool
	Rebooked30d bool

	NoShow       bool
	LateCancel   bool
	ReminderSent bool

	CreatedAt time.Time
}

// DurationMinutes sums the service line durations.
func (a *Appointment) DurationMinutes() int {
	total := 0
	for _, s := range a.Services {
		total += s.DurationMinutes
	}

	return total
}

// Transaction is the normalized payment record.
type Transaction struct {
	ID            string
	AppointmentID string
	ClientID      string
	Date          time.Time

	SubtotalCents      int64
	DiscountCents      int64
	TaxCents           int64
	TipCents           int64
	TotalCents         int64
	RefundCents        int64
	ProcessingFeeCents int64
	NetToBankCents     int64 // TotalCents − ProcessingFeeCents − RefundCents

	PaymentMethod PaymentMethod
	Type          string
}

// Staff is the normalized employee record.
type Staff struct {
	ID                string
	Name              string
	Role              string
	IsGroomer         bool
	HourlyRateCents   int64
	CommissionPercent float64
	Status            StaffStatus
	HireDate          time.Time
}

// Client is the normalized customer record with visit history derived from
// that client's completed appointments.
type Client struct {
	ID              string
	Name            string
	ReferralSource  string
	FirstVisit      *time.Time
	LastVisit       *time.Time
	TotalVisits     int
	TotalSpentCents int64
}

// InventoryItem is the normalized supply record.
type InventoryItem struct {
	ID            string
	Name          string
	Category      string
	OnHand        int
	UnitCostCents int64
	ReorderLevel  int
	UsagePerAppt  float64
}

// AtRisk reports whether the item is out of stock or projected to run out
// within lowSupplyDays at the given daily appointment pace. The same
// predicate drives both the inventory insight and its drill-through.
func (i InventoryItem) AtRisk(dailyAppts, lowSupplyDays float64) bool {
	if i.OnHand == 0 {
		return true
	}
	if i.UsagePerAppt <= 0 || dailyAppts <= 0 {
		return false
	}

	return float64(i.OnHand)/(dailyAppts*i.UsagePerAppt) < lowSupplyDays
}

// Message is the normalized outbound campaign message.
type Message struct {
	ID                     string
	CampaignID             string
	CampaignName           string
	Channel                string
	ClientID               string
	AppointmentID          string
	SentAt                 time.Time
	CostCents              int64
	AttributedRevenueCents int64
	Confirmed              bool
	ShowedUp               bool
}

// Store is the output of one normalization pass: every entity rebuilt from
// raw records, plus lookup indexes and completeness advisories. It has no
// persisted lifecycle; it is discarded and recomputed whenever raw inputs
// or filters change.
type Store struct {
	Appointments []Appointment
	Transactions []Transaction
	Staff        []Staff
	Clients      []Client
	Inventory    []InventoryItem
	Messages     []Message

	ApptByID  map[string]*Appointment
	TxnByID   map[string]*Transaction
	TxnByAppt map[string]*Transaction
	StaffByID map[string]*Staff

	Issues []CompletenessIssue
}
