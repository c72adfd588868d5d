// Package raw holds the operational records exactly as the booking platform
// stores them: float dollar amounts, free-form status strings, optional
// fields left empty. The report pipeline never consumes these directly;
// they go through normalize first.
package raw

import "time"

// Appointment is a booking as recorded at scheduling time.
type Appointment struct {
	ID           string
	ClientID     string
	PetID        string
	GroomerID    string
	Date         time.Time
	StartTime    string // "09:30"
	EndTime      string // "11:00"
	Services     []Service
	TotalPrice   float64 // dollars
	Status       string  // free-form platform status
	Channel      string  // booking source: online, phone, walk-in, app
	TipAmount    float64
	TipMethod    string
	ReminderSent bool
	CreatedAt    time.Time
	CheckedOutAt *time.Time
}

// Service is a line item on an appointment.
type Service struct {
	Name            string
	Category        string
	Price           float64 // dollars
	PetSize         string
	DurationMinutes int
}

// Transaction is a payment event, optionally tied to an appointment.
type Transaction struct {
	ID            string
	AppointmentID string
	ClientID      string
	Date          time.Time
	Subtotal      float64 // dollars
	Discount      float64
	Tax           float64
	Tip           float64
	Total         float64
	Refund        float64
	PaymentMethod string // card, cash, gift-card
	Status        string
	Type          string // sale, refund
}

// Staff is an employee record.
type Staff struct {
	ID         string
	Name       string
	Role       string
	IsGroomer  bool
	HourlyRate float64 // dollars, 0 when not configured
	Commission float64 // percent, 0 when not configured
	Status     string
	HireDate   time.Time
}

// Client is a customer record.
type Client struct {
	ID             string
	Name           string
	Email          string
	Phone          string
	Pets           []string
	ReferralSource string
	CreatedAt      *time.Time
}

// InventoryItem is a supply record.
type InventoryItem struct {
	ID           string
	Name         string
	Category     string
	Quantity     int
	Cost         float64 // dollars per unit, 0 when unknown
	ReorderLevel int
	UsagePerAppt float64 // estimated units consumed per appointment
}

// Message is an outbound campaign or reminder message.
type Message struct {
	ID                string
	CampaignID        string
	CampaignName      string
	Channel           string // sms, email
	ClientID          string
	AppointmentID     string
	SentAt            time.Time
	Cost              float64 // dollars
	AttributedRevenue float64
	Confirmed         bool
	ShowedUp          bool
}

// Snapshot is one consistent read of all raw records. Version increases
// whenever any underlying record changes; the report service keys its
// memoization on it.
type Snapshot struct {
	Version      int64
	Appointments []Appointment
	Transactions []Transaction
	Staff        []Staff
	Clients      []Client
	Inventory    []InventoryItem
	Messages     []Message
}
