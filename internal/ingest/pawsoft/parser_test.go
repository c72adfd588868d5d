package pawsoft_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/pawprint-labs/pawprint/internal/ingest/pawsoft"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestParser_CloudAppointments(t *testing.T) {
	csv := `appointment_id,client_id,pet_id,groomer_id,date,start_time,end_time,service_name,service_category,price,pet_size,duration_min,status,channel,tip_amount,tip_method,reminder_sent,created_at,checked_out_at
A-100,C-1,P-1,S-1,2026-06-01,09:00,10:30,Full Groom,Grooming,$80.00,large,90,completed,online,10.00,card,yes,2026-05-20,2026-06-01
A-100,C-1,P-1,S-1,2026-06-01,09:00,10:30,Nail Trim,Grooming,15.00,large,15,completed,online,,,yes,2026-05-20,
A-101,C-2,P-2,,2026-06-02,11:00,12:00,Bath,Bathing,35.00,small,60,no show,phone,0,,no,2026-05-28,
Totals,,,,,,,,,130.00
`

	p := pawsoft.NewParser()
	appts, err := p.ParseAppointments(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, appts, 2)

	a := appts[0]
	assert.Equal(t, "A-100", a.ID)
	assert.Equal(t, "C-1", a.ClientID)
	assert.Equal(t, "S-1", a.GroomerID)
	assert.Equal(t, date(2026, 6, 1), a.Date)

	// The two service-line rows merge into one appointment.
	require.Len(t, a.Services, 2)
	assert.Equal(t, "Full Groom", a.Services[0].Name)
	assert.Equal(t, 80.0, a.Services[0].Price)
	assert.Equal(t, 90, a.Services[0].DurationMinutes)
	assert.Equal(t, "Nail Trim", a.Services[1].Name)
	assert.Equal(t, 95.0, a.TotalPrice)

	assert.Equal(t, 10.0, a.TipAmount)
	assert.True(t, a.ReminderSent)
	assert.Equal(t, date(2026, 5, 20), a.CreatedAt)
	require.NotNil(t, a.CheckedOutAt)
	assert.Equal(t, date(2026, 6, 1), *a.CheckedOutAt)

	b := appts[1]
	assert.Equal(t, "A-101", b.ID)
	assert.Empty(t, b.GroomerID)
	assert.Equal(t, "no show", b.Status)
	assert.Equal(t, 35.0, b.TotalPrice)
	assert.Nil(t, b.CheckedOutAt)
}

func TestParser_DesktopAppointments(t *testing.T) {
	csv := `PawSoft Desktop v9.2 - Appointment Report
Printed,15-06-2026

Appt No.,Client,Pet,Groomer,Appt Date,Start,End,Service,Category,Price,Size,Mins,Status,Booked Via,Tip,Tip Via,Reminder,Booked On,Checked Out
2001,Maria,Rex,Alex,03-06-2026,14:00,15:00,Full Groom,Grooming,"$1.234,50",large,60,Completed,Phone,"5,00",cash,Y,01-06-2026,03-06-2026
`

	p := pawsoft.NewParser()
	appts, err := p.ParseAppointments(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, appts, 1)

	a := appts[0]
	assert.Equal(t, "2001", a.ID)
	assert.Equal(t, "Alex", a.GroomerID)
	assert.Equal(t, date(2026, 6, 3), a.Date)
	assert.Equal(t, 1234.50, a.TotalPrice, "European thousands and decimal separators")
	assert.Equal(t, 5.0, a.TipAmount)
	assert.True(t, a.ReminderSent)
	assert.Equal(t, "Phone", a.Channel)
}

func TestParser_MissingIDGetsGenerated(t *testing.T) {
	csv := `appointment_id,date,service_name,price,status
,2026-06-01,Bath,35.00,completed
,2026-06-01,Bath,35.00,completed
`

	p := pawsoft.NewParser()
	appts, err := p.ParseAppointments(strings.NewReader(csv))
	require.NoError(t, err)

	// Rows without an id never merge.
	require.Len(t, appts, 2)
	assert.NotEmpty(t, appts[0].ID)
	assert.NotEmpty(t, appts[1].ID)
	assert.NotEqual(t, appts[0].ID, appts[1].ID)
}

func TestParser_CloudSales(t *testing.T) {
	csv := `transaction_id,appointment_id,client_id,date,subtotal,discount,tax,tip,total,refund,payment_method,status,type
T-1,A-100,C-1,2026-06-01,95.00,5.00,8.55,10.00,108.55,0,card,settled,sale
T-2,,C-2,2026-06-02,35.00,0,3.15,0,38.15,38.15,card,refunded,refund
`

	p := pawsoft.NewParser()
	txns, err := p.ParseSales(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, txns, 2)

	tx := txns[0]
	assert.Equal(t, "T-1", tx.ID)
	assert.Equal(t, "A-100", tx.AppointmentID)
	assert.Equal(t, date(2026, 6, 1), tx.Date)
	assert.Equal(t, 95.0, tx.Subtotal)
	assert.Equal(t, 5.0, tx.Discount)
	assert.Equal(t, 108.55, tx.Total)
	assert.Equal(t, "card", tx.PaymentMethod)
	assert.Equal(t, "sale", tx.Type)

	assert.Equal(t, 38.15, txns[1].Refund)
	assert.Equal(t, "refund", txns[1].Type)
}

func TestParser_DesktopSales(t *testing.T) {
	csv := `Receipt No.,Appt No.,Client,Sale Date,Subtotal,Discount,Tax,Tip,Total,Refunded,Paid By,Status,Type
501,2001,Maria,03-06-2026,"1.234,50","10,00","110,20","20,00","1.354,70",,Card,Settled,Sale
`

	p := pawsoft.NewParser()
	txns, err := p.ParseSales(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, txns, 1)

	assert.Equal(t, "501", txns[0].ID)
	assert.Equal(t, "2001", txns[0].AppointmentID)
	assert.Equal(t, date(2026, 6, 3), txns[0].Date)
	assert.Equal(t, 1354.70, txns[0].Total)
	assert.Equal(t, "Card", txns[0].PaymentMethod)
}

func TestParser_Windows1252Encoding(t *testing.T) {
	utf8CSV := "appointment_id,date,groomer_id,service_name,price,status\nA-1,2026-06-01,Zoë,Café Spa Package,50.00,completed\n"

	encoded, err := charmap.Windows1252.NewEncoder().Bytes([]byte(utf8CSV))
	require.NoError(t, err)

	p := pawsoft.NewParser()
	appts, err := p.ParseAppointments(bytes.NewReader(encoded))
	require.NoError(t, err)
	require.Len(t, appts, 1)

	assert.Equal(t, "Zoë", appts[0].GroomerID)
	assert.Equal(t, "Café Spa Package", appts[0].Services[0].Name)
}

func TestParser_UnknownFormat(t *testing.T) {
	p := pawsoft.NewParser()

	_, err := p.ParseAppointments(strings.NewReader("foo,bar\n1,2\n"))
	assert.ErrorContains(t, err, "no matching PawSoft appointment format")

	_, err = p.ParseSales(strings.NewReader("foo,bar\n1,2\n"))
	assert.ErrorContains(t, err, "no matching PawSoft sales format")
}
