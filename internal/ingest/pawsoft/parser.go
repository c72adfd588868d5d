// Package pawsoft parses CSV exports from the PawSoft booking platform.
// Exports come in two formats (desktop and cloud) which are auto-detected
// by matching column headers against known profiles.
package pawsoft

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	enc "github.com/pawprint-labs/pawprint/internal/encoding"
	"github.com/pawprint-labs/pawprint/internal/raw"
)

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// ParseAppointments reads an appointment export. The export has one row
// per service line; rows sharing an appointment id are merged into one
// appointment with multiple lines. Rows without an id get a generated one
// and stay single-line.
func (p *Parser) ParseAppointments(r io.Reader) ([]raw.Appointment, error) {
	rows, err := readCSV(r)
	if err != nil {
		return nil, err
	}

	profile, cols, headerIdx := detectProfile(appointmentProfiles, rows)
	if profile == nil {
		return nil, fmt.Errorf("no matching PawSoft appointment format found")
	}

	var appts []raw.Appointment

	index := make(map[string]int) // appointment id -> position in appts

	for _, row := range rows[headerIdx+1:] {
		date, ok := parseDate(cellValue(row, cols, profile.DateCol), profile.DateLayout)
		if !ok {
			// Footer or summary row.
			continue
		}

		svc := raw.Service{
			Name:            cellValue(row, cols, profile.ServiceCol),
			Category:        cellValue(row, cols, profile.CategoryCol),
			PetSize:         cellValue(row, cols, profile.PetSizeCol),
			DurationMinutes: parseInt(cellValue(row, cols, profile.DurationCol)),
		}
		if svc.Price, err = parseMoney(cellValue(row, cols, profile.PriceCol)); err != nil {
			continue
		}

		id := cellValue(row, cols, profile.IDCol)
		if id == "" {
			id = uuid.NewString()
		} else if at, ok := index[id]; ok {
			// Continuation row for a multi-service appointment.
			appts[at].Services = append(appts[at].Services, svc)
			appts[at].TotalPrice += svc.Price

			continue
		}

		tip, _ := parseMoney(cellValue(row, cols, profile.TipCol))

		a := raw.Appointment{
			ID:           id,
			ClientID:     cellValue(row, cols, profile.ClientCol),
			PetID:        cellValue(row, cols, profile.PetCol),
			GroomerID:    cellValue(row, cols, profile.GroomerCol),
			Date:         date,
			StartTime:    cellValue(row, cols, profile.StartCol),
			EndTime:      cellValue(row, cols, profile.EndCol),
			Services:     []raw.Service{svc},
			TotalPrice:   svc.Price,
			Status:       cellValue(row, cols, profile.StatusCol),
			Channel:      cellValue(row, cols, profile.ChannelCol),
			TipAmount:    tip,
			TipMethod:    cellValue(row, cols, profile.TipMethodCol),
			ReminderSent: parseBool(cellValue(row, cols, profile.ReminderCol)),
			CreatedAt:    parseTimestamp(cellValue(row, cols, profile.CreatedCol), profile.DateLayout, date),
		}

		if out := cellValue(row, cols, profile.CheckedOutCol); out != "" {
			if t, ok := parseDate(out, profile.DateLayout); ok {
				a.CheckedOutAt = &t
			}
		}

		index[id] = len(appts)
		appts = append(appts, a)
	}

	return appts, nil
}

// ParseSales reads a sales export, one row per transaction.
func (p *Parser) ParseSales(r io.Reader) ([]raw.Transaction, error) {
	rows, err := readCSV(r)
	if err != nil {
		return nil, err
	}

	profile, cols, headerIdx := detectProfile(salesProfiles, rows)
	if profile == nil {
		return nil, fmt.Errorf("no matching PawSoft sales format found")
	}

	var txns []raw.Transaction

	for _, row := range rows[headerIdx+1:] {
		date, ok := parseDate(cellValue(row, cols, profile.DateCol), profile.DateLayout)
		if !ok {
			continue
		}

		total, err := parseMoney(cellValue(row, cols, profile.TotalCol))
		if err != nil {
			continue
		}

		id := cellValue(row, cols, profile.IDCol)
		if id == "" {
			id = uuid.NewString()
		}

		subtotal, _ := parseMoney(cellValue(row, cols, profile.SubtotalCol))
		discount, _ := parseMoney(cellValue(row, cols, profile.DiscountCol))
		tax, _ := parseMoney(cellValue(row, cols, profile.TaxCol))
		tip, _ := parseMoney(cellValue(row, cols, profile.TipCol))
		refund, _ := parseMoney(cellValue(row, cols, profile.RefundCol))

		txns = append(txns, raw.Transaction{
			ID:            id,
			AppointmentID: cellValue(row, cols, profile.ApptCol),
			ClientID:      cellValue(row, cols, profile.ClientCol),
			Date:          date,
			Subtotal:      subtotal,
			Discount:      discount,
			Tax:           tax,
			Tip:           tip,
			Total:         total,
			Refund:        refund,
			PaymentMethod: cellValue(row, cols, profile.MethodCol),
			Status:        cellValue(row, cols, profile.StatusCol),
			Type:          cellValue(row, cols, profile.TypeCol),
		})
	}

	return txns, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	utf8r, charset, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detecting encoding: %w", err)
	}

	slog.Debug("decoding export", "charset", charset)

	reader := csv.NewReader(utf8r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}

	return rows, nil
}

// colIndex maps column names to their index in the row.
type colIndex map[string]int

// detectProfile scans rows for a header matching a known profile.
func detectProfile(profiles []Profile, rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.TrimSpace(cell)
			if name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// cellValue gets a trimmed cell by column name; missing columns and short
// rows yield "".
func cellValue(row []string, cols colIndex, name string) string {
	if name == "" {
		return ""
	}

	idx, ok := cols[name]
	if !ok || idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func parseDate(s, layout string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	if t, err := time.Parse(layout, s); err == nil {
		return t, true
	}

	// Timestamp cells in date columns happen in cloud exports.
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}

	return time.Time{}, false
}

// parseTimestamp parses a booking timestamp, falling back to the
// appointment date when the cell is missing or unparseable.
func parseTimestamp(s, layout string, fallback time.Time) time.Time {
	if t, ok := parseDate(s, layout); ok {
		return t
	}

	if t, err := time.Parse(layout+" 15:04", s); err == nil {
		return t
	}

	return fallback
}

func parseInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}

	return n
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "yes", "y", "true", "1":
		return true
	}

	return false
}
