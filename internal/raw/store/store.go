// Package store loads raw operational records from Postgres. It is the
// persistence collaborator the engine sees only as report.Repository: one
// full snapshot per call, no incremental reads.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pawprint-labs/pawprint/internal/raw"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// LoadSnapshot reads every raw table into memory. The version is the newest
// updated_at across all tables, so any write bumps it and invalidates
// memoized report views.
func (s *Store) LoadSnapshot(ctx context.Context) (*raw.Snapshot, error) {
	snap := &raw.Snapshot{}

	version, err := s.loadVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading data version: %w", err)
	}
	snap.Version = version

	if snap.Appointments, err = s.loadAppointments(ctx); err != nil {
		return nil, fmt.Errorf("loading appointments: %w", err)
	}

	if snap.Transactions, err = s.loadTransactions(ctx); err != nil {
		return nil, fmt.Errorf("loading transactions: %w", err)
	}

	if snap.Staff, err = s.loadStaff(ctx); err != nil {
		return nil, fmt.Errorf("loading staff: %w", err)
	}

	if snap.Clients, err = s.loadClients(ctx); err != nil {
		return nil, fmt.Errorf("loading clients: %w", err)
	}

	if snap.Inventory, err = s.loadInventory(ctx); err != nil {
		return nil, fmt.Errorf("loading inventory: %w", err)
	}

	if snap.Messages, err = s.loadMessages(ctx); err != nil {
		return nil, fmt.Errorf("loading messages: %w", err)
	}

	return snap, nil
}

// SaveAppointments upserts ingested appointments and replaces their
// service lines. updated_at moves on every write, which bumps the snapshot
// version.
func (s *Store) SaveAppointments(ctx context.Context, appts []raw.Appointment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	upsert := `
		INSERT INTO appointments (
			id, client_id, pet_id, groomer_id, date, start_time, end_time,
			total_price, status, channel, tip_amount, tip_method,
			reminder_sent, created_at, checked_out_at, updated_at
		) VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, NULLIF($6, ''), NULLIF($7, ''),
		          $8, $9, NULLIF($10, ''), $11, NULLIF($12, ''), $13, $14, $15, NOW())
		ON CONFLICT (id) DO UPDATE SET
			client_id = EXCLUDED.client_id,
			pet_id = EXCLUDED.pet_id,
			groomer_id = EXCLUDED.groomer_id,
			date = EXCLUDED.date,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			total_price = EXCLUDED.total_price,
			status = EXCLUDED.status,
			channel = EXCLUDED.channel,
			tip_amount = EXCLUDED.tip_amount,
			tip_method = EXCLUDED.tip_method,
			reminder_sent = EXCLUDED.reminder_sent,
			created_at = EXCLUDED.created_at,
			checked_out_at = EXCLUDED.checked_out_at,
			updated_at = NOW()
	`

	insertLine := `
		INSERT INTO appointment_services (
			appointment_id, position, name, category, price, pet_size, duration_minutes
		) VALUES ($1, $2, $3, NULLIF($4, ''), $5, NULLIF($6, ''), $7)
	`

	for _, a := range appts {
		var checkedOut sql.NullTime
		if a.CheckedOutAt != nil {
			checkedOut = sql.NullTime{Time: *a.CheckedOutAt, Valid: true}
		}

		if _, err := tx.ExecContext(ctx, upsert,
			a.ID, a.ClientID, a.PetID, a.GroomerID, a.Date, a.StartTime, a.EndTime,
			a.TotalPrice, a.Status, a.Channel, a.TipAmount, a.TipMethod,
			a.ReminderSent, a.CreatedAt, checkedOut,
		); err != nil {
			return fmt.Errorf("upserting appointment %s: %w", a.ID, err)
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM appointment_services WHERE appointment_id = $1`, a.ID,
		); err != nil {
			return fmt.Errorf("clearing service lines for %s: %w", a.ID, err)
		}

		for pos, svc := range a.Services {
			if _, err := tx.ExecContext(ctx, insertLine,
				a.ID, pos, svc.Name, svc.Category, svc.Price, svc.PetSize, svc.DurationMinutes,
			); err != nil {
				return fmt.Errorf("inserting service line for %s: %w", a.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}

	return nil
}

// SaveTransactions upserts ingested sales records.
func (s *Store) SaveTransactions(ctx context.Context, txns []raw.Transaction) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	upsert := `
		INSERT INTO transactions (
			id, appointment_id, client_id, date, subtotal, discount, tax,
			tip, total, refund, payment_method, status, type, updated_at
		) VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9, $10, NULLIF($11, ''), $12, $13, NOW())
		ON CONFLICT (id) DO UPDATE SET
			appointment_id = EXCLUDED.appointment_id,
			client_id = EXCLUDED.client_id,
			date = EXCLUDED.date,
			subtotal = EXCLUDED.subtotal,
			discount = EXCLUDED.discount,
			tax = EXCLUDED.tax,
			tip = EXCLUDED.tip,
			total = EXCLUDED.total,
			refund = EXCLUDED.refund,
			payment_method = EXCLUDED.payment_method,
			status = EXCLUDED.status,
			type = EXCLUDED.type,
			updated_at = NOW()
	`

	for _, t := range txns {
		if _, err := tx.ExecContext(ctx, upsert,
			t.ID, t.AppointmentID, t.ClientID, t.Date, t.Subtotal, t.Discount,
			t.Tax, t.Tip, t.Total, t.Refund, t.PaymentMethod, t.Status, t.Type,
		); err != nil {
			return fmt.Errorf("upserting transaction %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}

	return nil
}

func (s *Store) loadVersion(ctx context.Context) (int64, error) {
	query := `
		SELECT COALESCE(EXTRACT(EPOCH FROM MAX(v))::bigint, 0)
		FROM (
			SELECT MAX(updated_at) AS v FROM appointments
			UNION ALL SELECT MAX(updated_at) FROM transactions
			UNION ALL SELECT MAX(updated_at) FROM staff
			UNION ALL SELECT MAX(updated_at) FROM clients
			UNION ALL SELECT MAX(updated_at) FROM inventory_items
			UNION ALL SELECT MAX(updated_at) FROM messages
		) versions
	`

	var version int64
	if err := s.db.QueryRowContext(ctx, query).Scan(&version); err != nil {
		return 0, err
	}

	return version, nil
}

func (s *Store) loadAppointments(ctx context.Context) ([]raw.Appointment, error) {
	query := `
		SELECT id, client_id, pet_id, groomer_id, date, start_time, end_time,
		       total_price, status, channel, tip_amount, tip_method,
		       reminder_sent, created_at, checked_out_at
		FROM appointments
		ORDER BY date, id
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appts []raw.Appointment

	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.loadServices(ctx, appts); err != nil {
		return nil, err
	}

	return appts, nil
}

func scanAppointment(sc scanner) (*raw.Appointment, error) {
	var a raw.Appointment

	var petID, groomerID, channel, tipMethod sql.NullString

	var startTime, endTime sql.NullString

	var checkedOut sql.NullTime

	if err := sc.Scan(
		&a.ID, &a.ClientID, &petID, &groomerID, &a.Date, &startTime, &endTime,
		&a.TotalPrice, &a.Status, &channel, &a.TipAmount, &tipMethod,
		&a.ReminderSent, &a.CreatedAt, &checkedOut,
	); err != nil {
		return nil, fmt.Errorf("scanning appointment: %w", err)
	}

	a.PetID = petID.String
	a.GroomerID = groomerID.String
	a.Channel = channel.String
	a.TipMethod = tipMethod.String
	a.StartTime = startTime.String
	a.EndTime = endTime.String

	if checkedOut.Valid {
		t := checkedOut.Time
		a.CheckedOutAt = &t
	}

	return &a, nil
}

func (s *Store) loadServices(ctx context.Context, appts []raw.Appointment) error {
	query := `
		SELECT appointment_id, name, category, price, pet_size, duration_minutes
		FROM appointment_services
		ORDER BY appointment_id, position
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	byAppt := make(map[string][]raw.Service)

	for rows.Next() {
		var apptID string

		var svc raw.Service

		var category, petSize sql.NullString

		if err := rows.Scan(&apptID, &svc.Name, &category, &svc.Price, &petSize, &svc.DurationMinutes); err != nil {
			return fmt.Errorf("scanning service line: %w", err)
		}

		svc.Category = category.String
		svc.PetSize = petSize.String
		byAppt[apptID] = append(byAppt[apptID], svc)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range appts {
		appts[i].Services = byAppt[appts[i].ID]
	}

	return nil
}

func (s *Store) loadTransactions(ctx context.Context) ([]raw.Transaction, error) {
	query := `
		SELECT id, appointment_id, client_id, date, subtotal, discount, tax,
		       tip, total, refund, payment_method, status, type
		FROM transactions
		ORDER BY date, id
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []raw.Transaction

	for rows.Next() {
		var t raw.Transaction

		var apptID, method sql.NullString

		if err := rows.Scan(
			&t.ID, &apptID, &t.ClientID, &t.Date, &t.Subtotal, &t.Discount,
			&t.Tax, &t.Tip, &t.Total, &t.Refund, &method, &t.Status, &t.Type,
		); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		t.AppointmentID = apptID.String
		t.PaymentMethod = method.String
		txns = append(txns, t)
	}

	return txns, rows.Err()
}

func (s *Store) loadStaff(ctx context.Context) ([]raw.Staff, error) {
	query := `
		SELECT id, name, role, is_groomer, COALESCE(hourly_rate, 0),
		       COALESCE(commission, 0), status, hire_date
		FROM staff
		ORDER BY name, id
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var staff []raw.Staff

	for rows.Next() {
		var st raw.Staff
		if err := rows.Scan(
			&st.ID, &st.Name, &st.Role, &st.IsGroomer, &st.HourlyRate,
			&st.Commission, &st.Status, &st.HireDate,
		); err != nil {
			return nil, fmt.Errorf("scanning staff: %w", err)
		}
		staff = append(staff, st)
	}

	return staff, rows.Err()
}

func (s *Store) loadClients(ctx context.Context) ([]raw.Client, error) {
	query := `
		SELECT id, name, COALESCE(email, ''), COALESCE(phone, ''),
		       COALESCE(referral_source, ''), created_at
		FROM clients
		ORDER BY name, id
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []raw.Client

	for rows.Next() {
		var c raw.Client

		var createdAt sql.NullTime

		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.ReferralSource, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning client: %w", err)
		}

		if createdAt.Valid {
			t := createdAt.Time
			c.CreatedAt = &t
		}
		clients = append(clients, c)
	}

	return clients, rows.Err()
}

func (s *Store) loadInventory(ctx context.Context) ([]raw.InventoryItem, error) {
	query := `
		SELECT id, name, COALESCE(category, ''), quantity, COALESCE(cost, 0),
		       reorder_level, COALESCE(usage_per_appt, 0)
		FROM inventory_items
		ORDER BY name, id
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []raw.InventoryItem

	for rows.Next() {
		var item raw.InventoryItem
		if err := rows.Scan(
			&item.ID, &item.Name, &item.Category, &item.Quantity, &item.Cost,
			&item.ReorderLevel, &item.UsagePerAppt,
		); err != nil {
			return nil, fmt.Errorf("scanning inventory item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func (s *Store) loadMessages(ctx context.Context) ([]raw.Message, error) {
	query := `
		SELECT id, COALESCE(campaign_id, ''), COALESCE(campaign_name, ''),
		       channel, client_id, COALESCE(appointment_id, ''), sent_at,
		       COALESCE(cost, 0), COALESCE(attributed_revenue, 0),
		       confirmed, showed_up
		FROM messages
		ORDER BY sent_at, id
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []raw.Message

	for rows.Next() {
		var m raw.Message

		var sentAt time.Time

		if err := rows.Scan(
			&m.ID, &m.CampaignID, &m.CampaignName, &m.Channel, &m.ClientID,
			&m.AppointmentID, &sentAt, &m.Cost, &m.AttributedRevenue,
			&m.Confirmed, &m.ShowedUp,
		); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}

		m.SentAt = sentAt
		msgs = append(msgs, m)
	}

	return msgs, rows.Err()
}
