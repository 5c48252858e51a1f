package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/glosslab/salon-service/internal/app/domain/account"
	"github.com/glosslab/salon-service/internal/app/domain/booking"
	"github.com/glosslab/salon-service/internal/app/domain/cart"
	"github.com/glosslab/salon-service/internal/app/domain/design"
	"github.com/glosslab/salon-service/internal/app/domain/feedback"
	"github.com/glosslab/salon-service/internal/app/storage"
)

// Store implements the storage interfaces backed by PostgreSQL.
type Store struct {
	db *sql.DB
}

var _ storage.AccountStore = (*Store)(nil)
var _ storage.DesignStore = (*Store)(nil)
var _ storage.CartStore = (*Store)(nil)
var _ storage.BookingStore = (*Store)(nil)
var _ storage.FeedbackStore = (*Store)(nil)

//go:embed schema.sql
var schemaSQL string

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the salon tables when they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schemaSQL)
	return err
}

// --- AccountStore -----------------------------------------------------------

func (s *Store) CreateAccount(ctx context.Context, acct account.Account) (account.Account, error) {
	if acct.ID == "" {
		acct.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	acct.CreatedAt = now
	acct.UpdatedAt = now

	metadataJSON, err := json.Marshal(acct.Metadata)
	if err != nil {
		return account.Account{}, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO salon_accounts (id, name, email, phone, avatar_url, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, acct.ID, acct.Name, acct.Email, acct.Phone, acct.AvatarURL, metadataJSON, acct.CreatedAt, acct.UpdatedAt)
	if err != nil {
		return account.Account{}, err
	}
	return acct, nil
}

func (s *Store) UpdateAccount(ctx context.Context, acct account.Account) (account.Account, error) {
	existing, err := s.GetAccount(ctx, acct.ID)
	if err != nil {
		return account.Account{}, err
	}

	acct.CreatedAt = existing.CreatedAt
	acct.UpdatedAt = time.Now().UTC()

	metadataJSON, err := json.Marshal(acct.Metadata)
	if err != nil {
		return account.Account{}, err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE salon_accounts
		SET name = $2, email = $3, phone = $4, avatar_url = $5, metadata = $6, updated_at = $7
		WHERE id = $1
	`, acct.ID, acct.Name, acct.Email, acct.Phone, acct.AvatarURL, metadataJSON, acct.UpdatedAt)
	if err != nil {
		return account.Account{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return account.Account{}, sql.ErrNoRows
	}
	return acct, nil
}

func (s *Store) GetAccount(ctx context.Context, id string) (account.Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, avatar_url, metadata, created_at, updated_at
		FROM salon_accounts
		WHERE id = $1
	`, id)
	return scanAccount(row)
}

func (s *Store) ListAccounts(ctx context.Context) ([]account.Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, phone, avatar_url, metadata, created_at, updated_at
		FROM salon_accounts
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []account.Account
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, acct)
	}
	return result, rows.Err()
}

func (s *Store) DeleteAccount(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM salon_accounts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (account.Account, error) {
	var (
		acct        account.Account
		metadataRaw []byte
	)
	if err := row.Scan(&acct.ID, &acct.Name, &acct.Email, &acct.Phone, &acct.AvatarURL, &metadataRaw, &acct.CreatedAt, &acct.UpdatedAt); err != nil {
		return account.Account{}, err
	}
	if len(metadataRaw) > 0 {
		_ = json.Unmarshal(metadataRaw, &acct.Metadata)
	}
	return acct, nil
}

// --- DesignStore ------------------------------------------------------------

func (s *Store) CreateDesign(ctx context.Context, d design.Design) (design.Design, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO salon_designs (id, name, thumbnail_url, description, tags, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, d.ID, d.Name, d.ThumbnailURL, d.Description, pq.Array(d.Tags), d.Active, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return design.Design{}, err
	}
	return d, nil
}

func (s *Store) UpdateDesign(ctx context.Context, d design.Design) (design.Design, error) {
	existing, err := s.GetDesign(ctx, d.ID)
	if err != nil {
		return design.Design{}, err
	}
	d.CreatedAt = existing.CreatedAt
	d.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE salon_designs
		SET name = $2, thumbnail_url = $3, description = $4, tags = $5, active = $6, updated_at = $7
		WHERE id = $1
	`, d.ID, d.Name, d.ThumbnailURL, d.Description, pq.Array(d.Tags), d.Active, d.UpdatedAt)
	if err != nil {
		return design.Design{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return design.Design{}, sql.ErrNoRows
	}
	return d, nil
}

func (s *Store) GetDesign(ctx context.Context, id string) (design.Design, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, thumbnail_url, description, tags, active, created_at, updated_at
		FROM salon_designs
		WHERE id = $1
	`, id)
	return scanDesign(row)
}

func (s *Store) ListDesigns(ctx context.Context) ([]design.Design, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, thumbnail_url, description, tags, active, created_at, updated_at
		FROM salon_designs
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []design.Design
	for rows.Next() {
		d, err := scanDesign(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

func scanDesign(row rowScanner) (design.Design, error) {
	var d design.Design
	if err := row.Scan(&d.ID, &d.Name, &d.ThumbnailURL, &d.Description, pq.Array(&d.Tags), &d.Active, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return design.Design{}, err
	}
	return d, nil
}

func (s *Store) CreateDesignService(ctx context.Context, svc design.Service) (design.Service, error) {
	if svc.ID == "" {
		svc.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	svc.CreatedAt = now
	svc.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO salon_design_services (id, design_id, name, price, duration_minutes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, svc.ID, svc.DesignID, svc.Name, svc.Price, svc.DurationMinutes, svc.CreatedAt, svc.UpdatedAt)
	if err != nil {
		return design.Service{}, err
	}
	return svc, nil
}

func (s *Store) GetDesignService(ctx context.Context, id string) (design.Service, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, design_id, name, price, duration_minutes, created_at, updated_at
		FROM salon_design_services
		WHERE id = $1
	`, id)

	var svc design.Service
	if err := row.Scan(&svc.ID, &svc.DesignID, &svc.Name, &svc.Price, &svc.DurationMinutes, &svc.CreatedAt, &svc.UpdatedAt); err != nil {
		return design.Service{}, err
	}
	return svc, nil
}

func (s *Store) ListDesignServices(ctx context.Context, designID string) ([]design.Service, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, design_id, name, price, duration_minutes, created_at, updated_at
		FROM salon_design_services
		WHERE design_id = $1
		ORDER BY created_at
	`, designID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []design.Service
	for rows.Next() {
		var svc design.Service
		if err := rows.Scan(&svc.ID, &svc.DesignID, &svc.Name, &svc.Price, &svc.DurationMinutes, &svc.CreatedAt, &svc.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, svc)
	}
	return result, rows.Err()
}

// --- CartStore --------------------------------------------------------------

func (s *Store) AddCartEntry(ctx context.Context, entry cart.Entry) (cart.Entry, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.AddedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO salon_cart_entries (id, account_id, design_id, service_name, service_price, finger_position, left_hand, added_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, entry.ID, entry.AccountID, entry.DesignID, entry.ServiceName, entry.ServicePrice, entry.FingerPosition, entry.LeftHand, entry.AddedAt)
	if err != nil {
		return cart.Entry{}, err
	}
	return entry, nil
}

func (s *Store) ListCartEntries(ctx context.Context, accountID string) ([]cart.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, account_id, design_id, service_name, service_price, finger_position, left_hand, added_at
		FROM salon_cart_entries
		WHERE account_id = $1
		ORDER BY added_at, id
	`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]cart.Entry, 0)
	for rows.Next() {
		var e cart.Entry
		if err := rows.Scan(&e.ID, &e.AccountID, &e.DesignID, &e.ServiceName, &e.ServicePrice, &e.FingerPosition, &e.LeftHand, &e.AddedAt); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func (s *Store) DeleteCartEntry(ctx context.Context, accountID, entryID string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM salon_cart_entries WHERE account_id = $1 AND id = $2
	`, accountID, entryID)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) ClearCart(ctx context.Context, accountID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM salon_cart_entries WHERE account_id = $1`, accountID)
	return err
}

// --- BookingStore -----------------------------------------------------------

func (s *Store) CreateStore(ctx context.Context, st booking.Store) (booking.Store, error) {
	if st.ID == "" {
		st.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	st.CreatedAt = now
	st.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO salon_stores (id, name, address, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, st.ID, st.Name, st.Address, st.Phone, st.CreatedAt, st.UpdatedAt)
	if err != nil {
		return booking.Store{}, err
	}
	return st, nil
}

func (s *Store) GetStore(ctx context.Context, id string) (booking.Store, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, address, phone, created_at, updated_at
		FROM salon_stores
		WHERE id = $1
	`, id)

	var st booking.Store
	if err := row.Scan(&st.ID, &st.Name, &st.Address, &st.Phone, &st.CreatedAt, &st.UpdatedAt); err != nil {
		return booking.Store{}, err
	}
	return st, nil
}

func (s *Store) ListStores(ctx context.Context) ([]booking.Store, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, address, phone, created_at, updated_at
		FROM salon_stores
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []booking.Store
	for rows.Next() {
		var st booking.Store
		if err := rows.Scan(&st.ID, &st.Name, &st.Address, &st.Phone, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, st)
	}
	return result, rows.Err()
}

func (s *Store) CreateArtist(ctx context.Context, a booking.Artist) (booking.Artist, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO salon_artists (id, store_id, name, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, a.ID, a.StoreID, a.Name, a.Active, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return booking.Artist{}, err
	}
	return a, nil
}

func (s *Store) GetArtist(ctx context.Context, id string) (booking.Artist, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, store_id, name, active, created_at, updated_at
		FROM salon_artists
		WHERE id = $1
	`, id)

	var a booking.Artist
	if err := row.Scan(&a.ID, &a.StoreID, &a.Name, &a.Active, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return booking.Artist{}, err
	}
	return a, nil
}

func (s *Store) ListArtists(ctx context.Context, storeID string) ([]booking.Artist, error) {
	query := `
		SELECT id, store_id, name, active, created_at, updated_at
		FROM salon_artists
	`
	args := []any{}
	if storeID != "" {
		query += ` WHERE store_id = $1`
		args = append(args, storeID)
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []booking.Artist
	for rows.Next() {
		var a booking.Artist
		if err := rows.Scan(&a.ID, &a.StoreID, &a.Name, &a.Active, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func (s *Store) CreateAppointment(ctx context.Context, appt booking.Appointment) (booking.Appointment, error) {
	if appt.ID == "" {
		appt.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	appt.CreatedAt = now
	appt.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO salon_appointments (id, account_id, store_id, artist_id, starts_at, duration_minutes, status, entry_ids, total, note, reminded, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, appt.ID, appt.AccountID, appt.StoreID, appt.ArtistID, appt.StartsAt, appt.DurationMinutes, appt.Status,
		pq.Array(appt.EntryIDs), appt.Total, appt.Note, appt.Reminded, appt.CreatedAt, appt.UpdatedAt)
	if err != nil {
		return booking.Appointment{}, err
	}
	return appt, nil
}

func (s *Store) UpdateAppointment(ctx context.Context, appt booking.Appointment) (booking.Appointment, error) {
	existing, err := s.GetAppointment(ctx, appt.ID)
	if err != nil {
		return booking.Appointment{}, err
	}
	appt.CreatedAt = existing.CreatedAt
	appt.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE salon_appointments
		SET status = $2, starts_at = $3, duration_minutes = $4, entry_ids = $5, total = $6, note = $7, reminded = $8, updated_at = $9
		WHERE id = $1
	`, appt.ID, appt.Status, appt.StartsAt, appt.DurationMinutes, pq.Array(appt.EntryIDs), appt.Total, appt.Note, appt.Reminded, appt.UpdatedAt)
	if err != nil {
		return booking.Appointment{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return booking.Appointment{}, sql.ErrNoRows
	}
	return appt, nil
}

const appointmentColumns = `id, account_id, store_id, artist_id, starts_at, duration_minutes, status, entry_ids, total, note, reminded, created_at, updated_at`

func scanAppointment(row rowScanner) (booking.Appointment, error) {
	var appt booking.Appointment
	if err := row.Scan(&appt.ID, &appt.AccountID, &appt.StoreID, &appt.ArtistID, &appt.StartsAt, &appt.DurationMinutes,
		&appt.Status, pq.Array(&appt.EntryIDs), &appt.Total, &appt.Note, &appt.Reminded, &appt.CreatedAt, &appt.UpdatedAt); err != nil {
		return booking.Appointment{}, err
	}
	return appt, nil
}

func (s *Store) GetAppointment(ctx context.Context, id string) (booking.Appointment, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+appointmentColumns+` FROM salon_appointments WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (s *Store) ListAppointments(ctx context.Context, accountID string) ([]booking.Appointment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+appointmentColumns+` FROM salon_appointments WHERE account_id = $1 ORDER BY starts_at
	`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAppointments(rows)
}

func (s *Store) ListArtistAppointments(ctx context.Context, artistID string) ([]booking.Appointment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+appointmentColumns+` FROM salon_appointments WHERE artist_id = $1 ORDER BY starts_at
	`, artistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAppointments(rows)
}

func (s *Store) ListAppointmentsBetween(ctx context.Context, from, until time.Time) ([]booking.Appointment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+appointmentColumns+` FROM salon_appointments WHERE starts_at >= $1 AND starts_at < $2 ORDER BY starts_at
	`, from, until)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAppointments(rows)
}

func collectAppointments(rows *sql.Rows) ([]booking.Appointment, error) {
	var result []booking.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, appt)
	}
	return result, rows.Err()
}

// --- FeedbackStore ----------------------------------------------------------

func (s *Store) CreateFeedback(ctx context.Context, fb feedback.Feedback) (feedback.Feedback, error) {
	if fb.ID == "" {
		fb.ID = uuid.NewString()
	}
	fb.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO salon_feedback (id, account_id, appointment_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, fb.ID, fb.AccountID, fb.AppointmentID, fb.Rating, fb.Comment, fb.CreatedAt)
	if err != nil {
		return feedback.Feedback{}, err
	}
	return fb, nil
}

func (s *Store) ListFeedback(ctx context.Context, accountID string) ([]feedback.Feedback, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, account_id, appointment_id, rating, comment, created_at
		FROM salon_feedback
		WHERE account_id = $1
		ORDER BY created_at
	`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []feedback.Feedback
	for rows.Next() {
		var fb feedback.Feedback
		if err := rows.Scan(&fb.ID, &fb.AccountID, &fb.AppointmentID, &fb.Rating, &fb.Comment, &fb.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, fb)
	}
	return result, rows.Err()
}
