package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/glosslab/salon-service/internal/app/domain/booking"
	"github.com/glosslab/salon-service/internal/app/metrics"
	"github.com/glosslab/salon-service/internal/app/storage"
	"github.com/glosslab/salon-service/pkg/logger"
)

// Default appointment length when a request does not carry an estimate.
const defaultDurationMinutes = 60

// Service manages stores, artists and appointment scheduling.
type Service struct {
	accounts storage.AccountStore
	store    storage.BookingStore
	log      *logger.Logger
	now      func() time.Time
}

// New constructs a booking service.
func New(accounts storage.AccountStore, store storage.BookingStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("booking")
	}
	return &Service{
		accounts: accounts,
		store:    store,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateStore registers a salon location.
func (s *Service) CreateStore(ctx context.Context, name, address, phone string) (booking.Store, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return booking.Store{}, fmt.Errorf("name is required")
	}
	st, err := s.store.CreateStore(ctx, booking.Store{
		Name:    name,
		Address: strings.TrimSpace(address),
		Phone:   strings.TrimSpace(phone),
	})
	if err != nil {
		return booking.Store{}, err
	}
	s.log.WithField("store_id", st.ID).Info("store created")
	return st, nil
}

// ListStores returns all salon locations.
func (s *Service) ListStores(ctx context.Context) ([]booking.Store, error) {
	return s.store.ListStores(ctx)
}

// CreateArtist registers an artist at a store.
func (s *Service) CreateArtist(ctx context.Context, storeID, name string) (booking.Artist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return booking.Artist{}, fmt.Errorf("name is required")
	}
	if _, err := s.store.GetStore(ctx, storeID); err != nil {
		return booking.Artist{}, fmt.Errorf("store validation failed: %w", err)
	}
	a, err := s.store.CreateArtist(ctx, booking.Artist{StoreID: storeID, Name: name, Active: true})
	if err != nil {
		return booking.Artist{}, err
	}
	s.log.WithField("artist_id", a.ID).WithField("store_id", storeID).Info("artist created")
	return a, nil
}

// ListArtists returns artists, optionally scoped to one store.
func (s *Service) ListArtists(ctx context.Context, storeID string) ([]booking.Artist, error) {
	return s.store.ListArtists(ctx, storeID)
}

// Schedule books an appointment. The artist must exist, be active, belong to
// the requested store, and be free for the whole requested window; bookings
// against an occupied window are rejected with an error so the caller can
// tell the user to pick another time.
func (s *Service) Schedule(ctx context.Context, req booking.Request) (booking.Appointment, error) {
	req.AccountID = strings.TrimSpace(req.AccountID)
	if req.AccountID == "" {
		return booking.Appointment{}, fmt.Errorf("account_id is required")
	}
	if s.accounts != nil {
		if _, err := s.accounts.GetAccount(ctx, req.AccountID); err != nil {
			return booking.Appointment{}, fmt.Errorf("account validation failed: %w", err)
		}
	}

	artist, err := s.store.GetArtist(ctx, req.ArtistID)
	if err != nil {
		return booking.Appointment{}, fmt.Errorf("artist validation failed: %w", err)
	}
	if !artist.Active {
		return booking.Appointment{}, fmt.Errorf("artist %s is not taking bookings", artist.ID)
	}
	if req.StoreID == "" {
		req.StoreID = artist.StoreID
	} else if req.StoreID != artist.StoreID {
		return booking.Appointment{}, fmt.Errorf("artist %s does not work at store %s", artist.ID, req.StoreID)
	}

	if req.StartsAt.IsZero() || req.StartsAt.Before(s.now()) {
		return booking.Appointment{}, fmt.Errorf("starts_at must be in the future")
	}
	if req.DurationMinutes <= 0 {
		req.DurationMinutes = defaultDurationMinutes
	}

	if err := s.checkArtistFree(ctx, req); err != nil {
		return booking.Appointment{}, err
	}

	appt, err := s.store.CreateAppointment(ctx, booking.Appointment{
		AccountID:       req.AccountID,
		StoreID:         req.StoreID,
		ArtistID:        req.ArtistID,
		StartsAt:        req.StartsAt.UTC(),
		DurationMinutes: req.DurationMinutes,
		Status:          booking.StatusScheduled,
		EntryIDs:        req.EntryIDs,
		Total:           req.Total,
		Note:            strings.TrimSpace(req.Note),
	})
	if err != nil {
		return booking.Appointment{}, err
	}

	metrics.RecordAppointment(booking.StatusScheduled)
	s.log.WithField("appointment_id", appt.ID).
		WithField("account_id", appt.AccountID).
		WithField("artist_id", appt.ArtistID).
		Info("appointment scheduled")
	return appt, nil
}

func (s *Service) checkArtistFree(ctx context.Context, req booking.Request) error {
	existing, err := s.store.ListArtistAppointments(ctx, req.ArtistID)
	if err != nil {
		return err
	}

	start := req.StartsAt.UTC()
	end := start.Add(time.Duration(req.DurationMinutes) * time.Minute)
	for _, appt := range existing {
		if appt.Status != booking.StatusScheduled {
			continue
		}
		otherEnd := appt.StartsAt.Add(time.Duration(appt.DurationMinutes) * time.Minute)
		if start.Before(otherEnd) && appt.StartsAt.Before(end) {
			return fmt.Errorf("artist %s is booked from %s to %s", req.ArtistID,
				appt.StartsAt.Format(time.RFC3339), otherEnd.Format(time.RFC3339))
		}
	}
	return nil
}

// Cancel marks a scheduled appointment cancelled.
func (s *Service) Cancel(ctx context.Context, id string) (booking.Appointment, error) {
	return s.transition(ctx, id, booking.StatusScheduled, booking.StatusCancelled)
}

// Complete marks a scheduled appointment completed.
func (s *Service) Complete(ctx context.Context, id string) (booking.Appointment, error) {
	return s.transition(ctx, id, booking.StatusScheduled, booking.StatusCompleted)
}

func (s *Service) transition(ctx context.Context, id, from, to string) (booking.Appointment, error) {
	appt, err := s.store.GetAppointment(ctx, id)
	if err != nil {
		return booking.Appointment{}, err
	}
	if appt.Status != from {
		return booking.Appointment{}, fmt.Errorf("appointment %s is %s, not %s", id, appt.Status, from)
	}
	appt.Status = to
	appt, err = s.store.UpdateAppointment(ctx, appt)
	if err != nil {
		return booking.Appointment{}, err
	}
	metrics.RecordAppointment(to)
	s.log.WithField("appointment_id", id).WithField("status", to).Info("appointment state changed")
	return appt, nil
}

// Get retrieves one appointment.
func (s *Service) Get(ctx context.Context, id string) (booking.Appointment, error) {
	return s.store.GetAppointment(ctx, id)
}

// List returns an account's appointments.
func (s *Service) List(ctx context.Context, accountID string) ([]booking.Appointment, error) {
	return s.store.ListAppointments(ctx, accountID)
}
