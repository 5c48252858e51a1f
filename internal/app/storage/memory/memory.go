package memory

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/glosslab/salon-service/internal/app/domain/account"
	"github.com/glosslab/salon-service/internal/app/domain/booking"
	"github.com/glosslab/salon-service/internal/app/domain/cart"
	"github.com/glosslab/salon-service/internal/app/domain/design"
	"github.com/glosslab/salon-service/internal/app/domain/feedback"
	"github.com/glosslab/salon-service/internal/app/storage"
)

// Store is an in-memory implementation of the storage interfaces. It is safe
// for concurrent use and is primarily intended for tests and local
// development. Missing records yield errors wrapping sql.ErrNoRows, matching
// the postgres store.
type Store struct {
	mu             sync.RWMutex
	nextID         int64
	accounts       map[string]account.Account
	designs        map[string]design.Design
	designOrder    []string
	designServices map[string]design.Service
	cartEntries    map[string][]cart.Entry
	stores         map[string]booking.Store
	storeOrder     []string
	artists        map[string]booking.Artist
	artistOrder    []string
	appointments   map[string]booking.Appointment
	feedback       map[string][]feedback.Feedback
}

var _ storage.AccountStore = (*Store)(nil)
var _ storage.DesignStore = (*Store)(nil)
var _ storage.CartStore = (*Store)(nil)
var _ storage.BookingStore = (*Store)(nil)
var _ storage.FeedbackStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		nextID:         1,
		accounts:       make(map[string]account.Account),
		designs:        make(map[string]design.Design),
		designServices: make(map[string]design.Service),
		cartEntries:    make(map[string][]cart.Entry),
		stores:         make(map[string]booking.Store),
		artists:        make(map[string]booking.Artist),
		appointments:   make(map[string]booking.Appointment),
		feedback:       make(map[string][]feedback.Feedback),
	}
}

func (s *Store) nextIDLocked() string {
	id := s.nextID
	s.nextID++
	return fmt.Sprintf("%d", id)
}

// AccountStore implementation -------------------------------------------------

func (s *Store) CreateAccount(_ context.Context, acct account.Account) (account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if acct.ID == "" {
		acct.ID = s.nextIDLocked()
	} else if _, exists := s.accounts[acct.ID]; exists {
		return account.Account{}, fmt.Errorf("account %s already exists", acct.ID)
	}

	now := time.Now().UTC()
	acct.CreatedAt = now
	acct.UpdatedAt = now
	acct.Metadata = copyMap(acct.Metadata)

	s.accounts[acct.ID] = acct
	return cloneAccount(acct), nil
}

func (s *Store) UpdateAccount(_ context.Context, acct account.Account) (account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.accounts[acct.ID]
	if !ok {
		return account.Account{}, fmt.Errorf("account %s not found: %w", acct.ID, sql.ErrNoRows)
	}

	acct.CreatedAt = original.CreatedAt
	acct.UpdatedAt = time.Now().UTC()
	acct.Metadata = copyMap(acct.Metadata)

	s.accounts[acct.ID] = acct
	return cloneAccount(acct), nil
}

func (s *Store) GetAccount(_ context.Context, id string) (account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acct, ok := s.accounts[id]
	if !ok {
		return account.Account{}, fmt.Errorf("account %s not found: %w", id, sql.ErrNoRows)
	}
	return cloneAccount(acct), nil
}

func (s *Store) ListAccounts(_ context.Context) ([]account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]account.Account, 0, len(s.accounts))
	for _, acct := range s.accounts {
		result = append(result, cloneAccount(acct))
	}
	return result, nil
}

func (s *Store) DeleteAccount(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[id]; !ok {
		return fmt.Errorf("account %s not found: %w", id, sql.ErrNoRows)
	}
	delete(s.accounts, id)
	delete(s.cartEntries, id)
	delete(s.feedback, id)
	return nil
}

// DesignStore implementation --------------------------------------------------

func (s *Store) CreateDesign(_ context.Context, d design.Design) (design.Design, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d.ID == "" {
		d.ID = s.nextIDLocked()
	} else if _, exists := s.designs[d.ID]; exists {
		return design.Design{}, fmt.Errorf("design %s already exists", d.ID)
	}

	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now
	d.Tags = append([]string(nil), d.Tags...)

	s.designs[d.ID] = d
	s.designOrder = append(s.designOrder, d.ID)
	return cloneDesign(d), nil
}

func (s *Store) UpdateDesign(_ context.Context, d design.Design) (design.Design, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.designs[d.ID]
	if !ok {
		return design.Design{}, fmt.Errorf("design %s not found: %w", d.ID, sql.ErrNoRows)
	}

	d.CreatedAt = original.CreatedAt
	d.UpdatedAt = time.Now().UTC()
	d.Tags = append([]string(nil), d.Tags...)

	s.designs[d.ID] = d
	return cloneDesign(d), nil
}

func (s *Store) GetDesign(_ context.Context, id string) (design.Design, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.designs[id]
	if !ok {
		return design.Design{}, fmt.Errorf("design %s not found: %w", id, sql.ErrNoRows)
	}
	return cloneDesign(d), nil
}

func (s *Store) ListDesigns(_ context.Context) ([]design.Design, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]design.Design, 0, len(s.designOrder))
	for _, id := range s.designOrder {
		if d, ok := s.designs[id]; ok {
			result = append(result, cloneDesign(d))
		}
	}
	return result, nil
}

func (s *Store) CreateDesignService(_ context.Context, svc design.Service) (design.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.designs[svc.DesignID]; !ok {
		return design.Service{}, fmt.Errorf("design %s not found: %w", svc.DesignID, sql.ErrNoRows)
	}
	if svc.ID == "" {
		svc.ID = s.nextIDLocked()
	} else if _, exists := s.designServices[svc.ID]; exists {
		return design.Service{}, fmt.Errorf("design service %s already exists", svc.ID)
	}

	now := time.Now().UTC()
	svc.CreatedAt = now
	svc.UpdatedAt = now

	s.designServices[svc.ID] = svc
	return svc, nil
}

func (s *Store) GetDesignService(_ context.Context, id string) (design.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	svc, ok := s.designServices[id]
	if !ok {
		return design.Service{}, fmt.Errorf("design service %s not found: %w", id, sql.ErrNoRows)
	}
	return svc, nil
}

func (s *Store) ListDesignServices(_ context.Context, designID string) ([]design.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]design.Service, 0)
	for _, svc := range s.designServices {
		if designID == "" || svc.DesignID == designID {
			result = append(result, svc)
		}
	}
	return result, nil
}

// CartStore implementation ----------------------------------------------------

func (s *Store) AddCartEntry(_ context.Context, entry cart.Entry) (cart.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.AccountID == "" {
		return cart.Entry{}, fmt.Errorf("account id is required")
	}
	if entry.ID == "" {
		entry.ID = s.nextIDLocked()
	} else {
		for _, e := range s.cartEntries[entry.AccountID] {
			if e.ID == entry.ID {
				return cart.Entry{}, fmt.Errorf("cart entry %s already exists", entry.ID)
			}
		}
	}
	entry.AddedAt = time.Now().UTC()

	s.cartEntries[entry.AccountID] = append(s.cartEntries[entry.AccountID], entry)
	return entry, nil
}

func (s *Store) ListCartEntries(_ context.Context, accountID string) ([]cart.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.cartEntries[accountID]
	result := make([]cart.Entry, len(entries))
	copy(result, entries)
	return result, nil
}

func (s *Store) DeleteCartEntry(_ context.Context, accountID, entryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cartEntries[accountID]
	for i, e := range entries {
		if e.ID == entryID {
			s.cartEntries[accountID] = append(entries[:i:i], entries[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("cart entry %s not found: %w", entryID, sql.ErrNoRows)
}

func (s *Store) ClearCart(_ context.Context, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.cartEntries, accountID)
	return nil
}

// BookingStore implementation -------------------------------------------------

func (s *Store) CreateStore(_ context.Context, st booking.Store) (booking.Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st.ID == "" {
		st.ID = s.nextIDLocked()
	} else if _, exists := s.stores[st.ID]; exists {
		return booking.Store{}, fmt.Errorf("store %s already exists", st.ID)
	}

	now := time.Now().UTC()
	st.CreatedAt = now
	st.UpdatedAt = now

	s.stores[st.ID] = st
	s.storeOrder = append(s.storeOrder, st.ID)
	return st, nil
}

func (s *Store) GetStore(_ context.Context, id string) (booking.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.stores[id]
	if !ok {
		return booking.Store{}, fmt.Errorf("store %s not found: %w", id, sql.ErrNoRows)
	}
	return st, nil
}

func (s *Store) ListStores(_ context.Context) ([]booking.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]booking.Store, 0, len(s.storeOrder))
	for _, id := range s.storeOrder {
		if st, ok := s.stores[id]; ok {
			result = append(result, st)
		}
	}
	return result, nil
}

func (s *Store) CreateArtist(_ context.Context, a booking.Artist) (booking.Artist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.stores[a.StoreID]; !ok {
		return booking.Artist{}, fmt.Errorf("store %s not found: %w", a.StoreID, sql.ErrNoRows)
	}
	if a.ID == "" {
		a.ID = s.nextIDLocked()
	} else if _, exists := s.artists[a.ID]; exists {
		return booking.Artist{}, fmt.Errorf("artist %s already exists", a.ID)
	}

	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	s.artists[a.ID] = a
	s.artistOrder = append(s.artistOrder, a.ID)
	return a, nil
}

func (s *Store) GetArtist(_ context.Context, id string) (booking.Artist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.artists[id]
	if !ok {
		return booking.Artist{}, fmt.Errorf("artist %s not found: %w", id, sql.ErrNoRows)
	}
	return a, nil
}

func (s *Store) ListArtists(_ context.Context, storeID string) ([]booking.Artist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]booking.Artist, 0)
	for _, id := range s.artistOrder {
		a, ok := s.artists[id]
		if !ok {
			continue
		}
		if storeID == "" || a.StoreID == storeID {
			result = append(result, a)
		}
	}
	return result, nil
}

func (s *Store) CreateAppointment(_ context.Context, appt booking.Appointment) (booking.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if appt.ID == "" {
		appt.ID = s.nextIDLocked()
	} else if _, exists := s.appointments[appt.ID]; exists {
		return booking.Appointment{}, fmt.Errorf("appointment %s already exists", appt.ID)
	}

	now := time.Now().UTC()
	appt.CreatedAt = now
	appt.UpdatedAt = now
	appt.EntryIDs = append([]string(nil), appt.EntryIDs...)

	s.appointments[appt.ID] = appt
	return cloneAppointment(appt), nil
}

func (s *Store) UpdateAppointment(_ context.Context, appt booking.Appointment) (booking.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.appointments[appt.ID]
	if !ok {
		return booking.Appointment{}, fmt.Errorf("appointment %s not found: %w", appt.ID, sql.ErrNoRows)
	}

	appt.CreatedAt = original.CreatedAt
	appt.UpdatedAt = time.Now().UTC()
	appt.EntryIDs = append([]string(nil), appt.EntryIDs...)

	s.appointments[appt.ID] = appt
	return cloneAppointment(appt), nil
}

func (s *Store) GetAppointment(_ context.Context, id string) (booking.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	appt, ok := s.appointments[id]
	if !ok {
		return booking.Appointment{}, fmt.Errorf("appointment %s not found: %w", id, sql.ErrNoRows)
	}
	return cloneAppointment(appt), nil
}

func (s *Store) ListAppointments(_ context.Context, accountID string) ([]booking.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]booking.Appointment, 0)
	for _, appt := range s.appointments {
		if accountID == "" || appt.AccountID == accountID {
			result = append(result, cloneAppointment(appt))
		}
	}
	return result, nil
}

func (s *Store) ListArtistAppointments(_ context.Context, artistID string) ([]booking.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]booking.Appointment, 0)
	for _, appt := range s.appointments {
		if appt.ArtistID == artistID {
			result = append(result, cloneAppointment(appt))
		}
	}
	return result, nil
}

func (s *Store) ListAppointmentsBetween(_ context.Context, from, until time.Time) ([]booking.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]booking.Appointment, 0)
	for _, appt := range s.appointments {
		if !appt.StartsAt.Before(from) && appt.StartsAt.Before(until) {
			result = append(result, cloneAppointment(appt))
		}
	}
	return result, nil
}

// FeedbackStore implementation ------------------------------------------------

func (s *Store) CreateFeedback(_ context.Context, fb feedback.Feedback) (feedback.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if fb.ID == "" {
		fb.ID = s.nextIDLocked()
	}
	fb.CreatedAt = time.Now().UTC()

	s.feedback[fb.AccountID] = append(s.feedback[fb.AccountID], fb)
	return fb, nil
}

func (s *Store) ListFeedback(_ context.Context, accountID string) ([]feedback.Feedback, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := s.feedback[accountID]
	result := make([]feedback.Feedback, len(items))
	copy(result, items)
	return result, nil
}

// Helpers ---------------------------------------------------------------------

func copyMap(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func cloneAccount(acct account.Account) account.Account {
	acct.Metadata = copyMap(acct.Metadata)
	return acct
}

func cloneDesign(d design.Design) design.Design {
	d.Tags = append([]string(nil), d.Tags...)
	return d
}

func cloneAppointment(appt booking.Appointment) booking.Appointment {
	appt.EntryIDs = append([]string(nil), appt.EntryIDs...)
	return appt
}
