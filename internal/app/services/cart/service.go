package cart

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/glosslab/salon-service/internal/app/domain/booking"
	cartdomain "github.com/glosslab/salon-service/internal/app/domain/cart"
	"github.com/glosslab/salon-service/internal/app/metrics"
	"github.com/glosslab/salon-service/internal/app/services/catalog"
	"github.com/glosslab/salon-service/internal/app/storage"
	"github.com/glosslab/salon-service/pkg/logger"
)

// Fallback per-entry duration when no estimator is attached.
const defaultEntryMinutes = 30

// Booker schedules the appointment that a checkout produces. Implemented by
// the booking service; declared here so the cart service does not import it.
type Booker interface {
	Schedule(ctx context.Context, req booking.Request) (booking.Appointment, error)
}

// DurationEstimator predicts how long the selected work will take. The remote
// estimation service is optional; checkout falls back to a flat per-entry
// estimate when it is absent or failing.
type DurationEstimator interface {
	EstimateDuration(ctx context.Context, entries []cartdomain.Entry) (int, error)
}

// View is the cart state handed to display screens: the raw snapshot, its
// grouped form, the current checkout selection and both totals.
type View struct {
	Entries        []cartdomain.Entry   `json:"entries"`
	Groups         []cartdomain.Group   `json:"groups"`
	Selection      cartdomain.Selection `json:"selection"`
	CartTotal      int64                `json:"cart_total"`
	SelectionTotal int64                `json:"selection_total"`
}

// Service owns server-side cart sessions. Persistence of entries belongs to
// the CartStore; the checkout selection is per-session state held here and
// mutated only through the pure selection operations, so the slot invariant
// is upheld by construction.
type Service struct {
	accounts storage.AccountStore
	store    storage.CartStore
	resolver catalog.MetadataResolver
	log      *logger.Logger

	booker    Booker
	estimator DurationEstimator

	mu         sync.Mutex
	selections map[string]cartdomain.Selection
}

// New constructs a cart service.
func New(accounts storage.AccountStore, store storage.CartStore, resolver catalog.MetadataResolver, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("cart")
	}
	return &Service{
		accounts:   accounts,
		store:      store,
		resolver:   resolver,
		log:        log,
		selections: make(map[string]cartdomain.Selection),
	}
}

// AttachBooker wires the checkout target. Call before serving traffic.
func (s *Service) AttachBooker(b Booker) { s.booker = b }

// AttachEstimator wires the optional duration estimator.
func (s *Service) AttachEstimator(e DurationEstimator) { s.estimator = e }

func (s *Service) selection(accountID string) cartdomain.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selections[accountID]
}

func (s *Service) setSelection(accountID string, sel cartdomain.Selection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(sel) == 0 {
		delete(s.selections, accountID)
		return
	}
	s.selections[accountID] = sel
}

// AddEntry puts one design-service-position unit into the account's cart.
func (s *Service) AddEntry(ctx context.Context, accountID, designID, serviceName string, servicePrice int64, fingerPosition int, leftHand bool) (cartdomain.Entry, error) {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return cartdomain.Entry{}, fmt.Errorf("account_id is required")
	}
	if s.accounts != nil {
		if _, err := s.accounts.GetAccount(ctx, accountID); err != nil {
			return cartdomain.Entry{}, fmt.Errorf("account validation failed: %w", err)
		}
	}

	entry := cartdomain.Entry{
		AccountID:      accountID,
		DesignID:       strings.TrimSpace(designID),
		ServiceName:    strings.TrimSpace(serviceName),
		ServicePrice:   servicePrice,
		FingerPosition: fingerPosition,
		LeftHand:       leftHand,
	}
	probe := entry
	probe.ID = "pending"
	if err := probe.Validate(); err != nil {
		return cartdomain.Entry{}, err
	}

	entry, err := s.store.AddCartEntry(ctx, entry)
	if err != nil {
		return cartdomain.Entry{}, err
	}
	s.log.WithField("account_id", accountID).
		WithField("entry_id", entry.ID).
		WithField("design_id", entry.DesignID).
		Info("cart entry added")
	return entry, nil
}

// Snapshot returns the current cart view. Metadata resolution is best-effort:
// designs the resolver cannot answer for surface as pending groups, and a
// later Snapshot call picks them up without disturbing the selection.
func (s *Service) Snapshot(ctx context.Context, accountID string) (View, error) {
	entries, err := s.store.ListCartEntries(ctx, accountID)
	if err != nil {
		return View{}, err
	}

	var metadata map[string]cartdomain.Metadata
	if s.resolver != nil && len(entries) > 0 {
		ids := make([]string, 0, len(entries))
		for _, e := range entries {
			ids = append(ids, e.DesignID)
		}
		metadata, err = s.resolver.ResolveMetadata(ctx, ids)
		if err != nil {
			s.log.WithError(err).WithField("account_id", accountID).Warn("metadata resolution failed; groups pending")
			metadata = nil
		}
	}

	sel := s.pruneSelection(accountID, entries)
	return View{
		Entries:        entries,
		Groups:         cartdomain.BuildGroups(entries, metadata),
		Selection:      sel,
		CartTotal:      cartdomain.TotalPrice(entries),
		SelectionTotal: cartdomain.TotalPrice(sel),
	}, nil
}

// pruneSelection drops selected entries that no longer exist in the store
// snapshot, so a deletion that raced a stale screen cannot resurrect at
// checkout.
func (s *Service) pruneSelection(accountID string, entries []cartdomain.Entry) cartdomain.Selection {
	sel := s.selection(accountID)
	if len(sel) == 0 {
		return sel
	}

	live := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		live[e.ID] = struct{}{}
	}
	kept := make(cartdomain.Selection, 0, len(sel))
	for _, e := range sel {
		if _, ok := live[e.ID]; ok {
			kept = append(kept, e)
		}
	}
	if len(kept) != len(sel) {
		s.setSelection(accountID, kept)
	}
	return kept
}

// Toggle flips the checkout selection state of a cart entry. A toggle against
// an entry no longer in the cart, or against an occupied slot, leaves the
// selection unchanged; neither case is an error.
func (s *Service) Toggle(ctx context.Context, accountID, entryID string) (cartdomain.Selection, error) {
	entries, err := s.store.ListCartEntries(ctx, accountID)
	if err != nil {
		return nil, err
	}

	var entry cartdomain.Entry
	found := false
	for _, e := range entries {
		if e.ID == entryID {
			entry = e
			found = true
			break
		}
	}

	sel := s.pruneSelection(accountID, entries)
	if !found {
		s.log.WithField("account_id", accountID).WithField("entry_id", entryID).Debug("toggle on stale entry ignored")
		return sel, nil
	}

	next := sel.Toggle(entry)
	if len(next) == len(sel) && !sel.Contains(entryID) {
		metrics.RecordSelectionConflict()
		s.log.WithField("account_id", accountID).
			WithField("entry_id", entryID).
			Debug("selection refused; slot occupied")
		return sel, nil
	}
	s.setSelection(accountID, next)
	return next, nil
}

// RemoveEntry deletes a cart entry outright, purging it from the selection as
// well. Removing an entry that is already gone is a no-op.
func (s *Service) RemoveEntry(ctx context.Context, accountID, entryID string) error {
	if err := s.store.DeleteCartEntry(ctx, accountID, entryID); err != nil {
		// Deletes may race a concurrent refresh; absent entries are fine.
		s.log.WithError(err).WithField("entry_id", entryID).Debug("cart entry already gone")
	}

	sel := s.selection(accountID)
	if sel.Contains(entryID) {
		_, sel = cartdomain.RemoveEntry(nil, sel, entryID)
		s.setSelection(accountID, sel)
	}
	return nil
}

// ClearSelection resets the account's checkout selection.
func (s *Service) ClearSelection(accountID string) {
	s.setSelection(accountID, nil)
}

// Checkout books the selected entries as an appointment, then empties the
// cart and the selection. The selection must be non-empty.
func (s *Service) Checkout(ctx context.Context, accountID, storeID, artistID string, startsAt time.Time, note string) (booking.Appointment, error) {
	if s.booker == nil {
		return booking.Appointment{}, fmt.Errorf("booking service not attached")
	}

	entries, err := s.store.ListCartEntries(ctx, accountID)
	if err != nil {
		return booking.Appointment{}, err
	}
	sel := s.pruneSelection(accountID, entries)
	if len(sel) == 0 {
		return booking.Appointment{}, fmt.Errorf("selection is empty")
	}

	duration := 0
	if s.estimator != nil {
		if est, err := s.estimator.EstimateDuration(ctx, sel); err != nil {
			s.log.WithError(err).Warn("duration estimation failed; using fallback")
		} else {
			duration = est
		}
	}
	if duration <= 0 {
		duration = defaultEntryMinutes * len(sel)
	}

	appt, err := s.booker.Schedule(ctx, booking.Request{
		AccountID:       accountID,
		StoreID:         storeID,
		ArtistID:        artistID,
		StartsAt:        startsAt,
		DurationMinutes: duration,
		EntryIDs:        sel.IDs(),
		Total:           cartdomain.TotalPrice(sel),
		Note:            note,
	})
	if err != nil {
		return booking.Appointment{}, err
	}

	if err := s.store.ClearCart(ctx, accountID); err != nil {
		s.log.WithError(err).WithField("account_id", accountID).Warn("cart not cleared after checkout")
	}
	s.setSelection(accountID, nil)

	metrics.RecordCheckout(appt.Total)
	s.log.WithField("account_id", accountID).
		WithField("appointment_id", appt.ID).
		WithField("total", appt.Total).
		Info("checkout completed")
	return appt, nil
}
