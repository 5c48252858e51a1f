package storage

import (
	"context"
	"time"

	"github.com/glosslab/salon-service/internal/app/domain/account"
	"github.com/glosslab/salon-service/internal/app/domain/booking"
	"github.com/glosslab/salon-service/internal/app/domain/cart"
	"github.com/glosslab/salon-service/internal/app/domain/design"
	"github.com/glosslab/salon-service/internal/app/domain/feedback"
)

// AccountStore persists customer profiles.
type AccountStore interface {
	CreateAccount(ctx context.Context, acct account.Account) (account.Account, error)
	UpdateAccount(ctx context.Context, acct account.Account) (account.Account, error)
	GetAccount(ctx context.Context, id string) (account.Account, error)
	ListAccounts(ctx context.Context) ([]account.Account, error)
	DeleteAccount(ctx context.Context, id string) error
}

// DesignStore persists the design catalog and per-design services.
type DesignStore interface {
	CreateDesign(ctx context.Context, d design.Design) (design.Design, error)
	UpdateDesign(ctx context.Context, d design.Design) (design.Design, error)
	GetDesign(ctx context.Context, id string) (design.Design, error)
	ListDesigns(ctx context.Context) ([]design.Design, error)

	CreateDesignService(ctx context.Context, svc design.Service) (design.Service, error)
	GetDesignService(ctx context.Context, id string) (design.Service, error)
	ListDesignServices(ctx context.Context, designID string) ([]design.Service, error)
}

// CartStore persists cart entries per account. Entries are immutable once
// added; the only mutations are add, delete and clear.
type CartStore interface {
	AddCartEntry(ctx context.Context, entry cart.Entry) (cart.Entry, error)
	ListCartEntries(ctx context.Context, accountID string) ([]cart.Entry, error)
	DeleteCartEntry(ctx context.Context, accountID, entryID string) error
	ClearCart(ctx context.Context, accountID string) error
}

// BookingStore persists stores, artists and appointments.
type BookingStore interface {
	CreateStore(ctx context.Context, st booking.Store) (booking.Store, error)
	GetStore(ctx context.Context, id string) (booking.Store, error)
	ListStores(ctx context.Context) ([]booking.Store, error)

	CreateArtist(ctx context.Context, a booking.Artist) (booking.Artist, error)
	GetArtist(ctx context.Context, id string) (booking.Artist, error)
	ListArtists(ctx context.Context, storeID string) ([]booking.Artist, error)

	CreateAppointment(ctx context.Context, appt booking.Appointment) (booking.Appointment, error)
	UpdateAppointment(ctx context.Context, appt booking.Appointment) (booking.Appointment, error)
	GetAppointment(ctx context.Context, id string) (booking.Appointment, error)
	ListAppointments(ctx context.Context, accountID string) ([]booking.Appointment, error)
	ListArtistAppointments(ctx context.Context, artistID string) ([]booking.Appointment, error)
	ListAppointmentsBetween(ctx context.Context, from, until time.Time) ([]booking.Appointment, error)
}

// FeedbackStore persists customer feedback.
type FeedbackStore interface {
	CreateFeedback(ctx context.Context, fb feedback.Feedback) (feedback.Feedback, error)
	ListFeedback(ctx context.Context, accountID string) ([]feedback.Feedback, error)
}
