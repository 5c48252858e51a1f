package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/glosslab/salon-service/internal/app/services/accounts"
	bookingsvc "github.com/glosslab/salon-service/internal/app/services/booking"
	cartsvc "github.com/glosslab/salon-service/internal/app/services/cart"
	catalogsvc "github.com/glosslab/salon-service/internal/app/services/catalog"
	feedbacksvc "github.com/glosslab/salon-service/internal/app/services/feedback"
	"github.com/glosslab/salon-service/internal/app/storage"
	"github.com/glosslab/salon-service/internal/app/storage/memory"
	"github.com/glosslab/salon-service/internal/app/system"
	"github.com/glosslab/salon-service/internal/httputil"
	"github.com/glosslab/salon-service/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Accounts storage.AccountStore
	Designs  storage.DesignStore
	Cart     storage.CartStore
	Bookings storage.BookingStore
	Feedback storage.FeedbackStore
}

// Options carries deployment settings for the assembled services. The zero
// value selects local metadata resolution and the default reminder schedule.
type Options struct {
	MetadataURL      string
	MetadataKey      string
	ReminderSchedule string
}

// Application ties domain services together and manages their lifecycle.
type Application struct {
	manager *system.Manager
	log     *logger.Logger

	Accounts *accounts.Service
	Catalog  *catalogsvc.Service
	Cart     *cartsvc.Service
	Bookings *bookingsvc.Service
	Feedback *feedbacksvc.Service
}

// New builds a fully initialised application with the provided stores.
func New(stores Stores, opts Options, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}

	mem := memory.New()
	if stores.Accounts == nil {
		stores.Accounts = mem
	}
	if stores.Designs == nil {
		stores.Designs = mem
	}
	if stores.Cart == nil {
		stores.Cart = mem
	}
	if stores.Bookings == nil {
		stores.Bookings = mem
	}
	if stores.Feedback == nil {
		stores.Feedback = mem
	}

	manager := system.NewManager()

	acctService := accounts.New(stores.Accounts, log)
	catalogService := catalogsvc.New(stores.Designs, log)

	var resolver catalogsvc.MetadataResolver = catalogService
	if endpoint := strings.TrimSpace(opts.MetadataURL); endpoint != "" {
		remote, err := catalogsvc.NewHTTPResolver(httputil.ClientConfig{
			BaseURL: endpoint,
			APIKey:  opts.MetadataKey,
			Timeout: 10 * time.Second,
		}, log)
		if err != nil {
			log.WithError(err).Warn("configure design metadata resolver")
		} else {
			resolver = remote
		}
	}

	cartService := cartsvc.New(stores.Accounts, stores.Cart, resolver, log)
	bookingService := bookingsvc.New(stores.Accounts, stores.Bookings, log)
	feedbackService := feedbacksvc.New(stores.Accounts, stores.Bookings, stores.Feedback, log)

	cartService.AttachBooker(bookingService)
	cartService.AttachEstimator(catalogService)

	for _, name := range []string{"accounts", "catalog", "cart", "bookings", "feedback"} {
		if err := manager.Register(system.NoopService{ServiceName: name}); err != nil {
			return nil, fmt.Errorf("register %s service: %w", name, err)
		}
	}

	reminder := bookingsvc.NewReminder(stores.Bookings, log)
	if schedule := strings.TrimSpace(opts.ReminderSchedule); schedule != "" {
		reminder.WithSchedule(schedule)
	}
	if err := manager.Register(reminder); err != nil {
		return nil, fmt.Errorf("register %s: %w", reminder.Name(), err)
	}

	return &Application{
		manager:  manager,
		log:      log,
		Accounts: acctService,
		Catalog:  catalogService,
		Cart:     cartService,
		Bookings: bookingService,
		Feedback: feedbackService,
	}, nil
}

// Attach registers an additional lifecycle-managed service. Call before Start.
func (a *Application) Attach(service system.Service) error {
	return a.manager.Register(service)
}

// Start begins all registered services.
func (a *Application) Start(ctx context.Context) error {
	return a.manager.Start(ctx)
}

// Stop stops all services.
func (a *Application) Stop(ctx context.Context) error {
	return a.manager.Stop(ctx)
}
