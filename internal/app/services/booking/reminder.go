package booking

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/glosslab/salon-service/internal/app/domain/booking"
	"github.com/glosslab/salon-service/internal/app/metrics"
	"github.com/glosslab/salon-service/internal/app/storage"
	"github.com/glosslab/salon-service/internal/app/system"
	"github.com/glosslab/salon-service/pkg/logger"
)

var _ system.Service = (*Reminder)(nil)

// Notifier delivers an upcoming-appointment reminder. Push delivery belongs
// to an external layer; the default notifier only logs.
type Notifier interface {
	Notify(ctx context.Context, appt booking.Appointment) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, appt booking.Appointment) error

func (f NotifierFunc) Notify(ctx context.Context, appt booking.Appointment) error {
	return f(ctx, appt)
}

// Reminder periodically scans for appointments starting soon and notifies
// each one once. It is a lifecycle-managed service driven by a cron schedule.
type Reminder struct {
	store    storage.BookingStore
	log      *logger.Logger
	schedule string
	window   time.Duration

	mu       sync.Mutex
	cron     *cron.Cron
	notifier Notifier
	running  bool
}

// NewReminder creates a reminder sweeper. The default schedule fires every
// minute and looks 24 hours ahead.
func NewReminder(store storage.BookingStore, log *logger.Logger) *Reminder {
	if log == nil {
		log = logger.NewDefault("booking-reminder")
	}
	return &Reminder{
		store:    store,
		log:      log,
		schedule: "@every 1m",
		window:   24 * time.Hour,
	}
}

// WithNotifier assigns the reminder delivery hook.
func (r *Reminder) WithNotifier(n Notifier) {
	r.mu.Lock()
	r.notifier = n
	r.mu.Unlock()
}

// WithSchedule overrides the cron schedule. Call before Start.
func (r *Reminder) WithSchedule(schedule string) {
	r.mu.Lock()
	r.schedule = schedule
	r.mu.Unlock()
}

func (r *Reminder) Name() string { return "booking-reminder" }

func (r *Reminder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(r.schedule, func() { r.sweep(context.Background()) }); err != nil {
		return err
	}
	c.Start()
	r.cron = c
	r.running = true

	r.log.WithField("schedule", r.schedule).Info("booking reminder started")
	return nil
}

func (r *Reminder) Stop(ctx context.Context) error {
	r.mu.Lock()
	c := r.cron
	r.cron = nil
	r.running = false
	r.mu.Unlock()

	if c == nil {
		return nil
	}

	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	r.log.Info("booking reminder stopped")
	return nil
}

// sweep notifies scheduled appointments starting within the window that have
// not been reminded yet.
func (r *Reminder) sweep(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	now := time.Now().UTC()
	upcoming, err := r.store.ListAppointmentsBetween(ctx, now, now.Add(r.window))
	if err != nil {
		r.log.WithError(err).Warn("reminder sweep failed")
		return
	}

	r.mu.Lock()
	notifier := r.notifier
	r.mu.Unlock()

	for _, appt := range upcoming {
		if appt.Status != booking.StatusScheduled || appt.Reminded {
			continue
		}
		if notifier != nil {
			if err := notifier.Notify(ctx, appt); err != nil {
				r.log.WithError(err).WithField("appointment_id", appt.ID).Warn("reminder delivery failed")
				continue
			}
		} else {
			r.log.WithField("appointment_id", appt.ID).
				WithField("starts_at", appt.StartsAt).
				Info("appointment reminder due")
		}

		appt.Reminded = true
		if _, err := r.store.UpdateAppointment(ctx, appt); err != nil {
			r.log.WithError(err).WithField("appointment_id", appt.ID).Warn("reminder flag not persisted")
			continue
		}
		metrics.RecordReminder()
	}
}
