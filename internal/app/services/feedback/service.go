package feedback

import (
	"context"
	"fmt"
	"strings"

	"github.com/glosslab/salon-service/internal/app/domain/feedback"
	"github.com/glosslab/salon-service/internal/app/storage"
	"github.com/glosslab/salon-service/pkg/logger"
)

// Service accepts and lists customer feedback.
type Service struct {
	accounts storage.AccountStore
	bookings storage.BookingStore
	store    storage.FeedbackStore
	log      *logger.Logger
}

// New constructs a feedback service.
func New(accounts storage.AccountStore, bookings storage.BookingStore, store storage.FeedbackStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("feedback")
	}
	return &Service{
		accounts: accounts,
		bookings: bookings,
		store:    store,
		log:      log,
	}
}

// Submit records a review. The appointment reference is optional; when given
// it must belong to the submitting account.
func (s *Service) Submit(ctx context.Context, accountID, appointmentID string, rating int, comment string) (feedback.Feedback, error) {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return feedback.Feedback{}, fmt.Errorf("account_id is required")
	}
	if rating < feedback.MinRating || rating > feedback.MaxRating {
		return feedback.Feedback{}, fmt.Errorf("rating must be between %d and %d", feedback.MinRating, feedback.MaxRating)
	}
	if s.accounts != nil {
		if _, err := s.accounts.GetAccount(ctx, accountID); err != nil {
			return feedback.Feedback{}, fmt.Errorf("account validation failed: %w", err)
		}
	}

	appointmentID = strings.TrimSpace(appointmentID)
	if appointmentID != "" && s.bookings != nil {
		appt, err := s.bookings.GetAppointment(ctx, appointmentID)
		if err != nil {
			return feedback.Feedback{}, fmt.Errorf("appointment validation failed: %w", err)
		}
		if appt.AccountID != accountID {
			return feedback.Feedback{}, fmt.Errorf("appointment %s does not belong to account %s", appointmentID, accountID)
		}
	}

	fb, err := s.store.CreateFeedback(ctx, feedback.Feedback{
		AccountID:     accountID,
		AppointmentID: appointmentID,
		Rating:        rating,
		Comment:       strings.TrimSpace(comment),
	})
	if err != nil {
		return feedback.Feedback{}, err
	}
	s.log.WithField("account_id", accountID).WithField("rating", rating).Info("feedback submitted")
	return fb, nil
}

// List returns an account's feedback in submission order.
func (s *Service) List(ctx context.Context, accountID string) ([]feedback.Feedback, error) {
	return s.store.ListFeedback(ctx, accountID)
}
