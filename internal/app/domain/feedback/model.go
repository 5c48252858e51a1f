package feedback

import "time"

// Rating bounds for submitted feedback.
const (
	MinRating = 1
	MaxRating = 5
)

// Feedback is a customer review, optionally tied to a finished appointment.
type Feedback struct {
	ID            string    `json:"id"`
	AccountID     string    `json:"account_id"`
	AppointmentID string    `json:"appointment_id,omitempty"`
	Rating        int       `json:"rating"`
	Comment       string    `json:"comment,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
