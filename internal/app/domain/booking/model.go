package booking

import "time"

// Appointment statuses.
const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Store is a physical salon location.
type Store struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Artist is a nail artist attached to a store.
type Artist struct {
	ID        string    `json:"id"`
	StoreID   string    `json:"store_id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Request carries everything needed to schedule an appointment, typically
// assembled by the checkout flow.
type Request struct {
	AccountID       string    `json:"account_id"`
	StoreID         string    `json:"store_id"`
	ArtistID        string    `json:"artist_id"`
	StartsAt        time.Time `json:"starts_at"`
	DurationMinutes int       `json:"duration_minutes"`
	EntryIDs        []string  `json:"entry_ids,omitempty"`
	Total           int64     `json:"total"`
	Note            string    `json:"note,omitempty"`
}

// Appointment is a scheduled visit. EntryIDs carries the checked-out cart
// selection as opaque identifiers; Total is the price agreed at checkout.
type Appointment struct {
	ID              string    `json:"id"`
	AccountID       string    `json:"account_id"`
	StoreID         string    `json:"store_id"`
	ArtistID        string    `json:"artist_id"`
	StartsAt        time.Time `json:"starts_at"`
	DurationMinutes int       `json:"duration_minutes"`
	Status          string    `json:"status"`
	EntryIDs        []string  `json:"entry_ids,omitempty"`
	Total           int64     `json:"total"`
	Note            string    `json:"note,omitempty"`
	Reminded        bool      `json:"reminded,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
