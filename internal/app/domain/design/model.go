package design

import "time"

// Design is a nail design in the catalog. Its name and thumbnail are the
// display metadata other screens resolve per design identifier.
type Design struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	Description  string    `json:"description,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Service is one bookable service offered for a design, e.g. a gel finish of
// that design. Price is in minor currency units.
type Service struct {
	ID              string    `json:"id"`
	DesignID        string    `json:"design_id"`
	Name            string    `json:"name"`
	Price           int64     `json:"price"`
	DurationMinutes int       `json:"duration_minutes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
