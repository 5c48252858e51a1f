package cart

import (
	"fmt"
	"time"
)

// Finger positions are numbered thumb to pinky on each hand.
const (
	MinFingerPosition = 0
	MaxFingerPosition = 4
)

// Entry is one addable unit in a cart: a specific service rendered on a
// specific nail design, at a specific finger position and hand side. Entries
// are read-only once fetched; price and name never change client-side.
type Entry struct {
	ID             string    `json:"id"`
	AccountID      string    `json:"account_id,omitempty"`
	DesignID       string    `json:"design_id"`
	ServiceName    string    `json:"service_name"`
	ServicePrice   int64     `json:"service_price"`
	FingerPosition int       `json:"finger_position"`
	LeftHand       bool      `json:"left_hand"`
	AddedAt        time.Time `json:"added_at,omitempty"`
}

// Slot identifies the finger an entry occupies. A checkout selection holds at
// most one entry per slot, regardless of which design the entries belong to.
type Slot struct {
	FingerPosition int  `json:"finger_position"`
	LeftHand       bool `json:"left_hand"`
}

// Slot returns the slot this entry occupies.
func (e Entry) Slot() Slot {
	return Slot{FingerPosition: e.FingerPosition, LeftHand: e.LeftHand}
}

// Validate reports malformed entries. Normal cart operations never reject an
// entry; validation belongs at the boundary where entries are created.
func (e Entry) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("entry id is required")
	}
	if e.DesignID == "" {
		return fmt.Errorf("design id is required")
	}
	if e.FingerPosition < MinFingerPosition || e.FingerPosition > MaxFingerPosition {
		return fmt.Errorf("finger position %d out of range [%d,%d]", e.FingerPosition, MinFingerPosition, MaxFingerPosition)
	}
	if e.ServicePrice < 0 {
		return fmt.Errorf("service price must not be negative")
	}
	return nil
}

// Metadata carries the display attributes of a design, resolved from the
// catalog after the cart snapshot is fetched.
type Metadata struct {
	DisplayName  string `json:"display_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// Group aggregates the cart entries sharing a design. Metadata resolution is
// asynchronous, so a group may be emitted with Pending set and zero-valued
// Metadata; callers render it as unknown until a later rebuild fills it in.
type Group struct {
	DesignID string   `json:"design_id"`
	Metadata Metadata `json:"metadata"`
	Pending  bool     `json:"pending"`
	Entries  []Entry  `json:"entries"`
}
