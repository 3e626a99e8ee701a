// Package domain contains the core data types for the Driftboat booking backend.
// This package has no external dependencies beyond the standard library and is
// imported by every other internal package (repo, service, handler).
package domain

// Difficulty is the skill level a guided trip is pitched at.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "Beginner"
	DifficultyIntermediate Difficulty = "Intermediate"
	DifficultyAdvanced     Difficulty = "Advanced"
)

// Difficulties lists every valid Difficulty in display order.
var Difficulties = []Difficulty{DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced}

// Valid reports whether d is one of the known difficulty levels.
func (d Difficulty) Valid() bool {
	for _, known := range Difficulties {
		if d == known {
			return true
		}
	}
	return false
}

// Trip is a guided trip offered on the public site.
// Price is stored in minor currency units (cents) so arithmetic stays exact.
type Trip struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Duration    string     `json:"duration"` // free-text label, e.g. "4 Hours"
	Price       int64      `json:"price"`
	MaxGuests   int        `json:"maxGuests"`
	Difficulty  Difficulty `json:"difficulty"`
	Photos      []string   `json:"photos"`
	Equipment   []string   `json:"includedEquipment"`
	Location    string     `json:"location"`
	IsActive    bool       `json:"isActive"`
	CreatedAt   Timestamp  `json:"createdAt"`
	UpdatedAt   Timestamp  `json:"updatedAt"`
}

// PriceMajor returns the price in major currency units (dollars).
func (t Trip) PriceMajor() float64 {
	return float64(t.Price) / 100
}

// StatusLabel returns "active" or "inactive" for admin status filtering.
func (t Trip) StatusLabel() string {
	if t.IsActive {
		return TripStatusActive
	}
	return TripStatusInactive
}

// Trip status labels used by the admin status facet.
const (
	TripStatusActive   = "active"
	TripStatusInactive = "inactive"
)
