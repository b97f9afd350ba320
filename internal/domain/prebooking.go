package domain

import "time"

// SelectedOption references a priced add-on line item by catalog code.
type SelectedOption struct {
	Code     string `json:"code"`
	Quantity int    `json:"quantity"`
}

// Itinerary is the flight detail snapshot captured at lock time.
type Itinerary struct {
	Origin        string     `json:"origin"`
	Destination   string     `json:"destination"`
	DepartureDate time.Time  `json:"departure_date"`
	ReturnDate    *time.Time `json:"return_date,omitempty"`
	Carrier       string     `json:"carrier"`
	FareClass     string     `json:"fare_class"`
}

// Prebooking is a server-issued, time-boxed lock on a computed price.
// Read-only after creation; a renewed lock is a new Prebooking.
type Prebooking struct {
	ID               string           `json:"prebooking_id"`
	BookingReference string           `json:"booking_reference"`
	FareQuoteRef     string           `json:"fare_quote_ref"`
	PassengerCount   int              `json:"passenger_count"`
	Options          []SelectedOption `json:"options,omitempty"`
	Itinerary        Itinerary        `json:"itinerary"`
	Price            PriceBreakdown   `json:"price_breakdown"`
	CreatedAt        time.Time        `json:"created_at"`
	ExpiresAt        time.Time        `json:"expires_at"`
}

// ValidAt is the single validity predicate for a price lock. Every call
// site that cares about expiry must go through it so that all checks
// share one clock comparison.
func (p *Prebooking) ValidAt(now time.Time) bool {
	return !now.After(p.ExpiresAt)
}

// Checkout is a signed, short-lived redemption artifact binding a
// Prebooking to an authoritative price. Single-use: the first successful
// commit for its prebooking consumes it.
type Checkout struct {
	PrebookingID string         `json:"prebooking_id"`
	Price        PriceBreakdown `json:"price_breakdown"`
	Signature    string         `json:"checkout_signature"`
	IssuedAt     time.Time      `json:"issued_at"`
}
