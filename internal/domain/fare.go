package domain

import "time"

// FareQuote is an upstream snapshot of a fare at the moment of quoting.
// Immutable once received; its price is never trusted as final.
type FareQuote struct {
	Ref           string     `json:"ref"`
	Origin        string     `json:"origin"`
	Destination   string     `json:"destination"`
	DepartureDate time.Time  `json:"departure_date"`
	ReturnDate    *time.Time `json:"return_date,omitempty"`
	Carrier       string     `json:"carrier"`
	FareClass     string     `json:"fare_class"`
	Adults        int        `json:"adults"`
	Children      int        `json:"children"`
	PriceCents    int64      `json:"price_cents"`
	Currency      string     `json:"currency"`
	QuotedAt      time.Time  `json:"quoted_at"`
}

func (q FareQuote) PassengerCount() int {
	return q.Adults + q.Children
}

// PriceBreakdown is always computed server-side, in integer cents of a
// single currency. A client-supplied breakdown is never authoritative.
type PriceBreakdown struct {
	BaseFareCents   int64  `json:"base_fare"`
	TaxesCents      int64  `json:"taxes"`
	ServiceFeeCents int64  `json:"service_fee"`
	TotalCents      int64  `json:"total_amount"`
	Currency        string `json:"currency"`
}

// Consistent reports whether the components sum to the total.
func (p PriceBreakdown) Consistent() bool {
	return p.TotalCents == p.BaseFareCents+p.TaxesCents+p.ServiceFeeCents
}
