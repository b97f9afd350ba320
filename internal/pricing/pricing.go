package pricing

import (
	"math"

	"github.com/skazar/farelock/internal/domain"
)

// Option is a priced add-on line item from the catalog (seat selection,
// extra baggage, meals and so on).
type Option struct {
	Code       string `yaml:"code" json:"code"`
	Name       string `yaml:"name" json:"name"`
	PriceCents int64  `yaml:"price_cents" json:"price_cents"`
}

// Calculator is the single source of truth for prices. Given the same
// quote, passenger count and options it always produces the same
// breakdown, so locked and recomputed prices are directly comparable.
type Calculator struct {
	taxRate float64
	feeRate float64
	catalog map[string]Option
}

func NewCalculator(taxRate, feeRate float64, options []Option) *Calculator {
	catalog := make(map[string]Option, len(options))
	for _, o := range options {
		catalog[o.Code] = o
	}
	return &Calculator{taxRate: taxRate, feeRate: feeRate, catalog: catalog}
}

// Compute builds the breakdown for a fare quote plus selected options.
// The quote price covers the whole passenger party; taxes and the
// service fee are carved out of the total so the components always sum
// back to it exactly.
func (c *Calculator) Compute(quote *domain.FareQuote, passengerCount int, options []domain.SelectedOption) (domain.PriceBreakdown, error) {
	if passengerCount <= 0 {
		return domain.PriceBreakdown{}, &domain.InvalidRequestError{Reason: "passenger count must be positive"}
	}
	total, err := c.optionsTotal(options)
	if err != nil {
		return domain.PriceBreakdown{}, err
	}
	total += quote.PriceCents
	return c.split(total, quote.Currency), nil
}

// PriceItems prices a directly committed (non-flight) booking from its
// catalog line items alone. Price input never comes from the client.
func (c *Calculator) PriceItems(options []domain.SelectedOption, currency string) (domain.PriceBreakdown, error) {
	if len(options) == 0 {
		return domain.PriceBreakdown{}, &domain.InvalidRequestError{Reason: "no line items selected"}
	}
	total, err := c.optionsTotal(options)
	if err != nil {
		return domain.PriceBreakdown{}, err
	}
	return c.split(total, currency), nil
}

func (c *Calculator) optionsTotal(options []domain.SelectedOption) (int64, error) {
	var total int64
	for _, sel := range options {
		item, ok := c.catalog[sel.Code]
		if !ok {
			return 0, &domain.InvalidRequestError{Reason: "unknown option code: " + sel.Code}
		}
		if sel.Quantity <= 0 {
			return 0, &domain.InvalidRequestError{Reason: "option quantity must be positive: " + sel.Code}
		}
		total += item.PriceCents * int64(sel.Quantity)
	}
	return total, nil
}

func (c *Calculator) split(totalCents int64, currency string) domain.PriceBreakdown {
	taxes := int64(math.Round(float64(totalCents) * c.taxRate))
	fee := int64(math.Round(float64(totalCents) * c.feeRate))
	return domain.PriceBreakdown{
		BaseFareCents:   totalCents - taxes - fee,
		TaxesCents:      taxes,
		ServiceFeeCents: fee,
		TotalCents:      totalCents,
		Currency:        currency,
	}
}
