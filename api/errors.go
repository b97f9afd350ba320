package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skazar/farelock/internal/domain"
)

// writeError maps protocol errors onto the HTTP contract. Price changes
// and idempotency hits carry extra payload so the client can react
// without a second round trip.
func writeError(c *gin.Context, err error) {
	var invalid *domain.InvalidRequestError
	var priceChanged *domain.PriceChangedError
	var alreadyCommitted *domain.AlreadyCommittedError

	switch {
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "detail": invalid.Reason})
	case errors.As(err, &priceChanged):
		c.JSON(http.StatusConflict, gin.H{"error": "price_changed", "new_price_breakdown": priceChanged.NewPrice})
	case errors.As(err, &alreadyCommitted):
		c.JSON(http.StatusConflict, gin.H{"error": "already_committed", "booking_id": alreadyCommitted.BookingID})
	case errors.Is(err, domain.ErrPrebookingExpired):
		c.JSON(http.StatusGone, gin.H{"error": "prebooking_expired"})
	case errors.Is(err, domain.ErrCheckoutExpired):
		c.JSON(http.StatusGone, gin.H{"error": "checkout_expired"})
	case errors.Is(err, domain.ErrInvalidSignature):
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid_signature"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream_unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}
