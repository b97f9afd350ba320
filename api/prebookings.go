package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/skazar/farelock/internal/domain"
	"github.com/skazar/farelock/internal/service/checkout"
	"github.com/skazar/farelock/internal/service/prebook"
)

type PrebookingHandler struct {
	prebook  prebook.PrebookUseCase
	checkout checkout.CheckoutUseCase
	now      func() time.Time
}

type prebookRequest struct {
	FareQuoteRef   string                  `json:"fare_quote_ref"`
	PassengerCount int                     `json:"passenger_count"`
	Options        []domain.SelectedOption `json:"options"`
}

type prebookingResponse struct {
	PrebookingID     string                `json:"prebooking_id"`
	BookingReference string                `json:"booking_reference"`
	PriceBreakdown   domain.PriceBreakdown `json:"price_breakdown"`
	ExpiresInSeconds int64                 `json:"expires_in_seconds"`
	ExpiresAt        string                `json:"expires_at"`
}

type checkoutResponse struct {
	CheckoutSignature string                `json:"checkout_signature"`
	PriceBreakdown    domain.PriceBreakdown `json:"price_breakdown"`
	IssuedAt          string                `json:"issued_at"`
}

func NewPrebookingHandler(prebookSvc prebook.PrebookUseCase, checkoutSvc checkout.CheckoutUseCase) *PrebookingHandler {
	return &PrebookingHandler{prebook: prebookSvc, checkout: checkoutSvc, now: time.Now}
}

func (h *PrebookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/:id", h.get)
	router.POST("/:id/checkout", h.createCheckout)
}

func (h *PrebookingHandler) create(c *gin.Context) {
	var req prebookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "detail": err.Error()})
		return
	}

	pb, err := h.prebook.Lock(c.Request.Context(), prebook.LockInput{
		FareQuoteRef:   req.FareQuoteRef,
		PassengerCount: req.PassengerCount,
		Options:        req.Options,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, h.toResponse(pb))
}

func (h *PrebookingHandler) get(c *gin.Context) {
	pb, err := h.prebook.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toResponse(pb))
}

func (h *PrebookingHandler) createCheckout(c *gin.Context) {
	ck, err := h.checkout.Checkout(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, checkoutResponse{
		CheckoutSignature: ck.Signature,
		PriceBreakdown:    ck.Price,
		IssuedAt:          ck.IssuedAt.Format(time.RFC3339),
	})
}

func (h *PrebookingHandler) toResponse(pb *domain.Prebooking) prebookingResponse {
	expiresIn := int64(pb.ExpiresAt.Sub(h.now()).Seconds())
	if expiresIn < 0 {
		expiresIn = 0
	}
	return prebookingResponse{
		PrebookingID:     pb.ID,
		BookingReference: pb.BookingReference,
		PriceBreakdown:   pb.Price,
		ExpiresInSeconds: expiresIn,
		ExpiresAt:        pb.ExpiresAt.Format(time.RFC3339),
	}
}
