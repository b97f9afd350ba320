package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/skazar/farelock/internal/domain"
	"github.com/skazar/farelock/internal/service/booking"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type bookingResponse struct {
	BookingID     int64                 `json:"booking_id"`
	Reference     string                `json:"booking_reference"`
	Status        string                `json:"status"`
	PaymentStatus string                `json:"payment_status"`
	TotalCents    int64                 `json:"total_cents"`
	Currency      string                `json:"currency"`
	Details       domain.BookingDetails `json:"details"`
	CreatedAt     string                `json:"created_at"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/commit", h.commit)
	router.POST("/", h.createDirect)
	router.GET("/:id", h.get)
}

func (h *BookingHandler) commit(c *gin.Context) {
	var input booking.CommitInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "detail": err.Error()})
		return
	}

	created, err := h.service.Commit(c.Request.Context(), input)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toBookingResponse(created))
}

func (h *BookingHandler) createDirect(c *gin.Context) {
	var input booking.DirectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "detail": err.Error()})
		return
	}

	created, err := h.service.CreateDirect(c.Request.Context(), input)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toBookingResponse(created))
}

func (h *BookingHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "detail": "invalid booking id"})
		return
	}

	found, err := h.service.GetBooking(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toBookingResponse(found))
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		BookingID:     b.ID,
		Reference:     b.Reference,
		Status:        string(b.Status),
		PaymentStatus: string(b.PaymentStatus),
		TotalCents:    b.TotalCents,
		Currency:      b.Currency,
		Details:       b.Details,
		CreatedAt:     b.CreatedAt.Format(time.RFC3339),
	}
}
