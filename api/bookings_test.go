package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/skazar/farelock/internal/domain"
	"github.com/skazar/farelock/internal/kafka"
	"github.com/skazar/farelock/internal/service/booking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockBookingUseCase is a mock implementation of booking.BookingUseCase
type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) Commit(ctx context.Context, input booking.CommitInput) (*domain.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) CreateDirect(ctx context.Context, input booking.DirectInput) (*domain.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) GetBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ApplyPaymentUpdate(ctx context.Context, event kafka.PaymentEvent) (*domain.Booking, error) {
	args := m.Called(ctx, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) CancelUnpaidBookings(ctx context.Context) ([]domain.Booking, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func sampleCommitInput() booking.CommitInput {
	return booking.CommitInput{
		PrebookingID: "pb-1",
		Signature:    "deadbeef",
		Passengers:   []domain.Passenger{{FirstName: "Ana", LastName: "Costa"}},
		Contact:      domain.Contact{Email: "ana@example.com"},
	}
}

func commitContext(t *testing.T, input booking.CommitInput) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(input)
	c.Request = httptest.NewRequest("POST", "/bookings/commit", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func TestBookingHandler_commit(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)
	input := sampleCommitInput()
	c, w := commitContext(t, input)

	created := &domain.Booking{
		ID:            42,
		Reference:     "FL-A2C4E6",
		TotalCents:    100000,
		Currency:      "USD",
		Status:        domain.BookingStatusPending,
		PaymentStatus: domain.PaymentStatusPending,
		Details:       domain.BookingDetails{Product: domain.ProductFlight, PrebookingID: "pb-1"},
		CreatedAt:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	mockService.On("Commit", c.Request.Context(), input).Return(created, nil)

	handler.commit(c)

	assert.Equal(t, 201, w.Code)
	var resp bookingResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(42), resp.BookingID)
	assert.Equal(t, "FL-A2C4E6", resp.Reference)
	assert.Equal(t, int64(100000), resp.TotalCents)
	assert.Equal(t, "pending", resp.Status)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_commit_Errors(t *testing.T) {
	testCases := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{name: "forged signature", err: domain.ErrInvalidSignature, wantStatus: 403, wantBody: "invalid_signature"},
		{name: "checkout lapsed", err: domain.ErrCheckoutExpired, wantStatus: 410, wantBody: "checkout_expired"},
		{name: "prebooking lapsed", err: domain.ErrPrebookingExpired, wantStatus: 410, wantBody: "prebooking_expired"},
		{
			name:       "double submission",
			err:        &domain.AlreadyCommittedError{BookingID: 42},
			wantStatus: 409,
			wantBody:   "already_committed",
		},
		{
			name:       "bad input",
			err:        &domain.InvalidRequestError{Reason: "at least one passenger is required"},
			wantStatus: 400,
			wantBody:   "invalid_request",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockService := &MockBookingUseCase{}
			handler := NewBookingHandler(mockService)
			c, w := commitContext(t, sampleCommitInput())

			mockService.On("Commit", c.Request.Context(), mock.Anything).Return(nil, tc.err)

			handler.commit(c)

			assert.Equal(t, tc.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tc.wantBody)
		})
	}
}

func TestBookingHandler_commit_AlreadyCommittedCarriesBookingID(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)
	c, w := commitContext(t, sampleCommitInput())

	mockService.On("Commit", c.Request.Context(), mock.Anything).Return(nil, &domain.AlreadyCommittedError{BookingID: 42})

	handler.commit(c)

	var resp struct {
		Error     string `json:"error"`
		BookingID int64  `json:"booking_id"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "already_committed", resp.Error)
	assert.Equal(t, int64(42), resp.BookingID)
}

func TestBookingHandler_createDirect(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	input := booking.DirectInput{
		Product:    domain.ProductHotel,
		Hotel:      &domain.HotelDetails{HotelName: "Lisboa Plaza", City: "Lisbon"},
		Options:    []domain.SelectedOption{{Code: "hotel_night_standard", Quantity: 2}},
		Passengers: []domain.Passenger{{FirstName: "Ana", LastName: "Costa"}},
		Contact:    domain.Contact{Email: "ana@example.com"},
	}
	body, _ := json.Marshal(input)
	c.Request = httptest.NewRequest("POST", "/bookings", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	created := &domain.Booking{ID: 7, Reference: "HO-1A2B3C4D", TotalCents: 24000, Currency: "USD"}
	mockService.On("CreateDirect", c.Request.Context(), input).Return(created, nil)

	handler.createDirect(c)

	assert.Equal(t, 201, w.Code)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_get(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/bookings/42", nil)
	c.Params = gin.Params{{Key: "id", Value: "42"}}

	found := &domain.Booking{ID: 42, Reference: "FL-A2C4E6", Status: domain.BookingStatusConfirmed}
	mockService.On("GetBooking", c.Request.Context(), int64(42)).Return(found, nil)

	handler.get(c)

	assert.Equal(t, 200, w.Code)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_get_BadID(t *testing.T) {
	handler := NewBookingHandler(&MockBookingUseCase{})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/bookings/abc", nil)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	handler.get(c)

	assert.Equal(t, 400, w.Code)
}

func TestBookingHandler_get_NotFound(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/bookings/99", nil)
	c.Params = gin.Params{{Key: "id", Value: "99"}}

	mockService.On("GetBooking", c.Request.Context(), int64(99)).Return(nil, domain.ErrNotFound)

	handler.get(c)

	assert.Equal(t, 404, w.Code)
}
