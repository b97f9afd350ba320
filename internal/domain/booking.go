package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
	PaymentStatusFailed   PaymentStatus = "failed"
)

type ProductType string

const (
	ProductFlight  ProductType = "flight"
	ProductHotel   ProductType = "hotel"
	ProductCar     ProductType = "car"
	ProductTrain   ProductType = "train"
	ProductPackage ProductType = "package"
)

type Passenger struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	DocumentNumber string `json:"document_number,omitempty"`
}

type Contact struct {
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// HotelDetails, CarDetails, TrainDetails and PackageDetails carry the
// product-specific payload for directly committed (non-flight) bookings.
type HotelDetails struct {
	HotelName string    `json:"hotel_name"`
	City      string    `json:"city"`
	CheckIn   time.Time `json:"check_in"`
	CheckOut  time.Time `json:"check_out"`
	RoomType  string    `json:"room_type,omitempty"`
}

type CarDetails struct {
	PickupCity string    `json:"pickup_city"`
	PickupAt   time.Time `json:"pickup_at"`
	ReturnAt   time.Time `json:"return_at"`
	CarClass   string    `json:"car_class,omitempty"`
}

type TrainDetails struct {
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	DepartureAt time.Time `json:"departure_at"`
}

type PackageDetails struct {
	PackageCode string `json:"package_code"`
	Description string `json:"description,omitempty"`
}

// BookingDetails is the write-once audit blob persisted as JSONB. It is
// a tagged union keyed by Product; exactly one detail pointer is set.
type BookingDetails struct {
	Product           ProductType      `json:"product"`
	PrebookingID      string           `json:"prebooking_id,omitempty"`
	CheckoutSignature string           `json:"checkout_signature,omitempty"`
	Flight            *Itinerary       `json:"flight,omitempty"`
	Hotel             *HotelDetails    `json:"hotel,omitempty"`
	Car               *CarDetails      `json:"car,omitempty"`
	Train             *TrainDetails    `json:"train,omitempty"`
	Package           *PackageDetails  `json:"package,omitempty"`
	Options           []SelectedOption `json:"options,omitempty"`
}

// Booking is the durable record created exactly once per valid Checkout
// (or directly for non-flight products). Price fields are copied from
// the checkout at commit time and never mutated afterwards; only the
// payment collaborator moves the status fields.
type Booking struct {
	ID            int64
	Reference     string
	Contact       Contact
	Passengers    []Passenger
	TotalCents    int64
	Currency      string
	Status        BookingStatus
	PaymentStatus PaymentStatus
	Details       BookingDetails
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
