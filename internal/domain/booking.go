package domain

import (
	"context"
	"time"
)

// BookingKind tells which table EntityID points at.
type BookingKind string

const (
	BookingClass          BookingKind = "CLASS"
	BookingPrivateSession BookingKind = "PRIVATE_SESSION"
)

type BookingStatus string

const (
	StatusBooked    BookingStatus = "BOOKED"
	StatusCancelled BookingStatus = "CANCELLED"
	StatusAttended  BookingStatus = "ATTENDED"
	StatusNoShow    BookingStatus = "NO_SHOW"
)

// bookingTransitions is the closed transition table. Bookings are never
// deleted; they only move through these states.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	StatusBooked:    {StatusCancelled, StatusAttended, StatusNoShow},
	StatusCancelled: {},
	StatusAttended:  {},
	StatusNoShow:    {},
}

// CanTransition reports whether a booking in status s may move to next.
func (s BookingStatus) CanTransition(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Active bookings count against capacity and block double-booking.
func (s BookingStatus) Active() bool {
	return s == StatusBooked || s == StatusAttended
}

type Booking struct {
	ID                 int64         `json:"id"`
	UserID             int64         `json:"user_id"`
	StaffID            *int64        `json:"staff_id,omitempty"` // set for admin-initiated bookings
	Kind               BookingKind   `json:"type"`
	EntityID           int64         `json:"entity_id"`
	Date               time.Time     `json:"date"`
	StartTime          time.Time     `json:"start_time"`
	EndTime            *time.Time    `json:"end_time,omitempty"`
	Status             BookingStatus `json:"status"`
	CancellationReason *string       `json:"cancellation_reason,omitempty"`
	CreditAmount       int           `json:"credit_amount"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

type BookClassRequest struct {
	ClassID int64 `json:"class_id" validate:"required"`
}

type BookSessionRequest struct {
	SessionID int64 `json:"session_id" validate:"required"`
}

type AdminBookRequest struct {
	UserID  int64 `json:"user_id" validate:"required"`
	ClassID int64 `json:"class_id" validate:"required"`
}

type CancelBookingRequest struct {
	Reason *string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

type BookingRepository interface {
	// CreateClassBooking locks the class row, re-counts active bookings
	// against capacity, redeems credit (unless free) and inserts the
	// booking, all inside one transaction. Returns ErrClassFull,
	// ErrAlreadyBooked or ErrInsufficientCredit without persisting anything.
	CreateClassBooking(ctx context.Context, userID int64, class *Class, creditCost int, staffID *int64) (*Booking, error)
	// CreateSessionBooking is the capacity-1 variant for private sessions.
	CreateSessionBooking(ctx context.Context, userID int64, session *PrivateSession, creditCost int) (*Booking, error)
	GetByID(ctx context.Context, id int64) (*Booking, error)
	ListByUser(ctx context.Context, userID int64) ([]Booking, error)
	ListByEntity(ctx context.Context, kind BookingKind, entityID int64) ([]Booking, error)
	// UpdateStatus applies a transition plus, for cancellations, the reason.
	UpdateStatus(ctx context.Context, id int64, status BookingStatus, reason *string) error
	// CancelWithRefund marks the booking CANCELLED and restores refundAmount
	// through the ledger in the same transaction. A store failure rolls both
	// back, so the booking stays active and the cancellation can be retried.
	CancelWithRefund(ctx context.Context, booking *Booking, reason *string, refundAmount int, ref RedemptionRef) error
	CountActive(ctx context.Context, kind BookingKind, entityID int64) (int, error)
}

type BookingUsecase interface {
	BookClass(ctx context.Context, userID, classID int64) (*Booking, error)
	BookPrivateSession(ctx context.Context, userID, sessionID int64) (*Booking, error)
	// AdminBook bypasses credit deduction but still enforces capacity.
	AdminBook(ctx context.Context, staffID int64, req *AdminBookRequest) (*Booking, error)
	CancelBooking(ctx context.Context, actorID int64, bookingID int64, reason *string) error
	MarkAttendance(ctx context.Context, staffID int64, bookingID int64, status BookingStatus) error
	MyBookings(ctx context.Context, userID int64) ([]Booking, error)
	ClassRoster(ctx context.Context, staffID, classID int64) ([]Booking, error)
}
