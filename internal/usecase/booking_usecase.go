package usecase

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go-studio-backend/internal/domain"
	"go-studio-backend/pkg/apperror"
	"go-studio-backend/pkg/audit"
)

type BookingConfig struct {
	// CancellationCutoffHours is the minimum notice, relative to start
	// time, for a cancellation to earn a credit refund.
	CancellationCutoffHours int
}

type bookingUsecase struct {
	bookingRepo    domain.BookingRepository
	scheduleRepo   domain.ScheduleRepository
	userRepo       domain.UserRepository
	onboardingRepo domain.OnboardingRepository
	cfg            BookingConfig
	audit          *audit.Logger
}

func NewBookingUsecase(
	bookingRepo domain.BookingRepository,
	scheduleRepo domain.ScheduleRepository,
	userRepo domain.UserRepository,
	onboardingRepo domain.OnboardingRepository,
	cfg BookingConfig,
) domain.BookingUsecase {
	return &bookingUsecase{
		bookingRepo:    bookingRepo,
		scheduleRepo:   scheduleRepo,
		userRepo:       userRepo,
		onboardingRepo: onboardingRepo,
		cfg:            cfg,
		audit:          audit.Default(),
	}
}

func (u *bookingUsecase) BookClass(ctx context.Context, userID, classID int64) (*domain.Booking, error) {
	class, err := u.scheduleRepo.GetClass(ctx, classID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Class not found")
		}
		return nil, err
	}
	if class.Status != domain.InstanceScheduled {
		return nil, apperror.BadRequest("Class is not open for booking")
	}
	if class.StartTime.Before(time.Now()) {
		return nil, apperror.BadRequest("Class has already started")
	}

	if err := u.checkHomeUserEligibility(ctx, userID); err != nil {
		return nil, err
	}

	booking, err := u.bookingRepo.CreateClassBooking(ctx, userID, class, class.CreditCost, nil)
	if err != nil {
		return nil, mapBookingError(err)
	}

	u.audit.Log(ctx, audit.Event{
		Event:        audit.EventBookingCreated,
		SubjectType:  "user_id",
		SubjectValue: audit.HashID(userID),
		Details:      map[string]any{"kind": "CLASS", "entity_id": classID, "credits": class.CreditCost},
	})
	return booking, nil
}

func (u *bookingUsecase) BookPrivateSession(ctx context.Context, userID, sessionID int64) (*domain.Booking, error) {
	session, err := u.scheduleRepo.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Session not found")
		}
		return nil, err
	}
	if session.Status != domain.InstanceScheduled {
		return nil, apperror.BadRequest("Session is not open for booking")
	}
	if session.StartTime.Before(time.Now()) {
		return nil, apperror.BadRequest("Session has already started")
	}

	if err := u.checkHomeUserEligibility(ctx, userID); err != nil {
		return nil, err
	}

	booking, err := u.bookingRepo.CreateSessionBooking(ctx, userID, session, session.CreditCost)
	if err != nil {
		return nil, mapBookingError(err)
	}

	u.audit.Log(ctx, audit.Event{
		Event:        audit.EventBookingCreated,
		SubjectType:  "user_id",
		SubjectValue: audit.HashID(userID),
		Details:      map[string]any{"kind": "PRIVATE_SESSION", "entity_id": sessionID, "credits": session.CreditCost},
	})
	return booking, nil
}

// AdminBook creates a booking on a client's behalf without charging
// credits. Capacity and double-booking checks still apply.
func (u *bookingUsecase) AdminBook(ctx context.Context, staffID int64, req *domain.AdminBookRequest) (*domain.Booking, error) {
	if !isStaff(ctx) {
		return nil, apperror.Forbidden("Staff role required")
	}

	if _, err := u.userRepo.GetByID(ctx, req.UserID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, err
	}

	class, err := u.scheduleRepo.GetClass(ctx, req.ClassID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Class not found")
		}
		return nil, err
	}
	if class.Status != domain.InstanceScheduled {
		return nil, apperror.BadRequest("Class is not open for booking")
	}

	booking, err := u.bookingRepo.CreateClassBooking(ctx, req.UserID, class, 0, &staffID)
	if err != nil {
		return nil, mapBookingError(err)
	}

	u.audit.Log(ctx, audit.Event{
		Event:        audit.EventBookingCreated,
		SubjectType:  "user_id",
		SubjectValue: audit.HashID(req.UserID),
		Details:      map[string]any{"kind": "CLASS", "entity_id": req.ClassID, "staff_id": staffID},
	})
	return booking, nil
}

func (u *bookingUsecase) CancelBooking(ctx context.Context, actorID int64, bookingID int64, reason *string) error {
	booking, err := u.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperror.NotFound("Booking not found")
		}
		return err
	}

	if booking.UserID != actorID && !isStaff(ctx) {
		return apperror.Forbidden("Cannot cancel another user's booking")
	}
	if !booking.Status.CanTransition(domain.StatusCancelled) {
		return apperror.BadRequest("Booking cannot be cancelled in its current state")
	}

	// Refund policy: full credit refund when cancelled before the cutoff,
	// nothing after. Admin-booked (free) bookings have nothing to refund.
	// Status change and refund commit together; a failed refund leaves the
	// booking active so the cancellation can be retried.
	refundAmount := 0
	cutoff := time.Duration(u.cfg.CancellationCutoffHours) * time.Hour
	if booking.CreditAmount > 0 && time.Until(booking.StartTime) >= cutoff {
		refundAmount = booking.CreditAmount
	}
	ref := domain.RedemptionRef{
		EntityType: string(booking.Kind),
		EntityID:   strconv.FormatInt(booking.EntityID, 10),
		Note:       "Booking cancellation",
	}
	if err := u.bookingRepo.CancelWithRefund(ctx, booking, reason, refundAmount, ref); err != nil {
		if errors.Is(err, domain.ErrInvalidState) {
			return apperror.BadRequest("Booking cannot be cancelled in its current state")
		}
		return err
	}

	u.audit.Log(ctx, audit.Event{
		Event:        audit.EventBookingCancelled,
		SubjectType:  "user_id",
		SubjectValue: audit.HashID(booking.UserID),
		Details:      map[string]any{"booking_id": bookingID, "refunded": refundAmount > 0},
	})
	return nil
}

func (u *bookingUsecase) MarkAttendance(ctx context.Context, staffID int64, bookingID int64, status domain.BookingStatus) error {
	if !isStaff(ctx) {
		return apperror.Forbidden("Staff role required")
	}
	if status != domain.StatusAttended && status != domain.StatusNoShow {
		return apperror.BadRequest("Attendance status must be ATTENDED or NO_SHOW")
	}

	booking, err := u.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperror.NotFound("Booking not found")
		}
		return err
	}
	if !booking.Status.CanTransition(status) {
		return apperror.BadRequest("Booking cannot transition to " + string(status))
	}

	if err := u.bookingRepo.UpdateStatus(ctx, bookingID, status, nil); err != nil {
		return err
	}

	if status == domain.StatusNoShow {
		u.audit.Log(ctx, audit.Event{
			Event:        audit.EventBookingNoShow,
			SubjectType:  "user_id",
			SubjectValue: audit.HashID(booking.UserID),
			Details:      map[string]any{"booking_id": bookingID, "staff_id": staffID},
		})
	}
	return nil
}

func (u *bookingUsecase) MyBookings(ctx context.Context, userID int64) ([]domain.Booking, error) {
	return u.bookingRepo.ListByUser(ctx, userID)
}

func (u *bookingUsecase) ClassRoster(ctx context.Context, staffID, classID int64) ([]domain.Booking, error) {
	if !isStaff(ctx) {
		return nil, apperror.Forbidden("Staff role required")
	}
	if _, err := u.scheduleRepo.GetClass(ctx, classID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Class not found")
		}
		return nil, err
	}
	return u.bookingRepo.ListByEntity(ctx, domain.BookingClass, classID)
}

// checkHomeUserEligibility blocks home-EMS users who have not completed
// onboarding. Studio clients book without onboarding.
func (u *bookingUsecase) checkHomeUserEligibility(ctx context.Context, userID int64) error {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperror.NotFound("User not found")
		}
		return err
	}
	if user.Role != domain.RoleHomeUser {
		return nil
	}

	onboarding, err := u.onboardingRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperror.Forbidden("Complete onboarding before booking")
		}
		return err
	}
	if onboarding.MedicalHold() {
		return apperror.Forbidden("Booking blocked pending medical review")
	}
	if !onboarding.Eligible() {
		return apperror.Forbidden("Complete onboarding before booking")
	}
	return nil
}

func isStaff(ctx context.Context) bool {
	return domain.Role(domain.RoleFromContext(ctx)).IsStaff()
}

func mapBookingError(err error) error {
	switch {
	case errors.Is(err, domain.ErrClassFull):
		return apperror.BadRequest("Class is at full capacity")
	case errors.Is(err, domain.ErrSlotTaken):
		return apperror.BadRequest("Session slot is already taken")
	case errors.Is(err, domain.ErrAlreadyBooked):
		return apperror.BadRequest("You already have an active booking for this instance")
	case errors.Is(err, domain.ErrInsufficientCredit):
		return apperror.BadRequest("Insufficient credit balance")
	case errors.Is(err, domain.ErrInvalidState):
		return apperror.BadRequest("Instance is not open for booking")
	case errors.Is(err, domain.ErrNotFound):
		return apperror.NotFound("Instance not found")
	default:
		return err
	}
}
