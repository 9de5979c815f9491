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

type scheduleUsecase struct {
	scheduleRepo domain.ScheduleRepository
	bookingRepo  domain.BookingRepository
	audit        *audit.Logger
}

func NewScheduleUsecase(
	scheduleRepo domain.ScheduleRepository,
	bookingRepo domain.BookingRepository,
) domain.ScheduleUsecase {
	return &scheduleUsecase{
		scheduleRepo: scheduleRepo,
		bookingRepo:  bookingRepo,
		audit:        audit.Default(),
	}
}

func (u *scheduleUsecase) CreateServiceType(ctx context.Context, req *domain.CreateServiceTypeRequest) (*domain.ServiceType, error) {
	if !isStaff(ctx) {
		return nil, apperror.Forbidden("Staff role required")
	}

	st := &domain.ServiceType{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Duration:    req.Duration,
		CreditCost:  req.CreditCost,
	}
	if err := u.scheduleRepo.CreateServiceType(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (u *scheduleUsecase) ListServiceTypes(ctx context.Context) ([]domain.ServiceType, error) {
	return u.scheduleRepo.ListServiceTypes(ctx, true)
}

func (u *scheduleUsecase) CreateClass(ctx context.Context, actorID int64, req *domain.CreateClassRequest) (*domain.Class, error) {
	if !isStaff(ctx) {
		return nil, apperror.Forbidden("Staff role required")
	}
	if req.StartTime.Before(time.Now()) {
		return nil, apperror.BadRequest("Class start time must be in the future")
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, apperror.BadRequest("Class end time must be after start time")
	}

	class := &domain.Class{
		Name:          req.Name,
		Description:   req.Description,
		ServiceTypeID: req.ServiceTypeID,
		InstructorID:  req.InstructorID,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Duration:      int(req.EndTime.Sub(req.StartTime).Minutes()),
		Capacity:      req.Capacity,
		Location:      req.Location,
		CreditCost:    req.CreditCost,
	}
	if class.ServiceTypeID != nil {
		st, err := u.scheduleRepo.GetServiceType(ctx, *class.ServiceTypeID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, apperror.BadRequest("Unknown service type")
			}
			return nil, err
		}
		// Service type defaults apply when the request leaves cost unset.
		if req.CreditCost == 0 {
			class.CreditCost = st.CreditCost
		}
	}

	if err := u.scheduleRepo.CreateClass(ctx, class); err != nil {
		return nil, err
	}
	return class, nil
}

func (u *scheduleUsecase) ListClasses(ctx context.Context, from, to time.Time) ([]domain.Class, error) {
	if to.IsZero() || !to.After(from) {
		to = from.AddDate(0, 1, 0)
	}
	return u.scheduleRepo.ListClasses(ctx, from, to)
}

func (u *scheduleUsecase) GetClass(ctx context.Context, id int64) (*domain.Class, error) {
	class, err := u.scheduleRepo.GetClass(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Class not found")
		}
		return nil, err
	}
	return class, nil
}

// CancelClass cancels a scheduled class and refunds every active booking in
// full, regardless of the cancellation cutoff: studio-initiated
// cancellations never cost the client credits.
func (u *scheduleUsecase) CancelClass(ctx context.Context, actorID, classID int64) error {
	if !isStaff(ctx) {
		return apperror.Forbidden("Staff role required")
	}

	class, err := u.scheduleRepo.GetClass(ctx, classID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperror.NotFound("Class not found")
		}
		return err
	}
	if class.Status.Terminal() {
		return apperror.BadRequest("Class is already cancelled or completed")
	}

	bookings, err := u.bookingRepo.ListByEntity(ctx, domain.BookingClass, classID)
	if err != nil {
		return err
	}

	// Each booking's status change and refund commit together, and the class
	// is only marked CANCELLED once every booking is settled. A failure
	// midway leaves the class SCHEDULED with the already-cancelled bookings
	// skipped on retry.
	reason := "Class cancelled by studio"
	for i := range bookings {
		b := bookings[i]
		if !b.Status.Active() {
			continue
		}
		ref := domain.RedemptionRef{
			EntityType: string(domain.BookingClass),
			EntityID:   strconv.FormatInt(classID, 10),
			Note:       reason,
		}
		if err := u.bookingRepo.CancelWithRefund(ctx, &b, &reason, b.CreditAmount, ref); err != nil {
			// A booking settled concurrently is already out of the way.
			if errors.Is(err, domain.ErrInvalidState) {
				continue
			}
			return err
		}
	}

	if err := u.scheduleRepo.UpdateClassStatus(ctx, classID, domain.InstanceCancelled); err != nil {
		return err
	}

	u.audit.Log(ctx, audit.Event{
		Event:        audit.EventBookingCancelled,
		SubjectType:  "user_id",
		SubjectValue: audit.HashID(actorID),
		Details:      map[string]any{"class_id": classID, "bookings_refunded": len(bookings)},
	})
	return nil
}

func (u *scheduleUsecase) CompleteClass(ctx context.Context, actorID, classID int64) error {
	if !isStaff(ctx) {
		return apperror.Forbidden("Staff role required")
	}

	class, err := u.scheduleRepo.GetClass(ctx, classID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperror.NotFound("Class not found")
		}
		return err
	}
	if class.Status.Terminal() {
		return apperror.BadRequest("Class is already cancelled or completed")
	}

	return u.scheduleRepo.UpdateClassStatus(ctx, classID, domain.InstanceCompleted)
}

func (u *scheduleUsecase) CreateSession(ctx context.Context, actorID int64, req *domain.CreateSessionRequest) (*domain.PrivateSession, error) {
	if !isStaff(ctx) {
		return nil, apperror.Forbidden("Staff role required")
	}
	if req.StartTime.Before(time.Now()) {
		return nil, apperror.BadRequest("Session start time must be in the future")
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, apperror.BadRequest("Session end time must be after start time")
	}

	session := &domain.PrivateSession{
		TrainerID:  req.TrainerID,
		Date:       req.StartTime.Truncate(24 * time.Hour),
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Duration:   int(req.EndTime.Sub(req.StartTime).Minutes()),
		Location:   req.Location,
		Notes:      req.Notes,
		CreditCost: req.CreditCost,
	}
	if err := u.scheduleRepo.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (u *scheduleUsecase) TrainerSessions(ctx context.Context, trainerID int64, from, to time.Time) ([]domain.PrivateSession, error) {
	if to.IsZero() || !to.After(from) {
		to = from.AddDate(0, 1, 0)
	}
	return u.scheduleRepo.ListSessionsByTrainer(ctx, trainerID, from, to)
}
