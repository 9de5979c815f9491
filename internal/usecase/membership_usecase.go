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

type membershipUsecase struct {
	membershipRepo domain.MembershipRepository
	creditRepo     domain.CreditRepository
	audit          *audit.Logger
}

func NewMembershipUsecase(membershipRepo domain.MembershipRepository, creditRepo domain.CreditRepository) domain.MembershipUsecase {
	return &membershipUsecase{
		membershipRepo: membershipRepo,
		creditRepo:     creditRepo,
		audit:          audit.Default(),
	}
}

func (u *membershipUsecase) CreateType(ctx context.Context, req *domain.CreateMembershipTypeRequest) (*domain.MembershipType, error) {
	if domain.RoleFromContext(ctx) != string(domain.RoleAdmin) {
		return nil, apperror.Forbidden("Admin role required")
	}

	mt := &domain.MembershipType{
		Name:            req.Name,
		Description:     req.Description,
		Price:           req.Price,
		DurationDays:    req.DurationDays,
		CreditAmount:    req.CreditAmount,
		CreditFrequency: req.CreditFrequency,
		Features:        req.Features,
	}
	if err := u.membershipRepo.CreateType(ctx, mt); err != nil {
		return nil, err
	}
	return mt, nil
}

func (u *membershipUsecase) ListTypes(ctx context.Context) ([]domain.MembershipType, error) {
	return u.membershipRepo.ListTypes(ctx, true)
}

func (u *membershipUsecase) Enroll(ctx context.Context, userID int64, req *domain.EnrollMembershipRequest) (*domain.Membership, error) {
	mt, err := u.membershipRepo.GetType(ctx, req.MembershipTypeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Membership type not found")
		}
		return nil, err
	}
	if !mt.Active {
		return nil, apperror.BadRequest("Membership type is no longer available")
	}

	if existing, err := u.membershipRepo.GetActiveByUser(ctx, userID); err == nil && existing != nil {
		return nil, apperror.Conflict("User already has an active membership")
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	now := time.Now()
	membership := &domain.Membership{
		UserID:           userID,
		MembershipTypeID: mt.ID,
		StartDate:        now,
		EndDate:          now.AddDate(0, 0, mt.DurationDays),
		Status:           domain.MembershipActive,
		AutoRenew:        req.AutoRenew,
	}
	if err := u.membershipRepo.Create(ctx, membership); err != nil {
		return nil, err
	}

	// First credit allocation is granted immediately; later allocations come
	// from the renewal job on the membership's frequency.
	expiry := now.AddDate(0, 0, creditWindowDays(mt.CreditFrequency))
	sourceID := strconv.FormatInt(membership.ID, 10)
	entry := &domain.CreditEntry{
		UserID:     userID,
		Amount:     mt.CreditAmount,
		ExpiryDate: &expiry,
		Source:     domain.SourceMembership,
		SourceID:   &sourceID,
	}
	ref := domain.RedemptionRef{EntityType: "MEMBERSHIP", EntityID: sourceID, Note: mt.Name}
	if err := u.creditRepo.Grant(ctx, entry, ref); err != nil {
		return nil, err
	}

	u.audit.LogCreditMovement(ctx, audit.EventCreditGranted, userID, mt.CreditAmount, "membership:"+sourceID)
	return membership, nil
}

func (u *membershipUsecase) Pause(ctx context.Context, userID, membershipID int64) error {
	return u.transition(ctx, userID, membershipID, domain.MembershipPaused)
}

func (u *membershipUsecase) Resume(ctx context.Context, userID, membershipID int64) error {
	return u.transition(ctx, userID, membershipID, domain.MembershipActive)
}

func (u *membershipUsecase) Cancel(ctx context.Context, userID, membershipID int64) error {
	return u.transition(ctx, userID, membershipID, domain.MembershipCancelled)
}

func (u *membershipUsecase) MyMembership(ctx context.Context, userID int64) (*domain.Membership, error) {
	membership, err := u.membershipRepo.GetActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("No active membership")
		}
		return nil, err
	}
	return membership, nil
}

func (u *membershipUsecase) transition(ctx context.Context, userID, membershipID int64, next domain.MembershipStatus) error {
	membership, err := u.membershipRepo.GetByID(ctx, membershipID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperror.NotFound("Membership not found")
		}
		return err
	}
	if membership.UserID != userID && !isStaff(ctx) {
		return apperror.Forbidden("Cannot manage another user's membership")
	}
	if !membership.Status.CanTransition(next) {
		return apperror.BadRequest("Membership cannot transition to " + string(next))
	}
	return u.membershipRepo.UpdateStatus(ctx, membershipID, next)
}

func creditWindowDays(frequency string) int {
	if frequency == "weekly" {
		return 7
	}
	return 30
}
