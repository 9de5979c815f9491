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

type creditUsecase struct {
	creditRepo  domain.CreditRepository
	packageRepo domain.CreditPackageRepository
	audit       *audit.Logger
}

func NewCreditUsecase(creditRepo domain.CreditRepository, packageRepo domain.CreditPackageRepository) domain.CreditUsecase {
	return &creditUsecase{
		creditRepo:  creditRepo,
		packageRepo: packageRepo,
		audit:       audit.Default(),
	}
}

func (u *creditUsecase) Grant(ctx context.Context, req *domain.GrantRequest) (*domain.CreditEntry, error) {
	if req.Amount <= 0 {
		return nil, apperror.BadRequest("Grant amount must be positive")
	}
	if !req.Source.IsValid() {
		return nil, apperror.BadRequest("Invalid credit source")
	}
	if req.Expiry != nil && req.Expiry.Before(time.Now()) {
		return nil, apperror.BadRequest("Expiry date must be in the future")
	}

	entry := &domain.CreditEntry{
		UserID:     req.UserID,
		Amount:     req.Amount,
		ExpiryDate: req.Expiry,
		Source:     req.Source,
		SourceID:   req.SourceID,
	}
	ref := domain.RedemptionRef{EntityType: string(req.Source)}
	if req.Note != nil {
		ref.Note = *req.Note
	}
	if err := u.creditRepo.Grant(ctx, entry, ref); err != nil {
		return nil, err
	}

	u.audit.LogCreditMovement(ctx, audit.EventCreditGranted, req.UserID, req.Amount, string(req.Source))
	return entry, nil
}

func (u *creditUsecase) Redeem(ctx context.Context, userID int64, amount int, ref domain.RedemptionRef) error {
	if amount <= 0 {
		return apperror.BadRequest("Redeem amount must be positive")
	}

	err := u.creditRepo.Redeem(ctx, userID, amount, ref)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientCredit) {
			return apperror.BadRequest("Insufficient credit balance")
		}
		return err
	}

	u.audit.LogCreditMovement(ctx, audit.EventCreditRedeemed, userID, amount, ref.EntityType+":"+ref.EntityID)
	return nil
}

func (u *creditUsecase) Refund(ctx context.Context, userID int64, amount int, ref domain.RedemptionRef) error {
	if amount <= 0 {
		return apperror.BadRequest("Refund amount must be positive")
	}

	if err := u.creditRepo.Refund(ctx, userID, amount, ref); err != nil {
		return err
	}

	u.audit.LogCreditMovement(ctx, audit.EventCreditRefunded, userID, amount, ref.EntityType+":"+ref.EntityID)
	return nil
}

func (u *creditUsecase) Balance(ctx context.Context, userID int64) (int, error) {
	return u.creditRepo.Balance(ctx, userID)
}

func (u *creditUsecase) History(ctx context.Context, userID int64, limit int) ([]domain.CreditLog, error) {
	return u.creditRepo.ListLogs(ctx, userID, limit)
}

func (u *creditUsecase) ListPackages(ctx context.Context) ([]domain.CreditPackage, error) {
	return u.packageRepo.List(ctx, true)
}

func (u *creditUsecase) PurchasePackage(ctx context.Context, userID int64, packageID int64) (*domain.CreditEntry, error) {
	pkg, err := u.packageRepo.GetByID(ctx, packageID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Credit package not found")
		}
		return nil, err
	}
	if !pkg.IsActive {
		return nil, apperror.BadRequest("Credit package is no longer available")
	}

	var expiry *time.Time
	if pkg.ValidityDays > 0 {
		e := time.Now().AddDate(0, 0, pkg.ValidityDays)
		expiry = &e
	}
	sourceID := strconv.FormatInt(pkg.ID, 10)

	entry := &domain.CreditEntry{
		UserID:     userID,
		Amount:     pkg.Credits,
		ExpiryDate: expiry,
		Source:     domain.SourcePurchase,
		SourceID:   &sourceID,
	}
	ref := domain.RedemptionRef{EntityType: "PACKAGE", EntityID: sourceID, Note: pkg.Name}
	if err := u.creditRepo.Grant(ctx, entry, ref); err != nil {
		return nil, err
	}

	u.audit.LogCreditMovement(ctx, audit.EventCreditGranted, userID, pkg.Credits, "package:"+sourceID)
	return entry, nil
}
