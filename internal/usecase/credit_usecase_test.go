package usecase_test

import (
	"testing"
	"time"

	"go-studio-backend/internal/domain"
	"go-studio-backend/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestCreditGrantValidation(t *testing.T) {
	creditRepo := new(MockCreditRepo)
	packageRepo := new(MockPackageRepo)
	uc := usecase.NewCreditUsecase(creditRepo, packageRepo)
	ctx := authedCtx(50, domain.RoleAdmin)

	t.Run("Should reject non-positive amounts", func(t *testing.T) {
		_, err := uc.Grant(ctx, &domain.GrantRequest{UserID: 1, Amount: 0, Source: domain.SourceAdmin})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "must be positive")
	})

	t.Run("Should reject unknown credit sources", func(t *testing.T) {
		_, err := uc.Grant(ctx, &domain.GrantRequest{UserID: 1, Amount: 5, Source: "LOYALTY"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid credit source")
	})

	t.Run("Should reject past expiry dates", func(t *testing.T) {
		past := time.Now().Add(-time.Hour)
		_, err := uc.Grant(ctx, &domain.GrantRequest{UserID: 1, Amount: 5, Source: domain.SourceAdmin, Expiry: &past})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "future")
	})

	t.Run("Should persist a valid grant", func(t *testing.T) {
		creditRepo.On("Grant", mock.Anything, mock.AnythingOfType("*domain.CreditEntry"), mock.Anything).
			Return(nil).Run(func(args mock.Arguments) {
			entry := args.Get(1).(*domain.CreditEntry)
			assert.Equal(t, int64(1), entry.UserID)
			assert.Equal(t, 5, entry.Amount)
			assert.Equal(t, domain.SourceAdmin, entry.Source)
		})

		entry, err := uc.Grant(ctx, &domain.GrantRequest{UserID: 1, Amount: 5, Source: domain.SourceAdmin})
		assert.NoError(t, err)
		assert.NotNil(t, entry)
	})
}

func TestCreditRedeem(t *testing.T) {
	creditRepo := new(MockCreditRepo)
	uc := usecase.NewCreditUsecase(creditRepo, new(MockPackageRepo))
	ctx := authedCtx(1, domain.RoleClient)
	ref := domain.RedemptionRef{EntityType: "CLASS", EntityID: "10"}

	t.Run("Should map insufficient balance to a client error", func(t *testing.T) {
		creditRepo.On("Redeem", mock.Anything, int64(1), 5, ref).Return(domain.ErrInsufficientCredit).Once()

		err := uc.Redeem(ctx, 1, 5, ref)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Insufficient credit balance")
	})

	t.Run("Should reject non-positive amounts without touching the ledger", func(t *testing.T) {
		err := uc.Redeem(ctx, 1, -1, ref)
		assert.Error(t, err)
		creditRepo.AssertNumberOfCalls(t, "Redeem", 1)
	})
}

func TestPurchasePackage(t *testing.T) {
	ctx := authedCtx(1, domain.RoleClient)

	t.Run("Should reject inactive packages", func(t *testing.T) {
		packageRepo := new(MockPackageRepo)
		uc := usecase.NewCreditUsecase(new(MockCreditRepo), packageRepo)
		packageRepo.On("GetByID", mock.Anything, int64(7)).Return(&domain.CreditPackage{ID: 7, IsActive: false}, nil)

		_, err := uc.PurchasePackage(ctx, 1, 7)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "no longer available")
	})

	t.Run("Should grant package credits with validity window", func(t *testing.T) {
		creditRepo := new(MockCreditRepo)
		packageRepo := new(MockPackageRepo)
		uc := usecase.NewCreditUsecase(creditRepo, packageRepo)
		packageRepo.On("GetByID", mock.Anything, int64(7)).Return(&domain.CreditPackage{
			ID: 7, Name: "Starter 10", Credits: 10, ValidityDays: 60, IsActive: true,
		}, nil)
		creditRepo.On("Grant", mock.Anything, mock.AnythingOfType("*domain.CreditEntry"), mock.Anything).
			Return(nil).Run(func(args mock.Arguments) {
			entry := args.Get(1).(*domain.CreditEntry)
			assert.Equal(t, 10, entry.Amount)
			assert.Equal(t, domain.SourcePurchase, entry.Source)
			if assert.NotNil(t, entry.ExpiryDate) {
				assert.WithinDuration(t, time.Now().AddDate(0, 0, 60), *entry.ExpiryDate, time.Minute)
			}
		})

		entry, err := uc.PurchasePackage(ctx, 1, 7)
		assert.NoError(t, err)
		assert.NotNil(t, entry)
	})
}
