package usecase_test

import (
	"testing"

	"go-studio-backend/internal/domain"
	"go-studio-backend/internal/usecase"
	"go-studio-backend/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func scheduleDeps() (*MockScheduleRepo, *MockBookingRepo, domain.ScheduleUsecase) {
	scheduleRepo := new(MockScheduleRepo)
	bookingRepo := new(MockBookingRepo)
	uc := usecase.NewScheduleUsecase(scheduleRepo, bookingRepo)
	return scheduleRepo, bookingRepo, uc
}

func TestCancelClass(t *testing.T) {
	adminCtx := authedCtx(50, domain.RoleAdmin)
	class := &domain.Class{ID: 10, Name: "EMS Full Body", Status: domain.InstanceScheduled, CreditCost: 2}

	t.Run("Should refund every active booking and then cancel the class", func(t *testing.T) {
		scheduleRepo, bookingRepo, uc := scheduleDeps()
		scheduleRepo.On("GetClass", mock.Anything, int64(10)).Return(class, nil)
		bookingRepo.On("ListByEntity", mock.Anything, domain.BookingClass, int64(10)).Return([]domain.Booking{
			{ID: 100, UserID: 1, Kind: domain.BookingClass, EntityID: 10, Status: domain.StatusBooked, CreditAmount: 2},
			{ID: 101, UserID: 2, Kind: domain.BookingClass, EntityID: 10, Status: domain.StatusCancelled, CreditAmount: 2},
			{ID: 102, UserID: 3, Kind: domain.BookingClass, EntityID: 10, Status: domain.StatusBooked, CreditAmount: 0},
		}, nil)
		bookingRepo.On("CancelWithRefund", mock.Anything, mock.AnythingOfType("*domain.Booking"), mock.Anything, mock.Anything, mock.Anything).Return(nil)
		scheduleRepo.On("UpdateClassStatus", mock.Anything, int64(10), domain.InstanceCancelled).Return(nil)

		err := uc.CancelClass(adminCtx, 50, 10)
		assert.NoError(t, err)
		// Already-cancelled bookings are skipped; the free admin booking is
		// still cancelled, just with nothing to refund.
		bookingRepo.AssertNumberOfCalls(t, "CancelWithRefund", 2)
	})

	t.Run("Should leave the class scheduled when a refund fails", func(t *testing.T) {
		scheduleRepo, bookingRepo, uc := scheduleDeps()
		scheduleRepo.On("GetClass", mock.Anything, int64(10)).Return(class, nil)
		bookingRepo.On("ListByEntity", mock.Anything, domain.BookingClass, int64(10)).Return([]domain.Booking{
			{ID: 100, UserID: 1, Kind: domain.BookingClass, EntityID: 10, Status: domain.StatusBooked, CreditAmount: 2},
		}, nil)
		bookingRepo.On("CancelWithRefund", mock.Anything, mock.AnythingOfType("*domain.Booking"), mock.Anything, 2, mock.Anything).
			Return(apperror.Unavailable("Credit store unavailable", nil))

		err := uc.CancelClass(adminCtx, 50, 10)
		assert.Error(t, err)
		scheduleRepo.AssertNotCalled(t, "UpdateClassStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should reject cancelling a completed class", func(t *testing.T) {
		scheduleRepo, bookingRepo, uc := scheduleDeps()
		done := &domain.Class{ID: 10, Status: domain.InstanceCompleted}
		scheduleRepo.On("GetClass", mock.Anything, int64(10)).Return(done, nil)

		err := uc.CancelClass(adminCtx, 50, 10)
		assert.Error(t, err)
		bookingRepo.AssertNotCalled(t, "ListByEntity", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should require staff role", func(t *testing.T) {
		_, _, uc := scheduleDeps()
		err := uc.CancelClass(authedCtx(1, domain.RoleClient), 1, 10)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Staff role required")
	})
}
