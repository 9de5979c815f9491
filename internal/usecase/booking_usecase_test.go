package usecase_test

import (
	"testing"
	"time"

	"go-studio-backend/internal/domain"
	"go-studio-backend/internal/usecase"
	"go-studio-backend/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func bookingDeps() (*MockBookingRepo, *MockScheduleRepo, *MockUserRepo, *MockOnboardingRepo, domain.BookingUsecase) {
	bookingRepo := new(MockBookingRepo)
	scheduleRepo := new(MockScheduleRepo)
	userRepo := new(MockUserRepo)
	onboardingRepo := new(MockOnboardingRepo)
	uc := usecase.NewBookingUsecase(bookingRepo, scheduleRepo, userRepo, onboardingRepo,
		usecase.BookingConfig{CancellationCutoffHours: 24})
	return bookingRepo, scheduleRepo, userRepo, onboardingRepo, uc
}

func scheduledClass(start time.Time) *domain.Class {
	return &domain.Class{
		ID:         10,
		Name:       "EMS Full Body",
		StartTime:  start,
		EndTime:    start.Add(time.Hour),
		Capacity:   8,
		CreditCost: 2,
		Status:     domain.InstanceScheduled,
	}
}

func TestBookClassEligibility(t *testing.T) {
	clientCtx := authedCtx(1, domain.RoleClient)
	homeCtx := authedCtx(2, domain.RoleHomeUser)

	t.Run("Should block home user who never started onboarding", func(t *testing.T) {
		bookingRepo, scheduleRepo, userRepo, onboardingRepo, uc := bookingDeps()
		scheduleRepo.On("GetClass", mock.Anything, int64(10)).Return(scheduledClass(time.Now().Add(48*time.Hour)), nil)
		userRepo.On("GetByID", mock.Anything, int64(2)).Return(&domain.User{ID: 2, Role: domain.RoleHomeUser}, nil)
		onboardingRepo.On("Get", mock.Anything, int64(2)).Return(nil, domain.ErrNotFound)

		_, err := uc.BookClass(homeCtx, 2, 10)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Complete onboarding before booking")
		bookingRepo.AssertNotCalled(t, "CreateClassBooking")
	})

	t.Run("Should block home user pending medical review", func(t *testing.T) {
		bookingRepo, scheduleRepo, userRepo, onboardingRepo, uc := bookingDeps()
		scheduleRepo.On("GetClass", mock.Anything, int64(10)).Return(scheduledClass(time.Now().Add(48*time.Hour)), nil)
		userRepo.On("GetByID", mock.Anything, int64(2)).Return(&domain.User{ID: 2, Role: domain.RoleHomeUser}, nil)
		onboardingRepo.On("Get", mock.Anything, int64(2)).Return(&domain.HomeUserOnboarding{
			UserID:                  2,
			ParqStatus:              domain.StageMedicalReview,
			PostureAssessmentStatus: domain.StageCompleted,
			SafetyVideoStatus:       domain.StageCompleted,
		}, nil)

		_, err := uc.BookClass(homeCtx, 2, 10)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "medical review")
		bookingRepo.AssertNotCalled(t, "CreateClassBooking")
	})

	t.Run("Should let studio client book without onboarding", func(t *testing.T) {
		bookingRepo, scheduleRepo, userRepo, onboardingRepo, uc := bookingDeps()
		class := scheduledClass(time.Now().Add(48 * time.Hour))
		scheduleRepo.On("GetClass", mock.Anything, int64(10)).Return(class, nil)
		userRepo.On("GetByID", mock.Anything, int64(1)).Return(&domain.User{ID: 1, Role: domain.RoleClient}, nil)
		bookingRepo.On("CreateClassBooking", mock.Anything, int64(1), class, 2, (*int64)(nil)).
			Return(&domain.Booking{ID: 100, UserID: 1, Status: domain.StatusBooked}, nil)

		booking, err := uc.BookClass(clientCtx, 1, 10)
		assert.NoError(t, err)
		assert.Equal(t, domain.StatusBooked, booking.Status)
		onboardingRepo.AssertNotCalled(t, "Get")
	})

	t.Run("Should reject booking a class that already started", func(t *testing.T) {
		_, scheduleRepo, _, _, uc := bookingDeps()
		scheduleRepo.On("GetClass", mock.Anything, int64(10)).Return(scheduledClass(time.Now().Add(-time.Hour)), nil)

		_, err := uc.BookClass(clientCtx, 1, 10)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already started")
	})
}

func TestCancelBookingRefundCutoff(t *testing.T) {
	booked := func(start time.Time) *domain.Booking {
		return &domain.Booking{
			ID:           100,
			UserID:       1,
			Kind:         domain.BookingClass,
			EntityID:     10,
			StartTime:    start,
			Status:       domain.StatusBooked,
			CreditAmount: 2,
		}
	}

	t.Run("Should refund when cancelled before the cutoff", func(t *testing.T) {
		bookingRepo, _, _, _, uc := bookingDeps()
		b := booked(time.Now().Add(48 * time.Hour))
		bookingRepo.On("GetByID", mock.Anything, int64(100)).Return(b, nil)
		bookingRepo.On("CancelWithRefund", mock.Anything, b, (*string)(nil), 2, mock.Anything).Return(nil)

		err := uc.CancelBooking(authedCtx(1, domain.RoleClient), 1, 100, nil)
		assert.NoError(t, err)
		bookingRepo.AssertCalled(t, "CancelWithRefund", mock.Anything, b, (*string)(nil), 2, mock.Anything)
	})

	t.Run("Should not refund inside the cutoff window", func(t *testing.T) {
		bookingRepo, _, _, _, uc := bookingDeps()
		b := booked(time.Now().Add(2 * time.Hour))
		bookingRepo.On("GetByID", mock.Anything, int64(100)).Return(b, nil)
		bookingRepo.On("CancelWithRefund", mock.Anything, b, (*string)(nil), 0, mock.Anything).Return(nil)

		err := uc.CancelBooking(authedCtx(1, domain.RoleClient), 1, 100, nil)
		assert.NoError(t, err)
		bookingRepo.AssertCalled(t, "CancelWithRefund", mock.Anything, b, (*string)(nil), 0, mock.Anything)
	})

	t.Run("Should keep the booking cancellable when the store fails mid-cancel", func(t *testing.T) {
		bookingRepo, _, _, _, uc := bookingDeps()
		b := booked(time.Now().Add(48 * time.Hour))
		ctx := authedCtx(1, domain.RoleClient)
		bookingRepo.On("GetByID", mock.Anything, int64(100)).Return(b, nil)
		bookingRepo.On("CancelWithRefund", mock.Anything, b, (*string)(nil), 2, mock.Anything).
			Return(apperror.Unavailable("Credit store unavailable", nil)).Once()

		err := uc.CancelBooking(ctx, 1, 100, nil)
		assert.Error(t, err)

		// The failed attempt rolled back, so the booking is still BOOKED and
		// a retry cancels it with the refund intact.
		bookingRepo.On("CancelWithRefund", mock.Anything, b, (*string)(nil), 2, mock.Anything).Return(nil).Once()
		err = uc.CancelBooking(ctx, 1, 100, nil)
		assert.NoError(t, err)
		bookingRepo.AssertNumberOfCalls(t, "CancelWithRefund", 2)
	})

	t.Run("Should reject cancelling another user's booking", func(t *testing.T) {
		bookingRepo, _, _, _, uc := bookingDeps()
		bookingRepo.On("GetByID", mock.Anything, int64(100)).Return(booked(time.Now().Add(48*time.Hour)), nil)

		err := uc.CancelBooking(authedCtx(99, domain.RoleClient), 99, 100, nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "another user's booking")
	})

	t.Run("Should allow staff to cancel on a client's behalf", func(t *testing.T) {
		bookingRepo, _, _, _, uc := bookingDeps()
		b := booked(time.Now().Add(48 * time.Hour))
		bookingRepo.On("GetByID", mock.Anything, int64(100)).Return(b, nil)
		bookingRepo.On("CancelWithRefund", mock.Anything, b, (*string)(nil), 2, mock.Anything).Return(nil)

		err := uc.CancelBooking(authedCtx(50, domain.RoleAdmin), 50, 100, nil)
		assert.NoError(t, err)
	})

	t.Run("Should reject cancelling an already cancelled booking", func(t *testing.T) {
		bookingRepo, _, _, _, uc := bookingDeps()
		b := booked(time.Now().Add(48 * time.Hour))
		b.Status = domain.StatusCancelled
		bookingRepo.On("GetByID", mock.Anything, int64(100)).Return(b, nil)

		err := uc.CancelBooking(authedCtx(1, domain.RoleClient), 1, 100, nil)
		assert.Error(t, err)
	})
}

func TestAdminBook(t *testing.T) {
	t.Run("Should reject non-staff caller", func(t *testing.T) {
		_, _, _, _, uc := bookingDeps()
		_, err := uc.AdminBook(authedCtx(1, domain.RoleClient), 1, &domain.AdminBookRequest{UserID: 2, ClassID: 10})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Staff role required")
	})

	t.Run("Should book free of charge for the client", func(t *testing.T) {
		bookingRepo, scheduleRepo, userRepo, _, uc := bookingDeps()
		class := scheduledClass(time.Now().Add(48 * time.Hour))
		staffID := int64(50)
		userRepo.On("GetByID", mock.Anything, int64(2)).Return(&domain.User{ID: 2, Role: domain.RoleClient}, nil)
		scheduleRepo.On("GetClass", mock.Anything, int64(10)).Return(class, nil)
		bookingRepo.On("CreateClassBooking", mock.Anything, int64(2), class, 0, &staffID).
			Return(&domain.Booking{ID: 101, UserID: 2, StaffID: &staffID, Status: domain.StatusBooked}, nil)

		booking, err := uc.AdminBook(authedCtx(50, domain.RoleAdmin), 50, &domain.AdminBookRequest{UserID: 2, ClassID: 10})
		assert.NoError(t, err)
		assert.Equal(t, int64(2), booking.UserID)
		bookingRepo.AssertCalled(t, "CreateClassBooking", mock.Anything, int64(2), class, 0, &staffID)
	})
}

func TestMarkAttendance(t *testing.T) {
	t.Run("Should reject statuses other than ATTENDED and NO_SHOW", func(t *testing.T) {
		_, _, _, _, uc := bookingDeps()
		err := uc.MarkAttendance(authedCtx(50, domain.RoleTrainer), 50, 100, domain.StatusCancelled)
		assert.Error(t, err)
	})

	t.Run("Should mark a booked client attended", func(t *testing.T) {
		bookingRepo, _, _, _, uc := bookingDeps()
		bookingRepo.On("GetByID", mock.Anything, int64(100)).Return(&domain.Booking{
			ID: 100, UserID: 1, Status: domain.StatusBooked,
		}, nil)
		bookingRepo.On("UpdateStatus", mock.Anything, int64(100), domain.StatusAttended, (*string)(nil)).Return(nil)

		err := uc.MarkAttendance(authedCtx(50, domain.RoleTrainer), 50, 100, domain.StatusAttended)
		assert.NoError(t, err)
	})
}

func TestBookingErrorMapping(t *testing.T) {
	clientCtx := authedCtx(1, domain.RoleClient)

	cases := []struct {
		name     string
		repoErr  error
		expected string
	}{
		{"Should surface full capacity as a bad request", domain.ErrClassFull, "full capacity"},
		{"Should surface double booking as a bad request", domain.ErrAlreadyBooked, "already have an active booking"},
		{"Should surface insufficient credit as a bad request", domain.ErrInsufficientCredit, "Insufficient credit"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bookingRepo, scheduleRepo, userRepo, _, uc := bookingDeps()
			class := scheduledClass(time.Now().Add(48 * time.Hour))
			scheduleRepo.On("GetClass", mock.Anything, int64(10)).Return(class, nil)
			userRepo.On("GetByID", mock.Anything, int64(1)).Return(&domain.User{ID: 1, Role: domain.RoleClient}, nil)
			bookingRepo.On("CreateClassBooking", mock.Anything, int64(1), class, 2, (*int64)(nil)).
				Return(nil, tc.repoErr)

			_, err := uc.BookClass(clientCtx, 1, 10)
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tc.expected)
		})
	}
}
