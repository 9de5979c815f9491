package usecase_test

import (
	"context"
	"time"

	"go-studio-backend/internal/domain"
	"go-studio-backend/pkg/media"

	"github.com/stretchr/testify/mock"
)

// authedCtx builds a context the way the auth middleware would.
func authedCtx(userID int64, role domain.Role) context.Context {
	ctx := context.WithValue(context.Background(), domain.KeyUserID, userID)
	return context.WithValue(ctx, domain.KeyUserRole, string(role))
}

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}
func (m *MockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) Update(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}
func (m *MockUserRepo) List(ctx context.Context, role domain.Role, page, pageSize int) ([]domain.User, int64, error) {
	args := m.Called(ctx, role, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.User), args.Get(1).(int64), args.Error(2)
}
func (m *MockUserRepo) SetActive(ctx context.Context, id int64, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}

type MockCreditRepo struct {
	mock.Mock
}

func (m *MockCreditRepo) Grant(ctx context.Context, entry *domain.CreditEntry, ref domain.RedemptionRef) error {
	return m.Called(ctx, entry, ref).Error(0)
}
func (m *MockCreditRepo) Redeem(ctx context.Context, userID int64, amount int, ref domain.RedemptionRef) error {
	return m.Called(ctx, userID, amount, ref).Error(0)
}
func (m *MockCreditRepo) Refund(ctx context.Context, userID int64, amount int, ref domain.RedemptionRef) error {
	return m.Called(ctx, userID, amount, ref).Error(0)
}
func (m *MockCreditRepo) Balance(ctx context.Context, userID int64) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}
func (m *MockCreditRepo) ListEntries(ctx context.Context, userID int64) ([]domain.CreditEntry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CreditEntry), args.Error(1)
}
func (m *MockCreditRepo) ListLogs(ctx context.Context, userID int64, limit int) ([]domain.CreditLog, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CreditLog), args.Error(1)
}

type MockPackageRepo struct {
	mock.Mock
}

func (m *MockPackageRepo) List(ctx context.Context, activeOnly bool) ([]domain.CreditPackage, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CreditPackage), args.Error(1)
}
func (m *MockPackageRepo) GetByID(ctx context.Context, id int64) (*domain.CreditPackage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CreditPackage), args.Error(1)
}

type MockBookingRepo struct {
	mock.Mock
}

func (m *MockBookingRepo) CreateClassBooking(ctx context.Context, userID int64, class *domain.Class, creditCost int, staffID *int64) (*domain.Booking, error) {
	args := m.Called(ctx, userID, class, creditCost, staffID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) CreateSessionBooking(ctx context.Context, userID int64, session *domain.PrivateSession, creditCost int) (*domain.Booking, error) {
	args := m.Called(ctx, userID, session, creditCost)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) ListByEntity(ctx context.Context, kind domain.BookingKind, entityID int64) ([]domain.Booking, error) {
	args := m.Called(ctx, kind, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus, reason *string) error {
	return m.Called(ctx, id, status, reason).Error(0)
}
func (m *MockBookingRepo) CancelWithRefund(ctx context.Context, booking *domain.Booking, reason *string, refundAmount int, ref domain.RedemptionRef) error {
	return m.Called(ctx, booking, reason, refundAmount, ref).Error(0)
}
func (m *MockBookingRepo) CountActive(ctx context.Context, kind domain.BookingKind, entityID int64) (int, error) {
	args := m.Called(ctx, kind, entityID)
	return args.Int(0), args.Error(1)
}

type MockScheduleRepo struct {
	mock.Mock
}

func (m *MockScheduleRepo) CreateServiceType(ctx context.Context, st *domain.ServiceType) error {
	return m.Called(ctx, st).Error(0)
}
func (m *MockScheduleRepo) ListServiceTypes(ctx context.Context, activeOnly bool) ([]domain.ServiceType, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ServiceType), args.Error(1)
}
func (m *MockScheduleRepo) GetServiceType(ctx context.Context, id int64) (*domain.ServiceType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ServiceType), args.Error(1)
}
func (m *MockScheduleRepo) UpdateServiceType(ctx context.Context, st *domain.ServiceType) error {
	return m.Called(ctx, st).Error(0)
}
func (m *MockScheduleRepo) CreateClass(ctx context.Context, class *domain.Class) error {
	return m.Called(ctx, class).Error(0)
}
func (m *MockScheduleRepo) GetClass(ctx context.Context, id int64) (*domain.Class, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Class), args.Error(1)
}
func (m *MockScheduleRepo) ListClasses(ctx context.Context, from, to time.Time) ([]domain.Class, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Class), args.Error(1)
}
func (m *MockScheduleRepo) UpdateClassStatus(ctx context.Context, id int64, status domain.InstanceStatus) error {
	return m.Called(ctx, id, status).Error(0)
}
func (m *MockScheduleRepo) CreateSession(ctx context.Context, session *domain.PrivateSession) error {
	return m.Called(ctx, session).Error(0)
}
func (m *MockScheduleRepo) GetSession(ctx context.Context, id int64) (*domain.PrivateSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PrivateSession), args.Error(1)
}
func (m *MockScheduleRepo) ListSessionsByTrainer(ctx context.Context, trainerID int64, from, to time.Time) ([]domain.PrivateSession, error) {
	args := m.Called(ctx, trainerID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PrivateSession), args.Error(1)
}
func (m *MockScheduleRepo) UpdateSessionStatus(ctx context.Context, id int64, status domain.InstanceStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

type MockOnboardingRepo struct {
	mock.Mock
}

func (m *MockOnboardingRepo) GetOrCreate(ctx context.Context, userID int64) (*domain.HomeUserOnboarding, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HomeUserOnboarding), args.Error(1)
}
func (m *MockOnboardingRepo) Get(ctx context.Context, userID int64) (*domain.HomeUserOnboarding, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HomeUserOnboarding), args.Error(1)
}
func (m *MockOnboardingRepo) UpdateStage(ctx context.Context, userID int64, stage domain.OnboardingStage, status domain.StageStatus, completedAt *time.Time) error {
	return m.Called(ctx, userID, stage, status, completedAt).Error(0)
}
func (m *MockOnboardingRepo) UpsertPostureAssessment(ctx context.Context, pa *domain.PostureAssessment) error {
	return m.Called(ctx, pa).Error(0)
}
func (m *MockOnboardingRepo) GetPostureAssessment(ctx context.Context, userID int64) (*domain.PostureAssessment, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PostureAssessment), args.Error(1)
}
func (m *MockOnboardingRepo) LogSafetyVideoProgress(ctx context.Context, log *domain.SafetyVideoLog) error {
	return m.Called(ctx, log).Error(0)
}
func (m *MockOnboardingRepo) GetSafetyVideoProgress(ctx context.Context, userID int64, videoID string) (*domain.SafetyVideoLog, error) {
	args := m.Called(ctx, userID, videoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SafetyVideoLog), args.Error(1)
}
func (m *MockOnboardingRepo) CountByStageStatus(ctx context.Context) (map[domain.OnboardingStage]map[domain.StageStatus]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.OnboardingStage]map[domain.StageStatus]int64), args.Error(1)
}
func (m *MockOnboardingRepo) CountEligibility(ctx context.Context) (int64, int64, int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Get(1).(int64), args.Get(2).(int64), args.Error(3)
}

type MockMembershipRepo struct {
	mock.Mock
}

func (m *MockMembershipRepo) CreateType(ctx context.Context, mt *domain.MembershipType) error {
	return m.Called(ctx, mt).Error(0)
}
func (m *MockMembershipRepo) ListTypes(ctx context.Context, activeOnly bool) ([]domain.MembershipType, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MembershipType), args.Error(1)
}
func (m *MockMembershipRepo) GetType(ctx context.Context, id int64) (*domain.MembershipType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MembershipType), args.Error(1)
}
func (m *MockMembershipRepo) Create(ctx context.Context, membership *domain.Membership) error {
	return m.Called(ctx, membership).Error(0)
}
func (m *MockMembershipRepo) GetByID(ctx context.Context, id int64) (*domain.Membership, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Membership), args.Error(1)
}
func (m *MockMembershipRepo) GetActiveByUser(ctx context.Context, userID int64) (*domain.Membership, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Membership), args.Error(1)
}
func (m *MockMembershipRepo) UpdateStatus(ctx context.Context, id int64, status domain.MembershipStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

type MockMessageRepo struct {
	mock.Mock
}

func (m *MockMessageRepo) Create(ctx context.Context, msg *domain.ClientMessage) error {
	return m.Called(ctx, msg).Error(0)
}
func (m *MockMessageRepo) GetByID(ctx context.Context, id int64) (*domain.ClientMessage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClientMessage), args.Error(1)
}
func (m *MockMessageRepo) ListByRecipient(ctx context.Context, recipientID int64, unreadOnly bool) ([]domain.ClientMessage, error) {
	args := m.Called(ctx, recipientID, unreadOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ClientMessage), args.Error(1)
}
func (m *MockMessageRepo) MarkRead(ctx context.Context, id int64, readAt time.Time) error {
	return m.Called(ctx, id, readAt).Error(0)
}
func (m *MockMessageRepo) CountUnread(ctx context.Context, recipientID int64) (int64, error) {
	args := m.Called(ctx, recipientID)
	return args.Get(0).(int64), args.Error(1)
}

type MockReportRepo struct {
	mock.Mock
}

func (m *MockReportRepo) BookingCounts(ctx context.Context, from, to time.Time) (int64, int64, int64, int64, int64, int64, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(int64), args.Get(1).(int64), args.Get(2).(int64),
		args.Get(3).(int64), args.Get(4).(int64), args.Get(5).(int64), args.Error(6)
}
func (m *MockReportRepo) DailyRedeemedCredits(ctx context.Context, from, to time.Time) (map[time.Time]int64, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[time.Time]int64), args.Error(1)
}
func (m *MockReportRepo) ClassUtilization(ctx context.Context, from, to time.Time) ([]domain.ClassUtilization, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ClassUtilization), args.Error(1)
}
func (m *MockReportRepo) ExportBookings(ctx context.Context, from, to time.Time) ([]domain.RawBookingRow, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RawBookingRow), args.Error(1)
}

type MockConfigRepo struct {
	mock.Mock
}

func (m *MockConfigRepo) Get(ctx context.Context, id string) (*domain.SystemConfiguration, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SystemConfiguration), args.Error(1)
}
func (m *MockConfigRepo) Upsert(ctx context.Context, id string, document []byte, updatedBy *int64) (*domain.SystemConfiguration, error) {
	args := m.Called(ctx, id, document, updatedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SystemConfiguration), args.Error(1)
}

type MockMediaStorage struct {
	mock.Mock
}

func (m *MockMediaStorage) PutPostureMedia(ctx context.Context, userID int64, slot string, data []byte, contentType string, thumbnail []byte) (*media.StoredObject, error) {
	args := m.Called(ctx, userID, slot, data, contentType, thumbnail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*media.StoredObject), args.Error(1)
}
func (m *MockMediaStorage) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, key, expiry)
	return args.String(0), args.Error(1)
}
