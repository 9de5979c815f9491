package domain

import (
	"context"
	"time"
)

type InstanceStatus string

const (
	InstanceScheduled InstanceStatus = "SCHEDULED"
	InstanceCancelled InstanceStatus = "CANCELLED"
	InstanceCompleted InstanceStatus = "COMPLETED"
)

// Terminal instances are immutable: no edits, no new bookings.
func (s InstanceStatus) Terminal() bool {
	return s == InstanceCancelled || s == InstanceCompleted
}

// ServiceType describes a category of bookable offering (EMS full body,
// recovery, etc.) with its default duration and credit cost.
type ServiceType struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Color       *string   `json:"color,omitempty"`
	Duration    int       `json:"duration"` // minutes
	CreditCost  int       `json:"credit_cost"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Class is a scheduled group occurrence accepting bookings up to Capacity.
type Class struct {
	ID            int64          `json:"id"`
	Name          string         `json:"name"`
	Description   *string        `json:"description,omitempty"`
	ServiceTypeID *int64         `json:"service_type_id,omitempty"`
	InstructorID  *int64         `json:"instructor_id,omitempty"`
	StartTime     time.Time      `json:"start_time"`
	EndTime       time.Time      `json:"end_time"`
	Duration      int            `json:"duration"`
	Capacity      int            `json:"capacity"`
	Location      *string        `json:"location,omitempty"`
	CreditCost    int            `json:"credit_cost"`
	Status        InstanceStatus `json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// PrivateSession is a one-on-one occurrence; capacity is implicitly 1.
type PrivateSession struct {
	ID         int64          `json:"id"`
	ClientID   *int64         `json:"client_id,omitempty"` // nil until booked
	TrainerID  int64          `json:"trainer_id"`
	Date       time.Time      `json:"date"`
	StartTime  time.Time      `json:"start_time"`
	EndTime    time.Time      `json:"end_time"`
	Duration   int            `json:"duration"`
	Location   *string        `json:"location,omitempty"`
	Notes      *string        `json:"notes,omitempty"`
	Status     InstanceStatus `json:"status"`
	CreditCost int            `json:"credit_cost"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

type CreateClassRequest struct {
	Name          string    `json:"name" validate:"required,max=255"`
	Description   *string   `json:"description,omitempty" validate:"omitempty,max=2000"`
	ServiceTypeID *int64    `json:"service_type_id,omitempty"`
	InstructorID  *int64    `json:"instructor_id,omitempty"`
	StartTime     time.Time `json:"start_time" validate:"required"`
	EndTime       time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
	Capacity      int       `json:"capacity" validate:"required,gt=0,lte=100"`
	Location      *string   `json:"location,omitempty" validate:"omitempty,max=255"`
	CreditCost    int       `json:"credit_cost" validate:"gte=0"`
}

type CreateSessionRequest struct {
	TrainerID  int64     `json:"trainer_id" validate:"required"`
	StartTime  time.Time `json:"start_time" validate:"required"`
	EndTime    time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
	Location   *string   `json:"location,omitempty" validate:"omitempty,max=255"`
	Notes      *string   `json:"notes,omitempty" validate:"omitempty,max=2000"`
	CreditCost int       `json:"credit_cost" validate:"gte=0"`
}

type CreateServiceTypeRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Color       *string `json:"color,omitempty" validate:"omitempty,max=20"`
	Duration    int     `json:"duration" validate:"required,gt=0"`
	CreditCost  int     `json:"credit_cost" validate:"gte=0"`
}

type ScheduleRepository interface {
	CreateServiceType(ctx context.Context, st *ServiceType) error
	ListServiceTypes(ctx context.Context, activeOnly bool) ([]ServiceType, error)
	GetServiceType(ctx context.Context, id int64) (*ServiceType, error)
	UpdateServiceType(ctx context.Context, st *ServiceType) error

	CreateClass(ctx context.Context, class *Class) error
	GetClass(ctx context.Context, id int64) (*Class, error)
	ListClasses(ctx context.Context, from, to time.Time) ([]Class, error)
	UpdateClassStatus(ctx context.Context, id int64, status InstanceStatus) error

	CreateSession(ctx context.Context, session *PrivateSession) error
	GetSession(ctx context.Context, id int64) (*PrivateSession, error)
	ListSessionsByTrainer(ctx context.Context, trainerID int64, from, to time.Time) ([]PrivateSession, error)
	UpdateSessionStatus(ctx context.Context, id int64, status InstanceStatus) error
}

type ScheduleUsecase interface {
	CreateServiceType(ctx context.Context, req *CreateServiceTypeRequest) (*ServiceType, error)
	ListServiceTypes(ctx context.Context) ([]ServiceType, error)

	CreateClass(ctx context.Context, actorID int64, req *CreateClassRequest) (*Class, error)
	ListClasses(ctx context.Context, from, to time.Time) ([]Class, error)
	GetClass(ctx context.Context, id int64) (*Class, error)
	// CancelClass cancels the instance and refunds every active booking.
	CancelClass(ctx context.Context, actorID, classID int64) error
	CompleteClass(ctx context.Context, actorID, classID int64) error

	CreateSession(ctx context.Context, actorID int64, req *CreateSessionRequest) (*PrivateSession, error)
	TrainerSessions(ctx context.Context, trainerID int64, from, to time.Time) ([]PrivateSession, error)
}
