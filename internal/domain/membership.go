package domain

import (
	"context"
	"time"
)

type MembershipStatus string

const (
	MembershipActive    MembershipStatus = "ACTIVE"
	MembershipPaused    MembershipStatus = "PAUSED"
	MembershipCancelled MembershipStatus = "CANCELLED"
	MembershipExpired   MembershipStatus = "EXPIRED"
)

var membershipTransitions = map[MembershipStatus][]MembershipStatus{
	MembershipActive:    {MembershipPaused, MembershipCancelled, MembershipExpired},
	MembershipPaused:    {MembershipActive, MembershipCancelled, MembershipExpired},
	MembershipCancelled: {},
	MembershipExpired:   {},
}

func (s MembershipStatus) CanTransition(next MembershipStatus) bool {
	for _, allowed := range membershipTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// MembershipType is the purchasable plan definition. CreditAmount is granted
// through the ledger on each CreditFrequency period while the membership is
// active.
type MembershipType struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Description     *string   `json:"description,omitempty"`
	Price           string    `json:"price"`
	DurationDays    int       `json:"duration_days"`
	CreditAmount    int       `json:"credit_amount"`
	CreditFrequency string    `json:"credit_frequency"` // weekly, monthly
	Features        []string  `json:"features,omitempty"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type Membership struct {
	ID               int64            `json:"id"`
	UserID           int64            `json:"user_id"`
	MembershipTypeID int64            `json:"membership_type_id"`
	StartDate        time.Time        `json:"start_date"`
	EndDate          time.Time        `json:"end_date"`
	Status           MembershipStatus `json:"status"`
	AutoRenew        bool             `json:"auto_renew"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

type CreateMembershipTypeRequest struct {
	Name            string   `json:"name" validate:"required,max=255"`
	Description     *string  `json:"description,omitempty" validate:"omitempty,max=2000"`
	Price           string   `json:"price" validate:"required"`
	DurationDays    int      `json:"duration_days" validate:"required,gt=0"`
	CreditAmount    int      `json:"credit_amount" validate:"required,gt=0"`
	CreditFrequency string   `json:"credit_frequency" validate:"required,oneof=weekly monthly"`
	Features        []string `json:"features,omitempty"`
}

type EnrollMembershipRequest struct {
	MembershipTypeID int64 `json:"membership_type_id" validate:"required"`
	AutoRenew        bool  `json:"auto_renew"`
}

type MembershipRepository interface {
	CreateType(ctx context.Context, mt *MembershipType) error
	ListTypes(ctx context.Context, activeOnly bool) ([]MembershipType, error)
	GetType(ctx context.Context, id int64) (*MembershipType, error)

	Create(ctx context.Context, m *Membership) error
	GetByID(ctx context.Context, id int64) (*Membership, error)
	GetActiveByUser(ctx context.Context, userID int64) (*Membership, error)
	UpdateStatus(ctx context.Context, id int64, status MembershipStatus) error
}

type MembershipUsecase interface {
	CreateType(ctx context.Context, req *CreateMembershipTypeRequest) (*MembershipType, error)
	ListTypes(ctx context.Context) ([]MembershipType, error)
	// Enroll creates an ACTIVE membership and grants its first credit
	// allocation through the ledger.
	Enroll(ctx context.Context, userID int64, req *EnrollMembershipRequest) (*Membership, error)
	Pause(ctx context.Context, userID, membershipID int64) error
	Resume(ctx context.Context, userID, membershipID int64) error
	Cancel(ctx context.Context, userID, membershipID int64) error
	MyMembership(ctx context.Context, userID int64) (*Membership, error)
}
