package domain

import (
	"context"
	"time"
)

// CreditSource records where a grant came from.
type CreditSource string

const (
	SourceMembership CreditSource = "MEMBERSHIP"
	SourcePurchase   CreditSource = "PURCHASE"
	SourceAdmin      CreditSource = "ADMIN"
	SourcePromotion  CreditSource = "PROMOTION"
	SourceRefund     CreditSource = "REFUND"
)

func (s CreditSource) IsValid() bool {
	switch s {
	case SourceMembership, SourcePurchase, SourceAdmin, SourcePromotion, SourceRefund:
		return true
	}
	return false
}

type CreditStatus string

const (
	CreditActive  CreditStatus = "ACTIVE"
	CreditUsed    CreditStatus = "USED"
	CreditExpired CreditStatus = "EXPIRED"
)

// CreditOperation is the kind of an immutable ledger log record.
type CreditOperation string

const (
	OpGrant  CreditOperation = "GRANT"
	OpRedeem CreditOperation = "REDEEM"
	OpExpire CreditOperation = "EXPIRE"
	OpRefund CreditOperation = "REFUND"
)

// CreditEntry is one grant of spendable session credits. Redemption
// decrements RemainingAmount; the original Amount never changes.
// Invariant: 0 <= RemainingAmount <= Amount.
type CreditEntry struct {
	ID              int64        `json:"id"`
	UserID          int64        `json:"user_id"`
	Amount          int          `json:"amount"`
	RemainingAmount int          `json:"remaining_amount"`
	ExpiryDate      *time.Time   `json:"expiry_date,omitempty"`
	Source          CreditSource `json:"source"`
	SourceID        *string      `json:"source_id,omitempty"`
	Status          CreditStatus `json:"status"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// Expired reports whether the entry's expiry date has passed at t.
func (e *CreditEntry) Expired(t time.Time) bool {
	return e.ExpiryDate != nil && e.ExpiryDate.Before(t)
}

// CreditLog is one append-only audit record of a ledger mutation. Rows are
// hash-chained: RowHash covers the record plus PreviousHash, so any
// after-the-fact edit breaks the chain.
type CreditLog struct {
	ID                int64           `json:"id"`
	CreditID          *int64          `json:"credit_id,omitempty"`
	UserID            int64           `json:"user_id"`
	Amount            int             `json:"amount"`
	Operation         CreditOperation `json:"operation"`
	RelatedEntityType *string         `json:"related_entity_type,omitempty"` // CLASS, PRIVATE_SESSION, MEMBERSHIP, ADMIN
	RelatedEntityID   *string         `json:"related_entity_id,omitempty"`
	TransactionID     string          `json:"transaction_id"`
	Note              *string         `json:"note,omitempty"`
	PreviousHash      string          `json:"-"`
	RowHash           string          `json:"-"`
	CreatedAt         time.Time       `json:"created_at"`
}

// RedemptionRef identifies what triggered a redeem so the audit log can
// point back at it.
type RedemptionRef struct {
	EntityType string
	EntityID   string
	Note       string
}

type GrantRequest struct {
	UserID   int64        `json:"user_id" validate:"required"`
	Amount   int          `json:"amount" validate:"required,gt=0"`
	Source   CreditSource `json:"source" validate:"required"`
	SourceID *string      `json:"source_id,omitempty"`
	Expiry   *time.Time   `json:"expiry,omitempty"`
	Note     *string      `json:"note,omitempty" validate:"omitempty,max=500"`
}

// CreditPackage is a purchasable bundle of credits.
type CreditPackage struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description,omitempty"`
	Credits      int       `json:"credits"`
	Price        string    `json:"price"`
	ValidityDays int       `json:"validity_days"`
	IsBestValue  bool      `json:"is_best_value"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type CreditRepository interface {
	// Grant inserts a new entry and its GRANT log row in one transaction.
	Grant(ctx context.Context, entry *CreditEntry, ref RedemptionRef) error
	// Redeem consumes amount from the user's active unexpired entries,
	// oldest expiry first, atomically. Returns ErrInsufficientCredit and
	// persists nothing when the balance cannot cover the amount.
	Redeem(ctx context.Context, userID int64, amount int, ref RedemptionRef) error
	// Refund restores amount against the entry that funded relatedEntryID,
	// spilling overflow into a fresh REFUND-sourced entry.
	Refund(ctx context.Context, userID int64, amount int, ref RedemptionRef) error
	// Balance sums remaining amounts of active unexpired entries, lazily
	// expiring any entry whose date has passed.
	Balance(ctx context.Context, userID int64) (int, error)
	ListEntries(ctx context.Context, userID int64) ([]CreditEntry, error)
	ListLogs(ctx context.Context, userID int64, limit int) ([]CreditLog, error)
}

type CreditPackageRepository interface {
	List(ctx context.Context, activeOnly bool) ([]CreditPackage, error)
	GetByID(ctx context.Context, id int64) (*CreditPackage, error)
}

type CreditUsecase interface {
	Grant(ctx context.Context, req *GrantRequest) (*CreditEntry, error)
	Redeem(ctx context.Context, userID int64, amount int, ref RedemptionRef) error
	Refund(ctx context.Context, userID int64, amount int, ref RedemptionRef) error
	Balance(ctx context.Context, userID int64) (int, error)
	History(ctx context.Context, userID int64, limit int) ([]CreditLog, error)
	ListPackages(ctx context.Context) ([]CreditPackage, error)
	PurchasePackage(ctx context.Context, userID int64, packageID int64) (*CreditEntry, error)
}
