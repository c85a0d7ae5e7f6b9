package store

import (
	"context"
	"errors"
	"time"

	"inheritance-vault-go/internal/models"

	"github.com/shopspring/decimal"
)

// Sentinel errors shared across all backend implementations.
var (
	ErrUnauthorized    = errors.New("caller is not authorized")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("record not found")
	ErrAlreadyClaimed  = errors.New("record already claimed")
	ErrTooEarly        = errors.New("time lock has not expired")
	ErrTransferFailed  = errors.New("value transfer failed")
	ErrOverflow        = errors.New("unlock time overflows")
)

// GracePeriod is how long past a record's unlock time the admin must wait
// before an unclaimed record becomes eligible for emergency withdrawal.
const GracePeriod = 10 * 365 * 24 * time.Hour // 315360000 seconds

// CreateParams contains the parameters for creating an inheritance record.
type CreateParams struct {
	Caller       string // must be the current admin
	Beneficiary  string
	Amount       decimal.Decimal
	LockDuration time.Duration
	Description  string
}

// VaultStore defines the contract that every backend (SQLite, memory, ...) must satisfy.
//
// Mutating operations take the caller identity explicitly; the current time
// comes from the clock the backend was constructed with. Each operation either
// fully commits or fully fails with no observable partial state.
type VaultStore interface {
	// --- Mutations ---
	Create(ctx context.Context, params CreateParams) (int64, error)
	Claim(ctx context.Context, recordId int64, caller string) (decimal.Decimal, error)
	EmergencyWithdraw(ctx context.Context, recordId int64, caller string) (decimal.Decimal, error)
	TransferAdmin(ctx context.Context, newAdmin, caller string) error

	// --- Reads ---
	GetDetails(ctx context.Context, recordId int64) (*models.RecordDetails, error)
	IsReadyToClaim(ctx context.Context, recordId int64) (bool, error)
	ListByBeneficiary(ctx context.Context, beneficiary string) ([]int64, error)
	TotalRecords(ctx context.Context) (int64, error)
	StoreBalance(ctx context.Context) (decimal.Decimal, error)
	Admin(ctx context.Context) (string, error)
	Events(ctx context.Context) ([]models.Event, error)

	// --- Lifecycle ---
	Close()
}
