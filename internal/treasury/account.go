package treasury

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrInsufficientFunds is reported when a transfer exceeds the held balance.
var ErrInsufficientFunds = errors.New("insufficient treasury funds")

// Payer is the value-transfer primitive the vault backends depend on: it pays
// value out to an identity and reports success or failure.
type Payer interface {
	Transfer(to string, amount decimal.Decimal) error
}

// Custodian is a Payer that also keeps the custody accounting itself. The
// memory backend uses a Custodian; the SQLite backend keeps its balance in
// the database and needs only the Payer side.
type Custodian interface {
	Payer
	Deposit(amount decimal.Decimal)
	Balance() decimal.Decimal
}

// Compile-time checks for the provided implementations.
var (
	_ Custodian = (*Account)(nil)
	_ Payer     = Disburser{}
)

// Account is the default in-process Custodian. Its balance is independent
// book-keeping: value can also arrive via Fund outside any vault operation,
// so the balance may legitimately diverge from the sum of unclaimed records.
type Account struct {
	mu      sync.Mutex
	balance decimal.Decimal
}

func NewAccount() *Account {
	return &Account{balance: decimal.Zero}
}

// Deposit adds value to the store's custody.
func (a *Account) Deposit(amount decimal.Decimal) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.balance = a.balance.Add(amount)
}

// Fund adds value that arrived outside the vault's operations (out-of-band
// top-ups, donations to the store address, and so on).
func (a *Account) Fund(amount decimal.Decimal) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.balance = a.balance.Add(amount)

	zap.L().Info("Out-of-band funds received",
		zap.String("amount", amount.String()),
		zap.String("balance", a.balance.String()))
}

// Transfer pays amount out to the given identity. The payout either completes
// here or fails without touching the balance.
func (a *Account) Transfer(to string, amount decimal.Decimal) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if amount.GreaterThan(a.balance) {
		return fmt.Errorf("%w: have %s, need %s", ErrInsufficientFunds, a.balance.String(), amount.String())
	}
	a.balance = a.balance.Sub(amount)

	zap.L().Info("Transfer completed",
		zap.String("reference", uuid.New().String()),
		zap.String("to", to),
		zap.String("amount", amount.String()),
		zap.String("remaining_balance", a.balance.String()))
	return nil
}

// Balance returns the total value currently held by the store.
func (a *Account) Balance() decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance
}

// Disburser is the Payer for backends that do their own custody accounting:
// it records each outbound movement and always succeeds. Shortfalls are
// caught by the caller's balance check before the payout is attempted.
type Disburser struct{}

func (Disburser) Transfer(to string, amount decimal.Decimal) error {
	zap.L().Info("Transfer completed",
		zap.String("reference", uuid.New().String()),
		zap.String("to", to),
		zap.String("amount", amount.String()))
	return nil
}
