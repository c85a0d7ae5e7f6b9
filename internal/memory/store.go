// Package memory provides an in-memory VaultStore backend. It mirrors the
// SQLite backend's semantics exactly and is the reference for tests and
// tooling that do not want a database on disk.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"inheritance-vault-go/internal/models"
	"inheritance-vault-go/internal/store"
	"inheritance-vault-go/internal/treasury"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Compile-time check: *Store must satisfy store.VaultStore.
var _ store.VaultStore = (*Store)(nil)

// Store holds all vault state behind one mutex. The mutex is held across each
// whole operation, payout included, so mark-then-pay stays atomic under
// concurrent callers.
type Store struct {
	mu      sync.Mutex
	admin   string
	records []models.Record
	index   map[string][]int64
	events  []models.Event
	payer   treasury.Custodian
	now     func() time.Time
}

// NewStore creates an in-memory vault with the given initial admin identity.
// The custodian keeps the custody accounting this backend has no database for.
func NewStore(admin string, payer treasury.Custodian, now func() time.Time) (*Store, error) {
	if admin == "" {
		return nil, fmt.Errorf("%w: initial admin identity is required", store.ErrInvalidArgument)
	}
	if payer == nil {
		return nil, fmt.Errorf("treasury payer is required")
	}
	if now == nil {
		now = time.Now
	}
	return &Store{
		admin: admin,
		index: make(map[string][]int64),
		payer: payer,
		now:   now,
	}, nil
}

func (s *Store) Create(_ context.Context, params store.CreateParams) (int64, error) {
	if params.Beneficiary == "" {
		return 0, fmt.Errorf("%w: beneficiary must not be empty", store.ErrInvalidArgument)
	}
	if !params.Amount.IsPositive() {
		return 0, fmt.Errorf("%w: amount must be positive, got %s", store.ErrInvalidArgument, params.Amount.String())
	}
	lockSeconds := int64(params.LockDuration / time.Second)
	if lockSeconds <= 0 {
		return 0, fmt.Errorf("%w: lock duration must be at least one second, got %v", store.ErrInvalidArgument, params.LockDuration)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if params.Caller != s.admin {
		return 0, fmt.Errorf("%w: caller %q is not the admin", store.ErrUnauthorized, params.Caller)
	}

	now := s.now()
	unlockTime := now.Unix() + lockSeconds
	if unlockTime < now.Unix() {
		return 0, fmt.Errorf("%w: lock duration %v past %v", store.ErrOverflow, params.LockDuration, now)
	}

	recordId := int64(len(s.records))
	s.records = append(s.records, models.Record{
		Id:          recordId,
		Beneficiary: params.Beneficiary,
		Amount:      params.Amount,
		UnlockTime:  unlockTime,
		Description: params.Description,
		CreatedAt:   now,
	})
	s.index[params.Beneficiary] = append(s.index[params.Beneficiary], recordId)
	s.appendEvent(models.Event{
		Kind:        models.EventCreated,
		RecordId:    recordId,
		Beneficiary: params.Beneficiary,
		Amount:      params.Amount,
		UnlockTime:  unlockTime,
		Description: params.Description,
	}, now)

	s.payer.Deposit(params.Amount)
	return recordId, nil
}

func (s *Store) Claim(_ context.Context, recordId int64, caller string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.getRecord(recordId)
	if err != nil {
		return decimal.Zero, err
	}
	if record.Claimed {
		return decimal.Zero, fmt.Errorf("%w: record %d", store.ErrAlreadyClaimed, recordId)
	}
	if caller != record.Beneficiary {
		return decimal.Zero, fmt.Errorf("%w: only the beneficiary may claim record %d", store.ErrUnauthorized, recordId)
	}
	now := s.now()
	if now.Unix() < record.UnlockTime {
		return decimal.Zero, fmt.Errorf("%w: record %d unlocks at %d, now %d", store.ErrTooEarly, recordId, record.UnlockTime, now.Unix())
	}

	// Mark-then-pay under the lock; the payout failure reverts the flag and
	// the event, so no partial state survives.
	record.Claimed = true
	s.appendEvent(models.Event{
		Kind:        models.EventClaimed,
		RecordId:    recordId,
		Beneficiary: record.Beneficiary,
		Amount:      record.Amount,
	}, now)

	if err := s.payer.Transfer(caller, record.Amount); err != nil {
		record.Claimed = false
		s.events = s.events[:len(s.events)-1]
		return decimal.Zero, fmt.Errorf("%w: %s", store.ErrTransferFailed, err)
	}

	return record.Amount, nil
}

func (s *Store) EmergencyWithdraw(_ context.Context, recordId int64, caller string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if caller != s.admin {
		return decimal.Zero, fmt.Errorf("%w: caller %q is not the admin", store.ErrUnauthorized, caller)
	}

	record, err := s.getRecord(recordId)
	if err != nil {
		return decimal.Zero, err
	}
	if record.Claimed {
		return decimal.Zero, fmt.Errorf("%w: record %d", store.ErrAlreadyClaimed, recordId)
	}

	now := s.now()
	deadline := record.UnlockTime + int64(store.GracePeriod/time.Second)
	if now.Unix() < deadline {
		return decimal.Zero, fmt.Errorf("%w: record %d eligible for emergency withdrawal at %d, now %d", store.ErrTooEarly, recordId, deadline, now.Unix())
	}

	record.Claimed = true
	s.appendEvent(models.Event{
		Kind:        models.EventEmergencyWithdrawn,
		RecordId:    recordId,
		Beneficiary: record.Beneficiary,
		Amount:      record.Amount,
		NewAdmin:    caller,
	}, now)

	if err := s.payer.Transfer(caller, record.Amount); err != nil {
		record.Claimed = false
		s.events = s.events[:len(s.events)-1]
		return decimal.Zero, fmt.Errorf("%w: %s", store.ErrTransferFailed, err)
	}

	return record.Amount, nil
}

func (s *Store) TransferAdmin(_ context.Context, newAdmin, caller string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if caller != s.admin {
		return fmt.Errorf("%w: caller %q is not the admin", store.ErrUnauthorized, caller)
	}
	if newAdmin == "" {
		return fmt.Errorf("%w: new admin must not be empty", store.ErrInvalidArgument)
	}
	if newAdmin == s.admin {
		return fmt.Errorf("%w: new admin must differ from current admin", store.ErrInvalidArgument)
	}

	previous := s.admin
	s.admin = newAdmin
	s.appendEvent(models.Event{
		Kind:          models.EventOwnershipTransferred,
		RecordId:      -1,
		PreviousAdmin: previous,
		NewAdmin:      newAdmin,
	}, s.now())

	return nil
}

func (s *Store) GetDetails(_ context.Context, recordId int64) (*models.RecordDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.getRecord(recordId)
	if err != nil {
		return nil, err
	}

	remaining := record.UnlockTime - s.now().Unix()
	if remaining < 0 {
		remaining = 0
	}
	return &models.RecordDetails{Record: *record, TimeRemaining: remaining}, nil
}

func (s *Store) IsReadyToClaim(_ context.Context, recordId int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.getRecord(recordId)
	if err != nil {
		return false, err
	}
	return !record.Claimed && s.now().Unix() >= record.UnlockTime, nil
}

func (s *Store) ListByBeneficiary(_ context.Context, beneficiary string) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recordIds := make([]int64, len(s.index[beneficiary]))
	copy(recordIds, s.index[beneficiary])
	return recordIds, nil
}

func (s *Store) TotalRecords(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.records)), nil
}

func (s *Store) StoreBalance(_ context.Context) (decimal.Decimal, error) {
	return s.payer.Balance(), nil
}

func (s *Store) Admin(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.admin, nil
}

func (s *Store) Events(_ context.Context) ([]models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	events := make([]models.Event, len(s.events))
	copy(events, s.events)
	return events, nil
}

func (s *Store) Close() {}

func (s *Store) getRecord(recordId int64) (*models.Record, error) {
	if recordId < 0 || recordId >= int64(len(s.records)) {
		return nil, fmt.Errorf("%w: record %d", store.ErrNotFound, recordId)
	}
	return &s.records[recordId], nil
}

func (s *Store) appendEvent(event models.Event, now time.Time) {
	event.Id = uuid.New().String()
	event.Seq = int64(len(s.events))
	event.CreatedAt = now
	s.events = append(s.events, event)
}
