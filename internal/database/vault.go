package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"inheritance-vault-go/internal/models"
	"inheritance-vault-go/internal/store"
	"inheritance-vault-go/internal/treasury"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Create allocates the next record identifier, stores the record, appends it
// to the beneficiary's index, credits the deposit to the treasury and emits a
// Created event, all in one database transaction.
func (s *Service) Create(ctx context.Context, params store.CreateParams) (int64, error) {
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

	now := s.now()
	unlockTime := now.Unix() + lockSeconds
	if unlockTime < now.Unix() {
		return 0, fmt.Errorf("%w: lock duration %v past %v", store.ErrOverflow, params.LockDuration, now)
	}

	zap.L().Info("Creating inheritance record",
		zap.String("beneficiary", params.Beneficiary),
		zap.String("amount", params.Amount.String()),
		zap.Int64("unlock_time", unlockTime))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.requireAdmin(ctx, tx, params.Caller); err != nil {
		return 0, err
	}

	var recordId int64
	if err := tx.QueryRowContext(ctx, queryNextRecordId).Scan(&recordId); err != nil {
		return 0, fmt.Errorf("failed to allocate record id: %w", err)
	}

	_, err = tx.ExecContext(ctx, queryInsertRecord,
		recordId, params.Beneficiary, params.Amount.String(), unlockTime, params.Description, now)
	if err != nil {
		return 0, fmt.Errorf("failed to insert record: %w", err)
	}

	_, err = tx.ExecContext(ctx, queryAppendIndexEntry, params.Beneficiary, params.Beneficiary, recordId)
	if err != nil {
		return 0, fmt.Errorf("failed to append beneficiary index entry: %w", err)
	}

	event := models.Event{
		Kind:        models.EventCreated,
		RecordId:    recordId,
		Beneficiary: params.Beneficiary,
		Amount:      params.Amount,
		UnlockTime:  unlockTime,
		Description: params.Description,
	}
	if err := s.appendEvent(ctx, tx, event, now); err != nil {
		return 0, err
	}

	if err := s.creditTreasuryTx(ctx, tx, params.Amount); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	zap.L().Info("Inheritance record created",
		zap.Int64("record_id", recordId),
		zap.String("beneficiary", params.Beneficiary),
		zap.String("amount", params.Amount.String()))

	return recordId, nil
}

// Claim pays a record out to its beneficiary once the time lock has expired.
// The claimed flag is set before the payout; a failed payout rolls the flag
// back together with the event, so a record can never pay twice.
func (s *Service) Claim(ctx context.Context, recordId int64, caller string) (decimal.Decimal, error) {
	now := s.now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	record, err := s.getRecordTx(ctx, tx, recordId)
	if err != nil {
		return decimal.Zero, err
	}
	if record.Claimed {
		return decimal.Zero, fmt.Errorf("%w: record %d", store.ErrAlreadyClaimed, recordId)
	}
	if caller != record.Beneficiary {
		return decimal.Zero, fmt.Errorf("%w: only the beneficiary may claim record %d", store.ErrUnauthorized, recordId)
	}
	if now.Unix() < record.UnlockTime {
		return decimal.Zero, fmt.Errorf("%w: record %d unlocks at %d, now %d", store.ErrTooEarly, recordId, record.UnlockTime, now.Unix())
	}

	if err := s.markClaimedTx(ctx, tx, recordId); err != nil {
		return decimal.Zero, err
	}

	event := models.Event{
		Kind:        models.EventClaimed,
		RecordId:    recordId,
		Beneficiary: record.Beneficiary,
		Amount:      record.Amount,
	}
	if err := s.appendEvent(ctx, tx, event, now); err != nil {
		return decimal.Zero, err
	}

	// Mark-then-pay: the treasury debit and the payout run inside the
	// transaction scope, so a failure takes the claimed flag down with it.
	if err := s.debitTreasuryTx(ctx, tx, record.Amount); err != nil {
		return decimal.Zero, err
	}
	if err := s.payer.Transfer(caller, record.Amount); err != nil {
		zap.L().Warn("Claim payout rejected, rolling back",
			zap.Int64("record_id", recordId),
			zap.Error(err))
		return decimal.Zero, fmt.Errorf("%w: %s", store.ErrTransferFailed, err)
	}

	if err := tx.Commit(); err != nil {
		return decimal.Zero, fmt.Errorf("failed to commit transaction: %w", err)
	}

	zap.L().Info("Record claimed",
		zap.Int64("record_id", recordId),
		zap.String("beneficiary", record.Beneficiary),
		zap.String("amount", record.Amount.String()))

	return record.Amount, nil
}

// EmergencyWithdraw lets the admin recover an unclaimed record once the
// ten-year grace period past its unlock time has elapsed. Same mark-then-pay
// ordering as Claim, with the admin as recipient.
func (s *Service) EmergencyWithdraw(ctx context.Context, recordId int64, caller string) (decimal.Decimal, error) {
	now := s.now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.requireAdmin(ctx, tx, caller); err != nil {
		return decimal.Zero, err
	}

	record, err := s.getRecordTx(ctx, tx, recordId)
	if err != nil {
		return decimal.Zero, err
	}
	if record.Claimed {
		return decimal.Zero, fmt.Errorf("%w: record %d", store.ErrAlreadyClaimed, recordId)
	}

	deadline := record.UnlockTime + int64(store.GracePeriod/time.Second)
	if now.Unix() < deadline {
		return decimal.Zero, fmt.Errorf("%w: record %d eligible for emergency withdrawal at %d, now %d", store.ErrTooEarly, recordId, deadline, now.Unix())
	}

	if err := s.markClaimedTx(ctx, tx, recordId); err != nil {
		return decimal.Zero, err
	}

	event := models.Event{
		Kind:        models.EventEmergencyWithdrawn,
		RecordId:    recordId,
		Beneficiary: record.Beneficiary,
		Amount:      record.Amount,
		NewAdmin:    caller,
	}
	if err := s.appendEvent(ctx, tx, event, now); err != nil {
		return decimal.Zero, err
	}

	if err := s.debitTreasuryTx(ctx, tx, record.Amount); err != nil {
		return decimal.Zero, err
	}
	if err := s.payer.Transfer(caller, record.Amount); err != nil {
		zap.L().Warn("Emergency payout rejected, rolling back",
			zap.Int64("record_id", recordId),
			zap.Error(err))
		return decimal.Zero, fmt.Errorf("%w: %s", store.ErrTransferFailed, err)
	}

	if err := tx.Commit(); err != nil {
		return decimal.Zero, fmt.Errorf("failed to commit transaction: %w", err)
	}

	zap.L().Info("Record emergency-withdrawn",
		zap.Int64("record_id", recordId),
		zap.String("admin", caller),
		zap.String("amount", record.Amount.String()))

	return record.Amount, nil
}

// TransferAdmin hands the admin slot to a new identity and emits an
// OwnershipTransferred event in the same transaction.
func (s *Service) TransferAdmin(ctx context.Context, newAdmin, caller string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.requireAdmin(ctx, tx, caller); err != nil {
		return err
	}
	if newAdmin == "" {
		return fmt.Errorf("%w: new admin must not be empty", store.ErrInvalidArgument)
	}
	if newAdmin == caller {
		return fmt.Errorf("%w: new admin must differ from current admin", store.ErrInvalidArgument)
	}

	result, err := tx.ExecContext(ctx, queryUpdateAdmin, newAdmin, caller)
	if err != nil {
		return fmt.Errorf("failed to update admin slot: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: admin slot changed concurrently", store.ErrUnauthorized)
	}

	event := models.Event{
		Kind:          models.EventOwnershipTransferred,
		RecordId:      -1,
		PreviousAdmin: caller,
		NewAdmin:      newAdmin,
	}
	if err := s.appendEvent(ctx, tx, event, s.now()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	zap.L().Info("Admin transferred",
		zap.String("previous_admin", caller),
		zap.String("new_admin", newAdmin))

	return nil
}

// Fund credits value that arrived outside vault operations (out-of-band
// top-ups, donations to the store address, and so on).
func (s *Service) Fund(ctx context.Context, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive, got %s", store.ErrInvalidArgument, amount.String())
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.creditTreasuryTx(ctx, tx, amount); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	zap.L().Info("Out-of-band funds received", zap.String("amount", amount.String()))
	return nil
}

// requireAdmin checks the caller against the admin slot inside the transaction.
func (s *Service) requireAdmin(ctx context.Context, tx *sql.Tx, caller string) error {
	var admin string
	if err := tx.QueryRowContext(ctx, queryGetAdmin).Scan(&admin); err != nil {
		return fmt.Errorf("failed to read admin slot: %w", err)
	}
	if caller != admin {
		return fmt.Errorf("%w: caller %q is not the admin", store.ErrUnauthorized, caller)
	}
	return nil
}

func (s *Service) getRecordTx(ctx context.Context, tx *sql.Tx, recordId int64) (*models.Record, error) {
	record, err := scanRecord(tx.QueryRowContext(ctx, queryGetRecord, recordId))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: record %d", store.ErrNotFound, recordId)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record %d: %w", recordId, err)
	}
	return record, nil
}

func (s *Service) markClaimedTx(ctx context.Context, tx *sql.Tx, recordId int64) error {
	result, err := tx.ExecContext(ctx, queryMarkClaimed, recordId)
	if err != nil {
		return fmt.Errorf("failed to mark record %d claimed: %w", recordId, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: record %d", store.ErrAlreadyClaimed, recordId)
	}
	return nil
}

func treasuryBalanceTx(ctx context.Context, tx *sql.Tx) (decimal.Decimal, error) {
	var balanceStr string
	if err := tx.QueryRowContext(ctx, queryGetTreasuryBalance).Scan(&balanceStr); err != nil {
		return decimal.Zero, fmt.Errorf("failed to read treasury balance: %w", err)
	}
	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse treasury balance '%s': %w", balanceStr, err)
	}
	return balance, nil
}

func (s *Service) creditTreasuryTx(ctx context.Context, tx *sql.Tx, amount decimal.Decimal) error {
	balance, err := treasuryBalanceTx(ctx, tx)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, queryUpdateTreasuryBalance, balance.Add(amount).String()); err != nil {
		return fmt.Errorf("failed to credit treasury: %w", err)
	}
	return nil
}

// debitTreasuryTx debits a payout from the held balance. A shortfall means
// the store cannot honor the payout, which surfaces as a transfer failure.
func (s *Service) debitTreasuryTx(ctx context.Context, tx *sql.Tx, amount decimal.Decimal) error {
	balance, err := treasuryBalanceTx(ctx, tx)
	if err != nil {
		return err
	}
	if amount.GreaterThan(balance) {
		return fmt.Errorf("%w: %s: have %s, need %s",
			store.ErrTransferFailed, treasury.ErrInsufficientFunds, balance.String(), amount.String())
	}
	if _, err := tx.ExecContext(ctx, queryUpdateTreasuryBalance, balance.Sub(amount).String()); err != nil {
		return fmt.Errorf("failed to debit treasury: %w", err)
	}
	return nil
}

// appendEvent writes one event log entry within the caller's transaction.
func (s *Service) appendEvent(ctx context.Context, tx *sql.Tx, event models.Event, now time.Time) error {
	_, err := tx.ExecContext(ctx, queryInsertEvent,
		uuid.New().String(), string(event.Kind), event.RecordId, event.Beneficiary,
		event.Amount.String(), event.UnlockTime, event.Description,
		event.PreviousAdmin, event.NewAdmin, now)
	if err != nil {
		return fmt.Errorf("failed to append %s event: %w", event.Kind, err)
	}
	return nil
}
