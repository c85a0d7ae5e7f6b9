package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"inheritance-vault-go/internal/models"
	"inheritance-vault-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// GetDetails returns a record plus the seconds remaining until its unlock
// time, floored at zero.
func (s *Service) GetDetails(ctx context.Context, recordId int64) (*models.RecordDetails, error) {
	record, err := s.getRecord(ctx, recordId)
	if err != nil {
		return nil, err
	}

	remaining := record.UnlockTime - s.now().Unix()
	if remaining < 0 {
		remaining = 0
	}

	return &models.RecordDetails{Record: *record, TimeRemaining: remaining}, nil
}

// IsReadyToClaim reports whether a record is unclaimed and past its unlock time.
func (s *Service) IsReadyToClaim(ctx context.Context, recordId int64) (bool, error) {
	record, err := s.getRecord(ctx, recordId)
	if err != nil {
		return false, err
	}
	return !record.Claimed && s.now().Unix() >= record.UnlockTime, nil
}

// ListByBeneficiary returns the record identifiers belonging to a beneficiary
// in creation order. Unknown beneficiaries get an empty list, not an error.
func (s *Service) ListByBeneficiary(ctx context.Context, beneficiary string) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, queryListByBeneficiary, beneficiary)
	if err != nil {
		return nil, fmt.Errorf("failed to list records for beneficiary: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var recordIds []int64
	for rows.Next() {
		var recordId int64
		if err := rows.Scan(&recordId); err != nil {
			return nil, fmt.Errorf("failed to scan record id: %w", err)
		}
		recordIds = append(recordIds, recordId)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating index rows: %w", err)
	}

	return recordIds, nil
}

// TotalRecords returns how many records have ever been created.
func (s *Service) TotalRecords(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, queryCountRecords).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

// StoreBalance reports the treasury's accounting of value held by the store.
// This is the environment's view, not a sum over unclaimed records, and the
// two can diverge when value arrives outside vault operations (Fund).
func (s *Service) StoreBalance(ctx context.Context) (decimal.Decimal, error) {
	var balanceStr string
	if err := s.db.QueryRowContext(ctx, queryGetTreasuryBalance).Scan(&balanceStr); err != nil {
		return decimal.Zero, fmt.Errorf("failed to read treasury balance: %w", err)
	}
	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse treasury balance '%s': %w", balanceStr, err)
	}
	return balance, nil
}

// Admin returns the current admin identity.
func (s *Service) Admin(ctx context.Context) (string, error) {
	var admin string
	if err := s.db.QueryRowContext(ctx, queryGetAdmin).Scan(&admin); err != nil {
		return "", fmt.Errorf("failed to read admin slot: %w", err)
	}
	return admin, nil
}

// Events returns the full event log in emission order.
func (s *Service) Events(ctx context.Context) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx, queryGetEvents)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var events []models.Event
	for rows.Next() {
		var event models.Event
		var kind, amountStr string
		err := rows.Scan(&event.Seq, &event.Id, &kind, &event.RecordId, &event.Beneficiary,
			&amountStr, &event.UnlockTime, &event.Description,
			&event.PreviousAdmin, &event.NewAdmin, &event.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		event.Kind = models.EventKind(kind)
		event.Amount, err = decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse event amount '%s': %w", amountStr, err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}

	return events, nil
}

func (s *Service) getRecord(ctx context.Context, recordId int64) (*models.Record, error) {
	record, err := scanRecord(s.db.QueryRowContext(ctx, queryGetRecord, recordId))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: record %d", store.ErrNotFound, recordId)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record %d: %w", recordId, err)
	}
	return record, nil
}

func scanRecord(row *sql.Row) (*models.Record, error) {
	var record models.Record
	var amountStr string
	var claimed int
	var createdAt time.Time

	err := row.Scan(&record.Id, &record.Beneficiary, &amountStr, &record.UnlockTime,
		&claimed, &record.Description, &createdAt)
	if err != nil {
		return nil, err
	}

	record.Amount, err = decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
	}
	record.Claimed = claimed != 0
	record.CreatedAt = createdAt
	return &record, nil
}
