package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Record is a single inheritance entry. Everything except the claimed flag is
// fixed at creation; the claimed flag transitions false -> true exactly once.
type Record struct {
	Id          int64           `db:"id"`
	Beneficiary string          `db:"beneficiary"`
	Amount      decimal.Decimal `db:"amount"`
	UnlockTime  int64           `db:"unlock_time"` // unix seconds
	Claimed     bool            `db:"claimed"`
	Description string          `db:"description"`
	CreatedAt   time.Time       `db:"created_at"`
}

// RecordDetails is a Record plus the caller-facing countdown.
type RecordDetails struct {
	Record
	TimeRemaining int64 // seconds until unlock, floored at zero
}

// EventKind identifies an entry in the append-only event log.
type EventKind string

const (
	EventCreated              EventKind = "created"
	EventClaimed              EventKind = "claimed"
	EventEmergencyWithdrawn   EventKind = "emergency_withdrawn"
	EventOwnershipTransferred EventKind = "ownership_transferred"
)

// Event is one entry in the vault's event log. RecordId is -1 for events that
// do not concern a record (ownership transfers). Seq is the emission order.
type Event struct {
	Id            string          `db:"id"`
	Seq           int64           `db:"seq"`
	Kind          EventKind       `db:"kind"`
	RecordId      int64           `db:"record_id"`
	Beneficiary   string          `db:"beneficiary"`
	Amount        decimal.Decimal `db:"amount"`
	UnlockTime    int64           `db:"unlock_time"`
	Description   string          `db:"description"`
	PreviousAdmin string          `db:"previous_admin"`
	NewAdmin      string          `db:"new_admin"`
	CreatedAt     time.Time       `db:"created_at"`
}
