package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"inheritance-vault-go/internal/models"
	"inheritance-vault-go/internal/store"
	"inheritance-vault-go/internal/treasury"

	"github.com/shopspring/decimal"
)

const testAdmin = "admin-1"

type manualClock struct {
	now time.Time
}

func (c *manualClock) Now() time.Time {
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type rejectingPayer struct {
	*treasury.Account
}

func (p *rejectingPayer) Transfer(_ string, _ decimal.Decimal) error {
	return errors.New("payout rejected")
}

func setupStore(t *testing.T) (*Store, *manualClock, *treasury.Account) {
	clock := &manualClock{now: time.Unix(1_700_000_000, 0)}
	account := treasury.NewAccount()
	vault, err := NewStore(testAdmin, account, clock.Now)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return vault, clock, account
}

func mustCreate(t *testing.T, vault *Store, beneficiary string, amount int64, lockDuration time.Duration) int64 {
	t.Helper()
	recordId, err := vault.Create(context.Background(), store.CreateParams{
		Caller:       testAdmin,
		Beneficiary:  beneficiary,
		Amount:       decimal.NewFromInt(amount),
		LockDuration: lockDuration,
		Description:  "test record",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return recordId
}

func TestNewStore_RequiresAdmin(t *testing.T) {
	_, err := NewStore("", treasury.NewAccount(), nil)
	if !errors.Is(err, store.ErrInvalidArgument) {
		t.Fatalf("Expected ErrInvalidArgument for empty admin, got %v", err)
	}
}

func TestCreate_SequentialIdsAcrossBeneficiaries(t *testing.T) {
	vault, _, _ := setupStore(t)
	ctx := context.Background()

	if recordId := mustCreate(t, vault, "ben-a", 10, time.Hour); recordId != 0 {
		t.Errorf("Expected id 0, got %d", recordId)
	}
	if recordId := mustCreate(t, vault, "ben-b", 20, time.Hour); recordId != 1 {
		t.Errorf("Expected id 1, got %d", recordId)
	}
	if recordId := mustCreate(t, vault, "ben-a", 30, time.Hour); recordId != 2 {
		t.Errorf("Expected id 2, got %d", recordId)
	}

	recordIds, err := vault.ListByBeneficiary(ctx, "ben-a")
	if err != nil {
		t.Fatalf("ListByBeneficiary failed: %v", err)
	}
	if len(recordIds) != 2 || recordIds[0] != 0 || recordIds[1] != 2 {
		t.Errorf("Expected [0 2] for ben-a, got %v", recordIds)
	}
}

func TestClaim_Lifecycle(t *testing.T) {
	vault, clock, account := setupStore(t)
	ctx := context.Background()

	recordId := mustCreate(t, vault, "ben-a", 100, 1000*time.Second)

	clock.Advance(999 * time.Second)
	if _, err := vault.Claim(ctx, recordId, "ben-a"); !errors.Is(err, store.ErrTooEarly) {
		t.Fatalf("Expected ErrTooEarly at unlock-1, got %v", err)
	}

	details, err := vault.GetDetails(ctx, recordId)
	if err != nil {
		t.Fatalf("GetDetails failed: %v", err)
	}
	if details.TimeRemaining != 1 {
		t.Errorf("Expected 1 second remaining at unlock-1, got %d", details.TimeRemaining)
	}

	clock.Advance(time.Second)
	amount, err := vault.Claim(ctx, recordId, "ben-a")
	if err != nil {
		t.Fatalf("Claim failed: %v", err)
	}
	if !amount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected payout of 100, got %s", amount.String())
	}
	if !account.Balance().Equal(decimal.Zero) {
		t.Errorf("Expected store balance 0 after payout, got %s", account.Balance().String())
	}

	if _, err := vault.Claim(ctx, recordId, "ben-a"); !errors.Is(err, store.ErrAlreadyClaimed) {
		t.Fatalf("Expected ErrAlreadyClaimed on second claim, got %v", err)
	}
}

func TestListByBeneficiary_UnknownBeneficiary(t *testing.T) {
	vault, _, _ := setupStore(t)
	ctx := context.Background()

	mustCreate(t, vault, "ben-a", 10, time.Hour)

	recordIds, err := vault.ListByBeneficiary(ctx, "ben-unknown")
	if err != nil {
		t.Fatalf("ListByBeneficiary failed: %v", err)
	}
	if recordIds == nil {
		t.Fatal("Expected an empty list for an unknown beneficiary, got nil")
	}
	if len(recordIds) != 0 {
		t.Errorf("Expected no records for an unknown beneficiary, got %v", recordIds)
	}
}

func TestListByBeneficiary_ReturnsCopy(t *testing.T) {
	vault, _, _ := setupStore(t)
	ctx := context.Background()

	mustCreate(t, vault, "ben-a", 10, time.Hour)
	mustCreate(t, vault, "ben-a", 20, time.Hour)

	recordIds, err := vault.ListByBeneficiary(ctx, "ben-a")
	if err != nil {
		t.Fatalf("ListByBeneficiary failed: %v", err)
	}
	recordIds[0] = 99

	again, err := vault.ListByBeneficiary(ctx, "ben-a")
	if err != nil {
		t.Fatalf("ListByBeneficiary failed: %v", err)
	}
	if again[0] != 0 || again[1] != 1 {
		t.Errorf("Expected index unchanged after mutating a returned list, got %v", again)
	}
}

func TestClaim_WrongCallerAndUnknownRecord(t *testing.T) {
	vault, clock, _ := setupStore(t)
	ctx := context.Background()

	recordId := mustCreate(t, vault, "ben-a", 100, time.Second)
	clock.Advance(time.Second)

	if _, err := vault.Claim(ctx, recordId, "ben-b"); !errors.Is(err, store.ErrUnauthorized) {
		t.Fatalf("Expected ErrUnauthorized, got %v", err)
	}
	if _, err := vault.Claim(ctx, 99, "ben-a"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestClaim_TransferFailureLeavesNoPartialState(t *testing.T) {
	clock := &manualClock{now: time.Unix(1_700_000_000, 0)}
	account := treasury.NewAccount()
	vault, err := NewStore(testAdmin, &rejectingPayer{Account: account}, clock.Now)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	ctx := context.Background()
	recordId := mustCreate(t, vault, "ben-a", 100, time.Second)
	clock.Advance(time.Second)

	if _, err := vault.Claim(ctx, recordId, "ben-a"); !errors.Is(err, store.ErrTransferFailed) {
		t.Fatalf("Expected ErrTransferFailed, got %v", err)
	}

	details, err := vault.GetDetails(ctx, recordId)
	if err != nil {
		t.Fatalf("GetDetails failed: %v", err)
	}
	if details.Claimed {
		t.Error("Expected claimed flag reverted after failed transfer")
	}

	events, err := vault.Events(ctx)
	if err != nil {
		t.Fatalf("Events failed: %v", err)
	}
	for _, event := range events {
		if event.Kind == models.EventClaimed {
			t.Error("Expected no claimed event after failed transfer")
		}
	}
}

func TestEmergencyWithdraw_GraceGate(t *testing.T) {
	vault, clock, _ := setupStore(t)
	ctx := context.Background()

	recordId := mustCreate(t, vault, "ben-a", 100, time.Second)

	clock.Advance(time.Second + store.GracePeriod - time.Second)
	if _, err := vault.EmergencyWithdraw(ctx, recordId, testAdmin); !errors.Is(err, store.ErrTooEarly) {
		t.Fatalf("Expected ErrTooEarly before grace deadline, got %v", err)
	}

	clock.Advance(time.Second)
	if _, err := vault.EmergencyWithdraw(ctx, recordId, "ben-a"); !errors.Is(err, store.ErrUnauthorized) {
		t.Fatalf("Expected ErrUnauthorized for non-admin, got %v", err)
	}

	amount, err := vault.EmergencyWithdraw(ctx, recordId, testAdmin)
	if err != nil {
		t.Fatalf("EmergencyWithdraw failed: %v", err)
	}
	if !amount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected payout of 100, got %s", amount.String())
	}
}

func TestTransferAdmin_Rules(t *testing.T) {
	vault, _, _ := setupStore(t)
	ctx := context.Background()

	if err := vault.TransferAdmin(ctx, "", testAdmin); !errors.Is(err, store.ErrInvalidArgument) {
		t.Fatalf("Expected ErrInvalidArgument for empty admin, got %v", err)
	}
	if err := vault.TransferAdmin(ctx, testAdmin, testAdmin); !errors.Is(err, store.ErrInvalidArgument) {
		t.Fatalf("Expected ErrInvalidArgument for same admin, got %v", err)
	}
	if err := vault.TransferAdmin(ctx, "admin-2", "nobody"); !errors.Is(err, store.ErrUnauthorized) {
		t.Fatalf("Expected ErrUnauthorized, got %v", err)
	}

	if err := vault.TransferAdmin(ctx, "admin-2", testAdmin); err != nil {
		t.Fatalf("TransferAdmin failed: %v", err)
	}
	admin, err := vault.Admin(ctx)
	if err != nil {
		t.Fatalf("Admin failed: %v", err)
	}
	if admin != "admin-2" {
		t.Errorf("Expected admin-2, got %s", admin)
	}

	events, err := vault.Events(ctx)
	if err != nil {
		t.Fatalf("Events failed: %v", err)
	}
	if len(events) != 1 || events[0].Kind != models.EventOwnershipTransferred {
		t.Fatalf("Expected a single ownership_transferred event, got %v", events)
	}
}

func TestTotalRecordsAndBalance(t *testing.T) {
	vault, _, account := setupStore(t)
	ctx := context.Background()

	mustCreate(t, vault, "ben-a", 100, time.Hour)
	mustCreate(t, vault, "ben-b", 50, time.Hour)
	account.Fund(decimal.NewFromInt(3))

	total, err := vault.TotalRecords(ctx)
	if err != nil {
		t.Fatalf("TotalRecords failed: %v", err)
	}
	if total != 2 {
		t.Errorf("Expected 2 records, got %d", total)
	}

	balance, err := vault.StoreBalance(ctx)
	if err != nil {
		t.Fatalf("StoreBalance failed: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(153)) {
		t.Errorf("Expected store balance 153, got %s", balance.String())
	}
}
