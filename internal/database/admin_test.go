package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"inheritance-vault-go/internal/models"
	"inheritance-vault-go/internal/store"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

func TestTransferAdmin(t *testing.T) {
	service, _, cleanup := setupVaultTestDB(t)
	defer cleanup()

	ctx := context.Background()
	if err := service.TransferAdmin(ctx, "admin-2", testAdmin); err != nil {
		t.Fatalf("TransferAdmin failed: %v", err)
	}

	admin, err := service.Admin(ctx)
	if err != nil {
		t.Fatalf("Admin failed: %v", err)
	}
	if admin != "admin-2" {
		t.Errorf("Expected admin-2, got %s", admin)
	}

	// The previous admin lost its authority.
	_, err = service.Create(ctx, store.CreateParams{
		Caller:       testAdmin,
		Beneficiary:  "ben-a",
		Amount:       decimal.NewFromInt(1),
		LockDuration: time.Hour,
	})
	if !errors.Is(err, store.ErrUnauthorized) {
		t.Fatalf("Expected ErrUnauthorized for previous admin, got %v", err)
	}

	// The new admin can create records.
	_, err = service.Create(ctx, store.CreateParams{
		Caller:       "admin-2",
		Beneficiary:  "ben-a",
		Amount:       decimal.NewFromInt(1),
		LockDuration: time.Hour,
	})
	if err != nil {
		t.Fatalf("Create by new admin failed: %v", err)
	}
}

func TestTransferAdmin_InvalidTargets(t *testing.T) {
	service, _, cleanup := setupVaultTestDB(t)
	defer cleanup()

	ctx := context.Background()

	// Null identity is rejected and the slot stays unchanged.
	err := service.TransferAdmin(ctx, "", testAdmin)
	if !errors.Is(err, store.ErrInvalidArgument) {
		t.Fatalf("Expected ErrInvalidArgument for empty admin, got %v", err)
	}

	err = service.TransferAdmin(ctx, testAdmin, testAdmin)
	if !errors.Is(err, store.ErrInvalidArgument) {
		t.Fatalf("Expected ErrInvalidArgument for same admin, got %v", err)
	}

	admin, err := service.Admin(ctx)
	if err != nil {
		t.Fatalf("Admin failed: %v", err)
	}
	if admin != testAdmin {
		t.Errorf("Expected admin slot unchanged, got %s", admin)
	}
}

func TestTransferAdmin_Unauthorized(t *testing.T) {
	service, _, cleanup := setupVaultTestDB(t)
	defer cleanup()

	err := service.TransferAdmin(context.Background(), "admin-2", "not-the-admin")
	if !errors.Is(err, store.ErrUnauthorized) {
		t.Fatalf("Expected ErrUnauthorized, got %v", err)
	}
}

func TestTransferAdmin_EmitsEvent(t *testing.T) {
	service, _, cleanup := setupVaultTestDB(t)
	defer cleanup()

	ctx := context.Background()
	if err := service.TransferAdmin(ctx, "admin-2", testAdmin); err != nil {
		t.Fatalf("TransferAdmin failed: %v", err)
	}

	events, err := service.Events(ctx)
	if err != nil {
		t.Fatalf("Events failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}

	event := events[0]
	if event.Kind != models.EventOwnershipTransferred {
		t.Errorf("Expected ownership_transferred event, got %s", event.Kind)
	}
	if event.PreviousAdmin != testAdmin || event.NewAdmin != "admin-2" {
		t.Errorf("Expected transfer %s -> admin-2, got %s -> %s", testAdmin, event.PreviousAdmin, event.NewAdmin)
	}
	if event.RecordId != -1 {
		t.Errorf("Expected record id -1 for admin event, got %d", event.RecordId)
	}
}
