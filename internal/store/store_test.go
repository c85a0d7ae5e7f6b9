package store

import (
	"testing"
)

// Compile-time checks that the interface is importable and usable.
func TestVaultStoreInterfaceExists(t *testing.T) {
	// This test simply validates that the VaultStore interface compiles
	// and the sentinel errors are accessible.
	_ = ErrUnauthorized
	_ = ErrInvalidArgument
	_ = ErrNotFound
	_ = ErrAlreadyClaimed
	_ = ErrTooEarly
	_ = ErrTransferFailed
	_ = ErrOverflow
	_ = CreateParams{}

	// Ensure the interface is non-nil type.
	var _ VaultStore

	if GracePeriod.Milliseconds()/1000 != 315360000 {
		t.Errorf("Expected grace period of 315360000 seconds, got %d", GracePeriod.Milliseconds()/1000)
	}
}
