package treasury

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestAccount_DepositAndTransfer(t *testing.T) {
	account := NewAccount()

	account.Deposit(decimal.NewFromInt(100))
	if !account.Balance().Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected balance 100, got %s", account.Balance().String())
	}

	if err := account.Transfer("beneficiary-1", decimal.NewFromInt(60)); err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}
	if !account.Balance().Equal(decimal.NewFromInt(40)) {
		t.Errorf("Expected balance 40, got %s", account.Balance().String())
	}
}

func TestAccount_TransferInsufficientFunds(t *testing.T) {
	account := NewAccount()
	account.Deposit(decimal.NewFromInt(10))

	err := account.Transfer("beneficiary-1", decimal.NewFromInt(11))
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("Expected ErrInsufficientFunds, got %v", err)
	}

	// Failed transfer must not touch the balance.
	if !account.Balance().Equal(decimal.NewFromInt(10)) {
		t.Errorf("Expected balance 10 after failed transfer, got %s", account.Balance().String())
	}
}

func TestDisburser_TransferAlwaysSucceeds(t *testing.T) {
	var payer Payer = Disburser{}

	if err := payer.Transfer("beneficiary-1", decimal.NewFromInt(100)); err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}
}

func TestAccount_FundDivergesFromDeposits(t *testing.T) {
	account := NewAccount()

	account.Deposit(decimal.NewFromInt(100))
	account.Fund(decimal.NewFromInt(7))

	// Balance reflects everything held, not just record deposits.
	expected := decimal.NewFromInt(107)
	if !account.Balance().Equal(expected) {
		t.Errorf("Expected balance %s, got %s", expected.String(), account.Balance().String())
	}
}
