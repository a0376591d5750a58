package models

import (
	"testing"
	"time"
)

func TestWalletCreditIsIdempotentPerDescription(t *testing.T) {
	now := time.Now()
	w := Wallet{}

	if !w.Credit(480, "Refund for cancelled order TLX-1234 item:abc", now) {
		t.Fatal("first credit should be applied")
	}
	if w.Credit(480, "Refund for cancelled order TLX-1234 item:abc", now.Add(time.Minute)) {
		t.Fatal("duplicate credit should be suppressed")
	}

	if w.Balance != 480 {
		t.Fatalf("expected balance 480, got %v", w.Balance)
	}
	if len(w.Transactions) != 1 {
		t.Fatalf("expected a single transaction, got %d", len(w.Transactions))
	}
}

func TestWalletCreditDistinctDescriptions(t *testing.T) {
	now := time.Now()
	w := Wallet{}

	w.Credit(480, "Refund for cancelled order TLX-1234 item:abc", now)
	w.Credit(320, "Refund for returned order TLX-1234 item:def", now)

	if w.Balance != 800 {
		t.Fatalf("expected balance 800, got %v", w.Balance)
	}
	if len(w.Transactions) != 2 {
		t.Fatalf("expected two transactions, got %d", len(w.Transactions))
	}
	// newest entry sits at the head
	if w.Transactions[0].Amount != 320 {
		t.Fatalf("expected newest transaction first, head amount %v", w.Transactions[0].Amount)
	}
}

func TestWalletCreditRejectsNonPositiveAmounts(t *testing.T) {
	w := Wallet{}
	if w.Credit(0, "zero", time.Now()) {
		t.Fatal("zero credit should be a no-op")
	}
	if w.Credit(-10, "negative", time.Now()) {
		t.Fatal("negative credit should be a no-op")
	}
	if w.Balance != 0 || len(w.Transactions) != 0 {
		t.Fatalf("wallet mutated by rejected credits: %+v", w)
	}
}

func TestWalletDebit(t *testing.T) {
	now := time.Now()
	w := Wallet{}
	w.Credit(500, "Refund for cancelled order TLX-9 item:xyz", now)

	if !w.Debit(200, "Payment for order TLX-10", now) {
		t.Fatal("debit within balance should succeed")
	}
	if w.Balance != 300 {
		t.Fatalf("expected balance 300, got %v", w.Balance)
	}
	if w.Debit(500, "Payment for order TLX-11", now) {
		t.Fatal("debit beyond balance should fail")
	}
	if w.Balance != 300 {
		t.Fatalf("balance changed by failed debit: %v", w.Balance)
	}
	if w.Transactions[0].Type != TransactionDebit {
		t.Fatalf("expected debit at head, got %q", w.Transactions[0].Type)
	}
}
