package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	TransactionCredit = "credit"
	TransactionDebit  = "debit"
)

type WalletTransaction struct {
	Amount      float64   `bson:"amount" json:"amount"`
	Type        string    `bson:"type" json:"type"`
	Date        time.Time `bson:"date" json:"date"`
	Description string    `bson:"description" json:"description"`
}

// Wallet holds a user's refund balance. Transactions are append-only and
// ordered most-recent-first. Invariant: balance == sum of credits minus
// sum of debits.
type Wallet struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID  `bson:"userId" json:"userId"`
	Balance      float64             `bson:"balance" json:"balance"`
	Transactions []WalletTransaction `bson:"transactions" json:"transactions"`
	CreatedAt    time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// Credit appends an idempotent credit transaction. The description is the
// idempotency key: if a credit with the same description and amount already
// exists, nothing is mutated and false is returned. Amounts <= 0 are a no-op.
func (w *Wallet) Credit(amount float64, description string, now time.Time) bool {
	if amount <= 0 {
		return false
	}
	if w.HasCredit(description, amount) {
		return false
	}
	w.Transactions = append([]WalletTransaction{{
		Amount:      amount,
		Type:        TransactionCredit,
		Date:        now,
		Description: description,
	}}, w.Transactions...)
	w.Balance += amount
	w.UpdatedAt = now
	return true
}

// HasCredit reports whether a credit with the given dedup key was recorded.
func (w *Wallet) HasCredit(description string, amount float64) bool {
	for _, t := range w.Transactions {
		if t.Type == TransactionCredit && t.Description == description && t.Amount == amount {
			return true
		}
	}
	return false
}

// Debit withdraws from the balance. Returns false when the amount is not
// positive or exceeds the balance.
func (w *Wallet) Debit(amount float64, description string, now time.Time) bool {
	if amount <= 0 || amount > w.Balance {
		return false
	}
	w.Transactions = append([]WalletTransaction{{
		Amount:      amount,
		Type:        TransactionDebit,
		Date:        now,
		Description: description,
	}}, w.Transactions...)
	w.Balance -= amount
	w.UpdatedAt = now
	return true
}
