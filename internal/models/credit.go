package models

import (
	"time"
)

// Credit ledger entry_type enums.
const (
	CreditEntrySignupGrant = "signup_grant"
	CreditEntryTaskCharge  = "task_charge"
	CreditEntryVideoCharge = "video_charge"
	CreditEntryPurchase    = "purchase"
	CreditEntryRefund      = "refund"
)

// CreditLedger is one journal line. Amount is always positive; the entry type
// decides the direction.
type CreditLedger struct {
	ID           string    `json:"id"`
	EntryType    string    `json:"entry_type"`
	Amount       int       `json:"amount"`
	BalanceAfter int       `json:"balance_after"`
	TaskID       *string   `json:"task_id,omitempty"`
	PackageID    *string   `json:"package_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsDebit reports whether the entry decreased the balance.
func (c *CreditLedger) IsDebit() bool {
	return c.EntryType == CreditEntryTaskCharge || c.EntryType == CreditEntryVideoCharge
}
