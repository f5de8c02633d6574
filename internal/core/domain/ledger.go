package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryKind is the business reason for a ledger entry.
type EntryKind string

const (
	EntryPurchase    EntryKind = "purchase"
	EntryUsage       EntryKind = "usage"
	EntryBonus       EntryKind = "bonus"
	EntryAdminGrant  EntryKind = "admin_grant"
	EntryAdminDeduct EntryKind = "admin_deduct"
	EntryRefund      EntryKind = "refund"
)

// IsCredit reports whether entries of this kind increase a balance.
func (k EntryKind) IsCredit() bool {
	switch k {
	case EntryPurchase, EntryBonus, EntryAdminGrant, EntryRefund:
		return true
	}
	return false
}

// Valid reports whether k is a known kind.
func (k EntryKind) Valid() bool {
	switch k {
	case EntryPurchase, EntryUsage, EntryBonus, EntryAdminGrant, EntryAdminDeduct, EntryRefund:
		return true
	}
	return false
}

// LedgerEntry is an immutable, append-only credit movement. Amount is signed.
type LedgerEntry struct {
	EntryID     string    `json:"entryID"`
	UserID      string    `json:"userID"`
	Amount      int64     `json:"amount"`
	Kind        EntryKind `json:"kind"`
	Description string    `json:"description"`
	ReferenceID *string   `json:"referenceID,omitempty"`
	AdminID     *string   `json:"adminID,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// PaymentRecord is the receipt of a successful purchase of credits.
type PaymentRecord struct {
	PaymentID   string          `json:"paymentID"`
	UserID      string          `json:"userID"`
	Credits     int64           `json:"credits"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	ProviderRef string          `json:"providerRef"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// BalanceAudit compares the cached balance with the sum of ledger entries.
type BalanceAudit struct {
	UserID        string `json:"userID"`
	CachedBalance int64  `json:"cachedBalance"`
	LedgerSum     int64  `json:"ledgerSum"`
	EntryCount    int    `json:"entryCount"`
}

// Consistent reports whether the cached balance matches the ledger.
func (a BalanceAudit) Consistent() bool {
	return a.CachedBalance == a.LedgerSum
}

// Posting describes one ledger movement to apply. Amount is a positive
// magnitude; Kind decides the sign of the resulting entry.
type Posting struct {
	UserID      string
	Amount      int64
	Kind        EntryKind
	Description string
	ReferenceID *string
	AdminID     *string
}

// Signed returns the signed amount the entry will carry.
func (p Posting) Signed() int64 {
	if p.Kind.IsCredit() {
		return p.Amount
	}
	return -p.Amount
}
