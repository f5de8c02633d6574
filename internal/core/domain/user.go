package domain

// User is a paying customer. Credits is a cached balance that is only ever
// changed together with a LedgerEntry.
type User struct {
	UserID       string `json:"userID"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	PasswordHash string `json:"-"`
	Credits      int64  `json:"credits"`
	Timestamps
}

// Admin is a back-office operator holding a set of capabilities.
type Admin struct {
	AdminID      string        `json:"adminID"`
	Email        string        `json:"email"`
	Name         string        `json:"name"`
	PasswordHash string        `json:"-"`
	Role         string        `json:"role"`
	Permissions  CapabilitySet `json:"permissions"`
	IsActive     bool          `json:"isActive"`
	Timestamps
}
