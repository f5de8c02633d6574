package domain

// PrincipalKind tags the two authenticated identity variants.
type PrincipalKind string

const (
	PrincipalUser  PrincipalKind = "user"
	PrincipalAdmin PrincipalKind = "admin"
)

// Valid reports whether k is a known principal kind.
func (k PrincipalKind) Valid() bool {
	return k == PrincipalUser || k == PrincipalAdmin
}

// Principal is an authenticated caller. Users never carry capabilities;
// admins carry the permissions stored on their admin record.
type Principal struct {
	Kind        PrincipalKind `json:"kind"`
	ID          string        `json:"id"`
	Email       string        `json:"email"`
	Name        string        `json:"name"`
	Permissions CapabilitySet `json:"permissions,omitempty"`
}

// UserPrincipal builds the principal for a customer.
func UserPrincipal(u User) Principal {
	return Principal{Kind: PrincipalUser, ID: u.UserID, Email: u.Email, Name: u.Name}
}

// AdminPrincipal builds the principal for an operator.
func AdminPrincipal(a Admin) Principal {
	return Principal{Kind: PrincipalAdmin, ID: a.AdminID, Email: a.Email, Name: a.Name, Permissions: a.Permissions}
}

// IsAdmin reports whether the principal is an operator.
func (p Principal) IsAdmin() bool {
	return p.Kind == PrincipalAdmin
}

// Can reports whether the principal holds the capability. Only admins can.
func (p Principal) Can(required Capability) bool {
	return p.IsAdmin() && HasCapability(p.Permissions, required)
}

// Credentials are presented to Authenticate. Kind selects the identity table.
type Credentials struct {
	Kind     PrincipalKind
	Email    string
	Password string
}
