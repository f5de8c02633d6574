package domain

// Capability is a permission string such as "fortune:review".
type Capability string

const (
	CapFortuneReview  Capability = "fortune:review"
	CapFortuneApprove Capability = "fortune:approve"
	CapUserManage     Capability = "user:manage"
	CapAdminManage    Capability = "admin:manage"
	CapSystemConfig   Capability = "system:config"
	CapAll            Capability = "*"
)

// CapabilitySet is the set of permissions held by a principal.
type CapabilitySet []Capability

// NewCapabilitySet builds a set from raw permission strings.
func NewCapabilitySet(perms ...string) CapabilitySet {
	set := make(CapabilitySet, 0, len(perms))
	for _, p := range perms {
		if p == "" {
			continue
		}
		set = append(set, Capability(p))
	}
	return set
}

// Strings returns the raw permission strings.
func (s CapabilitySet) Strings() []string {
	out := make([]string, len(s))
	for i, c := range s {
		out[i] = string(c)
	}
	return out
}

// HasCapability reports whether set grants required. "*" grants everything.
func HasCapability(set CapabilitySet, required Capability) bool {
	for _, c := range set {
		if c == CapAll || c == required {
			return true
		}
	}
	return false
}
