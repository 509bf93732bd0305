package structs

// Role is an ordinal into the role bitmask. The set is closed; adding a
// role means appending here and extending roleNames.
type Role uint8

const (
	RoleBasic Role = iota
	RoleDonor
	RoleBeneficiary

	roleCount
)

var roleNames = [roleCount]string{
	RoleBasic:       "Basic",
	RoleDonor:       "Donor",
	RoleBeneficiary: "Beneficiary",
}

// String returns the wire name of the role.
func (r Role) String() string {
	if r < roleCount {
		return roleNames[r]
	}
	return ""
}

// ParseRole resolves a wire name back to its role ordinal.
func ParseRole(name string) (Role, bool) {
	for r := RoleBasic; r < roleCount; r++ {
		if roleNames[r] == name {
			return r, true
		}
	}
	return 0, false
}

// RoleMask encodes a set of roles as one bit per role ordinal.
type RoleMask uint32

// NewRoleMask encodes the given roles into a mask.
func NewRoleMask(roles ...Role) RoleMask {
	var m RoleMask
	for _, r := range roles {
		m = m.Grant(r)
	}
	return m
}

// Has reports whether the role bit is set.
func (m RoleMask) Has(r Role) bool {
	return m&(1<<r) != 0
}

// Grant returns the mask with the role bit set. Granting a held role is a
// no-op.
func (m RoleMask) Grant(r Role) RoleMask {
	return m | (1 << r)
}

// Revoke returns the mask with the role bit cleared. Revoking an unheld
// role is a no-op.
func (m RoleMask) Revoke(r Role) RoleMask {
	return m &^ (1 << r)
}

// Roles decodes the mask into roles in ordinal order. Only known role
// ordinals are considered; stray bits beyond the closed set are ignored.
func (m RoleMask) Roles() []Role {
	roles := make([]Role, 0, roleCount)
	for r := RoleBasic; r < roleCount; r++ {
		if m.Has(r) {
			roles = append(roles, r)
		}
	}
	return roles
}

// Names decodes the mask into role names in ordinal order.
func (m RoleMask) Names() []string {
	decoded := m.Roles()
	names := make([]string, len(decoded))
	for i, r := range decoded {
		names[i] = r.String()
	}
	return names
}
