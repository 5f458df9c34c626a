package authclient

// Role is the user's role as resolved by the backend.
type Role string

const (
	// RoleSuperadmin administers the whole site
	RoleSuperadmin Role = "superadmin"
	// RoleHead chairs the council
	RoleHead Role = "head"
	// RoleCenterMember is a member of the central council
	RoleCenterMember Role = "center_member"
	// RoleSenfiMember is a regular council member
	RoleSenfiMember Role = "simple_senfi_member"
	// RoleSimpleUser is a registered student with no council position
	RoleSimpleUser Role = "simple_user"
	// RoleNone marks the absence of a role (no session)
	RoleNone Role = ""
)

// IsValid checks if the role is one of the predefined valid roles
func (r Role) IsValid() bool {
	switch r {
	case RoleSuperadmin, RoleHead, RoleCenterMember, RoleSenfiMember, RoleSimpleUser:
		return true
	default:
		return false
	}
}

// IsAtLeast checks if this role meets the minimum required level
func (r Role) IsAtLeast(minRole Role) bool {
	roleHierarchy := map[Role]int{
		RoleSimpleUser:   0,
		RoleSenfiMember:  1,
		RoleCenterMember: 2,
		RoleHead:         3,
		RoleSuperadmin:   4,
	}

	currentLevel, exists := roleHierarchy[r]
	if !exists {
		return false
	}

	minLevel, exists := roleHierarchy[minRole]
	if !exists {
		return false
	}

	return currentLevel >= minLevel
}

// CanManageCampaigns reports whether this role may create, edit, or close
// campaigns through the admin surfaces.
func (r Role) CanManageCampaigns() bool {
	return r.IsAtLeast(RoleCenterMember)
}

// CanReviewSignatures reports whether this role may see signer identities
// on non-anonymous campaigns.
func (r Role) CanReviewSignatures() bool {
	return r.IsAtLeast(RoleHead)
}

// AllRoles returns all predefined roles in hierarchical order
func AllRoles() []Role {
	return []Role{
		RoleSimpleUser,
		RoleSenfiMember,
		RoleCenterMember,
		RoleHead,
		RoleSuperadmin,
	}
}

// ParseRole safely parses a string into a Role type. Unknown values come
// back as RoleNone.
func ParseRole(roleStr string) (Role, bool) {
	role := Role(roleStr)
	if !role.IsValid() {
		return RoleNone, false
	}
	return role, true
}
