package auth

// UserRole is a closed role enum. Values arriving from any boundary,
// including decoded session claims, must pass ParseRole before use.
type UserRole string

const (
	// RoleUser is the default role assigned at registration
	RoleUser UserRole = "USER"
	// RoleAdmin gates privileged write operations
	RoleAdmin UserRole = "ADMIN"
)

// IsValid checks if the role is one of the predefined valid roles
func (r UserRole) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// IsAdmin reports whether the role carries admin privileges
func (r UserRole) IsAdmin() bool {
	return r == RoleAdmin
}

// IsAtLeast checks if this role meets the minimum required level
func (r UserRole) IsAtLeast(minRole UserRole) bool {
	currentLevel, ok := roleHierarchy[r]
	if !ok {
		return false
	}

	minLevel, ok := roleHierarchy[minRole]
	if !ok {
		return false
	}

	return currentLevel >= minLevel
}

var roleHierarchy = map[UserRole]int{
	RoleUser:  0,
	RoleAdmin: 1,
}

// GetAllRoles returns all predefined roles in hierarchical order
func GetAllRoles() []UserRole {
	return []UserRole{RoleUser, RoleAdmin}
}

// ParseRole safely parses a string into a UserRole type
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, role.IsValid()
}
