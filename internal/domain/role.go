package domain

// Role constants define the allowed principal roles.
const (
	RoleUser  = "user"
	RoleStaff = "staff"
	RoleAdmin = "admin"
)

// ValidRoles returns the set of valid principal roles.
func ValidRoles() []string {
	return []string{RoleUser, RoleStaff, RoleAdmin}
}

// IsValidRole checks whether the given role string is a valid principal role.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles() {
		if r == role {
			return true
		}
	}
	return false
}
