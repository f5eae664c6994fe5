package domain

// Principal kinds.
const (
	PrincipalKindUser  = "user"
	PrincipalKindStaff = "staff"
)

// Principal is the unified view of a login-capable identity, either a
// self-registered account or a worker account.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	Kind  string `json:"kind"`
}

// IsAdmin reports whether the principal carries the admin role.
func (p *Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// PrincipalFromUser builds a Principal view of a self-registered account.
func PrincipalFromUser(u *User) *Principal {
	return &Principal{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
		Kind:  PrincipalKindUser,
	}
}

// PrincipalFromStaff builds a Principal view of a worker account.
func PrincipalFromStaff(s *Staff) *Principal {
	return &Principal{
		ID:    s.ID,
		Email: s.Email,
		Name:  s.Name,
		Role:  s.Role,
		Kind:  PrincipalKindStaff,
	}
}
