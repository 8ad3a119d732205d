package domain

// Role is the access level attached to a credential record.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// Credential is the safe view of a stored account: it never carries the raw
// secret or the stored hash.
type Credential struct {
	ID       int64
	Username string
	Role     Role
}
