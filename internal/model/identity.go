package model

// Role is the access level carried in a session credential.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	RoleGuest Role = "guest"
)

// Identity is the user decoded from a bearer token.
type Identity struct {
	Username string
	Role     Role
	Email    string
}

// IsPrivileged reports whether the identity may moderate and edit the catalog.
func (i Identity) IsPrivileged() bool {
	return i.Role == RoleAdmin
}

// Guest is the identity of a session with no valid credential.
var Guest = Identity{Role: RoleGuest}
