package domain

// Role is the coarse authorization role carried in identity claims.
// Issuance and verification of those claims belong to the external auth
// service; this core only consumes them.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleNeedy Role = "needy"
	RoleDonor Role = "donor"
)

// Identity is the authenticated account attached to a request by the
// auth middleware. The zero value means the request is from a guest.
type Identity struct {
	ID    string
	Name  string
	Email string
	Role  Role
}

// IsZero reports whether no authenticated account is present.
func (i Identity) IsZero() bool {
	return i.ID == ""
}
