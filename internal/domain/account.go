package domain

// Role selects one of the two disjoint identity sets.
type Role string

const (
	RoleStaff  Role = "staff"
	RolePublic Role = "public"
)

// Account is a directory entry. Staff and public users share the same shape
// and live in separate collections; usernames are unique within their own
// set only. Password is the opaque hashed credential produced by the auth
// collaborator and is never interpreted here.
type Account struct {
	Username string
	Name     string
	Email    string
	Password string
}
