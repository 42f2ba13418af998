package entity

const (
	RoleAdmin   = "admin"
	RoleCreator = "creator"
)

// Identity is the caller as reported by the auth provider.
type Identity struct {
	UID   string
	Email string
	Role  string
	Admin bool
	Token string
}

// CanManageCatalog reports whether the caller may add or edit catalog records.
func (i *Identity) CanManageCatalog() bool {
	if i == nil {
		return false
	}
	return i.Admin || i.Role == RoleAdmin || i.Role == RoleCreator
}
