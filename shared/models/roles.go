package models

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// AllRoles returns every role a user can hold.
func AllRoles() []string {
	return []string{RoleUser, RoleAdmin}
}

// IsValidRole reports whether role is one of AllRoles.
func IsValidRole(role string) bool {
	for _, r := range AllRoles() {
		if r == role {
			return true
		}
	}
	return false
}
