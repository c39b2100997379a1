package models

// Actor is the authenticated caller of an operation
type Actor struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}

// Identity is the string stored as Job.EmployerID for jobs the actor posts
func (a *Actor) Identity() string {
	return NormalizeEmail(a.Email)
}

func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}

func (a *Actor) IsEmployer() bool {
	return a != nil && a.Role == RoleEmployer
}

func (a *Actor) IsApplicant() bool {
	return a != nil && a.Role == RoleApplicant
}

// HasRole checks the actor against any of the given roles
func (a *Actor) HasRole(roles ...Role) bool {
	if a == nil {
		return false
	}
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}
