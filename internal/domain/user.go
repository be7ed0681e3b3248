package domain

import (
	"regexp"
	"time"
)

// Role is the access level of a user.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
	RoleOwner    Role = "owner"
)

// AllRoles lists every valid role. Passing it to Authorize skips the role
// check and leaves only the ownership check.
var AllRoles = []Role{RoleAdmin, RoleCustomer, RoleOwner}

// IsValid checks if the Role is one of the defined constants.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleCustomer, RoleOwner:
		return true
	}
	return false
}

// User is a registered account. Password holds the bcrypt hash and is never
// serialized to JSON.
type User struct {
	ID        int64     `json:"_id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	FirstName string    `json:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var (
	hasLetter = regexp.MustCompile(`[a-zA-Z]`)
	hasDigit  = regexp.MustCompile(`\d`)
)

// CheckPasswordRequirements reports whether a plain-text password is strong
// enough: at least 8 characters, one letter and one number.
func CheckPasswordRequirements(password string) bool {
	if len(password) < 8 {
		return false
	}
	return hasLetter.MatchString(password) && hasDigit.MatchString(password)
}

// UserFilter holds parameters for querying users.
type UserFilter struct {
	Role   Role   // optional, restricts to one role
	Search string // case-insensitive match against first name, last name or email
}
