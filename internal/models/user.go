package models

import "strings"

// Role decides what a profile may see. Only admins reach the usage statistics.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// DefaultDisplayName is used when the identity provider supplies no name.
const DefaultDisplayName = "User"

// UserProfile is the per-user record keyed by email in the root "users"
// collection. The email also names the user's storage namespace.
type UserProfile struct {
	UID         string `bson:"uid" json:"uid" validate:"required"`
	Email       string `bson:"email" json:"email" validate:"required,email"`
	DisplayName string `bson:"displayName" json:"displayName"`
	Role        Role   `bson:"role" json:"role" validate:"oneof=user admin"`
}

// IsAdmin reports whether the stored role is admin.
func (u *UserProfile) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// ProfileUpdate is a partial update of the editable profile fields.
type ProfileUpdate struct {
	DisplayName *string `json:"displayName,omitempty"`
}

// Credential is a locally registered sign-in. It lives apart from the
// profile so profile reads never carry password hashes.
type Credential struct {
	Email        string `bson:"email" validate:"required,email"`
	PasswordHash string `bson:"passwordHash" validate:"required"`
	DisplayName  string `bson:"displayName"`
}

// NormalizeEmail lower-cases and trims an address before it is used as a key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
