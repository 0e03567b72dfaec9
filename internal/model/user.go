package model

import (
	"time"

	"github.com/google/uuid"
)

// UserStatus represents whether a user account can be used
type UserStatus string

const (
	UserStatusActive  UserStatus = "ACTIVE"
	UserStatusBlocked UserStatus = "BLOCKED"
)

// UserType represents the role a user plays on the platform
type UserType string

const (
	UserTypeAdmin      UserType = "ADMIN"
	UserTypeStudent    UserType = "STUDENT"
	UserTypeInstructor UserType = "INSTRUCTOR"
)

// Field length limits shared by validation and storage schemas
const (
	MaxUserNameLength    = 50
	MaxEmailLength       = 50
	MaxFullNameLength    = 150
	MaxPhoneNumberLength = 20
	MaxCPFLength         = 20
)

// User represents a user profile record
type User struct {
	UserID         uuid.UUID  `json:"userId"`
	UserName       string     `json:"userName"`
	Email          string     `json:"email"`
	Password       string     `json:"-"` // bcrypt hash, never exposed
	FullName       string     `json:"fullName"`
	UserStatus     UserStatus `json:"userStatus"`
	UserType       UserType   `json:"userType"`
	PhoneNumber    string     `json:"phoneNumber"`
	CPF            string     `json:"cpf"`
	ImageURL       *string    `json:"imageUrl,omitempty"`
	CreationDate   time.Time  `json:"creationDate"`
	LastUpdateDate time.Time  `json:"lastUpdateDate"`
}

// UserUpdate holds the fields that may be changed through the user resource.
// Identifier, user name, email and credentials are owned by other flows.
type UserUpdate struct {
	FullName    string `json:"fullName" validate:"max=150"`
	PhoneNumber string `json:"phoneNumber" validate:"max=20"`
	CPF         string `json:"cpf" validate:"max=20"`
}

// Apply overwrites the mutable fields of u and stamps the update time
func (upd UserUpdate) Apply(u *User, now time.Time) {
	u.FullName = upd.FullName
	u.PhoneNumber = upd.PhoneNumber
	u.CPF = upd.CPF
	u.LastUpdateDate = now.UTC()
}

// IsValidUserStatus reports whether s names a known status
func IsValidUserStatus(s string) bool {
	switch UserStatus(s) {
	case UserStatusActive, UserStatusBlocked:
		return true
	}
	return false
}

// IsValidUserType reports whether t names a known user type
func IsValidUserType(t string) bool {
	switch UserType(t) {
	case UserTypeAdmin, UserTypeStudent, UserTypeInstructor:
		return true
	}
	return false
}
