package model

import (
	"crypto/sha256"
	"net/mail"
	"time"
)

const (
	RoleEmployee = iota + 1
	RoleAdmin
)

// User is a recipient-directory entry: enough identity to address
// notifications and to group participation by department.
type User struct {
	ID         uint `gorm:"primarykey"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Uuid       string `gorm:"uniqueIndex"`
	CompanyID  string `gorm:"index"`
	Name       string
	Email      string `gorm:"uniqueIndex"`
	Password   string
	Role       int
	Department string
	Locale     string `gorm:"default:en"`
}

// Validate checks all user's fields to ensure they are in the required format
func (u User) Validate(minPasswordLength int) map[string]string {
	errs := map[string]string{}

	if u.Name == "" {
		errs["name"] = "Name cannot be empty"
	}

	if len(u.Name) > 100 {
		errs["name"] = "Name cannot be longer than 100 characters"
	}

	if _, err := mail.ParseAddress(u.Email); err != nil {
		errs["email"] = "Incorrect email address"
	}

	if len(u.Email) > 100 {
		errs["email"] = "Email cannot be longer than 100 characters"
	}

	if u.Role < RoleEmployee || u.Role > RoleAdmin {
		errs["role"] = "Incorrect role"
	}

	if len(u.Password) < minPasswordLength {
		errs["password"] = "Password is too short"
	}

	return errs
}

func Hash(s string) string {
	h := sha256.New()
	h.Write([]byte(s))
	return string(h.Sum(nil))
}
