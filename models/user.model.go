package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles
const (
	RoleAdmin      = "ADMIN"
	RoleInstructor = "INSTRUCTOR"
	RoleStudent    = "STUDENT"
)

type User struct {
	gorm.Model
	ProfileImage string     `gorm:"default:''" json:"profile_image"`
	Name         string     `gorm:"default:''" json:"name"`
	Email        string     `gorm:"unique;not null" json:"email"`
	Role         string     `gorm:"default:'STUDENT'" json:"role"` // ADMIN, INSTRUCTOR, STUDENT
	Password     string     `gorm:"not null" json:"-"`
	LastLogin    *time.Time `json:"last_login"`
	IsDeleted    bool       `gorm:"default:false" json:"-"`
}

// PublicUser is the identity shape exposed alongside submissions and
// enrollment listings.
type PublicUser struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email}
}
