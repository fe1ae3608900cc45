package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
	RoleAdmin   UserRole = "admin"
)

type UserStatus string

const (
	StatusActive    UserStatus = "active"
	StatusInactive  UserStatus = "inactive"
	StatusSuspended UserStatus = "suspended"
)

type User struct {
	ID    uint     `json:"id" gorm:"primaryKey"`
	Name  string   `json:"name" gorm:"not null;size:100"`
	Email string   `json:"email" gorm:"uniqueIndex;not null;size:100"`
	Role  UserRole `json:"role" gorm:"not null;size:20;default:student"`

	// Never serialized; column only ever holds a bcrypt hash.
	Password string `json:"-" gorm:"not null;size:100"`

	// Profile info
	ProfilePicture *string `json:"profile_picture" gorm:"size:500"`

	// Status
	EmailVerified bool       `json:"email_verified" gorm:"default:false"`
	Status        UserStatus `json:"status" gorm:"not null;size:20;default:active"`
	LastLogin     *time.Time `json:"last_login"`

	// Password reset flow
	ResetPasswordToken  *string    `json:"-" gorm:"size:255;index"`
	ResetPasswordExpire *time.Time `json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user bypasses ownership checks.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanLogin reports whether the account status allows authentication.
func (u *User) CanLogin() bool {
	return u.Status == StatusActive
}

// OwnerInfo is the minimal projection of a user joined onto owned records.
type OwnerInfo struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func (u *User) OwnerInfo() OwnerInfo {
	return OwnerInfo{ID: u.ID, Name: u.Name}
}
