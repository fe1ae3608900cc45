package postgres

import (
	"time"

	"github.com/SAP-F-2025/materials-service/internal/models"
)

// The models hide some fields from API JSON (`json:"-"`), but the cache
// stores JSON too, so those fields would vanish on every cache hit. These
// entry types carry them explicitly and reassemble the model on read.

type materialOwnerViewEntry struct {
	Material models.Material  `json:"material"`
	Owner    models.OwnerInfo `json:"owner"`
}

func newMaterialOwnerViewEntry(m *models.Material) *materialOwnerViewEntry {
	return &materialOwnerViewEntry{
		Material: *m,
		Owner:    m.Owner.OwnerInfo(),
	}
}

func (e *materialOwnerViewEntry) material() *models.Material {
	m := e.Material
	m.Owner = models.User{ID: e.Owner.ID, Name: e.Owner.Name}
	return &m
}

type userEntry struct {
	User                models.User `json:"user"`
	Password            string      `json:"password"`
	ResetPasswordToken  *string     `json:"reset_password_token,omitempty"`
	ResetPasswordExpire *time.Time  `json:"reset_password_expire,omitempty"`
}

func newUserEntry(u *models.User) *userEntry {
	return &userEntry{
		User:                *u,
		Password:            u.Password,
		ResetPasswordToken:  u.ResetPasswordToken,
		ResetPasswordExpire: u.ResetPasswordExpire,
	}
}

func (e *userEntry) user() *models.User {
	u := e.User
	u.Password = e.Password
	u.ResetPasswordToken = e.ResetPasswordToken
	u.ResetPasswordExpire = e.ResetPasswordExpire
	return &u
}
