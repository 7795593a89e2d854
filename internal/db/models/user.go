package models

import (
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"
)

// AuthSource tells how a user logs in.
type AuthSource string

const (
	// AuthSourceLocal users have an argon2id password hash in this database.
	AuthSourceLocal AuthSource = "local"
	// AuthSourceOIDC users log in at an OpenID Connect provider.
	AuthSourceOIDC AuthSource = "oidc"
	// AuthSourceLDAP users bind against a directory server.
	AuthSourceLDAP AuthSource = "ldap"
)

// User is an account that may view or manage sliders.
type User struct {
	ID         uint64     `gorm:"primaryKey"`
	Active     bool       `form:"-"`
	Username   string     `gorm:"unique;size:100;not null" form:"username"`
	Email      string     `gorm:"size:255;not null"        form:"-"`
	Password   string     `gorm:"size:255"                 form:"password" json:"-"`
	FirstName  string     `gorm:"size:100"                 form:"-"`
	LastName   string     `gorm:"size:100"                 form:"-"`
	RoleID     uint       `gorm:"column:role_id;not null"  form:"-"`
	AuthSource AuthSource `gorm:"type:varchar(20);not null;default:'local'" form:"-"`
	// ExternalID is the OIDC subject or the LDAP DN.
	ExternalID string `gorm:"size:255" form:"-"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// HashPassword returns the argon2id hash of password.
func HashPassword(password string) string {
	hashedPassword, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		log.Fatal().Msgf("failed to hash password: %v", err)
	}

	return hashedPassword
}

// VerifyPassword compares password with the stored hash.
func (u *User) VerifyPassword(password string) bool {
	match, err := argon2id.ComparePasswordAndHash(password, u.Password)
	if err != nil {
		log.Error().Err(err).Str("username", u.Username).Msg("failed to verify password")
		return false
	}

	return match
}
