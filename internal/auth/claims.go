package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"mesaclub/reservas/internal/constants"
)

// UserClaims is the actor identity every workflow operation receives.
type UserClaims interface {
	UserID() string
	Role() constants.UserRole
	Email() string
	IsAdmin() bool
}

// JWTClaims carries the signed token payload.
type JWTClaims struct {
	UserUUID  string             `json:"userId"`
	RoleValue constants.UserRole `json:"role"`
	EmailVal  string             `json:"email"`
	jwt.RegisteredClaims
}

func (c *JWTClaims) UserID() string           { return c.UserUUID }
func (c *JWTClaims) Role() constants.UserRole { return c.RoleValue }
func (c *JWTClaims) Email() string            { return c.EmailVal }
func (c *JWTClaims) IsAdmin() bool            { return c.RoleValue == constants.RoleAdmin }
