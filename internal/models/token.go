package models

import "github.com/golang-jwt/jwt/v5"

// Role values recognised on access tokens. Token issuance lives in the
// identity service; this API only validates and authorises.
const (
	RoleStudent = "student"
	RoleAdvisor = "advisor"
	RoleAdmin   = "admin"
)

// JWTClaims are the registered + custom claims carried on access tokens.
type JWTClaims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}
