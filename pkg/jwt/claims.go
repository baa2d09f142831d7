package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

// Role values carried in operator tokens
const (
	RoleOperator  = "operator"
	RoleScheduler = "scheduler"
)

// Claims represents JWT custom claims for an operator or scheduler
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}
