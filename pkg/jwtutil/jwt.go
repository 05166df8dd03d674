package jwtutil

import (
	"time"

	"github.com/golang-jwt/jwt/v4"

	"employee-service/internal/model"
	"employee-service/pkg/config"
)

// Claims is the payload embedded in a bearer token. Downstream authorization
// trusts these fields once the signature has been verified; EmployeeID is nil
// for accounts that never matched an employee record.
type Claims struct {
	UserID     uint   `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	EmployeeID *uint  `json:"employeeId"`
	jwt.RegisteredClaims
}

// JWT issues and verifies HS256 tokens. It is constructed once from config in
// main and passed to the account service and the auth middleware.
type JWT struct {
	signingKey []byte
	lifetime   time.Duration
}

// New creates a JWT utility from configuration.
func New(cfg *config.JWTConfig) *JWT {
	lifetime := time.Duration(cfg.ExpirationHours) * time.Hour
	if lifetime <= 0 {
		lifetime = time.Hour
	}
	return &JWT{
		signingKey: []byte(cfg.SigningKey),
		lifetime:   lifetime,
	}
}

// GenerateToken creates a signed token for the given user and returns it
// together with the claims so the caller can hand both to the client without
// a second query.
func (j *JWT) GenerateToken(user *model.User) (string, *Claims, error) {
	claims := &Claims{
		UserID:     user.ID,
		Email:      user.Email,
		Name:       user.Name,
		Role:       user.Role,
		EmployeeID: user.EmployeeID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(j.lifetime)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.signingKey)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// ValidateToken validates and parses a token. Expired and malformed tokens
// fail the same way; callers do not distinguish the two.
func (j *JWT) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return j.signingKey, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}
