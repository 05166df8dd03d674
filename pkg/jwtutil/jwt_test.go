package jwtutil

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"employee-service/internal/model"
	"employee-service/pkg/config"
)

func testJWT() *JWT {
	return New(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})
}

func TestGenerateAndValidateToken(t *testing.T) {
	j := testJWT()

	employeeID := uint(7)
	user := &model.User{
		ID:         42,
		Name:       "Jordan Reeves",
		Email:      "jordan@example.com",
		Role:       model.RoleEmployee,
		EmployeeID: &employeeID,
	}

	token, issued, err := j.GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if issued.UserID != user.ID || issued.Email != user.Email {
		t.Errorf("issued claims do not match user: %+v", issued)
	}

	claims, err := j.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != 42 || claims.Email != "jordan@example.com" || claims.Name != "Jordan Reeves" || claims.Role != model.RoleEmployee {
		t.Errorf("round-tripped claims = %+v", claims)
	}
	if claims.EmployeeID == nil || *claims.EmployeeID != 7 {
		t.Errorf("employee id not carried through token: %v", claims.EmployeeID)
	}
}

func TestValidateTokenNilEmployeeID(t *testing.T) {
	j := testJWT()

	user := &model.User{ID: 1, Name: "Admin", Email: "admin@example.com", Role: model.RoleAdmin}
	token, _, err := j.GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := j.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.EmployeeID != nil {
		t.Errorf("expected nil employee id, got %v", *claims.EmployeeID)
	}
}

func TestValidateTokenWrongKey(t *testing.T) {
	j := testJWT()
	other := New(&config.JWTConfig{SigningKey: "a-different-key", ExpirationHours: 1})

	token, _, err := other.GenerateToken(&model.User{ID: 1, Email: "x@example.com"})
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := j.ValidateToken(token); err == nil {
		t.Error("token signed with a different key validated")
	}
}

func TestValidateTokenExpired(t *testing.T) {
	j := testJWT()

	claims := &Claims{
		UserID: 1,
		Email:  "x@example.com",
		Role:   model.RoleEmployee,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-signing-key"))
	if err != nil {
		t.Fatalf("signing expired token: %v", err)
	}

	if _, err := j.ValidateToken(expired); err == nil {
		t.Error("expired token validated")
	}
}

func TestValidateTokenGarbage(t *testing.T) {
	j := testJWT()
	if _, err := j.ValidateToken("not-a-token"); err == nil {
		t.Error("garbage token validated")
	}
}
