// Package account implements registration and login. Registration doubles as
// activation: admins create employee records up front, and when the person
// later registers with the matching email the new account is linked to that
// record. Registering an email that already has an account overwrites the
// password rather than creating a duplicate.
package account

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"employee-service/internal/model"
	"employee-service/pkg/jwtutil"
)

// Service resolves identity linkage and verifies credentials. Both
// dependencies are injected; the service never reads ambient state.
type Service struct {
	db  *gorm.DB
	jwt *jwtutil.JWT
}

// NewService creates an account service.
func NewService(db *gorm.DB, jwt *jwtutil.JWT) *Service {
	return &Service{db: db, jwt: jwt}
}

// RegisterInput carries a registration request. Name and Role are optional.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// RegisterResult reports how a registration was resolved.
type RegisterResult struct {
	// Activated is true when the email already had an account and the call
	// overwrote its password instead of creating a new user.
	Activated        bool
	LinkedEmployeeID *uint
	User             *model.User
}

// NormalizeEmail maps an email to its canonical stored form. Every email
// entering the service passes through here once, so all lookups below are
// plain equality on the lowercased value.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new user account or, if the email is already
// registered, overwrites that account's password (activation). When a new
// account is created and an employee record carries the same email, the
// account is linked to it and inherits its name as a display-name fallback.
//
// Exactly one user row is inserted or updated per call; employee rows are
// never touched. The check-then-insert sequence is not atomic: a concurrent
// registration for the same brand-new email may win the insert, in which
// case the unique index on users.email rejects ours and the caller gets
// ErrEmailTaken.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	email := NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, errors.Wrap(ErrValidation, "email and password are required")
	}

	role := in.Role
	switch role {
	case "":
		role = model.RoleEmployee
	case model.RoleAdmin, model.RoleEmployee:
	default:
		return nil, errors.Wrapf(ErrValidation, "unknown role %q", in.Role)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hashing password")
	}

	// Existing account: treat the call as password activation. Role and
	// employee linkage stay as they are.
	var existing model.User
	err = s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		if err := s.db.WithContext(ctx).Model(&existing).Update("password", string(hashed)).Error; err != nil {
			return nil, errors.Wrap(err, "updating password")
		}
		return &RegisterResult{
			Activated:        true,
			LinkedEmployeeID: existing.EmployeeID,
			User:             &existing,
		}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrap(err, "looking up user")
	}

	// Fresh account: link to an employee record with the same email, if any.
	var employeeID *uint
	name := in.Name
	var employee model.Employee
	err = s.db.WithContext(ctx).Where("email = ?", email).First(&employee).Error
	switch {
	case err == nil:
		employeeID = &employee.ID
		if name == "" {
			name = employee.Name
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// No employee record; the account starts unlinked.
	default:
		return nil, errors.Wrap(err, "looking up employee")
	}
	if name == "" {
		name = "Unknown"
	}

	user := model.User{
		Name:       name,
		Email:      email,
		Password:   string(hashed),
		Role:       role,
		EmployeeID: employeeID,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race against a concurrent registration.
			return nil, ErrEmailTaken
		}
		return nil, errors.Wrap(err, "creating user")
	}

	return &RegisterResult{
		LinkedEmployeeID: employeeID,
		User:             &user,
	}, nil
}

// Login verifies the credentials and issues a signed token. An unknown email
// and a wrong password produce the same error.
func (s *Service) Login(ctx context.Context, email, password string) (string, *jwtutil.Claims, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, errors.Wrap(ErrValidation, "email and password are required")
	}

	var user model.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, errors.Wrap(err, "looking up user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, claims, err := s.jwt.GenerateToken(&user)
	if err != nil {
		return "", nil, errors.Wrap(err, "generating token")
	}

	return token, claims, nil
}
