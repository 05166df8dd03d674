package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"employee-service/internal/account"
	"employee-service/internal/middleware"
	"employee-service/internal/model"
	"employee-service/pkg/logger"
	"employee-service/prometheus"
)

// AuthHandler exposes registration, login and the current-account profile.
type AuthHandler struct {
	svc *account.Service
	db  *gorm.DB
}

func NewAuthHandler(svc *account.Service, db *gorm.DB) *AuthHandler {
	return &AuthHandler{svc: svc, db: db}
}

// Register creates a user account, or overwrites the password of an existing
// one when the email is already registered (activation). If an employee
// record carries the same email, the new account is linked to it.
func (h *AuthHandler) Register(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RegisterCounter.Inc()

	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse registration request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	result, err := h.svc.Register(c.Request().Context(), account.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	switch {
	case err == nil:
	case errors.Is(err, account.ErrValidation):
		log.Error("Invalid registration data", zap.Error(err))
		prometheus.RecordAuthError("incomplete_registration")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Email and password are required"})
	case errors.Is(err, account.ErrEmailTaken):
		log.Warn("Registration lost insert race", zap.Error(err))
		prometheus.RecordAuthError("email_already_exists")
		return c.JSON(http.StatusConflict, echo.Map{"error": "Email already exists"})
	default:
		log.Error("Registration failed", zap.Error(err))
		prometheus.RecordAuthError("registration_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Registration failed"})
	}

	if result.Activated {
		prometheus.ActivationCounter.Inc()
		log.Info("Account password activated", zap.String("email", result.User.Email))
		return c.JSON(http.StatusOK, echo.Map{
			"message": "Password updated successfully. You can now log in.",
		})
	}

	log.Info("User registered",
		zap.String("email", result.User.Email),
		zap.String("role", result.User.Role),
		zap.Any("linked_employee_id", result.LinkedEmployeeID))
	return c.JSON(http.StatusCreated, echo.Map{
		"message":          "User registered successfully",
		"linkedEmployeeId": result.LinkedEmployeeID,
	})
}

// Login verifies the credentials and returns a signed token alongside the
// claims so the client can persist both without a second request.
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	token, claims, err := h.svc.Login(c.Request().Context(), req.Email, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, account.ErrValidation):
		prometheus.RecordAuthError("incomplete_login")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Email and password are required"})
	case errors.Is(err, account.ErrInvalidCredentials):
		// Same response for unknown email and wrong password.
		log.Warn("Login rejected", zap.String("email", account.NormalizeEmail(req.Email)))
		prometheus.RecordAuthError("invalid_credentials")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid credentials"})
	default:
		log.Error("Login failed", zap.Error(err))
		prometheus.RecordAuthError("login_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to login"})
	}

	prometheus.IncreaseActiveTokens()
	log.Info("User logged in",
		zap.String("email", claims.Email),
		zap.String("role", claims.Role))

	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user": echo.Map{
			"id":         claims.UserID,
			"email":      claims.Email,
			"name":       claims.Name,
			"role":       claims.Role,
			"employeeId": claims.EmployeeID,
		},
	})
}

// Profile returns the account of the authenticated caller, with the linked
// employee record when one exists.
func (h *AuthHandler) Profile(c echo.Context) error {
	log := logger.FromContext(c)

	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	if err := h.db.WithContext(c.Request().Context()).First(&user, claims.UserID).Error; err != nil {
		log.Error("Account not found for valid token", zap.Uint("user_id", claims.UserID), zap.Error(err))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Account not found"})
	}

	response := echo.Map{"user": user}
	if user.EmployeeID != nil {
		var employee model.Employee
		if err := h.db.WithContext(c.Request().Context()).First(&employee, *user.EmployeeID).Error; err == nil {
			response["employee"] = employee
		}
	}

	return c.JSON(http.StatusOK, response)
}
