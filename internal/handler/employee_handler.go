package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"employee-service/internal/account"
	"employee-service/internal/model"
	"employee-service/pkg/logger"
	"employee-service/prometheus"
)

// EmployeeHandler exposes CRUD over employee records. Authorization happens
// in the route middleware before any of these run.
type EmployeeHandler struct {
	db *gorm.DB
}

func NewEmployeeHandler(db *gorm.DB) *EmployeeHandler {
	return &EmployeeHandler{db: db}
}

// EmployeeRequest defines the structure for employee creation/update requests
type EmployeeRequest struct {
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Phone      string   `json:"phone"`
	Department string   `json:"department"`
	Position   string   `json:"position"`
	Salary     *float64 `json:"salary"`
	HireDate   string   `json:"hire_date"` // YYYY-MM-DD
}

func (r *EmployeeRequest) validate() (hireDate *time.Time, err error) {
	if r.Name == "" || r.Email == "" {
		return nil, errors.New("Name and email are required")
	}
	if r.Salary != nil && *r.Salary < 0 {
		return nil, errors.New("Salary must not be negative")
	}
	if r.HireDate != "" {
		parsed, err := time.Parse("2006-01-02", r.HireDate)
		if err != nil {
			return nil, errors.New("hire_date must be in YYYY-MM-DD format")
		}
		hireDate = &parsed
	}
	return hireDate, nil
}

// ListEmployees returns all employee records, newest first.
func (h *EmployeeHandler) ListEmployees(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEmployeeOperation("list")

	defer prometheus.TrackDBOperation("query")(time.Now())
	var employees []model.Employee
	if err := h.db.WithContext(c.Request().Context()).Order("id desc").Find(&employees).Error; err != nil {
		log.Error("Failed to retrieve employees", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch employees"})
	}

	return c.JSON(http.StatusOK, employees)
}

// GetEmployee returns a single employee record.
func (h *EmployeeHandler) GetEmployee(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEmployeeOperation("get")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid employee ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var employee model.Employee
	if err := h.db.WithContext(c.Request().Context()).First(&employee, id).Error; err != nil {
		log.Warn("Employee not found", zap.Uint64("employee_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Employee not found"})
	}

	return c.JSON(http.StatusOK, employee)
}

// CreateEmployee inserts an employee record and, in the same transaction,
// links any already-registered user carrying the same email to it.
func (h *EmployeeHandler) CreateEmployee(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEmployeeOperation("create")

	var req EmployeeRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	hireDate, err := req.validate()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	employee := model.Employee{
		Name:       req.Name,
		Email:      account.NormalizeEmail(req.Email),
		Phone:      req.Phone,
		Department: req.Department,
		Position:   req.Position,
		Salary:     req.Salary,
		HireDate:   hireDate,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	err = h.db.WithContext(c.Request().Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&employee).Error; err != nil {
			return err
		}
		// A user may have registered before this record existed; repair the
		// linkage now that there is an employee to point at.
		return tx.Model(&model.User{}).
			Where("email = ?", employee.Email).
			Update("employee_id", employee.ID).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			log.Warn("Employee email already exists", zap.String("email", employee.Email))
			return c.JSON(http.StatusConflict, echo.Map{"error": "Email already exists"})
		}
		log.Error("Failed to create employee", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create employee"})
	}

	log.Info("Employee created",
		zap.Uint("employee_id", employee.ID),
		zap.String("email", employee.Email))
	return c.JSON(http.StatusCreated, echo.Map{
		"message":    "Employee created successfully",
		"employeeId": employee.ID,
	})
}

// UpdateEmployee replaces the mutable fields of an employee record. The hire
// date is kept when the request omits it.
func (h *EmployeeHandler) UpdateEmployee(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEmployeeOperation("update")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid employee ID"})
	}

	var req EmployeeRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Uint64("employee_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	hireDate, err := req.validate()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	var employee model.Employee
	if err := h.db.WithContext(c.Request().Context()).First(&employee, id).Error; err != nil {
		log.Warn("Employee not found for update", zap.Uint64("employee_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Employee not found"})
	}

	employee.Name = req.Name
	employee.Email = account.NormalizeEmail(req.Email)
	employee.Phone = req.Phone
	employee.Department = req.Department
	employee.Position = req.Position
	employee.Salary = req.Salary
	if hireDate != nil {
		employee.HireDate = hireDate
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := h.db.WithContext(c.Request().Context()).Save(&employee).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			log.Warn("Employee email already exists", zap.String("email", employee.Email))
			return c.JSON(http.StatusConflict, echo.Map{"error": "Email already exists"})
		}
		log.Error("Failed to update employee", zap.Uint64("employee_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update employee"})
	}

	log.Info("Employee updated", zap.Uint64("employee_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Employee updated successfully"})
}

// DeleteEmployee removes an employee record and nulls the employee link of
// any user account pointing at it, in the same transaction.
func (h *EmployeeHandler) DeleteEmployee(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEmployeeOperation("delete")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid employee ID"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	var rowsAffected int64
	err = h.db.WithContext(c.Request().Context()).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&model.Employee{}, id)
		if result.Error != nil {
			return result.Error
		}
		rowsAffected = result.RowsAffected
		if rowsAffected == 0 {
			return nil
		}
		return tx.Model(&model.User{}).
			Where("employee_id = ?", id).
			Update("employee_id", nil).Error
	})
	if err != nil {
		log.Error("Failed to delete employee", zap.Uint64("employee_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete employee"})
	}
	if rowsAffected == 0 {
		log.Warn("Employee not found for delete", zap.Uint64("employee_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Employee not found"})
	}

	log.Info("Employee deleted", zap.Uint64("employee_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Employee deleted successfully"})
}

// ExportEmployees streams the roster as an xlsx workbook.
func (h *EmployeeHandler) ExportEmployees(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEmployeeOperation("export")

	defer prometheus.TrackDBOperation("query")(time.Now())
	var employees []model.Employee
	if err := h.db.WithContext(c.Request().Context()).Order("id").Find(&employees).Error; err != nil {
		log.Error("Failed to retrieve employees for export", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch employees"})
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			// The workbook is already serialized at this point; nothing to
			// surface to the caller.
			log.Warn("Failed to close workbook", zap.Error(err))
		}
	}()

	sheet := "Employees"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Name", "Email", "Phone", "Department", "Position", "Salary", "Hire Date"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheet, cell, header)
	}

	for i, e := range employees {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), e.ID)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), e.Name)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), e.Email)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), e.Phone)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), e.Department)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), e.Position)
		if e.Salary != nil {
			f.SetCellValue(sheet, fmt.Sprintf("G%d", row), *e.Salary)
		}
		if e.HireDate != nil {
			f.SetCellValue(sheet, fmt.Sprintf("H%d", row), e.HireDate.Format("2006-01-02"))
		}
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="employees.xlsx"`)
	c.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().WriteHeader(http.StatusOK)

	if err := f.Write(c.Response()); err != nil {
		log.Error("Failed to write workbook", zap.Error(err))
		return err
	}

	log.Info("Employee roster exported", zap.Int("count", len(employees)))
	return nil
}
