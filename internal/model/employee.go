package model

import (
	"time"
)

// Employee represents a personnel record. Rows are created and deleted only
// through admin-gated operations; the linked user may update their own row.
// Deleting an employee nulls any User.EmployeeID referencing it.
type Employee struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	Name       string     `json:"name" gorm:"type:varchar(100);not null"`
	Email      string     `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	Phone      string     `json:"phone,omitempty" gorm:"type:varchar(20)"`
	Department string     `json:"department,omitempty" gorm:"type:varchar(50)"`
	Position   string     `json:"position,omitempty" gorm:"type:varchar(100)"`
	Salary     *float64   `json:"salary,omitempty"`
	HireDate   *time.Time `json:"hire_date,omitempty" gorm:"type:date"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
