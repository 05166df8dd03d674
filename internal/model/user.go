package model

import (
	"time"
)

// Role values recognized by the service. Anything else is rejected at
// registration time.
const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

// User represents a login-capable account. Email is the join key to the
// Employee table: EmployeeID is resolved by case-insensitive email equality
// at registration time and backfilled when an employee with a matching email
// is created later. Emails are stored lowercased, so lookups are plain
// equality.
type User struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Name       string    `json:"name" gorm:"type:varchar(100);not null"`
	Email      string    `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	Password   string    `json:"-" gorm:"type:varchar(255);not null"`
	Role       string    `json:"role" gorm:"type:varchar(20);not null;default:'employee'"`
	EmployeeID *uint     `json:"employee_id" gorm:"index"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
