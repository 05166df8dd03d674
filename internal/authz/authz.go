// Package authz decides whether an authenticated actor may perform an
// operation on an employee resource. It adjudicates permission only; the
// claims it receives must already have been authenticated by the token
// middleware.
package authz

import (
	"employee-service/internal/model"
	"employee-service/pkg/jwtutil"
)

// Operation is a kind of access to an employee resource.
type Operation string

const (
	OpList   Operation = "list"
	OpView   Operation = "view"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Allowed reports whether the actor may perform op on the employee record
// identified by targetEmployeeID.
//
// Admins are unrestricted. Employees may view and update their own record
// only: the claims must carry a non-nil employee id equal to the target.
// List, create and delete are admin-only regardless of target. Roles outside
// admin/employee are never allowed.
func Allowed(claims *jwtutil.Claims, op Operation, targetEmployeeID uint) bool {
	if claims == nil {
		return false
	}

	switch claims.Role {
	case model.RoleAdmin:
		return true
	case model.RoleEmployee:
		if op != OpView && op != OpUpdate {
			return false
		}
		return claims.EmployeeID != nil && *claims.EmployeeID == targetEmployeeID
	default:
		return false
	}
}
