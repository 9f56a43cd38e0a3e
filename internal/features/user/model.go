package user

import "go-gamifier/internal/common/models"

type UserInput struct {
	EmployeeID        string      `json:"employee_id"`
	Name              string      `json:"name"`
	Surname           string      `json:"surname"`
	ManagerEmployeeID string      `json:"manager_employee_id"`
	Department        string      `json:"department"`
	Role              models.Role `json:"role"`
}

// ProfileInput carries the editable profile fields. Employee id and organization never change.
type ProfileInput struct {
	Name              string      `json:"name"`
	Surname           string      `json:"surname"`
	ManagerEmployeeID string      `json:"manager_employee_id"`
	Department        string      `json:"department"`
	Role              models.Role `json:"role"`
}

type UserPage struct {
	Users []models.User `json:"users"`
	Total int64         `json:"total"`
	Page  int64         `json:"page"`
	Limit int64         `json:"limit"`
}

// Columns of a user import file. Department is optional.
var importHeaders = []string{"employee_id", "name", "surname", "manager_employee_id", "role"}
