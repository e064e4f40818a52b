package models

import "strings"

// UserRole represents the roles the portal recognises.
type UserRole string

const (
	RoleStudent   UserRole = "student"
	RoleProfessor UserRole = "professor"
	RoleStaff     UserRole = "staff"
)

// ParseUserRole accepts backend spellings such as "STUDENT" or "교수".
func ParseUserRole(raw string) (UserRole, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "student", "학생", "role_student":
		return RoleStudent, true
	case "professor", "교수", "role_professor":
		return RoleProfessor, true
	case "staff", "교직원", "role_staff":
		return RoleStaff, true
	}
	return "", false
}

// LoginRequest holds portal credentials.
type LoginRequest struct {
	LoginID  string `json:"loginId" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is what the backend returns on a successful sign-in.
type LoginResponse struct {
	AccessToken string  `json:"accessToken"`
	User        Session `json:"user"`
}
