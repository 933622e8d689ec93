package models

import (
	"strings"
	"time"
)

type Role string

const (
	RoleOfficer Role = "officer"
	RoleAdmin   Role = "admin"
)

// AdminName is the reserved login name that grants the admin role.
const AdminName = "admin"

// Officer is the identity established by a login. It lives only as long as the session.
type Officer struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Role       Role      `json:"role"`
	LoggedInAt time.Time `json:"loggedInAt"`
}

// RoleForName derives the role from the login name.
func RoleForName(name string) Role {
	if strings.EqualFold(strings.TrimSpace(name), AdminName) {
		return RoleAdmin
	}
	return RoleOfficer
}
