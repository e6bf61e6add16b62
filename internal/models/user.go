// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the entities mirrored from the PrepDeck REST
// backend and the gating rules the pages apply to them.
package models

import "strings"

// Role represents a user's permission level on the backend.
type Role string

const (
	RoleUser       Role = "USER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// User is the signed-in account as returned by /user/get-user.
type User struct {
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Phone     string  `json:"phone"`
	Email     string  `json:"email"`
	Avatar    *string `json:"avatar,omitempty"`
	Role      Role    `json:"role"`
	AdminMode bool    `json:"adminMode,omitempty"`
}

// IsAdmin returns true for ADMIN and SUPER_ADMIN.
func (u *User) IsAdmin() bool {
	return u != nil && (u.Role == RoleAdmin || u.Role == RoleSuperAdmin)
}

// IsSuperAdmin returns true if the user has the SUPER_ADMIN role.
func (u *User) IsSuperAdmin() bool {
	return u != nil && u.Role == RoleSuperAdmin
}

// CanAdminister reports whether privileged affordances (create buttons,
// edit mode) should render. Both admin mode and an admin role are needed.
func (u *User) CanAdminister() bool {
	return u != nil && u.AdminMode && u.IsAdmin()
}

// CanModify gates edit and delete controls on a single entity.
func (u *User) CanModify(entityCanModify bool) bool {
	return u != nil && u.AdminMode && entityCanModify
}

// CanVerify gates the verified switch and the verified filter menu.
func (u *User) CanVerify() bool {
	return u != nil && u.AdminMode && u.IsSuperAdmin()
}

// DisplayName joins first and last name.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Initials returns up to two uppercase letters used when no avatar is set.
func (u *User) Initials() string {
	if u == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range []string{u.FirstName, u.LastName} {
		if r := []rune(strings.TrimSpace(part)); len(r) > 0 {
			b.WriteString(strings.ToUpper(string(r[0])))
		}
	}
	return b.String()
}

// AvatarURL dereferences the optional avatar.
func (u *User) AvatarURL() string {
	if u == nil || u.Avatar == nil {
		return ""
	}
	return *u.Avatar
}
