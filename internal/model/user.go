package model

import (
	"context"
	"errors"
)

type UserRole string

const (
	UserRoleAdmin  UserRole = "admin"
	UserRoleMember UserRole = "member"
	// UserRoleUnknown is reported for users who never picked a role.
	UserRoleUnknown UserRole = ""
)

func (r UserRole) Known() bool {
	return r == UserRoleAdmin || r == UserRoleMember
}

var ErrUserNotFound = errors.New("user not found")

type RoleRepository interface {
	RoleOf(ctx context.Context, userID int64) (UserRole, error)
	SetRole(ctx context.Context, userID int64, role UserRole) error
	FetchAdmins(ctx context.Context) ([]int64, error)
}
