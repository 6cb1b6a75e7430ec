// Copyright (c) 2026 Rolegate. All rights reserved.

/*
Package assign implements the role assignment core.

It resolves a free-form Discord handle to a guild member and grants the
configured target role, guarded by idempotence and authorization checks.

Architecture:

  - Service: The assignment engine — one-time initialization barrier plus
    the ordered gate sequence around the single role mutation.
  - Resolver: Maps a parsed handle to at most one guild member.
  - Handler: The server-to-server webhook surface (POST /assign-role).

The engine performs exactly one conditional state mutation; there is no
retry logic anywhere — idempotence comes from the already-assigned check.
*/
package assign

import (
	"net/http"

	"github.com/rolegate/rolegate/internal/platform/apperr"
)

// # Outcome Codes

// Stable machine-readable outcome codes for assignment attempts. Webhook
// callers branch on these; the OAuth adapter remaps them onto its own set.
const (
	CodeHandlerNotInitialized   = "HANDLER_NOT_INITIALIZED"
	CodeUserNotFound            = "USER_NOT_FOUND"
	CodeRoleAlreadyAssigned     = "ROLE_ALREADY_ASSIGNED"
	CodeInsufficientPermissions = "INSUFFICIENT_PERMISSIONS"
	CodeRoleHierarchyError      = "ROLE_HIERARCHY_ERROR"
	CodeInternalError           = "INTERNAL_ERROR"
)

// Assignment describes a member/role pair an assignment attempt refers to.
// It is the success payload, and also rides along on the
// ROLE_ALREADY_ASSIGNED outcome so callers can see whom it concerned.
type Assignment struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	RoleName string `json:"roleName"`
}

// # Outcome Constructors

func errNotInitialized() *apperr.AppError {
	return apperr.New(http.StatusInternalServerError, CodeHandlerNotInitialized,
		"Role handler not properly initialized")
}

func errUserNotFound() *apperr.AppError {
	return apperr.New(http.StatusNotFound, CodeUserNotFound,
		"User not found in the server")
}

func errRoleAlreadyAssigned(data *Assignment) *apperr.AppError {
	return apperr.New(http.StatusConflict, CodeRoleAlreadyAssigned,
		"User already has this role").WithData(data)
}

func errInsufficientPermissions() *apperr.AppError {
	return apperr.New(http.StatusForbidden, CodeInsufficientPermissions,
		"Bot lacks permission to manage roles")
}

func errRoleHierarchy() *apperr.AppError {
	return apperr.New(http.StatusForbidden, CodeRoleHierarchyError,
		"Cannot assign role due to role hierarchy")
}

func errInternal(cause error) *apperr.AppError {
	err := apperr.New(http.StatusInternalServerError, CodeInternalError,
		"An error occurred while assigning the role")
	err.Cause = cause
	return err
}
