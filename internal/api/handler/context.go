package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/beatshub/interaction-service/internal/core/domain"
)

// ctxIdentity extracts the identity claims injected by the Auth middleware
// and performs a fast-fail check before any service call: a non-empty user id
// proves the middleware ran and the token carried a usable identity.
func ctxIdentity(c echo.Context) (userID string, roles []string, err error) {
	userID, _ = c.Get("user_id").(string)
	if userID == "" {
		return "", nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	roles, _ = c.Get("roles").([]string)
	return userID, roles, nil
}

// hasRole reports whether the caller carries the given role.
func hasRole(roles []string, want string) bool {
	for _, r := range roles {
		if r == want {
			return true
		}
	}
	return false
}

// isAdmin is a shorthand for the moderation surfaces gated to admins.
func isAdmin(roles []string) bool {
	return hasRole(roles, domain.RoleAdmin)
}
