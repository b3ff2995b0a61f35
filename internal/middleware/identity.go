package middleware

// identity.go holds helpers shared across middleware files.  currentUserID
// reads the user id that JWTAuth stored in the Echo context; unauthenticated
// requests are labelled "anon" so rate-limit keys stay well-formed.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// currentUserID returns the authenticated user id as a string, or "anon".
func currentUserID(c echo.Context) string {
	if v := c.Get("user_id"); v != nil {
		if id, ok := v.(uint64); ok && id > 0 {
			return strconv.FormatUint(id, 10)
		}
	}
	return "anon"
}
