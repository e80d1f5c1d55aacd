package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"shop-api/internal/models"
	"shop-api/internal/repo/mongodb"
)

// XUserID carries the identity already verified by the upstream auth layer.
const XUserID = "X-User-ID"

const userContextKey = "user"

// AuthContext resolves the authenticated user from the X-User-ID header and
// stores it on the echo context. Role and shop come from the store, never
// from the request.
func AuthContext(users mongodb.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rawID := c.Request().Header.Get(XUserID)
			if rawID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing user identity")
			}

			userID, err := primitive.ObjectIDFromHex(rawID)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid user identity")
			}

			ctx := c.Request().Context()
			user, err := users.GetByID(ctx, userID)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "unknown user")
			}

			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the user resolved by AuthContext, or nil outside of an
// authenticated route.
func CurrentUser(c echo.Context) *models.User {
	user, _ := c.Get(userContextKey).(*models.User)
	return user
}

func GetUserID(c echo.Context) string {
	if user := CurrentUser(c); user != nil {
		return user.ID.Hex()
	}
	return ""
}
