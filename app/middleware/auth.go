package middleware

import (
	"context"
	"net/http"

	"github.com/vibast-solutions/ms-go-academics/app/entity"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type authenticator interface {
	Authenticate(ctx context.Context, usernameOrEmail, password string) (*entity.Account, error)
}

// AuthMiddleware checks username+password on every protected request via
// HTTP Basic auth. The service issues no bearer tokens.
type AuthMiddleware struct {
	accountService authenticator
}

func NewAuthMiddleware(accountService authenticator) *AuthMiddleware {
	return &AuthMiddleware{accountService: accountService}
}

func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		login, password, ok := c.Request().BasicAuth()
		if !ok {
			logrus.Debug("Missing or malformed authorization header")
			c.Response().Header().Set(echo.HeaderWWWAuthenticate, `Basic realm="accounts"`)
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error": "authentication required",
			})
		}

		account, err := m.accountService.Authenticate(c.Request().Context(), login, password)
		if err != nil {
			logrus.WithField("login", login).Debug("Request authentication failed")
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error": "invalid credentials",
			})
		}

		c.Set("account_id", account.ID)
		c.Set("account_username", account.Username)

		return next(c)
	}
}
