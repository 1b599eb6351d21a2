package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vibast-solutions/ms-go-academics/app/entity"
	"github.com/vibast-solutions/ms-go-academics/app/middleware"
	"github.com/vibast-solutions/ms-go-academics/app/service"

	"github.com/labstack/echo/v4"
)

type stubAuthenticator struct {
	account *entity.Account
	err     error
}

func (s *stubAuthenticator) Authenticate(_ context.Context, _, _ string) (*entity.Account, error) {
	return s.account, s.err
}

func callMiddleware(t *testing.T, auth *middleware.AuthMiddleware, setBasic bool, login, password string) (*httptest.ResponseRecorder, bool) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/accounts", nil)
	if setBasic {
		req.SetBasicAuth(login, password)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	nextCalled := false
	handler := auth.RequireAuth(func(c echo.Context) error {
		nextCalled = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	return rec, nextCalled
}

func TestRequireAuthMissingHeader(t *testing.T) {
	auth := middleware.NewAuthMiddleware(&stubAuthenticator{})

	rec, nextCalled := callMiddleware(t, auth, false, "", "")

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if nextCalled {
		t.Fatalf("next handler must not run without credentials")
	}
}

func TestRequireAuthInvalidCredentials(t *testing.T) {
	auth := middleware.NewAuthMiddleware(&stubAuthenticator{err: service.ErrInvalidCredentials})

	rec, nextCalled := callMiddleware(t, auth, true, "bob", "wrong")

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if nextCalled {
		t.Fatalf("next handler must not run with bad credentials")
	}
}

func TestRequireAuthSuccess(t *testing.T) {
	auth := middleware.NewAuthMiddleware(&stubAuthenticator{
		account: &entity.Account{ID: 7, Username: "bob"},
	})

	rec, nextCalled := callMiddleware(t, auth, true, "bob", "Abc12345!")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !nextCalled {
		t.Fatalf("next handler should have run")
	}
}

func TestRequireAuthStorageError(t *testing.T) {
	auth := middleware.NewAuthMiddleware(&stubAuthenticator{err: errors.New("db down")})

	rec, nextCalled := callMiddleware(t, auth, true, "bob", "Abc12345!")

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if nextCalled {
		t.Fatalf("next handler must not run when authentication errors")
	}
}
