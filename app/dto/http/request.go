package http

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func NewRegisterRequestFromContext(ctx echo.Context) (*RegisterRequest, error) {
	var body RegisterRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	return &body, nil
}

func (r *RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" || strings.TrimSpace(r.Email) == "" || strings.TrimSpace(r.Password) == "" {
		return errors.New("username, email and password are required")
	}
	return nil
}

type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

func NewLoginRequestFromContext(ctx echo.Context) (*LoginRequest, error) {
	var body LoginRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	return &body, nil
}

func (r *LoginRequest) Validate() error {
	if strings.TrimSpace(r.Login) == "" || strings.TrimSpace(r.Password) == "" {
		return errors.New("login and password are required")
	}
	return nil
}

// UpdateAccountRequest carries a self-service account edit. Nil fields keep
// their current value. When any profile field is present the update runs
// through the coordinated account+profile path.
type UpdateAccountRequest struct {
	Login           string  `json:"login"`
	CurrentPassword string  `json:"current_password"`
	Username        *string `json:"username"`
	Email           *string `json:"email"`
	NewPassword     *string `json:"new_password"`
	FullName        *string `json:"full_name"`
	School          *string `json:"school"`
}

func NewUpdateAccountRequestFromContext(ctx echo.Context) (*UpdateAccountRequest, error) {
	var body UpdateAccountRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	return &body, nil
}

func (r *UpdateAccountRequest) Validate() error {
	if strings.TrimSpace(r.Login) == "" || strings.TrimSpace(r.CurrentPassword) == "" {
		return errors.New("login and current_password are required")
	}
	if r.Username == nil && r.Email == nil && r.NewPassword == nil && r.FullName == nil && r.School == nil {
		return errors.New("nothing to update")
	}
	return nil
}

func (r *UpdateAccountRequest) TouchesProfile() bool {
	return r.FullName != nil || r.School != nil
}

type RequestPasswordResetRequest struct {
	Email string `json:"email"`
}

func NewRequestPasswordResetRequestFromContext(ctx echo.Context) (*RequestPasswordResetRequest, error) {
	var body RequestPasswordResetRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	return &body, nil
}

func (r *RequestPasswordResetRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" {
		return errors.New("email is required")
	}
	return nil
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

func NewResetPasswordRequestFromContext(ctx echo.Context) (*ResetPasswordRequest, error) {
	var body ResetPasswordRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	return &body, nil
}

func (r *ResetPasswordRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" || strings.TrimSpace(r.Token) == "" || strings.TrimSpace(r.NewPassword) == "" {
		return errors.New("email, token and new_password are required")
	}
	return nil
}
