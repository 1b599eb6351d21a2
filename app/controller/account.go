package controller

import (
	"errors"
	"net/http"
	"strconv"

	httpdto "github.com/vibast-solutions/ms-go-academics/app/dto/http"
	"github.com/vibast-solutions/ms-go-academics/app/entity"
	"github.com/vibast-solutions/ms-go-academics/app/service"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type AccountController struct {
	accountService service.AccountService
}

func NewAccountController(accountService service.AccountService) *AccountController {
	return &AccountController{accountService: accountService}
}

func (c *AccountController) Register(ctx echo.Context) error {
	req, err := httpdto.NewRegisterRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind register request")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "invalid request body"})
	}

	if err = req.Validate(); err != nil {
		logrus.WithField("username", req.Username).Debug("Register validation failed")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: err.Error()})
	}

	logrus.WithField("username", req.Username).Info("Register request received")
	account, err := c.accountService.Register(ctx.Request().Context(), req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameTaken), errors.Is(err, service.ErrEmailTaken):
			logrus.WithField("username", req.Username).Warn("Register failed: conflict")
			return ctx.JSON(http.StatusConflict, httpdto.ErrorResponse{Error: err.Error()})
		case errors.Is(err, service.ErrWeakPassword), errors.Is(err, service.ErrInvalidUsername):
			logrus.WithField("username", req.Username).Warn("Register failed: invalid input")
			return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: err.Error()})
		}
		logrus.WithError(err).WithField("username", req.Username).Error("Register failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	logrus.WithFields(logrus.Fields{
		"account_id": account.ID,
		"username":   account.Username,
	}).Info("Account registered")

	return ctx.JSON(http.StatusCreated, httpdto.NewAccountResponse(account))
}

func (c *AccountController) Login(ctx echo.Context) error {
	req, err := httpdto.NewLoginRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind login request")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "invalid request body"})
	}

	if err = req.Validate(); err != nil {
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: err.Error()})
	}

	account, err := c.accountService.Authenticate(ctx.Request().Context(), req.Login, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			logrus.WithField("login", req.Login).Warn("Login failed: invalid credentials")
			return ctx.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Error: "invalid credentials"})
		}
		logrus.WithError(err).WithField("login", req.Login).Error("Login failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	return ctx.JSON(http.StatusOK, httpdto.NewAccountResponse(account))
}

func (c *AccountController) Update(ctx echo.Context) error {
	req, err := httpdto.NewUpdateAccountRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind update request")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "invalid request body"})
	}

	if err = req.Validate(); err != nil {
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: err.Error()})
	}

	changes := service.AccountChanges{
		Username:    req.Username,
		Email:       req.Email,
		NewPassword: req.NewPassword,
	}

	var account *entity.Account
	reqCtx := ctx.Request().Context()
	if req.TouchesProfile() {
		account, err = c.accountService.UpdateWithProfile(reqCtx, req.Login, req.CurrentPassword, changes, service.ProfileChanges{
			FullName: req.FullName,
			School:   req.School,
		})
	} else {
		account, err = c.accountService.UpdateCredentials(reqCtx, req.Login, req.CurrentPassword, changes)
	}
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			logrus.WithField("login", req.Login).Warn("Update failed: invalid credentials")
			return ctx.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Error: "invalid credentials"})
		case errors.Is(err, service.ErrUsernameTaken), errors.Is(err, service.ErrEmailTaken):
			logrus.WithField("login", req.Login).Warn("Update failed: conflict")
			return ctx.JSON(http.StatusConflict, httpdto.ErrorResponse{Error: err.Error()})
		case errors.Is(err, service.ErrWeakPassword), errors.Is(err, service.ErrInvalidUsername):
			return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: err.Error()})
		case errors.Is(err, service.ErrProfileNotFound), errors.Is(err, service.ErrAccountNotFound):
			return ctx.JSON(http.StatusNotFound, httpdto.ErrorResponse{Error: err.Error()})
		}
		logrus.WithError(err).WithField("login", req.Login).Error("Update failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	return ctx.JSON(http.StatusOK, httpdto.NewAccountResponse(account))
}

// RequestPasswordReset always answers 200 with the same body so the endpoint
// does not leak which emails have accounts.
func (c *AccountController) RequestPasswordReset(ctx echo.Context) error {
	req, err := httpdto.NewRequestPasswordResetRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind password reset request")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "invalid request body"})
	}

	if err = req.Validate(); err != nil {
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: err.Error()})
	}

	known, err := c.accountService.InitiateReset(ctx.Request().Context(), req.Email)
	if err != nil {
		logrus.WithError(err).WithField("email", req.Email).Error("Password reset initiation failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}
	if !known {
		logrus.WithField("email", req.Email).Debug("Password reset requested for unknown email")
	}

	return ctx.JSON(http.StatusOK, httpdto.ResetRequestedResponse{
		Message: "if the email is registered, a reset message has been sent",
	})
}

func (c *AccountController) ResetPassword(ctx echo.Context) error {
	req, err := httpdto.NewResetPasswordRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind reset password request")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "invalid request body"})
	}

	if err = req.Validate(); err != nil {
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: err.Error()})
	}

	if err = c.accountService.RedeemReset(ctx.Request().Context(), req.Email, req.Token, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrTokenExpired):
			logrus.WithField("email", req.Email).Warn("Password reset rejected")
			return ctx.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Error: "invalid or expired token"})
		case errors.Is(err, service.ErrWeakPassword):
			return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: err.Error()})
		}
		logrus.WithError(err).WithField("email", req.Email).Error("Password reset failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	return ctx.JSON(http.StatusOK, httpdto.MessageResponse{Message: "password has been reset"})
}

func (c *AccountController) List(ctx echo.Context) error {
	accounts, err := c.accountService.List(ctx.Request().Context())
	if err != nil {
		logrus.WithError(err).Error("Account list failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	resp := make([]httpdto.AccountResponse, 0, len(accounts))
	for _, account := range accounts {
		resp = append(resp, httpdto.NewAccountResponse(account))
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (c *AccountController) Delete(ctx echo.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "invalid account id"})
	}

	removed, err := c.accountService.Delete(ctx.Request().Context(), id)
	if err != nil {
		logrus.WithError(err).WithField("account_id", id).Error("Account delete failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}
	if !removed {
		return ctx.JSON(http.StatusNotFound, httpdto.ErrorResponse{Error: "account not found"})
	}

	logrus.WithField("account_id", id).Info("Account deleted")
	return ctx.JSON(http.StatusOK, httpdto.MessageResponse{Message: "account deleted"})
}

func (c *AccountController) ListDeliveries(ctx echo.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "invalid account id"})
	}

	records, err := c.accountService.ListDeliveries(ctx.Request().Context(), id)
	if err != nil {
		logrus.WithError(err).WithField("account_id", id).Error("Delivery list failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	resp := make([]httpdto.DeliveryRecordResponse, 0, len(records))
	for _, record := range records {
		resp = append(resp, httpdto.NewDeliveryRecordResponse(record))
	}
	return ctx.JSON(http.StatusOK, resp)
}
