package service

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vibast-solutions/ms-go-academics/app/entity"
	"github.com/vibast-solutions/ms-go-academics/app/repository"
	"github.com/vibast-solutions/ms-go-academics/config"

	"github.com/sirupsen/logrus"
)

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrUsernameTaken      = errors.New("username already in use")
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid reset token")
	ErrTokenExpired       = errors.New("reset token has expired")
	ErrWeakPassword       = errors.New("password does not meet policy requirements")
	ErrInvalidUsername    = errors.New("username is empty or too long")
	ErrProfileNotFound    = errors.New("profile not found")
)

const maxUsernameLength = 10

type accountRepository interface {
	Create(ctx context.Context, account *entity.Account) error
	Update(ctx context.Context, account *entity.Account) error
	Delete(ctx context.Context, id uint64) (bool, error)
	FindByID(ctx context.Context, id uint64) (*entity.Account, error)
	FindByUsername(ctx context.Context, username string) (*entity.Account, error)
	FindByEmail(ctx context.Context, email string) (*entity.Account, error)
	List(ctx context.Context) ([]*entity.Account, error)
	UsernameExists(ctx context.Context, username string, excludeID uint64) (bool, error)
	EmailExists(ctx context.Context, email string, excludeID uint64) (bool, error)
}

type deliveryLister interface {
	ListByAccount(ctx context.Context, accountID uint64) ([]*entity.DeliveryRecord, error)
}

type notifier interface {
	Send(ctx context.Context, account *entity.Account, kind entity.MessageKind, params map[string]string) bool
}

// AccountChanges is the partial-change input for a credential update. Nil
// means "keep the current value"; the service computes the merged target
// state before a single full-row store update.
type AccountChanges struct {
	Username    *string
	Email       *string
	NewPassword *string
}

// ProfileChanges mirrors AccountChanges for the dependent profile row.
type ProfileChanges struct {
	FullName *string
	School   *string
}

type AccountService interface {
	Register(ctx context.Context, username, email, password string) (*entity.Account, error)
	Authenticate(ctx context.Context, usernameOrEmail, password string) (*entity.Account, error)
	UpdateCredentials(ctx context.Context, usernameOrEmail, currentPassword string, changes AccountChanges) (*entity.Account, error)
	UpdateWithProfile(ctx context.Context, usernameOrEmail, currentPassword string, changes AccountChanges, profile ProfileChanges) (*entity.Account, error)
	InitiateReset(ctx context.Context, email string) (bool, error)
	RedeemReset(ctx context.Context, email, token, newPassword string) error
	GetByID(ctx context.Context, id uint64) (*entity.Account, error)
	List(ctx context.Context) ([]*entity.Account, error)
	Delete(ctx context.Context, id uint64) (bool, error)
	ListDeliveries(ctx context.Context, accountID uint64) ([]*entity.DeliveryRecord, error)
}

type accountService struct {
	db         *sql.DB
	accounts   accountRepository
	deliveries deliveryLister
	mailer     notifier
	cfg        *config.Config
}

func NewAccountService(
	db *sql.DB,
	accounts accountRepository,
	deliveries deliveryLister,
	mailer notifier,
	cfg *config.Config,
) AccountService {
	return &accountService{
		db:         db,
		accounts:   accounts,
		deliveries: deliveries,
		mailer:     mailer,
		cfg:        cfg,
	}
}

func (s *accountService) Register(ctx context.Context, username, email, password string) (*entity.Account, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" || len(username) > maxUsernameLength {
		return nil, ErrInvalidUsername
	}
	if err := s.cfg.PasswordPolicy.Validate(password); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrWeakPassword, err.Error())
	}

	taken, err := s.accounts.UsernameExists(ctx, username, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUsernameTaken
	}
	taken, err = s.accounts.EmailExists(ctx, email, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	now := time.Now()
	account := &entity.Account{
		Username:     username,
		Email:        email,
		PasswordHash: HashPassword(password),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, mapRepositoryErr(err)
	}

	// Best effort: the account exists whether or not the welcome mail lands.
	s.mailer.Send(ctx, account, entity.KindWelcome, nil)

	return account, nil
}

// Authenticate looks the account up by username first and falls back to
// email; the username match wins when both could resolve. The same error is
// returned for an unknown identifier and a wrong password.
func (s *accountService) Authenticate(ctx context.Context, usernameOrEmail, password string) (*entity.Account, error) {
	account, err := s.accounts.FindByUsername(ctx, usernameOrEmail)
	if err != nil {
		return nil, err
	}
	if account == nil {
		account, err = s.accounts.FindByEmail(ctx, usernameOrEmail)
		if err != nil {
			return nil, err
		}
	}
	if account == nil {
		return nil, ErrInvalidCredentials
	}

	if !VerifyPassword(password, account.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return account, nil
}

func (s *accountService) UpdateCredentials(ctx context.Context, usernameOrEmail, currentPassword string, changes AccountChanges) (*entity.Account, error) {
	account, err := s.Authenticate(ctx, usernameOrEmail, currentPassword)
	if err != nil {
		return nil, err
	}

	if err := s.applyChanges(ctx, account, changes); err != nil {
		return nil, err
	}

	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, mapRepositoryErr(err)
	}

	s.mailer.Send(ctx, account, entity.KindActivityNotice, map[string]string{
		"activity": "account credentials were updated",
	})

	return account, nil
}

// UpdateWithProfile applies an account edit and a profile edit in one
// transaction: either both rows commit or neither does. The profile write
// set excludes the account back-reference, so the accounts row is touched
// exactly once, through the account update path.
func (s *accountService) UpdateWithProfile(ctx context.Context, usernameOrEmail, currentPassword string, changes AccountChanges, profileChanges ProfileChanges) (*entity.Account, error) {
	account, err := s.Authenticate(ctx, usernameOrEmail, currentPassword)
	if err != nil {
		return nil, err
	}

	if err := s.applyChanges(ctx, account, changes); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	txAccounts := repository.NewAccountRepository(tx)
	txProfiles := repository.NewProfileRepository(tx)

	profile, err := txProfiles.Get(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	if profileChanges.FullName != nil {
		profile.FullName = *profileChanges.FullName
	}
	if profileChanges.School != nil {
		profile.School = *profileChanges.School
	}

	if err := txAccounts.Update(ctx, account); err != nil {
		return nil, mapRepositoryErr(err)
	}
	if err := txProfiles.Save(ctx, profile); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.mailer.Send(ctx, account, entity.KindActivityNotice, map[string]string{
		"activity": "account and profile were updated",
	})

	return account, nil
}

// InitiateReset returns false when the email is unknown. On a known email it
// persists a fresh token before any notification attempt; the returned bool
// does not depend on whether the mail went out.
func (s *accountService) InitiateReset(ctx context.Context, email string) (bool, error) {
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if account == nil {
		return false, nil
	}

	token, err := NewResetToken()
	if err != nil {
		return false, err
	}

	account.ResetToken = sql.NullString{String: token, Valid: true}
	account.ResetTokenExpiresAt = sql.NullTime{
		Time:  time.Now().Add(s.cfg.ResetTokenTTL),
		Valid: true,
	}

	if err := s.accounts.Update(ctx, account); err != nil {
		return false, mapRepositoryErr(err)
	}

	if !s.mailer.Send(ctx, account, entity.KindPasswordResetRequested, map[string]string{
		"reset_token": token,
	}) {
		logrus.WithField("account_id", account.ID).Warn("Password reset mail not delivered, token remains valid")
	}

	return true, nil
}

func (s *accountService) RedeemReset(ctx context.Context, email, token, newPassword string) error {
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if account == nil {
		return ErrInvalidToken
	}

	if !account.ResetToken.Valid || !account.ResetTokenExpiresAt.Valid {
		return ErrInvalidToken
	}
	if subtle.ConstantTimeCompare([]byte(account.ResetToken.String), []byte(token)) != 1 {
		return ErrInvalidToken
	}
	if TokenExpired(account.ResetTokenExpiresAt.Time, time.Now()) {
		return ErrTokenExpired
	}

	if err := s.cfg.PasswordPolicy.Validate(newPassword); err != nil {
		return fmt.Errorf("%w: %s", ErrWeakPassword, err.Error())
	}

	account.PasswordHash = HashPassword(newPassword)
	account.ResetToken = sql.NullString{Valid: false}
	account.ResetTokenExpiresAt = sql.NullTime{Valid: false}

	if err := s.accounts.Update(ctx, account); err != nil {
		return mapRepositoryErr(err)
	}

	s.mailer.Send(ctx, account, entity.KindPasswordChanged, nil)

	return nil
}

func (s *accountService) GetByID(ctx context.Context, id uint64) (*entity.Account, error) {
	return s.accounts.FindByID(ctx, id)
}

func (s *accountService) List(ctx context.Context) ([]*entity.Account, error) {
	return s.accounts.List(ctx)
}

func (s *accountService) Delete(ctx context.Context, id uint64) (bool, error) {
	return s.accounts.Delete(ctx, id)
}

func (s *accountService) ListDeliveries(ctx context.Context, accountID uint64) ([]*entity.DeliveryRecord, error) {
	return s.deliveries.ListByAccount(ctx, accountID)
}

// applyChanges merges the requested changes into the loaded account,
// validating the new username and checking uniqueness with the account's
// own id excluded.
func (s *accountService) applyChanges(ctx context.Context, account *entity.Account, changes AccountChanges) error {
	if changes.Username != nil {
		username := strings.TrimSpace(*changes.Username)
		if username == "" || len(username) > maxUsernameLength {
			return ErrInvalidUsername
		}
		taken, err := s.accounts.UsernameExists(ctx, username, account.ID)
		if err != nil {
			return err
		}
		if taken {
			return ErrUsernameTaken
		}
		account.Username = username
	}

	if changes.Email != nil {
		email := strings.TrimSpace(*changes.Email)
		taken, err := s.accounts.EmailExists(ctx, email, account.ID)
		if err != nil {
			return err
		}
		if taken {
			return ErrEmailTaken
		}
		account.Email = email
	}

	if changes.NewPassword != nil {
		if err := s.cfg.PasswordPolicy.Validate(*changes.NewPassword); err != nil {
			return fmt.Errorf("%w: %s", ErrWeakPassword, err.Error())
		}
		account.PasswordHash = HashPassword(*changes.NewPassword)
	}

	return nil
}

func mapRepositoryErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicateUsername):
		return ErrUsernameTaken
	case errors.Is(err, repository.ErrDuplicateEmail):
		return ErrEmailTaken
	case errors.Is(err, repository.ErrAccountNotFound):
		return ErrAccountNotFound
	default:
		return err
	}
}
