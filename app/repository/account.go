package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/vibast-solutions/ms-go-academics/app/entity"

	"github.com/go-sql-driver/mysql"
)

var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrDuplicateUsername = errors.New("username already in use")
	ErrDuplicateEmail    = errors.New("email already in use")
)

const mysqlDuplicateEntry = 1062

// DBTX is satisfied by both *sql.DB and *sql.Tx so repositories can run
// inside or outside an explicit transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type AccountRepository struct {
	db DBTX
}

func NewAccountRepository(db DBTX) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, username, email, password_hash, reset_token, reset_token_expires_at, created_at, updated_at`

// Create persists a new account. Username and email uniqueness is re-checked
// immediately before the insert; a duplicate-key error from the database is
// still mapped, so a write racing past the check cannot corrupt state.
func (r *AccountRepository) Create(ctx context.Context, account *entity.Account) error {
	if err := r.checkUnique(ctx, account.Username, account.Email, 0); err != nil {
		return err
	}

	query := `
		INSERT INTO accounts (username, email, password_hash, reset_token, reset_token_expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		account.Username,
		account.Email,
		account.PasswordHash,
		account.ResetToken,
		account.ResetTokenExpiresAt,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		return mapDuplicateErr(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	account.ID = uint64(id)
	return nil
}

// Update writes the caller-merged target state for the whole row. Callers
// compute "new value or keep old value" first; no partial merge happens here.
func (r *AccountRepository) Update(ctx context.Context, account *entity.Account) error {
	if err := r.checkUnique(ctx, account.Username, account.Email, account.ID); err != nil {
		return err
	}

	var exists uint64
	err := r.db.QueryRowContext(ctx, `SELECT id FROM accounts WHERE id = ?`, account.ID).Scan(&exists)
	if err == sql.ErrNoRows {
		return ErrAccountNotFound
	}
	if err != nil {
		return err
	}

	query := `
		UPDATE accounts SET
			username = ?,
			email = ?,
			password_hash = ?,
			reset_token = ?,
			reset_token_expires_at = ?,
			updated_at = ?
		WHERE id = ?
	`
	account.UpdatedAt = time.Now()
	_, err = r.db.ExecContext(ctx, query,
		account.Username,
		account.Email,
		account.PasswordHash,
		account.ResetToken,
		account.ResetTokenExpiresAt,
		account.UpdatedAt,
		account.ID,
	)
	return mapDuplicateErr(err)
}

// Delete removes an account row and reports whether one was removed.
// Dependent profile and delivery rows go with it via ON DELETE CASCADE.
func (r *AccountRepository) Delete(ctx context.Context, id uint64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id uint64) (*entity.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*entity.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE username = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, username))
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

func (r *AccountRepository) List(ctx context.Context) ([]*entity.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*entity.Account
	for rows.Next() {
		account := &entity.Account{}
		if err := rows.Scan(
			&account.ID,
			&account.Username,
			&account.Email,
			&account.PasswordHash,
			&account.ResetToken,
			&account.ResetTokenExpiresAt,
			&account.CreatedAt,
			&account.UpdatedAt,
		); err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// UsernameExists reports whether another account already holds username.
// excludeID lets an account keep its own username during an update; pass 0
// to check against every row.
func (r *AccountRepository) UsernameExists(ctx context.Context, username string, excludeID uint64) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM accounts WHERE username = ? AND id <> ?`
	if err := r.db.QueryRowContext(ctx, query, username, excludeID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// EmailExists reports whether another account already holds email, with the
// same excludeID semantics as UsernameExists.
func (r *AccountRepository) EmailExists(ctx context.Context, email string, excludeID uint64) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM accounts WHERE email = ? AND id <> ?`
	if err := r.db.QueryRowContext(ctx, query, email, excludeID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *AccountRepository) checkUnique(ctx context.Context, username, email string, excludeID uint64) error {
	taken, err := r.UsernameExists(ctx, username, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return ErrDuplicateUsername
	}

	taken, err = r.EmailExists(ctx, email, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return ErrDuplicateEmail
	}
	return nil
}

func (r *AccountRepository) scanOne(row *sql.Row) (*entity.Account, error) {
	account := &entity.Account{}
	err := row.Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.PasswordHash,
		&account.ResetToken,
		&account.ResetTokenExpiresAt,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return account, nil
}

func mapDuplicateErr(err error) error {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
		if strings.Contains(strings.ToLower(mysqlErr.Message), "email") {
			return ErrDuplicateEmail
		}
		return ErrDuplicateUsername
	}
	return err
}
