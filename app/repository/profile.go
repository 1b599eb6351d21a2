package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vibast-solutions/ms-go-academics/app/entity"
)

var ErrProfileNotFound = errors.New("profile not found")

// ProfileRepository persists the dependent profile row that shares an
// account's id. Its write set lists profile columns only: the account
// back-reference is never re-written from here, so a coordinated update of
// account and profile issues exactly one write per table.
type ProfileRepository struct {
	db DBTX
}

func NewProfileRepository(db DBTX) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Create(ctx context.Context, profile *entity.Profile) error {
	query := `
		INSERT INTO profiles (account_id, full_name, school, updated_at)
		VALUES (?, ?, ?, ?)
	`
	profile.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		profile.AccountID,
		profile.FullName,
		profile.School,
		profile.UpdatedAt,
	)
	return err
}

func (r *ProfileRepository) Get(ctx context.Context, accountID uint64) (*entity.Profile, error) {
	query := `
		SELECT account_id, full_name, school, updated_at
		FROM profiles WHERE account_id = ?
	`
	profile := &entity.Profile{}
	err := r.db.QueryRowContext(ctx, query, accountID).Scan(
		&profile.AccountID,
		&profile.FullName,
		&profile.School,
		&profile.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *ProfileRepository) Save(ctx context.Context, profile *entity.Profile) error {
	query := `
		UPDATE profiles SET
			full_name = ?,
			school = ?,
			updated_at = ?
		WHERE account_id = ?
	`
	profile.UpdatedAt = time.Now()
	result, err := r.db.ExecContext(ctx, query,
		profile.FullName,
		profile.School,
		profile.UpdatedAt,
		profile.AccountID,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		// Same-value updates also report zero rows on MySQL, so confirm
		// absence before failing.
		existing, err := r.Get(ctx, profile.AccountID)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrProfileNotFound
		}
	}
	return nil
}
