package repository

import (
	"context"

	"github.com/vibast-solutions/ms-go-academics/app/entity"
)

// DeliveryRecordRepository is the append-only audit trail for notification
// attempts. There is deliberately no update or delete.
type DeliveryRecordRepository struct {
	db DBTX
}

func NewDeliveryRecordRepository(db DBTX) *DeliveryRecordRepository {
	return &DeliveryRecordRepository{db: db}
}

func (r *DeliveryRecordRepository) Append(ctx context.Context, record *entity.DeliveryRecord) error {
	query := `
		INSERT INTO delivery_records (account_id, kind, succeeded, error_detail, sent_at)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		record.AccountID,
		string(record.Kind),
		record.Succeeded,
		record.ErrorDetail,
		record.SentAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	record.ID = uint64(id)
	return nil
}

func (r *DeliveryRecordRepository) ListByAccount(ctx context.Context, accountID uint64) ([]*entity.DeliveryRecord, error) {
	query := `
		SELECT id, account_id, kind, succeeded, error_detail, sent_at
		FROM delivery_records WHERE account_id = ? ORDER BY sent_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*entity.DeliveryRecord
	for rows.Next() {
		record := &entity.DeliveryRecord{}
		var kind string
		if err := rows.Scan(
			&record.ID,
			&record.AccountID,
			&kind,
			&record.Succeeded,
			&record.ErrorDetail,
			&record.SentAt,
		); err != nil {
			return nil, err
		}
		record.Kind = entity.MessageKind(kind)
		records = append(records, record)
	}
	return records, rows.Err()
}
