package http

import (
	"time"

	"github.com/vibast-solutions/ms-go-academics/app/entity"
)

type AccountResponse struct {
	ID        uint64    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// NewAccountResponse maps an account to its public shape. The password hash
// and reset token never leave the service.
func NewAccountResponse(account *entity.Account) AccountResponse {
	return AccountResponse{
		ID:        account.ID,
		Username:  account.Username,
		Email:     account.Email,
		CreatedAt: account.CreatedAt,
	}
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ResetRequestedResponse struct {
	Message string `json:"message"`
}

type DeliveryRecordResponse struct {
	ID          uint64    `json:"id"`
	Kind        string    `json:"kind"`
	Succeeded   bool      `json:"succeeded"`
	ErrorDetail string    `json:"error_detail,omitempty"`
	SentAt      time.Time `json:"sent_at"`
}

func NewDeliveryRecordResponse(record *entity.DeliveryRecord) DeliveryRecordResponse {
	resp := DeliveryRecordResponse{
		ID:        record.ID,
		Kind:      string(record.Kind),
		Succeeded: record.Succeeded,
		SentAt:    record.SentAt,
	}
	if record.ErrorDetail.Valid {
		resp.ErrorDetail = record.ErrorDetail.String
	}
	return resp
}

type ErrorResponse struct {
	Error string `json:"error"`
}
