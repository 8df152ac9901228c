package payments

import (
	"database/sql"
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("resource not found")
	QueryTimeoutDuration = time.Second * 5
)

// Payment methods accepted at the front desk.
const (
	MethodCash     = "cash"
	MethodCard     = "card"
	MethodTransfer = "transfer"
)

// Payment belongs to exactly one student and inherits the student's
// ownership: whoever can see the student can see its payments.
type Payment struct {
	ID            int64          `json:"id"`
	StudentID     int64          `json:"student_id"`
	AmountCents   int64          `json:"amount_cents"`
	Method        string         `json:"method"`
	ReceiptNumber string         `json:"receipt_number"`
	ReceiptURL    sql.NullString `json:"receipt_url" swaggertype:"string"`
	PaidAt        time.Time      `json:"paid_at"`
	CreatedAt     time.Time      `json:"created_at"`
}

// Summary is an aggregate over a date range, grouped per payment method.
type Summary struct {
	From       time.Time       `json:"from"`
	To         time.Time       `json:"to"`
	TotalCents int64           `json:"total_cents"`
	Count      int64           `json:"count"`
	ByMethod   []MethodSummary `json:"by_method"`
}

type MethodSummary struct {
	Method     string `json:"method"`
	TotalCents int64  `json:"total_cents"`
	Count      int64  `json:"count"`
}

// ValidMethod reports whether m is an accepted payment method.
func ValidMethod(m string) bool {
	switch m {
	case MethodCash, MethodCard, MethodTransfer:
		return true
	}
	return false
}
