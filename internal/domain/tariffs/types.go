package tariffs

import (
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrDuplicateName     = errors.New("a tariff with that name already exists")
	QueryTimeoutDuration = time.Second * 5
)

// Tariff is a pricing plan students subscribe to. Reads are open to every
// approved actor; writes belong to the admin.
type Tariff struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	PriceCents   int64     `json:"price_cents"`
	LessonsCount int       `json:"lessons_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
