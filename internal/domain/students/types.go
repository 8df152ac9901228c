package students

import (
	"database/sql"
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("resource not found")
	QueryTimeoutDuration = time.Second * 5
)

// Student is an owned resource: every student belongs to exactly one
// manager profile, and all access to the student and its payments is gated
// on that ownership (or the admin override).
type Student struct {
	ID        int64          `json:"id"`
	FullName  string         `json:"full_name"`
	Phone     sql.NullString `json:"phone" swaggertype:"string"`
	TariffID  sql.NullInt64  `json:"tariff_id" swaggertype:"integer"`
	ManagerID int64          `json:"manager_id"`
	Notes     sql.NullString `json:"notes" swaggertype:"string"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// ListFilters narrows the student listing.
type ListFilters struct {
	Search    string
	ManagerID *int64
	TariffID  *int64
}
