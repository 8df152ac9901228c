package profiles

import (
	"database/sql"
	"errors"
	"time"

	"shiksha/internal/rbac"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrDuplicateEmail    = errors.New("a user with that email already exists")
	QueryTimeoutDuration = time.Second * 5
)

// Account is the identity-provider side of an actor: credentials only.
// Deleting an account cascades to its profile, so the two can never orphan
// each other.
type Account struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Password     password  `json:"-"`
	RefreshToken string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Profile is the authorization-relevant record attached to an account.
// Every authorization check in the system reads from here.
type Profile struct {
	ID         int64          `json:"id"`
	AccountID  int64          `json:"account_id"`
	Email      string         `json:"email"`
	FullName   string         `json:"full_name"`
	Role       rbac.Role      `json:"role"`
	IsApproved bool           `json:"is_approved"`
	SalesID    sql.NullString `json:"sales_id" swaggertype:"string"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// Password struct to store plain text and hash
type password struct {
	text *string `json:"-"`
	hash []byte  `json:"-"`
}

func (p *password) Set(text string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(text), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	p.text = &text
	p.hash = hash

	return nil
}

func (p *password) Compare(text string) error {
	return bcrypt.CompareHashAndPassword(p.hash, []byte(text))
}

// ListFilters narrows the admin user listing.
type ListFilters struct {
	Role        *rbac.Role
	PendingOnly bool
}
