package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shiksha/internal/database"
	"shiksha/internal/rbac"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store interface {
	Register(ctx context.Context, account *Account, profile *Profile) error
	GetByAccountID(ctx context.Context, accountID int64) (*Profile, error)
	GetByID(ctx context.Context, profileID int64) (*Profile, error)
	GetAccountByEmail(ctx context.Context, email string) (*Account, error)
	List(ctx context.Context, filters ListFilters, limit, offset int) ([]Profile, int, error)
	SetApproval(ctx context.Context, profileID int64, approved bool) (*Profile, error)
	SetRole(ctx context.Context, profileID int64, role rbac.Role) error
	SetSalesID(ctx context.Context, profileID int64, salesID *string) error
	Delete(ctx context.Context, profileID int64) error
	SaveRefreshToken(ctx context.Context, accountID int64, refreshToken string) error
	GetRefreshToken(ctx context.Context, accountID int64) (string, error)
	DeleteRefreshToken(ctx context.Context, accountID int64) error
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Store {
	return &Repository{db: db}
}

// Register inserts the account and its profile in one transaction. New
// profiles always start unapproved; an admin flips the gate later.
func (r *Repository) Register(ctx context.Context, account *Account, profile *Profile) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return database.WithTx(r.db, ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO accounts (email, password)
			VALUES ($1, $2)
			RETURNING id, created_at
		`, account.Email, account.Password.hash).Scan(&account.ID, &account.CreatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateEmail
			}
			return err
		}

		profile.AccountID = account.ID
		profile.Email = account.Email
		profile.IsApproved = false

		return tx.QueryRow(ctx, `
			INSERT INTO profiles (account_id, email, full_name, role, is_approved, sales_id)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at, updated_at
		`, profile.AccountID, profile.Email, profile.FullName, profile.Role,
			profile.IsApproved, profile.SalesID,
		).Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt)
	})
}

const profileColumns = `
	id, account_id, email, full_name, role, is_approved, sales_id, created_at, updated_at
`

func scanProfile(row pgx.Row) (*Profile, error) {
	p := &Profile{}
	err := row.Scan(
		&p.ID,
		&p.AccountID,
		&p.Email,
		&p.FullName,
		&p.Role,
		&p.IsApproved,
		&p.SalesID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *Repository) GetByAccountID(ctx context.Context, accountID int64) (*Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `SELECT ` + profileColumns + ` FROM profiles WHERE account_id = $1`
	return scanProfile(r.db.QueryRow(ctx, query, accountID))
}

func (r *Repository) GetByID(ctx context.Context, profileID int64) (*Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	return scanProfile(r.db.QueryRow(ctx, query, profileID))
}

func (r *Repository) GetAccountByEmail(ctx context.Context, email string) (*Account, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	a := &Account{}
	err := r.db.QueryRow(ctx, `
		SELECT id, email, password, created_at FROM accounts WHERE email = $1
	`, email).Scan(&a.ID, &a.Email, &a.Password.hash, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *Repository) List(ctx context.Context, filters ListFilters, limit, offset int) ([]Profile, int, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	where := []string{}
	args := []any{}
	arg := 1

	if filters.Role != nil {
		where = append(where, fmt.Sprintf("role = $%d", arg))
		args = append(args, *filters.Role)
		arg++
	}
	if filters.PendingOnly {
		where = append(where, "is_approved = FALSE")
	}

	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM profiles"+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(
		"SELECT %s FROM profiles %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		profileColumns, cond, arg, arg+1,
	)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *p)
	}
	return out, total, rows.Err()
}

func (r *Repository) SetApproval(ctx context.Context, profileID int64, approved bool) (*Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		UPDATE profiles SET is_approved = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + profileColumns
	return scanProfile(r.db.QueryRow(ctx, query, approved, profileID))
}

func (r *Repository) SetRole(ctx context.Context, profileID int64, role rbac.Role) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	result, err := r.db.Exec(ctx, `
		UPDATE profiles SET role = $1, updated_at = NOW() WHERE id = $2
	`, role, profileID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) SetSalesID(ctx context.Context, profileID int64, salesID *string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	result, err := r.db.Exec(ctx, `
		UPDATE profiles SET sales_id = $1, updated_at = NOW() WHERE id = $2
	`, salesID, profileID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the profile together with its account in one transaction.
// The FK from profiles to accounts is ON DELETE CASCADE, so deleting the
// account row is enough once the profile row has been located.
func (r *Repository) Delete(ctx context.Context, profileID int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return database.WithTx(r.db, ctx, func(tx pgx.Tx) error {
		var accountID int64
		err := tx.QueryRow(ctx, `SELECT account_id FROM profiles WHERE id = $1`, profileID).Scan(&accountID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}

		_, err = tx.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, accountID)
		return err
	})
}

func (r *Repository) SaveRefreshToken(ctx context.Context, accountID int64, refreshToken string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE accounts SET refresh_token = $1 WHERE id = $2
	`, refreshToken, accountID)
	return err
}

func (r *Repository) GetRefreshToken(ctx context.Context, accountID int64) (string, error) {
	var token string
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(refresh_token, '') FROM accounts WHERE id = $1
	`, accountID).Scan(&token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return token, nil
}

func (r *Repository) DeleteRefreshToken(ctx context.Context, accountID int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE accounts SET refresh_token = NULL WHERE id = $1
	`, accountID)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
