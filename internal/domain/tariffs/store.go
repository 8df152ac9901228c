package tariffs

import (
	"context"
	"errors"

	"shiksha/internal/database"
	"shiksha/internal/domain/profiles"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store interface {
	Create(ctx context.Context, actor *profiles.Profile, tariff *Tariff) error
	GetByID(ctx context.Context, tariffID int64) (*Tariff, error)
	List(ctx context.Context) ([]Tariff, error)
	Update(ctx context.Context, actor *profiles.Profile, tariff *Tariff) error
	Delete(ctx context.Context, actor *profiles.Profile, tariffID int64) error
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Store {
	return &Repository{db: db}
}

// Writes run under the actor's identity because the tariff write policy in
// the database only admits the superadmin. Reads are open to all staff and
// need no actor.

func (r *Repository) Create(ctx context.Context, actor *profiles.Profile, tariff *Tariff) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	err := database.WithActor(r.db, ctx, actor.AccountID, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, `
			INSERT INTO tariffs (name, price_cents, lessons_count)
			VALUES ($1, $2, $3)
			RETURNING id, created_at, updated_at
		`, tariff.Name, tariff.PriceCents, tariff.LessonsCount,
		).Scan(&tariff.ID, &tariff.CreatedAt, &tariff.UpdatedAt)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateName
		}
		return err
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, tariffID int64) (*Tariff, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	t := &Tariff{}
	err := r.db.QueryRow(ctx, `
		SELECT id, name, price_cents, lessons_count, created_at, updated_at
		FROM tariffs WHERE id = $1
	`, tariffID).Scan(&t.ID, &t.Name, &t.PriceCents, &t.LessonsCount, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *Repository) List(ctx context.Context) ([]Tariff, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, name, price_cents, lessons_count, created_at, updated_at
		FROM tariffs ORDER BY price_cents ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Tariff
	for rows.Next() {
		var t Tariff
		if err := rows.Scan(&t.ID, &t.Name, &t.PriceCents, &t.LessonsCount, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repository) Update(ctx context.Context, actor *profiles.Profile, tariff *Tariff) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	err := database.WithActor(r.db, ctx, actor.AccountID, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, `
			UPDATE tariffs SET name = $1, price_cents = $2, lessons_count = $3, updated_at = NOW()
			WHERE id = $4
		`, tariff.Name, tariff.PriceCents, tariff.LessonsCount, tariff.ID)
		if err != nil {
			return err
		}
		if result.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil && isUniqueViolation(err) {
		return ErrDuplicateName
	}
	return err
}

func (r *Repository) Delete(ctx context.Context, actor *profiles.Profile, tariffID int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return database.WithActor(r.db, ctx, actor.AccountID, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, `DELETE FROM tariffs WHERE id = $1`, tariffID)
		if err != nil {
			return err
		}
		if result.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
