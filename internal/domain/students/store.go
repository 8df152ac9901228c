package students

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shiksha/internal/database"
	"shiksha/internal/domain/profiles"
	"shiksha/internal/rbac"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store interface {
	Create(ctx context.Context, actor *profiles.Profile, student *Student) error
	GetByID(ctx context.Context, actor *profiles.Profile, studentID int64) (*Student, error)
	List(ctx context.Context, actor *profiles.Profile, filters ListFilters, limit, offset int) ([]Student, int, error)
	Update(ctx context.Context, actor *profiles.Profile, studentID int64, updates map[string]interface{}) error
	Delete(ctx context.Context, actor *profiles.Profile, studentID int64) error
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Store {
	return &Repository{db: db}
}

const studentColumns = `
	id, full_name, phone, tariff_id, manager_id, notes, created_at, updated_at
`

func scanStudent(row pgx.Row) (*Student, error) {
	s := &Student{}
	err := row.Scan(
		&s.ID,
		&s.FullName,
		&s.Phone,
		&s.TariffID,
		&s.ManagerID,
		&s.Notes,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

// ownershipCond returns the advisory manager filter for the actor. The row
// policies in the database enforce the same rule on their own; this filter
// is the query-layer half of the duplication, kept deliberately.
func ownershipCond(actor *profiles.Profile, arg int) (string, []any) {
	if rbac.IsAdmin(actor.Role) {
		return "", nil
	}
	return fmt.Sprintf("manager_id = $%d", arg), []any{actor.ID}
}

func (r *Repository) Create(ctx context.Context, actor *profiles.Profile, student *Student) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	// Non-admin managers only ever create students they own.
	if !rbac.IsAdmin(actor.Role) {
		student.ManagerID = actor.ID
	}

	return database.WithActor(r.db, ctx, actor.AccountID, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, `
			INSERT INTO students (full_name, phone, tariff_id, manager_id, notes)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at, updated_at
		`, student.FullName, student.Phone, student.TariffID, student.ManagerID, student.Notes,
		).Scan(&student.ID, &student.CreatedAt, &student.UpdatedAt)
	})
}

func (r *Repository) GetByID(ctx context.Context, actor *profiles.Profile, studentID int64) (*Student, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1`
	args := []any{studentID}
	if cond, extra := ownershipCond(actor, 2); cond != "" {
		query += " AND " + cond
		args = append(args, extra...)
	}

	var student *Student
	err := database.WithActor(r.db, ctx, actor.AccountID, func(tx pgx.Tx) error {
		var err error
		student, err = scanStudent(tx.QueryRow(ctx, query, args...))
		return err
	})
	if err != nil {
		return nil, err
	}
	return student, nil
}

func (r *Repository) List(ctx context.Context, actor *profiles.Profile, filters ListFilters, limit, offset int) ([]Student, int, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	where := []string{}
	args := []any{}
	arg := 1

	if cond, extra := ownershipCond(actor, arg); cond != "" {
		where = append(where, cond)
		args = append(args, extra...)
		arg++
	}
	if filters.Search != "" {
		where = append(where, fmt.Sprintf("full_name ILIKE $%d", arg))
		args = append(args, "%"+filters.Search+"%")
		arg++
	}
	if filters.ManagerID != nil {
		where = append(where, fmt.Sprintf("manager_id = $%d", arg))
		args = append(args, *filters.ManagerID)
		arg++
	}
	if filters.TariffID != nil {
		where = append(where, fmt.Sprintf("tariff_id = $%d", arg))
		args = append(args, *filters.TariffID)
		arg++
	}

	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var (
		out   []Student
		total int
	)
	err := database.WithActor(r.db, ctx, actor.AccountID, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, "SELECT COUNT(*) FROM students"+cond, args...).Scan(&total); err != nil {
			return err
		}

		query := fmt.Sprintf(
			"SELECT %s FROM students %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
			studentColumns, cond, arg, arg+1,
		)
		rows, err := tx.Query(ctx, query, append(args, limit, offset)...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			s, err := scanStudent(rows)
			if err != nil {
				return err
			}
			out = append(out, *s)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *Repository) Update(ctx context.Context, actor *profiles.Profile, studentID int64, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return fmt.Errorf("no fields to update")
	}

	setClauses := []string{}
	args := []any{}
	arg := 1

	for field, value := range updates {
		if !isValidField(field) {
			return fmt.Errorf("invalid field name: %s", field)
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", field, arg))
		args = append(args, value)
		arg++
	}

	query := fmt.Sprintf("UPDATE students SET %s, updated_at = NOW() WHERE id = $%d",
		strings.Join(setClauses, ", "), arg)
	args = append(args, studentID)
	arg++

	if cond, extra := ownershipCond(actor, arg); cond != "" {
		query += " AND " + cond
		args = append(args, extra...)
	}

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return database.WithActor(r.db, ctx, actor.AccountID, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return err
		}
		if result.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *Repository) Delete(ctx context.Context, actor *profiles.Profile, studentID int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `DELETE FROM students WHERE id = $1`
	args := []any{studentID}
	if cond, extra := ownershipCond(actor, 2); cond != "" {
		query += " AND " + cond
		args = append(args, extra...)
	}

	return database.WithActor(r.db, ctx, actor.AccountID, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return err
		}
		if result.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// isValidField guards the dynamic update builder against arbitrary columns.
func isValidField(field string) bool {
	validFields := map[string]bool{
		"full_name": true,
		"phone":     true,
		"tariff_id": true,
		"notes":     true,
	}
	return validFields[field]
}
