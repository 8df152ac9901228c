package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shiksha/internal/database"
	"shiksha/internal/domain/profiles"
	"shiksha/internal/rbac"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store interface {
	Create(ctx context.Context, actor *profiles.Profile, payment *Payment) error
	GetByID(ctx context.Context, actor *profiles.Profile, paymentID int64) (*Payment, error)
	ListByStudent(ctx context.Context, actor *profiles.Profile, studentID int64, limit, offset int) ([]Payment, int, error)
	SetReceiptURL(ctx context.Context, actor *profiles.Profile, paymentID int64, url string) error
	Delete(ctx context.Context, actor *profiles.Profile, paymentID int64) error
	Summarize(ctx context.Context, actor *profiles.Profile, from, to time.Time) (*Summary, error)
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Store {
	return &Repository{db: db}
}

const paymentColumns = `
	p.id, p.student_id, p.amount_cents, p.method, p.receipt_number, p.receipt_url, p.paid_at, p.created_at
`

func scanPayment(row pgx.Row) (*Payment, error) {
	p := &Payment{}
	err := row.Scan(
		&p.ID,
		&p.StudentID,
		&p.AmountCents,
		&p.Method,
		&p.ReceiptNumber,
		&p.ReceiptURL,
		&p.PaidAt,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// ownershipJoin restricts payment queries to the actor's students, joining
// through the parent row instead of duplicating the manager rule here. The
// database row policy applies the identical predicate on its own.
func ownershipJoin(actor *profiles.Profile, arg int) (string, []any) {
	if rbac.IsAdmin(actor.Role) {
		return "", nil
	}
	return fmt.Sprintf(
		"EXISTS (SELECT 1 FROM students s WHERE s.id = p.student_id AND s.manager_id = $%d)", arg,
	), []any{actor.ID}
}

func (r *Repository) Create(ctx context.Context, actor *profiles.Profile, payment *Payment) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return database.WithActor(r.db, ctx, actor.AccountID, func(tx pgx.Tx) error {
		// The insert runs under the student's ownership rule: inserting a
		// payment for somebody else's student violates the row policy and
		// fails, but check here too so the caller gets a clean not-found.
		var ok bool
		guard := `SELECT TRUE FROM students WHERE id = $1`
		args := []any{payment.StudentID}
		if !rbac.IsAdmin(actor.Role) {
			guard += ` AND manager_id = $2`
			args = append(args, actor.ID)
		}
		if err := tx.QueryRow(ctx, guard, args...).Scan(&ok); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}

		return tx.QueryRow(ctx, `
			INSERT INTO student_payments (student_id, amount_cents, method, receipt_number, paid_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at
		`, payment.StudentID, payment.AmountCents, payment.Method, payment.ReceiptNumber, payment.PaidAt,
		).Scan(&payment.ID, &payment.CreatedAt)
	})
}

func (r *Repository) GetByID(ctx context.Context, actor *profiles.Profile, paymentID int64) (*Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `SELECT ` + paymentColumns + ` FROM student_payments p WHERE p.id = $1`
	args := []any{paymentID}
	if cond, extra := ownershipJoin(actor, 2); cond != "" {
		query += " AND " + cond
		args = append(args, extra...)
	}

	var payment *Payment
	err := database.WithActor(r.db, ctx, actor.AccountID, func(tx pgx.Tx) error {
		var err error
		payment, err = scanPayment(tx.QueryRow(ctx, query, args...))
		return err
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (r *Repository) ListByStudent(ctx context.Context, actor *profiles.Profile, studentID int64, limit, offset int) ([]Payment, int, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	cond := "p.student_id = $1"
	args := []any{studentID}
	arg := 2
	if oc, extra := ownershipJoin(actor, arg); oc != "" {
		cond += " AND " + oc
		args = append(args, extra...)
		arg++
	}

	var (
		out   []Payment
		total int
	)
	err := database.WithActor(r.db, ctx, actor.AccountID, func(tx pgx.Tx) error {
		countQuery := "SELECT COUNT(*) FROM student_payments p WHERE " + cond
		if err := tx.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
			return err
		}

		query := fmt.Sprintf(
			"SELECT %s FROM student_payments p WHERE %s ORDER BY p.paid_at DESC LIMIT $%d OFFSET $%d",
			paymentColumns, cond, arg, arg+1,
		)
		rows, err := tx.Query(ctx, query, append(args, limit, offset)...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			p, err := scanPayment(rows)
			if err != nil {
				return err
			}
			out = append(out, *p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *Repository) SetReceiptURL(ctx context.Context, actor *profiles.Profile, paymentID int64, url string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `UPDATE student_payments p SET receipt_url = $1 WHERE p.id = $2`
	args := []any{url, paymentID}
	if cond, extra := ownershipJoin(actor, 3); cond != "" {
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

func (r *Repository) Summarize(ctx context.Context, actor *profiles.Profile, from, to time.Time) (*Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	cond := "p.paid_at >= $1 AND p.paid_at < $2"
	args := []any{from, to}
	if oc, extra := ownershipJoin(actor, 3); oc != "" {
		cond += " AND " + oc
		args = append(args, extra...)
	}

	summary := &Summary{From: from, To: to}
	err := database.WithActor(r.db, ctx, actor.AccountID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT p.method, COALESCE(SUM(p.amount_cents), 0), COUNT(*)
			FROM student_payments p
			WHERE `+cond+`
			GROUP BY p.method
			ORDER BY p.method
		`, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var ms MethodSummary
			if err := rows.Scan(&ms.Method, &ms.TotalCents, &ms.Count); err != nil {
				return err
			}
			summary.ByMethod = append(summary.ByMethod, ms)
			summary.TotalCents += ms.TotalCents
			summary.Count += ms.Count
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func (r *Repository) Delete(ctx context.Context, actor *profiles.Profile, paymentID int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `DELETE FROM student_payments p WHERE p.id = $1`
	args := []any{paymentID}
	if cond, extra := ownershipJoin(actor, 2); cond != "" {
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
