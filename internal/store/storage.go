package store

import (
	"shiksha/internal/domain/payments"
	"shiksha/internal/domain/profiles"
	"shiksha/internal/domain/students"
	"shiksha/internal/domain/tariffs"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Storage bundles every domain repository behind one handle.
type Storage struct {
	Profiles profiles.Store
	Students students.Store
	Tariffs  tariffs.Store
	Payments payments.Store
}

func NewStorage(db *pgxpool.Pool) Storage {
	return Storage{
		Profiles: profiles.NewRepository(db),
		Students: students.NewRepository(db),
		Tariffs:  tariffs.NewRepository(db),
		Payments: payments.NewRepository(db),
	}
}
