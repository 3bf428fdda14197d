package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/myadmit/admit-backend/internal/model"
)

type UniversityRepository interface {
	GetAll(ctx context.Context) ([]*model.University, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.University, error)
	GetByName(ctx context.Context, name string) (*model.University, error)
	Create(ctx context.Context, u *model.University) error
	Update(ctx context.Context, u *model.University) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type universityRepository struct {
	db *pgxpool.Pool
}

func NewUniversityRepository(db *pgxpool.Pool) UniversityRepository {
	return &universityRepository{db: db}
}

const universityColumns = `id, name, information, logo, created_at, updated_at`

func scanUniversity(row pgx.Row) (*model.University, error) {
	u := &model.University{}
	if err := row.Scan(&u.ID, &u.Name, &u.Information, &u.Logo, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, translate(err)
	}
	return u, nil
}

func (r *universityRepository) GetAll(ctx context.Context) ([]*model.University, error) {
	rows, err := r.db.Query(ctx, `SELECT `+universityColumns+` FROM universities ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	universities := []*model.University{}
	for rows.Next() {
		u, err := scanUniversity(rows)
		if err != nil {
			return nil, err
		}
		universities = append(universities, u)
	}
	return universities, rows.Err()
}

func (r *universityRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.University, error) {
	return scanUniversity(r.db.QueryRow(ctx, `SELECT `+universityColumns+` FROM universities WHERE id = $1`, id))
}

func (r *universityRepository) GetByName(ctx context.Context, name string) (*model.University, error) {
	return scanUniversity(r.db.QueryRow(ctx, `SELECT `+universityColumns+` FROM universities WHERE name = $1`, name))
}

func (r *universityRepository) Create(ctx context.Context, u *model.University) error {
	query := `
		INSERT INTO universities (name, information, logo)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	return translate(r.db.QueryRow(ctx, query, u.Name, u.Information, u.Logo).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt))
}

func (r *universityRepository) Update(ctx context.Context, u *model.University) error {
	query := `
		UPDATE universities
		SET name = $1, information = $2, logo = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at
	`
	return translate(r.db.QueryRow(ctx, query, u.Name, u.Information, u.Logo, u.ID).Scan(&u.UpdatedAt))
}

func (r *universityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM universities WHERE id = $1`, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
