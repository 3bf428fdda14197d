package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/myadmit/admit-backend/internal/model"
)

type ProgramRepository interface {
	GetAll(ctx context.Context) ([]*model.Program, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Program, error)
	GetByUniversity(ctx context.Context, universityID uuid.UUID) ([]*model.Program, error)
	Create(ctx context.Context, p *model.Program) error
	Update(ctx context.Context, p *model.Program) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type programRepository struct {
	db *pgxpool.Pool
}

func NewProgramRepository(db *pgxpool.Pool) ProgramRepository {
	return &programRepository{db: db}
}

// programSelect joins the owning university so callers always get it populated.
const programSelect = `
	SELECT p.id, p.university_id, p.program_type, p.program_name, p.information, p.logo,
	       p.session_id, p.application_questions, p.deadlines, p.created_at, p.updated_at,
	       u.id, u.name, u.information, u.logo, u.created_at, u.updated_at
	FROM programs p
	JOIN universities u ON u.id = p.university_id
`

func scanProgram(row pgx.Row) (*model.Program, error) {
	p := &model.Program{University: &model.University{}}
	u := p.University
	err := row.Scan(
		&p.ID, &p.UniversityID, &p.ProgramType, &p.ProgramName, &p.Information, &p.Logo,
		&p.SessionID, &p.ApplicationQuestions, &p.Deadlines, &p.CreatedAt, &p.UpdatedAt,
		&u.ID, &u.Name, &u.Information, &u.Logo, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, translate(err)
	}
	if p.ApplicationQuestions == nil {
		p.ApplicationQuestions = []model.Question{}
	}
	if p.Deadlines == nil {
		p.Deadlines = []model.ProgramDeadline{}
	}
	return p, nil
}

func (r *programRepository) list(ctx context.Context, query string, args ...interface{}) ([]*model.Program, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	programs := []*model.Program{}
	for rows.Next() {
		p, err := scanProgram(rows)
		if err != nil {
			return nil, err
		}
		programs = append(programs, p)
	}
	return programs, rows.Err()
}

func (r *programRepository) GetAll(ctx context.Context) ([]*model.Program, error) {
	return r.list(ctx, programSelect+` ORDER BY u.name ASC, p.program_name ASC`)
}

func (r *programRepository) GetByUniversity(ctx context.Context, universityID uuid.UUID) ([]*model.Program, error) {
	return r.list(ctx, programSelect+` WHERE p.university_id = $1 ORDER BY p.program_name ASC`, universityID)
}

func (r *programRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Program, error) {
	return scanProgram(r.db.QueryRow(ctx, programSelect+` WHERE p.id = $1`, id))
}

func (r *programRepository) Create(ctx context.Context, p *model.Program) error {
	query := `
		INSERT INTO programs (university_id, program_type, program_name, information, logo,
		                      session_id, application_questions, deadlines)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		p.UniversityID, p.ProgramType, p.ProgramName, p.Information, p.Logo,
		p.SessionID, p.ApplicationQuestions, p.Deadlines,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return translate(err)
}

func (r *programRepository) Update(ctx context.Context, p *model.Program) error {
	query := `
		UPDATE programs
		SET university_id = $2, program_type = $3, program_name = $4, information = $5, logo = $6,
		    session_id = $7, application_questions = $8, deadlines = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		p.ID, p.UniversityID, p.ProgramType, p.ProgramName, p.Information, p.Logo,
		p.SessionID, p.ApplicationQuestions, p.Deadlines,
	).Scan(&p.UpdatedAt)
	return translate(err)
}

func (r *programRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM programs WHERE id = $1`, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
