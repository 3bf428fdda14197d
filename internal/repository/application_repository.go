package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/myadmit/admit-backend/internal/model"
)

type ApplicationRepository interface {
	Create(ctx context.Context, app *model.Application) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Application, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Application, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
	ExistsForProgram(ctx context.Context, userID, programID uuid.UUID) (bool, error)
	// Save persists questions, notes and deadline. Answers and the generating
	// flag have their own atomic writers.
	Save(ctx context.Context, app *model.Application) error
	PutAnswer(ctx context.Context, id uuid.UUID, questionID string, answer model.Answer) error
	// SetAIAnswer replaces only the AI answer of a question and keeps the final answer and status.
	SetAIAnswer(ctx context.Context, id uuid.UUID, questionID, aiAnswer string) error
	// SetAIAnswers applies SetAIAnswer to every question in one statement.
	SetAIAnswers(ctx context.Context, id uuid.UUID, aiAnswers map[string]string) error
	SetGenerating(ctx context.Context, id uuid.UUID, generating bool) error
	// ApplyActiveWindow marks the first limit applications (by creation) active and the rest inactive.
	ApplyActiveWindow(ctx context.Context, userID uuid.UUID, limit int) error
	ListUpcomingDeadlines(ctx context.Context, userID uuid.UUID, from, until time.Time) ([]*model.UpcomingDeadline, error)
}

type applicationRepository struct {
	db *pgxpool.Pool
}

func NewApplicationRepository(db *pgxpool.Pool) ApplicationRepository {
	return &applicationRepository{db: db}
}

const applicationSelect = `
	SELECT a.id, a.user_id, a.program_id, a.questions, a.answers, a.notes, a.deadline,
	       a.is_generating, a.is_active, a.created_at, a.last_modified,
	       p.id, p.university_id, p.program_type, p.program_name, p.information, p.logo,
	       p.session_id, p.application_questions, p.deadlines, p.created_at, p.updated_at,
	       u.id, u.name, u.information, u.logo, u.created_at, u.updated_at
	FROM user_applications a
	JOIN programs p ON p.id = a.program_id
	JOIN universities u ON u.id = p.university_id
`

func scanApplication(row pgx.Row) (*model.Application, error) {
	a := &model.Application{Program: &model.Program{University: &model.University{}}}
	p := a.Program
	u := p.University
	err := row.Scan(
		&a.ID, &a.UserID, &a.ProgramID, &a.Questions, &a.Answers, &a.Notes, &a.Deadline,
		&a.IsGenerating, &a.IsActive, &a.CreatedAt, &a.LastModified,
		&p.ID, &p.UniversityID, &p.ProgramType, &p.ProgramName, &p.Information, &p.Logo,
		&p.SessionID, &p.ApplicationQuestions, &p.Deadlines, &p.CreatedAt, &p.UpdatedAt,
		&u.ID, &u.Name, &u.Information, &u.Logo, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, translate(err)
	}
	if a.Questions == nil {
		a.Questions = []model.EssayQuestion{}
	}
	if a.Answers == nil {
		a.Answers = map[string]model.Answer{}
	}
	if a.Notes == nil {
		a.Notes = []model.Note{}
	}
	return a, nil
}

func (r *applicationRepository) Create(ctx context.Context, app *model.Application) error {
	if app.Answers == nil {
		app.Answers = map[string]model.Answer{}
	}
	if app.Notes == nil {
		app.Notes = []model.Note{}
	}
	query := `
		INSERT INTO user_applications (user_id, program_id, questions, answers, notes, deadline, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, last_modified
	`
	err := r.db.QueryRow(ctx, query,
		app.UserID, app.ProgramID, app.Questions, app.Answers, app.Notes, app.Deadline, app.IsActive,
	).Scan(&app.ID, &app.CreatedAt, &app.LastModified)
	return translate(err)
}

func (r *applicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Application, error) {
	return scanApplication(r.db.QueryRow(ctx, applicationSelect+` WHERE a.id = $1`, id))
}

func (r *applicationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Application, error) {
	rows, err := r.db.Query(ctx, applicationSelect+` WHERE a.user_id = $1 ORDER BY a.created_at ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apps := []*model.Application{}
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

func (r *applicationRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM user_applications WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

func (r *applicationRepository) ExistsForProgram(ctx context.Context, userID, programID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM user_applications WHERE user_id = $1 AND program_id = $2)`,
		userID, programID,
	).Scan(&exists)
	return exists, err
}

func (r *applicationRepository) Save(ctx context.Context, app *model.Application) error {
	query := `
		UPDATE user_applications
		SET questions = $2, notes = $3, deadline = $4, last_modified = NOW()
		WHERE id = $1
		RETURNING last_modified
	`
	return translate(r.db.QueryRow(ctx, query, app.ID, app.Questions, app.Notes, app.Deadline).Scan(&app.LastModified))
}

func (r *applicationRepository) PutAnswer(ctx context.Context, id uuid.UUID, questionID string, answer model.Answer) error {
	query := `
		UPDATE user_applications
		SET answers = jsonb_set(answers, ARRAY[$2::text], $3::jsonb, true), last_modified = NOW()
		WHERE id = $1
	`
	return r.execOne(ctx, query, id, questionID, answer)
}

func (r *applicationRepository) SetAIAnswer(ctx context.Context, id uuid.UUID, questionID, aiAnswer string) error {
	query := `
		UPDATE user_applications
		SET answers = jsonb_set(
		        answers,
		        ARRAY[$2::text],
		        COALESCE(answers -> $2::text, '{"final_answer": "", "status": "not_started"}'::jsonb)
		            || jsonb_build_object('ai_answer', $3::text, 'last_modified', NOW()),
		        true),
		    last_modified = NOW()
		WHERE id = $1
	`
	return r.execOne(ctx, query, id, questionID, aiAnswer)
}

func (r *applicationRepository) SetAIAnswers(ctx context.Context, id uuid.UUID, aiAnswers map[string]string) error {
	if len(aiAnswers) == 0 {
		return nil
	}
	query := `
		UPDATE user_applications
		SET answers = answers || (
		        SELECT jsonb_object_agg(
		            n.key,
		            COALESCE(answers -> n.key, '{"final_answer": "", "status": "not_started"}'::jsonb)
		                || jsonb_build_object('ai_answer', n.value, 'last_modified', NOW()))
		        FROM jsonb_each_text($2::jsonb) AS n),
		    last_modified = NOW()
		WHERE id = $1
	`
	return r.execOne(ctx, query, id, aiAnswers)
}

func (r *applicationRepository) SetGenerating(ctx context.Context, id uuid.UUID, generating bool) error {
	return r.execOne(ctx, `UPDATE user_applications SET is_generating = $2 WHERE id = $1`, id, generating)
}

func (r *applicationRepository) ApplyActiveWindow(ctx context.Context, userID uuid.UUID, limit int) error {
	query := `
		UPDATE user_applications ua
		SET is_active = ranked.rn <= $2
		FROM (
			SELECT id, ROW_NUMBER() OVER (ORDER BY created_at ASC, id ASC) AS rn
			FROM user_applications
			WHERE user_id = $1
		) ranked
		WHERE ua.id = ranked.id AND ua.is_active IS DISTINCT FROM (ranked.rn <= $2)
	`
	_, err := r.db.Exec(ctx, query, userID, limit)
	return err
}

func (r *applicationRepository) ListUpcomingDeadlines(ctx context.Context, userID uuid.UUID, from, until time.Time) ([]*model.UpcomingDeadline, error) {
	query := `
		SELECT a.id, p.program_name, u.name, a.deadline
		FROM user_applications a
		JOIN programs p ON p.id = a.program_id
		JOIN universities u ON u.id = p.university_id
		WHERE a.user_id = $1
		  AND a.deadline IS NOT NULL
		  AND (a.deadline ->> 'date')::timestamptz BETWEEN $2 AND $3
		ORDER BY (a.deadline ->> 'date')::timestamptz ASC
	`
	rows, err := r.db.Query(ctx, query, userID, from, until)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.UpcomingDeadline{}
	for rows.Next() {
		d := &model.UpcomingDeadline{}
		if err := rows.Scan(&d.ApplicationID, &d.ProgramName, &d.UniversityName, &d.Deadline); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *applicationRepository) execOne(ctx context.Context, query string, args ...interface{}) error {
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
