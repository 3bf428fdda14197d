package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/myadmit/admit-backend/internal/model"
)

type ProfileQuestionRepository interface {
	GetAll(ctx context.Context) ([]*model.ProfileQuestion, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.ProfileQuestion, error)
	GetByKind(ctx context.Context, kind string) ([]*model.ProfileQuestion, error)
	CreateQuestion(ctx context.Context, q *model.ProfileQuestion) error
	ListSections(ctx context.Context) ([]*model.ProfileSection, error)
	CreateSection(ctx context.Context, s *model.ProfileSection) error
}

type profileQuestionRepository struct {
	db *pgxpool.Pool
}

func NewProfileQuestionRepository(db *pgxpool.Pool) ProfileQuestionRepository {
	return &profileQuestionRepository{db: db}
}

func (r *profileQuestionRepository) query(ctx context.Context, query string, args ...interface{}) ([]*model.ProfileQuestion, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := []*model.ProfileQuestion{}
	for rows.Next() {
		q := &model.ProfileQuestion{}
		if err := rows.Scan(&q.ID, &q.Question, &q.SectionID, &q.Kind); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (r *profileQuestionRepository) GetAll(ctx context.Context) ([]*model.ProfileQuestion, error) {
	return r.query(ctx, `SELECT id, question, section_id, kind FROM profile_questions ORDER BY question ASC`)
}

func (r *profileQuestionRepository) GetByKind(ctx context.Context, kind string) ([]*model.ProfileQuestion, error) {
	return r.query(ctx, `SELECT id, question, section_id, kind FROM profile_questions WHERE kind = $1 ORDER BY question ASC`, kind)
}

func (r *profileQuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ProfileQuestion, error) {
	q := &model.ProfileQuestion{}
	err := r.db.QueryRow(ctx, `SELECT id, question, section_id, kind FROM profile_questions WHERE id = $1`, id).
		Scan(&q.ID, &q.Question, &q.SectionID, &q.Kind)
	if err != nil {
		return nil, translate(err)
	}
	return q, nil
}

func (r *profileQuestionRepository) CreateQuestion(ctx context.Context, q *model.ProfileQuestion) error {
	query := `
		INSERT INTO profile_questions (question, section_id, kind)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	return translate(r.db.QueryRow(ctx, query, q.Question, q.SectionID, q.Kind).Scan(&q.ID))
}

func (r *profileQuestionRepository) ListSections(ctx context.Context) ([]*model.ProfileSection, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, description, page_number, created_at FROM profile_sections ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sections := []*model.ProfileSection{}
	for rows.Next() {
		s := &model.ProfileSection{}
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.PageNumber, &s.CreatedAt); err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	return sections, rows.Err()
}

func (r *profileQuestionRepository) CreateSection(ctx context.Context, s *model.ProfileSection) error {
	query := `
		INSERT INTO profile_sections (name, description, page_number)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	return translate(r.db.QueryRow(ctx, query, s.Name, s.Description, s.PageNumber).Scan(&s.ID, &s.CreatedAt))
}
