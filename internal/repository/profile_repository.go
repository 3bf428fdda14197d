package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/myadmit/admit-backend/internal/model"
)

type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Profile, error)
	Create(ctx context.Context, profile *model.Profile) error
	// Save overwrites every mutable column of the profile.
	Save(ctx context.Context, profile *model.Profile) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

type profileRepository struct {
	db *pgxpool.Pool
}

func NewProfileRepository(db *pgxpool.Pool) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	query := `
		SELECT user_id, email, questionnaire, personal_info, files, work_experience,
		       education, completion_score, resume_text, created_at, updated_at
		FROM user_profiles
		WHERE user_id = $1
	`
	p := &model.Profile{}
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&p.UserID, &p.Email, &p.Questionnaire, &p.PersonalInfo, &p.Files, &p.WorkExperience,
		&p.Education, &p.CompletionScore, &p.ResumeText, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, translate(err)
	}
	normalizeProfile(p)
	return p, nil
}

func (r *profileRepository) Create(ctx context.Context, p *model.Profile) error {
	normalizeProfile(p)
	query := `
		INSERT INTO user_profiles (user_id, email, questionnaire, personal_info, files,
		                           work_experience, education, completion_score, resume_text)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		p.UserID, p.Email, p.Questionnaire, p.PersonalInfo, p.Files,
		p.WorkExperience, p.Education, p.CompletionScore, p.ResumeText,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	return translate(err)
}

func (r *profileRepository) Save(ctx context.Context, p *model.Profile) error {
	normalizeProfile(p)
	query := `
		UPDATE user_profiles
		SET questionnaire = $2, personal_info = $3, files = $4, work_experience = $5,
		    education = $6, completion_score = $7, resume_text = $8, updated_at = NOW()
		WHERE user_id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		p.UserID, p.Questionnaire, p.PersonalInfo, p.Files, p.WorkExperience,
		p.Education, p.CompletionScore, p.ResumeText,
	).Scan(&p.UpdatedAt)
	return translate(err)
}

func (r *profileRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM user_profiles WHERE user_id = $1`, userID)
	return err
}

// normalizeProfile replaces nil maps and slices so JSONB columns never hold null.
func normalizeProfile(p *model.Profile) {
	if p.Questionnaire == nil {
		p.Questionnaire = map[string]string{}
	}
	if p.PersonalInfo == nil {
		p.PersonalInfo = map[string]string{}
	}
	if p.Files == nil {
		p.Files = []model.ProfileFile{}
	}
	if p.WorkExperience == nil {
		p.WorkExperience = []model.WorkExperience{}
	}
	if p.Education == nil {
		p.Education = []model.Education{}
	}
}
