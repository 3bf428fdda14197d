package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/myadmit/admit-backend/internal/config"
	"github.com/myadmit/admit-backend/internal/model"
	"github.com/myadmit/admit-backend/internal/repository"
	"github.com/myadmit/admit-backend/internal/storage"
	"github.com/rs/zerolog"
)

const maxNoteLength = 300

// ApplicationService manages an applicant's applications, their questions,
// answers, notes and deadlines, and enforces the plan's application limit.
type ApplicationService struct {
	cfg           *config.Config
	applications  repository.ApplicationRepository
	programs      repository.ProgramRepository
	users         repository.UserRepository
	subscriptions repository.SubscriptionRepository
	store         storage.Store
	log           zerolog.Logger
}

func NewApplicationService(
	cfg *config.Config,
	applications repository.ApplicationRepository,
	programs repository.ProgramRepository,
	users repository.UserRepository,
	subscriptions repository.SubscriptionRepository,
	store storage.Store,
	log zerolog.Logger,
) *ApplicationService {
	return &ApplicationService{
		cfg:           cfg,
		applications:  applications,
		programs:      programs,
		users:         users,
		subscriptions: subscriptions,
		store:         store,
		log:           log.With().Str("component", "application_service").Logger(),
	}
}

// ─── Plan limits ───────────────────────────────────────────────────────────

// ApplicationLimit returns how many applications the user's plan allows.
func (s *ApplicationService) ApplicationLimit(ctx context.Context, userID uuid.UUID) (int, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}

	plan := model.PlanFree
	if user.SubscriptionID != nil {
		sub, err := s.subscriptions.GetByID(ctx, *user.SubscriptionID)
		switch {
		case err == nil:
			plan = sub.SubscriptionType
		case !errors.Is(err, repository.ErrNotFound):
			return 0, err
		}
	}
	return plan.ApplicationLimit(s.cfg.FreeApplicationLimit), nil
}

// Invalidate marks the user's oldest applications active up to the plan
// limit and the rest inactive.
func (s *ApplicationService) Invalidate(ctx context.Context, userID uuid.UUID) error {
	limit, err := s.ApplicationLimit(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.applications.ApplyActiveWindow(ctx, userID, limit); err != nil {
		return fmt.Errorf("apply active window: %w", err)
	}
	return nil
}

// ─── Applications ──────────────────────────────────────────────────────────

func (s *ApplicationService) Create(ctx context.Context, userID uuid.UUID, req *model.CreateApplicationRequest) (*model.Application, error) {
	limit, err := s.ApplicationLimit(ctx, userID)
	if err != nil {
		return nil, err
	}
	count, err := s.applications.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if count >= limit {
		return nil, ErrApplicationLimit
	}

	if req.ProgramID == nil {
		return nil, ErrProgramRequired
	}
	program, err := s.programs.GetByID(ctx, *req.ProgramID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}

	exists, err := s.applications.ExistsForProgram(ctx, userID, program.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrApplicationExists
	}

	deadline, err := resolveDeadline(program, req.Deadline, false)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	questions := make([]model.EssayQuestion, 0, len(program.ApplicationQuestions))
	for _, q := range program.ApplicationQuestions {
		originalID := q.ID
		copied := q
		copied.ID = uuid.New()
		questions = append(questions, model.EssayQuestion{
			Question:           copied,
			OriginalQuestionID: &originalID,
			IsCustom:           false,
			LastModified:       now,
		})
	}

	app := &model.Application{
		UserID:    userID,
		ProgramID: program.ID,
		Program:   program,
		Questions: questions,
		Deadline:  deadline,
		IsActive:  true,
	}
	if err := s.applications.Create(ctx, app); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrApplicationExists
		}
		return nil, fmt.Errorf("create application: %w", err)
	}

	s.log.Info().
		Str("user_id", userID.String()).
		Str("application_id", app.ID.String()).
		Msg("Application created")
	return app, nil
}

// List returns the user's applications. Active ones are returned in full,
// inactive ones as model.ApplicationSummary.
func (s *ApplicationService) List(ctx context.Context, userID uuid.UUID) ([]interface{}, error) {
	if err := s.Invalidate(ctx, userID); err != nil {
		return nil, err
	}
	apps, err := s.applications.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(apps))
	for _, a := range apps {
		if logo := universityLogo(a); logo != "" && !isAbsoluteURL(logo) {
			keys = append(keys, logo)
		}
	}
	urls, err := storage.SignAll(ctx, s.store, keys)
	if err != nil {
		return nil, fmt.Errorf("sign logos: %w", err)
	}

	out := make([]interface{}, 0, len(apps))
	for _, a := range apps {
		var logoURL *string
		if logo := universityLogo(a); logo != "" {
			u := logo
			if signed, ok := urls[logo]; ok {
				u = signed
			}
			logoURL = &u
			a.Program.University.LogoURL = logoURL
		}

		if a.IsActive {
			out = append(out, a)
			continue
		}
		summary := model.ApplicationSummary{ID: a.ID, Logo: logoURL}
		if a.Program != nil {
			summary.ProgramName = a.Program.ProgramName
			if a.Program.University != nil {
				summary.UniversityName = a.Program.University.Name
			}
		}
		out = append(out, summary)
	}
	return out, nil
}

// Get returns an active application owned by the user.
func (s *ApplicationService) Get(ctx context.Context, userID, id uuid.UUID) (*model.Application, error) {
	return s.LoadActive(ctx, userID, id)
}

// LoadActive re-applies the plan window and loads an application that the user
// owns and that is still active.
func (s *ApplicationService) LoadActive(ctx context.Context, userID, id uuid.UUID) (*model.Application, error) {
	if err := s.Invalidate(ctx, userID); err != nil {
		return nil, err
	}
	app, err := s.loadOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !app.IsActive {
		return nil, ErrForbidden
	}
	return app, nil
}

func (s *ApplicationService) loadOwned(ctx context.Context, userID, id uuid.UUID) (*model.Application, error) {
	app, err := s.applications.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	if app.UserID != userID {
		return nil, ErrForbidden
	}
	return app, nil
}

// ─── Questions ─────────────────────────────────────────────────────────────

func (s *ApplicationService) ListQuestions(ctx context.Context, userID, id uuid.UUID) ([]model.EssayQuestion, error) {
	app, err := s.LoadActive(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return app.Questions, nil
}

func (s *ApplicationService) GetQuestion(ctx context.Context, userID, id, questionID uuid.UUID) (*model.EssayQuestion, error) {
	app, err := s.LoadActive(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	idx := app.FindQuestion(questionID)
	if idx < 0 {
		return nil, ErrQuestionNotFound
	}
	return &app.Questions[idx], nil
}

// AddQuestion attaches a custom question to the application.
func (s *ApplicationService) AddQuestion(ctx context.Context, userID, id uuid.UUID, in *model.ApplicationQuestionInput) (*model.EssayQuestion, error) {
	app, err := s.LoadActive(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	q := model.EssayQuestion{
		Question: model.Question{
			ID:         uuid.New(),
			Question:   strings.TrimSpace(in.Question),
			Type:       in.Type,
			Guidelines: in.Guidelines,
			LimitType:  in.LimitType,
			LimitValue: in.LimitValue,
			EnableAI:   in.EnableAI == nil || *in.EnableAI,
		},
		IsCustom:     true,
		LastModified: time.Now().UTC(),
	}
	if q.LimitType == "" {
		q.LimitType = model.LimitNone
	}
	if err := ValidateQuestion(&q.Question); err != nil {
		return nil, err
	}

	app.Questions = append(app.Questions, q)
	if err := s.applications.Save(ctx, app); err != nil {
		return nil, fmt.Errorf("save application: %w", err)
	}
	return &q, nil
}

// UpdateQuestion applies the non-empty fields of in to the question.
func (s *ApplicationService) UpdateQuestion(ctx context.Context, userID, id, questionID uuid.UUID, in *model.ApplicationQuestionInput) (*model.EssayQuestion, error) {
	app, err := s.LoadActive(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	idx := app.FindQuestion(questionID)
	if idx < 0 {
		return nil, ErrQuestionNotFound
	}

	q := app.Questions[idx]
	if in.Question != "" {
		q.Question.Question = strings.TrimSpace(in.Question)
	}
	if in.Type != "" {
		q.Type = in.Type
	}
	if in.Guidelines != "" {
		q.Guidelines = in.Guidelines
	}
	if in.LimitType != "" {
		q.LimitType = in.LimitType
		if in.LimitType == model.LimitNone {
			q.LimitValue = nil
		}
	}
	if in.LimitValue != nil {
		q.LimitValue = in.LimitValue
	}
	if in.EnableAI != nil {
		q.EnableAI = *in.EnableAI
	}
	if err := ValidateQuestion(&q.Question); err != nil {
		return nil, err
	}
	q.LastModified = time.Now().UTC()

	app.Questions[idx] = q
	if err := s.applications.Save(ctx, app); err != nil {
		return nil, fmt.Errorf("save application: %w", err)
	}
	return &q, nil
}

// DeleteQuestion removes a custom question. Program questions cannot be removed.
func (s *ApplicationService) DeleteQuestion(ctx context.Context, userID, id, questionID uuid.UUID) error {
	app, err := s.LoadActive(ctx, userID, id)
	if err != nil {
		return err
	}
	idx := app.FindQuestion(questionID)
	if idx < 0 {
		return ErrQuestionNotFound
	}
	if !app.Questions[idx].IsCustom {
		return ErrOnlyCustomDeletable
	}

	app.Questions = append(app.Questions[:idx], app.Questions[idx+1:]...)
	return s.applications.Save(ctx, app)
}

// ValidateQuestion checks question text and limit settings.
func ValidateQuestion(q *model.Question) error {
	if strings.TrimSpace(q.Question) == "" {
		return fmt.Errorf("%w: question text is required", ErrInvalidQuestion)
	}
	if !q.LimitType.Valid() {
		return fmt.Errorf("%w: limit type must be Word, Char or None", ErrInvalidQuestion)
	}
	if q.LimitType != model.LimitNone && (q.LimitValue == nil || *q.LimitValue < 1) {
		return fmt.Errorf("%w: limit value must be at least 1", ErrInvalidQuestion)
	}
	return nil
}

// ─── Answers ───────────────────────────────────────────────────────────────

// UpdateFinalAnswer stores the applicant's own answer. Status follows the
// content unless the answer was already marked finished.
func (s *ApplicationService) UpdateFinalAnswer(ctx context.Context, userID, id, questionID uuid.UUID, finalAnswer string) (*model.Answer, error) {
	app, err := s.LoadActive(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if app.FindQuestion(questionID) < 0 {
		return nil, ErrQuestionNotFound
	}

	answer := app.Answers[questionID.String()]
	answer.FinalAnswer = finalAnswer
	if answer.Status != model.StatusFinished {
		if strings.TrimSpace(finalAnswer) == "" {
			answer.Status = model.StatusNotStarted
		} else {
			answer.Status = model.StatusStarted
		}
	}
	answer.LastModified = time.Now().UTC()

	if err := s.applications.PutAnswer(ctx, app.ID, questionID.String(), answer); err != nil {
		return nil, fmt.Errorf("save answer: %w", err)
	}
	return &answer, nil
}

func (s *ApplicationService) UpdateAnswerStatus(ctx context.Context, userID, id, questionID uuid.UUID, status model.AnswerStatus) (*model.Answer, error) {
	if !status.Valid() {
		return nil, ErrInvalidAnswerStatus
	}
	app, err := s.LoadActive(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if app.FindQuestion(questionID) < 0 {
		return nil, ErrQuestionNotFound
	}

	answer := app.Answers[questionID.String()]
	answer.Status = status
	answer.LastModified = time.Now().UTC()
	if err := s.applications.PutAnswer(ctx, app.ID, questionID.String(), answer); err != nil {
		return nil, fmt.Errorf("save answer: %w", err)
	}
	return &answer, nil
}

// ─── Notes ─────────────────────────────────────────────────────────────────

func (s *ApplicationService) ListNotes(ctx context.Context, userID, id uuid.UUID) ([]model.Note, error) {
	app, err := s.loadOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return app.Notes, nil
}

func (s *ApplicationService) AddNote(ctx context.Context, userID, id uuid.UUID, content string) (*model.Note, error) {
	content, err := cleanNote(content)
	if err != nil {
		return nil, err
	}
	app, err := s.loadOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	note := model.Note{ID: uuid.New(), Content: content, CreatedAt: time.Now().UTC()}
	app.Notes = append(app.Notes, note)
	if err := s.applications.Save(ctx, app); err != nil {
		return nil, fmt.Errorf("save application: %w", err)
	}
	return &note, nil
}

func (s *ApplicationService) UpdateNote(ctx context.Context, userID, id, noteID uuid.UUID, content string) (*model.Note, error) {
	content, err := cleanNote(content)
	if err != nil {
		return nil, err
	}
	app, err := s.loadOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	idx := app.FindNote(noteID)
	if idx < 0 {
		return nil, ErrNoteNotFound
	}

	app.Notes[idx].Content = content
	if err := s.applications.Save(ctx, app); err != nil {
		return nil, fmt.Errorf("save application: %w", err)
	}
	return &app.Notes[idx], nil
}

func (s *ApplicationService) DeleteNote(ctx context.Context, userID, id, noteID uuid.UUID) error {
	app, err := s.loadOwned(ctx, userID, id)
	if err != nil {
		return err
	}
	idx := app.FindNote(noteID)
	if idx < 0 {
		return ErrNoteNotFound
	}
	app.Notes = append(app.Notes[:idx], app.Notes[idx+1:]...)
	return s.applications.Save(ctx, app)
}

func cleanNote(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" || utf8.RuneCountInString(content) > maxNoteLength {
		return "", fmt.Errorf("%w: note must be 1 to %d characters", ErrInvalidNote, maxNoteLength)
	}
	return content, nil
}

// ─── Deadlines ─────────────────────────────────────────────────────────────

func (s *ApplicationService) UpdateDeadline(ctx context.Context, userID, id uuid.UUID, in *model.ApplicationDeadlineInput) (*model.Deadline, error) {
	app, err := s.loadOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	deadline, err := resolveDeadline(app.Program, in, true)
	if err != nil {
		return nil, err
	}
	app.Deadline = deadline
	if err := s.applications.Save(ctx, app); err != nil {
		return nil, fmt.Errorf("save application: %w", err)
	}
	return deadline, nil
}

func (s *ApplicationService) RemoveDeadline(ctx context.Context, userID, id uuid.UUID) error {
	app, err := s.loadOwned(ctx, userID, id)
	if err != nil {
		return err
	}
	app.Deadline = nil
	return s.applications.Save(ctx, app)
}

// UpcomingDeadlines lists deadlines falling within the next days days, soonest first.
func (s *ApplicationService) UpcomingDeadlines(ctx context.Context, userID uuid.UUID, days int) ([]*model.UpcomingDeadline, error) {
	if days <= 0 {
		days = 30
	}
	now := time.Now().UTC()
	return s.applications.ListUpcomingDeadlines(ctx, userID, now, now.AddDate(0, 0, days))
}

// resolveDeadline turns the request input into a stored deadline. Without
// required, an incomplete input yields no deadline instead of an error.
func resolveDeadline(program *model.Program, in *model.ApplicationDeadlineInput, required bool) (*model.Deadline, error) {
	if in == nil {
		if required {
			return nil, ErrInvalidDeadline
		}
		return nil, nil
	}

	if in.OriginalDeadlineID != nil {
		if program == nil {
			return nil, ErrInvalidDeadline
		}
		pd := program.FindDeadline(*in.OriginalDeadlineID)
		if pd == nil {
			return nil, fmt.Errorf("%w: not a deadline of this program", ErrInvalidDeadline)
		}
		id := pd.ID
		return &model.Deadline{Name: pd.Name, Date: pd.Date, IsCustom: false, OriginalDeadlineID: &id}, nil
	}

	if strings.TrimSpace(in.Name) != "" && in.Date != nil {
		return &model.Deadline{Name: strings.TrimSpace(in.Name), Date: in.Date.UTC(), IsCustom: true}, nil
	}

	if required {
		return nil, fmt.Errorf("%w: provide original_deadline_id or name and date", ErrInvalidDeadline)
	}
	return nil, nil
}

func universityLogo(a *model.Application) string {
	if a.Program == nil || a.Program.University == nil {
		return ""
	}
	return a.Program.University.Logo
}
