package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/myadmit/admit-backend/internal/config"
	"github.com/myadmit/admit-backend/internal/llm"
	"github.com/myadmit/admit-backend/internal/model"
	"github.com/myadmit/admit-backend/internal/repository"
	ws "github.com/myadmit/admit-backend/internal/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	// After this many incomplete pointer replies the partial set is accepted.
	maxPointerAttempts = 3
	// Replies that do not parse are retried up to this many calls per prompt.
	maxParseAttempts = 3
)

// GeneratedAnswer is one AI answer produced by a generation run.
type GeneratedAnswer struct {
	QuestionID string `json:"question_id"`
	AIAnswer   string `json:"ai_answer"`
}

// GenerationResult is returned once every AI-enabled question has an answer.
type GenerationResult struct {
	Success bool              `json:"success"`
	Answers []GeneratedAnswer `json:"answers"`
}

// EssayService drafts, refines and critiques essay answers with the LLM.
type EssayService struct {
	cfg          *config.Config
	rdb          *redis.Client
	llm          llm.Client
	apps         *ApplicationService
	applications repository.ApplicationRepository
	profiles     repository.ProfileRepository
	questions    repository.ProfileQuestionRepository
	log          zerolog.Logger
}

func NewEssayService(
	cfg *config.Config,
	rdb *redis.Client,
	client llm.Client,
	apps *ApplicationService,
	applications repository.ApplicationRepository,
	profiles repository.ProfileRepository,
	questions repository.ProfileQuestionRepository,
	log zerolog.Logger,
) *EssayService {
	return &EssayService{
		cfg:          cfg,
		rdb:          rdb,
		llm:          client,
		apps:         apps,
		applications: applications,
		profiles:     profiles,
		questions:    questions,
		log:          log.With().Str("component", "essay_service").Logger(),
	}
}

// ─── Generation ────────────────────────────────────────────────────────────

// Generate drafts an AI answer for every AI-enabled question of the
// application. Only one run per application may be in flight.
func (s *EssayService) Generate(ctx context.Context, userID, applicationID uuid.UUID) (*GenerationResult, error) {
	app, err := s.apps.LoadActive(ctx, userID, applicationID)
	if err != nil {
		return nil, err
	}

	lockKey := config.CacheKey.GenerationLockKey(app.ID.String())
	acquired, err := s.rdb.SetNX(ctx, lockKey, userID.String(), s.cfg.GenerationTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire generation lock: %w", err)
	}
	if !acquired {
		return nil, ErrGenerationInProgress
	}

	// Cleanup must run even if the caller goes away mid-run.
	cleanupCtx := context.WithoutCancel(ctx)
	defer func() {
		if err := s.rdb.Del(cleanupCtx, lockKey).Err(); err != nil {
			s.log.Warn().Err(err).Str("application_id", app.ID.String()).Msg("Failed to release generation lock")
		}
	}()

	if err := s.applications.SetGenerating(ctx, app.ID, true); err != nil {
		return nil, fmt.Errorf("set generating: %w", err)
	}

	result, err := s.generate(ctx, app)

	if resetErr := s.applications.SetGenerating(cleanupCtx, app.ID, false); resetErr != nil {
		s.log.Error().Err(resetErr).Str("application_id", app.ID.String()).Msg("Failed to reset generating flag")
	}

	if err != nil {
		s.publish(cleanupCtx, ws.GenerationEvent{Event: ws.EventFailed, ApplicationID: app.ID.String(), Message: err.Error()})
		switch {
		case errors.Is(err, ErrProfileNotFound), errors.Is(err, ErrNoAIQuestions):
			return nil, err
		default:
			s.log.Error().Err(err).Str("application_id", app.ID.String()).Msg("Essay generation failed")
			return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
		}
	}
	return result, nil
}

func (s *EssayService) generate(ctx context.Context, app *model.Application) (*GenerationResult, error) {
	ec, err := s.loadContext(ctx, app, "")
	if err != nil {
		return nil, err
	}

	questions := make([]aiQuestion, 0, len(app.Questions))
	for i := range app.Questions {
		if app.Questions[i].EnableAI {
			questions = append(questions, newAIQuestion(&app.Questions[i]))
		}
	}
	if len(questions) == 0 {
		return nil, ErrNoAIQuestions
	}

	appID := app.ID.String()
	total := len(questions)
	s.publish(ctx, ws.GenerationEvent{Event: ws.EventStarted, ApplicationID: appID, Total: total})

	pointers, err := s.pointers(ctx, buildPointersPrompt(s.cfg.AIPointersPrompt, ec, questions), questions)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, ws.GenerationEvent{Event: ws.EventPointersReady, ApplicationID: appID, Total: total})

	answers := make([]GeneratedAnswer, len(questions))
	var done atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	if s.cfg.AIMaxConcurrency > 0 {
		g.SetLimit(s.cfg.AIMaxConcurrency)
	}
	for i, q := range questions {
		g.Go(func() error {
			ps := pointers[q.QuestionID]
			target := int(ps.WordLimit)
			if target <= 0 {
				target = defaultEssayWordLimit
			}

			essay, err := s.essay(gctx, buildEssayPrompt(ec, q, ps.Pointers), target)
			if err != nil {
				return fmt.Errorf("question %s: %w", q.QuestionID, err)
			}

			answers[i] = GeneratedAnswer{QuestionID: q.QuestionID, AIAnswer: essay}
			s.publish(gctx, ws.GenerationEvent{
				Event:         ws.EventAnswerReady,
				ApplicationID: appID,
				QuestionID:    q.QuestionID,
				Completed:     int(done.Add(1)),
				Total:         total,
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// A failed run leaves every stored draft as it was.
	drafts := make(map[string]string, len(answers))
	for _, a := range answers {
		drafts[a.QuestionID] = a.AIAnswer
	}
	if err := s.applications.SetAIAnswers(ctx, app.ID, drafts); err != nil {
		return nil, fmt.Errorf("save answers: %w", err)
	}

	s.publish(ctx, ws.GenerationEvent{Event: ws.EventCompleted, ApplicationID: appID, Completed: total, Total: total})
	s.log.Info().Str("application_id", appID).Int("answers", total).Msg("Essay generation completed")
	return &GenerationResult{Success: true, Answers: answers}, nil
}

// pointers asks for essay pointers until every question has some. After
// maxPointerAttempts incomplete replies the partial set is accepted.
func (s *EssayService) pointers(ctx context.Context, prompt string, questions []aiQuestion) (map[string]pointerSet, error) {
	incomplete, unparseable := 0, 0
	for {
		reply, err := s.llm.Complete(ctx, essaySystemPrompt, prompt)
		if err != nil {
			return nil, fmt.Errorf("fetch pointers: %w", err)
		}

		var sets map[string]pointerSet
		if err := llm.DecodeObject(reply, &sets); err != nil {
			unparseable++
			if unparseable >= maxParseAttempts {
				return nil, fmt.Errorf("fetch pointers: %w", ErrInvalidAIResponse)
			}
			continue
		}

		missing := 0
		for _, q := range questions {
			if !sets[q.QuestionID].hasPointers() {
				missing++
			}
		}
		if missing == 0 {
			return sets, nil
		}

		incomplete++
		if incomplete >= maxPointerAttempts {
			s.log.Warn().Int("missing", missing).Msg("Accepting incomplete essay pointers")
			return sets, nil
		}
		prompt += missingPointersNote
	}
}

// essay generates one essay. A reply outside [0.9*limit, limit] words is
// regenerated once and then accepted as is.
func (s *EssayService) essay(ctx context.Context, prompt string, wordLimit int) (string, error) {
	regenerated := false
	unparseable := 0
	for {
		reply, err := s.llm.Complete(ctx, essaySystemPrompt, prompt)
		if err != nil {
			return "", fmt.Errorf("generate essay: %w", err)
		}

		var out struct {
			Essay string `json:"essay"`
		}
		if err := llm.DecodeObject(reply, &out); err != nil || strings.TrimSpace(out.Essay) == "" {
			unparseable++
			if unparseable >= maxParseAttempts {
				return "", fmt.Errorf("generate essay: %w", ErrInvalidAIResponse)
			}
			continue
		}

		words := llm.CountWords(out.Essay)
		if words <= wordLimit && float64(words) >= float64(wordLimit)*0.9 {
			return out.Essay, nil
		}
		if regenerated {
			return out.Essay, nil
		}
		regenerated = true
	}
}

// ─── Refinement and suggestions ────────────────────────────────────────────

// Refine rewrites the stored AI answer according to the applicant's request.
// The final answer is left untouched.
func (s *EssayService) Refine(ctx context.Context, userID, applicationID, questionID uuid.UUID, request string) (string, error) {
	app, err := s.apps.LoadActive(ctx, userID, applicationID)
	if err != nil {
		return "", err
	}
	idx := app.FindQuestion(questionID)
	if idx < 0 {
		return "", ErrQuestionNotFound
	}
	answer, ok := app.Answers[questionID.String()]
	if !ok {
		return "", ErrAnswerNotFound
	}

	ec, err := s.loadContext(ctx, app, model.ProfileQuestionKindBrainstorm)
	if err != nil {
		return "", err
	}

	reply, err := s.llm.Complete(ctx, essaySystemPrompt, buildRefinePrompt(ec, &app.Questions[idx], answer.AIAnswer, request))
	if err != nil {
		return "", fmt.Errorf("refine answer: %w", err)
	}

	var out struct {
		RefinedAnswer string `json:"refinedAnswer"`
	}
	if err := llm.DecodeObject(reply, &out); err != nil || strings.TrimSpace(out.RefinedAnswer) == "" {
		return "", ErrInvalidAIResponse
	}

	if err := s.applications.SetAIAnswer(ctx, app.ID, questionID.String(), out.RefinedAnswer); err != nil {
		return "", fmt.Errorf("save refined answer: %w", err)
	}
	return out.RefinedAnswer, nil
}

// Suggestions returns brief improvement points for a draft answer.
func (s *EssayService) Suggestions(ctx context.Context, userID, applicationID, questionID uuid.UUID, answer string) ([]string, error) {
	app, err := s.apps.LoadActive(ctx, userID, applicationID)
	if err != nil {
		return nil, err
	}
	idx := app.FindQuestion(questionID)
	if idx < 0 {
		return nil, ErrQuestionNotFound
	}

	ec, err := s.loadContext(ctx, app, model.ProfileQuestionKindBrainstorm)
	if err != nil {
		return nil, err
	}

	reply, err := s.llm.Complete(ctx, suggestionsSystemPrompt, buildSuggestionsPrompt(ec, &app.Questions[idx], answer))
	if err != nil {
		return nil, fmt.Errorf("get suggestions: %w", err)
	}

	var out struct {
		Suggestions []string `json:"suggestions"`
	}
	if err := llm.DecodeObject(reply, &out); err != nil {
		return nil, ErrInvalidAIResponse
	}
	if len(out.Suggestions) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrNoSuggestions, ErrInvalidAIResponse)
	}
	return out.Suggestions, nil
}

// ─── Internal helpers ──────────────────────────────────────────────────────

// loadContext gathers the applicant's profile and the program details.
// kind filters the brainstorm questions; empty means every profile question.
func (s *EssayService) loadContext(ctx context.Context, app *model.Application, kind string) (*essayContext, error) {
	profile, err := s.profiles.GetByUserID(ctx, app.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("load profile: %w", err)
	}

	var questions []*model.ProfileQuestion
	if kind == "" {
		questions, err = s.questions.GetAll(ctx)
	} else {
		questions, err = s.questions.GetByKind(ctx, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("load profile questions: %w", err)
	}

	brainstorm := make([]brainstormAnswer, 0, len(questions))
	for _, q := range questions {
		if a := profile.Questionnaire[q.ID.String()]; strings.TrimSpace(a) != "" {
			brainstorm = append(brainstorm, brainstormAnswer{Question: q.Question, Answer: a})
		}
	}

	ec := &essayContext{
		PersonalInfo:   profile.PersonalInfo,
		Education:      profile.Education,
		WorkExperience: profile.WorkExperience,
		Brainstorm:     brainstorm,
	}
	if p := app.Program; p != nil {
		ec.Program = programInfo{ProgramName: p.ProgramName, Information: p.Information}
		if p.University != nil {
			ec.Program.University = universityInfo{Name: p.University.Name, Information: p.University.Information}
		}
	}
	return ec, nil
}

// publish sends a progress event to WebSocket subscribers. Failures only log.
func (s *EssayService) publish(ctx context.Context, evt ws.GenerationEvent) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return
	}
	channel := config.CacheKey.GenerationChannel(evt.ApplicationID)
	if err := s.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		s.log.Warn().Err(err).Str("event", string(evt.Event)).Msg("Publish progress failed")
	}
}
