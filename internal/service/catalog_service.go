package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/myadmit/admit-backend/internal/config"
	"github.com/myadmit/admit-backend/internal/model"
	"github.com/myadmit/admit-backend/internal/repository"
	"github.com/myadmit/admit-backend/internal/storage"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// CatalogService serves universities, programs and profile questions.
// University and program lists are cached in Redis and dropped on every write.
type CatalogService struct {
	cfg          *config.Config
	rdb          *redis.Client
	universities repository.UniversityRepository
	programs     repository.ProgramRepository
	questions    repository.ProfileQuestionRepository
	applications repository.ApplicationRepository
	store        storage.Store
	log          zerolog.Logger
}

func NewCatalogService(
	cfg *config.Config,
	rdb *redis.Client,
	universities repository.UniversityRepository,
	programs repository.ProgramRepository,
	questions repository.ProfileQuestionRepository,
	applications repository.ApplicationRepository,
	store storage.Store,
	log zerolog.Logger,
) *CatalogService {
	return &CatalogService{
		cfg:          cfg,
		rdb:          rdb,
		universities: universities,
		programs:     programs,
		questions:    questions,
		applications: applications,
		store:        store,
		log:          log.With().Str("component", "catalog_service").Logger(),
	}
}

// ─── Universities ──────────────────────────────────────────────────────────

// ListUniversities returns every university with a signed logo URL.
func (s *CatalogService) ListUniversities(ctx context.Context) ([]*model.University, error) {
	var list []*model.University
	key := config.CacheKey.UniversitiesKey()

	if !s.readCache(ctx, key, &list) {
		var err error
		list, err = s.universities.GetAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("list universities: %w", err)
		}
		s.writeCache(ctx, key, list)
	}

	if err := s.signLogos(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetUniversity looks a university up by ID, or by name when id is nil.
func (s *CatalogService) GetUniversity(ctx context.Context, id *uuid.UUID, name string) (*model.University, error) {
	var (
		u   *model.University
		err error
	)
	if id != nil {
		u, err = s.universities.GetByID(ctx, *id)
	} else {
		u, err = s.universities.GetByName(ctx, strings.TrimSpace(name))
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUniversityNotFound
		}
		return nil, err
	}
	if err := s.signLogos(ctx, []*model.University{u}); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *CatalogService) CreateUniversity(ctx context.Context, req *model.UniversityRequest) (*model.University, error) {
	u := &model.University{
		Name:        strings.TrimSpace(req.Name),
		Information: req.Information,
		Logo:        req.Logo,
	}
	if err := s.universities.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateEntry
		}
		return nil, err
	}
	s.invalidateCache(ctx)
	return u, nil
}

func (s *CatalogService) UpdateUniversity(ctx context.Context, id uuid.UUID, req *model.UniversityRequest) (*model.University, error) {
	u, err := s.universities.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUniversityNotFound
		}
		return nil, err
	}

	u.Name = strings.TrimSpace(req.Name)
	u.Information = req.Information
	if req.Logo != "" {
		u.Logo = req.Logo
	}
	if err := s.universities.Update(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateEntry
		}
		return nil, err
	}
	s.invalidateCache(ctx)
	return u, nil
}

// SetUniversityLogo points the university at an uploaded logo object.
func (s *CatalogService) SetUniversityLogo(ctx context.Context, id uuid.UUID, key string) (*model.University, error) {
	u, err := s.universities.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUniversityNotFound
		}
		return nil, err
	}
	u.Logo = key
	if err := s.universities.Update(ctx, u); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx)
	if err := s.signLogos(ctx, []*model.University{u}); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *CatalogService) DeleteUniversity(ctx context.Context, id uuid.UUID) error {
	if err := s.universities.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUniversityNotFound
		}
		return err
	}
	s.invalidateCache(ctx)
	return nil
}

// ─── Programs ──────────────────────────────────────────────────────────────

// ListPrograms returns the programs of one university, or all programs when
// universityID is nil.
func (s *CatalogService) ListPrograms(ctx context.Context, universityID *uuid.UUID) ([]*model.Program, error) {
	scope := ""
	if universityID != nil {
		scope = universityID.String()
	}
	key := config.CacheKey.ProgramsKey(scope)

	var list []*model.Program
	if s.readCache(ctx, key, &list) {
		return list, nil
	}

	var err error
	if universityID != nil {
		list, err = s.programs.GetByUniversity(ctx, *universityID)
	} else {
		list, err = s.programs.GetAll(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	s.writeCache(ctx, key, list)
	return list, nil
}

func (s *CatalogService) GetProgram(ctx context.Context, id uuid.UUID) (*model.Program, error) {
	p, err := s.programs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}
	return p, nil
}

// ProgramForApplication returns the program an application was created for.
// Only the owner or an admin may look it up.
func (s *CatalogService) ProgramForApplication(ctx context.Context, applicationID, userID uuid.UUID, isAdmin bool) (*model.Program, error) {
	app, err := s.applications.GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	if !isAdmin && app.UserID != userID {
		return nil, ErrForbidden
	}
	return s.GetProgram(ctx, app.ProgramID)
}

func (s *CatalogService) CreateProgram(ctx context.Context, req *model.ProgramRequest) (*model.Program, error) {
	if _, err := s.universities.GetByID(ctx, req.UniversityID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUniversityNotFound
		}
		return nil, err
	}

	p := &model.Program{}
	applyProgramRequest(p, req)
	if err := s.programs.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateEntry
		}
		return nil, err
	}
	s.invalidateCache(ctx)
	return p, nil
}

func (s *CatalogService) UpdateProgram(ctx context.Context, id uuid.UUID, req *model.ProgramRequest) (*model.Program, error) {
	p, err := s.GetProgram(ctx, id)
	if err != nil {
		return nil, err
	}
	applyProgramRequest(p, req)
	if err := s.programs.Update(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateEntry
		}
		return nil, err
	}
	s.invalidateCache(ctx)
	return p, nil
}

func (s *CatalogService) DeleteProgram(ctx context.Context, id uuid.UUID) error {
	if err := s.programs.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProgramNotFound
		}
		return err
	}
	s.invalidateCache(ctx)
	return nil
}

// ─── Profile questions ─────────────────────────────────────────────────────

func (s *CatalogService) ListProfileQuestions(ctx context.Context) ([]*model.ProfileQuestion, error) {
	return s.questions.GetAll(ctx)
}

func (s *CatalogService) ListProfileSections(ctx context.Context) ([]*model.ProfileSection, error) {
	return s.questions.ListSections(ctx)
}

func (s *CatalogService) GetProfileQuestion(ctx context.Context, id uuid.UUID) (*model.ProfileQuestion, error) {
	q, err := s.questions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}
	return q, nil
}

func (s *CatalogService) CreateProfileSection(ctx context.Context, req *model.ProfileSectionRequest) (*model.ProfileSection, error) {
	sec := &model.ProfileSection{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		PageNumber:  req.PageNumber,
	}
	if err := s.questions.CreateSection(ctx, sec); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateEntry
		}
		return nil, err
	}
	return sec, nil
}

func (s *CatalogService) CreateProfileQuestion(ctx context.Context, req *model.ProfileQuestionRequest) (*model.ProfileQuestion, error) {
	q := &model.ProfileQuestion{
		Question:  strings.TrimSpace(req.Question),
		SectionID: req.SectionID,
		Kind:      req.Kind,
	}
	if err := s.questions.CreateQuestion(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// ─── Internal helpers ──────────────────────────────────────────────────────

func applyProgramRequest(p *model.Program, req *model.ProgramRequest) {
	p.UniversityID = req.UniversityID
	p.ProgramType = req.ProgramType
	p.ProgramName = strings.TrimSpace(req.ProgramName)
	p.Information = req.Information
	p.Logo = req.Logo
	p.SessionID = req.SessionID

	p.ApplicationQuestions = make([]model.Question, 0, len(req.ApplicationQuestions))
	for _, in := range req.ApplicationQuestions {
		id := uuid.New()
		if in.ID != nil {
			id = *in.ID
		}
		p.ApplicationQuestions = append(p.ApplicationQuestions, model.Question{
			ID:         id,
			Question:   strings.TrimSpace(in.Question),
			Type:       in.Type,
			Guidelines: in.Guidelines,
			LimitType:  in.LimitType,
			LimitValue: in.LimitValue,
			EnableAI:   in.EnableAI,
		})
	}

	p.Deadlines = make([]model.ProgramDeadline, 0, len(req.Deadlines))
	for _, in := range req.Deadlines {
		id := uuid.New()
		if in.ID != nil {
			id = *in.ID
		}
		p.Deadlines = append(p.Deadlines, model.ProgramDeadline{
			ID:          id,
			Name:        in.Name,
			Date:        in.Date,
			Description: in.Description,
		})
	}
}

// signLogos fills LogoURL for logos kept in the blob store. Absolute URLs pass through.
func (s *CatalogService) signLogos(ctx context.Context, list []*model.University) error {
	keys := make([]string, 0, len(list))
	for _, u := range list {
		if u.Logo != "" && !isAbsoluteURL(u.Logo) {
			keys = append(keys, u.Logo)
		}
	}
	urls, err := storage.SignAll(ctx, s.store, keys)
	if err != nil {
		return fmt.Errorf("sign logos: %w", err)
	}
	for _, u := range list {
		switch {
		case u.Logo == "":
		case isAbsoluteURL(u.Logo):
			logo := u.Logo
			u.LogoURL = &logo
		default:
			signed := urls[u.Logo]
			u.LogoURL = &signed
		}
	}
	return nil
}

func isAbsoluteURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// readCache decodes a cached value into dst. Misses and cache errors both
// report false so callers fall back to the database.
func (s *CatalogService) readCache(ctx context.Context, key string, dst interface{}) bool {
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Cache decode failed")
		return false
	}
	return true
}

func (s *CatalogService) writeCache(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key, data, s.cacheTTL()).Err(); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
}

func (s *CatalogService) cacheTTL() time.Duration {
	if s.cfg.CatalogCacheTTL > 0 {
		return s.cfg.CatalogCacheTTL
	}
	return 10 * time.Minute
}

// invalidateCache drops every catalog cache entry.
func (s *CatalogService) invalidateCache(ctx context.Context) {
	var keys []string
	iter := s.rdb.Scan(ctx, 0, config.CacheKey.CatalogPattern(), 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		s.log.Warn().Err(err).Msg("Cache scan failed")
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Cache invalidation failed")
	}
}
