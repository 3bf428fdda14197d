package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/myadmit/admit-backend/internal/model"
	"github.com/myadmit/admit-backend/internal/repository"
	"github.com/myadmit/admit-backend/internal/storage"
	"github.com/rs/zerolog"
)

// ProfileView is a profile with signed links for the picture and CV.
type ProfileView struct {
	*model.Profile
	ProfilePicture *string `json:"profile_picture"`
	CVURLSigned    *string `json:"cv_url_signed"`
}

// PersonalProfile is the personal section of a profile.
type PersonalProfile struct {
	PersonalInfo   map[string]string      `json:"personal_info"`
	Education      []model.Education      `json:"education"`
	WorkExperience []model.WorkExperience `json:"work_experience"`
}

// ProfileService manages questionnaire answers, personal details and the
// completion score.
type ProfileService struct {
	profiles  repository.ProfileRepository
	users     repository.UserRepository
	questions repository.ProfileQuestionRepository
	store     storage.Store
	log       zerolog.Logger
}

func NewProfileService(
	profiles repository.ProfileRepository,
	users repository.UserRepository,
	questions repository.ProfileQuestionRepository,
	store storage.Store,
	log zerolog.Logger,
) *ProfileService {
	return &ProfileService{
		profiles:  profiles,
		users:     users,
		questions: questions,
		store:     store,
		log:       log.With().Str("component", "profile_service").Logger(),
	}
}

// Get returns the caller's profile with signed links. A missing profile is ErrProfileNotFound.
func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*ProfileView, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	view := &ProfileView{Profile: profile}
	var keys []string
	picture := profile.FileOfType(model.DocProfilePicture)
	cv := profile.FileOfType(model.DocCV)
	if picture != nil {
		keys = append(keys, picture.StorageKey)
	}
	if cv != nil {
		keys = append(keys, cv.StorageKey)
	}
	if len(keys) == 0 {
		return view, nil
	}

	urls, err := storage.SignAll(ctx, s.store, keys)
	if err != nil {
		return nil, fmt.Errorf("sign profile files: %w", err)
	}
	if picture != nil {
		u := urls[picture.StorageKey]
		view.ProfilePicture = &u
	}
	if cv != nil {
		u := urls[cv.StorageKey]
		view.CVURLSigned = &u
	}
	return view, nil
}

// GetOrCreate loads the profile and creates an empty one on first access.
func (s *ProfileService) GetOrCreate(ctx context.Context, userID uuid.UUID, email string) (*model.Profile, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	profile = model.NewProfile(userID, email)
	if err := s.profiles.Create(ctx, profile); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return s.profiles.GetByUserID(ctx, userID)
		}
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return profile, nil
}

// SaveAnswer stores one questionnaire answer and refreshes the score.
func (s *ProfileService) SaveAnswer(ctx context.Context, userID uuid.UUID, email string, req *model.ProfileAnswerRequest) (*model.Profile, error) {
	profile, err := s.GetOrCreate(ctx, userID, email)
	if err != nil {
		return nil, err
	}

	profile.Questionnaire[req.QuestionID] = req.Answer
	if err := s.saveWithScore(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *ProfileService) GetPersonal(ctx context.Context, userID uuid.UUID, email string) (*PersonalProfile, error) {
	profile, err := s.GetOrCreate(ctx, userID, email)
	if err != nil {
		return nil, err
	}
	return &PersonalProfile{
		PersonalInfo:   profile.PersonalInfo,
		Education:      profile.Education,
		WorkExperience: profile.WorkExperience,
	}, nil
}

// UpdatePersonal merges personal info, replaces education and work
// experience when given, and keeps the account name in sync.
func (s *ProfileService) UpdatePersonal(ctx context.Context, userID uuid.UUID, email string, req *model.PersonalProfileRequest) error {
	profile, err := s.GetOrCreate(ctx, userID, email)
	if err != nil {
		return err
	}

	nameChanged := false
	for key, value := range req.PersonalInfo {
		if strings.TrimSpace(value) == "" {
			continue
		}
		if (key == "firstName" || key == "lastName") && profile.PersonalInfo[key] != value {
			nameChanged = true
		}
		profile.PersonalInfo[key] = value
	}

	if a := req.Address; a != nil {
		setIfPresent(profile.PersonalInfo, "country", a.Country)
		setIfPresent(profile.PersonalInfo, "streetAddress", a.StreetAddress)
		setIfPresent(profile.PersonalInfo, "city", a.City)
		setIfPresent(profile.PersonalInfo, "region", a.State)
		setIfPresent(profile.PersonalInfo, "postalCode", a.ZipCode)
	}

	if req.Education != nil {
		profile.Education = cleanEducation(req.Education)
	}
	if req.WorkExperience != nil {
		profile.WorkExperience = cleanWorkExperience(req.WorkExperience)
	}

	if nameChanged {
		name := strings.TrimSpace(profile.PersonalInfo["firstName"] + " " + profile.PersonalInfo["lastName"])
		if err := s.users.UpdateName(ctx, userID, name); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("update user name: %w", err)
		}
	}

	return s.saveWithScore(ctx, profile)
}

func (s *ProfileService) GetResumeText(ctx context.Context, userID uuid.UUID) (*string, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if profile.ResumeText == "" {
		return nil, nil
	}
	return &profile.ResumeText, nil
}

func (s *ProfileService) SetResumeText(ctx context.Context, userID uuid.UUID, email, text string) error {
	profile, err := s.GetOrCreate(ctx, userID, email)
	if err != nil {
		return err
	}
	profile.ResumeText = text
	return s.profiles.Save(ctx, profile)
}

// RecalculateCompletion recomputes and stores the completion score.
func (s *ProfileService) RecalculateCompletion(ctx context.Context, userID uuid.UUID, email string) (float64, error) {
	profile, err := s.GetOrCreate(ctx, userID, email)
	if err != nil {
		return 0, err
	}
	if err := s.saveWithScore(ctx, profile); err != nil {
		return 0, err
	}
	return profile.CompletionScore, nil
}

func (s *ProfileService) saveWithScore(ctx context.Context, profile *model.Profile) error {
	brainstorm, err := s.questions.GetByKind(ctx, model.ProfileQuestionKindBrainstorm)
	if err != nil {
		return fmt.Errorf("load brainstorm questions: %w", err)
	}
	profile.CompletionScore = CompletionScore(profile, brainstorm)
	if err := s.profiles.Save(ctx, profile); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func setIfPresent(m map[string]string, key, value string) {
	if strings.TrimSpace(value) != "" {
		m[key] = value
	}
}

// cleanEducation drops entries without a university name.
func cleanEducation(in []model.Education) []model.Education {
	out := make([]model.Education, 0, len(in))
	for _, e := range in {
		name := strings.TrimSpace(e.UniversityName)
		if name == "" {
			continue
		}
		e.UniversityName = name
		if e.CoursesDone == nil {
			e.CoursesDone = []string{}
		}
		out = append(out, e)
	}
	return out
}

// cleanWorkExperience drops entries without a company; a blank role becomes "N/A".
func cleanWorkExperience(in []model.WorkExperience) []model.WorkExperience {
	out := make([]model.WorkExperience, 0, len(in))
	for _, w := range in {
		company := strings.TrimSpace(w.Company)
		if company == "" {
			continue
		}
		w.Company = company
		w.Role = strings.TrimSpace(w.Role)
		if w.Role == "" {
			w.Role = "N/A"
		}
		out = append(out, w)
	}
	return out
}
