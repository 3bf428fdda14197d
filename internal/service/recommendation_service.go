package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/myadmit/admit-backend/internal/llm"
	"github.com/rs/zerolog"
)

const recommendationPrompt = `Based on the following resume text and career goals, please analyze the candidate's profile and recommend MBA programs in the United States, categorized as follows:

Reach Schools (3 schools): More competitive programs where the candidate's profile is below the typical admitted student
Target Schools (3 schools): Programs where the candidate's profile matches the typical admitted student
Safety Schools (3 schools): Programs where the candidate's profile is stronger than the typical admitted student

Format your response exactly as follows, with one school per line in each category:

REACH:
[School 1]
[School 2]
[School 3]

TARGET:
[School 1]
[School 2]
[School 3]

SAFETY:
[School 1]
[School 2]
[School 3]

Career Goals:
%s

Resume Text:
%s`

const extractPrompt = `Extract these details from the resume text that follows.

FirstName:
LastName:
Address: {
  Country:
  Street Address:
  City:
  State/Province:
  Zip Code:
}
Work Experience: [{
  Company:
  Role:
  Location:
  Start Date (MM/dd/yyyy):
  End Date (MM/dd/yyyy):
  Description:
}]
Education: [{
  University Name:
  Degree Type:
  Major:
  GPA:
  Start Date (MM/dd/yyyy):
  End Date (MM/dd/yyyy):
}]

Give the output in a ` + "```json" + ` block and only fill fields you are confident about. Do not make anything up.

Resume Text:
%s`

// SchoolLists groups recommended programs by admission odds.
type SchoolLists struct {
	Reach  []string `json:"reach"`
	Target []string `json:"target"`
	Safety []string `json:"safety"`
}

func (l *SchoolLists) empty() bool {
	return len(l.Reach) == 0 && len(l.Target) == 0 && len(l.Safety) == 0
}

type RecommendationService struct {
	llm      llm.Client
	profiles *ProfileService
	log      zerolog.Logger
}

func NewRecommendationService(client llm.Client, profiles *ProfileService, log zerolog.Logger) *RecommendationService {
	return &RecommendationService{
		llm:      client,
		profiles: profiles,
		log:      log.With().Str("component", "recommendation_service").Logger(),
	}
}

// Recommend asks the LLM for reach, target and safety schools based on the
// user's stored resume text.
func (s *RecommendationService) Recommend(ctx context.Context, userID uuid.UUID, careerGoals string) (*SchoolLists, error) {
	resume, err := s.profiles.GetResumeText(ctx, userID)
	if err != nil {
		return nil, err
	}
	if resume == nil || strings.TrimSpace(*resume) == "" {
		return nil, ErrResumeRequired
	}

	goals := strings.TrimSpace(careerGoals)
	if goals == "" {
		goals = "Not provided"
	}

	reply, err := s.llm.Complete(ctx, "", fmt.Sprintf(recommendationPrompt, goals, *resume))
	if err != nil {
		return nil, fmt.Errorf("recommendation completion: %w", err)
	}

	lists := parseSchoolLists(reply)
	if lists.empty() {
		s.log.Warn().Str("user_id", userID.String()).Msg("Recommendation reply had no schools")
		return nil, ErrNoRecommendations
	}
	return lists, nil
}

// parseSchoolLists reads the REACH/TARGET/SAFETY sections line by line.
// Lines before the first header are ignored.
func parseSchoolLists(reply string) *SchoolLists {
	lists := &SchoolLists{Reach: []string{}, Target: []string{}, Safety: []string{}}
	var current *[]string
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case "REACH:":
			current = &lists.Reach
		case "TARGET:":
			current = &lists.Target
		case "SAFETY:":
			current = &lists.Safety
		default:
			if current != nil {
				*current = append(*current, line)
			}
		}
	}
	return lists
}

// Extract turns free resume text into structured profile fields. A reply
// without a fenced JSON object yields an empty map.
func (s *RecommendationService) Extract(ctx context.Context, text string) (map[string]interface{}, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrTextRequired
	}

	reply, err := s.llm.Complete(ctx, "", fmt.Sprintf(extractPrompt, text))
	if err != nil {
		return nil, fmt.Errorf("extract completion: %w", err)
	}

	out := map[string]interface{}{}
	payload, ok := llm.FencedJSON(reply)
	if !ok {
		return out, nil
	}
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAIResponse, err)
	}
	return out, nil
}
