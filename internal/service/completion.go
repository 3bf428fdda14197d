package service

import (
	"math"
	"strings"

	"github.com/myadmit/admit-backend/internal/model"
)

const (
	personalFieldWeight  = 5
	educationWeight      = 10
	workExperienceWeight = 10
	testScoreWeight      = 2
	brainstormWeight     = 15
)

var (
	scoredPersonalFields = []string{"firstName", "lastName", "email", "country"}
	scoredTestFields     = []string{
		"gmatScore", "gmatQuantScore", "gmatVerbalScore",
		"greScore", "greQuantScore", "greVerbalScore",
		"toeflScore", "ieltsScore",
	}
)

// CompletionScore returns how complete a profile is as a percentage rounded
// to two decimals. brainstorm is the full list of brainstorm questions.
func CompletionScore(p *model.Profile, brainstorm []*model.ProfileQuestion) float64 {
	total := len(scoredPersonalFields)*personalFieldWeight +
		educationWeight + workExperienceWeight +
		len(scoredTestFields)*testScoreWeight +
		len(brainstorm)*brainstormWeight

	earned := 0
	for _, f := range scoredPersonalFields {
		if filled(p.PersonalInfo[f]) {
			earned += personalFieldWeight
		}
	}
	if len(p.Education) > 0 {
		earned += educationWeight
	}
	if len(p.WorkExperience) > 0 {
		earned += workExperienceWeight
	}
	for _, f := range scoredTestFields {
		if filled(p.PersonalInfo[f]) {
			earned += testScoreWeight
		}
	}
	for _, q := range brainstorm {
		if filled(p.Questionnaire[q.ID.String()]) {
			earned += brainstormWeight
		}
	}

	score := float64(earned) / float64(total) * 100
	return math.Round(score*100) / 100
}

func filled(v string) bool {
	return strings.TrimSpace(v) != ""
}
