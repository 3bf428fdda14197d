package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSchoolLists(t *testing.T) {
	reply := `Here you go:

 REACH:
 Harvard Business School
 Stanford GSB

TARGET:
 Ross

SAFETY:
  Kelley
`
	lists := parseSchoolLists(reply)
	assert.Equal(t, []string{"Harvard Business School", "Stanford GSB"}, lists.Reach)
	assert.Equal(t, []string{"Ross"}, lists.Target)
	assert.Equal(t, []string{"Kelley"}, lists.Safety)

	assert.True(t, parseSchoolLists("no headers at all").empty())
}

func TestRecommendation_Recommend(t *testing.T) {
	pf := newProfileFixture(t)
	l := &scriptedLLM{}
	svc := NewRecommendationService(l, pf.svc, zerolog.Nop())
	ctx := context.Background()

	_, err := svc.Recommend(ctx, pf.user.ID, "Consulting")
	assert.ErrorIs(t, err, ErrResumeRequired)

	require.NoError(t, pf.svc.SetResumeText(ctx, pf.user.ID, pf.user.Email, "Analyst at a bank"))

	l.replies = []string{"Sorry, I cannot help."}
	_, err = svc.Recommend(ctx, pf.user.ID, "")
	assert.ErrorIs(t, err, ErrNoRecommendations)
	assert.Contains(t, l.prompts[0], "Not provided")
	assert.Contains(t, l.prompts[0], "Analyst at a bank")

	l.replies = []string{"REACH:\nWharton\nTARGET:\nFuqua\nSAFETY:\nOlin"}
	lists, err := svc.Recommend(ctx, pf.user.ID, "Consulting")
	require.NoError(t, err)
	assert.Equal(t, []string{"Wharton"}, lists.Reach)
	assert.Contains(t, l.prompts[1], "Consulting")
}

func TestRecommendation_Extract(t *testing.T) {
	l := &scriptedLLM{}
	svc := NewRecommendationService(l, nil, zerolog.Nop())
	ctx := context.Background()

	_, err := svc.Extract(ctx, " ")
	assert.ErrorIs(t, err, ErrTextRequired)

	l.replies = []string{"```json\n{\"FirstName\": \"Ada\"}\n```"}
	out, err := svc.Extract(ctx, "Ada Lovelace, engineer")
	require.NoError(t, err)
	assert.Equal(t, "Ada", out["FirstName"])

	l.replies = []string{`{"FirstName": "Ada"}`}
	out, err = svc.Extract(ctx, "Ada Lovelace, engineer")
	require.NoError(t, err)
	assert.Empty(t, out)
}
