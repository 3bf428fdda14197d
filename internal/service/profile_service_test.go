package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/myadmit/admit-backend/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompletionScore(t *testing.T) {
	q1 := &model.ProfileQuestion{ID: uuid.New(), Kind: model.ProfileQuestionKindBrainstorm}
	q2 := &model.ProfileQuestion{ID: uuid.New(), Kind: model.ProfileQuestionKindBrainstorm}
	brainstorm := []*model.ProfileQuestion{q1, q2}

	empty := model.NewProfile(uuid.New(), "a@example.com")
	assert.Equal(t, 0.0, CompletionScore(empty, brainstorm))

	full := model.NewProfile(uuid.New(), "a@example.com")
	for _, f := range scoredPersonalFields {
		full.PersonalInfo[f] = "x"
	}
	for _, f := range scoredTestFields {
		full.PersonalInfo[f] = "1"
	}
	full.Education = []model.Education{{UniversityName: "MIT"}}
	full.WorkExperience = []model.WorkExperience{{Company: "Acme"}}
	full.Questionnaire[q1.ID.String()] = "answer"
	full.Questionnaire[q2.ID.String()] = "answer"
	assert.Equal(t, 100.0, CompletionScore(full, brainstorm))

	// 4 personal fields of 86 total points.
	partial := model.NewProfile(uuid.New(), "a@example.com")
	for _, f := range scoredPersonalFields {
		partial.PersonalInfo[f] = "x"
	}
	partial.Questionnaire[q1.ID.String()] = "   "
	assert.Equal(t, 23.26, CompletionScore(partial, brainstorm))
}

type profileFixture struct {
	svc       *ProfileService
	profiles  *fakeProfiles
	users     *fakeUsers
	questions *fakeProfileQuestions
	store     *fakeStore
	user      *model.User
}

func newProfileFixture(t *testing.T) *profileFixture {
	t.Helper()
	user := &model.User{ID: uuid.New(), Name: "Old Name", Email: "p@example.com"}
	f := &profileFixture{
		profiles: newFakeProfiles(),
		users:    newFakeUsers(user),
		questions: &fakeProfileQuestions{questions: []*model.ProfileQuestion{
			{ID: uuid.New(), Question: "Why MBA?", Kind: model.ProfileQuestionKindBrainstorm},
		}},
		store: newFakeStore(),
		user:  user,
	}
	f.svc = NewProfileService(f.profiles, f.users, f.questions, f.store, zerolog.Nop())
	return f
}

func TestProfile_GetMissing(t *testing.T) {
	f := newProfileFixture(t)
	_, err := f.svc.Get(context.Background(), f.user.ID)
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestProfile_SaveAnswerUpdatesScore(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()
	qid := f.questions.questions[0].ID.String()

	profile, err := f.svc.SaveAnswer(ctx, f.user.ID, f.user.Email, &model.ProfileAnswerRequest{QuestionID: qid, Answer: "Leadership"})
	require.NoError(t, err)
	assert.Equal(t, "Leadership", profile.Questionnaire[qid])
	assert.Greater(t, profile.CompletionScore, 0.0)

	stored, err := f.profiles.GetByUserID(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, profile.CompletionScore, stored.CompletionScore)
}

func TestProfile_UpdatePersonal(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()

	err := f.svc.UpdatePersonal(ctx, f.user.ID, f.user.Email, &model.PersonalProfileRequest{
		PersonalInfo: map[string]string{"firstName": "Jane", "lastName": "Doe", "phone": ""},
		Address:      &model.AddressInput{Country: "US", State: "CA", ZipCode: "94000"},
		Education: []model.Education{
			{UniversityName: " Stanford "},
			{UniversityName: ""},
		},
		WorkExperience: []model.WorkExperience{{Company: "Acme"}, {Role: "ghost"}},
	})
	require.NoError(t, err)

	personal, err := f.svc.GetPersonal(ctx, f.user.ID, f.user.Email)
	require.NoError(t, err)
	assert.Equal(t, "Jane", personal.PersonalInfo["firstName"])
	assert.Equal(t, "CA", personal.PersonalInfo["region"])
	assert.Equal(t, "94000", personal.PersonalInfo["postalCode"])
	assert.NotContains(t, personal.PersonalInfo, "phone")
	require.Len(t, personal.Education, 1)
	assert.Equal(t, "Stanford", personal.Education[0].UniversityName)
	require.Len(t, personal.WorkExperience, 1)
	assert.Equal(t, "N/A", personal.WorkExperience[0].Role)

	user, _ := f.users.GetByID(ctx, f.user.ID)
	assert.Equal(t, "Jane Doe", user.Name)

	// Lists are kept when omitted.
	require.NoError(t, f.svc.UpdatePersonal(ctx, f.user.ID, f.user.Email, &model.PersonalProfileRequest{
		PersonalInfo: map[string]string{"city": "Palo Alto"},
	}))
	personal, _ = f.svc.GetPersonal(ctx, f.user.ID, f.user.Email)
	assert.Len(t, personal.Education, 1)
	assert.Equal(t, "Palo Alto", personal.PersonalInfo["city"])
}

func TestProfile_ResumeText(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()

	text, err := f.svc.GetResumeText(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Nil(t, text)

	require.NoError(t, f.svc.SetResumeText(ctx, f.user.ID, f.user.Email, "Ten years in finance"))
	text, err = f.svc.GetResumeText(ctx, f.user.ID)
	require.NoError(t, err)
	require.NotNil(t, text)
	assert.Equal(t, "Ten years in finance", *text)
}
