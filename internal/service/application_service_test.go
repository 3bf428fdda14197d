package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/myadmit/admit-backend/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type appFixture struct {
	svc          *ApplicationService
	applications *fakeApplications
	programs     *fakePrograms
	users        *fakeUsers
	subs         *fakeSubscriptions
	user         *model.User
}

func intPtr(v int) *int { return &v }

func newProgram(name string) *model.Program {
	return &model.Program{
		ID:           uuid.New(),
		UniversityID: uuid.New(),
		University:   &model.University{Name: name + " University", Logo: "logos/" + name + ".png"},
		ProgramName:  name,
		ApplicationQuestions: []model.Question{
			{ID: uuid.New(), Question: "Why us?", LimitType: model.LimitWord, LimitValue: intPtr(250), EnableAI: true},
			{ID: uuid.New(), Question: "Anything else?", LimitType: model.LimitNone, EnableAI: false},
		},
		Deadlines: []model.ProgramDeadline{
			{ID: uuid.New(), Name: "Round 1", Date: time.Now().AddDate(0, 0, 10).UTC()},
		},
	}
}

func newAppFixture(t *testing.T, programs ...*model.Program) *appFixture {
	t.Helper()
	user := &model.User{ID: uuid.New(), Email: "app@example.com"}
	f := &appFixture{
		applications: newFakeApplications(),
		programs:     newFakePrograms(programs...),
		users:        newFakeUsers(user),
		subs:         newFakeSubscriptions(),
		user:         user,
	}
	f.svc = NewApplicationService(testConfig(), f.applications, f.programs, f.users, f.subs, newFakeStore(), zerolog.Nop())
	return f
}

func (f *appFixture) subscribe(t *testing.T, plan model.Plan) {
	t.Helper()
	sub := &model.Subscription{ID: uuid.New(), UserID: f.user.ID, SubscriptionType: plan}
	f.subs.byID[sub.ID] = sub
	require.NoError(t, f.users.SetSubscription(context.Background(), f.user.ID, &sub.ID))
}

func TestApplication_CreateCopiesProgramQuestions(t *testing.T) {
	program := newProgram("Wharton")
	f := newAppFixture(t, program)
	ctx := context.Background()

	app, err := f.svc.Create(ctx, f.user.ID, &model.CreateApplicationRequest{
		ProgramID: &program.ID,
		Deadline:  &model.ApplicationDeadlineInput{OriginalDeadlineID: &program.Deadlines[0].ID},
	})
	require.NoError(t, err)
	require.Len(t, app.Questions, 2)
	for i, q := range app.Questions {
		assert.NotEqual(t, program.ApplicationQuestions[i].ID, q.ID)
		require.NotNil(t, q.OriginalQuestionID)
		assert.Equal(t, program.ApplicationQuestions[i].ID, *q.OriginalQuestionID)
		assert.False(t, q.IsCustom)
	}
	require.NotNil(t, app.Deadline)
	assert.Equal(t, "Round 1", app.Deadline.Name)
	assert.False(t, app.Deadline.IsCustom)
}

func TestApplication_CreateErrors(t *testing.T) {
	p1, p2 := newProgram("A"), newProgram("B")
	f := newAppFixture(t, p1, p2)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.user.ID, &model.CreateApplicationRequest{})
	assert.ErrorIs(t, err, ErrProgramRequired)

	missing := uuid.New()
	_, err = f.svc.Create(ctx, f.user.ID, &model.CreateApplicationRequest{ProgramID: &missing})
	assert.ErrorIs(t, err, ErrProgramNotFound)

	bogus := uuid.New()
	_, err = f.svc.Create(ctx, f.user.ID, &model.CreateApplicationRequest{
		ProgramID: &p1.ID,
		Deadline:  &model.ApplicationDeadlineInput{OriginalDeadlineID: &bogus},
	})
	assert.ErrorIs(t, err, ErrInvalidDeadline)

	_, err = f.svc.Create(ctx, f.user.ID, &model.CreateApplicationRequest{ProgramID: &p1.ID})
	require.NoError(t, err)

	// Free plan allows one application.
	_, err = f.svc.Create(ctx, f.user.ID, &model.CreateApplicationRequest{ProgramID: &p2.ID})
	assert.ErrorIs(t, err, ErrApplicationLimit)

	f.subscribe(t, model.PlanStandard)
	_, err = f.svc.Create(ctx, f.user.ID, &model.CreateApplicationRequest{ProgramID: &p1.ID})
	assert.ErrorIs(t, err, ErrApplicationExists)
	_, err = f.svc.Create(ctx, f.user.ID, &model.CreateApplicationRequest{ProgramID: &p2.ID})
	assert.NoError(t, err)
}

func TestApplication_ListSummarizesInactive(t *testing.T) {
	p1, p2 := newProgram("A"), newProgram("B")
	f := newAppFixture(t, p1, p2)
	ctx := context.Background()
	f.subscribe(t, model.PlanStandard)

	first, err := f.svc.Create(ctx, f.user.ID, &model.CreateApplicationRequest{ProgramID: &p1.ID})
	require.NoError(t, err)
	second, err := f.svc.Create(ctx, f.user.ID, &model.CreateApplicationRequest{ProgramID: &p2.ID})
	require.NoError(t, err)

	// Downgrade: only the oldest stays active.
	require.NoError(t, f.users.SetSubscription(ctx, f.user.ID, nil))

	list, err := f.svc.List(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	full, ok := list[0].(*model.Application)
	require.True(t, ok)
	assert.Equal(t, first.ID, full.ID)
	require.NotNil(t, full.Program.University.LogoURL)
	assert.Equal(t, "https://signed.example/logos/A.png", *full.Program.University.LogoURL)

	summary, ok := list[1].(model.ApplicationSummary)
	require.True(t, ok)
	assert.Equal(t, second.ID, summary.ID)
	assert.Equal(t, "B", summary.ProgramName)
	assert.False(t, summary.IsActive)

	_, err = f.svc.Get(ctx, f.user.ID, second.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	// Notes stay reachable on inactive applications.
	_, err = f.svc.AddNote(ctx, f.user.ID, second.ID, "call admissions")
	assert.NoError(t, err)
}

func TestApplication_Ownership(t *testing.T) {
	program := newProgram("A")
	f := newAppFixture(t, program)
	ctx := context.Background()
	app, err := f.svc.Create(ctx, f.user.ID, &model.CreateApplicationRequest{ProgramID: &program.ID})
	require.NoError(t, err)

	stranger := &model.User{ID: uuid.New(), Email: "x@example.com"}
	require.NoError(t, f.users.Create(ctx, stranger))

	_, err = f.svc.Get(ctx, stranger.ID, app.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.ListNotes(ctx, stranger.ID, app.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.Get(ctx, f.user.ID, uuid.New())
	assert.ErrorIs(t, err, ErrApplicationNotFound)
}

func TestApplication_CustomQuestions(t *testing.T) {
	program := newProgram("A")
	f := newAppFixture(t, program)
	ctx := context.Background()
	app, err := f.svc.Create(ctx, f.user.ID, &model.CreateApplicationRequest{ProgramID: &program.ID})
	require.NoError(t, err)

	_, err = f.svc.AddQuestion(ctx, f.user.ID, app.ID, &model.ApplicationQuestionInput{
		Question: "Goals?", LimitType: model.LimitWord,
	})
	assert.ErrorIs(t, err, ErrInvalidQuestion)

	q, err := f.svc.AddQuestion(ctx, f.user.ID, app.ID, &model.ApplicationQuestionInput{Question: " Goals? "})
	require.NoError(t, err)
	assert.True(t, q.IsCustom)
	assert.True(t, q.EnableAI)
	assert.Equal(t, model.LimitNone, q.LimitType)
	assert.Equal(t, "Goals?", q.Question.Question)

	disabled := false
	updated, err := f.svc.UpdateQuestion(ctx, f.user.ID, app.ID, q.ID, &model.ApplicationQuestionInput{
		LimitType: model.LimitChar, LimitValue: intPtr(500), EnableAI: &disabled,
	})
	require.NoError(t, err)
	assert.Equal(t, model.LimitChar, updated.LimitType)
	assert.False(t, updated.EnableAI)

	questions, err := f.svc.ListQuestions(ctx, f.user.ID, app.ID)
	require.NoError(t, err)
	assert.Len(t, questions, 3)

	assert.ErrorIs(t, f.svc.DeleteQuestion(ctx, f.user.ID, app.ID, questions[0].ID), ErrOnlyCustomDeletable)
	require.NoError(t, f.svc.DeleteQuestion(ctx, f.user.ID, app.ID, q.ID))
	_, err = f.svc.GetQuestion(ctx, f.user.ID, app.ID, q.ID)
	assert.ErrorIs(t, err, ErrQuestionNotFound)
}

func TestApplication_Answers(t *testing.T) {
	program := newProgram("A")
	f := newAppFixture(t, program)
	ctx := context.Background()
	app, err := f.svc.Create(ctx, f.user.ID, &model.CreateApplicationRequest{ProgramID: &program.ID})
	require.NoError(t, err)
	qid := app.Questions[0].ID

	ans, err := f.svc.UpdateFinalAnswer(ctx, f.user.ID, app.ID, qid, "Draft")
	require.NoError(t, err)
	assert.Equal(t, model.StatusStarted, ans.Status)

	ans, err = f.svc.UpdateAnswerStatus(ctx, f.user.ID, app.ID, qid, model.StatusFinished)
	require.NoError(t, err)
	assert.Equal(t, model.StatusFinished, ans.Status)

	ans, err = f.svc.UpdateFinalAnswer(ctx, f.user.ID, app.ID, qid, "")
	require.NoError(t, err)
	assert.Equal(t, model.StatusFinished, ans.Status)
	assert.Equal(t, "", ans.FinalAnswer)

	_, err = f.svc.UpdateAnswerStatus(ctx, f.user.ID, app.ID, qid, "done")
	assert.ErrorIs(t, err, ErrInvalidAnswerStatus)
	_, err = f.svc.UpdateFinalAnswer(ctx, f.user.ID, app.ID, uuid.New(), "x")
	assert.ErrorIs(t, err, ErrQuestionNotFound)
}

func TestApplication_Notes(t *testing.T) {
	program := newProgram("A")
	f := newAppFixture(t, program)
	ctx := context.Background()
	app, err := f.svc.Create(ctx, f.user.ID, &model.CreateApplicationRequest{ProgramID: &program.ID})
	require.NoError(t, err)

	_, err = f.svc.AddNote(ctx, f.user.ID, app.ID, "   ")
	assert.ErrorIs(t, err, ErrInvalidNote)
	long := make([]rune, maxNoteLength+1)
	for i := range long {
		long[i] = 'é'
	}
	_, err = f.svc.AddNote(ctx, f.user.ID, app.ID, string(long))
	assert.ErrorIs(t, err, ErrInvalidNote)

	note, err := f.svc.AddNote(ctx, f.user.ID, app.ID, "Ask about scholarships")
	require.NoError(t, err)

	updated, err := f.svc.UpdateNote(ctx, f.user.ID, app.ID, note.ID, "Ask about fellowships")
	require.NoError(t, err)
	assert.Equal(t, "Ask about fellowships", updated.Content)

	_, err = f.svc.UpdateNote(ctx, f.user.ID, app.ID, uuid.New(), "x")
	assert.ErrorIs(t, err, ErrNoteNotFound)

	require.NoError(t, f.svc.DeleteNote(ctx, f.user.ID, app.ID, note.ID))
	notes, err := f.svc.ListNotes(ctx, f.user.ID, app.ID)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestApplication_Deadlines(t *testing.T) {
	program := newProgram("A")
	f := newAppFixture(t, program)
	ctx := context.Background()
	app, err := f.svc.Create(ctx, f.user.ID, &model.CreateApplicationRequest{ProgramID: &program.ID})
	require.NoError(t, err)
	assert.Nil(t, app.Deadline)

	_, err = f.svc.UpdateDeadline(ctx, f.user.ID, app.ID, &model.ApplicationDeadlineInput{Name: "Custom"})
	assert.ErrorIs(t, err, ErrInvalidDeadline)

	soon := time.Now().AddDate(0, 0, 5)
	d, err := f.svc.UpdateDeadline(ctx, f.user.ID, app.ID, &model.ApplicationDeadlineInput{Name: "Custom", Date: &soon})
	require.NoError(t, err)
	assert.True(t, d.IsCustom)

	upcoming, err := f.svc.UpcomingDeadlines(ctx, f.user.ID, 0)
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, app.ID, upcoming[0].ApplicationID)

	upcoming, err = f.svc.UpcomingDeadlines(ctx, f.user.ID, 2)
	require.NoError(t, err)
	assert.Empty(t, upcoming)

	require.NoError(t, f.svc.RemoveDeadline(ctx, f.user.ID, app.ID))
	upcoming, _ = f.svc.UpcomingDeadlines(ctx, f.user.ID, 30)
	assert.Empty(t, upcoming)
}
