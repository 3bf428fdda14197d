package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/myadmit/admit-backend/internal/config"
	"github.com/myadmit/admit-backend/internal/model"
	ws "github.com/myadmit/admit-backend/internal/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type essayFixture struct {
	svc          *EssayService
	llm          *scriptedLLM
	mock         redismock.ClientMock
	applications *fakeApplications
	app          *model.Application
	user         *model.User
}

func newEssayFixture(t *testing.T, questions ...model.EssayQuestion) *essayFixture {
	t.Helper()
	rdb, mock := redismock.NewClientMock()
	mock.MatchExpectationsInOrder(false)

	user := &model.User{ID: uuid.New(), Email: "essay@example.com"}
	program := newProgram("Kellogg")
	app := &model.Application{
		ID:        uuid.New(),
		UserID:    user.ID,
		ProgramID: program.ID,
		Program:   program,
		Questions: questions,
		IsActive:  true,
	}

	profile := model.NewProfile(user.ID, user.Email)
	profile.PersonalInfo["firstName"] = "Sam"
	brainstorm := &model.ProfileQuestion{ID: uuid.New(), Question: "Proudest moment?", Kind: model.ProfileQuestionKindBrainstorm}
	profile.Questionnaire[brainstorm.ID.String()] = "Shipping a product"

	users := newFakeUsers(user)
	applications := newFakeApplications(app)
	profiles := newFakeProfiles(profile)
	questionsRepo := &fakeProfileQuestions{questions: []*model.ProfileQuestion{brainstorm}}
	cfg := testConfig()

	apps := NewApplicationService(cfg, applications, newFakePrograms(program), users, newFakeSubscriptions(), newFakeStore(), zerolog.Nop())
	l := &scriptedLLM{}
	return &essayFixture{
		svc:          NewEssayService(cfg, rdb, l, apps, applications, profiles, questionsRepo, zerolog.Nop()),
		llm:          l,
		mock:         mock,
		applications: applications,
		app:          app,
		user:         user,
	}
}

func aiEnabled(text string, limit int) model.EssayQuestion {
	return model.EssayQuestion{Question: model.Question{
		ID: uuid.New(), Question: text, LimitType: model.LimitWord, LimitValue: intPtr(limit), EnableAI: true,
	}}
}

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func TestEssay_GenerateWritesEveryAIAnswer(t *testing.T) {
	q1, q2 := aiEnabled("Why MBA?", 5), aiEnabled("Leadership?", 5)
	manual := model.EssayQuestion{Question: model.Question{ID: uuid.New(), Question: "Manual", LimitType: model.LimitNone}}
	f := newEssayFixture(t, q1, q2, manual)

	f.llm.reply = func(prompt string) string {
		if strings.HasPrefix(prompt, "Give pointers.") {
			return fmt.Sprintf("```json\n{%q: {\"pointers\": [\"a\"], \"wordLimit\": 5}, %q: {\"pointers\": [\"b\"], \"wordLimit\": \"5\"}}\n```",
				q1.ID.String(), q2.ID.String())
		}
		return `{"essay": "` + words(5) + `"}`
	}

	lockKey := "application:" + f.app.ID.String() + ":generating"
	f.mock.ExpectSetNX(lockKey, f.user.ID.String(), testConfig().GenerationTTL).SetVal(true)
	f.mock.ExpectDel(lockKey).SetVal(1)

	res, err := f.svc.Generate(context.Background(), f.user.ID, f.app.ID)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Len(t, res.Answers, 2)
	assert.Equal(t, 3, f.llm.calls())

	stored, _ := f.applications.GetByID(context.Background(), f.app.ID)
	assert.Equal(t, words(5), stored.Answers[q1.ID.String()].AIAnswer)
	assert.Equal(t, words(5), stored.Answers[q2.ID.String()].AIAnswer)
	assert.NotContains(t, stored.Answers, manual.ID.String())
	assert.False(t, stored.IsGenerating)
	assert.Equal(t, []bool{true, false}, f.applications.generating)

	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestEssay_GenerateLockHeld(t *testing.T) {
	f := newEssayFixture(t, aiEnabled("Why MBA?", 5))
	lockKey := "application:" + f.app.ID.String() + ":generating"
	f.mock.ExpectSetNX(lockKey, f.user.ID.String(), testConfig().GenerationTTL).SetVal(false)

	_, err := f.svc.Generate(context.Background(), f.user.ID, f.app.ID)
	assert.ErrorIs(t, err, ErrGenerationInProgress)
	assert.Empty(t, f.applications.generating)
	assert.Equal(t, 0, f.llm.calls())
}

func TestEssay_GenerateWithoutAIQuestions(t *testing.T) {
	manual := model.EssayQuestion{Question: model.Question{ID: uuid.New(), Question: "Manual", LimitType: model.LimitNone}}
	f := newEssayFixture(t, manual)
	lockKey := "application:" + f.app.ID.String() + ":generating"
	f.mock.ExpectSetNX(lockKey, f.user.ID.String(), testConfig().GenerationTTL).SetVal(true)
	f.mock.ExpectDel(lockKey).SetVal(1)

	_, err := f.svc.Generate(context.Background(), f.user.ID, f.app.ID)
	assert.ErrorIs(t, err, ErrNoAIQuestions)
	assert.Equal(t, []bool{true, false}, f.applications.generating)
}

func TestEssay_GenerateFailureResetsFlag(t *testing.T) {
	f := newEssayFixture(t, aiEnabled("Why MBA?", 5))
	f.llm.replies = []string{"no json", "still none", "nope"}
	lockKey := "application:" + f.app.ID.String() + ":generating"
	f.mock.ExpectSetNX(lockKey, f.user.ID.String(), testConfig().GenerationTTL).SetVal(true)
	f.mock.ExpectDel(lockKey).SetVal(1)

	_, err := f.svc.Generate(context.Background(), f.user.ID, f.app.ID)
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.Equal(t, []bool{true, false}, f.applications.generating)
}

func TestEssay_PointersRetryUntilComplete(t *testing.T) {
	qa, qb := aiQuestion{QuestionID: "a"}, aiQuestion{QuestionID: "b"}
	l := &scriptedLLM{replies: []string{
		"I cannot answer in JSON",
		`{"a": {"pointers": ["x"]}, "b": {"pointers": []}}`,
		`{"a": {"pointers": ["x"]}, "b": {"pointers": ["y"]}}`,
	}}
	svc := &EssayService{llm: l, log: zerolog.Nop()}

	sets, err := svc.pointers(context.Background(), "base", []aiQuestion{qa, qb})
	require.NoError(t, err)
	assert.True(t, sets["b"].hasPointers())
	require.Equal(t, 3, l.calls())
	assert.NotContains(t, l.prompts[1], missingPointersNote)
	assert.Contains(t, l.prompts[2], missingPointersNote)
}

func TestEssay_PointersAcceptPartialAfterRetries(t *testing.T) {
	partial := `{"a": {"pointers": ["x"]}}`
	l := &scriptedLLM{replies: []string{partial, partial, partial, partial}}
	svc := &EssayService{llm: l, log: zerolog.Nop()}

	sets, err := svc.pointers(context.Background(), "base", []aiQuestion{{QuestionID: "a"}, {QuestionID: "b"}})
	require.NoError(t, err)
	assert.False(t, sets["b"].hasPointers())
	assert.Equal(t, maxPointerAttempts, l.calls())
}

func TestEssay_PointersGiveUpOnGarbage(t *testing.T) {
	l := &scriptedLLM{replies: []string{"a", "b", "c", "d"}}
	svc := &EssayService{llm: l, log: zerolog.Nop()}

	_, err := svc.pointers(context.Background(), "base", []aiQuestion{{QuestionID: "a"}})
	assert.ErrorIs(t, err, ErrInvalidAIResponse)
	assert.Equal(t, maxParseAttempts, l.calls())
}

func TestEssay_WordLimitRegeneratesOnce(t *testing.T) {
	long := `{"essay": "` + words(12) + `"}`
	l := &scriptedLLM{replies: []string{long, long, long}}
	svc := &EssayService{llm: l, log: zerolog.Nop()}

	essay, err := svc.essay(context.Background(), "prompt", 10)
	require.NoError(t, err)
	assert.Equal(t, words(12), essay)
	assert.Equal(t, 2, l.calls())

	l = &scriptedLLM{replies: []string{`{"essay": "` + words(9) + `"}`}}
	svc.llm = l
	essay, err = svc.essay(context.Background(), "prompt", 10)
	require.NoError(t, err)
	assert.Equal(t, words(9), essay)
	assert.Equal(t, 1, l.calls())
}

func TestEssay_Refine(t *testing.T) {
	q := aiEnabled("Why MBA?", 100)
	f := newEssayFixture(t, q)
	ctx := context.Background()

	_, err := f.svc.Refine(ctx, f.user.ID, f.app.ID, q.ID, "shorter")
	assert.ErrorIs(t, err, ErrAnswerNotFound)

	require.NoError(t, f.applications.PutAnswer(ctx, f.app.ID, q.ID.String(), model.Answer{
		AIAnswer: "old draft", FinalAnswer: "mine", Status: model.StatusStarted,
	}))
	f.llm.replies = []string{"```json\n{\"refinedAnswer\": \"new draft\"}\n```"}

	refined, err := f.svc.Refine(ctx, f.user.ID, f.app.ID, q.ID, "shorter")
	require.NoError(t, err)
	assert.Equal(t, "new draft", refined)
	assert.Contains(t, f.llm.prompts[0], "old draft")
	assert.Contains(t, f.llm.prompts[0], "Shipping a product")

	stored, _ := f.applications.GetByID(ctx, f.app.ID)
	answer := stored.Answers[q.ID.String()]
	assert.Equal(t, "new draft", answer.AIAnswer)
	assert.Equal(t, "mine", answer.FinalAnswer)
}

func TestEssay_Suggestions(t *testing.T) {
	q := aiEnabled("Why MBA?", 100)
	f := newEssayFixture(t, q)
	ctx := context.Background()

	f.llm.replies = []string{`{"suggestions": ["Be specific", "Cut filler"]}`}
	out, err := f.svc.Suggestions(ctx, f.user.ID, f.app.ID, q.ID, "my answer")
	require.NoError(t, err)
	assert.Equal(t, []string{"Be specific", "Cut filler"}, out)
	assert.Contains(t, f.llm.prompts[0], "Word Limit: 100")

	f.llm.replies = []string{`{"suggestions": []}`}
	_, err = f.svc.Suggestions(ctx, f.user.ID, f.app.ID, q.ID, "my answer")
	assert.ErrorIs(t, err, ErrInvalidAIResponse)

	_, err = f.svc.Suggestions(ctx, f.user.ID, f.app.ID, uuid.New(), "my answer")
	assert.ErrorIs(t, err, ErrQuestionNotFound)
}

func TestEssay_FailedRunKeepsStoredDrafts(t *testing.T) {
	q1, q2 := aiEnabled("Why MBA?", 5), aiEnabled("Leadership?", 5)
	f := newEssayFixture(t, q1, q2)
	ctx := context.Background()
	require.NoError(t, f.applications.PutAnswer(ctx, f.app.ID, q1.ID.String(), model.Answer{
		AIAnswer: "previous draft", FinalAnswer: "mine", Status: model.StatusStarted,
	}))

	f.llm.reply = func(prompt string) string {
		switch {
		case strings.HasPrefix(prompt, "Give pointers."):
			return fmt.Sprintf(`{%q: {"pointers": ["a"], "wordLimit": 5}, %q: {"pointers": ["b"], "wordLimit": 5}}`,
				q1.ID.String(), q2.ID.String())
		case strings.Contains(prompt, `"Leadership?"`):
			return "Sorry, I can't help with that."
		default:
			return `{"essay": "` + words(5) + `"}`
		}
	}

	lockKey := "application:" + f.app.ID.String() + ":generating"
	f.mock.ExpectSetNX(lockKey, f.user.ID.String(), testConfig().GenerationTTL).SetVal(true)
	f.mock.ExpectDel(lockKey).SetVal(1)

	_, err := f.svc.Generate(ctx, f.user.ID, f.app.ID)
	require.ErrorIs(t, err, ErrGenerationFailed)
	assert.ErrorIs(t, err, ErrInvalidAIResponse)

	garbage := 0
	for _, p := range f.llm.prompts {
		if !strings.HasPrefix(p, "Give pointers.") && strings.Contains(p, `"Leadership?"`) {
			garbage++
		}
	}
	assert.Equal(t, maxParseAttempts, garbage)

	stored, _ := f.applications.GetByID(ctx, f.app.ID)
	assert.Equal(t, "previous draft", stored.Answers[q1.ID.String()].AIAnswer)
	assert.Equal(t, "mine", stored.Answers[q1.ID.String()].FinalAnswer)
	assert.NotContains(t, stored.Answers, q2.ID.String())
	assert.Zero(t, f.applications.batches)
}

func generationPayload(t *testing.T, evt ws.GenerationEvent) []byte {
	t.Helper()
	b, err := json.Marshal(evt)
	require.NoError(t, err)
	return b
}

func TestEssay_GeneratePublishesProgress(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		q := aiEnabled("Why MBA?", 5)
		f := newEssayFixture(t, q)
		f.llm.reply = func(prompt string) string {
			if strings.HasPrefix(prompt, "Give pointers.") {
				return fmt.Sprintf(`{%q: {"pointers": ["a"], "wordLimit": 5}}`, q.ID.String())
			}
			return `{"essay": "` + words(5) + `"}`
		}

		appID := f.app.ID.String()
		channel := config.CacheKey.GenerationChannel(appID)
		lockKey := config.CacheKey.GenerationLockKey(appID)
		f.mock.ExpectSetNX(lockKey, f.user.ID.String(), testConfig().GenerationTTL).SetVal(true)
		for _, evt := range []ws.GenerationEvent{
			{Event: ws.EventStarted, ApplicationID: appID, Total: 1},
			{Event: ws.EventPointersReady, ApplicationID: appID, Total: 1},
			{Event: ws.EventAnswerReady, ApplicationID: appID, QuestionID: q.ID.String(), Completed: 1, Total: 1},
			{Event: ws.EventCompleted, ApplicationID: appID, Completed: 1, Total: 1},
		} {
			f.mock.ExpectPublish(channel, generationPayload(t, evt)).SetVal(1)
		}
		f.mock.ExpectDel(lockKey).SetVal(1)

		_, err := f.svc.Generate(context.Background(), f.user.ID, f.app.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, f.applications.batches)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("failure", func(t *testing.T) {
		f := newEssayFixture(t, aiEnabled("Why MBA?", 5))
		f.llm.replies = []string{"no json", "still none", "nope"}

		appID := f.app.ID.String()
		channel := config.CacheKey.GenerationChannel(appID)
		lockKey := config.CacheKey.GenerationLockKey(appID)
		cause := fmt.Errorf("fetch pointers: %w", ErrInvalidAIResponse)
		f.mock.ExpectSetNX(lockKey, f.user.ID.String(), testConfig().GenerationTTL).SetVal(true)
		f.mock.ExpectPublish(channel, generationPayload(t, ws.GenerationEvent{Event: ws.EventStarted, ApplicationID: appID, Total: 1})).SetVal(1)
		f.mock.ExpectPublish(channel, generationPayload(t, ws.GenerationEvent{Event: ws.EventFailed, ApplicationID: appID, Message: cause.Error()})).SetVal(1)
		f.mock.ExpectDel(lockKey).SetVal(1)

		_, err := f.svc.Generate(context.Background(), f.user.ID, f.app.ID)
		assert.ErrorIs(t, err, ErrGenerationFailed)
		assert.ErrorIs(t, err, ErrInvalidAIResponse)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})
}

func TestEssay_EssayGivesUpOnGarbage(t *testing.T) {
	l := &scriptedLLM{replies: []string{"not json", `{"essay": "   "}`, `{"draft": "wrong key"}`, `{"essay": "late"}`}}
	svc := &EssayService{llm: l, log: zerolog.Nop()}

	_, err := svc.essay(context.Background(), "prompt", 10)
	assert.ErrorIs(t, err, ErrInvalidAIResponse)
	assert.Equal(t, maxParseAttempts, l.calls())
}

// gatedLLM holds every essay call until the test releases them and records
// the highest number of calls in flight at once.
type gatedLLM struct {
	mu       sync.Mutex
	inFlight int
	peak     int
	target   int
	reached  chan struct{}
	release  chan struct{}
	pointers string
}

func (l *gatedLLM) Complete(ctx context.Context, system, prompt string) (string, error) {
	if strings.HasPrefix(prompt, "Give pointers.") {
		return l.pointers, nil
	}

	l.mu.Lock()
	l.inFlight++
	if l.inFlight > l.peak {
		l.peak = l.inFlight
	}
	if l.inFlight == l.target {
		select {
		case <-l.reached:
		default:
			close(l.reached)
		}
	}
	l.mu.Unlock()

	<-l.release

	l.mu.Lock()
	l.inFlight--
	l.mu.Unlock()
	return `{"essay": "` + words(5) + `"}`, nil
}

func TestEssay_GenerateRespectsConcurrencyLimit(t *testing.T) {
	questions := make([]model.EssayQuestion, 5)
	sets := make([]string, len(questions))
	for i := range questions {
		questions[i] = aiEnabled(fmt.Sprintf("Question %d?", i), 5)
		sets[i] = fmt.Sprintf(`%q: {"pointers": ["p"], "wordLimit": 5}`, questions[i].ID.String())
	}
	f := newEssayFixture(t, questions...)
	limit := testConfig().AIMaxConcurrency

	gate := &gatedLLM{
		target:   limit,
		reached:  make(chan struct{}),
		release:  make(chan struct{}),
		pointers: "{" + strings.Join(sets, ",") + "}",
	}
	f.svc.llm = gate

	lockKey := config.CacheKey.GenerationLockKey(f.app.ID.String())
	f.mock.ExpectSetNX(lockKey, f.user.ID.String(), testConfig().GenerationTTL).SetVal(true)
	f.mock.ExpectDel(lockKey).SetVal(1)

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.Generate(context.Background(), f.user.ID, f.app.ID)
		done <- err
	}()

	select {
	case <-gate.reached:
	case <-time.After(2 * time.Second):
		close(gate.release)
		t.Fatal("essay calls never reached the concurrency limit")
	}
	// Give any goroutine that slipped past the limit time to register.
	time.Sleep(50 * time.Millisecond)
	close(gate.release)

	require.NoError(t, <-done)
	gate.mu.Lock()
	defer gate.mu.Unlock()
	assert.Equal(t, limit, gate.peak)

	stored, _ := f.applications.GetByID(context.Background(), f.app.ID)
	assert.Len(t, stored.Answers, len(questions))
}
