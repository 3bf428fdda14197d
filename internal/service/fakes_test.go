package service

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/myadmit/admit-backend/internal/billing"
	"github.com/myadmit/admit-backend/internal/model"
	"github.com/myadmit/admit-backend/internal/repository"
)

// ─── Users ─────────────────────────────────────────────────────────────────

type fakeUsers struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*model.User
}

func newFakeUsers(users ...*model.User) *fakeUsers {
	f := &fakeUsers{byID: map[uuid.UUID]*model.User{}}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) find(match func(*model.User) bool) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) update(id uuid.UUID, fn func(*model.User)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(u)
	return nil
}

func (f *fakeUsers) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.ID == id })
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.Email == email })
}

func (f *fakeUsers) GetByVerificationToken(ctx context.Context, token string) (*model.User, error) {
	return f.find(func(u *model.User) bool {
		return u.EmailVerificationToken != nil && *u.EmailVerificationToken == token
	})
}

func (f *fakeUsers) GetByResetToken(ctx context.Context, token string) (*model.User, error) {
	return f.find(func(u *model.User) bool {
		return u.ResetPasswordToken != nil && *u.ResetPasswordToken == token
	})
}

func (f *fakeUsers) Create(ctx context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	cp := *user
	f.byID[user.ID] = &cp
	return nil
}

func (f *fakeUsers) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byID, id)
	return nil
}

func (f *fakeUsers) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	return f.update(id, func(u *model.User) { u.Name = name })
}

func (f *fakeUsers) SetVerificationToken(ctx context.Context, id uuid.UUID, token string) error {
	return f.update(id, func(u *model.User) { u.EmailVerificationToken = &token })
}

func (f *fakeUsers) MarkVerified(ctx context.Context, id uuid.UUID) error {
	return f.update(id, func(u *model.User) {
		u.IsEmailVerified = true
		u.EmailVerificationToken = nil
	})
}

func (f *fakeUsers) SetResetToken(ctx context.Context, id uuid.UUID, token string, expires time.Time) error {
	return f.update(id, func(u *model.User) {
		u.ResetPasswordToken = &token
		u.ResetPasswordExpires = &expires
	})
}

func (f *fakeUsers) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	return f.update(id, func(u *model.User) {
		u.PasswordHash = &hash
		u.ResetPasswordToken = nil
		u.ResetPasswordExpires = nil
	})
}

func (f *fakeUsers) SetCustomerID(ctx context.Context, id uuid.UUID, customerID string) error {
	return f.update(id, func(u *model.User) { u.CustomerID = &customerID })
}

func (f *fakeUsers) SetSubscription(ctx context.Context, id uuid.UUID, subscriptionID *uuid.UUID) error {
	return f.update(id, func(u *model.User) { u.SubscriptionID = subscriptionID })
}

func (f *fakeUsers) SetAdmin(ctx context.Context, email string, isAdmin bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			u.IsAdmin = isAdmin
			return nil
		}
	}
	return repository.ErrNotFound
}

// ─── Profiles ──────────────────────────────────────────────────────────────

type fakeProfiles struct {
	mu       sync.Mutex
	byUserID map[uuid.UUID]*model.Profile
}

func newFakeProfiles(profiles ...*model.Profile) *fakeProfiles {
	f := &fakeProfiles{byUserID: map[uuid.UUID]*model.Profile{}}
	for _, p := range profiles {
		f.byUserID[p.UserID] = p
	}
	return f
}

func (f *fakeProfiles) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byUserID[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) Create(ctx context.Context, profile *model.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byUserID[profile.UserID]; ok {
		return repository.ErrDuplicate
	}
	cp := *profile
	f.byUserID[profile.UserID] = &cp
	return nil
}

func (f *fakeProfiles) Save(ctx context.Context, profile *model.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *profile
	f.byUserID[profile.UserID] = &cp
	return nil
}

func (f *fakeProfiles) Delete(ctx context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byUserID[userID]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byUserID, userID)
	return nil
}

// ─── Catalog ───────────────────────────────────────────────────────────────

type fakePrograms struct {
	byID map[uuid.UUID]*model.Program
}

func newFakePrograms(programs ...*model.Program) *fakePrograms {
	f := &fakePrograms{byID: map[uuid.UUID]*model.Program{}}
	for _, p := range programs {
		f.byID[p.ID] = p
	}
	return f
}

func (f *fakePrograms) GetAll(ctx context.Context) ([]*model.Program, error) {
	out := make([]*model.Program, 0, len(f.byID))
	for _, p := range f.byID {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePrograms) GetByID(ctx context.Context, id uuid.UUID) (*model.Program, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

func (f *fakePrograms) GetByUniversity(ctx context.Context, universityID uuid.UUID) ([]*model.Program, error) {
	var out []*model.Program
	for _, p := range f.byID {
		if p.UniversityID == universityID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePrograms) Create(ctx context.Context, p *model.Program) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	f.byID[p.ID] = p
	return nil
}

func (f *fakePrograms) Update(ctx context.Context, p *model.Program) error {
	if _, ok := f.byID[p.ID]; !ok {
		return repository.ErrNotFound
	}
	f.byID[p.ID] = p
	return nil
}

func (f *fakePrograms) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.byID, id)
	return nil
}

type fakeProfileQuestions struct {
	questions []*model.ProfileQuestion
	sections  []*model.ProfileSection
}

func (f *fakeProfileQuestions) GetAll(ctx context.Context) ([]*model.ProfileQuestion, error) {
	return f.questions, nil
}

func (f *fakeProfileQuestions) GetByID(ctx context.Context, id uuid.UUID) (*model.ProfileQuestion, error) {
	for _, q := range f.questions {
		if q.ID == id {
			return q, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeProfileQuestions) GetByKind(ctx context.Context, kind string) ([]*model.ProfileQuestion, error) {
	var out []*model.ProfileQuestion
	for _, q := range f.questions {
		if q.Kind == kind {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeProfileQuestions) CreateQuestion(ctx context.Context, q *model.ProfileQuestion) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	f.questions = append(f.questions, q)
	return nil
}

func (f *fakeProfileQuestions) ListSections(ctx context.Context) ([]*model.ProfileSection, error) {
	return f.sections, nil
}

func (f *fakeProfileQuestions) CreateSection(ctx context.Context, s *model.ProfileSection) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	f.sections = append(f.sections, s)
	return nil
}

// ─── Applications ──────────────────────────────────────────────────────────

type fakeApplications struct {
	mu         sync.Mutex
	byID       map[uuid.UUID]*model.Application
	generating []bool
	batches    int
}

func newFakeApplications(apps ...*model.Application) *fakeApplications {
	f := &fakeApplications{byID: map[uuid.UUID]*model.Application{}}
	for _, a := range apps {
		if a.Answers == nil {
			a.Answers = map[string]model.Answer{}
		}
		f.byID[a.ID] = a
	}
	return f
}

func (f *fakeApplications) clone(a *model.Application) *model.Application {
	cp := *a
	cp.Questions = append([]model.EssayQuestion(nil), a.Questions...)
	cp.Notes = append([]model.Note(nil), a.Notes...)
	cp.Answers = make(map[string]model.Answer, len(a.Answers))
	for k, v := range a.Answers {
		cp.Answers[k] = v
	}
	return &cp
}

func (f *fakeApplications) Create(ctx context.Context, app *model.Application) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.byID {
		if a.UserID == app.UserID && a.ProgramID == app.ProgramID {
			return repository.ErrDuplicate
		}
	}
	app.ID = uuid.New()
	app.CreatedAt = time.Now().Add(time.Duration(len(f.byID)) * time.Millisecond)
	if app.Answers == nil {
		app.Answers = map[string]model.Answer{}
	}
	f.byID[app.ID] = f.clone(app)
	return nil
}

func (f *fakeApplications) GetByID(ctx context.Context, id uuid.UUID) (*model.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return f.clone(a), nil
}

func (f *fakeApplications) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Application
	for _, a := range f.byID {
		if a.UserID == userID {
			out = append(out, f.clone(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeApplications) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	apps, _ := f.ListByUser(ctx, userID)
	return len(apps), nil
}

func (f *fakeApplications) ExistsForProgram(ctx context.Context, userID, programID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.byID {
		if a.UserID == userID && a.ProgramID == programID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeApplications) Save(ctx context.Context, app *model.Application) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.byID[app.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Questions = append([]model.EssayQuestion(nil), app.Questions...)
	stored.Notes = append([]model.Note(nil), app.Notes...)
	stored.Deadline = app.Deadline
	return nil
}

func (f *fakeApplications) PutAnswer(ctx context.Context, id uuid.UUID, questionID string, answer model.Answer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Answers[questionID] = answer
	return nil
}

func (f *fakeApplications) SetAIAnswer(ctx context.Context, id uuid.UUID, questionID, aiAnswer string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	answer, exists := stored.Answers[questionID]
	if !exists {
		answer.Status = model.StatusNotStarted
	}
	answer.AIAnswer = aiAnswer
	stored.Answers[questionID] = answer
	return nil
}

func (f *fakeApplications) SetAIAnswers(ctx context.Context, id uuid.UUID, aiAnswers map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	f.batches++
	for questionID, aiAnswer := range aiAnswers {
		answer, exists := stored.Answers[questionID]
		if !exists {
			answer.Status = model.StatusNotStarted
		}
		answer.AIAnswer = aiAnswer
		stored.Answers[questionID] = answer
	}
	return nil
}

func (f *fakeApplications) SetGenerating(ctx context.Context, id uuid.UUID, generating bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	stored.IsGenerating = generating
	f.generating = append(f.generating, generating)
	return nil
}

func (f *fakeApplications) ApplyActiveWindow(ctx context.Context, userID uuid.UUID, limit int) error {
	apps, _ := f.ListByUser(ctx, userID)
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, a := range apps {
		f.byID[a.ID].IsActive = i < limit
	}
	return nil
}

func (f *fakeApplications) ListUpcomingDeadlines(ctx context.Context, userID uuid.UUID, from, until time.Time) ([]*model.UpcomingDeadline, error) {
	apps, _ := f.ListByUser(ctx, userID)
	var out []*model.UpcomingDeadline
	for _, a := range apps {
		if a.Deadline == nil || a.Deadline.Date.Before(from) || a.Deadline.Date.After(until) {
			continue
		}
		out = append(out, &model.UpcomingDeadline{ApplicationID: a.ID, Deadline: *a.Deadline})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Deadline.Date.Before(out[j].Deadline.Date) })
	return out, nil
}

// ─── Subscriptions ─────────────────────────────────────────────────────────

type fakeSubscriptions struct {
	byID map[uuid.UUID]*model.Subscription
}

func newFakeSubscriptions(subs ...*model.Subscription) *fakeSubscriptions {
	f := &fakeSubscriptions{byID: map[uuid.UUID]*model.Subscription{}}
	for _, s := range subs {
		f.byID[s.ID] = s
	}
	return f
}

func (f *fakeSubscriptions) GetByID(ctx context.Context, id uuid.UUID) (*model.Subscription, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s, nil
}

func (f *fakeSubscriptions) GetByStripeID(ctx context.Context, stripeID string) (*model.Subscription, error) {
	for _, s := range f.byID {
		if s.StripeSubscriptionID == stripeID {
			return s, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeSubscriptions) Upsert(ctx context.Context, sub *model.Subscription) error {
	if existing, err := f.GetByStripeID(ctx, sub.StripeSubscriptionID); err == nil {
		sub.ID = existing.ID
	} else if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	cp := *sub
	f.byID[sub.ID] = &cp
	return nil
}

func (f *fakeSubscriptions) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	for id, s := range f.byID {
		if s.UserID == userID {
			delete(f.byID, id)
		}
	}
	return nil
}

// ─── Adapters ──────────────────────────────────────────────────────────────

type fakeStore struct {
	mu      sync.Mutex
	objects map[string]string
	deleted []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string]string{}}
}

func (s *fakeStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = string(b)
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *fakeStore) SignedURL(ctx context.Context, key string) (string, error) {
	return "https://signed.example/" + key, nil
}

// scriptedLLM replays replies in order and records every prompt it saw.
type scriptedLLM struct {
	mu      sync.Mutex
	replies []string
	prompts []string
	reply   func(prompt string) string
}

func (l *scriptedLLM) Complete(ctx context.Context, system, prompt string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prompts = append(l.prompts, prompt)
	if l.reply != nil {
		return l.reply(prompt), nil
	}
	if len(l.replies) == 0 {
		return "", io.EOF
	}
	r := l.replies[0]
	l.replies = l.replies[1:]
	return r, nil
}

func (l *scriptedLLM) calls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.prompts)
}

type fakeNotifier struct {
	verifications map[string]string
	resets        map[string]string
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{verifications: map[string]string{}, resets: map[string]string{}}
}

func (n *fakeNotifier) SendVerification(ctx context.Context, to, token string) error {
	n.verifications[to] = token
	return nil
}

func (n *fakeNotifier) SendPasswordReset(ctx context.Context, to, token string) error {
	n.resets[to] = token
	return nil
}

type fakeBilling struct {
	customers map[string]string
	subs      map[string]*billing.Subscription
	portal    []string
	checkout  []string
}

func (b *fakeBilling) FindCustomerByEmail(ctx context.Context, email string) (string, error) {
	id, ok := b.customers[email]
	if !ok {
		return "", billing.ErrCustomerNotFound
	}
	return id, nil
}

func (b *fakeBilling) LatestSubscription(ctx context.Context, customerID string) (*billing.Subscription, error) {
	sub, ok := b.subs[customerID]
	if !ok {
		return nil, billing.ErrSubscriptionNotFound
	}
	return sub, nil
}

func (b *fakeBilling) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	b.portal = append(b.portal, returnURL)
	return "https://billing.example/portal/" + customerID, nil
}

func (b *fakeBilling) CreateCheckoutSession(ctx context.Context, customerID, priceID, successURL, cancelURL string) (string, error) {
	b.checkout = append(b.checkout, successURL, cancelURL)
	return "https://billing.example/checkout/" + priceID, nil
}
