package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/myadmit/admit-backend/internal/model"
	"github.com/myadmit/admit-backend/internal/repository"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUniversities struct {
	list  []*model.University
	reads int
}

func (f *fakeUniversities) GetAll(ctx context.Context) ([]*model.University, error) {
	f.reads++
	return f.list, nil
}

func (f *fakeUniversities) GetByID(ctx context.Context, id uuid.UUID) (*model.University, error) {
	for _, u := range f.list {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUniversities) GetByName(ctx context.Context, name string) (*model.University, error) {
	for _, u := range f.list {
		if u.Name == name {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUniversities) Create(ctx context.Context, u *model.University) error {
	for _, existing := range f.list {
		if existing.Name == u.Name {
			return repository.ErrDuplicate
		}
	}
	u.ID = uuid.New()
	f.list = append(f.list, u)
	return nil
}

func (f *fakeUniversities) Update(ctx context.Context, u *model.University) error { return nil }

func (f *fakeUniversities) Delete(ctx context.Context, id uuid.UUID) error {
	for i, u := range f.list {
		if u.ID == id {
			f.list = append(f.list[:i], f.list[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type catalogFixture struct {
	svc          *CatalogService
	mock         redismock.ClientMock
	universities *fakeUniversities
	programs     *fakePrograms
	applications *fakeApplications
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()
	rdb, mock := redismock.NewClientMock()
	f := &catalogFixture{
		mock: mock,
		universities: &fakeUniversities{list: []*model.University{
			{ID: uuid.New(), Name: "Stored", Logo: "logos/stored.png"},
			{ID: uuid.New(), Name: "Linked", Logo: "https://cdn.example/linked.png"},
		}},
		programs:     newFakePrograms(),
		applications: newFakeApplications(),
	}
	f.svc = NewCatalogService(testConfig(), rdb, f.universities, f.programs, &fakeProfileQuestions{},
		f.applications, newFakeStore(), zerolog.Nop())
	return f
}

func TestCatalog_ListUniversitiesCachesUnsignedList(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()
	key := "catalog:universities"

	payload, err := json.Marshal(f.universities.list)
	require.NoError(t, err)

	f.mock.ExpectGet(key).RedisNil()
	f.mock.ExpectSet(key, payload, testConfig().CatalogCacheTTL).SetVal("OK")

	list, err := f.svc.ListUniversities(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "https://signed.example/logos/stored.png", *list[0].LogoURL)
	assert.Equal(t, "https://cdn.example/linked.png", *list[1].LogoURL)
	assert.Equal(t, 1, f.universities.reads)

	f.mock.ExpectGet(key).SetVal(string(payload))
	list, err = f.svc.ListUniversities(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "https://signed.example/logos/stored.png", *list[0].LogoURL)
	assert.Equal(t, 1, f.universities.reads)

	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCatalog_WritesInvalidateCache(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	f.mock.ExpectScan(0, "catalog:*", 100).SetVal([]string{"catalog:universities", "catalog:programs:all"}, 0)
	f.mock.ExpectDel("catalog:universities", "catalog:programs:all").SetVal(2)

	u, err := f.svc.CreateUniversity(ctx, &model.UniversityRequest{Name: " Booth "})
	require.NoError(t, err)
	assert.Equal(t, "Booth", u.Name)
	assert.NoError(t, f.mock.ExpectationsWereMet())

	_, err = f.svc.CreateUniversity(ctx, &model.UniversityRequest{Name: "Booth"})
	assert.ErrorIs(t, err, ErrDuplicateEntry)
}

func TestCatalog_GetUniversity(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	u, err := f.svc.GetUniversity(ctx, nil, "Stored")
	require.NoError(t, err)
	require.NotNil(t, u.LogoURL)

	missing := uuid.New()
	_, err = f.svc.GetUniversity(ctx, &missing, "")
	assert.ErrorIs(t, err, ErrUniversityNotFound)
}

func TestCatalog_CreateProgramKeepsGivenIDs(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()
	f.mock.ExpectScan(0, "catalog:*", 100).SetVal(nil, 0)

	keep := uuid.New()
	p, err := f.svc.CreateProgram(ctx, &model.ProgramRequest{
		UniversityID: f.universities.list[0].ID,
		ProgramName:  "Full-Time MBA",
		ApplicationQuestions: []model.QuestionInput{
			{ID: &keep, Question: "Why?", LimitType: model.LimitWord, LimitValue: intPtr(300), EnableAI: true},
			{Question: "Else?", LimitType: model.LimitNone},
		},
	})
	require.NoError(t, err)
	require.Len(t, p.ApplicationQuestions, 2)
	assert.Equal(t, keep, p.ApplicationQuestions[0].ID)
	assert.NotEqual(t, uuid.Nil, p.ApplicationQuestions[1].ID)

	_, err = f.svc.CreateProgram(ctx, &model.ProgramRequest{UniversityID: uuid.New(), ProgramName: "X"})
	assert.ErrorIs(t, err, ErrUniversityNotFound)
}

func TestCatalog_ProgramForApplication(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()
	program := newProgram("A")
	f.programs.byID[program.ID] = program

	owner := uuid.New()
	app := &model.Application{UserID: owner, ProgramID: program.ID}
	require.NoError(t, f.applications.Create(ctx, app))

	got, err := f.svc.ProgramForApplication(ctx, app.ID, owner, false)
	require.NoError(t, err)
	assert.Equal(t, program.ID, got.ID)

	_, err = f.svc.ProgramForApplication(ctx, app.ID, uuid.New(), false)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.ProgramForApplication(ctx, app.ID, uuid.New(), true)
	assert.NoError(t, err)

	_, err = f.svc.ProgramForApplication(ctx, uuid.New(), owner, true)
	assert.ErrorIs(t, err, ErrApplicationNotFound)
}
