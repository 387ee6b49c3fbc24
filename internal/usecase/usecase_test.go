package usecase_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"go-recruiting-platform/internal/domain"
	"go-recruiting-platform/internal/repository/document"
	"go-recruiting-platform/internal/scope"
	"go-recruiting-platform/internal/store"
	"go-recruiting-platform/internal/store/memory"
	"go-recruiting-platform/internal/usecase"
	"go-recruiting-platform/pkg/apperror"
	"go-recruiting-platform/pkg/auth"
	"go-recruiting-platform/pkg/password"
	"go-recruiting-platform/pkg/validation"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock Repositories
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}
func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) ClaimTenant(ctx context.Context, userID, tenantID string, role domain.Role, at time.Time) (bool, error) {
	args := m.Called(ctx, userID, tenantID, role, at)
	return args.Bool(0), args.Error(1)
}
func (m *MockUserRepo) SetRole(ctx context.Context, userID string, role domain.Role, at time.Time) error {
	return m.Called(ctx, userID, role, at).Error(0)
}

func (m *MockUserRepo) Summaries(ctx context.Context, ids []string) (map[string]domain.CandidateSummary, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.CandidateSummary), args.Error(1)
}

type MockTenantRepo struct {
	mock.Mock
}

func (m *MockTenantRepo) Create(ctx context.Context, tenant *domain.Tenant) error {
	return m.Called(ctx, tenant).Error(0)
}
func (m *MockTenantRepo) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tenant), args.Error(1)
}
func (m *MockTenantRepo) GetBySlug(ctx context.Context, slug string) (*domain.Tenant, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tenant), args.Error(1)
}
func (m *MockTenantRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}
func (m *MockTenantRepo) List(ctx context.Context, page domain.Page) ([]domain.Tenant, int64, error) {
	args := m.Called(ctx, page)
	return args.Get(0).([]domain.Tenant), args.Get(1).(int64), args.Error(2)
}
func (m *MockTenantRepo) Update(ctx context.Context, id string, set map[string]any) error {
	return m.Called(ctx, id, set).Error(0)
}
func (m *MockTenantRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
func (m *MockTenantRepo) Summaries(ctx context.Context, ids []string) (map[string]domain.TenantSummary, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(map[string]domain.TenantSummary), args.Error(1)
}

type MockLoginGuard struct {
	mock.Mock
}

func (m *MockLoginGuard) IsBlocked(ctx context.Context, email, ip string) (bool, error) {
	args := m.Called(ctx, email, ip)
	return args.Bool(0), args.Error(1)
}
func (m *MockLoginGuard) RecordFailedAttempt(ctx context.Context, email, ip, userAgent, requestID string) (bool, int, error) {
	args := m.Called(ctx, email, ip, userAgent, requestID)
	return args.Bool(0), args.Int(1), args.Error(2)
}
func (m *MockLoginGuard) ClearAttempts(ctx context.Context, email, ip string) error {
	return m.Called(ctx, email, ip).Error(0)
}

type testEnv struct {
	store    *memory.Store
	users    domain.UserRepository
	tenants  domain.TenantRepository
	jobs     domain.JobRepository
	profiles domain.CandidateRepository
	apps     domain.ApplicationRepository
	tokens   *auth.TokenService
	validate *validator.Validate

	auth        domain.AuthUsecase
	tenant      domain.TenantUsecase
	job         domain.JobUsecase
	candidate   domain.CandidateUsecase
	application domain.ApplicationUsecase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	s := memory.New()
	tokens, err := auth.NewTokenService(auth.Config{AccessSecret: "access-secret", RefreshSecret: "refresh-secret"})
	require.NoError(t, err)

	e := &testEnv{
		store:    s,
		users:    document.NewUserRepository(s),
		tenants:  document.NewTenantRepository(s),
		jobs:     document.NewJobRepository(s),
		profiles: document.NewCandidateRepository(s),
		apps:     document.NewApplicationRepository(s),
		tokens:   tokens,
		validate: validation.New(),
	}
	resolver := scope.NewResolver(e.jobs, e.users)
	e.auth = usecase.NewAuthUsecase(e.users, tokens, password.NewBcryptHasher(4), nil, e.validate)
	e.tenant = usecase.NewTenantUsecase(e.tenants, e.users, tokens, resolver, e.validate)
	e.job = usecase.NewJobUsecase(e.jobs, e.tenants, resolver, e.validate)
	e.candidate = usecase.NewCandidateUsecase(e.profiles, e.users, e.validate)
	e.application = usecase.NewApplicationUsecase(e.apps, e.jobs, e.tenants, e.profiles, e.users, resolver, e.validate)
	return e
}

func (e *testEnv) register(t *testing.T, email string) *domain.AuthResult {
	t.Helper()
	res, err := e.auth.Register(context.Background(), domain.RegisterInput{
		Email: email, Password: "pw123", FirstName: "Alice", LastName: "Smith",
	})
	require.NoError(t, err)
	return res
}

// recruiter registers a user and claims a tenant with slug for them.
func (e *testEnv) recruiter(t *testing.T, email, slug string) (domain.Identity, *domain.Tenant) {
	t.Helper()
	res := e.register(t, email)
	claim, err := e.tenant.ClaimOwnership(context.Background(), res.User.Identity(), domain.CreateTenantInput{
		Name: "Tenant " + slug, Slug: slug,
	})
	require.NoError(t, err)
	return claim.User.Identity(), claim.Tenant
}

func (e *testEnv) createJob(t *testing.T, who domain.Identity, tenantID string, status domain.JobStatus) *domain.Job {
	t.Helper()
	job, err := e.job.Create(context.Background(), who, tenantID, domain.CreateJobInput{
		Title:       "Backend Engineer",
		Location:    "Berlin",
		Type:        domain.JobTypeFullTime,
		Skills:      []string{"Go", "Postgres"},
		Description: "Build services",
		Status:      status,
	})
	require.NoError(t, err)
	return job
}

func ptr[T any](v T) *T { return &v }

func firstPage() domain.Page { return domain.NewPage(1, 10, domain.DefaultPageLimit) }

func TestRegisterAndLogin(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	res := e.register(t, "Alice@X.com")
	assert.Equal(t, "alice@x.com", res.User.Email)
	assert.Equal(t, domain.RoleCandidate, res.User.Role)
	assert.Nil(t, res.User.TenantID)
	assert.NotEqual(t, "pw123", res.User.PasswordDigest)

	t.Run("correct password returns tokens", func(t *testing.T) {
		out, err := e.auth.Login(ctx, domain.LoginInput{Email: "alice@x.com", Password: "pw123"})
		require.NoError(t, err)
		assert.NotEmpty(t, out.Tokens.AccessToken)
		assert.NotEmpty(t, out.Tokens.RefreshToken)

		identity, ok := e.tokens.VerifyAccess(out.Tokens.AccessToken)
		require.True(t, ok)
		assert.Equal(t, res.User.ID, identity.UserID)
	})

	t.Run("wrong password and unknown email fail the same way", func(t *testing.T) {
		_, errWrong := e.auth.Login(ctx, domain.LoginInput{Email: "alice@x.com", Password: "nope"})
		_, errUnknown := e.auth.Login(ctx, domain.LoginInput{Email: "bob@x.com", Password: "pw123"})
		assert.True(t, apperror.Is(errWrong, apperror.KindUnauthenticated))
		assert.True(t, apperror.Is(errUnknown, apperror.KindUnauthenticated))
		assert.Equal(t, errWrong.Error(), errUnknown.Error())
	})

	t.Run("duplicate email is a conflict regardless of case", func(t *testing.T) {
		_, err := e.auth.Register(ctx, domain.RegisterInput{
			Email: "ALICE@x.com", Password: "other", FirstName: "Alice", LastName: "Again",
		})
		assert.True(t, apperror.Is(err, apperror.KindConflict))
	})

	t.Run("invalid input is rejected", func(t *testing.T) {
		_, err := e.auth.Register(ctx, domain.RegisterInput{Email: "not-an-email", Password: "pw"})
		assert.True(t, apperror.Is(err, apperror.KindValidation))
	})
}

func TestLoginBlocked(t *testing.T) {
	e := newTestEnv(t)
	guard := new(MockLoginGuard)
	uc := usecase.NewAuthUsecase(e.users, e.tokens, password.NewBcryptHasher(4), guard, e.validate)

	guard.On("IsBlocked", mock.Anything, "alice@x.com", "10.0.0.1").Return(true, nil)

	_, err := uc.Login(context.Background(), domain.LoginInput{Email: "alice@x.com", Password: "pw123", IP: "10.0.0.1"})
	assert.True(t, apperror.Is(err, apperror.KindRateLimited))
	guard.AssertNotCalled(t, "RecordFailedAttempt", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLoginRecordsFailures(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, "alice@x.com")
	guard := new(MockLoginGuard)
	uc := usecase.NewAuthUsecase(e.users, e.tokens, password.NewBcryptHasher(4), guard, e.validate)

	guard.On("IsBlocked", mock.Anything, "alice@x.com", "").Return(false, nil)
	guard.On("RecordFailedAttempt", mock.Anything, "alice@x.com", "", "", "").Return(false, 1, nil).Once()
	guard.On("ClearAttempts", mock.Anything, "alice@x.com", "").Return(nil).Once()

	_, err := uc.Login(context.Background(), domain.LoginInput{Email: "alice@x.com", Password: "bad"})
	assert.True(t, apperror.Is(err, apperror.KindUnauthenticated))

	_, err = uc.Login(context.Background(), domain.LoginInput{Email: "alice@x.com", Password: "pw123"})
	require.NoError(t, err)
	guard.AssertExpectations(t)
}

func TestRefreshCarriesCurrentRole(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	res := e.register(t, "owner@x.com")

	_, err := e.tenant.ClaimOwnership(ctx, res.User.Identity(), domain.CreateTenantInput{Name: "Acme", Slug: "acme"})
	require.NoError(t, err)

	out, err := e.auth.Refresh(ctx, res.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleRecruiter, out.User.Role)

	identity, ok := e.tokens.VerifyAccess(out.Tokens.AccessToken)
	require.True(t, ok)
	assert.Equal(t, domain.RoleRecruiter, identity.Role)

	_, err = e.auth.Refresh(ctx, res.Tokens.AccessToken)
	assert.True(t, apperror.Is(err, apperror.KindUnauthenticated))
}

func TestClaimOwnership(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	res := e.register(t, "owner@x.com")

	claim, err := e.tenant.ClaimOwnership(ctx, res.User.Identity(), domain.CreateTenantInput{Name: "Acme", Slug: "acme"})
	require.NoError(t, err)

	assert.Equal(t, "acme", claim.Tenant.Slug)
	assert.Equal(t, domain.DefaultPrimaryColor, claim.Tenant.Branding.PrimaryColor)
	assert.True(t, claim.Tenant.Settings.AllowPublicProfiles)
	assert.False(t, claim.Tenant.Settings.RequireApproval)

	stored, err := e.users.GetByID(ctx, res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleRecruiter, stored.Role)
	require.NotNil(t, stored.TenantID)
	assert.Equal(t, claim.Tenant.ID, *stored.TenantID)

	identity, ok := e.tokens.VerifyAccess(claim.Tokens.AccessToken)
	require.True(t, ok)
	assert.Equal(t, domain.RoleRecruiter, identity.Role)

	t.Run("second claim by the same user conflicts", func(t *testing.T) {
		_, err := e.tenant.ClaimOwnership(ctx, identity, domain.CreateTenantInput{Name: "Other", Slug: "other"})
		assert.True(t, apperror.Is(err, apperror.KindConflict))
		exists, err := e.tenants.SlugExists(ctx, "other")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("taken slug conflicts", func(t *testing.T) {
		other := e.register(t, "second@x.com")
		_, err := e.tenant.ClaimOwnership(ctx, other.User.Identity(), domain.CreateTenantInput{Name: "Acme Two", Slug: "acme"})
		assert.True(t, apperror.Is(err, apperror.KindConflict))
	})

	t.Run("admin keeps the admin role", func(t *testing.T) {
		admin := e.register(t, "admin@x.com")
		_, err := e.store.UpdateOne(ctx, store.Users, store.ByID(admin.User.ID),
			store.Update{Set: map[string]any{"role": domain.RoleAdmin}})
		require.NoError(t, err)

		claim, err := e.tenant.ClaimOwnership(ctx, admin.User.Identity(), domain.CreateTenantInput{Name: "Admin Co", Slug: "admin-co"})
		require.NoError(t, err)
		assert.Equal(t, domain.RoleAdmin, claim.User.Role)
	})
}

func TestClaimOwnershipInvalidSlugWritesNothing(t *testing.T) {
	users := new(MockUserRepo)
	tenants := new(MockTenantRepo)
	tokens, err := auth.NewTokenService(auth.Config{AccessSecret: "a", RefreshSecret: "b"})
	require.NoError(t, err)
	uc := usecase.NewTenantUsecase(tenants, users, tokens, scope.NewResolver(nil, users), validation.New())

	for _, slug := range []string{"Acme_1", "acme corp", "", "ACME"} {
		_, err := uc.ClaimOwnership(context.Background(), domain.Identity{UserID: "u1", Role: domain.RoleCandidate},
			domain.CreateTenantInput{Name: "Acme", Slug: slug})
		assert.True(t, apperror.Is(err, apperror.KindValidation), slug)
	}
	users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	tenants.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestClaimOwnershipLostRaceRollsBack(t *testing.T) {
	s := memory.New()
	tenants := document.NewTenantRepository(s)
	users := new(MockUserRepo)
	tokens, err := auth.NewTokenService(auth.Config{AccessSecret: "a", RefreshSecret: "b"})
	require.NoError(t, err)
	uc := usecase.NewTenantUsecase(tenants, users, tokens, scope.NewResolver(nil, users), validation.New())

	users.On("GetByID", mock.Anything, "u1").Return(&domain.User{ID: "u1", Role: domain.RoleCandidate}, nil)
	users.On("ClaimTenant", mock.Anything, "u1", mock.AnythingOfType("string"), domain.RoleRecruiter, mock.Anything).Return(false, nil)

	_, err = uc.ClaimOwnership(context.Background(), domain.Identity{UserID: "u1", Role: domain.RoleCandidate},
		domain.CreateTenantInput{Name: "Acme", Slug: "acme"})
	assert.True(t, apperror.Is(err, apperror.KindConflict))

	exists, err := tenants.SlugExists(context.Background(), "acme")
	require.NoError(t, err)
	assert.False(t, exists)
	users.AssertExpectations(t)
}

func TestTenantUpdate(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	owner, tenant := e.recruiter(t, "owner@x.com", "acme")
	outsider, _ := e.recruiter(t, "other@x.com", "globex")

	updated, err := e.tenant.Update(ctx, owner, tenant.ID, domain.TenantPatch{
		Branding: &domain.BrandingInput{PrimaryColor: ptr("#000000")},
	})
	require.NoError(t, err)
	assert.Equal(t, "#000000", updated.Branding.PrimaryColor)
	assert.Equal(t, domain.DefaultSecondaryColor, updated.Branding.SecondaryColor)
	assert.Equal(t, "acme", updated.Slug)

	_, err = e.tenant.Update(ctx, outsider, tenant.ID, domain.TenantPatch{Name: ptr("Hijacked")})
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	_, err = e.tenant.Update(ctx, owner, tenant.ID, domain.TenantPatch{})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = e.tenant.GetBySlug(ctx, "Not_A_Slug")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestPublicJobSearchOnlyShowsActive(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	owner, tenant := e.recruiter(t, "owner@x.com", "acme")
	job := e.createJob(t, owner, tenant.ID, "")
	assert.Equal(t, domain.JobStatusDraft, job.Status)
	assert.Equal(t, domain.DefaultCurrency, job.SalaryRange.Currency)

	found, page, err := e.job.Search(ctx, domain.JobSearch{Page: firstPage()})
	require.NoError(t, err)
	assert.Empty(t, found)
	assert.Equal(t, int64(0), page.Total)

	_, err = e.job.Update(ctx, owner, job.ID, domain.JobPatch{Status: ptr(domain.JobStatusActive)})
	require.NoError(t, err)

	found, page, err = e.job.Search(ctx, domain.JobSearch{Skills: []string{"go"}, Page: firstPage()})
	require.NoError(t, err)
	assert.Empty(t, found, "skills match exactly")

	found, page, err = e.job.Search(ctx, domain.JobSearch{Skills: []string{"Go"}, Location: "berl", Page: firstPage()})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, int64(1), page.Total)
	require.NotNil(t, found[0].Tenant)
	assert.Equal(t, "acme", found[0].Tenant.Slug)
}

func TestJobVisibilityAndMembership(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	owner, tenant := e.recruiter(t, "owner@x.com", "acme")
	outsider, _ := e.recruiter(t, "other@x.com", "globex")
	draft := e.createJob(t, owner, tenant.ID, domain.JobStatusDraft)
	e.createJob(t, owner, tenant.ID, domain.JobStatusActive)

	t.Run("anonymous callers only see active jobs", func(t *testing.T) {
		jobs, _, err := e.job.ListByTenant(ctx, nil, tenant.ID, domain.JobStatusDraft, firstPage())
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		assert.Equal(t, domain.JobStatusActive, jobs[0].Status)

		_, err = e.job.Get(ctx, nil, draft.ID)
		assert.True(t, apperror.Is(err, apperror.KindNotFound))
	})

	t.Run("members see every status", func(t *testing.T) {
		jobs, _, err := e.job.ListByTenant(ctx, &owner, tenant.ID, "", firstPage())
		require.NoError(t, err)
		assert.Len(t, jobs, 2)

		got, err := e.job.Get(ctx, &owner, draft.ID)
		require.NoError(t, err)
		assert.Equal(t, draft.ID, got.ID)
	})

	t.Run("recruiters of another tenant cannot mutate", func(t *testing.T) {
		_, err := e.job.Update(ctx, outsider, draft.ID, domain.JobPatch{Title: ptr("Hijacked")})
		assert.True(t, apperror.Is(err, apperror.KindForbidden))

		err = e.job.Delete(ctx, outsider, draft.ID)
		assert.True(t, apperror.Is(err, apperror.KindForbidden))

		_, err = e.job.Create(ctx, outsider, tenant.ID, domain.CreateJobInput{
			Title: "x", Location: "y", Type: domain.JobTypeContract, Description: "z",
		})
		assert.True(t, apperror.Is(err, apperror.KindForbidden))
	})

	t.Run("salary bounds are checked", func(t *testing.T) {
		_, err := e.job.Update(ctx, owner, draft.ID, domain.JobPatch{
			SalaryRange: &domain.SalaryInput{Min: ptr(100.0), Max: ptr(50.0)},
		})
		assert.True(t, apperror.Is(err, apperror.KindValidation))
	})

	t.Run("owner deletes", func(t *testing.T) {
		require.NoError(t, e.job.Delete(ctx, owner, draft.ID))
		_, err := e.jobs.GetByID(ctx, draft.ID)
		assert.True(t, apperror.Is(err, apperror.KindNotFound))
	})
}

func TestProfiles(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := e.register(t, "alice@x.com").User.Identity()
	bob := e.register(t, "bob@x.com").User.Identity()

	empty, err := e.candidate.GetOwnProfile(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, domain.VisibilityPrivate, empty.Visibility)
	assert.NotNil(t, empty.Sections.Skills)

	_, err = e.candidate.UpdateOwnProfile(ctx, alice, domain.ProfilePatch{
		Visibility: ptr(domain.VisibilityPublic),
		Sections: &domain.SectionsPatch{
			Personal: &domain.PersonalInfo{FirstName: "Alice", Location: "Berlin, DE"},
			Skills:   &[]domain.Skill{{Name: "Go"}},
		},
	})
	require.NoError(t, err)

	updated, err := e.candidate.UpdateOwnProfile(ctx, alice, domain.ProfilePatch{
		Sections: &domain.SectionsPatch{Education: &[]domain.Education{{Institution: "TU"}}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Berlin, DE", updated.Sections.Personal.Location)
	assert.Len(t, updated.Sections.Education, 1)
	assert.Len(t, updated.Sections.Skills, 1)

	_, err = e.candidate.UpdateOwnProfile(ctx, bob, domain.ProfilePatch{
		Sections: &domain.SectionsPatch{Skills: &[]domain.Skill{{Name: "Go"}}},
	})
	require.NoError(t, err)

	public, page, err := e.candidate.ListPublicProfiles(ctx, domain.ProfileSearch{Skills: []string{"Go"}, Location: "berlin", Page: firstPage()})
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, alice.UserID, public[0].UserID)
	require.NotNil(t, public[0].User)
	assert.Equal(t, "alice@x.com", public[0].User.Email)

	_, err = e.candidate.UpdateOwnProfile(ctx, domain.Identity{UserID: "r1", Role: domain.RoleRecruiter}, domain.ProfilePatch{
		Visibility: ptr(domain.VisibilityPublic),
	})
	assert.True(t, apperror.Is(err, apperror.KindForbidden))
}

func TestApplyIsUniquePerJobAndCandidate(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	owner, tenant := e.recruiter(t, "owner@x.com", "acme")
	job := e.createJob(t, owner, tenant.ID, domain.JobStatusActive)
	alice := e.register(t, "alice@x.com").User.Identity()

	_, err := e.application.Apply(ctx, alice, job.ID, domain.ApplyInput{})
	require.NoError(t, err)

	_, err = e.application.Apply(ctx, alice, job.ID, domain.ApplyInput{})
	assert.True(t, apperror.Is(err, apperror.KindConflict))

	n, err := e.store.CountDocuments(ctx, store.Applications, store.Where(store.Eq("jobId", job.ID)))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	stored, err := e.jobs.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.ApplicationsCount)
}

func TestApplyRequiresActiveJob(t *testing.T) {
	e := newTestEnv(t)
	owner, tenant := e.recruiter(t, "owner@x.com", "acme")
	job := e.createJob(t, owner, tenant.ID, domain.JobStatusPaused)
	alice := e.register(t, "alice@x.com").User.Identity()

	_, err := e.application.Apply(context.Background(), alice, job.ID, domain.ApplyInput{})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = e.application.Apply(context.Background(), owner, job.ID, domain.ApplyInput{})
	assert.True(t, apperror.Is(err, apperror.KindForbidden))
}

func TestApplySnapshotsSelectedSections(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	owner, tenant := e.recruiter(t, "owner@x.com", "acme")
	job := e.createJob(t, owner, tenant.ID, domain.JobStatusActive)
	alice := e.register(t, "alice@x.com").User.Identity()

	_, err := e.candidate.UpdateOwnProfile(ctx, alice, domain.ProfilePatch{
		Sections: &domain.SectionsPatch{
			Personal:  &domain.PersonalInfo{FirstName: "Alice", LastName: "Smith"},
			Education: &[]domain.Education{{Institution: "TU"}},
			Skills:    &[]domain.Skill{{Name: "Go", Level: "expert"}},
		},
	})
	require.NoError(t, err)

	app, err := e.application.Apply(ctx, alice, job.ID, domain.ApplyInput{
		ShareSet: domain.ShareSelection{Personal: true, Skills: true},
	})
	require.NoError(t, err)

	stored, err := e.apps.GetByID(ctx, app.ID)
	require.NoError(t, err)
	raw, err := json.Marshal(stored.ShareSet)
	require.NoError(t, err)
	var keys map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &keys))
	assert.Len(t, keys, 2)
	assert.Contains(t, keys, "personal")
	assert.Contains(t, keys, "skills")

	_, err = e.candidate.UpdateOwnProfile(ctx, alice, domain.ProfilePatch{
		Sections: &domain.SectionsPatch{Skills: &[]domain.Skill{{Name: "Rust"}}},
	})
	require.NoError(t, err)
	stored, err = e.apps.GetByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go", stored.ShareSet.Skills[0].Name)
}

func TestApplicationPipeline(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	owner, tenant := e.recruiter(t, "owner@x.com", "acme")
	outsider, otherTenant := e.recruiter(t, "other@x.com", "globex")
	job := e.createJob(t, owner, tenant.ID, domain.JobStatusActive)
	otherJob := e.createJob(t, outsider, otherTenant.ID, domain.JobStatusActive)
	alice := e.register(t, "alice@x.com").User.Identity()
	bob := e.register(t, "bob@x.com").User.Identity()

	app, err := e.application.Apply(ctx, alice, job.ID, domain.ApplyInput{})
	require.NoError(t, err)

	t.Run("visibility", func(t *testing.T) {
		got, err := e.application.Get(ctx, alice, app.ID)
		require.NoError(t, err)
		require.NotNil(t, got.Job)
		require.NotNil(t, got.Tenant)
		assert.Equal(t, "acme", got.Tenant.Slug)

		_, err = e.application.Get(ctx, owner, app.ID)
		require.NoError(t, err)

		_, err = e.application.Get(ctx, bob, app.ID)
		assert.True(t, apperror.Is(err, apperror.KindNotFound))
		_, err = e.application.Get(ctx, outsider, app.ID)
		assert.True(t, apperror.Is(err, apperror.KindNotFound))
	})

	t.Run("tenant listing is scoped", func(t *testing.T) {
		list, page, err := e.application.ListForTenant(ctx, owner, tenant.ID, domain.ApplicationQuery{Page: firstPage()})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, int64(1), page.Total)
		require.NotNil(t, list[0].Candidate)
		assert.Equal(t, "alice@x.com", list[0].Candidate.Email)

		list, _, err = e.application.ListForTenant(ctx, owner, tenant.ID, domain.ApplicationQuery{JobID: otherJob.ID, Page: firstPage()})
		require.NoError(t, err)
		assert.Empty(t, list)

		_, _, err = e.application.ListForTenant(ctx, outsider, tenant.ID, domain.ApplicationQuery{Page: firstPage()})
		assert.True(t, apperror.Is(err, apperror.KindForbidden))
	})

	t.Run("own listing", func(t *testing.T) {
		list, _, err := e.application.ListOwn(ctx, alice, domain.ApplicationQuery{Page: firstPage()})
		require.NoError(t, err)
		require.Len(t, list, 1)
		list, _, err = e.application.ListOwn(ctx, bob, domain.ApplicationQuery{Page: firstPage()})
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("illegal jump is rejected", func(t *testing.T) {
		_, err := e.application.Update(ctx, owner, app.ID, domain.ApplicationPatch{Status: ptr(domain.ApplicationOffer)})
		assert.True(t, apperror.Is(err, apperror.KindInvalidTransition))
	})

	t.Run("outsider cannot review", func(t *testing.T) {
		_, err := e.application.Update(ctx, outsider, app.ID, domain.ApplicationPatch{Status: ptr(domain.ApplicationReviewing)})
		assert.True(t, apperror.Is(err, apperror.KindForbidden))
	})

	t.Run("candidate may only withdraw", func(t *testing.T) {
		_, err := e.application.Update(ctx, alice, app.ID, domain.ApplicationPatch{Status: ptr(domain.ApplicationReviewing)})
		assert.True(t, apperror.Is(err, apperror.KindForbidden))
		_, err = e.application.Update(ctx, alice, app.ID, domain.ApplicationPatch{Notes: ptr("hire me")})
		assert.True(t, apperror.Is(err, apperror.KindForbidden))
	})

	t.Run("review stamps the reviewer", func(t *testing.T) {
		updated, err := e.application.Update(ctx, owner, app.ID, domain.ApplicationPatch{
			Status: ptr(domain.ApplicationReviewing),
			Stage:  ptr(domain.StagePhoneScreen),
		})
		require.NoError(t, err)
		assert.Equal(t, domain.ApplicationReviewing, updated.Status)
		assert.Equal(t, domain.StagePhoneScreen, updated.Stage)
		require.NotNil(t, updated.ReviewedBy)
		assert.Equal(t, owner.UserID, *updated.ReviewedBy)
		assert.NotNil(t, updated.ReviewedAt)
	})

	t.Run("repeating the current status is a no-op", func(t *testing.T) {
		before, err := e.apps.GetByID(ctx, app.ID)
		require.NoError(t, err)
		after, err := e.application.Update(ctx, owner, app.ID, domain.ApplicationPatch{Status: ptr(domain.ApplicationReviewing)})
		require.NoError(t, err)
		assert.True(t, before.UpdatedAt.Equal(after.UpdatedAt))
	})

	t.Run("candidate withdraws", func(t *testing.T) {
		updated, err := e.application.Update(ctx, alice, app.ID, domain.ApplicationPatch{Status: ptr(domain.ApplicationWithdrawn)})
		require.NoError(t, err)
		assert.Equal(t, domain.ApplicationWithdrawn, updated.Status)

		stored, err := e.jobs.GetByID(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), stored.ApplicationsCount)
	})
}

// brokenCounter stores jobs normally but cannot bump the applications count.
type brokenCounter struct {
	domain.JobRepository
}

func (brokenCounter) IncrementApplications(context.Context, string) error {
	return apperror.Internal(assert.AnError)
}

func TestApplySurvivesCounterFailure(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	owner, tenant := e.recruiter(t, "owner@x.com", "acme")
	job := e.createJob(t, owner, tenant.ID, domain.JobStatusActive)
	alice := e.register(t, "alice@x.com").User.Identity()

	uc := usecase.NewApplicationUsecase(e.apps, brokenCounter{e.jobs}, e.tenants, e.profiles, e.users,
		scope.NewResolver(e.jobs, e.users), e.validate)
	app, err := uc.Apply(ctx, alice, job.ID, domain.ApplyInput{})
	require.NoError(t, err)

	stored, err := e.apps.GetByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationApplied, stored.Status)

	counted, err := e.jobs.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Zero(t, counted.ApplicationsCount)
}

// staleApplications serves a fixed snapshot from GetByID so a second
// reviewer can act on a status that has since moved.
type staleApplications struct {
	domain.ApplicationRepository
	snapshot domain.Application
}

func (r *staleApplications) GetByID(ctx context.Context, id string) (*domain.Application, error) {
	app := r.snapshot
	return &app, nil
}

func TestApplicationUpdateLosesRaceOnStaleStatus(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	owner, tenant := e.recruiter(t, "owner@x.com", "acme")
	job := e.createJob(t, owner, tenant.ID, domain.JobStatusActive)
	alice := e.register(t, "alice@x.com").User.Identity()

	app, err := e.application.Apply(ctx, alice, job.ID, domain.ApplyInput{})
	require.NoError(t, err)
	for _, status := range []domain.ApplicationStatus{domain.ApplicationReviewing, domain.ApplicationInterview} {
		_, err = e.application.Update(ctx, owner, app.ID, domain.ApplicationPatch{Status: ptr(status)})
		require.NoError(t, err)
	}
	snapshot, err := e.apps.GetByID(ctx, app.ID)
	require.NoError(t, err)

	_, err = e.application.Update(ctx, owner, app.ID, domain.ApplicationPatch{Status: ptr(domain.ApplicationRejected)})
	require.NoError(t, err)

	stale := usecase.NewApplicationUsecase(&staleApplications{ApplicationRepository: e.apps, snapshot: *snapshot},
		e.jobs, e.tenants, e.profiles, e.users, scope.NewResolver(e.jobs, e.users), e.validate)
	_, err = stale.Update(ctx, owner, app.ID, domain.ApplicationPatch{Status: ptr(domain.ApplicationOffer)})
	assert.True(t, apperror.Is(err, apperror.KindConflict))

	stored, err := e.apps.GetByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationRejected, stored.Status)
}

func TestHealthCheck(t *testing.T) {
	uc := usecase.NewHealthUsecase(map[string]usecase.Pinger{
		"store": memory.New(),
		"redis": usecase.PingFunc(func(context.Context) error { return assert.AnError }),
	})
	report, healthy := uc.Check(context.Background())
	assert.True(t, healthy)
	assert.Equal(t, "ok", report["store"])
	assert.Equal(t, "unavailable", report["redis"])

	uc = usecase.NewHealthUsecase(map[string]usecase.Pinger{
		"store": usecase.PingFunc(func(context.Context) error { return assert.AnError }),
	})
	report, healthy = uc.Check(context.Background())
	assert.False(t, healthy)
	assert.Equal(t, "degraded", report["status"])
}
