package usecase

import (
	"context"
	"fmt"
	"time"

	"go-recruiting-platform/internal/domain"
	"go-recruiting-platform/internal/scope"
	"go-recruiting-platform/internal/shareset"
	"go-recruiting-platform/pkg/apperror"
	"go-recruiting-platform/pkg/logger"
	"go-recruiting-platform/pkg/validation"

	"github.com/ecodeclub/ekit/slice"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type applicationUsecase struct {
	appRepo     domain.ApplicationRepository
	jobRepo     domain.JobRepository
	tenantRepo  domain.TenantRepository
	profileRepo domain.CandidateRepository
	userRepo    domain.UserRepository
	resolver    *scope.Resolver
	validate    *validator.Validate
	now         func() time.Time
}

func NewApplicationUsecase(
	appRepo domain.ApplicationRepository,
	jobRepo domain.JobRepository,
	tenantRepo domain.TenantRepository,
	profileRepo domain.CandidateRepository,
	userRepo domain.UserRepository,
	resolver *scope.Resolver,
	validate *validator.Validate,
) domain.ApplicationUsecase {
	return &applicationUsecase{
		appRepo:     appRepo,
		jobRepo:     jobRepo,
		tenantRepo:  tenantRepo,
		profileRepo: profileRepo,
		userRepo:    userRepo,
		resolver:    resolver,
		validate:    validate,
		now:         time.Now,
	}
}

// Apply submits the caller's application to an active job.
//
// The share-set is projected from the profile as it is now and never
// re-synced. The (jobId, candidateId) unique index backs the Exists pre-check,
// so a concurrent duplicate still ends in Conflict and the job counter is
// only bumped after a successful insert.
func (u *applicationUsecase) Apply(ctx context.Context, identity domain.Identity, jobID string, input domain.ApplyInput) (*domain.Application, error) {
	if err := requireCandidate(identity); err != nil {
		return nil, err
	}
	job, err := u.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != domain.JobStatusActive {
		return nil, apperror.Validation("This job is no longer accepting applications")
	}

	exists, err := u.appRepo.Exists(ctx, job.ID, identity.UserID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.Conflict("You have already applied to this job")
	}

	profile, err := u.profileRepo.GetByUserID(ctx, identity.UserID)
	if apperror.Is(err, apperror.KindNotFound) {
		profile, err = domain.EmptyProfile(identity.UserID), nil
	}
	if err != nil {
		return nil, err
	}
	shared, err := shareset.Project(profile, input.ShareSet)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if shareset.Empty(shared) {
		logger.Log.DebugContext(ctx, "application shares no profile sections", "job_id", job.ID, "candidate_id", identity.UserID)
	}

	now := u.now().UTC()
	application := &domain.Application{
		ID:          uuid.NewString(),
		JobID:       job.ID,
		CandidateID: identity.UserID,
		ShareSet:    shared,
		Status:      domain.ApplicationApplied,
		Stage:       domain.StageApplied,
		AppliedAt:   now,
		UpdatedAt:   now,
	}
	if err := u.appRepo.Create(ctx, application); err != nil {
		return nil, err
	}
	// The application is already stored; a lost counter bump must not fail it.
	if err := u.jobRepo.IncrementApplications(ctx, job.ID); err != nil {
		logger.Log.ErrorContext(ctx, "increment job applications count", "job_id", job.ID, "application_id", application.ID, "error", err)
	}
	return application, nil
}

func (u *applicationUsecase) ListOwn(ctx context.Context, identity domain.Identity, query domain.ApplicationQuery) ([]domain.ApplicationDetail, domain.Pagination, error) {
	if query.Status != "" && !query.Status.Valid() {
		return nil, domain.Pagination{}, apperror.Validation("Invalid application status")
	}
	sc, err := u.resolver.ScopeFilter(ctx, scope.KindOwnApplications, "", &identity,
		scope.WithJobID(query.JobID), scope.WithApplicationStatus(query.Status))
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return u.list(ctx, sc, query.Page)
}

// ListForTenant lists applications to any of the tenant's jobs. A jobId
// outside the tenant yields an empty page.
func (u *applicationUsecase) ListForTenant(ctx context.Context, identity domain.Identity, tenantID string, query domain.ApplicationQuery) ([]domain.ApplicationDetail, domain.Pagination, error) {
	if query.Status != "" && !query.Status.Valid() {
		return nil, domain.Pagination{}, apperror.Validation("Invalid application status")
	}
	if _, err := u.tenantRepo.GetByID(ctx, tenantID); err != nil {
		return nil, domain.Pagination{}, err
	}
	if err := u.resolver.RequireMembership(ctx, identity, tenantID); err != nil {
		return nil, domain.Pagination{}, err
	}
	sc, err := u.resolver.ScopeFilter(ctx, scope.KindTenantApplications, tenantID, &identity,
		scope.WithJobID(query.JobID), scope.WithApplicationStatus(query.Status))
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return u.list(ctx, sc, query.Page)
}

func (u *applicationUsecase) list(ctx context.Context, sc scope.Scope, page domain.Page) ([]domain.ApplicationDetail, domain.Pagination, error) {
	apps, total, err := u.appRepo.Find(ctx, sc.Filter, page)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	details, err := u.enrich(ctx, apps)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return details, page.Result(total), nil
}

// Get is visible to the owning candidate, members of the job's tenant and
// admins. Anyone else gets NotFound.
func (u *applicationUsecase) Get(ctx context.Context, identity domain.Identity, id string) (*domain.ApplicationDetail, error) {
	app, err := u.appRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	details, err := u.enrich(ctx, []domain.Application{*app})
	if err != nil {
		return nil, err
	}
	detail := details[0]
	if !u.canView(ctx, identity, app, detail.Job) {
		return nil, apperror.NotFound("Application not found")
	}
	return &detail, nil
}

// Update lets the owning candidate withdraw, and lets tenant members move the
// application along the status graph and edit stage and notes. Writing the
// current status again changes nothing.
func (u *applicationUsecase) Update(ctx context.Context, identity domain.Identity, id string, patch domain.ApplicationPatch) (*domain.Application, error) {
	if err := validation.Struct(u.validate, patch); err != nil {
		return nil, err
	}
	if patch.Status == nil && patch.Stage == nil && patch.Notes == nil {
		return nil, apperror.Validation("No updatable fields supplied")
	}
	app, err := u.appRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	reviewer := false
	switch {
	case identity.Role == domain.RoleCandidate:
		if app.CandidateID != identity.UserID {
			return nil, apperror.NotFound("Application not found")
		}
		if patch.Stage != nil || patch.Notes != nil ||
			(patch.Status != nil && *patch.Status != domain.ApplicationWithdrawn) {
			return nil, apperror.Forbidden("Candidates may only withdraw an application")
		}
	case identity.HasRole(domain.RoleRecruiter, domain.RoleAdmin):
		if !identity.IsAdmin() {
			job, err := u.jobRepo.GetByID(ctx, app.JobID)
			if err != nil {
				return nil, err
			}
			if err := u.resolver.RequireMembership(ctx, identity, job.TenantID); err != nil {
				return nil, err
			}
		}
		reviewer = true
	default:
		return nil, apperror.Forbidden("You do not have permission to perform this action")
	}

	now := u.now().UTC()
	set := map[string]any{}
	if patch.Status != nil && *patch.Status != app.Status {
		if !app.Status.CanTransitionTo(*patch.Status) {
			return nil, apperror.InvalidTransition(fmt.Sprintf("Cannot move application from %s to %s", app.Status, *patch.Status))
		}
		set["status"] = *patch.Status
		if reviewer {
			set["reviewedBy"] = identity.UserID
			set["reviewedAt"] = now
		}
	}
	if patch.Stage != nil && *patch.Stage != app.Stage {
		set["stage"] = *patch.Stage
	}
	if patch.Notes != nil && *patch.Notes != app.Notes {
		set["notes"] = *patch.Notes
	}
	if len(set) == 0 {
		return app, nil
	}
	set["updatedAt"] = now

	if err := u.appRepo.Update(ctx, id, app.Status, set); err != nil {
		return nil, err
	}
	return u.appRepo.GetByID(ctx, id)
}

func (u *applicationUsecase) canView(ctx context.Context, identity domain.Identity, app *domain.Application, job *domain.Job) bool {
	switch {
	case identity.IsAdmin():
		return true
	case identity.UserID != "" && app.CandidateID == identity.UserID:
		return true
	case job != nil && identity.Role == domain.RoleRecruiter:
		return u.resolver.RequireMembership(ctx, identity, job.TenantID) == nil
	}
	return false
}

// enrich attaches job, tenant and candidate summaries. Relations that no
// longer resolve are left nil.
func (u *applicationUsecase) enrich(ctx context.Context, apps []domain.Application) ([]domain.ApplicationDetail, error) {
	var (
		jobs       map[string]domain.Job
		tenants    map[string]domain.TenantSummary
		candidates map[string]domain.CandidateSummary
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		jobs, err = u.jobRepo.GetMany(gctx, slice.Map(apps, func(_ int, a domain.Application) string { return a.JobID }))
		if err != nil {
			return err
		}
		tenantIDs := make([]string, 0, len(jobs))
		for _, j := range jobs {
			tenantIDs = append(tenantIDs, j.TenantID)
		}
		tenants, err = u.tenantRepo.Summaries(gctx, tenantIDs)
		return err
	})
	g.Go(func() error {
		var err error
		candidates, err = u.userRepo.Summaries(gctx, slice.Map(apps, func(_ int, a domain.Application) string { return a.CandidateID }))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return slice.Map(apps, func(_ int, a domain.Application) domain.ApplicationDetail {
		d := domain.ApplicationDetail{Application: a}
		if j, ok := jobs[a.JobID]; ok {
			d.Job = &j
			d.Tenant = summaryOf(tenants, j.TenantID)
		}
		if c, ok := candidates[a.CandidateID]; ok {
			d.Candidate = &c
		}
		return d
	}), nil
}
