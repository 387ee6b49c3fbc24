package usecase

import (
	"context"
	"strings"
	"time"

	"go-recruiting-platform/internal/domain"
	"go-recruiting-platform/internal/scope"
	"go-recruiting-platform/pkg/apperror"
	"go-recruiting-platform/pkg/validation"

	"github.com/ecodeclub/ekit/slice"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type jobUsecase struct {
	jobRepo    domain.JobRepository
	tenantRepo domain.TenantRepository
	resolver   *scope.Resolver
	validate   *validator.Validate
	now        func() time.Time
}

func NewJobUsecase(jobRepo domain.JobRepository, tenantRepo domain.TenantRepository, resolver *scope.Resolver, validate *validator.Validate) domain.JobUsecase {
	return &jobUsecase{
		jobRepo:    jobRepo,
		tenantRepo: tenantRepo,
		resolver:   resolver,
		validate:   validate,
		now:        time.Now,
	}
}

// Search lists active jobs across every tenant, each with its tenant summary.
func (u *jobUsecase) Search(ctx context.Context, search domain.JobSearch) ([]domain.JobWithTenant, domain.Pagination, error) {
	jobs, total, err := u.jobRepo.Find(ctx, scope.PublicJobs(search), search.Page)
	if err != nil {
		return nil, domain.Pagination{}, err
	}

	tenantIDs := slice.Map(jobs, func(_ int, j domain.Job) string { return j.TenantID })
	tenants, err := u.tenantRepo.Summaries(ctx, tenantIDs)
	if err != nil {
		return nil, domain.Pagination{}, err
	}

	out := slice.Map(jobs, func(_ int, j domain.Job) domain.JobWithTenant {
		return domain.JobWithTenant{Job: j, Tenant: summaryOf(tenants, j.TenantID)}
	})
	return out, search.Page.Result(total), nil
}

// ListByTenant returns the tenant's jobs. Callers outside the tenant only see
// active jobs whatever status they ask for.
func (u *jobUsecase) ListByTenant(ctx context.Context, caller *domain.Identity, tenantID string, status domain.JobStatus, page domain.Page) ([]domain.Job, domain.Pagination, error) {
	if status != "" && !status.Valid() {
		return nil, domain.Pagination{}, apperror.Validation("Invalid job status")
	}
	if _, err := u.tenantRepo.GetByID(ctx, tenantID); err != nil {
		return nil, domain.Pagination{}, err
	}
	if !u.isMember(ctx, caller, tenantID) {
		status = domain.JobStatusActive
	}

	sc, err := u.resolver.ScopeFilter(ctx, scope.KindJob, tenantID, caller, scope.WithJobStatus(status))
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	jobs, total, err := u.jobRepo.Find(ctx, sc.Filter, page)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return jobs, page.Result(total), nil
}

// Get hides jobs that are not active from anyone outside the owning tenant.
func (u *jobUsecase) Get(ctx context.Context, caller *domain.Identity, id string) (*domain.JobWithTenant, error) {
	job, err := u.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.Status != domain.JobStatusActive && !u.isMember(ctx, caller, job.TenantID) {
		return nil, apperror.NotFound("Job not found")
	}

	tenants, err := u.tenantRepo.Summaries(ctx, []string{job.TenantID})
	if err != nil {
		return nil, err
	}
	return &domain.JobWithTenant{Job: *job, Tenant: summaryOf(tenants, job.TenantID)}, nil
}

func (u *jobUsecase) Create(ctx context.Context, identity domain.Identity, tenantID string, input domain.CreateJobInput) (*domain.Job, error) {
	if err := validation.Struct(u.validate, input); err != nil {
		return nil, err
	}
	if _, err := u.tenantRepo.GetByID(ctx, tenantID); err != nil {
		return nil, err
	}
	if err := u.resolver.RequireMembership(ctx, identity, tenantID); err != nil {
		return nil, err
	}

	now := u.now().UTC()
	job := &domain.Job{
		ID:           uuid.NewString(),
		TenantID:     tenantID,
		Title:        strings.TrimSpace(input.Title),
		Department:   strings.TrimSpace(input.Department),
		Location:     strings.TrimSpace(input.Location),
		Type:         input.Type,
		Remote:       input.Remote,
		Skills:       normalizeSkills(input.Skills),
		SalaryRange:  domain.SalaryRange{Currency: domain.DefaultCurrency},
		Description:  input.Description,
		Requirements: input.Requirements,
		Benefits:     input.Benefits,
		Status:       input.Status,
		OpenAt:       now,
		CloseAt:      input.CloseAt,
		CreatedBy:    identity.UserID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if job.Status == "" {
		job.Status = domain.JobStatusDraft
	}
	applySalary(&job.SalaryRange, input.SalaryRange)
	if err := checkSalary(job.SalaryRange); err != nil {
		return nil, err
	}

	if err := u.jobRepo.Create(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// Update applies only the allow-listed fields of patch. Tenant, creator and
// the application counter are never writable.
func (u *jobUsecase) Update(ctx context.Context, identity domain.Identity, id string, patch domain.JobPatch) (*domain.Job, error) {
	if err := validation.Struct(u.validate, patch); err != nil {
		return nil, err
	}
	job, err := u.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := u.resolver.RequireMembership(ctx, identity, job.TenantID); err != nil {
		return nil, err
	}

	set := jobPatchSet(patch)
	if patch.SalaryRange != nil {
		salary := job.SalaryRange
		applySalary(&salary, patch.SalaryRange)
		if err := checkSalary(salary); err != nil {
			return nil, err
		}
		set["salaryRange"] = salary
	}
	if len(set) == 0 {
		return nil, apperror.Validation("No updatable fields supplied")
	}
	set["updatedAt"] = u.now().UTC()

	if err := u.jobRepo.Update(ctx, id, set); err != nil {
		return nil, err
	}
	return u.jobRepo.GetByID(ctx, id)
}

func (u *jobUsecase) Delete(ctx context.Context, identity domain.Identity, id string) error {
	job, err := u.jobRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := u.resolver.RequireMembership(ctx, identity, job.TenantID); err != nil {
		return err
	}
	return u.jobRepo.Delete(ctx, id)
}

// isMember never errors: an unauthenticated caller or a failed lookup counts as outside.
func (u *jobUsecase) isMember(ctx context.Context, caller *domain.Identity, tenantID string) bool {
	if caller == nil {
		return false
	}
	return u.resolver.RequireMembership(ctx, *caller, tenantID) == nil
}

func jobPatchSet(patch domain.JobPatch) map[string]any {
	set := map[string]any{}
	if patch.Title != nil {
		set["title"] = strings.TrimSpace(*patch.Title)
	}
	if patch.Department != nil {
		set["department"] = strings.TrimSpace(*patch.Department)
	}
	if patch.Location != nil {
		set["location"] = strings.TrimSpace(*patch.Location)
	}
	if patch.Type != nil {
		set["type"] = *patch.Type
	}
	if patch.Remote != nil {
		set["remote"] = *patch.Remote
	}
	if patch.Skills != nil {
		set["skills"] = normalizeSkills(*patch.Skills)
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Requirements != nil {
		set["requirements"] = *patch.Requirements
	}
	if patch.Benefits != nil {
		set["benefits"] = *patch.Benefits
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.CloseAt != nil {
		set["closeAt"] = *patch.CloseAt
	}
	return set
}

func applySalary(dst *domain.SalaryRange, in *domain.SalaryInput) {
	if in == nil {
		return
	}
	if in.Min != nil {
		dst.Min = *in.Min
	}
	if in.Max != nil {
		dst.Max = *in.Max
	}
	if in.Currency != nil {
		dst.Currency = strings.ToUpper(*in.Currency)
	}
}

func checkSalary(s domain.SalaryRange) error {
	if s.Max > 0 && s.Min > s.Max {
		return apperror.Validation("Salary minimum cannot exceed maximum")
	}
	return nil
}

func normalizeSkills(skills []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

func summaryOf(summaries map[string]domain.TenantSummary, id string) *domain.TenantSummary {
	s, ok := summaries[id]
	if !ok {
		return nil
	}
	return &s
}
