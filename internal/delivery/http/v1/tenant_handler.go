package v1

import (
	"net/http"

	"go-recruiting-platform/internal/delivery/http/response"
	"go-recruiting-platform/internal/domain"
	"go-recruiting-platform/pkg/metrics"
	"go-recruiting-platform/pkg/validation"

	"github.com/gin-gonic/gin"
)

const tenantApplicationsPageLimit = 20

type TenantHandler struct {
	tenantUC      domain.TenantUsecase
	jobUC         domain.JobUsecase
	applicationUC domain.ApplicationUsecase
}

func NewTenantHandler(r *gin.RouterGroup, gates Gates, tenantUC domain.TenantUsecase, jobUC domain.JobUsecase, applicationUC domain.ApplicationUsecase) {
	handler := &TenantHandler{tenantUC: tenantUC, jobUC: jobUC, applicationUC: applicationUC}

	tenants := r.Group("/tenants")
	{
		tenants.POST("", gates.Authenticated, handler.Claim)
		tenants.GET("", gates.Authenticated, handler.List)
		tenants.GET("/by-slug/:slug", handler.GetBySlug)
		tenants.GET("/:id", handler.Get)
		tenants.PATCH("/:id", gates.Recruiter, handler.Update)
		tenants.GET("/:id/jobs", gates.Optional, handler.ListJobs)
		tenants.POST("/:id/jobs", gates.Recruiter, handler.CreateJob)
		tenants.GET("/:id/applications", gates.Recruiter, handler.ListApplications)
	}
}

type TenantClaimResponse struct {
	Tenant       *domain.Tenant `json:"tenant"`
	User         UserResponse   `json:"user"`
	AccessToken  string         `json:"accessToken"`
	RefreshToken string         `json:"refreshToken"`
}

// Claim godoc
// @Summary      Create a tenant and claim ownership
// @Description  Creates the tenant, links it to the caller and promotes a candidate to recruiter. Returns fresh tokens.
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Param        tenant  body      domain.CreateTenantInput  true  "Tenant"
// @Success      201     {object}  response.Response{data=TenantClaimResponse}
// @Failure      400     {object}  response.Response
// @Failure      401     {object}  response.Response
// @Failure      409     {object}  response.Response
// @Router       /tenants [post]
// @Security     BearerAuth
func (h *TenantHandler) Claim(c *gin.Context) {
	var input domain.CreateTenantInput
	if !bindJSON(c, validation.CreateTenantSchema, &input) {
		return
	}

	claim, err := h.tenantUC.ClaimOwnership(c.Request.Context(), identity(c), input)
	if err != nil {
		c.Error(err)
		return
	}

	metrics.TenantClaims.Inc()
	response.Success(c, http.StatusCreated, "Tenant created", TenantClaimResponse{
		Tenant:       claim.Tenant,
		User:         toUserResponse(claim.User),
		AccessToken:  claim.Tokens.AccessToken,
		RefreshToken: claim.Tokens.RefreshToken,
	})
}

// List godoc
// @Summary      List tenants
// @Tags         tenants
// @Produce      json
// @Param        page   query     int  false  "Page number"
// @Param        limit  query     int  false  "Page size"
// @Success      200    {object}  response.Response{data=response.PageData}
// @Router       /tenants [get]
// @Security     BearerAuth
func (h *TenantHandler) List(c *gin.Context) {
	tenants, pagination, err := h.tenantUC.List(c.Request.Context(), pageFrom(c, domain.DefaultPageLimit))
	if err != nil {
		c.Error(err)
		return
	}
	response.Paginated(c, http.StatusOK, "Tenants retrieved", tenants, pagination)
}

// Get godoc
// @Summary      Get a tenant
// @Tags         tenants
// @Produce      json
// @Param        id   path      string  true  "Tenant ID"
// @Success      200  {object}  response.Response{data=domain.Tenant}
// @Failure      404  {object}  response.Response
// @Router       /tenants/{id} [get]
func (h *TenantHandler) Get(c *gin.Context) {
	tenant, err := h.tenantUC.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Tenant retrieved", tenant)
}

// GetBySlug godoc
// @Summary      Get a tenant portal by slug
// @Tags         tenants
// @Produce      json
// @Param        slug  path      string  true  "Tenant slug"
// @Success      200   {object}  response.Response{data=domain.Tenant}
// @Failure      404   {object}  response.Response
// @Router       /tenants/by-slug/{slug} [get]
func (h *TenantHandler) GetBySlug(c *gin.Context) {
	tenant, err := h.tenantUC.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Tenant retrieved", tenant)
}

// Update godoc
// @Summary      Update a tenant
// @Description  Only name, branding and settings are writable, and only by members of the tenant.
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Param        id     path      string              true  "Tenant ID"
// @Param        patch  body      domain.TenantPatch  true  "Fields to change"
// @Success      200    {object}  response.Response{data=domain.Tenant}
// @Failure      400    {object}  response.Response
// @Failure      403    {object}  response.Response
// @Failure      404    {object}  response.Response
// @Router       /tenants/{id} [patch]
// @Security     BearerAuth
func (h *TenantHandler) Update(c *gin.Context) {
	var patch domain.TenantPatch
	if !bindJSON(c, validation.TenantPatchSchema, &patch) {
		return
	}

	tenant, err := h.tenantUC.Update(c.Request.Context(), identity(c), c.Param("id"), patch)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Tenant updated", tenant)
}

// ListJobs godoc
// @Summary      List a tenant's jobs
// @Description  Callers outside the tenant only see active jobs.
// @Tags         tenants
// @Produce      json
// @Param        id      path      string  true   "Tenant ID"
// @Param        status  query     string  false  "draft, active, paused or closed"
// @Param        page    query     int     false  "Page number"
// @Param        limit   query     int     false  "Page size"
// @Success      200     {object}  response.Response{data=response.PageData}
// @Failure      404     {object}  response.Response
// @Router       /tenants/{id}/jobs [get]
func (h *TenantHandler) ListJobs(c *gin.Context) {
	jobs, pagination, err := h.jobUC.ListByTenant(c.Request.Context(), optionalIdentity(c), c.Param("id"),
		domain.JobStatus(c.Query("status")), pageFrom(c, domain.DefaultPageLimit))
	if err != nil {
		c.Error(err)
		return
	}
	response.Paginated(c, http.StatusOK, "Jobs retrieved", jobs, pagination)
}

// CreateJob godoc
// @Summary      Post a job
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Param        id   path      string                 true  "Tenant ID"
// @Param        job  body      domain.CreateJobInput  true  "Job"
// @Success      201  {object}  response.Response{data=domain.Job}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /tenants/{id}/jobs [post]
// @Security     BearerAuth
func (h *TenantHandler) CreateJob(c *gin.Context) {
	var input domain.CreateJobInput
	if !bindJSON(c, validation.CreateJobSchema, &input) {
		return
	}

	job, err := h.jobUC.Create(c.Request.Context(), identity(c), c.Param("id"), input)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Job created", job)
}

// ListApplications godoc
// @Summary      List applications to a tenant's jobs
// @Tags         tenants
// @Produce      json
// @Param        id      path      string  true   "Tenant ID"
// @Param        jobId   query     string  false  "Restrict to one job of the tenant"
// @Param        status  query     string  false  "Application status"
// @Param        page    query     int     false  "Page number"
// @Param        limit   query     int     false  "Page size"
// @Success      200     {object}  response.Response{data=response.PageData}
// @Failure      403     {object}  response.Response
// @Router       /tenants/{id}/applications [get]
// @Security     BearerAuth
func (h *TenantHandler) ListApplications(c *gin.Context) {
	apps, pagination, err := h.applicationUC.ListForTenant(c.Request.Context(), identity(c), c.Param("id"), domain.ApplicationQuery{
		JobID:  c.Query("jobId"),
		Status: domain.ApplicationStatus(c.Query("status")),
		Page:   pageFrom(c, tenantApplicationsPageLimit),
	})
	if err != nil {
		c.Error(err)
		return
	}
	response.Paginated(c, http.StatusOK, "Applications retrieved", apps, pagination)
}
