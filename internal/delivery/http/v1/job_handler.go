package v1

import (
	"net/http"
	"strconv"

	"go-recruiting-platform/internal/delivery/http/response"
	"go-recruiting-platform/internal/domain"
	"go-recruiting-platform/pkg/apperror"
	"go-recruiting-platform/pkg/metrics"
	"go-recruiting-platform/pkg/validation"

	"github.com/gin-gonic/gin"
)

type JobHandler struct {
	jobUC         domain.JobUsecase
	applicationUC domain.ApplicationUsecase
}

func NewJobHandler(r *gin.RouterGroup, gates Gates, jobUC domain.JobUsecase, applicationUC domain.ApplicationUsecase) {
	handler := &JobHandler{jobUC: jobUC, applicationUC: applicationUC}

	jobs := r.Group("/jobs")
	{
		jobs.GET("", handler.Search)
		jobs.GET("/:id", gates.Optional, handler.Get)
		jobs.PATCH("/:id", gates.Recruiter, handler.Update)
		jobs.DELETE("/:id", gates.Recruiter, handler.Delete)
		jobs.POST("/:id/apply", gates.Candidate, handler.Apply)
	}
}

// Search godoc
// @Summary      Search active jobs
// @Description  Public search over active jobs across all tenants
// @Tags         jobs
// @Produce      json
// @Param        skills    query     string  false  "Comma separated; matches any"
// @Param        location  query     string  false  "Case-insensitive substring"
// @Param        type      query     string  false  "full-time, part-time, contract or internship"
// @Param        remote    query     bool    false  "Remote only"
// @Param        page      query     int     false  "Page number"
// @Param        limit     query     int     false  "Page size"
// @Success      200       {object}  response.Response{data=response.PageData}
// @Failure      400       {object}  response.Response
// @Router       /jobs [get]
func (h *JobHandler) Search(c *gin.Context) {
	search := domain.JobSearch{
		Skills:   listQuery(c, "skills"),
		Location: c.Query("location"),
		Type:     domain.JobType(c.Query("type")),
		Page:     pageFrom(c, domain.DefaultPageLimit),
	}
	if raw := c.Query("remote"); raw != "" {
		remote, err := strconv.ParseBool(raw)
		if err != nil {
			c.Error(apperror.Validation("remote must be a boolean"))
			return
		}
		search.Remote = remote
	}

	jobs, pagination, err := h.jobUC.Search(c.Request.Context(), search)
	if err != nil {
		c.Error(err)
		return
	}
	response.Paginated(c, http.StatusOK, "Jobs retrieved", jobs, pagination)
}

// Get godoc
// @Summary      Get a job
// @Description  Jobs that are not active are only visible to members of the owning tenant.
// @Tags         jobs
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  response.Response{data=domain.JobWithTenant}
// @Failure      404  {object}  response.Response
// @Router       /jobs/{id} [get]
func (h *JobHandler) Get(c *gin.Context) {
	job, err := h.jobUC.Get(c.Request.Context(), optionalIdentity(c), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job retrieved", job)
}

// Update godoc
// @Summary      Update a job
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        id     path      string           true  "Job ID"
// @Param        patch  body      domain.JobPatch  true  "Fields to change"
// @Success      200    {object}  response.Response{data=domain.Job}
// @Failure      400    {object}  response.Response
// @Failure      403    {object}  response.Response
// @Failure      404    {object}  response.Response
// @Router       /jobs/{id} [patch]
// @Security     BearerAuth
func (h *JobHandler) Update(c *gin.Context) {
	var patch domain.JobPatch
	if !bindJSON(c, validation.JobPatchSchema, &patch) {
		return
	}

	job, err := h.jobUC.Update(c.Request.Context(), identity(c), c.Param("id"), patch)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job updated", job)
}

// Delete godoc
// @Summary      Delete a job
// @Tags         jobs
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /jobs/{id} [delete]
// @Security     BearerAuth
func (h *JobHandler) Delete(c *gin.Context) {
	if err := h.jobUC.Delete(c.Request.Context(), identity(c), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Job deleted", nil)
}

// Apply godoc
// @Summary      Apply to a job
// @Description  Snapshots the selected profile sections onto a new application.
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        id     path      string             true  "Job ID"
// @Param        apply  body      domain.ApplyInput  true  "Sections to share"
// @Success      201    {object}  response.Response{data=domain.Application}
// @Failure      400    {object}  response.Response
// @Failure      403    {object}  response.Response
// @Failure      404    {object}  response.Response
// @Failure      409    {object}  response.Response
// @Router       /jobs/{id}/apply [post]
// @Security     BearerAuth
func (h *JobHandler) Apply(c *gin.Context) {
	var input domain.ApplyInput
	if !bindJSON(c, validation.ApplySchema, &input) {
		return
	}

	app, err := h.applicationUC.Apply(c.Request.Context(), identity(c), c.Param("id"), input)
	if err != nil {
		c.Error(err)
		return
	}

	metrics.ApplicationsSubmitted.Inc()
	response.Success(c, http.StatusCreated, "Application submitted successfully", app)
}
