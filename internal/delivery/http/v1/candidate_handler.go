package v1

import (
	"net/http"

	"go-recruiting-platform/internal/delivery/http/response"
	"go-recruiting-platform/internal/domain"
	"go-recruiting-platform/pkg/validation"

	"github.com/gin-gonic/gin"
)

type CandidateHandler struct {
	candidateUC   domain.CandidateUsecase
	applicationUC domain.ApplicationUsecase
}

func NewCandidateHandler(r *gin.RouterGroup, gates Gates, candidateUC domain.CandidateUsecase, applicationUC domain.ApplicationUsecase) {
	handler := &CandidateHandler{candidateUC: candidateUC, applicationUC: applicationUC}

	me := r.Group("/me", gates.Candidate)
	{
		me.GET("/profile", handler.GetProfile)
		me.PATCH("/profile", handler.UpdateProfile)
		me.GET("/applications", handler.ListApplications)
	}

	r.GET("/profiles/public", handler.ListPublicProfiles)
}

// GetProfile godoc
// @Summary      Get own candidate profile
// @Description  Returns an empty private profile when none has been saved yet.
// @Tags         candidates
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.CandidateProfile}
// @Failure      401  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /me/profile [get]
// @Security     BearerAuth
func (h *CandidateHandler) GetProfile(c *gin.Context) {
	profile, err := h.candidateUC.GetOwnProfile(c.Request.Context(), identity(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile retrieved", profile)
}

// UpdateProfile godoc
// @Summary      Update own candidate profile
// @Description  Replaces the supplied sections and visibility. Creates the profile on first write.
// @Tags         candidates
// @Accept       json
// @Produce      json
// @Param        patch  body      domain.ProfilePatch  true  "Sections and visibility"
// @Success      200    {object}  response.Response{data=domain.CandidateProfile}
// @Failure      400    {object}  response.Response
// @Failure      403    {object}  response.Response
// @Router       /me/profile [patch]
// @Security     BearerAuth
func (h *CandidateHandler) UpdateProfile(c *gin.Context) {
	var patch domain.ProfilePatch
	if !bindJSON(c, validation.ProfilePatchSchema, &patch) {
		return
	}

	profile, err := h.candidateUC.UpdateOwnProfile(c.Request.Context(), identity(c), patch)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile updated", profile)
}

// ListApplications godoc
// @Summary      List own applications
// @Tags         candidates
// @Produce      json
// @Param        status  query     string  false  "Application status"
// @Param        page    query     int     false  "Page number"
// @Param        limit   query     int     false  "Page size"
// @Success      200     {object}  response.Response{data=response.PageData}
// @Failure      403     {object}  response.Response
// @Router       /me/applications [get]
// @Security     BearerAuth
func (h *CandidateHandler) ListApplications(c *gin.Context) {
	apps, pagination, err := h.applicationUC.ListOwn(c.Request.Context(), identity(c), domain.ApplicationQuery{
		Status: domain.ApplicationStatus(c.Query("status")),
		Page:   pageFrom(c, domain.DefaultPageLimit),
	})
	if err != nil {
		c.Error(err)
		return
	}
	response.Paginated(c, http.StatusOK, "Applications retrieved", apps, pagination)
}

// ListPublicProfiles godoc
// @Summary      Browse public candidate profiles
// @Tags         candidates
// @Produce      json
// @Param        skills    query     string  false  "Comma separated; matches any"
// @Param        location  query     string  false  "Case-insensitive substring"
// @Param        page      query     int     false  "Page number"
// @Param        limit     query     int     false  "Page size"
// @Success      200       {object}  response.Response{data=response.PageData}
// @Router       /profiles/public [get]
func (h *CandidateHandler) ListPublicProfiles(c *gin.Context) {
	profiles, pagination, err := h.candidateUC.ListPublicProfiles(c.Request.Context(), domain.ProfileSearch{
		Skills:   listQuery(c, "skills"),
		Location: c.Query("location"),
		Page:     pageFrom(c, domain.DefaultPageLimit),
	})
	if err != nil {
		c.Error(err)
		return
	}
	response.Paginated(c, http.StatusOK, "Profiles retrieved", profiles, pagination)
}
