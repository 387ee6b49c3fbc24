package v1

import (
	"net/http"

	"go-recruiting-platform/internal/delivery/http/response"
	"go-recruiting-platform/internal/domain"
	"go-recruiting-platform/pkg/validation"

	"github.com/gin-gonic/gin"
)

type ApplicationHandler struct {
	applicationUC domain.ApplicationUsecase
}

func NewApplicationHandler(r *gin.RouterGroup, gates Gates, applicationUC domain.ApplicationUsecase) {
	handler := &ApplicationHandler{applicationUC: applicationUC}

	applications := r.Group("/applications", gates.Authenticated)
	{
		applications.GET("/:id", handler.Get)
		applications.PATCH("/:id", handler.Update)
	}
}

// Get godoc
// @Summary      Get an application
// @Description  Visible to the applying candidate and to members of the job's tenant.
// @Tags         applications
// @Produce      json
// @Param        id   path      string  true  "Application ID"
// @Success      200  {object}  response.Response{data=domain.ApplicationDetail}
// @Failure      404  {object}  response.Response
// @Router       /applications/{id} [get]
// @Security     BearerAuth
func (h *ApplicationHandler) Get(c *gin.Context) {
	app, err := h.applicationUC.Get(c.Request.Context(), identity(c), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Application retrieved", app)
}

// Update godoc
// @Summary      Update an application
// @Description  Reviewers move status, stage and notes. Candidates may only withdraw.
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        id     path      string                   true  "Application ID"
// @Param        patch  body      domain.ApplicationPatch  true  "Fields to change"
// @Success      200    {object}  response.Response{data=domain.Application}
// @Failure      400    {object}  response.Response
// @Failure      403    {object}  response.Response
// @Failure      404    {object}  response.Response
// @Failure      409    {object}  response.Response
// @Router       /applications/{id} [patch]
// @Security     BearerAuth
func (h *ApplicationHandler) Update(c *gin.Context) {
	var patch domain.ApplicationPatch
	if !bindJSON(c, validation.ApplicationPatchSchema, &patch) {
		return
	}

	app, err := h.applicationUC.Update(c.Request.Context(), identity(c), c.Param("id"), patch)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Application updated", app)
}
