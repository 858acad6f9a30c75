package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/justsurfingit/job-portal/internal/dtos"
	"github.com/justsurfingit/job-portal/internal/services"
)

// JobHandler needs the application service to tell a signed-in student
// whether they already applied.
type JobHandler struct {
	Jobs         *services.JobService
	Applications *services.ApplicationService
}

func NewJobHandler(jobs *services.JobService, apps *services.ApplicationService) *JobHandler {
	return &JobHandler{
		Jobs:         jobs,
		Applications: apps,
	}
}

// PostJob is POST /api/job/post
func (h *JobHandler) PostJob(c *gin.Context) {
	var req dtos.JobPostRequest
	if err := bind(c, &req); err != nil {
		abortWithError(c, err)
		return
	}
	job, err := h.Jobs.Post(c.Request.Context(), identity(c), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Job posted successfully.", gin.H{"job": job})
}

// ListJobs is GET /api/job/get?keyword=&location=&jobType=
func (h *JobHandler) ListJobs(c *gin.Context) {
	var filter dtos.JobFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		abortWithError(c, dtos.ValidationError(err))
		return
	}
	jobs, err := h.Jobs.List(c.Request.Context(), filter)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"jobs": jobs})
}

// GetJob is public. With a valid session the response also says whether
// the caller has applied.
func (h *JobHandler) GetJob(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}
	ctx := c.Request.Context()
	job, err := h.Jobs.Get(ctx, id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if who := identity(c); who.AccountID != uuid.Nil {
		applied, err := h.Applications.HasApplied(ctx, who.AccountID, id)
		if err != nil {
			abortWithError(c, err)
			return
		}
		job.HasApplied = &applied
	}
	// "status" mirrors "success"; the job detail page reads it.
	respond(c, http.StatusOK, "", gin.H{"job": job, "status": true})
}

// AdminJobs is GET /api/job/getadminjobs: jobs the recruiter posted.
func (h *JobHandler) AdminJobs(c *gin.Context) {
	jobs, err := h.Jobs.ListMine(c.Request.Context(), identity(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"jobs": jobs})
}
