package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/job-portal/internal/dtos"
	"github.com/justsurfingit/job-portal/internal/services"
)

type ApplicationHandler struct {
	Applications *services.ApplicationService
}

func NewApplicationHandler(apps *services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{Applications: apps}
}

// Apply is GET or POST /api/application/apply/:id where id is the job.
func (h *ApplicationHandler) Apply(c *gin.Context) {
	jobID, err := pathID(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}
	app, err := h.Applications.Apply(c.Request.Context(), identity(c), jobID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Application submitted.", gin.H{"application": app})
}

// Mine is GET /api/application/get
func (h *ApplicationHandler) Mine(c *gin.Context) {
	apps, err := h.Applications.ListMine(c.Request.Context(), identity(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"applications": apps})
}

// Applicants lists who applied to the job in :id, earliest first.
func (h *ApplicationHandler) Applicants(c *gin.Context) {
	jobID, err := pathID(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}
	apps, err := h.Applications.ListApplicants(c.Request.Context(), identity(c), jobID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"applications": apps})
}

// UpdateStatus is POST /api/application/status/:id/update where id is the
// application.
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	appID, err := pathID(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}
	var req dtos.StatusUpdateRequest
	if err := bind(c, &req); err != nil {
		abortWithError(c, err)
		return
	}
	app, err := h.Applications.UpdateStatus(c.Request.Context(), identity(c), appID, req.Status)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, "Status updated successfully.", gin.H{"application": app})
}
