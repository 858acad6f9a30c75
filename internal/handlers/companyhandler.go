package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/job-portal/internal/dtos"
	"github.com/justsurfingit/job-portal/internal/services"
)

type CompanyHandler struct {
	Companies *services.CompanyService
}

func NewCompanyHandler(companies *services.CompanyService) *CompanyHandler {
	return &CompanyHandler{Companies: companies}
}

func (h *CompanyHandler) Register(c *gin.Context) {
	var req dtos.CompanyRegisterRequest
	if err := bind(c, &req); err != nil {
		abortWithError(c, err)
		return
	}
	company, err := h.Companies.Register(c.Request.Context(), identity(c), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Company registered successfully.", gin.H{"company": company})
}

// List is GET /api/company/get: the caller's own companies.
func (h *CompanyHandler) List(c *gin.Context) {
	companies, err := h.Companies.ListMine(c.Request.Context(), identity(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"companies": companies})
}

func (h *CompanyHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}
	company, err := h.Companies.Get(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, "", gin.H{"company": company})
}

// Update is PUT /api/company/update/:id with an optional logo in "file".
func (h *CompanyHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}
	var req dtos.CompanyUpdateRequest
	if err := bind(c, &req); err != nil {
		abortWithError(c, err)
		return
	}
	logo, release, err := upload(c, "file")
	if err != nil {
		abortWithError(c, err)
		return
	}
	defer release()

	company, err := h.Companies.Update(c.Request.Context(), identity(c), id, req, logo)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, "Company information updated.", gin.H{"company": company})
}
