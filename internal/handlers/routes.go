package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/job-portal/internal/services"
	"gorm.io/gorm"
)

type Deps struct {
	DB             *gorm.DB
	Guard          *SessionGuard
	Users          *UserHandler
	Companies      *CompanyHandler
	Jobs           *JobHandler
	Applications   *ApplicationHandler
	RequestTimeout time.Duration

	// UploadDir is served under /uploads when blobs are kept on local disk.
	UploadDir string
}

func SetupRoutes(r *gin.Engine, d Deps) {
	r.Use(RequestLogger())
	if d.RequestTimeout > 0 {
		r.Use(RequestTimeout(d.RequestTimeout))
	}
	r.GET("/health", HealthCheck(d.DB))
	if d.UploadDir != "" {
		r.Static("/uploads", d.UploadDir)
	}

	session := d.Guard.Require()
	api := r.Group("/api")

	user := api.Group("/user")
	{
		user.POST("/register", d.Users.Register)
		user.POST("/login", d.Users.Login)
		user.POST("/logout", d.Users.Logout)
		user.POST("/profile/update", session, d.Users.UpdateProfile)
	}

	company := api.Group("/company", session)
	{
		company.POST("/register", d.Guard.Allow(services.ActionCreateCompany), d.Companies.Register)
		company.GET("/get", d.Companies.List)
		company.GET("/get/:id", d.Companies.Get)
		company.PUT("/update/:id", d.Guard.Allow(services.ActionUpdateCompany), d.Companies.Update)
	}

	job := api.Group("/job")
	{
		job.POST("/post", session, d.Guard.Allow(services.ActionPostJob), d.Jobs.PostJob)
		job.GET("/get", d.Jobs.ListJobs)
		job.GET("/get/:id", d.Guard.Optional(), d.Jobs.GetJob)
		job.GET("/getadminjobs", session, d.Guard.Allow(services.ActionListOwnJobs), d.Jobs.AdminJobs)
	}

	application := api.Group("/application", session)
	{
		// Apply reports a missing job before the role check.
		application.GET("/apply/:id", d.Applications.Apply)
		application.POST("/apply/:id", d.Applications.Apply)
		application.GET("/get", d.Applications.Mine)

		applicants := d.Guard.Allow(services.ActionViewApplicants)
		application.GET("/:id/applicants", applicants, d.Applications.Applicants)
		application.GET("/applicants/:id", applicants, d.Applications.Applicants)
		application.POST("/status/:id/update", d.Guard.Allow(services.ActionUpdateApplication), d.Applications.UpdateStatus)
	}
}
