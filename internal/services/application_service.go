package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/justsurfingit/job-portal/internal/apperr"
	"github.com/justsurfingit/job-portal/internal/auth"
	"github.com/justsurfingit/job-portal/internal/database"
	"github.com/justsurfingit/job-portal/internal/events"
	"github.com/justsurfingit/job-portal/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ApplicationService records applications. A student applies to a job at
// most once; the (job_id, applicant_id) unique index enforces it, so
// concurrent requests cannot both insert.
type ApplicationService struct {
	DB     *gorm.DB
	Gate   *Gate
	Events events.Publisher
}

func NewApplicationService(db *gorm.DB, gate *Gate, pub events.Publisher) *ApplicationService {
	return &ApplicationService{DB: db, Gate: gate, Events: pub}
}

func (s *ApplicationService) Apply(ctx context.Context, who auth.Identity, jobID uuid.UUID) (*models.Application, error) {
	var job models.Job
	err := s.DB.WithContext(ctx).Select("id").First(&job, "id = ?", jobID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("job")
	}
	if err != nil {
		return nil, apperr.Upstream("load job", err)
	}
	if err := s.Gate.Authorize(ctx, who, ActionApply, jobID); err != nil {
		return nil, err
	}

	app := &models.Application{
		JobID:       jobID,
		ApplicantID: who.AccountID,
		Status:      models.StatusPending,
	}
	if err := s.DB.WithContext(ctx).Create(app).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.ErrAlreadyApplied
		}
		return nil, apperr.Upstream("create application", err)
	}

	logrus.WithFields(logrus.Fields{"application_id": app.ID, "job_id": jobID}).Info("application created")
	s.publish(ctx, events.ApplicationCreated, app)
	return app, nil
}

// HasApplied reads the same table the unique index guards, so it agrees
// with Apply.
func (s *ApplicationService) HasApplied(ctx context.Context, accountID, jobID uuid.UUID) (bool, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&models.Application{}).
		Where("job_id = ? AND applicant_id = ?", jobID, accountID).
		Count(&n).Error
	if err != nil {
		return false, apperr.Upstream("check application", err)
	}
	return n > 0, nil
}

// ListApplicants returns a job's applications, first applicant first, with
// the applicant's account attached. Only the job's owner may read it.
func (s *ApplicationService) ListApplicants(ctx context.Context, who auth.Identity, jobID uuid.UUID) ([]models.Application, error) {
	if err := s.Gate.Authorize(ctx, who, ActionViewApplicants, jobID); err != nil {
		return nil, err
	}
	apps := []models.Application{}
	err := s.DB.WithContext(ctx).
		Preload("Applicant").
		Where("job_id = ?", jobID).
		Order("created_at ASC").
		Find(&apps).Error
	if err != nil {
		return nil, apperr.Upstream("list applicants", err)
	}
	return apps, nil
}

// ListMine returns the caller's applications, newest first, with job and
// company attached.
func (s *ApplicationService) ListMine(ctx context.Context, who auth.Identity) ([]models.Application, error) {
	if who.AccountID == uuid.Nil {
		return nil, apperr.ErrUnauthenticated
	}
	apps := []models.Application{}
	err := s.DB.WithContext(ctx).
		Preload("Job.Company").
		Where("applicant_id = ?", who.AccountID).
		Order("created_at DESC").
		Find(&apps).Error
	if err != nil {
		return nil, apperr.Upstream("list applications", err)
	}
	return apps, nil
}

func (s *ApplicationService) UpdateStatus(ctx context.Context, who auth.Identity, appID uuid.UUID, status string) (*models.Application, error) {
	if err := s.Gate.CheckRole(who, ActionUpdateApplication); err != nil {
		return nil, err
	}
	st, err := models.ParseApplicationStatus(status)
	if err != nil {
		return nil, apperr.Validation("status must be one of [pending accepted rejected]")
	}
	if err := s.Gate.Authorize(ctx, who, ActionUpdateApplication, appID); err != nil {
		return nil, err
	}

	var app models.Application
	err = s.DB.WithContext(ctx).First(&app, "id = ?", appID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("application")
	}
	if err != nil {
		return nil, apperr.Upstream("load application", err)
	}
	if err := s.DB.WithContext(ctx).Model(&app).Update("status", st).Error; err != nil {
		return nil, apperr.Upstream("update application status", err)
	}
	app.Status = st

	s.publish(ctx, events.ApplicationStatusUpdated, &app)
	return &app, nil
}

// publish is best effort: the application is already stored.
func (s *ApplicationService) publish(ctx context.Context, typ string, app *models.Application) {
	err := s.Events.Publish(ctx, events.ApplicationEvent{
		Type:          typ,
		ApplicationID: app.ID,
		JobID:         app.JobID,
		ApplicantID:   app.ApplicantID,
		Status:        string(app.Status),
		OccurredAt:    time.Now().UTC(),
	})
	if err != nil {
		logrus.WithError(err).WithField("application_id", app.ID).Warn("failed to publish application event")
	}
}
