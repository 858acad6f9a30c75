package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/justsurfingit/job-portal/internal/apperr"
	"github.com/justsurfingit/job-portal/internal/auth"
	"github.com/justsurfingit/job-portal/internal/dtos"
	"github.com/justsurfingit/job-portal/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type JobService struct {
	DB   *gorm.DB
	Gate *Gate
}

func NewJobService(db *gorm.DB, gate *Gate) *JobService {
	return &JobService{
		DB:   db,
		Gate: gate,
	}
}

// JobDetail is a job with its company and how many students applied.
type JobDetail struct {
	models.Job
	ApplicationCount int64 `json:"applicationCount"`
	HasApplied       *bool `json:"hasApplied,omitempty"`
}

// Post creates a job under a company the caller owns. The role is checked
// before the payload so a student is refused whatever it sends.
func (s *JobService) Post(ctx context.Context, who auth.Identity, req dtos.JobPostRequest) (*models.Job, error) {
	if err := s.Gate.CheckRole(who, ActionPostJob); err != nil {
		return nil, err
	}
	if err := dtos.Validate(req); err != nil {
		return nil, err
	}
	companyID, err := uuid.Parse(req.CompanyID)
	if err != nil {
		return nil, apperr.Validation("companyId must be a valid id")
	}
	if err := s.Gate.Authorize(ctx, who, ActionPostJob, companyID); err != nil {
		return nil, err
	}

	job := &models.Job{
		CompanyID:       companyID,
		CreatedByID:     who.AccountID,
		Title:           strings.TrimSpace(req.Title),
		Description:     strings.TrimSpace(req.Description),
		Requirements:    dtos.SplitList(req.Requirements),
		Salary:          float64(req.Salary),
		Location:        strings.TrimSpace(req.Location),
		JobType:         strings.TrimSpace(req.JobType),
		ExperienceLevel: int(req.ExperienceLevel),
		OpenPositions:   int(req.OpenPositions),
	}
	if err := s.DB.WithContext(ctx).Create(job).Error; err != nil {
		return nil, apperr.Upstream("create job", err)
	}

	logrus.WithFields(logrus.Fields{"job_id": job.ID, "company_id": companyID}).Info("job posted")
	return job, nil
}

// List returns jobs matching filter, newest first, with their company.
func (s *JobService) List(ctx context.Context, filter dtos.JobFilter) ([]models.Job, error) {
	q := s.DB.WithContext(ctx).Preload("Company")
	if kw := strings.ToLower(strings.TrimSpace(filter.Keyword)); kw != "" {
		like := containsPattern(kw)
		q = q.Where(`LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\'`, like, like)
	}
	if loc := strings.ToLower(strings.TrimSpace(filter.Location)); loc != "" {
		q = q.Where(`LOWER(location) LIKE ? ESCAPE '\'`, containsPattern(loc))
	}
	if jt := strings.TrimSpace(filter.JobType); jt != "" {
		q = q.Where("job_type = ?", jt)
	}

	jobs := []models.Job{}
	if err := q.Order("created_at DESC").Find(&jobs).Error; err != nil {
		return nil, apperr.Upstream("list jobs", err)
	}
	return jobs, nil
}

// containsPattern matches s literally anywhere in a LIKE ... ESCAPE '\'
// comparison.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func (s *JobService) Get(ctx context.Context, id uuid.UUID) (*JobDetail, error) {
	var job models.Job
	err := s.DB.WithContext(ctx).Preload("Company").First(&job, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("job")
	}
	if err != nil {
		return nil, apperr.Upstream("load job", err)
	}

	detail := &JobDetail{Job: job}
	err = s.DB.WithContext(ctx).Model(&models.Application{}).Where("job_id = ?", id).Count(&detail.ApplicationCount).Error
	if err != nil {
		return nil, apperr.Upstream("count applications", err)
	}
	return detail, nil
}

// ListMine returns the jobs the calling recruiter posted.
func (s *JobService) ListMine(ctx context.Context, who auth.Identity) ([]models.Job, error) {
	if err := s.Gate.CheckRole(who, ActionListOwnJobs); err != nil {
		return nil, err
	}
	jobs := []models.Job{}
	err := s.DB.WithContext(ctx).
		Preload("Company").
		Where("created_by_id = ?", who.AccountID).
		Order("created_at DESC").
		Find(&jobs).Error
	if err != nil {
		return nil, apperr.Upstream("list own jobs", err)
	}
	return jobs, nil
}
