package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/justsurfingit/job-portal/internal/apperr"
	"github.com/justsurfingit/job-portal/internal/auth"
	"github.com/justsurfingit/job-portal/internal/database"
	"github.com/justsurfingit/job-portal/internal/dtos"
	"github.com/justsurfingit/job-portal/internal/models"
	"github.com/justsurfingit/job-portal/internal/storage"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type CompanyService struct {
	DB    *gorm.DB
	Gate  *Gate
	Blobs storage.BlobStore
}

func NewCompanyService(db *gorm.DB, gate *Gate, blobs storage.BlobStore) *CompanyService {
	return &CompanyService{DB: db, Gate: gate, Blobs: blobs}
}

func (s *CompanyService) Register(ctx context.Context, who auth.Identity, req dtos.CompanyRegisterRequest) (*models.Company, error) {
	if err := s.Gate.Authorize(ctx, who, ActionCreateCompany, uuid.Nil); err != nil {
		return nil, err
	}
	req.CompanyName = strings.TrimSpace(req.CompanyName)
	if err := dtos.Validate(req); err != nil {
		return nil, err
	}

	company := models.Company{OwnerID: who.AccountID, Name: req.CompanyName}
	if err := s.DB.WithContext(ctx).Create(&company).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.ErrDuplicateCompany
		}
		return nil, apperr.Upstream("create company", err)
	}

	logrus.WithFields(logrus.Fields{"company_id": company.ID, "owner_id": who.AccountID}).Info("company registered")
	return &company, nil
}

// ListMine returns the caller's companies, newest first.
func (s *CompanyService) ListMine(ctx context.Context, who auth.Identity) ([]models.Company, error) {
	if who.AccountID == uuid.Nil {
		return nil, apperr.ErrUnauthenticated
	}
	companies := []models.Company{}
	err := s.DB.WithContext(ctx).
		Where("owner_id = ?", who.AccountID).
		Order("created_at DESC").
		Find(&companies).Error
	if err != nil {
		return nil, apperr.Upstream("list companies", err)
	}
	return companies, nil
}

func (s *CompanyService) Get(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	var company models.Company
	err := s.DB.WithContext(ctx).First(&company, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("company")
	}
	if err != nil {
		return nil, apperr.Upstream("load company", err)
	}
	return &company, nil
}

// Update changes the fields set in req. Only the owning recruiter may call
// it; logo is optional.
func (s *CompanyService) Update(ctx context.Context, who auth.Identity, id uuid.UUID, req dtos.CompanyUpdateRequest, logo *storage.Blob) (*models.Company, error) {
	if err := s.Gate.Authorize(ctx, who, ActionUpdateCompany, id); err != nil {
		return nil, err
	}
	if err := dtos.Validate(req); err != nil {
		return nil, err
	}

	company, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if v := strings.TrimSpace(req.Name); v != "" {
		company.Name = v
	}
	if v := strings.TrimSpace(req.Description); v != "" {
		company.Description = v
	}
	if v := strings.TrimSpace(req.Website); v != "" {
		company.Website = v
	}
	if v := strings.TrimSpace(req.Location); v != "" {
		company.Location = v
	}
	if logo != nil {
		ref, err := s.Blobs.Store(ctx, "logos", *logo)
		if err != nil {
			return nil, apperr.Upstream("store logo", err)
		}
		company.LogoRef = ref
	}

	if err := s.DB.WithContext(ctx).Save(company).Error; err != nil {
		if logo != nil {
			discardBlob(ctx, s.Blobs, company.LogoRef)
		}
		if database.IsUniqueViolation(err) {
			return nil, apperr.ErrDuplicateCompany
		}
		return nil, apperr.Upstream("update company", err)
	}
	return company, nil
}
