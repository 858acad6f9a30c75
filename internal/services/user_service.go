package services

import (
	"context"
	"errors"
	"fmt"
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

type UserService struct {
	DB       *gorm.DB
	Gate     *Gate
	Hasher   *auth.Hasher
	Sessions *auth.SessionManager
	Blobs    storage.BlobStore
}

func NewUserService(db *gorm.DB, gate *Gate, hasher *auth.Hasher, sessions *auth.SessionManager, blobs storage.BlobStore) *UserService {
	return &UserService{
		DB:       db,
		Gate:     gate,
		Hasher:   hasher,
		Sessions: sessions,
		Blobs:    blobs,
	}
}

// Register creates an account. Only the bcrypt hash of the password is
// stored. photo is optional.
func (s *UserService) Register(ctx context.Context, req dtos.RegisterRequest, photo *storage.Blob) (*models.Account, error) {
	if err := dtos.Validate(req); err != nil {
		return nil, err
	}
	role, err := models.ParseRole(req.Role)
	if err != nil {
		return nil, apperr.Validation("%v", err)
	}
	email := normalizeEmail(req.Email)

	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Account{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, apperr.Upstream("check email", err)
	}
	if count > 0 {
		return nil, apperr.ErrDuplicateEmail
	}

	hash, err := s.Hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := models.Account{
		FullName:     strings.TrimSpace(req.FullName),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		PhoneNumber:  strings.TrimSpace(req.PhoneNumber),
	}
	if photo != nil {
		ref, err := s.Blobs.Store(ctx, "profile-photos", *photo)
		if err != nil {
			return nil, apperr.Upstream("store profile photo", err)
		}
		account.Profile.PhotoRef = ref
	}

	// The unique index settles a race between two registrations.
	if err := s.DB.WithContext(ctx).Create(&account).Error; err != nil {
		discardBlob(ctx, s.Blobs, account.Profile.PhotoRef)
		if database.IsUniqueViolation(err) {
			return nil, apperr.ErrDuplicateEmail
		}
		return nil, apperr.Upstream("create account", err)
	}

	logrus.WithFields(logrus.Fields{"account_id": account.ID, "role": account.Role}).Info("account registered")
	return &account, nil
}

// Login checks the credentials and issues a session. Unknown email, wrong
// password and wrong role all return the same ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, req dtos.LoginRequest) (*models.Account, auth.Session, error) {
	if err := dtos.Validate(req); err != nil {
		return nil, auth.Session{}, err
	}

	var account models.Account
	err := s.DB.WithContext(ctx).First(&account, "email = ?", normalizeEmail(req.Email)).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		s.Hasher.VerifyAbsent(req.Password)
		return nil, auth.Session{}, apperr.ErrInvalidCredentials
	case err != nil:
		return nil, auth.Session{}, apperr.Upstream("load account", err)
	}

	if !s.Hasher.Verify(account.PasswordHash, req.Password) {
		return nil, auth.Session{}, apperr.ErrInvalidCredentials
	}
	if req.Role != "" && models.Role(req.Role) != account.Role {
		return nil, auth.Session{}, apperr.ErrInvalidCredentials
	}

	session, err := s.Sessions.Issue(account.ID, account.Role)
	if err != nil {
		return nil, auth.Session{}, err
	}
	logrus.WithField("account_id", account.ID).Info("login succeeded")
	return &account, session, nil
}

// UpdateProfile changes the fields set in req on the caller's own account.
// resume is optional.
func (s *UserService) UpdateProfile(ctx context.Context, who auth.Identity, accountID uuid.UUID, req dtos.ProfileUpdateRequest, resume *storage.Blob) (*models.Account, error) {
	if err := s.Gate.Authorize(ctx, who, ActionEditProfile, accountID); err != nil {
		return nil, err
	}
	if err := dtos.Validate(req); err != nil {
		return nil, err
	}

	var account models.Account
	err := s.DB.WithContext(ctx).First(&account, "id = ?", accountID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("account")
	}
	if err != nil {
		return nil, apperr.Upstream("load account", err)
	}

	if v := strings.TrimSpace(req.FullName); v != "" {
		account.FullName = v
	}
	if v := strings.TrimSpace(req.Email); v != "" {
		account.Email = normalizeEmail(v)
	}
	if v := strings.TrimSpace(req.PhoneNumber); v != "" {
		account.PhoneNumber = v
	}
	if req.Bio != "" {
		account.Profile.Bio = strings.TrimSpace(req.Bio)
	}
	if req.Skills != "" {
		account.Profile.Skills = dtos.SplitList(req.Skills)
	}
	if resume != nil {
		ref, err := s.Blobs.Store(ctx, "resumes", *resume)
		if err != nil {
			return nil, apperr.Upstream("store resume", err)
		}
		account.Profile.ResumeRef = ref
		account.Profile.ResumeOriginalName = resume.Filename
	}

	if err := s.DB.WithContext(ctx).Save(&account).Error; err != nil {
		if resume != nil {
			discardBlob(ctx, s.Blobs, account.Profile.ResumeRef)
		}
		if database.IsUniqueViolation(err) {
			return nil, apperr.ErrDuplicateEmail
		}
		return nil, apperr.Upstream("update account", err)
	}
	return &account, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// discardBlob removes an upload whose database write failed, so the store
// keeps no object nothing points to.
func discardBlob(ctx context.Context, blobs storage.BlobStore, ref string) {
	if ref == "" {
		return
	}
	if err := blobs.Delete(context.WithoutCancel(ctx), ref); err != nil {
		logrus.WithError(err).WithField("ref", ref).Warn("failed to remove orphaned upload")
	}
}
