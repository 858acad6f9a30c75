package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Role string

const (
	RoleStudent   Role = "Student"
	RoleRecruiter Role = "Recruiter"
)

// ParseRole accepts only the two enumerated roles.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleStudent, RoleRecruiter:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "pending"
	StatusAccepted ApplicationStatus = "accepted"
	StatusRejected ApplicationStatus = "rejected"
)

func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	switch st := ApplicationStatus(s); st {
	case StatusPending, StatusAccepted, StatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown application status %q", s)
}

type Account struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	FullName     string  `gorm:"not null" json:"fullname"`
	Email        string  `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string  `gorm:"not null" json:"-"`
	Role         Role    `gorm:"type:varchar(16);not null" json:"role"`
	PhoneNumber  string  `json:"phoneNumber"`
	Profile      Profile `gorm:"embedded;embeddedPrefix:profile_" json:"profile"`
}

type Profile struct {
	Bio                string                      `gorm:"type:text" json:"bio"`
	Skills             datatypes.JSONSlice[string] `json:"skills"`
	ResumeRef          string                      `json:"resume"`
	ResumeOriginalName string                      `json:"resumeOriginalName"`
	PhotoRef           string                      `json:"profilePhoto"`
}

type Company struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// A recruiter cannot own two companies with the same name.
	OwnerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_company_owner_name" json:"userId"`
	Name    string    `gorm:"not null;uniqueIndex:idx_company_owner_name" json:"name"`

	Description string `gorm:"type:text" json:"description"`
	Website     string `json:"website"`
	Location    string `json:"location"`
	LogoRef     string `json:"logo"`
}

type Job struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Foreign Key
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index" json:"companyId"`
	// Association: needs Preload() to fill this
	Company *Company `json:"company,omitempty"`

	CreatedByID uuid.UUID `gorm:"type:uuid;not null;index" json:"created_by"`

	Title           string                      `gorm:"not null" json:"title"`
	Description     string                      `gorm:"type:text" json:"description"`
	Requirements    datatypes.JSONSlice[string] `json:"requirements"`
	Salary          float64                     `json:"salary"`
	Location        string                      `json:"location"`
	JobType         string                      `json:"jobType"`
	ExperienceLevel int                         `json:"experienceLevel"`
	OpenPositions   int                         `gorm:"not null" json:"position"`
}

// Application is unique per (job, applicant); the index is the only
// authority for "has this student applied".
type Application struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	JobID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_application_job_applicant" json:"job_id"`
	Job   *Job      `json:"job,omitempty"`

	ApplicantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_application_job_applicant;index" json:"applicant_id"`
	Applicant   *Account  `gorm:"foreignKey:ApplicantID" json:"applicant,omitempty"`

	Status ApplicationStatus `gorm:"type:varchar(16);not null;default:'pending'" json:"status"`
}

func (a *Account) BeforeCreate(*gorm.DB) error     { a.ID = ensureID(a.ID); return nil }
func (c *Company) BeforeCreate(*gorm.DB) error     { c.ID = ensureID(c.ID); return nil }
func (j *Job) BeforeCreate(*gorm.DB) error         { j.ID = ensureID(j.ID); return nil }
func (a *Application) BeforeCreate(*gorm.DB) error { a.ID = ensureID(a.ID); return nil }

func ensureID(id uuid.UUID) uuid.UUID {
	if id == uuid.Nil {
		return uuid.New()
	}
	return id
}
