package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/justsurfingit/job-portal/internal/apperr"
	"github.com/justsurfingit/job-portal/internal/auth"
	"github.com/justsurfingit/job-portal/internal/models"
	"gorm.io/gorm"
)

type Action string

const (
	ActionCreateCompany     Action = "company:create"
	ActionUpdateCompany     Action = "company:update"
	ActionPostJob           Action = "job:post"
	ActionListOwnJobs       Action = "job:list-own"
	ActionViewApplicants    Action = "application:list"
	ActionUpdateApplication Action = "application:update-status"
	ActionApply             Action = "application:create"
	ActionEditProfile       Action = "account:update"
)

// ownerLookup returns the account that currently owns target.
type ownerLookup func(ctx context.Context, db *gorm.DB, target uuid.UUID) (uuid.UUID, error)

type rule struct {
	role  models.Role // empty: any authenticated caller
	owner ownerLookup // nil: no ownership check
}

var policy = map[Action]rule{
	ActionCreateCompany:     {role: models.RoleRecruiter},
	ActionUpdateCompany:     {role: models.RoleRecruiter, owner: companyOwner},
	ActionPostJob:           {role: models.RoleRecruiter, owner: companyOwner},
	ActionListOwnJobs:       {role: models.RoleRecruiter},
	ActionViewApplicants:    {role: models.RoleRecruiter, owner: jobOwner},
	ActionUpdateApplication: {role: models.RoleRecruiter, owner: applicationOwner},
	ActionApply:             {role: models.RoleStudent},
	ActionEditProfile:       {owner: accountItself},
}

// Gate decides whether an identity may perform an action on a target.
// Ownership is read from the database on every call.
type Gate struct {
	DB *gorm.DB
}

func NewGate(db *gorm.DB) *Gate {
	return &Gate{DB: db}
}

// CheckRole applies only the role half of the rule.
func (g *Gate) CheckRole(who auth.Identity, act Action) error {
	r, ok := policy[act]
	if !ok {
		return fmt.Errorf("%w: unknown action %s", apperr.ErrForbidden, act)
	}
	if who.AccountID == uuid.Nil {
		return apperr.ErrUnauthenticated
	}
	if r.role != "" && who.Role != r.role {
		return fmt.Errorf("%w: %s requires role %s", apperr.ErrForbidden, act, r.role)
	}
	return nil
}

// Authorize applies the whole rule for act against target.
func (g *Gate) Authorize(ctx context.Context, who auth.Identity, act Action, target uuid.UUID) error {
	if err := g.CheckRole(who, act); err != nil {
		return err
	}
	r := policy[act]
	if r.owner == nil {
		return nil
	}

	owner, err := r.owner(ctx, g.DB.WithContext(ctx), target)
	if err != nil {
		return err
	}
	if owner != who.AccountID {
		return fmt.Errorf("%w: %s is limited to the owner", apperr.ErrForbidden, act)
	}
	return nil
}

func companyOwner(_ context.Context, db *gorm.DB, id uuid.UUID) (uuid.UUID, error) {
	var c models.Company
	err := db.Select("id", "owner_id").First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, apperr.NotFound("company")
	}
	if err != nil {
		return uuid.Nil, apperr.Upstream("load company owner", err)
	}
	return c.OwnerID, nil
}

type ownerRow struct {
	OwnerID uuid.UUID
}

func jobOwner(_ context.Context, db *gorm.DB, id uuid.UUID) (uuid.UUID, error) {
	var row ownerRow
	res := db.Model(&models.Job{}).
		Select("companies.owner_id").
		Joins("JOIN companies ON companies.id = jobs.company_id").
		Where("jobs.id = ?", id).
		Limit(1).
		Scan(&row)
	if res.Error != nil {
		return uuid.Nil, apperr.Upstream("load job owner", res.Error)
	}
	if res.RowsAffected == 0 {
		return uuid.Nil, apperr.NotFound("job")
	}
	return row.OwnerID, nil
}

func applicationOwner(_ context.Context, db *gorm.DB, id uuid.UUID) (uuid.UUID, error) {
	var row ownerRow
	res := db.Model(&models.Application{}).
		Select("companies.owner_id").
		Joins("JOIN jobs ON jobs.id = applications.job_id").
		Joins("JOIN companies ON companies.id = jobs.company_id").
		Where("applications.id = ?", id).
		Limit(1).
		Scan(&row)
	if res.Error != nil {
		return uuid.Nil, apperr.Upstream("load application owner", res.Error)
	}
	if res.RowsAffected == 0 {
		return uuid.Nil, apperr.NotFound("application")
	}
	return row.OwnerID, nil
}

func accountItself(_ context.Context, _ *gorm.DB, id uuid.UUID) (uuid.UUID, error) {
	return id, nil
}
