package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/cardfolio-backend/internal/pkg/logger"
	"github.com/yungbote/cardfolio-backend/internal/types"
)

type OrganizationRepo interface {
	LoadAll(ctx context.Context, tx *gorm.DB) ([]*types.Organization, error)
	Save(ctx context.Context, tx *gorm.DB, org *types.Organization) error
	Delete(ctx context.Context, tx *gorm.DB, orgID uuid.UUID) error
}

type organizationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOrganizationRepo(db *gorm.DB, baseLog *logger.Logger) OrganizationRepo {
	return &organizationRepo{db: db, log: baseLog.With("repo", "OrganizationRepo")}
}

func (r *organizationRepo) LoadAll(ctx context.Context, tx *gorm.DB) ([]*types.Organization, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Organization
	if err := transaction.WithContext(ctx).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *organizationRepo) Save(ctx context.Context, tx *gorm.DB, org *types.Organization) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if org == nil {
		return nil
	}
	return transaction.WithContext(ctx).Save(org).Error
}

func (r *organizationRepo) Delete(ctx context.Context, tx *gorm.DB, orgID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Where("id = ?", orgID).
		Delete(&types.Organization{}).Error
}
