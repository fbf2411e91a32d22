package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/cardfolio-backend/internal/pkg/logger"
	"github.com/yungbote/cardfolio-backend/internal/types"
)

type PersonRepo interface {
	LoadAll(ctx context.Context, tx *gorm.DB) ([]*types.Person, error)
	Save(ctx context.Context, tx *gorm.DB, person *types.Person) error
	Delete(ctx context.Context, tx *gorm.DB, personID uuid.UUID) error
}

type personRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPersonRepo(db *gorm.DB, baseLog *logger.Logger) PersonRepo {
	return &personRepo{db: db, log: baseLog.With("repo", "PersonRepo")}
}

func (r *personRepo) LoadAll(ctx context.Context, tx *gorm.DB) ([]*types.Person, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Person
	if err := transaction.WithContext(ctx).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *personRepo) Save(ctx context.Context, tx *gorm.DB, person *types.Person) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if person == nil {
		return nil
	}
	return transaction.WithContext(ctx).Save(person).Error
}

func (r *personRepo) Delete(ctx context.Context, tx *gorm.DB, personID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Where("id = ?", personID).
		Delete(&types.Person{}).Error
}
