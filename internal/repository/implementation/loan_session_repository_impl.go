package implementation

import (
	"context"
	"errors"
	"time"

	"loan-assist-be/internal/entity"
	"loan-assist-be/internal/mapper"
	"loan-assist-be/internal/model"
	"loan-assist-be/internal/repository/contract"
	"loan-assist-be/internal/repository/specification"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type LoanSessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.LoanSessionMapper
}

func NewLoanSessionRepository(db *gorm.DB) contract.LoanSessionRepository {
	return &LoanSessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewLoanSessionMapper(),
	}
}

func (r *LoanSessionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *LoanSessionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.LoanSession, error) {
	var m model.LoanSession
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *LoanSessionRepositoryImpl) UpdateConversations(ctx context.Context, id string, turns []entity.ConversationTurn) error {
	conversations := datatypes.JSONSlice[model.ConversationTurn](r.mapper.TurnsToModel(turns))
	return r.db.WithContext(ctx).
		Model(&model.LoanSession{}).
		Where("id = ?", id).
		Update("conversations", conversations).Error
}

func (r *LoanSessionRepositoryImpl) MarkCompleted(ctx context.Context, id string, completedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.LoanSession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       entity.LoanSessionStatusCompleted,
			"completed_at": completedAt,
		}).Error
}
