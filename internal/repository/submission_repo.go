package repository

import (
	"context"

	"gorm.io/gorm"

	"auctionx_v1_202608/internal/model"
)

// SubmissionRepository 提交记录仓储接口
type SubmissionRepository interface {
	Create(ctx context.Context, attempt *model.SubmissionAttempt) error
	GetBySubmissionID(ctx context.Context, submissionID string) (*model.SubmissionAttempt, error)
	UpdateFields(ctx context.Context, submissionID string, fields map[string]interface{}) error
	ListByEmail(ctx context.Context, email string, limit int) ([]model.SubmissionAttempt, error)
}

type submissionRepo struct {
	db *gorm.DB
}

// NewSubmissionRepository 创建提交记录仓储
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepo{db: db}
}

func (r *submissionRepo) Create(ctx context.Context, attempt *model.SubmissionAttempt) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}

func (r *submissionRepo) GetBySubmissionID(ctx context.Context, submissionID string) (*model.SubmissionAttempt, error) {
	var attempt model.SubmissionAttempt
	if err := r.db.WithContext(ctx).Where("submission_id = ?", submissionID).First(&attempt).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *submissionRepo) UpdateFields(ctx context.Context, submissionID string, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.SubmissionAttempt{}).
		Where("submission_id = ?", submissionID).
		Updates(fields).Error
}

func (r *submissionRepo) ListByEmail(ctx context.Context, email string, limit int) ([]model.SubmissionAttempt, error) {
	var attempts []model.SubmissionAttempt
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		Order("created_at DESC").
		Limit(limit).
		Find(&attempts).Error
	return attempts, err
}
