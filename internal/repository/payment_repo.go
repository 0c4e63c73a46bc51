package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"auctionx_v1_202608/internal/model"
)

// ==================== 仓储接口 ====================

// PaymentSessionRepository 支付会话仓储接口
type PaymentSessionRepository interface {
	Create(ctx context.Context, session *model.PaymentSession) error
	GetByOrderID(ctx context.Context, orderID string) (*model.PaymentSession, error)
	UpdateStatus(ctx context.Context, orderID, status string) error
	MarkCompleted(ctx context.Context, orderID, gatewayPaymentID string, ledgerSynced bool) error
	MarkFailed(ctx context.Context, orderID, status, reason string) error
	MarkConsumed(ctx context.Context, orderID string, at time.Time) error
	SetLedgerSynced(ctx context.Context, orderID string) error

	// 会话清扫相关：长时间停留在非终态的会话
	FindStale(ctx context.Context, before time.Time) ([]*model.PaymentSession, error)
}

// ReconciliationJobRepository 账本对账任务仓储接口
type ReconciliationJobRepository interface {
	Create(ctx context.Context, job *model.ReconciliationJob) error
	FindPending(ctx context.Context, limit int) ([]*model.ReconciliationJob, error)
	MarkDone(ctx context.Context, id int64) error
	RecordFailure(ctx context.Context, id int64, errMsg string, abandon bool) error
}

// ==================== PaymentSession 仓储实现 ====================

type paymentSessionRepo struct {
	db *gorm.DB
}

// NewPaymentSessionRepository 创建支付会话仓储
func NewPaymentSessionRepository(db *gorm.DB) PaymentSessionRepository {
	return &paymentSessionRepo{db: db}
}

func (r *paymentSessionRepo) Create(ctx context.Context, session *model.PaymentSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *paymentSessionRepo) GetByOrderID(ctx context.Context, orderID string) (*model.PaymentSession, error) {
	var session model.PaymentSession
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *paymentSessionRepo) UpdateStatus(ctx context.Context, orderID, status string) error {
	return r.db.WithContext(ctx).
		Model(&model.PaymentSession{}).
		Where("order_id = ?", orderID).
		Update("status", status).Error
}

// MarkCompleted 标记支付完成
// 终态不可逆：已处于终态的会话不会被覆盖
func (r *paymentSessionRepo) MarkCompleted(ctx context.Context, orderID, gatewayPaymentID string, ledgerSynced bool) error {
	return r.db.WithContext(ctx).
		Model(&model.PaymentSession{}).
		Where("order_id = ? AND status NOT IN ?", orderID, terminalStatuses).
		Updates(map[string]interface{}{
			"status":             model.PaymentStatusCompleted,
			"gateway_payment_id": gatewayPaymentID,
			"ledger_synced":      ledgerSynced,
		}).Error
}

// MarkFailed 标记为 failed 或 cancelled
func (r *paymentSessionRepo) MarkFailed(ctx context.Context, orderID, status, reason string) error {
	return r.db.WithContext(ctx).
		Model(&model.PaymentSession{}).
		Where("order_id = ? AND status NOT IN ?", orderID, terminalStatuses).
		Updates(map[string]interface{}{
			"status":      status,
			"fail_reason": reason,
		}).Error
}

func (r *paymentSessionRepo) MarkConsumed(ctx context.Context, orderID string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.PaymentSession{}).
		Where("order_id = ? AND consumed_at IS NULL", orderID).
		Update("consumed_at", at).Error
}

func (r *paymentSessionRepo) SetLedgerSynced(ctx context.Context, orderID string) error {
	return r.db.WithContext(ctx).
		Model(&model.PaymentSession{}).
		Where("order_id = ?", orderID).
		Update("ledger_synced", true).Error
}

// FindStale 查找停留在非终态的陈旧会话
func (r *paymentSessionRepo) FindStale(ctx context.Context, before time.Time) ([]*model.PaymentSession, error) {
	var sessions []*model.PaymentSession
	err := r.db.WithContext(ctx).
		Where("created_at < ? AND status NOT IN ?", before, terminalStatuses).
		Find(&sessions).Error
	return sessions, err
}

var terminalStatuses = []string{
	model.PaymentStatusCompleted,
	model.PaymentStatusFailed,
	model.PaymentStatusCancelled,
}

// ==================== ReconciliationJob 仓储实现 ====================

type reconciliationJobRepo struct {
	db *gorm.DB
}

// NewReconciliationJobRepository 创建对账任务仓储
func NewReconciliationJobRepository(db *gorm.DB) ReconciliationJobRepository {
	return &reconciliationJobRepo{db: db}
}

func (r *reconciliationJobRepo) Create(ctx context.Context, job *model.ReconciliationJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *reconciliationJobRepo) FindPending(ctx context.Context, limit int) ([]*model.ReconciliationJob, error) {
	var jobs []*model.ReconciliationJob
	err := r.db.WithContext(ctx).
		Where("status = ?", model.ReconcileStatusPending).
		Order("id ASC").
		Limit(limit).
		Find(&jobs).Error
	return jobs, err
}

func (r *reconciliationJobRepo) MarkDone(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&model.ReconciliationJob{}).
		Where("id = ?", id).
		Update("status", model.ReconcileStatusDone).Error
}

// RecordFailure 记录一次失败；abandon 为 true 时不再重试
func (r *reconciliationJobRepo) RecordFailure(ctx context.Context, id int64, errMsg string, abandon bool) error {
	updates := map[string]interface{}{
		"attempts":   gorm.Expr("attempts + 1"),
		"last_error": errMsg,
	}
	if abandon {
		updates["status"] = model.ReconcileStatusAbandoned
	}
	return r.db.WithContext(ctx).
		Model(&model.ReconciliationJob{}).
		Where("id = ?", id).
		Updates(updates).Error
}
