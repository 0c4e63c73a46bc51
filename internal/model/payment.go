package model

import "time"

// ==================== 状态常量 ====================

const (
	// 支付会话状态
	PaymentStatusInitiated       = "initiated"
	PaymentStatusAwaitingGateway = "awaiting_gateway"
	PaymentStatusCompleted       = "completed"
	PaymentStatusFailed          = "failed"
	PaymentStatusCancelled       = "cancelled"

	// 对账任务状态
	ReconcileStatusPending   = "pending"
	ReconcileStatusDone      = "done"
	ReconcileStatusAbandoned = "abandoned"
)

// ==================== 支付会话 ====================

// PaymentSession 一次横幅支付尝试
// 每次尝试都是新会话（新 order_id），终态会话绝不复用或原地重试
type PaymentSession struct {
	BaseModel

	OrderID        string `gorm:"size:64;uniqueIndex" json:"order_id"` // 本地关联号 "order_" + uuid
	GatewayOrderID string `gorm:"size:64" json:"gateway_order_id"`     // 网关预下单产物

	Email   string `gorm:"size:128" json:"email"`
	Contact string `gorm:"size:32" json:"contact"`

	Plan       string `gorm:"size:16" json:"plan"`
	BannerSize string `gorm:"size:32" json:"banner_size"`
	Amount     int64  `json:"amount"` // 卢比；网关侧换算为最小单位

	Status           string `gorm:"size:32;index" json:"status"`
	GatewayPaymentID string `gorm:"size:64" json:"gateway_payment_id"` // 仅 completed
	FailReason       string `gorm:"size:512" json:"fail_reason,omitempty"`

	// 账本同步结果：completed 但 PATCH 失败时为 false，由对账任务补偿
	LedgerSynced bool `json:"ledger_synced"`

	// 被某次提交使用后记录，阻止跨提交复用
	ConsumedAt *time.Time `json:"consumed_at,omitempty"`
}

func (PaymentSession) TableName() string {
	return "payment_sessions"
}

// Terminal 是否已到达终态
func (s *PaymentSession) Terminal() bool {
	switch s.Status {
	case PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusCancelled:
		return true
	}
	return false
}

// Usable 能否用于一次提交：已完成且未被消费
func (s *PaymentSession) Usable() bool {
	return s.Status == PaymentStatusCompleted && s.ConsumedAt == nil
}

// ==================== 账本对账任务 ====================

// ReconciliationJob 支付成功但账本 PATCH 失败的补偿记录
// 支付的 completed 状态绝不因记账失败而回退
type ReconciliationJob struct {
	BaseModel

	OrderID   string `gorm:"size:64;index" json:"order_id"`
	PaymentID string `gorm:"size:64" json:"payment_id"`
	Email     string `gorm:"size:128" json:"email"`
	Amount    int64  `json:"amount"` // 卢比

	Status    string `gorm:"size:16;index" json:"status"`
	Attempts  int    `json:"attempts"`
	LastError string `gorm:"size:512" json:"last_error,omitempty"`
}

func (ReconciliationJob) TableName() string {
	return "reconciliation_jobs"
}
