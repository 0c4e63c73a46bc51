package model

import "gorm.io/datatypes"

// ==================== 状态常量 ====================

const (
	// 提交状态
	SubmissionStatusPending   = "pending"
	SubmissionStatusUploading = "uploading"
	SubmissionStatusSucceeded = "succeeded"
	SubmissionStatusFailed    = "failed"

	// 提交错误分类
	SubmitErrorValidation = "validation" // 4xx，携带字段级错误
	SubmitErrorAuth       = "auth"       // 401/403，凭证被拒，刷新后重试
	SubmitErrorServer     = "server"     // 5xx，建议重试
	SubmitErrorNetwork    = "network"    // 无响应，建议重试
	SubmitErrorPayment    = "payment"    // 支付环节终止，未发起提交
)

// SubmissionAttempt 一次提交尝试
// 每次尝试新建一行，绝不复用旧行
type SubmissionAttempt struct {
	BaseModel

	SubmissionID string `gorm:"size:64;uniqueIndex" json:"submission_id"`
	DraftID      string `gorm:"size:64;index" json:"draft_id"`
	Email        string `gorm:"size:128" json:"email"`

	Status   string `gorm:"size:16;index" json:"status"`
	Progress int    `json:"progress"` // 0-100，单调不减

	ImageCount     int    `json:"image_count"`
	HasBanner      bool   `json:"has_banner"`
	PaymentOrderID string `gorm:"size:64" json:"payment_order_id,omitempty"`

	ErrorClass   string         `gorm:"size:16" json:"error_class,omitempty"`
	ErrorMessage string         `gorm:"size:1024" json:"error_message,omitempty"`
	FieldErrors  datatypes.JSON `json:"field_errors,omitempty"` // 服务端字段级错误
}

func (SubmissionAttempt) TableName() string {
	return "submission_attempts"
}
