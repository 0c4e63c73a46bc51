package dto

// ==================== 响应 DTO ====================

// SubmitListingResult 提交受理结果
// Warnings 为建议性提示（如商品图尺寸偏小），不阻塞提交
type SubmitListingResult struct {
	SubmissionID string   `json:"submission_id"`
	Warnings     []string `json:"warnings,omitempty"`
}

// SubmissionEvent 提交进度事件，经 SSE 推送
type SubmissionEvent struct {
	SubmissionID string            `json:"submission_id"`
	Stage        string            `json:"stage"` // payment / payment_done / uploading / done / failed
	Progress     int               `json:"progress"`
	Message      string            `json:"message"`
	ErrorClass   string            `json:"error_class,omitempty"`
	FieldErrors  map[string]string `json:"field_errors,omitempty"`
}

// SubmissionStatusResponse 提交记录查询响应
type SubmissionStatusResponse struct {
	SubmissionID   string            `json:"submission_id"`
	DraftID        string            `json:"draft_id"`
	Status         string            `json:"status"`
	Progress       int               `json:"progress"`
	ImageCount     int               `json:"image_count"`
	HasBanner      bool              `json:"has_banner"`
	PaymentOrderID string            `json:"payment_order_id,omitempty"`
	ErrorClass     string            `json:"error_class,omitempty"`
	ErrorMessage   string            `json:"error_message,omitempty"`
	FieldErrors    map[string]string `json:"field_errors,omitempty"`
	CreatedAt      string            `json:"created_at"`
}
