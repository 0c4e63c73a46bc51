package dto

// ==================== 请求 DTO ====================

// CreatePaymentRequest 发起横幅支付请求
// 金额由服务端按套餐决定，请求中不携带金额
type CreatePaymentRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Contact    string `json:"contact"`
	Plan       string `json:"plan" binding:"required"`
	BannerSize string `json:"banner_size" binding:"required"`
}

// CompletePaymentRequest 结账页支付成功回调
type CompletePaymentRequest struct {
	GatewayPaymentID string `json:"payment_id" binding:"required"`
}

// FailPaymentRequest 结账页支付失败回调
type FailPaymentRequest struct {
	Reason string `json:"reason"`
}

// ==================== 响应 DTO ====================

// CreatePaymentResponse 支付会话创建结果
// CheckoutKey 与 GatewayOrderID 供结账页拉起托管收银台
type CreatePaymentResponse struct {
	OrderID        string `json:"order_id"`
	GatewayOrderID string `json:"gateway_order_id"`
	Amount         int64  `json:"amount"`       // 卢比
	AmountMinor    int64  `json:"amount_minor"` // 最小货币单位
	Currency       string `json:"currency"`
	CheckoutKey    string `json:"checkout_key"`
}

// PaymentStatusResponse 支付会话查询响应
type PaymentStatusResponse struct {
	OrderID          string `json:"order_id"`
	Status           string `json:"status"`
	Plan             string `json:"plan"`
	BannerSize       string `json:"banner_size"`
	Amount           int64  `json:"amount"`
	GatewayPaymentID string `json:"gateway_payment_id,omitempty"`
	FailReason       string `json:"fail_reason,omitempty"`
	LedgerSynced     bool   `json:"ledger_synced"`
	Consumed         bool   `json:"consumed"`
	CreatedAt        string `json:"created_at"`
}
