package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// ==================== Razorpay 网关实现 ====================

// RazorpayConfig 网关配置
type RazorpayConfig struct {
	KeyID     string
	KeySecret string
	BaseURL   string // 留空使用官方地址
}

// RazorpayGateway 托管结帐网关
// 预下单走 Orders API；结帐界面由前端 SDK 打开，终态经由
// Session 的 Complete / Dismiss / Fail 回调送达
type RazorpayGateway struct {
	cfg    *RazorpayConfig
	client *resty.Client
}

func NewRazorpayGateway(cfg *RazorpayConfig) *RazorpayGateway {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.razorpay.com"
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second).
		SetBasicAuth(cfg.KeyID, cfg.KeySecret).
		SetHeader("Content-Type", "application/json")

	return &RazorpayGateway{cfg: cfg, client: client}
}

var _ Gateway = (*RazorpayGateway)(nil)

// razorpayOrderResponse Orders API 响应（只取需要的字段）
type razorpayOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

type razorpayErrorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// NewSession 预下单并创建会话
// 失败（网络 / 网关报错）直接返回 error，调用方据此进入 failed 终态
func (g *RazorpayGateway) NewSession(ctx context.Context, opts CheckoutOptions) (Session, error) {
	if opts.Amount <= 0 {
		return nil, fmt.Errorf("无效的支付金额: %d", opts.Amount)
	}

	body := map[string]interface{}{
		"amount":   opts.Amount,
		"currency": opts.Currency,
		"receipt":  opts.Receipt,
	}
	if len(opts.Notes) > 0 {
		body["notes"] = opts.Notes
	}

	var (
		order  razorpayOrderResponse
		apiErr razorpayErrorResponse
	)

	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&order).
		SetError(&apiErr).
		Post("/v1/orders")
	if err != nil {
		return nil, fmt.Errorf("网关预下单失败: %v", err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("网关错误 [%d]: %s", resp.StatusCode(), apiErr.Error.Description)
	}

	if order.ID == "" {
		return nil, fmt.Errorf("网关返回异常: 缺少订单号")
	}

	return newHostedSession(order.ID), nil
}
