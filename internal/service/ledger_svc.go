package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// ==================== 配置 ====================

type LedgerConfig struct {
	BaseURL string // 账户服务地址
	Timeout time.Duration
}

// LedgerService 账户余额记账
// 支付成功后向账户服务 PATCH 扣减金额；单次尝试，重试交给对账任务
type LedgerService struct {
	config *LedgerConfig
	client *resty.Client
}

// NewLedgerService 创建记账服务
func NewLedgerService(cfg *LedgerConfig) *LedgerService {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout)

	return &LedgerService{config: cfg, client: client}
}

type updateAmountRequest struct {
	Email     string `json:"email"`
	Amount    int64  `json:"amount"` // 卢比
	PaymentID string `json:"paymentId"`
}

// UpdateAmount 记录一笔横幅支付金额
func (s *LedgerService) UpdateAmount(ctx context.Context, email string, amount int64, paymentID string) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(&updateAmountRequest{
			Email:     email,
			Amount:    amount,
			PaymentID: paymentID,
		}).
		Patch("/api/auth/update-amount")

	if err != nil {
		return fmt.Errorf("账户服务请求失败: %v", err)
	}
	if resp.IsError() {
		return fmt.Errorf("账户服务返回 %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
