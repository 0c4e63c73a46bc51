package gateway

import (
	"context"
	"sync"
)

// ==================== 结帐会话抽象 ====================

// 会话终态
const (
	OutcomeCompleted = "completed" // 网关成功回调，携带支付号
	OutcomeCancelled = "cancelled" // 用户关闭结帐界面，未付款
	OutcomeFailed    = "failed"    // SDK 不可用 / 网络错误 / 网关报错
)

// Prefill 结帐界面预填信息
type Prefill struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
}

// CheckoutOptions 网关会话描述符
// Amount 使用最小货币单位（INR 为 paise）
type CheckoutOptions struct {
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Name        string            `json:"name"` // 商户展示名
	Description string            `json:"description"`
	Prefill     Prefill           `json:"prefill"`
	Notes       map[string]string `json:"notes"`
	ThemeColor  string            `json:"theme_color"`
	Receipt     string            `json:"receipt"` // 本地订单号，用于对账关联
}

// Outcome 一次会话的唯一终态
type Outcome struct {
	Status           string // completed / cancelled / failed
	GatewayPaymentID string // 仅 completed 时有值
	Reason           string // cancelled / failed 时的说明
}

// Session 一次结帐会话
// Launch 阻塞直到唯一终态产生；Complete / Dismiss / Fail 三者只有
// 第一个调用生效（对应网关侧 handler / ondismiss / error 三选一触发）
type Session interface {
	// GatewayOrderID 网关侧订单号（预下单产物）
	GatewayOrderID() string

	// Launch 等待会话到达终态；ctx 取消视为 failed
	Launch(ctx context.Context) Outcome

	// Complete 网关成功回调
	Complete(gatewayPaymentID string) bool
	// Dismiss 用户关闭结帐界面
	Dismiss() bool
	// Fail 网关错误
	Fail(reason string) bool
}

// Gateway 支付网关抽象
// 会话创建（预下单）与 Launch 解耦：调用方可以先向用户展示确认信息
type Gateway interface {
	NewSession(ctx context.Context, opts CheckoutOptions) (Session, error)
}

// ==================== 通用会话实现 ====================

// hostedSession 由回调驱动的会话，保证终态只产生一次
type hostedSession struct {
	gatewayOrderID string
	once           sync.Once
	outcome        chan Outcome // 缓冲 1，once 保证只写一次
}

func newHostedSession(gatewayOrderID string) *hostedSession {
	return &hostedSession{
		gatewayOrderID: gatewayOrderID,
		outcome:        make(chan Outcome, 1),
	}
}

func (s *hostedSession) GatewayOrderID() string { return s.gatewayOrderID }

func (s *hostedSession) Launch(ctx context.Context) Outcome {
	select {
	case <-ctx.Done():
		// 等待被打断：对调用方而言会话已失败，后续回调被忽略
		s.settle(Outcome{Status: OutcomeFailed, Reason: "checkout wait aborted: " + ctx.Err().Error()})
		return <-s.outcome
	case out := <-s.outcome:
		return out
	}
}

func (s *hostedSession) Complete(gatewayPaymentID string) bool {
	return s.settle(Outcome{Status: OutcomeCompleted, GatewayPaymentID: gatewayPaymentID})
}

func (s *hostedSession) Dismiss() bool {
	return s.settle(Outcome{Status: OutcomeCancelled, Reason: "checkout dismissed by user"})
}

func (s *hostedSession) Fail(reason string) bool {
	return s.settle(Outcome{Status: OutcomeFailed, Reason: reason})
}

// settle 写入终态，返回本次调用是否为第一个终态信号
func (s *hostedSession) settle(out Outcome) bool {
	first := false
	s.once.Do(func() {
		s.outcome <- out
		first = true
	})
	return first
}
