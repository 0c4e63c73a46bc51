package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"auctionx_v1_202608/internal/api/dto"
	"auctionx_v1_202608/internal/model"
	"auctionx_v1_202608/internal/repository"
	"auctionx_v1_202608/pkg/gateway"
)

// ==================== 外部服务依赖 ====================

// LedgerUpdater 记账接口
// 由 LedgerService 实现；测试中可替换
type LedgerUpdater interface {
	UpdateAmount(ctx context.Context, email string, amount int64, paymentID string) error
}

// ==================== 常量 ====================

const (
	// 对账任务放弃前的最大尝试次数
	maxReconcileAttempts = 5

	checkoutCurrency = "INR"
	checkoutName     = "AuctionX"
)

// ErrNoLiveSession 回调指向的支付会话不在进行中
var ErrNoLiveSession = errors.New("支付会话不存在或已结束")

// ==================== 服务实现 ====================

// PaymentService 横幅支付编排
// 每次支付尝试都是一个全新会话；终态会话绝不复用
type PaymentService struct {
	gw          gateway.Gateway
	sessions    repository.PaymentSessionRepository
	jobs        repository.ReconciliationJobRepository
	ledger      LedgerUpdater
	checkoutKey string // 下发给结账页的公开 key

	// 进行中的托管结账会话
	live      map[string]gateway.Session
	liveMutex sync.Mutex
}

// NewPaymentService 创建支付服务
func NewPaymentService(
	gw gateway.Gateway,
	sessions repository.PaymentSessionRepository,
	jobs repository.ReconciliationJobRepository,
	ledger LedgerUpdater,
	checkoutKey string,
) *PaymentService {
	return &PaymentService{
		gw:          gw,
		sessions:    sessions,
		jobs:        jobs,
		ledger:      ledger,
		checkoutKey: checkoutKey,
		live:        make(map[string]gateway.Session),
	}
}

// ==================== 发起 ====================

// Prepare 创建支付会话并向网关预下单
// 金额由套餐在服务端决定，绝不信任调用方传入的金额
func (s *PaymentService) Prepare(ctx context.Context, req *dto.CreatePaymentRequest) (*dto.CreatePaymentResponse, error) {
	amount := model.PlanPrice(req.Plan)
	if amount == 0 {
		return nil, NewValidationError(map[string]string{"bannerPlan": "无效的横幅套餐"})
	}
	if _, ok := model.BannerMinDims[req.BannerSize]; !ok {
		return nil, NewValidationError(map[string]string{"bannerSize": "无效的横幅尺寸"})
	}

	orderID := "order_" + uuid.NewString()

	checkout, err := s.gw.NewSession(ctx, gateway.CheckoutOptions{
		Amount:   amount * 100, // 换算为最小货币单位
		Currency: checkoutCurrency,
		Name:     checkoutName,
		Description: fmt.Sprintf("Banner %s / %s", req.BannerSize, req.Plan),
		Prefill: gateway.Prefill{
			Email:   req.Email,
			Contact: req.Contact,
		},
		Notes: map[string]string{
			"plan":        req.Plan,
			"banner_size": req.BannerSize,
		},
		Receipt: orderID,
	})
	if err != nil {
		return nil, fmt.Errorf("网关预下单失败: %v", err)
	}

	session := &model.PaymentSession{
		OrderID:        orderID,
		GatewayOrderID: checkout.GatewayOrderID(),
		Email:          req.Email,
		Contact:        req.Contact,
		Plan:           req.Plan,
		BannerSize:     req.BannerSize,
		Amount:         amount,
		Status:         model.PaymentStatusInitiated,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("保存支付会话失败: %v", err)
	}

	s.liveMutex.Lock()
	s.live[orderID] = checkout
	s.liveMutex.Unlock()

	log.Printf("[Payment] 会话创建 order=%s gateway_order=%s amount=%d", orderID, checkout.GatewayOrderID(), amount)

	return &dto.CreatePaymentResponse{
		OrderID:        orderID,
		GatewayOrderID: checkout.GatewayOrderID(),
		Amount:         amount,
		AmountMinor:    amount * 100,
		Currency:       checkoutCurrency,
		CheckoutKey:    s.checkoutKey,
	}, nil
}

// Launch 等待托管结账会话出结果
// 阻塞直到 完成 / 关闭 / 失败 三者之一，或 ctx 取消
func (s *PaymentService) Launch(ctx context.Context, orderID string) (*model.PaymentSession, error) {
	s.liveMutex.Lock()
	checkout, ok := s.live[orderID]
	s.liveMutex.Unlock()
	if !ok {
		return nil, ErrNoLiveSession
	}

	s.sessions.UpdateStatus(ctx, orderID, model.PaymentStatusAwaitingGateway)

	outcome := checkout.Launch(ctx)

	s.liveMutex.Lock()
	delete(s.live, orderID)
	s.liveMutex.Unlock()

	switch outcome.Status {
	case gateway.OutcomeCompleted:
		return s.settleCompleted(ctx, orderID, outcome.GatewayPaymentID)

	case gateway.OutcomeCancelled:
		s.sessions.MarkFailed(ctx, orderID, model.PaymentStatusCancelled, "用户关闭了支付窗口")
		log.Printf("[Payment] 会话取消 order=%s", orderID)
		return nil, &PaymentError{OrderID: orderID, Cancelled: true}

	default:
		s.sessions.MarkFailed(ctx, orderID, model.PaymentStatusFailed, outcome.Reason)
		log.Printf("[Payment] 会话失败 order=%s reason=%s", orderID, outcome.Reason)
		return nil, &PaymentError{OrderID: orderID, Reason: outcome.Reason}
	}
}

// settleCompleted 支付成功落账
// completed 状态一旦写入绝不回退；记账失败只降级为对账任务
func (s *PaymentService) settleCompleted(ctx context.Context, orderID, gatewayPaymentID string) (*model.PaymentSession, error) {
	session, err := s.sessions.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("读取支付会话失败: %v", err)
	}

	ledgerSynced := true
	if err := s.ledger.UpdateAmount(ctx, session.Email, session.Amount, gatewayPaymentID); err != nil {
		ledgerSynced = false
		log.Printf("[Payment] 记账失败 order=%s，转入对账: %v", orderID, err)

		job := &model.ReconciliationJob{
			OrderID:   orderID,
			PaymentID: gatewayPaymentID,
			Email:     session.Email,
			Amount:    session.Amount,
			Status:    model.ReconcileStatusPending,
		}
		if err := s.jobs.Create(ctx, job); err != nil {
			log.Printf("[Payment] 创建对账任务失败 order=%s: %v", orderID, err)
		}
	}

	if err := s.sessions.MarkCompleted(ctx, orderID, gatewayPaymentID, ledgerSynced); err != nil {
		return nil, fmt.Errorf("落账失败: %v", err)
	}

	log.Printf("[Payment] 会话完成 order=%s payment=%s ledger_synced=%v", orderID, gatewayPaymentID, ledgerSynced)
	return s.sessions.GetByOrderID(ctx, orderID)
}

// Run 发起并等待一次完整的支付
func (s *PaymentService) Run(ctx context.Context, req *dto.CreatePaymentRequest) (*model.PaymentSession, error) {
	prepared, err := s.Prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.Launch(ctx, prepared.OrderID)
}

// ==================== 结账回调 ====================

// Complete 网关回调：支付成功
func (s *PaymentService) Complete(orderID, gatewayPaymentID string) error {
	s.liveMutex.Lock()
	checkout, ok := s.live[orderID]
	s.liveMutex.Unlock()
	if !ok {
		return ErrNoLiveSession
	}
	if !checkout.Complete(gatewayPaymentID) {
		return ErrNoLiveSession
	}
	return nil
}

// Dismiss 用户关闭了结账窗口
func (s *PaymentService) Dismiss(orderID string) error {
	s.liveMutex.Lock()
	checkout, ok := s.live[orderID]
	s.liveMutex.Unlock()
	if !ok {
		return ErrNoLiveSession
	}
	if !checkout.Dismiss() {
		return ErrNoLiveSession
	}
	return nil
}

// Fail 网关回调：支付失败
func (s *PaymentService) Fail(orderID, reason string) error {
	s.liveMutex.Lock()
	checkout, ok := s.live[orderID]
	s.liveMutex.Unlock()
	if !ok {
		return ErrNoLiveSession
	}
	if !checkout.Fail(reason) {
		return ErrNoLiveSession
	}
	return nil
}

// ==================== 查询与消费 ====================

// Get 查询支付会话
func (s *PaymentService) Get(ctx context.Context, orderID string) (*model.PaymentSession, error) {
	return s.sessions.GetByOrderID(ctx, orderID)
}

// Consume 将已完成的支付会话标记为已被某次提交使用
func (s *PaymentService) Consume(ctx context.Context, orderID string) error {
	session, err := s.sessions.GetByOrderID(ctx, orderID)
	if err != nil {
		return err
	}
	if !session.Usable() {
		return fmt.Errorf("支付会话 %s 不可用（状态 %s）", orderID, session.Status)
	}
	return s.sessions.MarkConsumed(ctx, orderID, time.Now())
}

// ==================== 后台补偿 ====================

// ReconcilePending 重试待对账的记账任务，供定时任务调用
func (s *PaymentService) ReconcilePending(ctx context.Context, batch int) (done, failed int) {
	jobs, err := s.jobs.FindPending(ctx, batch)
	if err != nil {
		log.Printf("[Payment] 查询对账任务失败: %v", err)
		return 0, 0
	}

	for _, job := range jobs {
		if err := s.ledger.UpdateAmount(ctx, job.Email, job.Amount, job.PaymentID); err != nil {
			abandon := job.Attempts+1 >= maxReconcileAttempts
			s.jobs.RecordFailure(ctx, job.ID, err.Error(), abandon)
			if abandon {
				log.Printf("[Payment] 对账放弃 order=%s attempts=%d", job.OrderID, job.Attempts+1)
			}
			failed++
			continue
		}

		s.jobs.MarkDone(ctx, job.ID)
		s.sessions.SetLedgerSynced(ctx, job.OrderID)
		done++
	}

	if done > 0 || failed > 0 {
		log.Printf("[Payment] 对账批次完成 done=%d failed=%d", done, failed)
	}
	return done, failed
}

// AbandonStale 清理长时间停留在非终态的支付会话
// Prepare 后从未 Launch 的会话同样会被从 live 表摘除并判超时失败
func (s *PaymentService) AbandonStale(ctx context.Context, olderThan time.Duration) int {
	stale, err := s.sessions.FindStale(ctx, time.Now().Add(-olderThan))
	if err != nil {
		log.Printf("[Payment] 查询陈旧会话失败: %v", err)
		return 0
	}

	var n int
	for _, session := range stale {
		s.liveMutex.Lock()
		checkout, inFlight := s.live[session.OrderID]
		if inFlight {
			delete(s.live, session.OrderID)
		}
		s.liveMutex.Unlock()

		// 进行中的会话先写入超时终态；若终态已产生（回调赢了），落账交给等待中的 Launch
		if inFlight && !checkout.Fail("会话超时未完成") {
			continue
		}
		if err := s.sessions.MarkFailed(ctx, session.OrderID, model.PaymentStatusFailed, "会话超时未完成"); err == nil {
			n++
		}
	}

	if n > 0 {
		log.Printf("[Payment] 清理陈旧会话 %d 个", n)
	}
	return n
}
