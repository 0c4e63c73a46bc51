package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"auctionx_v1_202608/internal/api/dto"
	"auctionx_v1_202608/internal/model"
	"auctionx_v1_202608/internal/repository"
	"auctionx_v1_202608/pkg/gateway"
)

// ==================== Mock 实现 ====================

// fakeSession 预先写好终态的结账会话
type fakeSession struct {
	orderID string
	outcome gateway.Outcome
	settled bool
}

func (s *fakeSession) GatewayOrderID() string { return s.orderID }

func (s *fakeSession) Launch(ctx context.Context) gateway.Outcome {
	s.settled = true
	return s.outcome
}

func (s *fakeSession) Complete(id string) bool {
	if s.settled {
		return false
	}
	s.settled = true
	s.outcome = gateway.Outcome{Status: gateway.OutcomeCompleted, GatewayPaymentID: id}
	return true
}

func (s *fakeSession) Dismiss() bool {
	if s.settled {
		return false
	}
	s.settled = true
	s.outcome = gateway.Outcome{Status: gateway.OutcomeCancelled}
	return true
}

func (s *fakeSession) Fail(reason string) bool {
	if s.settled {
		return false
	}
	s.settled = true
	s.outcome = gateway.Outcome{Status: gateway.OutcomeFailed, Reason: reason}
	return true
}

// fakeGateway 按队列吐出会话
type fakeGateway struct {
	next    []*fakeSession
	lastOpt gateway.CheckoutOptions
	err     error
}

func (g *fakeGateway) NewSession(ctx context.Context, opts gateway.CheckoutOptions) (gateway.Session, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.lastOpt = opts
	s := g.next[0]
	g.next = g.next[1:]
	return s, nil
}

type ledgerCall struct {
	email     string
	amount    int64
	paymentID string
}

type mockLedger struct {
	err   error
	calls []ledgerCall
}

func (m *mockLedger) UpdateAmount(ctx context.Context, email string, amount int64, paymentID string) error {
	m.calls = append(m.calls, ledgerCall{email: email, amount: amount, paymentID: paymentID})
	return m.err
}

// ==================== 测试环境 ====================

func setupPaymentTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.PaymentSession{}, &model.ReconciliationJob{}); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	return db
}

func newPaymentEnv(t *testing.T, gw *fakeGateway, ledger *mockLedger) (*PaymentService, *gorm.DB) {
	db := setupPaymentTestDB(t)
	svc := NewPaymentService(
		gw,
		repository.NewPaymentSessionRepository(db),
		repository.NewReconciliationJobRepository(db),
		ledger,
		"rzp_test_key",
	)
	return svc, db
}

func tier1Request() *dto.CreatePaymentRequest {
	return &dto.CreatePaymentRequest{
		Email:      "seller@example.com",
		Contact:    "9876543210",
		Plan:       model.BannerPlanTier1,
		BannerSize: model.BannerSizeHorizontal,
	}
}

// ==================== 测试 ====================

func TestPaymentRun_Completed(t *testing.T) {
	gw := &fakeGateway{next: []*fakeSession{{
		orderID: "order_rzp_1",
		outcome: gateway.Outcome{Status: gateway.OutcomeCompleted, GatewayPaymentID: "pay_1"},
	}}}
	ledger := &mockLedger{}
	svc, _ := newPaymentEnv(t, gw, ledger)

	session, err := svc.Run(context.Background(), tier1Request())
	if err != nil {
		t.Fatalf("Run 失败: %v", err)
	}

	if session.Status != model.PaymentStatusCompleted {
		t.Errorf("状态 = %s", session.Status)
	}
	if session.GatewayPaymentID != "pay_1" {
		t.Errorf("支付号 = %s", session.GatewayPaymentID)
	}
	if !session.LedgerSynced {
		t.Error("记账成功时 LedgerSynced 应为 true")
	}
	if session.Amount != 3000 {
		t.Errorf("金额 = %d, 期望 3000", session.Amount)
	}

	// 网关侧收到的是最小货币单位
	if gw.lastOpt.Amount != 300000 {
		t.Errorf("网关金额 = %d, 期望 300000", gw.lastOpt.Amount)
	}

	if len(ledger.calls) != 1 {
		t.Fatalf("记账调用次数 = %d", len(ledger.calls))
	}
	if ledger.calls[0].amount != 3000 || ledger.calls[0].email != "seller@example.com" {
		t.Errorf("记账参数 = %+v", ledger.calls[0])
	}
}

func TestPaymentRun_Cancelled(t *testing.T) {
	gw := &fakeGateway{next: []*fakeSession{{
		orderID: "order_rzp_2",
		outcome: gateway.Outcome{Status: gateway.OutcomeCancelled},
	}}}
	ledger := &mockLedger{}
	svc, _ := newPaymentEnv(t, gw, ledger)

	_, err := svc.Run(context.Background(), tier1Request())
	pe, ok := AsPaymentError(err)
	if !ok || !pe.Cancelled {
		t.Fatalf("期望取消错误, 实际: %v", err)
	}

	session, err := svc.Get(context.Background(), pe.OrderID)
	if err != nil {
		t.Fatalf("查询会话失败: %v", err)
	}
	if session.Status != model.PaymentStatusCancelled {
		t.Errorf("状态 = %s", session.Status)
	}
	if len(ledger.calls) != 0 {
		t.Error("取消的支付不应触发记账")
	}
}

func TestPaymentRun_GatewayFailure(t *testing.T) {
	gw := &fakeGateway{next: []*fakeSession{{
		orderID: "order_rzp_3",
		outcome: gateway.Outcome{Status: gateway.OutcomeFailed, Reason: "card declined"},
	}}}
	svc, _ := newPaymentEnv(t, gw, &mockLedger{})

	_, err := svc.Run(context.Background(), tier1Request())
	pe, ok := AsPaymentError(err)
	if !ok || pe.Cancelled {
		t.Fatalf("期望失败错误, 实际: %v", err)
	}

	session, _ := svc.Get(context.Background(), pe.OrderID)
	if session.Status != model.PaymentStatusFailed {
		t.Errorf("状态 = %s", session.Status)
	}
	if session.FailReason != "card declined" {
		t.Errorf("失败原因 = %s", session.FailReason)
	}
}

func TestPaymentRun_LedgerFailureGoesToReconcile(t *testing.T) {
	gw := &fakeGateway{next: []*fakeSession{{
		orderID: "order_rzp_4",
		outcome: gateway.Outcome{Status: gateway.OutcomeCompleted, GatewayPaymentID: "pay_4"},
	}}}
	ledger := &mockLedger{err: errors.New("ledger down")}
	svc, db := newPaymentEnv(t, gw, ledger)

	session, err := svc.Run(context.Background(), tier1Request())
	if err != nil {
		t.Fatalf("记账失败不应让支付失败: %v", err)
	}

	// 支付保持 completed，只是账本未同步
	if session.Status != model.PaymentStatusCompleted {
		t.Errorf("状态 = %s", session.Status)
	}
	if session.LedgerSynced {
		t.Error("记账失败时 LedgerSynced 应为 false")
	}

	var jobs []model.ReconciliationJob
	db.Find(&jobs)
	if len(jobs) != 1 {
		t.Fatalf("对账任务数 = %d", len(jobs))
	}
	if jobs[0].Status != model.ReconcileStatusPending || jobs[0].Amount != 3000 {
		t.Errorf("对账任务 = %+v", jobs[0])
	}

	// 账本恢复后重试成功
	ledger.err = nil
	done, failed := svc.ReconcilePending(context.Background(), 10)
	if done != 1 || failed != 0 {
		t.Errorf("对账结果 done=%d failed=%d", done, failed)
	}

	session, _ = svc.Get(context.Background(), session.OrderID)
	if !session.LedgerSynced {
		t.Error("对账成功后 LedgerSynced 应为 true")
	}
}

func TestReconcilePending_AbandonsAfterMaxAttempts(t *testing.T) {
	svc, db := newPaymentEnv(t, &fakeGateway{}, &mockLedger{err: errors.New("still down")})

	job := &model.ReconciliationJob{
		OrderID:   "order_x",
		PaymentID: "pay_x",
		Email:     "seller@example.com",
		Amount:    8000,
		Status:    model.ReconcileStatusPending,
		Attempts:  maxReconcileAttempts - 1,
	}
	db.Create(job)

	done, failed := svc.ReconcilePending(context.Background(), 10)
	if done != 0 || failed != 1 {
		t.Errorf("done=%d failed=%d", done, failed)
	}

	var got model.ReconciliationJob
	db.First(&got, job.ID)
	if got.Status != model.ReconcileStatusAbandoned {
		t.Errorf("状态 = %s, 期望 abandoned", got.Status)
	}
	if got.Attempts != maxReconcileAttempts {
		t.Errorf("尝试次数 = %d", got.Attempts)
	}
}

func TestPaymentPrepare_Validation(t *testing.T) {
	svc, _ := newPaymentEnv(t, &fakeGateway{}, &mockLedger{})

	req := tier1Request()
	req.Plan = "tier9"
	if _, err := svc.Prepare(context.Background(), req); err == nil {
		t.Error("未知套餐应被拒绝")
	} else if _, ok := AsValidationError(err); !ok {
		t.Errorf("期望校验错误, 实际: %v", err)
	}

	req = tier1Request()
	req.BannerSize = "diagonal"
	if _, err := svc.Prepare(context.Background(), req); err == nil {
		t.Error("未知尺寸应被拒绝")
	}
}

func TestPaymentCallbacks_DriveLaunch(t *testing.T) {
	session := &fakeSession{orderID: "order_rzp_5"}
	gw := &fakeGateway{next: []*fakeSession{session}}
	svc, _ := newPaymentEnv(t, gw, &mockLedger{})

	prepared, err := svc.Prepare(context.Background(), tier1Request())
	if err != nil {
		t.Fatalf("Prepare 失败: %v", err)
	}

	// 回调在 Launch 之前送达：终态已写入，Launch 直接取回
	if err := svc.Complete(prepared.OrderID, "pay_5"); err != nil {
		t.Fatalf("Complete 回调失败: %v", err)
	}

	got, err := svc.Launch(context.Background(), prepared.OrderID)
	if err != nil {
		t.Fatalf("Launch 失败: %v", err)
	}
	if got.GatewayPaymentID != "pay_5" {
		t.Errorf("支付号 = %s", got.GatewayPaymentID)
	}

	// 会话已结束，再次回调找不到目标
	if err := svc.Dismiss(prepared.OrderID); err != ErrNoLiveSession {
		t.Errorf("期望 ErrNoLiveSession, 实际: %v", err)
	}
}

func TestAbandonStale_SweepsPreparedNeverLaunched(t *testing.T) {
	checkout := &fakeSession{orderID: "order_rzp_7"}
	gw := &fakeGateway{next: []*fakeSession{checkout}}
	svc, db := newPaymentEnv(t, gw, &mockLedger{})

	prepared, err := svc.Prepare(context.Background(), tier1Request())
	if err != nil {
		t.Fatalf("Prepare 失败: %v", err)
	}

	// 回拨创建时间：3 小时前发起，结账页从未打开
	db.Model(&model.PaymentSession{}).
		Where("order_id = ?", prepared.OrderID).
		Update("created_at", time.Now().Add(-3*time.Hour))

	if n := svc.AbandonStale(context.Background(), 2*time.Hour); n != 1 {
		t.Fatalf("清理数 = %d, 期望 1", n)
	}

	got, err := svc.Get(context.Background(), prepared.OrderID)
	if err != nil {
		t.Fatalf("查询会话失败: %v", err)
	}
	if got.Status != model.PaymentStatusFailed {
		t.Errorf("状态 = %s, 期望 failed", got.Status)
	}

	// live 表已摘除：迟到的 Launch 与回调都找不到会话
	if _, err := svc.Launch(context.Background(), prepared.OrderID); err != ErrNoLiveSession {
		t.Errorf("期望 ErrNoLiveSession, 实际: %v", err)
	}
	if err := svc.Complete(prepared.OrderID, "pay_late"); err != ErrNoLiveSession {
		t.Errorf("期望 ErrNoLiveSession, 实际: %v", err)
	}
}

func TestAbandonStale_SkipsFreshLiveSession(t *testing.T) {
	checkout := &fakeSession{orderID: "order_rzp_8"}
	gw := &fakeGateway{next: []*fakeSession{checkout}}
	svc, _ := newPaymentEnv(t, gw, &mockLedger{})

	prepared, err := svc.Prepare(context.Background(), tier1Request())
	if err != nil {
		t.Fatalf("Prepare 失败: %v", err)
	}

	// 未过期的会话不受清理影响
	if n := svc.AbandonStale(context.Background(), 2*time.Hour); n != 0 {
		t.Errorf("清理数 = %d, 期望 0", n)
	}

	got, _ := svc.Get(context.Background(), prepared.OrderID)
	if got.Status != model.PaymentStatusInitiated {
		t.Errorf("状态 = %s", got.Status)
	}

	// 会话仍在 live 表中，回调照常生效
	if err := svc.Complete(prepared.OrderID, "pay_8"); err != nil {
		t.Errorf("Complete 回调失败: %v", err)
	}
}

func TestPaymentConsume(t *testing.T) {
	gw := &fakeGateway{next: []*fakeSession{{
		orderID: "order_rzp_6",
		outcome: gateway.Outcome{Status: gateway.OutcomeCompleted, GatewayPaymentID: "pay_6"},
	}}}
	svc, _ := newPaymentEnv(t, gw, &mockLedger{})

	session, err := svc.Run(context.Background(), tier1Request())
	if err != nil {
		t.Fatalf("Run 失败: %v", err)
	}

	if err := svc.Consume(context.Background(), session.OrderID); err != nil {
		t.Fatalf("首次消费失败: %v", err)
	}
	// 已消费的会话不能再次用于提交
	if err := svc.Consume(context.Background(), session.OrderID); err == nil {
		t.Error("重复消费应被拒绝")
	}

	got, _ := svc.Get(context.Background(), session.OrderID)
	if got.ConsumedAt == nil {
		t.Error("ConsumedAt 应已写入")
	}
	if got.Usable() {
		t.Error("已消费的会话不应再可用")
	}
}
