package task

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// ==================== 账本对账任务 ====================

// Reconciler 对账执行接口，由 PaymentService 实现
type Reconciler interface {
	ReconcilePending(ctx context.Context, batch int) (done, failed int)
}

// ReconcileTask 定时重试"支付成功但记账失败"的补偿任务
type ReconcileTask struct {
	reconciler Reconciler
	Cron       *cron.Cron

	batchSize int
}

func NewReconcileTask(reconciler Reconciler) *ReconcileTask {
	return &ReconcileTask{
		reconciler: reconciler,
		Cron:       cron.New(cron.WithSeconds()), // 支持秒级控制
		batchSize:  20,
	}
}

// Start 启动定时任务
func (t *ReconcileTask) Start() {
	// 首次执行：服务重启期间可能积压了待对账记录
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		log.Println("[Task] 服务启动，正在执行首次账本对账...")
		t.reconciler.ReconcilePending(ctx, t.batchSize)
	}()

	// 定时策略：每 5 分钟一轮
	_, err := t.Cron.AddFunc("0 0/5 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		t.reconciler.ReconcilePending(ctx, t.batchSize)
	})

	if err != nil {
		log.Fatalf("无法启动对账定时任务: %v", err)
	}

	t.Cron.Start()
	log.Println("账本对账任务已启动 (每5分钟检查一次)")
}

// Stop 停止定时任务
func (t *ReconcileTask) Stop() {
	t.Cron.Stop()
	log.Println("账本对账任务已停止")
}
