package task

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// ==================== 支付会话清扫任务 ====================

// SessionSweeper 清扫执行接口，由 PaymentService 实现
type SessionSweeper interface {
	AbandonStale(ctx context.Context, olderThan time.Duration) int
}

// SessionSweepTask 定时清理长时间停留在非终态的支付会话
// 进程重启会丢失内存中的托管结账会话，对应的库记录由本任务收尾
type SessionSweepTask struct {
	sweeper SessionSweeper
	Cron    *cron.Cron

	// 超过该时长仍未到终态的会话视为废弃
	staleAfter time.Duration
}

func NewSessionSweepTask(sweeper SessionSweeper) *SessionSweepTask {
	return &SessionSweepTask{
		sweeper:    sweeper,
		Cron:       cron.New(cron.WithSeconds()),
		staleAfter: 2 * time.Hour,
	}
}

// Start 启动定时任务
func (t *SessionSweepTask) Start() {
	// 首次执行：把上次进程遗留的会话清掉
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		log.Println("[Task] 服务启动，正在清理遗留支付会话...")
		t.sweeper.AbandonStale(ctx, t.staleAfter)
	}()

	// 定时策略：每小时一轮
	_, err := t.Cron.AddFunc("0 0 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		t.sweeper.AbandonStale(ctx, t.staleAfter)
	})

	if err != nil {
		log.Fatalf("无法启动会话清扫定时任务: %v", err)
	}

	t.Cron.Start()
	log.Println("支付会话清扫任务已启动 (每小时检查一次)")
}

// Stop 停止定时任务
func (t *SessionSweepTask) Stop() {
	t.Cron.Stop()
	log.Println("支付会话清扫任务已停止")
}
