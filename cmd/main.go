package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"auctionx_v1_202608/internal/controller"
	"auctionx_v1_202608/internal/model"
	"auctionx_v1_202608/internal/repository"
	"auctionx_v1_202608/internal/router"
	"auctionx_v1_202608/internal/service"
	"auctionx_v1_202608/internal/task"
	"auctionx_v1_202608/pkg/database"
	"auctionx_v1_202608/pkg/gateway"
	"auctionx_v1_202608/pkg/net"
)

func main() {
	// 0. 加载环境变量（.env 不存在时静默跳过）
	_ = godotenv.Load()

	// 1. 初始化数据库
	db, dbInit := initDatabase()

	// 2. 初始化依赖
	deps := initDependencies(db)

	// 3. 启动定时任务
	initTasks(deps, dbInit)

	// 4. 初始化路由
	r := router.SetupRouter(deps.Controllers)

	// 5. 启动服务
	startServer(r, deps)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Dispatcher  net.Dispatcher
	Controllers *router.Controllers
	Services    *Services
	Tasks       *Tasks
}

// Repositories 仓库集合
type Repositories struct {
	Payment    repository.PaymentSessionRepository
	Reconcile  repository.ReconciliationJobRepository
	Submission repository.SubmissionRepository
}

// Services 服务集合
type Services struct {
	Asset    *service.AssetService
	Schedule *service.ScheduleService
	Catalog  *service.CatalogService
	Ledger   *service.LedgerService
	Payment  *service.PaymentService
	Submit   *service.SubmitService
	Pipeline *service.PipelineService
}

// Tasks 定时任务集合
type Tasks struct {
	Reconcile *task.ReconcileTask
	Sweep     *task.SessionSweepTask
	Partition *database.PartitionTask
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
// submission_attempts 是按月分区表，由嵌入 SQL 建表；其余表走 AutoMigrate
func initDatabase() (*gorm.DB, *database.Initializer) {
	db := database.InitDB(
		getEnv("DATABASE_DSN", "host=localhost user=auctionx password=auctionx dbname=auctionx port=5432 sslmode=disable"),
		getEnv("GIN_MODE", "") != "release",
	)

	dbInit, err := database.QuickInit(db, []interface{}{
		&model.PaymentSession{}, &model.ReconciliationJob{},
	})
	if err != nil {
		log.Fatalf("数据库初始化失败: %v", err)
	}
	return db, dbInit
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB) *Dependencies {
	// -------- Repo 层 --------
	repos := &Repositories{
		Payment:    repository.NewPaymentSessionRepository(db),
		Reconcile:  repository.NewReconciliationJobRepository(db),
		Submission: repository.NewSubmissionRepository(db),
	}

	// -------- 基础设施 --------
	tokenProvider := &net.StaticTokenProvider{
		Token: getEnv("PERSIST_CSRF_TOKEN", ""),
	}
	dispatcher := net.NewDispatcher(tokenProvider)

	gw := gateway.NewRazorpayGateway(&gateway.RazorpayConfig{
		KeyID:     getEnv("RAZORPAY_KEY_ID", ""),
		KeySecret: getEnv("RAZORPAY_KEY_SECRET", ""),
		BaseURL:   getEnv("RAZORPAY_BASE_URL", ""),
	})

	// -------- 业务服务 --------
	services := &Services{
		Asset:    service.NewAssetService(),
		Schedule: service.NewScheduleService(),
		Catalog:  service.NewCatalogService(),
	}

	services.Ledger = service.NewLedgerService(&service.LedgerConfig{
		BaseURL: getEnv("LEDGER_BASE_URL", "http://localhost:5000"),
	})
	services.Payment = service.NewPaymentService(
		gw, repos.Payment, repos.Reconcile, services.Ledger,
		getEnv("RAZORPAY_KEY_ID", ""),
	)
	services.Submit = service.NewSubmitService(&service.SubmitConfig{
		BaseURL: getEnv("PERSIST_BASE_URL", "http://localhost:5000"),
	}, dispatcher, repos.Submission)
	services.Pipeline = service.NewPipelineService(
		services.Asset, services.Schedule, services.Payment, services.Submit,
	)

	// -------- Controller 层 --------
	controllers := &router.Controllers{
		Listing: controller.NewListingController(services.Pipeline, services.Submit),
		Payment: controller.NewPaymentController(services.Payment),
		Catalog: controller.NewCatalogController(services.Catalog),
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Dispatcher:  dispatcher,
		Controllers: controllers,
		Services:    services,
	}
}

// ==================== 定时任务 ====================

// initTasks 初始化定时任务
func initTasks(deps *Dependencies, dbInit *database.Initializer) {
	reconcileTask := task.NewReconcileTask(deps.Services.Payment)
	reconcileTask.Start()

	sweepTask := task.NewSessionSweepTask(deps.Services.Payment)
	sweepTask.Start()

	// 分区维护：预建未来分区、按保留期清理历史提交记录
	partitionTask := database.NewPartitionTask(dbInit.GetManager())
	partitionTask.Start()

	deps.Tasks = &Tasks{
		Reconcile: reconcileTask,
		Sweep:     sweepTask,
		Partition: partitionTask,
	}

	log.Println("定时任务已启动")
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(r *gin.Engine, deps *Dependencies) {
	port := getEnv("SERVER_PORT", "8080")

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		log.Printf("服务启动在 :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	if deps.Tasks != nil {
		deps.Tasks.Reconcile.Stop()
		deps.Tasks.Sweep.Stop()
		deps.Tasks.Partition.Stop()
	}

	// 优雅关闭，最多等待 30 秒
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务强制关闭: %v", err)
	}

	log.Println("服务已退出")
}

// ==================== 工具函数 ====================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
