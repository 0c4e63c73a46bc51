package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"auctionx_v1_202608/internal/controller"
	"auctionx_v1_202608/internal/middleware"
)

// Controllers 控制器集合
type Controllers struct {
	Listing *controller.ListingController
	Payment *controller.PaymentController
	Catalog *controller.CatalogController
}

// SetupRouter 注册所有路由
func SetupRouter(ctl *Controllers) *gin.Engine {
	r := gin.Default()

	// Swagger 文档路由（swag init 生成 docs 后可见）
	// 访问 http://localhost:8080/swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	{
		// 挂牌提交
		listings := api.Group("/listings")
		listings.Use(middleware.SubmitRateLimit())
		{
			// POST /api/listings
			listings.POST("", ctl.Listing.SubmitListing)
		}

		// 提交记录
		submissions := api.Group("/submissions")
		{
			submissions.GET("/:submission_id", ctl.Listing.GetSubmission)
			// SSE
			submissions.GET("/:submission_id/events", ctl.Listing.StreamEvents)
		}

		// 横幅支付
		payments := api.Group("/payments")
		{
			payments.POST("", ctl.Payment.CreatePayment)
			payments.GET("/:order_id", ctl.Payment.GetPayment)
			payments.POST("/:order_id/launch", ctl.Payment.LaunchPayment)
			payments.POST("/:order_id/callback", ctl.Payment.CompletePayment)
			payments.POST("/:order_id/dismiss", ctl.Payment.DismissPayment)
			payments.POST("/:order_id/fail", ctl.Payment.FailPayment)
		}

		// 只读查询
		api.GET("/catalog", ctl.Catalog.GetCatalog)
		api.GET("/banner-plans", ctl.Catalog.GetBannerPlans)
	}

	return r
}
