package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"auctionx_v1_202608/internal/api/dto"
	"auctionx_v1_202608/internal/model"
	"auctionx_v1_202608/internal/service"
)

// ==================== 控制器 ====================

// PaymentController 横幅支付控制器
type PaymentController struct {
	paymentService *service.PaymentService
}

func NewPaymentController(paymentService *service.PaymentService) *PaymentController {
	return &PaymentController{paymentService: paymentService}
}

// ==================== API 方法 ====================

// CreatePayment 创建支付会话
// @Summary 发起横幅支付（网关预下单）
// @Tags Payment
// @Accept json
// @Produce json
// @Param body body dto.CreatePaymentRequest true "支付请求"
// @Success 201 {object} dto.CreatePaymentResponse
// @Router /api/payments [post]
func (ctrl *PaymentController) CreatePayment(c *gin.Context) {
	var req dto.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	result, err := ctrl.paymentService.Prepare(c.Request.Context(), &req)
	if err != nil {
		if ve, ok := service.AsValidationError(err); ok {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "校验失败",
				"errors":  ve.Fields,
			})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{
			"code":    502,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code":    0,
		"message": "success",
		"data":    result,
	})
}

// LaunchPayment 等待支付结果
// @Summary 阻塞等待托管结账出结果（完成/关闭/失败）
// @Tags Payment
// @Param order_id path string true "订单号"
// @Success 200 {object} dto.PaymentStatusResponse
// @Router /api/payments/{order_id}/launch [post]
func (ctrl *PaymentController) LaunchPayment(c *gin.Context) {
	orderID := c.Param("order_id")

	session, err := ctrl.paymentService.Launch(c.Request.Context(), orderID)
	if err != nil {
		if err == service.ErrNoLiveSession {
			c.JSON(http.StatusNotFound, gin.H{
				"code":    404,
				"message": err.Error(),
			})
			return
		}
		// 取消与失败都是正常终态，以 200 返回最终会话状态
		if _, ok := service.AsPaymentError(err); ok {
			ctrl.respondStatus(c, orderID)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    toPaymentStatus(session),
	})
}

// CompletePayment 结账页支付成功回调
// @Summary 上报支付成功
// @Tags Payment
// @Param order_id path string true "订单号"
// @Param body body dto.CompletePaymentRequest true "回调参数"
// @Router /api/payments/{order_id}/callback [post]
func (ctrl *PaymentController) CompletePayment(c *gin.Context) {
	var req dto.CompletePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	if err := ctrl.paymentService.Complete(c.Param("order_id"), req.GatewayPaymentID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    404,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success"})
}

// DismissPayment 用户关闭结账窗口
// @Summary 上报结账窗口被关闭
// @Tags Payment
// @Param order_id path string true "订单号"
// @Router /api/payments/{order_id}/dismiss [post]
func (ctrl *PaymentController) DismissPayment(c *gin.Context) {
	if err := ctrl.paymentService.Dismiss(c.Param("order_id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    404,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success"})
}

// FailPayment 结账页支付失败回调
// @Summary 上报支付失败
// @Tags Payment
// @Param order_id path string true "订单号"
// @Param body body dto.FailPaymentRequest true "失败原因"
// @Router /api/payments/{order_id}/fail [post]
func (ctrl *PaymentController) FailPayment(c *gin.Context) {
	var req dto.FailPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req.Reason = ""
	}
	if req.Reason == "" {
		req.Reason = "网关返回支付失败"
	}

	if err := ctrl.paymentService.Fail(c.Param("order_id"), req.Reason); err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    404,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success"})
}

// GetPayment 查询支付会话
// @Summary 查询支付会话状态
// @Tags Payment
// @Param order_id path string true "订单号"
// @Success 200 {object} dto.PaymentStatusResponse
// @Router /api/payments/{order_id} [get]
func (ctrl *PaymentController) GetPayment(c *gin.Context) {
	ctrl.respondStatus(c, c.Param("order_id"))
}

// ==================== 辅助函数 ====================

func (ctrl *PaymentController) respondStatus(c *gin.Context, orderID string) {
	session, err := ctrl.paymentService.Get(c.Request.Context(), orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    404,
			"message": "支付会话不存在",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    toPaymentStatus(session),
	})
}

func toPaymentStatus(s *model.PaymentSession) dto.PaymentStatusResponse {
	return dto.PaymentStatusResponse{
		OrderID:          s.OrderID,
		Status:           s.Status,
		Plan:             s.Plan,
		BannerSize:       s.BannerSize,
		Amount:           s.Amount,
		GatewayPaymentID: s.GatewayPaymentID,
		FailReason:       s.FailReason,
		LedgerSynced:     s.LedgerSynced,
		Consumed:         s.ConsumedAt != nil,
		CreatedAt:        s.CreatedAt.Format(time.RFC3339),
	}
}
