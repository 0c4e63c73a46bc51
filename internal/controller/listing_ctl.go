package controller

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"auctionx_v1_202608/internal/api/dto"
	"auctionx_v1_202608/internal/model"
	"auctionx_v1_202608/internal/service"
)

// 单个上传文件的大小上限
const maxUploadBytes = 10 << 20

// ==================== 控制器 ====================

// ListingController 挂牌提交控制器
type ListingController struct {
	pipeline      *service.PipelineService
	submitService *service.SubmitService
}

func NewListingController(pipeline *service.PipelineService, submitService *service.SubmitService) *ListingController {
	return &ListingController{pipeline: pipeline, submitService: submitService}
}

// ==================== API 方法 ====================

// SubmitListing 受理一次挂牌提交
// @Summary 提交拍卖品草稿（multipart）
// @Tags Listing
// @Accept multipart/form-data
// @Produce json
// @Success 202 {object} dto.SubmitListingResult
// @Router /api/listings [post]
func (ctrl *ListingController) SubmitListing(c *gin.Context) {
	draft, err := parseDraftForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	result, err := ctrl.pipeline.Start(c.Request.Context(), draft)
	if err != nil {
		if ve, ok := service.AsValidationError(err); ok {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "校验失败",
				"errors":  ve.Fields,
			})
			return
		}
		if err == service.ErrDraftInFlight {
			c.JSON(http.StatusConflict, gin.H{
				"code":    409,
				"message": err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "提交受理失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"code":    0,
		"message": "success",
		"data":    result,
	})
}

// GetSubmission 查询提交记录
// @Summary 查询一次提交的状态
// @Tags Listing
// @Param submission_id path string true "提交号"
// @Success 200 {object} dto.SubmissionStatusResponse
// @Router /api/submissions/{submission_id} [get]
func (ctrl *ListingController) GetSubmission(c *gin.Context) {
	submissionID := c.Param("submission_id")

	attempt, err := ctrl.submitService.Get(c.Request.Context(), submissionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    404,
			"message": "提交记录不存在",
		})
		return
	}

	resp := dto.SubmissionStatusResponse{
		SubmissionID:   attempt.SubmissionID,
		DraftID:        attempt.DraftID,
		Status:         attempt.Status,
		Progress:       attempt.Progress,
		ImageCount:     attempt.ImageCount,
		HasBanner:      attempt.HasBanner,
		PaymentOrderID: attempt.PaymentOrderID,
		ErrorClass:     attempt.ErrorClass,
		ErrorMessage:   attempt.ErrorMessage,
		CreatedAt:      attempt.CreatedAt.Format(time.RFC3339),
	}
	if len(attempt.FieldErrors) > 0 {
		_ = json.Unmarshal(attempt.FieldErrors, &resp.FieldErrors)
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    resp,
	})
}

// StreamEvents SSE 订阅提交进度
// @Summary SSE 实时推送提交进度
// @Tags Listing
// @Param submission_id path string true "提交号"
// @Produce text/event-stream
// @Router /api/submissions/{submission_id}/events [get]
func (ctrl *ListingController) StreamEvents(c *gin.Context) {
	submissionID := c.Param("submission_id")

	if _, err := ctrl.submitService.Get(c.Request.Context(), submissionID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    404,
			"message": "提交记录不存在",
		})
		return
	}

	// 设置 SSE 响应头
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("Access-Control-Allow-Origin", "*")

	eventCh := ctrl.submitService.Subscribe(submissionID)
	defer ctrl.submitService.Unsubscribe(submissionID, eventCh)

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	clientGone := c.Request.Context().Done()

	for {
		select {
		case <-clientGone:
			return
		case <-ticker.C:
			c.SSEvent("heartbeat", gin.H{"time": time.Now().Unix()})
			c.Writer.Flush()
		case event, ok := <-eventCh:
			if !ok {
				return
			}
			data, _ := json.Marshal(event)
			c.SSEvent("progress", string(data))
			c.Writer.Flush()

			if event.Stage == "done" || event.Stage == "failed" {
				return
			}
		}
	}
}

// ==================== 表单解析 ====================

// parseDraftForm 将 multipart 表单解析为草稿
func parseDraftForm(c *gin.Context) (*model.ListingDraft, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}

	field := func(name string) string {
		if vs := form.Value[name]; len(vs) > 0 {
			return vs[0]
		}
		return ""
	}

	draft := &model.ListingDraft{
		DraftID:      field("draftId"),
		Title:        field("name"),
		MainCategory: field("mainCategory"),
		Category:     field("category"),
		MobileNumber: field("mobileNumber"),
		Email:        field("email"),
		Schedule: model.Schedule{
			StartDate: field("biddingStartDate"),
			StartTime: field("biddingStartTime"),
		},
		TermsAccepted: field("acceptTerms") == "true",
	}
	if draft.DraftID == "" {
		draft.DraftID = uuid.NewString()
	}

	if v := field("biddingStartPrice"); v != "" {
		draft.Schedule.StartPrice, _ = strconv.ParseFloat(v, 64)
	}

	if v := field("description"); v != "" {
		if err := json.Unmarshal([]byte(v), &draft.Points); err != nil {
			return nil, err
		}
	}

	for _, fh := range form.File["productImages"] {
		asset, err := readUpload(fh)
		if err != nil {
			return nil, err
		}
		draft.Images = append(draft.Images, *asset)
	}

	// 横幅：任一横幅字段出现即视为选择了横幅
	bannerSize := field("bannerSize")
	bannerPlan := field("bannerPlan")
	bannerFiles := form.File["bannerImage"]
	if bannerSize != "" || bannerPlan != "" || len(bannerFiles) > 0 {
		banner := &model.BannerRequest{
			Size:           bannerSize,
			Plan:           bannerPlan,
			PaymentOrderID: field("paymentOrderId"),
		}
		if len(bannerFiles) > 0 {
			asset, err := readUpload(bannerFiles[0])
			if err != nil {
				return nil, err
			}
			banner.Image = asset
		}
		draft.Banner = banner
	}

	return draft, nil
}

// readUpload 读取一个上传文件
func readUpload(fh *multipart.FileHeader) (*model.ImageAsset, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		return nil, err
	}
	return &model.ImageAsset{Filename: fh.Filename, Data: data}, nil
}
