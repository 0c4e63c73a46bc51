package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"auctionx_v1_202608/internal/api/dto"
	"auctionx_v1_202608/internal/model"
	"auctionx_v1_202608/internal/repository"
	"auctionx_v1_202608/pkg/net"
)

// ==================== 配置 ====================

type SubmitConfig struct {
	BaseURL string // 持久化服务地址
}

// SubmitService 向持久化服务提交 multipart 载荷
// 负责提交记录的生命周期、进度订阅与错误分类
type SubmitService struct {
	config     *SubmitConfig
	dispatcher net.Dispatcher
	repo       repository.SubmissionRepository

	// 进度订阅管理
	subscribers     map[string][]chan dto.SubmissionEvent
	subscriberMutex sync.RWMutex
}

// NewSubmitService 创建提交服务
func NewSubmitService(cfg *SubmitConfig, dispatcher net.Dispatcher, repo repository.SubmissionRepository) *SubmitService {
	return &SubmitService{
		config:      cfg,
		dispatcher:  dispatcher,
		repo:        repo,
		subscribers: make(map[string][]chan dto.SubmissionEvent),
	}
}

// ==================== 进度订阅 ====================

// Subscribe 订阅提交进度
func (s *SubmitService) Subscribe(submissionID string) chan dto.SubmissionEvent {
	s.subscriberMutex.Lock()
	defer s.subscriberMutex.Unlock()

	ch := make(chan dto.SubmissionEvent, 16)
	s.subscribers[submissionID] = append(s.subscribers[submissionID], ch)
	return ch
}

// Unsubscribe 取消订阅
func (s *SubmitService) Unsubscribe(submissionID string, ch chan dto.SubmissionEvent) {
	s.subscriberMutex.Lock()
	defer s.subscriberMutex.Unlock()

	subs := s.subscribers[submissionID]
	for i, sub := range subs {
		if sub == ch {
			s.subscribers[submissionID] = append(subs[:i], subs[i+1:]...)
			close(ch)
			break
		}
	}

	if len(s.subscribers[submissionID]) == 0 {
		delete(s.subscribers, submissionID)
	}
}

// Publish 向订阅者推送事件；channel 满则丢弃
func (s *SubmitService) Publish(submissionID string, event dto.SubmissionEvent) {
	event.SubmissionID = submissionID

	s.subscriberMutex.RLock()
	defer s.subscriberMutex.RUnlock()

	for _, ch := range s.subscribers[submissionID] {
		select {
		case ch <- event:
		default:
		}
	}
}

// ==================== 提交记录生命周期 ====================

// Open 为一次提交创建记录，返回提交号
// 每次尝试新建一行，失败后的重试是一条全新记录
func (s *SubmitService) Open(ctx context.Context, draft *model.ListingDraft) (string, error) {
	submissionID := uuid.NewString()

	attempt := &model.SubmissionAttempt{
		SubmissionID: submissionID,
		DraftID:      draft.DraftID,
		Email:        draft.Email,
		Status:       model.SubmissionStatusPending,
		ImageCount:   len(draft.Images),
		HasBanner:    draft.Banner != nil,
	}
	if err := s.repo.Create(ctx, attempt); err != nil {
		return "", fmt.Errorf("创建提交记录失败: %v", err)
	}
	return submissionID, nil
}

// MarkFailed 将提交记录置为失败并推送终态事件
func (s *SubmitService) MarkFailed(ctx context.Context, submissionID, class, message string, fieldErrors map[string]string) {
	fields := map[string]interface{}{
		"status":        model.SubmissionStatusFailed,
		"error_class":   class,
		"error_message": message,
	}
	if len(fieldErrors) > 0 {
		if raw, err := json.Marshal(fieldErrors); err == nil {
			fields["field_errors"] = datatypes.JSON(raw)
		}
	}
	if err := s.repo.UpdateFields(ctx, submissionID, fields); err != nil {
		log.Printf("[Submit] 更新提交记录失败 submission=%s: %v", submissionID, err)
	}

	s.Publish(submissionID, dto.SubmissionEvent{
		Stage:       "failed",
		Message:     message,
		ErrorClass:  class,
		FieldErrors: fieldErrors,
	})
}

// Get 查询提交记录
func (s *SubmitService) Get(ctx context.Context, submissionID string) (*model.SubmissionAttempt, error) {
	return s.repo.GetBySubmissionID(ctx, submissionID)
}

// ==================== 上传 ====================

// Upload 组装 multipart 载荷并上传
// 一旦开始写出字节就不再响应调用方取消，避免半途而废的流
func (s *SubmitService) Upload(ctx context.Context, submissionID string, draft *model.ListingDraft) error {
	payload, err := buildPayload(draft)
	if err != nil {
		return &SubmissionError{Class: model.SubmitErrorValidation, Message: err.Error()}
	}

	s.repo.UpdateFields(ctx, submissionID, map[string]interface{}{
		"status": model.SubmissionStatusUploading,
	})
	if draft.Banner != nil {
		s.repo.UpdateFields(ctx, submissionID, map[string]interface{}{
			"payment_order_id": draft.Banner.PaymentOrderID,
		})
	}

	// 进度百分比单调不减
	var lastPercent int
	onProgress := func(sent, total int64) {
		percent := int(sent * 100 / total)
		if percent <= lastPercent {
			return
		}
		lastPercent = percent

		s.Publish(submissionID, dto.SubmissionEvent{
			Stage:    "uploading",
			Progress: percent,
			Message:  fmt.Sprintf("已上传 %d%%", percent),
		})
		// 进度落库按 10% 粒度，避免高频写
		if percent%10 == 0 || percent == 100 {
			s.repo.UpdateFields(context.WithoutCancel(ctx), submissionID, map[string]interface{}{
				"progress": percent,
			})
		}
	}

	uploadCtx := context.WithoutCancel(ctx)
	req, err := net.BuildMultipartRequest(uploadCtx, http.MethodPost, s.config.BaseURL+"/api/products", payload, onProgress)
	if err != nil {
		return &SubmissionError{Class: model.SubmitErrorNetwork, Message: err.Error()}
	}

	resp, err := s.dispatcher.Send(uploadCtx, req)
	if err != nil {
		subErr := &SubmissionError{Class: model.SubmitErrorNetwork, Message: "提交请求未送达: " + err.Error()}
		s.MarkFailed(uploadCtx, submissionID, subErr.Class, subErr.Message, nil)
		return subErr
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		s.repo.UpdateFields(uploadCtx, submissionID, map[string]interface{}{
			"status":   model.SubmissionStatusSucceeded,
			"progress": 100,
		})
		s.Publish(submissionID, dto.SubmissionEvent{
			Stage:    "done",
			Progress: 100,
			Message:  "提交成功",
		})
		log.Printf("[Submit] 提交成功 submission=%s draft=%s", submissionID, draft.DraftID)
		return nil
	}

	subErr := classifyResponse(resp)
	s.MarkFailed(uploadCtx, submissionID, subErr.Class, subErr.Message, subErr.FieldErrors)
	log.Printf("[Submit] 提交失败 submission=%s class=%s status=%d", submissionID, subErr.Class, resp.StatusCode)
	return subErr
}

// buildPayload 按持久化服务的字段约定组装 multipart 载荷
func buildPayload(draft *model.ListingDraft) (*net.MultipartPayload, error) {
	points, err := json.Marshal(draft.Points)
	if err != nil {
		return nil, fmt.Errorf("序列化描述要点失败: %v", err)
	}

	fields := map[string]string{
		"name":              draft.Title,
		"mainCategory":      draft.MainCategory,
		"category":          draft.Category,
		"description":       string(points),
		"mobileNumber":      draft.MobileNumber,
		"email":             draft.Email,
		"biddingStartDate":  draft.Schedule.StartDate,
		"biddingStartTime":  draft.Schedule.StartTime,
		"biddingStartPrice": strconv.FormatFloat(draft.Schedule.StartPrice, 'f', -1, 64),
	}

	images := make([]net.FilePart, 0, len(draft.Images))
	for _, img := range draft.Images {
		images = append(images, net.FilePart{Filename: img.Filename, Data: img.Data})
	}
	files := map[string][]net.FilePart{
		"productImages": images,
	}

	if b := draft.Banner; b != nil {
		if !b.Complete() {
			return nil, fmt.Errorf("横幅信息不完整，不能随提交携带")
		}
		fields["hasBanner"] = "true"
		fields["bannerSize"] = b.Size
		fields["bannerPlan"] = b.Plan
		fields["paymentOrderId"] = b.PaymentOrderID
		fields["paymentId"] = b.GatewayPaymentID
		files["bannerImage"] = []net.FilePart{{Filename: b.Image.Filename, Data: b.Image.Data}}
	}

	return &net.MultipartPayload{Fields: fields, Files: files}, nil
}

// classifyResponse 按响应分类提交错误
// 5xx 为服务端故障；401/403 为凭证被拒，429 为限流，均不是字段校验问题；
// 其余 4xx 视为校验拒绝，尝试提取字段级错误
func classifyResponse(resp *http.Response) *SubmissionError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	switch {
	case resp.StatusCode >= 500:
		return &SubmissionError{
			Class:   model.SubmitErrorServer,
			Message: fmt.Sprintf("服务端错误 %d，请稍后重试", resp.StatusCode),
		}
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &SubmissionError{
			Class:   model.SubmitErrorAuth,
			Message: fmt.Sprintf("请求凭证被拒绝 (%d)，请刷新页面后重试", resp.StatusCode),
		}
	case resp.StatusCode == http.StatusTooManyRequests:
		return &SubmissionError{
			Class:   model.SubmitErrorServer,
			Message: "提交过于频繁，请稍后重试",
		}
	}

	subErr := &SubmissionError{
		Class:   model.SubmitErrorValidation,
		Message: fmt.Sprintf("提交被拒绝 (%d)", resp.StatusCode),
	}

	// 持久化服务返回 {"message": "...", "errors": {"field": "msg"}}
	var parsed struct {
		Message string            `json:"message"`
		Errors  map[string]string `json:"errors"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Message != "" {
			subErr.Message = parsed.Message
		}
		if len(parsed.Errors) > 0 {
			subErr.FieldErrors = parsed.Errors
		}
	}
	return subErr
}
