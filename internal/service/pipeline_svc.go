package service

import (
	"context"
	"errors"
	"log"
	"sync"

	"auctionx_v1_202608/internal/api/dto"
	"auctionx_v1_202608/internal/model"
)

// ==================== 外部服务依赖 ====================

// PaymentRunner 支付编排接口，由 PaymentService 实现
type PaymentRunner interface {
	Run(ctx context.Context, req *dto.CreatePaymentRequest) (*model.PaymentSession, error)
	Get(ctx context.Context, orderID string) (*model.PaymentSession, error)
	Consume(ctx context.Context, orderID string) error
}

// SubmissionRunner 提交执行接口，由 SubmitService 实现
type SubmissionRunner interface {
	Open(ctx context.Context, draft *model.ListingDraft) (string, error)
	Publish(submissionID string, event dto.SubmissionEvent)
	MarkFailed(ctx context.Context, submissionID, class, message string, fieldErrors map[string]string)
	Upload(ctx context.Context, submissionID string, draft *model.ListingDraft) error
}

// ErrDraftInFlight 同一草稿已有提交在进行中
var ErrDraftInFlight = errors.New("该草稿已有提交在进行中")

// ==================== 服务实现 ====================

// PipelineService 提交流水线编排
// 顺序：本地校验 -> （可选）支付 -> multipart 提交
// 任一环节失败都终止流水线，绝不带着未支付的横幅提交
type PipelineService struct {
	assets   *AssetService
	schedule *ScheduleService
	payments PaymentRunner
	submit   SubmissionRunner

	// 进行中的草稿，阻止同一草稿并发提交
	inflight      map[string]bool
	inflightMutex sync.Mutex
}

// NewPipelineService 创建流水线服务
func NewPipelineService(
	assets *AssetService,
	schedule *ScheduleService,
	payments PaymentRunner,
	submit SubmissionRunner,
) *PipelineService {
	return &PipelineService{
		assets:   assets,
		schedule: schedule,
		payments: payments,
		submit:   submit,
		inflight: make(map[string]bool),
	}
}

// Start 校验草稿并启动一次提交
// 校验同步完成：任何字段错误都在发起网络请求之前返回；
// 通过校验后异步执行支付与上传，调用方凭提交号订阅进度
func (s *PipelineService) Start(ctx context.Context, draft *model.ListingDraft) (*dto.SubmitListingResult, error) {
	s.inflightMutex.Lock()
	if s.inflight[draft.DraftID] {
		s.inflightMutex.Unlock()
		return nil, ErrDraftInFlight
	}
	s.inflight[draft.DraftID] = true
	s.inflightMutex.Unlock()

	warnings, fieldErrs := s.validate(draft)
	if fieldErrs != nil {
		s.release(draft.DraftID)
		return nil, NewValidationError(fieldErrs)
	}

	submissionID, err := s.submit.Open(ctx, draft)
	if err != nil {
		s.release(draft.DraftID)
		return nil, err
	}

	go s.run(submissionID, draft)

	return &dto.SubmitListingResult{
		SubmissionID: submissionID,
		Warnings:     warnings,
	}, nil
}

// validate 汇总所有本地校验
func (s *PipelineService) validate(draft *model.ListingDraft) ([]string, map[string]string) {
	errs := make(map[string]string)

	merge := func(m map[string]string) {
		for k, v := range m {
			if _, exists := errs[k]; !exists {
				errs[k] = v
			}
		}
	}

	merge(s.assets.MeasureAll(draft))
	merge(draft.ValidateFields())
	merge(s.schedule.Validate(draft.Schedule))

	warnings, imgErrs := s.assets.ValidateProductImages(draft.Images)
	merge(imgErrs)

	if draft.Banner != nil {
		merge(s.assets.ValidateBannerImage(draft.Banner))
	}

	if len(errs) == 0 {
		return warnings, nil
	}
	return warnings, errs
}

// run 异步执行支付与上传
func (s *PipelineService) run(submissionID string, draft *model.ListingDraft) {
	defer s.release(draft.DraftID)
	ctx := context.Background()

	if draft.Banner != nil {
		if err := s.settleBanner(ctx, submissionID, draft); err != nil {
			return
		}
	}

	s.submit.Publish(submissionID, dto.SubmissionEvent{
		Stage:   "uploading",
		Message: "开始上传",
	})

	if err := s.submit.Upload(ctx, submissionID, draft); err != nil {
		// Upload 已完成落库与事件推送；支付会话保留，重试时可复用
		return
	}

	if draft.Banner != nil {
		if err := s.payments.Consume(ctx, draft.Banner.PaymentOrderID); err != nil {
			log.Printf("[Pipeline] 标记支付消费失败 order=%s: %v", draft.Banner.PaymentOrderID, err)
		}
	}
}

// settleBanner 确保横幅支付就位
// 已携带完成的支付会话则直接复核；否则发起新支付并等待结果
func (s *PipelineService) settleBanner(ctx context.Context, submissionID string, draft *model.ListingDraft) error {
	banner := draft.Banner

	// 重试路径：上一轮支付已完成但提交失败
	if banner.PaymentOrderID != "" {
		session, err := s.payments.Get(ctx, banner.PaymentOrderID)
		if err != nil || !session.Usable() {
			s.submit.MarkFailed(ctx, submissionID, model.SubmitErrorPayment,
				"支付会话不可用，请重新支付", map[string]string{"bannerPlan": "支付会话不可用，请重新支付"})
			return errors.New("payment session not usable")
		}
		banner.GatewayPaymentID = session.GatewayPaymentID
		return nil
	}

	s.submit.Publish(submissionID, dto.SubmissionEvent{
		Stage:   "payment",
		Message: "等待支付完成",
	})

	session, err := s.payments.Run(ctx, &dto.CreatePaymentRequest{
		Email:      draft.Email,
		Contact:    draft.MobileNumber,
		Plan:       banner.Plan,
		BannerSize: banner.Size,
	})
	if err != nil {
		message := "支付失败，提交已终止"
		if pe, ok := AsPaymentError(err); ok && pe.Cancelled {
			message = "支付已取消，提交未发起"
		}
		s.submit.MarkFailed(ctx, submissionID, model.SubmitErrorPayment, message, nil)
		return err
	}

	banner.PaymentOrderID = session.OrderID
	banner.GatewayPaymentID = session.GatewayPaymentID

	s.submit.Publish(submissionID, dto.SubmissionEvent{
		Stage:   "payment_done",
		Message: "支付完成",
	})
	return nil
}

func (s *PipelineService) release(draftID string) {
	s.inflightMutex.Lock()
	delete(s.inflight, draftID)
	s.inflightMutex.Unlock()
}
