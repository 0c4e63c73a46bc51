package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"auctionx_v1_202608/internal/api/dto"
	"auctionx_v1_202608/internal/model"
	"auctionx_v1_202608/internal/repository"
	"auctionx_v1_202608/pkg/net"
)

// ==================== 测试环境 ====================

func setupSubmitTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.SubmissionAttempt{}); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	return db
}

func newSubmitEnv(t *testing.T, baseURL string) (*SubmitService, *gorm.DB) {
	db := setupSubmitTestDB(t)
	dispatcher := net.NewDispatcher(&net.StaticTokenProvider{Token: "csrf-test"})
	svc := NewSubmitService(&SubmitConfig{BaseURL: baseURL}, dispatcher, repository.NewSubmissionRepository(db))
	return svc, db
}

func submittableDraft() *model.ListingDraft {
	return &model.ListingDraft{
		DraftID:      "draft-submit",
		Title:        "Vintage Guitar",
		MainCategory: "Musical Instruments & Equipment",
		Category:     "Vintage Guitars",
		Points: []model.DescriptionPoint{
			{Name: "Brand", Text: "Fender"},
		},
		Images: []model.ImageAsset{
			{Filename: "a.jpg", Data: []byte("image-bytes-a"), Width: 800, Height: 800},
		},
		MobileNumber:  "9876543210",
		Email:         "seller@example.com",
		Schedule:      model.Schedule{StartDate: "2026-09-01", StartTime: "12:00", StartPrice: 5000},
		TermsAccepted: true,
	}
}

// collectEvents 后台收集事件直到订阅关闭
func collectEvents(svc *SubmitService, submissionID string) (func() []dto.SubmissionEvent, chan dto.SubmissionEvent) {
	ch := svc.Subscribe(submissionID)
	collected := make(chan []dto.SubmissionEvent, 1)
	go func() {
		var events []dto.SubmissionEvent
		for ev := range ch {
			events = append(events, ev)
		}
		collected <- events
	}()
	return func() []dto.SubmissionEvent {
		svc.Unsubscribe(submissionID, ch)
		return <-collected
	}, ch
}

// ==================== 测试 ====================

func TestSubmitUpload_Success(t *testing.T) {
	var gotToken, gotName, gotPaymentID, gotHasBanner string
	var gotImages, gotBannerFiles int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-CSRF-Token")
		if err := r.ParseMultipartForm(4 << 20); err != nil {
			t.Errorf("解析 multipart 失败: %v", err)
		}
		gotName = r.FormValue("name")
		gotPaymentID = r.FormValue("paymentId")
		gotHasBanner = r.FormValue("hasBanner")
		gotImages = len(r.MultipartForm.File["productImages"])
		gotBannerFiles = len(r.MultipartForm.File["bannerImage"])
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"message": "created"})
	}))
	defer srv.Close()

	svc, _ := newSubmitEnv(t, srv.URL)

	draft := submittableDraft()
	draft.Banner = &model.BannerRequest{
		Size:             model.BannerSizeHorizontal,
		Plan:             model.BannerPlanTier1,
		Image:            &model.ImageAsset{Filename: "b.png", Data: []byte("banner-bytes"), Width: 1200, Height: 300},
		PaymentOrderID:   "order_1",
		GatewayPaymentID: "pay_1",
	}

	submissionID, err := svc.Open(context.Background(), draft)
	if err != nil {
		t.Fatalf("Open 失败: %v", err)
	}

	finish, _ := collectEvents(svc, submissionID)

	if err := svc.Upload(context.Background(), submissionID, draft); err != nil {
		t.Fatalf("Upload 失败: %v", err)
	}

	if gotToken != "csrf-test" {
		t.Errorf("X-CSRF-Token = %q", gotToken)
	}
	if gotName != "Vintage Guitar" {
		t.Errorf("name = %q", gotName)
	}
	if gotPaymentID != "pay_1" {
		t.Errorf("paymentId = %q", gotPaymentID)
	}
	if gotHasBanner != "true" {
		t.Errorf("hasBanner = %q", gotHasBanner)
	}
	if gotImages != 1 {
		t.Errorf("productImages 文件数 = %d", gotImages)
	}
	if gotBannerFiles != 1 {
		t.Errorf("bannerImage 文件数 = %d", gotBannerFiles)
	}

	attempt, err := svc.Get(context.Background(), submissionID)
	if err != nil {
		t.Fatalf("查询提交记录失败: %v", err)
	}
	if attempt.Status != model.SubmissionStatusSucceeded {
		t.Errorf("状态 = %s", attempt.Status)
	}
	if attempt.Progress != 100 {
		t.Errorf("进度 = %d", attempt.Progress)
	}
	if attempt.PaymentOrderID != "order_1" {
		t.Errorf("支付订单号 = %s", attempt.PaymentOrderID)
	}

	events := finish()
	if len(events) == 0 {
		t.Fatal("未收到任何事件")
	}
	last := events[len(events)-1]
	if last.Stage != "done" || last.Progress != 100 {
		t.Errorf("终态事件 = %+v", last)
	}
}

func TestSubmitUpload_NoBannerOmitsBannerFields(t *testing.T) {
	var gotHasBanner string
	var gotImages int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(4 << 20); err != nil {
			t.Errorf("解析 multipart 失败: %v", err)
		}
		gotHasBanner = r.FormValue("hasBanner")
		gotImages = len(r.MultipartForm.File["productImages"])
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	svc, _ := newSubmitEnv(t, srv.URL)
	draft := submittableDraft()

	submissionID, _ := svc.Open(context.Background(), draft)
	if err := svc.Upload(context.Background(), submissionID, draft); err != nil {
		t.Fatalf("Upload 失败: %v", err)
	}

	if gotHasBanner != "" {
		t.Errorf("无横幅时不应携带 hasBanner, 实际 %q", gotHasBanner)
	}
	if gotImages != 1 {
		t.Errorf("productImages 文件数 = %d", gotImages)
	}
}

func TestSubmitUpload_ValidationRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message": "听起来不像一件拍卖品",
			"errors":  map[string]string{"name": "名称重复"},
		})
	}))
	defer srv.Close()

	svc, _ := newSubmitEnv(t, srv.URL)
	draft := submittableDraft()

	submissionID, _ := svc.Open(context.Background(), draft)
	err := svc.Upload(context.Background(), submissionID, draft)

	subErr, ok := AsSubmissionError(err)
	if !ok {
		t.Fatalf("期望 SubmissionError, 实际: %v", err)
	}
	if subErr.Class != model.SubmitErrorValidation {
		t.Errorf("分类 = %s", subErr.Class)
	}
	if subErr.FieldErrors["name"] != "名称重复" {
		t.Errorf("字段错误 = %v", subErr.FieldErrors)
	}

	attempt, _ := svc.Get(context.Background(), submissionID)
	if attempt.Status != model.SubmissionStatusFailed {
		t.Errorf("状态 = %s", attempt.Status)
	}
	if attempt.ErrorClass != model.SubmitErrorValidation {
		t.Errorf("错误分类 = %s", attempt.ErrorClass)
	}

	var persisted map[string]string
	json.Unmarshal(attempt.FieldErrors, &persisted)
	if persisted["name"] != "名称重复" {
		t.Errorf("落库的字段错误 = %v", persisted)
	}
}

func TestSubmitUpload_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	svc, _ := newSubmitEnv(t, srv.URL)
	draft := submittableDraft()

	submissionID, _ := svc.Open(context.Background(), draft)
	err := svc.Upload(context.Background(), submissionID, draft)

	subErr, ok := AsSubmissionError(err)
	if !ok || subErr.Class != model.SubmitErrorServer {
		t.Fatalf("期望 server 分类, 实际: %v", err)
	}
}

func TestSubmitUpload_CSRFRejectedClassifiedAsAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	svc, _ := newSubmitEnv(t, srv.URL)
	draft := submittableDraft()

	submissionID, _ := svc.Open(context.Background(), draft)
	err := svc.Upload(context.Background(), submissionID, draft)

	subErr, ok := AsSubmissionError(err)
	if !ok {
		t.Fatalf("期望 SubmissionError, 实际: %v", err)
	}
	// 凭证被拒不是字段校验问题，不应误导用户改表单
	if subErr.Class != model.SubmitErrorAuth {
		t.Errorf("分类 = %s, 期望 auth", subErr.Class)
	}
	if len(subErr.FieldErrors) != 0 {
		t.Errorf("字段错误 = %v, 应为空", subErr.FieldErrors)
	}

	attempt, _ := svc.Get(context.Background(), submissionID)
	if attempt.ErrorClass != model.SubmitErrorAuth {
		t.Errorf("落库分类 = %s", attempt.ErrorClass)
	}
}

func TestSubmitUpload_NetworkError(t *testing.T) {
	// 不监听的端口
	svc, _ := newSubmitEnv(t, "http://127.0.0.1:1")
	draft := submittableDraft()

	submissionID, _ := svc.Open(context.Background(), draft)
	err := svc.Upload(context.Background(), submissionID, draft)

	subErr, ok := AsSubmissionError(err)
	if !ok || subErr.Class != model.SubmitErrorNetwork {
		t.Fatalf("期望 network 分类, 实际: %v", err)
	}

	attempt, _ := svc.Get(context.Background(), submissionID)
	if attempt.Status != model.SubmissionStatusFailed {
		t.Errorf("状态 = %s", attempt.Status)
	}
}

func TestSubmitUpload_IncompleteBannerRejected(t *testing.T) {
	var hit bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
	}))
	defer srv.Close()

	svc, _ := newSubmitEnv(t, srv.URL)

	draft := submittableDraft()
	// 缺少支付引用的横幅
	draft.Banner = &model.BannerRequest{
		Size:  model.BannerSizeHorizontal,
		Plan:  model.BannerPlanTier1,
		Image: &model.ImageAsset{Filename: "b.png", Data: []byte("x")},
	}

	submissionID, _ := svc.Open(context.Background(), draft)
	err := svc.Upload(context.Background(), submissionID, draft)
	if err == nil {
		t.Fatal("未支付的横幅不应被提交")
	}
	if hit {
		t.Error("不应发出任何请求")
	}
}
