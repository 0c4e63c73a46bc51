package model

import (
	"fmt"
	"regexp"
	"strings"
)

// ==================== 常量 ====================

const (
	// 商品图片上限（整个草稿）
	MaxProductImages = 4
	// 商品图片建议最小边长，低于只警告不拒绝
	AdvisoryMinProductDim = 500

	// 描述要点上限
	MaxDescriptionPoints = 6
	// 单条描述要点文本长度上限
	MaxDescriptionTextLen = 100
)

// 横幅尺寸
const (
	BannerSizeHorizontal    = "horizontal"
	BannerSizeVerticalLarge = "vertical-large"
	BannerSizeVerticalSmall = "vertical-small"
)

// 横幅套餐
const (
	BannerPlanTier1 = "tier1"
	BannerPlanTier2 = "tier2"
	BannerPlanTier3 = "tier3"
)

// BannerMinDims 每种横幅尺寸的最小像素要求 [宽, 高]
var BannerMinDims = map[string][2]int{
	BannerSizeHorizontal:    {1200, 300},
	BannerSizeVerticalLarge: {600, 900},
	BannerSizeVerticalSmall: {300, 600},
}

// BannerPlanPrices 套餐定价（卢比）与每日展示时长（分钟）
var BannerPlanPrices = map[string]struct {
	Rupees     int64
	MinutesDay int
}{
	BannerPlanTier1: {Rupees: 3000, MinutesDay: 90},
	BannerPlanTier2: {Rupees: 8000, MinutesDay: 360},
	BannerPlanTier3: {Rupees: 12999, MinutesDay: 840},
}

// PlanPrice 返回套餐价格（卢比），未知套餐返回 0
func PlanPrice(plan string) int64 {
	if p, ok := BannerPlanPrices[plan]; ok {
		return p.Rupees
	}
	return 0
}

// ==================== 草稿（会话内，不入库） ====================

// ImageAsset 上传的图片及测得的自然尺寸
type ImageAsset struct {
	Filename string
	Data     []byte
	Width    int
	Height   int
}

// DescriptionPoint 描述要点
type DescriptionPoint struct {
	Name string `json:"name"`
	Text string `json:"description"` // 字段名沿用持久化服务的约定
}

// Schedule 拍卖排期
type Schedule struct {
	StartDate  string // "2006-01-02"
	StartTime  string // "15:04"
	StartPrice float64
}

// BannerRequest 付费横幅请求
// 可提交的前提：尺寸、套餐、图片、支付引用四者齐备
type BannerRequest struct {
	Size  string
	Plan  string
	Image *ImageAsset

	// 支付完成后由编排器填入
	PaymentOrderID   string
	GatewayPaymentID string
}

// Complete 横幅是否已满足提交条件
func (b *BannerRequest) Complete() bool {
	return b != nil && b.Size != "" && b.Plan != "" && b.Image != nil && b.PaymentOrderID != ""
}

// ListingDraft 卖家的拍卖品草稿
// 由提交会话独占；提交成功或显式重置后丢弃
type ListingDraft struct {
	DraftID string // 会话内关联键，防止同一草稿并发提交

	Title         string
	MainCategory  string
	Category      string // 子类目（提交时的 category 字段）
	Points        []DescriptionPoint
	Images        []ImageAsset
	MobileNumber  string
	Email         string
	Schedule      Schedule
	TermsAccepted bool

	Banner *BannerRequest // 可选
}

// ==================== 基础字段校验 ====================

var mobilePattern = regexp.MustCompile(`^\d{10}$`)

// ValidateFields 校验草稿的标量字段
// 返回 字段名 -> 可操作的错误信息；图片与排期由各自的校验器负责
func (d *ListingDraft) ValidateFields() map[string]string {
	errs := make(map[string]string)

	if strings.TrimSpace(d.Title) == "" {
		errs["name"] = "请填写商品名称"
	}
	if !d.TermsAccepted {
		errs["acceptTerms"] = "请先接受条款"
	}
	if !mobilePattern.MatchString(d.MobileNumber) {
		errs["mobileNumber"] = "请输入 10 位手机号"
	}
	if strings.TrimSpace(d.Email) == "" {
		errs["email"] = "请填写邮箱"
	}
	if d.Schedule.StartPrice <= 0 {
		errs["biddingStartPrice"] = "起拍价必须大于 0"
	}

	if !ValidCategory(d.MainCategory, d.Category) {
		errs["category"] = "无效的类目，请从类目表中选择"
	}

	if len(d.Points) > MaxDescriptionPoints {
		errs["description"] = fmt.Sprintf("描述要点最多 %d 条", MaxDescriptionPoints)
	} else {
		for _, p := range d.Points {
			if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Text) == "" {
				errs["description"] = "描述要点的名称与内容不能为空"
				break
			}
			if len(p.Text) > MaxDescriptionTextLen {
				errs["description"] = fmt.Sprintf("描述要点内容不能超过 %d 字符", MaxDescriptionTextLen)
				break
			}
		}
	}

	// 选择了横幅时，尺寸 / 套餐 / 图片必须先配齐（支付前的门槛）
	if d.Banner != nil {
		if d.Banner.Size == "" {
			errs["bannerSize"] = "请选择横幅尺寸"
		} else if _, ok := BannerMinDims[d.Banner.Size]; !ok {
			errs["bannerSize"] = "无效的横幅尺寸"
		}
		if d.Banner.Plan == "" {
			errs["bannerPlan"] = "请选择横幅套餐"
		} else if PlanPrice(d.Banner.Plan) == 0 {
			errs["bannerPlan"] = "无效的横幅套餐"
		}
		if d.Banner.Image == nil {
			errs["bannerImage"] = "请上传横幅图片"
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
