package service

import (
	"fmt"
	"log"

	"auctionx_v1_202608/internal/model"
	"auctionx_v1_202608/pkg/utils"
)

// AssetService 图片资产校验
// 商品图只做建议性尺寸提示，横幅图按所选尺寸硬性把关
type AssetService struct{}

// NewAssetService 创建资产服务
func NewAssetService() *AssetService {
	return &AssetService{}
}

// MeasureAll 解码草稿中的所有图片并回填自然尺寸
// 无法解码的图片直接返回字段错误，不进入后续校验
func (s *AssetService) MeasureAll(draft *model.ListingDraft) map[string]string {
	errs := make(map[string]string)

	for i := range draft.Images {
		img := &draft.Images[i]
		if img.Width > 0 && img.Height > 0 {
			continue
		}
		info, err := utils.MeasureImage(img.Data)
		if err != nil {
			errs["productImages"] = fmt.Sprintf("图片 %s 无法解析，请上传 JPEG/PNG/GIF", img.Filename)
			continue
		}
		img.Width = info.Width
		img.Height = info.Height
	}

	if draft.Banner != nil && draft.Banner.Image != nil {
		img := draft.Banner.Image
		if img.Width == 0 || img.Height == 0 {
			info, err := utils.MeasureImage(img.Data)
			if err != nil {
				errs["bannerImage"] = "横幅图片无法解析，请上传 JPEG/PNG/GIF"
			} else {
				img.Width = info.Width
				img.Height = info.Height
			}
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidateProductImages 校验商品图
// 返回 (警告列表, 字段错误)；警告不阻塞提交
func (s *AssetService) ValidateProductImages(images []model.ImageAsset) ([]string, map[string]string) {
	errs := make(map[string]string)

	if len(images) == 0 {
		errs["productImages"] = "请至少上传一张商品图片"
	}
	if len(images) > model.MaxProductImages {
		errs["productImages"] = fmt.Sprintf("商品图片最多 %d 张", model.MaxProductImages)
	}

	var warnings []string
	for _, img := range images {
		if img.Width < model.AdvisoryMinProductDim || img.Height < model.AdvisoryMinProductDim {
			warnings = append(warnings, fmt.Sprintf(
				"图片 %s 尺寸 %dx%d 低于建议值 %dx%d，展示效果可能受影响",
				img.Filename, img.Width, img.Height,
				model.AdvisoryMinProductDim, model.AdvisoryMinProductDim))
		}
	}
	if len(warnings) > 0 {
		log.Printf("[Asset] 商品图尺寸警告 %d 条", len(warnings))
	}

	if len(errs) == 0 {
		return warnings, nil
	}
	return warnings, errs
}

// ValidateBannerImage 按所选横幅尺寸校验横幅图，硬性要求
func (s *AssetService) ValidateBannerImage(banner *model.BannerRequest) map[string]string {
	if banner == nil {
		return nil
	}

	errs := make(map[string]string)
	min, ok := model.BannerMinDims[banner.Size]
	if !ok {
		errs["bannerSize"] = "无效的横幅尺寸"
		return errs
	}
	if banner.Image == nil {
		errs["bannerImage"] = "请上传横幅图片"
		return errs
	}

	if banner.Image.Width < min[0] || banner.Image.Height < min[1] {
		errs["bannerImage"] = fmt.Sprintf(
			"横幅图片至少 %dx%d 像素，当前 %dx%d",
			min[0], min[1], banner.Image.Width, banner.Image.Height)
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
