package service

import (
	"auctionx_v1_202608/internal/api/dto"
	"auctionx_v1_202608/internal/model"
)

// CatalogService 类目与横幅套餐的只读查询
type CatalogService struct{}

// NewCatalogService 创建类目服务
func NewCatalogService() *CatalogService {
	return &CatalogService{}
}

// Catalog 返回完整类目表（含子类目与建议描述要点）
func (s *CatalogService) Catalog() *dto.CatalogResponse {
	categories := make([]dto.CategoryVO, 0, len(model.Categories))
	for _, name := range model.Categories {
		categories = append(categories, dto.CategoryVO{
			Name:            name,
			Subcategories:   model.Subcategories[name],
			SuggestedPoints: model.SuggestedPoints[name],
		})
	}
	return &dto.CatalogResponse{Categories: categories}
}

// BannerPlans 返回横幅套餐与尺寸要求
func (s *CatalogService) BannerPlans() *dto.BannerPlansResponse {
	plans := []dto.BannerPlanVO{}
	for _, plan := range []string{model.BannerPlanTier1, model.BannerPlanTier2, model.BannerPlanTier3} {
		p := model.BannerPlanPrices[plan]
		plans = append(plans, dto.BannerPlanVO{
			Plan:          plan,
			Rupees:        p.Rupees,
			MinutesPerDay: p.MinutesDay,
		})
	}

	sizes := []dto.BannerSizeVO{}
	for _, size := range []string{model.BannerSizeHorizontal, model.BannerSizeVerticalLarge, model.BannerSizeVerticalSmall} {
		min := model.BannerMinDims[size]
		sizes = append(sizes, dto.BannerSizeVO{
			Size:      size,
			MinWidth:  min[0],
			MinHeight: min[1],
		})
	}

	return &dto.BannerPlansResponse{Plans: plans, Sizes: sizes}
}
