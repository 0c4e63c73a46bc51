package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"auctionx_v1_202608/internal/service"
)

// CatalogController 类目与套餐查询控制器
type CatalogController struct {
	catalogService *service.CatalogService
}

func NewCatalogController(catalogService *service.CatalogService) *CatalogController {
	return &CatalogController{catalogService: catalogService}
}

// GetCatalog 获取类目表
// @Summary 获取主类目、子类目与建议描述要点
// @Tags Catalog
// @Success 200 {object} dto.CatalogResponse
// @Router /api/catalog [get]
func (ctrl *CatalogController) GetCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    ctrl.catalogService.Catalog(),
	})
}

// GetBannerPlans 获取横幅套餐
// @Summary 获取横幅套餐定价与尺寸要求
// @Tags Catalog
// @Success 200 {object} dto.BannerPlansResponse
// @Router /api/banner-plans [get]
func (ctrl *CatalogController) GetBannerPlans(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    ctrl.catalogService.BannerPlans(),
	})
}
