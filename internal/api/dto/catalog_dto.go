package dto

// CategoryVO 一个主类目及其子类目
type CategoryVO struct {
	Name            string   `json:"name"`
	Subcategories   []string `json:"subcategories"`
	SuggestedPoints []string `json:"suggested_points"`
}

// CatalogResponse 完整类目表
type CatalogResponse struct {
	Categories []CategoryVO `json:"categories"`
}

// BannerPlanVO 横幅套餐
type BannerPlanVO struct {
	Plan          string `json:"plan"`
	Rupees        int64  `json:"rupees"`
	MinutesPerDay int    `json:"minutes_per_day"`
}

// BannerSizeVO 横幅尺寸及最小像素要求
type BannerSizeVO struct {
	Size      string `json:"size"`
	MinWidth  int    `json:"min_width"`
	MinHeight int    `json:"min_height"`
}

// BannerPlansResponse 横幅套餐与尺寸表
type BannerPlansResponse struct {
	Plans []BannerPlanVO `json:"plans"`
	Sizes []BannerSizeVO `json:"sizes"`
}
