package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"auctionx_v1_202608/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ==================== 请求构造辅助 ====================

func setupRouter() *gin.Engine {
	return gin.New()
}

func performRequest(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ==================== 类目接口测试 ====================

func TestGetCatalog_ResponseFormat(t *testing.T) {
	router := setupRouter()
	ctrl := NewCatalogController(service.NewCatalogService())
	router.GET("/api/catalog", ctrl.GetCatalog)

	w := performRequest(router, "GET", "/api/catalog", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &resp)

	assert.Equal(t, float64(0), resp["code"])
	assert.Equal(t, "success", resp["message"])

	data := resp["data"].(map[string]interface{})
	categories := data["categories"].([]interface{})
	assert.Len(t, categories, 14)

	// 每个主类目都带子类目与建议要点
	first := categories[0].(map[string]interface{})
	assert.NotEmpty(t, first["name"])
	assert.NotEmpty(t, first["subcategories"])
	assert.NotEmpty(t, first["suggested_points"])

	// 兜底类目在末尾
	last := categories[len(categories)-1].(map[string]interface{})
	assert.Equal(t, "Other", last["name"])
}

func TestGetBannerPlans_ResponseFormat(t *testing.T) {
	router := setupRouter()
	ctrl := NewCatalogController(service.NewCatalogService())
	router.GET("/api/banner-plans", ctrl.GetBannerPlans)

	w := performRequest(router, "GET", "/api/banner-plans", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, float64(0), resp["code"])

	data := resp["data"].(map[string]interface{})
	plans := data["plans"].([]interface{})
	sizes := data["sizes"].([]interface{})
	assert.Len(t, plans, 3)
	assert.Len(t, sizes, 3)

	// tier1 的定价
	tier1 := plans[0].(map[string]interface{})
	assert.Equal(t, "tier1", tier1["plan"])
	assert.Equal(t, float64(3000), tier1["rupees"])
	assert.Equal(t, float64(90), tier1["minutes_per_day"])
}
