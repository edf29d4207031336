package public

import (
	"github.com/quickprintz/storefront/internal/http/response"
	"github.com/quickprintz/storefront/internal/pricing"
	"github.com/quickprintz/storefront/internal/service"

	"github.com/gin-gonic/gin"
)

// GetPricingTiers 获取阶梯价格表与配置器选项
func (h *Handler) GetPricingTiers(c *gin.Context) {
	response.Success(c, service.Catalog())
}

// QuotePrice 计算报价，同时返回对应的购物车行预览
func (h *Handler) QuotePrice(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil || len(body) == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	cfg, err := service.DecodeConfiguration(body)
	if err != nil {
		respondPricingError(c, err)
		return
	}
	res, err := service.Quote(cfg)
	if err != nil {
		respondPricingError(c, err)
		return
	}
	data := gin.H{"quote": res}
	if res.TotalPrice.IsPositive() {
		if item, err := pricing.LineItem(cfg, res); err == nil {
			data["item"] = item
		}
	}
	response.Success(c, data)
}
