package public

import (
	"strings"

	"github.com/quickprintz/storefront/internal/constants"
	"github.com/quickprintz/storefront/internal/http/response"
	"github.com/quickprintz/storefront/internal/service"

	"github.com/gin-gonic/gin"
)

// CartQuantityRequest 修改数量请求
type CartQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// PremadeItemRequest 成品设计加入购物车请求
type PremadeItemRequest struct {
	Path string `json:"path" binding:"required"`
}

// CreateCartSession 创建购物车会话
func (h *Handler) CreateCartSession(c *gin.Context) {
	session, err := h.CartService.IssueSession()
	if err != nil {
		respondError(c, response.CodeInternal, "error.cart_session_failed", err)
		return
	}
	response.Success(c, gin.H{
		"cart_id":    session.CartID,
		"token":      session.Token,
		"expires_at": session.ExpiresAt,
		"header":     constants.HeaderCartToken,
	})
}

// GetCart 获取购物车
func (h *Handler) GetCart(c *gin.Context) {
	cartID, ok := getCartID(c)
	if !ok {
		return
	}
	response.Success(c, h.CartService.View(c.Request.Context(), cartID))
}

// AddCartItem 加入商品，同 ID 合并数量
func (h *Handler) AddCartItem(c *gin.Context) {
	cartID, ok := getCartID(c)
	if !ok {
		return
	}
	var req service.CartItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	snapshot, err := h.CartService.AddItem(c.Request.Context(), cartID, req)
	if err != nil {
		respondCartItemError(c, err)
		return
	}
	response.Success(c, snapshot)
}

// AddConfiguredCartItem 按配置报价后加入购物车
func (h *Handler) AddConfiguredCartItem(c *gin.Context) {
	cartID, ok := getCartID(c)
	if !ok {
		return
	}
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
	result, err := h.CartService.AddConfigured(c.Request.Context(), cartID, cfg)
	if err != nil {
		respondCartItemError(c, err)
		return
	}
	response.Success(c, result)
}

// AddPremadeCartItem 把画廊中的成品设计加入购物车
func (h *Handler) AddPremadeCartItem(c *gin.Context) {
	cartID, ok := getCartID(c)
	if !ok {
		return
	}
	var req PremadeItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if h.GalleryService == nil {
		respondError(c, response.CodeServiceUnavailable, "error.designs_unavailable", nil)
		return
	}
	asset, err := h.GalleryService.Find(c.Request.Context(), req.Path)
	if err != nil {
		respondDesignError(c, err)
		return
	}
	response.Success(c, h.CartService.AddPremade(c.Request.Context(), cartID, asset))
}

// UpdateCartItem 修改数量，小于 1 时按 1 处理
func (h *Handler) UpdateCartItem(c *gin.Context) {
	cartID, ok := getCartID(c)
	if !ok {
		return
	}
	itemID, ok := cartItemParam(c)
	if !ok {
		return
	}
	var req CartQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	response.Success(c, h.CartService.UpdateQuantity(c.Request.Context(), cartID, itemID, *req.Quantity))
}

// RemoveCartItem 移除商品
func (h *Handler) RemoveCartItem(c *gin.Context) {
	cartID, ok := getCartID(c)
	if !ok {
		return
	}
	itemID, ok := cartItemParam(c)
	if !ok {
		return
	}
	response.Success(c, h.CartService.RemoveItem(c.Request.Context(), cartID, itemID))
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	cartID, ok := getCartID(c)
	if !ok {
		return
	}
	response.Success(c, h.CartService.Clear(c.Request.Context(), cartID))
}

// cartItemParam 读取通配路由中的商品 ID（ID 可能包含 "/"）
func cartItemParam(c *gin.Context) (string, bool) {
	itemID := strings.TrimPrefix(c.Param("id"), "/")
	if strings.TrimSpace(itemID) == "" {
		respondError(c, response.CodeBadRequest, "error.cart_item_invalid", nil)
		return "", false
	}
	return itemID, true
}
