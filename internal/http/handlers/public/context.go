package public

import (
	"strings"

	"github.com/quickprintz/storefront/internal/http/response"

	"github.com/gin-gonic/gin"
)

// CartIDContextKey 购物车会话中间件写入的上下文 key
const CartIDContextKey = "cart_id"

func getCartID(c *gin.Context) (string, bool) {
	value, exists := c.Get(CartIDContextKey)
	if !exists {
		respondError(c, response.CodeUnauthorized, "error.cart_token_missing", nil)
		return "", false
	}
	cartID, ok := value.(string)
	if !ok || strings.TrimSpace(cartID) == "" {
		respondError(c, response.CodeUnauthorized, "error.cart_token_invalid", nil)
		return "", false
	}
	return cartID, true
}
