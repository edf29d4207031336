package public

import "github.com/quickprintz/storefront/internal/provider"

// Handler 前台/公开接口处理器入口
// 说明：购物车、报价、设计画廊与联系表单均为游客接口。
type Handler struct {
	*provider.Container
}

// New 创建前台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
