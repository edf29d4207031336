package app

import (
	"context"
	"errors"

	"github.com/quickprintz/storefront/internal/service"
)

// CartJanitor 定期回收空闲购物车
type CartJanitor struct {
	carts *service.CartService
}

// NewCartJanitor 创建购物车回收服务
func NewCartJanitor(carts *service.CartService) *CartJanitor {
	return &CartJanitor{carts: carts}
}

// Name 服务名称
func (j *CartJanitor) Name() string {
	return "cart-janitor"
}

// Start 阻塞直到 ctx 结束
func (j *CartJanitor) Start(ctx context.Context) error {
	if j == nil || j.carts == nil {
		return errors.New("cart service not initialized")
	}
	j.carts.Run(ctx)
	return nil
}

// Stop 购物车落盘由容器关闭时统一处理
func (j *CartJanitor) Stop(ctx context.Context) error {
	return nil
}
