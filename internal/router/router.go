package router

import (
	"fmt"
	"strings"

	"github.com/quickprintz/storefront/internal/cache"
	"github.com/quickprintz/storefront/internal/config"
	publichandlers "github.com/quickprintz/storefront/internal/http/handlers/public"
	"github.com/quickprintz/storefront/internal/http/response"
	"github.com/quickprintz/storefront/internal/i18n"
	"github.com/quickprintz/storefront/internal/logger"
	"github.com/quickprintz/storefront/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "qp"
	}
	redisClient := cache.Client()
	contactRule := NewRateLimitRule(fmt.Sprintf("%s:rate:contact", redisPrefix), cfg.Security.ContactRateLimit, false)
	refreshRule := NewRateLimitRule(fmt.Sprintf("%s:rate:designs_refresh", redisPrefix), cfg.Security.RefreshRateLimit, true)

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/pricing/tiers", publicHandler.GetPricingTiers)
			public.POST("/pricing/quote", publicHandler.QuotePrice)
			public.GET("/designs", publicHandler.ListDesigns)
			public.POST("/designs/refresh", RateLimitMiddleware(redisClient, refreshRule, KeyByIP), publicHandler.RefreshDesigns)
			public.POST("/contact", RateLimitMiddleware(redisClient, contactRule, KeyByIPAndJSONField("email")), publicHandler.SubmitContact)
			public.GET("/captcha/image", publicHandler.GetImageCaptcha)
		}

		apiV1.POST("/cart/session", publicHandler.CreateCartSession)

		// 购物车接口（需购物车会话）
		carts := apiV1.Group("/cart")
		carts.Use(CartSessionMiddleware(c.CartService))
		{
			carts.GET("", publicHandler.GetCart)
			carts.DELETE("", publicHandler.ClearCart)
			carts.POST("/items", publicHandler.AddCartItem)
			carts.POST("/configured-items", publicHandler.AddConfiguredCartItem)
			carts.POST("/premade-items", publicHandler.AddPremadeCartItem)
			carts.PUT("/items/*id", publicHandler.UpdateCartItem)
			carts.DELETE("/items/*id", publicHandler.RemoveCartItem)
		}
	}

	// 健康检查
	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})
	r.NoRoute(func(ctx *gin.Context) {
		response.NotFound(ctx, i18n.T(i18n.ResolveLocale(ctx), "error.not_found"))
	})

	return r
}
