package i18n

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	LocaleEnUS    = "en-US"
	LocaleZhCN    = "zh-CN"
	DefaultLocale = LocaleEnUS
)

var messages = map[string]map[string]string{
	LocaleEnUS: {
		"error.bad_request":              "Invalid request",
		"error.internal":                 "Internal server error",
		"error.rate_limited":             "Too many requests, please retry in %d seconds",
		"error.rate_limit_unavailable":   "Rate limiter unavailable",
		"error.cart_token_missing":       "Cart session token is missing",
		"error.cart_token_invalid":       "Cart session token is invalid or expired",
		"error.cart_session_failed":      "Failed to create cart session",
		"error.cart_item_invalid":        "Invalid cart item",
		"error.cart_fetch_failed":        "Failed to load cart",
		"error.cart_update_failed":       "Failed to update cart",
		"error.pricing_config_invalid":   "Invalid product configuration",
		"error.pricing_option_unknown":   "Unknown product option",
		"error.pricing_quantity_invalid": "Quantity is not available for this product",
		"error.design_not_found":         "Design not found",
		"error.not_found":                "Resource not found",
		"error.designs_fetch_failed":     "Failed to load designs",
		"error.designs_unavailable":      "Design storage is not configured",
		"error.contact_invalid":          "Please fill in the required contact fields",
		"error.contact_submit_failed":    "Failed to submit the contact form",
		"error.captcha_required":         "Captcha is required",
		"error.captcha_invalid":          "Captcha is incorrect",
		"error.captcha_unavailable":      "Captcha is not enabled",
		"error.captcha_generate_failed":  "Failed to generate captcha",
	},
	LocaleZhCN: {
		"error.bad_request":              "请求参数错误",
		"error.internal":                 "服务器内部错误",
		"error.rate_limited":             "请求过于频繁，请 %d 秒后重试",
		"error.rate_limit_unavailable":   "限流服务不可用",
		"error.cart_token_missing":       "缺少购物车会话凭证",
		"error.cart_token_invalid":       "购物车会话凭证无效或已过期",
		"error.cart_session_failed":      "创建购物车会话失败",
		"error.cart_item_invalid":        "购物车项无效",
		"error.cart_fetch_failed":        "获取购物车失败",
		"error.cart_update_failed":       "更新购物车失败",
		"error.pricing_config_invalid":   "商品配置无效",
		"error.pricing_option_unknown":   "未知的商品选项",
		"error.pricing_quantity_invalid": "该商品不支持此数量",
		"error.design_not_found":         "设计素材不存在",
		"error.not_found":                "资源不存在",
		"error.designs_fetch_failed":     "获取设计素材失败",
		"error.designs_unavailable":      "设计素材存储未配置",
		"error.contact_invalid":          "请填写必填的联系信息",
		"error.contact_submit_failed":    "提交联系表单失败",
		"error.captcha_required":         "请输入验证码",
		"error.captcha_invalid":          "验证码错误",
		"error.captcha_unavailable":      "验证码未启用",
		"error.captcha_generate_failed":  "生成验证码失败",
	},
}

// T 返回指定语言的文案，缺失时回退到默认语言，再回退到 key 本身
func T(locale, key string) string {
	if msg, ok := lookup(locale, key); ok {
		return msg
	}
	if msg, ok := lookup(DefaultLocale, key); ok {
		return msg
	}
	return key
}

// Sprintf 返回格式化后的文案
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}

// ResolveLocale 从请求头解析语言
func ResolveLocale(c *gin.Context) string {
	if c == nil || c.Request == nil {
		return DefaultLocale
	}
	if locale := normalize(c.GetHeader("X-Locale")); locale != "" {
		return locale
	}
	for _, part := range strings.Split(c.GetHeader("Accept-Language"), ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if locale := normalize(tag); locale != "" {
			return locale
		}
	}
	return DefaultLocale
}

func lookup(locale, key string) (string, bool) {
	table, ok := messages[locale]
	if !ok {
		return "", false
	}
	msg, ok := table[key]
	return msg, ok
}

func normalize(tag string) string {
	lower := strings.ToLower(strings.TrimSpace(tag))
	switch {
	case lower == "":
		return ""
	case strings.HasPrefix(lower, "zh"):
		return LocaleZhCN
	case strings.HasPrefix(lower, "en"):
		return LocaleEnUS
	default:
		return ""
	}
}
