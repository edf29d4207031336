package service

import "errors"

// 购物车
var (
	ErrCartSessionMissing = errors.New("缺少购物车凭证")
	ErrCartSessionInvalid = errors.New("无效的购物车凭证")
	ErrCartItemInvalid    = errors.New("购物车商品参数无效")
	ErrCartItemNotFound   = errors.New("购物车商品不存在")
)

// 报价
var (
	ErrPricingConfigInvalid = errors.New("报价配置无效")
)

// 设计素材
var (
	ErrDesignsUnavailable = errors.New("设计素材暂不可用")
	ErrDesignNotFound     = errors.New("设计素材不存在")
)

// 联系表单
var (
	ErrContactInvalid    = errors.New("联系表单参数无效")
	ErrContactNotFound   = errors.New("联系表单记录不存在")
	ErrContactForwardOff = errors.New("未配置联系表单转发地址")
	ErrContactForward    = errors.New("联系表单转发失败")
)

// 验证码
var (
	ErrCaptchaRequired      = errors.New("请输入验证码")
	ErrCaptchaInvalid       = errors.New("验证码错误")
	ErrCaptchaConfigInvalid = errors.New("验证码配置无效")
	ErrCaptchaVerifyFailed  = errors.New("验证码校验失败")
)
