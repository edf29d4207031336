package service

import (
	"fmt"

	"github.com/quickprintz/storefront/internal/pricing"
)

// PricingCatalog 公开的定价表
type PricingCatalog struct {
	Families        []pricing.FamilyInfo     `json:"families"`
	BagSizes        []pricing.BagSize        `json:"bag_sizes"`
	QuantityOptions []pricing.QuantityOption `json:"quantity_options"`
}

// Catalog 返回全部产品族阶梯、袋型底价与固定数量档位
func Catalog() PricingCatalog {
	return PricingCatalog{
		Families:        pricing.Families(),
		BagSizes:        pricing.BagSizes(),
		QuantityOptions: pricing.QuantityOptions(),
	}
}

// Quote 计算报价，配置非法时返回 ErrPricingConfigInvalid 包装的具体原因
func Quote(cfg pricing.Configuration) (pricing.Result, error) {
	res, err := pricing.Quote(cfg)
	if err != nil {
		return pricing.Result{}, fmt.Errorf("%w: %w", ErrPricingConfigInvalid, err)
	}
	return res, nil
}

// DecodeConfiguration 解析请求体中的定价配置
func DecodeConfiguration(body []byte) (pricing.Configuration, error) {
	cfg, err := pricing.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPricingConfigInvalid, err)
	}
	return cfg, nil
}
