package pricing

import (
	"strings"

	"github.com/quickprintz/storefront/internal/models"
	"github.com/shopspring/decimal"
)

var (
	sizeMultipliers = map[string]decimal.Decimal{
		"small":  decimal.RequireFromString("0.8"),
		"medium": decimal.NewFromInt(1),
		"large":  decimal.RequireFromString("1.3"),
		"xl":     decimal.RequireFromString("1.6"),
	}
	finishMultipliers = map[string]decimal.Decimal{
		"matte":       decimal.NewFromInt(1),
		"gloss":       decimal.RequireFromString("1.1"),
		"metallic":    decimal.RequireFromString("1.4"),
		"holographic": decimal.RequireFromString("1.8"),
	}
	rushMultiplier = decimal.RequireFromString("1.5")

	// 2.99 为最小阶梯单价，用于计算批量节省
	savingsReference = decimal.RequireFromString("2.99")
	savingsMinQty    = 500
)

// BagSize 配置器袋型
type BagSize struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	BasePrice models.Money `json:"base_price"`
}

const (
	CoverageFront = "front"
	CoverageBoth  = "both"
)

var bagSizes = []BagSize{
	{ID: "1_8", Name: "1/8 oz", BasePrice: models.RequireMoney("0.45")},
	{ID: "1_4", Name: "1/4 oz", BasePrice: models.RequireMoney("0.55")},
	{ID: "1_2", Name: "1/2 oz", BasePrice: models.RequireMoney("0.65")},
	{ID: "1oz", Name: "1 oz", BasePrice: models.RequireMoney("0.75")},
	{ID: "3_5g", Name: "3.5g", BasePrice: models.RequireMoney("0.40")},
}

var bagColors = []string{"black", "white", "clear", "green", "purple", "gold"}

var bagFinishes = map[string]decimal.Decimal{
	"gloss": decimal.Zero,
	"matte": decimal.RequireFromString("0.15"),
	"holo":  decimal.RequireFromString("0.25"),
}

var (
	bothSidesSurcharge  = decimal.RequireFromString("0.20")
	spotUVSurcharge     = decimal.RequireFromString("0.20")
	uvGlossSurcharge    = decimal.RequireFromString("0.30")
	customLogoSurcharge = decimal.RequireFromString("1.50")
)

// 数量折扣，从高到低匹配第一个
var quantityBreaks = []struct {
	minQty int
	factor decimal.Decimal
}{
	{minQty: 1000, factor: decimal.RequireFromString("0.8")},
	{minQty: 500, factor: decimal.RequireFromString("0.85")},
	{minQty: 100, factor: decimal.RequireFromString("0.9")},
}

func bagSizeByID(id string) (BagSize, bool) {
	for _, size := range bagSizes {
		if size.ID == id {
			return size, true
		}
	}
	return BagSize{}, false
}

// BagSizes 返回配置器袋型列表
func BagSizes() []BagSize {
	return append([]BagSize(nil), bagSizes...)
}

// QuantityOption 商品详情页数量档位
type QuantityOption struct {
	Label     string       `json:"label"`
	Quantity  int          `json:"quantity"`
	UnitPrice models.Money `json:"unit_price"`
}

var quantityOptions = []QuantityOption{
	{Label: "100", Quantity: 100, UnitPrice: models.RequireMoney("2.99")},
	{Label: "250", Quantity: 250, UnitPrice: models.RequireMoney("2.49")},
	{Label: "500", Quantity: 500, UnitPrice: models.RequireMoney("1.99")},
	{Label: "1,000", Quantity: 1000, UnitPrice: models.RequireMoney("1.49")},
	{Label: "2,500", Quantity: 2500, UnitPrice: models.RequireMoney("1.19")},
	{Label: "5,000+", Quantity: 5000, UnitPrice: models.RequireMoney("0.99")},
}

// QuantityOptions 返回数量档位列表
func QuantityOptions() []QuantityOption {
	return append([]QuantityOption(nil), quantityOptions...)
}

// quantityOptionByLabel 支持展示标签或纯数字（"1000"）
func quantityOptionByLabel(label string) (QuantityOption, bool) {
	trimmed := strings.TrimSpace(label)
	for _, opt := range quantityOptions {
		if opt.Label == trimmed {
			return opt, true
		}
	}
	n := parseDigits(trimmed)
	for _, opt := range quantityOptions {
		if opt.Quantity == n {
			return opt, true
		}
	}
	return QuantityOption{}, false
}

var (
	zipperAddon         = decimal.RequireFromString("0.15")
	childResistantAddon = decimal.RequireFromString("0.25")
	hangHoleAddon       = decimal.RequireFromString("0.05")
	windowAddon         = decimal.RequireFromString("0.20")
)

var (
	mylarSizes       = []string{"3.5g", "7g", "14g", "1oz", "1lb"}
	mylarColors      = []string{"black", "white", "clear-front", "clear-back", "silver", "kraft"}
	mylarFinishes    = []string{"matte", "gloss", "holographic"}
	mylarPrintStyles = []string{"full-color", "matte-lam", "gloss-lam", "spot-gloss", "uv-spot", "holo-overlay"}
)

// CustomMylarImage 定制袋在购物车中的展示图
const CustomMylarImage = "/quickprintz_assets/quickprintz-256.png"
