package pricing

import (
	"fmt"

	"github.com/quickprintz/storefront/internal/models"
	"github.com/shopspring/decimal"
)

// Result 报价结果
// 金额在内部保持精度，序列化时保留 2 位
type Result struct {
	Kind       Kind         `json:"kind"`
	Quantity   int          `json:"quantity"`
	UnitPrice  models.Money `json:"unit_price"`
	TotalPrice models.Money `json:"total_price"`
	Savings    models.Money `json:"savings"`
	Tier       *Tier        `json:"tier"`
}

// Quote 按配置类型计算价格
func Quote(cfg Configuration) (Result, error) {
	cfg, err := resolve(cfg)
	if err != nil {
		return Result{}, err
	}
	if err := cfg.validate(); err != nil {
		return Result{}, err
	}
	switch c := cfg.(type) {
	case TieredConfig:
		return quoteTiered(c), nil
	case BagConfig:
		return quoteBag(c), nil
	case CustomMylarConfig:
		return quoteCustomMylar(c), nil
	default:
		return Result{}, fmt.Errorf("%w: %T", ErrUnknownKind, cfg)
	}
}

// 单价 = 阶梯价 × 尺寸系数 × 工艺系数 × 加急系数；无匹配阶梯时为 0
func quoteTiered(c TieredConfig) Result {
	res := Result{Kind: KindTiered, Quantity: c.Quantity}
	tier := FindTier(tierTables[c.Family], c.Quantity)
	if tier == nil {
		return res
	}
	unit := tier.UnitPrice.Decimal
	if c.Family != FamilyDesign {
		unit = unit.Mul(sizeMultipliers[c.Size]).Mul(finishMultipliers[c.Finish])
	}
	if c.Rush {
		unit = unit.Mul(rushMultiplier)
	}
	qty := decimal.NewFromInt(int64(c.Quantity))

	res.Tier = tier
	res.UnitPrice = models.NewMoney(unit)
	res.TotalPrice = models.NewMoney(unit.Mul(qty))
	if c.Quantity >= savingsMinQty {
		savings := savingsReference.Sub(unit).Mul(qty)
		if savings.IsPositive() {
			res.Savings = models.NewMoney(savings)
		}
	}
	return res
}

// 每袋价格 = 基础价 + 工艺 + 双面 + 附加项，再按数量折扣一次
func quoteBag(c BagConfig) Result {
	size, _ := bagSizeByID(c.BagSize)
	perBag := size.BasePrice.Decimal.Add(bagFinishes[c.Finish])
	if c.Coverage == CoverageBoth {
		perBag = perBag.Add(bothSidesSurcharge)
	}
	if c.SpotUV {
		perBag = perBag.Add(spotUVSurcharge)
	}
	if c.UVGloss {
		perBag = perBag.Add(uvGlossSurcharge)
	}
	if c.CustomLogo {
		perBag = perBag.Add(customLogoSurcharge)
	}
	for _, brk := range quantityBreaks {
		if c.Quantity >= brk.minQty {
			perBag = perBag.Mul(brk.factor)
			break
		}
	}
	return Result{
		Kind:       KindBag,
		Quantity:   c.Quantity,
		UnitPrice:  models.NewMoney(perBag),
		TotalPrice: models.NewMoney(perBag.Mul(decimal.NewFromInt(int64(c.Quantity)))),
	}
}

func quoteCustomMylar(c CustomMylarConfig) Result {
	opt, _ := quantityOptionByLabel(c.QuantityOption)
	unit := opt.UnitPrice.Decimal
	if c.Zipper {
		unit = unit.Add(zipperAddon)
	}
	if c.ChildResistant {
		unit = unit.Add(childResistantAddon)
	}
	if c.HangHole {
		unit = unit.Add(hangHoleAddon)
	}
	if c.Window {
		unit = unit.Add(windowAddon)
	}
	return Result{
		Kind:       KindCustomMylar,
		Quantity:   opt.Quantity,
		UnitPrice:  models.NewMoney(unit),
		TotalPrice: models.NewMoney(unit.Mul(decimal.NewFromInt(int64(opt.Quantity)))),
		Tier:       &Tier{Min: opt.Quantity, UnitPrice: opt.UnitPrice},
	}
}
