package pricing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/quickprintz/storefront/internal/cart"
)

// LineItem 把已报价的配置转换为购物车行项目
// id 由全部选项拼接，同一配置重复加入时合并；价格为整单总价，数量为 1
func LineItem(cfg Configuration, res Result) (cart.LineItem, error) {
	cfg, err := resolve(cfg)
	if err != nil {
		return cart.LineItem{}, err
	}
	switch c := cfg.(type) {
	case TieredConfig:
		return tieredLineItem(c, res), nil
	case BagConfig:
		return bagLineItem(c, res), nil
	case CustomMylarConfig:
		return customMylarLineItem(c, res), nil
	default:
		return cart.LineItem{}, fmt.Errorf("%w: %T", ErrUnknownKind, cfg)
	}
}

func tieredLineItem(c TieredConfig, res Result) cart.LineItem {
	parts := []string{"quote", string(c.Family), strconv.Itoa(c.Quantity)}
	meta := cart.Metadata{{Label: "Quantity", Value: c.Quantity}}
	if c.Family != FamilyDesign {
		parts = append(parts, c.Size, c.Finish)
		meta = append(meta,
			cart.MetaEntry{Label: "Size", Value: c.Size},
			cart.MetaEntry{Label: "Finish", Value: c.Finish},
		)
	}
	parts = append(parts, flag(c.Rush, "rush", "standard"))
	meta = append(meta, cart.MetaEntry{Label: "Rush", Value: yesNo(c.Rush)})
	return cart.LineItem{
		ID:        strings.Join(parts, "|"),
		Name:      familyLabels[c.Family] + " Order",
		UnitPrice: res.TotalPrice.Rounded(),
		Quantity:  1,
		Metadata:  meta,
	}
}

func bagLineItem(c BagConfig, res Result) cart.LineItem {
	name := "Custom"
	if size, ok := bagSizeByID(c.BagSize); ok {
		name = size.Name
	}
	return cart.LineItem{
		ID: strings.Join([]string{
			"pod-config",
			c.BagSize,
			strconv.Itoa(c.Quantity),
			c.Color,
			c.Finish,
			c.Coverage,
			flag(c.SpotUV, "spot", "no-spot"),
			flag(c.UVGloss, "uv", "no-uv"),
			flag(c.CustomLogo, "logo", "no-logo"),
		}, "|"),
		Name:      name + " POD Order",
		UnitPrice: res.TotalPrice.Rounded(),
		Quantity:  1,
		Metadata: cart.Metadata{
			{Label: "Quantity", Value: c.Quantity},
			{Label: "Color", Value: c.Color},
			{Label: "Finish", Value: c.Finish},
			{Label: "Coverage", Value: c.Coverage},
			{Label: "SpotUV", Value: yesNo(c.SpotUV)},
			{Label: "UVGloss", Value: yesNo(c.UVGloss)},
			{Label: "Custom Logo", Value: yesNo(c.CustomLogo)},
		},
	}
}

func customMylarLineItem(c CustomMylarConfig, res Result) cart.LineItem {
	var addons []string
	if c.Zipper {
		addons = append(addons, "Zipper")
	}
	if c.ChildResistant {
		addons = append(addons, "Child Resistant")
	}
	if c.HangHole {
		addons = append(addons, "Hang Hole")
	}
	if c.Window {
		addons = append(addons, "Window")
	}
	addonLabel := strings.Join(addons, ", ")
	if addonLabel == "" {
		addonLabel = "None"
	}
	return cart.LineItem{
		ID: strings.Join([]string{
			"custom-mylar",
			c.Size,
			c.Color,
			c.Finish,
			c.PrintStyle,
			c.QuantityOption,
			flag(c.Zipper, "zipper", "no-zipper"),
			flag(c.ChildResistant, "child", "standard"),
			flag(c.HangHole, "hang", "no-hang"),
			flag(c.Window, "window", "no-window"),
		}, "|"),
		Name:      c.Size + " Custom Mylar Bags",
		UnitPrice: res.TotalPrice.Rounded(),
		Quantity:  1,
		Image:     CustomMylarImage,
		Metadata: cart.Metadata{
			{Label: "Color", Value: c.Color},
			{Label: "Finish", Value: c.Finish},
			{Label: "Print Style", Value: c.PrintStyle},
			{Label: "Quantity", Value: c.Quantity()},
			{Label: "Addons", Value: addonLabel},
		},
	}
}

func flag(on bool, yes, no string) string {
	if on {
		return yes
	}
	return no
}

func yesNo(on bool) string {
	return flag(on, "Yes", "No")
}
