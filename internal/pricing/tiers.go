package pricing

import "github.com/quickprintz/storefront/internal/models"

// Family 阶梯定价的产品族
type Family string

const (
	FamilyMylarBags Family = "mylar-bags"
	FamilyStickers  Family = "stickers"
	FamilyBoxes     Family = "boxes"
	FamilyDesign    Family = "design"
)

// Tier 数量阶梯，Max 为 0 表示无上限
type Tier struct {
	Min       int          `json:"min_qty"`
	Max       int          `json:"max_qty,omitempty"`
	UnitPrice models.Money `json:"unit_price"`
}

// Contains 判断数量是否落在阶梯内（两端包含）
func (t Tier) Contains(qty int) bool {
	if qty < t.Min {
		return false
	}
	return t.Max == 0 || qty <= t.Max
}

// FamilyInfo 产品族展示信息
type FamilyInfo struct {
	Family Family `json:"family"`
	Label  string `json:"label"`
	MinQty int    `json:"min_qty"`
	Tiers  []Tier `json:"tiers"`
}

var familyOrder = []Family{FamilyMylarBags, FamilyStickers, FamilyBoxes, FamilyDesign}

var familyLabels = map[Family]string{
	FamilyMylarBags: "Mylar Bags",
	FamilyStickers:  "Stickers",
	FamilyBoxes:     "Boxes",
	FamilyDesign:    "Design Service",
}

var tierTables = map[Family][]Tier{
	FamilyMylarBags: {
		tier(100, 249, "2.99"),
		tier(250, 499, "2.49"),
		tier(500, 999, "1.99"),
		tier(1000, 2499, "1.49"),
		tier(2500, 4999, "1.19"),
		tier(5000, 9999, "0.99"),
		tier(10000, 0, "0.79"),
	},
	FamilyStickers: {
		tier(50, 99, "0.89"),
		tier(100, 249, "0.69"),
		tier(250, 499, "0.49"),
		tier(500, 999, "0.35"),
		tier(1000, 2499, "0.25"),
		tier(2500, 0, "0.19"),
	},
	FamilyBoxes: {
		tier(25, 99, "8.99"),
		tier(100, 249, "6.99"),
		tier(250, 499, "4.99"),
		tier(500, 999, "3.99"),
		tier(1000, 0, "2.99"),
	},
	FamilyDesign: {
		tier(1, 1, "299"),
		tier(2, 3, "249"),
		tier(4, 0, "199"),
	},
}

func tier(min, max int, price string) Tier {
	return Tier{Min: min, Max: max, UnitPrice: models.RequireMoney(price)}
}

// Families 按展示顺序返回全部产品族及其阶梯
func Families() []FamilyInfo {
	out := make([]FamilyInfo, 0, len(familyOrder))
	for _, family := range familyOrder {
		tiers, _ := TierTable(family)
		out = append(out, FamilyInfo{
			Family: family,
			Label:  familyLabels[family],
			MinQty: tiers[0].Min,
			Tiers:  tiers,
		})
	}
	return out
}

// TierTable 返回产品族阶梯副本
func TierTable(family Family) ([]Tier, bool) {
	tiers, ok := tierTables[family]
	if !ok {
		return nil, false
	}
	return append([]Tier(nil), tiers...), true
}

// FindTier 返回第一个包含该数量的阶梯，不存在时返回 nil
func FindTier(tiers []Tier, qty int) *Tier {
	for i := range tiers {
		if tiers[i].Contains(qty) {
			t := tiers[i]
			return &t
		}
	}
	return nil
}
