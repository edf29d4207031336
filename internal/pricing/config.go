package pricing

import (
	"errors"
	"strconv"
	"strings"
)

var (
	ErrUnknownOption   = errors.New("unknown pricing option")
	ErrInvalidQuantity = errors.New("invalid pricing quantity")
	ErrUnknownKind     = errors.New("unknown pricing configuration kind")
)

// Kind 定价配置类型
type Kind string

const (
	KindTiered      Kind = "tiered"
	KindBag         Kind = "bag"
	KindCustomMylar Kind = "custom-mylar"
)

// Configuration 定价配置，仅由本包内的变体实现
type Configuration interface {
	Kind() Kind
	validate() error
}

// TieredConfig 阶梯定价（价格页计算器）
type TieredConfig struct {
	Family   Family `json:"family"`
	Quantity int    `json:"quantity"`
	Size     string `json:"size"`
	Finish   string `json:"finish"`
	Rush     bool   `json:"rush"`
}

func (TieredConfig) Kind() Kind { return KindTiered }

func (c TieredConfig) validate() error {
	if _, ok := tierTables[c.Family]; !ok {
		return optionError("family", string(c.Family))
	}
	if c.Quantity < 1 {
		return ErrInvalidQuantity
	}
	if c.Family == FamilyDesign {
		return nil
	}
	if _, ok := sizeMultipliers[c.Size]; !ok {
		return optionError("size", c.Size)
	}
	if _, ok := finishMultipliers[c.Finish]; !ok {
		return optionError("finish", c.Finish)
	}
	return nil
}

// BagConfig 印刷袋配置器（加法定价）
type BagConfig struct {
	BagSize    string `json:"bag_size"`
	Quantity   int    `json:"quantity"`
	Color      string `json:"color"`
	Finish     string `json:"finish"`
	Coverage   string `json:"coverage"`
	SpotUV     bool   `json:"spot_uv"`
	UVGloss    bool   `json:"uv_gloss"`
	CustomLogo bool   `json:"custom_logo"`
}

func (BagConfig) Kind() Kind { return KindBag }

func (c BagConfig) validate() error {
	if _, ok := bagSizeByID(c.BagSize); !ok {
		return optionError("bag_size", c.BagSize)
	}
	if c.Quantity < 1 {
		return ErrInvalidQuantity
	}
	if !contains(bagColors, c.Color) {
		return optionError("color", c.Color)
	}
	if _, ok := bagFinishes[c.Finish]; !ok {
		return optionError("finish", c.Finish)
	}
	if c.Coverage != CoverageFront && c.Coverage != CoverageBoth {
		return optionError("coverage", c.Coverage)
	}
	return nil
}

// CustomMylarConfig 定制 mylar 袋（商品详情页）
type CustomMylarConfig struct {
	Size           string `json:"size"`
	Color          string `json:"color"`
	Finish         string `json:"finish"`
	PrintStyle     string `json:"print_style"`
	QuantityOption string `json:"quantity_option"`
	Zipper         bool   `json:"zipper"`
	ChildResistant bool   `json:"child_resistant"`
	HangHole       bool   `json:"hang_hole"`
	Window         bool   `json:"window"`
}

func (CustomMylarConfig) Kind() Kind { return KindCustomMylar }

func (c CustomMylarConfig) validate() error {
	if !contains(mylarSizes, c.Size) {
		return optionError("size", c.Size)
	}
	if !contains(mylarColors, c.Color) {
		return optionError("color", c.Color)
	}
	if !contains(mylarFinishes, c.Finish) {
		return optionError("finish", c.Finish)
	}
	if !contains(mylarPrintStyles, c.PrintStyle) {
		return optionError("print_style", c.PrintStyle)
	}
	if _, ok := quantityOptionByLabel(c.QuantityOption); !ok {
		return optionError("quantity_option", c.QuantityOption)
	}
	return nil
}

// Quantity 解析数量选项中的数字（"1,000" -> 1000）
func (c CustomMylarConfig) Quantity() int {
	return parseDigits(c.QuantityOption)
}

// resolve 把指针形式的配置转为值，nil 视为未知类型
func resolve(cfg Configuration) (Configuration, error) {
	switch c := cfg.(type) {
	case nil:
		return nil, ErrUnknownKind
	case *TieredConfig:
		if c == nil {
			return nil, ErrUnknownKind
		}
		return *c, nil
	case *BagConfig:
		if c == nil {
			return nil, ErrUnknownKind
		}
		return *c, nil
	case *CustomMylarConfig:
		if c == nil {
			return nil, ErrUnknownKind
		}
		return *c, nil
	}
	return cfg, nil
}

func optionError(field, value string) error {
	return &OptionError{Field: field, Value: value}
}

// OptionError 配置项取值不在枚举内
type OptionError struct {
	Field string
	Value string
}

func (e *OptionError) Error() string {
	return ErrUnknownOption.Error() + ": " + e.Field + "=" + strconv.Quote(e.Value)
}

func (e *OptionError) Unwrap() error {
	return ErrUnknownOption
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func parseDigits(s string) int {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	n, err := strconv.Atoi(b.String())
	if err != nil {
		return 0
	}
	return n
}
