package assets

import (
	"regexp"
	"strings"

	"github.com/quickprintz/storefront/internal/cart"
	"github.com/quickprintz/storefront/internal/models"
)

// DesignTraits 从文件名推断的展示属性
type DesignTraits struct {
	Category string   `json:"category"`
	Style    string   `json:"style"`
	Colors   []string `json:"colors"`
	Tags     []string `json:"tags"`
}

type keywordRule struct {
	keywords []string
	value    string
}

var (
	categoryRules = []keywordRule{
		{keywords: []string{"cannabis", "weed", "leaf"}, value: "cannabis"},
		{keywords: []string{"food", "snack"}, value: "food"},
		{keywords: []string{"abstract"}, value: "abstract"},
	}
	styleRules = []keywordRule{
		{keywords: []string{"vintage"}, value: "vintage"},
		{keywords: []string{"minimal"}, value: "minimal"},
		{keywords: []string{"grunge"}, value: "grunge"},
	}
	colorRules = []keywordRule{
		{keywords: []string{"green"}, value: "green"},
		{keywords: []string{"purple"}, value: "purple"},
		{keywords: []string{"gold"}, value: "gold"},
		{keywords: []string{"black"}, value: "black"},
	}
	tagRules = []keywordRule{
		{keywords: []string{"premium"}, value: "premium"},
		{keywords: []string{"organic"}, value: "organic"},
		{keywords: []string{"luxury"}, value: "luxury"},
	}
)

func matchRule(name string, rules []keywordRule, fallback string) string {
	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if strings.Contains(name, kw) {
				return rule.value
			}
		}
	}
	return fallback
}

// Traits 按文件名关键词推断分类、风格、颜色与标签
func Traits(fileName string) DesignTraits {
	name := strings.ToLower(fileName)
	return DesignTraits{
		Category: matchRule(name, categoryRules, "retail"),
		Style:    matchRule(name, styleRules, "modern"),
		Colors:   []string{matchRule(name, colorRules, "rainbow")},
		Tags:     []string{matchRule(name, tagRules, "standard")},
	}
}

// Query 画廊筛选条件，空值或 "all" 表示不筛选
type Query struct {
	Search   string `form:"search" json:"search"`
	Category string `form:"category" json:"category"`
	Style    string `form:"style" json:"style"`
	Color    string `form:"color" json:"color"`
}

func isAll(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, "all")
}

// Filter 返回满足条件的素材，保持原有顺序
func Filter(items []Asset, q Query) []Asset {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]Asset, 0, len(items))
	for _, a := range items {
		label := a.Name
		if label == "" {
			label = a.Path
		}
		traits := Traits(label)
		if search != "" && !matchesSearch(a, traits, search) {
			continue
		}
		if !isAll(q.Category) && traits.Category != q.Category {
			continue
		}
		if !isAll(q.Style) && traits.Style != q.Style {
			continue
		}
		if !isAll(q.Color) && !containsString(traits.Colors, q.Color) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func matchesSearch(a Asset, traits DesignTraits, search string) bool {
	if strings.Contains(strings.ToLower(a.Name), search) || strings.Contains(strings.ToLower(a.Path), search) {
		return true
	}
	for _, tag := range traits.Tags {
		if strings.Contains(strings.ToLower(tag), search) {
			return true
		}
	}
	return false
}

func containsString(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

var imageExt = regexp.MustCompile(`(?i)\.(png|jpe?g|gif|bmp|webp|svg)$`)

// IsImage 按 MIME 或扩展名判断是否为图片
func IsImage(a Asset) bool {
	if a.MimeType != nil && strings.HasPrefix(*a.MimeType, "image/") {
		return true
	}
	return imageExt.MatchString(a.Path)
}

// PremadePrice 成品设计的固定价格
var PremadePrice = models.RequireMoney("20")

// PremadeLineItem 成品设计加入购物车的行项目
func PremadeLineItem(a Asset) cart.LineItem {
	return cart.LineItem{
		ID:        "premade-" + a.Path,
		Name:      a.Name,
		UnitPrice: PremadePrice,
		Quantity:  1,
		Image:     a.PublicURL,
		Metadata:  cart.Metadata{{Label: "Type", Value: "Premade Design"}},
	}
}
