package models

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Money 统一金额类型（对外保留 2 位小数）
// 内部计算保持原始精度，仅在序列化与入库时舍入
type Money struct {
	decimal.Decimal
}

// NewMoney 从 decimal 创建金额（不舍入）
func NewMoney(amount decimal.Decimal) Money {
	return Money{Decimal: amount}
}

// NewMoneyFromDecimal 从 decimal 创建金额（舍入到 2 位）
func NewMoneyFromDecimal(amount decimal.Decimal) Money {
	return Money{Decimal: amount.Round(2)}
}

// NewMoneyFromFloat 从浮点数创建金额（舍入到 2 位）
func NewMoneyFromFloat(amount float64) Money {
	return NewMoneyFromDecimal(decimal.NewFromFloat(amount))
}

// RequireMoney 从字符串创建金额，格式错误时 panic，仅用于常量表
func RequireMoney(amount string) Money {
	return Money{Decimal: decimal.RequireFromString(amount)}
}

// Rounded 返回舍入到 2 位的金额
func (m Money) Rounded() Money {
	return Money{Decimal: m.Decimal.Round(2)}
}

// MulInt 金额乘以数量
func (m Money) MulInt(n int) Money {
	return Money{Decimal: m.Decimal.Mul(decimal.NewFromInt(int64(n)))}
}

// Add 金额相加
func (m Money) Add(other Money) Money {
	return Money{Decimal: m.Decimal.Add(other.Decimal)}
}

// Float64 返回浮点值，仅用于展示
func (m Money) Float64() float64 {
	f, _ := m.Decimal.Round(2).Float64()
	return f
}

// MarshalJSON 统一输出 2 位小数的字符串
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Decimal.Round(2).StringFixed(2))
}

// UnmarshalJSON 解析金额（字符串或数字）
func (m *Money) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return err
		}
		m.Decimal = d.Round(2)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	m.Decimal = decimal.NewFromFloat(f).Round(2)
	return nil
}

// Value 用于数据库写入
func (m Money) Value() (driver.Value, error) {
	return m.Decimal.Round(2).Value()
}

// Scan 用于数据库读取
func (m *Money) Scan(value interface{}) error {
	if err := m.Decimal.Scan(value); err != nil {
		return err
	}
	m.Decimal = m.Decimal.Round(2)
	return nil
}

// String 返回 2 位小数格式
func (m Money) String() string {
	return m.Decimal.Round(2).StringFixed(2)
}
