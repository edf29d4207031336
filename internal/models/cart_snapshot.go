package models

import "time"

// CartSnapshot 购物车快照（按存储 key 保存序列化后的购物车内容）
type CartSnapshot struct {
	Key       string    `gorm:"column:cart_key;primaryKey;type:varchar(191)" json:"key"` // 存储 key
	Payload   string    `gorm:"type:text;not null" json:"payload"`                       // JSON 数组
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`                                 // 更新时间
}

// TableName 指定表名
func (CartSnapshot) TableName() string {
	return "cart_snapshots"
}
