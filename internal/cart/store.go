package cart

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/quickprintz/storefront/internal/logger"
	"github.com/quickprintz/storefront/internal/models"
	"github.com/shopspring/decimal"
)

const slotWriteTimeout = 5 * time.Second

// Store 购物车状态
// 每次变更在锁内完整生效后再持久化，持久化失败只记录日志
type Store struct {
	mu    sync.Mutex
	slot  Slot
	items []LineItem
}

// Snapshot 购物车读视图
type Snapshot struct {
	Items      []LineItem   `json:"items"`
	Subtotal   models.Money `json:"subtotal"`
	TotalItems int          `json:"total_items"`
}

// NewStore 创建购物车并尝试从持久化槽恢复
// 读取失败、解析失败或内容不是数组时从空购物车开始
func NewStore(ctx context.Context, slot Slot) *Store {
	s := &Store{slot: slot}
	s.items = hydrate(ctx, slot)
	return s
}

func hydrate(ctx context.Context, slot Slot) []LineItem {
	if slot == nil {
		return nil
	}
	data, err := slot.Read(ctx)
	if err != nil {
		logger.Debugw("cart_slot_read_failed", "error", err)
		return nil
	}
	if len(data) == 0 {
		return nil
	}
	var raw []LineItem
	if err := json.Unmarshal(data, &raw); err != nil {
		logger.Debugw("cart_snapshot_invalid", "error", err)
		return nil
	}
	items := make([]LineItem, 0, len(raw))
	for _, item := range raw {
		if strings.TrimSpace(item.ID) == "" {
			continue
		}
		if item.Quantity < 1 {
			item.Quantity = 1
		}
		items = append(items, item)
	}
	return items
}

// AddItem 加入购物车
// 已存在相同 id 时覆盖字段并累加数量，数量缺省或非正数按 1 处理
func (s *Store) AddItem(item LineItem, quantity ...int) {
	qty := 1
	if len(quantity) > 0 && quantity[0] > 0 {
		qty = quantity[0]
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == item.ID {
			merged := item
			merged.Quantity = s.items[i].Quantity + qty
			s.items[i] = merged
			s.persistLocked()
			return
		}
	}
	item.Quantity = qty
	s.items = append(s.items, item)
	s.persistLocked()
}

// UpdateQuantity 设置数量，最小为 1；id 不存在时不做任何事
func (s *Store) UpdateQuantity(id string, quantity int) {
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Quantity = quantity
			s.persistLocked()
			return
		}
	}
}

// RemoveItem 删除行项目
func (s *Store) RemoveItem(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i:i], s.items[i+1:]...)
			s.persistLocked()
			return
		}
	}
}

// ClearCart 清空购物车
func (s *Store) ClearCart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.persistLocked()
}

// Items 返回行项目副本
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyItems(s.items)
}

// Subtotal 合计金额 Σ(单价×数量)
func (s *Store) Subtotal() models.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	return subtotal(s.items)
}

// TotalItems 商品总件数
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return totalItems(s.items)
}

// Snapshot 一次性读取行项目与汇总
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Items:      copyItems(s.items),
		Subtotal:   subtotal(s.items),
		TotalItems: totalItems(s.items),
	}
}

func (s *Store) persistLocked() {
	if s.slot == nil {
		return
	}
	items := s.items
	if items == nil {
		items = []LineItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		logger.Warnw("cart_snapshot_encode_failed", "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), slotWriteTimeout)
	defer cancel()
	if err := s.slot.Write(ctx, data); err != nil {
		logger.Warnw("cart_slot_write_failed", "error", err)
	}
}

func subtotal(items []LineItem) models.Money {
	sum := models.NewMoney(decimal.Zero)
	for _, item := range items {
		sum = sum.Add(item.LineTotal())
	}
	return sum
}

func totalItems(items []LineItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}

func copyItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	for i, item := range items {
		if item.Metadata != nil {
			item.Metadata = append(Metadata(nil), item.Metadata...)
		}
		out[i] = item
	}
	return out
}
