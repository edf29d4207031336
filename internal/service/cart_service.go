package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/quickprintz/storefront/internal/assets"
	"github.com/quickprintz/storefront/internal/cart"
	"github.com/quickprintz/storefront/internal/config"
	"github.com/quickprintz/storefront/internal/logger"
	"github.com/quickprintz/storefront/internal/models"
	"github.com/quickprintz/storefront/internal/pricing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	defaultCartStorageKey   = "quickprintz-cart"
	defaultCartIdle         = 30 * time.Minute
	defaultCartSessionHours = 720
	cartEvictInterval       = time.Minute
)

// CartSessionClaims 购物车会话声明
type CartSessionClaims struct {
	CartID string `json:"cart_id"`
	jwt.RegisteredClaims
}

// CartSession 新签发的购物车会话
type CartSession struct {
	CartID    string    `json:"cart_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CartItemInput 直接加入购物车的商品
type CartItemInput struct {
	ID       string        `json:"id" validate:"required,max=512"`
	Name     string        `json:"name" validate:"required,max=255"`
	Price    models.Money  `json:"price"`
	Quantity int           `json:"quantity"`
	Image    string        `json:"image" validate:"omitempty,max=2048"`
	Href     string        `json:"href" validate:"omitempty,max=2048"`
	Metadata cart.Metadata `json:"metadata"`
}

// ConfiguredItemResult 报价并加入购物车的结果
type ConfiguredItemResult struct {
	Quote pricing.Result `json:"quote"`
	Item  cart.LineItem  `json:"item"`
	Cart  cart.Snapshot  `json:"cart"`
}

type cartEntry struct {
	store    *cart.Store
	slot     cart.Slot
	lastUsed time.Time
}

// CartService 购物车会话服务
// 每个会话对应一个 cart.Store，闲置超时后从内存移除，快照仍保留在持久化槽中
type CartService struct {
	cfg   config.CartConfig
	slots cart.SlotFactory
	now   func() time.Time

	mu      sync.Mutex
	entries map[string]*cartEntry
}

// NewCartService 创建购物车服务
func NewCartService(cfg config.CartConfig, slots cart.SlotFactory) *CartService {
	if strings.TrimSpace(cfg.StorageKey) == "" {
		cfg.StorageKey = defaultCartStorageKey
	}
	if cfg.SessionExpireHours <= 0 {
		cfg.SessionExpireHours = defaultCartSessionHours
	}
	if slots == nil {
		slots = cart.NewMemorySlots().Slot
	}
	return &CartService{
		cfg:     cfg,
		slots:   slots,
		now:     time.Now,
		entries: make(map[string]*cartEntry),
	}
}

// IssueSession 签发新的购物车会话
func (s *CartService) IssueSession() (*CartSession, error) {
	cartID := uuid.NewString()
	now := s.now()
	expiresAt := now.Add(time.Duration(s.cfg.SessionExpireHours) * time.Hour)
	claims := CartSessionClaims{
		CartID: cartID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.SessionSecret))
	if err != nil {
		return nil, err
	}
	return &CartSession{CartID: cartID, Token: tokenString, ExpiresAt: expiresAt}, nil
}

// ParseSession 解析购物车凭证，返回购物车 ID
func (s *CartService) ParseSession(tokenString string) (string, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return "", ErrCartSessionMissing
	}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &CartSessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.SessionSecret), nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCartSessionInvalid, err)
	}
	claims, ok := token.Claims.(*CartSessionClaims)
	if !ok || !token.Valid {
		return "", ErrCartSessionInvalid
	}
	if _, err := uuid.Parse(claims.CartID); err != nil {
		return "", ErrCartSessionInvalid
	}
	return claims.CartID, nil
}

// SlotKey 购物车快照在持久化槽中的 key
func (s *CartService) SlotKey(cartID string) string {
	return s.cfg.StorageKey + ":" + cartID
}

// store 返回会话对应的购物车，首次访问时从持久化槽恢复
func (s *CartService) store(ctx context.Context, cartID string) *cart.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.entries[cartID]; ok {
		entry.lastUsed = s.now()
		return entry.store
	}
	slot := s.slots(s.SlotKey(cartID))
	if s.cfg.AsyncPersist {
		slot = cart.NewAsyncSlot(slot)
	}
	entry := &cartEntry{
		store:    cart.NewStore(ctx, slot),
		slot:     slot,
		lastUsed: s.now(),
	}
	s.entries[cartID] = entry
	return entry.store
}

// View 当前购物车内容
func (s *CartService) View(ctx context.Context, cartID string) cart.Snapshot {
	return s.store(ctx, cartID).Snapshot()
}

// AddItem 加入一件商品，同 ID 合并数量
func (s *CartService) AddItem(ctx context.Context, cartID string, input CartItemInput) (cart.Snapshot, error) {
	input.ID = strings.TrimSpace(input.ID)
	input.Name = strings.TrimSpace(input.Name)
	if err := validateStruct(ErrCartItemInvalid, input); err != nil {
		return cart.Snapshot{}, err
	}
	if input.Price.IsNegative() {
		return cart.Snapshot{}, fmt.Errorf("%w: price must not be negative", ErrCartItemInvalid)
	}
	item := cart.LineItem{
		ID:        input.ID,
		Name:      input.Name,
		UnitPrice: input.Price,
		Image:     strings.TrimSpace(input.Image),
		Href:      strings.TrimSpace(input.Href),
		Metadata:  input.Metadata,
	}
	st := s.store(ctx, cartID)
	st.AddItem(item, input.Quantity)
	return st.Snapshot(), nil
}

// AddConfigured 按配置报价后加入购物车
func (s *CartService) AddConfigured(ctx context.Context, cartID string, cfg pricing.Configuration) (*ConfiguredItemResult, error) {
	res, err := Quote(cfg)
	if err != nil {
		return nil, err
	}
	if !res.TotalPrice.IsPositive() {
		return nil, fmt.Errorf("%w: quantity outside every tier", ErrPricingConfigInvalid)
	}
	item, err := pricing.LineItem(cfg, res)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPricingConfigInvalid, err)
	}
	st := s.store(ctx, cartID)
	st.AddItem(item, item.Quantity)
	return &ConfiguredItemResult{Quote: res, Item: item, Cart: st.Snapshot()}, nil
}

// AddPremade 把现成设计加入购物车
func (s *CartService) AddPremade(ctx context.Context, cartID string, asset assets.Asset) cart.Snapshot {
	st := s.store(ctx, cartID)
	st.AddItem(assets.PremadeLineItem(asset))
	return st.Snapshot()
}

// UpdateQuantity 修改数量，不存在的 ID 不做任何变更
func (s *CartService) UpdateQuantity(ctx context.Context, cartID, itemID string, quantity int) cart.Snapshot {
	st := s.store(ctx, cartID)
	st.UpdateQuantity(itemID, quantity)
	return st.Snapshot()
}

// RemoveItem 移除商品
func (s *CartService) RemoveItem(ctx context.Context, cartID, itemID string) cart.Snapshot {
	st := s.store(ctx, cartID)
	st.RemoveItem(itemID)
	return st.Snapshot()
}

// Clear 清空购物车
func (s *CartService) Clear(ctx context.Context, cartID string) cart.Snapshot {
	st := s.store(ctx, cartID)
	st.ClearCart()
	return st.Snapshot()
}

// EvictIdle 移除闲置超时的购物车，返回移除数量
func (s *CartService) EvictIdle(now time.Time) int {
	idle := time.Duration(s.cfg.IdleMinutes) * time.Minute
	if idle <= 0 {
		idle = defaultCartIdle
	}
	s.mu.Lock()
	var evicted []*cartEntry
	for id, entry := range s.entries {
		if now.Sub(entry.lastUsed) >= idle {
			evicted = append(evicted, entry)
			delete(s.entries, id)
		}
	}
	s.mu.Unlock()
	for _, entry := range evicted {
		closeSlot(entry.slot)
	}
	return len(evicted)
}

// Run 周期性清理闲置购物车，直到 ctx 结束
func (s *CartService) Run(ctx context.Context) {
	ticker := time.NewTicker(cartEvictInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.EvictIdle(s.now()); n > 0 {
				logger.Debugw("cart_idle_evicted", "count", n)
			}
		}
	}
}

// Close 落盘所有异步槽
func (s *CartService) Close() error {
	s.mu.Lock()
	entries := s.entries
	s.entries = make(map[string]*cartEntry)
	s.mu.Unlock()
	var errs []error
	for _, entry := range entries {
		if err := closeSlot(entry.slot); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ActiveCount 内存中的购物车数量
func (s *CartService) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func closeSlot(slot cart.Slot) error {
	closer, ok := slot.(interface{ Close() error })
	if !ok {
		return nil
	}
	if err := closer.Close(); err != nil {
		logger.Warnw("cart_slot_close_failed", "error", err)
		return err
	}
	return nil
}
