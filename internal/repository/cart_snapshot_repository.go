package repository

import (
	"context"
	"errors"
	"time"

	"github.com/quickprintz/storefront/internal/cart"
	"github.com/quickprintz/storefront/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartSnapshotRepository 购物车快照数据访问接口
type CartSnapshotRepository interface {
	Get(ctx context.Context, key string) (*models.CartSnapshot, error)
	Save(ctx context.Context, snapshot *models.CartSnapshot) error
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}

// GormCartSnapshotRepository GORM 实现
type GormCartSnapshotRepository struct {
	db *gorm.DB
}

// NewCartSnapshotRepository 创建购物车快照仓库
func NewCartSnapshotRepository(db *gorm.DB) *GormCartSnapshotRepository {
	return &GormCartSnapshotRepository{db: db}
}

// Get 按 key 获取快照，不存在时返回 nil
func (r *GormCartSnapshotRepository) Get(ctx context.Context, key string) (*models.CartSnapshot, error) {
	var snapshot models.CartSnapshot
	if err := r.db.WithContext(ctx).Where("cart_key = ?", key).First(&snapshot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &snapshot, nil
}

// Save 写入或覆盖快照
func (r *GormCartSnapshotRepository) Save(ctx context.Context, snapshot *models.CartSnapshot) error {
	if snapshot == nil {
		return nil
	}
	if snapshot.UpdatedAt.IsZero() {
		snapshot.UpdatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cart_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(snapshot).Error
}

// DeleteBefore 删除早于指定时间的快照
func (r *GormCartSnapshotRepository) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("updated_at < ?", before).Delete(&models.CartSnapshot{})
	return res.RowsAffected, res.Error
}

// GormCartSlot 把快照仓库适配为购物车持久化槽
type GormCartSlot struct {
	repo CartSnapshotRepository
	key  string
}

// NewGormCartSlot 创建数据库购物车槽
func NewGormCartSlot(repo CartSnapshotRepository, key string) *GormCartSlot {
	return &GormCartSlot{repo: repo, key: key}
}

// GormCartSlotFactory 返回数据库槽工厂
func GormCartSlotFactory(repo CartSnapshotRepository) cart.SlotFactory {
	return func(key string) cart.Slot {
		return NewGormCartSlot(repo, key)
	}
}

func (s *GormCartSlot) Read(ctx context.Context) ([]byte, error) {
	snapshot, err := s.repo.Get(ctx, s.key)
	if err != nil || snapshot == nil {
		return nil, err
	}
	return []byte(snapshot.Payload), nil
}

func (s *GormCartSlot) Write(ctx context.Context, data []byte) error {
	return s.repo.Save(ctx, &models.CartSnapshot{Key: s.key, Payload: string(data), UpdatedAt: time.Now()})
}
