package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/quickprintz/storefront/internal/assets"
	"github.com/quickprintz/storefront/internal/cache"
	"github.com/quickprintz/storefront/internal/cart"
	"github.com/quickprintz/storefront/internal/config"
	"github.com/quickprintz/storefront/internal/constants"
	"github.com/quickprintz/storefront/internal/dynamo"
	"github.com/quickprintz/storefront/internal/logger"
	"github.com/quickprintz/storefront/internal/repository"
	"github.com/quickprintz/storefront/internal/storage/gcs"
	"github.com/quickprintz/storefront/internal/storage/supabase"
)

// NewBucket 按 storage.provider 创建素材桶
// 返回的 closer 总是非 nil
func NewBucket(ctx context.Context, cfg config.StorageConfig) (assets.Bucket, func() error, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case constants.StorageProviderGCS:
		bucket, err := gcs.New(ctx, gcs.Config{
			Bucket:          cfg.Bucket,
			CredentialsFile: cfg.CredentialsFile,
			Public:          cfg.Public,
		})
		if err != nil {
			return nil, nil, err
		}
		return bucket, bucket.Close, nil
	case "", constants.StorageProviderSupabase:
		timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
		bucket := supabase.New(supabase.Config{
			ProjectURL: cfg.ProjectURL,
			AnonKey:    cfg.AnonKey,
			Bucket:     cfg.Bucket,
			Public:     cfg.Public,
			Timeout:    timeout,
		}, &http.Client{Timeout: timeout})
		return bucket, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage provider: %s", cfg.Provider)
	}
}

// NewAssetLister 创建素材遍历器
func NewAssetLister(bucket assets.Bucket, cfg config.StorageConfig) *assets.Lister {
	return assets.NewLister(bucket, assets.Options{
		Root:            cfg.Prefix,
		PageSize:        cfg.PageSize,
		SignedURLTTL:    time.Duration(cfg.SignedURLTTLHours) * time.Hour,
		ExcludedFolders: cfg.ExcludedFolders,
		Concurrency:     8,
	})
}

// newCartSlots 按 cart.store 选择购物车快照存储
// 依赖不可用时退回文件存储
func newCartSlots(ctx context.Context, cfg *config.Config, snapshots repository.CartSnapshotRepository) cart.SlotFactory {
	cartCfg := cfg.Cart
	fileSlots := cart.FileSlotFactory(cartCfg.FileDir)
	ttl := time.Duration(cfg.Cart.SessionExpireHours) * time.Hour

	switch strings.ToLower(strings.TrimSpace(cartCfg.Store)) {
	case constants.CartStoreMemory:
		return cart.NewMemorySlots().Slot
	case constants.CartStoreRedis:
		if !cache.Enabled() {
			logger.Warnw("provider_cart_store_fallback", "store", cartCfg.Store, "reason", "redis disabled")
			return fileSlots
		}
		return cache.RedisCartSlotFactory(ttl)
	case constants.CartStoreDatabase:
		if snapshots == nil {
			logger.Warnw("provider_cart_store_fallback", "store", cartCfg.Store, "reason", "database not initialized")
			return fileSlots
		}
		return repository.GormCartSlotFactory(snapshots)
	case constants.CartStoreDynamoDB:
		client, err := dynamo.NewClient(ctx, dynamo.Options{
			Region:   cfg.DynamoDB.Region,
			Endpoint: cfg.DynamoDB.Endpoint,
		})
		if err != nil || strings.TrimSpace(cfg.DynamoDB.Table) == "" {
			logger.Warnw("provider_cart_store_fallback", "store", cartCfg.Store, "error", err)
			return fileSlots
		}
		return dynamo.SlotFactory(client, cfg.DynamoDB.Table)
	default:
		return fileSlots
	}
}
