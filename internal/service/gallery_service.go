package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/quickprintz/storefront/internal/assets"
	"github.com/quickprintz/storefront/internal/cache"
	"github.com/quickprintz/storefront/internal/config"
	"github.com/quickprintz/storefront/internal/constants"
	"github.com/quickprintz/storefront/internal/logger"
	"github.com/quickprintz/storefront/internal/queue"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/singleflight"
)

const (
	defaultGalleryStale   = 5 * time.Minute
	defaultGalleryGC      = 10 * time.Minute
	galleryRefreshTimeout = 2 * time.Minute
)

// AssetLister 列出全部设计素材
type AssetLister interface {
	List(ctx context.Context) ([]assets.Asset, error)
}

// GalleryRefreshQueue 素材刷新任务投递
type GalleryRefreshQueue interface {
	Enabled() bool
	EnqueueGalleryRefresh(payload queue.GalleryRefreshPayload, opts ...asynq.Option) error
}

// GalleryEntry 素材列表缓存
type GalleryEntry struct {
	Assets    []assets.Asset `json:"assets"`
	FetchedAt time.Time      `json:"fetched_at"`
}

// DesignView 画廊展示项
type DesignView struct {
	assets.Asset
	assets.DesignTraits
	IsImage   bool   `json:"is_image"`
	SizeLabel string `json:"size_label"`
}

// GalleryListing 画廊查询结果
type GalleryListing struct {
	Items     []DesignView `json:"items"`
	Total     int          `json:"total"`
	FetchedAt time.Time    `json:"fetched_at"`
	Stale     bool         `json:"stale"`
}

// GalleryService 设计素材画廊
// 新鲜期内直接返回缓存；过期但未回收时先返回旧数据再后台刷新；回收后同步重新列举
type GalleryService struct {
	lister AssetLister
	queue  GalleryRefreshQueue
	stale  time.Duration
	gc     time.Duration
	now    func() time.Time

	group      singleflight.Group
	refreshing atomic.Bool

	mu    sync.RWMutex
	entry *GalleryEntry
}

// NewGalleryService 创建画廊服务
func NewGalleryService(lister AssetLister, q GalleryRefreshQueue, cfg config.GalleryConfig) *GalleryService {
	stale := time.Duration(cfg.StaleMinutes) * time.Minute
	if stale <= 0 {
		stale = defaultGalleryStale
	}
	gc := time.Duration(cfg.GCMinutes) * time.Minute
	if gc <= stale {
		gc = stale + defaultGalleryGC - defaultGalleryStale
	}
	return &GalleryService{
		lister: lister,
		queue:  q,
		stale:  stale,
		gc:     gc,
		now:    time.Now,
	}
}

// Entry 返回当前素材列表，第二个返回值表示数据已过新鲜期
func (s *GalleryService) Entry(ctx context.Context) (*GalleryEntry, bool, error) {
	entry := s.cached(ctx)
	if entry == nil || s.now().Sub(entry.FetchedAt) >= s.gc {
		fresh, err := s.Refresh(ctx)
		return fresh, false, err
	}
	if s.now().Sub(entry.FetchedAt) >= s.stale {
		s.revalidate()
		return entry, true, nil
	}
	return entry, false, nil
}

// List 按条件筛选画廊
func (s *GalleryService) List(ctx context.Context, q assets.Query) (*GalleryListing, error) {
	entry, stale, err := s.Entry(ctx)
	if err != nil {
		return nil, err
	}
	matched := assets.Filter(entry.Assets, q)
	items := make([]DesignView, 0, len(matched))
	for _, a := range matched {
		label := a.Name
		if label == "" {
			label = a.Path
		}
		items = append(items, DesignView{
			Asset:        a,
			DesignTraits: assets.Traits(label),
			IsImage:      assets.IsImage(a),
			SizeLabel:    assets.FormatFileSize(a.Size),
		})
	}
	return &GalleryListing{
		Items:     items,
		Total:     len(items),
		FetchedAt: entry.FetchedAt,
		Stale:     stale,
	}, nil
}

// Find 按路径查找素材
func (s *GalleryService) Find(ctx context.Context, path string) (assets.Asset, error) {
	path = strings.Trim(strings.TrimSpace(path), "/")
	if path == "" {
		return assets.Asset{}, ErrDesignNotFound
	}
	entry, _, err := s.Entry(ctx)
	if err != nil {
		return assets.Asset{}, err
	}
	for _, a := range entry.Assets {
		if a.Path == path {
			return a, nil
		}
	}
	return assets.Asset{}, ErrDesignNotFound
}

// Refresh 重新列举素材并写入缓存，并发调用只执行一次
// 列举不随发起请求取消，调用方离开后其余等待者仍能拿到结果
func (s *GalleryService) Refresh(ctx context.Context) (*GalleryEntry, error) {
	ch := s.group.DoChan("gallery", func() (interface{}, error) {
		if s.lister == nil {
			return nil, ErrDesignsUnavailable
		}
		listCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), galleryRefreshTimeout)
		defer cancel()
		list, err := s.lister.List(listCtx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDesignsUnavailable, err)
		}
		entry := &GalleryEntry{Assets: list, FetchedAt: s.now()}
		s.mu.Lock()
		s.entry = entry
		s.mu.Unlock()
		if err := cache.SetJSON(listCtx, constants.CacheKeyGalleryAssets, entry, s.gc); err != nil {
			logger.Warnw("gallery_cache_write_failed", "error", err)
		}
		logger.Infow("gallery_refreshed", "count", len(list))
		return entry, nil
	})
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrDesignsUnavailable, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			logger.Warnw("gallery_refresh_failed", "error", res.Err)
			return nil, res.Err
		}
		return res.Val.(*GalleryEntry), nil
	}
}

// cached 返回本地或 Redis 中较新的一份缓存
func (s *GalleryService) cached(ctx context.Context) *GalleryEntry {
	s.mu.RLock()
	local := s.entry
	s.mu.RUnlock()
	if local != nil && s.now().Sub(local.FetchedAt) < s.stale {
		return local
	}
	var shared GalleryEntry
	found, err := cache.GetJSON(ctx, constants.CacheKeyGalleryAssets, &shared)
	if err != nil {
		logger.Debugw("gallery_cache_read_failed", "error", err)
		return local
	}
	if !found || (local != nil && !shared.FetchedAt.After(local.FetchedAt)) {
		return local
	}
	s.mu.Lock()
	s.entry = &shared
	s.mu.Unlock()
	return &shared
}

// revalidate 投递刷新任务，队列不可用时在后台协程刷新
func (s *GalleryService) revalidate() {
	if s.queue != nil && s.queue.Enabled() {
		err := s.queue.EnqueueGalleryRefresh(queue.GalleryRefreshPayload{
			Reason:      "stale",
			RequestedAt: s.now().Unix(),
		})
		if err == nil {
			return
		}
		logger.Warnw("gallery_refresh_enqueue_failed", "error", err)
	}
	if !s.refreshing.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer s.refreshing.Store(false)
		ctx, cancel := context.WithTimeout(context.Background(), galleryRefreshTimeout)
		defer cancel()
		_, _ = s.Refresh(ctx)
	}()
}
