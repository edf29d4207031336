package provider

import (
	"context"
	"errors"

	"github.com/quickprintz/storefront/internal/assets"
	"github.com/quickprintz/storefront/internal/cache"
	"github.com/quickprintz/storefront/internal/config"
	"github.com/quickprintz/storefront/internal/logger"
	"github.com/quickprintz/storefront/internal/models"
	"github.com/quickprintz/storefront/internal/queue"
	"github.com/quickprintz/storefront/internal/repository"
	"github.com/quickprintz/storefront/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Storage
	Bucket assets.Bucket

	// Repositories
	CartSnapshotRepo repository.CartSnapshotRepository
	ContactRepo      repository.ContactRepository

	// Services
	CaptchaService *service.CaptchaService
	CartService    *service.CartService
	GalleryService *service.GalleryService
	ContactService *service.ContactService

	closers []func() error
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	ctx := context.Background()

	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化素材桶
	c.initStorage(ctx)

	// 3. 初始化 Services
	c.initServices(ctx)

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	if db == nil {
		logger.Warnw("provider_database_missing")
		return
	}
	c.CartSnapshotRepo = repository.NewCartSnapshotRepository(db)
	c.ContactRepo = repository.NewContactRepository(db)
}

func (c *Container) initStorage(ctx context.Context) {
	bucket, closer, err := NewBucket(ctx, c.Config.Storage)
	if err != nil {
		logger.Warnw("provider_init_storage_failed", "provider", c.Config.Storage.Provider, "error", err)
		return
	}
	c.Bucket = bucket
	if closer != nil {
		c.closers = append(c.closers, closer)
	}
}

func (c *Container) initServices(ctx context.Context) {
	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.CartService = service.NewCartService(c.Config.Cart, newCartSlots(ctx, c.Config, c.CartSnapshotRepo))

	var lister service.AssetLister
	if c.Bucket != nil {
		lister = NewAssetLister(c.Bucket, c.Config.Storage)
	}
	c.GalleryService = service.NewGalleryService(lister, c.QueueClient, c.Config.Gallery)

	if c.ContactRepo != nil {
		c.ContactService = service.NewContactService(c.ContactRepo, c.QueueClient, c.CaptchaService, c.Config.Contact)
	}
}

// Close 释放容器持有的资源，购物车异步快照先落盘
func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.CartService != nil {
		errs = append(errs, c.CartService.Close())
	}
	for _, closer := range c.closers {
		errs = append(errs, closer())
	}
	if c.QueueClient != nil {
		errs = append(errs, c.QueueClient.Close())
	}
	errs = append(errs, cache.Close())
	return errors.Join(errs...)
}
