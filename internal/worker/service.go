package worker

import (
	"context"
	"errors"
	"time"

	"github.com/quickprintz/storefront/internal/config"
	"github.com/quickprintz/storefront/internal/logger"
	"github.com/quickprintz/storefront/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	defaultGalleryWarmInterval = 4 * time.Minute
)

// Service 异步队列服务
type Service struct {
	name         string
	server       *asynq.Server
	mux          *asynq.ServeMux
	consumer     *Consumer
	warmInterval time.Duration
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, gallery config.GalleryConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	warm := time.Duration(gallery.WarmIntervalMinutes) * time.Minute
	if warm <= 0 {
		warm = defaultGalleryWarmInterval
	}
	return &Service{
		name:         "worker",
		server:       server,
		mux:          mux,
		consumer:     consumer,
		warmInterval: warm,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if err := s.server.Start(s.mux); err != nil {
		return err
	}
	if s.consumer != nil && s.consumer.Container != nil && s.consumer.GalleryService != nil {
		go s.runGalleryWarmLoop(ctx)
	}
	<-ctx.Done()
	return nil
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runGalleryWarmLoop 在缓存回收前定期重新列举，保证 API 端总能命中缓存
func (s *Service) runGalleryWarmLoop(ctx context.Context) {
	gallery := s.consumer.GalleryService
	runOnce := func() {
		if _, err := gallery.Refresh(ctx); err != nil {
			logger.Warnw("worker_gallery_warm_failed", "error", err)
		}
	}
	runOnce()

	ticker := time.NewTicker(s.warmInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
