package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/quickprintz/storefront/internal/logger"
	"github.com/quickprintz/storefront/internal/provider"
	"github.com/quickprintz/storefront/internal/queue"
	"github.com/quickprintz/storefront/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskGalleryRefresh, c.handleGalleryRefresh)
	mux.HandleFunc(queue.TaskContactForward, c.handleContactForward)
}

func (c *Consumer) handleGalleryRefresh(ctx context.Context, task *asynq.Task) error {
	if c == nil || c.Container == nil || task == nil {
		logger.Debugw("worker_gallery_refresh_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.GalleryRefreshPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_gallery_refresh_unmarshal_failed", "error", err)
		return err
	}
	if c.GalleryService == nil {
		logger.Warnw("worker_gallery_refresh_skip_service_nil", "reason", payload.Reason)
		return nil
	}
	entry, err := c.GalleryService.Refresh(ctx)
	if err != nil {
		logger.Warnw("worker_gallery_refresh_failed", "reason", payload.Reason, "error", err)
		return err
	}
	logger.Debugw("worker_gallery_refreshed",
		"reason", payload.Reason,
		"requested_at", payload.RequestedAt,
		"count", len(entry.Assets),
	)
	return nil
}

func (c *Consumer) handleContactForward(ctx context.Context, task *asynq.Task) error {
	if c == nil || c.Container == nil || task == nil {
		logger.Debugw("worker_contact_forward_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.ContactForwardPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_contact_forward_unmarshal_failed", "error", err)
		return err
	}
	if payload.SubmissionID == 0 {
		logger.Debugw("worker_contact_forward_skip_invalid_payload", "submission_id", payload.SubmissionID)
		return nil
	}
	if c.ContactService == nil {
		logger.Warnw("worker_contact_forward_skip_service_nil", "submission_id", payload.SubmissionID)
		return nil
	}
	if err := c.ContactService.Forward(ctx, payload.SubmissionID); err != nil {
		switch {
		case errors.Is(err, service.ErrContactNotFound):
			logger.Debugw("worker_contact_forward_skip_not_found", "submission_id", payload.SubmissionID)
			return nil
		case errors.Is(err, service.ErrContactForwardOff):
			logger.Debugw("worker_contact_forward_skip_disabled", "submission_id", payload.SubmissionID)
			return nil
		default:
			logger.Warnw("worker_contact_forward_failed", "submission_id", payload.SubmissionID, "error", err)
			return err
		}
	}
	return nil
}
