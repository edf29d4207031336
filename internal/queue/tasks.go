package queue

import (
	"encoding/json"

	"github.com/quickprintz/storefront/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskGalleryRefresh 素材列表刷新任务
	TaskGalleryRefresh = constants.TaskGalleryRefresh
	// TaskContactForward 联系表单转发任务
	TaskContactForward = constants.TaskContactForward
)

// GalleryRefreshPayload 素材刷新任务载荷
type GalleryRefreshPayload struct {
	Reason      string `json:"reason"`
	RequestedAt int64  `json:"requested_at"`
}

// ContactForwardPayload 联系表单转发任务载荷
type ContactForwardPayload struct {
	SubmissionID uint `json:"submission_id"`
}

// NewGalleryRefreshTask 创建素材刷新任务
func NewGalleryRefreshTask(payload GalleryRefreshPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskGalleryRefresh, body), nil
}

// NewContactForwardTask 创建联系表单转发任务
func NewContactForwardTask(payload ContactForwardPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskContactForward, body), nil
}
