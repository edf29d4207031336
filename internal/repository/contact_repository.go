package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/quickprintz/storefront/internal/constants"
	"github.com/quickprintz/storefront/internal/models"

	"gorm.io/gorm"
)

// ContactListFilter 联系表单列表过滤条件
type ContactListFilter struct {
	Page     int
	PageSize int
	Status   string
}

// ContactRepository 联系表单数据访问接口
type ContactRepository interface {
	Create(ctx context.Context, submission *models.ContactSubmission) error
	GetByID(ctx context.Context, id uint) (*models.ContactSubmission, error)
	MarkForwarded(ctx context.Context, id uint, at time.Time) error
	MarkFailed(ctx context.Context, id uint, reason string) error
	List(ctx context.Context, filter ContactListFilter) ([]models.ContactSubmission, int64, error)
}

// GormContactRepository GORM 实现
type GormContactRepository struct {
	db *gorm.DB
}

// NewContactRepository 创建联系表单仓库
func NewContactRepository(db *gorm.DB) *GormContactRepository {
	return &GormContactRepository{db: db}
}

// Create 保存提交记录
func (r *GormContactRepository) Create(ctx context.Context, submission *models.ContactSubmission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

// GetByID 按 ID 获取，不存在时返回 nil
func (r *GormContactRepository) GetByID(ctx context.Context, id uint) (*models.ContactSubmission, error) {
	var submission models.ContactSubmission
	if err := r.db.WithContext(ctx).First(&submission, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &submission, nil
}

// MarkForwarded 标记已转发
func (r *GormContactRepository) MarkForwarded(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.ContactSubmission{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":       constants.ContactStatusForwarded,
		"last_error":   "",
		"forwarded_at": at,
		"updated_at":   time.Now(),
	}).Error
}

// MarkFailed 标记转发失败并记录原因
func (r *GormContactRepository) MarkFailed(ctx context.Context, id uint, reason string) error {
	return r.db.WithContext(ctx).Model(&models.ContactSubmission{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     constants.ContactStatusFailed,
		"last_error": reason,
		"updated_at": time.Now(),
	}).Error
}

// List 分页查询，按创建时间倒序
func (r *GormContactRepository) List(ctx context.Context, filter ContactListFilter) ([]models.ContactSubmission, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ContactSubmission{})
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var items []models.ContactSubmission
	if err := applyPagination(query.Order("created_at desc, id desc"), filter.Page, filter.PageSize).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
