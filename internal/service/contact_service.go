package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/quickprintz/storefront/internal/config"
	"github.com/quickprintz/storefront/internal/constants"
	"github.com/quickprintz/storefront/internal/logger"
	"github.com/quickprintz/storefront/internal/models"
	"github.com/quickprintz/storefront/internal/queue"
	"github.com/quickprintz/storefront/internal/repository"

	"github.com/hibiken/asynq"
)

const defaultContactTimeout = 10 * time.Second

// ContactQueue 联系表单转发任务投递
type ContactQueue interface {
	Enabled() bool
	EnqueueContactForward(payload queue.ContactForwardPayload, opts ...asynq.Option) error
}

// ContactInput 联系表单提交参数
type ContactInput struct {
	Name        string `json:"name" validate:"required,max=120"`
	Email       string `json:"email" validate:"required,email,max=255"`
	Phone       string `json:"phone" validate:"omitempty,max=40"`
	Company     string `json:"company" validate:"omitempty,max=120"`
	Interest    string `json:"interest" validate:"omitempty,max=80"`
	Message     string `json:"message" validate:"required,max=5000"`
	CaptchaID   string `json:"captcha_id"`
	CaptchaCode string `json:"captcha_code"`
}

func (in *ContactInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Company = strings.TrimSpace(in.Company)
	in.Interest = strings.TrimSpace(in.Interest)
	in.Message = strings.TrimSpace(in.Message)
}

// ContactService 联系表单服务
// 提交先落库，再由队列或当前请求转发到外部表单端点；转发失败只记录状态
type ContactService struct {
	repo       repository.ContactRepository
	queue      ContactQueue
	captcha    *CaptchaService
	forwardURL string
	httpClient *http.Client
	now        func() time.Time
}

// NewContactService 创建联系表单服务
func NewContactService(repo repository.ContactRepository, q ContactQueue, captcha *CaptchaService, cfg config.ContactConfig) *ContactService {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = defaultContactTimeout
	}
	return &ContactService{
		repo:       repo,
		queue:      q,
		captcha:    captcha,
		forwardURL: strings.TrimSpace(cfg.ForwardURL),
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

// Submit 校验并保存联系表单
func (s *ContactService) Submit(ctx context.Context, input ContactInput, clientIP string) (*models.ContactSubmission, error) {
	input.normalize()
	if err := validateStruct(ErrContactInvalid, input); err != nil {
		return nil, err
	}
	if err := s.captcha.Verify(CaptchaVerifyPayload{CaptchaID: input.CaptchaID, CaptchaCode: input.CaptchaCode}); err != nil {
		return nil, err
	}

	submission := &models.ContactSubmission{
		Name:     input.Name,
		Email:    input.Email,
		Phone:    input.Phone,
		Company:  input.Company,
		Interest: input.Interest,
		Message:  input.Message,
		ClientIP: strings.TrimSpace(clientIP),
		Status:   constants.ContactStatusPending,
	}
	if s.forwardURL == "" {
		submission.Status = constants.ContactStatusSkipped
	}
	if err := s.repo.Create(ctx, submission); err != nil {
		return nil, err
	}
	if submission.Status == constants.ContactStatusSkipped {
		logger.Infow("contact_forward_skipped", "submission_id", submission.ID)
		return submission, nil
	}

	if s.queue != nil && s.queue.Enabled() {
		err := s.queue.EnqueueContactForward(queue.ContactForwardPayload{SubmissionID: submission.ID})
		if err == nil {
			return submission, nil
		}
		logger.Warnw("contact_forward_enqueue_failed", "submission_id", submission.ID, "error", err)
	}
	if err := s.Forward(ctx, submission.ID); err != nil {
		logger.Warnw("contact_forward_inline_failed", "submission_id", submission.ID, "error", err)
	}
	return submission, nil
}

// Forward 把提交记录转发到外部表单端点，已转发的记录直接返回
func (s *ContactService) Forward(ctx context.Context, id uint) error {
	submission, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if submission == nil {
		return ErrContactNotFound
	}
	if submission.Status == constants.ContactStatusForwarded {
		return nil
	}
	if s.forwardURL == "" {
		return ErrContactForwardOff
	}

	if err := s.post(ctx, submission); err != nil {
		if markErr := s.repo.MarkFailed(ctx, id, err.Error()); markErr != nil {
			logger.Warnw("contact_mark_failed_error", "submission_id", id, "error", markErr)
		}
		return fmt.Errorf("%w: %v", ErrContactForward, err)
	}
	return s.repo.MarkForwarded(ctx, id, s.now())
}

// List 分页查询提交记录
func (s *ContactService) List(ctx context.Context, filter repository.ContactListFilter) ([]models.ContactSubmission, int64, error) {
	return s.repo.List(ctx, filter)
}

func (s *ContactService) post(ctx context.Context, submission *models.ContactSubmission) error {
	form := url.Values{}
	form.Set("name", submission.Name)
	form.Set("email", submission.Email)
	form.Set("phone", submission.Phone)
	form.Set("company", submission.Company)
	form.Set("interest", submission.Interest)
	form.Set("message", submission.Message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.forwardURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
