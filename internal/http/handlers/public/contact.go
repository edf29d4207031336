package public

import (
	handlershared "github.com/quickprintz/storefront/internal/http/handlers/shared"
	"github.com/quickprintz/storefront/internal/http/response"
	"github.com/quickprintz/storefront/internal/service"

	"github.com/gin-gonic/gin"
)

// ContactRequest 联系表单请求
// 验证码既可平铺在表单中，也可放在 captcha_payload 里
type ContactRequest struct {
	service.ContactInput
	CaptchaPayload handlershared.CaptchaPayloadRequest `json:"captcha_payload"`
}

// SubmitContact 提交联系表单
func (h *Handler) SubmitContact(c *gin.Context) {
	if h.ContactService == nil {
		respondError(c, response.CodeServiceUnavailable, "error.contact_submit_failed", nil)
		return
	}
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	input := req.ContactInput
	if payload := req.CaptchaPayload.ToServicePayload(); payload.CaptchaID != "" {
		input.CaptchaID = payload.CaptchaID
		input.CaptchaCode = payload.CaptchaCode
	}
	submission, err := h.ContactService.Submit(c.Request.Context(), input, c.ClientIP())
	if err != nil {
		respondContactError(c, err)
		return
	}
	response.Success(c, gin.H{
		"id":     submission.ID,
		"status": submission.Status,
	})
}
