package shared

import (
	"errors"

	"github.com/quickprintz/storefront/internal/http/response"
	"github.com/quickprintz/storefront/internal/i18n"
	"github.com/quickprintz/storefront/internal/logger"
	"github.com/quickprintz/storefront/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 返回国际化错误响应，并在有原始错误时记录日志。
func RespondError(c *gin.Context, code int, key string, err error) {
	locale := i18n.ResolveLocale(c)
	msg := i18n.T(locale, key)
	appErr := response.WrapError(code, msg, err)
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"message", appErr.Message,
			"error", err,
		)
	}
	response.Error(c, appErr.Code, appErr.Message)
}

// RespondErrorWithMsg 返回自定义消息错误响应，并在有原始错误时记录日志。
func RespondErrorWithMsg(c *gin.Context, code int, msg string, err error) {
	appErr := response.WrapError(code, msg, err)
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"message", appErr.Message,
			"error", err,
		)
	}
	response.Error(c, appErr.Code, appErr.Message)
}

// RespondValidationError 返回带字段列表的参数错误，非字段错误按普通错误处理。
func RespondValidationError(c *gin.Context, key string, err error) {
	var fieldErr *service.FieldError
	if !errors.As(err, &fieldErr) {
		RespondError(c, response.CodeBadRequest, key, nil)
		return
	}
	msg := i18n.T(i18n.ResolveLocale(c), key)
	response.ErrorWithData(c, response.CodeBadRequest, msg, gin.H{"fields": fieldErr.Fields})
}
