package public

import (
	"errors"

	handlershared "github.com/quickprintz/storefront/internal/http/handlers/shared"
	"github.com/quickprintz/storefront/internal/http/response"
	"github.com/quickprintz/storefront/internal/pricing"
	"github.com/quickprintz/storefront/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

// 具体原因优先于外层的 ErrPricingConfigInvalid
var pricingErrorRules = []mappedHandlerError{
	{target: pricing.ErrUnknownOption, code: response.CodeBadRequest, key: "error.pricing_option_unknown"},
	{target: pricing.ErrInvalidQuantity, code: response.CodeBadRequest, key: "error.pricing_quantity_invalid"},
	{target: pricing.ErrUnknownKind, code: response.CodeBadRequest, key: "error.pricing_config_invalid"},
	{target: service.ErrPricingConfigInvalid, code: response.CodeBadRequest, key: "error.pricing_config_invalid"},
}

var designErrorRules = []mappedHandlerError{
	{target: service.ErrDesignNotFound, code: response.CodeNotFound, key: "error.design_not_found"},
}

var captchaErrorRules = []mappedHandlerError{
	{target: service.ErrCaptchaRequired, code: response.CodeBadRequest, key: "error.captcha_required"},
	{target: service.ErrCaptchaInvalid, code: response.CodeBadRequest, key: "error.captcha_invalid"},
	{target: service.ErrCaptchaConfigInvalid, code: response.CodeBadRequest, key: "error.captcha_unavailable"},
}

func respondPricingError(c *gin.Context, err error) {
	respondWithMappedError(c, err, pricingErrorRules, response.CodeInternal, "error.cart_update_failed")
}

func respondDesignError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrDesignsUnavailable) {
		respondError(c, response.CodeServiceUnavailable, "error.designs_fetch_failed", err)
		return
	}
	respondWithMappedError(c, err, designErrorRules, response.CodeInternal, "error.designs_fetch_failed")
}

func respondCartItemError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrCartItemInvalid) {
		handlershared.RespondValidationError(c, "error.cart_item_invalid", err)
		return
	}
	respondWithMappedError(c, err, pricingErrorRules, response.CodeInternal, "error.cart_update_failed")
}

func respondContactError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrContactInvalid) {
		handlershared.RespondValidationError(c, "error.contact_invalid", err)
		return
	}
	respondWithMappedError(c, err, captchaErrorRules, response.CodeInternal, "error.contact_submit_failed")
}

func respondCaptchaError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(captchaErrorRules), response.CodeInternal, "error.captcha_generate_failed")
}
