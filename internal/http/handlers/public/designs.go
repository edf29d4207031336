package public

import (
	"github.com/quickprintz/storefront/internal/assets"
	"github.com/quickprintz/storefront/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ListDesigns 画廊列表，支持 search/category/style/color 筛选
func (h *Handler) ListDesigns(c *gin.Context) {
	if h.GalleryService == nil {
		respondError(c, response.CodeServiceUnavailable, "error.designs_unavailable", nil)
		return
	}
	var query assets.Query
	if err := c.ShouldBindQuery(&query); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	listing, err := h.GalleryService.List(c.Request.Context(), query)
	if err != nil {
		respondDesignError(c, err)
		return
	}
	response.Success(c, listing)
}

// RefreshDesigns 立即重新列举画廊
func (h *Handler) RefreshDesigns(c *gin.Context) {
	if h.GalleryService == nil {
		respondError(c, response.CodeServiceUnavailable, "error.designs_unavailable", nil)
		return
	}
	entry, err := h.GalleryService.Refresh(c.Request.Context())
	if err != nil {
		respondDesignError(c, err)
		return
	}
	requestLog(c).Infow("designs_refreshed", "count", len(entry.Assets))
	response.Success(c, gin.H{
		"count":      len(entry.Assets),
		"fetched_at": entry.FetchedAt,
	})
}
