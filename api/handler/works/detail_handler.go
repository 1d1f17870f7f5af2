package works

import (
	"net/http"
	"strconv"

	"github.com/anoixa/daijo-gallery/api/common"
	"github.com/anoixa/daijo-gallery/internal/gallery"
	"github.com/gin-gonic/gin"
)

// WorkDetailResponse 作品详情响应
type WorkDetailResponse struct {
	Work    *gallery.WorkDetail   `json:"work"`
	Related []gallery.RelatedWork `json:"related"`
}

// GetWork 获取作品详情及相关作品
func (h *Handler) GetWork(c *gin.Context) {
	id, ok := parseWorkID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	detail := h.gallery.GetWork(ctx, id)
	if detail == nil {
		common.RespondError(c, http.StatusNotFound, "Work not found")
		return
	}

	common.RespondSuccess(c, WorkDetailResponse{
		Work:    detail,
		Related: h.gallery.ListRelated(ctx, id, detail.TagIDs()),
	})
}

// ListRelated 获取相关作品
func (h *Handler) ListRelated(c *gin.Context) {
	id, ok := parseWorkID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	detail := h.gallery.GetWork(ctx, id)
	if detail == nil {
		common.RespondError(c, http.StatusNotFound, "Work not found")
		return
	}

	common.RespondSuccess(c, h.gallery.ListRelated(ctx, id, detail.TagIDs()))
}

// parseWorkID 解析作品 ID，非法 ID 按不存在处理
func parseWorkID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		common.RespondError(c, http.StatusNotFound, "Work not found")
		return 0, false
	}
	return uint(id), true
}
