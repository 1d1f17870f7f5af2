package works

import (
	"strconv"
	"strings"

	"github.com/anoixa/daijo-gallery/api/common"
	"github.com/anoixa/daijo-gallery/internal/gallery"
	"github.com/gin-gonic/gin"
)

// maxQueryLength 搜索词最大字符数
const maxQueryLength = 100

// ListWorks 分页获取作品列表
// 非整数的 page 视为 1，非整数的 tag 被忽略
func (h *Handler) ListWorks(c *gin.Context) {
	q := gallery.ListQuery{
		Page:    atoiOrZero(c.Query("page")),
		PerPage: atoiOrZero(c.Query("per_page")),
		Query:   truncateRunes(strings.TrimSpace(c.Query("q")), maxQueryLength),
	}
	if raw := c.Query("tag"); raw != "" {
		if tagID, err := strconv.ParseUint(raw, 10, 32); err == nil {
			id := uint(tagID)
			q.TagID = &id
		}
	}

	common.RespondSuccess(c, h.gallery.ListWorks(c.Request.Context(), q))
}

// ListFeatured 获取首页精选作品
func (h *Handler) ListFeatured(c *gin.Context) {
	common.RespondSuccess(c, h.gallery.ListFeatured(c.Request.Context()))
}

// ListTags 获取全部标签
func (h *Handler) ListTags(c *gin.Context) {
	common.RespondSuccess(c, h.gallery.ListTags(c.Request.Context()))
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
