package artist

import (
	"github.com/anoixa/daijo-gallery/api/common"
	"github.com/anoixa/daijo-gallery/internal/artist"
	"github.com/gin-gonic/gin"
)

// ProfileSource 作者介绍来源
type ProfileSource interface {
	Profile() artist.Profile
}

// Handler 作者介绍处理器
type Handler struct {
	source ProfileSource
}

// NewHandler 创建新的作者介绍处理器
func NewHandler(source ProfileSource) *Handler {
	return &Handler{source: source}
}

// GetProfile 获取作者介绍
func (h *Handler) GetProfile(c *gin.Context) {
	common.RespondSuccess(c, h.source.Profile())
}
