package works

import (
	"context"

	"github.com/anoixa/daijo-gallery/internal/gallery"
)

// Gallery 画廊查询接口
type Gallery interface {
	ListWorks(ctx context.Context, q gallery.ListQuery) gallery.WorkPage
	ListFeatured(ctx context.Context) []gallery.WorkSummary
	GetWork(ctx context.Context, id uint) *gallery.WorkDetail
	ListRelated(ctx context.Context, id uint, tagIDs []uint) []gallery.RelatedWork
	ListTags(ctx context.Context) []gallery.Tag
}

// Handler 作品处理器
type Handler struct {
	gallery Gallery
}

// NewHandler 创建新的作品处理器
func NewHandler(g Gallery) *Handler {
	return &Handler{gallery: g}
}
