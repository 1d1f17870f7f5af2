// Package gallery 作品查询、分页、缓存与视图组装
package gallery

import (
	"context"
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/anoixa/daijo-gallery/cache"
	"github.com/anoixa/daijo-gallery/database/models"
	"github.com/anoixa/daijo-gallery/database/repo/works"
	"github.com/anoixa/daijo-gallery/utils"
	"golang.org/x/sync/errgroup"
)

const (
	// MaxPage 页码上限
	MaxPage = 1000

	// DefaultPerPage 默认每页数量
	DefaultPerPage = 12

	// MaxPerPage 每页数量上限
	MaxPerPage = 100

	// FeaturedLimit 首页精选作品数量
	FeaturedLimit = 3

	// RelatedCandidateLimit 相关作品候选 ID 数量
	RelatedCandidateLimit = 20

	// RelatedLimit 相关作品数量
	RelatedLimit = 4
)

// 缓存失效标签
const (
	TagWorks = "works"
	TagTags  = "tags"
)

var workTagKey = cache.NewKeyBuilder("work").WithSeparator("-")

// WorkTag 单个作品的失效标签，形如 work-7
func WorkTag(id uint) string {
	return workTagKey.BuildID(id)
}

// WorkRepository 作品仓库接口
type WorkRepository interface {
	WorkIDsByTag(ctx context.Context, tagID uint) ([]uint, error)
	CountWorks(ctx context.Context, filter works.Filter) (int64, error)
	FindWorks(ctx context.Context, filter works.Filter, offset, limit int) ([]models.Work, error)
	GetVisibleWork(ctx context.Context, id uint) (*models.Work, error)
	RelatedWorkIDs(ctx context.Context, workID uint, tagIDs []uint, limit int) ([]uint, error)
	ListProcessImages(ctx context.Context, workID uint) ([]models.WorkImage, error)
	ListTags(ctx context.Context) ([]models.Tag, error)
}

// ListQuery 作品列表查询参数
type ListQuery struct {
	Page    int
	PerPage int
	Query   string
	TagID   *uint
}

// Service 画廊查询服务
// 所有方法在后端失败时记录日志并返回空结果，不向调用方返回错误
type Service struct {
	repo           WorkRepository
	assembler      *Assembler
	results        *cache.ResultCache
	defaultPerPage int
}

// NewService 创建画廊服务，results 为 nil 时不缓存
func NewService(repo WorkRepository, assembler *Assembler, results *cache.ResultCache, defaultPerPage int) *Service {
	if defaultPerPage <= 0 {
		defaultPerPage = DefaultPerPage
	}
	if defaultPerPage > MaxPerPage {
		defaultPerPage = MaxPerPage
	}
	return &Service{
		repo:           repo,
		assembler:      assembler,
		results:        results,
		defaultPerPage: defaultPerPage,
	}
}

// Normalize 修正分页参数
func (s *Service) Normalize(q ListQuery) ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Page > MaxPage {
		q.Page = MaxPage
	}
	if q.PerPage < 1 {
		q.PerPage = s.defaultPerPage
	}
	if q.PerPage > MaxPerPage {
		q.PerPage = MaxPerPage
	}
	q.Query = strings.TrimSpace(q.Query)
	return q
}

// ListWorks 分页查询公开作品
func (s *Service) ListWorks(ctx context.Context, q ListQuery) WorkPage {
	q = s.Normalize(q)

	entry := cache.Entry{
		Op:     "works.list",
		Params: []string{strconv.Itoa(q.Page), strconv.Itoa(q.PerPage), q.Query, optionalID(q.TagID)},
		Tags:   []string{TagWorks},
	}
	page, err := cache.Remember(ctx, s.results, entry, func(ctx context.Context) (WorkPage, error) {
		return s.listWorks(ctx, q)
	})
	if err != nil {
		s.logFailure(ctx, "list works (q="+utils.SanitizeLogMessage(q.Query)+")", err)
		return emptyPage(q.Page)
	}
	return page
}

func (s *Service) listWorks(ctx context.Context, q ListQuery) (WorkPage, error) {
	filter := works.Filter{Query: q.Query}
	if q.TagID != nil {
		ids, err := s.repo.WorkIDsByTag(ctx, *q.TagID)
		if err != nil {
			return WorkPage{}, err
		}
		if len(ids) == 0 {
			return emptyPage(q.Page), nil
		}
		filter.IDs = ids
	}

	var (
		total int64
		rows  []models.Work
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.repo.CountWorks(gctx, filter)
		total = n
		return err
	})
	g.Go(func() error {
		result, err := s.repo.FindWorks(gctx, filter, (q.Page-1)*q.PerPage, q.PerPage)
		rows = result
		return err
	})
	if err := g.Wait(); err != nil {
		return WorkPage{}, err
	}

	return WorkPage{
		Works:      s.assembler.Summaries(ctx, rows),
		TotalPages: TotalPages(total, q.PerPage),
		Page:       q.Page,
	}, nil
}

// ListFeatured 获取首页精选作品
func (s *Service) ListFeatured(ctx context.Context) []WorkSummary {
	entry := cache.Entry{
		Op:     "works.featured",
		Params: []string{strconv.FormatUint(uint64(models.FeaturedTagID), 10), strconv.Itoa(FeaturedLimit)},
		Tags:   []string{TagWorks},
	}
	summaries, err := cache.Remember(ctx, s.results, entry, func(ctx context.Context) ([]WorkSummary, error) {
		ids, err := s.repo.WorkIDsByTag(ctx, models.FeaturedTagID)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return []WorkSummary{}, nil
		}

		rows, err := s.repo.FindWorks(ctx, works.Filter{IDs: ids}, 0, FeaturedLimit)
		if err != nil {
			return nil, err
		}
		return s.assembler.Summaries(ctx, rows), nil
	})
	if err != nil {
		s.logFailure(ctx, "list featured works", err)
		return []WorkSummary{}
	}
	return summaries
}

// GetWork 获取作品详情，不存在、未公开或查询失败时返回 nil
func (s *Service) GetWork(ctx context.Context, id uint) *WorkDetail {
	entry := cache.Entry{
		Op:     "works.detail",
		Params: []string{strconv.FormatUint(uint64(id), 10)},
		Tags:   []string{TagWorks, WorkTag(id)},
	}
	detail, err := cache.Remember(ctx, s.results, entry, func(ctx context.Context) (*WorkDetail, error) {
		work, err := s.repo.GetVisibleWork(ctx, id)
		if err != nil || work == nil {
			return nil, err
		}

		images, err := s.repo.ListProcessImages(ctx, id)
		if err != nil {
			return nil, err
		}
		return s.assembler.Detail(ctx, work, images), nil
	})
	if err != nil {
		s.logFailure(ctx, "get work "+strconv.FormatUint(uint64(id), 10), err)
		return nil
	}
	return detail
}

// ListRelated 获取与指定标签相关的其他作品
func (s *Service) ListRelated(ctx context.Context, id uint, tagIDs []uint) []RelatedWork {
	if len(tagIDs) == 0 {
		return []RelatedWork{}
	}

	sorted := append([]uint(nil), tagIDs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	entry := cache.Entry{
		Op:     "works.related",
		Params: []string{strconv.FormatUint(uint64(id), 10), joinIDs(sorted)},
		Tags:   []string{TagWorks, WorkTag(id)},
	}
	related, err := cache.Remember(ctx, s.results, entry, func(ctx context.Context) ([]RelatedWork, error) {
		ids, err := s.repo.RelatedWorkIDs(ctx, id, sorted, RelatedCandidateLimit)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return []RelatedWork{}, nil
		}

		rows, err := s.repo.FindWorks(ctx, works.Filter{IDs: ids}, 0, RelatedLimit)
		if err != nil {
			return nil, err
		}
		return s.assembler.Related(ctx, rows), nil
	})
	if err != nil {
		s.logFailure(ctx, "list related works of "+strconv.FormatUint(uint64(id), 10), err)
		return []RelatedWork{}
	}
	return related
}

// ListTags 获取全部标签
func (s *Service) ListTags(ctx context.Context) []Tag {
	entry := cache.Entry{
		Op:   "tags.list",
		Tags: []string{TagTags},
	}
	tags, err := cache.Remember(ctx, s.results, entry, func(ctx context.Context) ([]Tag, error) {
		rows, err := s.repo.ListTags(ctx)
		if err != nil {
			return nil, err
		}
		return Tags(rows), nil
	})
	if err != nil {
		s.logFailure(ctx, "list tags", err)
		return []Tag{}
	}
	return tags
}

func (s *Service) logFailure(ctx context.Context, op string, err error) {
	if utils.IsClientDisconnect(ctx, err) {
		log.Printf("[Gallery] %s canceled by client", op)
		return
	}
	log.Printf("[Gallery] Failed to %s: %v", op, err)
}

// TotalPages 计算总页数，total 为 0 时返回 0
func TotalPages(total int64, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 0
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}

func optionalID(id *uint) string {
	if id == nil {
		return ""
	}
	return strconv.FormatUint(uint64(*id), 10)
}

func joinIDs(ids []uint) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ",")
}
