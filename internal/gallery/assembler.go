package gallery

import (
	"context"
	"runtime"

	"github.com/anoixa/daijo-gallery/database/models"
	"github.com/anoixa/daijo-gallery/internal/imageurl"
	"github.com/anoixa/daijo-gallery/internal/placeholder"
	"golang.org/x/sync/errgroup"
)

// BlurGenerator 模糊占位图生成接口，失败时自行返回占位图
type BlurGenerator interface {
	Generate(ctx context.Context, imageURL string) string
}

// Assembler 将数据库行转换为视图模型
// 每行的图片 URL 与占位图并发计算，结果按原顺序返回
type Assembler struct {
	resolver    *imageurl.Resolver
	blur        BlurGenerator
	concurrency int
}

// NewAssembler 创建视图组装器，concurrency <= 0 时使用 CPU 线程数 * 4
func NewAssembler(resolver *imageurl.Resolver, blur BlurGenerator, concurrency int) *Assembler {
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0) * 4
	}
	return &Assembler{
		resolver:    resolver,
		blur:        blur,
		concurrency: concurrency,
	}
}

// Summaries 组装作品列表项
func (a *Assembler) Summaries(ctx context.Context, rows []models.Work) []WorkSummary {
	return mapOrdered(a.concurrency, rows, func(work models.Work) WorkSummary {
		imageURL, blurDataURL := a.image(ctx, work.ImagePath)
		return WorkSummary{
			ID:          work.ID,
			Title:       work.Title,
			Year:        work.Year,
			ImageURL:    imageURL,
			BlurDataURL: blurDataURL,
			TagIDs:      work.TagIDs(),
		}
	})
}

// Related 组装相关作品
func (a *Assembler) Related(ctx context.Context, rows []models.Work) []RelatedWork {
	return mapOrdered(a.concurrency, rows, func(work models.Work) RelatedWork {
		imageURL, blurDataURL := a.image(ctx, work.ImagePath)
		return RelatedWork{
			ID:          work.ID,
			Title:       work.Title,
			ImageURL:    imageURL,
			BlurDataURL: blurDataURL,
		}
	})
}

// Detail 组装作品详情，主图与过程图并发处理
func (a *Assembler) Detail(ctx context.Context, work *models.Work, images []models.WorkImage) *WorkDetail {
	detail := &WorkDetail{
		ID:          work.ID,
		Title:       work.Title,
		Description: work.Description,
		Year:        work.Year,
		Tags:        Tags(work.Tags),
	}

	var g errgroup.Group
	g.Go(func() error {
		detail.ImageURL, detail.BlurDataURL = a.image(ctx, work.ImagePath)
		return nil
	})
	g.Go(func() error {
		detail.ProcessImages = mapOrdered(a.concurrency, images, func(img models.WorkImage) ProcessImage {
			return ProcessImage{
				ID:        img.ID,
				ImageURL:  a.resolver.Resolve(img.ImagePath),
				Caption:   img.Caption,
				SortOrder: img.SortOrder,
			}
		})
		return nil
	})
	_ = g.Wait()

	return detail
}

// Tags 转换标签
func Tags(tags []models.Tag) []Tag {
	result := make([]Tag, 0, len(tags))
	for _, tag := range tags {
		result = append(result, Tag{ID: tag.ID, Name: tag.Name})
	}
	return result
}

func (a *Assembler) image(ctx context.Context, path string) (string, string) {
	imageURL := a.resolver.Resolve(path)
	if a.blur == nil {
		return imageURL, placeholder.BlurDataURL
	}
	return imageURL, a.blur.Generate(ctx, imageURL)
}

// mapOrdered 并发映射，结果按下标写回以保持输入顺序
func mapOrdered[In, Out any](limit int, in []In, fn func(In) Out) []Out {
	out := make([]Out, len(in))
	if len(in) == 0 {
		return out
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for i := range in {
		g.Go(func() error {
			out[i] = fn(in[i])
			return nil
		})
	}
	_ = g.Wait()

	return out
}
