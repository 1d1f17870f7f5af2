// Package works 提供作品目录的只读查询
package works

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anoixa/daijo-gallery/database"
	"github.com/anoixa/daijo-gallery/database/models"
	"gorm.io/gorm"
)

// Filter 作品列表的公共过滤条件
// IDs 为 nil 表示不按 ID 过滤；非 nil 的空切片不匹配任何作品
type Filter struct {
	Query string
	IDs   []uint
}

// Repository 作品仓库
type Repository struct {
	db database.Provider
}

// NewRepository 创建作品仓库
func NewRepository(db database.Provider) *Repository {
	return &Repository{db: db}
}

// likeEscaper 转义 LIKE 通配符
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// applyFilters 计数查询与分页查询共用的过滤条件
func (r *Repository) applyFilters(db *gorm.DB, filter Filter) *gorm.DB {
	db = db.Where("works.status = ?", true)

	if q := strings.TrimSpace(filter.Query); q != "" {
		pattern := "%" + likeEscaper.Replace(q) + "%"
		if r.db.Name() == "postgres" {
			db = db.Where(`works.title ILIKE ? ESCAPE '\'`, pattern)
		} else {
			// SQLite 的 LIKE 只对 ASCII 大小写不敏感，"É" 与 "é" 视为不同字符
			// LOWER() 同样只处理 ASCII，开发环境接受这一差异，生产环境使用 postgres ILIKE
			db = db.Where(`works.title LIKE ? ESCAPE '\'`, pattern)
		}
	}

	if filter.IDs != nil {
		db = db.Where("works.id IN ?", filter.IDs)
	}

	return db
}

// WorkIDsByTag 获取带有指定标签的作品 ID
func (r *Repository) WorkIDsByTag(ctx context.Context, tagID uint) ([]uint, error) {
	ids := make([]uint, 0)
	err := r.db.WithContext(ctx).
		Model(&models.WorkTag{}).
		Where("tag_id = ?", tagID).
		Pluck("work_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query works_tags for tag %d: %w", tagID, err)
	}
	return ids, nil
}

// CountWorks 统计符合条件的公开作品数量
func (r *Repository) CountWorks(ctx context.Context, filter Filter) (int64, error) {
	var total int64
	db := r.applyFilters(r.db.WithContext(ctx).Model(&models.Work{}), filter)
	if err := db.Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count works: %w", err)
	}
	return total, nil
}

// FindWorks 按创建时间倒序获取符合条件的公开作品
func (r *Repository) FindWorks(ctx context.Context, filter Filter, offset, limit int) ([]models.Work, error) {
	var workList []models.Work

	db := r.applyFilters(r.db.WithContext(ctx).Model(&models.Work{}), filter)
	err := db.Preload("Tags", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("tags.id asc")
	}).
		Order("works.created_at desc").
		Order("works.id desc").
		Offset(offset).
		Limit(limit).
		Find(&workList).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find works: %w", err)
	}
	return workList, nil
}

// GetVisibleWork 获取公开作品详情，不存在或未公开时返回 nil
func (r *Repository) GetVisibleWork(ctx context.Context, id uint) (*models.Work, error) {
	var work models.Work
	err := r.db.WithContext(ctx).
		Preload("Tags", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("tags.id asc")
		}).
		Where("works.id = ? AND works.status = ?", id, true).
		First(&work).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get work %d: %w", id, err)
	}
	return &work, nil
}

// RelatedWorkIDs 获取与指定标签相关的其他作品 ID
func (r *Repository) RelatedWorkIDs(ctx context.Context, workID uint, tagIDs []uint, limit int) ([]uint, error) {
	ids := make([]uint, 0)
	if len(tagIDs) == 0 {
		return ids, nil
	}

	err := r.db.WithContext(ctx).
		Model(&models.WorkTag{}).
		Distinct("work_id").
		Where("tag_id IN ?", tagIDs).
		Where("work_id <> ?", workID).
		Limit(limit).
		Pluck("work_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query related work ids for %d: %w", workID, err)
	}
	return ids, nil
}

// ListProcessImages 获取作品的制作过程图
func (r *Repository) ListProcessImages(ctx context.Context, workID uint) ([]models.WorkImage, error) {
	var images []models.WorkImage
	err := r.db.WithContext(ctx).
		Where("work_id = ? AND type = ?", workID, models.WorkImageTypeProcess).
		Order("sort_order asc").
		Order("id asc").
		Find(&images).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list process images for work %d: %w", workID, err)
	}
	return images, nil
}

// ListTags 获取全部标签
func (r *Repository) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := r.db.WithContext(ctx).Order("id asc").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}
