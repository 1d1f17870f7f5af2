package models

import "time"

// FeaturedTagID 精选作品使用的保留标签 ID
// 精选状态仅由 works_tags 中的关联行表示，删除该关联即会取消精选
const FeaturedTagID uint = 1

// Work 作品
type Work struct {
	ID          uint      `gorm:"primaryKey"`
	Title       string    `gorm:"type:varchar(255);not null"`
	Description *string   `gorm:"type:text"`
	Year        *string   `gorm:"type:varchar(32)"`
	ImagePath   string    `gorm:"column:img_path;type:varchar(512);not null;default:''"`
	Status      bool      `gorm:"not null;default:false;index"`
	CreatedAt   time.Time `gorm:"index"`
	UpdatedAt   time.Time

	Tags []Tag `gorm:"many2many:works_tags;"`
}

func (Work) TableName() string {
	return "works"
}

// TagIDs 返回作品关联的标签 ID
func (w *Work) TagIDs() []uint {
	ids := make([]uint, 0, len(w.Tags))
	for _, tag := range w.Tags {
		ids = append(ids, tag.ID)
	}
	return ids
}

// Tag 标签
type Tag struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"column:tag_name;type:varchar(100);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Tag) TableName() string {
	return "tags"
}

// WorkTag 作品与标签的关联表
type WorkTag struct {
	WorkID uint `gorm:"primaryKey"`
	TagID  uint `gorm:"primaryKey;index"`
}

func (WorkTag) TableName() string {
	return "works_tags"
}
