package models

import "time"

// WorkImageTypeProcess 制作过程图
const WorkImageTypeProcess = "process"

// WorkImage 作品附属图片
type WorkImage struct {
	ID        uint      `gorm:"primaryKey"`
	WorkID    uint      `gorm:"not null;index"`
	Type      string    `gorm:"type:varchar(32);not null;default:'process'"`
	ImagePath string    `gorm:"column:img_path;type:varchar(512);not null"`
	SortOrder int       `gorm:"not null;default:0"`
	Caption   *string   `gorm:"type:text"`
	CreatedAt time.Time
}

func (WorkImage) TableName() string {
	return "work_images"
}
