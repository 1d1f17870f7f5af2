package gallery

// WorkSummary 作品列表项
type WorkSummary struct {
	ID          uint    `json:"id"`
	Title       string  `json:"title"`
	Year        *string `json:"year"`
	ImageURL    string  `json:"imageUrl"`
	BlurDataURL string  `json:"blurDataUrl"`
	TagIDs      []uint  `json:"tagIds"`
}

// WorkDetail 作品详情
type WorkDetail struct {
	ID            uint           `json:"id"`
	Title         string         `json:"title"`
	Description   *string        `json:"description"`
	Year          *string        `json:"year"`
	ImageURL      string         `json:"imageUrl"`
	BlurDataURL   string         `json:"blurDataUrl"`
	Tags          []Tag          `json:"tags"`
	ProcessImages []ProcessImage `json:"processImages"`
}

// TagIDs 返回详情中的标签 ID
func (d *WorkDetail) TagIDs() []uint {
	ids := make([]uint, 0, len(d.Tags))
	for _, tag := range d.Tags {
		ids = append(ids, tag.ID)
	}
	return ids
}

// ProcessImage 制作过程图
type ProcessImage struct {
	ID        uint    `json:"id"`
	ImageURL  string  `json:"imageUrl"`
	Caption   *string `json:"caption"`
	SortOrder int     `json:"sortOrder"`
}

// RelatedWork 相关作品
type RelatedWork struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	ImageURL    string `json:"imageUrl"`
	BlurDataURL string `json:"blurDataUrl"`
}

// WorkPage 分页后的作品列表
type WorkPage struct {
	Works      []WorkSummary `json:"works"`
	TotalPages int           `json:"totalPages"`
	Page       int           `json:"page"`
}

// Tag 标签
type Tag struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func emptyPage(page int) WorkPage {
	return WorkPage{
		Works:      []WorkSummary{},
		TotalPages: 0,
		Page:       page,
	}
}
