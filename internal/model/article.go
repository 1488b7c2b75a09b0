package model

import "time"

// Article 新闻文章元数据，slug 即新闻源的 article_id
type Article struct {
	Slug        string    `gorm:"primaryKey;type:varchar(191)" json:"slug"`
	Title       string    `gorm:"type:text;not null" json:"title"`
	Description *string   `gorm:"type:text" json:"description"`
	ImageURL    *string   `gorm:"column:image_url;type:text" json:"imageUrl"`
	SourceName  *string   `gorm:"type:text" json:"sourceName"`
	SourceLink  *string   `gorm:"type:text" json:"sourceLink"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// 删除文章时级联删除增强内容
	Enhancement *ArticleEnhancement `gorm:"foreignKey:Slug;references:Slug;constraint:OnDelete:CASCADE" json:"-"`
}

func (Article) TableName() string {
	return "articles"
}
