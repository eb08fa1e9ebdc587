package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ArticleKindBlog     = "blog"
	ArticleKindRelease  = "release"
	ArticleKindResearch = "research"
)

const (
	ArticleStatusDraft     = "draft"
	ArticleStatusPublished = "published"
)

type Article struct {
	ID          string     `gorm:"type:text;primaryKey" json:"id"`
	Kind        string     `gorm:"not null;index" json:"kind"`
	Title       string     `gorm:"not null" json:"title"`
	Slug        string     `gorm:"not null;uniqueIndex:idx_articles_slug" json:"slug"`
	Summary     string     `json:"summary"`
	Content     string     `json:"content"`
	Category    string     `gorm:"index" json:"category"`
	Tags        string     `json:"-"`
	Author      string     `json:"author"`
	Status      string     `gorm:"not null;default:draft;index" json:"status"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
}

func (a *Article) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.Status == "" {
		a.Status = ArticleStatusDraft
	}
	return nil
}

// Tags are stored comma-separated; the surrounding commas make LIKE '%,tag,%' exact.
func (a *Article) TagList() []string {
	trimmed := strings.Trim(a.Tags, ",")
	if trimmed == "" {
		return []string{}
	}
	return strings.Split(trimmed, ",")
}

func (a *Article) SetTagList(tags []string) {
	if len(tags) == 0 {
		a.Tags = ""
		return
	}
	a.Tags = "," + strings.Join(tags, ",") + ","
}

func (a *Article) IsPublished() bool {
	return a.Status == ArticleStatusPublished
}

func IsValidArticleKind(kind string) bool {
	switch kind {
	case ArticleKindBlog, ArticleKindRelease, ArticleKindResearch:
		return true
	default:
		return false
	}
}
