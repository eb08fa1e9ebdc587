package articles

import (
	"github.com/akeren/landing-api/internal/models"
	"github.com/akeren/landing-api/pkg/constants"
)

type ArticleRequest struct {
	Kind     string   `json:"kind" binding:"required,oneof=blog release research"`
	Title    string   `json:"title" binding:"required,min=1,max=255"`
	Slug     string   `json:"slug" binding:"omitempty,max=255"`
	Summary  string   `json:"summary" binding:"omitempty,max=1000"`
	Content  string   `json:"content"`
	Category string   `json:"category" binding:"omitempty,max=100"`
	Tags     []string `json:"tags" binding:"omitempty,max=20,dive,max=50"`
	Author   string   `json:"author" binding:"omitempty,max=255"`
	Status   string   `json:"status" binding:"omitempty,oneof=draft published"`
}

type ArticleResponse struct {
	ID          string   `json:"id"`
	Kind        string   `json:"kind"`
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	Summary     string   `json:"summary"`
	Content     string   `json:"content"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Author      string   `json:"author"`
	Status      string   `json:"status"`
	PublishedAt *string  `json:"published_at"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

type ListArticlesQuery struct {
	Kind     string
	Category string
	Tag      string
	Status   string
	Page     int
	Limit    int
}

type ArticleListResponse struct {
	Items   []ArticleResponse `json:"items"`
	Total   int64             `json:"total"`
	Page    int               `json:"page"`
	PerPage int               `json:"per_page"`
	Pages   int               `json:"pages"`
	HasNext bool              `json:"has_next"`
	HasPrev bool              `json:"has_prev"`
}

// ========================================
// Mappers
// ========================================

func ToArticleResponse(article *models.Article) ArticleResponse {
	if article == nil {
		return ArticleResponse{}
	}

	resp := ArticleResponse{
		ID:        article.ID,
		Kind:      article.Kind,
		Title:     article.Title,
		Slug:      article.Slug,
		Summary:   article.Summary,
		Content:   article.Content,
		Category:  article.Category,
		Tags:      article.TagList(),
		Author:    article.Author,
		Status:    article.Status,
		CreatedAt: article.CreatedAt.Format(constants.RFC3339DateTimeFormat),
		UpdatedAt: article.UpdatedAt.Format(constants.RFC3339DateTimeFormat),
	}
	if article.PublishedAt != nil {
		published := article.PublishedAt.Format(constants.RFC3339DateTimeFormat)
		resp.PublishedAt = &published
	}
	return resp
}

func ToArticleListResponse(articles []*models.Article, total int64, page, limit int) ArticleListResponse {
	items := make([]ArticleResponse, 0, len(articles))
	for _, article := range articles {
		items = append(items, ToArticleResponse(article))
	}

	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}

	return ArticleListResponse{
		Items:   items,
		Total:   total,
		Page:    page,
		PerPage: limit,
		Pages:   pages,
		HasNext: page < pages,
		HasPrev: page > 1,
	}
}
