package articles

import (
	"context"
	"strings"
	"time"

	"github.com/akeren/landing-api/internal/log"
	"github.com/akeren/landing-api/internal/models"
	apperrors "github.com/akeren/landing-api/pkg/errors"
	"github.com/akeren/landing-api/pkg/utils"
)

type ArticleService interface {
	CreateArticle(ctx context.Context, req *ArticleRequest) (*ArticleResponse, error)
	GetArticle(ctx context.Context, id string) (*ArticleResponse, error)
	// UpdateArticle replaces the article's fields. An empty slug keeps the current one.
	UpdateArticle(ctx context.Context, id string, req *ArticleRequest) (*ArticleResponse, error)
	DeleteArticle(ctx context.Context, id string) error
	ListArticles(ctx context.Context, query ListArticlesQuery) (*ArticleListResponse, error)

	// ListPublished and GetPublishedBySlug never expose drafts.
	ListPublished(ctx context.Context, query ListArticlesQuery) (*ArticleListResponse, error)
	GetPublishedBySlug(ctx context.Context, slug string) (*ArticleResponse, error)

	ListCategories(ctx context.Context) ([]string, error)
	ListTags(ctx context.Context) ([]string, error)
}

type articleService struct {
	logger     *log.Logger
	repository ArticleRepository
	now        func() time.Time
}

func NewArticleService(logger *log.Logger, repository ArticleRepository) ArticleService {
	return &articleService{
		logger:     logger.WithScope("articles"),
		repository: repository,
		now:        time.Now,
	}
}

func (s *articleService) CreateArticle(ctx context.Context, req *ArticleRequest) (*ArticleResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if req == nil {
		return nil, apperrors.NewInvalidRequestError("request cannot be nil", nil)
	}

	article := &models.Article{}
	if err := s.apply(article, req); err != nil {
		return nil, err
	}

	created, err := s.repository.Create(ctx, article)
	if err != nil {
		logger.Error("Failed to create article", "slug", article.Slug, "error", err)
		return nil, err
	}

	logger.Info("Article created", "id", created.ID, "slug", created.Slug, "status", created.Status)
	resp := ToArticleResponse(created)
	return &resp, nil
}

func (s *articleService) GetArticle(ctx context.Context, id string) (*ArticleResponse, error) {
	article, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := ToArticleResponse(article)
	return &resp, nil
}

func (s *articleService) UpdateArticle(ctx context.Context, id string, req *ArticleRequest) (*ArticleResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if req == nil {
		return nil, apperrors.NewInvalidRequestError("request cannot be nil", nil)
	}

	article, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.apply(article, req); err != nil {
		return nil, err
	}
	article.UpdatedAt = s.now().UTC()

	if err := s.repository.Update(ctx, article); err != nil {
		logger.Error("Failed to update article", "id", id, "error", err)
		return nil, err
	}

	logger.Info("Article updated", "id", id, "status", article.Status)
	resp := ToArticleResponse(article)
	return &resp, nil
}

// apply copies req onto article, deriving the slug and stamping the first publication.
func (s *articleService) apply(article *models.Article, req *ArticleRequest) error {
	if !models.IsValidArticleKind(req.Kind) {
		return apperrors.NewInvalidRequestError("Unknown article kind: "+req.Kind, ErrUnknownKind)
	}

	switch {
	case strings.TrimSpace(req.Slug) != "":
		article.Slug = utils.Slugify(req.Slug)
	case article.Slug == "":
		article.Slug = utils.Slugify(req.Title)
	}
	if article.Slug == "" {
		return apperrors.NewInvalidRequestError("Title or slug must contain letters or digits", ErrEmptySlug)
	}

	article.Kind = req.Kind
	article.Title = strings.TrimSpace(req.Title)
	article.Summary = req.Summary
	article.Content = req.Content
	article.Category = strings.TrimSpace(req.Category)
	article.Author = strings.TrimSpace(req.Author)
	article.SetTagList(utils.NormalizeTags(req.Tags))

	article.Status = req.Status
	if article.Status == "" {
		article.Status = models.ArticleStatusDraft
	}
	if article.IsPublished() && article.PublishedAt == nil {
		published := s.now().UTC()
		article.PublishedAt = &published
	}

	return nil
}

func (s *articleService) DeleteArticle(ctx context.Context, id string) error {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if err := s.repository.Delete(ctx, id); err != nil {
		logger.Error("Failed to delete article", "id", id, "error", err)
		return err
	}

	logger.Info("Article deleted", "id", id)
	return nil
}

func (s *articleService) ListArticles(ctx context.Context, query ListArticlesQuery) (*ArticleListResponse, error) {
	if query.Status != "" && query.Status != models.ArticleStatusDraft && query.Status != models.ArticleStatusPublished {
		return nil, apperrors.NewInvalidRequestError("Unknown status filter", nil)
	}
	return s.list(ctx, query, false)
}

func (s *articleService) ListPublished(ctx context.Context, query ListArticlesQuery) (*ArticleListResponse, error) {
	return s.list(ctx, query, true)
}

func (s *articleService) list(ctx context.Context, query ListArticlesQuery, publishedOnly bool) (*ArticleListResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if query.Kind != "" && !models.IsValidArticleKind(query.Kind) {
		return nil, apperrors.NewInvalidRequestError("Unknown article kind: "+query.Kind, ErrUnknownKind)
	}
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit < 1 {
		return nil, apperrors.NewInvalidRequestError("limit must be positive", nil)
	}

	tag := ""
	if normalized := utils.NormalizeTags([]string{query.Tag}); len(normalized) == 1 {
		tag = normalized[0]
	}

	articles, total, err := s.repository.List(ctx, ArticleFilter{
		Kind:          query.Kind,
		Category:      strings.TrimSpace(query.Category),
		Tag:           tag,
		Status:        query.Status,
		PublishedOnly: publishedOnly,
		Limit:         query.Limit,
		Offset:        (query.Page - 1) * query.Limit,
	})
	if err != nil {
		logger.Error("Failed to list articles", "error", err)
		return nil, err
	}

	resp := ToArticleListResponse(articles, total, query.Page, query.Limit)
	return &resp, nil
}

func (s *articleService) GetPublishedBySlug(ctx context.Context, slug string) (*ArticleResponse, error) {
	article, err := s.repository.FindBySlug(ctx, utils.Slugify(slug))
	if err != nil {
		return nil, err
	}

	if !article.IsPublished() {
		return nil, apperrors.NewNotFoundError("Article not found", ErrArticleNotFound)
	}

	resp := ToArticleResponse(article)
	return &resp, nil
}

func (s *articleService) ListCategories(ctx context.Context) ([]string, error) {
	return s.repository.ListCategories(ctx)
}

func (s *articleService) ListTags(ctx context.Context) ([]string, error) {
	return s.repository.ListTags(ctx)
}
