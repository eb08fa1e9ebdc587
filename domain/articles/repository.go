package articles

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=articles

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/akeren/landing-api/internal/models"
	apperrors "github.com/akeren/landing-api/pkg/errors"
	"gorm.io/gorm"
)

// ArticleFilter narrows a listing. PublishedOnly also switches ordering to publication date.
type ArticleFilter struct {
	Kind          string
	Category      string
	Tag           string
	Status        string
	PublishedOnly bool
	Limit         int
	Offset        int
}

type ArticleRepository interface {
	Create(ctx context.Context, article *models.Article) (*models.Article, error)
	FindByID(ctx context.Context, id string) (*models.Article, error)
	FindBySlug(ctx context.Context, slug string) (*models.Article, error)
	// Update writes every column of article.
	Update(ctx context.Context, article *models.Article) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ArticleFilter) ([]*models.Article, int64, error)
	// ListCategories returns the distinct non-empty categories, sorted.
	ListCategories(ctx context.Context) ([]string, error)
	// ListTags returns the distinct tags across all articles, sorted.
	ListTags(ctx context.Context) ([]string, error)
}

type articleRepository struct {
	db *gorm.DB
}

func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepository{db: db}
}

func (r *articleRepository) Create(ctx context.Context, article *models.Article) (*models.Article, error) {
	if err := r.db.WithContext(ctx).Create(article).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, apperrors.NewConflictError("An article with this slug already exists", ErrSlugTaken)
		}
		return nil, apperrors.NewDatabaseError("unable to create article", err)
	}

	return article, nil
}

func (r *articleRepository) FindByID(ctx context.Context, id string) (*models.Article, error) {
	var article models.Article

	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&article).Error; err != nil {
		return nil, notFoundOrDatabase(err)
	}

	return &article, nil
}

func (r *articleRepository) FindBySlug(ctx context.Context, slug string) (*models.Article, error) {
	var article models.Article

	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&article).Error; err != nil {
		return nil, notFoundOrDatabase(err)
	}

	return &article, nil
}

func (r *articleRepository) Update(ctx context.Context, article *models.Article) error {
	result := r.db.WithContext(ctx).
		Model(&models.Article{}).
		Where("id = ?", article.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(article)

	if result.Error != nil {
		if isDuplicateKey(result.Error) {
			return apperrors.NewConflictError("An article with this slug already exists", ErrSlugTaken)
		}
		return apperrors.NewDatabaseError("unable to update article", result.Error)
	}

	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("Article not found", ErrArticleNotFound)
	}

	return nil
}

func (r *articleRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Article{})

	if result.Error != nil {
		return apperrors.NewDatabaseError("unable to delete article", result.Error)
	}

	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("Article not found", ErrArticleNotFound)
	}

	return nil
}

func (r *articleRepository) List(ctx context.Context, filter ArticleFilter) ([]*models.Article, int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, apperrors.NewDatabaseError("unable to count articles", err)
	}

	query := r.filtered(ctx, filter)
	if filter.PublishedOnly {
		query = query.Order("published_at DESC").Order("created_at DESC")
	} else {
		query = query.Order("created_at DESC")
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}

	var articles []*models.Article
	if err := query.Find(&articles).Error; err != nil {
		return nil, 0, apperrors.NewDatabaseError("unable to fetch articles", err)
	}

	return articles, total, nil
}

func (r *articleRepository) filtered(ctx context.Context, filter ArticleFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Article{})

	if filter.PublishedOnly {
		query = query.Where("status = ?", models.ArticleStatusPublished)
	} else if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Tag != "" {
		query = query.Where("tags LIKE ?", "%,"+filter.Tag+",%")
	}

	return query
}

func (r *articleRepository) ListCategories(ctx context.Context) ([]string, error) {
	var categories []string

	if err := r.db.WithContext(ctx).
		Model(&models.Article{}).
		Where("category <> ?", "").
		Distinct().
		Order("category ASC").
		Pluck("category", &categories).Error; err != nil {
		return nil, apperrors.NewDatabaseError("unable to fetch categories", err)
	}

	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}

func (r *articleRepository) ListTags(ctx context.Context) ([]string, error) {
	var rows []string

	if err := r.db.WithContext(ctx).
		Model(&models.Article{}).
		Where("tags <> ?", "").
		Pluck("tags", &rows).Error; err != nil {
		return nil, apperrors.NewDatabaseError("unable to fetch tags", err)
	}

	seen := make(map[string]struct{})
	tags := make([]string, 0)
	for _, row := range rows {
		for _, tag := range strings.Split(strings.Trim(row, ","), ",") {
			if tag == "" {
				continue
			}
			if _, ok := seen[tag]; !ok {
				seen[tag] = struct{}{}
				tags = append(tags, tag)
			}
		}
	}
	sort.Strings(tags)

	return tags, nil
}

func notFoundOrDatabase(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NewNotFoundError("Article not found", ErrArticleNotFound)
	}
	return apperrors.NewDatabaseError("failed to fetch article", err)
}

func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || apperrors.IsDuplicateKeyError(err)
}
