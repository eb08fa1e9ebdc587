package articles

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/akeren/landing-api/internal/log"
	"github.com/akeren/landing-api/internal/models"
	apperrors "github.com/akeren/landing-api/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestArticleService_CreateArticle(t *testing.T) {
	ctrl := gomock.NewController(t)

	t.Run("derives slug and normalises tags", func(t *testing.T) {
		mockRepo := NewMockArticleRepository(ctrl)
		service := NewArticleService(log.NewDiscardLogger(), mockRepo)

		mockRepo.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, a *models.Article) (*models.Article, error) {
				assert.Equal(t, "cafe-launch-notes", a.Slug)
				assert.Equal(t, ",go,release,", a.Tags)
				assert.Equal(t, models.ArticleStatusDraft, a.Status)
				assert.Nil(t, a.PublishedAt)
				return a, nil
			})

		resp, err := service.CreateArticle(context.Background(), &ArticleRequest{
			Kind:  models.ArticleKindBlog,
			Title: "Café Launch Notes",
			Tags:  []string{"Go", "release", "go"},
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"go", "release"}, resp.Tags)
	})

	t.Run("publishing stamps published_at", func(t *testing.T) {
		mockRepo := NewMockArticleRepository(ctrl)
		service := NewArticleService(log.NewDiscardLogger(), mockRepo)

		mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, a *models.Article) (*models.Article, error) { return a, nil })

		resp, err := service.CreateArticle(context.Background(), &ArticleRequest{
			Kind:   models.ArticleKindRelease,
			Title:  "v1.0",
			Status: models.ArticleStatusPublished,
		})

		require.NoError(t, err)
		assert.NotNil(t, resp.PublishedAt)
	})

	t.Run("title without letters needs a slug", func(t *testing.T) {
		service := NewArticleService(log.NewDiscardLogger(), NewMockArticleRepository(ctrl))

		_, err := service.CreateArticle(context.Background(), &ArticleRequest{Kind: models.ArticleKindBlog, Title: "!!!"})

		assert.ErrorIs(t, err, ErrEmptySlug)
		assert.Equal(t, apperrors.StatusBadRequest, apperrors.HTTPStatusCode(err))
	})

	t.Run("duplicate slug surfaces as conflict", func(t *testing.T) {
		mockRepo := NewMockArticleRepository(ctrl)
		service := NewArticleService(log.NewDiscardLogger(), mockRepo)

		mockRepo.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			Return(nil, apperrors.NewConflictError("An article with this slug already exists", ErrSlugTaken))

		_, err := service.CreateArticle(context.Background(), &ArticleRequest{Kind: models.ArticleKindBlog, Title: "Hello"})

		assert.Equal(t, apperrors.StatusConflict, apperrors.HTTPStatusCode(err))
	})
}

func TestArticleService_UpdateArticle_KeepsSlugAndFirstPublication(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := NewMockArticleRepository(ctrl)
	service := NewArticleService(log.NewDiscardLogger(), mockRepo)

	firstPublished := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	existing := &models.Article{
		ID:          "0d6b3c55-4f0b-4d8c-9d55-3f7f4ad3f0a1",
		Kind:        models.ArticleKindBlog,
		Title:       "Old title",
		Slug:        "old-title",
		Status:      models.ArticleStatusPublished,
		PublishedAt: &firstPublished,
	}

	mockRepo.EXPECT().FindByID(gomock.Any(), existing.ID).Return(existing, nil)
	mockRepo.EXPECT().Update(gomock.Any(), existing).Return(nil)

	resp, err := service.UpdateArticle(context.Background(), existing.ID, &ArticleRequest{
		Kind:   models.ArticleKindBlog,
		Title:  "New title",
		Status: models.ArticleStatusPublished,
	})

	require.NoError(t, err)
	assert.Equal(t, "old-title", resp.Slug)
	assert.Equal(t, "New title", resp.Title)
	require.NotNil(t, resp.PublishedAt)
	assert.Equal(t, "2026-01-02T03:04:05Z", *resp.PublishedAt)
}

func TestArticleService_GetPublishedBySlug_HidesDrafts(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := NewMockArticleRepository(ctrl)
	service := NewArticleService(log.NewDiscardLogger(), mockRepo)

	mockRepo.EXPECT().
		FindBySlug(gomock.Any(), "draft-post").
		Return(&models.Article{Slug: "draft-post", Status: models.ArticleStatusDraft}, nil)

	_, err := service.GetPublishedBySlug(context.Background(), "draft-post")

	assert.Equal(t, apperrors.StatusNotFound, apperrors.HTTPStatusCode(err))
}

func newArticleTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.Article{}))
	return db
}

func TestArticleRepository_RoundTrip(t *testing.T) {
	repo := NewArticleRepository(newArticleTestDB(t))
	service := NewArticleService(log.NewDiscardLogger(), repo)
	ctx := context.Background()

	published, err := service.CreateArticle(ctx, &ArticleRequest{
		Kind: models.ArticleKindResearch, Title: "Scaling Queues", Category: "Engineering",
		Tags: []string{"queues", "postgres"}, Status: models.ArticleStatusPublished,
	})
	require.NoError(t, err)

	_, err = service.CreateArticle(ctx, &ArticleRequest{
		Kind: models.ArticleKindBlog, Title: "Draft Thoughts", Category: "Company", Tags: []string{"culture"},
	})
	require.NoError(t, err)

	t.Run("duplicate slug is a conflict", func(t *testing.T) {
		_, err := service.CreateArticle(ctx, &ArticleRequest{Kind: models.ArticleKindBlog, Title: "Scaling queues!"})
		assert.ErrorIs(t, err, ErrSlugTaken)
	})

	t.Run("public listing shows published only", func(t *testing.T) {
		list, err := service.ListPublished(ctx, ListArticlesQuery{Page: 1, Limit: 20})
		require.NoError(t, err)
		require.Len(t, list.Items, 1)
		assert.Equal(t, "scaling-queues", list.Items[0].Slug)
	})

	t.Run("tag filter matches whole tags", func(t *testing.T) {
		list, err := service.ListArticles(ctx, ListArticlesQuery{Tag: "queue", Page: 1, Limit: 20})
		require.NoError(t, err)
		assert.Empty(t, list.Items)

		list, err = service.ListArticles(ctx, ListArticlesQuery{Tag: "Queues", Page: 1, Limit: 20})
		require.NoError(t, err)
		assert.Len(t, list.Items, 1)
	})

	t.Run("categories and tags are distinct and sorted", func(t *testing.T) {
		categories, err := service.ListCategories(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Company", "Engineering"}, categories)

		tags, err := service.ListTags(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"culture", "postgres", "queues"}, tags)
	})

	t.Run("update and delete", func(t *testing.T) {
		updated, err := service.UpdateArticle(ctx, published.ID, &ArticleRequest{
			Kind: models.ArticleKindResearch, Title: "Scaling Queues, Revisited", Status: models.ArticleStatusDraft,
		})
		require.NoError(t, err)
		assert.Equal(t, "scaling-queues", updated.Slug)
		assert.Equal(t, models.ArticleStatusDraft, updated.Status)

		_, err = service.GetPublishedBySlug(ctx, "scaling-queues")
		assert.True(t, apperrors.IsNotFound(err))

		require.NoError(t, service.DeleteArticle(ctx, published.ID))
		err = service.DeleteArticle(ctx, published.ID)
		assert.True(t, apperrors.IsNotFound(err))
	})
}
