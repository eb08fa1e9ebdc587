package waitlist

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/akeren/landing-api/internal/log"
	"github.com/akeren/landing-api/internal/models"
	apperrors "github.com/akeren/landing-api/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.WaitlistEntry{}))
	return db
}

func joinEntry(t *testing.T, repo WaitlistRepository, email string) *models.WaitlistEntry {
	t.Helper()

	entry, err := repo.CreateEntry(context.Background(), &models.WaitlistEntry{Email: email})
	require.NoError(t, err)
	return entry
}

func TestWaitlistRepository_CreateEntry(t *testing.T) {
	repo := NewWaitlistRepository(newTestDB(t))

	first := joinEntry(t, repo, "first@example.com")
	second := joinEntry(t, repo, "second@example.com")

	assert.Equal(t, 1, first.QueuePosition)
	assert.Equal(t, 2, second.QueuePosition)
	assert.Equal(t, models.WaitlistStatusPending, first.Status)
	assert.NotEmpty(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())
}

func TestWaitlistRepository_CreateEntry_Duplicate(t *testing.T) {
	repo := NewWaitlistRepository(newTestDB(t))
	joinEntry(t, repo, "dup@example.com")

	entry, err := repo.CreateEntry(context.Background(), &models.WaitlistEntry{Email: "dup@example.com"})

	assert.Nil(t, entry)
	assert.ErrorIs(t, err, ErrAlreadyJoined)
	assert.True(t, apperrors.IsConflict(err))

	total, err := repo.CountEntries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

// newTestDB allows a single connection, so these joins run one transaction at
// a time. Unique-index collisions are covered by the hook tests below.
func TestWaitlistRepository_SerializedJoinsGetConsecutivePositions(t *testing.T) {
	repo := NewWaitlistRepository(newTestDB(t))

	const joins = 10
	var wg sync.WaitGroup
	positions := make(chan int, joins)
	errs := make(chan error, joins)

	for i := 0; i < joins; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			entry, err := repo.CreateEntry(context.Background(), &models.WaitlistEntry{Email: fmt.Sprintf("user%d@example.com", i)})
			if err != nil {
				errs <- err
				return
			}
			positions <- entry.QueuePosition
		}(i)
	}
	wg.Wait()
	close(positions)
	close(errs)

	for err := range errs {
		t.Fatalf("unexpected join error: %v", err)
	}

	var got []int
	for p := range positions {
		got = append(got, p)
	}
	sort.Ints(got)

	want := make([]int, joins)
	for i := range want {
		want[i] = i + 1
	}
	assert.Equal(t, want, got)
}

func TestWaitlistRepository_ListEntries(t *testing.T) {
	db := newTestDB(t)
	repo := NewWaitlistRepository(db)
	ctx := context.Background()

	for _, e := range []*models.WaitlistEntry{
		{Email: "ada@acme.io", UTMSource: "twitter"},
		{Email: "bob@example.com", UTMSource: "ACME-newsletter"},
		{Email: "cy@example.com"},
		{Email: "dee_x@example.com"},
	} {
		_, err := repo.CreateEntry(ctx, e)
		require.NoError(t, err)
	}
	require.NoError(t, repo.UpdateStatus(ctx, "cy@example.com", models.WaitlistStatusPending, models.WaitlistStatusInvited))

	t.Run("orders by queue position and pages", func(t *testing.T) {
		entries, total, err := repo.ListEntries(ctx, ListFilter{Limit: 2, Offset: 2})

		require.NoError(t, err)
		assert.Equal(t, int64(4), total)
		require.Len(t, entries, 2)
		assert.Equal(t, 3, entries[0].QueuePosition)
		assert.Equal(t, 4, entries[1].QueuePosition)
	})

	t.Run("search matches email and utm source case-insensitively", func(t *testing.T) {
		entries, total, err := repo.ListEntries(ctx, ListFilter{Search: "Acme", Limit: 20})

		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Equal(t, "ada@acme.io", entries[0].Email)
		assert.Equal(t, "bob@example.com", entries[1].Email)
	})

	t.Run("search treats wildcards literally", func(t *testing.T) {
		entries, _, err := repo.ListEntries(ctx, ListFilter{Search: "_x", Limit: 20})

		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "dee_x@example.com", entries[0].Email)
	})

	t.Run("filters by status", func(t *testing.T) {
		entries, total, err := repo.ListEntries(ctx, ListFilter{Status: models.WaitlistStatusInvited, Limit: 20})

		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, "cy@example.com", entries[0].Email)
	})
}

func TestWaitlistRepository_UpdateStatus(t *testing.T) {
	repo := NewWaitlistRepository(newTestDB(t))
	ctx := context.Background()
	joinEntry(t, repo, "ada@example.com")

	require.NoError(t, repo.UpdateStatus(ctx, "ada@example.com", models.WaitlistStatusPending, models.WaitlistStatusInvited))

	entry, err := repo.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.WaitlistStatusInvited, entry.Status)

	t.Run("stale from status is a conflict", func(t *testing.T) {
		err := repo.UpdateStatus(ctx, "ada@example.com", models.WaitlistStatusPending, models.WaitlistStatusInvited)

		assert.ErrorIs(t, err, ErrStatusChanged)
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("unknown email is not found", func(t *testing.T) {
		err := repo.UpdateStatus(ctx, "ghost@example.com", models.WaitlistStatusPending, models.WaitlistStatusInvited)

		assert.True(t, apperrors.IsNotFound(err))
	})
}

// stealNextPosition makes the next insert of email collide on queue_position:
// just before gorm writes the row, another entry takes the same position inside
// the same transaction.
func stealNextPosition(t *testing.T, db *gorm.DB, email string) *atomic.Int32 {
	t.Helper()

	var fired atomic.Int32
	err := db.Callback().Create().Before("gorm:create").Register("test:steal_position", func(tx *gorm.DB) {
		entry, ok := tx.Statement.Dest.(*models.WaitlistEntry)
		if !ok || entry.Email != email || !fired.CompareAndSwap(0, 1) {
			return
		}
		now := time.Now().UTC()
		tx.Session(&gorm.Session{NewDB: true}).Exec(
			"INSERT INTO waitlist_entries (id, email, status, queue_position, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
			uuid.NewString(), "intruder@example.com", models.WaitlistStatusPending, entry.QueuePosition, now, now,
		)
	})
	require.NoError(t, err)
	return &fired
}

func TestWaitlistRepository_CreateEntry_QueuePositionCollision(t *testing.T) {
	db := newTestDB(t)
	repo := NewWaitlistRepository(db)
	fired := stealNextPosition(t, db, "late@example.com")

	entry, err := repo.CreateEntry(context.Background(), &models.WaitlistEntry{Email: "late@example.com"})

	require.Equal(t, int32(1), fired.Load())
	assert.Nil(t, entry)
	assert.ErrorIs(t, err, ErrQueuePositionTaken)
	assert.NotErrorIs(t, err, ErrAlreadyJoined)

	total, err := repo.CountEntries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), total, "the failed transaction rolls back")
}

func TestWaitlistService_Join_RetriesQueuePositionCollision(t *testing.T) {
	db := newTestDB(t)
	fired := stealNextPosition(t, db, "late@example.com")
	service := NewWaitlistService(log.NewDiscardLogger(), NewWaitlistRepository(db), &ServiceConfig{JoinRetry: noRetry()})

	resp, err := service.Join(context.Background(), &JoinWaitlistRequest{Email: "late@example.com"}, false)

	require.NoError(t, err)
	assert.Equal(t, int32(1), fired.Load())
	require.NotNil(t, resp.WaitlistEntry)
	assert.Equal(t, 1, resp.WaitlistEntry.QueuePosition)
}

// hideNextCount makes the next query miss every row, like a duplicate check
// that ran before a concurrent join committed the same email.
func hideNextCount(t *testing.T, db *gorm.DB) *atomic.Int32 {
	t.Helper()

	var fired atomic.Int32
	err := db.Callback().Query().Before("gorm:query").Register("test:hide_rows", func(tx *gorm.DB) {
		if !fired.CompareAndSwap(0, 1) {
			return
		}
		tx.Statement.AddClause(clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "1 = 0"}}})
	})
	require.NoError(t, err)
	return &fired
}

func TestWaitlistRepository_CreateEntry_EmailCollision(t *testing.T) {
	db := newTestDB(t)
	repo := NewWaitlistRepository(db)
	joinEntry(t, repo, "dup@example.com")
	fired := hideNextCount(t, db)

	entry, err := repo.CreateEntry(context.Background(), &models.WaitlistEntry{Email: "dup@example.com"})

	require.Equal(t, int32(1), fired.Load())
	assert.Nil(t, entry)
	assert.ErrorIs(t, err, ErrAlreadyJoined)
	assert.Equal(t, apperrors.StatusConflict, apperrors.HTTPStatusCode(err))

	total, err := repo.CountEntries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}
