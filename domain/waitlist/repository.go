package waitlist

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=waitlist

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/akeren/landing-api/internal/models"
	apperrors "github.com/akeren/landing-api/pkg/errors"
	"gorm.io/gorm"
)

// ListFilter narrows the admin listing. Empty fields match everything.
type ListFilter struct {
	Status string
	Search string
	Limit  int
	Offset int
}

type WaitlistRepository interface {
	// CreateEntry rejects a known email and otherwise inserts entry at max(queue_position)+1,
	// both inside one transaction.
	CreateEntry(ctx context.Context, entry *models.WaitlistEntry) (*models.WaitlistEntry, error)
	// FindByEmail expects an already normalised email.
	FindByEmail(ctx context.Context, email string) (*models.WaitlistEntry, error)
	// ListEntries returns one page ordered by queue position and the filtered total.
	ListEntries(ctx context.Context, filter ListFilter) ([]*models.WaitlistEntry, int64, error)
	CountEntries(ctx context.Context) (int64, error)
	// UpdateStatus moves email from one status to another only if it is still in from.
	UpdateStatus(ctx context.Context, email, from, to string) error
}

type waitlistRepository struct {
	db *gorm.DB
}

func NewWaitlistRepository(db *gorm.DB) WaitlistRepository {
	return &waitlistRepository{db: db}
}

func (wr *waitlistRepository) CreateEntry(ctx context.Context, entry *models.WaitlistEntry) (*models.WaitlistEntry, error) {
	err := wr.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.WaitlistEntry{}).Where("email = ?", entry.Email).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrAlreadyJoined
		}

		var maxPosition int
		if err := tx.Model(&models.WaitlistEntry{}).
			Select("COALESCE(MAX(queue_position), 0)").
			Scan(&maxPosition).Error; err != nil {
			return err
		}

		entry.QueuePosition = maxPosition + 1
		return tx.Create(entry).Error
	})

	switch {
	case err == nil:
		return entry, nil
	case errors.Is(err, ErrAlreadyJoined):
		return nil, apperrors.NewConflictError("This email is already on the waitlist", err)
	case isDuplicateKey(err):
		// The failed transaction cannot tell which unique index fired; the email lookup can.
		if _, findErr := wr.FindByEmail(ctx, entry.Email); findErr == nil {
			return nil, apperrors.NewConflictError("This email is already on the waitlist", ErrAlreadyJoined)
		}
		entry.QueuePosition = 0
		return nil, apperrors.NewConflictError("unable to reserve a queue position", ErrQueuePositionTaken)
	default:
		return nil, apperrors.NewDatabaseError("unable to create waitlist entry", err)
	}
}

func (wr *waitlistRepository) FindByEmail(ctx context.Context, email string) (*models.WaitlistEntry, error) {
	var entry models.WaitlistEntry

	if err := wr.db.WithContext(ctx).Where("email = ?", email).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("Waitlist entry not found", ErrEntryNotFound)
		}
		return nil, apperrors.NewDatabaseError("failed to fetch waitlist entry", err)
	}

	return &entry, nil
}

func (wr *waitlistRepository) ListEntries(ctx context.Context, filter ListFilter) ([]*models.WaitlistEntry, int64, error) {
	var total int64
	if err := wr.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, apperrors.NewDatabaseError("unable to count waitlist entries", err)
	}

	query := wr.filtered(ctx, filter).Order("queue_position ASC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}

	var entries []*models.WaitlistEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, 0, apperrors.NewDatabaseError("unable to fetch waitlist entries", err)
	}

	return entries, total, nil
}

func (wr *waitlistRepository) filtered(ctx context.Context, filter ListFilter) *gorm.DB {
	query := wr.db.WithContext(ctx).Model(&models.WaitlistEntry{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + escapeLike(strings.ToLower(search)) + "%"
		query = query.Where(`(LOWER(email) LIKE ? ESCAPE '\' OR LOWER(utm_source) LIKE ? ESCAPE '\')`, pattern, pattern)
	}

	return query
}

func (wr *waitlistRepository) CountEntries(ctx context.Context) (int64, error) {
	var total int64

	if err := wr.db.WithContext(ctx).Model(&models.WaitlistEntry{}).Count(&total).Error; err != nil {
		return 0, apperrors.NewDatabaseError("unable to count waitlist entries", err)
	}

	return total, nil
}

func (wr *waitlistRepository) UpdateStatus(ctx context.Context, email, from, to string) error {
	result := wr.db.WithContext(ctx).
		Model(&models.WaitlistEntry{}).
		Where("email = ? AND status = ?", email, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now().UTC(),
		})

	if result.Error != nil {
		return apperrors.NewDatabaseError("unable to update waitlist status", result.Error)
	}

	if result.RowsAffected == 0 {
		if _, err := wr.FindByEmail(ctx, email); err != nil {
			return err
		}
		return apperrors.NewConflictError("Waitlist status was changed by another request", ErrStatusChanged)
	}

	return nil
}

func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || apperrors.IsDuplicateKeyError(err)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
