package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Waitlist statuses, in funnel order.
const (
	WaitlistStatusPending = "pending"
	WaitlistStatusInvited = "invited"
	WaitlistStatusJoined  = "joined"
)

type WaitlistEntry struct {
	ID            string    `gorm:"type:text;primaryKey" json:"id"`
	Email         string    `gorm:"not null;uniqueIndex:idx_waitlist_entries_email" json:"email"`
	Status        string    `gorm:"not null;default:pending;index" json:"status"`
	QueuePosition int       `gorm:"not null;uniqueIndex:idx_waitlist_entries_queue_position" json:"queue_position"`
	IPAddress     string    `json:"ip_address,omitempty"`
	UserAgent     string    `json:"user_agent,omitempty"`
	UTMSource     string    `gorm:"column:utm_source" json:"utm_source,omitempty"`
	UTMMedium     string    `gorm:"column:utm_medium" json:"utm_medium,omitempty"`
	UTMCampaign   string    `gorm:"column:utm_campaign" json:"utm_campaign,omitempty"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null" json:"updated_at"`
}

func (e *WaitlistEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Status == "" {
		e.Status = WaitlistStatusPending
	}
	return nil
}

// NextWaitlistStatus returns the single forward transition from status, if any.
func NextWaitlistStatus(status string) (string, bool) {
	switch status {
	case WaitlistStatusPending:
		return WaitlistStatusInvited, true
	case WaitlistStatusInvited:
		return WaitlistStatusJoined, true
	default:
		return "", false
	}
}

func IsValidWaitlistStatus(status string) bool {
	switch status {
	case WaitlistStatusPending, WaitlistStatusInvited, WaitlistStatusJoined:
		return true
	default:
		return false
	}
}
