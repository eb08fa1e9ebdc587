package waitlist

import (
	"github.com/akeren/landing-api/internal/mailer"
	"github.com/akeren/landing-api/internal/models"
	"github.com/akeren/landing-api/pkg/constants"
	"github.com/akeren/landing-api/pkg/utils"
)

type JoinWaitlistRequest struct {
	Email       string `json:"email" binding:"required,email,max=255"`
	IPAddress   string `json:"ip_address" binding:"omitempty,ip"`
	UserAgent   string `json:"user_agent" binding:"omitempty,max=512"`
	UTMSource   string `json:"utm_source" binding:"omitempty,max=255"`
	UTMMedium   string `json:"utm_medium" binding:"omitempty,max=255"`
	UTMCampaign string `json:"utm_campaign" binding:"omitempty,max=255"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type WaitlistEntryResponse struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Status        string `json:"status"`
	QueuePosition int    `json:"queue_position"`
	IPAddress     string `json:"ip_address,omitempty"`
	UserAgent     string `json:"user_agent,omitempty"`
	UTMSource     string `json:"utm_source,omitempty"`
	UTMMedium     string `json:"utm_medium,omitempty"`
	UTMCampaign   string `json:"utm_campaign,omitempty"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// JoinResponse is returned for both successful and rejected joins.
type JoinResponse struct {
	Success       bool                   `json:"success"`
	Message       string                 `json:"message"`
	WaitlistEntry *WaitlistEntryResponse `json:"waitlist_entry"`
	EmailSent     bool                   `json:"email_sent"`
	EmailResult   *mailer.SendResult     `json:"email_result"`
}

type UpdateStatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type CountResponse struct {
	Total int64 `json:"total"`
}

type ListEntriesQuery struct {
	Page   int
	Limit  int
	Status string
	Search string
}

type PaginatedEntriesResponse struct {
	Items   []WaitlistEntryResponse `json:"items"`
	Total   int64                   `json:"total"`
	Page    int                     `json:"page"`
	PerPage int                     `json:"per_page"`
	Pages   int                     `json:"pages"`
	HasNext bool                    `json:"has_next"`
	HasPrev bool                    `json:"has_prev"`
}

// ========================================
// Mappers
// ========================================

func ToWaitlistEntryModel(req *JoinWaitlistRequest) *models.WaitlistEntry {
	if req == nil {
		return nil
	}
	return &models.WaitlistEntry{
		Email:       utils.NormalizeEmail(req.Email),
		Status:      models.WaitlistStatusPending,
		IPAddress:   req.IPAddress,
		UserAgent:   req.UserAgent,
		UTMSource:   req.UTMSource,
		UTMMedium:   req.UTMMedium,
		UTMCampaign: req.UTMCampaign,
	}
}

func ToWaitlistEntryResponse(entry *models.WaitlistEntry) WaitlistEntryResponse {
	if entry == nil {
		return WaitlistEntryResponse{}
	}
	return WaitlistEntryResponse{
		ID:            entry.ID,
		Email:         entry.Email,
		Status:        entry.Status,
		QueuePosition: entry.QueuePosition,
		IPAddress:     entry.IPAddress,
		UserAgent:     entry.UserAgent,
		UTMSource:     entry.UTMSource,
		UTMMedium:     entry.UTMMedium,
		UTMCampaign:   entry.UTMCampaign,
		CreatedAt:     entry.CreatedAt.Format(constants.RFC3339DateTimeFormat),
		UpdatedAt:     entry.UpdatedAt.Format(constants.RFC3339DateTimeFormat),
	}
}

func ToPaginatedEntriesResponse(entries []*models.WaitlistEntry, total int64, page, limit int) PaginatedEntriesResponse {
	items := make([]WaitlistEntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, ToWaitlistEntryResponse(entry))
	}

	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}

	return PaginatedEntriesResponse{
		Items:   items,
		Total:   total,
		Page:    page,
		PerPage: limit,
		Pages:   pages,
		HasNext: page < pages,
		HasPrev: page > 1,
	}
}
