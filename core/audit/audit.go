// Package audit keeps an append-only trail of administrative actions.
// Writes are best-effort: a failed audit insert is logged and swallowed so
// it can never roll back or block the action it documents.
package audit

import (
	"context"
	"time"
)

// Known action tags. The column is free-form; these are the ones the
// platform emits.
const (
	ActionResourceCreated   = "resource_created"
	ActionResourceUpdated   = "resource_updated"
	ActionResourceTrashed   = "resource_soft_deleted"
	ActionResourceRestored  = "resource_restored"
	ActionResourcePurged    = "resource_permanently_deleted"
	ActionUserRegistered    = "user_registered"
	ActionUserUpdated       = "user_updated"
	ActionUserDeleted       = "user_deleted"
	ActionAnnouncementSent  = "announcement_sent"
)

// recentLimit caps the audit-log display query.
const recentLimit = 50

type (
	// Entry is one append-only record of an administrative action.
	Entry struct {
		ID         string                 `json:"id"`
		AdminID    string                 `json:"admin_id"`
		Action     string                 `json:"action"`
		EntityType string                 `json:"entity_type"`
		EntityID   string                 `json:"entity_id,omitempty"`
		Details    map[string]interface{} `json:"details,omitempty"`
		CreatedAt  time.Time              `json:"created_at"` // UTC
	}

	Repository interface {
		CreateEntry(ctx context.Context, entry Entry) (Entry, error)
		RecentEntries(ctx context.Context, limit int) ([]Entry, error)
	}

	// Logger surfaces swallowed audit failures to the log service.
	Logger interface {
		Warn(msg string, args ...interface{})
	}

	Service struct {
		repo Repository
		log  Logger
	}
)

func NewService(repo Repository, log Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Log records an administrative action. Failures are swallowed.
func (svc *Service) Log(ctx context.Context, adminID, action, entityType, entityID string, details ...map[string]interface{}) {
	entry := Entry{
		AdminID:    adminID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		CreatedAt:  time.Now().UTC(),
	}
	if len(details) > 0 {
		entry.Details = details[0]
	}
	if _, err := svc.repo.CreateEntry(ctx, entry); err != nil {
		if svc.log != nil {
			svc.log.Warn("audit: dropping entry "+action, err)
		}
	}
}

// Recent returns the most recent entries, newest first, capped at 50.
func (svc *Service) Recent(ctx context.Context) ([]Entry, error) {
	return svc.repo.RecentEntries(ctx, recentLimit)
}
