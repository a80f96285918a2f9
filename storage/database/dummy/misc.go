package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/tradelore/tradelore/core/activity"
	"github.com/tradelore/tradelore/core/audit"
	"github.com/tradelore/tradelore/core/notification"
)

// audit

type auditRepository struct {
	db *auditTable
}

var _ audit.Repository = (*auditRepository)(nil) // interface compliance check

func NewAuditRepository(db *DB) audit.Repository {
	return &auditRepository{db: db.audit}
}

func (repo *auditRepository) CreateEntry(ctx context.Context, entry audit.Entry) (audit.Entry, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	entry.ID = uuid.New().String()
	repo.db.entries = append(repo.db.entries, entry)
	return entry, nil
}

func (repo *auditRepository) RecentEntries(ctx context.Context, limit int) ([]audit.Entry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	out := make([]audit.Entry, 0, limit)
	for i := len(repo.db.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, repo.db.entries[i])
	}
	return out, nil
}

// notification

type notificationRepository struct {
	db *notificationTable
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *DB) notification.Repository {
	return &notificationRepository{db: db.notification}
}

func (repo *notificationRepository) CreateNotifications(ctx context.Context, ns []notification.Notification) ([]notification.Notification, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for i := range ns {
		ns[i].ID = uuid.New().String()
	}
	repo.db.table = append(repo.db.table, ns...)
	return ns, nil
}

func (repo *notificationRepository) RecentNotifications(ctx context.Context, userID string) ([]notification.Notification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var out []notification.Notification
	for i := len(repo.db.table) - 1; i >= 0 && len(out) < notification.RecentLimit; i-- {
		if repo.db.table[i].UserID == userID {
			out = append(out, repo.db.table[i])
		}
	}
	return out, nil
}

func (repo *notificationRepository) MarkNotificationsRead(ctx context.Context, userID string, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for i, n := range repo.db.table {
		if n.UserID != userID {
			continue
		}
		for _, id := range ids {
			if n.ID == id {
				repo.db.table[i].IsRead = true
			}
		}
	}
	return nil
}

func (repo *notificationRepository) MarkAllNotificationsRead(ctx context.Context, userID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for i, n := range repo.db.table {
		if n.UserID == userID {
			repo.db.table[i].IsRead = true
		}
	}
	return nil
}

// activity

type activityRepository struct {
	db *activityTable
}

var _ activity.Repository = (*activityRepository)(nil) // interface compliance check

func NewActivityRepository(db *DB) activity.Repository {
	return &activityRepository{db: db.activity}
}

func (repo *activityRepository) GetBookmark(ctx context.Context, userID, resourceID string) (activity.Bookmark, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, bm := range repo.db.bookmarks {
		if bm.UserID == userID && bm.ResourceID == resourceID {
			return bm, nil
		}
	}
	return activity.Bookmark{}, activity.ErrBookmarkNotFound
}

func (repo *activityRepository) CreateBookmark(ctx context.Context, bm activity.Bookmark) (activity.Bookmark, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	bm.ID = uuid.New().String()
	repo.db.bookmarks = append(repo.db.bookmarks, bm)
	return bm, nil
}

func (repo *activityRepository) DeleteBookmark(ctx context.Context, userID, resourceID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for i, bm := range repo.db.bookmarks {
		if bm.UserID == userID && bm.ResourceID == resourceID {
			repo.db.bookmarks = append(repo.db.bookmarks[:i], repo.db.bookmarks[i+1:]...)
			return nil
		}
	}
	return activity.ErrBookmarkNotFound
}

func (repo *activityRepository) QueryBookmarks(ctx context.Context, userID string) ([]activity.Bookmark, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var out []activity.Bookmark
	for _, bm := range repo.db.bookmarks {
		if bm.UserID == userID {
			out = append(out, bm)
		}
	}
	return out, nil
}

func (repo *activityRepository) CreateComment(ctx context.Context, cmt activity.Comment) (activity.Comment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	cmt.ID = uuid.New().String()
	repo.db.comments = append(repo.db.comments, cmt)
	return cmt, nil
}

func (repo *activityRepository) GetCommentByID(ctx context.Context, id string) (activity.Comment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, cmt := range repo.db.comments {
		if cmt.ID == id {
			return cmt, nil
		}
	}
	return activity.Comment{}, activity.ErrCommentNotFound
}

func (repo *activityRepository) DeleteComment(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for i, cmt := range repo.db.comments {
		if cmt.ID == id {
			repo.db.comments = append(repo.db.comments[:i], repo.db.comments[i+1:]...)
			return nil
		}
	}
	return activity.ErrCommentNotFound
}

func (repo *activityRepository) QueryComments(ctx context.Context, resourceID string) ([]activity.Comment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var out []activity.Comment
	for _, cmt := range repo.db.comments {
		if cmt.ResourceID == resourceID {
			out = append(out, cmt)
		}
	}
	return out, nil
}

func (repo *activityRepository) CreateDownload(ctx context.Context, dl activity.Download) (activity.Download, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	dl.ID = uuid.New().String()
	repo.db.downloads = append(repo.db.downloads, dl)
	return dl, nil
}

func (repo *activityRepository) QueryDownloads(ctx context.Context, userID string) ([]activity.Download, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var out []activity.Download
	for _, dl := range repo.db.downloads {
		if dl.UserID == userID {
			out = append(out, dl)
		}
	}
	return out, nil
}

func (repo *activityRepository) CountDownloads(ctx context.Context) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return len(repo.db.downloads), nil
}
