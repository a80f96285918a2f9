// Package activity tracks per-user engagement with resources:
// bookmarks, comments and download history.
package activity

import (
	"context"
	"errors"
	"time"

	"github.com/tradelore/tradelore/core"
)

var (
	ErrBookmarkNotFound = errors.New("bookmark not found")
	ErrCommentNotFound  = errors.New("comment not found")
)

type (
	Bookmark struct {
		ID         string    `json:"id"`
		UserID     string    `json:"user_id"`
		ResourceID string    `json:"resource_id"`
		CreatedAt  time.Time `json:"created_at"` // UTC
	}

	Comment struct {
		ID         string    `json:"id"`
		UserID     string    `json:"user_id"`
		ResourceID string    `json:"resource_id"`
		Content    string    `json:"content"`
		CreatedAt  time.Time `json:"created_at"` // UTC
	}

	Download struct {
		ID         string    `json:"id"`
		UserID     string    `json:"user_id"`
		ResourceID string    `json:"resource_id"`
		CreatedAt  time.Time `json:"created_at"` // UTC
	}

	NewComment struct {
		Content string `json:"content" validate:"required,notblank,max=2000"`
	}

	Repository interface {
		GetBookmark(ctx context.Context, userID, resourceID string) (Bookmark, error)
		CreateBookmark(ctx context.Context, bm Bookmark) (Bookmark, error)
		DeleteBookmark(ctx context.Context, userID, resourceID string) error
		QueryBookmarks(ctx context.Context, userID string) ([]Bookmark, error)

		CreateComment(ctx context.Context, cmt Comment) (Comment, error)
		GetCommentByID(ctx context.Context, id string) (Comment, error)
		DeleteComment(ctx context.Context, id string) error
		// QueryComments returns a resource's comments oldest first.
		QueryComments(ctx context.Context, resourceID string) ([]Comment, error)

		CreateDownload(ctx context.Context, dl Download) (Download, error)
		QueryDownloads(ctx context.Context, userID string) ([]Download, error)
		CountDownloads(ctx context.Context) (int, error)
	}

	Service struct {
		repo Repository
	}
)

func (nc *NewComment) Validate() error { return core.Validate.Struct(nc) }

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ToggleBookmark adds a bookmark if absent, removes it if present.
// It reports whether the resource is bookmarked after the call.
func (svc *Service) ToggleBookmark(ctx context.Context, userID, resourceID string) (bool, error) {
	_, err := svc.repo.GetBookmark(ctx, userID, resourceID)
	switch err {
	case nil:
		if err = svc.repo.DeleteBookmark(ctx, userID, resourceID); err != nil {
			return false, err
		}
		return false, nil
	case ErrBookmarkNotFound:
		_, err = svc.repo.CreateBookmark(ctx, Bookmark{
			UserID:     userID,
			ResourceID: resourceID,
			CreatedAt:  time.Now().UTC(),
		})
		if err != nil {
			return false, err
		}
		return true, nil
	default:
		return false, err
	}
}

func (svc *Service) Bookmarks(ctx context.Context, userID string) ([]Bookmark, error) {
	return svc.repo.QueryBookmarks(ctx, userID)
}

func (svc *Service) AddComment(ctx context.Context, userID, resourceID string, nc NewComment) (Comment, error) {
	if err := nc.Validate(); err != nil {
		return Comment{}, err
	}
	return svc.repo.CreateComment(ctx, Comment{
		UserID:     userID,
		ResourceID: resourceID,
		Content:    core.CleanString(nc.Content),
		CreatedAt:  time.Now().UTC(),
	})
}

// DeleteComment removes a comment. Only its author or an admin may do so.
func (svc *Service) DeleteComment(ctx context.Context, id, userID string, isAdmin bool) error {
	cmt, err := svc.repo.GetCommentByID(ctx, id)
	if err != nil {
		return err
	}
	if !isAdmin && cmt.UserID != userID {
		return ErrCommentNotFound
	}
	return svc.repo.DeleteComment(ctx, id)
}

func (svc *Service) Comments(ctx context.Context, resourceID string) ([]Comment, error) {
	return svc.repo.QueryComments(ctx, resourceID)
}

func (svc *Service) RecordDownload(ctx context.Context, userID, resourceID string) (Download, error) {
	return svc.repo.CreateDownload(ctx, Download{
		UserID:     userID,
		ResourceID: resourceID,
		CreatedAt:  time.Now().UTC(),
	})
}

func (svc *Service) Downloads(ctx context.Context, userID string) ([]Download, error) {
	return svc.repo.QueryDownloads(ctx, userID)
}

func (svc *Service) CountDownloads(ctx context.Context) (int, error) {
	return svc.repo.CountDownloads(ctx)
}
