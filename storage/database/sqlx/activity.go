package sqlxrepos

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/tradelore/tradelore/core"
	"github.com/tradelore/tradelore/core/activity"
)

type activityRow struct {
	ID         string      `db:"id"`
	UserID     string      `db:"user_id"`
	ResourceID string      `db:"resource_id"`
	Content    null.String `db:"content"`
	CreatedAt  null.Time   `db:"created_at"`
}

type bookmarkRow struct {
	ID         string    `db:"id"`
	UserID     string    `db:"user_id"`
	ResourceID string    `db:"resource_id"`
	CreatedAt  null.Time `db:"created_at"`
}

type activityRepository struct {
	db sqlx.ExtContext
}

var _ activity.Repository = (*activityRepository)(nil) // interface compliance check

func NewActivityRepository(db sqlx.ExtContext) *activityRepository {
	return &activityRepository{db: db}
}

func (repo activityRepository) GetBookmark(ctx context.Context, userID, resourceID string) (activity.Bookmark, error) {
	query, args, err := psql.Select("*").From("bookmark").
		Where(sq.Eq{"user_id": userID, "resource_id": resourceID}).
		ToSql()
	if err != nil {
		return activity.Bookmark{}, errors.Wrap(err, "building bookmark query")
	}

	var row bookmarkRow
	if err = sqlx.GetContext(ctx, repo.db, &row, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return activity.Bookmark{}, activity.ErrBookmarkNotFound
		}
		return activity.Bookmark{}, errors.Wrap(err, "getting bookmark")
	}
	return activity.Bookmark{
		ID:         row.ID,
		UserID:     row.UserID,
		ResourceID: row.ResourceID,
		CreatedAt:  row.CreatedAt.Time,
	}, nil
}

func (repo activityRepository) CreateBookmark(ctx context.Context, bm activity.Bookmark) (activity.Bookmark, error) {
	bm.ID = uuid.New().String()

	query, args, err := psql.Insert("bookmark").
		Columns("id", "user_id", "resource_id", "created_at").
		Values(bm.ID, bm.UserID, bm.ResourceID, null.NewTime(bm.CreatedAt.UTC(), !bm.CreatedAt.IsZero())).
		ToSql()
	if err != nil {
		return activity.Bookmark{}, errors.Wrap(err, "building bookmark insert")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return activity.Bookmark{}, errors.Wrap(err, "inserting bookmark")
	}
	return bm, nil
}

func (repo activityRepository) DeleteBookmark(ctx context.Context, userID, resourceID string) error {
	query, args, err := psql.Delete("bookmark").
		Where(sq.Eq{"user_id": userID, "resource_id": resourceID}).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "building bookmark delete")
	}

	result, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, "deleting bookmark")
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return activity.ErrBookmarkNotFound
	}
	return nil
}

func (repo activityRepository) QueryBookmarks(ctx context.Context, userID string) ([]activity.Bookmark, error) {
	query, args, err := psql.Select("*").From("bookmark").
		Where(sq.Eq{"user_id": userID}).
		OrderBy(createdAtDesc).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building bookmark query")
	}

	var rows []bookmarkRow
	if err = sqlx.SelectContext(ctx, repo.db, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying bookmarks")
	}

	bms := make([]activity.Bookmark, 0, len(rows))
	for _, row := range rows {
		bms = append(bms, activity.Bookmark{
			ID:         row.ID,
			UserID:     row.UserID,
			ResourceID: row.ResourceID,
			CreatedAt:  row.CreatedAt.Time,
		})
	}
	return bms, nil
}

func (repo activityRepository) CreateComment(ctx context.Context, cmt activity.Comment) (activity.Comment, error) {
	cmt.ID = uuid.New().String()

	query, args, err := psql.Insert("comment").
		Columns("id", "user_id", "resource_id", "content", "created_at").
		Values(
			cmt.ID, cmt.UserID, cmt.ResourceID, cmt.Content,
			null.NewTime(cmt.CreatedAt.UTC(), !cmt.CreatedAt.IsZero())).
		ToSql()
	if err != nil {
		return activity.Comment{}, errors.Wrap(err, "building comment insert")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return activity.Comment{}, errors.Wrap(err, "inserting comment")
	}
	return cmt, nil
}

func (repo activityRepository) GetCommentByID(ctx context.Context, id string) (activity.Comment, error) {
	query, args, err := psql.Select("*").From("comment").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return activity.Comment{}, errors.Wrap(err, "building comment query")
	}

	var row activityRow
	if err = sqlx.GetContext(ctx, repo.db, &row, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return activity.Comment{}, activity.ErrCommentNotFound
		}
		return activity.Comment{}, errors.Wrap(err, "getting comment")
	}
	return activity.Comment{
		ID:         row.ID,
		UserID:     row.UserID,
		ResourceID: row.ResourceID,
		Content:    row.Content.String,
		CreatedAt:  row.CreatedAt.Time,
	}, nil
}

func (repo activityRepository) DeleteComment(ctx context.Context, id string) error {
	query, args, err := psql.Delete("comment").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return errors.Wrap(err, "building comment delete")
	}

	result, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, "deleting comment")
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return activity.ErrCommentNotFound
	}
	return nil
}

func (repo activityRepository) QueryComments(ctx context.Context, resourceID string) ([]activity.Comment, error) {
	query, args, err := psql.Select("*").From("comment").
		Where(sq.Eq{"resource_id": resourceID}).
		OrderBy(core.DBOrdering{Field: "created_at", Ascending: true}.String()).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building comment query")
	}

	var rows []activityRow
	if err = sqlx.SelectContext(ctx, repo.db, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying comments")
	}

	cmts := make([]activity.Comment, 0, len(rows))
	for _, row := range rows {
		cmts = append(cmts, activity.Comment{
			ID:         row.ID,
			UserID:     row.UserID,
			ResourceID: row.ResourceID,
			Content:    row.Content.String,
			CreatedAt:  row.CreatedAt.Time,
		})
	}
	return cmts, nil
}

func (repo activityRepository) CreateDownload(ctx context.Context, dl activity.Download) (activity.Download, error) {
	dl.ID = uuid.New().String()

	query, args, err := psql.Insert("download_history").
		Columns("id", "user_id", "resource_id", "created_at").
		Values(dl.ID, dl.UserID, dl.ResourceID, null.NewTime(dl.CreatedAt.UTC(), !dl.CreatedAt.IsZero())).
		ToSql()
	if err != nil {
		return activity.Download{}, errors.Wrap(err, "building download insert")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return activity.Download{}, errors.Wrap(err, "inserting download")
	}
	return dl, nil
}

func (repo activityRepository) QueryDownloads(ctx context.Context, userID string) ([]activity.Download, error) {
	query, args, err := psql.Select("*").From("download_history").
		Where(sq.Eq{"user_id": userID}).
		OrderBy(createdAtDesc).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building download query")
	}

	var rows []bookmarkRow
	if err = sqlx.SelectContext(ctx, repo.db, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying downloads")
	}

	dls := make([]activity.Download, 0, len(rows))
	for _, row := range rows {
		dls = append(dls, activity.Download{
			ID:         row.ID,
			UserID:     row.UserID,
			ResourceID: row.ResourceID,
			CreatedAt:  row.CreatedAt.Time,
		})
	}
	return dls, nil
}

func (repo activityRepository) CountDownloads(ctx context.Context) (int, error) {
	query, args, err := psql.Select("COUNT(*)").From("download_history").ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building download count")
	}

	var count int
	if err = sqlx.GetContext(ctx, repo.db, &count, query, args...); err != nil {
		return 0, errors.Wrap(err, "counting downloads")
	}
	return count, nil
}
